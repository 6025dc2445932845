package rdata

// encodeCNAME and decodeCNAME share the plain domain-name encoding used by
// NS and PTR records.
func encodeCNAME(data string) ([]byte, error) {
	return encodeName(data)
}

func decodeCNAME(b []byte) (string, error) {
	return decodeName(b)
}
