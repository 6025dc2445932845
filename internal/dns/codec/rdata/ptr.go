package rdata

func encodePTR(data string) ([]byte, error) {
	return encodeName(data)
}

func decodePTR(b []byte) (string, error) {
	return decodeName(b)
}
