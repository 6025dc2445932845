package rdata

func encodeNS(data string) ([]byte, error) {
	return encodeName(data)
}

func decodeNS(b []byte) (string, error) {
	return decodeName(b)
}
