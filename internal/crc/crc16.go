package crc

// oddParity[n] is 1 when the 4-bit value n has an odd number of set bits.
var oddParity = [16]byte{0, 1, 1, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0, 1, 1, 0}

// Crc16Update folds data into a running 1-Wire bus CRC-16.
//
// Per input byte: XOR it into the low CRC byte, shift the CRC right by 8,
// and if the combined nibble parity of the folded byte is odd, XOR in
// 0xC001; finally XOR in the byte shifted left by 6 and by 7. All
// arithmetic wraps to 16 bits.
func Crc16Update(crc uint16, data []byte) uint16 {
	for _, b := range data {
		c := uint16(b) ^ (crc & 0xFF)
		crc >>= 8
		if oddParity[c&0xF]^oddParity[(c>>4)&0xF] != 0 {
			crc ^= 0xC001
		}
		crc ^= c << 6
		crc ^= c << 7
	}
	return crc
}

// Crc16 returns the CRC-16 of data with a zero seed.
func Crc16(data []byte) uint16 {
	return Crc16Update(0, data)
}
