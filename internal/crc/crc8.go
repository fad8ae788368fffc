package crc

// 1-Wire CRC-8, reflected polynomial x^8 + x^5 + x^4 + 1 (0x8C).
const crc8Poly = 0x8C

// crc8Table is the 256-entry lookup table for the 1-Wire polynomial,
// precomputed once at startup.
var crc8Table [256]byte

func init() {
	for i := range crc8Table {
		c := byte(i)
		for bit := 0; bit < 8; bit++ {
			if c&1 != 0 {
				c = (c >> 1) ^ crc8Poly
			} else {
				c >>= 1
			}
		}
		crc8Table[i] = c
	}
}

// Crc8Update folds data into a running CRC-8, one byte per table lookup.
func Crc8Update(crc byte, data []byte) byte {
	for _, b := range data {
		crc = crc8Table[crc^b]
	}
	return crc
}

// Crc8 returns the 1-Wire CRC-8 of data with a zero seed.
func Crc8(data []byte) byte {
	return Crc8Update(0, data)
}
