// Package crc implements the two checksum algorithms used by the MoaT
// EEPROM configuration format.
//
// Crc8 is the standard Dallas/Maxim 1-Wire CRC (reflected polynomial 0x8C,
// table-driven). It protects the 8-byte 1-Wire device identity: the last
// identity byte is the CRC of the preceding seven, so the CRC of all eight
// bytes is zero for a valid identity.
//
// Crc16 is the 1-Wire bus CRC-16 in its classic parity-lookup formulation.
// It is the container's integrity trailer: the trailer is appended low byte
// first, which makes the CRC of the entire blob (trailer included) zero.
//
// Both functions are pure and safe for concurrent use.
package crc
