// Package eeprom implements the MoaT binary configuration format: a compact,
// checksummed container of typed configuration blocks, sized for the EEPROM
// of constrained bus devices.
//
// # Container Layout
//
// All multi-byte integers are big-endian unless noted otherwise:
//
//	offset 0   : magic, 4 bytes, ASCII "MoaT" ("DevC" accepted on decode)
//	offset 4   : records — repeated [1 byte length n][1 byte type id][n bytes payload]
//	offset N   : terminator, one zero byte
//	offset N+1 : CRC-16 trailer, low byte first
//
// The trailer is computed over everything preceding it, so the CRC-16 of an
// intact blob (trailer included) is zero. That whole-blob check is the sole
// integrity gate: any bit corruption anywhere fails Decode with
// ErrChecksumMismatch before records are examined.
//
// # Blocks
//
// Each record's type id selects one of a closed set of block variants, each
// owning its payload encoding:
//
//	Capabilities — sparse bitmask of per-capability count bytes, in groups of 8
//	Bytes        — variable-length raw byte values
//	Words        — variable-length big-endian 16-bit values
//	Name         — UTF-8 device name, single instance
//	Loader       — boot loader descriptor, three 16-bit fields, 6 bytes
//	HardwareID   — unique hardware id, exactly 8 bytes
//	Crypto       — opaque key material, exactly 16 bytes
//	RadioLink    — packed RF link identity (band, collect flag, node) + group, speed
//	OneWireID    — 1-Wire identity: type byte, 6-byte serial, CRC-8 over the first 7
//
// Blocks expose name-indexed field access as text, matching the command-line
// front end. The type-id and capability-name assignments come from an
// external registry (see the codes package); the codec takes the Registry
// handle per call and keeps no global state.
//
// # Usage
//
//	tbl, err := codes.Load("codes.yaml")
//	c := eeprom.NewContainer()
//	b := eeprom.NewBlock(eeprom.KindRadioLink, tbl.Capabilities())
//	b.SetField("band", "868")
//	b.SetField("node", "5")
//	id, _, _ := tbl.BlockByName("rf12")
//	c.Append(id, "rf12", b)
//	blob, err := c.Encode()
//	...
//	c2, err := eeprom.Decode(blob, tbl)
//
// Containers and blocks are not safe for concurrent mutation; each instance
// belongs to one encode or decode cycle. Distinct instances may be used from
// distinct goroutines freely, as the codec is pure and keeps no shared state.
package eeprom
