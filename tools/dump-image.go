//go:build ignore

// Dump-image prints the raw framing of a configuration image, byte by byte,
// without refusing on a bad CRC. Unlike 'moat-cfg show', which rejects a
// corrupted image outright, this tool walks as far as the framing allows and
// reports where it breaks, which is what you want when a flash readback
// comes back damaged.
//
// Usage:
//
//	go run tools/dump-image.go <image-file>
package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/moat-bus/moatcfg/internal/crc"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <image-file>\n", os.Args[0])
		os.Exit(1)
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Image: %s (%d bytes)\n\n", os.Args[1], len(data))

	if len(data) < 7 {
		fmt.Printf("Image is shorter than the minimum container (7 bytes); raw dump:\n  %s\n", hex.EncodeToString(data))
		os.Exit(1)
	}

	// Magic
	fmt.Printf("Magic:    %q (% x)\n", data[:4], data[:4])
	switch string(data[:4]) {
	case "MoaT":
	case "DevC":
		fmt.Println("          legacy magic, accepted on decode")
	default:
		fmt.Println("          UNRECOGNIZED")
	}

	// Whole-image CRC: the trailer folds the sum to zero on an intact image.
	if crc.Crc16(data) == 0 {
		fmt.Println("CRC-16:   OK (whole image folds to zero)")
	} else {
		fmt.Printf("CRC-16:   FAILED (residue %#04x; image is corrupted)\n", crc.Crc16(data))
	}
	fmt.Println()

	// Record scan
	offset := 4
	index := 0
	for offset < len(data) && data[offset] != 0 {
		if offset+2 > len(data) {
			fmt.Printf("record %d: header truncated at offset %d\n", index, offset)
			os.Exit(1)
		}
		length := int(data[offset])
		typeID := data[offset+1]
		end := offset + 2 + length
		if end > len(data) {
			fmt.Printf("record %d: offset %d, type %d, declared length %d runs past the end\n",
				index, offset, typeID, length)
			os.Exit(1)
		}
		fmt.Printf("record %d: offset %4d  type %3d  length %3d  payload %s\n",
			index, offset, typeID, length, hex.EncodeToString(data[offset+2:end]))
		offset = end
		index++
	}

	if offset >= len(data) {
		fmt.Println("\nTerminator missing")
		os.Exit(1)
	}
	fmt.Printf("\nTerminator at offset %d\n", offset)

	rest := len(data) - offset
	if rest != 3 {
		fmt.Printf("Trailing bytes after record scan: %d (want 3: terminator + CRC)\n", rest)
		os.Exit(1)
	}
	fmt.Printf("Trailer:  %02x %02x (CRC-16, low byte first)\n", data[len(data)-2], data[len(data)-1])
}
