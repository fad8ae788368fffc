// Package codes loads the external name-to-identifier assignment ("codes"
// table) the EEPROM codec consumes.
//
// A codes file is YAML with two ordered lists:
//
//	blocks:
//	  - name: types
//	    kind: capabilities
//	  - name: euid
//	    kind: hardware-id
//	  - name: rf12
//	    kind: radio-link
//	capabilities: [console, port, temp, humid, adc, count]
//
// Block declaration order assigns wire type ids starting at 0; capability
// order assigns bitmask slot indices. The block kinds are the closed set
// the eeprom package implements — the table names and orders them but
// cannot introduce new ones.
//
// A Table is immutable once loaded and satisfies eeprom.Registry. Load it
// once at startup and pass the handle into codec calls.
package codes
