// Package store keeps an inventory of encoded device configurations.
//
// A provisioning bench usually manages more devices than it flashes in one
// sitting; the store persists each device's encoded EEPROM blob under its
// serial so moat-serve can hand configurations to flasher agents and
// moat-cfg can stage them ahead of time. Blobs are validated against the
// codes table before they are accepted — the store never holds a blob that
// does not decode.
//
// Storage is a local pebble database; one Store owns the database directory
// for its lifetime and is safe for concurrent use.
package store
