package store

import (
	"errors"
	"fmt"
	"sort"

	"github.com/cockroachdb/pebble"

	"github.com/moat-bus/moatcfg/internal/eeprom"
)

// ErrNotFound is returned when no configuration is stored for a serial.
var ErrNotFound = errors.New("no configuration for serial")

// Store is a pebble-backed inventory of encoded containers keyed by device
// serial.
type Store struct {
	db  *pebble.DB
	reg eeprom.Registry
}

// Open opens (or creates) the inventory database at dir. The registry is
// used to validate incoming blobs.
func Open(dir string, reg eeprom.Registry) (*Store, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open inventory at %s: %w", dir, err)
	}
	return &Store{db: db, reg: reg}, nil
}

// Put stores the encoded blob for a serial. The blob must decode cleanly
// against the registry; corrupt or foreign data is rejected.
func (s *Store) Put(serial string, blob []byte) error {
	if serial == "" {
		return fmt.Errorf("serial must not be empty")
	}
	if _, err := eeprom.Decode(blob, s.reg); err != nil {
		return fmt.Errorf("refusing to store invalid blob for %s: %w", serial, err)
	}
	if err := s.db.Set([]byte(serial), blob, pebble.Sync); err != nil {
		return fmt.Errorf("failed to store blob for %s: %w", serial, err)
	}
	return nil
}

// Get returns the stored blob for a serial.
func (s *Store) Get(serial string) ([]byte, error) {
	data, closer, err := s.db.Get([]byte(serial))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, serial)
		}
		return nil, fmt.Errorf("failed to read blob for %s: %w", serial, err)
	}
	defer closer.Close()

	// The returned slice is only valid until the closer is closed.
	blob := make([]byte, len(data))
	copy(blob, data)
	return blob, nil
}

// List returns the stored serials in sorted order.
func (s *Store) List() ([]string, error) {
	iter, err := s.db.NewIter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to iterate inventory: %w", err)
	}
	defer iter.Close()

	var serials []string
	for iter.First(); iter.Valid(); iter.Next() {
		serials = append(serials, string(iter.Key()))
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("failed to iterate inventory: %w", err)
	}
	sort.Strings(serials)
	return serials, nil
}

// Delete removes the configuration for a serial. Deleting a missing serial
// is not an error.
func (s *Store) Delete(serial string) error {
	if err := s.db.Delete([]byte(serial), pebble.Sync); err != nil {
		return fmt.Errorf("failed to delete blob for %s: %w", serial, err)
	}
	return nil
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
