// Package zonefile loads the static hazard zone dataset.
package zonefile

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/samirrijal/saferoute/internal/core/domain"
)

// Store is the immutable, in-memory hazard zone set. It is written once by
// Load/New and only read afterwards, so concurrent readers need no locking.
type Store struct {
	zones []domain.HazardZone
	raw   []json.RawMessage
}

// Load reads a JSON array of zones from path. Entries keep their file order,
// which decides which zones win the per-request avoidance cap.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read zones %s: %v", domain.ErrConfiguration, path, err)
	}
	return Parse(data)
}

// Parse decodes a zone dataset document.
func Parse(data []byte) (*Store, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: parse zones: %v", domain.ErrConfiguration, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: parse zones: document is not a JSON array", domain.ErrConfiguration)
	}

	zones := make([]domain.HazardZone, 0, len(raw))
	for i, entry := range raw {
		var z domain.HazardZone
		if err := json.Unmarshal(entry, &z); err != nil {
			return nil, fmt.Errorf("%w: zone %d: %v", domain.ErrConfiguration, i, err)
		}
		if !z.Valid() {
			// Kept as-is: an inverted box simply never matches.
			slog.Warn("hazard zone has inverted edges", "index", i,
				"south", z.South, "west", z.West, "north", z.North, "east", z.East)
		}
		zones = append(zones, z)
	}

	return &Store{zones: zones, raw: raw}, nil
}

// New builds a store from already-decoded zones.
func New(zones []domain.HazardZone) *Store {
	s := &Store{
		zones: append([]domain.HazardZone(nil), zones...),
		raw:   make([]json.RawMessage, 0, len(zones)),
	}
	for _, z := range zones {
		b, _ := json.Marshal(z)
		s.raw = append(s.raw, b)
	}
	return s
}

// Empty returns a store with no zones; safe mode then always verifies the fast route.
func Empty() *Store {
	return &Store{zones: []domain.HazardZone{}, raw: []json.RawMessage{}}
}

// All returns the zones in load order. The slice is a copy.
func (s *Store) All() []domain.HazardZone {
	if s == nil {
		return nil
	}
	return append([]domain.HazardZone(nil), s.zones...)
}

// Raw returns the zone entries exactly as they appeared in the dataset,
// including any extra attributes the map page uses for labelling.
func (s *Store) Raw() []json.RawMessage {
	if s == nil || s.raw == nil {
		return []json.RawMessage{}
	}
	return s.raw
}

// Len returns the number of loaded zones.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.zones)
}
