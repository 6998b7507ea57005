package restdto

import (
	"fmt"
	"maps"
	"slices"

	"github.com/goccy/go-json"
)

func unmarshal(raw []byte, v any) error {
	return json.Unmarshal(raw, v)
}

// Decode reads a JSON object into d, calling the DTO setter of every key present in
// the payload so exactly those properties become visited. Keys are applied in
// registration order. An "id" key goes through SetID.
func (s *Schema[D, E]) Decode(data []byte, d D) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("decode %s: %w", s.name, err)
	}

	for _, key := range slices.Sorted(maps.Keys(fields)) {
		if key == PropertyID {
			continue
		}
		if _, ok := s.properties[key]; !ok {
			return fmt.Errorf("%w: '%s' is not a property of %s", ErrUnknownProperty, key, s.name)
		}
	}

	if raw, ok := fields[PropertyID]; ok {
		var id string
		if err := json.Unmarshal(raw, &id); err != nil {
			return fmt.Errorf("decode %s.%s: %w", s.name, PropertyID, err)
		}
		d.SetID(id)
	}

	for _, name := range s.order {
		raw, ok := fields[name]
		if !ok {
			continue
		}
		if err := s.properties[name].decode(d, raw); err != nil {
			return fmt.Errorf("decode %s.%s: %w", s.name, name, err)
		}
	}
	return nil
}
