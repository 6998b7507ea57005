package restdto

import (
	"fmt"
	"strings"
)

// GetterKind names the accessor convention a property is read through.
type GetterKind string

const (
	Get GetterKind = "get"
	Is  GetterKind = "is"
	Has GetterKind = "has"
)

type accessor[D DTO] struct {
	kind GetterKind
	copy func(dst, src D)
}

type property[D DTO, E any] struct {
	name    string
	getters []accessor[D]
	apply   func(D, E) error
	decode  func(D, []byte) error
}

// Schema is the registration table of one DTO type D reconciled onto entity type E.
// Build it once and share it; it is read-only after registration.
type Schema[D DTO, E any] struct {
	name       string
	properties map[string]*property[D, E]
	order      []string
}

// NewSchema creates an empty schema named after D.
func NewSchema[D DTO, E any]() *Schema[D, E] {
	var zero D
	return &Schema[D, E]{
		name:       strings.TrimPrefix(fmt.Sprintf("%T", zero), "*"),
		properties: make(map[string]*property[D, E]),
	}
}

// Name returns the DTO type name used in error messages.
func (s *Schema[D, E]) Name() string {
	return s.name
}

// Properties returns the registered property names in registration order.
func (s *Schema[D, E]) Properties() []string {
	return append([]string(nil), s.order...)
}

// Binding is the typed handle returned by Property. It registers accessors for one property.
type Binding[D DTO, E any, V any] struct {
	prop  *property[D, E]
	value func(D) V
	set   func(D, V)
}

// Property registers a DTO property. value reads the current field value; set is the
// DTO's own setter and must record the property as visited.
func Property[D DTO, E any, V any](s *Schema[D, E], name string, value func(D) V, set func(D, V)) *Binding[D, E, V] {
	if _, exists := s.properties[name]; exists {
		panic(fmt.Sprintf("restdto: property %q registered twice on %s", name, s.name))
	}
	p := &property[D, E]{
		name: name,
		decode: func(d D, raw []byte) error {
			var v V
			if err := unmarshal(raw, &v); err != nil {
				return err
			}
			set(d, v)
			return nil
		},
	}
	s.properties[name] = p
	s.order = append(s.order, name)
	return &Binding[D, E, V]{prop: p, value: value, set: set}
}

// Name returns the property name.
func (b *Binding[D, E, V]) Name() string {
	return b.prop.name
}

// Getter registers a read accessor of the given kind.
func (b *Binding[D, E, V]) Getter(kind GetterKind, read func(D) V) *Binding[D, E, V] {
	set := b.set
	b.prop.getters = append(b.prop.getters, accessor[D]{
		kind: kind,
		copy: func(dst, src D) { set(dst, read(src)) },
	})
	return b
}

// Setter registers the entity setter Update calls with the current property value.
func (b *Binding[D, E, V]) Setter(apply func(E, V) error) *Binding[D, E, V] {
	value := b.value
	b.prop.apply = func(d D, e E) error {
		return apply(e, value(d))
	}
	return b
}

// Plain adapts an entity setter that cannot fail.
func Plain[E any, V any](fn func(E, V)) func(E, V) error {
	return func(e E, v V) error {
		fn(e, v)
		return nil
	}
}

// Mappings overrides the entity setter of selected properties with custom logic.
// A nil *Mappings is valid and maps nothing.
type Mappings[D DTO, E any] struct {
	entries map[string]func(D, E) error
}

// NewMappings creates an empty mapping table.
func NewMappings[D DTO, E any]() *Mappings[D, E] {
	return &Mappings[D, E]{entries: make(map[string]func(D, E) error)}
}

// Map routes the bound property to fn, which receives the DTO, the entity and the current value.
func Map[D DTO, E any, V any](m *Mappings[D, E], b *Binding[D, E, V], fn func(d D, e E, v V) error) *Mappings[D, E] {
	value := b.value
	m.entries[b.prop.name] = func(d D, e E) error {
		return fn(d, e, value(d))
	}
	return m
}

// Has reports whether the property is mapped.
func (m *Mappings[D, E]) Has(property string) bool {
	_, ok := m.lookup(property)
	return ok
}

func (m *Mappings[D, E]) lookup(property string) (func(D, E) error, bool) {
	if m == nil {
		return nil, false
	}
	fn, ok := m.entries[property]
	return fn, ok
}

// Update applies every visited property of d onto e and returns e.
// Mapped properties go through the mapping table, the rest through the registered
// entity setter. Properties that were never set are left untouched.
func (s *Schema[D, E]) Update(d D, e E, mappings *Mappings[D, E]) (E, error) {
	for _, name := range unique(d.Visited()) {
		if fn, ok := mappings.lookup(name); ok {
			if err := fn(d, e); err != nil {
				return e, fmt.Errorf("update %s.%s: %w", s.name, name, err)
			}
			continue
		}

		p, ok := s.properties[name]
		if !ok || p.apply == nil {
			return e, fmt.Errorf("%w: no entity setter or mapping for property '%s' of DTO '%s'",
				ErrUndefinedSetter, name, s.name)
		}
		if err := p.apply(d, e); err != nil {
			return e, fmt.Errorf("update %s.%s: %w", s.name, name, err)
		}
	}
	return e, nil
}

// Patch copies every visited property of src onto dst through dst's own setters,
// so each copied property becomes visited on dst as well.
//
// Patch never consults a mapping table; only Update does.
func (s *Schema[D, E]) Patch(dst, src D) (D, error) {
	for _, name := range unique(src.Visited()) {
		copyValue, err := s.getter(name)
		if err != nil {
			return dst, err
		}
		copyValue(dst, src)
	}
	return dst, nil
}

func (s *Schema[D, E]) getter(name string) (func(dst, src D), error) {
	p, ok := s.properties[name]
	if !ok || len(p.getters) == 0 {
		return nil, fmt.Errorf("%w: DTO class '%s' does not have getter method property '%s' - cannot patch dto",
			ErrMissingGetter, s.name, name)
	}
	if len(p.getters) > 1 {
		kinds := make([]string, len(p.getters))
		for i, g := range p.getters {
			kinds[i] = string(g.kind)
		}
		return nil, fmt.Errorf("%w: property '%s' of DTO '%s' has multiple getter methods (%s)",
			ErrAmbiguousGetter, name, s.name, strings.Join(kinds, ", "))
	}
	return p.getters[0].copy, nil
}
