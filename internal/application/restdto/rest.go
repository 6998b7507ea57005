// Package restdto implements partial-update data transfer objects.
//
// A DTO records which of its properties were explicitly assigned ("visited").
// A Schema describes, per DTO type, how each property is read, written and
// applied to an entity, and drives the two reconciliation operations:
// Update (DTO -> entity) and Patch (DTO -> DTO).
package restdto

import "slices"

// PropertyID is the identifier property. It is tracked but never reported as visited.
const PropertyID = "id"

// DTO is the contract every partial-update carrier satisfies.
type DTO interface {
	SetID(id string)
	GetID() *string
	Visited() []string
	SetVisited(property string)
}

// Rest carries the identifier and visited bookkeeping shared by all DTOs.
// Embed it by value and expose setters that call SetVisited.
type Rest struct {
	id      *string
	visited []string
}

// SetID sets the identifier and records it as visited.
func (r *Rest) SetID(id string) {
	r.SetVisited(PropertyID)
	r.id = &id
}

// GetID returns the identifier, nil when it was never set.
func (r *Rest) GetID() *string {
	return r.id
}

// SetVisited appends a property to the visited sequence. Duplicates are kept.
func (r *Rest) SetVisited(property string) {
	r.visited = append(r.visited, property)
}

// Visited returns the visited properties in assignment order, without the identifier.
func (r *Rest) Visited() []string {
	out := make([]string, 0, len(r.visited))
	for _, p := range r.visited {
		if p != PropertyID {
			out = append(out, p)
		}
	}
	return out
}

// IsVisited reports whether the property was assigned.
func (r *Rest) IsVisited(property string) bool {
	return slices.Contains(r.visited, property)
}

// IsPristine reports whether no setter has been called yet.
func (r *Rest) IsPristine() bool {
	return len(r.visited) == 0
}

// unique removes duplicates while keeping first-seen order.
func unique(properties []string) []string {
	seen := make(map[string]struct{}, len(properties))
	out := make([]string, 0, len(properties))
	for _, p := range properties {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
