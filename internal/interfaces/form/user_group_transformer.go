// Package form converts between the scalar values clients submit and domain objects.
package form

import (
	"context"
	"fmt"

	"github.com/restapi/backend/internal/domain/identity"
)

// TransformationFailedError reports a submitted value that could not be turned into a
// domain object. It is shown to the client as a validation failure.
type TransformationFailedError struct {
	// Property is the DTO property the value was submitted under, when known
	Property string
	Value    string
	Message  string
}

func (e *TransformationFailedError) Error() string {
	return e.Message
}

// SetProperty records the DTO property the failing value belongs to
func (e *TransformationFailedError) SetProperty(name string) {
	e.Property = name
}

// GroupFinder loads a user group by id
type GroupFinder interface {
	FindOne(ctx context.Context, id string, required bool) (*identity.UserGroup, error)
}

// UserGroupTransformer converts user groups to their ids and back.
type UserGroupTransformer struct {
	groups GroupFinder
}

// NewUserGroupTransformer creates a transformer resolving ids through groups
func NewUserGroupTransformer(groups GroupFinder) *UserGroupTransformer {
	return &UserGroupTransformer{groups: groups}
}

// Transform turns a slice of groups, or of anything printable, into id strings.
// Values that are not slices give an empty list.
func (t *UserGroupTransformer) Transform(value any) []string {
	out := make([]string, 0)
	switch v := value.(type) {
	case []*identity.UserGroup:
		for _, g := range v {
			out = append(out, g.ID.String())
		}
	case []fmt.Stringer:
		for _, s := range v {
			out = append(out, s.String())
		}
	case []any:
		for _, item := range v {
			switch g := item.(type) {
			case *identity.UserGroup:
				out = append(out, g.ID.String())
			case fmt.Stringer:
				out = append(out, g.String())
			}
		}
	}
	return out
}

// ReverseTransform resolves a slice of ids into groups. An id without a group fails
// the whole transformation. Values that are not slices give nil.
func (t *UserGroupTransformer) ReverseTransform(ctx context.Context, value any) ([]*identity.UserGroup, error) {
	var ids []string
	switch v := value.(type) {
	case []string:
		ids = v
	case []any:
		for _, item := range v {
			ids = append(ids, fmt.Sprint(item))
		}
	default:
		return nil, nil
	}

	groups := make([]*identity.UserGroup, 0, len(ids))
	for _, id := range ids {
		group, err := t.groups.FindOne(ctx, id, false)
		if err != nil {
			return nil, err
		}
		if group == nil {
			return nil, &TransformationFailedError{
				Value:   id,
				Message: fmt.Sprintf("User group with id \"%s\" does not exist!", id),
			}
		}
		groups = append(groups, group)
	}
	return groups, nil
}
