package restdto

import "errors"

var (
	// ErrMissingGetter is returned by Patch when a visited source property has no get/is/has accessor.
	ErrMissingGetter = errors.New("missing getter")
	// ErrAmbiguousGetter is returned by Patch when a property registers more than one accessor kind.
	ErrAmbiguousGetter = errors.New("ambiguous getter")
	// ErrUndefinedSetter is returned by Update when a visited property has neither an entity setter nor a mapping.
	ErrUndefinedSetter = errors.New("undefined setter")
	// ErrUnknownProperty is returned by Decode when the payload names a property the schema does not declare.
	ErrUnknownProperty = errors.New("unknown property")
)
