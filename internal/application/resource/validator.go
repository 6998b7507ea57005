package resource

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/restapi/backend/internal/domain/identity"
)

// NewValidator returns a validator that reports fields by their JSON name and knows
// the "role" tag.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	Configure(v)
	return v
}

// Configure registers the JSON tag name function and the custom tags on v. It is also
// applied to gin's binding engine so both report errors the same way.
func Configure(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return identity.Role(fl.Field().String()).Valid()
	})
}
