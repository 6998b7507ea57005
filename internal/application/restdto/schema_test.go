package restdto

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type personDTO struct {
	Rest
	name   string
	active bool
	email  string
}

func (p *personDTO) SetName(name string) {
	p.SetVisited("name")
	p.name = name
}

func (p *personDTO) GetName() string { return p.name }

func (p *personDTO) SetActive(active bool) {
	p.SetVisited("active")
	p.active = active
}

func (p *personDTO) IsActive() bool { return p.active }

func (p *personDTO) SetEmail(email string) {
	p.SetVisited("email")
	p.email = email
}

type person struct {
	name   string
	active bool
	email  string
	calls  []string
}

func (p *person) SetName(name string) {
	p.calls = append(p.calls, "SetName")
	p.name = name
}

func (p *person) SetActive(active bool) {
	p.calls = append(p.calls, "SetActive")
	p.active = active
}

var errInvalidEmail = errors.New("invalid email")

func (p *person) SetEmail(email string) error {
	p.calls = append(p.calls, "SetEmail")
	if email == "" {
		return errInvalidEmail
	}
	p.email = email
	return nil
}

type personSchema struct {
	*Schema[*personDTO, *person]
	name   *Binding[*personDTO, *person, string]
	active *Binding[*personDTO, *person, bool]
	email  *Binding[*personDTO, *person, string]
}

// newPersonSchema builds the schema used by most tests: name (get), active (is)
// and email, which has an entity setter but no getter.
func newPersonSchema() personSchema {
	s := NewSchema[*personDTO, *person]()
	ps := personSchema{Schema: s}
	ps.name = Property(s, "name", func(d *personDTO) string { return d.name }, (*personDTO).SetName).
		Getter(Get, (*personDTO).GetName).
		Setter(Plain((*person).SetName))
	ps.active = Property(s, "active", func(d *personDTO) bool { return d.active }, (*personDTO).SetActive).
		Getter(Is, (*personDTO).IsActive).
		Setter(Plain((*person).SetActive))
	ps.email = Property(s, "email", func(d *personDTO) string { return d.email }, (*personDTO).SetEmail).
		Setter((*person).SetEmail)
	return ps
}

func TestRest_Visited(t *testing.T) {
	t.Run("only the called setter is visited", func(t *testing.T) {
		d := &personDTO{}
		d.SetActive(true)

		assert.Equal(t, []string{"active"}, d.Visited())
	})

	t.Run("id is excluded even when set", func(t *testing.T) {
		d := &personDTO{}
		d.SetID("a2b9ee7e-6d2c-11ee-b962-0242ac120002")
		d.SetActive(true)

		assert.Equal(t, []string{"active"}, d.Visited())
		require.NotNil(t, d.GetID())
		assert.Equal(t, "a2b9ee7e-6d2c-11ee-b962-0242ac120002", *d.GetID())
		assert.True(t, d.IsVisited(PropertyID))
	})

	t.Run("duplicates are kept", func(t *testing.T) {
		d := &personDTO{}
		d.SetName("Ann")
		d.SetName("Bob")

		assert.Equal(t, []string{"name", "name"}, d.Visited())
	})

	t.Run("pristine until first setter", func(t *testing.T) {
		d := &personDTO{}
		assert.True(t, d.IsPristine())
		assert.Nil(t, d.GetID())
		assert.Empty(t, d.Visited())

		d.SetName("Ann")
		assert.False(t, d.IsPristine())
	})
}

func TestSchema_Name(t *testing.T) {
	s := newPersonSchema()
	assert.Equal(t, "restdto.personDTO", s.Name())
	assert.Equal(t, []string{"name", "active", "email"}, s.Properties())
}

func TestSchema_Property_RegisteredTwice(t *testing.T) {
	s := NewSchema[*personDTO, *person]()
	Property(s, "name", func(d *personDTO) string { return d.name }, (*personDTO).SetName)

	assert.Panics(t, func() {
		Property(s, "name", func(d *personDTO) string { return d.name }, (*personDTO).SetName)
	})
}

func TestSchema_Update(t *testing.T) {
	t.Run("unset properties are left untouched", func(t *testing.T) {
		s := newPersonSchema()
		entity := &person{name: "poisoned", email: "keep@example.com"}

		d := &personDTO{}
		d.SetActive(true)

		got, err := s.Update(d, entity, nil)
		require.NoError(t, err)

		assert.Same(t, entity, got)
		assert.True(t, entity.active)
		assert.Equal(t, "poisoned", entity.name)
		assert.Equal(t, "keep@example.com", entity.email)
		assert.Equal(t, []string{"SetActive"}, entity.calls)
	})

	t.Run("mapped property bypasses the default setter", func(t *testing.T) {
		s := newPersonSchema()
		entity := &person{}

		mappings := NewMappings[*personDTO, *person]()
		Map(mappings, s.name, func(d *personDTO, e *person, v string) error {
			e.name = "mapped:" + v
			return nil
		})

		d := &personDTO{}
		d.SetName("Ann")

		_, err := s.Update(d, entity, mappings)
		require.NoError(t, err)

		assert.Equal(t, "mapped:Ann", entity.name)
		assert.Empty(t, entity.calls, "default SetName must not be called")
		assert.True(t, mappings.Has("name"))
		assert.False(t, mappings.Has("active"))
	})

	t.Run("duplicated visits apply once", func(t *testing.T) {
		s := newPersonSchema()
		entity := &person{}

		d := &personDTO{}
		d.SetName("Ann")
		d.SetName("Bob")

		_, err := s.Update(d, entity, nil)
		require.NoError(t, err)

		assert.Equal(t, "Bob", entity.name)
		assert.Equal(t, []string{"SetName"}, entity.calls)
	})

	t.Run("entity setter error is propagated", func(t *testing.T) {
		s := newPersonSchema()
		entity := &person{email: "old@example.com"}

		d := &personDTO{}
		d.SetEmail("")

		_, err := s.Update(d, entity, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, errInvalidEmail)
		assert.Contains(t, err.Error(), "personDTO.email")
		assert.Equal(t, "old@example.com", entity.email)
	})

	t.Run("missing entity setter fails fast", func(t *testing.T) {
		s := NewSchema[*personDTO, *person]()
		Property(s, "name", func(d *personDTO) string { return d.name }, (*personDTO).SetName).
			Getter(Get, (*personDTO).GetName)

		d := &personDTO{}
		d.SetName("Ann")

		_, err := s.Update(d, &person{}, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUndefinedSetter)
		assert.Contains(t, err.Error(), "'name'")
	})

	t.Run("visited but unregistered property fails fast", func(t *testing.T) {
		s := newPersonSchema()

		d := &personDTO{}
		d.SetVisited("nickname")

		_, err := s.Update(d, &person{}, nil)
		assert.ErrorIs(t, err, ErrUndefinedSetter)
	})

	t.Run("mapping error is wrapped", func(t *testing.T) {
		s := newPersonSchema()
		boom := errors.New("boom")
		mappings := NewMappings[*personDTO, *person]()
		Map(mappings, s.active, func(*personDTO, *person, bool) error { return boom })

		d := &personDTO{}
		d.SetActive(false)

		_, err := s.Update(d, &person{}, mappings)
		assert.ErrorIs(t, err, boom)
	})
}

func TestSchema_Patch(t *testing.T) {
	t.Run("copies the single visited property", func(t *testing.T) {
		s := newPersonSchema()

		dst := &personDTO{name: "Ann"}
		src := &personDTO{}
		src.SetActive(true)

		got, err := s.Patch(dst, src)
		require.NoError(t, err)

		assert.Same(t, dst, got)
		assert.Contains(t, dst.Visited(), "active")
		assert.Equal(t, src.IsActive(), dst.IsActive())
		assert.Equal(t, "Ann", dst.name, "non visited properties are not copied")
		assert.NotContains(t, dst.Visited(), "name")
	})

	t.Run("visited-ness propagates through chained patches", func(t *testing.T) {
		s := newPersonSchema()

		src := &personDTO{}
		src.SetName("Ann")
		mid, err := s.Patch(&personDTO{}, src)
		require.NoError(t, err)
		dst, err := s.Patch(&personDTO{}, mid)
		require.NoError(t, err)

		assert.Equal(t, []string{"name"}, dst.Visited())
		assert.Equal(t, "Ann", dst.GetName())
	})

	t.Run("identifier is not patched", func(t *testing.T) {
		s := newPersonSchema()

		src := &personDTO{}
		src.SetID("0f1d2c3b-6d2c-11ee-b962-0242ac120002")
		src.SetName("Ann")

		dst, err := s.Patch(&personDTO{}, src)
		require.NoError(t, err)
		assert.Nil(t, dst.GetID())
	})

	t.Run("missing getter", func(t *testing.T) {
		s := newPersonSchema()

		src := &personDTO{}
		src.SetEmail("ann@example.com")

		_, err := s.Patch(&personDTO{}, src)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMissingGetter)
		assert.Contains(t, err.Error(), "restdto.personDTO")
		assert.Contains(t, err.Error(), "'email'")
	})

	t.Run("missing getter for unregistered property", func(t *testing.T) {
		s := newPersonSchema()

		src := &personDTO{}
		src.SetVisited("nickname")

		_, err := s.Patch(&personDTO{}, src)
		assert.ErrorIs(t, err, ErrMissingGetter)
	})

	t.Run("ambiguous getter when both get and is are registered", func(t *testing.T) {
		s := NewSchema[*personDTO, *person]()
		Property(s, "active", func(d *personDTO) bool { return d.active }, (*personDTO).SetActive).
			Getter(Get, func(d *personDTO) bool { return d.active }).
			Getter(Is, (*personDTO).IsActive).
			Setter(Plain((*person).SetActive))

		src := &personDTO{}
		src.SetActive(true)

		_, err := s.Patch(&personDTO{}, src)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrAmbiguousGetter)
		assert.Contains(t, err.Error(), "get, is")
	})

	// Update consults the mapping table while Patch always uses the plain DTO setter.
	// The divergence is kept on purpose and pinned here.
	t.Run("patch ignores mappings that update honors", func(t *testing.T) {
		s := newPersonSchema()
		mappings := NewMappings[*personDTO, *person]()
		Map(mappings, s.name, func(_ *personDTO, e *person, v string) error {
			e.name = "mapped:" + v
			return nil
		})

		src := &personDTO{}
		src.SetName("Ann")

		dst, err := s.Patch(&personDTO{}, src)
		require.NoError(t, err)
		assert.Equal(t, "Ann", dst.GetName())

		entity := &person{}
		_, err = s.Update(dst, entity, mappings)
		require.NoError(t, err)
		assert.Equal(t, "mapped:Ann", entity.name)
	})
}

func TestSchema_UpdateScenario(t *testing.T) {
	s := newPersonSchema()

	d := &personDTO{name: "Ann"}
	d.SetActive(true)
	require.Equal(t, []string{"active"}, d.Visited())

	entity := &person{name: "Previous"}
	_, err := s.Update(d, entity, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"SetActive"}, entity.calls)
	assert.True(t, entity.active)
	assert.Equal(t, "Previous", entity.name)
}
