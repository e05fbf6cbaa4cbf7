package validation

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Name     string `json:"name" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Role     string `json:"role,omitempty" validate:"omitempty,oneof=admin member viewer"`
	Internal string `json:"-" validate:"max=2"`
}

func TestStructValid(t *testing.T) {
	assert.NoError(t, Struct(signup{Name: "Alice", Email: "alice@example.com", Role: "member"}))
}

func TestStructReportsJSONFieldNames(t *testing.T) {
	err := Struct(signup{Name: "Al", Email: "nope", Role: "owner"})
	require.Error(t, err)

	errs, ok := As(err)
	require.True(t, ok)
	require.Len(t, errs, 3)

	assert.Equal(t, FieldError{Field: "name", Rule: "min", Param: "3", Message: "name must be at least 3 characters"}, errs[0])
	assert.Equal(t, "email", errs[1].Field)
	assert.Equal(t, "email", errs[1].Rule)
	assert.Equal(t, "role", errs[2].Field)
	assert.Equal(t, "role must be one of: admin member viewer", errs[2].Message)
	assert.Contains(t, err.Error(), "email must be a valid email address")
}

func TestAsConvertsValidatorErrors(t *testing.T) {
	raw := validator.New().Struct(signup{})
	errs, ok := As(raw)
	require.True(t, ok)
	assert.Len(t, errs, 2)
	assert.Equal(t, "Name", errs[0].Field, "plain validators keep Go field names")

	_, ok = As(errors.New("boom"))
	assert.False(t, ok)
}
