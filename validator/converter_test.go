package validator

import (
	"errors"
	"net/http"
	"regexp"
	"testing"

	"github.com/Vayras/admin-frontend-sub001/errcode"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type address struct {
	City string
}

func (a address) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.City, validation.Required),
	)
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+$`)

type signup struct {
	Email    string
	Password string
	Address  address
}

func (s signup) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Email, validation.Required, validation.Match(emailPattern)),
		validation.Field(&s.Password, validation.Required, validation.Length(8, 0)),
		validation.Field(&s.Address),
	)
}

type failing struct {
	err error
}

func (f failing) Validate() error { return f.err }

func TestValidateRequest_Success(t *testing.T) {
	err := ValidateRequest(signup{Email: "a@example.com", Password: "long enough", Address: address{City: "Lisbon"}})
	assert.NoError(t, err)
}

func TestValidateRequest_FieldErrors(t *testing.T) {
	err := ValidateRequest(signup{Email: "nope", Password: "short"})
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrValidation)
	le, ok := errcode.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, le.HTTPStatus())
	assert.Equal(t, "validation", le.Module())

	fields := Fields(err)
	assert.Len(t, fields, 3)
	assert.Contains(t, fields, "Email")
	assert.Contains(t, fields, "Password")
	assert.Equal(t, "cannot be blank", fields["Address.City"])
}

func TestValidateRequest_SingleRuleError(t *testing.T) {
	err := ValidateRequest(failing{err: validation.Validate("", validation.Required)})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "cannot be blank", Fields(err)[""])
}

func TestValidateRequest_OtherError(t *testing.T) {
	custom := errors.New("custom error")
	err := ValidateRequest(failing{err: custom})
	assert.Equal(t, custom, err)
	assert.Nil(t, Fields(err))
}

func TestConvertValidationError(t *testing.T) {
	t.Run("nil field error is skipped", func(t *testing.T) {
		err := ConvertValidationError(validation.Errors{
			"valid":   nil,
			"invalid": errors.New("field is invalid"),
		})

		fields := Fields(err)
		assert.Len(t, fields, 1)
		assert.NotContains(t, fields, "valid")
		assert.Equal(t, "field is invalid", fields["invalid"])
	})

	t.Run("empty validation errors", func(t *testing.T) {
		err := ConvertValidationError(validation.Errors{})
		assert.ErrorIs(t, err, ErrValidation)
		assert.Empty(t, Fields(err))
	})
}
