package validators

import (
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signUp struct {
	Username  string `validate:"required,alphanum,min=3,max=150"`
	Email     string `validate:"required,email"`
	FirstName string `validate:"max=5"`
}

func TestValidateOK(t *testing.T) {
	v := NewValidator()
	assert.NoError(t, v.Validate(&signUp{Username: "alice", Email: "alice@example.com"}))
}

func TestValidateMessages(t *testing.T) {
	v := NewValidator()
	err := v.Validate(&signUp{Username: "al", Email: "nope", FirstName: "Bartholomew"})
	require.Error(t, err)

	var he *echo.HTTPError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, http.StatusBadRequest, he.Code)

	msg, ok := he.Message.(string)
	require.True(t, ok)
	assert.Contains(t, msg, "Username must be at least 3 characters")
	assert.Contains(t, msg, "Email must be a valid email")
	assert.Contains(t, msg, "First name must be at most 5 characters")
}

func TestFormatValidationErrorPassesThroughOtherErrors(t *testing.T) {
	assert.Equal(t, "boom", FormatValidationError(errors.New("boom")))
}
