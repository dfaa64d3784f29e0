package validator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type loginRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"display_name,omitempty" validate:"max=10"`
}

func TestValidateStructPasses(t *testing.T) {
	require.NoError(t, ValidateStruct(&loginRequest{Email: "user@example.com"}))
}

func TestValidateStructReportsJSONFieldNames(t *testing.T) {
	err := ValidateStruct(&loginRequest{})
	require.Error(t, err)

	failures, ok := err.(ValidationErrors)
	require.True(t, ok)
	require.Len(t, failures, 1)
	require.Equal(t, "email", failures[0].Field)
	require.Equal(t, "required", failures[0].Tag)
}

func TestValidateStructCollectsParams(t *testing.T) {
	err := ValidateStruct(&loginRequest{Email: "user@example.com", Name: "a very long display name"})
	require.Error(t, err)

	failures, ok := err.(ValidationErrors)
	require.True(t, ok)
	require.Equal(t, "display_name", failures[0].Field)
	require.Equal(t, "max", failures[0].Tag)
	require.Equal(t, "10", failures[0].Param)
}

func TestValidationErrorsMessage(t *testing.T) {
	errs := ValidationErrors{
		{Field: "email", Tag: "required"},
		{Field: "display_name", Tag: "max", Param: "10"},
	}
	msg := errs.Error()
	require.Contains(t, msg, "email failed on required")
	require.Contains(t, msg, "display_name failed on max=10")

	require.Equal(t, "validation failed", ValidationErrors{}.Error())
}
