package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Code     string `json:"otp" validate:"omitempty,numeric"`
}

func TestValidateStructUsesJSONNames(t *testing.T) {
	errs := ValidateStruct(&sampleRequest{Email: "nope", Password: "short", Code: "12a"})

	require.Equal(t, map[string]string{
		"email":    "Invalid email format",
		"password": "Minimum length is 8",
		"otp":      "Must contain digits only",
	}, errs)
}

func TestValidateStructValid(t *testing.T) {
	errs := ValidateStruct(sampleRequest{Email: "a@b.co", Password: "longenough"})
	require.Empty(t, errs)
}

func TestValidateStructRequired(t *testing.T) {
	errs := ValidateStruct(sampleRequest{})
	require.Equal(t, "This field is required", errs["email"])
	require.Equal(t, "This field is required", errs["password"])
	require.NotContains(t, errs, "otp")
}

func TestFormatValidationErrorsIsSorted(t *testing.T) {
	out := FormatValidationErrors(map[string]string{
		"password": "too short",
		"email":    "bad",
	})
	require.Equal(t, "email: bad; password: too short", out)
}
