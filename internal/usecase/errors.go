package usecase

import (
	"errors"
	"fmt"
	"time"

	"instamakaan/pkg/utils"
)

var (
	ErrNotFound           = errors.New("account not found")
	ErrAlreadyExists      = errors.New("account already exists")
	ErrAlreadyVerified    = errors.New("email already verified")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrThrottled          = errors.New("wait before requesting another code")
	ErrRetryLimitExceeded = errors.New("otp retry limit exceeded")
	ErrOTPExpired         = errors.New("otp expired")
	ErrInvalidOTP         = errors.New("invalid otp")
	ErrInvalidResetToken  = errors.New("invalid or expired token")
	ErrResetTokenExpired  = errors.New("reset token expired")
	ErrDeliveryFailed     = errors.New("could not deliver email, request a new code")
)

// ThrottledError is returned when a code is requested before the resend
// interval elapsed. It matches ErrThrottled with errors.Is.
type ThrottledError struct {
	RetryAfter time.Duration
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("%s (retry in %s)", ErrThrottled.Error(), e.RetryAfter.Round(time.Second))
}

func (e *ThrottledError) Is(target error) bool {
	return target == ErrThrottled
}

// ValidationError lists rejected request fields.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + utils.FormatValidationErrors(e.Fields)
}

func validate(req any) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
