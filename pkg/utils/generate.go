package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"
)

// ResetTokenBytes is the amount of randomness behind a password reset token.
const ResetTokenBytes = 32

// GenerateOTP returns a numeric code of the given length drawn uniformly
// from [10^(length-1), 10^length), so the first digit is never zero.
func GenerateOTP(length int) (string, error) {
	if length <= 0 {
		length = 6
	}

	lower := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length-1)), nil)
	upper := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	span := new(big.Int).Sub(upper, lower)

	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}

	return n.Add(n, lower).String(), nil
}

// GenerateResetToken returns a URL-safe token with ResetTokenBytes of entropy.
func GenerateResetToken() (string, error) {
	buf := make([]byte, ResetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
