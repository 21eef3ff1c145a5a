package utils

import "golang.org/x/crypto/bcrypt"

// dummyHash is compared against when no account exists so that a login
// for an unknown email costs the same as one with a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("instamakaan-dummy-password"), bcrypt.DefaultCost)

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// BurnPasswordCheck performs a comparison whose result is discarded.
func BurnPasswordCheck(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}
