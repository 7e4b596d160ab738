// Package security holds password hashing. Hashing is bcrypt with the default
// cost; verification is constant-time inside bcrypt itself.
package security

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes a plaintext password. The output is salted, so two
// hashes of the same password differ.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether the password matches the stored hash. A
// malformed hash yields false, never an error surfaced to the caller.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
