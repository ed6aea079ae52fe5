package auth

import "golang.org/x/crypto/bcrypt"

// bcrypt cost 10 keeps login latency tolerable while staying expensive
// enough for offline guessing.
const hashCost = 10

// HashPassword produces a salted bcrypt digest of the plaintext.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), hashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether plain matches the stored digest.
// A mismatch or malformed digest returns false, never an error.
func CheckPassword(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}
