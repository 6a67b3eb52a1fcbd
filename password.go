package authkit

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is intentionally above the library default; login is
// not a hot path and POS terminals cache sessions.
const DefaultBcryptCost = 14

// HashPassword will generate a password hash using the default hasher
func HashPassword(password string) (string, error) {
	return BcryptHasher{}.HashPassword(password)
}

// ComparePasswordAndHash will validate the given cleartext password
// matches the hashed password
func ComparePasswordAndHash(password, hash string) error {
	return BcryptHasher{}.ComparePasswordAndHash(password, hash)
}

// VerifyPassword is the never-fails form of ComparePasswordAndHash: it
// returns false for empty inputs and for any comparison error.
func VerifyPassword(auth PasswordAuthenticator, password, hash string) bool {
	if password == "" || hash == "" {
		return false
	}
	if auth == nil {
		auth = BcryptHasher{}
	}
	return auth.ComparePasswordAndHash(password, hash) == nil
}

// BcryptHasher is the default PasswordAuthenticator: per-password salted
// slow hashing.
type BcryptHasher struct {
	// Cost overrides DefaultBcryptCost when non zero
	Cost int
}

var _ PasswordAuthenticator = BcryptHasher{}

func (b BcryptHasher) cost() int {
	if b.Cost > 0 {
		return b.Cost
	}
	return DefaultBcryptCost
}

// HashPassword will generate a password hash
func (b BcryptHasher) HashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", ErrNoEmptyString
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), b.cost())
	return string(h), err
}

// ComparePasswordAndHash will validate the given cleartext
// password matches the hashed password
func (b BcryptHasher) ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedHashAndPassword
		}
		return err
	}
	return nil
}

// LegacyPasswordHasher reproduces the original StorePOS scheme: a single
// application-wide salt and one SHA-256 round, base64 encoded. It exists
// only for byte compatibility with hashes already stored by the legacy
// backend; new deployments should keep the default BcryptHasher and
// rehash on first successful login.
type LegacyPasswordHasher struct {
	Salt string
}

var _ PasswordAuthenticator = LegacyPasswordHasher{}

// HashPassword will generate a legacy fixed-salt digest
func (l LegacyPasswordHasher) HashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", ErrNoEmptyString
	}

	sum := sha256.Sum256([]byte(l.Salt + password))
	return base64.StdEncoding.EncodeToString(sum[:]), nil
}

// ComparePasswordAndHash recomputes the digest and compares in constant
// time
func (l LegacyPasswordHasher) ComparePasswordAndHash(password, hash string) error {
	if password == "" || hash == "" {
		return ErrMismatchedHashAndPassword
	}

	computed, err := l.HashPassword(password)
	if err != nil {
		return ErrMismatchedHashAndPassword
	}

	if subtle.ConstantTimeCompare([]byte(computed), []byte(hash)) != 1 {
		return ErrMismatchedHashAndPassword
	}

	return nil
}

// RandomPasswordHash is a temporary password
func RandomPasswordHash() string {
	pwd := uuid.New()

	h, err := HashPassword(pwd.String())
	if err != nil {
		return RandomPasswordHash()
	}

	return h
}
