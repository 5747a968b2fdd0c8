package auth

import (
	"runtime"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordHashCost is the floor we accept for bcrypt. Digests written
// with a different cost keep verifying: bcrypt encodes cost and salt into
// the digest itself, so tuning the cost never invalidates existing records.
const MinPasswordHashCost = 10

// maxPasswordBytes is the longest cleartext bcrypt will key off.
const maxPasswordBytes = 72

// Hasher derives and verifies salted bcrypt digests. The gate caps how many
// derivations run at once so a burst of logins cannot starve request
// handling with CPU-bound work.
type Hasher struct {
	cost int
	gate chan struct{}
}

// NewHasher returns a Hasher with the given cost, clamped to
// MinPasswordHashCost. Pass 0 to use the build's default cost.
func NewHasher(cost int) *Hasher {
	if cost <= 0 {
		cost = passwordHashCost()
	}
	if cost < MinPasswordHashCost {
		cost = MinPasswordHashCost
	}

	return &Hasher{
		cost: cost,
		gate: make(chan struct{}, runtime.GOMAXPROCS(0)),
	}
}

// Hash will generate a password hash
func (h *Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	// bcrypt only keys off the first 72 bytes and newer x/crypto versions
	// refuse longer inputs outright
	if len(password) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	h.gate <- struct{}{}
	defer func() { <-h.gate }()

	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}
	return string(b), nil
}

// Compare validates the given cleartext password against the digest.
// Returns ErrMismatchedHashAndPassword on mismatch.
func (h *Hasher) Compare(password, hash string) error {
	h.gate <- struct{}{}
	defer func() { <-h.gate }()

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if goerrors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedHashAndPassword
		}
		return err
	}
	return nil
}

// Check is the boolean form of Compare. A malformed digest is a plain
// false, never a panic or a distinct error path.
func (h *Hasher) Check(password, hash string) bool {
	return h.Compare(password, hash) == nil
}

var defaultHasher = NewHasher(0)

// HashPassword will generate a password hash using the default Hasher.
func HashPassword(password string) (string, error) {
	return defaultHasher.Hash(password)
}

// ComparePasswordAndHash will validate the given cleartext
// password matches the hashed password
func ComparePasswordAndHash(password, hash string) error {
	return defaultHasher.Compare(password, hash)
}

// RandomPasswordHash is a throwaway digest. The authenticator burns one
// compare against it when login hits an unknown identifier, so both
// failure arms cost the same.
func RandomPasswordHash() string {
	pwd := uuid.New()

	h, err := HashPassword(pwd.String())
	if err != nil {
		return RandomPasswordHash()
	}

	return h
}
