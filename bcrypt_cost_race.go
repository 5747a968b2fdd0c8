//go:build race

package auth

import "golang.org/x/crypto/bcrypt"

// Race-enabled test binaries pay an order of magnitude more per bcrypt
// round. Keep the suite responsive by using the library minimum there.
func passwordHashCost() int {
	return bcrypt.DefaultCost
}
