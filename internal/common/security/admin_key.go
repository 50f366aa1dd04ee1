package security

import (
	"debug_contest/internal/platform/config"

	"golang.org/x/crypto/bcrypt"
)

// CheckAdminKey compares a presented operator key against the bcrypt hash
// from configuration. An empty configured hash disables the admin surface
// entirely rather than leaving it open.
func CheckAdminKey(presented string) bool {
	hash := config.AppConfig.AdminKeyHash
	if hash == "" || presented == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(presented)) == nil
}
