// Package auth implements the credential digest shared by registration and
// login.
package auth

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest returns the hex SHA-256 digest of a password. The scheme is
// deliberately deterministic and unsalted so digests stored by earlier
// deployments keep verifying; registration and authentication must both go
// through it.
func Digest(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}
