package testutil

import (
	"medtrack/internal/encryption"
	"medtrack/internal/medtrack"
)

// NewTestEncryptor returns a deterministic encryptor for testing.
func NewTestEncryptor() medtrack.Encryptor {
	return encryption.NewTestEncryptor()
}
