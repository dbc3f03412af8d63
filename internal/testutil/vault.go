package testutil

import (
	"medtrack/internal/medtrack"
	"medtrack/internal/vault"
)

// NewTestVault creates a new in-memory vault for testing.
func NewTestVault() medtrack.Vault {
	return vault.NewMemoryVault("test-vault")
}
