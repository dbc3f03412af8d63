package vault

import (
	"fmt"

	"medtrack/internal/config"
	"medtrack/internal/medtrack"
)

// NewVaultFromConfig creates a Vault implementation based on the vault
// config type.
func NewVaultFromConfig(cfg config.VaultConfig) (medtrack.Vault, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryVault(cfg.Name), nil
	case "filesystem":
		if cfg.FSVaultRoot == "" {
			return nil, fmt.Errorf("filesystem vault requires fs_vault_root to be set")
		}
		return NewFileSystemVault(cfg.Name, cfg.FSVaultRoot)
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("s3 vault requires s3_bucket to be set")
		}
		return NewS3Vault(cfg)
	default:
		return nil, fmt.Errorf("unknown vault type: %s", cfg.Type)
	}
}
