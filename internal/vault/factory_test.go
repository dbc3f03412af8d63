package vault_test

import (
	"testing"

	"medtrack/internal/config"
	"medtrack/internal/vault"
)

func TestNewVaultFromConfig(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		v, err := vault.NewVaultFromConfig(config.VaultConfig{Type: "memory", Name: "m"})
		if err != nil {
			t.Fatalf("NewVaultFromConfig failed: %v", err)
		}
		if _, ok := v.(*vault.MemoryVault); !ok {
			t.Errorf("expected *MemoryVault, got %T", v)
		}
	})

	t.Run("filesystem", func(t *testing.T) {
		v, err := vault.NewVaultFromConfig(config.VaultConfig{
			Type:        "filesystem",
			Name:        "fs",
			FSVaultRoot: t.TempDir(),
		})
		if err != nil {
			t.Fatalf("NewVaultFromConfig failed: %v", err)
		}
		if _, ok := v.(*vault.FileSystemVault); !ok {
			t.Errorf("expected *FileSystemVault, got %T", v)
		}
	})

	t.Run("filesystem without root fails", func(t *testing.T) {
		_, err := vault.NewVaultFromConfig(config.VaultConfig{Type: "filesystem", Name: "fs"})
		if err == nil {
			t.Error("expected error for missing fs_vault_root")
		}
	})

	t.Run("s3 without bucket fails", func(t *testing.T) {
		_, err := vault.NewVaultFromConfig(config.VaultConfig{Type: "s3", Name: "offsite"})
		if err == nil {
			t.Error("expected error for missing s3_bucket")
		}
	})

	t.Run("unknown type fails", func(t *testing.T) {
		_, err := vault.NewVaultFromConfig(config.VaultConfig{Type: "carrier-pigeon"})
		if err == nil {
			t.Error("expected error for unknown vault type")
		}
	})
}
