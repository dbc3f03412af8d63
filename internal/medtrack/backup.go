package medtrack

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// BackupSnapshot writes an encrypted snapshot of the whole database to the
// vault, replacing any previous snapshot for the profile. Returns the
// version stamp stored with the snapshot.
func (s *Service) BackupSnapshot(vault Vault, enc Encryptor, profileID string) (int64, error) {
	tmpFile, err := os.CreateTemp("", "medtrack-snapshot-*.db")
	if err != nil {
		return 0, fmt.Errorf("creating temp file for snapshot: %w", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()
	// VACUUM INTO refuses to overwrite; reserve the name, then clear it.
	os.Remove(tmpPath)
	defer os.Remove(tmpPath)

	if err := s.store.BackupTo(tmpPath); err != nil {
		return 0, fmt.Errorf("snapshotting database: %w", err)
	}

	f, err := os.Open(tmpPath)
	if err != nil {
		return 0, fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()

	var ciphertext bytes.Buffer
	if err := enc.Encrypt(f, &ciphertext); err != nil {
		return 0, fmt.Errorf("encrypting snapshot: %w", err)
	}

	version := s.clock.Now().Unix()
	if err := vault.PutSnapshot(profileID, &ciphertext, int64(ciphertext.Len()), version); err != nil {
		return 0, fmt.Errorf("uploading snapshot: %w", err)
	}

	s.logger.Info("snapshot stored", "profile", profileID, "version", version)
	return version, nil
}

// RestoreSnapshot fetches the profile's snapshot from the vault, decrypts
// it, and atomically replaces the database file at destPath. The store must
// not be open on destPath while restoring; callers re-open it afterwards.
func RestoreSnapshot(vault Vault, dc DecryptionContext, profileID, destPath string) error {
	var ciphertext bytes.Buffer
	if err := vault.GetSnapshot(profileID, &ciphertext); err != nil {
		return fmt.Errorf("fetching snapshot: %w", err)
	}

	var plaintext bytes.Buffer
	if err := dc.Decrypt(&ciphertext, &plaintext); err != nil {
		return fmt.Errorf("decrypting snapshot: %w", err)
	}

	// Write to a temp file in the destination directory so the final rename
	// is atomic on the same filesystem.
	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}
	tmpFile, err := os.CreateTemp(dir, ".medtrack-restore-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(plaintext.Bytes()); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing restored database: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing restored database: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("replacing database file: %w", err)
	}

	success = true
	return nil
}
