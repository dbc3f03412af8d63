package vault

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"medtrack/internal/medtrack"
)

// FileSystemVault stores encrypted database snapshots in a local directory
// (typically an external drive or a synced folder):
//
//	<root>/
//	  snapshots/
//	    <profileID>.db.age      (encrypted snapshot)
//	    <profileID>.version     (version stamp sidecar)
type FileSystemVault struct {
	name         string
	root         string
	snapshotsDir string
}

// NewFileSystemVault creates a filesystem vault rooted at the given path.
func NewFileSystemVault(name, root string) (*FileSystemVault, error) {
	snapshotsDir := filepath.Join(root, "snapshots")
	if err := os.MkdirAll(snapshotsDir, 0755); err != nil {
		return nil, fmt.Errorf("creating snapshots directory: %w", err)
	}

	return &FileSystemVault{
		name:         name,
		root:         root,
		snapshotsDir: snapshotsDir,
	}, nil
}

// PutSnapshot stores a snapshot for a profile, replacing any previous one,
// and records the version stamp alongside it.
func (v *FileSystemVault) PutSnapshot(profileID string, r io.Reader, size int64, version int64) error {
	destPath := filepath.Join(v.snapshotsDir, profileID+".db.age")
	if err := v.writeFile(destPath, r, size); err != nil {
		return err
	}

	versionPath := filepath.Join(v.snapshotsDir, profileID+".version")
	return os.WriteFile(versionPath, []byte(strconv.FormatInt(version, 10)), 0644)
}

// GetSnapshot retrieves the stored snapshot for a profile and writes it to w.
func (v *FileSystemVault) GetSnapshot(profileID string, w io.Writer) error {
	srcPath := filepath.Join(v.snapshotsDir, profileID+".db.age")

	f, err := os.Open(srcPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("no snapshot stored for profile: %s", profileID)
		}
		return fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("reading snapshot: %w", err)
	}
	return nil
}

// SnapshotVersion returns the version stamp for a profile's snapshot.
// Returns 0 if no snapshot has been stored.
func (v *FileSystemVault) SnapshotVersion(profileID string) (int64, error) {
	versionPath := filepath.Join(v.snapshotsDir, profileID+".version")
	data, err := os.ReadFile(versionPath)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading version file: %w", err)
	}

	version, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing version: %w", err)
	}
	return version, nil
}

// ValidateSetup verifies that the vault directories are accessible.
func (v *FileSystemVault) ValidateSetup() error {
	for _, dir := range []string{v.root, v.snapshotsDir} {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("vault directory not accessible: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("vault path is not a directory: %s", dir)
		}
	}
	return nil
}

// writeFile writes data from r to destPath using atomic write (temp file +
// rename), so a partially written snapshot never replaces a good one.
func (v *FileSystemVault) writeFile(destPath string, r io.Reader, expectedSize int64) error {
	dir := filepath.Dir(destPath)
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
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

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing snapshot data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if written != expectedSize {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", expectedSize, written)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	success = true
	return nil
}

// Compile-time check that FileSystemVault implements medtrack.Vault
var _ medtrack.Vault = (*FileSystemVault)(nil)
