package vault

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"medtrack/internal/medtrack"
)

// MemoryVault is an in-memory implementation of the Vault interface, useful
// for testing. Safe for concurrent use.
type MemoryVault struct {
	name      string
	snapshots map[string][]byte // profileID -> snapshot bytes
	versions  map[string]int64  // profileID -> version stamp
	mu        sync.RWMutex
}

// NewMemoryVault creates an in-memory vault with the given name.
func NewMemoryVault(name string) *MemoryVault {
	return &MemoryVault{
		name:      name,
		snapshots: make(map[string][]byte),
		versions:  make(map[string]int64),
	}
}

// PutSnapshot stores a snapshot for a profile, replacing any previous one.
func (m *MemoryVault) PutSnapshot(profileID string, r io.Reader, size int64, version int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading snapshot: %w", err)
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.snapshots[profileID] = data
	m.versions[profileID] = version
	return nil
}

// GetSnapshot retrieves the stored snapshot for a profile.
func (m *MemoryVault) GetSnapshot(profileID string, w io.Writer) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.snapshots[profileID]
	if !ok {
		return fmt.Errorf("no snapshot stored for profile: %s", profileID)
	}

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// SnapshotVersion returns the version stamp for a profile's snapshot.
// Returns 0 if no snapshot has been stored.
func (m *MemoryVault) SnapshotVersion(profileID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.versions[profileID], nil
}

// ValidateSetup always succeeds for the in-memory vault.
func (m *MemoryVault) ValidateSetup() error {
	return nil
}

// Compile-time check that MemoryVault implements medtrack.Vault
var _ medtrack.Vault = (*MemoryVault)(nil)
