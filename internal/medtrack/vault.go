package medtrack

import "io"

// Vault provides an interface for snapshot storage backends. A snapshot is
// one encrypted copy of the whole database, keyed by the owning profile.
// Operations use io.Reader/io.Writer for streaming.
type Vault interface {
	// PutSnapshot stores a database snapshot for a profile, replacing any
	// previous one. size is the number of bytes that will be read from r.
	// version is stored alongside the snapshot; a later restore can compare
	// it against local state.
	PutSnapshot(profileID string, r io.Reader, size int64, version int64) error

	// GetSnapshot retrieves the stored snapshot for a profile and writes it to w.
	GetSnapshot(profileID string, w io.Writer) error

	// SnapshotVersion returns the version stored with a profile's snapshot.
	// Returns 0 if no snapshot has been stored.
	SnapshotVersion(profileID string) (int64, error)

	// ValidateSetup verifies that the vault is accessible and properly configured.
	ValidateSetup() error
}
