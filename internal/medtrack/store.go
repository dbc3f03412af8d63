package medtrack

import "medtrack/internal/model"

// Store provides access to the two persisted collections: the medication
// roster and the intake record log. Each operation runs in its own
// single-collection transaction; no cross-collection atomicity is provided.
//
// Concurrent writers racing on the same id have last-write-wins semantics
// with no conflict detection. This is a single-user local store.
type Store interface {
	// Medication roster operations

	// InsertMedication inserts a new roster entry. The caller assigns the id.
	// Returns ErrDuplicateID if the id already exists.
	InsertMedication(m *model.Medication) error

	// ListMedications returns all roster entries in storage order.
	// Callers sort if they need a particular order.
	ListMedications() ([]*model.Medication, error)

	// FindMedicationByID returns the roster entry with the given id,
	// or nil (no error) when absent.
	FindMedicationByID(id string) (*model.Medication, error)

	// PutMedication replaces the roster entry keyed by its id, inserting it
	// if absent. Upsert semantics are deliberate: the original client's
	// update unconditionally overwrites by key.
	PutMedication(m *model.Medication) error

	// DeleteMedication removes the entry with the given id.
	// Deleting an absent id is a no-op, not an error.
	DeleteMedication(id string) error

	// Intake record operations

	// InsertRecord inserts a new intake record. The caller assigns the id.
	// Returns ErrDuplicateID if the id already exists.
	InsertRecord(r *model.MedicationRecord) error

	// ListRecords returns all intake records in storage order.
	ListRecords() ([]*model.MedicationRecord, error)

	// FindRecordByID returns the record with the given id, or nil when absent.
	FindRecordByID(id string) (*model.MedicationRecord, error)

	// ListRecordsByDateRange returns all records whose date falls within
	// [startDate, endDate], both bounds inclusive, compared lexicographically
	// (YYYY-MM-DD sorts correctly as a string). A start after the end yields
	// an empty result, not an error.
	ListRecordsByDateRange(startDate, endDate string) ([]*model.MedicationRecord, error)

	// PutRecord replaces the record keyed by its id, inserting it if absent.
	PutRecord(r *model.MedicationRecord) error

	// DeleteRecord removes the record with the given id. No-op when absent.
	DeleteRecord(id string) error

	// BackupTo writes a complete snapshot of the database to destPath.
	BackupTo(destPath string) error

	// Path returns the database file path (":memory:" for in-memory stores).
	Path() string

	// Close closes the database connection.
	Close() error
}
