package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"medtrack/internal/medtrack"
	"medtrack/internal/model"
	"medtrack/internal/store/migrations"
)

// SQLiteStore implements the medtrack.Store interface using SQLite. Every
// operation is a single statement and therefore transactional on its own
// collection; SQLite's serialization provides the per-transaction semantics
// the repositories rely on.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (creating if necessary) the database at path and runs
// the schema migration pipeline before returning the handle. path can be a
// file path or ":memory:".
//
// A failed open or migration closes the connection and returns an error
// wrapping medtrack.ErrStorageUnavailable or medtrack.ErrSchemaUpgradeFailed
// respectively; no handle escapes, so retrying means opening from scratch.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", medtrack.ErrStorageUnavailable, err)
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", medtrack.ErrSchemaUpgradeFailed, err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// NewSQLiteStoreFromDB wraps an existing connection without running
// migrations. The caller is responsible for the connection's schema state
// and for closing it; used by tests that build fixtures at historical
// schema versions.
func NewSQLiteStoreFromDB(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, path: ""}
}

// OpenConnection opens and configures a SQLite connection with appropriate
// PRAGMAs. Exported for tests and tools that need a raw configured
// connection. path can be a file path or ":memory:".
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// A :memory: database exists per connection; pinning the pool to a
	// single connection keeps one coherent database. File databases are
	// single-writer anyway.
	db.SetMaxOpenConns(1)

	// Also verifies the underlying store is actually reachable: sql.Open is
	// lazy and does not touch the file.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("configuring database: %w", err)
	}

	return db, nil
}

// Medication roster operations

func (s *SQLiteStore) InsertMedication(m *model.Medication) error {
	timings, err := marshalJSON(m.Timings)
	if err != nil {
		return fmt.Errorf("encoding timings: %w", err)
	}

	_, err = s.db.Exec(
		"INSERT INTO medications (id, name, dosage, memo, timings) VALUES (?, ?, ?, ?, ?)",
		m.ID, m.Name, m.Dosage, m.Memo, timings,
	)
	if err != nil {
		if isPrimaryKeyConflict(err) {
			return fmt.Errorf("medication %s: %w", m.ID, medtrack.ErrDuplicateID)
		}
		return fmt.Errorf("inserting medication: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListMedications() ([]*model.Medication, error) {
	rows, err := s.db.Query("SELECT id, name, dosage, memo, timings FROM medications")
	if err != nil {
		return nil, fmt.Errorf("listing medications: %w", err)
	}
	defer rows.Close()

	var meds []*model.Medication
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, err
		}
		meds = append(meds, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing medications: %w", err)
	}
	return meds, nil
}

func (s *SQLiteStore) FindMedicationByID(id string) (*model.Medication, error) {
	row := s.db.QueryRow("SELECT id, name, dosage, memo, timings FROM medications WHERE id = ?", id)
	m, err := scanMedication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *SQLiteStore) PutMedication(m *model.Medication) error {
	timings, err := marshalJSON(m.Timings)
	if err != nil {
		return fmt.Errorf("encoding timings: %w", err)
	}

	// Upsert by id: the update operation overwrites regardless of prior
	// existence, matching the original client's put-by-key behavior.
	_, err = s.db.Exec(`
		INSERT INTO medications (id, name, dosage, memo, timings) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			dosage = excluded.dosage,
			memo = excluded.memo,
			timings = excluded.timings`,
		m.ID, m.Name, m.Dosage, m.Memo, timings,
	)
	if err != nil {
		return fmt.Errorf("storing medication: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteMedication(id string) error {
	if _, err := s.db.Exec("DELETE FROM medications WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting medication: %w", err)
	}
	return nil
}

// Intake record operations

func (s *SQLiteStore) InsertRecord(r *model.MedicationRecord) error {
	items, err := marshalJSON(r.Items)
	if err != nil {
		return fmt.Errorf("encoding record items: %w", err)
	}

	_, err = s.db.Exec(
		"INSERT INTO medication_records (id, date, time, timing, items, record_memo) VALUES (?, ?, ?, ?, ?, ?)",
		r.ID, r.Date, r.Time, string(r.Timing), items, r.RecordMemo,
	)
	if err != nil {
		if isPrimaryKeyConflict(err) {
			return fmt.Errorf("record %s: %w", r.ID, medtrack.ErrDuplicateID)
		}
		return fmt.Errorf("inserting record: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListRecords() ([]*model.MedicationRecord, error) {
	rows, err := s.db.Query("SELECT id, date, time, timing, items, record_memo FROM medication_records")
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

func (s *SQLiteStore) FindRecordByID(id string) (*model.MedicationRecord, error) {
	row := s.db.QueryRow("SELECT id, date, time, timing, items, record_memo FROM medication_records WHERE id = ?", id)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *SQLiteStore) ListRecordsByDateRange(startDate, endDate string) ([]*model.MedicationRecord, error) {
	// Inclusive on both bounds, compared lexicographically over the date
	// index. An inverted range matches nothing and yields an empty result.
	rows, err := s.db.Query(
		"SELECT id, date, time, timing, items, record_memo FROM medication_records WHERE date >= ? AND date <= ?",
		startDate, endDate,
	)
	if err != nil {
		return nil, fmt.Errorf("listing records by date range: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

func (s *SQLiteStore) PutRecord(r *model.MedicationRecord) error {
	items, err := marshalJSON(r.Items)
	if err != nil {
		return fmt.Errorf("encoding record items: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO medication_records (id, date, time, timing, items, record_memo) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			date = excluded.date,
			time = excluded.time,
			timing = excluded.timing,
			items = excluded.items,
			record_memo = excluded.record_memo`,
		r.ID, r.Date, r.Time, string(r.Timing), items, r.RecordMemo,
	)
	if err != nil {
		return fmt.Errorf("storing record: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteRecord(id string) error {
	if _, err := s.db.Exec("DELETE FROM medication_records WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting record: %w", err)
	}
	return nil
}

// BackupTo creates a complete copy of the database at destPath using VACUUM INTO.
func (s *SQLiteStore) BackupTo(destPath string) error {
	if _, err := s.db.Exec("VACUUM INTO ?", destPath); err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	return nil
}

// SchemaVersion returns the applied schema version of the open database.
func (s *SQLiteStore) SchemaVersion() (uint, error) {
	version, dirty, err := migrations.SchemaVersion(s.db)
	if err != nil {
		return 0, err
	}
	if dirty {
		return version, fmt.Errorf("database is dirty at version %d", version)
	}
	return version, nil
}

// Path returns the database file path (or ":memory:" for in-memory stores).
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanMedication(row rowScanner) (*model.Medication, error) {
	var m model.Medication
	var timings string
	if err := row.Scan(&m.ID, &m.Name, &m.Dosage, &m.Memo, &timings); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning medication: %w", err)
	}
	if err := json.Unmarshal([]byte(timings), &m.Timings); err != nil {
		return nil, fmt.Errorf("decoding timings: %w", err)
	}
	return &m, nil
}

func scanRecord(row rowScanner) (*model.MedicationRecord, error) {
	var r model.MedicationRecord
	var timing, items string
	if err := row.Scan(&r.ID, &r.Date, &r.Time, &timing, &items, &r.RecordMemo); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning record: %w", err)
	}
	r.Timing = model.Timing(timing)
	if err := json.Unmarshal([]byte(items), &r.Items); err != nil {
		return nil, fmt.Errorf("decoding record items: %w", err)
	}
	return &r, nil
}

func collectRecords(rows *sql.Rows) ([]*model.MedicationRecord, error) {
	var recs []*model.MedicationRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading records: %w", err)
	}
	return recs, nil
}

// marshalJSON encodes a structured column value, storing nil slices as "[]"
// rather than "null" so decoding round-trips cleanly.
func marshalJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	if string(data) == "null" {
		return "[]", nil
	}
	return string(data), nil
}

// isPrimaryKeyConflict reports whether err is a SQLite constraint violation,
// which for these tables can only be a primary-key collision.
func isPrimaryKeyConflict(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint
}

// Compile-time check that SQLiteStore implements the medtrack.Store interface
var _ medtrack.Store = (*SQLiteStore)(nil)
