package medtrack

import (
	"fmt"
	"time"

	"medtrack/internal/model"
)

// Service is the orchestration layer between the CLI and the Store. It owns
// validation, id assignment, and logging; the Store owns persistence.
type Service struct {
	store  Store
	logger Logger
	clock  Clock
	idgen  IDGenerator
}

// NewService creates a new Service with the provided dependencies.
func NewService(store Store, logger Logger, clock Clock, idgen IDGenerator) *Service {
	return &Service{
		store:  store,
		logger: logger,
		clock:  clock,
		idgen:  idgen,
	}
}

// AddMedication validates a roster entry, assigns it a fresh id, and stores
// it. Returns the stored entity including the id.
func (s *Service) AddMedication(m model.Medication) (*model.Medication, error) {
	if err := validateMedication(&m); err != nil {
		return nil, err
	}

	m.ID = s.idgen.New()
	if err := s.store.InsertMedication(&m); err != nil {
		// ErrDuplicateID is practically unreachable with random UUIDs but is
		// still surfaced rather than swallowed.
		return nil, fmt.Errorf("inserting medication: %w", err)
	}

	s.logger.Info("medication added", "id", m.ID, "name", m.Name)
	return &m, nil
}

// Medications returns the full roster, unordered.
func (s *Service) Medications() ([]*model.Medication, error) {
	meds, err := s.store.ListMedications()
	if err != nil {
		return nil, fmt.Errorf("listing medications: %w", err)
	}
	return meds, nil
}

// Medication returns the roster entry with the given id.
// Returns ErrNotFound when absent.
func (s *Service) Medication(id string) (*model.Medication, error) {
	m, err := s.store.FindMedicationByID(id)
	if err != nil {
		return nil, fmt.Errorf("finding medication: %w", err)
	}
	if m == nil {
		return nil, fmt.Errorf("medication %s: %w", id, ErrNotFound)
	}
	return m, nil
}

// UpdateMedication replaces a roster entry keyed by its id. The id must be
// set; the entry is upserted (see Store.PutMedication).
func (s *Service) UpdateMedication(m model.Medication) error {
	if m.ID == "" {
		return fmt.Errorf("medication id is required for update")
	}
	if err := validateMedication(&m); err != nil {
		return err
	}

	if err := s.store.PutMedication(&m); err != nil {
		return fmt.Errorf("updating medication: %w", err)
	}

	s.logger.Info("medication updated", "id", m.ID, "name", m.Name)
	return nil
}

// RemoveMedication deletes a roster entry. Removing an absent id is a no-op.
// Historical records keep their denormalized name/dosage snapshots.
func (s *Service) RemoveMedication(id string) error {
	if err := s.store.DeleteMedication(id); err != nil {
		return fmt.Errorf("removing medication: %w", err)
	}
	s.logger.Info("medication removed", "id", id)
	return nil
}

// AddRecord validates an intake record, assigns it a fresh id, and stores
// it. Returns the stored record including the id.
func (s *Service) AddRecord(r model.MedicationRecord) (*model.MedicationRecord, error) {
	if err := validateRecord(&r); err != nil {
		return nil, err
	}

	r.ID = s.idgen.New()
	if err := s.store.InsertRecord(&r); err != nil {
		return nil, fmt.Errorf("inserting record: %w", err)
	}

	s.logger.Info("record added", "id", r.ID, "date", r.Date, "time", r.Time)
	return &r, nil
}

// Records returns all intake records, unordered. Use History for the
// grouped, sorted view.
func (s *Service) Records() ([]*model.MedicationRecord, error) {
	recs, err := s.store.ListRecords()
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	return recs, nil
}

// Record returns the intake record with the given id.
// Returns ErrNotFound when absent.
func (s *Service) Record(id string) (*model.MedicationRecord, error) {
	r, err := s.store.FindRecordByID(id)
	if err != nil {
		return nil, fmt.Errorf("finding record: %w", err)
	}
	if r == nil {
		return nil, fmt.Errorf("record %s: %w", id, ErrNotFound)
	}
	return r, nil
}

// RecordsByDateRange returns all records dated within [startDate, endDate],
// both inclusive. An inverted range yields an empty result.
func (s *Service) RecordsByDateRange(startDate, endDate string) ([]*model.MedicationRecord, error) {
	if err := validateDate(startDate); err != nil {
		return nil, fmt.Errorf("start date: %w", err)
	}
	if err := validateDate(endDate); err != nil {
		return nil, fmt.Errorf("end date: %w", err)
	}

	recs, err := s.store.ListRecordsByDateRange(startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("listing records by date range: %w", err)
	}
	return recs, nil
}

// UpdateRecord replaces an intake record keyed by its id (upsert, see
// Store.PutRecord).
func (s *Service) UpdateRecord(r model.MedicationRecord) error {
	if r.ID == "" {
		return fmt.Errorf("record id is required for update")
	}
	if err := validateRecord(&r); err != nil {
		return err
	}

	if err := s.store.PutRecord(&r); err != nil {
		return fmt.Errorf("updating record: %w", err)
	}

	s.logger.Info("record updated", "id", r.ID, "date", r.Date)
	return nil
}

// RemoveRecord deletes an intake record. Removing an absent id is a no-op.
func (s *Service) RemoveRecord(id string) error {
	if err := s.store.DeleteRecord(id); err != nil {
		return fmt.Errorf("removing record: %w", err)
	}
	s.logger.Info("record removed", "id", id)
	return nil
}

// validateMedication checks the invariants required to persist a roster entry.
func validateMedication(m *model.Medication) error {
	if m.Name == "" {
		return fmt.Errorf("medication name is required")
	}
	if m.Dosage == "" {
		return fmt.Errorf("medication dosage is required")
	}
	for _, t := range m.Timings {
		if !model.ValidTiming(t) {
			return fmt.Errorf("unknown timing slot: %q", t)
		}
	}
	return nil
}

// validateRecord checks the invariants required to persist an intake record.
// The record must carry at least one line item: the store itself permits
// empty item lists, but every producing surface refuses to save one.
func validateRecord(r *model.MedicationRecord) error {
	if err := validateDate(r.Date); err != nil {
		return err
	}
	if _, err := time.Parse("15:04", r.Time); err != nil {
		return fmt.Errorf("invalid time %q: expected HH:MM", r.Time)
	}
	if r.Timing != "" && !model.ValidTiming(r.Timing) {
		return fmt.Errorf("unknown timing slot: %q", r.Timing)
	}
	if len(r.Items) == 0 {
		return fmt.Errorf("record must contain at least one medication")
	}
	for _, item := range r.Items {
		if item.Name == "" {
			return fmt.Errorf("record item name is required")
		}
	}
	return nil
}

// validateDate checks that s is a real calendar date in YYYY-MM-DD form.
// Range queries compare dates lexicographically, which is only correct for
// well-formed dates.
func validateDate(s string) error {
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return nil
}
