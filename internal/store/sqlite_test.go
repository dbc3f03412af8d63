package store_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"medtrack/internal/medtrack"
	"medtrack/internal/model"
	"medtrack/internal/store"
	"medtrack/internal/testutil"
)

func sampleMedication(id string) *model.Medication {
	return &model.Medication{
		ID:      id,
		Name:    "Drug A",
		Dosage:  "1 tablet",
		Memo:    "after meals",
		Timings: []model.Timing{model.TimingMorning, model.TimingEvening},
	}
}

func sampleRecord(id, date string) *model.MedicationRecord {
	return &model.MedicationRecord{
		ID:     id,
		Date:   date,
		Time:   "08:00",
		Timing: model.TimingMorning,
		Items: []model.RecordItem{
			{Name: "Drug A", Dosage: "1 tablet"},
		},
		RecordMemo: "with water",
	}
}

func TestSQLiteStoreMedications(t *testing.T) {
	t.Run("insert and find round-trips all fields", func(t *testing.T) {
		s := testutil.NewTestStore(t)

		want := sampleMedication("med-1")
		if err := s.InsertMedication(want); err != nil {
			t.Fatalf("InsertMedication failed: %v", err)
		}

		got, err := s.FindMedicationByID("med-1")
		if err != nil {
			t.Fatalf("FindMedicationByID failed: %v", err)
		}
		if got == nil {
			t.Fatal("expected medication, got nil")
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %+v, want %+v", got, want)
		}
	})

	t.Run("insert with duplicate id fails", func(t *testing.T) {
		s := testutil.NewTestStore(t)

		if err := s.InsertMedication(sampleMedication("med-1")); err != nil {
			t.Fatalf("first insert failed: %v", err)
		}

		err := s.InsertMedication(sampleMedication("med-1"))
		if !errors.Is(err, medtrack.ErrDuplicateID) {
			t.Errorf("expected ErrDuplicateID, got %v", err)
		}
	})

	t.Run("find returns nil for missing id", func(t *testing.T) {
		s := testutil.NewTestStore(t)

		got, err := s.FindMedicationByID("nope")
		if err != nil {
			t.Fatalf("FindMedicationByID failed: %v", err)
		}
		if got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})

	t.Run("list returns all medications", func(t *testing.T) {
		s := testutil.NewTestStore(t)

		for _, id := range []string{"med-1", "med-2", "med-3"} {
			if err := s.InsertMedication(sampleMedication(id)); err != nil {
				t.Fatalf("insert %s failed: %v", id, err)
			}
		}

		meds, err := s.ListMedications()
		if err != nil {
			t.Fatalf("ListMedications failed: %v", err)
		}
		if len(meds) != 3 {
			t.Errorf("expected 3 medications, got %d", len(meds))
		}
	})

	t.Run("put overwrites existing row, id unchanged", func(t *testing.T) {
		s := testutil.NewTestStore(t)

		if err := s.InsertMedication(sampleMedication("med-1")); err != nil {
			t.Fatalf("insert failed: %v", err)
		}

		updated := sampleMedication("med-1")
		updated.Dosage = "2 tablets"
		updated.Timings = []model.Timing{model.TimingNoon}
		if err := s.PutMedication(updated); err != nil {
			t.Fatalf("PutMedication failed: %v", err)
		}

		got, err := s.FindMedicationByID("med-1")
		if err != nil {
			t.Fatalf("FindMedicationByID failed: %v", err)
		}
		if got.Dosage != "2 tablets" {
			t.Errorf("expected updated dosage, got %q", got.Dosage)
		}
		if !reflect.DeepEqual(got.Timings, []model.Timing{model.TimingNoon}) {
			t.Errorf("expected updated timings, got %v", got.Timings)
		}

		meds, err := s.ListMedications()
		if err != nil {
			t.Fatalf("ListMedications failed: %v", err)
		}
		if len(meds) != 1 {
			t.Errorf("expected 1 medication after put, got %d", len(meds))
		}
	})

	t.Run("put inserts when id is absent", func(t *testing.T) {
		s := testutil.NewTestStore(t)

		if err := s.PutMedication(sampleMedication("med-1")); err != nil {
			t.Fatalf("PutMedication failed: %v", err)
		}

		got, err := s.FindMedicationByID("med-1")
		if err != nil {
			t.Fatalf("FindMedicationByID failed: %v", err)
		}
		if got == nil {
			t.Fatal("expected medication to have been inserted")
		}
	})

	t.Run("delete removes row and is a no-op when absent", func(t *testing.T) {
		s := testutil.NewTestStore(t)

		if err := s.InsertMedication(sampleMedication("med-1")); err != nil {
			t.Fatalf("insert failed: %v", err)
		}

		if err := s.DeleteMedication("med-1"); err != nil {
			t.Fatalf("DeleteMedication failed: %v", err)
		}
		got, err := s.FindMedicationByID("med-1")
		if err != nil {
			t.Fatalf("FindMedicationByID failed: %v", err)
		}
		if got != nil {
			t.Errorf("expected medication to be gone, got %+v", got)
		}

		if err := s.DeleteMedication("med-1"); err != nil {
			t.Errorf("second delete should be a no-op, got %v", err)
		}
	})

	t.Run("nil timings round-trip as empty", func(t *testing.T) {
		s := testutil.NewTestStore(t)

		m := sampleMedication("med-1")
		m.Timings = nil
		if err := s.InsertMedication(m); err != nil {
			t.Fatalf("insert failed: %v", err)
		}

		got, err := s.FindMedicationByID("med-1")
		if err != nil {
			t.Fatalf("FindMedicationByID failed: %v", err)
		}
		if len(got.Timings) != 0 {
			t.Errorf("expected no timings, got %v", got.Timings)
		}
	})
}

func TestSQLiteStoreRecords(t *testing.T) {
	t.Run("insert and find round-trips all fields", func(t *testing.T) {
		s := testutil.NewTestStore(t)

		want := sampleRecord("rec-1", "2024-05-28")
		want.Items = []model.RecordItem{
			{Name: "Drug A", Dosage: "1 tablet", ActualDosage: "half tablet", Memo: "felt dizzy"},
			{Name: "Drug B", Dosage: "5mg"},
		}
		if err := s.InsertRecord(want); err != nil {
			t.Fatalf("InsertRecord failed: %v", err)
		}

		got, err := s.FindRecordByID("rec-1")
		if err != nil {
			t.Fatalf("FindRecordByID failed: %v", err)
		}
		if got == nil {
			t.Fatal("expected record, got nil")
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %+v, want %+v", got, want)
		}
	})

	t.Run("insert with duplicate id fails", func(t *testing.T) {
		s := testutil.NewTestStore(t)

		if err := s.InsertRecord(sampleRecord("rec-1", "2024-05-28")); err != nil {
			t.Fatalf("first insert failed: %v", err)
		}

		err := s.InsertRecord(sampleRecord("rec-1", "2024-05-29"))
		if !errors.Is(err, medtrack.ErrDuplicateID) {
			t.Errorf("expected ErrDuplicateID, got %v", err)
		}
	})

	t.Run("find returns nil for missing id", func(t *testing.T) {
		s := testutil.NewTestStore(t)

		got, err := s.FindRecordByID("nope")
		if err != nil {
			t.Fatalf("FindRecordByID failed: %v", err)
		}
		if got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})

	t.Run("put overwrites and preserves id", func(t *testing.T) {
		s := testutil.NewTestStore(t)

		if err := s.InsertRecord(sampleRecord("rec-1", "2024-05-28")); err != nil {
			t.Fatalf("insert failed: %v", err)
		}

		updated := sampleRecord("rec-1", "2024-05-28")
		updated.Time = "09:00"
		if err := s.PutRecord(updated); err != nil {
			t.Fatalf("PutRecord failed: %v", err)
		}

		got, err := s.FindRecordByID("rec-1")
		if err != nil {
			t.Fatalf("FindRecordByID failed: %v", err)
		}
		if got.Time != "09:00" {
			t.Errorf("expected updated time 09:00, got %q", got.Time)
		}
		if got.ID != "rec-1" {
			t.Errorf("id changed on update: %q", got.ID)
		}
	})

	t.Run("delete is a no-op when absent", func(t *testing.T) {
		s := testutil.NewTestStore(t)

		if err := s.DeleteRecord("nope"); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})
}

func TestSQLiteStoreDateRange(t *testing.T) {
	setup := func(t *testing.T) *store.SQLiteStore {
		t.Helper()
		s := testutil.NewTestStore(t)
		for i, date := range []string{"2024-05-27", "2024-05-28", "2024-05-29", "2024-06-01"} {
			r := sampleRecord("rec-"+string(rune('a'+i)), date)
			if err := s.InsertRecord(r); err != nil {
				t.Fatalf("insert for %s failed: %v", date, err)
			}
		}
		return s
	}

	t.Run("range bounds are inclusive", func(t *testing.T) {
		s := setup(t)

		recs, err := s.ListRecordsByDateRange("2024-05-28", "2024-05-29")
		if err != nil {
			t.Fatalf("ListRecordsByDateRange failed: %v", err)
		}
		if len(recs) != 2 {
			t.Fatalf("expected 2 records, got %d", len(recs))
		}
		for _, r := range recs {
			if r.Date < "2024-05-28" || r.Date > "2024-05-29" {
				t.Errorf("record %s dated %s is outside the range", r.ID, r.Date)
			}
		}
	})

	t.Run("single-day range matches only that day", func(t *testing.T) {
		s := setup(t)

		recs, err := s.ListRecordsByDateRange("2024-05-28", "2024-05-28")
		if err != nil {
			t.Fatalf("ListRecordsByDateRange failed: %v", err)
		}
		if len(recs) != 1 {
			t.Fatalf("expected 1 record, got %d", len(recs))
		}
		if recs[0].Date != "2024-05-28" {
			t.Errorf("expected 2024-05-28, got %s", recs[0].Date)
		}
	})

	t.Run("inverted range yields empty result", func(t *testing.T) {
		s := setup(t)

		recs, err := s.ListRecordsByDateRange("2024-05-29", "2024-05-28")
		if err != nil {
			t.Fatalf("ListRecordsByDateRange failed: %v", err)
		}
		if len(recs) != 0 {
			t.Errorf("expected no records, got %d", len(recs))
		}
	})

	t.Run("range with no matches yields empty result", func(t *testing.T) {
		s := setup(t)

		recs, err := s.ListRecordsByDateRange("2023-01-01", "2023-12-31")
		if err != nil {
			t.Fatalf("ListRecordsByDateRange failed: %v", err)
		}
		if len(recs) != 0 {
			t.Errorf("expected no records, got %d", len(recs))
		}
	})

	t.Run("month boundary compares lexicographically", func(t *testing.T) {
		s := setup(t)

		recs, err := s.ListRecordsByDateRange("2024-05-29", "2024-06-01")
		if err != nil {
			t.Fatalf("ListRecordsByDateRange failed: %v", err)
		}
		if len(recs) != 2 {
			t.Errorf("expected 2 records across the month boundary, got %d", len(recs))
		}
	})
}

func TestNewSQLiteStore(t *testing.T) {
	t.Run("creates the database file and applies migrations", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.db")

		s, err := store.NewSQLiteStore(path)
		if err != nil {
			t.Fatalf("NewSQLiteStore failed: %v", err)
		}
		defer s.Close()

		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected database file to exist: %v", err)
		}

		version, err := s.SchemaVersion()
		if err != nil {
			t.Fatalf("SchemaVersion failed: %v", err)
		}
		if version != 2 {
			t.Errorf("expected schema version 2, got %d", version)
		}
	})

	t.Run("reopening an existing database is a no-op migration", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.db")

		s1, err := store.NewSQLiteStore(path)
		if err != nil {
			t.Fatalf("first open failed: %v", err)
		}
		if err := s1.InsertMedication(sampleMedication("med-1")); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
		if err := s1.Close(); err != nil {
			t.Fatalf("close failed: %v", err)
		}

		s2, err := store.NewSQLiteStore(path)
		if err != nil {
			t.Fatalf("second open failed: %v", err)
		}
		defer s2.Close()

		got, err := s2.FindMedicationByID("med-1")
		if err != nil {
			t.Fatalf("FindMedicationByID failed: %v", err)
		}
		if got == nil {
			t.Error("expected data to survive reopen")
		}
	})

	t.Run("unreachable path reports storage unavailable", func(t *testing.T) {
		_, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "missing", "nested", "test.db"))
		if !errors.Is(err, medtrack.ErrStorageUnavailable) {
			t.Errorf("expected ErrStorageUnavailable, got %v", err)
		}
	})
}

func TestSQLiteStoreBackupTo(t *testing.T) {
	dir := t.TempDir()
	src, err := store.NewSQLiteStore(filepath.Join(dir, "source.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer src.Close()

	if err := src.InsertMedication(sampleMedication("med-1")); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	backupPath := filepath.Join(dir, "backup.db")
	if err := src.BackupTo(backupPath); err != nil {
		t.Fatalf("BackupTo failed: %v", err)
	}

	dst, err := store.NewSQLiteStore(backupPath)
	if err != nil {
		t.Fatalf("opening backup failed: %v", err)
	}
	defer dst.Close()

	got, err := dst.FindMedicationByID("med-1")
	if err != nil {
		t.Fatalf("FindMedicationByID on backup failed: %v", err)
	}
	if got == nil {
		t.Error("expected backup to contain the medication")
	}
}
