package medtrack_test

import (
	"path/filepath"
	"testing"
	"time"

	"medtrack/internal/medtrack"
	"medtrack/internal/model"
	"medtrack/internal/store"
	"medtrack/internal/testutil"
)

func TestBackupAndRestoreSnapshot(t *testing.T) {
	t.Run("round-trips the database through the vault", func(t *testing.T) {
		st := testutil.NewTestStore(t)
		clock := testutil.FixedClock()
		svc := medtrack.NewService(st, medtrack.NewNopLogger(), clock, testutil.NewStubIDGenerator())

		added, err := svc.AddMedication(model.Medication{
			Name:    "Drug A",
			Dosage:  "1 tablet",
			Timings: []model.Timing{model.TimingMorning},
		})
		if err != nil {
			t.Fatalf("add failed: %v", err)
		}

		vault := testutil.NewTestVault()
		enc := testutil.NewTestEncryptor()

		version, err := svc.BackupSnapshot(vault, enc, "profile-1")
		if err != nil {
			t.Fatalf("BackupSnapshot failed: %v", err)
		}
		if want := clock.Now().Unix(); version != want {
			t.Errorf("expected version %d, got %d", want, version)
		}

		stored, err := vault.SnapshotVersion("profile-1")
		if err != nil {
			t.Fatalf("SnapshotVersion failed: %v", err)
		}
		if stored != version {
			t.Errorf("vault reports version %d, backup returned %d", stored, version)
		}

		dc, err := enc.Unlock("ignored")
		if err != nil {
			t.Fatalf("Unlock failed: %v", err)
		}

		destPath := filepath.Join(t.TempDir(), "restored.db")
		if err := medtrack.RestoreSnapshot(vault, dc, "profile-1", destPath); err != nil {
			t.Fatalf("RestoreSnapshot failed: %v", err)
		}

		restored, err := store.NewSQLiteStore(destPath)
		if err != nil {
			t.Fatalf("opening restored database failed: %v", err)
		}
		defer restored.Close()

		got, err := restored.FindMedicationByID(added.ID)
		if err != nil {
			t.Fatalf("FindMedicationByID failed: %v", err)
		}
		if got == nil {
			t.Fatal("expected restored database to contain the medication")
		}
		if got.Name != "Drug A" {
			t.Errorf("restored entry mismatch: %+v", got)
		}
	})

	t.Run("second backup replaces the first", func(t *testing.T) {
		st := testutil.NewTestStore(t)
		clock := testutil.FixedClock()
		svc := medtrack.NewService(st, medtrack.NewNopLogger(), clock, testutil.NewStubIDGenerator())

		vault := testutil.NewTestVault()
		enc := testutil.NewTestEncryptor()

		v1, err := svc.BackupSnapshot(vault, enc, "profile-1")
		if err != nil {
			t.Fatalf("first backup failed: %v", err)
		}

		clock.Advance(time.Hour)
		v2, err := svc.BackupSnapshot(vault, enc, "profile-1")
		if err != nil {
			t.Fatalf("second backup failed: %v", err)
		}
		if v2 <= v1 {
			t.Errorf("expected version to advance: %d then %d", v1, v2)
		}

		stored, err := vault.SnapshotVersion("profile-1")
		if err != nil {
			t.Fatalf("SnapshotVersion failed: %v", err)
		}
		if stored != v2 {
			t.Errorf("vault should report the latest version %d, got %d", v2, stored)
		}
	})

	t.Run("restore fails when no snapshot exists", func(t *testing.T) {
		vault := testutil.NewTestVault()
		enc := testutil.NewTestEncryptor()

		dc, err := enc.Unlock("ignored")
		if err != nil {
			t.Fatalf("Unlock failed: %v", err)
		}

		destPath := filepath.Join(t.TempDir(), "restored.db")
		if err := medtrack.RestoreSnapshot(vault, dc, "absent", destPath); err == nil {
			t.Error("expected error for missing snapshot")
		}
	})
}
