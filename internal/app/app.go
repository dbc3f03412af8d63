package app

import (
	"fmt"
	"os"
	"path/filepath"

	"medtrack/internal/config"
	"medtrack/internal/encryption"
	"medtrack/internal/medtrack"
	"medtrack/internal/store"
	"medtrack/internal/vault"
)

// App is the wiring layer between the CLI and the Service. It builds all
// dependencies from config and manages the store lifecycle on Close.
type App struct {
	cfg     *config.Config
	store   medtrack.Store
	service *medtrack.Service
	logFile *os.File
}

// NewApp creates a fully wired App from the given config. command identifies
// the CLI command being run (e.g. "AddMedication", "Backup") and tags all
// log lines. The caller must call Close when done.
func NewApp(cfg *config.Config, command string) (*App, error) {
	st, err := store.NewStoreFromConfig(cfg.Database, cfg.ProfileID)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	logger, logFile, err := newLogger(cfg.LogDir, command)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	svc := medtrack.NewService(st, &slogAdapter{l: logger}, medtrack.RealClock{}, medtrack.UUIDGenerator{})

	return &App{
		cfg:     cfg,
		store:   st,
		service: svc,
		logFile: logFile,
	}, nil
}

// Service returns the medication service backed by the open store.
func (a *App) Service() *medtrack.Service {
	return a.service
}

// Backup stores an encrypted snapshot of the database in the first
// configured vault. Returns the version stamp given to the snapshot.
func (a *App) Backup() (int64, error) {
	v, enc, err := a.vaultAndEncryptor()
	if err != nil {
		return 0, err
	}
	if !enc.IsConfigured() {
		return 0, fmt.Errorf("encryption keys not set up: run `medtrack keys init` first")
	}
	return a.service.BackupSnapshot(v, enc, a.cfg.ProfileID)
}

// Close closes the store and the log file.
func (a *App) Close() error {
	var firstErr error

	if err := a.store.Close(); err != nil {
		firstErr = fmt.Errorf("closing store: %w", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}

// vaultAndEncryptor builds the snapshot vault and encryptor from config.
func (a *App) vaultAndEncryptor() (medtrack.Vault, medtrack.Encryptor, error) {
	if len(a.cfg.Vaults) == 0 {
		return nil, nil, fmt.Errorf("no vaults configured")
	}
	v, err := vault.NewVaultFromConfig(a.cfg.Vaults[0])
	if err != nil {
		return nil, nil, fmt.Errorf("creating vault: %w", err)
	}

	enc, err := encryption.NewEncryptorFromConfig(a.cfg.Encryption)
	if err != nil {
		return nil, nil, fmt.Errorf("creating encryptor: %w", err)
	}

	return v, enc, nil
}

// SetupKeys generates the snapshot encryption key pair, protecting the
// private key with the given passphrase. Fails if keys already exist.
func SetupKeys(cfg *config.Config, passphrase string) error {
	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return fmt.Errorf("creating encryptor: %w", err)
	}
	if enc.IsConfigured() {
		return fmt.Errorf("encryption keys already exist")
	}
	return enc.Setup(passphrase)
}

// Restore fetches the encrypted snapshot from the configured vault, unlocks
// the private key with the passphrase, and replaces the database file. It
// deliberately does not open the store first: the database file must not be
// open while it is being replaced.
func Restore(cfg *config.Config, passphrase string) error {
	if cfg.Database.Type != "sqlite" || cfg.Database.DataDir == "" {
		return fmt.Errorf("restore requires a sqlite database with data_dir set")
	}

	if len(cfg.Vaults) == 0 {
		return fmt.Errorf("no vaults configured")
	}
	v, err := vault.NewVaultFromConfig(cfg.Vaults[0])
	if err != nil {
		return fmt.Errorf("creating vault: %w", err)
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return fmt.Errorf("creating encryptor: %w", err)
	}

	dc, err := enc.Unlock(passphrase)
	if err != nil {
		return fmt.Errorf("unlocking private key: %w", err)
	}

	dbPath := filepath.Join(cfg.Database.DataDir, cfg.ProfileID+".db")
	if err := medtrack.RestoreSnapshot(v, dc, cfg.ProfileID, dbPath); err != nil {
		return err
	}

	return nil
}
