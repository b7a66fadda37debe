package lstore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/ValentinKolb/slotkv/lib/db"
	"github.com/ValentinKolb/slotkv/lib/store"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/afero"
)

var Logger = logger.GetLogger("store")

// Options configures the persistence of a local store
type Options struct {
	// SnapshotFile is the path of the snapshot file. Empty disables persistence.
	SnapshotFile string
	// AtomicSave writes the snapshot to a temporary file and renames it over
	// SnapshotFile. Without it the file is truncated and rewritten in place.
	AtomicSave bool
	// Fs is the filesystem used for the snapshot (nil = OS filesystem)
	Fs afero.Fs
}

type storeImpl struct {
	db        db.KVDB
	opts      Options
	closeOnce sync.Once
	closeErr  error
}

// NewLocalStore creates a new local store instance.
// The database is created with the factory and immediately populated from
// the snapshot file. A missing snapshot file is treated as an empty store.
//
// Lifecycle: NewLocalStore and Close must not overlap with other operations
// on the store.
func NewLocalStore(factory store.DBFactory, opts Options) (store.IStore, error) {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}

	s := &storeImpl{
		db:   factory(),
		opts: opts,
	}

	if err := s.load(); err != nil {
		_ = s.db.Close()
		return nil, err
	}

	return s, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Put(key, value string) error {
	return store.FromDBError(s.db.Put(key, value))
}

func (s *storeImpl) Get(key string) (string, error) {
	value, err := s.db.Get(key)
	return value, store.FromDBError(err)
}

func (s *storeImpl) Delete(key string) error {
	return store.FromDBError(s.db.Delete(key))
}

func (s *storeImpl) GetDBInfo() (db.DatabaseInfo, error) {
	return s.db.GetInfo(), nil
}

// Close saves the snapshot and closes the database. Subsequent calls return
// the result of the first call.
func (s *storeImpl) Close() error {
	s.closeOnce.Do(func() {
		saveErr := s.save()
		closeErr := s.db.Close()
		s.closeErr = errors.Join(saveErr, closeErr)
	})
	return s.closeErr
}

// --------------------------------------------------------------------------
// Persistence
// --------------------------------------------------------------------------

// load populates the database from the snapshot file
func (s *storeImpl) load() error {
	if s.opts.SnapshotFile == "" {
		return nil
	}

	f, err := s.opts.Fs.Open(s.opts.SnapshotFile)
	if errors.Is(err, fs.ErrNotExist) {
		Logger.Infof("no snapshot found at %s, starting with an empty store", s.opts.SnapshotFile)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open snapshot %s: %w", s.opts.SnapshotFile, err)
	}
	defer f.Close()

	if err := s.db.Load(f); err != nil {
		return fmt.Errorf("failed to load snapshot %s: %w", s.opts.SnapshotFile, err)
	}

	Logger.Infof("loaded %d entries from %s", s.db.GetInfo().Occupied, s.opts.SnapshotFile)
	return nil
}

// save writes the snapshot file
func (s *storeImpl) save() error {
	if s.opts.SnapshotFile == "" {
		return nil
	}

	target := s.opts.SnapshotFile
	if s.opts.AtomicSave {
		target = s.opts.SnapshotFile + ".tmp"
	}

	f, err := s.opts.Fs.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create snapshot %s: %w", target, err)
	}

	if err := s.db.Save(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write snapshot %s: %w", target, err)
	}

	if s.opts.AtomicSave {
		if err := f.Sync(); err != nil {
			_ = f.Close()
			return fmt.Errorf("failed to sync snapshot %s: %w", target, err)
		}
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot %s: %w", target, err)
	}

	if s.opts.AtomicSave {
		if err := s.opts.Fs.Rename(target, s.opts.SnapshotFile); err != nil {
			return fmt.Errorf("failed to replace snapshot %s: %w", s.opts.SnapshotFile, err)
		}
	}

	Logger.Infof("saved %d entries to %s", s.db.GetInfo().Occupied, s.opts.SnapshotFile)
	return nil
}
