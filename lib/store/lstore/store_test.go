package lstore

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ValentinKolb/slotkv/lib/db"
	"github.com/ValentinKolb/slotkv/lib/db/engines/slot"
	"github.com/ValentinKolb/slotkv/lib/store"
	"github.com/spf13/afero"
)

const snapshotFile = "/data/store.dat"

func factory() db.KVDB {
	return slot.NewSlotDB()
}

func newStore(t *testing.T, fs afero.Fs, atomic bool) store.IStore {
	t.Helper()
	s, err := NewLocalStore(factory, Options{
		SnapshotFile: snapshotFile,
		AtomicSave:   atomic,
		Fs:           fs,
	})
	if err != nil {
		t.Fatalf("NewLocalStore failed: %v", err)
	}
	return s
}

func TestMissingSnapshotIsEmpty(t *testing.T) {
	s := newStore(t, afero.NewMemMapFs(), false)
	defer s.Close()

	info, err := s.GetDBInfo()
	if err != nil {
		t.Fatalf("GetDBInfo failed: %v", err)
	}
	if info.Occupied != 0 {
		t.Errorf("Expected empty store, got %d entries", info.Occupied)
	}
}

func TestErrorCodes(t *testing.T) {
	s := newStore(t, afero.NewMemMapFs(), false)
	defer s.Close()

	_, err := s.Get("missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if code := store.CodeOf(err); code != store.RetCNotFound {
		t.Errorf("Expected code %s, got %s", store.RetCNotFound, code)
	}

	err = s.Put("this-key-is-definitely-too-long-for-a-slot", "value")
	if !errors.Is(err, store.ErrInvalidKey) {
		t.Errorf("Expected ErrInvalidKey, got %v", err)
	}

	if err := s.Delete("missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	for _, atomic := range []bool{false, true} {
		t.Run(fmt.Sprintf("atomic=%t", atomic), func(t *testing.T) {
			fs := afero.NewMemMapFs()

			// k1..k9 map to consecutive, distinct slots
			s := newStore(t, fs, atomic)
			for i := 1; i <= 9; i++ {
				if err := s.Put(fmt.Sprintf("k%d", i), fmt.Sprintf("value %d", i)); err != nil {
					t.Fatalf("Put failed: %v", err)
				}
			}
			if err := s.Close(); err != nil {
				t.Fatalf("Close failed: %v", err)
			}

			if exists, _ := afero.Exists(fs, snapshotFile+".tmp"); exists {
				t.Errorf("temporary snapshot file was not removed")
			}

			restored := newStore(t, fs, atomic)
			defer restored.Close()

			for i := 1; i <= 9; i++ {
				value, err := restored.Get(fmt.Sprintf("k%d", i))
				if err != nil {
					t.Errorf("Get(k%d) failed: %v", i, err)
					continue
				}
				if expected := fmt.Sprintf("value %d", i); value != expected {
					t.Errorf("Expected %q, got %q", expected, value)
				}
			}
		})
	}
}

func TestSnapshotOverwritesFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, snapshotFile, []byte("old,value\nstale,entry\n"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	s := newStore(t, fs, false)
	if value, err := s.Get("old"); err != nil || value != "value" {
		t.Errorf("Expected old=value after load, got %q, %v", value, err)
	}
	if err := s.Delete("stale"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	content, err := afero.ReadFile(fs, snapshotFile)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(content) != "old,value\n" {
		t.Errorf("Expected snapshot %q, got %q", "old,value\n", content)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := newStore(t, fs, false)
	_ = s.Put("key", "value")

	if err := s.Close(); err != nil {
		t.Fatalf("first Close failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
}

func TestNoSnapshotFile(t *testing.T) {
	s, err := NewLocalStore(factory, Options{Fs: afero.NewMemMapFs()})
	if err != nil {
		t.Fatalf("NewLocalStore failed: %v", err)
	}
	_ = s.Put("key", "value")
	if err := s.Close(); err != nil {
		t.Errorf("Close without snapshot file failed: %v", err)
	}
}

func TestReadOnlyFsFailsOnSave(t *testing.T) {
	s := newStore(t, afero.NewReadOnlyFs(afero.NewMemMapFs()), false)
	_ = s.Put("key", "value")
	if err := s.Close(); err == nil {
		t.Errorf("Expected Close to fail on a read-only filesystem")
	}
}
