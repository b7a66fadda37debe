package slot

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/ValentinKolb/slotkv/lib/db"
	"github.com/ValentinKolb/slotkv/lib/db/util"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("store")

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	// TableSize is the fixed number of slots of every table
	TableSize = 1024

	// separator between key and value in a snapshot record
	separator = ','
)

// --------------------------------------------------------------------------
// Core slot table structure
// --------------------------------------------------------------------------

// entry is a single slot of the table.
// Once occupied is false, key and value are stale and must not be read.
type entry struct {
	mu       sync.Mutex
	key      string
	value    string
	occupied bool
}

// slotImpl is a direct-addressed table with exactly TableSize slots.
// Every key maps to exactly one slot. A put for a key that hashes to an
// occupied slot evicts whatever key was stored there before.
type slotImpl struct {
	slots [TableSize]entry
}

// NewSlotDB creates a new, empty slot table
//
// Thread-safety: This function is not thread-safe and should only be called once
// during initialization.
func NewSlotDB() db.KVDB {
	return &slotImpl{}
}

// Index returns the slot index for a key
func Index(key string) int {
	return int(util.PolyHash(key, TableSize))
}

// --------------------------------------------------------------------------
// Core KVDB Interface Methods - Write Operations
// --------------------------------------------------------------------------

// Put stores the key value pair in the slot of the key.
// The previous content of the slot is overwritten, even if it belongs to a
// different key. Values longer than db.MaxValueSize-1 bytes are truncated.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (t *slotImpl) Put(key, value string) error {
	if len(key) >= db.MaxKeySize-1 {
		return db.ErrInvalidKey
	}

	e := &t.slots[Index(key)]
	e.mu.Lock()
	e.key = key
	e.value = util.Truncate(value, db.MaxValueSize-1)
	e.occupied = true
	e.mu.Unlock()

	return nil
}

// Delete clears the slot of the key if it currently holds that key.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (t *slotImpl) Delete(key string) error {
	e := &t.slots[Index(key)]
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.occupied || e.key != key {
		return db.ErrNotFound
	}
	e.occupied = false
	return nil
}

// --------------------------------------------------------------------------
// Core KVDB Interface Methods - Query Operations
// --------------------------------------------------------------------------

// Get returns the value if the slot of the key currently holds that key.
// A key that was evicted by a colliding key is reported as not found.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (t *slotImpl) Get(key string) (string, error) {
	e := &t.slots[Index(key)]
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.occupied || e.key != key {
		return "", db.ErrNotFound
	}
	return e.value, nil
}

// --------------------------------------------------------------------------
// Persistence Operations
// --------------------------------------------------------------------------

// Save writes one "key,value\n" line per occupied slot in index order.
// Keys or values containing the separator or a line break are written
// as they are and will not survive a Load unchanged.
//
// Every slot is copied under its own lock, so Save never observes a torn
// entry. There is no snapshot isolation across slots.
func (t *slotImpl) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)

	for i := range t.slots {
		e := &t.slots[i]

		e.mu.Lock()
		key, value, occupied := e.key, e.value, e.occupied
		e.mu.Unlock()

		if !occupied {
			continue
		}
		if _, err := fmt.Fprintf(bw, "%s%c%s\n", key, separator, value); err != nil {
			return fmt.Errorf("failed to write slot %d: %w", i, err)
		}
	}

	return bw.Flush()
}

// Load reads "key,value" lines and stores each of them with Put.
// Lines without a separator and records with an invalid key are skipped.
// If several records map to the same slot, the last one wins.
func (t *slotImpl) Load(r io.Reader) error {
	br := bufio.NewReader(r)
	lineNo := 0

	for {
		line, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to read snapshot line %d: %w", lineNo+1, err)
		}
		if line == "" && errors.Is(err, io.EOF) {
			return nil
		}
		lineNo++

		key, value, found := strings.Cut(line, string(separator))
		if found {
			value = strings.TrimSuffix(value, "\n")
			value = strings.TrimSuffix(value, "\r")

			if putErr := t.Put(key, value); putErr != nil {
				Logger.Debugf("skipping snapshot line %d: %v", lineNo, putErr)
			}
		} else {
			Logger.Debugf("skipping malformed snapshot line %d", lineNo)
		}

		if errors.Is(err, io.EOF) {
			return nil
		}
	}
}

// --------------------------------------------------------------------------
// Info
// --------------------------------------------------------------------------

// GetInfo counts the occupied slots and the bytes they hold
func (t *slotImpl) GetInfo() db.DatabaseInfo {
	info := db.DatabaseInfo{
		DbType: db.ImplSlot,
		Slots:  TableSize,
	}

	for i := range t.slots {
		e := &t.slots[i]
		e.mu.Lock()
		if e.occupied {
			info.Occupied++
			info.SizeBytes += len(e.key) + len(e.value)
		}
		e.mu.Unlock()
	}

	return info
}

// Close is a no-op, the table only lives in memory
func (t *slotImpl) Close() error {
	return nil
}
