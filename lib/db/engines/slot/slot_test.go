package slot

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/ValentinKolb/slotkv/lib/db"
)

func TestIndex(t *testing.T) {
	tests := []struct {
		key      string
		expected int
	}{
		{"", 0},
		{"a", 97},
		{"Aa", 2112 % TableSize},
		{"BB", 2112 % TableSize},
		{"test_key", 306},
		{"\xe9", 0xe9},
		{"\xff\x01", (255*31 + 1) % TableSize},
	}

	for _, tt := range tests {
		if got := Index(tt.key); got != tt.expected {
			t.Errorf("Index(%q) = %d, expected %d", tt.key, got, tt.expected)
		}
	}

	// the hash wraps around at 32 bits, the index must stay in range
	long := strings.Repeat("\xff", 1000)
	if idx := Index(long); idx < 0 || idx >= TableSize {
		t.Errorf("Index out of range: %d", idx)
	}
}

func TestCollisionOverwriteWithKnownKeys(t *testing.T) {
	table := NewSlotDB()

	if err := table.Put("Aa", "1"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := table.Put("BB", "2"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if _, err := table.Get("Aa"); !errors.Is(err, db.ErrNotFound) {
		t.Errorf("Expected Aa to be evicted, got %v", err)
	}
	if value, err := table.Get("BB"); err != nil || value != "2" {
		t.Errorf("Expected BB=2, got %q, %v", value, err)
	}
}

func TestSaveFormat(t *testing.T) {
	table := NewSlotDB()

	// "a" is stored at index 97 and "b" at index 98
	_ = table.Put("b", "2")
	_ = table.Put("a", "1")

	var buf bytes.Buffer
	if err := table.Save(&buf); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if expected := "a,1\nb,2\n"; buf.String() != expected {
		t.Errorf("Expected snapshot %q, got %q", expected, buf.String())
	}

	// an empty table produces an empty snapshot
	buf.Reset()
	if err := NewSlotDB().Save(&buf); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("Expected empty snapshot, got %q", buf.String())
	}
}

func TestGetInfo(t *testing.T) {
	table := NewSlotDB()
	_ = table.Put("key", "value")
	_ = table.Put("other", "v")
	_ = table.Delete("other")

	info := table.GetInfo()
	if info.DbType != db.ImplSlot {
		t.Errorf("Expected db type %s, got %s", db.ImplSlot, info.DbType)
	}
	if info.Slots != TableSize {
		t.Errorf("Expected %d slots, got %d", TableSize, info.Slots)
	}
	if info.Occupied != 1 {
		t.Errorf("Expected 1 occupied slot, got %d", info.Occupied)
	}
	if info.SizeBytes != len("key")+len("value") {
		t.Errorf("Expected %d bytes, got %d", len("key")+len("value"), info.SizeBytes)
	}
}
