package slot

import (
	"github.com/ValentinKolb/slotkv/lib/db"
	dbtesting "github.com/ValentinKolb/slotkv/lib/db/testing"
	"testing"
)

func Test(t *testing.T) {
	dbtesting.RunKVDBTests(t, "SlotDB", func() db.KVDB {
		return NewSlotDB()
	}, Index)
}

func Benchmark(t *testing.B) {
	dbtesting.RunKVDBBenchmarks(t, "SlotDB", func() db.KVDB {
		return NewSlotDB()
	})
}
