package mempool_test

import (
	"errors"
	"testing"

	"github.com/ardanlabs/powledger/foundation/blockchain/mempool"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestCRUD(t *testing.T) {
	type table struct {
		name string
		data []string
	}

	tt := []table{
		{
			name: "basic",
			data: []string{"first", "second", "third", "fourth"},
		},
	}

	t.Log("Given the need to validate mempool api.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling a set of data.", testID)
			{
				f := func(t *testing.T) {
					mp := mempool.New[string]()

					var ids []string
					for _, data := range tst.data {
						entry := mp.Add(data)
						ids = append(ids, entry.ID)
						t.Logf("\t%s\tTest %d:\tShould be able to add new data: %s", success, testID, entry.ID)
					}

					if mp.Count() != len(tst.data) {
						t.Fatalf("\t%s\tTest %d:\tShould have all the entries, got %d.", failed, testID, mp.Count())
					}
					t.Logf("\t%s\tTest %d:\tShould have all the entries.", success, testID)

					oldest, ok := mp.PickOldest()
					if !ok {
						t.Fatalf("\t%s\tTest %d:\tShould be able to pick the oldest entry.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to pick the oldest entry: %s", success, testID, oldest.Data)

					entries := mp.Copy()
					for i := 1; i < len(entries); i++ {
						if entries[i].TimeStamp.Before(entries[i-1].TimeStamp) {
							t.Fatalf("\t%s\tTest %d:\tShould get back the entries oldest first.", failed, testID)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould get back the entries oldest first.", success, testID)

					if err := mp.Delete(ids[1]); err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to remove an entry: %v", failed, testID, err)
					}
					if mp.Count() != len(tst.data)-1 {
						t.Fatalf("\t%s\tTest %d:\tShould be able to remove an entry.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to remove an entry.", success, testID)

					if err := mp.Delete(ids[1]); !errors.Is(err, mempool.ErrNotFound) {
						t.Fatalf("\t%s\tTest %d:\tShould not find a removed entry: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould not find a removed entry.", success, testID)

					mp.Truncate()
					if _, ok := mp.PickOldest(); ok || mp.Count() != 0 {
						t.Fatalf("\t%s\tTest %d:\tShould be able to truncate mempool.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to truncate mempool.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func TestInsertionOrder(t *testing.T) {
	t.Log("Given the need to mine data in the order it arrived.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen adding many entries faster than the clock moves.", testID)
		{
			mp := mempool.New[int]()

			const count = 500
			for i := 0; i < count; i++ {
				mp.Add(i)
			}

			entries := mp.Copy()
			if len(entries) != count {
				t.Fatalf("\t%s\tTest %d:\tShould have all the entries, got %d.", failed, testID, len(entries))
			}
			t.Logf("\t%s\tTest %d:\tShould have all the entries.", success, testID)

			for i, entry := range entries {
				if entry.Data != i {
					t.Fatalf("\t%s\tTest %d:\tShould get back entry %d at position %d, got %d.", failed, testID, i, i, entry.Data)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould get back the entries in insertion order.", success, testID)

			for i := 0; i < count; i++ {
				oldest, ok := mp.PickOldest()
				if !ok || oldest.Data != i {
					t.Fatalf("\t%s\tTest %d:\tShould pick entry %d as the oldest, got %d.", failed, testID, i, oldest.Data)
				}
				mp.Delete(oldest.ID)
			}
			t.Logf("\t%s\tTest %d:\tShould pick the entries first in, first out.", success, testID)
		}
	}
}
