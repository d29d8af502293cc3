package genesis_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/powledger/foundation/blockchain/digest"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestLoad(t *testing.T) {
	t.Log("Given the need to load the genesis file.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen the file overrides some fields.", testID)
		{
			path := filepath.Join(t.TempDir(), "genesis.json")
			doc := `{"difficulty": 2, "hasher": "keccak256", "data": {"note": "hello"}}`
			if err := os.WriteFile(path, []byte(doc), 0600); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to write the file: %v", failed, testID, err)
			}

			gen, err := genesis.Load(path)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to load the file: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to load the file.", success, testID)

			if gen.Difficulty != 2 || gen.Hasher != digest.NameKeccak256 || string(gen.Data) != `{"note": "hello"}` {
				t.Fatalf("\t%s\tTest %d:\tShould get the file values: %+v", failed, testID, gen)
			}
			t.Logf("\t%s\tTest %d:\tShould get the file values.", success, testID)

			if gen.Date.IsZero() {
				t.Fatalf("\t%s\tTest %d:\tShould keep the default date.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould keep the default date.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the file names an unknown hasher.", testID)
		{
			path := filepath.Join(t.TempDir(), "genesis.json")
			if err := os.WriteFile(path, []byte(`{"hasher": "md5"}`), 0600); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to write the file: %v", failed, testID, err)
			}

			if _, err := genesis.Load(path); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould get an error.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould get an error.", success, testID)
		}
	}
}
