package digest_test

import (
	"testing"

	"github.com/ardanlabs/powledger/foundation/blockchain/digest"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestHashers(t *testing.T) {
	type table struct {
		name  string
		input string
		hash  string
	}

	tt := []table{
		{
			name:  digest.NameSHA256,
			input: "abc",
			hash:  "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		},
		{
			name:  digest.NameKeccak256,
			input: "",
			hash:  "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470",
		},
	}

	t.Log("Given the need to hash strings into hex digests.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling the %s hasher.", testID, tst.name)
			{
				f := func(t *testing.T) {
					hasher, err := digest.New(tst.name)
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to construct the hasher: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to construct the hasher.", success, testID)

					got := hasher.Hash(tst.input)
					if got != tst.hash {
						t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, got)
						t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, tst.hash)
						t.Fatalf("\t%s\tTest %d:\tShould get back the right hash.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould get back the right hash.", success, testID)

					if hasher.Name() != tst.name {
						t.Fatalf("\t%s\tTest %d:\tShould report the right name: %s", failed, testID, hasher.Name())
					}
					t.Logf("\t%s\tTest %d:\tShould report the right name.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}

		t.Logf("\tTest %d:\tWhen asking for an unknown hasher.", len(tt))
		{
			if _, err := digest.New("md5"); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould get an error.", failed, len(tt))
			}
			t.Logf("\t%s\tTest %d:\tShould get an error.", success, len(tt))
		}
	}
}

func TestIsProofed(t *testing.T) {
	type table struct {
		name       string
		hash       string
		difficulty uint
		exp        bool
	}

	tt := []table{
		{name: "zero", hash: "abc", difficulty: 0, exp: true},
		{name: "match", hash: "00ab", difficulty: 2, exp: true},
		{name: "short", hash: "00ab", difficulty: 3, exp: false},
		{name: "too-long", hash: "00", difficulty: 3, exp: false},
		{name: "miss", hash: "0a0b", difficulty: 2, exp: false},
	}

	t.Log("Given the need to check a hash against the proof prefix.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen checking %q at difficulty %d.", testID, tst.hash, tst.difficulty)
			{
				f := func(t *testing.T) {
					got := digest.IsProofed(tst.hash, tst.difficulty, '0')
					if got != tst.exp {
						t.Fatalf("\t%s\tTest %d:\tShould get %v, got %v.", failed, testID, tst.exp, got)
					}
					t.Logf("\t%s\tTest %d:\tShould get %v.", success, testID, tst.exp)
				}

				t.Run(tst.name, f)
			}
		}
	}
}
