package cmd

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ardanlabs/powledger/foundation/blockchain/chain"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/digest"
	"github.com/pterm/pterm"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestMineLocal(t *testing.T) {
	pterm.DisableOutput()
	defer pterm.EnableOutput()

	t.Log("Given the need to mine blocks into a local chain.")
	{
		tests := []struct {
			name   string
			hasher digest.Hasher
		}{
			{"sha256", digest.SHA256{}},
			{"keccak256", digest.Keccak256{}},
		}

		for testID, tt := range tests {
			t.Logf("\tTest %d:\tWhen using the %s hasher.", testID, tt.name)
			{
				cfg := chain.Config[string]{
					Difficulty:  1,
					GenesisData: chain.GenesisData,
					Hasher:      tt.hasher,
				}

				if err := mineLocal(context.Background(), startPrinter, cfg, 3, "Block"); err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to mine three blocks: %v", failed, testID, err)
				}
				t.Logf("\t%s\tTest %d:\tShould be able to mine three blocks.", success, testID)
			}
		}

		testID := len(tests)
		t.Logf("\tTest %d:\tWhen the context is already cancelled.", testID)
		{
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			cfg := chain.Config[string]{Difficulty: 64}
			if err := mineLocal(ctx, startPrinter, cfg, 1, "Block"); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould get an error.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould get an error.", success, testID)
		}
	}
}

func TestTables(t *testing.T) {
	t.Log("Given the need to render blocks.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen building the table for a chain.", testID)
		{
			blocks := []database.Block[json.RawMessage]{
				{Payload: database.Payload[json.RawMessage]{Sequence: 0, Data: json.RawMessage(`"Genesis Block"`)}},
				{Payload: database.Payload[json.RawMessage]{Sequence: 1, Data: json.RawMessage(`{"a":1}`), PreviousHash: strings.Repeat("a", 64)}},
			}

			data := blocksTable(blocks)
			if len(data) != 3 {
				t.Fatalf("\t%s\tTest %d:\tShould get a header and two rows, got %d.", failed, testID, len(data))
			}
			t.Logf("\t%s\tTest %d:\tShould get a header and two rows.", success, testID)

			if data[1][3] != "-" || data[2][3] != strings.Repeat("a", 12) {
				t.Fatalf("\t%s\tTest %d:\tShould see the short previous hash: %v", failed, testID, data)
			}
			t.Logf("\t%s\tTest %d:\tShould see the short previous hash.", success, testID)

			if data[2][5] != `{"a":1}` {
				t.Fatalf("\t%s\tTest %d:\tShould see the raw data, got %s.", failed, testID, data[2][5])
			}
			t.Logf("\t%s\tTest %d:\tShould see the raw data.", success, testID)
		}
	}
}

func TestNodeClient(t *testing.T) {
	t.Log("Given the need to talk to a node.")
	{
		var got struct {
			Data json.RawMessage `json:"data"`
		}

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case r.Method == http.MethodGet && r.URL.Path == "/v1/chain":
				json.NewEncoder(w).Encode([]database.Block[json.RawMessage]{
					{Payload: database.Payload[json.RawMessage]{Data: json.RawMessage(`"Genesis Block"`)}},
				})

			case r.Method == http.MethodPost && r.URL.Path == "/v1/mempool":
				json.NewDecoder(r.Body).Decode(&got)
				w.WriteHeader(http.StatusAccepted)
				json.NewEncoder(w).Encode(entry{ID: "id-1", Data: got.Data})

			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}))
		defer srv.Close()

		testID := 0
		t.Logf("\tTest %d:\tWhen fetching the chain.", testID)
		{
			blocks, err := fetchChain(context.Background(), srv.URL)
			if err != nil || len(blocks) != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould get back the genesis block: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get back the genesis block.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen submitting plain text and JSON.", testID)
		{
			e, err := submitData(context.Background(), srv.URL, "hello")
			if err != nil || e.ID != "id-1" || string(got.Data) != `"hello"` {
				t.Fatalf("\t%s\tTest %d:\tShould send text as a JSON string, got %s: %v", failed, testID, got.Data, err)
			}
			t.Logf("\t%s\tTest %d:\tShould send text as a JSON string.", success, testID)

			if _, err := submitData(context.Background(), srv.URL, `{"amount":5}`); err != nil || string(got.Data) != `{"amount":5}` {
				t.Fatalf("\t%s\tTest %d:\tShould send JSON as is, got %s: %v", failed, testID, got.Data, err)
			}
			t.Logf("\t%s\tTest %d:\tShould send JSON as is.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the node returns an error status.", testID)
		{
			if _, err := fetchChain(context.Background(), srv.URL+"/missing"); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould get an error.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould get an error.", success, testID)
		}
	}
}
