// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/digest"
)

// Genesis represents the genesis file.
type Genesis struct {
	Date             time.Time       `json:"date"`
	Difficulty       uint            `json:"difficulty"`         // Number of 0's needed to solve the hash solution.
	Hasher           string          `json:"hasher"`             // Name of the hash function used for mining and validation.
	StrictHeaderHash bool            `json:"strict_header_hash"` // Require the header hash to match the payload.
	Data             json.RawMessage `json:"data"`               // Data stored in the genesis block.
}

// Default returns the genesis values used when no file is provided.
func Default() Genesis {
	return Genesis{
		Date:       time.Now().UTC(),
		Difficulty: 4,
		Hasher:     digest.NameSHA256,
		Data:       json.RawMessage(`"Genesis Block"`),
	}
}

// =============================================================================

// Load opens and consumes the genesis file. Fields missing from the file
// keep their default values.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	genesis := Default()
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, fmt.Errorf("decoding genesis %q: %w", path, err)
	}

	if _, err := digest.New(genesis.Hasher); err != nil {
		return Genesis{}, err
	}

	return genesis, nil
}
