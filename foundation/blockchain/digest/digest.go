// Package digest provides the hashing support for the blockchain. Every
// hash produced by this package is a lowercase hex string without a 0x
// prefix so it can be checked directly against the proof prefix.
package digest

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Set of hashers that can be selected by name.
const (
	NameSHA256    = "sha256"
	NameKeccak256 = "keccak256"
)

// Hasher produces a deterministic hex digest for a string. Changing the
// hasher used by a chain invalidates every block mined before the change.
type Hasher interface {
	Hash(input string) string
	Name() string
}

// New returns the hasher registered under the specified name.
func New(name string) (Hasher, error) {
	switch strings.ToLower(name) {
	case "", NameSHA256:
		return SHA256{}, nil
	case NameKeccak256:
		return Keccak256{}, nil
	}

	return nil, fmt.Errorf("hasher %q does not exist", name)
}

// =============================================================================

// SHA256 implements the Hasher interface using SHA-256.
type SHA256 struct{}

// Hash returns the SHA-256 digest of the input as 64 hex characters.
func (SHA256) Hash(input string) string {
	hash := sha256.Sum256([]byte(input))
	return common.Bytes2Hex(hash[:])
}

// Name returns the registered name of this hasher.
func (SHA256) Name() string {
	return NameSHA256
}

// Keccak256 implements the Hasher interface using the Ethereum flavor of
// SHA-3.
type Keccak256 struct{}

// Hash returns the Keccak-256 digest of the input as 64 hex characters.
func (Keccak256) Hash(input string) string {
	return common.Bytes2Hex(crypto.Keccak256([]byte(input)))
}

// Name returns the registered name of this hasher.
func (Keccak256) Name() string {
	return NameKeccak256
}

// =============================================================================

// IsProofed checks the hash starts with difficulty repetitions of the
// prefix character. A difficulty of 0 is always satisfied.
func IsProofed(hash string, difficulty uint, prefix byte) bool {
	if uint(len(hash)) < difficulty {
		return false
	}

	for i := uint(0); i < difficulty; i++ {
		if hash[i] != prefix {
			return false
		}
	}

	return true
}
