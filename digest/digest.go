package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// Algorithm names a 256-bit hash function. Every algorithm yields
// a 64 character lowercase hex digest.
type Algorithm string

const (
	SHA256     Algorithm = "sha256"
	SHA3_256   Algorithm = "sha3-256"
	BLAKE2B256 Algorithm = "blake2b-256"

	DEFAULT = SHA256
	HEX_LEN = 64
)

var ErrUnknownAlgorithm = errors.New("unknown hash algorithm")

func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sha256", "sha-256":
		return SHA256, nil
	case "sha3-256", "sha3":
		return SHA3_256, nil
	case "blake2b-256", "blake2b":
		return BLAKE2B256, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
}

func Algorithms() []Algorithm {
	return []Algorithm{SHA256, SHA3_256, BLAKE2B256}
}

// Sum hashes data. The zero Algorithm behaves as SHA256.
func (a Algorithm) Sum(data []byte) string {
	var sum [32]byte
	switch a {
	case SHA3_256:
		sum = sha3.Sum256(data)
	case BLAKE2B256:
		sum = blake2b.Sum256(data)
	default:
		sum = sha256.Sum256(data)
	}
	return hex.EncodeToString(sum[:])
}

func (a Algorithm) String() string {
	if a == "" {
		return string(DEFAULT)
	}
	return string(a)
}

func Sum(data []byte) string {
	return DEFAULT.Sum(data)
}

func SumString(s string) string {
	return DEFAULT.Sum([]byte(s))
}

func HasLeadingZeros(hash string, n int) bool {
	if n <= 0 {
		return true
	}
	if len(hash) < n {
		return false
	}
	for i := 0; i < n; i++ {
		if hash[i] != '0' {
			return false
		}
	}
	return true
}
