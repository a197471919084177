package pow

import (
	"context"
	"errors"
	"fmt"
	"math"
	"powchain/blocks"
	"powchain/digest"
	"powchain/logx"
	"powchain/monitoring"
	"strings"
	"time"
)

const (
	MAX_DIFFICULTY            = digest.HEX_LEN
	DEFAULT_DIFFICULTY uint8  = 4
	UNBOUNDED          uint64 = 0
)

var (
	ErrInvalidDifficulty = errors.New("difficulty must be between 1 and 64")
	ErrProofNotFound     = errors.New("no valid proof of work within nonce limit")
)

type options struct {
	algorithm digest.Algorithm
	maxNonce  uint64
}

type Option func(*options)

func WithAlgorithm(alg digest.Algorithm) Option {
	return func(o *options) { o.algorithm = alg }
}

// WithMaxNonce caps the search; nonces 0..max are tried. UNBOUNDED
// searches the whole uint64 range.
func WithMaxNonce(max uint64) Option {
	return func(o *options) { o.maxNonce = max }
}

// Miner holds no state between calls besides its configuration and is
// safe for concurrent use.
type Miner struct {
	difficulty uint8
	prefix     string
	algorithm  digest.Algorithm
	maxNonce   uint64
}

func NewMiner(difficulty uint8, opts ...Option) (*Miner, error) {
	if difficulty == 0 || int(difficulty) > MAX_DIFFICULTY {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDifficulty, difficulty)
	}
	o := options{algorithm: digest.DEFAULT, maxNonce: UNBOUNDED}
	for _, opt := range opts {
		opt(&o)
	}
	if o.maxNonce == UNBOUNDED {
		o.maxNonce = math.MaxUint64
	}
	return &Miner{
		difficulty: difficulty,
		prefix:     strings.Repeat("0", int(difficulty)),
		algorithm:  o.algorithm,
		maxNonce:   o.maxNonce,
	}, nil
}

func (m *Miner) Difficulty() uint8 {
	return m.difficulty
}

func (m *Miner) Algorithm() digest.Algorithm {
	return m.algorithm
}

func (m *Miner) IsValidProof(hash string) bool {
	return strings.HasPrefix(hash, m.prefix)
}

// Verify reports whether b is self-consistent and carries enough work.
func (m *Miner) Verify(b blocks.Block) bool {
	return b.Hash == b.CalculateHash() && m.IsValidProof(b.Hash)
}

// Mine searches nonces upward from zero and returns the first block
// whose hash satisfies the difficulty. The context is checked before
// every attempt.
func (m *Miner) Mine(
	ctx context.Context,
	data string,
	previousHash string,
	index uint64,
	timestamp int64,
) (*blocks.Block, error) {
	block := blocks.Block{
		Index:        index,
		Timestamp:    timestamp,
		Data:         data,
		PreviousHash: previousHash,
		Nonce:        0,
		Algorithm:    m.algorithm,
	}

	start := time.Now()
	logx.Debug("MINER", fmt.Sprintf("mining block %d at difficulty %d", index, m.difficulty))
	var attempts uint64
	for {
		if err := ctx.Err(); err != nil {
			monitoring.RecordHashAttempts(attempts)
			monitoring.RecordMiningAborted()
			return nil, err
		}

		block.Rehash()
		attempts++
		if m.IsValidProof(block.Hash) {
			break
		}
		if block.Nonce >= m.maxNonce {
			monitoring.RecordHashAttempts(attempts)
			monitoring.RecordMiningAborted()
			return nil, fmt.Errorf(
				"%w: block %d after %d attempts", ErrProofNotFound, index, attempts,
			)
		}
		block.Nonce++
	}

	elapsed := time.Since(start)
	monitoring.RecordHashAttempts(attempts)
	monitoring.RecordBlockMined(elapsed)
	logx.Debug(
		"MINER",
		fmt.Sprintf("mined block %d nonce %d hash %s in %s", index, block.Nonce, block.Hash, elapsed),
	)
	return &block, nil
}

// MineNext mines data as the successor of tip, stamped with the current time.
func (m *Miner) MineNext(
	ctx context.Context,
	data string,
	tip blocks.Block,
) (*blocks.Block, error) {
	return m.Mine(ctx, data, tip.Hash, tip.Index+1, time.Now().UnixNano())
}
