package blockchain

import (
	"fmt"
	"powchain/blocks"
	"powchain/digest"
	"powchain/genesis"
	"powchain/logx"
	"powchain/monitoring"
	"strings"
	"sync"
)

// LinkPolicy decides how Append treats a block whose linkage fields
// no longer match the tail.
type LinkPolicy string

const (
	// LINK_STRICT rejects the block with ErrStaleTip; the caller re-mines.
	LINK_STRICT LinkPolicy = "strict"
	// LINK_RESTAMP overwrites Index and PreviousHash from the tail and
	// rehashes without re-checking proof of work.
	LINK_RESTAMP LinkPolicy = "restamp"

	DEFAULT_LINK_POLICY = LINK_STRICT
)

func ParseLinkPolicy(s string) (LinkPolicy, error) {
	switch LinkPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", LINK_STRICT:
		return LINK_STRICT, nil
	case LINK_RESTAMP:
		return LINK_RESTAMP, nil
	default:
		return "", fmt.Errorf("unknown link policy %q", s)
	}
}

type options struct {
	genesis    genesis.Genesis
	policy     LinkPolicy
	difficulty int
}

type Option func(*options)

func WithAlgorithm(alg digest.Algorithm) Option {
	return func(o *options) { o.genesis.Algorithm = alg }
}

func WithGenesisTimestamp(ts int64) Option {
	return func(o *options) {
		if ts != 0 {
			o.genesis.Timestamp = ts
		}
	}
}

func WithLinkPolicy(p LinkPolicy) Option {
	return func(o *options) { o.policy = p }
}

// WithDifficulty makes Append (strict) and Validate require the given
// number of leading zero hex characters on every non-genesis block.
func WithDifficulty(d int) Option {
	return func(o *options) { o.difficulty = d }
}

type Blockchain struct {
	mu         sync.Mutex
	blocks     []blocks.Block
	algorithm  digest.Algorithm
	policy     LinkPolicy
	difficulty int
}

func NewBlockchain(opts ...Option) *Blockchain {
	o := options{
		genesis: genesis.NewGenesis(digest.DEFAULT),
		policy:  DEFAULT_LINK_POLICY,
	}
	for _, opt := range opts {
		opt(&o)
	}

	bc := Blockchain{
		blocks:     []blocks.Block{o.genesis.Block()},
		algorithm:  o.genesis.Algorithm,
		policy:     o.policy,
		difficulty: o.difficulty,
	}
	monitoring.SetChainHeight(0)
	logx.Info(
		"CHAIN",
		fmt.Sprintf(
			"blockchain starts with genesis %s (algorithm: %s, policy: %s, difficulty: %d)",
			bc.blocks[0].Hash, bc.algorithm, bc.policy, bc.difficulty,
		),
	)
	return &bc
}

func (bc *Blockchain) Algorithm() digest.Algorithm {
	return bc.algorithm
}

func (bc *Blockchain) Policy() LinkPolicy {
	return bc.policy
}

func (bc *Blockchain) Difficulty() int {
	return bc.difficulty
}

func (bc *Blockchain) latest() (blocks.Block, error) {
	if len(bc.blocks) == 0 {
		return blocks.Block{}, ErrEmptyChain
	}
	return bc.blocks[len(bc.blocks)-1], nil
}

// Latest returns a copy of the tail block.
func (bc *Blockchain) Latest() (blocks.Block, error) {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	return bc.latest()
}

func (bc *Blockchain) Len() int {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	return len(bc.blocks)
}

func (bc *Blockchain) Block(index uint64) (blocks.Block, bool) {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	if index >= uint64(len(bc.blocks)) {
		return blocks.Block{}, false
	}
	return bc.blocks[index], true
}

// Blocks returns a snapshot copy of the whole sequence.
func (bc *Blockchain) Blocks() []blocks.Block {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	out := make([]blocks.Block, len(bc.blocks))
	copy(out, bc.blocks)
	return out
}

// Append links block to the tail under the chain lock and returns the
// committed copy. The chain is left untouched on error.
func (bc *Blockchain) Append(block blocks.Block) (blocks.Block, error) {
	bc.mu.Lock()
	defer bc.mu.Unlock()

	tail, err := bc.latest()
	if err != nil {
		return blocks.Block{}, err
	}
	if block.Algorithm.String() != bc.algorithm.String() {
		return blocks.Block{}, fmt.Errorf(
			"%w: block hashed with %s, chain uses %s",
			ErrInvalidBlock, block.Algorithm, bc.algorithm,
		)
	}

	switch bc.policy {
	case LINK_RESTAMP:
		block.Index = tail.Index + 1
		block.PreviousHash = tail.Hash
		block.Rehash()
	default:
		if err := bc.checkLink(tail, block); err != nil {
			return blocks.Block{}, err
		}
	}

	bc.blocks = append(bc.blocks, block)
	monitoring.SetChainHeight(block.Index)
	logx.Debug(
		"CHAIN",
		fmt.Sprintf("appended block %d (%s) nonce %d", block.Index, block.ShortID(), block.Nonce),
	)
	return block, nil
}

func (bc *Blockchain) checkLink(tail blocks.Block, block blocks.Block) error {
	if calculated := block.CalculateHash(); block.Hash != calculated {
		return fmt.Errorf(
			"%w: stored hash %s, calculated %s",
			ErrInvalidBlock, block.Hash, calculated,
		)
	}

	expectedIndex := tail.Index + 1
	if block.Index != expectedIndex || block.PreviousHash != tail.Hash {
		monitoring.RecordStaleAppend()
		return fmt.Errorf(
			"%w: received index %d previous %s, expected index %d previous %s",
			ErrStaleTip, block.Index, block.PreviousHash, expectedIndex, tail.Hash,
		)
	}

	if !digest.HasLeadingZeros(block.Hash, bc.difficulty) {
		return fmt.Errorf(
			"%w: hash %s does not meet difficulty %d",
			ErrInvalidBlock, block.Hash, bc.difficulty,
		)
	}
	return nil
}

// Validate walks a snapshot of the chain and returns a *ValidationError
// for the first broken block, or nil.
func (bc *Blockchain) Validate() error {
	snapshot := bc.Blocks()
	if len(snapshot) == 0 {
		return ErrEmptyChain
	}

	verr := validateBlocks(snapshot, bc.difficulty)
	if verr == nil {
		return nil
	}
	monitoring.RecordValidationFailure(string(verr.Reason))
	logx.Warn("CHAIN", verr.Error())
	return verr
}

func (bc *Blockchain) IsValid() bool {
	return bc.Validate() == nil
}

func validateBlocks(chain []blocks.Block, difficulty int) *ValidationError {
	if !genesis.IsGenesis(chain[0]) {
		return &ValidationError{
			Index:    chain[0].Index,
			Position: 0,
			Reason:   REASON_BAD_GENESIS,
			Expected: genesis.GENESIS_DATA,
			Actual:   chain[0].Data,
		}
	}

	for i := range chain {
		current := &chain[i]
		if calculated := current.CalculateHash(); current.Hash != calculated {
			return &ValidationError{
				Index:    current.Index,
				Position: i,
				Reason:   REASON_HASH_MISMATCH,
				Expected: calculated,
				Actual:   current.Hash,
			}
		}
		if i == 0 {
			continue
		}

		previous := &chain[i-1]
		if current.PreviousHash != previous.Hash {
			return &ValidationError{
				Index:    current.Index,
				Position: i,
				Reason:   REASON_BROKEN_LINK,
				Expected: previous.Hash,
				Actual:   current.PreviousHash,
			}
		}
		if !digest.HasLeadingZeros(current.Hash, difficulty) {
			return &ValidationError{
				Index:    current.Index,
				Position: i,
				Reason:   REASON_INSUFFICIENT_WORK,
				Expected: fmt.Sprint(difficulty),
				Actual:   current.Hash,
			}
		}
	}
	return nil
}
