package blockchain

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyChain   = errors.New("chain has no genesis block")
	ErrStaleTip     = errors.New("block was mined against a stale tail")
	ErrInvalidBlock = errors.New("block failed append checks")
)

type Reason string

const (
	REASON_HASH_MISMATCH     Reason = "hash"
	REASON_BROKEN_LINK       Reason = "link"
	REASON_INSUFFICIENT_WORK Reason = "work"
	REASON_BAD_GENESIS       Reason = "genesis"
)

// ValidationError reports the first block that breaks a chain invariant.
type ValidationError struct {
	Index    uint64
	Position int
	Reason   Reason
	Expected string
	Actual   string
}

func (e *ValidationError) Error() string {
	switch e.Reason {
	case REASON_HASH_MISMATCH:
		return fmt.Sprintf(
			"block %d hash is invalid: stored %s, calculated %s",
			e.Index, e.Actual, e.Expected,
		)
	case REASON_BROKEN_LINK:
		return fmt.Sprintf(
			"block %d previous hash is invalid: stored %s, previous block hash %s",
			e.Index, e.Actual, e.Expected,
		)
	case REASON_INSUFFICIENT_WORK:
		return fmt.Sprintf(
			"block %d hash %s does not meet difficulty %s",
			e.Index, e.Actual, e.Expected,
		)
	default:
		return fmt.Sprintf(
			"block %d is not a valid genesis: %s",
			e.Index, e.Actual,
		)
	}
}
