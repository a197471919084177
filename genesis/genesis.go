package genesis

import (
	"powchain/blocks"
	"powchain/digest"
	"time"
)

const (
	GENESIS_DATA          = "Genesis Block"
	GENESIS_PREVIOUS_HASH = "0"
)

type Genesis struct {
	Timestamp int64
	Algorithm digest.Algorithm
}

// NewGenesis stamps the genesis block with the current time.
func NewGenesis(alg digest.Algorithm) Genesis {
	return Genesis{
		Timestamp: time.Now().UnixNano(),
		Algorithm: alg,
	}
}

// Block is never mined: genesis carries nonce 0 regardless of difficulty.
func (g Genesis) Block() blocks.Block {
	block := blocks.NewBlock(GENESIS_DATA, GENESIS_PREVIOUS_HASH, g.Algorithm)
	if g.Timestamp != 0 {
		block.Timestamp = g.Timestamp
		block.Rehash()
	}
	return *block
}

func IsGenesis(b blocks.Block) bool {
	return b.Index == 0 &&
		b.Nonce == 0 &&
		b.Data == GENESIS_DATA &&
		b.PreviousHash == GENESIS_PREVIOUS_HASH
}
