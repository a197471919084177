package genesis

import (
	"powchain/digest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenesisBlockShape(t *testing.T) {
	b := NewGenesis(digest.SHA256).Block()
	assert.Equal(t, uint64(0), b.Index)
	assert.Equal(t, uint64(0), b.Nonce)
	assert.Equal(t, GENESIS_DATA, b.Data)
	assert.Equal(t, GENESIS_PREVIOUS_HASH, b.PreviousHash)
	assert.Equal(t, b.CalculateHash(), b.Hash)
	assert.True(t, IsGenesis(b))
}

func TestFixedTimestampIsReproducible(t *testing.T) {
	g := Genesis{Timestamp: 1_000, Algorithm: digest.BLAKE2B256}
	a, b := g.Block(), g.Block()
	assert.Equal(t, a, b)
	assert.Equal(t, int64(1_000), a.Timestamp)
	assert.Equal(t, digest.BLAKE2B256, a.Algorithm)
}

func TestIsGenesisRejectsOrdinaryBlock(t *testing.T) {
	b := NewGenesis(digest.SHA256).Block()
	b.Index = 1
	assert.False(t, IsGenesis(b))
}
