package blocks

import (
	"powchain/digest"
	"testing"

	"github.com/btcsuite/btcutil/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture() *Block {
	b := NewBlock("payload", "0", digest.SHA256)
	b.Timestamp = 1_700_000_000_000_000_000
	b.Rehash()
	return b
}

func TestNewBlockDefaults(t *testing.T) {
	b := NewBlock("hello", "abc", digest.SHA256)
	assert.Equal(t, uint64(0), b.Index)
	assert.Equal(t, uint64(0), b.Nonce)
	assert.NotZero(t, b.Timestamp)
	assert.Equal(t, "abc", b.PreviousHash)
	assert.Equal(t, b.CalculateHash(), b.Hash)
	assert.Len(t, b.Hash, digest.HEX_LEN)
}

func TestCalculateHashMatchesPreimage(t *testing.T) {
	b := fixture()
	b.Index = 3
	b.Nonce = 42
	want := digest.SumString("31700000000000000000payload042")
	assert.Equal(t, want, b.CalculateHash())
}

func TestCalculateHashIsPure(t *testing.T) {
	b := fixture()
	before := *b
	h1 := b.CalculateHash()
	h2 := b.CalculateHash()
	assert.Equal(t, h1, h2)
	assert.Equal(t, before, *b)
}

func TestEveryFieldMutationChangesHash(t *testing.T) {
	base := fixture()
	mutations := map[string]func(b *Block){
		"index":        func(b *Block) { b.Index++ },
		"timestamp":    func(b *Block) { b.Timestamp++ },
		"data":         func(b *Block) { b.Data += "!" },
		"previousHash": func(b *Block) { b.PreviousHash = "1" },
		"nonce":        func(b *Block) { b.Nonce++ },
		"algorithm":    func(b *Block) { b.Algorithm = digest.SHA3_256 },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			b := base.Clone()
			mutate(&b)
			assert.NotEqual(t, base.Hash, b.CalculateHash())
		})
	}
}

func TestCloneIsIndependent(t *testing.T) {
	b := fixture()
	c := b.Clone()
	c.Data = "changed"
	c.Rehash()
	assert.Equal(t, "payload", b.Data)
	assert.NotEqual(t, b.Hash, c.Hash)
}

func TestShortID(t *testing.T) {
	b := fixture()
	id := b.ShortID()
	require.NotEmpty(t, id)
	assert.Len(t, base58.Decode(id), 32)

	b.Hash = "0"
	assert.Equal(t, "0", b.ShortID())
}
