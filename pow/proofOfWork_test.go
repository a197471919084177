package pow

import (
	"context"
	"errors"
	"powchain/blocks"
	"powchain/digest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMinerRejectsBadDifficulty(t *testing.T) {
	_, err := NewMiner(0)
	assert.True(t, errors.Is(err, ErrInvalidDifficulty))
	_, err = NewMiner(65)
	assert.True(t, errors.Is(err, ErrInvalidDifficulty))

	m, err := NewMiner(64)
	require.NoError(t, err)
	assert.Equal(t, uint8(64), m.Difficulty())
}

func TestIsValidProof(t *testing.T) {
	m, err := NewMiner(3)
	require.NoError(t, err)
	assert.True(t, m.IsValidProof("000abc"))
	assert.True(t, m.IsValidProof("0000bc"))
	assert.False(t, m.IsValidProof("00abcd"))
	assert.False(t, m.IsValidProof("00"))
}

func TestMineFindsSmallestValidNonce(t *testing.T) {
	for _, alg := range digest.Algorithms() {
		t.Run(alg.String(), func(t *testing.T) {
			m, err := NewMiner(2, WithAlgorithm(alg))
			require.NoError(t, err)

			b, err := m.Mine(context.Background(), "payload", "prev", 7, 1_234)
			require.NoError(t, err)

			assert.Equal(t, uint64(7), b.Index)
			assert.Equal(t, int64(1_234), b.Timestamp)
			assert.Equal(t, "prev", b.PreviousHash)
			assert.Equal(t, alg, b.Algorithm)
			assert.True(t, m.IsValidProof(b.Hash))
			assert.True(t, m.Verify(*b))

			probe := b.Clone()
			for n := uint64(0); n < b.Nonce; n++ {
				probe.Nonce = n
				assert.False(t, m.IsValidProof(probe.CalculateHash()), "nonce %d", n)
			}
		})
	}
}

func TestMineIsDeterministic(t *testing.T) {
	m, err := NewMiner(2)
	require.NoError(t, err)
	a, err := m.Mine(context.Background(), "x", "0", 1, 99)
	require.NoError(t, err)
	b, err := m.Mine(context.Background(), "x", "0", 1, 99)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestMineNextLinksToTip(t *testing.T) {
	m, err := NewMiner(1)
	require.NoError(t, err)
	tip := *blocks.NewBlock("tip", "0", digest.SHA256)
	tip.Index = 4
	tip.Rehash()

	b, err := m.MineNext(context.Background(), "next", tip)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), b.Index)
	assert.Equal(t, tip.Hash, b.PreviousHash)
}

func TestMineHonoursCancellation(t *testing.T) {
	m, err := NewMiner(64)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = m.Mine(ctx, "never", "0", 1, 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMineStopsAtMaxNonce(t *testing.T) {
	m, err := NewMiner(64, WithMaxNonce(100))
	require.NoError(t, err)

	_, err = m.Mine(context.Background(), "never", "0", 1, 1)
	assert.ErrorIs(t, err, ErrProofNotFound)
}

func TestVerifyRejectsTamperedBlock(t *testing.T) {
	m, err := NewMiner(1)
	require.NoError(t, err)
	b, err := m.Mine(context.Background(), "x", "0", 1, 1)
	require.NoError(t, err)

	tampered := b.Clone()
	tampered.Data = "y"
	assert.False(t, m.Verify(tampered))
}
