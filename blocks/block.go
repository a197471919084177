package blocks

import (
	"encoding/hex"
	"powchain/digest"
	"strconv"
	"strings"
	"time"

	"github.com/btcsuite/btcutil/base58"
)

type Block struct {
	Index        uint64           `json:"index"`
	Timestamp    int64            `json:"timestamp"`
	Data         string           `json:"data"`
	PreviousHash string           `json:"previousHash"`
	Nonce        uint64           `json:"nonce"`
	Hash         string           `json:"hash"`
	Algorithm    digest.Algorithm `json:"algorithm"`
}

// NewBlock leaves Index at 0; linkage is settled when the block is
// mined against a tail or appended to a chain.
func NewBlock(
	data string,
	previousHash string,
	alg digest.Algorithm,
) *Block {
	block := Block{
		Index:        0,
		Timestamp:    time.Now().UnixNano(),
		Data:         data,
		PreviousHash: previousHash,
		Nonce:        0,
		Algorithm:    alg,
	}
	block.Rehash()
	return &block
}

func (b *Block) preimage() []byte {
	var sb strings.Builder
	sb.Grow(len(b.Data) + len(b.PreviousHash) + 64)
	sb.WriteString(strconv.FormatUint(b.Index, 10))
	sb.WriteString(strconv.FormatInt(b.Timestamp, 10))
	sb.WriteString(b.Data)
	sb.WriteString(b.PreviousHash)
	sb.WriteString(strconv.FormatUint(b.Nonce, 10))
	return []byte(sb.String())
}

func (b *Block) CalculateHash() string {
	return b.Algorithm.Sum(b.preimage())
}

func (b *Block) Rehash() {
	b.Hash = b.CalculateHash()
}

func (b *Block) Clone() Block {
	return *b
}

// ShortID is the base58 form of the raw hash bytes,
// falling back to the hex string when the hash is not valid hex.
func (b *Block) ShortID() string {
	raw, err := hex.DecodeString(b.Hash)
	if err != nil || len(raw) == 0 {
		return b.Hash
	}
	return base58.Encode(raw)
}
