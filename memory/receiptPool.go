package memory

import (
	"powchain/blocks"
	"powchain/common"
	"powchain/logx"
	"sync"
	"time"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Receipt records which worker committed which payload and how.
type Receipt struct {
	WorkerID int           `json:"worker"`
	Seq      int           `json:"seq"`
	Payload  string        `json:"payload"`
	Index    uint64        `json:"index"`
	Nonce    uint64        `json:"nonce"`
	Hash     string        `json:"hash"`
	Key      string        `json:"key"`
	Attempts uint64        `json:"attempts"`
	Retries  int           `json:"retries"`
	Elapsed  time.Duration `json:"elapsed"`
}

func NewReceipt(workerID int, seq int, block *blocks.Block) Receipt {
	return Receipt{
		WorkerID: workerID,
		Seq:      seq,
		Payload:  block.Data,
		Index:    block.Index,
		Nonce:    block.Nonce,
		Hash:     block.Hash,
		Key:      block.ShortID(),
	}
}

type ReceiptPool struct {
	sync.Mutex
	pool map[string]Receipt
}

func NewReceiptPool() *ReceiptPool {
	return &ReceiptPool{
		pool: map[string]Receipt{},
	}
}

func (p *ReceiptPool) Len() int {
	p.Lock()
	defer p.Unlock()
	return len(p.pool)
}

// Append keeps the first receipt recorded for a block key.
func (p *ReceiptPool) Append(r Receipt) bool {
	p.Lock()
	defer p.Unlock()
	if _, ok := p.pool[r.Key]; ok {
		logx.Debug("RECEIPTS", "receipt key already exists, skipped: ", r.Key)
		return false
	}
	p.pool[r.Key] = r
	return true
}

// GetAll returns receipts ordered by block index.
func (p *ReceiptPool) GetAll() []Receipt {
	p.Lock()
	defer p.Unlock()
	receipts := maps.Values(p.pool)
	slices.SortFunc(receipts, func(a, b Receipt) bool {
		return a.Index < b.Index
	})
	return receipts
}

func (p *ReceiptPool) ByWorker(id int) []Receipt {
	return common.FindAll(p.GetAll(), func(r Receipt) bool {
		return r.WorkerID == id
	})
}
