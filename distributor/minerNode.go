package distributor

import (
	"context"
	"errors"
	"fmt"
	"powchain/blockchain"
	"powchain/logx"
	"powchain/memory"
	"powchain/monitoring"
	"powchain/pow"
	"powchain/workqueue"
	"time"
)

// MinerNode is one worker of the pool. Mining runs without holding any
// lock; only the final append goes through the chain's critical section.
type MinerNode struct {
	id         int
	miner      *pow.Miner
	chain      *blockchain.Blockchain
	receipts   *memory.ReceiptPool
	maxRetries int

	// beforeAppend runs between mining and the append attempt.
	beforeAppend func()
}

func NewMinerNode(
	id int,
	miner *pow.Miner,
	chain *blockchain.Blockchain,
	receipts *memory.ReceiptPool,
	maxRetries int,
) *MinerNode {
	return &MinerNode{
		id:         id,
		miner:      miner,
		chain:      chain,
		receipts:   receipts,
		maxRetries: maxRetries,
	}
}

func (m *MinerNode) ID() int {
	return m.id
}

// Run pulls payloads until it receives its stop marker.
func (m *MinerNode) Run(ctx context.Context, queue *workqueue.Queue[string]) error {
	monitoring.WorkerStarted()
	defer monitoring.WorkerStopped()
	logx.Debug("WORKER", fmt.Sprintf("worker %d started", m.id))

	err := queue.Drain(ctx, func(item workqueue.Item[string]) error {
		return m.mine(ctx, item)
	})
	if err != nil {
		return fmt.Errorf("worker %d: %w", m.id, err)
	}
	logx.Debug("WORKER", fmt.Sprintf("worker %d received stop marker", m.id))
	return nil
}

func (m *MinerNode) mine(ctx context.Context, item workqueue.Item[string]) error {
	start := time.Now()
	var attempts uint64
	for retries := 0; ; retries++ {
		tip, err := m.chain.Latest()
		if err != nil {
			return err
		}

		block, err := m.miner.MineNext(ctx, item.Value, tip)
		if err != nil {
			return err
		}
		attempts += block.Nonce + 1

		if m.beforeAppend != nil {
			m.beforeAppend()
		}
		committed, err := m.chain.Append(*block)
		if errors.Is(err, blockchain.ErrStaleTip) {
			if m.maxRetries > 0 && retries >= m.maxRetries {
				return fmt.Errorf(
					"%w: payload %q after %d retries", ErrRetriesExhausted, item.Value, retries,
				)
			}
			logx.Debug(
				"WORKER",
				fmt.Sprintf("worker %d lost the race for block %d, re-mining %q", m.id, block.Index, item.Value),
			)
			continue
		}
		if err != nil {
			return err
		}

		receipt := memory.NewReceipt(m.id, item.Seq, &committed)
		receipt.Retries = retries
		receipt.Attempts = attempts
		receipt.Elapsed = time.Since(start)
		m.receipts.Append(receipt)

		logx.Info(
			"WORKER",
			fmt.Sprintf(
				"worker %d mined a block\n data: %s\n index: %d\n nonce: %d\n hash: %s",
				m.id, committed.Data, committed.Index, committed.Nonce, committed.Hash,
			),
		)
		return nil
	}
}
