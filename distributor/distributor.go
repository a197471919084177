package distributor

import (
	"context"
	"errors"
	"fmt"
	"powchain/blockchain"
	"powchain/logx"
	"powchain/memory"
	"powchain/pow"
	"powchain/workqueue"
	"runtime/debug"
	"sync"

	"golang.org/x/sync/errgroup"
)

var (
	ErrNoWorkers        = errors.New("worker count must be positive")
	ErrRetriesExhausted = errors.New("block kept losing the race for the chain tail")
)

type Config struct {
	// QueueCapacity bounds the work queue; zero sizes it to hold every
	// payload plus the stop markers.
	QueueCapacity int
	// MaxRetries limits re-mining after a stale append; zero means no limit.
	MaxRetries int
}

type Distributor struct {
	chain *blockchain.Blockchain
	miner *pow.Miner
	cfg   Config
}

func New(chain *blockchain.Blockchain, miner *pow.Miner, cfg Config) *Distributor {
	return &Distributor{
		chain: chain,
		miner: miner,
		cfg:   cfg,
	}
}

// Run mines every payload with workerCount workers and returns once all
// of them have exited. Chain order follows mining completion, not
// submission order. The first worker error cancels the others.
func (d *Distributor) Run(
	ctx context.Context,
	payloads []string,
	workerCount int,
) ([]memory.Receipt, error) {
	if workerCount <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrNoWorkers, workerCount)
	}

	capacity := d.cfg.QueueCapacity
	if capacity <= 0 {
		capacity = len(payloads) + workerCount
	}
	queue, err := workqueue.New[string](capacity)
	if err != nil {
		return nil, err
	}

	receipts := memory.NewReceiptPool()
	g, gctx := errgroup.WithContext(ctx)

	var started sync.WaitGroup
	for id := 1; id <= workerCount; id++ {
		node := NewMinerNode(id, d.miner, d.chain, receipts, d.cfg.MaxRetries)
		started.Add(1)
		g.Go(safeGo(fmt.Sprintf("worker %d", node.ID()), func() error {
			started.Done()
			return node.Run(gctx, queue)
		}))
	}
	started.Wait()
	logx.Info(
		"DISTRIBUTOR",
		fmt.Sprintf("%d workers started for %d payloads (queue capacity %d)", workerCount, len(payloads), queue.Cap()),
	)

	g.Go(safeGo("producer", func() error {
		for seq, payload := range payloads {
			if err := queue.Put(gctx, seq, payload); err != nil {
				return err
			}
		}
		for i := 0; i < workerCount; i++ {
			if err := queue.Close(gctx); err != nil {
				return err
			}
		}
		return nil
	}))

	err = g.Wait()
	all := receipts.GetAll()
	if err != nil {
		return all, logx.Errorf("mining stopped after %d of %d payloads: %w", len(all), len(payloads), err)
	}
	logx.Info("DISTRIBUTOR", fmt.Sprintf("all %d workers finished, %d blocks appended", workerCount, len(all)))
	return all, nil
}

// safeGo turns a panic inside a pool goroutine into an error.
func safeGo(name string, fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				logx.Error("PANIC", name, " ", r, " ", string(debug.Stack()))
				err = fmt.Errorf("%s panicked: %v", name, r)
			}
		}()
		return fn()
	}
}
