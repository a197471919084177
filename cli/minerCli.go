package cli

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"powchain/blockchain"
	"powchain/blocks"
	"powchain/common"
	"powchain/config"
	"powchain/distributor"
	"powchain/logx"
	"powchain/memory"
	"powchain/monitoring"
	"powchain/pow"
	"syscall"

	"github.com/spf13/cobra"
)

type mineFlags struct {
	configPath   string
	workloadPath string
	workers      int
	difficulty   uint8
	algorithm    string
	policy       string
	metricsAddr  string
	asJSON       bool
}

type mineReport struct {
	Valid    bool             `json:"valid"`
	Error    string           `json:"error,omitempty"`
	Chain    []blocks.Block   `json:"chain"`
	Receipts []memory.Receipt `json:"receipts"`
}

func newMineCommand() *cobra.Command {
	f := mineFlags{}
	cmd := &cobra.Command{
		Use:   "mine [payload...]",
		Short: "Mine payloads into a fresh chain and validate it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMine(cmd, f, args)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&f.configPath, "config", "c", "", "path to .ini tuning file")
	flags.StringVarP(&f.workloadPath, "workload", "w", "", "path to YAML workload file")
	flags.IntVar(&f.workers, "workers", 0, "number of mining workers")
	flags.Uint8VarP(&f.difficulty, "difficulty", "d", 0, "leading zero hex characters required")
	flags.StringVar(&f.algorithm, "algorithm", "", "hash algorithm (sha256, sha3-256, blake2b-256)")
	flags.StringVar(&f.policy, "policy", "", "append policy for stale blocks (strict, restamp)")
	flags.StringVar(&f.metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")
	flags.BoolVar(&f.asJSON, "json", false, "print the chain and receipts as JSON")
	return cmd
}

func applyFlags(cmd *cobra.Command, f mineFlags, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("workers") {
		cfg.Distributor.Workers = f.workers
	}
	if flags.Changed("difficulty") {
		cfg.Miner.Difficulty = f.difficulty
	}
	if flags.Changed("algorithm") {
		cfg.Miner.HashAlgorithm = f.algorithm
	}
	if flags.Changed("policy") {
		cfg.Distributor.LinkPolicy = f.policy
	}
	if flags.Changed("metrics-addr") {
		cfg.Metrics.ListenAddr = f.metricsAddr
	}
	return cfg.Validate()
}

var errPayloadSources = errors.New("pass payloads as arguments or --workload, not both")

func loadPayloads(f mineFlags, args []string) (*config.Workload, error) {
	if len(args) > 0 && f.workloadPath != "" {
		return nil, errPayloadSources
	}
	if len(args) > 0 {
		return &config.Workload{Payloads: args}, nil
	}
	if f.workloadPath != "" {
		return config.LoadWorkload(f.workloadPath)
	}
	return config.DefaultWorkload(), nil
}

func runMine(cmd *cobra.Command, f mineFlags, args []string) error {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, f, cfg); err != nil {
		return err
	}
	logx.Init(cfg.LogConfig())
	defer logx.Close()

	workload, err := loadPayloads(f, args)
	if err != nil {
		return err
	}

	if cfg.Metrics.ListenAddr != "" {
		go func() {
			err := monitoring.ServeMetrics(cfg.Metrics.ListenAddr)
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				logx.Error("METRICS", err)
			}
		}()
	}

	chainOpts := []blockchain.Option{
		blockchain.WithAlgorithm(cfg.Algorithm()),
		blockchain.WithGenesisTimestamp(workload.GenesisTimestamp),
		blockchain.WithLinkPolicy(cfg.Policy()),
	}
	if cfg.Policy() == blockchain.LINK_STRICT {
		chainOpts = append(chainOpts, blockchain.WithDifficulty(int(cfg.Miner.Difficulty)))
	}
	chain := blockchain.NewBlockchain(chainOpts...)

	miner, err := pow.NewMiner(
		cfg.Miner.Difficulty,
		pow.WithAlgorithm(cfg.Algorithm()),
		pow.WithMaxNonce(cfg.Miner.MaxNonce),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d := distributor.New(chain, miner, distributor.Config{
		QueueCapacity: cfg.Distributor.QueueCapacity,
		MaxRetries:    cfg.Distributor.MaxRetries,
	})
	receipts, runErr := d.Run(ctx, workload.Payloads, cfg.Distributor.Workers)

	validErr := chain.Validate()
	if cfg.Policy() == blockchain.LINK_RESTAMP {
		auditWork(chain, miner)
	}

	out := cmd.OutOrStdout()
	if f.asJSON {
		if err := printJSON(out, chain, receipts, validErr); err != nil {
			return err
		}
	} else {
		printSummary(out, receipts, validErr)
	}

	if runErr != nil {
		return runErr
	}
	if validErr != nil {
		return fmt.Errorf("blockchain is NOT valid: %w", validErr)
	}
	return nil
}

// auditWork reports blocks whose proof of work was lost when the
// restamp policy re-linked them.
func auditWork(chain *blockchain.Blockchain, miner *pow.Miner) {
	lost := common.FindAll(chain.Blocks()[1:], func(b blocks.Block) bool {
		return !miner.IsValidProof(b.Hash)
	})
	for _, b := range lost {
		logx.Warn(
			"AUDIT",
			fmt.Sprintf("block %d hash %s no longer meets difficulty %d after restamp", b.Index, b.Hash, miner.Difficulty()),
		)
	}
}

func printSummary(out io.Writer, receipts []memory.Receipt, validErr error) {
	for _, r := range receipts {
		fmt.Fprintf(out, "Worker %d mined a block.\n", r.WorkerID)
		fmt.Fprintf(out, "Data: %s\n", r.Payload)
		fmt.Fprintf(out, "Index: %d\n", r.Index)
		fmt.Fprintf(out, "Nonce: %d\n", r.Nonce)
		fmt.Fprintf(out, "Current Hash: %s\n\n", r.Hash)
	}
	if validErr == nil {
		fmt.Fprintln(out, "Blockchain is valid.")
	} else {
		fmt.Fprintln(out, "Blockchain is NOT valid.")
	}
}

func printJSON(out io.Writer, chain *blockchain.Blockchain, receipts []memory.Receipt, validErr error) error {
	report := mineReport{
		Valid:    validErr == nil,
		Chain:    chain.Blocks(),
		Receipts: receipts,
	}
	if validErr != nil {
		report.Error = validErr.Error()
	}
	enc, err := common.Encode(report)
	if err != nil {
		return err
	}
	_, err = out.Write(enc)
	return err
}
