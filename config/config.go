package config

import (
	"errors"
	"fmt"
	"os"
	"powchain/blockchain"
	"powchain/common"
	"powchain/digest"
	"powchain/logx"
	"powchain/pow"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

type MinerConfig struct {
	Difficulty    uint8  `ini:"difficulty"`
	HashAlgorithm string `ini:"hash_algorithm"`
	MaxNonce      uint64 `ini:"max_nonce"`
}

type DistributorConfig struct {
	Workers       int    `ini:"workers"`
	QueueCapacity int    `ini:"queue_capacity"`
	LinkPolicy    string `ini:"link_policy"`
	MaxRetries    int    `ini:"max_retries"`
}

type LogConfig struct {
	File       string `ini:"file"`
	MaxSizeMB  int    `ini:"max_size_mb"`
	MaxAgeDays int    `ini:"max_age_days"`
	Debug      bool   `ini:"debug"`
}

type MetricsConfig struct {
	ListenAddr string `ini:"listen_addr"`
}

type Config struct {
	Miner       MinerConfig
	Distributor DistributorConfig
	Log         LogConfig
	Metrics     MetricsConfig
}

// Workload is the list of payloads to mine, read from YAML.
type Workload struct {
	GenesisTimestamp int64    `yaml:"genesis_timestamp"`
	Payloads         []string `yaml:"payloads"`
}

var ErrNoPayloads = errors.New("workload has no payloads")

func Default() *Config {
	return &Config{
		Miner: MinerConfig{
			Difficulty:    pow.DEFAULT_DIFFICULTY,
			HashAlgorithm: string(digest.DEFAULT),
			MaxNonce:      pow.UNBOUNDED,
		},
		Distributor: DistributorConfig{
			Workers:       3,
			QueueCapacity: 0,
			LinkPolicy:    string(blockchain.DEFAULT_LINK_POLICY),
			MaxRetries:    0,
		},
		Log: LogConfig{
			MaxSizeMB:  100,
			MaxAgeDays: 7,
		},
	}
}

func DefaultWorkload() *Workload {
	return &Workload{
		Payloads: []string{
			"Transaction 1",
			"Transaction 2",
			"Transaction 3",
			"Transaction 4",
			"Transaction 5",
		},
	}
}

// Load overlays the sections of an .ini file on the defaults. An empty
// path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" || !common.ExistFile(path) {
		if path != "" {
			logx.Warn("CONFIG", "config file not found, using defaults: ", path)
		}
		return cfg, nil
	}

	file, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	sections := map[string]interface{}{
		"miner":       &cfg.Miner,
		"distributor": &cfg.Distributor,
		"log":         &cfg.Log,
		"metrics":     &cfg.Metrics,
	}
	for name, target := range sections {
		if err := file.Section(name).MapTo(target); err != nil {
			return nil, fmt.Errorf("section [%s]: %w", name, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logx.Info(
		"CONFIG",
		fmt.Sprintf(
			"loaded %s: difficulty=%d algorithm=%s workers=%d policy=%s",
			path, cfg.Miner.Difficulty, cfg.Miner.HashAlgorithm,
			cfg.Distributor.Workers, cfg.Distributor.LinkPolicy,
		),
	)
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Miner.Difficulty == 0 || int(c.Miner.Difficulty) > pow.MAX_DIFFICULTY {
		return fmt.Errorf("miner.difficulty: %w: got %d", pow.ErrInvalidDifficulty, c.Miner.Difficulty)
	}
	if _, err := digest.ParseAlgorithm(c.Miner.HashAlgorithm); err != nil {
		return fmt.Errorf("miner.hash_algorithm: %w", err)
	}
	if c.Distributor.Workers <= 0 {
		return fmt.Errorf("distributor.workers must be positive, got %d", c.Distributor.Workers)
	}
	if c.Distributor.QueueCapacity < 0 {
		return fmt.Errorf("distributor.queue_capacity must not be negative, got %d", c.Distributor.QueueCapacity)
	}
	if c.Distributor.MaxRetries < 0 {
		return fmt.Errorf("distributor.max_retries must not be negative, got %d", c.Distributor.MaxRetries)
	}
	if _, err := blockchain.ParseLinkPolicy(c.Distributor.LinkPolicy); err != nil {
		return fmt.Errorf("distributor.link_policy: %w", err)
	}
	return nil
}

func (c *Config) Algorithm() digest.Algorithm {
	alg, err := digest.ParseAlgorithm(c.Miner.HashAlgorithm)
	if err != nil {
		return digest.DEFAULT
	}
	return alg
}

func (c *Config) Policy() blockchain.LinkPolicy {
	p, err := blockchain.ParseLinkPolicy(c.Distributor.LinkPolicy)
	if err != nil {
		return blockchain.DEFAULT_LINK_POLICY
	}
	return p
}

func (c *Config) LogConfig() logx.Config {
	return logx.Config{
		File:       c.Log.File,
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxAgeDays: c.Log.MaxAgeDays,
		Debug:      c.Log.Debug,
	}
}

// LoadWorkload reads a YAML workload file.
func LoadWorkload(path string) (*Workload, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var w Workload
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&w); err != nil {
		return nil, fmt.Errorf("decode workload %s: %w", path, err)
	}
	if len(w.Payloads) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoPayloads)
	}
	logx.Info("CONFIG", fmt.Sprintf("loaded %d payloads from %s", len(w.Payloads), path))
	return &w, nil
}
