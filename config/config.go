package config

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"cashchain/native/cashback"
)

// GenesisRule declares one tier rule in the config file. Thresholds are
// decimal strings so arbitrarily large balances survive the TOML round trip.
type GenesisRule struct {
	MinBalance string `toml:"MinBalance"`
	RateBps    uint32 `toml:"RateBps"`
}

// Genesis seeds the engine configuration on first start. It is ignored once
// the engine has been initialised.
type Genesis struct {
	Owner           string        `toml:"Owner"`
	UnderlyingAsset string        `toml:"UnderlyingAsset"`
	Rules           []GenesisRule `toml:"Rules"`
}

type Config struct {
	RPCAddress     string  `toml:"RPCAddress"`
	MetricsAddress string  `toml:"MetricsAddress"`
	DataDir        string  `toml:"DataDir"`
	StorageBackend string  `toml:"StorageBackend"`
	ServiceName    string  `toml:"ServiceName"`
	Environment    string  `toml:"Environment"`
	Genesis        Genesis `toml:"Genesis"`
}

// Load loads the configuration from the given path.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.RPCAddress) == "" {
		cfg.RPCAddress = ":8645"
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./cashchain-data"
	}
	if strings.TrimSpace(cfg.StorageBackend) == "" {
		cfg.StorageBackend = "leveldb"
	}
	if strings.TrimSpace(cfg.ServiceName) == "" {
		cfg.ServiceName = "cashchaind"
	}
}

// Validate checks the configuration for values the daemon cannot start with.
func Validate(cfg *Config) error {
	switch strings.ToLower(strings.TrimSpace(cfg.StorageBackend)) {
	case "leveldb", "bolt":
	default:
		return fmt.Errorf("config: unsupported storage backend %q", cfg.StorageBackend)
	}
	if _, err := TierRules(cfg.Genesis.Rules); err != nil {
		return err
	}
	return nil
}

// TierRules converts the configured genesis rules into engine tier rules.
func TierRules(rules []GenesisRule) ([]cashback.TierRule, error) {
	converted := make([]cashback.TierRule, 0, len(rules))
	for _, rule := range rules {
		threshold := big.NewInt(0)
		if trimmed := strings.TrimSpace(rule.MinBalance); trimmed != "" {
			parsed, ok := new(big.Int).SetString(trimmed, 10)
			if !ok {
				return nil, fmt.Errorf("config: invalid rule threshold %q", rule.MinBalance)
			}
			threshold = parsed
		}
		converted = append(converted, cashback.TierRule{MinBalance: threshold, RateBps: rule.RateBps})
	}
	return converted, nil
}

func createDefault(path string) (*Config, error) {
	cfg := &Config{}
	applyDefaults(cfg)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
