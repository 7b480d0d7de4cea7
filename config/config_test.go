package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RPCAddress != ":8645" {
		t.Fatalf("expected default rpc address, got %q", cfg.RPCAddress)
	}
	if cfg.StorageBackend != "leveldb" {
		t.Fatalf("expected default backend, got %q", cfg.StorageBackend)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config file was not written: %v", err)
	}
	// The written file must load back.
	if _, err := Load(path); err != nil {
		t.Fatalf("reload: %v", err)
	}
}

func TestLoadAppliesDefaultsToPartialFile(t *testing.T) {
	path := writeConfig(t, `RPCAddress = ":9999"`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RPCAddress != ":9999" {
		t.Fatalf("expected configured address, got %q", cfg.RPCAddress)
	}
	if cfg.DataDir != "./cashchain-data" || cfg.StorageBackend != "leveldb" || cfg.ServiceName != "cashchaind" {
		t.Fatalf("defaults were not applied: %+v", cfg)
	}
}

func TestLoadGenesisRules(t *testing.T) {
	path := writeConfig(t, `
StorageBackend = "bolt"

[Genesis]
Owner = "owner1"
UnderlyingAsset = "uatom"

[[Genesis.Rules]]
MinBalance = "100"
RateBps = 1000

[[Genesis.Rules]]
MinBalance = "200"
RateBps = 2000
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Genesis.Owner != "owner1" || cfg.Genesis.UnderlyingAsset != "uatom" {
		t.Fatalf("unexpected genesis: %+v", cfg.Genesis)
	}
	rules, err := TierRules(cfg.Genesis.Rules)
	if err != nil {
		t.Fatalf("tier rules: %v", err)
	}
	if len(rules) != 2 || rules[0].MinBalance.Int64() != 100 || rules[1].RateBps != 2000 {
		t.Fatalf("unexpected rules: %+v", rules)
	}
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	path := writeConfig(t, `StorageBackend = "postgres"`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for unsupported backend")
	}
}

func TestTierRulesRejectsBadThreshold(t *testing.T) {
	if _, err := TierRules([]GenesisRule{{MinBalance: "not-a-number", RateBps: 100}}); err == nil {
		t.Fatalf("expected error for invalid threshold")
	}
}

func TestTierRulesEmptyThresholdIsZero(t *testing.T) {
	rules, err := TierRules([]GenesisRule{{MinBalance: "", RateBps: 100}})
	if err != nil {
		t.Fatalf("tier rules: %v", err)
	}
	if len(rules) != 1 || rules[0].MinBalance.Sign() != 0 {
		t.Fatalf("expected zero threshold, got %+v", rules)
	}
}
