package state

import (
	"math/big"
	"testing"

	"cashchain/native/cashback"
	"cashchain/storage"
)

func newTestManager() *Manager {
	return NewManager(storage.NewMemDB())
}

func TestConfigRoundTrip(t *testing.T) {
	manager := newTestManager()
	if _, ok, err := manager.CashbackConfig(); err != nil || ok {
		t.Fatalf("expected no config on a fresh database, got ok=%v err=%v", ok, err)
	}
	cfg := &cashback.Config{
		Owner:           "owner1",
		UnderlyingAsset: "uatom",
		Rules: []cashback.TierRule{
			{MinBalance: big.NewInt(400), RateBps: 4000},
			{MinBalance: big.NewInt(100), RateBps: 1000},
		},
	}
	if err := manager.SetCashbackConfig(cfg); err != nil {
		t.Fatalf("set config: %v", err)
	}
	loaded, ok, err := manager.CashbackConfig()
	if err != nil || !ok {
		t.Fatalf("load config: ok=%v err=%v", ok, err)
	}
	if loaded.Owner != cfg.Owner || loaded.UnderlyingAsset != cfg.UnderlyingAsset {
		t.Fatalf("unexpected config: %+v", loaded)
	}
	if len(loaded.Rules) != 2 || loaded.Rules[0].MinBalance.Int64() != 400 || loaded.Rules[1].RateBps != 1000 {
		t.Fatalf("unexpected rules: %+v", loaded.Rules)
	}
}

func TestLastCampaignIDRoundTrip(t *testing.T) {
	manager := newTestManager()
	id, err := manager.LastCampaignID()
	if err != nil || id != 0 {
		t.Fatalf("expected zero on a fresh database, got %d (%v)", id, err)
	}
	if err := manager.SetLastCampaignID(7); err != nil {
		t.Fatalf("set last id: %v", err)
	}
	id, err = manager.LastCampaignID()
	if err != nil || id != 7 {
		t.Fatalf("expected 7, got %d (%v)", id, err)
	}
}

func TestCampaignRoundTrip(t *testing.T) {
	manager := newTestManager()
	if _, ok, err := manager.Campaign(1); err != nil || ok {
		t.Fatalf("expected missing campaign, got ok=%v err=%v", ok, err)
	}
	campaign := &cashback.Campaign{
		ID:          1,
		Start:       500,
		End:         2000,
		RewardAsset: "ureward",
		TotalReward: big.NewInt(1000),
		Distributed: big.NewInt(300),
	}
	if err := manager.PutCampaign(campaign); err != nil {
		t.Fatalf("put campaign: %v", err)
	}
	loaded, ok, err := manager.Campaign(1)
	if err != nil || !ok {
		t.Fatalf("load campaign: ok=%v err=%v", ok, err)
	}
	if loaded.RewardAsset != "ureward" || loaded.TotalReward.Int64() != 1000 || loaded.Distributed.Int64() != 300 {
		t.Fatalf("unexpected campaign: %+v", loaded)
	}
}

func TestPendingLedgerIndex(t *testing.T) {
	manager := newTestManager()
	if err := manager.SetPendingCashback("bob", big.NewInt(600)); err != nil {
		t.Fatalf("set pending: %v", err)
	}
	if err := manager.SetPendingCashback("alice", big.NewInt(300)); err != nil {
		t.Fatalf("set pending: %v", err)
	}
	// Re-writing an existing entry must not duplicate it in the index.
	if err := manager.SetPendingCashback("alice", big.NewInt(400)); err != nil {
		t.Fatalf("set pending: %v", err)
	}
	users, err := manager.PendingCashbackUsers()
	if err != nil {
		t.Fatalf("pending users: %v", err)
	}
	if len(users) != 2 || users[0] != "alice" || users[1] != "bob" {
		t.Fatalf("expected sorted deduplicated index, got %v", users)
	}
	amount, err := manager.PendingCashback("alice")
	if err != nil || amount.Int64() != 400 {
		t.Fatalf("expected 400 pending, got %v (%v)", amount, err)
	}

	if err := manager.RemovePendingCashback("alice"); err != nil {
		t.Fatalf("remove pending: %v", err)
	}
	users, err = manager.PendingCashbackUsers()
	if err != nil || len(users) != 1 || users[0] != "bob" {
		t.Fatalf("expected only bob left, got %v (%v)", users, err)
	}
	amount, err = manager.PendingCashback("alice")
	if err != nil || amount.Sign() != 0 {
		t.Fatalf("removed entry must read as zero, got %v (%v)", amount, err)
	}
}

func TestCampaignCashbackRoundTrip(t *testing.T) {
	manager := newTestManager()
	amount, err := manager.CampaignCashback(1, "alice")
	if err != nil || amount.Sign() != 0 {
		t.Fatalf("expected zero history, got %v (%v)", amount, err)
	}
	if err := manager.SetCampaignCashback(1, "alice", big.NewInt(300)); err != nil {
		t.Fatalf("set history: %v", err)
	}
	amount, err = manager.CampaignCashback(1, "alice")
	if err != nil || amount.Int64() != 300 {
		t.Fatalf("expected 300, got %v (%v)", amount, err)
	}
	// Same user under a different campaign stays independent.
	amount, err = manager.CampaignCashback(2, "alice")
	if err != nil || amount.Sign() != 0 {
		t.Fatalf("expected zero under campaign 2, got %v (%v)", amount, err)
	}
}

func TestWhitelistRoundTrip(t *testing.T) {
	manager := newTestManager()
	list, err := manager.WhitelistedCallers()
	if err != nil || len(list) != 0 {
		t.Fatalf("expected empty whitelist, got %v (%v)", list, err)
	}
	if err := manager.SetWhitelistedCallers([]string{"hub1", "hub2"}); err != nil {
		t.Fatalf("set whitelist: %v", err)
	}
	list, err = manager.WhitelistedCallers()
	if err != nil || len(list) != 2 || list[0] != "hub1" {
		t.Fatalf("unexpected whitelist: %v (%v)", list, err)
	}
	if err := manager.SetWhitelistedCallers(nil); err != nil {
		t.Fatalf("clear whitelist: %v", err)
	}
	list, err = manager.WhitelistedCallers()
	if err != nil || len(list) != 0 {
		t.Fatalf("expected cleared whitelist, got %v (%v)", list, err)
	}
}

func TestBalanceRoundTrip(t *testing.T) {
	manager := newTestManager()
	balance, err := manager.BalanceOf("alice", "uatom")
	if err != nil || balance.Sign() != 0 {
		t.Fatalf("expected zero balance, got %v (%v)", balance, err)
	}
	if err := manager.SetBalance("alice", "uatom", big.NewInt(150)); err != nil {
		t.Fatalf("set balance: %v", err)
	}
	balance, err = manager.BalanceOf("alice", "uatom")
	if err != nil || balance.Int64() != 150 {
		t.Fatalf("expected 150, got %v (%v)", balance, err)
	}
	// Distinct assets must not collide.
	balance, err = manager.BalanceOf("alice", "uusdc")
	if err != nil || balance.Sign() != 0 {
		t.Fatalf("expected zero uusdc balance, got %v (%v)", balance, err)
	}
}

func TestOverlayStagesWholeCall(t *testing.T) {
	base := storage.NewMemDB()
	overlay := storage.NewOverlay(base)
	staged := NewManager(overlay)
	durable := NewManager(base)

	if err := staged.SetLastCampaignID(1); err != nil {
		t.Fatalf("set last id: %v", err)
	}
	if err := staged.SetPendingCashback("alice", big.NewInt(300)); err != nil {
		t.Fatalf("set pending: %v", err)
	}
	if id, err := durable.LastCampaignID(); err != nil || id != 0 {
		t.Fatalf("base must stay untouched before commit, got %d (%v)", id, err)
	}

	if err := overlay.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if id, err := durable.LastCampaignID(); err != nil || id != 1 {
		t.Fatalf("expected committed id 1, got %d (%v)", id, err)
	}
	if amount, err := durable.PendingCashback("alice"); err != nil || amount.Int64() != 300 {
		t.Fatalf("expected committed pending 300, got %v (%v)", amount, err)
	}
}

func TestOverlayDiscard(t *testing.T) {
	base := storage.NewMemDB()
	durable := NewManager(base)
	if err := durable.SetLastCampaignID(5); err != nil {
		t.Fatalf("seed last id: %v", err)
	}

	overlay := storage.NewOverlay(base)
	staged := NewManager(overlay)
	if err := staged.SetLastCampaignID(6); err != nil {
		t.Fatalf("set last id: %v", err)
	}
	overlay.Close()

	if id, err := durable.LastCampaignID(); err != nil || id != 5 {
		t.Fatalf("discarded overlay must leave the base at 5, got %d (%v)", id, err)
	}
}
