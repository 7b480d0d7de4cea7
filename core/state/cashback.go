package state

import (
	"math/big"
	"sort"

	"cashchain/native/cashback"
)

// Stored representations decouple the persisted layout from the engine types.
// RLP requires explicit unsigned integer fields and non-nil big integers.

type storedTierRule struct {
	MinBalance *big.Int
	RateBps    uint32
}

type storedConfig struct {
	Owner           string
	UnderlyingAsset string
	Rules           []storedTierRule
}

type storedCampaign struct {
	ID          uint64
	Start       uint64
	End         uint64
	RewardAsset string
	TotalReward *big.Int
	Distributed *big.Int
}

func nonNil(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return v
}

// CashbackConfig implements cashback.EngineState.
func (m *Manager) CashbackConfig() (*cashback.Config, bool, error) {
	stored := new(storedConfig)
	ok, err := m.kvGet(configKey, stored)
	if err != nil || !ok {
		return nil, false, err
	}
	cfg := &cashback.Config{
		Owner:           stored.Owner,
		UnderlyingAsset: stored.UnderlyingAsset,
		Rules:           make([]cashback.TierRule, len(stored.Rules)),
	}
	for i, rule := range stored.Rules {
		cfg.Rules[i] = cashback.TierRule{MinBalance: nonNil(rule.MinBalance), RateBps: rule.RateBps}
	}
	return cfg, true, nil
}

// SetCashbackConfig implements cashback.EngineState.
func (m *Manager) SetCashbackConfig(cfg *cashback.Config) error {
	stored := &storedConfig{
		Owner:           cfg.Owner,
		UnderlyingAsset: cfg.UnderlyingAsset,
		Rules:           make([]storedTierRule, len(cfg.Rules)),
	}
	for i, rule := range cfg.Rules {
		stored.Rules[i] = storedTierRule{MinBalance: nonNil(rule.MinBalance), RateBps: rule.RateBps}
	}
	return m.kvPut(configKey, stored)
}

// LastCampaignID implements cashback.EngineState.
func (m *Manager) LastCampaignID() (uint64, error) {
	var id uint64
	ok, err := m.kvGet(lastCampaignIDKey, &id)
	if err != nil || !ok {
		return 0, err
	}
	return id, nil
}

// SetLastCampaignID implements cashback.EngineState.
func (m *Manager) SetLastCampaignID(id uint64) error {
	return m.kvPut(lastCampaignIDKey, id)
}

// Campaign implements cashback.EngineState.
func (m *Manager) Campaign(id uint64) (*cashback.Campaign, bool, error) {
	stored := new(storedCampaign)
	ok, err := m.kvGet(campaignKey(id), stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &cashback.Campaign{
		ID:          stored.ID,
		Start:       stored.Start,
		End:         stored.End,
		RewardAsset: stored.RewardAsset,
		TotalReward: nonNil(stored.TotalReward),
		Distributed: nonNil(stored.Distributed),
	}, true, nil
}

// PutCampaign implements cashback.EngineState.
func (m *Manager) PutCampaign(c *cashback.Campaign) error {
	return m.kvPut(campaignKey(c.ID), &storedCampaign{
		ID:          c.ID,
		Start:       c.Start,
		End:         c.End,
		RewardAsset: c.RewardAsset,
		TotalReward: nonNil(c.TotalReward),
		Distributed: nonNil(c.Distributed),
	})
}

// PendingCashback implements cashback.EngineState.
func (m *Manager) PendingCashback(user string) (*big.Int, error) {
	amount := new(big.Int)
	ok, err := m.kvGet(pendingKey(user), amount)
	if err != nil || !ok {
		return big.NewInt(0), err
	}
	return amount, nil
}

// SetPendingCashback implements cashback.EngineState. The user is recorded in
// the pending index so the ledger can be enumerated deterministically.
func (m *Manager) SetPendingCashback(user string, amount *big.Int) error {
	if err := m.kvPut(pendingKey(user), nonNil(amount)); err != nil {
		return err
	}
	index, err := m.pendingIndex()
	if err != nil {
		return err
	}
	for _, existing := range index {
		if existing == user {
			return nil
		}
	}
	return m.kvPut(pendingIndexKey, append(index, user))
}

// RemovePendingCashback implements cashback.EngineState. The entry is deleted,
// not zeroed, and the user leaves the pending index.
func (m *Manager) RemovePendingCashback(user string) error {
	if err := m.kvDelete(pendingKey(user)); err != nil {
		return err
	}
	index, err := m.pendingIndex()
	if err != nil {
		return err
	}
	filtered := make([]string, 0, len(index))
	for _, existing := range index {
		if existing == user {
			continue
		}
		filtered = append(filtered, existing)
	}
	return m.kvPut(pendingIndexKey, filtered)
}

// PendingCashbackUsers implements cashback.EngineState. Users are returned in
// ascending order with duplicates removed.
func (m *Manager) PendingCashbackUsers() ([]string, error) {
	index, err := m.pendingIndex()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(index))
	users := make([]string, 0, len(index))
	for _, user := range index {
		if _, exists := seen[user]; exists {
			continue
		}
		seen[user] = struct{}{}
		users = append(users, user)
	}
	sort.Strings(users)
	return users, nil
}

func (m *Manager) pendingIndex() ([]string, error) {
	var index []string
	if _, err := m.kvGet(pendingIndexKey, &index); err != nil {
		return nil, err
	}
	return index, nil
}

// CampaignCashback implements cashback.EngineState.
func (m *Manager) CampaignCashback(campaignID uint64, user string) (*big.Int, error) {
	amount := new(big.Int)
	ok, err := m.kvGet(historyKey(campaignID, user), amount)
	if err != nil || !ok {
		return big.NewInt(0), err
	}
	return amount, nil
}

// SetCampaignCashback implements cashback.EngineState.
func (m *Manager) SetCampaignCashback(campaignID uint64, user string, amount *big.Int) error {
	return m.kvPut(historyKey(campaignID, user), nonNil(amount))
}

// WhitelistedCallers implements cashback.EngineState.
func (m *Manager) WhitelistedCallers() ([]string, error) {
	var list []string
	if _, err := m.kvGet(whitelistKey, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// SetWhitelistedCallers implements cashback.EngineState.
func (m *Manager) SetWhitelistedCallers(callers []string) error {
	if callers == nil {
		callers = []string{}
	}
	return m.kvPut(whitelistKey, callers)
}
