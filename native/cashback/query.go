package cashback

import (
	"fmt"
	"math/big"
)

// Config returns the current configuration.
func (e *Engine) Config(st EngineState) (*Config, error) {
	cfg, err := loadConfig(st)
	if err != nil {
		return nil, err
	}
	return cfg.Clone(), nil
}

// CampaignByID returns the campaign with the given id.
func (e *Engine) CampaignByID(st EngineState, id uint64) (*Campaign, error) {
	campaign, ok, err := st.Campaign(id)
	if err != nil {
		return nil, fmt.Errorf("cashback: load campaign %d: %w", id, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrCampaignNotFound, id)
	}
	return campaign.Clone(), nil
}

// LastCampaign returns the most recently created campaign.
func (e *Engine) LastCampaign(st EngineState) (*Campaign, error) {
	lastID, err := st.LastCampaignID()
	if err != nil {
		return nil, fmt.Errorf("cashback: load last campaign id: %w", err)
	}
	if lastID == 0 {
		return nil, ErrCampaignNotFound
	}
	return e.CampaignByID(st, lastID)
}

// LastCampaignID returns the id of the most recently created campaign, or zero
// when none was ever created.
func (e *Engine) LastCampaignID(st EngineState) (uint64, error) {
	return st.LastCampaignID()
}

// PendingCashback returns the user's accrued-but-unsettled reward balance.
func (e *Engine) PendingCashback(st EngineState, user string) (*big.Int, error) {
	amount, err := st.PendingCashback(user)
	if err != nil {
		return nil, fmt.Errorf("cashback: load pending for %s: %w", user, err)
	}
	return cloneBigInt(amount), nil
}

// CampaignCashback returns the cumulative amount ever accrued to the user
// within the given campaign.
func (e *Engine) CampaignCashback(st EngineState, campaignID uint64, user string) (*big.Int, error) {
	amount, err := st.CampaignCashback(campaignID, user)
	if err != nil {
		return nil, fmt.Errorf("cashback: load history for %s: %w", user, err)
	}
	return cloneBigInt(amount), nil
}

// WhitelistedCallers returns the callers currently permitted to trigger
// accrual.
func (e *Engine) WhitelistedCallers(st EngineState) ([]string, error) {
	list, err := st.WhitelistedCallers()
	if err != nil {
		return nil, fmt.Errorf("cashback: load whitelist: %w", err)
	}
	return append([]string(nil), list...), nil
}
