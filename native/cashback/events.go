package cashback

import (
	"math/big"

	"cashchain/core/events"
)

// Skip reasons attached to cashback.skipped events. A skipped trigger is a
// successful call that deliberately leaves state untouched.
const (
	SkipCallerNotWhitelisted = "caller_not_whitelisted"
	SkipNoCampaign           = "no_campaign"
	SkipCampaignNotActive    = "campaign_not_active"
	SkipBudgetExhausted      = "budget_exhausted"
	SkipZeroRate             = "zero_rate"
)

func newConfigUpdatedEvent(cfg *Config) events.CashbackConfigUpdated {
	if cfg == nil {
		return events.CashbackConfigUpdated{}
	}
	return events.CashbackConfigUpdated{
		Owner:           cfg.Owner,
		UnderlyingAsset: cfg.UnderlyingAsset,
		RuleCount:       len(cfg.Rules),
	}
}

func newCallerWhitelistedEvent(caller string) events.CashbackCallerWhitelisted {
	return events.CashbackCallerWhitelisted{Caller: caller}
}

func newCallerRemovedEvent(caller string) events.CashbackCallerRemoved {
	return events.CashbackCallerRemoved{Caller: caller}
}

func newCampaignCreatedEvent(c *Campaign) events.CashbackCampaignCreated {
	if c == nil {
		return events.CashbackCampaignCreated{}
	}
	return events.CashbackCampaignCreated{
		ID:          c.ID,
		Start:       c.Start,
		End:         c.End,
		RewardAsset: c.RewardAsset,
		TotalReward: cloneBigInt(c.TotalReward),
	}
}

func newCampaignEditedEvent(c *Campaign) events.CashbackCampaignEdited {
	if c == nil {
		return events.CashbackCampaignEdited{}
	}
	return events.CashbackCampaignEdited{
		ID:          c.ID,
		Start:       c.Start,
		End:         c.End,
		TotalReward: cloneBigInt(c.TotalReward),
	}
}

func newAccruedEvent(campaignID uint64, caller, user string, rateBps uint32, amount *big.Int) events.CashbackAccrued {
	return events.CashbackAccrued{
		Campaign: campaignID,
		Caller:   caller,
		User:     user,
		RateBps:  rateBps,
		Amount:   cloneBigInt(amount),
	}
}

func newSkippedEvent(caller, user, reason string) events.CashbackSkipped {
	return events.CashbackSkipped{Caller: caller, User: user, Reason: reason}
}

func newSettledEvent(c *Campaign, entries int, total *big.Int) events.CashbackSettled {
	evt := events.CashbackSettled{Entries: entries, Total: cloneBigInt(total)}
	if c != nil {
		evt.Campaign = c.ID
		evt.RewardAsset = c.RewardAsset
	}
	return evt
}
