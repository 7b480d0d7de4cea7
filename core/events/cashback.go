package events

import "math/big"

const (
	// TypeCashbackConfigUpdated is emitted when the engine configuration is
	// initialised or changed.
	TypeCashbackConfigUpdated = "cashback.config.updated"
	// TypeCashbackCallerWhitelisted is emitted when a caller is added to the
	// accrual whitelist.
	TypeCashbackCallerWhitelisted = "cashback.caller.whitelisted"
	// TypeCashbackCallerRemoved is emitted when a caller is removed from the
	// accrual whitelist.
	TypeCashbackCallerRemoved = "cashback.caller.removed"
	// TypeCashbackCampaignCreated is emitted when a new reward campaign is
	// created.
	TypeCashbackCampaignCreated = "cashback.campaign.created"
	// TypeCashbackCampaignEdited is emitted when a campaign that has not yet
	// finished is edited.
	TypeCashbackCampaignEdited = "cashback.campaign.edited"
	// TypeCashbackAccrued is emitted when a triggered accrual credits pending
	// cashback to a user.
	TypeCashbackAccrued = "cashback.accrued"
	// TypeCashbackSkipped is emitted when a triggered accrual completes as a
	// deliberate no-op.
	TypeCashbackSkipped = "cashback.skipped"
	// TypeCashbackSettled is emitted when the pending ledger is drained into
	// transfer instructions.
	TypeCashbackSettled = "cashback.settled"
)

// CashbackConfigUpdated captures the owner in effect after a config change.
type CashbackConfigUpdated struct {
	Owner           string
	UnderlyingAsset string
	RuleCount       int
}

// EventType implements the Event interface.
func (CashbackConfigUpdated) EventType() string { return TypeCashbackConfigUpdated }

// CashbackCallerWhitelisted captures a caller granted accrual rights.
type CashbackCallerWhitelisted struct {
	Caller string
}

// EventType implements the Event interface.
func (CashbackCallerWhitelisted) EventType() string { return TypeCashbackCallerWhitelisted }

// CashbackCallerRemoved captures a caller stripped of accrual rights.
type CashbackCallerRemoved struct {
	Caller string
}

// EventType implements the Event interface.
func (CashbackCallerRemoved) EventType() string { return TypeCashbackCallerRemoved }

// CashbackCampaignCreated captures the key metadata of a new campaign.
type CashbackCampaignCreated struct {
	ID          uint64
	Start       uint64
	End         uint64
	RewardAsset string
	TotalReward *big.Int
}

// EventType implements the Event interface.
func (CashbackCampaignCreated) EventType() string { return TypeCashbackCampaignCreated }

// CashbackCampaignEdited captures the campaign state after an edit.
type CashbackCampaignEdited struct {
	ID          uint64
	Start       uint64
	End         uint64
	TotalReward *big.Int
}

// EventType implements the Event interface.
func (CashbackCampaignEdited) EventType() string { return TypeCashbackCampaignEdited }

// CashbackAccrued captures a successful accrual.
type CashbackAccrued struct {
	Campaign uint64
	Caller   string
	User     string
	RateBps  uint32
	Amount   *big.Int
}

// EventType implements the Event interface.
func (CashbackAccrued) EventType() string { return TypeCashbackAccrued }

// CashbackSkipped captures a trigger that completed without mutating state.
type CashbackSkipped struct {
	Caller string
	User   string
	Reason string
}

// EventType implements the Event interface.
func (CashbackSkipped) EventType() string { return TypeCashbackSkipped }

// CashbackSettled summarises a settlement batch.
type CashbackSettled struct {
	Campaign    uint64
	RewardAsset string
	Entries     int
	Total       *big.Int
}

// EventType implements the Event interface.
func (CashbackSettled) EventType() string { return TypeCashbackSettled }
