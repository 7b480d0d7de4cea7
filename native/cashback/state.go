package cashback

import "math/big"

// EngineState describes the functionality the cashback engine needs from the
// surrounding state implementation. All write methods must observe reads made
// through the same value so the dispatch boundary can stage a whole call and
// commit it atomically.
type EngineState interface {
	// Config singleton. The boolean reports whether Initialize has run.
	CashbackConfig() (*Config, bool, error)
	SetCashbackConfig(cfg *Config) error

	// Last campaign id singleton; zero means no campaign was ever created.
	LastCampaignID() (uint64, error)
	SetLastCampaignID(id uint64) error

	// Campaign records keyed by id. Records are never deleted.
	Campaign(id uint64) (*Campaign, bool, error)
	PutCampaign(c *Campaign) error

	// Pending cashback ledger keyed by user. Entries are created lazily and
	// removed, not zeroed, on settlement. PendingCashbackUsers enumerates the
	// current entries in ascending user order.
	PendingCashback(user string) (*big.Int, error)
	SetPendingCashback(user string, amount *big.Int) error
	RemovePendingCashback(user string) error
	PendingCashbackUsers() ([]string, error)

	// Per-campaign accrual history; a write-only audit trail.
	CampaignCashback(campaignID uint64, user string) (*big.Int, error)
	SetCampaignCashback(campaignID uint64, user string, amount *big.Int) error

	// Whitelist of callers permitted to trigger accrual.
	WhitelistedCallers() ([]string, error)
	SetWhitelistedCallers(callers []string) error
}
