package cashback

import "math/big"

// Asset pairs an asset identifier with an amount expressed in that asset's
// smallest denomination.
type Asset struct {
	ID     string
	Amount *big.Int
}

func (a Asset) amountValue() *big.Int {
	if a.Amount == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(a.Amount)
}

// Campaign captures a time-boxed, budget-capped reward round. All amounts are
// denominated in the campaign's reward asset.
type Campaign struct {
	ID          uint64
	Start       uint64
	End         uint64
	RewardAsset string
	TotalReward *big.Int
	Distributed *big.Int
}

// Finished reports whether the campaign has reached its terminal state.
func (c *Campaign) Finished(now int64) bool {
	if c == nil {
		return false
	}
	return c.End < uint64(now)
}

// InProgress reports whether the campaign is accepting accruals at now.
func (c *Campaign) InProgress(now int64) bool {
	if c == nil {
		return false
	}
	current := uint64(now)
	return c.Start <= current && c.End >= current
}

// Remaining returns the undistributed portion of the campaign budget.
func (c *Campaign) Remaining() *big.Int {
	if c == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Sub(cloneBigInt(c.TotalReward), cloneBigInt(c.Distributed))
}

// Clone produces a deep copy to protect internal references.
func (c *Campaign) Clone() *Campaign {
	if c == nil {
		return nil
	}
	clone := *c
	clone.TotalReward = cloneBigInt(c.TotalReward)
	clone.Distributed = cloneBigInt(c.Distributed)
	return &clone
}

// LedgerEntry is a single pending-cashback balance captured during a drain.
type LedgerEntry struct {
	User   string
	Amount *big.Int
}

// TransferInstruction describes a reward payout for the external transfer
// executor. The engine only constructs instructions; it never moves funds.
type TransferInstruction struct {
	To     string
	Asset  string
	Amount *big.Int
}

// BalanceSource resolves a user's held balance of an asset. Implementations
// are external to the engine; lookup failures are treated as a zero balance
// when ranking users into tiers.
type BalanceSource interface {
	BalanceOf(user, assetID string) (*big.Int, error)
}

func cloneBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
