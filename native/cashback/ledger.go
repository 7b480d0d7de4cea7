package cashback

import (
	"fmt"
	"math/big"
)

// accrue adds amount to the user's pending entry and to the per-campaign
// history record. The campaign's distributed total is the orchestrator's
// responsibility, not the ledger's.
func accrue(st EngineState, campaignID uint64, user string, amount *big.Int) error {
	pending, err := st.PendingCashback(user)
	if err != nil {
		return fmt.Errorf("cashback: load pending for %s: %w", user, err)
	}
	pending = new(big.Int).Add(cloneBigInt(pending), amount)
	if err := st.SetPendingCashback(user, pending); err != nil {
		return fmt.Errorf("cashback: store pending for %s: %w", user, err)
	}

	total, err := st.CampaignCashback(campaignID, user)
	if err != nil {
		return fmt.Errorf("cashback: load history for %s: %w", user, err)
	}
	total = new(big.Int).Add(cloneBigInt(total), amount)
	if err := st.SetCampaignCashback(campaignID, user, total); err != nil {
		return fmt.Errorf("cashback: store history for %s: %w", user, err)
	}
	return nil
}

// drainAll captures every pending entry in ascending user order, removes the
// entries from the ledger and returns the captured list. The drain is not
// scoped to a campaign: whatever has accrued across all time is captured.
func drainAll(st EngineState) ([]LedgerEntry, error) {
	users, err := st.PendingCashbackUsers()
	if err != nil {
		return nil, fmt.Errorf("cashback: enumerate pending: %w", err)
	}
	entries := make([]LedgerEntry, 0, len(users))
	for _, user := range users {
		amount, err := st.PendingCashback(user)
		if err != nil {
			return nil, fmt.Errorf("cashback: load pending for %s: %w", user, err)
		}
		if err := st.RemovePendingCashback(user); err != nil {
			return nil, fmt.Errorf("cashback: remove pending for %s: %w", user, err)
		}
		entries = append(entries, LedgerEntry{User: user, Amount: cloneBigInt(amount)})
	}
	return entries, nil
}
