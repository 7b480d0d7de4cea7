package state

import "math/big"

// BalanceOf returns the recorded balance of the asset held by user, or zero
// when none was ever recorded. The manager therefore satisfies
// cashback.BalanceSource for deployments that mirror balances into local
// state.
func (m *Manager) BalanceOf(user, assetID string) (*big.Int, error) {
	balance := new(big.Int)
	ok, err := m.kvGet(balanceKey(user, assetID), balance)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return balance, nil
}

// SetBalance records the balance of the asset held by user. Balance updates
// arrive from the external transfer surface; the cashback engine only reads
// them.
func (m *Manager) SetBalance(user, assetID string, amount *big.Int) error {
	return m.kvPut(balanceKey(user, assetID), nonNil(amount))
}
