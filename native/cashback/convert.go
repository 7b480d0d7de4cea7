package cashback

import (
	"fmt"
	"math/big"
)

// PriceSource resolves the price of an asset relative to a common unit of
// account. Implementations are injected; the engine never assumes a concrete
// oracle.
type PriceSource interface {
	Price(assetID string) (*big.Rat, error)
}

// IdentityPriceSource values every asset at 1. It stands in for a real oracle
// in deployments where all fee assets already share the reward asset's unit.
type IdentityPriceSource struct{}

// Price implements the PriceSource interface.
func (IdentityPriceSource) Price(string) (*big.Rat, error) {
	return big.NewRat(1, 1), nil
}

// ComputeCashback scales each fee asset by rateBps, converts the result into
// reward-asset units through the price source and sums the converted amounts,
// clamping the total to the remaining campaign budget. Fractional results are
// floored at every step so the engine never over-credits.
//
// A zero or negative price for the reward asset is a fatal input error: the
// conversion cannot be expressed and the call must abort.
func ComputeCashback(fees []Asset, rateBps uint32, rewardAsset string, remaining *big.Int, prices PriceSource) (*big.Int, error) {
	if prices == nil {
		prices = IdentityPriceSource{}
	}
	rewardPrice, err := prices.Price(rewardAsset)
	if err != nil {
		return nil, fmt.Errorf("cashback: reward asset price: %w", err)
	}
	if rewardPrice == nil || rewardPrice.Sign() <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRewardPrice, rewardAsset)
	}

	total := big.NewInt(0)
	for _, fee := range fees {
		amount := fee.amountValue()
		if amount.Sign() < 0 {
			return nil, fmt.Errorf("%w: fee asset %s", ErrInvalidAmount, fee.ID)
		}
		scaled := new(big.Int).Mul(amount, new(big.Int).SetUint64(uint64(rateBps)))
		scaled = scaled.Quo(scaled, big.NewInt(RateBpsDenominator))
		if scaled.Sign() == 0 {
			continue
		}
		price, err := prices.Price(fee.ID)
		if err != nil {
			return nil, fmt.Errorf("cashback: price for %s: %w", fee.ID, err)
		}
		if price == nil || price.Sign() < 0 {
			price = new(big.Rat)
		}
		converted := new(big.Rat).SetInt(scaled)
		converted.Mul(converted, price)
		converted.Quo(converted, rewardPrice)
		total.Add(total, new(big.Int).Quo(converted.Num(), converted.Denom()))
	}

	if remaining != nil && total.Cmp(remaining) > 0 {
		total.Set(remaining)
	}
	return total, nil
}
