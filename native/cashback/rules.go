package cashback

import (
	"fmt"
	"math/big"
	"sort"
)

// RateBpsDenominator defines the scaling factor used for basis point math when
// computing cashback amounts. A rate of 10_000 bps equals 100%.
const RateBpsDenominator = 10_000

// TierRule grants RateBps cashback once a user's underlying balance reaches
// MinBalance.
type TierRule struct {
	MinBalance *big.Int
	RateBps    uint32
}

// Clone produces a deep copy of the rule.
func (r TierRule) Clone() TierRule {
	return TierRule{MinBalance: cloneBigInt(r.MinBalance), RateBps: r.RateBps}
}

// Config holds the engine-wide configuration. Rules are kept sorted by
// MinBalance descending so tier lookup can take the first qualifying rule.
type Config struct {
	Owner           string
	UnderlyingAsset string
	Rules           []TierRule
}

// Clone produces a deep copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := &Config{Owner: c.Owner, UnderlyingAsset: c.UnderlyingAsset}
	if c.Rules != nil {
		clone.Rules = make([]TierRule, len(c.Rules))
		for i, rule := range c.Rules {
			clone.Rules[i] = rule.Clone()
		}
	}
	return clone
}

// NormalizeRules validates the rule set and returns a copy sorted by
// MinBalance descending. The sort is stable, so rules sharing a threshold keep
// their insertion order. A rate above RateBpsDenominator (percent > 1) fails
// with ErrInvalidPercent.
func NormalizeRules(rules []TierRule) ([]TierRule, error) {
	normalized := make([]TierRule, len(rules))
	for i, rule := range rules {
		if rule.RateBps > RateBpsDenominator {
			return nil, fmt.Errorf("%w: %d bps", ErrInvalidPercent, rule.RateBps)
		}
		if rule.MinBalance != nil && rule.MinBalance.Sign() < 0 {
			return nil, fmt.Errorf("%w: rule threshold", ErrInvalidAmount)
		}
		normalized[i] = rule.Clone()
	}
	sort.SliceStable(normalized, func(i, j int) bool {
		return normalized[i].MinBalance.Cmp(normalized[j].MinBalance) > 0
	})
	return normalized, nil
}

// LookupRateBps scans the descending-sorted rules and returns the rate of the
// first rule whose threshold is at most balance. It returns 0 when no rule
// qualifies, including for an empty rule set.
func LookupRateBps(rules []TierRule, balance *big.Int) uint32 {
	if balance == nil {
		balance = big.NewInt(0)
	}
	for _, rule := range rules {
		threshold := rule.MinBalance
		if threshold == nil {
			threshold = big.NewInt(0)
		}
		if threshold.Cmp(balance) <= 0 {
			return rule.RateBps
		}
	}
	return 0
}
