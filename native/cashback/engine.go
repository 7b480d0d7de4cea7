package cashback

import (
	"fmt"
	"math/big"
	"time"

	"cashchain/core/events"
)

// Engine implements the cashback campaign lifecycle: campaign creation and
// edits under the single-open-campaign rule, tier-rated accrual against the
// active campaign's budget and settlement of the pending ledger into transfer
// instructions. State access goes through the EngineState passed into each
// operation; the engine itself keeps no mutable campaign data.
type Engine struct {
	balances BalanceSource
	prices   PriceSource
	emitter  events.Emitter
	nowFn    func() int64
}

// NewEngine creates an engine with a no-op emitter, an identity price source
// and no balance source (every balance resolves to zero until one is set).
func NewEngine() *Engine {
	return &Engine{
		prices:  IdentityPriceSource{},
		emitter: events.NoopEmitter{},
		nowFn:   func() int64 { return time.Now().Unix() },
	}
}

// SetBalanceSource configures the oracle used to rank users into tiers.
func (e *Engine) SetBalanceSource(src BalanceSource) { e.balances = src }

// SetPriceSource configures the oracle used to convert fee assets into the
// reward asset. Passing nil resets the engine to identity pricing.
func (e *Engine) SetPriceSource(src PriceSource) {
	if src == nil {
		e.prices = IdentityPriceSource{}
		return
	}
	e.prices = src
}

// SetEmitter configures the event emitter used by the engine. Passing nil
// resets the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source used to evaluate campaign windows.
// Primarily intended for tests to provide deterministic timestamps.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

func (e *Engine) emit(event events.Event) {
	if e == nil || e.emitter == nil || event == nil {
		return
	}
	e.emitter.Emit(event)
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

func loadConfig(st EngineState) (*Config, error) {
	cfg, ok, err := st.CashbackConfig()
	if err != nil {
		return nil, fmt.Errorf("cashback: load config: %w", err)
	}
	if !ok || cfg == nil {
		return nil, ErrNotInitialized
	}
	return cfg, nil
}

func requireOwner(st EngineState, caller string) error {
	cfg, err := loadConfig(st)
	if err != nil {
		return err
	}
	if caller != cfg.Owner {
		return ErrUnauthorized
	}
	return nil
}

// Initialize sets the configuration singleton and resets the campaign counter
// to zero. Re-initialising an engine that already holds a config is rejected.
func (e *Engine) Initialize(st EngineState, owner, underlyingAsset string, rules []TierRule) error {
	if _, ok, err := st.CashbackConfig(); err != nil {
		return fmt.Errorf("cashback: load config: %w", err)
	} else if ok {
		return ErrAlreadyInitialized
	}
	normalized, err := NormalizeRules(rules)
	if err != nil {
		return err
	}
	cfg := &Config{Owner: owner, UnderlyingAsset: underlyingAsset, Rules: normalized}
	if err := st.SetCashbackConfig(cfg); err != nil {
		return fmt.Errorf("cashback: store config: %w", err)
	}
	if err := st.SetLastCampaignID(0); err != nil {
		return fmt.Errorf("cashback: store last campaign id: %w", err)
	}
	e.emit(newConfigUpdatedEvent(cfg))
	return nil
}

// UpdateConfig applies the supplied overrides to the configuration. Owner-only.
// Nil fields keep their current value; supplied rules are re-validated and
// re-sorted.
func (e *Engine) UpdateConfig(st EngineState, caller string, owner, underlyingAsset *string, rules []TierRule) error {
	cfg, err := loadConfig(st)
	if err != nil {
		return err
	}
	if caller != cfg.Owner {
		return ErrUnauthorized
	}
	if owner != nil {
		cfg.Owner = *owner
	}
	if underlyingAsset != nil {
		cfg.UnderlyingAsset = *underlyingAsset
	}
	if rules != nil {
		normalized, err := NormalizeRules(rules)
		if err != nil {
			return err
		}
		cfg.Rules = normalized
	}
	if err := st.SetCashbackConfig(cfg); err != nil {
		return fmt.Errorf("cashback: store config: %w", err)
	}
	e.emit(newConfigUpdatedEvent(cfg))
	return nil
}

// CreateCampaign opens a new campaign once the previous one has finished.
// Owner-only. Ids are assigned from a strictly increasing counter starting at
// one and are never reused.
func (e *Engine) CreateCampaign(st EngineState, caller string, start, end uint64, rewardAsset string, totalReward *big.Int) (*Campaign, error) {
	if err := requireOwner(st, caller); err != nil {
		return nil, err
	}
	if start > end {
		return nil, ErrInvalidCampaignTime
	}
	if totalReward != nil && totalReward.Sign() < 0 {
		return nil, fmt.Errorf("%w: total reward", ErrInvalidAmount)
	}
	lastID, err := st.LastCampaignID()
	if err != nil {
		return nil, fmt.Errorf("cashback: load last campaign id: %w", err)
	}
	if lastID > 0 {
		last, ok, err := st.Campaign(lastID)
		if err != nil {
			return nil, fmt.Errorf("cashback: load campaign %d: %w", lastID, err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrCampaignNotFound, lastID)
		}
		if !last.Finished(e.now()) {
			return nil, ErrCampaignInProgress
		}
	}
	campaign := &Campaign{
		ID:          lastID + 1,
		Start:       start,
		End:         end,
		RewardAsset: rewardAsset,
		TotalReward: cloneBigInt(totalReward),
		Distributed: big.NewInt(0),
	}
	if err := st.PutCampaign(campaign); err != nil {
		return nil, fmt.Errorf("cashback: store campaign %d: %w", campaign.ID, err)
	}
	if err := st.SetLastCampaignID(campaign.ID); err != nil {
		return nil, fmt.Errorf("cashback: store last campaign id: %w", err)
	}
	e.emit(newCampaignCreatedEvent(campaign))
	return campaign.Clone(), nil
}

// EditCampaign overrides the start, end and total reward of a campaign that
// has not yet finished. Owner-only. Nil fields keep their current value; the
// time range is re-validated after the overrides are applied.
func (e *Engine) EditCampaign(st EngineState, caller string, id uint64, start, end *uint64, totalReward *big.Int) (*Campaign, error) {
	if err := requireOwner(st, caller); err != nil {
		return nil, err
	}
	campaign, ok, err := st.Campaign(id)
	if err != nil {
		return nil, fmt.Errorf("cashback: load campaign %d: %w", id, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrCampaignNotFound, id)
	}
	if campaign.Finished(e.now()) {
		return nil, ErrCampaignEnded
	}
	if start != nil {
		campaign.Start = *start
	}
	if end != nil {
		campaign.End = *end
	}
	if totalReward != nil {
		if totalReward.Sign() < 0 {
			return nil, fmt.Errorf("%w: total reward", ErrInvalidAmount)
		}
		campaign.TotalReward = cloneBigInt(totalReward)
	}
	if campaign.Start > campaign.End {
		return nil, ErrInvalidCampaignTime
	}
	if err := st.PutCampaign(campaign); err != nil {
		return nil, fmt.Errorf("cashback: store campaign %d: %w", id, err)
	}
	e.emit(newCampaignEditedEvent(campaign))
	return campaign.Clone(), nil
}

// TriggerAccrual reports a user's fee-asset spend and, when eligible, accrues
// the tier-rated cashback against the most recent campaign. Ineligible
// triggers complete successfully with no state mutation so that composed
// upstream calls never fail on this engine's internal state; each skip emits
// an event carrying the reason. The returned amount is zero for skips.
func (e *Engine) TriggerAccrual(st EngineState, caller, user string, fees []Asset) (*big.Int, error) {
	authorized, err := e.IsAuthorized(st, caller)
	if err != nil {
		return nil, err
	}
	if !authorized {
		e.emit(newSkippedEvent(caller, user, SkipCallerNotWhitelisted))
		return big.NewInt(0), nil
	}

	lastID, err := st.LastCampaignID()
	if err != nil {
		return nil, fmt.Errorf("cashback: load last campaign id: %w", err)
	}
	if lastID == 0 {
		e.emit(newSkippedEvent(caller, user, SkipNoCampaign))
		return big.NewInt(0), nil
	}
	campaign, ok, err := st.Campaign(lastID)
	if err != nil {
		return nil, fmt.Errorf("cashback: load campaign %d: %w", lastID, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrCampaignNotFound, lastID)
	}
	if !campaign.InProgress(e.now()) {
		e.emit(newSkippedEvent(caller, user, SkipCampaignNotActive))
		return big.NewInt(0), nil
	}
	remaining := campaign.Remaining()
	if remaining.Sign() <= 0 {
		e.emit(newSkippedEvent(caller, user, SkipBudgetExhausted))
		return big.NewInt(0), nil
	}

	cfg, err := loadConfig(st)
	if err != nil {
		return nil, err
	}
	rateBps := LookupRateBps(cfg.Rules, e.balanceOf(user, cfg.UnderlyingAsset))
	if rateBps == 0 {
		e.emit(newSkippedEvent(caller, user, SkipZeroRate))
		return big.NewInt(0), nil
	}

	amount, err := ComputeCashback(fees, rateBps, campaign.RewardAsset, remaining, e.prices)
	if err != nil {
		return nil, err
	}
	if err := accrue(st, campaign.ID, user, amount); err != nil {
		return nil, err
	}
	campaign.Distributed = new(big.Int).Add(cloneBigInt(campaign.Distributed), amount)
	if err := st.PutCampaign(campaign); err != nil {
		return nil, fmt.Errorf("cashback: store campaign %d: %w", campaign.ID, err)
	}
	e.emit(newAccruedEvent(campaign.ID, caller, user, rateBps, amount))
	return amount, nil
}

// balanceOf resolves the user's underlying-asset balance, treating a missing
// source or a lookup failure as zero.
func (e *Engine) balanceOf(user, assetID string) *big.Int {
	if e == nil || e.balances == nil {
		return big.NewInt(0)
	}
	balance, err := e.balances.BalanceOf(user, assetID)
	if err != nil || balance == nil {
		return big.NewInt(0)
	}
	return balance
}

// Settle drains the entire pending ledger and emits one transfer instruction
// per drained entry, denominated in the most recently created campaign's
// reward asset. It is a no-op when no campaign was ever created. Campaign
// budget accounting is untouched: it already happened at accrual time.
//
// The drain is deliberately not scoped to a single campaign so the observable
// behaviour matches the system this engine replaces; entries accrued under an
// earlier campaign are settled in the current reward asset.
func (e *Engine) Settle(st EngineState) ([]TransferInstruction, error) {
	lastID, err := st.LastCampaignID()
	if err != nil {
		return nil, fmt.Errorf("cashback: load last campaign id: %w", err)
	}
	if lastID == 0 {
		return nil, nil
	}
	campaign, ok, err := st.Campaign(lastID)
	if err != nil {
		return nil, fmt.Errorf("cashback: load campaign %d: %w", lastID, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrCampaignNotFound, lastID)
	}
	entries, err := drainAll(st)
	if err != nil {
		return nil, err
	}
	instructions := make([]TransferInstruction, 0, len(entries))
	total := big.NewInt(0)
	for _, entry := range entries {
		instructions = append(instructions, TransferInstruction{
			To:     entry.User,
			Asset:  campaign.RewardAsset,
			Amount: cloneBigInt(entry.Amount),
		})
		total.Add(total, entry.Amount)
	}
	e.emit(newSettledEvent(campaign, len(instructions), total))
	return instructions, nil
}
