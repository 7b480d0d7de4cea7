package cashback

import "errors"

var (
	ErrNotInitialized      = errors.New("cashback: engine not initialized")
	ErrAlreadyInitialized  = errors.New("cashback: engine already initialized")
	ErrUnauthorized        = errors.New("cashback: unauthorized")
	ErrInvalidPercent      = errors.New("cashback: rule percent must not exceed 1")
	ErrInvalidCampaignTime = errors.New("cashback: invalid campaign time range")
	ErrCampaignInProgress  = errors.New("cashback: last campaign is not over yet")
	ErrCampaignEnded       = errors.New("cashback: campaign has ended")
	ErrCampaignNotFound    = errors.New("cashback: campaign not found")
	ErrDuplicateCaller     = errors.New("cashback: caller already whitelisted")
	ErrUnknownCaller       = errors.New("cashback: caller not whitelisted")
	ErrInvalidRewardPrice  = errors.New("cashback: reward asset price must be positive")
	ErrInvalidAmount       = errors.New("cashback: amount must not be negative")
)
