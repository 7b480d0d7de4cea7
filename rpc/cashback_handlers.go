package rpc

import (
	"math/big"
	"net/http"

	"cashchain/core/state"
	"cashchain/native/cashback"
)

type ruleParam struct {
	MinBalance string `json:"minBalance"`
	RateBps    uint32 `json:"rateBps"`
}

type initializeParams struct {
	Owner           string      `json:"owner"`
	UnderlyingAsset string      `json:"underlyingAsset"`
	Rules           []ruleParam `json:"rules,omitempty"`
}

type updateConfigParams struct {
	Caller          string      `json:"caller"`
	Owner           *string     `json:"owner,omitempty"`
	UnderlyingAsset *string     `json:"underlyingAsset,omitempty"`
	Rules           []ruleParam `json:"rules,omitempty"`
}

type callerParams struct {
	Caller string `json:"caller"`
	Target string `json:"target"`
}

type createCampaignParams struct {
	Caller      string `json:"caller"`
	Start       uint64 `json:"start"`
	End         uint64 `json:"end"`
	RewardAsset string `json:"rewardAsset"`
	TotalReward string `json:"totalReward"`
}

type editCampaignParams struct {
	Caller      string  `json:"caller"`
	ID          uint64  `json:"id"`
	Start       *uint64 `json:"start,omitempty"`
	End         *uint64 `json:"end,omitempty"`
	TotalReward *string `json:"totalReward,omitempty"`
}

type feeAssetParam struct {
	Asset  string `json:"asset"`
	Amount string `json:"amount"`
}

type triggerParams struct {
	Caller string          `json:"caller"`
	User   string          `json:"user"`
	Fees   []feeAssetParam `json:"fees"`
}

type campaignQueryParams struct {
	ID uint64 `json:"id"`
}

type pendingQueryParams struct {
	User string `json:"user"`
}

type campaignTotalParams struct {
	ID   uint64 `json:"id"`
	User string `json:"user"`
}

type configResult struct {
	Owner           string       `json:"owner"`
	UnderlyingAsset string       `json:"underlyingAsset"`
	Rules           []ruleResult `json:"rules"`
}

type ruleResult struct {
	MinBalance string `json:"minBalance"`
	RateBps    uint32 `json:"rateBps"`
}

type campaignResult struct {
	ID          uint64 `json:"id"`
	Start       uint64 `json:"start"`
	End         uint64 `json:"end"`
	RewardAsset string `json:"rewardAsset"`
	TotalReward string `json:"totalReward"`
	Distributed string `json:"distributed"`
}

type triggerResult struct {
	Accrued string `json:"accrued"`
}

type transferResult struct {
	To     string `json:"to"`
	Asset  string `json:"asset"`
	Amount string `json:"amount"`
}

func ruleSetFromParams(params []ruleParam) ([]cashback.TierRule, error) {
	if params == nil {
		return nil, nil
	}
	rules := make([]cashback.TierRule, 0, len(params))
	for _, param := range params {
		threshold, err := parseBigInt(param.MinBalance)
		if err != nil {
			return nil, err
		}
		rules = append(rules, cashback.TierRule{MinBalance: threshold, RateBps: param.RateBps})
	}
	return rules, nil
}

func campaignToResult(c *cashback.Campaign) campaignResult {
	return campaignResult{
		ID:          c.ID,
		Start:       c.Start,
		End:         c.End,
		RewardAsset: c.RewardAsset,
		TotalReward: formatBigInt(c.TotalReward),
		Distributed: formatBigInt(c.Distributed),
	}
}

type handlerFunc func(w http.ResponseWriter, req *RPCRequest)

func (s *Server) executeHandlers() map[string]handlerFunc {
	return map[string]handlerFunc{
		"cashback_initialize":     s.handleInitialize,
		"cashback_updateConfig":   s.handleUpdateConfig,
		"cashback_addCaller":      s.handleAddCaller,
		"cashback_removeCaller":   s.handleRemoveCaller,
		"cashback_createCampaign": s.handleCreateCampaign,
		"cashback_editCampaign":   s.handleEditCampaign,
		"cashback_trigger":        s.handleTrigger,
		"cashback_settle":         s.handleSettle,
	}
}

func (s *Server) queryHandlers() map[string]handlerFunc {
	return map[string]handlerFunc{
		"cashback_getConfig":         s.handleGetConfig,
		"cashback_getCampaign":       s.handleGetCampaign,
		"cashback_getLastCampaign":   s.handleGetLastCampaign,
		"cashback_getLastCampaignId": s.handleGetLastCampaignID,
		"cashback_getWhitelist":      s.handleGetWhitelist,
		"cashback_getPending":        s.handleGetPending,
		"cashback_getCampaignTotal":  s.handleGetCampaignTotal,
	}
}

func (s *Server) handleInitialize(w http.ResponseWriter, req *RPCRequest) {
	var params initializeParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error())
		return
	}
	rules, err := ruleSetFromParams(params.Rules)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error())
		return
	}
	err = s.execute(func(st *state.Manager) error {
		return s.engine.Initialize(st, params.Owner, params.UnderlyingAsset, rules)
	})
	if err != nil {
		writeError(w, http.StatusOK, req.ID, errorCode(err), err.Error())
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleUpdateConfig(w http.ResponseWriter, req *RPCRequest) {
	var params updateConfigParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error())
		return
	}
	rules, err := ruleSetFromParams(params.Rules)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error())
		return
	}
	err = s.execute(func(st *state.Manager) error {
		return s.engine.UpdateConfig(st, params.Caller, params.Owner, params.UnderlyingAsset, rules)
	})
	if err != nil {
		writeError(w, http.StatusOK, req.ID, errorCode(err), err.Error())
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleAddCaller(w http.ResponseWriter, req *RPCRequest) {
	var params callerParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error())
		return
	}
	err := s.execute(func(st *state.Manager) error {
		return s.engine.AddCaller(st, params.Caller, params.Target)
	})
	if err != nil {
		writeError(w, http.StatusOK, req.ID, errorCode(err), err.Error())
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleRemoveCaller(w http.ResponseWriter, req *RPCRequest) {
	var params callerParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error())
		return
	}
	err := s.execute(func(st *state.Manager) error {
		return s.engine.RemoveCaller(st, params.Caller, params.Target)
	})
	if err != nil {
		writeError(w, http.StatusOK, req.ID, errorCode(err), err.Error())
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleCreateCampaign(w http.ResponseWriter, req *RPCRequest) {
	var params createCampaignParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error())
		return
	}
	totalReward, err := parseBigInt(params.TotalReward)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error())
		return
	}
	var created *cashback.Campaign
	err = s.execute(func(st *state.Manager) error {
		campaign, err := s.engine.CreateCampaign(st, params.Caller, params.Start, params.End, params.RewardAsset, totalReward)
		if err != nil {
			return err
		}
		created = campaign
		return nil
	})
	if err != nil {
		writeError(w, http.StatusOK, req.ID, errorCode(err), err.Error())
		return
	}
	writeResult(w, req.ID, campaignToResult(created))
}

func (s *Server) handleEditCampaign(w http.ResponseWriter, req *RPCRequest) {
	var params editCampaignParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error())
		return
	}
	var totalReward *big.Int
	if params.TotalReward != nil {
		parsed, err := parseBigInt(*params.TotalReward)
		if err != nil {
			writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error())
			return
		}
		totalReward = parsed
	}
	var edited *cashback.Campaign
	err := s.execute(func(st *state.Manager) error {
		campaign, err := s.engine.EditCampaign(st, params.Caller, params.ID, params.Start, params.End, totalReward)
		if err != nil {
			return err
		}
		edited = campaign
		return nil
	})
	if err != nil {
		writeError(w, http.StatusOK, req.ID, errorCode(err), err.Error())
		return
	}
	writeResult(w, req.ID, campaignToResult(edited))
}

func (s *Server) handleTrigger(w http.ResponseWriter, req *RPCRequest) {
	var params triggerParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error())
		return
	}
	fees := make([]cashback.Asset, 0, len(params.Fees))
	for _, fee := range params.Fees {
		amount, err := parseBigInt(fee.Amount)
		if err != nil {
			writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error())
			return
		}
		fees = append(fees, cashback.Asset{ID: fee.Asset, Amount: amount})
	}
	var accrued *big.Int
	err := s.execute(func(st *state.Manager) error {
		amount, err := s.engine.TriggerAccrual(st, params.Caller, params.User, fees)
		if err != nil {
			return err
		}
		accrued = amount
		return nil
	})
	if err != nil {
		writeError(w, http.StatusOK, req.ID, errorCode(err), err.Error())
		return
	}
	writeResult(w, req.ID, triggerResult{Accrued: formatBigInt(accrued)})
}

func (s *Server) handleSettle(w http.ResponseWriter, req *RPCRequest) {
	var instructions []cashback.TransferInstruction
	err := s.execute(func(st *state.Manager) error {
		batch, err := s.engine.Settle(st)
		if err != nil {
			return err
		}
		instructions = batch
		return nil
	})
	if err != nil {
		writeError(w, http.StatusOK, req.ID, errorCode(err), err.Error())
		return
	}
	transfers := make([]transferResult, 0, len(instructions))
	for _, instr := range instructions {
		transfers = append(transfers, transferResult{
			To:     instr.To,
			Asset:  instr.Asset,
			Amount: formatBigInt(instr.Amount),
		})
	}
	writeResult(w, req.ID, transfers)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, req *RPCRequest) {
	var cfg *cashback.Config
	err := s.query(func(st *state.Manager) error {
		loaded, err := s.engine.Config(st)
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	})
	if err != nil {
		writeError(w, http.StatusOK, req.ID, errorCode(err), err.Error())
		return
	}
	result := configResult{Owner: cfg.Owner, UnderlyingAsset: cfg.UnderlyingAsset, Rules: make([]ruleResult, 0, len(cfg.Rules))}
	for _, rule := range cfg.Rules {
		result.Rules = append(result.Rules, ruleResult{MinBalance: formatBigInt(rule.MinBalance), RateBps: rule.RateBps})
	}
	writeResult(w, req.ID, result)
}

func (s *Server) handleGetCampaign(w http.ResponseWriter, req *RPCRequest) {
	var params campaignQueryParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error())
		return
	}
	var campaign *cashback.Campaign
	err := s.query(func(st *state.Manager) error {
		loaded, err := s.engine.CampaignByID(st, params.ID)
		if err != nil {
			return err
		}
		campaign = loaded
		return nil
	})
	if err != nil {
		writeError(w, http.StatusOK, req.ID, errorCode(err), err.Error())
		return
	}
	writeResult(w, req.ID, campaignToResult(campaign))
}

func (s *Server) handleGetLastCampaign(w http.ResponseWriter, req *RPCRequest) {
	var campaign *cashback.Campaign
	err := s.query(func(st *state.Manager) error {
		loaded, err := s.engine.LastCampaign(st)
		if err != nil {
			return err
		}
		campaign = loaded
		return nil
	})
	if err != nil {
		writeError(w, http.StatusOK, req.ID, errorCode(err), err.Error())
		return
	}
	writeResult(w, req.ID, campaignToResult(campaign))
}

func (s *Server) handleGetLastCampaignID(w http.ResponseWriter, req *RPCRequest) {
	var id uint64
	err := s.query(func(st *state.Manager) error {
		last, err := s.engine.LastCampaignID(st)
		if err != nil {
			return err
		}
		id = last
		return nil
	})
	if err != nil {
		writeError(w, http.StatusOK, req.ID, errorCode(err), err.Error())
		return
	}
	writeResult(w, req.ID, id)
}

func (s *Server) handleGetWhitelist(w http.ResponseWriter, req *RPCRequest) {
	var list []string
	err := s.query(func(st *state.Manager) error {
		callers, err := s.engine.WhitelistedCallers(st)
		if err != nil {
			return err
		}
		list = callers
		return nil
	})
	if err != nil {
		writeError(w, http.StatusOK, req.ID, errorCode(err), err.Error())
		return
	}
	if list == nil {
		list = []string{}
	}
	writeResult(w, req.ID, list)
}

func (s *Server) handleGetPending(w http.ResponseWriter, req *RPCRequest) {
	var params pendingQueryParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error())
		return
	}
	var pending *big.Int
	err := s.query(func(st *state.Manager) error {
		amount, err := s.engine.PendingCashback(st, params.User)
		if err != nil {
			return err
		}
		pending = amount
		return nil
	})
	if err != nil {
		writeError(w, http.StatusOK, req.ID, errorCode(err), err.Error())
		return
	}
	writeResult(w, req.ID, formatBigInt(pending))
}

func (s *Server) handleGetCampaignTotal(w http.ResponseWriter, req *RPCRequest) {
	var params campaignTotalParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error())
		return
	}
	var total *big.Int
	err := s.query(func(st *state.Manager) error {
		amount, err := s.engine.CampaignCashback(st, params.ID, params.User)
		if err != nil {
			return err
		}
		total = amount
		return nil
	})
	if err != nil {
		writeError(w, http.StatusOK, req.ID, errorCode(err), err.Error())
		return
	}
	writeResult(w, req.ID, formatBigInt(total))
}
