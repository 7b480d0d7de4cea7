package rpc

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"os"
	"strings"
	"sync"

	"cashchain/core/state"
	"cashchain/native/cashback"
	"cashchain/storage"
)

const (
	jsonRPCVersion  = "2.0"
	maxRequestBytes = 1 << 20 // 1 MiB
)

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeUnauthorized   = -32001
	codeServerError    = -32000
)

// Server dispatches JSON-RPC requests into the cashback engine. Execute
// methods are serialised and evaluated against a staged state overlay that is
// committed only when the operation succeeds, so a failed call leaves no
// observable side effects.
type Server struct {
	db     storage.Database
	engine *cashback.Engine

	mu        sync.RWMutex
	authToken string
}

// NewServer creates a server over the provided database and engine. The
// bearer token guarding execute methods is read from CASHCHAIN_RPC_TOKEN; an
// empty token disables transport auth (local development).
func NewServer(db storage.Database, engine *cashback.Engine) *Server {
	return &Server{
		db:        db,
		engine:    engine,
		authToken: strings.TrimSpace(os.Getenv("CASHCHAIN_RPC_TOKEN")),
	}
}

// SetAuthToken overrides the bearer token guarding execute methods.
func (s *Server) SetAuthToken(token string) {
	s.authToken = strings.TrimSpace(token)
}

// Handler returns the http.Handler serving the JSON-RPC endpoint.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(s.handle)
}

type RPCRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      interface{}       `json:"id"`
}

type RPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func writeError(w http.ResponseWriter, status int, id interface{}, code int, message string) {
	if status <= 0 {
		status = http.StatusBadRequest
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Error: &RPCError{Code: code, Message: message}}
	_ = json.NewEncoder(w).Encode(resp)
}

func writeResult(w http.ResponseWriter, id interface{}, result interface{}) {
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Result: result}
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, nil, codeInvalidRequest, "POST required")
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "failed to read request body")
		return
	}
	req := new(RPCRequest)
	if err := json.Unmarshal(body, req); err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "invalid JSON-RPC request")
		return
	}

	if execute, ok := s.executeHandlers()[req.Method]; ok {
		if !s.authorized(r) {
			writeError(w, http.StatusUnauthorized, req.ID, codeUnauthorized, "missing or invalid bearer token")
			return
		}
		execute(w, req)
		return
	}
	if query, ok := s.queryHandlers()[req.Method]; ok {
		query(w, req)
		return
	}
	writeError(w, http.StatusNotFound, req.ID, codeMethodNotFound, fmt.Sprintf("unknown method %q", req.Method))
}

func (s *Server) authorized(r *http.Request) bool {
	if s.authToken == "" {
		return true
	}
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.authToken)) == 1
}

// execute runs fn against a staged overlay of the live database and commits
// the overlay only when fn succeeds. Calls are serialised: the engine
// processes exactly one execute call to completion before the next begins.
func (s *Server) execute(fn func(st *state.Manager) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	overlay := storage.NewOverlay(s.db)
	if err := fn(state.NewManager(overlay)); err != nil {
		return err
	}
	return overlay.Commit()
}

// query runs fn against the live database. The read lock excludes concurrent
// commits, so a query never observes half of an execute call.
func (s *Server) query(fn func(st *state.Manager) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(state.NewManager(s.db))
}

func errorCode(err error) int {
	switch {
	case errors.Is(err, cashback.ErrUnauthorized):
		return codeUnauthorized
	case errors.Is(err, cashback.ErrInvalidPercent),
		errors.Is(err, cashback.ErrInvalidCampaignTime),
		errors.Is(err, cashback.ErrInvalidAmount):
		return codeInvalidParams
	default:
		return codeServerError
	}
}

func decodeParams(req *RPCRequest, out interface{}) error {
	if len(req.Params) != 1 {
		return fmt.Errorf("expected a single params object")
	}
	return json.Unmarshal(req.Params[0], out)
}

func parseBigInt(value string) (*big.Int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return big.NewInt(0), nil
	}
	parsed, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, fmt.Errorf("invalid integer amount %q", value)
	}
	return parsed, nil
}

func formatBigInt(value *big.Int) string {
	if value == nil {
		return "0"
	}
	return value.String()
}
