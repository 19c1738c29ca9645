package jsonrpc

import (
	"context"
	"math/big"
	"net/http"
	"strconv"
	"strings"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/creachadair/jrpc2/jhttp"

	"driipnet/challenge"
	"driipnet/errors"
	"driipnet/exception"
	"driipnet/jsonx"
	"driipnet/logx"
	"driipnet/monitoring"
	"driipnet/ratelimit"
	"driipnet/types"
)

// --- Error type used by handlers ---

type rpcError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func toJRPC2Error(e *rpcError) error {
	if e == nil {
		return nil
	}
	var challengeError errors.ChallengeError
	err := jsonx.Unmarshal([]byte(e.Message), &challengeError)
	if err == nil && challengeError.Code != "" {
		return jrpc2.Errorf(jrpc2.Code(e.Code), "%s", challengeError.Message).WithData(challengeError)
	}
	return jrpc2.Errorf(jrpc2.Code(e.Code), "%s", e.Message)
}

// errorOf wraps an engine error for the bridge, carrying the coded JSON
// body through so clients can branch on the protocol code.
func errorOf(err error) *rpcError {
	monitoring.RecordRejectedCall(reasonOf(err))
	return &rpcError{Code: -32000, Message: err.Error()}
}

func reasonOf(err error) monitoring.CallRejectedReason {
	switch errors.CodeOf(err) {
	case errors.ErrCodeInvalidSeal:
		return monitoring.CallInvalidSeal
	case errors.ErrCodeUnauthorized:
		return monitoring.CallUnauthorized
	case errors.ErrCodeChallengeActive:
		return monitoring.CallChallengeActive
	case errors.ErrCodeChallengeNotFound:
		return monitoring.CallChallengeNotFound
	case errors.ErrCodeChallengeExpired:
		return monitoring.CallChallengeExpired
	case errors.ErrCodeEvidenceInsufficient:
		return monitoring.CallEvidenceInsufficient
	case errors.ErrCodeReferenceMismatch:
		return monitoring.CallReferenceMismatch
	case errors.ErrCodeCandidateCancelled:
		return monitoring.CallCandidateCancelled
	case errors.ErrCodeWalletLocked:
		return monitoring.CallWalletLocked
	case errors.ErrCodeSettlementNotOpen:
		return monitoring.CallSettlementNotOpen
	}
	return monitoring.CallRejectedUnknown
}

// --- Params/Results ---

type startFromTradeParams struct {
	Trade  *types.Trade `json:"trade"`
	Wallet string       `json:"wallet"`
	Caller string       `json:"caller"`
}

type startFromPaymentParams struct {
	Payment *types.Payment `json:"payment"`
	Wallet  string         `json:"wallet"`
	Caller  string         `json:"caller"`
}

type challengeByOrderParams struct {
	Order  *types.Order `json:"order"`
	Caller string       `json:"caller"`
}

type challengeByTradeParams struct {
	Trade  *types.Trade `json:"trade"`
	Wallet string       `json:"wallet"`
	Caller string       `json:"caller"`
}

type challengeByPaymentParams struct {
	Payment *types.Payment `json:"payment"`
	Wallet  string         `json:"wallet"`
	Caller  string         `json:"caller"`
}

type unchallengeParams struct {
	Order  *types.Order `json:"order"`
	Trade  *types.Trade `json:"trade"`
	Caller string       `json:"caller"`
}

type okResponse struct {
	Ok bool `json:"ok"`
}

type walletParams struct {
	Wallet string `json:"wallet"`
}

type phaseResponse struct {
	Nonce uint64 `json:"nonce"`
	Phase string `json:"phase"`
}

type statusParams struct {
	Wallet string `json:"wallet"`
	Nonce  uint64 `json:"nonce"`
}

type statusResponse struct {
	Result     string `json:"result"`
	Challenger string `json:"challenger"`
}

type countsResponse struct {
	ChallengedTrades   uint64 `json:"challenged_trades"`
	ChallengedPayments uint64 `json:"challenged_payments"`
	CandidateOrders    uint64 `json:"candidate_orders"`
	CandidateTrades    uint64 `json:"candidate_trades"`
	CandidatePayments  uint64 `json:"candidate_payments"`
}

type startProposalParams struct {
	Wallet      string         `json:"wallet"`
	StageAmount string         `json:"stage_amount"`
	Currency    types.Currency `json:"currency"`
	Caller      string         `json:"caller"`
}

type proposalParams struct {
	Wallet   string         `json:"wallet"`
	Currency types.Currency `json:"currency"`
}

type disqualificationView struct {
	Challenger    string `json:"challenger"`
	BlockNumber   uint64 `json:"block_number"`
	CandidateHash string `json:"candidate_hash"`
	CandidateType string `json:"candidate_type"`
}

type proposalResponse struct {
	Nonce                uint64               `json:"nonce"`
	ReferenceBlockNumber uint64               `json:"reference_block_number"`
	ExpirationBlock      uint64               `json:"expiration_block"`
	Expired              bool                 `json:"expired"`
	Status               string               `json:"status"`
	StageAmount          string               `json:"stage_amount"`
	TargetBalanceAmount  string               `json:"target_balance_amount"`
	BalanceReward        bool                 `json:"balance_reward"`
	Disqualification     disqualificationView `json:"disqualification"`
}

// --- Server ---

type Server struct {
	addr       string
	engine     *challenge.Engine
	nullEngine *challenge.NullEngine
	corsConfig CORSConfig
	limiter    *ratelimit.Limiter
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         int
}

func NewServer(addr string, engine *challenge.Engine, nullEngine *challenge.NullEngine) *Server {
	return &Server{
		addr:       addr,
		engine:     engine,
		nullEngine: nullEngine,
		limiter:    ratelimit.NewLimiter(nil),
	}
}

func (s *Server) Start() {
	methods := instrumented(s.buildMethodMap())
	jh := jhttp.NewBridge(methods, &jhttp.BridgeOptions{Server: &jrpc2.ServerOptions{}})

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.setCORSHeaders(w, r)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		clientIP := extractClientIPFromRequest(r)
		if !s.limiter.Allow(clientIP) {
			monitoring.IncreaseRateLimitedCount()
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		logx.Debug("RPC", "request from", clientIP)
		jh.ServeHTTP(w, r)
	})

	http.Handle("/", h)
	exception.SafeGo("jsonrpc server", func() {
		if err := http.ListenAndServe(s.addr, nil); err != nil {
			logx.Error("RPC", "server stopped:", err)
		}
	})
}

func instrumented(methods handler.Map) handler.Map {
	wrapped := make(handler.Map, len(methods))
	for name, h := range methods {
		name, h := name, h
		wrapped[name] = func(ctx context.Context, req *jrpc2.Request) (interface{}, error) {
			monitoring.IncreaseRPCRequestCount(name)
			return h(ctx, req)
		}
	}
	return wrapped
}

// SetCORSConfig allows configuring CORS settings
func (s *Server) SetCORSConfig(config CORSConfig) {
	s.corsConfig = config
}

// Build jrpc2 method map
func (s *Server) buildMethodMap() handler.Map {
	return handler.Map{
		MethodChallengeStartFromTrade: handler.New(func(ctx context.Context, p startFromTradeParams) (*okResponse, error) {
			if err := s.engine.StartChallengeFromTrade(p.Trade, p.Wallet, p.Caller); err != nil {
				return nil, toJRPC2Error(errorOf(err))
			}
			return &okResponse{Ok: true}, nil
		}),
		MethodChallengeStartFromPayment: handler.New(func(ctx context.Context, p startFromPaymentParams) (*okResponse, error) {
			if err := s.engine.StartChallengeFromPayment(p.Payment, p.Wallet, p.Caller); err != nil {
				return nil, toJRPC2Error(errorOf(err))
			}
			return &okResponse{Ok: true}, nil
		}),
		MethodChallengeByOrder: handler.New(func(ctx context.Context, p challengeByOrderParams) (*okResponse, error) {
			if err := s.engine.ChallengeByOrder(p.Order, p.Caller); err != nil {
				return nil, toJRPC2Error(errorOf(err))
			}
			return &okResponse{Ok: true}, nil
		}),
		MethodChallengeByTrade: handler.New(func(ctx context.Context, p challengeByTradeParams) (*okResponse, error) {
			if err := s.engine.ChallengeByTrade(p.Trade, p.Wallet, p.Caller); err != nil {
				return nil, toJRPC2Error(errorOf(err))
			}
			return &okResponse{Ok: true}, nil
		}),
		MethodChallengeByPayment: handler.New(func(ctx context.Context, p challengeByPaymentParams) (*okResponse, error) {
			if err := s.engine.ChallengeByPayment(p.Payment, p.Wallet, p.Caller); err != nil {
				return nil, toJRPC2Error(errorOf(err))
			}
			return &okResponse{Ok: true}, nil
		}),
		MethodChallengeUnchallenge: handler.New(func(ctx context.Context, p unchallengeParams) (*okResponse, error) {
			if err := s.engine.UnchallengeOrderCandidateByTrade(p.Order, p.Trade, p.Caller); err != nil {
				return nil, toJRPC2Error(errorOf(err))
			}
			return &okResponse{Ok: true}, nil
		}),
		MethodChallengePhase: handler.New(func(ctx context.Context, p walletParams) (*phaseResponse, error) {
			res, err := s.rpcPhase(p)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res, nil
		}),
		MethodChallengeStatus: handler.New(func(ctx context.Context, p statusParams) (*statusResponse, error) {
			res, err := s.rpcStatus(p)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res, nil
		}),
		MethodChallengeCounts: handler.New(func(ctx context.Context, p walletParams) (*countsResponse, error) {
			res, err := s.rpcCounts(p)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res, nil
		}),
		MethodNullChallengeStart: handler.New(func(ctx context.Context, p startProposalParams) (*okResponse, error) {
			res, err := s.rpcStartProposal(p, false)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res, nil
		}),
		MethodNullChallengeStartByProxy: handler.New(func(ctx context.Context, p startProposalParams) (*okResponse, error) {
			res, err := s.rpcStartProposal(p, true)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res, nil
		}),
		MethodNullChallengeByPayment: handler.New(func(ctx context.Context, p challengeByPaymentParams) (*okResponse, error) {
			if err := s.nullEngine.ChallengeByPayment(p.Wallet, p.Payment, p.Caller); err != nil {
				return nil, toJRPC2Error(errorOf(err))
			}
			return &okResponse{Ok: true}, nil
		}),
		MethodNullChallengeProposal: handler.New(func(ctx context.Context, p proposalParams) (*proposalResponse, error) {
			res, err := s.rpcProposal(p)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res, nil
		}),
	}
}

// --- Implementations ---

func (s *Server) rpcPhase(p walletParams) (*phaseResponse, *rpcError) {
	nonce, phase, err := s.engine.Phase(p.Wallet)
	if err != nil {
		return nil, errorOf(err)
	}
	return &phaseResponse{Nonce: nonce, Phase: phase.String()}, nil
}

func (s *Server) rpcStatus(p statusParams) (*statusResponse, *rpcError) {
	result, challenger, err := s.engine.Status(p.Wallet, p.Nonce)
	if err != nil {
		return nil, errorOf(err)
	}
	return &statusResponse{Result: result.String(), Challenger: challenger}, nil
}

func (s *Server) rpcCounts(p walletParams) (*countsResponse, *rpcError) {
	trades, err := s.engine.ChallengedTradesCount(p.Wallet)
	if err != nil {
		return nil, errorOf(err)
	}
	payments, err := s.engine.ChallengedPaymentsCount(p.Wallet)
	if err != nil {
		return nil, errorOf(err)
	}
	orderCandidates, err := s.engine.CandidateOrdersCount()
	if err != nil {
		return nil, errorOf(err)
	}
	tradeCandidates, err := s.engine.CandidateTradesCount()
	if err != nil {
		return nil, errorOf(err)
	}
	paymentCandidates, err := s.engine.CandidatePaymentsCount()
	if err != nil {
		return nil, errorOf(err)
	}
	return &countsResponse{
		ChallengedTrades:   trades,
		ChallengedPayments: payments,
		CandidateOrders:    orderCandidates,
		CandidateTrades:    tradeCandidates,
		CandidatePayments:  paymentCandidates,
	}, nil
}

func (s *Server) rpcStartProposal(p startProposalParams, byProxy bool) (*okResponse, *rpcError) {
	stage, ok := new(big.Int).SetString(p.StageAmount, 10)
	if !ok {
		return nil, &rpcError{Code: -32602, Message: "invalid stage amount", Data: p.StageAmount}
	}

	var err error
	if byProxy {
		err = s.nullEngine.StartChallengeByProxy(p.Caller, p.Wallet, stage, p.Currency)
	} else {
		err = s.nullEngine.StartChallenge(p.Caller, p.Wallet, stage, p.Currency)
	}
	if err != nil {
		return nil, errorOf(err)
	}
	return &okResponse{Ok: true}, nil
}

func (s *Server) rpcProposal(p proposalParams) (*proposalResponse, *rpcError) {
	nonce, err := s.nullEngine.ProposalNonce(p.Wallet, p.Currency)
	if err != nil {
		return nil, errorOf(err)
	}
	refBlock, err := s.nullEngine.ProposalBlockNumber(p.Wallet, p.Currency)
	if err != nil {
		return nil, errorOf(err)
	}
	expiration, err := s.nullEngine.ProposalExpirationBlock(p.Wallet, p.Currency)
	if err != nil {
		return nil, errorOf(err)
	}
	expired, err := s.nullEngine.HasProposalExpired(p.Wallet, p.Currency)
	if err != nil {
		return nil, errorOf(err)
	}
	status, err := s.nullEngine.ProposalStatus(p.Wallet, p.Currency)
	if err != nil {
		return nil, errorOf(err)
	}
	stage, err := s.nullEngine.ProposalStageAmount(p.Wallet, p.Currency)
	if err != nil {
		return nil, errorOf(err)
	}
	target, err := s.nullEngine.ProposalTargetBalanceAmount(p.Wallet, p.Currency)
	if err != nil {
		return nil, errorOf(err)
	}
	balanceReward, err := s.nullEngine.ProposalBalanceReward(p.Wallet, p.Currency)
	if err != nil {
		return nil, errorOf(err)
	}
	dq, err := s.nullEngine.ProposalDisqualification(p.Wallet, p.Currency)
	if err != nil {
		return nil, errorOf(err)
	}

	return &proposalResponse{
		Nonce:                nonce,
		ReferenceBlockNumber: refBlock,
		ExpirationBlock:      expiration,
		Expired:              expired,
		Status:               status.String(),
		StageAmount:          stage.String(),
		TargetBalanceAmount:  target.String(),
		BalanceReward:        balanceReward,
		Disqualification: disqualificationView{
			Challenger:    dq.Challenger,
			BlockNumber:   dq.BlockNumber,
			CandidateHash: dq.CandidateHash,
			CandidateType: dq.CandidateType.String(),
		},
	}, nil
}

// --- Helpers ---

func (s *Server) setCORSHeaders(w http.ResponseWriter, r *http.Request) {
	// Set allowed origins
	if len(s.corsConfig.AllowedOrigins) > 0 {
		if s.corsConfig.AllowedOrigins[0] == "*" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			origin := r.Header.Get("Origin")
			for _, allowedOrigin := range s.corsConfig.AllowedOrigins {
				if origin == allowedOrigin {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					break
				}
			}
		}
	}

	if len(s.corsConfig.AllowedMethods) > 0 {
		w.Header().Set("Access-Control-Allow-Methods", strings.Join(s.corsConfig.AllowedMethods, ", "))
	}
	if len(s.corsConfig.AllowedHeaders) > 0 {
		w.Header().Set("Access-Control-Allow-Headers", strings.Join(s.corsConfig.AllowedHeaders, ", "))
	}
	if s.corsConfig.MaxAge > 0 {
		w.Header().Set("Access-Control-Max-Age", strconv.Itoa(s.corsConfig.MaxAge))
	}
}
