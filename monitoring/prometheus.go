package monitoring

import (
	"net/http"

	"driipnet/logx"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type CallRejectedReason string

var (
	CallInvalidSeal          CallRejectedReason = "invalid_seal"
	CallUnauthorized         CallRejectedReason = "unauthorized"
	CallChallengeActive      CallRejectedReason = "challenge_active"
	CallChallengeNotFound    CallRejectedReason = "challenge_not_found"
	CallChallengeExpired     CallRejectedReason = "challenge_expired"
	CallEvidenceInsufficient CallRejectedReason = "evidence_insufficient"
	CallReferenceMismatch    CallRejectedReason = "reference_mismatch"
	CallCandidateCancelled   CallRejectedReason = "candidate_cancelled"
	CallWalletLocked         CallRejectedReason = "wallet_locked"
	CallSettlementNotOpen    CallRejectedReason = "settlement_not_open"
	CallRejectedUnknown      CallRejectedReason = "other"
)

type nodePromMetrics struct {
	nodeUpUnixSeconds     prometheus.Gauge
	blockHeight           prometheus.Gauge
	challengesStarted     *prometheus.CounterVec
	candidatesAdmitted    *prometheus.CounterVec
	requalifiedCount      prometheus.Counter
	proposalsStarted      *prometheus.CounterVec
	proposalsDisqualified prometheus.Counter
	rejectedCallCount     *prometheus.CounterVec
	rpcRequestCount       *prometheus.CounterVec
	rateLimitedCount      prometheus.Counter
	panicCount            prometheus.Counter
}

func newNodePromMetrics() *nodePromMetrics {
	return &nodePromMetrics{
		nodeUpUnixSeconds: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "driipnet_node_up_timestamp_unix_seconds",
				Help: "Unix timestamp of the node",
			},
		),
		blockHeight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "driipnet_node_block_height",
				Help: "The current ledger block height",
			},
		),
		challengesStarted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "driipnet_node_challenges_started_count",
				Help: "The total number of settlement challenges started",
			},
			[]string{"source"},
		),
		candidatesAdmitted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "driipnet_node_candidates_admitted_count",
				Help: "The total number of candidate driips admitted against active challenges",
			},
			[]string{"kind"},
		),
		requalifiedCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "driipnet_node_requalified_count",
				Help: "The total number of challenges requalified after an order candidate was countered",
			},
		),
		proposalsStarted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "driipnet_node_proposals_started_count",
				Help: "The total number of null settlement proposals started",
			},
			[]string{"path"},
		),
		proposalsDisqualified: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "driipnet_node_proposals_disqualified_count",
				Help: "The total number of null settlement proposals disqualified by payment evidence",
			},
		),
		rejectedCallCount: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "driipnet_node_rejected_call_count",
				Help: "The total number of rejected challenge calls",
			},
			[]string{"reason"},
		),
		rpcRequestCount: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "driipnet_node_rpc_request_count",
				Help: "The total number of JSON-RPC requests by method",
			},
			[]string{"method"},
		),
		rateLimitedCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "driipnet_node_rate_limited_count",
				Help: "The total number of HTTP requests dropped by the rate limiter",
			},
		),
		panicCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "driipnet_node_panic_count",
				Help: "The total number of recovered panics in background goroutines",
			},
		),
	}
}

var nodeMetrics *nodePromMetrics

// InitMetrics initialize metrics for node but not expose to api yet
func InitMetrics() {
	nodeMetrics = newNodePromMetrics()
	nodeMetrics.nodeUpUnixSeconds.SetToCurrentTime()
}

func RegisterMetrics(mux *http.ServeMux) {
	logx.Info("Registering prometheus metrics")
	mux.Handle("/metrics", promhttp.Handler())
}

func SetBlockHeight(blockHeight uint64) {
	if nodeMetrics == nil {
		return
	}
	nodeMetrics.blockHeight.Set(float64(blockHeight))
}

func IncreaseChallengesStarted(source string) {
	if nodeMetrics == nil {
		return
	}
	nodeMetrics.challengesStarted.With(prometheus.Labels{
		"source": source,
	}).Inc()
}

func IncreaseCandidatesAdmitted(kind string) {
	if nodeMetrics == nil {
		return
	}
	nodeMetrics.candidatesAdmitted.With(prometheus.Labels{
		"kind": kind,
	}).Inc()
}

func IncreaseRequalifiedCount() {
	if nodeMetrics == nil {
		return
	}
	nodeMetrics.requalifiedCount.Inc()
}

func IncreaseProposalsStarted(path string) {
	if nodeMetrics == nil {
		return
	}
	nodeMetrics.proposalsStarted.With(prometheus.Labels{
		"path": path,
	}).Inc()
}

func IncreaseProposalsDisqualified() {
	if nodeMetrics == nil {
		return
	}
	nodeMetrics.proposalsDisqualified.Inc()
}

func RecordRejectedCall(reason CallRejectedReason) {
	if nodeMetrics == nil {
		return
	}
	nodeMetrics.rejectedCallCount.With(prometheus.Labels{
		"reason": string(reason),
	}).Inc()
}

func IncreaseRPCRequestCount(method string) {
	if nodeMetrics == nil {
		return
	}
	nodeMetrics.rpcRequestCount.With(prometheus.Labels{
		"method": method,
	}).Inc()
}

func IncreaseRateLimitedCount() {
	if nodeMetrics == nil {
		return
	}
	nodeMetrics.rateLimitedCount.Inc()
}

func IncreasePanicCount() {
	if nodeMetrics == nil {
		return
	}
	nodeMetrics.panicCount.Inc()
}
