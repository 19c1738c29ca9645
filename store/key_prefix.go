package store

// Declare database key prefixes for stored objects
const (
	PrefixChallenge            = "challenge:"
	PrefixChallengedTrade      = "challenged_trade:"
	PrefixChallengedTradeCount = "challenged_trade_count:"
	PrefixChallengedPayment    = "challenged_payment:"
	PrefixChallengedPaymentCnt = "challenged_payment_count:"

	PrefixCandidateOrder     = "candidate_order:"
	PrefixCandidateTrade     = "candidate_trade:"
	PrefixCandidatePayment   = "candidate_payment:"
	KeyCandidateOrderCount   = "candidate_order_count"
	KeyCandidateTradeCount   = "candidate_trade_count"
	KeyCandidatePaymentCount = "candidate_payment_count"

	PrefixProposal        = "proposal:"
	PrefixBalanceLog      = "balance_log:"
	PrefixBalanceLogCount = "balance_log_count:"
	PrefixMaxNonce        = "max_nonce:"
	PrefixStagedBond      = "staged_bond:"
	PrefixWalletLock      = "wallet_lock:"
	PrefixCancelledOrder  = "cancelled_order:"

	KeyBlockHeight = "block_height"
)
