package challenge

import (
	"fmt"
	"math/big"
	"sync"

	"driipnet/db"
	"driipnet/errors"
	"driipnet/events"
	"driipnet/interfaces"
	"driipnet/logx"
	"driipnet/store"
	"driipnet/stringutil"
	"driipnet/types"
)

// NullEngine runs null settlement challenges: per-(wallet, currency)
// proposals to stage an amount without a backing driip, contestable by
// payment evidence during the challenge window.
type NullEngine struct {
	mu sync.Mutex

	operator string

	proposalStore *store.ProposalStore
	txManager     *db.DBTxManager

	validator       interfaces.Validator
	walletLocker    interfaces.WalletLocker
	securityBond    interfaces.SecurityBond
	balanceTracker  interfaces.BalanceTracker
	settlementState interfaces.SettlementState
	config          interfaces.Configuration
	clock           interfaces.BlockClock

	recorder *events.Recorder
}

// NullEngineDeps bundles the null engine's collaborators.
type NullEngineDeps struct {
	Operator        string
	ProposalStore   *store.ProposalStore
	TxManager       *db.DBTxManager
	Validator       interfaces.Validator
	WalletLocker    interfaces.WalletLocker
	SecurityBond    interfaces.SecurityBond
	BalanceTracker  interfaces.BalanceTracker
	SettlementState interfaces.SettlementState
	Config          interfaces.Configuration
	Clock           interfaces.BlockClock
	Recorder        *events.Recorder
}

func NewNullEngine(deps NullEngineDeps) *NullEngine {
	return &NullEngine{
		operator:        deps.Operator,
		proposalStore:   deps.ProposalStore,
		txManager:       deps.TxManager,
		validator:       deps.Validator,
		walletLocker:    deps.WalletLocker,
		securityBond:    deps.SecurityBond,
		balanceTracker:  deps.BalanceTracker,
		settlementState: deps.SettlementState,
		config:          deps.Config,
		clock:           deps.Clock,
		recorder:        deps.Recorder,
	}
}

// StartChallenge opens a null settlement proposal for the wallet itself.
// The direct path carries the balance reward flag: a disqualification
// grants the challenger a claim on the wallet's own funds. Only the wallet
// may put its own balance at stake, so the caller must be the wallet; the
// operator acts through StartChallengeByProxy.
func (ne *NullEngine) StartChallenge(caller, wallet string, stageAmount *big.Int, currency types.Currency) error {
	ne.mu.Lock()
	defer ne.mu.Unlock()

	if caller != wallet {
		return errors.NewError(errors.ErrCodeUnauthorized, errors.ErrMsgUnauthorized)
	}
	if ne.walletLocker.IsLocked(wallet) {
		return errors.NewError(errors.ErrCodeWalletLocked, errors.ErrMsgWalletLocked)
	}
	if err := ne.start(wallet, stageAmount, currency, true); err != nil {
		return err
	}
	ne.recorder.Emit(events.NewStartProposal(wallet, stageAmount, currency))
	return nil
}

// StartChallengeByProxy opens a null settlement proposal on the wallet's
// behalf. Only the operator may call it; a disqualification rewards the
// challenger from the security bond instead of the wallet's funds.
func (ne *NullEngine) StartChallengeByProxy(caller, wallet string, stageAmount *big.Int, currency types.Currency) error {
	ne.mu.Lock()
	defer ne.mu.Unlock()

	if caller != ne.operator {
		return errors.NewError(errors.ErrCodeUnauthorized, errors.ErrMsgUnauthorized)
	}
	if err := ne.start(wallet, stageAmount, currency, false); err != nil {
		return err
	}
	ne.recorder.Emit(events.NewStartProposalByProxy(wallet, stageAmount, currency))
	return nil
}

func (ne *NullEngine) start(wallet string, stageAmount *big.Int, currency types.Currency, balanceReward bool) error {
	if stageAmount == nil || stageAmount.Sign() <= 0 {
		return errors.NewError(errors.ErrCodeEvidenceInsufficient, "Stage amount must be strictly positive")
	}

	currentBlock := ne.clock.CurrentBlockNumber()
	if currentBlock < ne.config.EarliestSettlementBlockNumber() {
		return errors.NewError(errors.ErrCodeSettlementNotOpen, errors.ErrMsgSettlementNotOpen)
	}

	existing, err := ne.proposalStore.Proposal(wallet, currency)
	if err != nil {
		return err
	}
	if existing != nil && !existing.Expired(currentBlock) {
		return errors.NewError(errors.ErrCodeChallengeActive, errors.ErrMsgChallengeActive)
	}

	if !ne.balanceTracker.HasDepositLog(wallet, currency) {
		return errors.NewError(errors.ErrCodeEvidenceInsufficient,
			"No deposited balance recorded for wallet and currency")
	}
	lastLog, err := ne.balanceTracker.LastDepositLog(wallet, currency)
	if err != nil {
		return err
	}
	targetBalance := new(big.Int).Sub(lastLog.Amount, stageAmount)
	if targetBalance.Sign() < 0 {
		return errors.NewError(errors.ErrCodeEvidenceInsufficient,
			"Stage amount exceeds deposited balance")
	}

	err = ne.txManager.WithBatch(func(batch db.DatabaseBatch) error {
		return ne.proposalStore.PutProposalInBatch(batch, &types.Proposal{
			Wallet:               wallet,
			Nonce:                ne.settlementState.MaxNonce(wallet, currency),
			ReferenceBlockNumber: lastLog.BlockNumber,
			ChallengeStart:       currentBlock,
			Timeout:              ne.config.ChallengeTimeout(currency),
			Status:               types.ResultQualified,
			StageAmount:          stageAmount,
			TargetBalanceAmount:  targetBalance,
			Currency:             currency,
			BalanceReward:        balanceReward,
		})
	})
	if err != nil {
		return fmt.Errorf("failed to start null settlement proposal: %w", err)
	}

	logx.Info("NULLCHALLENGE", fmt.Sprintf("Proposal started | wallet=%s | currency=%s | stage=%s | target=%s",
		wallet, currency, stageAmount, targetBalance))
	return nil
}

// ChallengeByPayment submits payment as evidence against the wallet's null
// settlement proposal in the payment's currency. Admissible only when the
// payment's single transfer exceeds the proposal's target balance.
func (ne *NullEngine) ChallengeByPayment(wallet string, payment *types.Payment, caller string) error {
	ne.mu.Lock()
	defer ne.mu.Unlock()

	if payment == nil {
		return errors.NewError(errors.ErrCodeReferenceMismatch, errors.ErrMsgDriipMissing)
	}
	if !ne.validator.IsGenuinePaymentSeals(payment) {
		return errors.NewError(errors.ErrCodeInvalidSeal, errors.ErrMsgInvalidSeal)
	}
	if !payment.IsSender(wallet) {
		return errors.NewError(errors.ErrCodeReferenceMismatch, errors.ErrMsgReferenceMismatch)
	}

	proposal, err := ne.activeProposal(wallet, payment.Currency)
	if err != nil {
		return err
	}
	if payment.TransferAmount().Cmp(proposal.TargetBalanceAmount) <= 0 {
		return errors.NewError(errors.ErrCodeEvidenceInsufficient, errors.ErrMsgEvidenceInsufficient)
	}

	currentBlock := ne.clock.CurrentBlockNumber()
	candidateHash := payment.Hash()
	reward := types.MonetaryFigure{Amount: proposal.StageAmount, Currency: proposal.Currency}

	// Disqualification and its reward are one commit: a balance-rewarded
	// proposal locks the wallet for the challenger, a proxied one stages
	// the reward from the security bond. Neither may land without the
	// other.
	err = ne.txManager.WithBatch(func(batch db.DatabaseBatch) error {
		proposal.Status = types.ResultDisqualified
		proposal.Disqualification = types.Disqualification{
			Challenger:    caller,
			BlockNumber:   currentBlock,
			CandidateHash: candidateHash,
			CandidateType: types.CandidatePayment,
		}
		if err := ne.proposalStore.PutProposalInBatch(batch, proposal); err != nil {
			return err
		}
		if proposal.BalanceReward {
			return ne.walletLocker.LockInBatch(batch, wallet, caller, reward)
		}
		return ne.securityBond.StageInBatch(batch, caller, reward)
	})
	if err != nil {
		return fmt.Errorf("failed to challenge proposal by payment: %w", err)
	}

	logx.Info("NULLCHALLENGE", fmt.Sprintf("Proposal disqualified | wallet=%s | currency=%s | hash=%s | challenger=%s",
		wallet, payment.Currency, stringutil.ShortenLog(candidateHash), caller))
	ne.recorder.Emit(events.NewProposalDisqualified(wallet, payment.Currency, candidateHash, caller))
	return nil
}

// activeProposal returns the unexpired proposal for (wallet, currency).
func (ne *NullEngine) activeProposal(wallet string, currency types.Currency) (*types.Proposal, error) {
	proposal, err := ne.proposalStore.Proposal(wallet, currency)
	if err != nil {
		return nil, err
	}
	if proposal == nil {
		return nil, errors.NewError(errors.ErrCodeChallengeNotFound, errors.ErrMsgChallengeNotFound)
	}
	if proposal.Expired(ne.clock.CurrentBlockNumber()) {
		return nil, errors.NewError(errors.ErrCodeChallengeExpired, errors.ErrMsgChallengeExpired)
	}
	return proposal, nil
}

// proposal returns the stored proposal regardless of expiry; accessors use
// it so a closed proposal stays inspectable.
func (ne *NullEngine) proposal(wallet string, currency types.Currency) (*types.Proposal, error) {
	proposal, err := ne.proposalStore.Proposal(wallet, currency)
	if err != nil {
		return nil, err
	}
	if proposal == nil {
		return nil, errors.NewError(errors.ErrCodeChallengeNotFound, errors.ErrMsgChallengeNotFound)
	}
	return proposal, nil
}

// HasProposalExpired reports whether the proposal's window has closed at
// the current block.
func (ne *NullEngine) HasProposalExpired(wallet string, currency types.Currency) (bool, error) {
	proposal, err := ne.proposal(wallet, currency)
	if err != nil {
		return false, err
	}
	return proposal.Expired(ne.clock.CurrentBlockNumber()), nil
}

// ProposalNonce returns the proposal's inherited settlement nonce.
func (ne *NullEngine) ProposalNonce(wallet string, currency types.Currency) (uint64, error) {
	proposal, err := ne.proposal(wallet, currency)
	if err != nil {
		return 0, err
	}
	return proposal.Nonce, nil
}

// ProposalBlockNumber returns the proposal's reference block number.
func (ne *NullEngine) ProposalBlockNumber(wallet string, currency types.Currency) (uint64, error) {
	proposal, err := ne.proposal(wallet, currency)
	if err != nil {
		return 0, err
	}
	return proposal.ReferenceBlockNumber, nil
}

// ProposalExpirationBlock returns the last block of the proposal's window.
func (ne *NullEngine) ProposalExpirationBlock(wallet string, currency types.Currency) (uint64, error) {
	proposal, err := ne.proposal(wallet, currency)
	if err != nil {
		return 0, err
	}
	return proposal.Expiration(), nil
}

// ProposalStatus returns the proposal's stored dispute status.
func (ne *NullEngine) ProposalStatus(wallet string, currency types.Currency) (types.ChallengeResult, error) {
	proposal, err := ne.proposal(wallet, currency)
	if err != nil {
		return types.ResultUnknown, err
	}
	return proposal.Status, nil
}

// ProposalStageAmount returns the amount the proposal stages.
func (ne *NullEngine) ProposalStageAmount(wallet string, currency types.Currency) (*big.Int, error) {
	proposal, err := ne.proposal(wallet, currency)
	if err != nil {
		return nil, err
	}
	return proposal.StageAmount, nil
}

// ProposalTargetBalanceAmount returns the balance the wallet would retain.
func (ne *NullEngine) ProposalTargetBalanceAmount(wallet string, currency types.Currency) (*big.Int, error) {
	proposal, err := ne.proposal(wallet, currency)
	if err != nil {
		return nil, err
	}
	return proposal.TargetBalanceAmount, nil
}

// ProposalBalanceReward reports whether a disqualification claims the
// wallet's own funds.
func (ne *NullEngine) ProposalBalanceReward(wallet string, currency types.Currency) (bool, error) {
	proposal, err := ne.proposal(wallet, currency)
	if err != nil {
		return false, err
	}
	return proposal.BalanceReward, nil
}

// ProposalDisqualification returns the proposal's disqualification details.
func (ne *NullEngine) ProposalDisqualification(wallet string, currency types.Currency) (*types.Disqualification, error) {
	proposal, err := ne.proposal(wallet, currency)
	if err != nil {
		return nil, err
	}
	return &proposal.Disqualification, nil
}
