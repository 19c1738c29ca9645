package challenge

import (
	"crypto/ed25519"
	"crypto/rand"
	"math/big"
	"testing"

	"driipnet/cancelorders"
	"driipnet/common"
	"driipnet/config"
	"driipnet/db"
	"driipnet/events"
	"driipnet/securitybond"
	"driipnet/store"
	"driipnet/types"
	"driipnet/validator"
	"driipnet/walletlock"
)

type testKey struct {
	pub  ed25519.PublicKey
	priv ed25519.PrivateKey
	addr string
}

func newTestKey(t *testing.T) testKey {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	return testKey{pub: pub, priv: priv, addr: common.EncodeBytesToBase58(pub)}
}

func (k testKey) signHash(hash string) string {
	return common.EncodeBytesToBase58(ed25519.Sign(k.priv, []byte(hash)))
}

type manualClock struct {
	block uint64
}

func (c *manualClock) CurrentBlockNumber() uint64 { return c.block }

type testRig struct {
	engine     *Engine
	nullEngine *NullEngine
	clock      *manualClock
	log        *events.EventLog

	cancels    *cancelorders.Registry
	locker     *walletlock.Locker
	bond       *securitybond.Bond
	balances   *store.BalanceStore
	settlement *store.SettlementStateStore
	candidates *store.CandidateStore

	// the dep bundles the engines were built from, so a test can rebuild
	// an engine over the same stores with one collaborator swapped out
	engineDeps     EngineDeps
	nullEngineDeps NullEngineDeps

	exchange testKey
	operator testKey
}

func newTestRig(t *testing.T) *testRig {
	return newTestRigWithConfig(t, &config.ChallengeConfig{
		TimeoutBlocks:          1000,
		UnchallengeStakeAmount: 1000,
	})
}

func newTestRigWithConfig(t *testing.T, cfg *config.ChallengeConfig) *testRig {
	t.Helper()

	provider := db.NewMemoryProvider()
	txManager := db.NewDBTxManager(provider)

	challengeStore, err := store.NewChallengeStore(provider)
	if err != nil {
		t.Fatalf("failed to create challenge store: %v", err)
	}
	candidateStore, err := store.NewCandidateStore(provider)
	if err != nil {
		t.Fatalf("failed to create candidate store: %v", err)
	}
	proposalStore, err := store.NewProposalStore(provider)
	if err != nil {
		t.Fatalf("failed to create proposal store: %v", err)
	}
	balanceStore, err := store.NewBalanceStore(provider)
	if err != nil {
		t.Fatalf("failed to create balance store: %v", err)
	}
	settlementStore, err := store.NewSettlementStateStore(provider)
	if err != nil {
		t.Fatalf("failed to create settlement state store: %v", err)
	}
	cancels, err := cancelorders.NewRegistry(provider)
	if err != nil {
		t.Fatalf("failed to create cancel registry: %v", err)
	}
	locker, err := walletlock.NewLocker(provider)
	if err != nil {
		t.Fatalf("failed to create wallet locker: %v", err)
	}
	bond, err := securitybond.NewBond(provider)
	if err != nil {
		t.Fatalf("failed to create security bond: %v", err)
	}

	exchange := newTestKey(t)
	operator := newTestKey(t)
	sealValidator, err := validator.NewSealValidator(exchange.addr)
	if err != nil {
		t.Fatalf("failed to create seal validator: %v", err)
	}

	params := config.NewProtocolParams(cfg)
	clock := &manualClock{block: 1}
	log := events.NewEventLog()
	recorder := events.NewRecorder(log, events.NewEventBus())

	engineDeps := EngineDeps{
		Operator:       operator.addr,
		ChallengeStore: challengeStore,
		CandidateStore: candidateStore,
		TxManager:      txManager,
		Validator:      sealValidator,
		CancelOrders:   cancels,
		WalletLocker:   locker,
		SecurityBond:   bond,
		Config:         params,
		Clock:          clock,
		Recorder:       recorder,
	}
	nullEngineDeps := NullEngineDeps{
		Operator:        operator.addr,
		ProposalStore:   proposalStore,
		TxManager:       txManager,
		Validator:       sealValidator,
		WalletLocker:    locker,
		SecurityBond:    bond,
		BalanceTracker:  balanceStore,
		SettlementState: settlementStore,
		Config:          params,
		Clock:           clock,
		Recorder:        recorder,
	}

	return &testRig{
		engine:         NewEngine(engineDeps),
		nullEngine:     NewNullEngine(nullEngineDeps),
		clock:          clock,
		log:            log,
		cancels:        cancels,
		locker:         locker,
		bond:           bond,
		balances:       balanceStore,
		settlement:     settlementStore,
		candidates:     candidateStore,
		engineDeps:     engineDeps,
		nullEngineDeps: nullEngineDeps,
		exchange:       exchange,
		operator:       operator,
	}
}

func cur(ct string) types.Currency {
	return types.Currency{Ct: ct}
}

// sealTrade stamps the exchange seal onto the trade.
func (r *testRig) sealTrade(trade *types.Trade) *types.Trade {
	hash := trade.Hash()
	trade.Seal = types.Seal{Hash: hash, Signature: r.exchange.signHash(hash)}
	return trade
}

// sealOrder stamps both the wallet and exchange seals onto the order.
func (r *testRig) sealOrder(order *types.Order, wallet testKey) *types.Order {
	hash := order.Hash()
	order.Seals = types.OrderSeals{
		Wallet:   types.Seal{Hash: hash, Signature: wallet.signHash(hash)},
		Exchange: types.Seal{Hash: hash, Signature: r.exchange.signHash(hash)},
	}
	return order
}

// sealPayment stamps both seals onto the payment; the wallet seal is the
// sender's.
func (r *testRig) sealPayment(payment *types.Payment, sender testKey) *types.Payment {
	hash := payment.Hash()
	payment.Seals = types.PaymentSeals{
		Wallet:   types.Seal{Hash: hash, Signature: sender.signHash(hash)},
		Exchange: types.Seal{Hash: hash, Signature: r.exchange.signHash(hash)},
	}
	return payment
}

// tradeFixture builds a sealed trade between buyer and seller on the
// tok/gem market with the given current balances on the buyer's conjugate
// and seller's intended legs.
func (r *testRig) tradeFixture(buyer, seller testKey, nonce uint64, buyerConjugate, sellerIntended int64) *types.Trade {
	trade := &types.Trade{
		Nonce:      nonce,
		Amount:     big.NewInt(100),
		Currencies: types.CurrencyPair{Intended: cur("tok"), Conjugate: cur("gem")},
		Buyer: types.TradeParty{
			Nonce:  nonce,
			Wallet: buyer.addr,
			Balances: types.TradeBalances{
				Intended:  types.BalanceFigures{Current: big.NewInt(100), Previous: big.NewInt(0)},
				Conjugate: types.BalanceFigures{Current: big.NewInt(buyerConjugate), Previous: big.NewInt(buyerConjugate + 50)},
			},
		},
		Seller: types.TradeParty{
			Nonce:  nonce,
			Wallet: seller.addr,
			Balances: types.TradeBalances{
				Intended:  types.BalanceFigures{Current: big.NewInt(sellerIntended), Previous: big.NewInt(sellerIntended + 100)},
				Conjugate: types.BalanceFigures{Current: big.NewInt(50), Previous: big.NewInt(0)},
			},
		},
		Transfers: types.TradeTransfers{
			Intended:  types.TransferFigures{Single: big.NewInt(100), Total: big.NewInt(100)},
			Conjugate: types.TransferFigures{Single: big.NewInt(50), Total: big.NewInt(50)},
		},
		BlockNumber: r.clock.block,
	}
	return r.sealTrade(trade)
}

// orderFixture builds a sealed order spending amount of the conjugate leg.
func (r *testRig) orderFixture(wallet testKey, nonce uint64, conjugate types.Currency, amount int64) *types.Order {
	order := &types.Order{
		Nonce:  nonce,
		Wallet: wallet.addr,
		Placement: types.OrderPlacement{
			Amount:     big.NewInt(amount),
			Currencies: types.CurrencyPair{Intended: cur("tok"), Conjugate: conjugate},
			Residuals:  types.BalanceFigures{Current: big.NewInt(amount), Previous: big.NewInt(amount)},
		},
		BlockNumber: r.clock.block,
	}
	return r.sealOrder(order, wallet)
}

// paymentFixture builds a sealed payment from sender to recipient with the
// given sender current balance and single transfer.
func (r *testRig) paymentFixture(sender, recipient testKey, nonce uint64, currency types.Currency, senderCurrent, transfer int64) *types.Payment {
	payment := &types.Payment{
		Nonce:    nonce,
		Amount:   big.NewInt(transfer),
		Currency: currency,
		Sender: types.PaymentParty{
			Nonce:    nonce,
			Wallet:   sender.addr,
			Balances: types.BalanceFigures{Current: big.NewInt(senderCurrent), Previous: big.NewInt(senderCurrent + transfer)},
		},
		Recipient: types.PaymentParty{
			Nonce:    nonce,
			Wallet:   recipient.addr,
			Balances: types.BalanceFigures{Current: big.NewInt(transfer), Previous: big.NewInt(0)},
		},
		Transfers:   types.TransferFigures{Single: big.NewInt(transfer), Total: big.NewInt(transfer)},
		BlockNumber: r.clock.block,
	}
	return r.sealPayment(payment, sender)
}
