package transfer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stableroute/stableroute_service/internal/domain/entities"
	domainErrors "github.com/stableroute/stableroute_service/internal/domain/errors"
	"github.com/stableroute/stableroute_service/internal/domain/services/fees"
	"github.com/stableroute/stableroute_service/internal/domain/services/messenger"
	"github.com/stableroute/stableroute_service/internal/domain/services/pricefeed"
	"github.com/stableroute/stableroute_service/internal/domain/services/quote"
	"github.com/stableroute/stableroute_service/internal/domain/services/registry"
)

const (
	evmRecipient    = "0x2222222222222222222222222222222222222222"
	solanaRecipient = "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"
)

type memoryQuoteStore struct {
	mu     sync.Mutex
	quotes map[uuid.UUID]*entities.Quote
}

func (s *memoryQuoteStore) Save(_ context.Context, q *entities.Quote, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes[q.ID] = q
	return nil
}

func (s *memoryQuoteStore) Get(_ context.Context, id uuid.UUID) (*entities.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quotes[id], nil
}

func (s *memoryQuoteStore) drop(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.quotes, id)
}

type memoryTransferRepo struct {
	mu        sync.Mutex
	transfers map[uuid.UUID]*entities.TransferTransaction
}

func newMemoryTransferRepo() *memoryTransferRepo {
	return &memoryTransferRepo{transfers: make(map[uuid.UUID]*entities.TransferTransaction)}
}

func (r *memoryTransferRepo) Create(_ context.Context, t *entities.TransferTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	r.transfers[t.ID] = &cp
	return nil
}

func (r *memoryTransferRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.TransferTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.transfers[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, nil
}

func (r *memoryTransferRepo) GetByMessageID(_ context.Context, messageID string) (*entities.TransferTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.transfers {
		if t.MessageID == messageID {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memoryTransferRepo) UpdateStatus(_ context.Context, id uuid.UUID, status entities.TransferStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.transfers[id]; ok {
		t.Status = status
	}
	return nil
}

func (r *memoryTransferRepo) MarkDispatched(_ context.Context, id uuid.UUID, messageID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.transfers[id]; ok {
		t.MessageID = messageID
		t.Status = entities.TransferStatusProcessing
	}
	return nil
}

func (r *memoryTransferRepo) MarkCompleted(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.transfers[id]; ok {
		now := time.Now()
		t.Status = entities.TransferStatusCompleted
		t.CompletedAt = &now
	}
	return nil
}

func (r *memoryTransferRepo) List(_ context.Context, limit, _ int) ([]*entities.TransferTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.TransferTransaction
	for _, t := range r.transfers {
		if len(out) >= limit {
			break
		}
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

func testService(t *testing.T) (*Service, *quote.Engine, *messenger.Messenger, *memoryQuoteStore, *memoryTransferRepo) {
	t.Helper()

	chains := entities.NewChainSet([]*entities.Chain{
		{ID: entities.ChainEthereum, EVM: true, RiskMultiplier: "1.0", GasConstant: "5.0"},
		{ID: entities.ChainPolygon, EVM: true, RiskMultiplier: "1.1", GasConstant: "0.1"},
		{ID: entities.ChainSolana, EVM: false, RiskMultiplier: "1.2", GasConstant: "0.01"},
	})

	prices := pricefeed.NewAggregator([]pricefeed.Source{
		pricefeed.NewStaticSource("test", map[entities.ChainID]decimal.Decimal{
			entities.ChainEthereum: decimal.NewFromFloat(1.0),
			entities.ChainPolygon:  decimal.NewFromFloat(1.0),
			entities.ChainSolana:   decimal.NewFromFloat(1.0),
		}),
	}, pricefeed.DefaultCacheTTL, zap.NewNop())

	reg := registry.NewRegistry(zap.NewNop())
	_, err := reg.Register(&entities.RegisterBridgeRequest{
		Name:           "wormhole",
		Protocol:       "wormhole",
		Kind:           string(entities.BridgeKindMessaging),
		AdapterAddress: "0xwormhole",
		Priority:       1,
		SourceChains:   []string{"ethereum", "polygon", "solana"},
		DestChains:     []string{"ethereum", "polygon", "solana"},
	})
	require.NoError(t, err)

	quoteStore := &memoryQuoteStore{quotes: make(map[uuid.UUID]*entities.Quote)}
	engine := quote.NewEngine(chains, prices, fees.NewCalculator(), registry.NewSelector(reg, chains, zap.NewNop()), quoteStore, zap.NewNop())

	msgr := messenger.NewMessenger(entities.ChainEthereum, zap.NewNop())
	msgr.AddSupportedChain(entities.ChainEthereum, "https://relay.test/ethereum")
	msgr.AddSupportedChain(entities.ChainPolygon, "https://relay.test/polygon")
	msgr.AddSupportedChain(entities.ChainSolana, "https://relay.test/solana")
	repo := newMemoryTransferRepo()
	svc := NewService(engine, msgr, repo, zap.NewNop())
	return svc, engine, msgr, quoteStore, repo
}

func TestExecuteSameChainCompletesImmediately(t *testing.T) {
	svc, engine, _, _, _ := testService(t)
	ctx := context.Background()

	q, err := engine.RequestQuote(ctx, &entities.QuoteRequest{
		SourceChain: "ethereum",
		DestChain:   "ethereum",
		Token:       "USDC",
		Amount:      "1000",
		Recipient:   evmRecipient,
	})
	require.NoError(t, err)

	tr, err := svc.Execute(ctx, &entities.ExecuteTransferRequest{
		QuoteID:   q.ID.String(),
		Sender:    evmRecipient,
		Recipient: evmRecipient,
	})
	require.NoError(t, err)

	assert.Equal(t, entities.TransferStatusCompleted, tr.Status)
	assert.Empty(t, tr.MessageID)
	require.NotNil(t, tr.CompletedAt)
}

func TestExecuteCrossChainDispatchesMessage(t *testing.T) {
	svc, engine, msgr, _, _ := testService(t)
	ctx := context.Background()

	q, err := engine.RequestQuote(ctx, &entities.QuoteRequest{
		SourceChain: "ethereum",
		DestChain:   "solana",
		Token:       "USDC",
		Amount:      "1000",
		Recipient:   solanaRecipient,
	})
	require.NoError(t, err)

	tr, err := svc.Execute(ctx, &entities.ExecuteTransferRequest{
		QuoteID:   q.ID.String(),
		Sender:    evmRecipient,
		Recipient: solanaRecipient,
	})
	require.NoError(t, err)

	assert.Equal(t, entities.TransferStatusProcessing, tr.Status)
	require.NotEmpty(t, tr.MessageID)
	assert.Equal(t, entities.MessageStatusSent, msgr.Status(tr.MessageID))
	assert.Equal(t, "wormhole", tr.BridgeName)
}

func TestExecuteExpiredQuote(t *testing.T) {
	svc, engine, _, quoteStore, _ := testService(t)
	ctx := context.Background()

	q, err := engine.RequestQuote(ctx, &entities.QuoteRequest{
		SourceChain: "ethereum",
		DestChain:   "polygon",
		Token:       "USDC",
		Amount:      "1000",
		Recipient:   evmRecipient,
	})
	require.NoError(t, err)

	quoteStore.drop(q.ID)

	_, err = svc.Execute(ctx, &entities.ExecuteTransferRequest{
		QuoteID:   q.ID.String(),
		Sender:    evmRecipient,
		Recipient: evmRecipient,
	})
	assert.Equal(t, domainErrors.CodeQuoteExpired, domainErrors.GetErrorCode(err))
}

func TestExecuteWhilePaused(t *testing.T) {
	svc, engine, msgr, _, _ := testService(t)
	ctx := context.Background()

	q, err := engine.RequestQuote(ctx, &entities.QuoteRequest{
		SourceChain: "ethereum",
		DestChain:   "solana",
		Token:       "USDC",
		Amount:      "1000",
		Recipient:   solanaRecipient,
	})
	require.NoError(t, err)

	msgr.Pause()
	_, err = svc.Execute(ctx, &entities.ExecuteTransferRequest{
		QuoteID:   q.ID.String(),
		Sender:    evmRecipient,
		Recipient: solanaRecipient,
	})
	assert.Equal(t, domainErrors.CodeSystemPaused, domainErrors.GetErrorCode(err))
}

func TestConfirmDeliveryCompletesTransfer(t *testing.T) {
	svc, engine, msgr, _, repo := testService(t)
	ctx := context.Background()

	q, err := engine.RequestQuote(ctx, &entities.QuoteRequest{
		SourceChain: "ethereum",
		DestChain:   "solana",
		Token:       "USDC",
		Amount:      "1000",
		Recipient:   solanaRecipient,
	})
	require.NoError(t, err)

	tr, err := svc.Execute(ctx, &entities.ExecuteTransferRequest{
		QuoteID:   q.ID.String(),
		Sender:    evmRecipient,
		Recipient: solanaRecipient,
	})
	require.NoError(t, err)

	completed, err := svc.ConfirmDelivery(ctx, tr.MessageID, "0xrelayer")
	require.NoError(t, err)
	require.NotNil(t, completed)
	assert.Equal(t, entities.TransferStatusCompleted, completed.Status)
	assert.Equal(t, entities.MessageStatusDelivered, msgr.Status(tr.MessageID))

	stored, err := repo.GetByID(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.TransferStatusCompleted, stored.Status)

	// second confirmation is rejected by the messenger
	_, err = svc.ConfirmDelivery(ctx, tr.MessageID, "0xrelayer")
	assert.Equal(t, domainErrors.CodeMessageAlreadyDelivered, domainErrors.GetErrorCode(err))
}

type failingCreateRepo struct {
	*memoryTransferRepo
}

func (r *failingCreateRepo) Create(context.Context, *entities.TransferTransaction) error {
	return errors.New("insert failed")
}

func TestExecuteFailedInsertLeavesNoMessage(t *testing.T) {
	svc, engine, msgr, _, _ := testService(t)
	svc.repo = &failingCreateRepo{memoryTransferRepo: newMemoryTransferRepo()}
	ctx := context.Background()

	q, err := engine.RequestQuote(ctx, &entities.QuoteRequest{
		SourceChain: "ethereum",
		DestChain:   "solana",
		Token:       "USDC",
		Amount:      "1000",
		Recipient:   solanaRecipient,
	})
	require.NoError(t, err)

	_, err = svc.Execute(ctx, &entities.ExecuteTransferRequest{
		QuoteID:   q.ID.String(),
		Sender:    evmRecipient,
		Recipient: solanaRecipient,
	})
	require.Error(t, err)
	assert.Empty(t, msgr.ListSent(), "nothing may be dispatched when the row never lands")
}

func TestConfirmDeliveryUnknownMessage(t *testing.T) {
	svc, _, _, _, _ := testService(t)

	_, err := svc.ConfirmDelivery(context.Background(), "deadbeef", "0xrelayer")
	assert.Equal(t, domainErrors.CodeMessageNotFound, domainErrors.GetErrorCode(err))
}
