package pricefeed

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stableroute/stableroute_service/internal/domain/entities"
)

type countingSource struct {
	name  string
	price decimal.Decimal
	err   error
	calls int64
}

func (s *countingSource) Name() string { return s.name }

func (s *countingSource) FetchPrice(_ context.Context, chain entities.ChainID, symbol string) (*entities.PriceQuote, error) {
	atomic.AddInt64(&s.calls, 1)
	if s.err != nil {
		return nil, s.err
	}
	return &entities.PriceQuote{
		Chain:      chain,
		Symbol:     symbol,
		Price:      s.price,
		Confidence: decimal.NewFromFloat(0.99),
		Source:     s.name,
		FetchedAt:  time.Now(),
	}, nil
}

func TestGetPriceUsesFirstHealthySource(t *testing.T) {
	broken := &countingSource{name: "chainlink", err: errors.New("feed down")}
	healthy := &countingSource{name: "pyth", price: decimal.NewFromFloat(0.9997)}

	agg := NewAggregator([]Source{broken, healthy}, DefaultCacheTTL, zap.NewNop())
	quote := agg.GetPrice(context.Background(), entities.ChainEthereum, "USDC")

	require.NotNil(t, quote)
	assert.Equal(t, "pyth", quote.Source)
	assert.True(t, quote.Price.Equal(decimal.NewFromFloat(0.9997)))
	assert.EqualValues(t, 1, atomic.LoadInt64(&broken.calls))
}

func TestGetPriceFallsBackToPeg(t *testing.T) {
	broken := &countingSource{name: "chainlink", err: errors.New("feed down")}

	agg := NewAggregator([]Source{broken}, DefaultCacheTTL, zap.NewNop())
	quote := agg.GetPrice(context.Background(), entities.ChainSolana, "USDC")

	require.NotNil(t, quote)
	assert.Equal(t, FallbackSource, quote.Source)
	assert.True(t, quote.Price.Equal(decimal.NewFromInt(1)))
	assert.True(t, quote.Confidence.Equal(decimal.NewFromFloat(0.8)))
}

func TestGetPriceServesFromCache(t *testing.T) {
	src := &countingSource{name: "chainlink", price: decimal.NewFromFloat(1.0001)}

	agg := NewAggregator([]Source{src}, DefaultCacheTTL, zap.NewNop())
	ctx := context.Background()

	first := agg.GetPrice(ctx, entities.ChainPolygon, "USDC")
	second := agg.GetPrice(ctx, entities.ChainPolygon, "USDC")

	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, atomic.LoadInt64(&src.calls))
}

func TestGetPriceRefetchesAfterTTL(t *testing.T) {
	src := &countingSource{name: "chainlink", price: decimal.NewFromFloat(1.0001)}

	agg := NewAggregator([]Source{src}, 10*time.Millisecond, zap.NewNop())
	ctx := context.Background()

	agg.GetPrice(ctx, entities.ChainPolygon, "USDC")
	time.Sleep(20 * time.Millisecond)
	agg.GetPrice(ctx, entities.ChainPolygon, "USDC")

	assert.EqualValues(t, 2, atomic.LoadInt64(&src.calls))
}

func TestGetPricesFansOut(t *testing.T) {
	src := &countingSource{name: "chainlink", price: decimal.NewFromFloat(0.9999)}
	chains := []entities.ChainID{
		entities.ChainEthereum,
		entities.ChainPolygon,
		entities.ChainArbitrum,
		entities.ChainSolana,
	}

	agg := NewAggregator([]Source{src}, DefaultCacheTTL, zap.NewNop())
	result := agg.GetPrices(context.Background(), chains, "USDC")

	require.Len(t, result, len(chains))
	for _, chain := range chains {
		require.NotNil(t, result[chain], "missing price for %s", chain)
		assert.Equal(t, chain, result[chain].Chain)
	}
	assert.EqualValues(t, len(chains), atomic.LoadInt64(&src.calls))
}

func TestRefreshBypassesCache(t *testing.T) {
	src := &countingSource{name: "chainlink", price: decimal.NewFromFloat(1.0)}
	agg := NewAggregator([]Source{src}, DefaultCacheTTL, zap.NewNop())
	ctx := context.Background()

	agg.GetPrice(ctx, entities.ChainBase, "USDC")
	agg.Refresh(ctx, []entities.ChainID{entities.ChainBase}, "USDC")

	assert.EqualValues(t, 2, atomic.LoadInt64(&src.calls))
}

func TestStaticSource(t *testing.T) {
	src := NewStaticSource("dev", map[entities.ChainID]decimal.Decimal{
		entities.ChainEthereum: decimal.NewFromFloat(0.9995),
	})

	quote, err := src.FetchPrice(context.Background(), entities.ChainEthereum, "USDC")
	require.NoError(t, err)
	assert.True(t, quote.Price.Equal(decimal.NewFromFloat(0.9995)))

	_, err = src.FetchPrice(context.Background(), entities.ChainSolana, "USDC")
	assert.Error(t, err)
}
