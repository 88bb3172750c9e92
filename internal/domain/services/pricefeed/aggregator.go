package pricefeed

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/stableroute/stableroute_service/internal/domain/entities"
	"github.com/stableroute/stableroute_service/pkg/metrics"
)

const (
	// DefaultCacheTTL bounds how stale a served price may be
	DefaultCacheTTL = 15 * time.Second

	// FallbackSource names the peg assumption used when every source fails
	FallbackSource = "fallback"
)

var (
	fallbackPrice      = decimal.NewFromInt(1)
	fallbackConfidence = decimal.NewFromFloat(0.8)
)

// Aggregator serves cached stablecoin prices, consulting its sources in
// priority order. When every source fails it falls back to the 1.0 peg with
// reduced confidence rather than erroring, so quoting stays available.
type Aggregator struct {
	sources  []Source
	cacheTTL time.Duration
	logger   *zap.Logger

	mu    sync.RWMutex
	cache map[entities.ChainID]*cachedPrice
}

type cachedPrice struct {
	quote     *entities.PriceQuote
	fetchedAt time.Time
}

// NewAggregator builds an aggregator over the given sources. Order matters:
// earlier sources are preferred.
func NewAggregator(sources []Source, cacheTTL time.Duration, logger *zap.Logger) *Aggregator {
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	return &Aggregator{
		sources:  sources,
		cacheTTL: cacheTTL,
		logger:   logger,
		cache:    make(map[entities.ChainID]*cachedPrice),
	}
}

// GetPrice returns the stablecoin price for a chain, served from cache when
// fresh. Never returns an error: exhausted sources yield the peg fallback.
func (a *Aggregator) GetPrice(ctx context.Context, chain entities.ChainID, symbol string) *entities.PriceQuote {
	a.mu.RLock()
	cached, ok := a.cache[chain]
	a.mu.RUnlock()
	if ok && time.Since(cached.fetchedAt) < a.cacheTTL {
		metrics.PriceLookupsTotal.WithLabelValues(string(chain), "cache_hit").Inc()
		return cached.quote
	}

	quote := a.fetchFromSources(ctx, chain, symbol)

	a.mu.Lock()
	a.cache[chain] = &cachedPrice{quote: quote, fetchedAt: time.Now()}
	a.mu.Unlock()

	return quote
}

// GetPrices fans out over all requested chains concurrently
func (a *Aggregator) GetPrices(ctx context.Context, chains []entities.ChainID, symbol string) map[entities.ChainID]*entities.PriceQuote {
	result := make(map[entities.ChainID]*entities.PriceQuote, len(chains))

	var wg sync.WaitGroup
	var resultMu sync.Mutex
	for _, chain := range chains {
		wg.Add(1)
		go func(c entities.ChainID) {
			defer wg.Done()
			quote := a.GetPrice(ctx, c, symbol)
			resultMu.Lock()
			result[c] = quote
			resultMu.Unlock()
		}(chain)
	}
	wg.Wait()

	return result
}

// Refresh forces a fetch for every chain, bypassing the cache. Used by the
// background refresh worker to keep the cache warm.
func (a *Aggregator) Refresh(ctx context.Context, chains []entities.ChainID, symbol string) {
	for _, chain := range chains {
		quote := a.fetchFromSources(ctx, chain, symbol)
		a.mu.Lock()
		a.cache[chain] = &cachedPrice{quote: quote, fetchedAt: time.Now()}
		a.mu.Unlock()
	}
}

func (a *Aggregator) fetchFromSources(ctx context.Context, chain entities.ChainID, symbol string) *entities.PriceQuote {
	for _, src := range a.sources {
		quote, err := src.FetchPrice(ctx, chain, symbol)
		if err != nil {
			a.logger.Warn("price source failed",
				zap.String("source", src.Name()),
				zap.String("chain", string(chain)),
				zap.Error(err))
			continue
		}
		metrics.PriceLookupsTotal.WithLabelValues(string(chain), "source_"+src.Name()).Inc()
		return quote
	}

	metrics.PriceLookupsTotal.WithLabelValues(string(chain), FallbackSource).Inc()
	a.logger.Warn("all price sources failed, assuming peg",
		zap.String("chain", string(chain)),
		zap.String("symbol", symbol))

	return &entities.PriceQuote{
		Chain:      chain,
		Symbol:     symbol,
		Price:      fallbackPrice,
		Confidence: fallbackConfidence,
		Source:     FallbackSource,
		FetchedAt:  time.Now(),
	}
}
