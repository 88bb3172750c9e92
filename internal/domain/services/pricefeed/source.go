package pricefeed

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stableroute/stableroute_service/internal/adapters/oracle"
	"github.com/stableroute/stableroute_service/internal/domain/entities"
)

// Source fetches a stablecoin price for one chain. Implementations are
// injected into the aggregator so tests can substitute deterministic feeds.
type Source interface {
	Name() string
	FetchPrice(ctx context.Context, chain entities.ChainID, symbol string) (*entities.PriceQuote, error)
}

// OracleSource adapts the external oracle client into a price source
type OracleSource struct {
	client *oracle.Client
	name   string
}

// NewOracleSource wraps an oracle client under the given source name
func NewOracleSource(client *oracle.Client, name string) *OracleSource {
	return &OracleSource{client: client, name: name}
}

func (s *OracleSource) Name() string {
	return s.name
}

func (s *OracleSource) FetchPrice(ctx context.Context, chain entities.ChainID, symbol string) (*entities.PriceQuote, error) {
	resp, err := s.client.GetPrice(ctx, string(chain), symbol)
	if err != nil {
		return nil, err
	}

	price, err := decimal.NewFromString(resp.Price)
	if err != nil {
		return nil, fmt.Errorf("parse price %q: %w", resp.Price, err)
	}

	return &entities.PriceQuote{
		Chain:      chain,
		Symbol:     symbol,
		Price:      price,
		Confidence: decimal.NewFromFloat(resp.Confidence),
		Source:     resp.Source,
		FetchedAt:  time.Now(),
	}, nil
}

// StaticSource serves fixed prices. Used for local development and tests.
type StaticSource struct {
	name   string
	prices map[entities.ChainID]decimal.Decimal
}

// NewStaticSource builds a source answering from a fixed price table
func NewStaticSource(name string, prices map[entities.ChainID]decimal.Decimal) *StaticSource {
	return &StaticSource{name: name, prices: prices}
}

func (s *StaticSource) Name() string {
	return s.name
}

func (s *StaticSource) FetchPrice(_ context.Context, chain entities.ChainID, symbol string) (*entities.PriceQuote, error) {
	price, ok := s.prices[chain]
	if !ok {
		return nil, oracle.ErrPriceUnavailable
	}
	return &entities.PriceQuote{
		Chain:      chain,
		Symbol:     symbol,
		Price:      price,
		Confidence: decimal.NewFromFloat(0.95),
		Source:     s.name,
		FetchedAt:  time.Now(),
	}, nil
}
