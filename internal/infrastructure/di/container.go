package di

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/stableroute/stableroute_service/internal/adapters/oracle"
	"github.com/stableroute/stableroute_service/internal/domain/entities"
	"github.com/stableroute/stableroute_service/internal/domain/services/fees"
	"github.com/stableroute/stableroute_service/internal/domain/services/messenger"
	"github.com/stableroute/stableroute_service/internal/domain/services/pricefeed"
	"github.com/stableroute/stableroute_service/internal/domain/services/quote"
	"github.com/stableroute/stableroute_service/internal/domain/services/registry"
	"github.com/stableroute/stableroute_service/internal/domain/services/transfer"
	"github.com/stableroute/stableroute_service/internal/infrastructure/cache"
	"github.com/stableroute/stableroute_service/internal/infrastructure/config"
	"github.com/stableroute/stableroute_service/internal/infrastructure/repositories"
	"github.com/stableroute/stableroute_service/pkg/logger"
)

// Container wires every service the API and workers depend on. Everything is
// constructed once at startup and injected; no package-level singletons.
type Container struct {
	Config *config.Config
	DB     *sql.DB
	Logger *logger.Logger
	ZapLog *zap.Logger

	// Infrastructure
	RedisClient  cache.RedisClient
	QuoteStore   *cache.QuoteStore
	TransferRepo *repositories.TransferRepository
	OracleClient *oracle.Client

	// Domain
	Chains          *entities.ChainSet
	PriceAggregator *pricefeed.Aggregator
	FeeCalculator   *fees.Calculator
	BridgeRegistry  *registry.Registry
	BridgeSelector  *registry.Selector
	Messenger       *messenger.Messenger
	QuoteEngine     *quote.Engine
	TransferService *transfer.Service
}

// NewContainer builds the full dependency graph
func NewContainer(cfg *config.Config, db *sql.DB, log *logger.Logger) (*Container, error) {
	zapLog := log.Zap()

	redisClient, err := cache.NewRedisClient(&cfg.Redis, zapLog)
	if err != nil {
		return nil, fmt.Errorf("init redis: %w", err)
	}

	chains, err := buildChainSet(cfg.Chains)
	if err != nil {
		return nil, err
	}

	oracleClient := oracle.NewClient(oracle.Config{
		BaseURL:     cfg.Oracle.BaseURL,
		Environment: cfg.Oracle.Environment,
		Timeout:     time.Duration(cfg.Oracle.Timeout) * time.Second,
	}, zapLog)

	aggregator := pricefeed.NewAggregator(
		buildPriceSources(cfg.Chains, oracleClient),
		time.Duration(cfg.PriceFeed.CacheTTLSeconds)*time.Second,
		zapLog,
	)

	calculator, err := buildFeeCalculator(cfg.Fees)
	if err != nil {
		return nil, err
	}

	bridgeRegistry := registry.NewRegistry(zapLog)
	if err := seedBridges(bridgeRegistry, cfg.Bridges); err != nil {
		return nil, err
	}
	selector := registry.NewSelector(bridgeRegistry, chains, zapLog)

	msgr := messenger.NewMessenger(entities.ChainID(cfg.Messenger.SourceChain), zapLog)
	for id, cc := range cfg.Chains {
		msgr.AddSupportedChain(entities.ChainID(id), cc.RelayEndpoint)
	}

	quoteStore := cache.NewQuoteStore(redisClient, zapLog)
	quoteEngine := quote.NewEngine(chains, aggregator, calculator, selector, quoteStore, zapLog)

	sqlxDB := sqlx.NewDb(db, "postgres")
	transferRepo := repositories.NewTransferRepository(sqlxDB)
	transferService := transfer.NewService(quoteEngine, msgr, transferRepo, zapLog)

	return &Container{
		Config:          cfg,
		DB:              db,
		Logger:          log,
		ZapLog:          zapLog,
		RedisClient:     redisClient,
		QuoteStore:      quoteStore,
		TransferRepo:    transferRepo,
		OracleClient:    oracleClient,
		Chains:          chains,
		PriceAggregator: aggregator,
		FeeCalculator:   calculator,
		BridgeRegistry:  bridgeRegistry,
		BridgeSelector:  selector,
		Messenger:       msgr,
		QuoteEngine:     quoteEngine,
		TransferService: transferService,
	}, nil
}

// Close releases infrastructure handles held by the container
func (c *Container) Close() error {
	if c.RedisClient != nil {
		return c.RedisClient.Close()
	}
	return nil
}

func buildChainSet(cfgChains map[string]config.ChainConfig) (*entities.ChainSet, error) {
	if len(cfgChains) == 0 {
		return nil, fmt.Errorf("no chains configured")
	}

	chains := make([]*entities.Chain, 0, len(cfgChains))
	for id, cc := range cfgChains {
		chains = append(chains, &entities.Chain{
			ID:             entities.ChainID(id),
			Name:           cc.Name,
			NetworkID:      cc.NetworkID,
			EVM:            cc.EVM,
			RiskMultiplier: cc.RiskMultiplier,
			GasConstant:    cc.GasConstant,
			PriceSource:    cc.PriceSource,
		})
	}
	return entities.NewChainSet(chains), nil
}

func buildPriceSources(cfgChains map[string]config.ChainConfig, client *oracle.Client) []pricefeed.Source {
	// one oracle-backed source per distinct source family, ordered so the
	// most common family is consulted first
	seen := make(map[string]bool)
	var sources []pricefeed.Source
	for _, cc := range cfgChains {
		name := cc.PriceSource
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		sources = append(sources, pricefeed.NewOracleSource(client, name))
	}
	if len(sources) == 0 {
		sources = append(sources, pricefeed.NewOracleSource(client, "oracle"))
	}
	return sources
}

func buildFeeCalculator(cfg config.FeesConfig) (*fees.Calculator, error) {
	parse := func(field, value string, fallback decimal.Decimal) (decimal.Decimal, error) {
		if value == "" {
			return fallback, nil
		}
		d, err := decimal.NewFromString(value)
		if err != nil {
			return decimal.Zero, fmt.Errorf("fees.%s: %w", field, err)
		}
		return d, nil
	}

	serviceFeeRate, err := parse("service_fee_rate", cfg.ServiceFeeRate, fees.DefaultServiceFeeRate)
	if err != nil {
		return nil, err
	}
	bridgeBaseFee, err := parse("bridge_base_fee", cfg.BridgeBaseFee, fees.DefaultBridgeBaseFee)
	if err != nil {
		return nil, err
	}
	bridgeFeeRate, err := parse("bridge_fee_rate", cfg.BridgeFeeRate, fees.DefaultBridgeFeeRate)
	if err != nil {
		return nil, err
	}
	maxPriceImpact, err := parse("max_price_impact", cfg.MaxPriceImpact, fees.DefaultMaxPriceImpact)
	if err != nil {
		return nil, err
	}

	return fees.NewCalculatorWithRates(serviceFeeRate, bridgeBaseFee, bridgeFeeRate, maxPriceImpact), nil
}

func seedBridges(reg *registry.Registry, seeds []config.BridgeSeed) error {
	for _, seed := range seeds {
		_, err := reg.Register(&entities.RegisterBridgeRequest{
			Name:           seed.Name,
			Protocol:       seed.Protocol,
			Kind:           seed.Kind,
			AdapterAddress: seed.AdapterAddress,
			Priority:       seed.Priority,
			FeeMultiplier:  seed.FeeMultiplier,
			SourceChains:   seed.SourceChains,
			DestChains:     seed.DestChains,
		})
		if err != nil {
			return fmt.Errorf("seed bridge %q: %w", seed.Name, err)
		}
	}
	return nil
}
