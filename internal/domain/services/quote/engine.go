package quote

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/stableroute/stableroute_service/internal/domain/entities"
	domainErrors "github.com/stableroute/stableroute_service/internal/domain/errors"
	"github.com/stableroute/stableroute_service/internal/domain/services/fees"
	"github.com/stableroute/stableroute_service/internal/domain/services/pricefeed"
	"github.com/stableroute/stableroute_service/internal/domain/services/registry"
	"github.com/stableroute/stableroute_service/pkg/metrics"
)

const (
	sameChainValiditySecs  = 30
	crossChainValiditySecs = 60
)

var (
	confidenceSameChain  = decimal.NewFromFloat(0.99)
	confidenceCrossBase  = decimal.NewFromFloat(0.95)
	confidencePenalty    = decimal.NewFromFloat(0.02)
	confidenceFloor      = decimal.NewFromFloat(0.80)
	largeAmountPenaltyAt = decimal.NewFromInt(50000)

	evmAddressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
)

// Store persists issued quotes for their validity window. A lookup after the
// window must come back empty; that absence is the expiry signal.
type Store interface {
	Save(ctx context.Context, q *entities.Quote, ttl time.Duration) error
	Get(ctx context.Context, id uuid.UUID) (*entities.Quote, error)
}

// Engine turns transfer requests into priced quotes. Same-chain requests take
// a fast path with no bridge or price lookup; cross-chain requests resolve a
// bridge and price both legs.
type Engine struct {
	chains     *entities.ChainSet
	prices     *pricefeed.Aggregator
	calculator *fees.Calculator
	selector   *registry.Selector
	store      Store
	logger     *zap.Logger
}

// NewEngine wires the quote engine
func NewEngine(
	chains *entities.ChainSet,
	prices *pricefeed.Aggregator,
	calculator *fees.Calculator,
	selector *registry.Selector,
	store Store,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		chains:     chains,
		prices:     prices,
		calculator: calculator,
		selector:   selector,
		store:      store,
		logger:     logger,
	}
}

// RequestQuote validates the request and issues a quote
func (e *Engine) RequestQuote(ctx context.Context, req *entities.QuoteRequest) (*entities.Quote, error) {
	src := entities.ChainID(req.SourceChain)
	dst := entities.ChainID(req.DestChain)

	if !e.chains.IsSupported(src) {
		metrics.QuoteErrorsTotal.WithLabelValues(domainErrors.CodeUnsupportedChain).Inc()
		return nil, domainErrors.UnsupportedChainError(req.SourceChain)
	}
	if !e.chains.IsSupported(dst) {
		metrics.QuoteErrorsTotal.WithLabelValues(domainErrors.CodeDestinationNotSupported).Inc()
		return nil, domainErrors.DestinationNotSupportedError(req.SourceChain, req.DestChain)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		metrics.QuoteErrorsTotal.WithLabelValues(domainErrors.CodeInvalidAmount).Inc()
		return nil, domainErrors.InvalidAmountError(req.Amount)
	}

	slippage := decimal.Zero
	if req.MaxSlippage != "" {
		parsed, perr := decimal.NewFromString(req.MaxSlippage)
		if perr != nil || parsed.IsNegative() || parsed.GreaterThan(decimal.NewFromInt(1)) {
			metrics.QuoteErrorsTotal.WithLabelValues(domainErrors.CodeInvalidSlippage).Inc()
			return nil, domainErrors.InvalidSlippageError(req.MaxSlippage)
		}
		slippage = parsed
	}

	if !validRecipient(req.Recipient, e.chains.IsEVM(dst)) {
		metrics.QuoteErrorsTotal.WithLabelValues(domainErrors.CodeInvalidRecipient).Inc()
		return nil, domainErrors.InvalidRecipientError(req.Recipient)
	}

	var q *entities.Quote
	if src == dst {
		q = e.sameChainQuote(src, req.Token, amount, slippage)
		metrics.QuotesIssuedTotal.WithLabelValues("same_chain").Inc()
	} else {
		q, err = e.crossChainQuote(ctx, src, dst, req.Token, amount, slippage)
		if err != nil {
			return nil, err
		}
		metrics.QuotesIssuedTotal.WithLabelValues("cross_chain").Inc()
	}

	ttl := time.Duration(q.ValiditySecs) * time.Second
	if err := e.store.Save(ctx, q, ttl); err != nil {
		return nil, fmt.Errorf("save quote: %w", err)
	}

	e.logger.Info("quote issued",
		zap.String("quote_id", q.ID.String()),
		zap.String("source_chain", string(src)),
		zap.String("dest_chain", string(dst)),
		zap.String("amount_in", q.AmountIn.String()),
		zap.String("amount_out", q.AmountOut.String()))
	return q, nil
}

// GetQuote fetches a previously issued quote. A missing id means the quote
// either never existed or aged out of the store; both read as expired.
func (e *Engine) GetQuote(ctx context.Context, id uuid.UUID) (*entities.Quote, error) {
	q, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get quote: %w", err)
	}
	if q == nil {
		return nil, domainErrors.QuoteExpiredError(id.String())
	}
	if q.Expired(time.Now()) {
		return nil, domainErrors.QuoteExpiredError(id.String())
	}
	return q, nil
}

func (e *Engine) sameChainQuote(chain entities.ChainID, token string, amount, slippage decimal.Decimal) *entities.Quote {
	breakdown := e.calculator.SameChainBreakdown(amount)
	out := e.calculator.AmountOut(amount, breakdown)
	now := time.Now()

	return &entities.Quote{
		ID:                uuid.New(),
		SourceChain:       chain,
		DestChain:         chain,
		Token:             token,
		AmountIn:          amount,
		AmountOut:         out,
		MinimumReceived:   minimumReceived(out, slippage),
		SlippageTolerance: slippage,
		Fees:              breakdown,
		Route:             buildSameChainRoute(chain, token),
		Confidence:        confidenceSameChain,
		ValiditySecs:      sameChainValiditySecs,
		ValidityWindow:    fmt.Sprintf("%d seconds", sameChainValiditySecs),
		CreatedAt:         now,
		ExpiresAt:         now.Add(sameChainValiditySecs * time.Second),
	}
}

func (e *Engine) crossChainQuote(ctx context.Context, src, dst entities.ChainID, token string, amount, slippage decimal.Decimal) (*entities.Quote, error) {
	bridge, err := e.selector.Select(src, dst, token, amount)
	if err != nil {
		metrics.QuoteErrorsTotal.WithLabelValues(domainErrors.GetErrorCode(err)).Inc()
		return nil, err
	}

	srcPrice := e.prices.GetPrice(ctx, src, token)
	dstPrice := e.prices.GetPrice(ctx, dst, token)

	breakdown := e.calculator.CrossChainBreakdown(
		amount,
		e.chains.Get(src), e.chains.Get(dst),
		bridge.FeeMultiplier,
		srcPrice.Price, dstPrice.Price,
	)

	// the tolerated slippage comes off the quoted output alongside the fees
	out := e.calculator.AmountOut(amount, breakdown).Sub(amount.Mul(slippage))
	if out.IsNegative() {
		out = decimal.Zero
	}

	now := time.Now()
	return &entities.Quote{
		ID:                uuid.New(),
		SourceChain:       src,
		DestChain:         dst,
		Token:             token,
		AmountIn:          amount,
		AmountOut:         out,
		MinimumReceived:   minimumReceived(out, slippage),
		SlippageTolerance: slippage,
		Fees:              breakdown,
		Route:             buildCrossChainRoute(src, dst, token, bridge),
		Confidence:        e.crossChainConfidence(src, dst, amount),
		ValiditySecs:      crossChainValiditySecs,
		ValidityWindow:    fmt.Sprintf("%d seconds", crossChainValiditySecs),
		CreatedAt:         now,
		ExpiresAt:         now.Add(crossChainValiditySecs * time.Second),
	}, nil
}

// minimumReceived scales the output down by the tolerance; with no tolerance
// the floor equals the output itself.
func minimumReceived(out, slippage decimal.Decimal) decimal.Decimal {
	return out.Mul(decimal.NewFromInt(1).Sub(slippage))
}

// crossChainConfidence starts from a fixed base and deducts for size and for
// legs leaving the EVM, floored so a quote is never issued below 0.80.
func (e *Engine) crossChainConfidence(src, dst entities.ChainID, amount decimal.Decimal) decimal.Decimal {
	confidence := confidenceCrossBase
	if amount.GreaterThanOrEqual(largeAmountPenaltyAt) {
		confidence = confidence.Sub(confidencePenalty)
	}
	if !e.chains.IsEVM(src) || !e.chains.IsEVM(dst) {
		confidence = confidence.Sub(confidencePenalty)
	}
	if confidence.LessThan(confidenceFloor) {
		return confidenceFloor
	}
	return confidence
}

func validRecipient(recipient string, evm bool) bool {
	if recipient == "" {
		return false
	}
	if evm {
		return evmAddressPattern.MatchString(recipient)
	}
	return len(recipient) >= 32
}
