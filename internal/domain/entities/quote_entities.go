package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceQuote is one observed stablecoin price for a chain. Confidence reflects
// how the price was obtained; a fallback peg carries the lowest confidence.
type PriceQuote struct {
	Chain      ChainID         `json:"chain"`
	Symbol     string          `json:"symbol"`
	Price      decimal.Decimal `json:"price"`
	Confidence decimal.Decimal `json:"confidence"`
	Source     string          `json:"source"`
	FetchedAt  time.Time       `json:"fetched_at"`
}

// RouteStep is a single hop of a transfer route
type RouteStep struct {
	Action      string  `json:"action"` // "transfer", "bridge", "deliver"
	Chain       ChainID `json:"chain"`
	Protocol    string  `json:"protocol,omitempty"`
	Description string  `json:"description"`
}

// Route is the ordered hop list for a quote. Same-chain quotes carry a single
// step; cross-chain quotes carry the bridge and delivery legs.
type Route struct {
	SourceChain ChainID     `json:"source_chain"`
	DestChain   ChainID     `json:"dest_chain"`
	Steps       []RouteStep `json:"steps"`
	BridgeID    uuid.UUID   `json:"bridge_id,omitempty"`
	Bridge      string      `json:"bridge,omitempty"`
}

// FeeBreakdown itemizes everything deducted from the transfer amount
type FeeBreakdown struct {
	ServiceFee  decimal.Decimal `json:"service_fee"`
	BridgeFee   decimal.Decimal `json:"bridge_fee"`
	GasFee      decimal.Decimal `json:"gas_fee"`
	PriceImpact decimal.Decimal `json:"price_impact"`
	Total       decimal.Decimal `json:"total"`
}

// Quote is a priced transfer offer. It is immutable once issued and only
// honored until ExpiresAt; execution against an expired quote is rejected.
// MinimumReceived is always AmountOut scaled down by the slippage tolerance.
type Quote struct {
	ID                uuid.UUID       `json:"id"`
	SourceChain       ChainID         `json:"source_chain"`
	DestChain         ChainID         `json:"dest_chain"`
	Token             string          `json:"token"`
	AmountIn          decimal.Decimal `json:"amount_in"`
	AmountOut         decimal.Decimal `json:"amount_out"`
	MinimumReceived   decimal.Decimal `json:"minimum_received"`
	SlippageTolerance decimal.Decimal `json:"slippage"`
	Fees              FeeBreakdown    `json:"fees"`
	Route             Route           `json:"route"`
	Confidence        decimal.Decimal `json:"confidence"`
	ValiditySecs      int             `json:"validity_secs"`
	ValidityWindow    string          `json:"validity_window"`
	CreatedAt         time.Time       `json:"created_at"`
	ExpiresAt         time.Time       `json:"expires_at"`
}

// Expired reports whether the quote is past its validity window
func (q *Quote) Expired(now time.Time) bool {
	return now.After(q.ExpiresAt)
}

// SameChain reports whether the quote needs no bridge leg
func (q *Quote) SameChain() bool {
	return q.SourceChain == q.DestChain
}

// QuoteRequest is the inbound quote payload
type QuoteRequest struct {
	SourceChain string `json:"source_chain" binding:"required"`
	DestChain   string `json:"dest_chain" binding:"required"`
	Token       string `json:"token" binding:"required"`
	Amount      string `json:"amount" binding:"required"`
	Recipient   string `json:"recipient" binding:"required"`
	MaxSlippage string `json:"max_slippage,omitempty"`
}

// QuoteResponse wraps an issued quote for the API surface
type QuoteResponse struct {
	Quote *Quote `json:"quote"`
}
