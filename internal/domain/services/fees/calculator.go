package fees

import (
	"github.com/shopspring/decimal"

	"github.com/stableroute/stableroute_service/internal/domain/entities"
)

// Default rates. All values are in stablecoin units or dimensionless rates.
var (
	DefaultServiceFeeRate = decimal.NewFromFloat(0.0001) // 1 bps on every transfer
	DefaultBridgeBaseFee  = decimal.NewFromFloat(2.0)    // flat component per bridge leg
	DefaultBridgeFeeRate  = decimal.NewFromFloat(0.0005) // 5 bps variable component
	DefaultMaxPriceImpact = decimal.NewFromFloat(0.05)   // impact rate clamp
)

// Calculator computes the fee breakdown for a transfer. All methods are pure:
// same inputs always produce the same output, with no clock or I/O involved.
type Calculator struct {
	serviceFeeRate decimal.Decimal
	bridgeBaseFee  decimal.Decimal
	bridgeFeeRate  decimal.Decimal
	maxPriceImpact decimal.Decimal
}

// NewCalculator builds a calculator with the default rates
func NewCalculator() *Calculator {
	return &Calculator{
		serviceFeeRate: DefaultServiceFeeRate,
		bridgeBaseFee:  DefaultBridgeBaseFee,
		bridgeFeeRate:  DefaultBridgeFeeRate,
		maxPriceImpact: DefaultMaxPriceImpact,
	}
}

// NewCalculatorWithRates builds a calculator with explicit rates
func NewCalculatorWithRates(serviceFeeRate, bridgeBaseFee, bridgeFeeRate, maxPriceImpact decimal.Decimal) *Calculator {
	return &Calculator{
		serviceFeeRate: serviceFeeRate,
		bridgeBaseFee:  bridgeBaseFee,
		bridgeFeeRate:  bridgeFeeRate,
		maxPriceImpact: maxPriceImpact,
	}
}

// ServiceFee is the flat-rate cut taken on every transfer
func (c *Calculator) ServiceFee(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(c.serviceFeeRate)
}

// BridgeFee combines a flat base with a rate component, scaled by the average
// risk multiplier of both legs and the bridge's own fee multiplier.
func (c *Calculator) BridgeFee(amount decimal.Decimal, source, dest *entities.Chain, bridgeMultiplier decimal.Decimal) decimal.Decimal {
	base := c.bridgeBaseFee.Add(amount.Mul(c.bridgeFeeRate))

	srcRisk := riskMultiplier(source)
	dstRisk := riskMultiplier(dest)
	avgRisk := srcRisk.Add(dstRisk).Div(decimal.NewFromInt(2))

	fee := base.Mul(avgRisk)
	if bridgeMultiplier.IsPositive() {
		fee = fee.Mul(bridgeMultiplier)
	}
	return fee
}

// GasFee sums the flat gas constants of every chain touched by the route
func (c *Calculator) GasFee(chains ...*entities.Chain) decimal.Decimal {
	total := decimal.Zero
	for _, chain := range chains {
		total = total.Add(gasConstant(chain))
	}
	return total
}

// PriceImpact charges for the depeg spread between both legs. The spread rate
// is clamped to [0, maxPriceImpact] before it is applied to the amount.
func (c *Calculator) PriceImpact(amount, sourcePrice, destPrice decimal.Decimal) decimal.Decimal {
	if sourcePrice.IsZero() {
		return decimal.Zero
	}

	rate := sourcePrice.Sub(destPrice).Div(sourcePrice).Abs()
	if rate.GreaterThan(c.maxPriceImpact) {
		rate = c.maxPriceImpact
	}
	return amount.Mul(rate)
}

// SameChainBreakdown is the fast-path fee set: the service fee is the only
// deduction. No bridge leg, no price impact, and gas is not passed on, so
// the output is exactly amount minus service fee.
func (c *Calculator) SameChainBreakdown(amount decimal.Decimal) entities.FeeBreakdown {
	serviceFee := c.ServiceFee(amount)
	return entities.FeeBreakdown{
		ServiceFee:  serviceFee,
		BridgeFee:   decimal.Zero,
		GasFee:      decimal.Zero,
		PriceImpact: decimal.Zero,
		Total:       serviceFee,
	}
}

// CrossChainBreakdown itemizes every deduction of a bridged transfer
func (c *Calculator) CrossChainBreakdown(
	amount decimal.Decimal,
	source, dest *entities.Chain,
	bridgeMultiplier decimal.Decimal,
	sourcePrice, destPrice decimal.Decimal,
) entities.FeeBreakdown {
	serviceFee := c.ServiceFee(amount)
	bridgeFee := c.BridgeFee(amount, source, dest, bridgeMultiplier)
	gasFee := c.GasFee(source, dest)
	priceImpact := c.PriceImpact(amount, sourcePrice, destPrice)

	return entities.FeeBreakdown{
		ServiceFee:  serviceFee,
		BridgeFee:   bridgeFee,
		GasFee:      gasFee,
		PriceImpact: priceImpact,
		Total:       serviceFee.Add(bridgeFee).Add(gasFee).Add(priceImpact),
	}
}

// AmountOut is what the recipient receives after all fees. Never negative:
// fees exceeding the amount floor the output at zero.
func (c *Calculator) AmountOut(amount decimal.Decimal, fees entities.FeeBreakdown) decimal.Decimal {
	out := amount.Sub(fees.Total)
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}

func riskMultiplier(chain *entities.Chain) decimal.Decimal {
	if chain == nil || chain.RiskMultiplier == "" {
		return decimal.NewFromInt(1)
	}
	m, err := decimal.NewFromString(chain.RiskMultiplier)
	if err != nil || !m.IsPositive() {
		return decimal.NewFromInt(1)
	}
	return m
}

func gasConstant(chain *entities.Chain) decimal.Decimal {
	if chain == nil || chain.GasConstant == "" {
		return decimal.Zero
	}
	g, err := decimal.NewFromString(chain.GasConstant)
	if err != nil || g.IsNegative() {
		return decimal.Zero
	}
	return g
}
