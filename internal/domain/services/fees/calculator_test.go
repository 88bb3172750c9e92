package fees

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/stableroute/stableroute_service/internal/domain/entities"
)

func chainFixture(id entities.ChainID, risk, gas string) *entities.Chain {
	return &entities.Chain{
		ID:             id,
		EVM:            id != entities.ChainSolana,
		RiskMultiplier: risk,
		GasConstant:    gas,
	}
}

func TestServiceFee(t *testing.T) {
	calc := NewCalculator()

	fee := calc.ServiceFee(decimal.NewFromInt(10000))
	assert.True(t, fee.Equal(decimal.NewFromInt(1)), "got %s", fee)

	fee = calc.ServiceFee(decimal.Zero)
	assert.True(t, fee.IsZero())
}

func TestBridgeFee(t *testing.T) {
	calc := NewCalculator()
	eth := chainFixture(entities.ChainEthereum, "1.0", "5.0")
	sol := chainFixture(entities.ChainSolana, "1.2", "0.01")

	// base 2 + 10000*0.0005 = 7, avg risk (1.0+1.2)/2 = 1.1 -> 7.7
	fee := calc.BridgeFee(decimal.NewFromInt(10000), eth, sol, decimal.NewFromInt(1))
	assert.True(t, fee.Equal(decimal.NewFromFloat(7.7)), "got %s", fee)

	// bridge multiplier scales the whole fee
	fee = calc.BridgeFee(decimal.NewFromInt(10000), eth, sol, decimal.NewFromFloat(2))
	assert.True(t, fee.Equal(decimal.NewFromFloat(15.4)), "got %s", fee)
}

func TestBridgeFeeDefaultsMissingRisk(t *testing.T) {
	calc := NewCalculator()
	a := chainFixture(entities.ChainPolygon, "", "0.1")
	b := chainFixture(entities.ChainBase, "not-a-number", "0.05")

	// both multipliers default to 1: base 2 + 1000*0.0005 = 2.5
	fee := calc.BridgeFee(decimal.NewFromInt(1000), a, b, decimal.NewFromInt(1))
	assert.True(t, fee.Equal(decimal.NewFromFloat(2.5)), "got %s", fee)
}

func TestGasFee(t *testing.T) {
	calc := NewCalculator()
	eth := chainFixture(entities.ChainEthereum, "1.0", "5.0")
	sol := chainFixture(entities.ChainSolana, "1.2", "0.01")

	fee := calc.GasFee(eth, sol)
	assert.True(t, fee.Equal(decimal.NewFromFloat(5.01)), "got %s", fee)

	fee = calc.GasFee(eth)
	assert.True(t, fee.Equal(decimal.NewFromFloat(5.0)), "got %s", fee)
}

func TestPriceImpact(t *testing.T) {
	calc := NewCalculator()
	amount := decimal.NewFromInt(10000)

	t.Run("proportional to spread", func(t *testing.T) {
		impact := calc.PriceImpact(amount, decimal.NewFromFloat(1.0), decimal.NewFromFloat(0.99))
		assert.True(t, impact.Equal(decimal.NewFromInt(100)), "got %s", impact)
	})

	t.Run("symmetric in direction", func(t *testing.T) {
		up := calc.PriceImpact(amount, decimal.NewFromFloat(0.99), decimal.NewFromFloat(1.0))
		down := calc.PriceImpact(amount, decimal.NewFromFloat(1.0), decimal.NewFromFloat(0.99))
		assert.True(t, up.IsPositive())
		assert.True(t, down.IsPositive())
	})

	t.Run("clamped at max rate", func(t *testing.T) {
		// 50% spread clamps to 5%
		impact := calc.PriceImpact(amount, decimal.NewFromFloat(1.0), decimal.NewFromFloat(0.5))
		assert.True(t, impact.Equal(decimal.NewFromInt(500)), "got %s", impact)
	})

	t.Run("zero source price yields zero", func(t *testing.T) {
		impact := calc.PriceImpact(amount, decimal.Zero, decimal.NewFromFloat(1.0))
		assert.True(t, impact.IsZero())
	})

	t.Run("equal prices yield zero", func(t *testing.T) {
		impact := calc.PriceImpact(amount, decimal.NewFromFloat(1.0), decimal.NewFromFloat(1.0))
		assert.True(t, impact.IsZero())
	})
}

func TestSameChainBreakdown(t *testing.T) {
	calc := NewCalculator()

	breakdown := calc.SameChainBreakdown(decimal.NewFromInt(10000))

	assert.True(t, breakdown.ServiceFee.Equal(decimal.NewFromInt(1)))
	assert.True(t, breakdown.BridgeFee.IsZero())
	assert.True(t, breakdown.GasFee.IsZero())
	assert.True(t, breakdown.PriceImpact.IsZero())
	assert.True(t, breakdown.Total.Equal(breakdown.ServiceFee), "got %s", breakdown.Total)

	// the recipient is charged nothing but the service fee
	out := calc.AmountOut(decimal.NewFromInt(1000), calc.SameChainBreakdown(decimal.NewFromInt(1000)))
	assert.True(t, out.Equal(decimal.NewFromFloat(999.9)), "got %s", out)
}

func TestCrossChainBreakdownTotalsComponents(t *testing.T) {
	calc := NewCalculator()
	eth := chainFixture(entities.ChainEthereum, "1.0", "5.0")
	sol := chainFixture(entities.ChainSolana, "1.2", "0.01")

	breakdown := calc.CrossChainBreakdown(
		decimal.NewFromInt(10000),
		eth, sol,
		decimal.NewFromInt(1),
		decimal.NewFromFloat(1.0), decimal.NewFromFloat(0.999),
	)

	sum := breakdown.ServiceFee.
		Add(breakdown.BridgeFee).
		Add(breakdown.GasFee).
		Add(breakdown.PriceImpact)
	assert.True(t, breakdown.Total.Equal(sum))
	assert.True(t, breakdown.BridgeFee.IsPositive())
	assert.True(t, breakdown.PriceImpact.IsPositive())
}

func TestAmountOut(t *testing.T) {
	calc := NewCalculator()

	t.Run("deducts total fees", func(t *testing.T) {
		fees := entities.FeeBreakdown{Total: decimal.NewFromInt(6)}
		out := calc.AmountOut(decimal.NewFromInt(10000), fees)
		assert.True(t, out.Equal(decimal.NewFromInt(9994)))
	})

	t.Run("floors at zero", func(t *testing.T) {
		fees := entities.FeeBreakdown{Total: decimal.NewFromInt(10)}
		out := calc.AmountOut(decimal.NewFromInt(5), fees)
		assert.True(t, out.IsZero())
	})
}

func TestDeterminism(t *testing.T) {
	calc := NewCalculator()
	eth := chainFixture(entities.ChainEthereum, "1.0", "5.0")
	sol := chainFixture(entities.ChainSolana, "1.2", "0.01")

	first := calc.CrossChainBreakdown(
		decimal.NewFromInt(12345),
		eth, sol,
		decimal.NewFromFloat(1.1),
		decimal.NewFromFloat(0.9998), decimal.NewFromFloat(1.0001),
	)
	second := calc.CrossChainBreakdown(
		decimal.NewFromInt(12345),
		eth, sol,
		decimal.NewFromFloat(1.1),
		decimal.NewFromFloat(0.9998), decimal.NewFromFloat(1.0001),
	)

	assert.True(t, first.Total.Equal(second.Total))
	assert.True(t, first.BridgeFee.Equal(second.BridgeFee))
}
