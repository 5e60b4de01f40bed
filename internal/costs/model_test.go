package costs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuyCost(t *testing.T) {
	m := Model{CommissionRate: 0.00025, SlippageRate: 0.001}

	commission, slippage, total := m.BuyCost(100000)
	assert.InDelta(t, 25.0, commission, 1e-9)
	assert.InDelta(t, 100.0, slippage, 1e-9)
	assert.InDelta(t, commission+slippage, total, 1e-9)
}

func TestSellCost_IncludesStampTax(t *testing.T) {
	m := Model{CommissionRate: 0.00025, SlippageRate: 0.001, StampTaxRate: 0.001}

	commission, slippageAndTax, total := m.SellCost(100000)
	assert.InDelta(t, 25.0, commission, 1e-9)
	assert.InDelta(t, 200.0, slippageAndTax, 1e-9)
	assert.InDelta(t, commission+slippageAndTax, total, 1e-9)
}

func TestCosts_BoundedByAmount(t *testing.T) {
	m := Model{CommissionRate: 0.01, SlippageRate: 0.02, StampTaxRate: 0.005}

	for _, amount := range []float64{0.01, 1, 1234.56, 1e9} {
		_, _, buyTotal := m.BuyCost(amount)
		_, _, sellTotal := m.SellCost(amount)
		assert.Less(t, buyTotal, amount, "buy cost should stay below the notional for rates < 1")
		assert.Less(t, sellTotal, amount, "sell cost should stay below the notional for rates < 1")
	}
}

func TestZeroRates(t *testing.T) {
	var m Model
	_, _, buyTotal := m.BuyCost(50000)
	_, _, sellTotal := m.SellCost(50000)
	assert.Zero(t, buyTotal)
	assert.Zero(t, sellTotal)
}

func TestValidate(t *testing.T) {
	require.NoError(t, DefaultModel().Validate())
	require.NoError(t, Model{}.Validate())

	assert.Error(t, Model{CommissionRate: -0.001}.Validate())
	assert.Error(t, Model{SlippageRate: -1}.Validate())
	assert.Error(t, Model{StampTaxRate: -0.0001}.Validate())
}
