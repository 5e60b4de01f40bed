package costs

import (
	"fmt"
)

// Model holds the per-trade cost rates. Stamp tax applies to sells only,
// matching markets that levy it on the sell side; it defaults to zero.
type Model struct {
	CommissionRate float64 `yaml:"commission_rate"`
	SlippageRate   float64 `yaml:"slippage_rate"`
	StampTaxRate   float64 `yaml:"stamp_tax_rate"`
}

// DefaultModel returns the rates used when no configuration is supplied.
func DefaultModel() Model {
	return Model{
		CommissionRate: 0.00025,
		SlippageRate:   0.001,
		StampTaxRate:   0,
	}
}

// Validate rejects negative rates.
func (m Model) Validate() error {
	if m.CommissionRate < 0 || m.SlippageRate < 0 || m.StampTaxRate < 0 {
		return fmt.Errorf("cost rates must be non-negative: commission=%v slippage=%v stamp=%v",
			m.CommissionRate, m.SlippageRate, m.StampTaxRate)
	}
	return nil
}

// BuyCost returns the commission, slippage cost and their total for a buy of
// the given gross amount. Price adjustment is the caller's concern: buys
// execute at quote*(1+SlippageRate).
func (m Model) BuyCost(amount float64) (commission, slippage, total float64) {
	commission = amount * m.CommissionRate
	slippage = amount * m.SlippageRate
	return commission, slippage, commission + slippage
}

// SellCost returns the commission, the combined slippage-plus-stamp-tax cost
// and their total for a sell of the given gross amount. Sells execute at
// quote*(1-SlippageRate).
func (m Model) SellCost(amount float64) (commission, slippageAndTax, total float64) {
	commission = amount * m.CommissionRate
	slippageAndTax = amount*m.SlippageRate + amount*m.StampTaxRate
	return commission, slippageAndTax, commission + slippageAndTax
}
