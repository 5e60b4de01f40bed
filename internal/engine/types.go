package engine

import (
	"time"
)

// TradeSide distinguishes buys from sells.
type TradeSide string

const (
	SideBuy  TradeSide = "buy"
	SideSell TradeSide = "sell"
)

// TradeKind records why a trade happened: forced by a universe rotation, or
// triggered by an indicator crossover.
type TradeKind string

const (
	KindRotation TradeKind = "rotation"
	KindSignal   TradeKind = "signal"
)

// Position is one asset holding. Positions are replaced wholesale on buys and
// sells, never mutated in place.
type Position struct {
	Asset     string    `json:"asset"`
	Shares    float64   `json:"shares"`
	CostBasis float64   `json:"cost_basis"`
	EntryDate time.Time `json:"entry_date"`
}

// IsEmpty reports whether the position holds nothing.
func (p Position) IsEmpty() bool {
	return p.Shares <= 0
}

// Trade is an immutable record of one executed transaction. The execution
// price already includes slippage.
type Trade struct {
	Date       time.Time `json:"date"`
	Asset      string    `json:"asset"`
	Side       TradeSide `json:"side"`
	Shares     float64   `json:"shares"`
	Price      float64   `json:"price"`
	Amount     float64   `json:"amount"`
	Commission float64   `json:"commission"`
	Slippage   float64   `json:"slippage"`
	TotalCost  float64   `json:"total_cost"`
	Kind       TradeKind `json:"kind"`
	Note       string    `json:"note,omitempty"`
}

// NavPoint is one day's portfolio valuation.
type NavPoint struct {
	Date          time.Time `json:"date"`
	Nav           float64   `json:"nav"`
	Cash          float64   `json:"cash"`
	PositionValue float64   `json:"position_value"`
	CumReturnPct  float64   `json:"cum_return_pct"`
}

// indicatorState keeps the two values needed for crossover detection. It is
// cleared when a rotation fully liquidates the asset, so a re-added asset
// starts fresh.
type indicatorState struct {
	current float64
	prev    float64
	seen    bool
}

// RotationResult summarizes one executed rotation.
type RotationResult struct {
	Date       time.Time `json:"date"`
	Sold       []string  `json:"sold"`
	Added      []string  `json:"added"`
	Kept       []string  `json:"kept"`
	Proceeds   float64   `json:"proceeds"`
	SellCost   float64   `json:"sell_cost"`
	TradeCount int       `json:"trade_count"`
}

// Summary aggregates a finished run.
type Summary struct {
	InitialCash         float64 `json:"initial_cash"`
	FinalNav            float64 `json:"final_nav"`
	TotalReturnPct      float64 `json:"total_return_pct"`
	AnnualizedReturnPct float64 `json:"annualized_return_pct"`
	MaxDrawdownPct      float64 `json:"max_drawdown_pct"`
	Sharpe              float64 `json:"sharpe"`
	TradingDays         int     `json:"trading_days"`
	RotationTrades      int     `json:"rotation_trades"`
	SignalTrades        int     `json:"signal_trades"`
	RotationCost        float64 `json:"rotation_cost"`
	SignalCost          float64 `json:"signal_cost"`
	TotalCost           float64 `json:"total_cost"`
}
