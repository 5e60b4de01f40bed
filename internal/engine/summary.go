package engine

import (
	"math"
)

const tradingDaysPerYear = 252

// Summarize computes the run summary from the recorded NAV history and trade
// log. It can be called at any point; the summary reflects everything
// recorded so far.
func (e *Engine) Summarize() Summary {
	s := Summary{
		InitialCash: e.initialCash,
		TradingDays: len(e.nav),
	}

	for _, t := range e.trades {
		switch t.Kind {
		case KindRotation:
			s.RotationTrades++
			s.RotationCost += t.TotalCost
		case KindSignal:
			s.SignalTrades++
			s.SignalCost += t.TotalCost
		}
	}
	s.TotalCost = s.RotationCost + s.SignalCost

	if len(e.nav) == 0 {
		s.FinalNav = e.cash
		return s
	}

	s.FinalNav = e.nav[len(e.nav)-1].Nav
	s.TotalReturnPct = (s.FinalNav/e.initialCash - 1) * 100
	if s.TradingDays > 0 {
		s.AnnualizedReturnPct = s.TotalReturnPct * tradingDaysPerYear / float64(s.TradingDays)
	}
	s.MaxDrawdownPct = maxDrawdown(e.nav)
	s.Sharpe = sharpeRatio(dailyReturns(e.nav))
	return s
}

// maxDrawdown returns the most negative peak-to-trough decline in percent.
func maxDrawdown(nav []NavPoint) float64 {
	peak := math.Inf(-1)
	worst := 0.0
	for _, p := range nav {
		if p.Nav > peak {
			peak = p.Nav
		}
		if peak > 0 {
			dd := (p.Nav - peak) / peak * 100
			if dd < worst {
				worst = dd
			}
		}
	}
	return worst
}

// dailyReturns converts the NAV series into day-over-day percent changes.
func dailyReturns(nav []NavPoint) []float64 {
	if len(nav) < 2 {
		return nil
	}
	out := make([]float64, 0, len(nav)-1)
	for i := 1; i < len(nav); i++ {
		if nav[i-1].Nav == 0 {
			continue
		}
		out = append(out, nav[i].Nav/nav[i-1].Nav-1)
	}
	return out
}

// sharpeRatio annualizes mean/stddev of daily returns with sqrt(252). Returns
// 0 for fewer than two observations or zero variance.
func sharpeRatio(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns))
	if variance == 0 {
		return 0
	}
	return mean / math.Sqrt(variance) * math.Sqrt(tradingDaysPerYear)
}
