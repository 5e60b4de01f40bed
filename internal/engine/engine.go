package engine

import (
	"time"

	"github.com/rs/zerolog/log"

	"etfrotate/internal/costs"
)

// Engine simulates a rotation-gated portfolio for one run. It owns cash, open
// positions, the currently eligible pool, the waiting-for-entry set and
// per-asset indicator state. All methods mutate the receiver; calls must be
// serialized per instance (the simulation is strictly sequential).
//
// An asset moves NOT_ELIGIBLE -> WAITING when a rotation adds it, WAITING ->
// HOLDING on a golden cross, HOLDING -> WAITING on a death cross, and back to
// NOT_ELIGIBLE when a rotation drops it.
type Engine struct {
	costs       costs.Model
	initialCash float64
	cash        float64

	// pool is an ordered list, not a set: signal processing walks it in
	// order and sequential capital allocation makes that order load-bearing.
	pool       []string
	waiting    map[string]bool
	positions  map[string]Position
	indicators map[string]*indicatorState

	trades    []Trade
	nav       []NavPoint
	rotations []RotationResult
}

// New creates an engine with the given starting cash and cost model.
func New(initialCash float64, model costs.Model) *Engine {
	return &Engine{
		costs:       model,
		initialCash: initialCash,
		cash:        initialCash,
		waiting:     make(map[string]bool),
		positions:   make(map[string]Position),
		indicators:  make(map[string]*indicatorState),
	}
}

// Cash returns the current uninvested cash.
func (e *Engine) Cash() float64 { return e.cash }

// InitialCash returns the starting capital.
func (e *Engine) InitialCash() float64 { return e.initialCash }

// Pool returns a copy of the current eligible pool in iteration order.
func (e *Engine) Pool() []string {
	out := make([]string, len(e.pool))
	copy(out, e.pool)
	return out
}

// IsWaiting reports whether the asset is eligible but not yet holding.
func (e *Engine) IsWaiting(asset string) bool { return e.waiting[asset] }

// PositionFor returns the open position for an asset, if any.
func (e *Engine) PositionFor(asset string) (Position, bool) {
	p, ok := e.positions[asset]
	if !ok || p.IsEmpty() {
		return Position{}, false
	}
	return p, true
}

// Trades returns the append-only trade log.
func (e *Engine) Trades() []Trade { return e.trades }

// NavHistory returns the recorded NAV series.
func (e *Engine) NavHistory() []NavPoint { return e.nav }

// Rotations returns the executed rotation events.
func (e *Engine) Rotations() []RotationResult { return e.rotations }

// Rotate applies a scheduled universe change. Assets dropped from the pool
// are liquidated immediately at price*(1-slippage); newly eligible assets are
// only added to the waiting set and must earn their entry through a signal.
// Suspended assets are neither sold nor watched. Net proceeds from all sells
// are credited to cash in one step.
func (e *Engine) Rotate(newPool []string, date time.Time, prices map[string]float64, suspended map[string]bool) RotationResult {
	oldSet := make(map[string]bool, len(e.pool))
	for _, a := range e.pool {
		oldSet[a] = true
	}
	newSet := make(map[string]bool, len(newPool))
	for _, a := range newPool {
		newSet[a] = true
	}

	result := RotationResult{Date: date}
	proceeds := 0.0

	// Liquidate exclusions in the old pool's order for reproducibility.
	for _, asset := range e.pool {
		if newSet[asset] || suspended[asset] {
			continue
		}
		delete(e.waiting, asset)

		pos, held := e.positions[asset]
		if !held || pos.IsEmpty() {
			// Was only watching; nothing to sell.
			delete(e.indicators, asset)
			continue
		}
		price, ok := prices[asset]
		if !ok {
			// No quote today; the position survives until one appears.
			log.Warn().
				Str("asset", asset).
				Str("date", date.Format("2006-01-02")).
				Msg("Rotation sell skipped: no price available")
			continue
		}

		trade, net := e.closePosition(asset, date, price, KindRotation, "rotation exclusion")
		proceeds += net
		result.Sold = append(result.Sold, asset)
		result.SellCost += trade.TotalCost
		result.TradeCount++
		delete(e.indicators, asset)
	}
	e.cash += proceeds
	result.Proceeds = proceeds

	// New arrivals go on watch; no purchase happens during a rotation.
	for _, asset := range newPool {
		if oldSet[asset] {
			result.Kept = append(result.Kept, asset)
			continue
		}
		if suspended[asset] {
			continue
		}
		e.waiting[asset] = true
		result.Added = append(result.Added, asset)
	}

	// Kept assets retain their relative order; new assets are appended in
	// the incoming pool's order.
	next := make([]string, 0, len(newPool))
	for _, asset := range e.pool {
		if newSet[asset] {
			next = append(next, asset)
		}
	}
	for _, asset := range newPool {
		if !oldSet[asset] {
			next = append(next, asset)
		}
	}
	e.pool = next

	// The waiting set tracks pool membership; anything no longer eligible
	// must not count toward future buy allocations.
	for asset := range e.waiting {
		if !newSet[asset] {
			delete(e.waiting, asset)
		}
	}

	log.Debug().
		Str("date", date.Format("2006-01-02")).
		Strs("sold", result.Sold).
		Strs("added", result.Added).
		Int("kept", len(result.Kept)).
		Float64("proceeds", proceeds).
		Msg("Rotation executed")

	e.rotations = append(e.rotations, result)
	return result
}

// ProcessDailySignals evaluates crossovers for one trading day and executes
// the resulting trades. The pool is walked in its current order; because each
// buy spends cash/len(waiting) at the moment it fires, that order decides how
// capital is split when several assets trigger on the same day. Assets with
// no close or no indicator value for the day are skipped. The previous close
// comes from the caller, not from engine memory.
func (e *Engine) ProcessDailySignals(date time.Time, closes, prevCloses, indicators map[string]float64, suspended map[string]bool) []Trade {
	var executed []Trade

	poolSnapshot := make([]string, len(e.pool))
	copy(poolSnapshot, e.pool)

	for _, asset := range poolSnapshot {
		if suspended[asset] {
			continue
		}
		close, haveClose := closes[asset]
		value, haveValue := indicators[asset]
		if !haveClose || !haveValue {
			continue
		}

		prevClose, ok := prevCloses[asset]
		if !ok {
			prevClose = close
		}

		// Without stored state there is no yesterday to compare against;
		// the first observed day only records state and cannot produce a
		// crossover.
		prevValue := value
		canCross := false
		if st, ok := e.indicators[asset]; ok && st.seen {
			prevValue = st.current
			canCross = true
		}

		golden := canCross && close > value && prevClose <= prevValue
		death := canCross && close < value && prevClose >= prevValue

		if e.waiting[asset] && golden {
			if trade, ok := e.executeBuy(asset, date, close); ok {
				delete(e.waiting, asset)
				executed = append(executed, trade)
			}
		} else if pos, held := e.positions[asset]; held && !pos.IsEmpty() && death {
			trade, net := e.closePosition(asset, date, close, KindSignal, "death cross")
			e.cash += net
			e.waiting[asset] = true
			executed = append(executed, trade)
		}

		e.updateIndicator(asset, value)
	}
	return executed
}

// executeBuy deploys one waiting asset's share of the remaining cash. The
// allocation is cash divided by the waiting-set size at this instant, with
// costs backed out so the total spend (gross amount plus costs) equals the
// allocation. Returns false without touching state when nothing can be
// bought.
func (e *Engine) executeBuy(asset string, date time.Time, close float64) (Trade, bool) {
	n := len(e.waiting)
	if n == 0 {
		return Trade{}, false
	}

	allocation := e.cash / float64(n)
	price := close * (1 + e.costs.SlippageRate)
	effective := allocation / (1 + e.costs.CommissionRate + e.costs.SlippageRate)
	shares := effective / price
	if shares <= 0 {
		log.Debug().
			Str("asset", asset).
			Float64("allocation", allocation).
			Float64("price", price).
			Msg("Buy aborted: computed shares not positive")
		return Trade{}, false
	}

	amount := shares * price
	commission, slippage, total := e.costs.BuyCost(amount)
	e.cash -= amount + total

	e.positions[asset] = Position{
		Asset:     asset,
		Shares:    shares,
		CostBasis: price,
		EntryDate: date,
	}

	trade := Trade{
		Date:       date,
		Asset:      asset,
		Side:       SideBuy,
		Shares:     shares,
		Price:      price,
		Amount:     amount,
		Commission: commission,
		Slippage:   slippage,
		TotalCost:  total,
		Kind:       KindSignal,
		Note:       "golden cross",
	}
	e.trades = append(e.trades, trade)

	log.Debug().
		Str("asset", asset).
		Str("date", date.Format("2006-01-02")).
		Float64("shares", shares).
		Float64("amount", amount).
		Msg("Signal buy executed")
	return trade, true
}

// closePosition sells the full position at close*(1-slippage), zeroes it and
// logs the trade. It returns the net proceeds without crediting cash; the
// caller decides when the credit lands.
func (e *Engine) closePosition(asset string, date time.Time, close float64, kind TradeKind, note string) (Trade, float64) {
	pos := e.positions[asset]
	price := close * (1 - e.costs.SlippageRate)
	amount := pos.Shares * price
	commission, slippageAndTax, total := e.costs.SellCost(amount)

	e.positions[asset] = Position{Asset: asset}

	trade := Trade{
		Date:       date,
		Asset:      asset,
		Side:       SideSell,
		Shares:     pos.Shares,
		Price:      price,
		Amount:     amount,
		Commission: commission,
		Slippage:   slippageAndTax,
		TotalCost:  total,
		Kind:       kind,
		Note:       note,
	}
	e.trades = append(e.trades, trade)
	return trade, amount - total
}

// updateIndicator rolls the stored crossover state forward one day.
func (e *Engine) updateIndicator(asset string, value float64) {
	st, ok := e.indicators[asset]
	if !ok {
		e.indicators[asset] = &indicatorState{current: value, prev: value, seen: true}
		return
	}
	st.prev = st.current
	st.current = value
}

// RecordNav appends one day's valuation to the NAV history. Positions with no
// price for the day contribute zero to the valuation.
func (e *Engine) RecordNav(date time.Time, prices map[string]float64) NavPoint {
	positionValue := 0.0
	for asset, pos := range e.positions {
		if pos.IsEmpty() {
			continue
		}
		if price, ok := prices[asset]; ok {
			positionValue += pos.Shares * price
		}
	}

	nav := e.cash + positionValue
	point := NavPoint{
		Date:          date,
		Nav:           nav,
		Cash:          e.cash,
		PositionValue: positionValue,
		CumReturnPct:  (nav/e.initialCash - 1) * 100,
	}
	e.nav = append(e.nav, point)
	return point
}
