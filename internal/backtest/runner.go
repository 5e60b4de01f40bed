package backtest

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"etfrotate/internal/config"
	"etfrotate/internal/data"
	"etfrotate/internal/engine"
	"etfrotate/internal/indicator"
	"etfrotate/internal/schedule"
)

// Result bundles everything one cadence run produced.
type Result struct {
	RunID     string                  `json:"run_id"`
	Cadence   schedule.Cadence        `json:"cadence"`
	From      time.Time               `json:"from"`
	To        time.Time               `json:"to"`
	Summary   engine.Summary          `json:"summary"`
	Nav       []engine.NavPoint       `json:"nav"`
	Trades    []engine.Trade          `json:"trades"`
	Rotations []engine.RotationResult `json:"rotations"`
}

// Runner drives the simulation engine one trading day at a time: rotation
// first when the day is a scheduled rotation day, then signal evaluation,
// then NAV recording.
type Runner struct {
	cfg   *config.Config
	store *data.Store
	base  []schedule.Period
}

// NewRunner wires a runner from its collaborators. base is the quarterly
// schedule as loaded by schedule.Load.
func NewRunner(cfg *config.Config, store *data.Store, base []schedule.Period) *Runner {
	return &Runner{cfg: cfg, store: store, base: base}
}

// assetSeries is one asset's history with a date index for O(1) lookup of
// the day's close, the prior close and the precomputed indicator value.
type assetSeries struct {
	bars  []data.Bar
	kama  []float64
	index map[string]int
}

// Run executes one full simulation for the given cadence.
func (r *Runner) Run(ctx context.Context, cadence schedule.Cadence) (*Result, error) {
	resolver, err := schedule.NewResolver(r.base, cadence)
	if err != nil {
		return nil, err
	}

	assets := resolver.AllAssets()
	if len(assets) == 0 {
		return nil, fmt.Errorf("rotation schedule names no assets")
	}
	if err := r.store.RequireSymbols(ctx, assets); err != nil {
		return nil, fmt.Errorf("universe not covered by price data: %w", err)
	}

	from, to, err := r.cfg.DateRange()
	if err != nil {
		return nil, err
	}
	minDate, maxDate, err := r.store.DateBounds(ctx)
	if err != nil {
		return nil, err
	}
	if from.IsZero() || from.Before(minDate) {
		from = minDate
	}
	if to.IsZero() || to.After(maxDate) {
		to = maxDate
	}

	calendar, err := r.store.TradingDates(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if len(calendar) == 0 {
		return nil, fmt.Errorf("no trading days between %s and %s",
			from.Format("2006-01-02"), to.Format("2006-01-02"))
	}

	series, err := r.loadSeries(ctx, assets, to)
	if err != nil {
		return nil, err
	}

	rotationDays := make(map[string]bool)
	for _, d := range resolver.RotationDates(calendar) {
		rotationDays[d.Format("2006-01-02")] = true
	}

	log.Info().
		Str("cadence", string(cadence)).
		Str("from", from.Format("2006-01-02")).
		Str("to", to.Format("2006-01-02")).
		Int("assets", len(assets)).
		Int("trading_days", len(calendar)).
		Int("rotations", len(rotationDays)).
		Msg("Starting simulation")

	eng := engine.New(r.cfg.InitialCash, r.cfg.Costs)

	for _, day := range calendar {
		key := day.Format("2006-01-02")
		closes, prevCloses, values := r.feedFor(day, assets, series)

		if rotationDays[key] {
			pool := resolver.PoolForDate(day)
			eng.Rotate(pool, day, closes, nil)
		}

		eng.ProcessDailySignals(day, closes, prevCloses, values, nil)
		eng.RecordNav(day, closes)
	}

	result := &Result{
		RunID:     uuid.NewString(),
		Cadence:   cadence,
		From:      from,
		To:        to,
		Summary:   eng.Summarize(),
		Nav:       eng.NavHistory(),
		Trades:    eng.Trades(),
		Rotations: eng.Rotations(),
	}

	log.Info().
		Str("cadence", string(cadence)).
		Float64("final_nav", result.Summary.FinalNav).
		Float64("total_return_pct", result.Summary.TotalReturnPct).
		Int("trades", len(result.Trades)).
		Msg("Simulation finished")
	return result, nil
}

// RunAll executes quarterly, semi-annual and annual runs back to back with
// independent engines.
func (r *Runner) RunAll(ctx context.Context) ([]*Result, error) {
	cadences := []schedule.Cadence{schedule.Quarterly, schedule.SemiAnnual, schedule.Annual}
	results := make([]*Result, 0, len(cadences))
	for _, c := range cadences {
		res, err := r.Run(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("%s run failed: %w", c, err)
		}
		results = append(results, res)
	}
	return results, nil
}

// loadSeries pulls each asset's full history up to the end date and
// precomputes its adaptive average. KAMA at index i depends only on closes
// [0..i], so the precomputed series matches a fresh recompute truncated at
// any query date.
func (r *Runner) loadSeries(ctx context.Context, assets []string, to time.Time) (map[string]*assetSeries, error) {
	params := r.cfg.KAMA.Params()
	out := make(map[string]*assetSeries, len(assets))
	for _, asset := range assets {
		bars, err := r.store.Series(ctx, asset, time.Time{}, to)
		if err != nil {
			return nil, err
		}
		closes := make([]float64, len(bars))
		index := make(map[string]int, len(bars))
		for i, b := range bars {
			closes[i] = b.Close
			index[b.Date.Format("2006-01-02")] = i
		}
		out[asset] = &assetSeries{
			bars:  bars,
			kama:  indicator.KAMA(closes, params),
			index: index,
		}
	}
	return out, nil
}

// feedFor assembles one trading day's engine inputs. Assets without a bar on
// the day are left out of all three maps; assets without a defined indicator
// value are left out of the values map and stay dormant.
func (r *Runner) feedFor(day time.Time, assets []string, series map[string]*assetSeries) (closes, prevCloses, values map[string]float64) {
	key := day.Format("2006-01-02")
	closes = make(map[string]float64)
	prevCloses = make(map[string]float64)
	values = make(map[string]float64)

	for _, asset := range assets {
		s := series[asset]
		i, ok := s.index[key]
		if !ok {
			continue
		}
		closes[asset] = s.bars[i].Close
		if i > 0 {
			prevCloses[asset] = s.bars[i-1].Close
		}
		if v := s.kama[i]; !math.IsNaN(v) {
			values[asset] = v
		}
	}
	return closes, prevCloses, values
}
