package indicator

import (
	"math"
)

// KAMAParams configures the adaptive moving average calculation.
type KAMAParams struct {
	Window int // efficiency-ratio lookback, also the seed length
	Fast   int // fast smoothing period
	Slow   int // slow smoothing period
}

// DefaultKAMAParams returns the standard 10/2/30 parameterization.
func DefaultKAMAParams() KAMAParams {
	return KAMAParams{Window: 10, Fast: 2, Slow: 30}
}

// Valid reports whether the parameters are usable.
func (p KAMAParams) Valid() bool {
	return p.Window > 0 && p.Fast > 0 && p.Slow > 0
}

// KAMA computes Kaufman's Adaptive Moving Average over a chronologically
// ordered close series. The returned slice has the same length as the input;
// indices before Window-1 are NaN (undefined). Index Window-1 is seeded with
// the simple mean of the first Window closes. If the series is shorter than
// Window the entire result is NaN.
//
// The calculation is stateless and cheap enough to recompute per call from a
// trailing window ending at the query date.
func KAMA(closes []float64, params KAMAParams) []float64 {
	n := params.Window
	out := make([]float64, len(closes))
	for i := range out {
		out[i] = math.NaN()
	}
	if !params.Valid() || len(closes) < n {
		return out
	}

	seed := 0.0
	for i := 0; i < n; i++ {
		seed += closes[i]
	}
	out[n-1] = seed / float64(n)

	fastSC := 2.0 / (float64(params.Fast) + 1.0)
	slowSC := 2.0 / (float64(params.Slow) + 1.0)

	for i := n; i < len(closes); i++ {
		change := math.Abs(closes[i] - closes[i-n])
		volatility := 0.0
		for j := i - n + 1; j <= i; j++ {
			volatility += math.Abs(closes[j] - closes[j-1])
		}

		// Flat windows have zero volatility; treat efficiency as zero so the
		// average holds its level instead of dividing by zero.
		er := 0.0
		if volatility > 0 {
			er = change / volatility
		}

		sc := er*(fastSC-slowSC) + slowSC
		sc *= sc

		out[i] = out[i-1] + sc*(closes[i]-out[i-1])
	}
	return out
}

// Last returns the final defined value of a KAMA series, or NaN and false if
// the series has no defined values.
func Last(series []float64) (float64, bool) {
	for i := len(series) - 1; i >= 0; i-- {
		if !math.IsNaN(series[i]) {
			return series[i], true
		}
	}
	return math.NaN(), false
}
