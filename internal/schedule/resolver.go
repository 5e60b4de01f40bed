package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
)

// rotationSearchDays bounds the forward search from a period's nominal start
// to its first actual trading day.
const rotationSearchDays = 30

// Resolver answers eligibility questions for one cadence derived from the
// base quarterly schedule.
type Resolver struct {
	cadence Cadence
	periods []Period
}

// NewResolver derives the requested cadence from the base quarterly periods.
// The base periods must be in chronological order (as returned by Load).
func NewResolver(base []Period, cadence Cadence) (*Resolver, error) {
	var periods []Period
	switch cadence {
	case Quarterly:
		periods = append(periods, base...)
	case SemiAnnual:
		periods = mergeHalves(base)
	case Annual:
		periods = mergeYears(base)
	default:
		return nil, fmt.Errorf("unknown cadence %q", cadence)
	}
	return &Resolver{cadence: cadence, periods: periods}, nil
}

// Cadence returns the resolver's cadence.
func (r *Resolver) Cadence() Cadence { return r.cadence }

// Periods returns the resolved periods in chronological order.
func (r *Resolver) Periods() []Period { return r.periods }

// mergeHalves groups quarters by year into H1 (quarters ending in months 1-6)
// and H2 (months 7-12). A merged half spans from its first quarter's start to
// its last quarter's end and reuses the first quarter's asset set. Years with
// only one half present yield only that half.
func mergeHalves(base []Period) []Period {
	var out []Period
	groups := groupBy(base, func(p Period) string {
		half := "H1"
		if p.End.Month() > 6 {
			half = "H2"
		}
		return fmt.Sprintf("%d%s", p.Start.Year(), half)
	})
	for _, g := range groups {
		out = append(out, Period{
			Key:    g.key,
			Start:  g.members[0].Start,
			End:    g.members[len(g.members)-1].End,
			Assets: g.members[0].Assets,
		})
	}
	return out
}

// mergeYears emits one period per calendar year spanning the first quarter's
// start to the last available quarter's end, with the first quarter's assets.
func mergeYears(base []Period) []Period {
	var out []Period
	groups := groupBy(base, func(p Period) string {
		return fmt.Sprintf("%d", p.Start.Year())
	})
	for _, g := range groups {
		out = append(out, Period{
			Key:    g.key,
			Start:  g.members[0].Start,
			End:    g.members[len(g.members)-1].End,
			Assets: g.members[0].Assets,
		})
	}
	return out
}

type group struct {
	key     string
	members []Period
}

// groupBy buckets chronologically ordered periods by key, preserving both the
// order of first appearance and the member order inside each bucket.
func groupBy(base []Period, keyFn func(Period) string) []group {
	index := make(map[string]int)
	var groups []group
	for _, p := range base {
		k := keyFn(p)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, group{key: k})
		}
		groups[i].members = append(groups[i].members, p)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].members[0].Start.Before(groups[j].members[0].Start)
	})
	return groups
}

// PoolForDate returns the asset set eligible on the given date, or nil when
// no resolved period covers it.
func (r *Resolver) PoolForDate(date time.Time) []string {
	for _, p := range r.periods {
		if p.Contains(date) {
			return p.Assets
		}
	}
	return nil
}

// PeriodForDate returns the period covering the date, if any.
func (r *Resolver) PeriodForDate(date time.Time) (Period, bool) {
	for _, p := range r.periods {
		if p.Contains(date) {
			return p, true
		}
	}
	return Period{}, false
}

// RotationDates maps each period's nominal start onto the first trading day
// found within rotationSearchDays calendar days, using the supplied trading
// calendar. Periods with no trading day in the window are skipped with a
// warning; the pool simply does not change on schedule for them. The result
// is deduplicated and ascending.
func (r *Resolver) RotationDates(calendar []time.Time) []time.Time {
	trading := make(map[string]bool, len(calendar))
	for _, d := range calendar {
		trading[d.Format(dateLayout)] = true
	}

	seen := make(map[string]bool)
	var out []time.Time
	for _, p := range r.periods {
		found := false
		for off := 0; off <= rotationSearchDays; off++ {
			d := p.Start.AddDate(0, 0, off)
			if trading[d.Format(dateLayout)] {
				key := d.Format(dateLayout)
				if !seen[key] {
					seen[key] = true
					out = append(out, d)
				}
				found = true
				break
			}
		}
		if !found {
			log.Warn().
				Str("period", p.Key).
				Str("start", p.Start.Format(dateLayout)).
				Int("search_days", rotationSearchDays).
				Msg("No trading day found for rotation; period skipped")
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// AllAssets returns the sorted union of every period's asset set.
func (r *Resolver) AllAssets() []string {
	set := make(map[string]bool)
	for _, p := range r.periods {
		for _, a := range p.Assets {
			set[a] = true
		}
	}
	out := make([]string, 0, len(set))
	for a := range set {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}
