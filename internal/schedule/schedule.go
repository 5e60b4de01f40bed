package schedule

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"
)

const dateLayout = "2006-01-02"

// Cadence selects how often the eligible universe is re-evaluated.
type Cadence string

const (
	Quarterly  Cadence = "quarterly"
	SemiAnnual Cadence = "semiannual"
	Annual     Cadence = "annual"
)

// ParseCadence maps a CLI/config string to a Cadence.
func ParseCadence(s string) (Cadence, error) {
	switch s {
	case "quarterly", "q":
		return Quarterly, nil
	case "semiannual", "semi-annual", "h":
		return SemiAnnual, nil
	case "annual", "yearly", "y":
		return Annual, nil
	}
	return "", fmt.Errorf("unknown cadence %q (want quarterly, semiannual or annual)", s)
}

// Period is one span of the rotation schedule with its eligible asset set.
type Period struct {
	Key    string    `json:"key"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Assets []string  `json:"assets"`
}

// Contains reports whether the date falls inside the period, inclusive on
// both ends.
func (p Period) Contains(date time.Time) bool {
	return !date.Before(p.Start) && !date.After(p.End)
}

// rawPeriod matches the persisted quarterly schedule format:
// {"2024Q1": {"start": "2024-01-01", "end": "2024-03-31", "etfs": [...]}}
type rawPeriod struct {
	Start string   `json:"start"`
	End   string   `json:"end"`
	ETFs  []string `json:"etfs"`
}

// Load reads the base quarterly schedule from a JSON file and returns its
// periods in chronological order.
func Load(path string) ([]Period, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rotation schedule: %w", err)
	}

	var raw map[string]rawPeriod
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse rotation schedule JSON: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("rotation schedule %s contains no periods", path)
	}

	periods := make([]Period, 0, len(raw))
	for key, rp := range raw {
		start, err := time.Parse(dateLayout, rp.Start)
		if err != nil {
			return nil, fmt.Errorf("period %s: bad start date %q: %w", key, rp.Start, err)
		}
		end, err := time.Parse(dateLayout, rp.End)
		if err != nil {
			return nil, fmt.Errorf("period %s: bad end date %q: %w", key, rp.End, err)
		}
		if end.Before(start) {
			return nil, fmt.Errorf("period %s: end %s precedes start %s", key, rp.End, rp.Start)
		}
		assets := make([]string, len(rp.ETFs))
		copy(assets, rp.ETFs)
		periods = append(periods, Period{Key: key, Start: start, End: end, Assets: assets})
	}

	sort.Slice(periods, func(i, j int) bool {
		if !periods[i].Start.Equal(periods[j].Start) {
			return periods[i].Start.Before(periods[j].Start)
		}
		return periods[i].Key < periods[j].Key
	})
	return periods, nil
}
