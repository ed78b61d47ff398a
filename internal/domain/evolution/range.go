package evolution

import (
	"strings"
	"time"
)

// ResolveWindow turns a RangeSpec into concrete dates relative to now. The
// second return value reports that the custom dates could not be used and
// the window fell back to the full history.
func ResolveWindow(spec RangeSpec, now time.Time) (Window, bool) {
	today := truncateDay(now)

	startRaw := strings.TrimSpace(spec.StartDate)
	endRaw := strings.TrimSpace(spec.EndDate)
	if startRaw != "" || endRaw != "" {
		start, okStart := parseDate(startRaw)
		end, okEnd := parseDate(endRaw)
		if okStart && okEnd && !start.After(end) {
			return Window{Key: RangeCustom, Label: rangeLabels[RangeCustom], Start: start, End: end}, false
		}
		return allWindow(today), true
	}

	key := strings.ToLower(strings.TrimSpace(spec.Preset))
	switch key {
	case "":
		key = Range12M
		fallthrough
	case Range6M, Range12M, Range24M:
		months := map[string]int{Range6M: 6, Range12M: 12, Range24M: 24}[key]
		return Window{Key: key, Label: rangeLabels[key], Start: today.AddDate(0, -months, 0), End: today}, false
	case RangeYTD:
		start := time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		return Window{Key: key, Label: rangeLabels[key], Start: start, End: today}, false
	default:
		return allWindow(today), false
	}
}

func allWindow(today time.Time) Window {
	return Window{Key: RangeAll, Label: rangeLabels[RangeAll], End: today}
}

// Bounded reports whether the window has a lower bound.
func (w Window) Bounded() bool {
	return !w.Start.IsZero()
}

// QueryBounds returns the half-open [start, end) interval used against
// storage. A zero start means no lower bound.
func (w Window) QueryBounds() (time.Time, time.Time) {
	return w.Start, w.End.AddDate(0, 0, 1)
}

func parseDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return truncateDay(t), true
	}
	return time.Time{}, false
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
