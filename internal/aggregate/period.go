package aggregate

import (
	"github.com/mealtrack/mealsync/internal/nutrition"
)

// PeriodKind selects the rollup window shape.
type PeriodKind string

const (
	// Week periods are fixed 7-day windows ending on the anchor day.
	Week PeriodKind = "week"
	// Month periods are calendar months.
	Month PeriodKind = "month"
)

// PeriodSummary is one rollup window.
//
// TrackedDays counts distinct dates in [Start, End] that have at least
// one logged entry and no off day. Days with no entries do not consume
// a denominator slot, and off days never do, even when entries exist
// on them. Averages are per-tracked-day; with zero tracked days all
// averages are zero.
type PeriodSummary struct {
	Kind        PeriodKind       `json:"kind"`
	Start       nutrition.Date   `json:"start"`
	End         nutrition.Date   `json:"end"`
	Label       string           `json:"label,omitempty"`
	TrackedDays int              `json:"tracked_days"`
	OffDayCount int              `json:"off_day_count"`
	Totals      nutrition.Macros `json:"totals"`
	Averages    nutrition.Macros `json:"averages"`
}

// PeriodBreakdown computes count rollup windows ending at anchor,
// most recent first.
func PeriodBreakdown(kind PeriodKind, count int, anchor nutrition.Date, entries Entries, offDays []nutrition.OffDay) []PeriodSummary {
	summaries := make([]PeriodSummary, 0, count)
	days := entries.byDate()
	offSet := make(map[nutrition.Date]bool, len(offDays))
	for _, od := range offDays {
		offSet[od.Date] = true
	}

	for i := 0; i < count; i++ {
		var start, end nutrition.Date
		var label string
		switch kind {
		case Week:
			end = anchor.AddDays(-7 * i)
			start = end.AddDays(-6)
		case Month:
			monthStart := anchor.MonthStart()
			start = nutrition.DateOf(monthStart.Time().AddDate(0, -i, 0))
			end = start.MonthEnd()
			label = start.Time().Format("January 2006")
		default:
			return nil
		}
		summaries = append(summaries, summarize(kind, start, end, label, days, offSet))
	}
	return summaries
}

// summarize rolls up one [start, end] window.
func summarize(kind PeriodKind, start, end nutrition.Date, label string, days map[nutrition.Date]nutrition.Macros, offSet map[nutrition.Date]bool) PeriodSummary {
	s := PeriodSummary{
		Kind:  kind,
		Start: start,
		End:   end,
		Label: label,
	}

	for d := start; !d.After(end); d = d.AddDays(1) {
		if offSet[d] {
			s.OffDayCount++
			continue
		}
		totals, logged := days[d]
		if !logged {
			continue
		}
		s.TrackedDays++
		s.Totals = s.Totals.Add(totals)
	}

	if s.TrackedDays > 0 {
		s.Averages = s.Totals.Scale(1 / float64(s.TrackedDays))
	}
	return s
}
