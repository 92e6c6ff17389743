package aggregate

import (
	"fmt"
	"math"

	"github.com/mealtrack/mealsync/internal/nutrition"
)

// Streak counts consecutive tracked days ending at anchor, walking
// backwards. Off days are skipped: they neither extend nor break the
// streak. The walk stops at the first non-off day with no entries.
func Streak(anchor nutrition.Date, entries Entries, offDays []nutrition.OffDay) int {
	days := entries.byDate()
	offSet := make(map[nutrition.Date]bool, len(offDays))
	for _, od := range offDays {
		offSet[od.Date] = true
	}

	streak := 0
	for d := anchor; ; d = d.AddDays(-1) {
		if offSet[d] {
			continue
		}
		if _, logged := days[d]; !logged {
			break
		}
		streak++
	}
	return streak
}

// MacroRatio formats protein/carbs/fats as a percentage ratio string,
// e.g. "40/30/30". All-zero input yields "0/0/0".
func MacroRatio(protein, carbs, fats float64) string {
	total := protein + carbs + fats
	if total == 0 {
		return "0/0/0"
	}
	p := int(math.Round(protein / total * 100))
	c := int(math.Round(carbs / total * 100))
	f := int(math.Round(fats / total * 100))
	return fmt.Sprintf("%d/%d/%d", p, c, f)
}

// TrendDirection labels a weight trend.
type TrendDirection string

const (
	TrendGaining TrendDirection = "gaining"
	TrendLosing  TrendDirection = "losing"
	TrendStable  TrendDirection = "stable"
)

// WeightProgress summarizes a weight history for display. History is
// expected most-recent-first, the order the store returns it in.
type WeightProgress struct {
	Current  float64        `json:"current_weight"`
	Starting float64        `json:"starting_weight"`
	Change   float64        `json:"change"`
	Trend    float64        `json:"trend"`
	Dir      TrendDirection `json:"trend_direction"`
	HasData  bool           `json:"has_data"`
}

// WeightTrend computes overall change and a recent trend over the last
// seven samples. An empty history reports HasData=false.
func WeightTrend(history []nutrition.WeightSample) WeightProgress {
	if len(history) == 0 {
		return WeightProgress{}
	}

	current := history[0].Weight
	starting := history[len(history)-1].Weight

	recent := history
	if len(recent) > 7 {
		recent = recent[:7]
	}
	trend := 0.0
	if len(recent) >= 2 {
		trend = recent[0].Weight - recent[len(recent)-1].Weight
	}

	dir := TrendStable
	if trend > 0 {
		dir = TrendGaining
	} else if trend < 0 {
		dir = TrendLosing
	}

	return WeightProgress{
		Current:  current,
		Starting: starting,
		Change:   current - starting,
		Trend:    trend,
		Dir:      dir,
		HasData:  true,
	}
}
