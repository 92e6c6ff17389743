package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mealtrack/mealsync/internal/nutrition"
)

func TestStreak_ConsecutiveDays(t *testing.T) {
	anchor := nutrition.Date("2026-03-14")
	var meals []nutrition.MealEntry
	for i := 0; i < 4; i++ {
		meals = append(meals, fixedDay(t, anchor.AddDays(-i), 2000))
	}
	// Gap at -4 breaks the streak even though -5 has entries.
	meals = append(meals, fixedDay(t, anchor.AddDays(-5), 2000))

	assert.Equal(t, 4, Streak(anchor, Entries{Meals: meals}, nil))
}

func TestStreak_OffDaysAreSkipped(t *testing.T) {
	anchor := nutrition.Date("2026-03-14")
	meals := []nutrition.MealEntry{
		fixedDay(t, "2026-03-14", 2000),
		fixedDay(t, "2026-03-12", 2000), // 03-13 is an off day
	}
	offDays := []nutrition.OffDay{{Date: "2026-03-13", Reason: nutrition.ReasonWeekend}}

	assert.Equal(t, 2, Streak(anchor, Entries{Meals: meals}, offDays))
}

func TestStreak_Empty(t *testing.T) {
	assert.Equal(t, 0, Streak("2026-03-14", Entries{}, nil))
}

func TestMacroRatio(t *testing.T) {
	assert.Equal(t, "40/30/30", MacroRatio(40, 30, 30))
	assert.Equal(t, "40/30/30", MacroRatio(80, 60, 60))
	assert.Equal(t, "0/0/0", MacroRatio(0, 0, 0))
}

func sample(daysAgo int, weight float64) nutrition.WeightSample {
	base := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	return nutrition.WeightSample{RecordedAt: base.AddDate(0, 0, -daysAgo), Weight: weight}
}

func TestWeightTrend(t *testing.T) {
	// Most recent first, ten samples dropping from 82 to 78.5.
	history := []nutrition.WeightSample{
		sample(0, 78.5), sample(1, 78.8), sample(2, 79.0), sample(3, 79.4),
		sample(4, 79.9), sample(5, 80.2), sample(6, 80.5), sample(7, 81.0),
		sample(8, 81.5), sample(9, 82.0),
	}

	p := WeightTrend(history)
	assert.True(t, p.HasData)
	assert.Equal(t, 78.5, p.Current)
	assert.Equal(t, 82.0, p.Starting)
	assert.InDelta(t, -3.5, p.Change, 0.001)
	assert.InDelta(t, -2.0, p.Trend, 0.001) // 78.5 - 80.5 over last 7 samples
	assert.Equal(t, TrendLosing, p.Dir)
}

func TestWeightTrend_SingleSample(t *testing.T) {
	p := WeightTrend([]nutrition.WeightSample{sample(0, 80)})
	assert.True(t, p.HasData)
	assert.Equal(t, 0.0, p.Change)
	assert.Equal(t, TrendStable, p.Dir)
}

func TestWeightTrend_Empty(t *testing.T) {
	p := WeightTrend(nil)
	assert.False(t, p.HasData)
}
