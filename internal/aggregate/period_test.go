package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealtrack/mealsync/internal/nutrition"
)

// fixedDay builds a day's worth of entries totalling the given calories.
func fixedDay(t *testing.T, date nutrition.Date, calories float64) nutrition.MealEntry {
	t.Helper()
	food := nutrition.Food{ID: 9, Name: "Meal Prep", PerServing: nutrition.Macros{Calories: calories, Protein: 30, Carbs: 40, Fats: 10}}
	return mustEntry(t, food, 1, nutrition.Lunch, date)
}

func TestPeriodBreakdown_WeekWithOffDays(t *testing.T) {
	anchor := nutrition.Date("2026-03-14")
	var meals []nutrition.MealEntry
	// 5 tracked days at 2000 calories each: 2026-03-08 .. 2026-03-12.
	for i := 2; i <= 6; i++ {
		meals = append(meals, fixedDay(t, anchor.AddDays(-i), 2000))
	}
	offDays := []nutrition.OffDay{
		{Date: "2026-03-13", Reason: nutrition.ReasonTravel},
		{Date: "2026-03-14", Reason: nutrition.ReasonParty},
	}

	weeks := PeriodBreakdown(Week, 1, anchor, Entries{Meals: meals}, offDays)
	require.Len(t, weeks, 1)

	week := weeks[0]
	assert.Equal(t, nutrition.Date("2026-03-08"), week.Start)
	assert.Equal(t, anchor, week.End)
	assert.Equal(t, 5, week.TrackedDays)
	assert.Equal(t, 2, week.OffDayCount)
	assert.Equal(t, 10000.0, week.Totals.Calories)
	assert.Equal(t, 2000.0, week.Averages.Calories)
}

func TestPeriodBreakdown_OffDayWithEntriesExcludedFromDenominator(t *testing.T) {
	anchor := nutrition.Date("2026-03-14")
	meals := []nutrition.MealEntry{
		fixedDay(t, "2026-03-13", 1000),
		fixedDay(t, "2026-03-14", 3000), // off day, but entries exist
	}
	offDays := []nutrition.OffDay{{Date: "2026-03-14", Reason: nutrition.ReasonHoliday}}

	weeks := PeriodBreakdown(Week, 1, anchor, Entries{Meals: meals}, offDays)
	require.Len(t, weeks, 1)

	// The off day's entries are not deleted, but they contribute to
	// neither the totals nor the denominator.
	assert.Equal(t, 1, weeks[0].TrackedDays)
	assert.Equal(t, 1, weeks[0].OffDayCount)
	assert.Equal(t, 1000.0, weeks[0].Totals.Calories)
	assert.Equal(t, 1000.0, weeks[0].Averages.Calories)
}

func TestPeriodBreakdown_ZeroTrackedDays(t *testing.T) {
	weeks := PeriodBreakdown(Week, 1, "2026-03-14", Entries{}, nil)
	require.Len(t, weeks, 1)

	assert.Equal(t, 0, weeks[0].TrackedDays)
	assert.True(t, weeks[0].Averages.IsZero(), "no division error on empty window")
}

func TestPeriodBreakdown_ZeroEntryDaysNotTracked(t *testing.T) {
	// Only one day in the window has entries; the other six days are
	// neither off days nor tracked.
	meals := []nutrition.MealEntry{fixedDay(t, "2026-03-10", 1800)}

	weeks := PeriodBreakdown(Week, 1, "2026-03-14", Entries{Meals: meals}, nil)
	require.Len(t, weeks, 1)

	assert.Equal(t, 1, weeks[0].TrackedDays)
	assert.Equal(t, 1800.0, weeks[0].Averages.Calories)
}

func TestPeriodBreakdown_MultipleWeeksMostRecentFirst(t *testing.T) {
	anchor := nutrition.Date("2026-03-14")
	meals := []nutrition.MealEntry{
		fixedDay(t, "2026-03-14", 2000), // current window
		fixedDay(t, "2026-03-05", 1500), // previous window
	}

	weeks := PeriodBreakdown(Week, 2, anchor, Entries{Meals: meals}, nil)
	require.Len(t, weeks, 2)

	assert.Equal(t, nutrition.Date("2026-03-14"), weeks[0].End)
	assert.Equal(t, nutrition.Date("2026-03-07"), weeks[1].End)
	assert.Equal(t, nutrition.Date("2026-03-01"), weeks[1].Start)
	assert.Equal(t, 2000.0, weeks[0].Totals.Calories)
	assert.Equal(t, 1500.0, weeks[1].Totals.Calories)
}

func TestPeriodBreakdown_CalendarMonths(t *testing.T) {
	anchor := nutrition.Date("2026-03-14")
	meals := []nutrition.MealEntry{
		fixedDay(t, "2026-03-01", 2000),
		fixedDay(t, "2026-02-28", 1600),
		fixedDay(t, "2026-01-15", 1400),
	}

	months := PeriodBreakdown(Month, 3, anchor, Entries{Meals: meals}, nil)
	require.Len(t, months, 3)

	assert.Equal(t, nutrition.Date("2026-03-01"), months[0].Start)
	assert.Equal(t, nutrition.Date("2026-03-31"), months[0].End)
	assert.Equal(t, "March 2026", months[0].Label)

	assert.Equal(t, nutrition.Date("2026-02-01"), months[1].Start)
	assert.Equal(t, nutrition.Date("2026-02-28"), months[1].End)
	assert.Equal(t, 1600.0, months[1].Totals.Calories)

	assert.Equal(t, "January 2026", months[2].Label)
	assert.Equal(t, 1400.0, months[2].Totals.Calories)
}

func TestPeriodBreakdown_MonthSpansYearBoundary(t *testing.T) {
	months := PeriodBreakdown(Month, 2, "2026-01-10", Entries{}, nil)
	require.Len(t, months, 2)

	assert.Equal(t, "January 2026", months[0].Label)
	assert.Equal(t, "December 2025", months[1].Label)
	assert.Equal(t, nutrition.Date("2025-12-31"), months[1].End)
}

func TestPeriodBreakdown_MultiMealsContribute(t *testing.T) {
	date := nutrition.Date("2026-03-12")
	multi := nutrition.MultiIngredientMeal{
		Date:     date,
		MealType: nutrition.Dinner,
		Ingredients: []nutrition.Ingredient{
			mustIngredient(t, rice, 200), // 200 cal
		},
	}

	weeks := PeriodBreakdown(Week, 1, "2026-03-14", Entries{MultiMeals: []nutrition.MultiIngredientMeal{multi}}, nil)
	require.Len(t, weeks, 1)

	assert.Equal(t, 1, weeks[0].TrackedDays)
	assert.Equal(t, 200.0, weeks[0].Totals.Calories)
}

func TestPeriodBreakdown_UnknownKind(t *testing.T) {
	assert.Nil(t, PeriodBreakdown(PeriodKind("quarter"), 1, "2026-03-14", Entries{}, nil))
}
