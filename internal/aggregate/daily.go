package aggregate

import (
	"github.com/mealtrack/mealsync/internal/nutrition"
)

// Entries is an immutable view of logged meals over some date range.
// Both single-food entries and multi-ingredient meals contribute to
// totals; multi-meal totals are recomputed from their ingredients.
type Entries struct {
	Meals      []nutrition.MealEntry
	MultiMeals []nutrition.MultiIngredientMeal
}

// TotalsFor sums all nutrition logged on date and counts the meals.
func (e Entries) TotalsFor(date nutrition.Date) (nutrition.Macros, int) {
	var totals nutrition.Macros
	count := 0
	for _, m := range e.Meals {
		if m.Date == date {
			totals = totals.Add(m.Derived)
			count++
		}
	}
	for _, m := range e.MultiMeals {
		if m.Date == date {
			totals = totals.Add(m.Totals())
			count++
		}
	}
	return totals, count
}

// byDate groups per-day totals for every date that has at least one
// entry. Dates with no entries are absent from the result.
func (e Entries) byDate() map[nutrition.Date]nutrition.Macros {
	days := make(map[nutrition.Date]nutrition.Macros)
	for _, m := range e.Meals {
		days[m.Date] = days[m.Date].Add(m.Derived)
	}
	for _, m := range e.MultiMeals {
		days[m.Date] = days[m.Date].Add(m.Totals())
	}
	return days
}

// ByMealType groups a date's entries by meal type, preserving input
// order within each group.
func (e Entries) ByMealType(date nutrition.Date) map[nutrition.MealType][]nutrition.MealEntry {
	grouped := make(map[nutrition.MealType][]nutrition.MealEntry)
	for _, m := range e.Meals {
		if m.Date == date {
			grouped[m.MealType] = append(grouped[m.MealType], m)
		}
	}
	return grouped
}

// Progress is the derived daily view: totals against targets.
//
// Percentage values are raw (unclamped); a day at 150% of its calorie
// target reports 150. Use DisplayPercentage for UI clamping. A macro
// with a zero target reports 0%, never a division error.
type Progress struct {
	Date           nutrition.Date   `json:"date"`
	Totals         nutrition.Macros `json:"totals"`
	MealCount      int              `json:"meal_count"`
	Targets        nutrition.Macros `json:"targets"`
	Percentage     nutrition.Macros `json:"percentage"`
	Remaining      nutrition.Macros `json:"remaining"`
	DeficitSurplus float64          `json:"deficit_surplus"`
	IsOffDay       bool             `json:"is_off_day"`
}

// DailyProgress computes progress for a single date.
func DailyProgress(date nutrition.Date, entries Entries, targets nutrition.Macros, isOffDay bool) Progress {
	totals, count := entries.TotalsFor(date)
	return Progress{
		Date:      date,
		Totals:    totals,
		MealCount: count,
		Targets:   targets,
		Percentage: nutrition.Macros{
			Calories: percentOf(totals.Calories, targets.Calories),
			Protein:  percentOf(totals.Protein, targets.Protein),
			Carbs:    percentOf(totals.Carbs, targets.Carbs),
			Fats:     percentOf(totals.Fats, targets.Fats),
		},
		Remaining: nutrition.Macros{
			Calories: targets.Calories - totals.Calories,
			Protein:  targets.Protein - totals.Protein,
			Carbs:    targets.Carbs - totals.Carbs,
			Fats:     targets.Fats - totals.Fats,
		},
		DeficitSurplus: totals.Calories - targets.Calories,
		IsOffDay:       isOffDay,
	}
}

// percentOf guards against zero targets: 0%, not NaN.
func percentOf(value, target float64) float64 {
	if target <= 0 {
		return 0
	}
	return value / target * 100
}

// DisplayPercentage clamps a raw percentage to [0, 100] for progress
// bars. Deficit math must use the raw value instead.
func DisplayPercentage(raw float64) float64 {
	if raw < 0 {
		return 0
	}
	if raw > 100 {
		return 100
	}
	return raw
}
