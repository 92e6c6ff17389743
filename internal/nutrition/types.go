package nutrition

import (
	"fmt"
	"time"
)

// Macros holds the four tracked nutrition values. Calories are kcal,
// the rest are grams.
type Macros struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
}

// Add returns the element-wise sum of m and other.
func (m Macros) Add(other Macros) Macros {
	return Macros{
		Calories: m.Calories + other.Calories,
		Protein:  m.Protein + other.Protein,
		Carbs:    m.Carbs + other.Carbs,
		Fats:     m.Fats + other.Fats,
	}
}

// Scale returns m with every value multiplied by factor.
func (m Macros) Scale(factor float64) Macros {
	return Macros{
		Calories: m.Calories * factor,
		Protein:  m.Protein * factor,
		Carbs:    m.Carbs * factor,
		Fats:     m.Fats * factor,
	}
}

// IsZero reports whether all four values are exactly zero.
func (m Macros) IsZero() bool {
	return m == Macros{}
}

// Food is a nutrition record. The macro values are per reference
// serving: per labeled serving for single-food entries, per 100g when
// the food is used as an ingredient in a multi-ingredient meal.
type Food struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	PerServing  Macros  `json:"per_serving"`
	ServingSize string  `json:"serving_size"`
	Favorite    bool    `json:"is_favorite"`
}

// Validate rejects foods with no name or negative nutrition values.
func (f Food) Validate() error {
	if f.Name == "" {
		return fmt.Errorf("food name is required")
	}
	if f.PerServing.Calories < 0 || f.PerServing.Protein < 0 ||
		f.PerServing.Carbs < 0 || f.PerServing.Fats < 0 {
		return fmt.Errorf("food %q: nutrition values must be non-negative", f.Name)
	}
	return nil
}

// MealType tags an entry with the meal it belongs to.
type MealType string

const (
	Breakfast MealType = "breakfast"
	Lunch     MealType = "lunch"
	Dinner    MealType = "dinner"
	Snack     MealType = "snack"
)

// MealTypes lists all valid meal types in display order.
var MealTypes = []MealType{Breakfast, Lunch, Dinner, Snack}

// Valid reports whether t is one of the known meal types.
func (t MealType) Valid() bool {
	switch t {
	case Breakfast, Lunch, Dinner, Snack:
		return true
	}
	return false
}

// OffDayReason categorizes why a date is excluded from tracking.
type OffDayReason string

const (
	ReasonHoliday     OffDayReason = "holiday"
	ReasonWeekend     OffDayReason = "weekend"
	ReasonDinnerOut   OffDayReason = "dinner with friends"
	ReasonSpecialDate OffDayReason = "special date"
	ReasonTravel      OffDayReason = "travel"
	ReasonParty       OffDayReason = "party"
	ReasonOther       OffDayReason = "other"
)

// OffDayReasons lists the closed reason enumeration. Free text goes in
// OffDay.Notes; Reason always comes from this set.
var OffDayReasons = []OffDayReason{
	ReasonHoliday,
	ReasonWeekend,
	ReasonDinnerOut,
	ReasonSpecialDate,
	ReasonTravel,
	ReasonParty,
	ReasonOther,
}

// Valid reports whether r is one of the known reasons.
func (r OffDayReason) Valid() bool {
	for _, known := range OffDayReasons {
		if r == known {
			return true
		}
	}
	return false
}

// OffDay excludes a single date from tracked-day denominators.
// At most one OffDay exists per date.
type OffDay struct {
	Date   Date         `json:"date"`
	Reason OffDayReason `json:"reason"`
	Notes  string       `json:"notes,omitempty"`
}

// GoalType selects the calorie strategy relative to maintenance.
type GoalType string

const (
	GoalBulk     GoalType = "bulk"
	GoalCut      GoalType = "cut"
	GoalMaintain GoalType = "maintain"
)

// GoalInfo describes a goal type's calorie and protein guidance.
type GoalInfo struct {
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	CalorieModifier int     `json:"calorie_modifier"`
	ProteinPerLb    float64 `json:"protein_per_lb"`
}

var goalInfos = map[GoalType]GoalInfo{
	GoalBulk: {
		Name:            "Bulking",
		Description:     "Gain muscle mass with calorie surplus",
		CalorieModifier: 300,
		ProteinPerLb:    1.0,
	},
	GoalCut: {
		Name:            "Cutting",
		Description:     "Lose fat with calorie deficit",
		CalorieModifier: -500,
		ProteinPerLb:    1.2,
	},
	GoalMaintain: {
		Name:            "Maintenance",
		Description:     "Maintain current weight",
		CalorieModifier: 0,
		ProteinPerLb:    0.8,
	},
}

// Valid reports whether g is a known goal type.
func (g GoalType) Valid() bool {
	_, ok := goalInfos[g]
	return ok
}

// Info returns the guidance for g. Unknown goal types fall back to
// maintenance, matching the behavior of reads before any goal was set.
func (g GoalType) Info() GoalInfo {
	if info, ok := goalInfos[g]; ok {
		return info
	}
	return goalInfos[GoalMaintain]
}

// RecommendedCalories applies g's modifier to a maintenance baseline.
func (g GoalType) RecommendedCalories(baseline int) int {
	return baseline + g.Info().CalorieModifier
}

// Settings holds the user's goal and daily targets. Targets may be
// overridden independently of the goal type.
type Settings struct {
	Goal    GoalType `json:"goal_type"`
	Targets Macros   `json:"targets"`
}

// DefaultSettings mirrors the defaults of a fresh install.
func DefaultSettings() Settings {
	return Settings{
		Goal: GoalMaintain,
		Targets: Macros{
			Calories: 2000,
			Protein:  150,
			Carbs:    200,
			Fats:     65,
		},
	}
}

// WeightSample is a single weight measurement. Samples are ordered
// chronologically and used only for display and deltas, never in
// nutrition aggregation.
type WeightSample struct {
	RecordedAt time.Time `json:"recorded_at"`
	Weight     float64   `json:"weight"`
	Notes      string    `json:"notes,omitempty"`
}
