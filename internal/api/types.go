package api

import (
	"github.com/mealtrack/mealsync/internal/aggregate"
	"github.com/mealtrack/mealsync/internal/nutrition"
)

// Wire shapes for the /api/* persistent-store surface. The same types
// are used by the client and the reference server so the two cannot
// drift apart.

// FoodsResponse wraps food list endpoints.
type FoodsResponse struct {
	Foods []nutrition.Food `json:"foods"`
}

// FoodResponse wraps single-food endpoints.
type FoodResponse struct {
	Food    nutrition.Food `json:"food"`
	Message string         `json:"message,omitempty"`
}

// MealsResponse is the GET /api/meals/all payload: every entry logged
// on a date, both single-food and multi-ingredient.
type MealsResponse struct {
	Date       nutrition.Date                  `json:"date"`
	Meals      []nutrition.MealEntry           `json:"single_logs"`
	MultiMeals []nutrition.MultiIngredientMeal `json:"multi_meals"`
}

// RangeResponse is the GET /api/meals?start=&end= payload.
type RangeResponse struct {
	Start      nutrition.Date                  `json:"start"`
	End        nutrition.Date                  `json:"end"`
	Meals      []nutrition.MealEntry           `json:"meals"`
	MultiMeals []nutrition.MultiIngredientMeal `json:"multi_meals"`
}

// LogMealRequest creates a single-food entry. Date is optional and
// defaults to today on the server.
type LogMealRequest struct {
	FoodID   int64              `json:"food_id"`
	Portions float64            `json:"portions"`
	MealType nutrition.MealType `json:"meal_type"`
	Date     nutrition.Date     `json:"date,omitempty"`
	Notes    string             `json:"notes,omitempty"`
}

// LogMealResponse confirms a created entry.
type LogMealResponse struct {
	LogID   int64  `json:"log_id"`
	Message string `json:"message,omitempty"`
}

// IngredientRequest is one component of a multi-meal create.
type IngredientRequest struct {
	FoodID int64   `json:"food_id"`
	Grams  float64 `json:"amount_grams"`
}

// MultiMealRequest creates a multi-ingredient meal.
type MultiMealRequest struct {
	Name        string              `json:"name"`
	MealType    nutrition.MealType  `json:"meal_type"`
	Date        nutrition.Date      `json:"date,omitempty"`
	Ingredients []IngredientRequest `json:"ingredients"`
	Notes       string              `json:"notes,omitempty"`
}

// MultiMealResponse confirms a created multi-meal.
type MultiMealResponse struct {
	MealID  int64                         `json:"meal_id"`
	Meal    nutrition.MultiIngredientMeal `json:"meal"`
	Message string                        `json:"message,omitempty"`
}

// DailyProgressResponse is the GET /api/progress/daily payload.
type DailyProgressResponse struct {
	Date       nutrition.Date                  `json:"date"`
	Progress   aggregate.Progress              `json:"progress"`
	Meals      []nutrition.MealEntry           `json:"meals"`
	MultiMeals []nutrition.MultiIngredientMeal `json:"multi_meals"`
	OffDay     *nutrition.OffDay               `json:"off_day"`
}

// BreakdownResponse is the GET /api/analytics/breakdown payload.
type BreakdownResponse struct {
	Weeks  []aggregate.PeriodSummary `json:"weeks"`
	Months []aggregate.PeriodSummary `json:"months"`
}

// OffDaysResponse lists off days in a range plus the reason enum.
type OffDaysResponse struct {
	OffDays []nutrition.OffDay        `json:"off_days"`
	Reasons []nutrition.OffDayReason  `json:"reasons"`
}

// OffDayRequest marks a date as an off day.
type OffDayRequest struct {
	Date   nutrition.Date         `json:"date"`
	Reason nutrition.OffDayReason `json:"reason"`
	Notes  string                 `json:"notes,omitempty"`
}

// SettingsResponse is the GET /api/settings payload.
type SettingsResponse struct {
	Settings nutrition.Settings `json:"settings"`
	GoalInfo nutrition.GoalInfo `json:"goal_info"`
}

// GoalRequest switches the goal type.
type GoalRequest struct {
	Goal nutrition.GoalType `json:"goal_type"`
}

// WeightResponse is the GET /api/weight payload, history most recent
// first.
type WeightResponse struct {
	History  []nutrition.WeightSample `json:"history"`
	Progress aggregate.WeightProgress `json:"progress"`
}

// WeightRequest logs a weight sample.
type WeightRequest struct {
	Weight float64        `json:"weight"`
	Date   nutrition.Date `json:"date,omitempty"`
	Notes  string         `json:"notes,omitempty"`
}

// ImportFoodsRequest bulk-imports foods.
type ImportFoodsRequest struct {
	Foods          []nutrition.Food `json:"foods"`
	SkipDuplicates bool             `json:"skip_duplicates"`
}

// ImportFoodsResponse reports the bulk-import outcome.
type ImportFoodsResponse struct {
	Added   int    `json:"added"`
	Skipped int    `json:"skipped"`
	Updated int    `json:"updated"`
	Message string `json:"message,omitempty"`
}

// ExportPayload is the full-database export/import shape.
type ExportPayload struct {
	Foods      []nutrition.Food                `json:"foods"`
	Meals      []nutrition.MealEntry           `json:"meals"`
	MultiMeals []nutrition.MultiIngredientMeal `json:"multi_meals"`
	OffDays    []nutrition.OffDay              `json:"off_days"`
	Settings   nutrition.Settings              `json:"settings"`
	Weight     []nutrition.WeightSample        `json:"weight"`
}

// StreakResponse is the GET /api/streak payload.
type StreakResponse struct {
	Streak int `json:"streak"`
}

// ErrorResponse is the error envelope every endpoint uses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is the generic acknowledgement envelope.
type MessageResponse struct {
	Message string `json:"message"`
}
