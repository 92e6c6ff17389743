package nutrition

import (
	"fmt"
	"math"
)

// MealEntry is a logged single-food meal. Derived holds the nutrition
// snapshot taken when the entry was created: portions times the food's
// per-serving values, with calories rounded to the nearest kcal.
// Editing the referenced Food afterwards does not change Derived.
type MealEntry struct {
	ID       int64    `json:"id"`
	FoodID   int64    `json:"food_id"`
	FoodName string   `json:"food_name"`
	Portions float64  `json:"portions"`
	MealType MealType `json:"meal_type"`
	Date     Date     `json:"date"`
	Derived  Macros   `json:"derived"`
	Notes    string   `json:"notes,omitempty"`

	// Pending marks an optimistic local entry whose create has not yet
	// been confirmed by the store. Never set on server responses.
	Pending bool `json:"pending,omitempty"`
}

// NewMealEntry snapshots food's nutrition for the given portion count.
// Portions must be positive.
func NewMealEntry(food Food, portions float64, mealType MealType, date Date) (MealEntry, error) {
	if err := food.Validate(); err != nil {
		return MealEntry{}, err
	}
	if portions <= 0 || math.IsNaN(portions) || math.IsInf(portions, 0) {
		return MealEntry{}, fmt.Errorf("portions must be positive, got %v", portions)
	}
	if !mealType.Valid() {
		return MealEntry{}, fmt.Errorf("unknown meal type %q", mealType)
	}
	derived := food.PerServing.Scale(portions)
	derived.Calories = math.Round(derived.Calories)
	return MealEntry{
		FoodID:   food.ID,
		FoodName: food.Name,
		Portions: portions,
		MealType: mealType,
		Date:     date,
		Derived:  derived,
	}, nil
}

// Ingredient is one component of a multi-ingredient meal. Derived is
// the frozen per-ingredient snapshot: the food's per-100g values
// scaled by Grams/100.
type Ingredient struct {
	FoodID   int64   `json:"food_id"`
	FoodName string  `json:"food_name"`
	Grams    float64 `json:"amount_grams"`
	Derived  Macros  `json:"derived"`
}

// NewIngredient snapshots food's per-100g nutrition for a gram amount.
// Grams must be positive.
func NewIngredient(food Food, grams float64) (Ingredient, error) {
	if err := food.Validate(); err != nil {
		return Ingredient{}, err
	}
	if grams <= 0 || math.IsNaN(grams) || math.IsInf(grams, 0) {
		return Ingredient{}, fmt.Errorf("gram amount must be positive, got %v", grams)
	}
	return Ingredient{
		FoodID:   food.ID,
		FoodName: food.Name,
		Grams:    grams,
		Derived:  food.PerServing.Scale(grams / 100),
	}, nil
}

// MultiIngredientMeal is a logged meal composed of ingredients.
// Ingredient order is preserved. Totals are always recomputed from the
// ingredients, never stored separately, so recomputation is idempotent.
type MultiIngredientMeal struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	MealType    MealType     `json:"meal_type"`
	Date        Date         `json:"date"`
	Ingredients []Ingredient `json:"ingredients"`
	Notes       string       `json:"notes,omitempty"`

	// Pending marks an optimistic local meal (see MealEntry.Pending).
	Pending bool `json:"pending,omitempty"`
}

// NewMultiIngredientMeal validates the meal shell. Ingredients must be
// non-empty and already constructed through NewIngredient.
func NewMultiIngredientMeal(name string, mealType MealType, date Date, ingredients []Ingredient) (MultiIngredientMeal, error) {
	if !mealType.Valid() {
		return MultiIngredientMeal{}, fmt.Errorf("unknown meal type %q", mealType)
	}
	if len(ingredients) == 0 {
		return MultiIngredientMeal{}, fmt.Errorf("at least one ingredient is required")
	}
	return MultiIngredientMeal{
		Name:        name,
		MealType:    mealType,
		Date:        date,
		Ingredients: ingredients,
	}, nil
}

// Totals sums the frozen per-ingredient snapshots.
func (m MultiIngredientMeal) Totals() Macros {
	var total Macros
	for _, ing := range m.Ingredients {
		total = total.Add(ing.Derived)
	}
	return total
}
