package syncer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/mealtrack/mealsync/internal/api"
	"github.com/mealtrack/mealsync/internal/fetch"
	"github.com/mealtrack/mealsync/internal/nutrition"
	"github.com/mealtrack/mealsync/internal/store"
)

// WriteResult reports how a write was resolved.
type WriteResult struct {
	// Confirmed is true when the store accepted the write directly.
	Confirmed bool
	// Queued is true when the write was accepted locally and will
	// replay on the next sync.
	Queued bool
	// Seq is the queue sequence number when Queued.
	Seq int64
	// Response holds the server response body when Confirmed.
	Response []byte
}

// pendingMealPayload is the queued body for a single-food meal create.
// It is a superset of api.LogMealRequest: the extra food_name and
// derived fields rebuild the optimistic overlay after a restart and
// are ignored by the server.
type pendingMealPayload struct {
	FoodID   int64              `json:"food_id"`
	FoodName string             `json:"food_name,omitempty"`
	Portions float64            `json:"portions"`
	MealType nutrition.MealType `json:"meal_type"`
	Date     nutrition.Date     `json:"date"`
	Notes    string             `json:"notes,omitempty"`
	Derived  nutrition.Macros   `json:"derived"`
}

// pendingMultiMealPayload is the queued body for a multi-meal create.
// nutrition.Ingredient serializes food_id and amount_grams (what the
// server reads) plus the frozen derived snapshot (what the overlay
// reads).
type pendingMultiMealPayload struct {
	Name        string                 `json:"name"`
	MealType    nutrition.MealType     `json:"meal_type"`
	Date        nutrition.Date         `json:"date"`
	Ingredients []nutrition.Ingredient `json:"ingredients"`
	Notes       string                 `json:"notes,omitempty"`
}

// submit implements the write path: direct send when the store is
// reachable, durable enqueue on transient failure. Validation
// rejections of a direct send surface immediately and are not queued;
// the payload never reached an accepted state.
func (o *Orchestrator) submit(ctx context.Context, op store.MutationOp, target string, payload any) (WriteResult, error) {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return WriteResult{}, fmt.Errorf("encode %s %s: %w", op, target, err)
		}
	}

	mutationID := uuid.NewString()
	hdr := http.Header{api.MutationIDHeader: []string{mutationID}}

	res, err := o.selector.Send(ctx, methodFor(op), target, body, hdr)
	if err == nil {
		o.invalidateDerived(ctx, familyFor(target))
		return WriteResult{Confirmed: true, Response: res.Body}, nil
	}
	if !fetch.Transient(err) {
		return WriteResult{}, err
	}

	seq, qErr := o.store.EnqueueMutation(ctx, store.Mutation{
		ID:         mutationID,
		Op:         op,
		Target:     target,
		Payload:    body,
		ClientTime: o.now().UTC(),
	})
	if qErr != nil {
		// Durable enqueue failed too; the write was not accepted.
		return WriteResult{}, fmt.Errorf("queue write after send failure (%v): %w", err, qErr)
	}

	o.logger.Info("write queued for replay", "op", op, "target", target, "seq", seq)
	return WriteResult{Queued: true, Seq: seq}, nil
}

// LogMeal records a single-food meal. The nutrition snapshot is taken
// here, before the write leaves the device.
func (o *Orchestrator) LogMeal(ctx context.Context, food nutrition.Food, portions float64, mealType nutrition.MealType, date nutrition.Date, notes string) (WriteResult, error) {
	entry, err := nutrition.NewMealEntry(food, portions, mealType, date)
	if err != nil {
		return WriteResult{}, err
	}
	return o.submit(ctx, store.OpCreate, "/api/meals", pendingMealPayload{
		FoodID:   food.ID,
		FoodName: entry.FoodName,
		Portions: portions,
		MealType: mealType,
		Date:     date,
		Notes:    notes,
		Derived:  entry.Derived,
	})
}

// LogMultiMeal records a multi-ingredient meal. Ingredients must come
// from nutrition.NewIngredient so their snapshots are already frozen.
func (o *Orchestrator) LogMultiMeal(ctx context.Context, name string, mealType nutrition.MealType, date nutrition.Date, ingredients []nutrition.Ingredient, notes string) (WriteResult, error) {
	meal, err := nutrition.NewMultiIngredientMeal(name, mealType, date, ingredients)
	if err != nil {
		return WriteResult{}, err
	}
	return o.submit(ctx, store.OpCreate, "/api/meals/multi", pendingMultiMealPayload{
		Name:        meal.Name,
		MealType:    meal.MealType,
		Date:        meal.Date,
		Ingredients: meal.Ingredients,
		Notes:       notes,
	})
}

// DeleteMeal removes a single-food entry.
func (o *Orchestrator) DeleteMeal(ctx context.Context, id int64) (WriteResult, error) {
	return o.submit(ctx, store.OpDelete, fmt.Sprintf("/api/meals/%d", id), nil)
}

// DeleteMultiMeal removes a multi-ingredient meal.
func (o *Orchestrator) DeleteMultiMeal(ctx context.Context, id int64) (WriteResult, error) {
	return o.submit(ctx, store.OpDelete, fmt.Sprintf("/api/meals/multi/%d", id), nil)
}

// AddOffDay marks a date as an off day.
func (o *Orchestrator) AddOffDay(ctx context.Context, date nutrition.Date, reason nutrition.OffDayReason, notes string) (WriteResult, error) {
	if !reason.Valid() {
		return WriteResult{}, fmt.Errorf("unknown off-day reason %q", reason)
	}
	return o.submit(ctx, store.OpCreate, "/api/off-days", api.OffDayRequest{Date: date, Reason: reason, Notes: notes})
}

// RemoveOffDay clears a date's off-day marker.
func (o *Orchestrator) RemoveOffDay(ctx context.Context, date nutrition.Date) (WriteResult, error) {
	return o.submit(ctx, store.OpDelete, "/api/off-days/"+string(date), nil)
}

// UpdateSettings replaces the stored settings.
func (o *Orchestrator) UpdateSettings(ctx context.Context, settings nutrition.Settings) (WriteResult, error) {
	return o.submit(ctx, store.OpUpdate, "/api/settings", settings)
}

// SetGoal switches the goal type.
func (o *Orchestrator) SetGoal(ctx context.Context, goal nutrition.GoalType) (WriteResult, error) {
	if !goal.Valid() {
		return WriteResult{}, fmt.Errorf("unknown goal type %q", goal)
	}
	return o.submit(ctx, store.OpUpdate, "/api/settings/goal", api.GoalRequest{Goal: goal})
}

// LogWeight records a weight sample.
func (o *Orchestrator) LogWeight(ctx context.Context, weight float64, date nutrition.Date, notes string) (WriteResult, error) {
	if weight <= 0 {
		return WriteResult{}, fmt.Errorf("weight must be positive, got %v", weight)
	}
	return o.submit(ctx, store.OpCreate, "/api/weight", api.WeightRequest{Weight: weight, Date: date, Notes: notes})
}

// decodePendingMeal rebuilds the optimistic entry from a queued meal
// create. The local ID is the negated sequence number so pending
// entries never collide with server-assigned IDs.
func decodePendingMeal(m store.Mutation) (nutrition.MealEntry, error) {
	var p pendingMealPayload
	if err := json.Unmarshal(m.Payload, &p); err != nil {
		return nutrition.MealEntry{}, fmt.Errorf("decode pending meal %d: %w", m.Seq, err)
	}
	return nutrition.MealEntry{
		ID:       -m.Seq,
		FoodID:   p.FoodID,
		FoodName: p.FoodName,
		Portions: p.Portions,
		MealType: p.MealType,
		Date:     p.Date,
		Derived:  p.Derived,
		Notes:    p.Notes,
		Pending:  true,
	}, nil
}

// decodePendingMultiMeal rebuilds the optimistic multi-meal.
func decodePendingMultiMeal(m store.Mutation) (nutrition.MultiIngredientMeal, error) {
	var p pendingMultiMealPayload
	if err := json.Unmarshal(m.Payload, &p); err != nil {
		return nutrition.MultiIngredientMeal{}, fmt.Errorf("decode pending multi meal %d: %w", m.Seq, err)
	}
	return nutrition.MultiIngredientMeal{
		ID:          -m.Seq,
		Name:        p.Name,
		MealType:    p.MealType,
		Date:        p.Date,
		Ingredients: p.Ingredients,
		Notes:       p.Notes,
		Pending:     true,
	}, nil
}
