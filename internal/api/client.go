// Package api is the typed client for the persistent store's REST
// surface. Reads go through the fetch strategy selector, so every GET
// transparently falls back to the dynamic cache when the network is
// down; writes are sent directly and classified failures bubble up to
// the caller (the sync orchestrator decides whether to queue them).
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mealtrack/mealsync/internal/fetch"
	"github.com/mealtrack/mealsync/internal/nutrition"
)

// Doer is the fetch surface the client needs. Implemented by
// *fetch.Selector and by test fakes.
type Doer interface {
	Get(ctx context.Context, target string) (fetch.Result, error)
	Send(ctx context.Context, method, target string, body []byte, hdr http.Header) (fetch.Result, error)
}

// Ensure the real selector satisfies the interface at compile time.
var _ Doer = (*fetch.Selector)(nil)

// MutationIDHeader carries the client-generated idempotency key on
// replayed writes so the store can dedupe a retry of a confirmed
// mutation.
const MutationIDHeader = "X-Mutation-ID"

// Client wraps a Doer with the store's endpoints.
type Client struct {
	doer Doer
}

// NewClient builds a Client over the given fetch surface.
func NewClient(doer Doer) *Client {
	return &Client{doer: doer}
}

// get fetches target and decodes the JSON payload into out.
// The bool result reports whether the payload came from cache.
func (c *Client) get(ctx context.Context, target string, out any) (bool, error) {
	res, err := c.doer.Get(ctx, target)
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(res.Body, out); err != nil {
		return res.FromCache, fmt.Errorf("decode %s: %w", target, err)
	}
	return res.FromCache, nil
}

// send encodes body, performs a mutating request, and decodes the
// response into out when out is non-nil.
func (c *Client) send(ctx context.Context, method, target string, body any, hdr http.Header, out any) error {
	var encoded []byte
	if body != nil {
		var err error
		encoded, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s: %w", target, err)
		}
	}
	res, err := c.doer.Send(ctx, method, target, encoded, hdr)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(res.Body, out); err != nil {
		return fmt.Errorf("decode %s: %w", target, err)
	}
	return nil
}

// MealsForDate returns everything logged on a date.
func (c *Client) MealsForDate(ctx context.Context, date nutrition.Date) (MealsResponse, bool, error) {
	var out MealsResponse
	cached, err := c.get(ctx, "/api/meals/all?date="+url.QueryEscape(string(date)), &out)
	return out, cached, err
}

// MealsForRange returns everything logged in [start, end].
func (c *Client) MealsForRange(ctx context.Context, start, end nutrition.Date) (RangeResponse, bool, error) {
	var out RangeResponse
	target := fmt.Sprintf("/api/meals?start=%s&end=%s", url.QueryEscape(string(start)), url.QueryEscape(string(end)))
	cached, err := c.get(ctx, target, &out)
	return out, cached, err
}

// OffDays returns the off days in [start, end].
func (c *Client) OffDays(ctx context.Context, start, end nutrition.Date) (OffDaysResponse, bool, error) {
	var out OffDaysResponse
	target := fmt.Sprintf("/api/off-days?start=%s&end=%s", url.QueryEscape(string(start)), url.QueryEscape(string(end)))
	cached, err := c.get(ctx, target, &out)
	return out, cached, err
}

// Settings returns the stored settings and current goal info.
func (c *Client) Settings(ctx context.Context) (SettingsResponse, bool, error) {
	var out SettingsResponse
	cached, err := c.get(ctx, "/api/settings", &out)
	return out, cached, err
}

// DailyProgress returns the server-computed daily view.
func (c *Client) DailyProgress(ctx context.Context, date nutrition.Date) (DailyProgressResponse, bool, error) {
	var out DailyProgressResponse
	cached, err := c.get(ctx, "/api/progress/daily?date="+url.QueryEscape(string(date)), &out)
	return out, cached, err
}

// Breakdown returns the server-computed weekly/monthly rollups.
func (c *Client) Breakdown(ctx context.Context, weeks, months int) (BreakdownResponse, bool, error) {
	var out BreakdownResponse
	target := "/api/analytics/breakdown?weeks=" + strconv.Itoa(weeks) + "&months=" + strconv.Itoa(months)
	cached, err := c.get(ctx, target, &out)
	return out, cached, err
}

// Foods lists or searches foods.
func (c *Client) Foods(ctx context.Context, query string) (FoodsResponse, bool, error) {
	target := "/api/foods"
	if query != "" {
		target += "?q=" + url.QueryEscape(query)
	}
	var out FoodsResponse
	cached, err := c.get(ctx, target, &out)
	return out, cached, err
}

// FavoriteFoods lists favorites.
func (c *Client) FavoriteFoods(ctx context.Context) (FoodsResponse, bool, error) {
	var out FoodsResponse
	cached, err := c.get(ctx, "/api/foods/favorites", &out)
	return out, cached, err
}

// RecentFoods lists recently logged foods.
func (c *Client) RecentFoods(ctx context.Context, limit int) (FoodsResponse, bool, error) {
	var out FoodsResponse
	cached, err := c.get(ctx, "/api/foods/recent?limit="+strconv.Itoa(limit), &out)
	return out, cached, err
}

// Weight returns weight history and derived progress.
func (c *Client) Weight(ctx context.Context, limit int) (WeightResponse, bool, error) {
	var out WeightResponse
	cached, err := c.get(ctx, "/api/weight?limit="+strconv.Itoa(limit), &out)
	return out, cached, err
}

// Streak returns the current tracking streak.
func (c *Client) Streak(ctx context.Context) (StreakResponse, bool, error) {
	var out StreakResponse
	cached, err := c.get(ctx, "/api/streak", &out)
	return out, cached, err
}

// Export downloads the full database.
func (c *Client) Export(ctx context.Context) (ExportPayload, bool, error) {
	var out ExportPayload
	cached, err := c.get(ctx, "/api/export", &out)
	return out, cached, err
}

// Import uploads a database export. merge=false replaces everything.
func (c *Client) Import(ctx context.Context, payload ExportPayload, merge bool) error {
	return c.send(ctx, http.MethodPost, "/api/import?merge="+strconv.FormatBool(merge), payload, nil, nil)
}

// mutationHeader builds the idempotency header for a replayed write.
func mutationHeader(mutationID string) http.Header {
	if mutationID == "" {
		return nil
	}
	h := http.Header{}
	h.Set(MutationIDHeader, mutationID)
	return h
}

// LogMeal creates a single-food entry.
func (c *Client) LogMeal(ctx context.Context, req LogMealRequest, mutationID string) (LogMealResponse, error) {
	var out LogMealResponse
	err := c.send(ctx, http.MethodPost, "/api/meals", req, mutationHeader(mutationID), &out)
	return out, err
}

// LogMultiMeal creates a multi-ingredient meal.
func (c *Client) LogMultiMeal(ctx context.Context, req MultiMealRequest, mutationID string) (MultiMealResponse, error) {
	var out MultiMealResponse
	err := c.send(ctx, http.MethodPost, "/api/meals/multi", req, mutationHeader(mutationID), &out)
	return out, err
}

// DeleteMeal removes a single-food entry.
func (c *Client) DeleteMeal(ctx context.Context, id int64, mutationID string) error {
	return c.send(ctx, http.MethodDelete, "/api/meals/"+strconv.FormatInt(id, 10), nil, mutationHeader(mutationID), nil)
}

// DeleteMultiMeal removes a multi-ingredient meal.
func (c *Client) DeleteMultiMeal(ctx context.Context, id int64, mutationID string) error {
	return c.send(ctx, http.MethodDelete, "/api/meals/multi/"+strconv.FormatInt(id, 10), nil, mutationHeader(mutationID), nil)
}

// AddOffDay marks a date as an off day.
func (c *Client) AddOffDay(ctx context.Context, req OffDayRequest, mutationID string) error {
	return c.send(ctx, http.MethodPost, "/api/off-days", req, mutationHeader(mutationID), nil)
}

// RemoveOffDay clears a date's off-day marker.
func (c *Client) RemoveOffDay(ctx context.Context, date nutrition.Date, mutationID string) error {
	return c.send(ctx, http.MethodDelete, "/api/off-days/"+url.PathEscape(string(date)), nil, mutationHeader(mutationID), nil)
}

// UpdateSettings replaces the daily targets.
func (c *Client) UpdateSettings(ctx context.Context, settings nutrition.Settings, mutationID string) error {
	return c.send(ctx, http.MethodPut, "/api/settings", settings, mutationHeader(mutationID), nil)
}

// SetGoal switches the goal type.
func (c *Client) SetGoal(ctx context.Context, goal nutrition.GoalType, mutationID string) error {
	return c.send(ctx, http.MethodPut, "/api/settings/goal", GoalRequest{Goal: goal}, mutationHeader(mutationID), nil)
}

// LogWeight records a weight sample.
func (c *Client) LogWeight(ctx context.Context, req WeightRequest, mutationID string) error {
	return c.send(ctx, http.MethodPost, "/api/weight", req, mutationHeader(mutationID), nil)
}

// CreateFood adds a food record.
func (c *Client) CreateFood(ctx context.Context, food nutrition.Food, mutationID string) (FoodResponse, error) {
	var out FoodResponse
	err := c.send(ctx, http.MethodPost, "/api/foods", food, mutationHeader(mutationID), &out)
	return out, err
}

// UpdateFood edits a food record. Historical entries keep their
// logged-at-time snapshots regardless.
func (c *Client) UpdateFood(ctx context.Context, food nutrition.Food, mutationID string) (FoodResponse, error) {
	var out FoodResponse
	err := c.send(ctx, http.MethodPut, "/api/foods/"+strconv.FormatInt(food.ID, 10), food, mutationHeader(mutationID), &out)
	return out, err
}

// DeleteFood removes a food record.
func (c *Client) DeleteFood(ctx context.Context, id int64, mutationID string) error {
	return c.send(ctx, http.MethodDelete, "/api/foods/"+strconv.FormatInt(id, 10), nil, mutationHeader(mutationID), nil)
}

// ToggleFavorite flips a food's favorite flag.
func (c *Client) ToggleFavorite(ctx context.Context, id int64, mutationID string) error {
	return c.send(ctx, http.MethodPost, "/api/foods/"+strconv.FormatInt(id, 10)+"/favorite", nil, mutationHeader(mutationID), nil)
}

// ImportFoods bulk-imports foods.
func (c *Client) ImportFoods(ctx context.Context, req ImportFoodsRequest) (ImportFoodsResponse, error) {
	var out ImportFoodsResponse
	err := c.send(ctx, http.MethodPost, "/api/foods/import", req, nil, &out)
	return out, err
}
