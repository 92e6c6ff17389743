package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealtrack/mealsync/internal/fetch"
	"github.com/mealtrack/mealsync/internal/nutrition"
)

// fakeDoer records the requests a client method produces and replays a
// canned response body.
type fakeDoer struct {
	gets      []string
	method    string
	target    string
	body      []byte
	header    http.Header
	response  []byte
	fromCache bool
	err       error
}

func (f *fakeDoer) Get(_ context.Context, target string) (fetch.Result, error) {
	f.gets = append(f.gets, target)
	if f.err != nil {
		return fetch.Result{}, f.err
	}
	return fetch.Result{Body: f.response, StatusCode: http.StatusOK, FromCache: f.fromCache}, nil
}

func (f *fakeDoer) Send(_ context.Context, method, target string, body []byte, hdr http.Header) (fetch.Result, error) {
	f.method, f.target, f.body, f.header = method, target, body, hdr
	if f.err != nil {
		return fetch.Result{}, f.err
	}
	return fetch.Result{Body: f.response, StatusCode: http.StatusOK}, nil
}

func TestReads_TargetsAndCacheFlag(t *testing.T) {
	doer := &fakeDoer{response: []byte(`{}`), fromCache: true}
	client := NewClient(doer)
	ctx := context.Background()

	_, cached, err := client.MealsForDate(ctx, "2026-03-10")
	require.NoError(t, err)
	assert.True(t, cached)

	_, _, err = client.MealsForRange(ctx, "2026-03-01", "2026-03-10")
	require.NoError(t, err)
	_, _, err = client.OffDays(ctx, "2026-03-01", "2026-03-10")
	require.NoError(t, err)
	_, _, err = client.Breakdown(ctx, 4, 3)
	require.NoError(t, err)
	_, _, err = client.Foods(ctx, "chicken breast")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/api/meals/all?date=2026-03-10",
		"/api/meals?start=2026-03-01&end=2026-03-10",
		"/api/off-days?start=2026-03-01&end=2026-03-10",
		"/api/analytics/breakdown?weeks=4&months=3",
		"/api/foods?q=chicken+breast",
	}, doer.gets)
}

func TestLogMeal_SendsIdempotencyHeader(t *testing.T) {
	doer := &fakeDoer{response: []byte(`{"log_id": 42}`)}
	client := NewClient(doer)

	req := LogMealRequest{FoodID: 7, Portions: 1.5, MealType: nutrition.Lunch, Date: "2026-03-10"}
	res, err := client.LogMeal(context.Background(), req, "mut-123")
	require.NoError(t, err)
	assert.Equal(t, int64(42), res.LogID)

	assert.Equal(t, http.MethodPost, doer.method)
	assert.Equal(t, "/api/meals", doer.target)
	assert.Equal(t, "mut-123", doer.header.Get(MutationIDHeader))

	var sent LogMealRequest
	require.NoError(t, json.Unmarshal(doer.body, &sent))
	assert.Equal(t, req, sent)
}

func TestWrites_MethodsAndTargets(t *testing.T) {
	doer := &fakeDoer{response: []byte(`{}`)}
	client := NewClient(doer)
	ctx := context.Background()

	require.NoError(t, client.DeleteMeal(ctx, 9, "m1"))
	assert.Equal(t, http.MethodDelete, doer.method)
	assert.Equal(t, "/api/meals/9", doer.target)

	require.NoError(t, client.DeleteMultiMeal(ctx, 3, "m2"))
	assert.Equal(t, "/api/meals/multi/3", doer.target)

	require.NoError(t, client.RemoveOffDay(ctx, "2026-03-10", "m3"))
	assert.Equal(t, "/api/off-days/2026-03-10", doer.target)

	require.NoError(t, client.SetGoal(ctx, nutrition.GoalCut, "m4"))
	assert.Equal(t, http.MethodPut, doer.method)
	assert.Equal(t, "/api/settings/goal", doer.target)

	require.NoError(t, client.ToggleFavorite(ctx, 4, "m5"))
	assert.Equal(t, "/api/foods/4/favorite", doer.target)
}

func TestWrites_OmitHeaderWithoutMutationID(t *testing.T) {
	doer := &fakeDoer{response: []byte(`{}`)}
	client := NewClient(doer)

	require.NoError(t, client.DeleteMeal(context.Background(), 1, ""))
	assert.Empty(t, doer.header.Get(MutationIDHeader))
}

func TestGet_PropagatesTypedErrors(t *testing.T) {
	doer := &fakeDoer{err: &fetch.Error{Code: fetch.ErrCodeOffline, Message: "no network, no cache"}}
	client := NewClient(doer)

	_, _, err := client.Settings(context.Background())
	assert.True(t, fetch.IsOffline(err))
}

func TestGet_DecodeFailureWrapsTarget(t *testing.T) {
	doer := &fakeDoer{response: []byte(`not json`)}
	client := NewClient(doer)

	_, _, err := client.Streak(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/api/streak")
}
