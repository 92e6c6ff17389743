package refserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealtrack/mealsync/internal/api"
	"github.com/mealtrack/mealsync/internal/nutrition"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testClient struct {
	t      *testing.T
	router *gin.Engine
}

func newTestClient(t *testing.T) *testClient {
	t.Helper()
	srv := New(WithNow(func() time.Time {
		return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	}))
	return &testClient{t: t, router: srv.Routes()}
}

func (tc *testClient) do(method, target string, body any, out any) int {
	tc.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(tc.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Mutation-ID", uuid.NewString())
	w := httptest.NewRecorder()
	tc.router.ServeHTTP(w, req)
	if out != nil && w.Code < 300 {
		require.NoError(tc.t, json.Unmarshal(w.Body.Bytes(), out))
	}
	return w.Code
}

func (tc *testClient) addFood(name string, macros nutrition.Macros) nutrition.Food {
	tc.t.Helper()
	var res api.FoodResponse
	code := tc.do(http.MethodPost, "/api/foods", nutrition.Food{
		Name: name, PerServing: macros, ServingSize: "100g",
	}, &res)
	require.Equal(tc.t, http.StatusCreated, code)
	return res.Food
}

func (tc *testClient) logMeal(foodID int64, portions float64, mealType nutrition.MealType, date nutrition.Date) int64 {
	tc.t.Helper()
	var res api.LogMealResponse
	code := tc.do(http.MethodPost, "/api/meals", api.LogMealRequest{
		FoodID: foodID, Portions: portions, MealType: mealType, Date: date,
	}, &res)
	require.Equal(tc.t, http.StatusCreated, code)
	return res.LogID
}

func TestLogMealAndDailyProgress(t *testing.T) {
	tc := newTestClient(t)
	food := tc.addFood("Oats", nutrition.Macros{Calories: 200, Protein: 7, Carbs: 34, Fats: 4})

	tc.logMeal(food.ID, 1, nutrition.Breakfast, "2026-03-10")
	tc.logMeal(food.ID, 1, nutrition.Lunch, "2026-03-10")
	tc.logMeal(food.ID, 1, nutrition.Dinner, "2026-03-10")

	var res api.DailyProgressResponse
	code := tc.do(http.MethodGet, "/api/progress/daily?date=2026-03-10", nil, &res)
	require.Equal(t, http.StatusOK, code)

	assert.InDelta(t, 600, res.Progress.Totals.Calories, 0.001)
	assert.Equal(t, 3, res.Progress.MealCount)
	assert.InDelta(t, 30, res.Progress.Percentage.Calories, 0.001)
	assert.Len(t, res.Meals, 3)
}

func TestMultiMeal_IngredientsScalePer100g(t *testing.T) {
	tc := newTestClient(t)
	rice := tc.addFood("Rice", nutrition.Macros{Calories: 100, Protein: 2, Carbs: 22, Fats: 0.3})
	beef := tc.addFood("Beef", nutrition.Macros{Calories: 300, Protein: 26, Carbs: 0, Fats: 20})

	var res api.MultiMealResponse
	code := tc.do(http.MethodPost, "/api/meals/multi", api.MultiMealRequest{
		Name:     "Rice bowl",
		MealType: nutrition.Dinner,
		Date:     "2026-03-10",
		Ingredients: []api.IngredientRequest{
			{FoodID: rice.ID, Grams: 150},
			{FoodID: beef.ID, Grams: 50},
		},
	}, &res)
	require.Equal(t, http.StatusCreated, code)

	totals := res.Meal.Totals()
	assert.InDelta(t, 300, totals.Calories, 0.001)
}

func TestDuplicateMutationID_AppliedOnce(t *testing.T) {
	tc := newTestClient(t)
	food := tc.addFood("Eggs", nutrition.Macros{Calories: 155, Protein: 13, Carbs: 1.1, Fats: 11})

	body, err := json.Marshal(api.LogMealRequest{
		FoodID: food.ID, Portions: 1, MealType: nutrition.Breakfast, Date: "2026-03-10",
	})
	require.NoError(t, err)

	mutationID := uuid.NewString()
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/meals", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Mutation-ID", mutationID)
		w := httptest.NewRecorder()
		tc.router.ServeHTTP(w, req)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	var res api.MealsResponse
	code := tc.do(http.MethodGet, "/api/meals/all?date=2026-03-10", nil, &res)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, res.Meals, 1, "replayed mutation must apply once")
}

func TestOffDayLifecycle(t *testing.T) {
	tc := newTestClient(t)

	code := tc.do(http.MethodPost, "/api/off-days", api.OffDayRequest{
		Date: "2026-03-10", Reason: nutrition.ReasonHoliday,
	}, nil)
	require.Equal(t, http.StatusCreated, code)

	code = tc.do(http.MethodPost, "/api/off-days", api.OffDayRequest{
		Date: "2026-03-11", Reason: "not a reason",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	var res api.OffDaysResponse
	code = tc.do(http.MethodGet, "/api/off-days?start=2026-03-01&end=2026-03-31", nil, &res)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, res.OffDays, 1)
	assert.Equal(t, nutrition.ReasonHoliday, res.OffDays[0].Reason)
	assert.Equal(t, nutrition.OffDayReasons, res.Reasons)

	var progress api.DailyProgressResponse
	code = tc.do(http.MethodGet, "/api/progress/daily?date=2026-03-10", nil, &progress)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, progress.Progress.IsOffDay)

	code = tc.do(http.MethodDelete, "/api/off-days/2026-03-10", nil, nil)
	require.Equal(t, http.StatusOK, code)
	code = tc.do(http.MethodDelete, "/api/off-days/2026-03-10", nil, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestGoalUpdatesSettings(t *testing.T) {
	tc := newTestClient(t)

	code := tc.do(http.MethodPut, "/api/settings/goal", api.GoalRequest{Goal: nutrition.GoalCut}, nil)
	require.Equal(t, http.StatusOK, code)

	var res api.SettingsResponse
	code = tc.do(http.MethodGet, "/api/settings", nil, &res)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, nutrition.GoalCut, res.Settings.Goal)
	assert.Equal(t, -500, res.GoalInfo.CalorieModifier)
	assert.InDelta(t, 1500, res.Settings.Targets.Calories, 0.001, "cut applies -500 to the 2000 kcal baseline")

	// Switching goals replaces the modifier, never stacks it.
	code = tc.do(http.MethodPut, "/api/settings/goal", api.GoalRequest{Goal: nutrition.GoalBulk}, nil)
	require.Equal(t, http.StatusOK, code)

	code = tc.do(http.MethodGet, "/api/settings", nil, &res)
	require.Equal(t, http.StatusOK, code)
	assert.InDelta(t, 2300, res.Settings.Targets.Calories, 0.001)
}

func TestFoodImport_FoldsUnicodeNames(t *testing.T) {
	tc := newTestClient(t)
	tc.addFood("Crème fraîche", nutrition.Macros{Calories: 292, Protein: 2.4, Carbs: 2.9, Fats: 30})

	var res api.ImportFoodsResponse
	code := tc.do(http.MethodPost, "/api/foods/import", api.ImportFoodsRequest{
		Foods: []nutrition.Food{
			// Same name, decomposed accents and different case.
			{Name: "crème fraîche", PerServing: nutrition.Macros{Calories: 300}, ServingSize: "100g"},
			{Name: "Kefir", PerServing: nutrition.Macros{Calories: 41, Protein: 3.4, Carbs: 4.5, Fats: 1}, ServingSize: "100g"},
		},
		SkipDuplicates: true,
	}, &res)
	require.Equal(t, http.StatusOK, code)

	assert.Equal(t, 1, res.Added)
	assert.Equal(t, 1, res.Skipped)

	var foods api.FoodsResponse
	code = tc.do(http.MethodGet, "/api/foods", nil, &foods)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, foods.Foods, 2)
}

func TestFoodSearchAndFavorites(t *testing.T) {
	tc := newTestClient(t)
	oats := tc.addFood("Rolled Oats", nutrition.Macros{Calories: 380})
	tc.addFood("Banana", nutrition.Macros{Calories: 89})

	var res api.FoodsResponse
	code := tc.do(http.MethodGet, "/api/foods?q=oat", nil, &res)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, res.Foods, 1)
	assert.Equal(t, "Rolled Oats", res.Foods[0].Name)

	code = tc.do(http.MethodPost, fmt.Sprintf("/api/foods/%d/favorite", oats.ID), nil, nil)
	require.Equal(t, http.StatusOK, code)

	code = tc.do(http.MethodGet, "/api/foods/favorites", nil, &res)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, res.Foods, 1)
	assert.True(t, res.Foods[0].Favorite)
}

func TestStreak_SkipsOffDays(t *testing.T) {
	tc := newTestClient(t)
	food := tc.addFood("Yogurt", nutrition.Macros{Calories: 59, Protein: 10})

	// Logged today, yesterday off, logged the two days before.
	tc.logMeal(food.ID, 1, nutrition.Breakfast, "2026-03-10")
	code := tc.do(http.MethodPost, "/api/off-days", api.OffDayRequest{
		Date: "2026-03-09", Reason: nutrition.ReasonTravel,
	}, nil)
	require.Equal(t, http.StatusCreated, code)
	tc.logMeal(food.ID, 1, nutrition.Breakfast, "2026-03-08")
	tc.logMeal(food.ID, 1, nutrition.Breakfast, "2026-03-07")

	var res api.StreakResponse
	code = tc.do(http.MethodGet, "/api/streak", nil, &res)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 3, res.Streak)
}

func TestWeightTrend(t *testing.T) {
	tc := newTestClient(t)

	for i, w := range []float64{82.5, 82.1, 81.8} {
		date := nutrition.Date("2026-03-0" + string(rune('1'+i)))
		code := tc.do(http.MethodPost, "/api/weight", api.WeightRequest{Weight: w, Date: date}, nil)
		require.Equal(t, http.StatusCreated, code)
	}

	var res api.WeightResponse
	code := tc.do(http.MethodGet, "/api/weight", nil, &res)
	require.Equal(t, http.StatusOK, code)

	require.Len(t, res.History, 3)
	assert.InDelta(t, 81.8, res.Progress.Current, 0.001)
	assert.InDelta(t, 82.5, res.Progress.Starting, 0.001)
	assert.InDelta(t, -0.7, res.Progress.Change, 0.001)
	assert.True(t, res.Progress.HasData)
}

func TestExportImportRoundTrip(t *testing.T) {
	tc := newTestClient(t)
	food := tc.addFood("Lentils", nutrition.Macros{Calories: 116, Protein: 9, Carbs: 20, Fats: 0.4})
	tc.logMeal(food.ID, 2, nutrition.Lunch, "2026-03-10")

	var export api.ExportPayload
	code := tc.do(http.MethodGet, "/api/export", nil, &export)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, export.Foods, 1)
	require.Len(t, export.Meals, 1)

	fresh := newTestClient(t)
	code = fresh.do(http.MethodPost, "/api/import", export, nil)
	require.Equal(t, http.StatusOK, code)

	var res api.MealsResponse
	code = fresh.do(http.MethodGet, "/api/meals/all?date=2026-03-10", nil, &res)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, res.Meals, 1)
	assert.InDelta(t, 232, res.Meals[0].Derived.Calories, 0.001)
}

func TestDeleteMeal(t *testing.T) {
	tc := newTestClient(t)
	food := tc.addFood("Apple", nutrition.Macros{Calories: 52})
	id := tc.logMeal(food.ID, 1, nutrition.Snack, "2026-03-10")

	code := tc.do(http.MethodDelete, fmt.Sprintf("/api/meals/%d", id), nil, nil)
	require.Equal(t, http.StatusOK, code)
	code = tc.do(http.MethodDelete, fmt.Sprintf("/api/meals/%d", id), nil, nil)
	assert.Equal(t, http.StatusNotFound, code)
}
