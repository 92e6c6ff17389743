// Package refserver is an in-memory nutrition tracker backend speaking
// the same /api/* surface the sync client consumes. It backs end-to-end
// tests and local development when the real deployment is unavailable.
package refserver

import (
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mealtrack/mealsync/internal/nutrition"
)

// Server holds all tracker state in memory, guarded by one mutex.
// It is not durable on purpose; durability on the client side is the
// sync engine's job.
type Server struct {
	mu sync.Mutex

	foods      []nutrition.Food
	meals      []nutrition.MealEntry
	multiMeals []nutrition.MultiIngredientMeal
	offDays    map[nutrition.Date]nutrition.OffDay
	settings   nutrition.Settings
	weight     []nutrition.WeightSample // most recent first

	// lastLogged tracks food usage for the recent-foods endpoint.
	lastLogged map[int64]time.Time

	// seenMutations dedupes replayed writes by idempotency key.
	seenMutations map[string]bool

	nextFoodID  int64
	nextMealID  int64
	nextMultiID int64

	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithNow pins the server clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// New builds an empty server with default settings.
func New(opts ...Option) *Server {
	s := &Server{
		offDays:       make(map[nutrition.Date]nutrition.OffDay),
		settings:      nutrition.DefaultSettings(),
		lastLogged:    make(map[int64]time.Time),
		seenMutations: make(map[string]bool),
		nextFoodID:    1,
		nextMealID:    1,
		nextMultiID:   1,
		now:           time.Now,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes mounts the full API surface on a gin engine.
func (s *Server) Routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")
	{
		api.GET("/foods", s.listFoods)
		api.GET("/foods/favorites", s.listFavoriteFoods)
		api.GET("/foods/recent", s.listRecentFoods)
		api.POST("/foods", s.createFood)
		api.PUT("/foods/:id", s.updateFood)
		api.DELETE("/foods/:id", s.deleteFood)
		api.POST("/foods/:id/favorite", s.toggleFavorite)
		api.POST("/foods/import", s.importFoods)

		api.GET("/meals", s.mealsForRange)
		api.GET("/meals/all", s.mealsForDate)
		api.POST("/meals", s.logMeal)
		api.DELETE("/meals/:id", s.deleteMeal)
		api.POST("/meals/multi", s.logMultiMeal)
		api.DELETE("/meals/multi/:id", s.deleteMultiMeal)

		api.GET("/off-days", s.listOffDays)
		api.POST("/off-days", s.addOffDay)
		api.DELETE("/off-days/:date", s.removeOffDay)

		api.GET("/settings", s.getSettings)
		api.PUT("/settings", s.updateSettings)
		api.PUT("/settings/goal", s.setGoal)

		api.GET("/progress/daily", s.dailyProgress)
		api.GET("/analytics/breakdown", s.breakdown)
		api.GET("/streak", s.streak)

		api.GET("/weight", s.weightHistory)
		api.POST("/weight", s.logWeight)

		api.GET("/export", s.exportAll)
		api.POST("/import", s.importAll)
	}
	return r
}

// today returns the server's current date.
func (s *Server) today() nutrition.Date {
	return nutrition.DateOf(s.now())
}

// dedupe returns true when the request's mutation ID was already
// applied. First sight of an ID records it.
func (s *Server) dedupe(c *gin.Context) bool {
	id := strings.TrimSpace(c.GetHeader("X-Mutation-ID"))
	if id == "" {
		return false
	}
	if s.seenMutations[id] {
		return true
	}
	s.seenMutations[id] = true
	return false
}

// findFood returns the index of the food with the given ID, or -1.
func (s *Server) findFood(id int64) int {
	for i := range s.foods {
		if s.foods[i].ID == id {
			return i
		}
	}
	return -1
}

// offDaysIn returns the off days in [start, end], ordered by date.
func (s *Server) offDaysIn(start, end nutrition.Date) []nutrition.OffDay {
	var out []nutrition.OffDay
	for date, od := range s.offDays {
		if !date.Before(start) && !date.After(end) {
			out = append(out, od)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// mealsIn returns entries in [start, end], preserving log order.
func (s *Server) mealsIn(start, end nutrition.Date) ([]nutrition.MealEntry, []nutrition.MultiIngredientMeal) {
	var meals []nutrition.MealEntry
	for _, m := range s.meals {
		if !m.Date.Before(start) && !m.Date.After(end) {
			meals = append(meals, m)
		}
	}
	var multi []nutrition.MultiIngredientMeal
	for _, m := range s.multiMeals {
		if !m.Date.Before(start) && !m.Date.After(end) {
			multi = append(multi, m)
		}
	}
	return meals, multi
}
