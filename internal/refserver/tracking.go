package refserver

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mealtrack/mealsync/internal/aggregate"
	"github.com/mealtrack/mealsync/internal/api"
	"github.com/mealtrack/mealsync/internal/nutrition"
)

func (s *Server) listOffDays(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start, ok := s.dateParam(c, "start")
	if !ok {
		return
	}
	end, ok := s.dateParam(c, "end")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, api.OffDaysResponse{
		OffDays: s.offDaysIn(start, end),
		Reasons: nutrition.OffDayReasons,
	})
}

func (s *Server) addOffDay(c *gin.Context) {
	var req api.OffDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dedupe(c) {
		c.JSON(http.StatusCreated, api.MessageResponse{Message: "already applied"})
		return
	}
	if _, err := nutrition.ParseDate(string(req.Date)); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid date"})
		return
	}
	if !req.Reason.Valid() {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "unknown off-day reason"})
		return
	}

	// Re-adding replaces the stored reason and notes.
	s.offDays[req.Date] = nutrition.OffDay{Date: req.Date, Reason: req.Reason, Notes: req.Notes}
	c.JSON(http.StatusCreated, api.MessageResponse{Message: "off day recorded"})
}

func (s *Server) removeOffDay(c *gin.Context) {
	date, err := nutrition.ParseDate(c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid date"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dedupe(c) {
		c.JSON(http.StatusOK, api.MessageResponse{Message: "already applied"})
		return
	}
	if _, ok := s.offDays[date]; !ok {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "no off day on " + string(date)})
		return
	}
	delete(s.offDays, date)
	c.JSON(http.StatusOK, api.MessageResponse{Message: "off day removed"})
}

func (s *Server) getSettings(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.JSON(http.StatusOK, api.SettingsResponse{
		Settings: s.settings,
		GoalInfo: s.settings.Goal.Info(),
	})
}

func (s *Server) updateSettings(c *gin.Context) {
	var settings nutrition.Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dedupe(c) {
		c.JSON(http.StatusOK, api.MessageResponse{Message: "already applied"})
		return
	}
	if !settings.Goal.Valid() {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "unknown goal type"})
		return
	}
	if settings.Targets.Calories < 0 || settings.Targets.Protein < 0 ||
		settings.Targets.Carbs < 0 || settings.Targets.Fats < 0 {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "targets must be non-negative"})
		return
	}
	s.settings = settings
	c.JSON(http.StatusOK, api.MessageResponse{Message: "settings updated"})
}

func (s *Server) setGoal(c *gin.Context) {
	var req api.GoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dedupe(c) {
		c.JSON(http.StatusOK, api.MessageResponse{Message: "already applied"})
		return
	}
	if !req.Goal.Valid() {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "unknown goal type"})
		return
	}

	// Re-derive the calorie target from the maintenance baseline so a
	// goal switch replaces the old modifier instead of stacking on it.
	baseline := int(s.settings.Targets.Calories) - s.settings.Goal.Info().CalorieModifier
	s.settings.Goal = req.Goal
	s.settings.Targets.Calories = float64(req.Goal.RecommendedCalories(baseline))
	c.JSON(http.StatusOK, api.MessageResponse{Message: "goal updated"})
}

func (s *Server) dailyProgress(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	date, ok := s.dateParam(c, "date")
	if !ok {
		return
	}
	meals, multi := s.mealsIn(date, date)
	entries := aggregate.Entries{Meals: meals, MultiMeals: multi}

	var offDay *nutrition.OffDay
	if od, isOff := s.offDays[date]; isOff {
		offDay = &od
	}

	c.JSON(http.StatusOK, api.DailyProgressResponse{
		Date:       date,
		Progress:   aggregate.DailyProgress(date, entries, s.settings.Targets, offDay != nil),
		Meals:      meals,
		MultiMeals: multi,
		OffDay:     offDay,
	})
}

func (s *Server) breakdown(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	weeks := intQuery(c, "weeks", 4)
	months := intQuery(c, "months", 3)
	anchor := s.today()

	entries := aggregate.Entries{Meals: s.meals, MultiMeals: s.multiMeals}
	var offDays []nutrition.OffDay
	for _, od := range s.offDays {
		offDays = append(offDays, od)
	}

	c.JSON(http.StatusOK, api.BreakdownResponse{
		Weeks:  aggregate.PeriodBreakdown(aggregate.Week, weeks, anchor, entries, offDays),
		Months: aggregate.PeriodBreakdown(aggregate.Month, months, anchor, entries, offDays),
	})
}

func (s *Server) streak(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := aggregate.Entries{Meals: s.meals, MultiMeals: s.multiMeals}
	var offDays []nutrition.OffDay
	for _, od := range s.offDays {
		offDays = append(offDays, od)
	}
	c.JSON(http.StatusOK, api.StreakResponse{Streak: aggregate.Streak(s.today(), entries, offDays)})
}

func (s *Server) weightHistory(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.weight
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n < len(history) {
			history = history[:n]
		}
	}
	c.JSON(http.StatusOK, api.WeightResponse{
		History:  history,
		Progress: aggregate.WeightTrend(s.weight),
	})
}

func (s *Server) logWeight(c *gin.Context) {
	var req api.WeightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dedupe(c) {
		c.JSON(http.StatusCreated, api.MessageResponse{Message: "already applied"})
		return
	}
	if req.Weight <= 0 {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "weight must be positive"})
		return
	}

	recordedAt := s.now()
	if req.Date != "" {
		date, err := nutrition.ParseDate(string(req.Date))
		if err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid date"})
			return
		}
		recordedAt = date.Time()
	}

	s.weight = append(s.weight, nutrition.WeightSample{
		RecordedAt: recordedAt,
		Weight:     req.Weight,
		Notes:      req.Notes,
	})
	sort.SliceStable(s.weight, func(i, j int) bool {
		return s.weight[i].RecordedAt.After(s.weight[j].RecordedAt)
	})
	c.JSON(http.StatusCreated, api.MessageResponse{Message: "weight logged"})
}

func (s *Server) exportAll(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var offDays []nutrition.OffDay
	for _, od := range s.offDays {
		offDays = append(offDays, od)
	}
	sort.Slice(offDays, func(i, j int) bool { return offDays[i].Date.Before(offDays[j].Date) })

	c.JSON(http.StatusOK, api.ExportPayload{
		Foods:      s.foods,
		Meals:      s.meals,
		MultiMeals: s.multiMeals,
		OffDays:    offDays,
		Settings:   s.settings,
		Weight:     s.weight,
	})
}

func (s *Server) importAll(c *gin.Context) {
	var payload struct {
		api.ExportPayload
		Merge bool `json:"merge"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !payload.Merge {
		s.foods = nil
		s.meals = nil
		s.multiMeals = nil
		s.offDays = make(map[nutrition.Date]nutrition.OffDay)
		s.weight = nil
		s.lastLogged = make(map[int64]time.Time)
	}

	s.foods = append(s.foods, payload.Foods...)
	s.meals = append(s.meals, payload.Meals...)
	s.multiMeals = append(s.multiMeals, payload.MultiMeals...)
	for _, od := range payload.OffDays {
		s.offDays[od.Date] = od
	}
	s.weight = append(s.weight, payload.Weight...)
	sort.SliceStable(s.weight, func(i, j int) bool {
		return s.weight[i].RecordedAt.After(s.weight[j].RecordedAt)
	})
	if payload.Settings.Goal != "" {
		s.settings = payload.Settings
	}

	// Advance the ID counters past every imported ID.
	for i := range s.foods {
		if s.foods[i].ID >= s.nextFoodID {
			s.nextFoodID = s.foods[i].ID + 1
		}
	}
	for i := range s.meals {
		if s.meals[i].ID >= s.nextMealID {
			s.nextMealID = s.meals[i].ID + 1
		}
	}
	for i := range s.multiMeals {
		if s.multiMeals[i].ID >= s.nextMultiID {
			s.nextMultiID = s.multiMeals[i].ID + 1
		}
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "import complete"})
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
