package refserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mealtrack/mealsync/internal/api"
	"github.com/mealtrack/mealsync/internal/nutrition"
)

// dateParam parses a query date, defaulting to today when absent.
func (s *Server) dateParam(c *gin.Context, key string) (nutrition.Date, bool) {
	raw := c.Query(key)
	if raw == "" {
		return s.today(), true
	}
	date, err := nutrition.ParseDate(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid date: " + raw})
		return "", false
	}
	return date, true
}

func (s *Server) mealsForDate(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	date, ok := s.dateParam(c, "date")
	if !ok {
		return
	}
	meals, multi := s.mealsIn(date, date)
	c.JSON(http.StatusOK, api.MealsResponse{Date: date, Meals: meals, MultiMeals: multi})
}

func (s *Server) mealsForRange(c *gin.Context) {
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
	if end.Before(start) {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "end date precedes start date"})
		return
	}
	meals, multi := s.mealsIn(start, end)
	c.JSON(http.StatusOK, api.RangeResponse{Start: start, End: end, Meals: meals, MultiMeals: multi})
}

func (s *Server) logMeal(c *gin.Context) {
	var req api.LogMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dedupe(c) {
		c.JSON(http.StatusCreated, api.LogMealResponse{Message: "already applied"})
		return
	}

	i := s.findFood(req.FoodID)
	if i < 0 {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "unknown food"})
		return
	}
	date := req.Date
	if date == "" {
		date = s.today()
	}
	entry, err := nutrition.NewMealEntry(s.foods[i], req.Portions, req.MealType, date)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	entry.ID = s.nextMealID
	entry.Notes = req.Notes
	s.nextMealID++
	s.meals = append(s.meals, entry)
	s.lastLogged[req.FoodID] = s.now()

	c.JSON(http.StatusCreated, api.LogMealResponse{LogID: entry.ID, Message: "meal logged"})
}

func (s *Server) deleteMeal(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid meal id"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dedupe(c) {
		c.JSON(http.StatusOK, api.MessageResponse{Message: "already applied"})
		return
	}

	for i, m := range s.meals {
		if m.ID == id {
			s.meals = append(s.meals[:i], s.meals[i+1:]...)
			c.JSON(http.StatusOK, api.MessageResponse{Message: "meal deleted"})
			return
		}
	}
	c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "meal not found"})
}

func (s *Server) logMultiMeal(c *gin.Context) {
	var req api.MultiMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dedupe(c) {
		c.JSON(http.StatusCreated, api.MultiMealResponse{Message: "already applied"})
		return
	}

	date := req.Date
	if date == "" {
		date = s.today()
	}
	ingredients := make([]nutrition.Ingredient, 0, len(req.Ingredients))
	for _, ing := range req.Ingredients {
		i := s.findFood(ing.FoodID)
		if i < 0 {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "unknown food in ingredients"})
			return
		}
		built, err := nutrition.NewIngredient(s.foods[i], ing.Grams)
		if err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
			return
		}
		ingredients = append(ingredients, built)
		s.lastLogged[ing.FoodID] = s.now()
	}

	meal, err := nutrition.NewMultiIngredientMeal(req.Name, req.MealType, date, ingredients)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	meal.ID = s.nextMultiID
	meal.Notes = req.Notes
	s.nextMultiID++
	s.multiMeals = append(s.multiMeals, meal)

	c.JSON(http.StatusCreated, api.MultiMealResponse{MealID: meal.ID, Meal: meal, Message: "meal logged"})
}

func (s *Server) deleteMultiMeal(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid meal id"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dedupe(c) {
		c.JSON(http.StatusOK, api.MessageResponse{Message: "already applied"})
		return
	}

	for i, m := range s.multiMeals {
		if m.ID == id {
			s.multiMeals = append(s.multiMeals[:i], s.multiMeals[i+1:]...)
			c.JSON(http.StatusOK, api.MessageResponse{Message: "meal deleted"})
			return
		}
	}
	c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "meal not found"})
}
