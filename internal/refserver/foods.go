package refserver

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/mealtrack/mealsync/internal/api"
	"github.com/mealtrack/mealsync/internal/nutrition"
)

var nameFolder = cases.Fold()

// foldName normalizes a food name for duplicate detection. Unicode
// forms are normalized before case folding so "Crème" and "Cremé"
// collide.
func foldName(name string) string {
	return nameFolder.String(norm.NFKC.String(strings.TrimSpace(name)))
}

func (s *Server) listFoods(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := foldName(c.Query("q"))
	foods := make([]nutrition.Food, 0, len(s.foods))
	for _, f := range s.foods {
		if query == "" || strings.Contains(foldName(f.Name), query) {
			foods = append(foods, f)
		}
	}
	c.JSON(http.StatusOK, api.FoodsResponse{Foods: foods})
}

func (s *Server) listFavoriteFoods(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var foods []nutrition.Food
	for _, f := range s.foods {
		if f.Favorite {
			foods = append(foods, f)
		}
	}
	c.JSON(http.StatusOK, api.FoodsResponse{Foods: foods})
}

func (s *Server) listRecentFoods(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	limit := 10
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	var foods []nutrition.Food
	for _, f := range s.foods {
		if _, ok := s.lastLogged[f.ID]; ok {
			foods = append(foods, f)
		}
	}
	sort.Slice(foods, func(i, j int) bool {
		return s.lastLogged[foods[i].ID].After(s.lastLogged[foods[j].ID])
	})
	if len(foods) > limit {
		foods = foods[:limit]
	}
	c.JSON(http.StatusOK, api.FoodsResponse{Foods: foods})
}

func (s *Server) createFood(c *gin.Context) {
	var food nutrition.Food
	if err := c.ShouldBindJSON(&food); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dedupe(c) {
		c.JSON(http.StatusCreated, api.FoodResponse{Message: "already applied"})
		return
	}
	if err := food.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	folded := foldName(food.Name)
	for _, existing := range s.foods {
		if foldName(existing.Name) == folded {
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "food already exists: " + existing.Name})
			return
		}
	}

	food.ID = s.nextFoodID
	s.nextFoodID++
	s.foods = append(s.foods, food)
	c.JSON(http.StatusCreated, api.FoodResponse{Food: food, Message: "food created"})
}

func (s *Server) updateFood(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid food id"})
		return
	}
	var food nutrition.Food
	if err := c.ShouldBindJSON(&food); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dedupe(c) {
		c.JSON(http.StatusOK, api.FoodResponse{Message: "already applied"})
		return
	}
	i := s.findFood(id)
	if i < 0 {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "food not found"})
		return
	}
	if err := food.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	food.ID = id
	food.Favorite = s.foods[i].Favorite
	s.foods[i] = food
	c.JSON(http.StatusOK, api.FoodResponse{Food: food, Message: "food updated"})
}

func (s *Server) deleteFood(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid food id"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dedupe(c) {
		c.JSON(http.StatusOK, api.MessageResponse{Message: "already applied"})
		return
	}
	i := s.findFood(id)
	if i < 0 {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "food not found"})
		return
	}

	// Existing log entries keep their frozen snapshots.
	s.foods = append(s.foods[:i], s.foods[i+1:]...)
	delete(s.lastLogged, id)
	c.JSON(http.StatusOK, api.MessageResponse{Message: "food deleted"})
}

func (s *Server) toggleFavorite(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid food id"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dedupe(c) {
		c.JSON(http.StatusOK, api.MessageResponse{Message: "already applied"})
		return
	}
	i := s.findFood(id)
	if i < 0 {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "food not found"})
		return
	}
	s.foods[i].Favorite = !s.foods[i].Favorite
	c.JSON(http.StatusOK, api.MessageResponse{Message: "favorite toggled"})
}

func (s *Server) importFoods(c *gin.Context) {
	var req api.ImportFoodsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	byName := make(map[string]int, len(s.foods))
	for i, f := range s.foods {
		byName[foldName(f.Name)] = i
	}

	var res api.ImportFoodsResponse
	for _, food := range req.Foods {
		if err := food.Validate(); err != nil {
			res.Skipped++
			continue
		}
		folded := foldName(food.Name)
		if i, exists := byName[folded]; exists {
			if req.SkipDuplicates {
				res.Skipped++
				continue
			}
			food.ID = s.foods[i].ID
			food.Favorite = s.foods[i].Favorite
			s.foods[i] = food
			res.Updated++
			continue
		}
		food.ID = s.nextFoodID
		s.nextFoodID++
		s.foods = append(s.foods, food)
		byName[folded] = len(s.foods) - 1
		res.Added++
	}

	c.JSON(http.StatusOK, res)
}
