package syncer

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/mealtrack/mealsync/internal/aggregate"
	"github.com/mealtrack/mealsync/internal/api"
	"github.com/mealtrack/mealsync/internal/fetch"
	"github.com/mealtrack/mealsync/internal/nutrition"
	"github.com/mealtrack/mealsync/internal/store"
)

// DailyView is the view model for one day: server (or cached) state
// with pending mutations overlaid and aggregates recomputed locally.
type DailyView struct {
	Date       nutrition.Date                  `json:"date"`
	Progress   aggregate.Progress              `json:"progress"`
	Meals      []nutrition.MealEntry           `json:"meals"`
	MultiMeals []nutrition.MultiIngredientMeal `json:"multi_meals"`
	OffDay     *nutrition.OffDay               `json:"off_day"`

	// FromCache is true when the entry set came from the dynamic
	// cache rather than a live response.
	FromCache bool `json:"from_cache"`
	// Offline is true when neither network nor cache had data; the
	// view then contains only pending entries.
	Offline bool `json:"offline"`
	// PendingCount is the number of overlaid unconfirmed mutations.
	PendingCount int `json:"pending_count"`
}

// BreakdownView is the analytics view model, computed locally so it
// reflects pending entries too.
type BreakdownView struct {
	Weeks     []aggregate.PeriodSummary `json:"weeks"`
	Months    []aggregate.PeriodSummary `json:"months"`
	FromCache bool                      `json:"from_cache"`
	Offline   bool                      `json:"offline"`
}

// overlayState is the pending-mutation overlay for some date range.
type overlayState struct {
	meals        []nutrition.MealEntry
	multiMeals   []nutrition.MultiIngredientMeal
	deletedMeals map[int64]bool
	deletedMulti map[int64]bool
	offDays      map[nutrition.Date]*nutrition.OffDay
	removedOff   map[nutrition.Date]bool
	settings     *nutrition.Settings
	goal         *nutrition.GoalType
	count        int
}

// buildOverlay folds the queue, in FIFO order, into an overlay.
// Later mutations win over earlier ones, matching replay order.
func (o *Orchestrator) buildOverlay(ctx context.Context) (*overlayState, error) {
	pending, err := o.store.PendingMutations(ctx)
	if err != nil {
		return nil, err
	}

	ov := &overlayState{
		deletedMeals: make(map[int64]bool),
		deletedMulti: make(map[int64]bool),
		offDays:      make(map[nutrition.Date]*nutrition.OffDay),
		removedOff:   make(map[nutrition.Date]bool),
	}

	for _, m := range pending {
		applied := true
		switch {
		case m.Target == "/api/meals" && m.Op == store.OpCreate:
			entry, err := decodePendingMeal(m)
			if err != nil {
				o.logger.Warn("skipping malformed queued mutation", "seq", m.Seq, "error", err)
				applied = false
				break
			}
			ov.meals = append(ov.meals, entry)
		case m.Target == "/api/meals/multi" && m.Op == store.OpCreate:
			meal, err := decodePendingMultiMeal(m)
			if err != nil {
				o.logger.Warn("skipping malformed queued mutation", "seq", m.Seq, "error", err)
				applied = false
				break
			}
			ov.multiMeals = append(ov.multiMeals, meal)
		case strings.HasPrefix(m.Target, "/api/meals/multi/") && m.Op == store.OpDelete:
			if id, err := strconv.ParseInt(strings.TrimPrefix(m.Target, "/api/meals/multi/"), 10, 64); err == nil {
				ov.deletedMulti[id] = true
			}
		case strings.HasPrefix(m.Target, "/api/meals/") && m.Op == store.OpDelete:
			if id, err := strconv.ParseInt(strings.TrimPrefix(m.Target, "/api/meals/"), 10, 64); err == nil {
				ov.deletedMeals[id] = true
			}
		case m.Target == "/api/off-days" && m.Op == store.OpCreate:
			var req api.OffDayRequest
			if err := json.Unmarshal(m.Payload, &req); err == nil {
				ov.offDays[req.Date] = &nutrition.OffDay{Date: req.Date, Reason: req.Reason, Notes: req.Notes}
				delete(ov.removedOff, req.Date)
			}
		case strings.HasPrefix(m.Target, "/api/off-days/") && m.Op == store.OpDelete:
			date := nutrition.Date(strings.TrimPrefix(m.Target, "/api/off-days/"))
			ov.removedOff[date] = true
			delete(ov.offDays, date)
		case m.Target == "/api/settings" && m.Op == store.OpUpdate:
			var s nutrition.Settings
			if err := json.Unmarshal(m.Payload, &s); err == nil {
				ov.settings = &s
			}
		case m.Target == "/api/settings/goal" && m.Op == store.OpUpdate:
			var req api.GoalRequest
			if err := json.Unmarshal(m.Payload, &req); err == nil {
				ov.goal = &req.Goal
			}
		default:
			// Foods, weight, import: no aggregate overlay needed.
			applied = false
		}
		if applied {
			ov.count++
		}
	}
	return ov, nil
}

// apply merges server entries for [start, end] with the overlay.
func (ov *overlayState) apply(meals []nutrition.MealEntry, multi []nutrition.MultiIngredientMeal, start, end nutrition.Date) ([]nutrition.MealEntry, []nutrition.MultiIngredientMeal) {
	mergedMeals := make([]nutrition.MealEntry, 0, len(meals)+len(ov.meals))
	for _, m := range meals {
		if !ov.deletedMeals[m.ID] {
			mergedMeals = append(mergedMeals, m)
		}
	}
	for _, m := range ov.meals {
		if !m.Date.Before(start) && !m.Date.After(end) {
			mergedMeals = append(mergedMeals, m)
		}
	}

	mergedMulti := make([]nutrition.MultiIngredientMeal, 0, len(multi)+len(ov.multiMeals))
	for _, m := range multi {
		if !ov.deletedMulti[m.ID] {
			mergedMulti = append(mergedMulti, m)
		}
	}
	for _, m := range ov.multiMeals {
		if !m.Date.Before(start) && !m.Date.After(end) {
			mergedMulti = append(mergedMulti, m)
		}
	}
	return mergedMeals, mergedMulti
}

// applyOffDays merges server off days with the overlay for a range.
func (ov *overlayState) applyOffDays(offDays []nutrition.OffDay, start, end nutrition.Date) []nutrition.OffDay {
	merged := make([]nutrition.OffDay, 0, len(offDays)+len(ov.offDays))
	seen := make(map[nutrition.Date]bool)
	for _, od := range offDays {
		if ov.removedOff[od.Date] {
			continue
		}
		if pending, ok := ov.offDays[od.Date]; ok {
			merged = append(merged, *pending)
			seen[od.Date] = true
			continue
		}
		merged = append(merged, od)
		seen[od.Date] = true
	}
	for date, od := range ov.offDays {
		if !seen[date] && !date.Before(start) && !date.After(end) {
			merged = append(merged, *od)
		}
	}
	return merged
}

// settingsOrDefault resolves settings through cache, overlay, and
// finally the install defaults when offline with nothing cached.
func (o *Orchestrator) settingsOrDefault(ctx context.Context, ov *overlayState) nutrition.Settings {
	settings := nutrition.DefaultSettings()
	res, _, err := o.client.Settings(ctx)
	if err == nil {
		settings = res.Settings
	} else if !fetch.IsOffline(err) {
		o.logger.Warn("settings read failed, using defaults", "error", err)
	}
	if ov.settings != nil {
		settings = *ov.settings
	}
	if ov.goal != nil {
		settings.Goal = *ov.goal
	}
	return settings
}

// Daily resolves the daily view for a date. With no network it serves
// cached data; with no cache either, it degrades to a view holding
// only pending entries, marked Offline, rather than failing.
func (o *Orchestrator) Daily(ctx context.Context, date nutrition.Date) (DailyView, error) {
	ov, err := o.buildOverlay(ctx)
	if err != nil {
		return DailyView{}, err
	}

	view := DailyView{Date: date, PendingCount: ov.count}

	var meals []nutrition.MealEntry
	var multi []nutrition.MultiIngredientMeal
	res, fromCache, err := o.client.MealsForDate(ctx, date)
	switch {
	case err == nil:
		meals, multi = res.Meals, res.MultiMeals
		view.FromCache = fromCache
	case fetch.IsOffline(err):
		view.Offline = true
	default:
		return DailyView{}, err
	}

	var offDays []nutrition.OffDay
	odRes, _, err := o.client.OffDays(ctx, date, date)
	if err == nil {
		offDays = odRes.OffDays
	} else if !fetch.IsOffline(err) {
		o.logger.Warn("off-day read failed", "date", date, "error", err)
	}

	view.Meals, view.MultiMeals = ov.apply(meals, multi, date, date)
	merged := ov.applyOffDays(offDays, date, date)
	for i := range merged {
		if merged[i].Date == date {
			view.OffDay = &merged[i]
			break
		}
	}

	settings := o.settingsOrDefault(ctx, ov)
	entries := aggregate.Entries{Meals: view.Meals, MultiMeals: view.MultiMeals}
	view.Progress = aggregate.DailyProgress(date, entries, settings.Targets, view.OffDay != nil)
	return view, nil
}

// Breakdown resolves the weekly/monthly analytics view. Aggregates
// are computed locally over the merged entry set so pending writes
// show up immediately.
func (o *Orchestrator) Breakdown(ctx context.Context, weeks, months int) (BreakdownView, error) {
	if weeks < 0 {
		weeks = 0
	}
	if months < 0 {
		months = 0
	}
	if weeks == 0 && months == 0 {
		return BreakdownView{}, nil
	}

	ov, err := o.buildOverlay(ctx)
	if err != nil {
		return BreakdownView{}, err
	}

	anchor := nutrition.DateOf(o.now())
	start := anchor.AddDays(-7*weeks + 1)
	if months > 0 {
		monthStart := nutrition.DateOf(anchor.MonthStart().Time().AddDate(0, -(months - 1), 0))
		if monthStart.Before(start) {
			start = monthStart
		}
	}

	view := BreakdownView{}

	var meals []nutrition.MealEntry
	var multi []nutrition.MultiIngredientMeal
	res, fromCache, err := o.client.MealsForRange(ctx, start, anchor)
	switch {
	case err == nil:
		meals, multi = res.Meals, res.MultiMeals
		view.FromCache = fromCache
	case fetch.IsOffline(err):
		view.Offline = true
	default:
		return BreakdownView{}, err
	}

	var offDays []nutrition.OffDay
	odRes, _, err := o.client.OffDays(ctx, start, anchor)
	if err == nil {
		offDays = odRes.OffDays
	} else if !fetch.IsOffline(err) {
		o.logger.Warn("off-day read failed", "error", err)
	}

	mergedMeals, mergedMulti := ov.apply(meals, multi, start, anchor)
	mergedOff := ov.applyOffDays(offDays, start, anchor)
	entries := aggregate.Entries{Meals: mergedMeals, MultiMeals: mergedMulti}

	view.Weeks = aggregate.PeriodBreakdown(aggregate.Week, weeks, anchor, entries, mergedOff)
	view.Months = aggregate.PeriodBreakdown(aggregate.Month, months, anchor, entries, mergedOff)
	return view, nil
}

// QueueStatus reports the pending queue for display.
func (o *Orchestrator) QueueStatus(ctx context.Context) ([]store.Mutation, error) {
	return o.store.PendingMutations(ctx)
}
