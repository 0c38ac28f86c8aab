// Package planner holds the weekly meal plan kept on the client side.
package planner

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pageza/healthy-cookbook/backend/internal/models"
)

// Days are ordered Monday first.
var Days = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

var MealTypes = []string{"breakfast", "lunch", "dinner", "snack"}

var (
	ErrUnknownDay      = errors.New("unknown day")
	ErrUnknownMealType = errors.New("unknown meal type")
)

// Entry is the recipe summary stored in a slot.
type Entry struct {
	RecipeID    string  `json:"id"`
	Title       string  `json:"title"`
	Calories    float64 `json:"calories"`
	CookingTime int     `json:"cookingTime"`
	Servings    int     `json:"servings"`
	Image       string  `json:"image,omitempty"`
}

// EntryFromRecipe summarizes a recipe for the plan. Recipes without
// nutrition count as zero calories.
func EntryFromRecipe(r *models.Recipe) Entry {
	e := Entry{
		RecipeID:    r.ID,
		Title:       r.Title,
		CookingTime: r.TotalTime,
		Servings:    r.Servings,
		Image:       r.Image,
	}
	if e.CookingTime == 0 {
		e.CookingTime = r.PrepTime + r.CookTime
	}
	if r.Nutrition != nil {
		e.Calories = r.Nutrition.Calories
	}
	return e
}

// Plan maps "<Day>-<mealType>" to the recipe planned for that slot.
type Plan map[string]Entry

// Key builds the slot key after normalizing day and meal type.
func Key(day, mealType string) (string, error) {
	d, err := normalizeDay(day)
	if err != nil {
		return "", err
	}
	m, err := normalizeMealType(mealType)
	if err != nil {
		return "", err
	}
	return d + "-" + m, nil
}

func normalizeDay(day string) (string, error) {
	for _, d := range Days {
		if strings.EqualFold(d, strings.TrimSpace(day)) {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDay, day)
}

func normalizeMealType(mealType string) (string, error) {
	for _, m := range MealTypes {
		if strings.EqualFold(m, strings.TrimSpace(mealType)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMealType, mealType)
}

// Add puts e in the slot, replacing whatever was planned there.
func (p Plan) Add(day, mealType string, e Entry) error {
	key, err := Key(day, mealType)
	if err != nil {
		return err
	}
	p[key] = e
	return nil
}

// Remove clears the slot and reports whether it held a recipe.
func (p Plan) Remove(day, mealType string) (bool, error) {
	key, err := Key(day, mealType)
	if err != nil {
		return false, err
	}
	_, ok := p[key]
	delete(p, key)
	return ok, nil
}

func (p Plan) Get(day, mealType string) (Entry, bool) {
	key, err := Key(day, mealType)
	if err != nil {
		return Entry{}, false
	}
	e, ok := p[key]
	return e, ok
}

// DayCalories sums the planned meals of one day. Unknown days total zero.
func (p Plan) DayCalories(day string) float64 {
	var total float64
	for _, m := range MealTypes {
		if e, ok := p.Get(day, m); ok {
			total += e.Calories
		}
	}
	return total
}

func (p Plan) WeeklyCalories() float64 {
	var total float64
	for _, d := range Days {
		total += p.DayCalories(d)
	}
	return total
}

// WeekStart returns midnight of the Monday of t's week. Sunday belongs to
// the week that started six days earlier.
func WeekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	y, m, d := t.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, t.Location())
}

// WeekDates returns Monday..Sunday of the week containing t.
func WeekDates(t time.Time) [7]time.Time {
	var week [7]time.Time
	start := WeekStart(t)
	for i := range week {
		y, m, d := start.Date()
		week[i] = time.Date(y, m, d+i, 0, 0, 0, 0, start.Location())
	}
	return week
}

// ShiftWeek moves t by n whole weeks.
func ShiftWeek(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, 7*n)
}

// WeekLabel renders "Week of Jan 2 - Jan 8".
func WeekLabel(t time.Time) string {
	week := WeekDates(t)
	return fmt.Sprintf("Week of %s - %s", week[0].Format("Jan 2"), week[6].Format("Jan 2"))
}
