package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/healthy-cookbook/backend/internal/models"
)

func TestKeyNormalizes(t *testing.T) {
	key, err := Key(" monday ", "Dinner")
	require.NoError(t, err)
	assert.Equal(t, "Monday-dinner", key)

	_, err = Key("Funday", "lunch")
	assert.ErrorIs(t, err, ErrUnknownDay)

	_, err = Key("Friday", "brunch")
	assert.ErrorIs(t, err, ErrUnknownMealType)
}

func TestAddReplaceRemove(t *testing.T) {
	p := Plan{}
	require.NoError(t, p.Add("Tuesday", "lunch", Entry{RecipeID: "a", Calories: 320}))
	require.NoError(t, p.Add("tuesday", "LUNCH", Entry{RecipeID: "b", Calories: 195}))

	e, ok := p.Get("Tuesday", "lunch")
	require.True(t, ok)
	assert.Equal(t, "b", e.RecipeID)
	assert.Len(t, p, 1)

	removed, err := p.Remove("Tuesday", "lunch")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = p.Remove("Tuesday", "lunch")
	require.NoError(t, err)
	assert.False(t, removed)

	assert.Error(t, p.Add("Someday", "lunch", Entry{}))
}

func TestWeeklyTotalIsSumOfDays(t *testing.T) {
	p := Plan{}
	cal := 100.0
	for _, d := range Days {
		for _, m := range MealTypes {
			require.NoError(t, p.Add(d, m, Entry{Calories: cal}))
			cal += 17.5
		}
	}
	removed, err := p.Remove("Wednesday", "snack")
	require.NoError(t, err)
	require.True(t, removed)

	var sum float64
	for _, d := range Days {
		sum += p.DayCalories(d)
	}
	assert.InDelta(t, sum, p.WeeklyCalories(), 1e-9)
	assert.InDelta(t, 100+117.5+135+152.5, p.DayCalories("Monday"), 1e-9)
	assert.Zero(t, Plan{}.WeeklyCalories())
	assert.Zero(t, p.DayCalories("Caturday"))
}

func TestWeekDatesAnchorOnMonday(t *testing.T) {
	tests := []struct {
		name string
		day  time.Time
		want time.Time
	}{
		{"monday", time.Date(2024, 3, 4, 15, 0, 0, 0, time.UTC), time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)},
		{"wednesday", time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC), time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)},
		{"sunday", time.Date(2024, 3, 10, 23, 0, 0, 0, time.UTC), time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)},
		{"across month", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 2, 26, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			week := WeekDates(tt.day)
			assert.Equal(t, tt.want, week[0])
			assert.Equal(t, time.Monday, week[0].Weekday())
			assert.Equal(t, time.Sunday, week[6].Weekday())
		})
	}
}

func TestShiftWeekAndLabel(t *testing.T) {
	now := time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "Week of Mar 4 - Mar 10", WeekLabel(now))
	assert.Equal(t, "Week of Mar 11 - Mar 17", WeekLabel(ShiftWeek(now, 1)))
	assert.Equal(t, "Week of Feb 26 - Mar 3", WeekLabel(ShiftWeek(now, -1)))
}

func TestEntryFromRecipe(t *testing.T) {
	r := &models.Recipe{ID: "r1", Title: "Bowl", PrepTime: 10, CookTime: 15, Servings: 2}
	e := EntryFromRecipe(r)
	assert.Equal(t, 25, e.CookingTime)
	assert.Zero(t, e.Calories)

	r.Nutrition = &models.Nutrition{Calories: 320}
	assert.Equal(t, 320.0, EntryFromRecipe(r).Calories)
}
