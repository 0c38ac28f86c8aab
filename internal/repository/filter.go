package repository

import (
	"strings"

	"github.com/pageza/healthy-cookbook/backend/internal/models"
)

// Match reports whether r satisfies every constraint in f. Stores that
// cannot push a filter down to the database use it directly.
func (f RecipeFilter) Match(r *models.Recipe) bool {
	if f.PublishedOnly && !r.IsPublished {
		return false
	}
	if f.FeaturedOnly && !r.IsFeatured {
		return false
	}
	if f.Category != "" && r.Category != f.Category {
		return false
	}
	if f.Author != "" && r.Author != f.Author {
		return false
	}
	if f.Difficulty != "" && r.Difficulty != f.Difficulty {
		return false
	}
	if f.MaxTime > 0 && r.PrepTime+r.CookTime > f.MaxTime {
		return false
	}
	if f.MinRating > 0 && r.AverageRating < f.MinRating {
		return false
	}
	if len(f.DietaryTags) > 0 && !anyOf(r.DietaryTags, f.DietaryTags) {
		return false
	}
	if len(f.IDs) > 0 && !anyOf([]string{r.ID}, f.IDs) {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(r.Title), q) && !strings.Contains(strings.ToLower(r.Description), q) {
			return false
		}
	}
	return true
}

// Less orders a before b according to f.Sort, falling back to newest first.
// Ties are broken by id so pages are stable.
func (f RecipeFilter) Less(a, b *models.Recipe) bool {
	keys := f.Sort
	if len(keys) == 0 {
		keys = []SortKey{{Field: SortCreatedAt, Desc: true}}
	}
	for _, k := range keys {
		c := compare(k.Field, a, b)
		if c == 0 {
			continue
		}
		if k.Desc {
			return c > 0
		}
		return c < 0
	}
	return a.ID < b.ID
}

func compare(field string, a, b *models.Recipe) int {
	switch field {
	case SortAverageRating:
		return cmpFloat(a.AverageRating, b.AverageRating)
	case SortViews:
		return cmpFloat(float64(a.Views), float64(b.Views))
	case SortTotalTime:
		return cmpFloat(float64(a.TotalTime), float64(b.TotalTime))
	case SortHealthScore:
		return cmpFloat(float64(a.HealthScore), float64(b.HealthScore))
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func anyOf(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

// IsSortField reports whether name is an accepted sort field.
func IsSortField(name string) bool {
	for _, f := range SortFields {
		if f == name {
			return true
		}
	}
	return false
}
