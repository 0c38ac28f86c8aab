package gormstore

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/healthy-cookbook/backend/internal/models"
	"github.com/pageza/healthy-cookbook/backend/internal/repository"
)

var sortColumns = map[string]string{
	repository.SortCreatedAt:     "created_at",
	repository.SortAverageRating: "average_rating",
	repository.SortViews:         "views",
	repository.SortTotalTime:     "total_time",
	repository.SortHealthScore:   "health_score",
}

type recipeRepository struct {
	db *gorm.DB
}

func NewRecipeRepository(db *gorm.DB) repository.RecipeRepository {
	return &recipeRepository{db: db}
}

func (r *recipeRepository) Create(ctx context.Context, recipe *models.Recipe) error {
	if recipe.ID == "" {
		recipe.ID = models.NewID()
	}
	return translate(r.db.WithContext(ctx).Create(recipe).Error)
}

func (r *recipeRepository) Update(ctx context.Context, recipe *models.Recipe) error {
	return notFoundIfNone(r.db.WithContext(ctx).Model(recipe).Select("*").Updates(recipe))
}

func (r *recipeRepository) Delete(ctx context.Context, id string) error {
	return notFoundIfNone(r.db.WithContext(ctx).Delete(&models.Recipe{}, "id = ?", id))
}

func (r *recipeRepository) FindByID(ctx context.Context, id string) (*models.Recipe, error) {
	var rec models.Recipe
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &rec, nil
}

func (r *recipeRepository) Find(ctx context.Context, filter repository.RecipeFilter) ([]*models.Recipe, int64, error) {
	scope := filterScope(filter)

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Recipe{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	q := r.db.WithContext(ctx).Scopes(scope).Omit("ratings")
	sorts := filter.Sort
	if len(sorts) == 0 {
		sorts = []repository.SortKey{{Field: repository.SortCreatedAt, Desc: true}}
	}
	for _, k := range sorts {
		col, ok := sortColumns[k.Field]
		if !ok {
			continue
		}
		q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: k.Desc})
	}
	q = q.Order("id").Offset(filter.Offset)
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var recipes []*models.Recipe
	if err := q.Find(&recipes).Error; err != nil {
		return nil, 0, translate(err)
	}
	return recipes, total, nil
}

func filterScope(f repository.RecipeFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.PublishedOnly {
			db = db.Where("is_published = ?", true)
		}
		if f.FeaturedOnly {
			db = db.Where("is_featured = ?", true)
		}
		if f.Category != "" {
			db = db.Where("category = ?", f.Category)
		}
		if f.Author != "" {
			db = db.Where("author = ?", f.Author)
		}
		if f.Difficulty != "" {
			db = db.Where("difficulty = ?", f.Difficulty)
		}
		if f.MaxTime > 0 {
			db = db.Where("prep_time + cook_time <= ?", f.MaxTime)
		}
		if f.MinRating > 0 {
			db = db.Where("average_rating >= ?", f.MinRating)
		}
		if len(f.IDs) > 0 {
			db = db.Where("id IN ?", f.IDs)
		}
		if len(f.DietaryTags) > 0 {
			conds := make([]string, len(f.DietaryTags))
			args := make([]interface{}, len(f.DietaryTags))
			for i, tag := range f.DietaryTags {
				conds[i] = `dietary_tags LIKE ? ESCAPE '\'`
				args[i] = jsonContains(tag)
			}
			db = db.Where("("+strings.Join(conds, " OR ")+")", args...)
		}
		if f.Search != "" {
			like := containsPattern(strings.ToLower(f.Search))
			db = db.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`, like, like)
		}
		return db
	}
}

func (r *recipeRepository) IncrementViews(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	return notFoundIfNone(res)
}

func (r *recipeRepository) CountPublishedInCategory(ctx context.Context, categoryID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("category = ? AND is_published = ?", categoryID, true).
		Count(&n).Error
	return n, translate(err)
}

func (r *recipeRepository) FindIDsByAuthor(ctx context.Context, authorID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("author = ?", authorID).
		Order("id").
		Pluck("id", &ids).Error
	return ids, translate(err)
}
