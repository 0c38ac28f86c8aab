// Package memory implements the repositories in process memory. It backs
// the "memory" store driver and the service tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/pageza/healthy-cookbook/backend/internal/models"
	"github.com/pageza/healthy-cookbook/backend/internal/repository"
)

// NewStore returns an empty in-memory store.
func NewStore() *repository.Store {
	return &repository.Store{
		Users:      NewUserRepository(),
		Categories: NewCategoryRepository(),
		Recipes:    NewRecipeRepository(),
	}
}

type userRepository struct {
	users map[string]*models.User
	mutex sync.RWMutex
}

func NewUserRepository() repository.UserRepository {
	return &userRepository{users: make(map[string]*models.User)}
}

func (r *userRepository) Create(_ context.Context, user *models.User) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if user.ID == "" {
		user.ID = models.NewID()
	}
	if _, exists := r.users[user.ID]; exists {
		return repository.ErrDuplicate
	}
	for _, u := range r.users {
		if u.Email == user.Email || u.Username == user.Username {
			return repository.ErrDuplicate
		}
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *userRepository) Update(_ context.Context, user *models.User) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.users[user.ID]; !exists {
		return repository.ErrNotFound
	}
	for id, u := range r.users {
		if id != user.ID && (u.Email == user.Email || u.Username == user.Username) {
			return repository.ErrDuplicate
		}
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *userRepository) Delete(_ context.Context, id string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.users[id]; !exists {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *userRepository) FindByID(_ context.Context, id string) (*models.User, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, repository.ErrNotFound
}

func (r *userRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	return r.findOne(func(u *models.User) bool { return u.Email == strings.ToLower(email) })
}

func (r *userRepository) FindByUsername(_ context.Context, username string) (*models.User, error) {
	return r.findOne(func(u *models.User) bool { return u.Username == username })
}

func (r *userRepository) findOne(match func(*models.User) bool) (*models.User, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, u := range r.users {
		if match(u) {
			return cloneUser(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepository) List(_ context.Context, filter repository.UserFilter) ([]*models.User, int64, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	q := strings.ToLower(filter.Search)
	var matched []*models.User
	for _, u := range r.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(u.Username), q) && !strings.Contains(u.Email, q) {
			continue
		}
		matched = append(matched, u)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	page := paginate(len(matched), filter.Offset, filter.Limit)
	out := make([]*models.User, 0, page.end-page.start)
	for _, u := range matched[page.start:page.end] {
		out = append(out, cloneUser(u))
	}
	return out, total, nil
}

func (r *userRepository) PullFavorites(_ context.Context, recipeIDs ...string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for _, u := range r.users {
		for _, id := range recipeIDs {
			u.RemoveFavorite(id)
		}
	}
	return nil
}

type categoryRepository struct {
	categories map[string]*models.Category
	mutex      sync.RWMutex
}

func NewCategoryRepository() repository.CategoryRepository {
	return &categoryRepository{categories: make(map[string]*models.Category)}
}

func (r *categoryRepository) Create(_ context.Context, category *models.Category) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if category.ID == "" {
		category.ID = models.NewID()
	}
	for _, c := range r.categories {
		if c.ID == category.ID || strings.EqualFold(c.Name, category.Name) {
			return repository.ErrDuplicate
		}
	}
	c := *category
	r.categories[category.ID] = &c
	return nil
}

func (r *categoryRepository) Update(_ context.Context, category *models.Category) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.categories[category.ID]; !exists {
		return repository.ErrNotFound
	}
	for id, c := range r.categories {
		if id != category.ID && strings.EqualFold(c.Name, category.Name) {
			return repository.ErrDuplicate
		}
	}
	c := *category
	r.categories[category.ID] = &c
	return nil
}

func (r *categoryRepository) Delete(_ context.Context, id string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.categories[id]; !exists {
		return repository.ErrNotFound
	}
	delete(r.categories, id)
	return nil
}

func (r *categoryRepository) FindByID(_ context.Context, id string) (*models.Category, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if c, ok := r.categories[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (r *categoryRepository) FindByName(_ context.Context, name string) (*models.Category, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, c := range r.categories {
		if strings.EqualFold(c.Name, strings.TrimSpace(name)) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *categoryRepository) List(_ context.Context, activeOnly bool) ([]*models.Category, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	out := make([]*models.Category, 0, len(r.categories))
	for _, c := range r.categories {
		if activeOnly && !c.IsActive {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *categoryRepository) SetRecipeCount(_ context.Context, id string, count int64) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	c, ok := r.categories[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.RecipeCount = count
	return nil
}

type recipeRepository struct {
	recipes map[string]*models.Recipe
	mutex   sync.RWMutex
}

func NewRecipeRepository() repository.RecipeRepository {
	return &recipeRepository{recipes: make(map[string]*models.Recipe)}
}

func (r *recipeRepository) Create(_ context.Context, recipe *models.Recipe) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if recipe.ID == "" {
		recipe.ID = models.NewID()
	}
	if _, exists := r.recipes[recipe.ID]; exists {
		return repository.ErrDuplicate
	}
	r.recipes[recipe.ID] = cloneRecipe(recipe)
	return nil
}

func (r *recipeRepository) Update(_ context.Context, recipe *models.Recipe) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.recipes[recipe.ID]; !exists {
		return repository.ErrNotFound
	}
	r.recipes[recipe.ID] = cloneRecipe(recipe)
	return nil
}

func (r *recipeRepository) Delete(_ context.Context, id string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.recipes[id]; !exists {
		return repository.ErrNotFound
	}
	delete(r.recipes, id)
	return nil
}

func (r *recipeRepository) FindByID(_ context.Context, id string) (*models.Recipe, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if rec, ok := r.recipes[id]; ok {
		return cloneRecipe(rec), nil
	}
	return nil, repository.ErrNotFound
}

func (r *recipeRepository) Find(_ context.Context, filter repository.RecipeFilter) ([]*models.Recipe, int64, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var matched []*models.Recipe
	for _, rec := range r.recipes {
		if filter.Match(rec) {
			matched = append(matched, rec)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool { return filter.Less(matched[i], matched[j]) })

	total := int64(len(matched))
	page := paginate(len(matched), filter.Offset, filter.Limit)
	out := make([]*models.Recipe, 0, page.end-page.start)
	for _, rec := range matched[page.start:page.end] {
		cp := cloneRecipe(rec)
		cp.Ratings = nil
		out = append(out, cp)
	}
	return out, total, nil
}

func (r *recipeRepository) IncrementViews(_ context.Context, id string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	rec, ok := r.recipes[id]
	if !ok {
		return repository.ErrNotFound
	}
	rec.Views++
	return nil
}

func (r *recipeRepository) CountPublishedInCategory(_ context.Context, categoryID string) (int64, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var n int64
	for _, rec := range r.recipes {
		if rec.Category == categoryID && rec.IsPublished {
			n++
		}
	}
	return n, nil
}

func (r *recipeRepository) FindIDsByAuthor(_ context.Context, authorID string) ([]string, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var ids []string
	for id, rec := range r.recipes {
		if rec.Author == authorID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

type window struct{ start, end int }

func paginate(n, offset, limit int) window {
	if offset < 0 {
		offset = 0
	}
	if offset > n {
		offset = n
	}
	end := n
	if limit > 0 && offset+limit < n {
		end = offset + limit
	}
	return window{start: offset, end: end}
}

func cloneUser(u *models.User) *models.User {
	cp := *u
	cp.DietaryPreferences = append([]string(nil), u.DietaryPreferences...)
	cp.Allergies = append([]string(nil), u.Allergies...)
	cp.FavoriteRecipes = append([]string{}, u.FavoriteRecipes...)
	cp.CreatedRecipes = append([]string{}, u.CreatedRecipes...)
	return &cp
}

func cloneRecipe(rec *models.Recipe) *models.Recipe {
	cp := *rec
	cp.Ingredients = append([]models.Ingredient(nil), rec.Ingredients...)
	cp.Instructions = append([]models.Instruction(nil), rec.Instructions...)
	cp.DietaryTags = append([]string{}, rec.DietaryTags...)
	cp.Ratings = append([]models.Rating{}, rec.Ratings...)
	if rec.Nutrition != nil {
		n := *rec.Nutrition
		cp.Nutrition = &n
	}
	return &cp
}
