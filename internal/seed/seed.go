// Package seed loads the demo data set: an admin, sample cooks, the
// standard categories and a handful of rated recipes.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/pageza/healthy-cookbook/backend/internal/cache"
	"github.com/pageza/healthy-cookbook/backend/internal/models"
	"github.com/pageza/healthy-cookbook/backend/internal/repository"
	"github.com/pageza/healthy-cookbook/backend/internal/service"
)

//go:embed fixture.yaml
var defaultFixture []byte

type Account struct {
	Username           string   `yaml:"username"`
	Email              string   `yaml:"email"`
	Password           string   `yaml:"password"`
	FirstName          string   `yaml:"firstName"`
	LastName           string   `yaml:"lastName"`
	Bio                string   `yaml:"bio"`
	DietaryPreferences []string `yaml:"dietaryPreferences"`
}

type Category struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Icon        string `yaml:"icon"`
	Color       string `yaml:"color"`
}

type Ingredient struct {
	Name   string  `yaml:"name"`
	Amount float64 `yaml:"amount"`
	Unit   string  `yaml:"unit"`
	Notes  string  `yaml:"notes"`
}

type Step struct {
	Text    string `yaml:"text"`
	Minutes int    `yaml:"minutes"`
}

type Nutrition struct {
	Calories      float64 `yaml:"calories"`
	Protein       float64 `yaml:"protein"`
	Carbohydrates float64 `yaml:"carbohydrates"`
	Fat           float64 `yaml:"fat"`
	Fiber         float64 `yaml:"fiber"`
	Sugar         float64 `yaml:"sugar"`
	Sodium        float64 `yaml:"sodium"`
}

type Rating struct {
	User    string `yaml:"user"`
	Rating  int    `yaml:"rating"`
	Comment string `yaml:"comment"`
}

type Recipe struct {
	Title       string       `yaml:"title"`
	Description string       `yaml:"description"`
	Image       string       `yaml:"image"`
	Category    string       `yaml:"category"`
	Author      string       `yaml:"author"`
	Featured    bool         `yaml:"featured"`
	Servings    int          `yaml:"servings"`
	PrepTime    int          `yaml:"prepTime"`
	CookTime    int          `yaml:"cookTime"`
	Difficulty  string       `yaml:"difficulty"`
	DietaryTags []string     `yaml:"dietaryTags"`
	Ingredients []Ingredient `yaml:"ingredients"`
	Steps       []Step       `yaml:"steps"`
	Nutrition   *Nutrition   `yaml:"nutrition"`
	Ratings     []Rating     `yaml:"ratings"`
}

// Fixture is the seed data set. Recipes refer to categories by name and to
// users by username.
type Fixture struct {
	Admin      Account    `yaml:"admin"`
	Users      []Account  `yaml:"users"`
	Categories []Category `yaml:"categories"`
	Recipes    []Recipe   `yaml:"recipes"`
}

// DefaultFixture returns the embedded data set.
func DefaultFixture() (*Fixture, error) {
	return ParseFixture(defaultFixture)
}

func ParseFixture(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed fixture: %w", err)
	}
	return &f, nil
}

// Summary counts what Run created.
type Summary struct {
	Users      int
	Categories int
	Recipes    int
	Ratings    int
}

type Seeder struct {
	store *repository.Store
	log   *zap.Logger
	cost  int
}

func New(store *repository.Store, log *zap.Logger) *Seeder {
	return &Seeder{store: store, log: log, cost: bcrypt.DefaultCost}
}

// WithHashCost lowers the bcrypt cost for tests.
func (s *Seeder) WithHashCost(cost int) *Seeder {
	s.cost = cost
	return s
}

// Wipe deletes every recipe, category and user.
func (s *Seeder) Wipe(ctx context.Context) error {
	recipes, _, err := s.store.Recipes.Find(ctx, repository.RecipeFilter{})
	if err != nil {
		return fmt.Errorf("failed to list recipes: %w", err)
	}
	for _, r := range recipes {
		if err := s.store.Recipes.Delete(ctx, r.ID); err != nil {
			return fmt.Errorf("failed to delete recipe %s: %w", r.ID, err)
		}
	}

	categories, err := s.store.Categories.List(ctx, false)
	if err != nil {
		return fmt.Errorf("failed to list categories: %w", err)
	}
	for _, c := range categories {
		if err := s.store.Categories.Delete(ctx, c.ID); err != nil {
			return fmt.Errorf("failed to delete category %s: %w", c.Name, err)
		}
	}

	users, _, err := s.store.Users.List(ctx, repository.UserFilter{})
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}
	for _, u := range users {
		if err := s.store.Users.Delete(ctx, u.ID); err != nil {
			return fmt.Errorf("failed to delete user %s: %w", u.Username, err)
		}
	}

	s.log.Info("Cleared existing data",
		zap.Int("recipes", len(recipes)),
		zap.Int("categories", len(categories)),
		zap.Int("users", len(users)),
	)
	return nil
}

// Run loads f into an empty store and recounts the categories.
func (s *Seeder) Run(ctx context.Context, f *Fixture) (*Summary, error) {
	sum := &Summary{}
	now := time.Now().UTC()

	users := make(map[string]*models.User, len(f.Users)+1)
	accounts := append([]Account{f.Admin}, f.Users...)
	for i, a := range accounts {
		role := models.RoleUser
		if i == 0 {
			role = models.RoleAdmin
		}
		u, err := s.createUser(ctx, a, role, now)
		if err != nil {
			return nil, err
		}
		users[u.Username] = u
		sum.Users++
	}

	categories := make(map[string]*models.Category, len(f.Categories))
	for _, fc := range f.Categories {
		c := &models.Category{
			Name:        fc.Name,
			Description: fc.Description,
			Icon:        fc.Icon,
			Color:       fc.Color,
			IsActive:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		c.Normalize()
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("category %q: %w", fc.Name, err)
		}
		if err := s.store.Categories.Create(ctx, c); err != nil {
			return nil, fmt.Errorf("failed to create category %q: %w", fc.Name, err)
		}
		categories[c.Name] = c
		sum.Categories++
	}

	for _, fr := range f.Recipes {
		r, err := buildRecipe(fr, users, categories, now)
		if err != nil {
			return nil, err
		}
		if err := s.store.Recipes.Create(ctx, r); err != nil {
			return nil, fmt.Errorf("failed to create recipe %q: %w", fr.Title, err)
		}
		author := users[fr.Author]
		author.AddCreated(r.ID)
		if err := s.store.Users.Update(ctx, author); err != nil {
			return nil, fmt.Errorf("failed to update author %q: %w", fr.Author, err)
		}
		sum.Recipes++
		sum.Ratings += len(r.Ratings)
	}

	ids := make([]string, 0, len(categories))
	for _, c := range categories {
		ids = append(ids, c.ID)
	}
	service.NewCategoryService(s.store, cache.New(nil, s.log), s.log).RecountRecipes(ctx, ids...)

	s.log.Info("Database seeded",
		zap.Int("users", sum.Users),
		zap.Int("categories", sum.Categories),
		zap.Int("recipes", sum.Recipes),
		zap.Int("ratings", sum.Ratings),
	)
	return sum, nil
}

func (s *Seeder) createUser(ctx context.Context, a Account, role string, now time.Time) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(a.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password for %q: %w", a.Username, err)
	}
	u := &models.User{
		Username:           a.Username,
		Email:              a.Email,
		PasswordHash:       string(hashed),
		FirstName:          a.FirstName,
		LastName:           a.LastName,
		Bio:                a.Bio,
		DietaryPreferences: a.DietaryPreferences,
		Role:               role,
		IsActive:           true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	u.Normalize()
	if err := u.Validate(); err != nil {
		return nil, fmt.Errorf("user %q: %w", a.Username, err)
	}
	if err := s.store.Users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to create user %q: %w", a.Username, err)
	}
	return u, nil
}

func buildRecipe(fr Recipe, users map[string]*models.User, categories map[string]*models.Category, now time.Time) (*models.Recipe, error) {
	author, ok := users[fr.Author]
	if !ok {
		return nil, fmt.Errorf("recipe %q: unknown author %q", fr.Title, fr.Author)
	}
	category, ok := categories[fr.Category]
	if !ok {
		return nil, fmt.Errorf("recipe %q: unknown category %q", fr.Title, fr.Category)
	}

	r := &models.Recipe{
		ID:          models.NewID(),
		Title:       fr.Title,
		Description: fr.Description,
		Image:       fr.Image,
		Category:    category.ID,
		Author:      author.ID,
		Servings:    fr.Servings,
		PrepTime:    fr.PrepTime,
		CookTime:    fr.CookTime,
		Difficulty:  fr.Difficulty,
		DietaryTags: fr.DietaryTags,
		IsPublished: true,
		IsFeatured:  fr.Featured,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, in := range fr.Ingredients {
		r.Ingredients = append(r.Ingredients, models.Ingredient{Name: in.Name, Amount: in.Amount, Unit: in.Unit, Notes: in.Notes})
	}
	for i, step := range fr.Steps {
		r.Instructions = append(r.Instructions, models.Instruction{StepNumber: i + 1, Instruction: step.Text, EstimatedTime: step.Minutes})
	}
	if n := fr.Nutrition; n != nil {
		r.Nutrition = &models.Nutrition{
			Calories:      n.Calories,
			Protein:       n.Protein,
			Carbohydrates: n.Carbohydrates,
			Fat:           n.Fat,
			Fiber:         n.Fiber,
			Sugar:         n.Sugar,
			Sodium:        n.Sodium,
		}
	}
	for _, rt := range fr.Ratings {
		rater, ok := users[rt.User]
		if !ok {
			return nil, fmt.Errorf("recipe %q: unknown rater %q", r.Title, rt.User)
		}
		if err := r.AddRating(rater.ID, rt.Rating, rt.Comment); err != nil {
			return nil, fmt.Errorf("recipe %q: %w", r.Title, err)
		}
	}

	r.Normalize()
	r.Recompute()
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("recipe %q: %w", r.Title, err)
	}
	return r, nil
}
