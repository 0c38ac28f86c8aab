package models

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pageza/healthy-cookbook/backend/internal/apperrors"
)

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"

	// MaxImageBytes caps the decoded size of an embedded base64 image.
	MaxImageBytes = 5 * 1024 * 1024
)

type Ingredient struct {
	Name   string  `bson:"name" json:"name" validate:"required,max=100"`
	Amount float64 `bson:"amount" json:"amount" validate:"gt=0"`
	Unit   string  `bson:"unit" json:"unit" validate:"required,unit"`
	Notes  string  `bson:"notes,omitempty" json:"notes,omitempty" validate:"max=200"`
}

type Instruction struct {
	StepNumber    int    `bson:"stepNumber" json:"stepNumber" validate:"min=1"`
	Instruction   string `bson:"instruction" json:"instruction" validate:"required,min=10,max=1000"`
	EstimatedTime int    `bson:"estimatedTime,omitempty" json:"estimatedTime,omitempty" validate:"min=0"`
}

// Nutrition is per serving. Units follow the usual label conventions (g, mg).
type Nutrition struct {
	Calories      float64 `bson:"calories" json:"calories" validate:"min=0"`
	Protein       float64 `bson:"protein" json:"protein" validate:"min=0"`
	Carbohydrates float64 `bson:"carbohydrates" json:"carbohydrates" validate:"min=0"`
	Fat           float64 `bson:"fat" json:"fat" validate:"min=0"`
	Fiber         float64 `bson:"fiber" json:"fiber" validate:"min=0"`
	Sugar         float64 `bson:"sugar" json:"sugar" validate:"min=0"`
	Sodium        float64 `bson:"sodium" json:"sodium" validate:"min=0"`
	Cholesterol   float64 `bson:"cholesterol" json:"cholesterol" validate:"min=0"`
	VitaminA      float64 `bson:"vitaminA" json:"vitaminA" validate:"min=0"`
	VitaminC      float64 `bson:"vitaminC" json:"vitaminC" validate:"min=0"`
	Calcium       float64 `bson:"calcium" json:"calcium" validate:"min=0"`
	Iron          float64 `bson:"iron" json:"iron" validate:"min=0"`
	SaturatedFat  float64 `bson:"saturatedFat" json:"saturatedFat" validate:"min=0"`
	TransFat      float64 `bson:"transFat" json:"transFat" validate:"min=0"`
	Potassium     float64 `bson:"potassium" json:"potassium" validate:"min=0"`
}

type Rating struct {
	User      string    `bson:"user" json:"user" validate:"required"`
	Rating    int       `bson:"rating" json:"rating" validate:"min=1,max=5"`
	Comment   string    `bson:"comment,omitempty" json:"comment,omitempty" validate:"max=500"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

type Recipe struct {
	ID            string        `gorm:"primaryKey;size:24" bson:"_id" json:"id"`
	Title         string        `gorm:"size:100;not null" bson:"title" json:"title" validate:"required,min=3,max=100"`
	Description   string        `gorm:"size:500;not null" bson:"description" json:"description" validate:"required,min=10,max=500"`
	Image         string        `gorm:"type:text" bson:"image,omitempty" json:"image,omitempty" validate:"omitempty,recipe_image"`
	ImageAltText  string        `gorm:"size:200" bson:"imageAltText,omitempty" json:"imageAltText,omitempty" validate:"max=200"`
	ImagePublicID string        `gorm:"size:255" bson:"imagePublicId,omitempty" json:"imagePublicId,omitempty"`
	Category      string        `gorm:"size:24;not null;index" bson:"category" json:"category" validate:"required,objectid"`
	Author        string        `gorm:"size:24;not null;index" bson:"author" json:"author" validate:"required"`
	Ingredients   []Ingredient  `gorm:"type:text;serializer:json" bson:"ingredients" json:"ingredients" validate:"required,min=1,dive"`
	Instructions  []Instruction `gorm:"type:text;serializer:json" bson:"instructions" json:"instructions" validate:"required,min=1,dive"`
	Nutrition     *Nutrition    `gorm:"type:text;serializer:json" bson:"nutrition,omitempty" json:"nutrition,omitempty"`
	Servings      int           `gorm:"not null" bson:"servings" json:"servings" validate:"min=1,max=50"`
	PrepTime      int           `gorm:"not null" bson:"prepTime" json:"prepTime" validate:"min=0,max=1440"`
	CookTime      int           `gorm:"not null" bson:"cookTime" json:"cookTime" validate:"min=0,max=1440"`
	TotalTime     int           `gorm:"not null;index" bson:"totalTime" json:"totalTime"`
	Difficulty    string        `gorm:"size:10;not null" bson:"difficulty" json:"difficulty" validate:"oneof=easy medium hard"`
	DietaryTags   []string      `gorm:"type:text;serializer:json" bson:"dietaryTags" json:"dietaryTags" validate:"dive,dietary_tag"`
	Ratings       []Rating      `gorm:"type:text;serializer:json" bson:"ratings" json:"ratings" validate:"dive"`
	AverageRating float64       `gorm:"not null;index" bson:"averageRating" json:"averageRating"`
	TotalRatings  int           `gorm:"not null" bson:"totalRatings" json:"totalRatings"`
	HealthScore   int           `gorm:"not null;index" bson:"healthScore" json:"healthScore"`
	Views         int64         `gorm:"not null" bson:"views" json:"views"`
	IsPublished   bool          `gorm:"not null;index" bson:"isPublished" json:"isPublished"`
	IsFeatured    bool          `gorm:"not null" bson:"isFeatured" json:"isFeatured"`
	CreatedAt     time.Time     `gorm:"index" bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// Normalize trims text fields and fills defaults. It does not touch
// publication flags, which callers set explicitly.
func (r *Recipe) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.Image = strings.TrimSpace(r.Image)
	if r.Difficulty == "" {
		r.Difficulty = DifficultyMedium
	}
	for i := range r.Ingredients {
		r.Ingredients[i].Name = strings.TrimSpace(r.Ingredients[i].Name)
	}
	for i := range r.Instructions {
		r.Instructions[i].Instruction = strings.TrimSpace(r.Instructions[i].Instruction)
	}
	if r.DietaryTags == nil {
		r.DietaryTags = []string{}
	}
	if r.Ratings == nil {
		r.Ratings = []Rating{}
	}
}

// Validate checks field rules and the aggregate invariants.
func (r *Recipe) Validate() error {
	fields := checkStruct(r)

	if len(r.Instructions) > 0 && !stepsContiguous(r.Instructions) {
		fields = append(fields, apperrors.FieldError{
			Field:   "instructions",
			Message: "Instruction steps must be numbered 1 through N without gaps",
		})
	}

	seen := make(map[string]struct{}, len(r.Ratings))
	for _, rt := range r.Ratings {
		if _, dup := seen[rt.User]; dup {
			fields = append(fields, apperrors.FieldError{
				Field:   "ratings",
				Message: "A user can only rate a recipe once",
			})
			break
		}
		seen[rt.User] = struct{}{}
	}

	if strings.HasPrefix(r.Image, "data:image/") {
		if size := EmbeddedImageSize(r.Image); size > MaxImageBytes {
			fields = append(fields, apperrors.FieldError{
				Field:   "image",
				Message: fmt.Sprintf("Image size (%.1fMB) exceeds 5MB limit", float64(size)/(1024*1024)),
			})
		}
	}

	return validationError(fields)
}

// EmbeddedImageSize returns an upper bound on the decoded size of a base64
// data URI. Padding is not subtracted, so it can overshoot by two bytes.
func EmbeddedImageSize(dataURI string) int {
	i := strings.Index(dataURI, ",")
	if i < 0 {
		return 0
	}
	return len(dataURI[i+1:]) * 3 / 4
}

func stepsContiguous(steps []Instruction) bool {
	nums := make([]int, len(steps))
	for i, s := range steps {
		nums[i] = s.StepNumber
	}
	sort.Ints(nums)
	for i, n := range nums {
		if n != i+1 {
			return false
		}
	}
	return true
}

// Recompute refreshes every derived field. Call it on each write path.
func (r *Recipe) Recompute() {
	sort.SliceStable(r.Instructions, func(i, j int) bool {
		return r.Instructions[i].StepNumber < r.Instructions[j].StepNumber
	})
	r.TotalTime = r.PrepTime + r.CookTime
	r.HealthScore = CalculateHealthScore(r.DietaryTags, r.Nutrition)
	r.UpdateAverageRating()
}

// RecipeView is a recipe as returned to clients, with its category and
// author resolved. Ratings shadows the embedded list so listings can omit it.
type RecipeView struct {
	*Recipe
	Category   *CategoryRef `json:"category"`
	Author     *UserRef     `json:"author"`
	Ratings    []Rating     `json:"ratings,omitempty"`
	IsFavorite *bool        `json:"isFavorite,omitempty"`
}
