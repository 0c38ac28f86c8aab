package models

import (
	"strings"
	"time"

	"github.com/pageza/healthy-cookbook/backend/internal/apperrors"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	// MinPasswordLength applies to registration and password changes.
	MinPasswordLength = 6
)

type User struct {
	ID                 string    `gorm:"primaryKey;size:24" bson:"_id" json:"id"`
	Username           string    `gorm:"size:30;not null;uniqueIndex" bson:"username" json:"username" validate:"required,min=3,max=30"`
	Email              string    `gorm:"size:255;not null;uniqueIndex" bson:"email" json:"email" validate:"required,email"`
	PasswordHash       string    `gorm:"column:password_hash;not null" bson:"password" json:"-"`
	FirstName          string    `gorm:"size:50;not null" bson:"firstName" json:"firstName" validate:"required,max=50"`
	LastName           string    `gorm:"size:50;not null" bson:"lastName" json:"lastName" validate:"required,max=50"`
	Avatar             string    `bson:"avatar" json:"avatar"`
	ProfileImage       string    `bson:"profileImage" json:"profileImage"`
	Bio                string    `gorm:"size:500" bson:"bio" json:"bio" validate:"max=500"`
	DietaryPreferences []string  `gorm:"type:text;serializer:json" bson:"dietaryPreferences" json:"dietaryPreferences" validate:"dive,dietary_preference"`
	Allergies          []string  `gorm:"type:text;serializer:json" bson:"allergies" json:"allergies" validate:"dive,allergy"`
	FavoriteRecipes    []string  `gorm:"type:text;serializer:json" bson:"favoriteRecipes" json:"favoriteRecipes"`
	CreatedRecipes     []string  `gorm:"type:text;serializer:json" bson:"createdRecipes" json:"createdRecipes"`
	Role               string    `gorm:"size:10;not null" bson:"role" json:"role" validate:"oneof=user admin"`
	IsActive           bool      `gorm:"not null" bson:"isActive" json:"isActive"`
	CreatedAt          time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time `bson:"updatedAt" json:"updatedAt"`
}

// FullName joins first and last name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Normalize trims input and applies defaults before validation.
func (u *User) Normalize() {
	u.Username = strings.TrimSpace(u.Username)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.FirstName = strings.TrimSpace(u.FirstName)
	u.LastName = strings.TrimSpace(u.LastName)
	if u.Role == "" {
		u.Role = RoleUser
	}
	if u.DietaryPreferences == nil {
		u.DietaryPreferences = []string{}
	}
	if u.Allergies == nil {
		u.Allergies = []string{}
	}
	if u.FavoriteRecipes == nil {
		u.FavoriteRecipes = []string{}
	}
	if u.CreatedRecipes == nil {
		u.CreatedRecipes = []string{}
	}
}

func (u *User) Validate() error {
	return validationError(checkStruct(u))
}

// ValidatePassword checks a plaintext password before hashing.
func ValidatePassword(field, password string) error {
	if len(password) < MinPasswordLength {
		return apperrors.Validation("Validation failed", apperrors.FieldError{
			Field:   field,
			Message: "Password must be at least 6 characters",
		})
	}
	return nil
}

func (u *User) HasFavorite(recipeID string) bool {
	return contains(u.FavoriteRecipes, recipeID)
}

// AddFavorite appends recipeID unless present. It reports whether the list changed.
func (u *User) AddFavorite(recipeID string) bool {
	if u.HasFavorite(recipeID) {
		return false
	}
	u.FavoriteRecipes = append(u.FavoriteRecipes, recipeID)
	return true
}

// RemoveFavorite drops recipeID. It reports whether the list changed.
func (u *User) RemoveFavorite(recipeID string) bool {
	var changed bool
	u.FavoriteRecipes, changed = without(u.FavoriteRecipes, recipeID)
	return changed
}

func (u *User) AddCreated(recipeID string) {
	if !contains(u.CreatedRecipes, recipeID) {
		u.CreatedRecipes = append(u.CreatedRecipes, recipeID)
	}
}

func (u *User) RemoveCreated(recipeID string) {
	u.CreatedRecipes, _ = without(u.CreatedRecipes, recipeID)
}

func without(list []string, id string) ([]string, bool) {
	out := list[:0:0]
	for _, v := range list {
		if v != id {
			out = append(out, v)
		}
	}
	return out, len(out) != len(list)
}

// UserRef is the author summary embedded in recipe responses.
type UserRef struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
}

func (u *User) Ref() *UserRef {
	return &UserRef{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Avatar:    u.Avatar,
	}
}

// PublicProfile is what other users see. Email and lists are hidden.
type PublicProfile struct {
	ID                 string    `json:"id"`
	Username           string    `json:"username"`
	FirstName          string    `json:"firstName"`
	LastName           string    `json:"lastName"`
	FullName           string    `json:"fullName"`
	Avatar             string    `json:"avatar"`
	ProfileImage       string    `json:"profileImage"`
	Bio                string    `json:"bio"`
	DietaryPreferences []string  `json:"dietaryPreferences"`
	RecipeCount        int       `json:"recipeCount"`
	CreatedAt          time.Time `json:"createdAt"`
}

func (u *User) Public() *PublicProfile {
	return &PublicProfile{
		ID:                 u.ID,
		Username:           u.Username,
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		FullName:           u.FullName(),
		Avatar:             u.Avatar,
		ProfileImage:       u.ProfileImage,
		Bio:                u.Bio,
		DietaryPreferences: u.DietaryPreferences,
		RecipeCount:        len(u.CreatedRecipes),
		CreatedAt:          u.CreatedAt,
	}
}
