package models

import (
	"strings"
	"time"
)

const (
	DefaultCategoryIcon  = "🍽️"
	DefaultCategoryColor = "#4A90E2"
)

type Category struct {
	ID          string    `gorm:"primaryKey;size:24" bson:"_id" json:"id"`
	Name        string    `gorm:"size:50;not null;uniqueIndex" bson:"name" json:"name" validate:"required,max=50"`
	Description string    `gorm:"size:200" bson:"description" json:"description" validate:"max=200"`
	Icon        string    `gorm:"size:16" bson:"icon" json:"icon"`
	Color       string    `gorm:"size:7" bson:"color" json:"color" validate:"hex_color"`
	IsActive    bool      `gorm:"not null;index" bson:"isActive" json:"isActive"`
	RecipeCount int64     `gorm:"not null" bson:"recipeCount" json:"recipeCount"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (c *Category) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.Description = strings.TrimSpace(c.Description)
	if c.Icon == "" {
		c.Icon = DefaultCategoryIcon
	}
	if c.Color == "" {
		c.Color = DefaultCategoryColor
	}
}

func (c *Category) Validate() error {
	return validationError(checkStruct(c))
}

// CategoryRef is the category summary embedded in recipe responses.
type CategoryRef struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Icon  string `json:"icon,omitempty"`
	Color string `json:"color,omitempty"`
}

func (c *Category) Ref() *CategoryRef {
	return &CategoryRef{ID: c.ID, Name: c.Name, Icon: c.Icon, Color: c.Color}
}
