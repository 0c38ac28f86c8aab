// Package gormstore implements the repositories on gorm for PostgreSQL and
// SQLite. Embedded collections are stored as JSON text columns.
package gormstore

import (
	"context"
	"errors"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/pageza/healthy-cookbook/backend/internal/models"
	"github.com/pageza/healthy-cookbook/backend/internal/repository"
)

// NewStore wires the three repositories onto db.
func NewStore(db *gorm.DB) *repository.Store {
	return &repository.Store{
		Users:      NewUserRepository(db),
		Categories: NewCategoryRepository(db),
		Recipes:    NewRecipeRepository(db),
		Ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		Close: func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}
}

// AutoMigrate creates or updates the tables for every aggregate.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Recipe{},
	)
}

// translate maps driver errors onto the repository sentinel errors.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repository.ErrNotFound
	}
	if isDuplicate(err) {
		return repository.ErrDuplicate
	}
	return err
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// likeEscaper escapes LIKE metacharacters; patterns are used with ESCAPE '\'.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching value anywhere, literally.
func containsPattern(value string) string {
	return "%" + likeEscaper.Replace(value) + "%"
}

// jsonContains builds a LIKE pattern matching a string element of a JSON array column.
func jsonContains(value string) string {
	return `%"` + likeEscaper.Replace(value) + `"%`
}

func notFoundIfNone(res *gorm.DB) error {
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
