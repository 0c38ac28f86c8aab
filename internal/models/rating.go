package models

import (
	"math"
	"time"

	"github.com/pageza/healthy-cookbook/backend/internal/apperrors"
)

// UpdateAverageRating recomputes averageRating (one decimal) and totalRatings.
func (r *Recipe) UpdateAverageRating() {
	if len(r.Ratings) == 0 {
		r.AverageRating = 0
		r.TotalRatings = 0
		return
	}
	sum := 0
	for _, rt := range r.Ratings {
		sum += rt.Rating
	}
	mean := float64(sum) / float64(len(r.Ratings))
	r.AverageRating = math.Round(mean*10) / 10
	r.TotalRatings = len(r.Ratings)
}

func (r *Recipe) findRating(userID string) int {
	for i, rt := range r.Ratings {
		if rt.User == userID {
			return i
		}
	}
	return -1
}

// RatingBy returns the user's rating, if any.
func (r *Recipe) RatingBy(userID string) (Rating, bool) {
	if i := r.findRating(userID); i >= 0 {
		return r.Ratings[i], true
	}
	return Rating{}, false
}

// AddRating appends a rating. A second rating by the same user is a conflict.
func (r *Recipe) AddRating(userID string, value int, comment string) error {
	if r.findRating(userID) >= 0 {
		return apperrors.Conflict("User has already rated this recipe")
	}
	if err := checkRating(value, comment); err != nil {
		return err
	}
	r.Ratings = append(r.Ratings, Rating{
		User:      userID,
		Rating:    value,
		Comment:   comment,
		CreatedAt: time.Now().UTC(),
	})
	r.UpdateAverageRating()
	return nil
}

// UpsertRating replaces the user's rating or adds a new one. An empty comment
// keeps the previous comment. It reports whether an existing rating changed.
func (r *Recipe) UpsertRating(userID string, value int, comment string) (bool, error) {
	if err := checkRating(value, comment); err != nil {
		return false, err
	}
	if i := r.findRating(userID); i >= 0 {
		r.Ratings[i].Rating = value
		if comment != "" {
			r.Ratings[i].Comment = comment
		}
		r.UpdateAverageRating()
		return true, nil
	}
	return false, r.AddRating(userID, value, comment)
}

func checkRating(value int, comment string) error {
	var fields []apperrors.FieldError
	if value < 1 || value > 5 {
		fields = append(fields, apperrors.FieldError{Field: "rating", Message: "Rating must be between 1 and 5"})
	}
	if len([]rune(comment)) > 500 {
		fields = append(fields, apperrors.FieldError{Field: "comment", Message: "Comment cannot exceed 500 characters"})
	}
	return validationError(fields)
}
