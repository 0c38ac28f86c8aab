package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/pageza/healthy-cookbook/backend/internal/apperrors"
	"github.com/pageza/healthy-cookbook/backend/internal/models"
	"github.com/pageza/healthy-cookbook/backend/internal/repository"
)

// RegisterInput is the registration payload.
type RegisterInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// ProfileInput carries profile edits. Nil means unchanged.
type ProfileInput struct {
	FirstName          *string  `json:"firstName"`
	LastName           *string  `json:"lastName"`
	Email              *string  `json:"email"`
	Username           *string  `json:"username"`
	Bio                *string  `json:"bio"`
	ProfileImage       *string  `json:"profileImage"`
	Avatar             *string  `json:"avatar"`
	DietaryPreferences []string `json:"dietaryPreferences"`
	Allergies          []string `json:"allergies"`
}

// AuthResult is returned by register and login.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type AuthService struct {
	store  *repository.Store
	tokens *TokenService
	users  *UserService
	log    *zap.Logger
	cost   int
}

func NewAuthService(store *repository.Store, tokens *TokenService, users *UserService, log *zap.Logger) *AuthService {
	return &AuthService{store: store, tokens: tokens, users: users, log: log, cost: bcrypt.DefaultCost}
}

// WithHashCost lowers the bcrypt cost, for tests and seeding.
func (s *AuthService) WithHashCost(cost int) *AuthService {
	s.cost = cost
	return s
}

// HashPassword returns the bcrypt hash of password.
func (s *AuthService) HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	u := &models.User{
		Username:  in.Username,
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Role:      models.RoleUser,
		IsActive:  true,
	}
	u.Normalize()

	err := u.Validate()
	if pwErr := models.ValidatePassword("password", in.Password); pwErr != nil {
		err = mergeValidation(err, pwErr)
	}
	if err != nil {
		return nil, err
	}

	if err := s.ensureUnique(ctx, u, ""); err != nil {
		return nil, err
	}

	hashed, err := s.HashPassword(in.Password)
	if err != nil {
		return nil, apperrors.Internal("Server error", err)
	}
	u.PasswordHash = hashed

	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	if err := s.store.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, userExists()
		}
		return nil, apperrors.Internal("Server error", err)
	}
	s.log.Info("User registered", zap.String("user_id", u.ID), zap.String("username", u.Username))

	return s.issue(u)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperrors.Validation("Email and password are required")
	}

	u, err := s.store.Users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, invalidCredentials()
	}
	if err != nil {
		return nil, apperrors.Internal("Server error", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, invalidCredentials()
	}
	if !u.IsActive {
		return nil, apperrors.Authentication("Account is deactivated.")
	}

	return s.issue(u)
}

// Authenticate resolves a bearer token to an active user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	u, err := s.store.Users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Authentication("Invalid token. User not found.")
	}
	if err != nil {
		return nil, apperrors.Internal("Authentication failed.", err)
	}
	if !u.IsActive {
		return nil, apperrors.Authentication("Account is deactivated.")
	}
	return u, nil
}

// UpdateProfile applies the user's own profile edits.
func (s *AuthService) UpdateProfile(ctx context.Context, u *models.User, in ProfileInput) (*models.User, error) {
	setNonEmpty(&u.FirstName, in.FirstName)
	setNonEmpty(&u.LastName, in.LastName)
	setNonEmpty(&u.Email, in.Email)
	setNonEmpty(&u.Username, in.Username)
	setString(&u.Bio, in.Bio)
	setString(&u.ProfileImage, in.ProfileImage)
	setString(&u.Avatar, in.Avatar)
	if in.DietaryPreferences != nil {
		u.DietaryPreferences = in.DietaryPreferences
	}
	if in.Allergies != nil {
		u.Allergies = in.Allergies
	}
	u.Normalize()
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, u, u.ID); err != nil {
		return nil, err
	}

	u.UpdatedAt = time.Now().UTC()
	if err := s.store.Users.Update(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, userExists()
		}
		return nil, apperrors.Internal("Server error", err)
	}
	return u, nil
}

// ChangePassword replaces the password after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, u *models.User, current, next string) error {
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)) != nil {
		return apperrors.Validation("Current password is incorrect")
	}
	if err := models.ValidatePassword("newPassword", next); err != nil {
		return err
	}

	hashed, err := s.HashPassword(next)
	if err != nil {
		return apperrors.Internal("Server error", err)
	}
	u.PasswordHash = hashed
	u.UpdatedAt = time.Now().UTC()
	if err := s.store.Users.Update(ctx, u); err != nil {
		return apperrors.Internal("Server error", err)
	}
	return nil
}

// DeleteAccount removes the user and everything they own.
func (s *AuthService) DeleteAccount(ctx context.Context, u *models.User) error {
	return s.users.deleteCascade(ctx, u)
}

func (s *AuthService) issue(u *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, apperrors.Internal("Server error", err)
	}
	return &AuthResult{Token: token, User: u}, nil
}

func (s *AuthService) ensureUnique(ctx context.Context, u *models.User, exceptID string) error {
	byEmail, err := s.store.Users.FindByEmail(ctx, u.Email)
	if err := checkTaken(byEmail, err, exceptID); err != nil {
		return err
	}
	byUsername, err := s.store.Users.FindByUsername(ctx, u.Username)
	return checkTaken(byUsername, err, exceptID)
}

func checkTaken(existing *models.User, err error, exceptID string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil
	case err != nil:
		return apperrors.Internal("Server error", err)
	case existing.ID != exceptID:
		return userExists()
	}
	return nil
}

func setNonEmpty(dst *string, v *string) {
	if v != nil && strings.TrimSpace(*v) != "" {
		*dst = *v
	}
}

func userExists() error {
	return apperrors.Conflict("User already exists").WithStatus(http.StatusBadRequest)
}

func invalidCredentials() error {
	return apperrors.Validation("Invalid credentials")
}

func mergeValidation(errs ...error) error {
	var fields []apperrors.FieldError
	for _, err := range errs {
		if err == nil {
			continue
		}
		fields = append(fields, apperrors.As(err).Fields...)
	}
	if len(fields) == 0 {
		return nil
	}
	return apperrors.Validation("Validation failed", fields...)
}
