package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/healthy-cookbook/backend/internal/apperrors"
	"github.com/pageza/healthy-cookbook/backend/internal/models"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	res, err := env.auth.Register(ctx, RegisterInput{
		Username: "alice", Email: "Alice@Example.com", Password: "secret1",
		FirstName: "Alice", LastName: "Baker",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "alice@example.com", res.User.Email)
	assert.Equal(t, models.RoleUser, res.User.Role)
	assert.True(t, res.User.IsActive)
	assert.NotEqual(t, "secret1", res.User.PasswordHash)

	login, err := env.auth.Login(ctx, "ALICE@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)

	u, err := env.auth.Authenticate(ctx, login.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
}

func TestRegisterRejectsDuplicatesWith400(t *testing.T) {
	env := newTestEnv(t, nil)
	env.register(t, "alice")

	_, err := env.auth.Register(context.Background(), RegisterInput{
		Username: "alice", Email: "new@example.com", Password: "secret1",
		FirstName: "A", LastName: "B",
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperrors.As(err).HTTPStatus())
	assert.Equal(t, "User already exists", apperrors.As(err).Message)
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t, nil)

	_, err := env.auth.Register(context.Background(), RegisterInput{
		Username: "al", Email: "nope", Password: "123",
	})
	require.Error(t, err)
	appErr := apperrors.As(err)
	assert.Equal(t, apperrors.KindValidation, appErr.Kind)

	fields := map[string]bool{}
	for _, f := range appErr.Fields {
		fields[f.Field] = true
	}
	for _, f := range []string{"username", "email", "firstName", "lastName", "password"} {
		assert.True(t, fields[f], "expected error on %s", f)
	}
}

func TestLoginFailures(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	u := env.register(t, "bob")

	_, err := env.auth.Login(ctx, "", "")
	assert.Equal(t, "Email and password are required", apperrors.As(err).Message)

	_, err = env.auth.Login(ctx, "bob@example.com", "wrong-password")
	assert.Equal(t, http.StatusBadRequest, apperrors.As(err).HTTPStatus())
	assert.Equal(t, "Invalid credentials", apperrors.As(err).Message)

	_, err = env.auth.Login(ctx, "nobody@example.com", "password123")
	assert.Equal(t, "Invalid credentials", apperrors.As(err).Message)

	u.IsActive = false
	require.NoError(t, env.store.Users.Update(ctx, u))
	_, err = env.auth.Login(ctx, "bob@example.com", "password123")
	assert.Equal(t, http.StatusUnauthorized, apperrors.As(err).HTTPStatus())
}

func TestAuthenticateRejectsUnknownOrInactiveUser(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	orphan, err := env.tokens.Issue(models.NewID())
	require.NoError(t, err)
	_, err = env.auth.Authenticate(ctx, orphan)
	assert.True(t, apperrors.Is(err, apperrors.KindAuthentication))

	u := env.register(t, "carol")
	token, err := env.tokens.Issue(u.ID)
	require.NoError(t, err)
	u.IsActive = false
	require.NoError(t, env.store.Users.Update(ctx, u))

	_, err = env.auth.Authenticate(ctx, token)
	assert.True(t, apperrors.Is(err, apperrors.KindAuthentication))
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	env.register(t, "taken")
	u := env.register(t, "dave")

	updated, err := env.auth.UpdateProfile(ctx, u, ProfileInput{
		FirstName:          ptr("David"),
		LastName:           ptr(""),
		Bio:                ptr("Weekend baker"),
		DietaryPreferences: []string{"vegan"},
	})
	require.NoError(t, err)
	assert.Equal(t, "David", updated.FirstName)
	assert.Equal(t, "Cook", updated.LastName)
	assert.Equal(t, "Weekend baker", env.reload(t, u.ID).Bio)

	_, err = env.auth.UpdateProfile(ctx, env.reload(t, u.ID), ProfileInput{Username: ptr("taken")})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperrors.As(err).HTTPStatus())

	_, err = env.auth.UpdateProfile(ctx, env.reload(t, u.ID), ProfileInput{DietaryPreferences: []string{"carnivore"}})
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	u := env.register(t, "erin")

	err := env.auth.ChangePassword(ctx, u, "wrong", "newpass1")
	assert.Equal(t, "Current password is incorrect", apperrors.As(err).Message)

	err = env.auth.ChangePassword(ctx, u, "password123", "123")
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))

	require.NoError(t, env.auth.ChangePassword(ctx, u, "password123", "newpass1"))
	_, err = env.auth.Login(ctx, "erin@example.com", "newpass1")
	assert.NoError(t, err)
}
