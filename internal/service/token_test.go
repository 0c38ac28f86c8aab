package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/healthy-cookbook/backend/internal/apperrors"
	"github.com/pageza/healthy-cookbook/backend/internal/models"
)

func TestTokenRoundTrip(t *testing.T) {
	tokens := NewTokenService("secret", time.Hour)
	id := models.NewID()

	token, err := tokens.Issue(id)
	require.NoError(t, err)

	got, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestTokenRejected(t *testing.T) {
	tokens := NewTokenService("secret", time.Hour)
	token, err := tokens.Issue(models.NewID())
	require.NoError(t, err)

	expired := NewTokenService("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	tests := []struct {
		name    string
		service *TokenService
		token   string
	}{
		{"garbage", tokens, "not-a-token"},
		{"wrong secret", NewTokenService("other", time.Hour), token},
		{"expired", expired, token},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.service.Verify(tt.token)
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.KindAuthentication))
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestTokenDefaultTTL(t *testing.T) {
	assert.Equal(t, 24*time.Hour, NewTokenService("s", 0).ttl)
}
