package jwt

import (
	"foodia-handoff/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	svc := newJWTService("secret")
	token := svc.GenerateTokenUser("user-1", domain.RoleUser)

	id, role, err := svc.GetUserIDByToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)
	assert.Equal(t, domain.RoleUser, role)
}

func TestRejectsForeignSecret(t *testing.T) {
	token := newJWTService("other").GenerateTokenUser("user-1", domain.RoleUser)

	_, _, err := newJWTService("secret").GetUserIDByToken(token)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestExpired(t *testing.T) {
	svc := newJWTService("secret")
	svc.ttl = -time.Minute
	token := svc.GenerateTokenUser("user-1", domain.RoleUser)

	_, _, err := svc.GetUserIDByToken(token)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}
