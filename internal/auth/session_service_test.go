package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pharmagdd/catalog/internal/database/testutil"
	"github.com/pharmagdd/catalog/internal/models"
)

func newSessionService(t *testing.T, cfg SessionConfig) (*SessionService, *models.User) {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	user := &models.User{
		Name:     "Admin Admin",
		Email:    "admin@pharma-gdd.com",
		Password: "hashed",
		IsAdmin:  true,
	}
	require.NoError(t, db.Create(user).Error)

	jwtSvc, err := NewJWTService(JWTConfig{Secret: "test-secret"})
	require.NoError(t, err)

	svc, err := NewSessionService(db, jwtSvc, cfg)
	require.NoError(t, err)

	return svc, user
}

func TestCreateSessionIssuesValidTokenPair(t *testing.T) {
	svc, user := newSessionService(t, SessionConfig{})

	pair, session, err := svc.CreateSession(context.Background(), user, SessionMetadata{IPAddress: "10.0.0.1"})
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.Equal(t, user.ID, session.UserID)

	claims, err := svc.jwt.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.UserID)
	require.True(t, claims.IsAdmin)
}

func TestRefreshSessionRotatesToken(t *testing.T) {
	svc, user := newSessionService(t, SessionConfig{})

	pair, _, err := svc.CreateSession(context.Background(), user, SessionMetadata{})
	require.NoError(t, err)

	rotated, _, err := svc.RefreshSession(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	// The old token is no longer accepted.
	_, _, err = svc.RefreshSession(context.Background(), pair.RefreshToken)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRefreshSessionRejectsRevokedAndExpired(t *testing.T) {
	svc, user := newSessionService(t, SessionConfig{})

	pair, session, err := svc.CreateSession(context.Background(), user, SessionMetadata{})
	require.NoError(t, err)
	require.NoError(t, svc.RevokeSession(context.Background(), session.ID))

	_, _, err = svc.RefreshSession(context.Background(), pair.RefreshToken)
	require.ErrorIs(t, err, ErrSessionRevoked)

	clock := time.Now().Add(-48 * time.Hour)
	expiredSvc, expiredUser := newSessionService(t, SessionConfig{
		RefreshTokenTTL: time.Hour,
		Clock:           func() time.Time { return clock },
	})
	expiredPair, _, err := expiredSvc.CreateSession(context.Background(), expiredUser, SessionMetadata{})
	require.NoError(t, err)

	clock = time.Now()
	_, _, err = expiredSvc.RefreshSession(context.Background(), expiredPair.RefreshToken)
	require.ErrorIs(t, err, ErrSessionExpired)
}

func TestDeleteExpiredPrunesOldSessions(t *testing.T) {
	clock := time.Now().Add(-72 * time.Hour)
	svc, user := newSessionService(t, SessionConfig{
		RefreshTokenTTL: time.Hour,
		Clock:           func() time.Time { return clock },
	})

	_, _, err := svc.CreateSession(context.Background(), user, SessionMetadata{})
	require.NoError(t, err)

	removed, err := svc.DeleteExpired(context.Background(), time.Now())
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)
}
