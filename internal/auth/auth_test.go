package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examina/internal/store"
)

func newTestService(t *testing.T) (*Service, *Authenticator) {
	t.Helper()
	s, err := store.Open("file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	a, err := NewAuthenticator("test-secret")
	require.NoError(t, err)
	return NewService(a, s.ProfileRepo(), s.TokenRepo()), a
}

func TestIssueAndVerify(t *testing.T) {
	a, err := NewAuthenticator("test-secret")
	require.NoError(t, err)

	tok, err := a.Issue("user-1", "asha@example.com", time.Hour)
	require.NoError(t, err)

	u, err := a.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", u.ID)
	assert.Equal(t, "asha@example.com", u.Email)
	assert.NotEmpty(t, u.TokenID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), u.ExpiresAt, time.Minute)
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	a, _ := NewAuthenticator("test-secret")
	other, _ := NewAuthenticator("other-secret")

	expired, err := a.Issue("user-1", "", -time.Minute)
	require.NoError(t, err)
	foreign, err := other.Issue("user-1", "", time.Hour)
	require.NoError(t, err)
	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "x"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"expired": expired,
		"foreign": foreign,
		"none":    noneAlg,
		"garbage": "not-a-token",
	} {
		_, err := a.Verify(tok)
		assert.ErrorIs(t, err, ErrInvalidToken, name)
	}

	_, err = NewAuthenticator("")
	assert.Error(t, err)
}

func TestSignOutRevokes(t *testing.T) {
	svc, a := newTestService(t)
	ctx := context.Background()
	tok, _ := a.Issue("user-1", "", time.Hour)

	_, err := svc.CurrentUser(ctx, tok)
	require.NoError(t, err)

	require.NoError(t, svc.SignOut(ctx, tok))
	_, err = svc.CurrentUser(ctx, tok)
	assert.ErrorIs(t, err, ErrRevoked)
}

func TestEnsureProfileCreatesFreeProfile(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, ok, err := svc.GetProfile(ctx, "user-2")
	require.NoError(t, err)
	assert.False(t, ok)

	p, err := svc.EnsureProfile(ctx, &User{ID: "user-2", Email: "ravi@example.com"})
	require.NoError(t, err)
	assert.Equal(t, store.SubscriptionFree, p.SubscriptionStatus)
	assert.Equal(t, store.DefaultExamType, p.ExamType)

	p.Name = "Ravi"
	require.NoError(t, svc.UpsertProfile(ctx, p))
	got, ok, err := svc.GetProfile(ctx, "user-2")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Ravi", got.Name)
	assert.Equal(t, "ravi@example.com", got.Email)

	assert.Error(t, svc.UpsertProfile(ctx, &store.Profile{}))
}

func TestTouchStreak(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2026, 5, d, 20, 0, 0, 0, time.UTC) }
	p := &store.Profile{}

	assert.True(t, TouchStreak(p, day(1)))
	assert.Equal(t, 1, p.StreakCount)
	assert.False(t, TouchStreak(p, day(1)), "same day")

	TouchStreak(p, day(2))
	TouchStreak(p, day(3))
	assert.Equal(t, 3, p.StreakCount)

	TouchStreak(p, day(6))
	assert.Equal(t, 1, p.StreakCount)
	assert.Equal(t, "2026-05-06", p.StreakLastDate)
}
