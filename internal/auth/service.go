package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/examina/internal/store"
)

// Service resolves callers and manages their profiles.
type Service struct {
	auth     *Authenticator
	profiles store.ProfileRepo
	tokens   store.TokenRepo
	now      func() time.Time
}

// NewService wires the authenticator to the profile and token repos.
func NewService(a *Authenticator, profiles store.ProfileRepo, tokens store.TokenRepo) *Service {
	return &Service{auth: a, profiles: profiles, tokens: tokens, now: time.Now}
}

// CurrentUser verifies token and rejects revoked ones.
func (s *Service) CurrentUser(ctx context.Context, token string) (*User, error) {
	u, err := s.auth.Verify(token)
	if err != nil {
		return nil, err
	}
	if u.TokenID != "" {
		revoked, err := s.tokens.IsRevoked(ctx, u.TokenID)
		if err != nil {
			return nil, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return nil, ErrRevoked
		}
	}
	return u, nil
}

// GetProfile returns the user's profile. ok is false when none exists.
func (s *Service) GetProfile(ctx context.Context, userID string) (*store.Profile, bool, error) {
	p, err := s.profiles.Get(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return p, true, nil
}

// EnsureProfile returns the user's profile, creating a free one on first
// use.
func (s *Service) EnsureProfile(ctx context.Context, u *User) (*store.Profile, error) {
	p, ok, err := s.GetProfile(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	if ok {
		return p, nil
	}
	p = &store.Profile{UserID: u.ID, Email: u.Email}
	if err := s.profiles.Upsert(ctx, p); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return p, nil
}

// UpsertProfile saves p.
func (s *Service) UpsertProfile(ctx context.Context, p *store.Profile) error {
	if p.UserID == "" {
		return errors.New("profile has no user id")
	}
	return s.profiles.Upsert(ctx, p)
}

// Touch records activity on the user's streak and saves the profile.
func (s *Service) Touch(ctx context.Context, p *store.Profile) error {
	if !TouchStreak(p, s.now()) {
		return nil
	}
	return s.profiles.Upsert(ctx, p)
}

// SignOut revokes token until it would have expired.
func (s *Service) SignOut(ctx context.Context, token string) error {
	u, err := s.auth.Verify(token)
	if err != nil {
		return err
	}
	if u.TokenID == "" {
		return nil
	}
	exp := u.ExpiresAt
	if exp.IsZero() {
		exp = s.now().Add(30 * 24 * time.Hour)
	}
	return s.tokens.Revoke(ctx, u.TokenID, exp)
}

// TouchStreak updates the daily streak for activity at now and reports
// whether p changed. Consecutive days extend the streak, a gap restarts it.
func TouchStreak(p *store.Profile, now time.Time) bool {
	today := now.Format(time.DateOnly)
	if p.StreakLastDate == today {
		return false
	}
	yesterday := now.AddDate(0, 0, -1).Format(time.DateOnly)
	if p.StreakLastDate == yesterday {
		p.StreakCount++
	} else {
		p.StreakCount = 1
	}
	p.StreakLastDate = today
	return true
}
