package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

type profileRepo struct {
	store *Store
}

type profileRow struct {
	ID                    string `db:"id"`
	UserID                string `db:"user_id"`
	Name                  string `db:"name"`
	Email                 string `db:"email"`
	AvatarURL             string `db:"avatar_url"`
	ExamType              string `db:"exam_type"`
	SubscriptionStatus    string `db:"subscription_status"`
	SubscriptionExpiresAt int64  `db:"subscription_expires_at"`
	StreakCount           int    `db:"streak_count"`
	StreakLastDate        string `db:"streak_last_date"`
	CreatedAt             int64  `db:"created_at"`
}

var profileColumns = []string{
	"id", "user_id", "name", "email", "avatar_url", "exam_type",
	"subscription_status", "subscription_expires_at", "streak_count",
	"streak_last_date", "created_at",
}

func (r profileRow) profile() *Profile {
	p := &Profile{
		ID:                 r.ID,
		UserID:             r.UserID,
		Name:               r.Name,
		Email:              r.Email,
		AvatarURL:          r.AvatarURL,
		ExamType:           r.ExamType,
		SubscriptionStatus: r.SubscriptionStatus,
		StreakCount:        r.StreakCount,
		StreakLastDate:     r.StreakLastDate,
		CreatedAt:          fromMillis(r.CreatedAt),
	}
	if r.SubscriptionExpiresAt != 0 {
		t := fromMillis(r.SubscriptionExpiresAt)
		p.SubscriptionExpiresAt = &t
	}
	return p
}

func (r *profileRepo) Get(ctx context.Context, userID string) (*Profile, error) {
	b := r.store.builder()
	query, args := b.Select(profileColumns...).
		From(b.Table(tableProfiles)).
		Where(entsql.EQ("user_id", userID)).
		Query()

	var row profileRow
	err := r.store.db.GetContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile %s: %w", userID, err)
	}
	return row.profile(), nil
}

// Upsert fills in the id, exam type, subscription status and creation time
// when they are unset.
func (r *profileRepo) Upsert(ctx context.Context, p *Profile) error {
	if p.UserID == "" {
		return errors.New("profile has no user id")
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.ExamType == "" {
		p.ExamType = DefaultExamType
	}
	if p.SubscriptionStatus == "" {
		p.SubscriptionStatus = SubscriptionFree
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	var expires int64
	if p.SubscriptionExpiresAt != nil {
		expires = toMillis(*p.SubscriptionExpiresAt)
	}

	query, args := r.store.builder().Insert(tableProfiles).
		Columns(profileColumns...).
		Values(
			p.ID,
			p.UserID,
			p.Name,
			p.Email,
			p.AvatarURL,
			p.ExamType,
			p.SubscriptionStatus,
			expires,
			p.StreakCount,
			p.StreakLastDate,
			toMillis(p.CreatedAt),
		).
		OnConflict(
			entsql.ConflictColumns("user_id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				for _, c := range profileColumns {
					if c == "id" || c == "user_id" || c == "created_at" {
						continue
					}
					u.SetExcluded(c)
				}
			}),
		).
		Query()

	if _, err := r.store.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert profile %s: %w", p.UserID, err)
	}
	return nil
}

func (r *profileRepo) ExpireSubscriptions(ctx context.Context, now time.Time) (int64, error) {
	query, args := r.store.builder().Update(tableProfiles).
		Set("subscription_status", SubscriptionFree).
		Where(entsql.And(
			entsql.EQ("subscription_status", SubscriptionPremium),
			entsql.GT("subscription_expires_at", 0),
			entsql.LT("subscription_expires_at", now.UnixMilli()),
		)).
		Query()

	res, err := r.store.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("expire subscriptions: %w", err)
	}
	return res.RowsAffected()
}
