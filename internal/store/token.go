package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

type tokenRepo struct {
	store *Store
}

func (r *tokenRepo) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	query, args := r.store.builder().Insert(tableRevokedTokens).
		Columns("jti", "expires_at").
		Values(jti, toMillis(expiresAt)).
		OnConflict(
			entsql.ConflictColumns("jti"),
			entsql.DoNothing(),
		).
		Query()

	if _, err := r.store.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (r *tokenRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	b := r.store.builder()
	query, args := b.Select("jti").
		From(b.Table(tableRevokedTokens)).
		Where(entsql.EQ("jti", jti)).
		Query()

	var got string
	err := r.store.db.GetContext(ctx, &got, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check token: %w", err)
	}
	return true, nil
}

func (r *tokenRepo) Purge(ctx context.Context, now time.Time) (int64, error) {
	query, args := r.store.builder().Delete(tableRevokedTokens).
		Where(entsql.And(
			entsql.GT("expires_at", 0),
			entsql.LT("expires_at", now.UnixMilli()),
		)).
		Query()

	res, err := r.store.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("purge revoked tokens: %w", err)
	}
	return res.RowsAffected()
}
