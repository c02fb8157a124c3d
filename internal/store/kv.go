package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// kvStore implements KeyValueStore over the kv table.
type kvStore struct {
	store     *Store
	namespace string
}

func (k *kvStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b := k.store.builder()
	query, args := b.Select("value").
		From(b.Table(tableKV)).
		Where(entsql.And(
			entsql.EQ("namespace", k.namespace),
			entsql.EQ("key", key),
		)).
		Query()

	var value string
	err := k.store.db.GetContext(ctx, &value, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s/%s: %w", k.namespace, key, err)
	}
	return []byte(value), true, nil
}

func (k *kvStore) Put(ctx context.Context, key string, value []byte) error {
	query, args := k.store.builder().Insert(tableKV).
		Columns("namespace", "key", "value", "updated_at").
		Values(k.namespace, key, string(value), time.Now().UnixMilli()).
		OnConflict(
			entsql.ConflictColumns("namespace", "key"),
			entsql.ResolveWithNewValues(),
		).
		Query()

	if _, err := k.store.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("put %s/%s: %w", k.namespace, key, err)
	}
	return nil
}

func (k *kvStore) CompareAndSwap(ctx context.Context, key string, old, value []byte) (bool, error) {
	var (
		query string
		args  []any
	)
	now := time.Now().UnixMilli()
	if old == nil {
		query, args = k.store.builder().Insert(tableKV).
			Columns("namespace", "key", "value", "updated_at").
			Values(k.namespace, key, string(value), now).
			OnConflict(
				entsql.ConflictColumns("namespace", "key"),
				entsql.DoNothing(),
			).
			Query()
	} else {
		query, args = k.store.builder().Update(tableKV).
			Set("value", string(value)).
			Set("updated_at", now).
			Where(entsql.And(
				entsql.EQ("namespace", k.namespace),
				entsql.EQ("key", key),
				entsql.EQ("value", string(old)),
			)).
			Query()
	}

	res, err := k.store.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("swap %s/%s: %w", k.namespace, key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("swap %s/%s: %w", k.namespace, key, err)
	}
	return n == 1, nil
}

func (k *kvStore) Delete(ctx context.Context, key string) error {
	query, args := k.store.builder().Delete(tableKV).
		Where(entsql.And(
			entsql.EQ("namespace", k.namespace),
			entsql.EQ("key", key),
		)).
		Query()

	if _, err := k.store.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete %s/%s: %w", k.namespace, key, err)
	}
	return nil
}

func (k *kvStore) Keys(ctx context.Context) ([]string, error) {
	b := k.store.builder()
	query, args := b.Select("key").
		From(b.Table(tableKV)).
		Where(entsql.EQ("namespace", k.namespace)).
		OrderBy("key").
		Query()

	var keys []string
	if err := k.store.db.SelectContext(ctx, &keys, query, args...); err != nil {
		return nil, fmt.Errorf("list keys in %s: %w", k.namespace, err)
	}
	return keys, nil
}
