package tutor

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/abhisek/examina/internal/records"
	"github.com/abhisek/examina/internal/store"
)

// FreeMessageLimit is the daily number of messages for free users.
const FreeMessageLimit = 5

const usageKey = "tutor-usage"

var usageSchema = records.MustCompile("tutor-usage", `{
	"type": "object",
	"required": ["date", "count"],
	"properties": {
		"date": {"type": "string", "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}$"},
		"count": {"type": "integer", "minimum": 0}
	}
}`)

// Usage counts messages sent on Date.
type Usage struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Remaining returns the free messages left under limit.
func (u Usage) Remaining(limit int) int {
	return max(limit-u.Count, 0)
}

// Day formats t as the usage date in t's location.
func Day(t time.Time) string {
	return t.Format(time.DateOnly)
}

// UsageStore persists the daily counter.
type UsageStore struct {
	kv store.KeyValueStore
}

// NewUsageStore returns a UsageStore over kv.
func NewUsageStore(kv store.KeyValueStore) *UsageStore {
	return &UsageStore{kv: kv}
}

// Load returns today's usage. A record from another day, or one that does
// not validate, counts as zero.
func (s *UsageStore) Load(ctx context.Context, now time.Time) (Usage, error) {
	today := Usage{Date: Day(now)}
	var u Usage
	found, err := records.Read(ctx, s.kv, usageKey, usageSchema, &u)
	if errors.Is(err, records.ErrInvalid) {
		return today, nil
	}
	if err != nil {
		return Usage{}, err
	}
	if !found || u.Date != today.Date {
		return today, nil
	}
	return u, nil
}

// Reserve claims one of today's messages under limit. ok is false when
// the limit is already used. The check and the increment are a single
// compare-and-swap, so concurrent sends cannot exceed limit.
func (s *UsageStore) Reserve(ctx context.Context, now time.Time, limit int) (u Usage, ok bool, err error) {
	for {
		raw, found, err := s.kv.Get(ctx, usageKey)
		if err != nil {
			return Usage{}, false, err
		}
		u = Usage{Date: Day(now)}
		if found {
			var stored Usage
			if records.Decode(usageSchema, raw, &stored) == nil && stored.Date == u.Date {
				u = stored
			}
		} else {
			raw = nil
		}
		if u.Count >= limit {
			return u, false, nil
		}

		u.Count++
		next, err := json.Marshal(u)
		if err != nil {
			return Usage{}, false, err
		}
		swapped, err := s.kv.CompareAndSwap(ctx, usageKey, raw, next)
		if err != nil {
			return Usage{}, false, err
		}
		if swapped {
			return u, true, nil
		}
		if err := ctx.Err(); err != nil {
			return Usage{}, false, err
		}
	}
}

// Increment adds one message to today's count without a limit.
func (s *UsageStore) Increment(ctx context.Context, now time.Time) (Usage, error) {
	u, _, err := s.Reserve(ctx, now, math.MaxInt)
	return u, err
}
