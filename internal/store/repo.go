package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// KeyValueStore is a namespaced string-keyed blob store.
type KeyValueStore interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Put creates or overwrites key.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys lists every key in the namespace in sorted order.
	Keys(ctx context.Context) ([]string, error)

	// CompareAndSwap stores value only if key still holds old. A nil old
	// means the key must be absent. swapped is false when another writer
	// got there first.
	CompareAndSwap(ctx context.Context, key string, old, value []byte) (swapped bool, err error)
}

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int    // max results (0 = unlimited)
	Purpose string // exact purpose match when non-empty
	Before  int64  // id < Before when positive
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEventRecord is a stored LLM event.
type LLMRequestEventRecord struct {
	ID           int
	Timestamp    time.Time
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMUsageStats aggregates usage for one purpose.
type LLMUsageStats struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// LLMModelUsage aggregates usage for one model.
type LLMModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo records and queries LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEventRecord, error)

	// GetLLMEvent returns one event, or nil when it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEventRecord, error)

	LLMUsageByPurpose(ctx context.Context) ([]LLMUsageStats, error)
	LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error)
}

// Subscription states.
const (
	SubscriptionFree    = "free"
	SubscriptionPremium = "premium"
)

// DefaultExamType is assigned to new profiles.
const DefaultExamType = "SSC CGL"

// Profile is a user's account record.
type Profile struct {
	ID                    string     `json:"id"`
	UserID                string     `json:"user_id"`
	Name                  string     `json:"name"`
	Email                 string     `json:"email"`
	AvatarURL             string     `json:"avatar_url"`
	ExamType              string     `json:"exam_type"`
	SubscriptionStatus    string     `json:"subscription_status"`
	SubscriptionExpiresAt *time.Time `json:"subscription_expires_at"`
	StreakCount           int        `json:"streak_count"`
	StreakLastDate        string     `json:"streak_last_date"`
	CreatedAt             time.Time  `json:"created_at"`
}

// IsPremium reports whether the profile has an unexpired premium plan.
func (p *Profile) IsPremium(now time.Time) bool {
	if p == nil || p.SubscriptionStatus != SubscriptionPremium {
		return false
	}
	return p.SubscriptionExpiresAt == nil || p.SubscriptionExpiresAt.After(now)
}

// ProfileRepo stores user profiles.
type ProfileRepo interface {
	// Get returns the profile for userID, or ErrNotFound.
	Get(ctx context.Context, userID string) (*Profile, error)

	// Upsert creates or replaces the profile keyed by UserID.
	Upsert(ctx context.Context, p *Profile) error

	// ExpireSubscriptions downgrades premium profiles whose expiry is
	// before now and returns how many changed.
	ExpireSubscriptions(ctx context.Context, now time.Time) (int64, error)
}

// Payment states.
const (
	PaymentCreated = "created"
	PaymentPaid    = "paid"
)

// Payment is one Razorpay order and its outcome.
type Payment struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	RazorpayOrderID   string    `json:"razorpay_order_id"`
	RazorpayPaymentID string    `json:"razorpay_payment_id"`
	Amount            int       `json:"amount"`
	Currency          string    `json:"currency"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
}

// PaymentRepo stores payments keyed by order id.
type PaymentRepo interface {
	// Save creates or updates the payment with the same order id.
	Save(ctx context.Context, p *Payment) error

	// ByOrder returns the payment for orderID, or ErrNotFound.
	ByOrder(ctx context.Context, orderID string) (*Payment, error)

	// MarkPaid moves userID's created order to paid with paymentID. It
	// reports false when no such created order exists, so each order is
	// claimed at most once.
	MarkPaid(ctx context.Context, userID, orderID, paymentID string) (bool, error)

	// ForUser lists a user's payments, newest first.
	ForUser(ctx context.Context, userID string) ([]Payment, error)
}

// TokenRepo tracks revoked token ids.
type TokenRepo interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)

	// Purge drops revocations whose token has expired anyway.
	Purge(ctx context.Context, now time.Time) (int64, error)
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
