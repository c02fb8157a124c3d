package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/examina/internal/store"
)

// PremiumPrice is the weekly plan in paise.
const PremiumPrice = 2900

// PremiumPeriod is how long one payment extends premium access.
const PremiumPeriod = 7 * 24 * time.Hour

var (
	// ErrInvalidSignature means the checkout signature did not match.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrUnknownOrder means the order was not created for this user.
	ErrUnknownOrder = errors.New("unknown order")

	// ErrAlreadyPaid means the order has already been verified.
	ErrAlreadyPaid = errors.New("order already paid")
)

// Service ties orders and payments to user profiles.
type Service struct {
	gateway  Gateway
	secret   string
	payments store.PaymentRepo
	profiles store.ProfileRepo
	log      *zap.Logger
	now      func() time.Time
}

// NewService returns a payment Service. secret is the Razorpay key secret
// used for signature checks.
func NewService(gw Gateway, secret string, payments store.PaymentRepo, profiles store.ProfileRepo, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		gateway:  gw,
		secret:   secret,
		payments: payments,
		profiles: profiles,
		log:      log,
		now:      time.Now,
	}
}

// CreateOrder opens an order for userID and records it as created.
func (s *Service) CreateOrder(ctx context.Context, userID string, amountMinor int) (string, error) {
	orderID, err := s.gateway.CreateOrder(ctx, amountMinor)
	if err != nil {
		return "", err
	}
	p := &store.Payment{
		ID:              uuid.NewString(),
		UserID:          userID,
		RazorpayOrderID: orderID,
		Amount:          amountMinor,
		Currency:        Currency,
		Status:          store.PaymentCreated,
		CreatedAt:       s.now().UTC(),
	}
	if err := s.payments.Save(ctx, p); err != nil {
		return "", fmt.Errorf("record order: %w", err)
	}
	s.log.Info("order created", zap.String("user_id", userID), zap.String("order_id", orderID), zap.Int("amount", amountMinor))
	return orderID, nil
}

// Verify checks the checkout signature, claims the user's created order
// and extends their premium access by PremiumPeriod. An order is only ever
// credited once, and only to the user who created it.
func (s *Service) Verify(ctx context.Context, userID, orderID, paymentID, signature string) (*store.Profile, error) {
	if !VerifySignature(orderID, paymentID, signature, s.secret) {
		s.log.Warn("payment signature mismatch", zap.String("user_id", userID), zap.String("order_id", orderID))
		return nil, ErrInvalidSignature
	}

	order, err := s.payments.ByOrder(ctx, orderID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUnknownOrder
	}
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		s.log.Warn("payment order belongs to another user", zap.String("user_id", userID), zap.String("order_id", orderID))
		return nil, ErrUnknownOrder
	}
	if order.Status == store.PaymentPaid {
		return nil, ErrAlreadyPaid
	}

	claimed, err := s.payments.MarkPaid(ctx, userID, orderID, paymentID)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, ErrAlreadyPaid
	}

	now := s.now().UTC()
	profile, err := s.profiles.Get(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		profile = &store.Profile{UserID: userID}
	} else if err != nil {
		return nil, err
	}

	base := now
	if exp := profile.SubscriptionExpiresAt; exp != nil && exp.After(now) {
		base = *exp
	}
	expires := base.Add(PremiumPeriod)
	profile.SubscriptionStatus = store.SubscriptionPremium
	profile.SubscriptionExpiresAt = &expires
	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return nil, fmt.Errorf("activate premium: %w", err)
	}

	s.log.Info("premium activated", zap.String("user_id", userID), zap.String("order_id", orderID), zap.Time("expires_at", expires))
	return profile, nil
}
