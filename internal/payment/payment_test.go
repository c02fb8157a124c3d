package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examina/internal/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open("file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

type stubGateway struct {
	orderID string
	amounts []int
}

func (g *stubGateway) CreateOrder(_ context.Context, amount int) (string, error) {
	g.amounts = append(g.amounts, amount)
	return g.orderID, nil
}

func TestRazorpayCreateOrder(t *testing.T) {
	var got orderRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "rzp_key", user)
		assert.Equal(t, "rzp_secret", pass)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"order_123","amount":2900,"currency":"INR"}`))
	}))
	defer srv.Close()

	rp := NewRazorpay(RazorpayConfig{KeyID: "rzp_key", KeySecret: "rzp_secret", BaseURL: srv.URL})
	id, err := rp.CreateOrder(context.Background(), 2900)
	require.NoError(t, err)
	assert.Equal(t, "order_123", id)
	assert.Equal(t, 2900, got.Amount)
	assert.Equal(t, "INR", got.Currency)
	assert.True(t, strings.HasPrefix(got.Receipt, "receipt_"))
}

func TestRazorpayCreateOrderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"amount too small"}}`))
	}))
	defer srv.Close()

	rp := NewRazorpay(RazorpayConfig{BaseURL: srv.URL})
	_, err := rp.CreateOrder(context.Background(), 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amount too small")

	_, err = rp.CreateOrder(context.Background(), 0)
	assert.Error(t, err)
}

func TestVerifySignature(t *testing.T) {
	sig := Sign("order_1", "pay_1", "secret")
	assert.Len(t, sig, 64)
	assert.True(t, VerifySignature("order_1", "pay_1", sig, "secret"))
	assert.False(t, VerifySignature("order_1", "pay_2", sig, "secret"))
	assert.False(t, VerifySignature("order_1", "pay_1", sig, "other"))
	assert.False(t, VerifySignature("order_1", "pay_1", "", "secret"))
}

func TestServiceCreateOrderRecordsPayment(t *testing.T) {
	s := openStore(t)
	gw := &stubGateway{orderID: "order_9"}
	svc := NewService(gw, "secret", s.PaymentRepo(), s.ProfileRepo(), nil)

	id, err := svc.CreateOrder(context.Background(), "user-1", PremiumPrice)
	require.NoError(t, err)
	assert.Equal(t, "order_9", id)

	p, err := s.PaymentRepo().ByOrder(context.Background(), "order_9")
	require.NoError(t, err)
	assert.Equal(t, store.PaymentCreated, p.Status)
	assert.Equal(t, "user-1", p.UserID)
}

func newTestService(t *testing.T) (*Service, *stubGateway, *store.Store) {
	t.Helper()
	s := openStore(t)
	gw := &stubGateway{}
	return NewService(gw, "secret", s.PaymentRepo(), s.ProfileRepo(), nil), gw, s
}

// openOrder creates orderID for userID through the service.
func openOrder(t *testing.T, svc *Service, gw *stubGateway, userID, orderID string) {
	t.Helper()
	gw.orderID = orderID
	_, err := svc.CreateOrder(context.Background(), userID, PremiumPrice)
	require.NoError(t, err)
}

func TestServiceVerifyExtendsPremium(t *testing.T) {
	svc, gw, s := newTestService(t)
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	openOrder(t, svc, gw, "user-1", "order_1")
	openOrder(t, svc, gw, "user-1", "order_2")

	profile, err := svc.Verify(ctx, "user-1", "order_1", "pay_1", Sign("order_1", "pay_1", "secret"))
	require.NoError(t, err)
	assert.Equal(t, store.SubscriptionPremium, profile.SubscriptionStatus)
	assert.True(t, profile.SubscriptionExpiresAt.Equal(now.Add(PremiumPeriod)))

	// A second payment stacks on the unexpired plan.
	profile, err = svc.Verify(ctx, "user-1", "order_2", "pay_2", Sign("order_2", "pay_2", "secret"))
	require.NoError(t, err)
	assert.True(t, profile.SubscriptionExpiresAt.Equal(now.Add(2*PremiumPeriod)))

	pay, err := s.PaymentRepo().ByOrder(ctx, "order_2")
	require.NoError(t, err)
	assert.Equal(t, store.PaymentPaid, pay.Status)
	assert.Equal(t, "pay_2", pay.RazorpayPaymentID)
	assert.Equal(t, PremiumPrice, pay.Amount)
}

func TestServiceVerifyCreditsOrderOnce(t *testing.T) {
	svc, gw, s := newTestService(t)
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	openOrder(t, svc, gw, "user-1", "order_1")
	sig := Sign("order_1", "pay_1", "secret")

	_, err := svc.Verify(ctx, "user-1", "order_1", "pay_1", sig)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = svc.Verify(ctx, "user-1", "order_1", "pay_1", sig)
		assert.ErrorIs(t, err, ErrAlreadyPaid)
	}

	p, err := s.ProfileRepo().Get(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, p.SubscriptionExpiresAt.Equal(now.Add(PremiumPeriod)))
}

func TestServiceVerifyRejectsOtherUsersOrder(t *testing.T) {
	svc, gw, s := newTestService(t)
	ctx := context.Background()

	openOrder(t, svc, gw, "user-1", "order_1")
	sig := Sign("order_1", "pay_1", "secret")

	_, err := svc.Verify(ctx, "user-2", "order_1", "pay_1", sig)
	assert.ErrorIs(t, err, ErrUnknownOrder)
	_, err = s.ProfileRepo().Get(ctx, "user-2")
	assert.ErrorIs(t, err, store.ErrNotFound)

	// The owner can still claim it afterwards.
	_, err = svc.Verify(ctx, "user-1", "order_1", "pay_1", sig)
	require.NoError(t, err)

	// Once paid, it stays unavailable to anyone else.
	_, err = svc.Verify(ctx, "user-2", "order_1", "pay_1", sig)
	assert.ErrorIs(t, err, ErrUnknownOrder)
}

func TestServiceVerifyUnknownOrder(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Verify(context.Background(), "user-1", "order_x", "pay_1", Sign("order_x", "pay_1", "secret"))
	assert.ErrorIs(t, err, ErrUnknownOrder)
}

func TestServiceVerifyRejectsBadSignature(t *testing.T) {
	s := openStore(t)
	svc := NewService(&stubGateway{}, "secret", s.PaymentRepo(), s.ProfileRepo(), nil)

	_, err := svc.Verify(context.Background(), "user-1", "order_1", "pay_1", "deadbeef")
	assert.ErrorIs(t, err, ErrInvalidSignature)

	_, err = s.ProfileRepo().Get(context.Background(), "user-1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
