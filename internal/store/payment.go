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

type paymentRepo struct {
	store *Store
}

type paymentRow struct {
	ID                string `db:"id"`
	UserID            string `db:"user_id"`
	RazorpayOrderID   string `db:"razorpay_order_id"`
	RazorpayPaymentID string `db:"razorpay_payment_id"`
	Amount            int    `db:"amount"`
	Currency          string `db:"currency"`
	Status            string `db:"status"`
	CreatedAt         int64  `db:"created_at"`
}

var paymentColumns = []string{
	"id", "user_id", "razorpay_order_id", "razorpay_payment_id", "amount",
	"currency", "status", "created_at",
}

func (r paymentRow) payment() Payment {
	return Payment{
		ID:                r.ID,
		UserID:            r.UserID,
		RazorpayOrderID:   r.RazorpayOrderID,
		RazorpayPaymentID: r.RazorpayPaymentID,
		Amount:            r.Amount,
		Currency:          r.Currency,
		Status:            r.Status,
		CreatedAt:         fromMillis(r.CreatedAt),
	}
}

func (r *paymentRepo) Save(ctx context.Context, p *Payment) error {
	if p.RazorpayOrderID == "" {
		return errors.New("payment has no order id")
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Currency == "" {
		p.Currency = "INR"
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	query, args := r.store.builder().Insert(tablePayments).
		Columns(paymentColumns...).
		Values(
			p.ID,
			p.UserID,
			p.RazorpayOrderID,
			p.RazorpayPaymentID,
			p.Amount,
			p.Currency,
			p.Status,
			toMillis(p.CreatedAt),
		).
		OnConflict(
			entsql.ConflictColumns("razorpay_order_id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.SetExcluded("razorpay_payment_id")
				u.SetExcluded("amount")
				u.SetExcluded("status")
			}),
		).
		Query()

	if _, err := r.store.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save payment %s: %w", p.RazorpayOrderID, err)
	}
	return nil
}

func (r *paymentRepo) ByOrder(ctx context.Context, orderID string) (*Payment, error) {
	b := r.store.builder()
	query, args := b.Select(paymentColumns...).
		From(b.Table(tablePayments)).
		Where(entsql.EQ("razorpay_order_id", orderID)).
		Query()

	var row paymentRow
	err := r.store.db.GetContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get payment %s: %w", orderID, err)
	}
	p := row.payment()
	return &p, nil
}

func (r *paymentRepo) MarkPaid(ctx context.Context, userID, orderID, paymentID string) (bool, error) {
	query, args := r.store.builder().Update(tablePayments).
		Set("status", PaymentPaid).
		Set("razorpay_payment_id", paymentID).
		Where(entsql.And(
			entsql.EQ("razorpay_order_id", orderID),
			entsql.EQ("user_id", userID),
			entsql.EQ("status", PaymentCreated),
		)).
		Query()

	res, err := r.store.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("mark payment %s paid: %w", orderID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark payment %s paid: %w", orderID, err)
	}
	return n == 1, nil
}

func (r *paymentRepo) ForUser(ctx context.Context, userID string) ([]Payment, error) {
	b := r.store.builder()
	query, args := b.Select(paymentColumns...).
		From(b.Table(tablePayments)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("created_at")).
		Query()

	var rows []paymentRow
	if err := r.store.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list payments for %s: %w", userID, err)
	}
	out := make([]Payment, len(rows))
	for i, row := range rows {
		out[i] = row.payment()
	}
	return out, nil
}
