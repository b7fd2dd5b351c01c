package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/shanmukhasaireddy13/code-chef-solutions-sub000/internal/model"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrDuplicateReference = errors.New("reference already used")
	ErrOrderResolved      = errors.New("order already resolved")
)

// CreateOrder persists a pending top-up order and, when a coupon was applied,
// its usage record, in one transaction. The unique index on reference_hash is
// what actually closes the replay window; the application-level existence
// check in the service is only for a friendlier early error.
func (r *Repository) CreateOrder(ctx context.Context, order *model.Order, offer *model.Offer) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if offer != nil {
		var used int
		err = tx.GetContext(ctx, &used,
			"SELECT COUNT(*) FROM offer_usages WHERE user_id = $1 AND offer_id = $2",
			order.UserID, offer.ID)
		if err != nil {
			return fmt.Errorf("failed to count offer usage: %w", err)
		}
		if used >= offer.UsageLimit {
			return ErrUsageLimitExceeded
		}
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (
			id, user_id, paid_amount, credits_to_grant,
			encrypted_reference, reference_hash, status, applied_offer_code
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`,
		order.ID, order.UserID, order.PaidAmount, order.CreditsToGrant,
		order.EncryptedReference, order.ReferenceHash, order.Status, order.AppliedOfferCode,
	).Scan(&order.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "orders_reference_hash_key") {
			return ErrDuplicateReference
		}
		return fmt.Errorf("failed to create order: %w", err)
	}

	if offer != nil {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO offer_usages (offer_id, user_id) VALUES ($1, $2)",
			offer.ID, order.UserID)
		if err != nil {
			return fmt.Errorf("failed to record offer usage: %w", err)
		}
	}

	return tx.Commit()
}

func (r *Repository) GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	err := r.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *Repository) ReferenceHashExists(ctx context.Context, hash string) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM orders WHERE reference_hash = $1", hash)
	return count > 0, err
}

func (r *Repository) ListOrdersByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.SelectContext(ctx, &orders, `
		SELECT * FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, userID, limit, offset)
	return orders, err
}

func (r *Repository) ListOrders(ctx context.Context, status model.OrderStatus, limit, offset int) ([]model.Order, error) {
	var orders []model.Order
	if status == "" {
		err := r.db.SelectContext(ctx, &orders, `
			SELECT * FROM orders
			ORDER BY created_at DESC
			LIMIT $1 OFFSET $2`, limit, offset)
		return orders, err
	}
	err := r.db.SelectContext(ctx, &orders, `
		SELECT * FROM orders
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, status, limit, offset)
	return orders, err
}

// ApproveOrder flips a pending order to approved and credits the user in one
// transaction. The status predicate in the UPDATE makes the transition
// race-safe: a concurrent resolve sees zero rows affected.
func (r *Repository) ApproveOrder(ctx context.Context, orderID, userID uuid.UUID, credits float64) (float64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE orders SET status = $1, resolved_at = NOW()
		WHERE id = $2 AND status = $3`,
		model.OrderStatusApproved, orderID, model.OrderStatusPending)
	if err != nil {
		return 0, fmt.Errorf("failed to approve order: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, ErrOrderResolved
	}

	var balance float64
	err = tx.GetContext(ctx, &balance,
		"SELECT credits FROM users WHERE id = $1 FOR UPDATE", userID)
	if err != nil {
		return 0, fmt.Errorf("failed to lock user: %w", err)
	}

	balance += credits
	_, err = tx.ExecContext(ctx,
		"UPDATE users SET credits = $1, updated_at = NOW() WHERE id = $2", balance, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to credit user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return balance, nil
}

func (r *Repository) RejectOrder(ctx context.Context, orderID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $1, resolved_at = NOW()
		WHERE id = $2 AND status = $3`,
		model.OrderStatusRejected, orderID, model.OrderStatusPending)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrOrderResolved
	}
	return nil
}
