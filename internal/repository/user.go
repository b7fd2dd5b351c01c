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
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInsufficientFunds  = errors.New("insufficient credits")
	ErrUsageLimitExceeded = errors.New("offer usage limit exceeded")
	ErrAlreadyOwned       = errors.New("solution already owned")
)

func (r *Repository) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, "SELECT * FROM users WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (id, email, name, role, referral_code, referred_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		user.ID,
		user.Email,
		user.Name,
		user.Role,
		user.ReferralCode,
		user.ReferredBy,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil && isUniqueViolation(err, "users_email_key") {
		return ErrDuplicateEmail
	}
	return err
}

func (r *Repository) GetUserByReferralCode(ctx context.Context, code string) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, "SELECT * FROM users WHERE referral_code = $1", code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetOwnedSolutionIDs returns the set of solutions the user has purchased.
func (r *Repository) GetOwnedSolutionIDs(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]bool, error) {
	var ids []uuid.UUID
	err := r.db.SelectContext(ctx, &ids,
		"SELECT solution_id FROM user_solutions WHERE user_id = $1", userID)
	if err != nil {
		return nil, err
	}

	owned := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		owned[id] = true
	}
	return owned, nil
}

func (r *Repository) CountOwnedSolutions(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM user_solutions WHERE user_id = $1", userID)
	return count, err
}

// CreditReferrer increments the referrer's referral count and grants the
// signup bonus in a single transaction with the user row locked.
func (r *Repository) CreditReferrer(ctx context.Context, referrerID uuid.UUID, bonus float64) (float64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var balance float64
	err = tx.GetContext(ctx, &balance,
		"SELECT credits FROM users WHERE id = $1 FOR UPDATE", referrerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrUserNotFound
		}
		return 0, fmt.Errorf("failed to lock referrer: %w", err)
	}

	balance += bonus
	_, err = tx.ExecContext(ctx, `
		UPDATE users SET credits = $1, referral_count = referral_count + 1, updated_at = NOW()
		WHERE id = $2`, balance, referrerID)
	if err != nil {
		return 0, fmt.Errorf("failed to credit referrer: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return balance, nil
}

// PurchaseSolutions commits a checkout atomically: the user row is locked,
// the balance re-checked and debited, ownership rows inserted, and the offer
// usage recorded with its limit re-checked under the lock. Any failure rolls
// the whole purchase back.
func (r *Repository) PurchaseSolutions(ctx context.Context, userID uuid.UUID, solutionIDs []uuid.UUID, amount float64, offer *model.Offer) (float64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var balance float64
	err = tx.GetContext(ctx, &balance,
		"SELECT credits FROM users WHERE id = $1 FOR UPDATE", userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrUserNotFound
		}
		return 0, fmt.Errorf("failed to lock user: %w", err)
	}

	if balance < amount {
		return balance, ErrInsufficientFunds
	}

	if offer != nil {
		var used int
		err = tx.GetContext(ctx, &used,
			"SELECT COUNT(*) FROM offer_usages WHERE user_id = $1 AND offer_id = $2",
			userID, offer.ID)
		if err != nil {
			return 0, fmt.Errorf("failed to count offer usage: %w", err)
		}
		if used >= offer.UsageLimit {
			return 0, ErrUsageLimitExceeded
		}
	}

	balance -= amount
	_, err = tx.ExecContext(ctx,
		"UPDATE users SET credits = $1, updated_at = NOW() WHERE id = $2", balance, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to debit credits: %w", err)
	}

	for _, solutionID := range solutionIDs {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO user_solutions (user_id, solution_id) VALUES ($1, $2)",
			userID, solutionID)
		if err != nil {
			if isUniqueViolation(err, "user_solutions_pkey") {
				return 0, ErrAlreadyOwned
			}
			return 0, fmt.Errorf("failed to grant solution: %w", err)
		}
	}

	if offer != nil {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO offer_usages (offer_id, user_id) VALUES ($1, $2)",
			offer.ID, userID)
		if err != nil {
			return 0, fmt.Errorf("failed to record offer usage: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return balance, nil
}
