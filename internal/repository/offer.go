package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/shanmukhasaireddy13/code-chef-solutions-sub000/internal/model"
)

var (
	ErrOfferNotFound  = errors.New("offer not found")
	ErrDuplicateOffer = errors.New("offer code already exists")
)

// GetOfferByCode matches codes case-insensitively; codes are stored upper.
func (r *Repository) GetOfferByCode(ctx context.Context, code string) (*model.Offer, error) {
	var offer model.Offer
	err := r.db.GetContext(ctx, &offer,
		"SELECT * FROM offers WHERE code = UPPER($1)", code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOfferNotFound
		}
		return nil, err
	}
	return &offer, nil
}

func (r *Repository) GetOfferByID(ctx context.Context, id uuid.UUID) (*model.Offer, error) {
	var offer model.Offer
	err := r.db.GetContext(ctx, &offer, "SELECT * FROM offers WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOfferNotFound
		}
		return nil, err
	}
	return &offer, nil
}

// ListActiveAutoApplyOffers returns auto-apply candidates in creation order,
// which is the engine's tie-break within a priority tier.
func (r *Repository) ListActiveAutoApplyOffers(ctx context.Context) ([]model.Offer, error) {
	var offers []model.Offer
	err := r.db.SelectContext(ctx, &offers, `
		SELECT * FROM offers
		WHERE is_active = true AND auto_apply = true
		ORDER BY created_at, id`)
	return offers, err
}

func (r *Repository) CountOfferUsage(ctx context.Context, userID, offerID uuid.UUID) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM offer_usages
		WHERE user_id = $1 AND offer_id = $2`, userID, offerID)
	return count, err
}

func (r *Repository) CreateOffer(ctx context.Context, offer *model.Offer) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO offers (
			id, code, offer_type, discount_type, discount_value, discount_percent,
			min_purchase_amount, min_referrals, buy_count, get_free_count, max_free_price,
			is_active, valid_until, usage_limit, auto_apply, description
		) VALUES ($1, UPPER($2), $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING created_at`,
		offer.ID, offer.Code, offer.Type, offer.DiscountType, offer.DiscountValue,
		offer.DiscountPercent, offer.MinPurchaseAmount, offer.MinReferrals,
		offer.BuyCount, offer.GetFreeCount, offer.MaxFreePrice,
		offer.IsActive, offer.ValidUntil, offer.UsageLimit, offer.AutoApply, offer.Description,
	).Scan(&offer.CreatedAt)
	if err != nil && isUniqueViolation(err, "offers_code_key") {
		return ErrDuplicateOffer
	}
	return err
}

func (r *Repository) ListOffers(ctx context.Context, limit, offset int) ([]model.Offer, error) {
	var offers []model.Offer
	err := r.db.SelectContext(ctx, &offers, `
		SELECT * FROM offers
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	return offers, err
}

func (r *Repository) DeactivateOffer(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE offers SET is_active = false WHERE id = $1", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrOfferNotFound
	}
	return nil
}
