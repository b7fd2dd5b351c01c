package model

import (
	"time"

	"github.com/google/uuid"
)

type OfferType string

const (
	OfferDiscount       OfferType = "DISCOUNT"
	OfferBOGO           OfferType = "BOGO"
	OfferFirstTime      OfferType = "FIRST_TIME"
	OfferReferralUnlock OfferType = "REFERRAL_UNLOCK"
)

type DiscountType string

const (
	DiscountFlat       DiscountType = "FLAT"
	DiscountPercentage DiscountType = "PERCENTAGE"
)

type Offer struct {
	ID                uuid.UUID    `json:"id" db:"id"`
	Code              *string      `json:"code,omitempty" db:"code"`
	Type              OfferType    `json:"offer_type" db:"offer_type"`
	DiscountType      DiscountType `json:"discount_type" db:"discount_type"`
	DiscountValue     float64      `json:"discount_value" db:"discount_value"`
	DiscountPercent   float64      `json:"discount_percent" db:"discount_percent"`
	MinPurchaseAmount float64      `json:"min_purchase_amount" db:"min_purchase_amount"`
	MinReferrals      int          `json:"min_referrals" db:"min_referrals"`
	BuyCount          *int         `json:"buy_count,omitempty" db:"buy_count"`
	GetFreeCount      *int         `json:"get_free_count,omitempty" db:"get_free_count"`
	MaxFreePrice      *float64     `json:"max_free_price,omitempty" db:"max_free_price"`
	IsActive          bool         `json:"is_active" db:"is_active"`
	ValidUntil        *time.Time   `json:"valid_until,omitempty" db:"valid_until"`
	UsageLimit        int          `json:"usage_limit" db:"usage_limit"`
	AutoApply         bool         `json:"auto_apply" db:"auto_apply"`
	Description       *string      `json:"description,omitempty" db:"description"`
	CreatedAt         time.Time    `json:"created_at" db:"created_at"`
}

// BogoRules is the BOGO variant of an offer. Only offers with Type OfferBOGO
// carry it; everyone else reads the discount fields directly.
type BogoRules struct {
	BuyCount     int     `json:"buy_count"`
	GetFreeCount int     `json:"get_free_count"`
	MaxFreePrice float64 `json:"max_free_price"` // 0 means no cap
}

// Bogo returns the BOGO variant of the offer. The second return is false for
// non-BOGO offers and for malformed BOGO rows missing their rules.
func (o *Offer) Bogo() (BogoRules, bool) {
	if o.Type != OfferBOGO || o.BuyCount == nil || o.GetFreeCount == nil {
		return BogoRules{}, false
	}
	rules := BogoRules{
		BuyCount:     *o.BuyCount,
		GetFreeCount: *o.GetFreeCount,
	}
	if o.MaxFreePrice != nil {
		rules.MaxFreePrice = *o.MaxFreePrice
	}
	return rules, true
}

func (o *Offer) Expired(now time.Time) bool {
	return o.ValidUntil != nil && now.After(*o.ValidUntil)
}

type OfferUsage struct {
	ID        uuid.UUID `json:"id" db:"id"`
	OfferID   uuid.UUID `json:"offer_id" db:"offer_id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
