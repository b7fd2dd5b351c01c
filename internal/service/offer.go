package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shanmukhasaireddy13/code-chef-solutions-sub000/internal/model"
	"github.com/shanmukhasaireddy13/code-chef-solutions-sub000/internal/repository"
)

var (
	ErrCouponInvalid       = errors.New("invalid or expired coupon")
	ErrCouponExpired       = errors.New("coupon has expired")
	ErrCouponUsed          = errors.New("coupon already used")
	ErrFirstPurchaseOnly   = errors.New("offer is valid for the first purchase only")
	ErrCouponNotApplicable = errors.New("this coupon cannot be applied to top-ups")
	ErrOfferInvalid        = errors.New("invalid offer definition")
)

// MinPurchaseError reports the minimum cart or top-up amount an offer needs.
type MinPurchaseError struct {
	Required float64
}

func (e *MinPurchaseError) Error() string {
	return fmt.Sprintf("minimum purchase amount of %.2f credits required", e.Required)
}

// ReferralShortfallError reports how many more referrals unlock the offer.
type ReferralShortfallError struct {
	Remaining int
}

func (e *ReferralShortfallError) Error() string {
	return fmt.Sprintf("refer %d more friends to unlock this offer", e.Remaining)
}

// BogoItemCountError reports the cart size a BOGO offer needs.
type BogoItemCountError struct {
	Required int
}

func (e *BogoItemCountError) Error() string {
	return fmt.Sprintf("cart must contain at least %d items for this offer", e.Required)
}

// autoApplyPriority is the explicit selection order among eligible auto-apply
// offers. Within a tier, creation order wins (the repository returns
// candidates ordered by created_at, id).
var autoApplyPriority = map[model.OfferType]int{
	model.OfferBOGO:           0,
	model.OfferFirstTime:      1,
	model.OfferDiscount:       2,
	model.OfferReferralUnlock: 3,
}

type offerStore interface {
	GetOfferByCode(ctx context.Context, code string) (*model.Offer, error)
	ListActiveAutoApplyOffers(ctx context.Context) ([]model.Offer, error)
	CountOfferUsage(ctx context.Context, userID, offerID uuid.UUID) (int, error)
	CountOwnedSolutions(ctx context.Context, userID uuid.UUID) (int, error)
	CreateOffer(ctx context.Context, offer *model.Offer) error
	ListOffers(ctx context.Context, limit, offset int) ([]model.Offer, error)
	DeactivateOffer(ctx context.Context, id uuid.UUID) error
}

// Evaluation is the engine's verdict for one cart or top-up amount.
type Evaluation struct {
	Offer          *model.Offer `json:"offer,omitempty"`
	DiscountAmount float64      `json:"discount_amount"`
	FinalAmount    float64      `json:"final_amount"`
	FreeItemIDs    []uuid.UUID  `json:"free_item_ids,omitempty"`
}

type OfferService struct {
	store offerStore
	log   *zap.Logger
	now   func() time.Time
}

func NewOfferService(store offerStore, log *zap.Logger) *OfferService {
	return &OfferService{store: store, log: log, now: time.Now}
}

// EvaluateCart applies at most one offer to a checkout cart. With a code it
// validates that exact offer and fails loudly; without one it picks the best
// eligible auto-apply offer, or none, silently.
func (s *OfferService) EvaluateCart(ctx context.Context, user *model.User, items []model.CartItem, code string) (*Evaluation, error) {
	return s.evaluate(ctx, user, items, cartTotal(items), code, false)
}

// EvaluateTopUp is the amount-only mode used by top-up orders. Cart-shaped
// offers (BOGO) are rejected here.
func (s *OfferService) EvaluateTopUp(ctx context.Context, user *model.User, amount float64, code string) (*Evaluation, error) {
	return s.evaluate(ctx, user, nil, amount, code, true)
}

func (s *OfferService) evaluate(ctx context.Context, user *model.User, items []model.CartItem, total float64, code string, topUp bool) (*Evaluation, error) {
	if code != "" {
		return s.evaluateCode(ctx, user, items, total, code, topUp)
	}
	return s.evaluateAuto(ctx, user, items, total, topUp)
}

func (s *OfferService) evaluateCode(ctx context.Context, user *model.User, items []model.CartItem, total float64, code string, topUp bool) (*Evaluation, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	offer, err := s.store.GetOfferByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrOfferNotFound) {
			return nil, ErrCouponInvalid
		}
		return nil, err
	}
	if !offer.IsActive {
		return nil, ErrCouponInvalid
	}
	if offer.Expired(s.now()) {
		return nil, ErrCouponExpired
	}

	if err := s.checkEligibility(ctx, user, offer, items, total, topUp); err != nil {
		return nil, err
	}

	return s.apply(offer, items, total), nil
}

func (s *OfferService) evaluateAuto(ctx context.Context, user *model.User, items []model.CartItem, total float64, topUp bool) (*Evaluation, error) {
	offers, err := s.store.ListActiveAutoApplyOffers(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var winner *model.Offer
	for i := range offers {
		offer := &offers[i]
		if offer.Expired(now) {
			continue
		}
		if s.checkEligibility(ctx, user, offer, items, total, topUp) != nil {
			continue
		}
		if winner == nil || autoApplyPriority[offer.Type] < autoApplyPriority[winner.Type] {
			winner = offer
		}
	}

	if winner == nil {
		return &Evaluation{FinalAmount: round2(total)}, nil
	}
	return s.apply(winner, items, total), nil
}

// checkEligibility runs the per-type filter from the evaluation rules. It is
// shared between the manual-code path (errors surface to the caller) and the
// auto-apply path (errors just exclude the candidate).
func (s *OfferService) checkEligibility(ctx context.Context, user *model.User, offer *model.Offer, items []model.CartItem, total float64, topUp bool) error {
	used, err := s.store.CountOfferUsage(ctx, user.ID, offer.ID)
	if err != nil {
		return err
	}
	if used >= offer.UsageLimit {
		return ErrCouponUsed
	}

	switch offer.Type {
	case model.OfferBOGO:
		if topUp {
			return ErrCouponNotApplicable
		}
		rules, ok := offer.Bogo()
		if !ok {
			return ErrCouponInvalid
		}
		if required := rules.BuyCount + rules.GetFreeCount; len(items) < required {
			return &BogoItemCountError{Required: required}
		}
		return nil

	case model.OfferFirstTime:
		owned, err := s.store.CountOwnedSolutions(ctx, user.ID)
		if err != nil {
			return err
		}
		if owned > 0 {
			return ErrFirstPurchaseOnly
		}

	case model.OfferReferralUnlock:
		if user.ReferralCount < offer.MinReferrals {
			return &ReferralShortfallError{Remaining: offer.MinReferrals - user.ReferralCount}
		}

	case model.OfferDiscount:
		// only the shared minimum below

	default:
		return ErrCouponInvalid
	}

	if total < offer.MinPurchaseAmount {
		return &MinPurchaseError{Required: offer.MinPurchaseAmount}
	}
	return nil
}

func (s *OfferService) apply(offer *model.Offer, items []model.CartItem, total float64) *Evaluation {
	discount, freeIDs := computeDiscount(offer, items, total)

	eval := &Evaluation{
		Offer:          offer,
		DiscountAmount: round2(discount),
		FinalAmount:    round2(total - discount),
		FreeItemIDs:    freeIDs,
	}
	if s.log != nil {
		s.log.Debug("offer applied",
			zap.String("offer_type", string(offer.Type)),
			zap.Float64("discount", eval.DiscountAmount),
			zap.Float64("final", eval.FinalAmount))
	}
	return eval
}

// CreateOffer validates and persists a promotional rule (admin operation).
func (s *OfferService) CreateOffer(ctx context.Context, offer *model.Offer) error {
	if offer.ID == uuid.Nil {
		offer.ID = uuid.New()
	}
	if offer.UsageLimit <= 0 {
		offer.UsageLimit = 1
	}

	switch offer.Type {
	case model.OfferBOGO:
		if offer.BuyCount == nil || offer.GetFreeCount == nil ||
			*offer.BuyCount <= 0 || *offer.GetFreeCount <= 0 {
			return fmt.Errorf("%w: BOGO offers require buy_count and get_free_count", ErrOfferInvalid)
		}
	case model.OfferDiscount, model.OfferFirstTime, model.OfferReferralUnlock:
		if offer.DiscountType != model.DiscountFlat && offer.DiscountType != model.DiscountPercentage {
			return fmt.Errorf("%w: discount_type must be FLAT or PERCENTAGE", ErrOfferInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown offer type %q", ErrOfferInvalid, offer.Type)
	}

	if offer.Code == nil && !offer.AutoApply {
		return fmt.Errorf("%w: an offer without a code must be auto-apply", ErrOfferInvalid)
	}

	return s.store.CreateOffer(ctx, offer)
}

// ListOffers returns all offers, newest first (admin operation).
func (s *OfferService) ListOffers(ctx context.Context, limit, offset int) ([]model.Offer, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.store.ListOffers(ctx, limit, offset)
}

// DeactivateOffer turns an offer off without deleting its usage history.
func (s *OfferService) DeactivateOffer(ctx context.Context, id uuid.UUID) error {
	return s.store.DeactivateOffer(ctx, id)
}

func computeDiscount(offer *model.Offer, items []model.CartItem, total float64) (float64, []uuid.UUID) {
	var discount float64
	var freeIDs []uuid.UUID

	if rules, ok := offer.Bogo(); ok {
		sorted := make([]model.CartItem, len(items))
		copy(sorted, items)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Price < sorted[j].Price
		})

		// The cheapest getFreeCount items are the free slots; those above
		// the price cap stay chargeable even inside the slots.
		for _, item := range sorted[:min(rules.GetFreeCount, len(sorted))] {
			if rules.MaxFreePrice > 0 && item.Price > rules.MaxFreePrice {
				continue
			}
			discount += item.Price
			freeIDs = append(freeIDs, item.SolutionID)
		}
	} else {
		switch offer.DiscountType {
		case model.DiscountFlat:
			discount = offer.DiscountValue
		case model.DiscountPercentage:
			discount = total * offer.DiscountPercent / 100
		}
	}

	if discount > total {
		discount = total
	}
	return discount, freeIDs
}

func cartTotal(items []model.CartItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Price
	}
	return total
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
