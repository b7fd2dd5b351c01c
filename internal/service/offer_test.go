package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shanmukhasaireddy13/code-chef-solutions-sub000/internal/model"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int { return &i }
func floatPtr(f float64) *float64 { return &f }
func timePtr(t time.Time) *time.Time { return &t }

func testUser(credits float64) *model.User {
	return &model.User{
		ID:           uuid.New(),
		Email:        "user@example.com",
		Name:         "Test User",
		Role:         model.RoleUser,
		Credits:      credits,
		ReferralCode: "refcode1",
	}
}

func cartItems(prices ...float64) []model.CartItem {
	items := make([]model.CartItem, 0, len(prices))
	for _, price := range prices {
		items = append(items, model.CartItem{SolutionID: uuid.New(), Price: price})
	}
	return items
}

func flatOffer(code string, value float64) model.Offer {
	return model.Offer{
		ID:            uuid.New(),
		Code:          strPtr(code),
		Type:          model.OfferDiscount,
		DiscountType:  model.DiscountFlat,
		DiscountValue: value,
		IsActive:      true,
		UsageLimit:    1,
	}
}

func TestEvaluateCartFlatDiscount(t *testing.T) {
	store := newFakeStore()
	store.addOffer(flatOffer("SAVE10", 10))
	svc := NewOfferService(store, zap.NewNop())
	user := testUser(100)

	eval, err := svc.EvaluateCart(context.Background(), user, cartItems(30, 20), "save10")
	require.NoError(t, err)
	require.NotNil(t, eval.Offer)
	assert.Equal(t, 10.0, eval.DiscountAmount)
	assert.Equal(t, 40.0, eval.FinalAmount)
	assert.Empty(t, eval.FreeItemIDs)
}

func TestEvaluateCartPercentageRounding(t *testing.T) {
	store := newFakeStore()
	offer := flatOffer("THIRD", 0)
	offer.DiscountType = model.DiscountPercentage
	offer.DiscountPercent = 33.33
	store.addOffer(offer)
	svc := NewOfferService(store, zap.NewNop())

	eval, err := svc.EvaluateCart(context.Background(), testUser(100), cartItems(10), "THIRD")
	require.NoError(t, err)
	assert.Equal(t, 3.33, eval.DiscountAmount)
	assert.Equal(t, 6.67, eval.FinalAmount)
}

func TestEvaluateCartDiscountNeverExceedsTotal(t *testing.T) {
	store := newFakeStore()
	store.addOffer(flatOffer("HUGE", 500))
	svc := NewOfferService(store, zap.NewNop())

	eval, err := svc.EvaluateCart(context.Background(), testUser(100), cartItems(15, 5), "HUGE")
	require.NoError(t, err)
	assert.Equal(t, 20.0, eval.DiscountAmount)
	assert.Equal(t, 0.0, eval.FinalAmount)
}

func TestEvaluateCartUnknownCode(t *testing.T) {
	svc := NewOfferService(newFakeStore(), zap.NewNop())

	_, err := svc.EvaluateCart(context.Background(), testUser(100), cartItems(10), "NOPE")
	assert.ErrorIs(t, err, ErrCouponInvalid)
}

func TestEvaluateCartInactiveCode(t *testing.T) {
	store := newFakeStore()
	offer := flatOffer("OFF", 5)
	offer.IsActive = false
	store.addOffer(offer)
	svc := NewOfferService(store, zap.NewNop())

	_, err := svc.EvaluateCart(context.Background(), testUser(100), cartItems(10), "OFF")
	assert.ErrorIs(t, err, ErrCouponInvalid)
}

func TestEvaluateCartExpiredCode(t *testing.T) {
	store := newFakeStore()
	offer := flatOffer("OLD", 5)
	offer.ValidUntil = timePtr(time.Now().Add(-time.Hour))
	store.addOffer(offer)
	svc := NewOfferService(store, zap.NewNop())

	_, err := svc.EvaluateCart(context.Background(), testUser(100), cartItems(10), "OLD")
	assert.ErrorIs(t, err, ErrCouponExpired)
}

func TestEvaluateCartUsageLimit(t *testing.T) {
	store := newFakeStore()
	offer := flatOffer("ONCE", 5)
	store.addOffer(offer)
	svc := NewOfferService(store, zap.NewNop())
	user := testUser(100)

	store.usages = append(store.usages, model.OfferUsage{
		ID: uuid.New(), OfferID: offer.ID, UserID: user.ID, CreatedAt: time.Now(),
	})

	_, err := svc.EvaluateCart(context.Background(), user, cartItems(10), "ONCE")
	assert.ErrorIs(t, err, ErrCouponUsed)
}

func TestEvaluateCartMinPurchase(t *testing.T) {
	store := newFakeStore()
	offer := flatOffer("MIN50", 5)
	offer.MinPurchaseAmount = 50
	store.addOffer(offer)
	svc := NewOfferService(store, zap.NewNop())

	_, err := svc.EvaluateCart(context.Background(), testUser(100), cartItems(20), "MIN50")
	var minErr *MinPurchaseError
	require.ErrorAs(t, err, &minErr)
	assert.Equal(t, 50.0, minErr.Required)
}

func TestEvaluateCartFirstTimeOnly(t *testing.T) {
	store := newFakeStore()
	offer := flatOffer("WELCOME", 10)
	offer.Type = model.OfferFirstTime
	store.addOffer(offer)
	svc := NewOfferService(store, zap.NewNop())
	user := testUser(100)

	// Eligible while the owned set is empty.
	eval, err := svc.EvaluateCart(context.Background(), user, cartItems(30), "WELCOME")
	require.NoError(t, err)
	assert.Equal(t, 10.0, eval.DiscountAmount)

	// One prior purchase disqualifies regardless of code correctness.
	store.grantOwnership(user.ID, uuid.New())
	_, err = svc.EvaluateCart(context.Background(), user, cartItems(30), "WELCOME")
	assert.ErrorIs(t, err, ErrFirstPurchaseOnly)
}

func TestEvaluateCartReferralShortfall(t *testing.T) {
	store := newFakeStore()
	offer := flatOffer("FRIENDS", 15)
	offer.Type = model.OfferReferralUnlock
	offer.MinReferrals = 5
	store.addOffer(offer)
	svc := NewOfferService(store, zap.NewNop())

	user := testUser(100)
	user.ReferralCount = 3

	_, err := svc.EvaluateCart(context.Background(), user, cartItems(30), "FRIENDS")
	var shortfall *ReferralShortfallError
	require.ErrorAs(t, err, &shortfall)
	assert.Equal(t, 2, shortfall.Remaining)

	user.ReferralCount = 5
	eval, err := svc.EvaluateCart(context.Background(), user, cartItems(30), "FRIENDS")
	require.NoError(t, err)
	assert.Equal(t, 15.0, eval.DiscountAmount)
}

func bogoOffer(code string, buy, free int, maxFreePrice float64) model.Offer {
	offer := model.Offer{
		ID:           uuid.New(),
		Code:         strPtr(code),
		Type:         model.OfferBOGO,
		DiscountType: model.DiscountFlat,
		BuyCount:     intPtr(buy),
		GetFreeCount: intPtr(free),
		IsActive:     true,
		UsageLimit:   1,
	}
	if maxFreePrice > 0 {
		offer.MaxFreePrice = floatPtr(maxFreePrice)
	}
	return offer
}

func TestEvaluateCartBogoCheapestWithinCap(t *testing.T) {
	store := newFakeStore()
	store.addOffer(bogoOffer("B2G1", 2, 1, 20))
	svc := NewOfferService(store, zap.NewNop())

	items := cartItems(15, 20, 25)
	eval, err := svc.EvaluateCart(context.Background(), testUser(100), items, "B2G1")
	require.NoError(t, err)
	assert.Equal(t, 15.0, eval.DiscountAmount)
	assert.Equal(t, 25.0, eval.FinalAmount)
	require.Len(t, eval.FreeItemIDs, 1)
	assert.Equal(t, items[0].SolutionID, eval.FreeItemIDs[0])
}

func TestEvaluateCartBogoCapExcludesExpensiveSlot(t *testing.T) {
	store := newFakeStore()
	store.addOffer(bogoOffer("B2G2", 1, 2, 10))
	svc := NewOfferService(store, zap.NewNop())

	// Free slots are the two cheapest (8 and 12), but 12 is above the cap
	// and stays chargeable.
	eval, err := svc.EvaluateCart(context.Background(), testUser(100), cartItems(12, 8, 30), "B2G2")
	require.NoError(t, err)
	assert.Equal(t, 8.0, eval.DiscountAmount)
	assert.Equal(t, 42.0, eval.FinalAmount)
	assert.Len(t, eval.FreeItemIDs, 1)
}

func TestEvaluateCartBogoItemCountStrict(t *testing.T) {
	store := newFakeStore()
	store.addOffer(bogoOffer("B2G1", 2, 1, 0))
	svc := NewOfferService(store, zap.NewNop())

	// A BOGO code on an undersized cart fails the whole evaluation; it does
	// not degrade into a plain discount.
	_, err := svc.EvaluateCart(context.Background(), testUser(100), cartItems(15, 25), "B2G1")
	var countErr *BogoItemCountError
	require.ErrorAs(t, err, &countErr)
	assert.Equal(t, 3, countErr.Required)
}

func TestEvaluateCartNoCodeNoAutoOffers(t *testing.T) {
	svc := NewOfferService(newFakeStore(), zap.NewNop())

	eval, err := svc.EvaluateCart(context.Background(), testUser(100), cartItems(10, 20), "")
	require.NoError(t, err)
	assert.Nil(t, eval.Offer)
	assert.Equal(t, 0.0, eval.DiscountAmount)
	assert.Equal(t, 30.0, eval.FinalAmount)
}

func TestAutoApplyPriorityBogoWins(t *testing.T) {
	store := newFakeStore()

	discount := flatOffer("", 5)
	discount.Code = nil
	discount.AutoApply = true
	store.addOffer(discount)

	bogo := bogoOffer("", 2, 1, 0)
	bogo.Code = nil
	bogo.AutoApply = true
	store.addOffer(bogo)

	svc := NewOfferService(store, zap.NewNop())

	eval, err := svc.EvaluateCart(context.Background(), testUser(100), cartItems(10, 20, 30), "")
	require.NoError(t, err)
	require.NotNil(t, eval.Offer)
	assert.Equal(t, model.OfferBOGO, eval.Offer.Type)
	assert.Equal(t, 10.0, eval.DiscountAmount)
}

func TestAutoApplySkipsIneligible(t *testing.T) {
	store := newFakeStore()

	// BOGO needs 3 items, cart has 2, so the discount wins instead.
	bogo := bogoOffer("", 2, 1, 0)
	bogo.Code = nil
	bogo.AutoApply = true
	store.addOffer(bogo)

	discount := flatOffer("", 5)
	discount.Code = nil
	discount.AutoApply = true
	store.addOffer(discount)

	svc := NewOfferService(store, zap.NewNop())

	eval, err := svc.EvaluateCart(context.Background(), testUser(100), cartItems(10, 20), "")
	require.NoError(t, err)
	require.NotNil(t, eval.Offer)
	assert.Equal(t, model.OfferDiscount, eval.Offer.Type)
	assert.Equal(t, 5.0, eval.DiscountAmount)
}

func TestAutoApplyTieBreakByCreationOrder(t *testing.T) {
	store := newFakeStore()

	first := flatOffer("", 5)
	first.Code = nil
	first.AutoApply = true
	store.addOffer(first)

	second := flatOffer("", 8)
	second.Code = nil
	second.AutoApply = true
	store.addOffer(second)

	svc := NewOfferService(store, zap.NewNop())

	eval, err := svc.EvaluateCart(context.Background(), testUser(100), cartItems(50), "")
	require.NoError(t, err)
	require.NotNil(t, eval.Offer)
	assert.Equal(t, first.ID, eval.Offer.ID)
}

func TestEvaluateTopUpRejectsBogo(t *testing.T) {
	store := newFakeStore()
	store.addOffer(bogoOffer("B2G1", 2, 1, 0))
	svc := NewOfferService(store, zap.NewNop())

	_, err := svc.EvaluateTopUp(context.Background(), testUser(100), 50, "B2G1")
	assert.ErrorIs(t, err, ErrCouponNotApplicable)
}

func TestEvaluateTopUpDiscount(t *testing.T) {
	store := newFakeStore()
	offer := flatOffer("TOPUP20", 0)
	offer.DiscountType = model.DiscountPercentage
	offer.DiscountPercent = 20
	store.addOffer(offer)
	svc := NewOfferService(store, zap.NewNop())

	eval, err := svc.EvaluateTopUp(context.Background(), testUser(0), 100, "TOPUP20")
	require.NoError(t, err)
	assert.Equal(t, 20.0, eval.DiscountAmount)
	assert.Equal(t, 80.0, eval.FinalAmount)
}

func TestCreateOfferValidation(t *testing.T) {
	store := newFakeStore()
	svc := NewOfferService(store, zap.NewNop())
	ctx := context.Background()

	err := svc.CreateOffer(ctx, &model.Offer{
		Code: strPtr("BROKEN"),
		Type: model.OfferBOGO,
	})
	assert.ErrorIs(t, err, ErrOfferInvalid)

	err = svc.CreateOffer(ctx, &model.Offer{
		Type:      model.OfferDiscount,
		AutoApply: false,
	})
	assert.ErrorIs(t, err, ErrOfferInvalid)

	offer := &model.Offer{
		Code:          strPtr("GOOD"),
		Type:          model.OfferDiscount,
		DiscountType:  model.DiscountFlat,
		DiscountValue: 5,
	}
	require.NoError(t, svc.CreateOffer(ctx, offer))
	assert.Equal(t, 1, offer.UsageLimit)
	assert.NotEqual(t, uuid.Nil, offer.ID)
}
