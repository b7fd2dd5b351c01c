package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shanmukhasaireddy13/code-chef-solutions-sub000/internal/model"
	"github.com/shanmukhasaireddy13/code-chef-solutions-sub000/internal/repository"
)

var (
	ErrEmptyCart           = errors.New("cart is empty")
	ErrSolutionNotFound    = errors.New("solution not found")
	ErrAlreadyPurchased    = errors.New("solution already purchased")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrDuplicateCartItem   = errors.New("duplicate item in cart")
)

type checkoutStore interface {
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetSolutionsByProblemIDs(ctx context.Context, problemIDs []string) ([]model.Solution, error)
	GetOwnedSolutionIDs(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]bool, error)
	PurchaseSolutions(ctx context.Context, userID uuid.UUID, solutionIDs []uuid.UUID, amount float64, offer *model.Offer) (float64, error)
}

// CheckoutResult is returned to the caller after a committed purchase.
type CheckoutResult struct {
	Credits         float64 `json:"credits"`
	PurchasedCount  int     `json:"purchased_count"`
	DiscountApplied float64 `json:"discount_applied"`
}

type CheckoutService struct {
	store    checkoutStore
	offerSvc *OfferService
	locks    *UserLocks
	log      *zap.Logger
}

func NewCheckoutService(store checkoutStore, offerSvc *OfferService, locks *UserLocks, log *zap.Logger) *CheckoutService {
	return &CheckoutService{store: store, offerSvc: offerSvc, locks: locks, log: log}
}

// Checkout purchases the listed solutions in one atomic step. The whole
// request fails if any item is unknown or already owned; on success the
// balance debit, ownership grants and offer usage commit together.
func (s *CheckoutService) Checkout(ctx context.Context, userID uuid.UUID, problemIDs []string, couponCode string) (*CheckoutResult, error) {
	if len(problemIDs) == 0 {
		return nil, ErrEmptyCart
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	items, solutionIDs, err := s.resolveCart(ctx, userID, problemIDs)
	if err != nil {
		return nil, err
	}

	eval, err := s.offerSvc.EvaluateCart(ctx, user, items, couponCode)
	if err != nil {
		return nil, err
	}

	if user.Credits < eval.FinalAmount {
		return nil, ErrInsufficientCredits
	}

	newBalance, err := s.store.PurchaseSolutions(ctx, userID, solutionIDs, eval.FinalAmount, eval.Offer)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInsufficientFunds):
			return nil, ErrInsufficientCredits
		case errors.Is(err, repository.ErrAlreadyOwned):
			return nil, ErrAlreadyPurchased
		case errors.Is(err, repository.ErrUsageLimitExceeded):
			return nil, ErrCouponUsed
		}
		return nil, fmt.Errorf("failed to commit purchase: %w", err)
	}

	s.log.Info("checkout committed",
		zap.String("user_id", userID.String()),
		zap.Int("items", len(solutionIDs)),
		zap.Float64("discount", eval.DiscountAmount),
		zap.Float64("charged", eval.FinalAmount))

	return &CheckoutResult{
		Credits:         newBalance,
		PurchasedCount:  len(solutionIDs),
		DiscountApplied: eval.DiscountAmount,
	}, nil
}

// Preview runs the evaluation engine over a cart without committing anything.
func (s *CheckoutService) Preview(ctx context.Context, userID uuid.UUID, problemIDs []string, couponCode string) (*Evaluation, error) {
	if len(problemIDs) == 0 {
		return nil, ErrEmptyCart
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	items, _, err := s.resolveCart(ctx, userID, problemIDs)
	if err != nil {
		return nil, err
	}

	return s.offerSvc.EvaluateCart(ctx, user, items, couponCode)
}

func (s *CheckoutService) resolveCart(ctx context.Context, userID uuid.UUID, problemIDs []string) ([]model.CartItem, []uuid.UUID, error) {
	seen := make(map[string]bool, len(problemIDs))
	for _, id := range problemIDs {
		if seen[id] {
			return nil, nil, ErrDuplicateCartItem
		}
		seen[id] = true
	}

	solutions, err := s.store.GetSolutionsByProblemIDs(ctx, problemIDs)
	if err != nil {
		return nil, nil, err
	}
	if len(solutions) != len(problemIDs) {
		return nil, nil, ErrSolutionNotFound
	}

	owned, err := s.store.GetOwnedSolutionIDs(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	items := make([]model.CartItem, 0, len(solutions))
	solutionIDs := make([]uuid.UUID, 0, len(solutions))
	for _, solution := range solutions {
		if owned[solution.ID] {
			return nil, nil, ErrAlreadyPurchased
		}
		items = append(items, model.CartItem{SolutionID: solution.ID, Price: solution.Price})
		solutionIDs = append(solutionIDs, solution.ID)
	}
	return items, solutionIDs, nil
}
