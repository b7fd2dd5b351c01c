package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shanmukhasaireddy13/code-chef-solutions-sub000/internal/crypt"
	"github.com/shanmukhasaireddy13/code-chef-solutions-sub000/internal/model"
	"github.com/shanmukhasaireddy13/code-chef-solutions-sub000/internal/repository"
)

var (
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrMissingReference  = errors.New("payment reference is required")
	ErrReferenceUsed     = errors.New("reference already used")
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderProcessed    = errors.New("order already processed")
	ErrReferenceMismatch = errors.New("reference does not match")
	ErrNotAdmin          = errors.New("administrator role required")
)

type orderStore interface {
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	ReferenceHashExists(ctx context.Context, hash string) (bool, error)
	CreateOrder(ctx context.Context, order *model.Order, offer *model.Offer) error
	GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error)
	ListOrdersByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Order, error)
	ListOrders(ctx context.Context, status model.OrderStatus, limit, offset int) ([]model.Order, error)
	ApproveOrder(ctx context.Context, orderID, userID uuid.UUID, credits float64) (float64, error)
	RejectOrder(ctx context.Context, orderID uuid.UUID) error
}

// TopUpResult is returned when a pending order is created.
type TopUpResult struct {
	OrderID        uuid.UUID `json:"order_id"`
	PayableAmount  float64   `json:"payable_amount"`
	CreditsToGrant float64   `json:"credits_to_grant"`
}

// ResolveResult is returned after an admin approves an order.
type ResolveResult struct {
	Status     model.OrderStatus `json:"status"`
	NewBalance float64           `json:"new_balance"`
}

type PaymentService struct {
	store    orderStore
	offerSvc *OfferService
	cipher   *crypt.Cipher
	locks    *UserLocks
	log      *zap.Logger
}

func NewPaymentService(store orderStore, offerSvc *OfferService, cipher *crypt.Cipher, locks *UserLocks, log *zap.Logger) *PaymentService {
	return &PaymentService{store: store, offerSvc: offerSvc, cipher: cipher, locks: locks, log: log}
}

// CreateTopUpOrder records a claim that the user paid `amount` by bank
// transfer under `reference`. The reference fingerprint must be globally new;
// a coupon discounts what the user pays while the credits granted stay the
// nominal amount. Coupon usage is recorded at creation, not at approval.
func (s *PaymentService) CreateTopUpOrder(ctx context.Context, userID uuid.UUID, amount float64, reference, couponCode string) (*TopUpResult, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, ErrMissingReference
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	hash := hashReference(reference)
	exists, err := s.store.ReferenceHashExists(ctx, hash)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrReferenceUsed
	}

	payable := amount
	var offer *model.Offer
	var appliedCode *string
	if couponCode != "" {
		eval, err := s.offerSvc.EvaluateTopUp(ctx, user, amount, couponCode)
		if err != nil {
			return nil, err
		}
		payable = eval.FinalAmount
		offer = eval.Offer
		if offer != nil && offer.Code != nil {
			appliedCode = offer.Code
		}
	}

	encrypted, err := s.cipher.Encrypt(reference)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt reference: %w", err)
	}

	order := &model.Order{
		ID:                 uuid.New(),
		UserID:             userID,
		PaidAmount:         payable,
		CreditsToGrant:     amount,
		EncryptedReference: encrypted,
		ReferenceHash:      hash,
		Status:             model.OrderStatusPending,
		AppliedOfferCode:   appliedCode,
	}

	if err := s.store.CreateOrder(ctx, order, offer); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateReference):
			return nil, ErrReferenceUsed
		case errors.Is(err, repository.ErrUsageLimitExceeded):
			return nil, ErrCouponUsed
		}
		return nil, err
	}

	s.log.Info("top-up order created",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", userID.String()),
		zap.Float64("payable", payable),
		zap.Float64("credits", amount))

	return &TopUpResult{
		OrderID:        order.ID,
		PayableAmount:  payable,
		CreditsToGrant: amount,
	}, nil
}

// ApproveOrder is the administrator side of reconciliation: decrypt the
// stored reference and compare it byte-for-byte against what the admin read
// off the bank statement. A mismatch reports an error and leaves the order
// pending so the admin can retry with a corrected value.
func (s *PaymentService) ApproveOrder(ctx context.Context, adminID, orderID uuid.UUID, observedReference string) (*ResolveResult, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}

	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.Resolved() {
		return nil, ErrOrderProcessed
	}

	stored, legacy := s.cipher.Decrypt(order.EncryptedReference)
	if legacy {
		s.log.Warn("order carries a legacy plaintext reference",
			zap.String("order_id", orderID.String()))
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(strings.TrimSpace(observedReference))) != 1 {
		return nil, ErrReferenceMismatch
	}

	newBalance, err := s.store.ApproveOrder(ctx, orderID, order.UserID, order.CreditsToGrant)
	if err != nil {
		if errors.Is(err, repository.ErrOrderResolved) {
			return nil, ErrOrderProcessed
		}
		return nil, err
	}

	s.log.Info("top-up order approved",
		zap.String("order_id", orderID.String()),
		zap.String("admin_id", adminID.String()),
		zap.Float64("credited", order.CreditsToGrant))

	return &ResolveResult{Status: model.OrderStatusApproved, NewBalance: newBalance}, nil
}

// RejectOrder marks a pending order rejected. Terminal, no credits move.
func (s *PaymentService) RejectOrder(ctx context.Context, adminID, orderID uuid.UUID) error {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return err
	}

	if err := s.store.RejectOrder(ctx, orderID); err != nil {
		if errors.Is(err, repository.ErrOrderResolved) {
			return ErrOrderProcessed
		}
		return err
	}

	s.log.Info("top-up order rejected",
		zap.String("order_id", orderID.String()),
		zap.String("admin_id", adminID.String()))
	return nil
}

func (s *PaymentService) ListUserOrders(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Order, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.store.ListOrdersByUser(ctx, userID, limit, offset)
}

func (s *PaymentService) ListOrders(ctx context.Context, adminID uuid.UUID, status model.OrderStatus, limit, offset int) ([]model.Order, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	return s.store.ListOrders(ctx, status, limit, offset)
}

func (s *PaymentService) requireAdmin(ctx context.Context, adminID uuid.UUID) error {
	admin, err := s.store.GetUser(ctx, adminID)
	if err != nil {
		return err
	}
	if !admin.IsAdmin() {
		return ErrNotAdmin
	}
	return nil
}

func hashReference(reference string) string {
	sum := sha256.Sum256([]byte(reference))
	return hex.EncodeToString(sum[:])
}
