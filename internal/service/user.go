package service

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shanmukhasaireddy13/code-chef-solutions-sub000/internal/model"
	"github.com/shanmukhasaireddy13/code-chef-solutions-sub000/internal/repository"
)

var (
	ErrInvalidSignup       = errors.New("email and name are required")
	ErrEmailTaken          = errors.New("email already registered")
	ErrReferralCodeInvalid = errors.New("referral code not found")
)

type userStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetUserByReferralCode(ctx context.Context, code string) (*model.User, error)
	CreditReferrer(ctx context.Context, referrerID uuid.UUID, bonus float64) (float64, error)
	CountOwnedSolutions(ctx context.Context, userID uuid.UUID) (int, error)
}

type UserService struct {
	store       userStore
	signupBonus float64
	log         *zap.Logger
}

func NewUserService(store userStore, signupBonus float64, log *zap.Logger) *UserService {
	return &UserService{store: store, signupBonus: signupBonus, log: log}
}

// Signup creates a user with a fresh referral code. When a referrer's code is
// supplied, the referrer's count goes up and the signup bonus lands on their
// balance. The new user always starts at zero credits.
func (s *UserService) Signup(ctx context.Context, email, name, referralCode string) (*model.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	name = strings.TrimSpace(name)
	if email == "" || name == "" {
		return nil, ErrInvalidSignup
	}

	var referrer *model.User
	if referralCode != "" {
		var err error
		referrer, err = s.store.GetUserByReferralCode(ctx, strings.TrimSpace(referralCode))
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return nil, ErrReferralCodeInvalid
			}
			return nil, err
		}
	}

	code, err := generateReferralCode()
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		Role:         model.RoleUser,
		ReferralCode: code,
	}
	if referrer != nil {
		user.ReferredBy = &referrer.ID
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	if referrer != nil {
		if _, err := s.store.CreditReferrer(ctx, referrer.ID, s.signupBonus); err != nil {
			s.log.Error("failed to credit referrer",
				zap.String("referrer_id", referrer.ID.String()),
				zap.Error(err))
		}
	}

	return user, nil
}

// Profile returns the user together with the size of their owned set.
func (s *UserService) Profile(ctx context.Context, userID uuid.UUID) (*model.User, int, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	owned, err := s.store.CountOwnedSolutions(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return user, owned, nil
}

func generateReferralCode() (string, error) {
	bytes := make([]byte, 5)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	code := base32.StdEncoding.EncodeToString(bytes)
	code = strings.TrimRight(code, "=")
	return strings.ToLower(code[:8]), nil
}
