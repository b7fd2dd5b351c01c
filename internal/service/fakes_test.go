package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shanmukhasaireddy13/code-chef-solutions-sub000/internal/model"
	"github.com/shanmukhasaireddy13/code-chef-solutions-sub000/internal/repository"
)

// fakeStore is an in-memory stand-in for the repository that mirrors its
// transactional semantics: balance re-check, usage-limit re-check and
// reference-hash uniqueness all happen under one lock.
type fakeStore struct {
	mu        sync.Mutex
	users     map[uuid.UUID]*model.User
	solutions []model.Solution
	owned     map[uuid.UUID]map[uuid.UUID]bool
	offers    []model.Offer
	usages    []model.OfferUsage
	orders    map[uuid.UUID]*model.Order
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:  make(map[uuid.UUID]*model.User),
		owned:  make(map[uuid.UUID]map[uuid.UUID]bool),
		orders: make(map[uuid.UUID]*model.Order),
	}
}

func (f *fakeStore) addUser(user *model.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.ID] = user
}

func (f *fakeStore) addSolution(solution model.Solution) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.solutions = append(f.solutions, solution)
}

func (f *fakeStore) addOffer(offer model.Offer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.offers = append(f.offers, offer)
}

func (f *fakeStore) grantOwnership(userID, solutionID uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.owned[userID] == nil {
		f.owned[userID] = make(map[uuid.UUID]bool)
	}
	f.owned[userID][solutionID] = true
}

func (f *fakeStore) GetUser(_ context.Context, id uuid.UUID) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (f *fakeStore) CreateUser(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeStore) GetUserByReferralCode(_ context.Context, code string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.ReferralCode == code {
			clone := *user
			return &clone, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeStore) CreditReferrer(_ context.Context, referrerID uuid.UUID, bonus float64) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[referrerID]
	if !ok {
		return 0, repository.ErrUserNotFound
	}
	user.Credits += bonus
	user.ReferralCount++
	return user.Credits, nil
}

func (f *fakeStore) GetSolutionsByProblemIDs(_ context.Context, problemIDs []string) ([]model.Solution, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []model.Solution
	for _, id := range problemIDs {
		for _, solution := range f.solutions {
			if solution.ProblemID == id {
				result = append(result, solution)
				break
			}
		}
	}
	return result, nil
}

func (f *fakeStore) GetSolutionByProblemID(_ context.Context, problemID string) (*model.Solution, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, solution := range f.solutions {
		if solution.ProblemID == problemID {
			clone := solution
			return &clone, nil
		}
	}
	return nil, repository.ErrSolutionNotFound
}

func (f *fakeStore) ListSolutions(_ context.Context, limit, offset int) ([]model.Solution, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Solution(nil), f.solutions...), nil
}

func (f *fakeStore) CreateSolution(_ context.Context, solution *model.Solution) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.solutions = append(f.solutions, *solution)
	return nil
}

func (f *fakeStore) GetOwnedSolutionIDs(_ context.Context, userID uuid.UUID) (map[uuid.UUID]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	owned := make(map[uuid.UUID]bool, len(f.owned[userID]))
	for id := range f.owned[userID] {
		owned[id] = true
	}
	return owned, nil
}

func (f *fakeStore) CountOwnedSolutions(_ context.Context, userID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.owned[userID]), nil
}

func (f *fakeStore) PurchaseSolutions(_ context.Context, userID uuid.UUID, solutionIDs []uuid.UUID, amount float64, offer *model.Offer) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[userID]
	if !ok {
		return 0, repository.ErrUserNotFound
	}
	if user.Credits < amount {
		return user.Credits, repository.ErrInsufficientFunds
	}
	if offer != nil && f.usageCountLocked(userID, offer.ID) >= offer.UsageLimit {
		return 0, repository.ErrUsageLimitExceeded
	}
	for _, solutionID := range solutionIDs {
		if f.owned[userID][solutionID] {
			return 0, repository.ErrAlreadyOwned
		}
	}

	user.Credits -= amount
	if f.owned[userID] == nil {
		f.owned[userID] = make(map[uuid.UUID]bool)
	}
	for _, solutionID := range solutionIDs {
		f.owned[userID][solutionID] = true
	}
	if offer != nil {
		f.usages = append(f.usages, model.OfferUsage{
			ID: uuid.New(), OfferID: offer.ID, UserID: userID, CreatedAt: time.Now(),
		})
	}
	return user.Credits, nil
}

func (f *fakeStore) GetOfferByCode(_ context.Context, code string) (*model.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.offers {
		offer := f.offers[i]
		if offer.Code != nil && *offer.Code == code {
			return &offer, nil
		}
	}
	return nil, repository.ErrOfferNotFound
}

func (f *fakeStore) ListActiveAutoApplyOffers(_ context.Context) ([]model.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []model.Offer
	for _, offer := range f.offers {
		if offer.IsActive && offer.AutoApply {
			result = append(result, offer)
		}
	}
	return result, nil
}

func (f *fakeStore) CountOfferUsage(_ context.Context, userID, offerID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.usageCountLocked(userID, offerID), nil
}

func (f *fakeStore) usageCountLocked(userID, offerID uuid.UUID) int {
	count := 0
	for _, usage := range f.usages {
		if usage.UserID == userID && usage.OfferID == offerID {
			count++
		}
	}
	return count
}

func (f *fakeStore) CreateOffer(_ context.Context, offer *model.Offer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	offer.CreatedAt = time.Now()
	f.offers = append(f.offers, *offer)
	return nil
}

func (f *fakeStore) ListOffers(_ context.Context, limit, offset int) ([]model.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Offer(nil), f.offers...), nil
}

func (f *fakeStore) DeactivateOffer(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.offers {
		if f.offers[i].ID == id {
			f.offers[i].IsActive = false
			return nil
		}
	}
	return repository.ErrOfferNotFound
}

func (f *fakeStore) ReferenceHashExists(_ context.Context, hash string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, order := range f.orders {
		if order.ReferenceHash == hash {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CreateOrder(_ context.Context, order *model.Order, offer *model.Offer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.orders {
		if existing.ReferenceHash == order.ReferenceHash {
			return repository.ErrDuplicateReference
		}
	}
	if offer != nil {
		if f.usageCountLocked(order.UserID, offer.ID) >= offer.UsageLimit {
			return repository.ErrUsageLimitExceeded
		}
		f.usages = append(f.usages, model.OfferUsage{
			ID: uuid.New(), OfferID: offer.ID, UserID: order.UserID, CreatedAt: time.Now(),
		})
	}
	order.CreatedAt = time.Now()
	clone := *order
	f.orders[order.ID] = &clone
	return nil
}

func (f *fakeStore) GetOrder(_ context.Context, id uuid.UUID) (*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	clone := *order
	return &clone, nil
}

func (f *fakeStore) ListOrdersByUser(_ context.Context, userID uuid.UUID, limit, offset int) ([]model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []model.Order
	for _, order := range f.orders {
		if order.UserID == userID {
			result = append(result, *order)
		}
	}
	return result, nil
}

func (f *fakeStore) ListOrders(_ context.Context, status model.OrderStatus, limit, offset int) ([]model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []model.Order
	for _, order := range f.orders {
		if status == "" || order.Status == status {
			result = append(result, *order)
		}
	}
	return result, nil
}

func (f *fakeStore) ApproveOrder(_ context.Context, orderID, userID uuid.UUID, credits float64) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[orderID]
	if !ok {
		return 0, repository.ErrOrderNotFound
	}
	if order.Status != model.OrderStatusPending {
		return 0, repository.ErrOrderResolved
	}
	user, ok := f.users[userID]
	if !ok {
		return 0, repository.ErrUserNotFound
	}
	now := time.Now()
	order.Status = model.OrderStatusApproved
	order.ResolvedAt = &now
	user.Credits += credits
	return user.Credits, nil
}

func (f *fakeStore) RejectOrder(_ context.Context, orderID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[orderID]
	if !ok {
		return repository.ErrOrderNotFound
	}
	if order.Status != model.OrderStatusPending {
		return repository.ErrOrderResolved
	}
	now := time.Now()
	order.Status = model.OrderStatusRejected
	order.ResolvedAt = &now
	return nil
}
