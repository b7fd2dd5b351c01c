package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shanmukhasaireddy13/code-chef-solutions-sub000/internal/cache"
	"github.com/shanmukhasaireddy13/code-chef-solutions-sub000/internal/model"
)

const catalogCacheTTL = 5 * time.Minute

type catalogStore interface {
	GetSolutionByProblemID(ctx context.Context, problemID string) (*model.Solution, error)
	ListSolutions(ctx context.Context, limit, offset int) ([]model.Solution, error)
	CreateSolution(ctx context.Context, solution *model.Solution) error
	GetOwnedSolutionIDs(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]bool, error)
}

// CatalogService serves the purchasable catalog. Listing responses are cached
// in redis for a short TTL; the cache degrades to direct reads when redis is
// unavailable.
type CatalogService struct {
	store catalogStore
	cache *cache.Redis
	log   *zap.Logger
}

func NewCatalogService(store catalogStore, redisCache *cache.Redis, log *zap.Logger) *CatalogService {
	return &CatalogService{store: store, cache: redisCache, log: log}
}

// ListSolutions returns the catalog with gated content stripped.
func (s *CatalogService) ListSolutions(ctx context.Context, limit, offset int) ([]model.Solution, error) {
	if limit <= 0 {
		limit = 50
	}

	cacheKey := fmt.Sprintf("catalog:%d:%d", limit, offset)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil && cached != "" {
			var solutions []model.Solution
			if json.Unmarshal([]byte(cached), &solutions) == nil {
				return solutions, nil
			}
		}
	}

	solutions, err := s.store.ListSolutions(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	for i := range solutions {
		solutions[i].Content = ""
	}

	if s.cache != nil {
		if payload, err := json.Marshal(solutions); err == nil {
			if err := s.cache.Set(ctx, cacheKey, string(payload), catalogCacheTTL); err != nil {
				s.log.Warn("failed to cache catalog page", zap.Error(err))
			}
		}
	}
	return solutions, nil
}

// GetSolution returns one catalog entry. Content stays gated unless the
// requesting user owns the solution or is an admin.
func (s *CatalogService) GetSolution(ctx context.Context, problemID string, viewer *model.User) (*model.Solution, error) {
	solution, err := s.store.GetSolutionByProblemID(ctx, problemID)
	if err != nil {
		return nil, err
	}

	if viewer != nil && viewer.IsAdmin() {
		return solution, nil
	}

	if viewer != nil {
		owned, err := s.store.GetOwnedSolutionIDs(ctx, viewer.ID)
		if err != nil {
			return nil, err
		}
		if owned[solution.ID] {
			return solution, nil
		}
	}

	solution.Content = ""
	return solution, nil
}

// CreateSolution adds a catalog entry (admin operation) and drops cached
// catalog pages so the new entry shows up immediately.
func (s *CatalogService) CreateSolution(ctx context.Context, solution *model.Solution) error {
	if solution.ID == uuid.Nil {
		solution.ID = uuid.New()
	}
	if err := s.store.CreateSolution(ctx, solution); err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, "catalog:50:0"); err != nil {
			s.log.Warn("failed to invalidate catalog cache", zap.Error(err))
		}
	}
	return nil
}
