package category

import (
	"context"

	"dscommerce-be/internal/logger"

	"go.uber.org/zap"
)

// Service defines the business logic for categories.
type Service interface {
	FindAll(ctx context.Context) ([]Category, error)
	// Resolve returns the categories for ids, failing when any id is unknown.
	Resolve(ctx context.Context, ids []int64) ([]Category, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) FindAll(ctx context.Context) ([]Category, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "FindAll"),
	)
	log.Info("FindAll started")

	categories, err := s.repo.FindAll(ctx)
	if err != nil {
		log.Error("failed to get categories", zap.Error(err))
		return nil, err
	}

	log.Info("FindAll success", zap.Int("count", len(categories)))
	return categories, nil
}

func (s *service) Resolve(ctx context.Context, ids []int64) ([]Category, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Resolve"),
		zap.Int64s("category_ids", ids),
	)

	unique := dedupe(ids)

	categories, err := s.repo.FindByIDs(ctx, unique)
	if err != nil {
		log.Error("failed to get categories by ids", zap.Error(err))
		return nil, err
	}

	if len(categories) != len(unique) {
		log.Warn("unknown category referenced",
			zap.Int("requested", len(unique)),
			zap.Int("found", len(categories)),
		)
		return nil, ErrCategoryNotFound
	}

	return categories, nil
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
