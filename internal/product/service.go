package product

import (
	"context"
	"errors"

	"dscommerce-be/internal/apperror"
	"dscommerce-be/internal/auth"
	"dscommerce-be/internal/category"
	"dscommerce-be/internal/logger"
	"dscommerce-be/internal/metrics"
	"dscommerce-be/internal/pagination"

	"go.uber.org/zap"
)

// Service defines the product catalog operations. Mutations are
// admin-only; the checks run as role, then payload, then existence.
type Service interface {
	FindByID(ctx context.Context, id int64) (*Product, error)
	FindAll(ctx context.Context, opts ListOptions) (pagination.Page[Product], error)
	Create(ctx context.Context, principal auth.Principal, input Input) (*Product, error)
	Update(ctx context.Context, principal auth.Principal, id int64, input Input) (*Product, error)
	Delete(ctx context.Context, principal auth.Principal, id int64) error
}

type service struct {
	repo       Repository
	categories category.Service
	guard      auth.Guard
}

func NewService(repo Repository, categories category.Service, guard auth.Guard) Service {
	return &service{repo: repo, categories: categories, guard: guard}
}

func (s *service) FindByID(ctx context.Context, id int64) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "FindByID"),
		zap.Int64("product_id", id),
	)

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			log.Info("product not found")
		} else {
			log.Error("failed to get product", zap.Error(err))
		}
		return nil, err
	}

	return p, nil
}

func (s *service) FindAll(ctx context.Context, opts ListOptions) (pagination.Page[Product], error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "FindAll"),
		zap.String("name", opts.Name),
	)
	log.Info("FindAll started")

	opts.Page = pagination.NewRequest(opts.Page.Page, opts.Page.Size)

	products, total, err := s.repo.FindAll(ctx, opts)
	if err != nil {
		log.Error("failed to list products", zap.Error(err))
		return pagination.Page[Product]{}, err
	}

	log.Info("FindAll success",
		zap.Int("count", len(products)),
		zap.Int64("total", total),
	)
	return pagination.New(products, opts.Page, total), nil
}

func (s *service) Create(ctx context.Context, principal auth.Principal, input Input) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Create"),
		zap.Int64("user_id", principal.UserID),
	)
	log.Info("Create started")

	if err := s.guard.RequireRole(principal, auth.RoleAdmin); err != nil {
		log.Warn("create denied", zap.Error(err))
		return nil, s.fail("create", err)
	}

	if err := Validate(input); err != nil {
		log.Warn("invalid product payload", zap.Error(err))
		return nil, s.fail("create", err)
	}

	categories, err := s.categories.Resolve(ctx, input.CategoryIDs)
	if err != nil {
		log.Warn("failed to resolve categories", zap.Error(err))
		return nil, s.fail("create", err)
	}

	p := &Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		ImgURL:      input.ImgURL,
		Categories:  categories,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		log.Error("failed to create product", zap.Error(err))
		return nil, s.fail("create", err)
	}

	metrics.ProductMutations.WithLabelValues("create", "success").Inc()
	log.Info("Create success", zap.Int64("product_id", p.ID))
	return p, nil
}

func (s *service) Update(ctx context.Context, principal auth.Principal, id int64, input Input) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Update"),
		zap.Int64("user_id", principal.UserID),
		zap.Int64("product_id", id),
	)
	log.Info("Update started")

	if err := s.guard.RequireRole(principal, auth.RoleAdmin); err != nil {
		log.Warn("update denied", zap.Error(err))
		return nil, s.fail("update", err)
	}

	if err := Validate(input); err != nil {
		log.Warn("invalid product payload", zap.Error(err))
		return nil, s.fail("update", err)
	}

	categories, err := s.categories.Resolve(ctx, input.CategoryIDs)
	if err != nil {
		log.Warn("failed to resolve categories", zap.Error(err))
		return nil, s.fail("update", err)
	}

	p := &Product{
		ID:          id,
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		ImgURL:      input.ImgURL,
		Categories:  categories,
	}

	if err := s.repo.Update(ctx, p); err != nil {
		if errors.Is(err, ErrProductNotFound) {
			log.Info("product not found")
		} else {
			log.Error("failed to update product", zap.Error(err))
		}
		return nil, s.fail("update", err)
	}

	metrics.ProductMutations.WithLabelValues("update", "success").Inc()
	log.Info("Update success")
	return p, nil
}

func (s *service) Delete(ctx context.Context, principal auth.Principal, id int64) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Delete"),
		zap.Int64("user_id", principal.UserID),
		zap.Int64("product_id", id),
	)
	log.Info("Delete started")

	if err := s.guard.RequireRole(principal, auth.RoleAdmin); err != nil {
		log.Warn("delete denied", zap.Error(err))
		return s.fail("delete", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, ErrProductNotFound):
			log.Info("product not found")
		case errors.Is(err, ErrProductInUse):
			log.Warn("product referenced by orders")
		default:
			log.Error("failed to delete product", zap.Error(err))
		}
		return s.fail("delete", err)
	}

	metrics.ProductMutations.WithLabelValues("delete", "success").Inc()
	log.Info("Delete success")
	return nil
}

// fail counts a rejected mutation by error kind and returns err unchanged.
func (s *service) fail(operation string, err error) error {
	metrics.ProductMutations.WithLabelValues(operation, string(apperror.KindOf(err))).Inc()
	return err
}
