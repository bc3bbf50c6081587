package order

import (
	"context"
	"errors"
	"time"

	"dscommerce-be/internal/auth"
	"dscommerce-be/internal/logger"
	"dscommerce-be/internal/metrics"

	"go.uber.org/zap"
)

type Service interface {
	FindByID(ctx context.Context, principal auth.Principal, id int64) (*Order, error)
	Create(ctx context.Context, principal auth.Principal, input Input) (*Order, error)
	ConfirmPayment(ctx context.Context, id int64, moment time.Time) (*Order, error)
	// Cancel cancels an order whose payment never completed.
	Cancel(ctx context.Context, id int64) (*Order, error)
}

type service struct {
	repo  Repository
	guard auth.Guard
	now   func() time.Time
}

func NewService(repo Repository, guard auth.Guard) Service {
	return &service{
		repo:  repo,
		guard: guard,
		now:   time.Now,
	}
}

func (s *service) FindByID(ctx context.Context, principal auth.Principal, id int64) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "FindByID"),
		zap.Int64("user_id", principal.UserID),
		zap.Int64("order_id", id),
	)

	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			log.Info("order not found")
		} else {
			log.Error("failed to get order", zap.Error(err))
		}
		return nil, err
	}

	if err := s.guard.AuthorizeOwnership(principal, o); err != nil {
		log.Warn("order access denied", zap.Int64("owner_id", o.OwnerID()))
		return nil, err
	}

	return o, nil
}

// Create validates the payload before the role check, so a malformed cart
// is reported as such to any caller.
func (s *service) Create(ctx context.Context, principal auth.Principal, input Input) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Create"),
		zap.Int64("user_id", principal.UserID),
	)
	log.Info("Create started", zap.Int("lines", len(input.Items)))

	if err := Validate(input); err != nil {
		log.Warn("invalid order payload", zap.Error(err))
		return nil, err
	}

	if err := s.guard.RequireRole(principal, auth.RoleClient); err != nil {
		log.Warn("create denied", zap.Error(err))
		return nil, err
	}

	moment := s.now().UTC().Truncate(time.Second)

	o, err := s.repo.Create(ctx, productIDs(input.Items), func(products map[int64]ProductSnapshot) (*Order, error) {
		return NewOrder(principal.UserID, moment, input.Items, products)
	})
	if err != nil {
		log.Warn("failed to create order", zap.Error(err))
		return nil, err
	}

	for _, item := range o.Items {
		log.Debug("item priced",
			zap.Int64("product_id", item.ProductID),
			zap.Int("quantity", item.Quantity),
			zap.String("price", item.Price.String()),
			zap.String("subtotal", item.SubTotal().String()),
		)
	}

	metrics.OrdersCreated.Inc()
	log.Info("Create success",
		zap.Int64("order_id", o.ID),
		zap.String("total", o.Total().String()),
	)
	return o, nil
}

func (s *service) ConfirmPayment(ctx context.Context, id int64, moment time.Time) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ConfirmPayment"),
		zap.Int64("order_id", id),
	)
	log.Info("ConfirmPayment started")

	paidAt := moment.UTC().Truncate(time.Second)
	changed := false

	err := s.repo.UpdateStatus(ctx, id, func(current Status) (Status, *Payment, error) {
		if current == StatusPaid {
			return current, nil, nil
		}
		if !current.CanTransitionTo(StatusPaid) {
			return current, nil, ErrInvalidTransition
		}
		changed = true
		return StatusPaid, &Payment{Moment: paidAt}, nil
	})
	if err != nil {
		log.Warn("failed to confirm payment", zap.Error(err))
		return nil, err
	}

	if changed {
		metrics.OrderStatusChanges.WithLabelValues(string(StatusPaid)).Inc()
	}
	log.Info("ConfirmPayment success", zap.Bool("changed", changed))
	return s.repo.FindByID(ctx, id)
}

func (s *service) Cancel(ctx context.Context, id int64) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Cancel"),
		zap.Int64("order_id", id),
	)
	log.Info("Cancel started")

	changed := false

	err := s.repo.UpdateStatus(ctx, id, func(current Status) (Status, *Payment, error) {
		if current == StatusCanceled {
			return current, nil, nil
		}
		if current != StatusWaitingPayment {
			return current, nil, ErrInvalidTransition
		}
		changed = true
		return StatusCanceled, nil, nil
	})
	if err != nil {
		log.Warn("failed to cancel order", zap.Error(err))
		return nil, err
	}

	if changed {
		metrics.OrderStatusChanges.WithLabelValues(string(StatusCanceled)).Inc()
	}
	log.Info("Cancel success", zap.Bool("changed", changed))
	return s.repo.FindByID(ctx, id)
}
