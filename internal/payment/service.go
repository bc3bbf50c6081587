package payment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dscommerce-be/internal/apperror"
	"dscommerce-be/internal/logger"
	"dscommerce-be/internal/metrics"
	"dscommerce-be/internal/order"

	"go.uber.org/zap"
)

// OrderUpdater is the part of order.Service driven by payment events.
type OrderUpdater interface {
	ConfirmPayment(ctx context.Context, id int64, moment time.Time) (*order.Order, error)
	Cancel(ctx context.Context, id int64) (*order.Order, error)
}

type Service interface {
	// Process applies ev to its order. Unknown statuses are ignored.
	Process(ctx context.Context, source string, ev Event) (Outcome, error)
}

type service struct {
	orders OrderUpdater
	now    func() time.Time
}

func NewService(orders OrderUpdater) Service {
	return &service{orders: orders, now: time.Now}
}

func (s *service) Process(ctx context.Context, source string, ev Event) (Outcome, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Process"),
		zap.String("source", source),
		zap.Int64("order_id", ev.OrderID),
		zap.String("status", ev.Status),
	)
	log.Info("Process started")

	outcome, err := s.apply(ctx, ev)
	metrics.PaymentEvents.WithLabelValues(source, string(outcome)).Inc()
	if err != nil {
		log.Warn("failed to process payment event", zap.Error(err))
		return outcome, err
	}

	log.Info("Process success", zap.String("outcome", string(outcome)))
	return outcome, nil
}

func (s *service) apply(ctx context.Context, ev Event) (Outcome, error) {
	if ev.OrderID <= 0 {
		return OutcomeFailed, fmt.Errorf("%w: missing orderId", apperror.ErrMalformedRequest)
	}

	switch strings.ToUpper(strings.TrimSpace(ev.Status)) {
	case "PAID", "SUCCEEDED":
		moment := s.now()
		if ev.PaidAt != nil {
			moment = *ev.PaidAt
		}
		if _, err := s.orders.ConfirmPayment(ctx, ev.OrderID, moment); err != nil {
			return OutcomeFailed, err
		}
		return OutcomeConfirmed, nil

	case "EXPIRED", "FAILED":
		if _, err := s.orders.Cancel(ctx, ev.OrderID); err != nil {
			return OutcomeFailed, err
		}
		return OutcomeCanceled, nil

	default:
		return OutcomeIgnored, nil
	}
}
