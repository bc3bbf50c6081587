package order

import "dscommerce-be/internal/apperror"

var (
	ErrOrderNotFound = apperror.New(apperror.KindNotFound, "order not found")

	// Lifecycle
	ErrInvalidTransition = apperror.New(apperror.KindInvalidTransition, "Order status does not allow this operation")
)
