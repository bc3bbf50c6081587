package product

import "dscommerce-be/internal/apperror"

var (
	ErrProductNotFound = apperror.New(apperror.KindNotFound, "product not found")

	// Referenced by at least one order item
	ErrProductInUse = apperror.New(apperror.KindIntegrity, "product is referenced by orders")
)
