package category

import "dscommerce-be/internal/apperror"

var (
	ErrCategoryNotFound = apperror.New(apperror.KindNotFound, "category not found")
)
