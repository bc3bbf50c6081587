package product

import (
	"dscommerce-be/internal/validation"

	"github.com/shopspring/decimal"
)

// Prices are stored as NUMERIC(12,2).
var maxPrice = decimal.RequireFromString("9999999999.99")

var inputRules = []validation.Rule[Input]{
	{
		Field:   "name",
		Message: "Required field",
		Valid:   func(in Input) bool { return validation.NotBlank(in.Name) },
	},
	{
		Field:   "name",
		Message: "Name must have between 3 and 80 characters",
		Valid:   func(in Input) bool { return validation.LengthBetween(in.Name, 3, 80) },
	},
	{
		Field:   "description",
		Message: "Required field",
		Valid:   func(in Input) bool { return validation.NotBlank(in.Description) },
	},
	{
		Field:   "description",
		Message: "Description must have at least 10 characters",
		Valid:   func(in Input) bool { return validation.MinLength(in.Description, 10) },
	},
	{
		Field:   "price",
		Message: "Price must be positive",
		Valid:   func(in Input) bool { return in.Price.IsPositive() },
	},
	{
		Field:   "price",
		Message: "Price must have at most 2 decimal places",
		Valid:   func(in Input) bool { return in.Price.Equal(in.Price.Round(2)) },
	},
	{
		Field:   "price",
		Message: "Price must not exceed 9999999999.99",
		Valid:   func(in Input) bool { return in.Price.LessThanOrEqual(maxPrice) },
	},
	{
		Field:   "categories",
		Message: "Must have at least one category",
		Valid:   func(in Input) bool { return len(in.CategoryIDs) > 0 },
	},
}

// Validate checks a product payload, returning *apperror.ValidationError
// with every violation.
func Validate(in Input) error {
	v := validation.New()
	validation.Apply(v, in, inputRules)
	return v.Err()
}
