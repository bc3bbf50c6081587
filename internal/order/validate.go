package order

import (
	"fmt"
	"math"

	"dscommerce-be/internal/validation"
)

// MaxQuantity bounds one order item, merged lines included. order_item.quantity
// is an INTEGER column.
const MaxQuantity = math.MaxInt32

var inputRules = []validation.Rule[Input]{
	{
		Field:   "items",
		Message: "Must have at least one item",
		Valid:   func(in Input) bool { return len(in.Items) > 0 },
	},
}

var itemRules = []validation.Rule[ItemInput]{
	{
		Field:   "productId",
		Message: "Product id is required",
		Valid:   func(it ItemInput) bool { return it.ProductID > 0 },
	},
	{
		Field:   "quantity",
		Message: "Quantity must be positive",
		Valid:   func(it ItemInput) bool { return it.Quantity > 0 },
	},
	{
		Field:   "quantity",
		Message: "Quantity must not exceed 2147483647",
		Valid:   func(it ItemInput) bool { return it.Quantity <= MaxQuantity },
	},
}

func Validate(in Input) error {
	v := validation.New()
	validation.Apply(v, in, inputRules)
	merged := make(map[int64]int64, len(in.Items))
	for i, item := range in.Items {
		prefix := fmt.Sprintf("items[%d]", i)
		validation.ApplyAt(v, prefix, item, itemRules)

		if item.ProductID <= 0 || item.Quantity <= 0 || item.Quantity > MaxQuantity {
			continue
		}
		merged[item.ProductID] += int64(item.Quantity)
		v.Check(merged[item.ProductID] <= MaxQuantity, prefix+".quantity",
			"Total quantity for a product must not exceed 2147483647")
	}
	return v.Err()
}
