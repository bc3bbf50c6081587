package product

import (
	"dscommerce-be/internal/category"
	"dscommerce-be/internal/pagination"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int64               `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Price       decimal.Decimal     `json:"price"`
	ImgURL      string              `json:"imgUrl"`
	Categories  []category.Category `json:"categories"`
}

// Input is the payload for create and update. Update replaces every field.
type Input struct {
	Name        string
	Description string
	Price       decimal.Decimal
	ImgURL      string
	CategoryIDs []int64
}

type ListOptions struct {
	// Name filters by case-insensitive substring when non-empty.
	Name string
	Page pagination.Request
}
