package api

import (
	"time"

	"dscommerce-be/internal/category"
	"dscommerce-be/internal/order"
	"dscommerce-be/internal/product"

	"github.com/shopspring/decimal"
)

// ---------- CATEGORY ----------

type categoryDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func toCategoryDTOs(cs []category.Category) []categoryDTO {
	out := make([]categoryDTO, 0, len(cs))
	for _, c := range cs {
		out = append(out, categoryDTO{ID: c.ID, Name: c.Name})
	}
	return out
}

// ---------- PRODUCT ----------

type productDTO struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Price       float64       `json:"price"`
	ImgURL      string        `json:"imgUrl"`
	Categories  []categoryDTO `json:"categories"`
}

// productMinDTO is the listing projection.
type productMinDTO struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
	ImgURL string  `json:"imgUrl"`
}

func toProductDTO(p *product.Product) productDTO {
	return productDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.InexactFloat64(),
		ImgURL:      p.ImgURL,
		Categories:  toCategoryDTOs(p.Categories),
	}
}

func toProductMinDTO(p product.Product) productMinDTO {
	return productMinDTO{
		ID:     p.ID,
		Name:   p.Name,
		Price:  p.Price.InexactFloat64(),
		ImgURL: p.ImgURL,
	}
}

type categoryRef struct {
	ID int64 `json:"id"`
}

type productRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImgURL      string          `json:"imgUrl"`
	Categories  []categoryRef   `json:"categories"`
}

func (req productRequest) toInput() product.Input {
	ids := make([]int64, 0, len(req.Categories))
	for _, c := range req.Categories {
		ids = append(ids, c.ID)
	}
	return product.Input{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImgURL:      req.ImgURL,
		CategoryIDs: ids,
	}
}

// ---------- ORDER ----------

type clientDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type paymentDTO struct {
	Moment time.Time `json:"moment"`
}

type orderItemDTO struct {
	ProductID int64   `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	ImgURL    string  `json:"imgUrl"`
	SubTotal  float64 `json:"subTotal"`
}

type orderDTO struct {
	ID      int64          `json:"id"`
	Moment  time.Time      `json:"moment"`
	Status  string         `json:"status"`
	Client  clientDTO      `json:"client"`
	Payment *paymentDTO    `json:"payment"`
	Items   []orderItemDTO `json:"items"`
	Total   float64        `json:"total"`
}

func toOrderDTO(o *order.Order) orderDTO {
	dto := orderDTO{
		ID:     o.ID,
		Moment: o.Moment.UTC(),
		Status: string(o.Status),
		Client: clientDTO{ID: o.Client.ID, Name: o.Client.Name},
		Items:  make([]orderItemDTO, 0, len(o.Items)),
		Total:  o.Total().InexactFloat64(),
	}
	if o.Payment != nil {
		dto.Payment = &paymentDTO{Moment: o.Payment.Moment.UTC()}
	}
	for _, it := range o.Items {
		dto.Items = append(dto.Items, orderItemDTO{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price.InexactFloat64(),
			Quantity:  it.Quantity,
			ImgURL:    it.ImgURL,
			SubTotal:  it.SubTotal().InexactFloat64(),
		})
	}
	return dto
}

type orderItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type orderRequest struct {
	Items []orderItemRequest `json:"items"`
}

func (req orderRequest) toInput() order.Input {
	lines := make([]order.ItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		lines = append(lines, order.ItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return order.Input{Items: lines}
}
