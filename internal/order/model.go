package order

import (
	"time"

	"dscommerce-be/internal/product"

	"github.com/shopspring/decimal"
)

type Client struct {
	ID   int64
	Name string
}

type Payment struct {
	Moment time.Time
}

// Item is an order line. Price is captured when the order is created and
// never follows later catalog changes.
type Item struct {
	ProductID int64
	Name      string
	ImgURL    string
	Price     decimal.Decimal
	Quantity  int
}

func (i Item) SubTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Order struct {
	ID      int64
	Moment  time.Time
	Status  Status
	Client  Client
	Payment *Payment
	Items   []Item
}

func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.SubTotal())
	}
	return total
}

// OwnerID makes Order usable with auth.Guard.
func (o *Order) OwnerID() int64 {
	return o.Client.ID
}

type ItemInput struct {
	ProductID int64
	Quantity  int
}

type Input struct {
	Items []ItemInput
}

// ProductSnapshot is a product row read inside the creating transaction.
type ProductSnapshot struct {
	ID     int64
	Name   string
	Price  decimal.Decimal
	ImgURL string
}

// NewOrder prices lines against the locked product rows. Lines naming the
// same product are merged into one item; lines that fail Validate are
// rejected before pricing.
func NewOrder(clientID int64, moment time.Time, lines []ItemInput, products map[int64]ProductSnapshot) (*Order, error) {
	if err := Validate(Input{Items: lines}); err != nil {
		return nil, err
	}

	o := &Order{
		Moment: moment,
		Status: StatusWaitingPayment,
		Client: Client{ID: clientID},
	}

	index := make(map[int64]int, len(lines))
	for _, line := range lines {
		if i, ok := index[line.ProductID]; ok {
			o.Items[i].Quantity += line.Quantity
			continue
		}

		p, ok := products[line.ProductID]
		if !ok {
			return nil, product.ErrProductNotFound
		}

		index[line.ProductID] = len(o.Items)
		o.Items = append(o.Items, Item{
			ProductID: p.ID,
			Name:      p.Name,
			ImgURL:    p.ImgURL,
			Price:     p.Price,
			Quantity:  line.Quantity,
		})
	}

	return o, nil
}

func productIDs(lines []ItemInput) []int64 {
	seen := make(map[int64]struct{}, len(lines))
	ids := make([]int64, 0, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.ProductID]; ok {
			continue
		}
		seen[line.ProductID] = struct{}{}
		ids = append(ids, line.ProductID)
	}
	return ids
}
