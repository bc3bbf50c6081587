package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"dscommerce-be/internal/db"
	"dscommerce-be/internal/logger"
	"dscommerce-be/internal/metrics"
	"dscommerce-be/internal/product"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// BuildFunc prices an order from the product rows locked by Create.
type BuildFunc func(products map[int64]ProductSnapshot) (*Order, error)

// TransitionFunc decides the next status of a locked order. Returning the
// current status makes the update a no-op.
type TransitionFunc func(current Status) (next Status, payment *Payment, err error)

type Repository interface {
	FindByID(ctx context.Context, id int64) (*Order, error)
	Create(ctx context.Context, productIDs []int64, build BuildFunc) (*Order, error)
	UpdateStatus(ctx context.Context, id int64, apply TransitionFunc) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByID(ctx context.Context, id int64) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "FindByID"),
		zap.Int64("order_id", id),
	)
	timer := metrics.StartTimer()
	defer metrics.ObserveDB("order_find_by_id", timer)

	query := `
		SELECT
			o.id,
			o.moment,
			o.status,
			u.id,
			u.name,
			pay.moment
		FROM orders o
		JOIN users u ON u.id = o.client_id
		LEFT JOIN payment pay ON pay.order_id = o.id
		WHERE o.id = $1
	`

	log.Debug("Executing FindByID query", zap.String("query", query))

	var (
		o           Order
		paymentTime sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&o.ID,
		&o.Moment,
		&o.Status,
		&o.Client.ID,
		&o.Client.Name,
		&paymentTime,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		log.Error("DB query failed FindByID", zap.Error(err))
		return nil, err
	}

	o.Moment = o.Moment.UTC()
	if paymentTime.Valid {
		o.Payment = &Payment{Moment: paymentTime.Time.UTC()}
	}

	items, err := r.findItems(ctx, id)
	if err != nil {
		log.Error("failed to load order items", zap.Error(err))
		return nil, err
	}
	o.Items = items

	return &o, nil
}

func (r *repository) findItems(ctx context.Context, orderID int64) ([]Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			oi.product_id,
			p.name,
			p.img_url,
			oi.price,
			oi.quantity
		FROM order_item oi
		JOIN product p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.product_id ASC
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ProductID, &it.Name, &it.ImgURL, &it.Price, &it.Quantity); err != nil {
			return nil, err
		}
		items = append(items, it)
	}

	return items, rows.Err()
}

// Create runs the whole order creation in one transaction. Referenced
// products are share-locked so a concurrent delete waits for the commit
// and then sees the new order items.
func (r *repository) Create(ctx context.Context, productIDs []int64, build BuildFunc) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
		zap.Int64s("product_ids", productIDs),
	)
	timer := metrics.StartTimer()
	defer metrics.ObserveDB("order_create", timer)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// 1. Lock referenced products
	products, err := lockProducts(ctx, tx, productIDs)
	if err != nil {
		log.Error("failed to lock products", zap.Error(err))
		return nil, err
	}

	// 2. Price the order
	o, err := build(products)
	if err != nil {
		return nil, err
	}

	// 3. Insert order
	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (client_id, moment, status)
		VALUES ($1, $2, $3)
		RETURNING id
	`, o.Client.ID, o.Moment, string(o.Status)).Scan(&o.ID)
	if err != nil {
		log.Error("failed to insert order", zap.Error(err))
		return nil, err
	}

	// 4. Insert items
	for _, item := range o.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_item (order_id, product_id, quantity, price)
			VALUES ($1, $2, $3, $4)
		`, o.ID, item.ProductID, item.Quantity, item.Price)
		if err != nil {
			if db.IsForeignKeyViolation(err) {
				return nil, product.ErrProductNotFound
			}
			log.Error("failed to insert order item",
				zap.Int64("product_id", item.ProductID),
				zap.Error(err),
			)
			return nil, err
		}
	}

	// 5. Resolve client name
	err = tx.QueryRowContext(ctx, `SELECT name FROM users WHERE id = $1`, o.Client.ID).Scan(&o.Client.Name)
	if err != nil {
		log.Error("failed to load client", zap.Error(err))
		return nil, fmt.Errorf("load client %d: %w", o.Client.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return o, nil
}

func lockProducts(ctx context.Context, tx *sql.Tx, ids []int64) (map[int64]ProductSnapshot, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT
			p.id,
			p.name,
			p.price,
			p.img_url
		FROM product p
		WHERE p.id = ANY($1)
		ORDER BY p.id
		FOR SHARE
	`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make(map[int64]ProductSnapshot, len(ids))
	for rows.Next() {
		var p ProductSnapshot
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.ImgURL); err != nil {
			return nil, err
		}
		products[p.ID] = p
	}

	return products, rows.Err()
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, apply TransitionFunc) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "UpdateStatus"),
		zap.Int64("order_id", id),
	)
	timer := metrics.StartTimer()
	defer metrics.ObserveDB("order_update_status", timer)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// 1. Lock the order
	var current Status
	err = tx.QueryRowContext(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrOrderNotFound
	}
	if err != nil {
		log.Error("failed to lock order", zap.Error(err))
		return err
	}

	// 2. Decide
	next, payment, err := apply(current)
	if err != nil {
		return err
	}
	if next == current {
		return tx.Commit()
	}

	// 3. Persist
	if _, err := tx.ExecContext(ctx, `UPDATE orders SET status = $1 WHERE id = $2`, string(next), id); err != nil {
		log.Error("failed to update order status", zap.Error(err))
		return err
	}

	if payment != nil {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO payment (order_id, moment)
			VALUES ($1, $2)
		`, id, payment.Moment)
		if err != nil {
			log.Error("failed to insert payment", zap.Error(err))
			return err
		}
	}

	log.Info("order status updated",
		zap.String("from", string(current)),
		zap.String("to", string(next)),
	)
	return tx.Commit()
}
