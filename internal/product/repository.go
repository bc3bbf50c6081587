package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"dscommerce-be/internal/category"
	"dscommerce-be/internal/db"
	"dscommerce-be/internal/logger"
	"dscommerce-be/internal/metrics"

	"go.uber.org/zap"
)

type Repository interface {
	FindByID(ctx context.Context, id int64) (*Product, error)
	// FindAll returns one page of products without description or categories.
	FindAll(ctx context.Context, opts ListOptions) ([]Product, int64, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByID(ctx context.Context, id int64) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "FindByID"),
		zap.Int64("product_id", id),
	)
	timer := metrics.StartTimer()
	defer metrics.ObserveDB("product_find_by_id", timer)

	query := `
		SELECT
			p.id,
			p.name,
			p.description,
			p.price,
			p.img_url
		FROM product p
		WHERE p.id = $1
	`

	log.Debug("Executing FindByID query", zap.String("query", query))

	var p Product
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.ImgURL,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		log.Error("DB query failed FindByID", zap.Error(err))
		return nil, err
	}

	categories, err := r.findCategories(ctx, id)
	if err != nil {
		log.Error("failed to load product categories", zap.Error(err))
		return nil, err
	}
	p.Categories = categories

	return &p, nil
}

func (r *repository) findCategories(ctx context.Context, productID int64) ([]category.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			c.id,
			c.name
		FROM product_category pc
		JOIN category c ON c.id = pc.category_id
		WHERE pc.product_id = $1
		ORDER BY c.id ASC
	`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []category.Category{}
	for rows.Next() {
		var c category.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}

	return categories, rows.Err()
}

func (r *repository) FindAll(ctx context.Context, opts ListOptions) ([]Product, int64, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "FindAll"),
		zap.String("name", opts.Name),
		zap.Int("page", opts.Page.Page),
		zap.Int("size", opts.Page.Size),
	)
	timer := metrics.StartTimer()
	defer metrics.ObserveDB("product_find_all", timer)

	where := []string{}
	args := []interface{}{}

	// ---------- FILTER ----------
	if opts.Name != "" {
		where = append(where, fmt.Sprintf("p.name ILIKE $%d", len(args)+1))
		args = append(args, "%"+escapeLike(opts.Name)+"%")
	}

	whereSQL := ""
	if len(where) > 0 {
		whereSQL = " WHERE " + strings.Join(where, " AND ")
	}

	// ---------- COUNT ----------
	countQuery := "SELECT COUNT(*) FROM product p" + whereSQL

	var total int64
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		log.Error("DB count failed FindAll", zap.Error(err))
		return nil, 0, err
	}

	// ---------- BASE QUERY ----------
	query := `
		SELECT
			p.id,
			p.name,
			p.price,
			p.img_url
		FROM product p
	` + whereSQL

	// ---------- ORDER ----------
	query += " ORDER BY p.id ASC"

	// ---------- PAGINATION ----------
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, opts.Page.Size, opts.Page.Offset())

	log.Debug("Executing FindAll query",
		zap.String("query", query),
		zap.Any("args", args),
	)

	// ---------- EXECUTE ----------
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("DB query failed FindAll", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.ImgURL); err != nil {
			log.Error("Row scan failed", zap.Error(err))
			return nil, 0, err
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		log.Error("Rows iteration failed", zap.Error(err))
		return nil, 0, err
	}

	return products, total, nil
}

func (r *repository) Create(ctx context.Context, p *Product) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
	)
	timer := metrics.StartTimer()
	defer metrics.ObserveDB("product_create", timer)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// 1. Insert product
	err = tx.QueryRowContext(ctx, `
		INSERT INTO product (name, description, price, img_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, p.Name, p.Description, p.Price, p.ImgURL).Scan(&p.ID)
	if err != nil {
		log.Error("failed to insert product", zap.Error(err))
		return err
	}

	// 2. Link categories
	if err := insertCategoryLinks(ctx, tx, p.ID, p.Categories); err != nil {
		log.Error("failed to link categories", zap.Error(err))
		return err
	}

	return tx.Commit()
}

func (r *repository) Update(ctx context.Context, p *Product) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Update"),
		zap.Int64("product_id", p.ID),
	)
	timer := metrics.StartTimer()
	defer metrics.ObserveDB("product_update", timer)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// 1. Update product row
	res, err := tx.ExecContext(ctx, `
		UPDATE product
		SET name = $1, description = $2, price = $3, img_url = $4
		WHERE id = $5
	`, p.Name, p.Description, p.Price, p.ImgURL, p.ID)
	if err != nil {
		log.Error("failed to update product", zap.Error(err))
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}

	// 2. Replace category links
	if _, err := tx.ExecContext(ctx, `DELETE FROM product_category WHERE product_id = $1`, p.ID); err != nil {
		log.Error("failed to clear category links", zap.Error(err))
		return err
	}

	if err := insertCategoryLinks(ctx, tx, p.ID, p.Categories); err != nil {
		log.Error("failed to link categories", zap.Error(err))
		return err
	}

	return tx.Commit()
}

// Delete removes a product that no order item references. The row lock
// serializes it against order creation, which share-locks the products it
// prices.
func (r *repository) Delete(ctx context.Context, id int64) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Delete"),
		zap.Int64("product_id", id),
	)
	timer := metrics.StartTimer()
	defer metrics.ObserveDB("product_delete", timer)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// 1. Lock the product
	var lockedID int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM product WHERE id = $1 FOR UPDATE`, id).Scan(&lockedID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrProductNotFound
	}
	if err != nil {
		log.Error("failed to lock product", zap.Error(err))
		return err
	}

	// 2. Refuse when referenced
	var referenced bool
	err = tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM order_item WHERE product_id = $1)`, id).Scan(&referenced)
	if err != nil {
		log.Error("failed to check order references", zap.Error(err))
		return err
	}
	if referenced {
		return ErrProductInUse
	}

	// 3. Delete links and product
	if _, err := tx.ExecContext(ctx, `DELETE FROM product_category WHERE product_id = $1`, id); err != nil {
		log.Error("failed to delete category links", zap.Error(err))
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM product WHERE id = $1`, id); err != nil {
		if db.IsForeignKeyViolation(err) {
			return ErrProductInUse
		}
		log.Error("failed to delete product", zap.Error(err))
		return err
	}

	return tx.Commit()
}

func insertCategoryLinks(ctx context.Context, tx *sql.Tx, productID int64, categories []category.Category) error {
	for _, c := range categories {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO product_category (product_id, category_id)
			VALUES ($1, $2)
		`, productID, c.ID)
		if err != nil {
			if db.IsForeignKeyViolation(err) {
				return category.ErrCategoryNotFound
			}
			return err
		}
	}
	return nil
}

// escapeLike makes user input match literally inside an ILIKE pattern.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
