package category

import (
	"context"
	"database/sql"

	"dscommerce-be/internal/logger"
	"dscommerce-be/internal/metrics"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	FindAll(ctx context.Context) ([]Category, error)
	FindByIDs(ctx context.Context, ids []int64) ([]Category, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindAll(ctx context.Context) ([]Category, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "FindAll"),
	)
	timer := metrics.StartTimer()
	defer metrics.ObserveDB("category_find_all", timer)

	query := `
		SELECT
			c.id,
			c.name
		FROM category c
		ORDER BY c.name ASC
	`

	log.Debug("Executing FindAll query", zap.String("query", query))

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("DB query failed FindAll", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	return scanCategories(rows, log)
}

// FindByIDs returns the categories that exist among ids, ordered by id.
func (r *repository) FindByIDs(ctx context.Context, ids []int64) ([]Category, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "FindByIDs"),
		zap.Int64s("category_ids", ids),
	)
	timer := metrics.StartTimer()
	defer metrics.ObserveDB("category_find_by_ids", timer)

	if len(ids) == 0 {
		return []Category{}, nil
	}

	query := `
		SELECT
			c.id,
			c.name
		FROM category c
		WHERE c.id = ANY($1)
		ORDER BY c.id ASC
	`

	log.Debug("Executing FindByIDs query", zap.String("query", query))

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		log.Error("DB query failed FindByIDs", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	return scanCategories(rows, log)
}

func scanCategories(rows *sql.Rows, log *zap.Logger) ([]Category, error) {
	categories := []Category{}

	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			log.Error("Row scan failed", zap.Error(err))
			return nil, err
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		log.Error("Rows iteration failed", zap.Error(err))
		return nil, err
	}

	return categories, nil
}
