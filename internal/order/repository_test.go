package order

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"dscommerce-be/internal/product"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db), mock
}

var orderColumns = []string{"id", "moment", "status", "client_id", "client_name", "payment_moment"}

func TestRepository_FindByID(t *testing.T) {
	ctx := context.Background()
	moment := time.Date(2022, 7, 25, 13, 0, 0, 0, time.UTC)
	paidAt := time.Date(2022, 7, 25, 15, 0, 0, 0, time.UTC)

	t.Run("PaidOrder", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery(`SELECT (.+) FROM orders o JOIN users u (.+) LEFT JOIN payment pay (.+) WHERE o.id = \$1`).
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows(orderColumns).
				AddRow(1, moment, "PAID", 1, "Maria Brown", paidAt))

		mock.ExpectQuery(`SELECT (.+) FROM order_item oi JOIN product p (.+) WHERE oi.order_id = \$1`).
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"product_id", "name", "img_url", "price", "quantity"}).
				AddRow(1, "The Lord of the Rings", "https://img/1-big.jpg", "90.5", 2).
				AddRow(3, "Macbook Pro", "https://img/3-big.jpg", "1250.0", 1))

		o, err := repo.FindByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, StatusPaid, o.Status)
		assert.Equal(t, Client{ID: 1, Name: "Maria Brown"}, o.Client)
		require.NotNil(t, o.Payment)
		assert.Equal(t, paidAt, o.Payment.Moment)
		require.Len(t, o.Items, 2)
		assert.Equal(t, "181", o.Items[0].SubTotal().String())
		assert.True(t, decimal.RequireFromString("1431.0").Equal(o.Total()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("WithoutPayment", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery(`SELECT (.+) FROM orders o`).
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows(orderColumns).
				AddRow(3, moment, "WAITING_PAYMENT", 1, "Maria Brown", nil))

		mock.ExpectQuery(`SELECT (.+) FROM order_item oi`).
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows([]string{"product_id", "name", "img_url", "price", "quantity"}).
				AddRow(1, "The Lord of the Rings", "https://img/1-big.jpg", "90.5", 1))

		o, err := repo.FindByID(ctx, 3)
		require.NoError(t, err)
		assert.Nil(t, o.Payment)
		assert.Equal(t, StatusWaitingPayment, o.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery(`SELECT (.+) FROM orders o`).
			WithArgs(int64(1000)).
			WillReturnRows(sqlmock.NewRows(orderColumns))

		o, err := repo.FindByID(ctx, 1000)
		assert.Nil(t, o)
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})

	t.Run("ItemsQueryError", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery(`SELECT (.+) FROM orders o`).
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows(orderColumns).
				AddRow(1, moment, "PAID", 1, "Maria Brown", paidAt))
		mock.ExpectQuery(`SELECT (.+) FROM order_item oi`).
			WillReturnError(errors.New("db error"))

		_, err := repo.FindByID(ctx, 1)
		assert.EqualError(t, err, "db error")
	})
}

func TestRepository_Create(t *testing.T) {
	ctx := context.Background()
	moment := time.Date(2024, 3, 10, 15, 30, 45, 0, time.UTC)
	lines := []ItemInput{{ProductID: 1, Quantity: 2}, {ProductID: 5, Quantity: 1}}

	build := func(products map[int64]ProductSnapshot) (*Order, error) {
		return NewOrder(1, moment, lines, products)
	}

	lockRows := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "name", "price", "img_url"}).
			AddRow(1, "The Lord of the Rings", "90.5", "https://img/1-big.jpg").
			AddRow(5, "Rails for Dummies", "100.99", "https://img/5-big.jpg")
	}

	t.Run("Success", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM product p WHERE p.id = ANY\(\$1\) ORDER BY p.id FOR SHARE`).
			WithArgs(pq.Array([]int64{1, 5})).
			WillReturnRows(lockRows())
		mock.ExpectQuery(`INSERT INTO orders \(client_id, moment, status\)`).
			WithArgs(int64(1), moment, "WAITING_PAYMENT").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))
		mock.ExpectExec(`INSERT INTO order_item`).
			WithArgs(int64(4), int64(1), 2, decimal.RequireFromString("90.5")).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO order_item`).
			WithArgs(int64(4), int64(5), 1, decimal.RequireFromString("100.99")).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`SELECT name FROM users WHERE id = \$1`).
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Maria Brown"))
		mock.ExpectCommit()

		o, err := repo.Create(ctx, []int64{1, 5}, build)
		require.NoError(t, err)
		assert.Equal(t, int64(4), o.ID)
		assert.Equal(t, "Maria Brown", o.Client.Name)
		assert.Equal(t, "281.99", o.Total().String())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("UnknownProductRollsBack", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM product p`).
			WithArgs(pq.Array([]int64{1, 5})).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "img_url"}).
				AddRow(1, "The Lord of the Rings", "90.5", "https://img/1-big.jpg"))
		mock.ExpectRollback()

		o, err := repo.Create(ctx, []int64{1, 5}, build)
		assert.Nil(t, o)
		assert.ErrorIs(t, err, product.ErrProductNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ProductDeletedConcurrently", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM product p`).
			WillReturnRows(lockRows())
		mock.ExpectQuery(`INSERT INTO orders`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))
		mock.ExpectExec(`INSERT INTO order_item`).
			WillReturnError(&pq.Error{Code: "23503"})
		mock.ExpectRollback()

		_, err := repo.Create(ctx, []int64{1, 5}, build)
		assert.ErrorIs(t, err, product.ErrProductNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("InsertOrderError", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM product p`).
			WillReturnRows(lockRows())
		mock.ExpectQuery(`INSERT INTO orders`).
			WillReturnError(errors.New("db error"))
		mock.ExpectRollback()

		_, err := repo.Create(ctx, []int64{1, 5}, build)
		assert.EqualError(t, err, "db error")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	paidAt := time.Date(2024, 3, 10, 13, 0, 0, 0, time.UTC)

	pay := func(current Status) (Status, *Payment, error) {
		if current == StatusPaid {
			return current, nil, nil
		}
		if !current.CanTransitionTo(StatusPaid) {
			return current, nil, ErrInvalidTransition
		}
		return StatusPaid, &Payment{Moment: paidAt}, nil
	}

	t.Run("PersistsTransitionAndPayment", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT status FROM orders WHERE id = \$1 FOR UPDATE`).
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("WAITING_PAYMENT"))
		mock.ExpectExec(`UPDATE orders SET status = \$1 WHERE id = \$2`).
			WithArgs("PAID", int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO payment \(order_id, moment\)`).
			WithArgs(int64(3), paidAt).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.UpdateStatus(ctx, 3, pay))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("UnchangedCommitsWithoutWrites", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT status FROM orders`).
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("PAID"))
		mock.ExpectCommit()

		require.NoError(t, repo.UpdateStatus(ctx, 1, pay))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RejectedRollsBack", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT status FROM orders`).
			WithArgs(int64(2)).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("DELIVERED"))
		mock.ExpectRollback()

		assert.ErrorIs(t, repo.UpdateStatus(ctx, 2, pay), ErrInvalidTransition)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT status FROM orders`).
			WithArgs(int64(1000)).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		assert.ErrorIs(t, repo.UpdateStatus(ctx, 1000, pay), ErrOrderNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
