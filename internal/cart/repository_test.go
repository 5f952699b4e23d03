package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hoalan-be/internal/product"
)

func cartItemColumns() []string {
	return []string{
		"id", "user_id", "quantity", "created_at",
		"p_id", "p_name", "p_state",
		"o_id", "o_product_id", "o_color", "o_size", "o_stock",
		"pc_id", "pc_sale_cost", "pc_discount_percentage", "pc_created_at",
	}
}

func TestRepository_FindItem(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository()
	ctx := context.Background()
	itemID := uuid.New()

	t.Run("FullyPopulated", func(t *testing.T) {
		productID := uuid.New()
		optionID := uuid.New()
		costID := uuid.New()

		rows := sqlmock.NewRows(cartItemColumns()).AddRow(
			itemID.String(), 7, 2, time.Now(),
			productID.String(), "Linen Shirt", "ACTIVE",
			optionID.String(), productID.String(), "white", "M", 5,
			costID.String(), 100, 10, time.Now(),
		)

		mock.ExpectQuery(`SELECT\s+c.id, c.user_id, .* FROM cart_items c`).
			WithArgs(itemID).
			WillReturnRows(rows)

		item, err := repo.FindItem(ctx, db, itemID)
		require.NoError(t, err)
		require.NotNil(t, item)

		assert.Equal(t, uint(7), item.UserID)
		assert.Equal(t, 2, item.Quantity)

		require.NotNil(t, item.Product)
		assert.Equal(t, product.StateActive, item.Product.State)
		assert.True(t, item.Product.Purchasable())

		require.NotNil(t, item.Option)
		assert.Equal(t, optionID, item.Option.ID)
		assert.Equal(t, 5, item.Option.Stock)

		require.NotNil(t, item.Cost)
		assert.Equal(t, int64(100), item.Cost.SaleCost)
		assert.Equal(t, 10, item.Cost.DiscountPercentage)
	})

	t.Run("OrphanedReferences", func(t *testing.T) {
		rows := sqlmock.NewRows(cartItemColumns()).AddRow(
			itemID.String(), 7, 2, time.Now(),
			nil, nil, nil,
			nil, nil, nil, nil, nil,
			nil, nil, nil, nil,
		)

		mock.ExpectQuery(`SELECT\s+c.id, c.user_id, .* FROM cart_items c`).
			WithArgs(itemID).
			WillReturnRows(rows)

		item, err := repo.FindItem(ctx, db, itemID)
		require.NoError(t, err)
		require.NotNil(t, item)

		assert.Nil(t, item.Product)
		assert.Nil(t, item.Option)
		assert.Nil(t, item.Cost)
		assert.False(t, item.Product.Purchasable())
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(`SELECT\s+c.id, c.user_id, .* FROM cart_items c`).
			WithArgs(itemID).
			WillReturnRows(sqlmock.NewRows(cartItemColumns()))

		item, err := repo.FindItem(ctx, db, itemID)
		assert.NoError(t, err)
		assert.Nil(t, item)
	})

	t.Run("DBError", func(t *testing.T) {
		mock.ExpectQuery(`SELECT\s+c.id, c.user_id, .* FROM cart_items c`).
			WithArgs(itemID).
			WillReturnError(errors.New("db error"))

		_, err := repo.FindItem(ctx, db, itemID)
		assert.Error(t, err)
	})
}

func TestRepository_DeleteItem(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository()
	ctx := context.Background()
	itemID := uuid.New()

	mock.ExpectExec(`DELETE FROM cart_items WHERE id = \$1`).
		WithArgs(itemID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.DeleteItem(ctx, db, itemID))
	assert.NoError(t, mock.ExpectationsWereMet())
}
