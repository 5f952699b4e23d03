package cart

import (
	"context"
	"database/sql"
	"errors"

	"hoalan-be/internal/product"

	"github.com/google/uuid"
)

// Querier is satisfied by *sql.DB and *sql.Tx so lookups and deletes can run
// inside the order transaction.
type Querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type Repository interface {
	// FindItem loads a cart item populated with its product, option and the
	// product's current cost record. Returns nil when the cart item does not
	// exist; the populated references stay nil when their rows are gone.
	FindItem(ctx context.Context, q Querier, itemID uuid.UUID) (*Item, error)
	DeleteItem(ctx context.Context, q Querier, itemID uuid.UUID) error
}

type repository struct{}

func NewRepository() Repository {
	return &repository{}
}

func (r *repository) FindItem(ctx context.Context, q Querier, itemID uuid.UUID) (*Item, error) {
	query := `
		SELECT
			c.id, c.user_id, c.quantity, c.created_at,
			p.id, p.name, p.state,
			o.id, o.product_id, o.color, o.size, o.stock,
			pc.id, pc.sale_cost, pc.discount_percentage, pc.created_at
		FROM cart_items c
		LEFT JOIN products p ON p.id = c.product_id
		LEFT JOIN product_options o ON o.id = c.option_id
		LEFT JOIN LATERAL (
			SELECT id, sale_cost, discount_percentage, created_at
			FROM product_costs
			WHERE product_id = c.product_id
			ORDER BY created_at DESC
			LIMIT 1
		) pc ON true
		WHERE c.id = $1
	`

	var (
		item Item

		prodID    sql.Null[uuid.UUID]
		prodName  sql.NullString
		prodState sql.NullString

		optID     sql.Null[uuid.UUID]
		optProdID sql.Null[uuid.UUID]
		optColor  sql.NullString
		optSize   sql.NullString
		optStock  sql.NullInt64

		costID      sql.Null[uuid.UUID]
		saleCost    sql.NullInt64
		discountPct sql.NullInt64
		costCreated sql.NullTime
	)

	err := q.QueryRowContext(ctx, query, itemID).Scan(
		&item.ID, &item.UserID, &item.Quantity, &item.CreatedAt,
		&prodID, &prodName, &prodState,
		&optID, &optProdID, &optColor, &optSize, &optStock,
		&costID, &saleCost, &discountPct, &costCreated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if prodID.Valid {
		item.Product = &product.Product{
			ID:    prodID.V,
			Name:  prodName.String,
			State: product.State(prodState.String),
		}
	}
	if optID.Valid {
		item.Option = &product.Option{
			ID:        optID.V,
			ProductID: optProdID.V,
			Color:     optColor.String,
			Size:      optSize.String,
			Stock:     int(optStock.Int64),
		}
	}
	if costID.Valid {
		item.Cost = &product.Cost{
			ID:                 costID.V,
			ProductID:          prodID.V,
			SaleCost:           saleCost.Int64,
			DiscountPercentage: int(discountPct.Int64),
			CreatedAt:          costCreated.Time,
		}
	}

	return &item, nil
}

func (r *repository) DeleteItem(ctx context.Context, q Querier, itemID uuid.UUID) error {
	_, err := q.ExecContext(ctx, `DELETE FROM cart_items WHERE id = $1`, itemID)
	return err
}
