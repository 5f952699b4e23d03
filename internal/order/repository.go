package order

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"hoalan-be/internal/apperr"
	"hoalan-be/internal/logger"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// Querier is satisfied by *sql.DB and *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type Repository interface {
	// RunInTransaction begins a transaction, invokes work with it, commits on
	// success and rolls back on any error. Known domain errors propagate
	// unchanged; anything else is wrapped as an internal fault.
	RunInTransaction(ctx context.Context, work func(tx *sql.Tx) error) error

	InsertOrder(ctx context.Context, q Querier, o *Order) error
	InsertOrderItem(ctx context.Context, q Querier, item *OrderItem) error

	// DecrementOptionStock atomically takes qty units off the option's stock.
	// Returns false when the remaining stock is insufficient; nothing is
	// written in that case.
	DecrementOptionStock(ctx context.Context, q Querier, optionID uuid.UUID, qty int) (bool, error)

	// GetOrder loads an order with its transaction and line items populated.
	// Returns nil when the order does not exist.
	GetOrder(ctx context.Context, orderID uuid.UUID) (*Order, error)

	// GetOrderForUpdate loads the order row with its transaction, locking the
	// order row for the duration of the surrounding transaction. Items are
	// not populated; use ListItems.
	GetOrderForUpdate(ctx context.Context, tx *sql.Tx, orderID uuid.UUID) (*Order, error)

	ListItems(ctx context.Context, q Querier, orderID uuid.UUID) ([]OrderItem, error)
	ListByUser(ctx context.Context, userID uint) ([]*Order, error)

	InsertTransaction(ctx context.Context, q Querier, t *Transaction) error
	UpdateTransactionStatus(ctx context.Context, q Querier, txnID uuid.UUID, status TransactionStatus, payDate time.Time) error

	// UpdateOrderForProcessing writes the customer contact fields, shipping
	// cost and ledger reference captured during processing.
	UpdateOrderForProcessing(ctx context.Context, q Querier, o *Order) error

	// UpdateOrderStatus transitions the order to status, guarded by the set
	// of states the transition is allowed from. Returns false when no row
	// matched (missing order or concurrent transition).
	UpdateOrderStatus(ctx context.Context, q Querier, orderID uuid.UUID, to OrderStatus, allowedFrom ...OrderStatus) (bool, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) RunInTransaction(ctx context.Context, work func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Wrap(err, "failed to begin transaction")
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				logger.FromCtx(ctx).Error("failed to rollback transaction", zap.Error(rbErr))
			}
		}
	}()

	if err := work(tx); err != nil {
		if apperr.IsKnown(err) {
			return err
		}
		return apperr.Wrap(err, "transaction failed")
	}

	if err := tx.Commit(); err != nil {
		return apperr.Wrap(err, "failed to commit transaction")
	}
	committed = true

	return nil
}

func (r *repository) InsertOrder(ctx context.Context, q Querier, o *Order) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO orders (
			id, user_id, status, payment_method,
			shipping_cost, total_cost, discount_cost
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		o.ID,
		o.UserID,
		o.Status,
		o.PaymentMethod,
		o.ShippingCost,
		o.TotalCost,
		o.DiscountCost,
	)
	return err
}

func (r *repository) InsertOrderItem(ctx context.Context, q Querier, item *OrderItem) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO order_items (
			id, order_id, product_id, option_id,
			quantity, cost_id, sale_cost, discount_percentage
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		item.ID,
		item.OrderID,
		item.ProductID,
		item.OptionID,
		item.Quantity,
		item.CostID,
		item.SaleCost,
		item.DiscountPercentage,
	)
	return err
}

func (r *repository) DecrementOptionStock(ctx context.Context, q Querier, optionID uuid.UUID, qty int) (bool, error) {
	res, err := q.ExecContext(ctx, `
		UPDATE product_options
		SET stock = stock - $1
		WHERE id = $2 AND stock >= $1
	`, qty, optionID)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

const orderColumns = `
	o.id, o.user_id,
	o.customer_name, o.customer_email, o.customer_phone,
	o.address, o.province_id, o.district_id, o.ward_code,
	o.status, o.payment_method, o.transaction_id,
	o.shipping_cost, o.total_cost, o.discount_cost,
	o.created_at, o.updated_at,
	t.id, t.amount, t.status, t.pay_date, t.created_at
`

func scanOrder(row *sql.Row) (*Order, error) {
	var (
		o Order

		txnRef sql.Null[uuid.UUID]

		txnID      sql.Null[uuid.UUID]
		txnAmount  sql.NullInt64
		txnStatus  sql.NullString
		txnPayDate sql.NullTime
		txnCreated sql.NullTime
	)

	err := row.Scan(
		&o.ID, &o.UserID,
		&o.CustomerName, &o.CustomerEmail, &o.CustomerPhone,
		&o.Address, &o.ProvinceID, &o.DistrictID, &o.WardCode,
		&o.Status, &o.PaymentMethod, &txnRef,
		&o.ShippingCost, &o.TotalCost, &o.DiscountCost,
		&o.CreatedAt, &o.UpdatedAt,
		&txnID, &txnAmount, &txnStatus, &txnPayDate, &txnCreated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if txnRef.Valid {
		o.TransactionID = &txnRef.V
	}
	if txnID.Valid {
		t := Transaction{
			ID:        txnID.V,
			Amount:    txnAmount.Int64,
			Status:    TransactionStatus(txnStatus.String),
			CreatedAt: txnCreated.Time,
		}
		if txnPayDate.Valid {
			t.PayDate = &txnPayDate.Time
		}
		o.Transaction = &t
	}

	return &o, nil
}

func (r *repository) GetOrder(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders o
		LEFT JOIN order_transactions t ON t.id = o.transaction_id
		WHERE o.id = $1
	`, orderID)

	o, err := scanOrder(row)
	if err != nil || o == nil {
		return o, err
	}

	items, err := r.ListItems(ctx, r.db, orderID)
	if err != nil {
		return nil, err
	}
	o.Items = items

	return o, nil
}

func (r *repository) GetOrderForUpdate(ctx context.Context, tx *sql.Tx, orderID uuid.UUID) (*Order, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders o
		LEFT JOIN order_transactions t ON t.id = o.transaction_id
		WHERE o.id = $1
		FOR UPDATE OF o
	`, orderID)

	return scanOrder(row)
}

func (r *repository) ListItems(ctx context.Context, q Querier, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT
			i.id, i.order_id, i.product_id, i.option_id,
			i.quantity, i.cost_id, i.sale_cost, i.discount_percentage,
			COALESCE(p.name, '')
		FROM order_items i
		LEFT JOIN products p ON p.id = i.product_id
		WHERE i.order_id = $1
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.OptionID,
			&item.Quantity, &item.CostID, &item.SaleCost, &item.DiscountPercentage,
			&item.ProductName,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func (r *repository) ListByUser(ctx context.Context, userID uint) ([]*Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			o.id, o.status, o.payment_method,
			o.shipping_cost, o.total_cost, o.discount_cost,
			o.created_at, o.updated_at
		FROM orders o
		WHERE o.user_id = $1
		ORDER BY o.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(
			&o.ID, &o.Status, &o.PaymentMethod,
			&o.ShippingCost, &o.TotalCost, &o.DiscountCost,
			&o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, err
		}
		o.UserID = userID
		orders = append(orders, &o)
	}

	return orders, rows.Err()
}

func (r *repository) InsertTransaction(ctx context.Context, q Querier, t *Transaction) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO order_transactions (id, amount, status)
		VALUES ($1,$2,$3)
	`, t.ID, t.Amount, t.Status)
	return err
}

func (r *repository) UpdateTransactionStatus(ctx context.Context, q Querier, txnID uuid.UUID, status TransactionStatus, payDate time.Time) error {
	_, err := q.ExecContext(ctx, `
		UPDATE order_transactions
		SET status = $1, pay_date = $2
		WHERE id = $3
	`, status, payDate, txnID)
	return err
}

func (r *repository) UpdateOrderForProcessing(ctx context.Context, q Querier, o *Order) error {
	_, err := q.ExecContext(ctx, `
		UPDATE orders
		SET customer_name = $1,
			customer_email = $2,
			customer_phone = $3,
			address = $4,
			province_id = $5,
			district_id = $6,
			ward_code = $7,
			shipping_cost = $8,
			transaction_id = $9,
			updated_at = NOW()
		WHERE id = $10
	`,
		o.CustomerName,
		o.CustomerEmail,
		o.CustomerPhone,
		o.Address,
		o.ProvinceID,
		o.DistrictID,
		o.WardCode,
		o.ShippingCost,
		o.TransactionID,
		o.ID,
	)
	return err
}

func (r *repository) UpdateOrderStatus(ctx context.Context, q Querier, orderID uuid.UUID, to OrderStatus, allowedFrom ...OrderStatus) (bool, error) {
	from := make([]string, 0, len(allowedFrom))
	for _, s := range allowedFrom {
		from = append(from, string(s))
	}

	res, err := q.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = ANY($3)
	`, to, orderID, pq.Array(from))
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
