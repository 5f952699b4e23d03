package cart

import (
	"time"

	"hoalan-be/internal/product"

	"github.com/google/uuid"
)

// Item is a cart row populated with its product, chosen option and the
// product's current cost record. Product, Option or Cost are nil when the
// referenced row no longer exists; the order service turns each case into
// its own error.
type Item struct {
	ID        uuid.UUID
	UserID    uint
	Quantity  int
	CreatedAt time.Time

	Product *product.Product
	Option  *product.Option
	Cost    *product.Cost
}
