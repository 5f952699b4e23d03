package product

import (
	"time"

	"github.com/google/uuid"
)

// State marks product availability. Retired products stay in the catalog for
// historical orders but can no longer be purchased.
type State string

const (
	StateActive  State = "ACTIVE"
	StateRetired State = "RETIRED"
)

type Product struct {
	ID        uuid.UUID
	Name      string
	State     State
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Cost is a price record effective from CreatedAt. Order items keep a
// reference to the record that was current when the order was placed, so a
// later price change never alters an existing order.
type Cost struct {
	ID                 uuid.UUID
	ProductID          uuid.UUID
	SaleCost           int64
	DiscountPercentage int
	CreatedAt          time.Time
}

// Option is a purchasable variant (color/size) carrying the stock counter.
type Option struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	Color     string
	Size      string
	Stock     int
}

func (p *Product) Purchasable() bool {
	return p != nil && p.State == StateActive
}
