package delivery

import "hoalan-be/internal/apperr"

// PackageItem is the shipping view of one order line: the base package size
// from configuration scaled by the ordered quantity.
type PackageItem struct {
	Name     string
	Quantity int
}

// QuoteRequest asks for a shipping fee to the destination codes, insuring
// the order total.
type QuoteRequest struct {
	InsuredValue int64
	ToDistrictID int
	ToWardCode   string
	Items        []PackageItem
}

var ErrServiceUnavailable = apperr.New(apperr.Unavailable, "no delivery service available for destination")
