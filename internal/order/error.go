package order

import "hoalan-be/internal/apperr"

var (
	ErrOrderNotFound    = apperr.New(apperr.NotFound, "order not found")
	ErrCartItemNotFound = apperr.New(apperr.NotFound, "cart item not found")
	ErrProductNotFound  = apperr.New(apperr.NotFound, "product not found")
	ErrOptionNotFound   = apperr.New(apperr.NotFound, "product option not found")

	ErrProductSoldOut = apperr.New(apperr.BadRequest, "product is sold out")
	ErrEmptyCart      = apperr.New(apperr.BadRequest, "no cart items to order")
	ErrCantCancel     = apperr.New(apperr.BadRequest, "order can no longer be canceled")

	ErrForbidden = apperr.New(apperr.Forbidden, "not allowed to access this order")

	ErrCancelFailed  = apperr.New(apperr.Internal, "failed to cancel order")
	ErrNoTransaction = apperr.New(apperr.Internal, "order has no payment transaction")
)
