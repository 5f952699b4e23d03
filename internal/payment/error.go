package payment

import "hoalan-be/internal/apperr"

var (
	ErrMalformedCallback = apperr.New(apperr.BadRequest, "malformed payment callback")
	ErrInvalidSignature  = apperr.New(apperr.BadRequest, "invalid payment callback signature")
	ErrRefundRejected    = apperr.New(apperr.Internal, "refund rejected by payment gateway")
)
