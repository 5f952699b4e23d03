package callback

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"hoalan-be/internal/logger"
	"hoalan-be/internal/payment"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderCallback is the narrow sink the order service exposes for verified
// gateway callbacks. Keeping the interface here breaks the order/payment
// dependency cycle: this package never imports the order package.
type OrderCallback interface {
	PaymentCallback(ctx context.Context, orderID uuid.UUID, payDate time.Time, success bool) error
}

type Handler struct {
	orders        OrderCallback
	gateway       payment.Gateway
	clientBaseURL string
}

func NewHandler(orders OrderCallback, gateway payment.Gateway, clientBaseURL string) *Handler {
	return &Handler{
		orders:        orders,
		gateway:       gateway,
		clientBaseURL: clientBaseURL,
	}
}

// HandleReturn processes the gateway's asynchronous payment notification.
// The signature is verified before any field is read; tampered or malformed
// requests are rejected outright. Once verified, the customer is always
// redirected to the client result page, whatever happens during
// reconciliation - failures there are an ops concern, not a checkout page.
func (h *Handler) HandleReturn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromCtx(ctx)
	values := r.URL.Query()

	if !h.gateway.VerifyCallback(values) {
		log.Warn("payment callback with invalid signature",
			zap.String("remote_addr", r.RemoteAddr),
		)
		http.Error(w, "invalid signature", http.StatusBadRequest)
		return
	}

	params, err := payment.ParseCallback(values)
	if err != nil {
		log.Warn("malformed payment callback", zap.Error(err))
		http.Error(w, "malformed callback", http.StatusBadRequest)
		return
	}

	orderID, err := uuid.Parse(params.TxnRef)
	if err != nil {
		log.Warn("payment callback with invalid transaction reference",
			zap.String("txn_ref", params.TxnRef),
		)
		http.Error(w, "malformed callback", http.StatusBadRequest)
		return
	}

	if err := h.orders.PaymentCallback(ctx, orderID, params.PayTime(), params.Success()); err != nil {
		// The customer still lands on the result page; reconciliation
		// failures surface through logs and alerting only.
		log.Error("payment callback reconciliation failed",
			zap.String("order_id", orderID.String()),
			zap.Error(err),
		)
	}

	http.Redirect(w, r, h.resultURL(orderID), http.StatusFound)
}

func (h *Handler) resultURL(orderID uuid.UUID) string {
	return h.clientBaseURL + "/order/result?orderId=" + url.QueryEscape(orderID.String())
}
