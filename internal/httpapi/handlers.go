package httpapi

import (
	"encoding/json"
	"net/http"

	"hoalan-be/internal/order"
	"hoalan-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxBodySize = 16 * 1024

type Handler struct {
	orders order.Service
}

func NewHandler(orders order.Service) *Handler {
	return &Handler{orders: orders}
}

// Routes registers the order endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/orders", h.createOrder)
	r.Get("/orders", h.listOrders)
	r.Get("/orders/{orderID}", h.getOrder)
	r.Put("/orders/{orderID}/process", h.processOrder)
	r.Post("/orders/{orderID}/cancel-request", h.requestCancel)
	r.Post("/orders/{orderID}/cancel", h.resolveCancel)
}

type createOrderRequest struct {
	CartItemIDs   []string `json:"cartItemIds"`
	PaymentMethod string   `json:"paymentMethod"`
}

type processOrderRequest struct {
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	CustomerPhone string `json:"customerPhone"`
	Address       string `json:"address"`
	ProvinceID    int    `json:"provinceId"`
	DistrictID    int    `json:"districtId"`
	WardCode      string `json:"wardCode"`
}

type resolveCancelRequest struct {
	Accept bool   `json:"accept"`
	Reason string `json:"reason"`
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}

func currentUser(w http.ResponseWriter, r *http.Request) (uint, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return 0, false
	}
	return userID, true
}

func orderIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "orderID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req createOrderRequest
	if !decodeBody(w, r, &req) {
		return
	}

	method := order.PaymentMethod(req.PaymentMethod)
	if method != order.PaymentMethodVNPay && method != order.PaymentMethodCOD {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unsupported payment method"})
		return
	}

	cartItemIDs := make([]uuid.UUID, 0, len(req.CartItemIDs))
	for _, raw := range req.CartItemIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid cart item id"})
			return
		}
		cartItemIDs = append(cartItemIDs, id)
	}

	o, err := h.orders.CreateOrder(r.Context(), userID, cartItemIDs, method)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, o)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	orders, err := h.orders.ListOrders(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	orderID, ok := orderIDParam(w, r)
	if !ok {
		return
	}

	isAdmin := utils.GetUserRoleFromContext(r.Context()) == "ADMIN"

	o, err := h.orders.GetOrder(r.Context(), orderID, userID, isAdmin)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) processOrder(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(w, r); !ok {
		return
	}
	orderID, ok := orderIDParam(w, r)
	if !ok {
		return
	}

	var req processOrderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.CustomerName == "" || req.Address == "" || req.DistrictID == 0 || req.WardCode == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing required customer fields"})
		return
	}

	redirectURL, err := h.orders.ProcessOrder(r.Context(), orderID, order.ProcessOrderInput{
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		Address:       req.Address,
		ProvinceID:    req.ProvinceID,
		DistrictID:    req.DistrictID,
		WardCode:      req.WardCode,
		IPAddr:        clientIP(r),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"redirectUrl": redirectURL})
}

func (h *Handler) requestCancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	orderID, ok := orderIDParam(w, r)
	if !ok {
		return
	}

	if err := h.orders.RequestCancel(r.Context(), orderID, userID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"requested": true})
}

func (h *Handler) resolveCancel(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(w, r); !ok {
		return
	}
	if utils.GetUserRoleFromContext(r.Context()) != "ADMIN" {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "admin role required"})
		return
	}
	orderID, ok := orderIDParam(w, r)
	if !ok {
		return
	}

	var req resolveCancelRequest
	if !decodeBody(w, r, &req) {
		return
	}

	err := h.orders.ResolveCancel(r.Context(), orderID, order.ResolveCancelInput{
		Accept: req.Accept,
		Reason: req.Reason,
	}, clientIP(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"resolved": true})
}
