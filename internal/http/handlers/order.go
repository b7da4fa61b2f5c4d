package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"delivery-tracking/internal/apperr"
	"delivery-tracking/internal/domain"
	"delivery-tracking/internal/logx"
	"delivery-tracking/internal/service/orders"
	"delivery-tracking/internal/service/transition"
)

// OrderHandler serves HTTP endpoints for order resources.
type OrderHandler struct {
	orders      orderUsecase
	transitions transitionUsecase
	assignments assignmentUsecase
	logger      logx.Logger
}

// NewOrderHandler wires the order use cases into HTTP handlers.
func NewOrderHandler(o orderUsecase, t transitionUsecase, a assignmentUsecase, logger logx.Logger) *OrderHandler {
	return &OrderHandler{orders: o, transitions: t, assignments: a, logger: logger}
}

// Create handles POST /orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(h.logger, w, r)
	if !ok {
		return
	}
	var req createOrderRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	items := make([]domain.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, domain.OrderItem{
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Price:       it.Price,
		})
	}

	o, err := h.orders.Create(r.Context(), actor, orders.CreateOrder{
		CustomerID:      req.CustomerID,
		DeliveryAddress: req.DeliveryAddress,
		Items:           items,
	})
	switch {
	case err == nil:
		w.Header().Set("Location", "/orders/"+strconv.FormatInt(o.ID, 10))
		writeJSON(h.logger, w, r, http.StatusCreated, toOrderResponse(o))
	case errors.Is(err, apperr.ErrInvalid):
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid input")
	case errors.Is(err, apperr.ErrForbidden):
		writeError(h.logger, w, r, http.StatusForbidden, "forbidden")
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, "customer not found")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

// Get handles GET /orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	if _, ok := actorFromRequest(h.logger, w, r); !ok {
		return
	}
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}

	o, err := h.orders.Get(r.Context(), id)
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusOK, toOrderResponse(o))
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, "order not found")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

// Pay handles POST /orders/{id}/pay.
func (h *OrderHandler) Pay(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(h.logger, w, r)
	if !ok {
		return
	}
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}

	var req payRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	o, err := h.orders.Pay(r.Context(), actor, id, orders.PayInput{Method: req.PaymentMethod})
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusOK, toOrderResponse(o))
	case errors.Is(err, apperr.ErrInvalid):
		writeError(h.logger, w, r, http.StatusBadRequest, "payment method is required")
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, "order not found")
	case errors.Is(err, apperr.ErrForbidden):
		writeError(h.logger, w, r, http.StatusForbidden, "forbidden")
	case errors.Is(err, apperr.ErrInvalidTransition):
		writeError(h.logger, w, r, http.StatusConflict, "order is not payable")
	case errors.Is(err, apperr.ErrConflict):
		writeError(h.logger, w, r, http.StatusConflict, "payment declined")
	case errors.Is(err, apperr.ErrUpstream):
		writeError(h.logger, w, r, http.StatusBadGateway, "payment provider unavailable")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

// Assign handles POST /orders/{id}/assign-courier.
func (h *OrderHandler) Assign(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(h.logger, w, r)
	if !ok {
		return
	}
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}
	var req assignRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	if req.CourierID <= 0 {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid courier_id")
		return
	}

	o, err := h.assignments.Assign(r.Context(), actor, id, req.CourierID)
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusOK, toOrderResponse(o))
	case errors.Is(err, apperr.ErrForbidden):
		writeError(h.logger, w, r, http.StatusForbidden, "admin role required")
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, "order or courier not found")
	case errors.Is(err, apperr.ErrInvalidTransition):
		writeError(h.logger, w, r, http.StatusConflict, "order is not assignable")
	case errors.Is(err, apperr.ErrConflict):
		writeError(h.logger, w, r, http.StatusConflict, "courier is not available")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

// Tracking handles POST /orders/{id}/tracking.
func (h *OrderHandler) Tracking(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(h.logger, w, r)
	if !ok {
		return
	}
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}
	var req trackingRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	update, err := h.transitions.Apply(r.Context(), actor, id, transition.Change{
		Status:   domain.OrderStatus(req.Status),
		Location: req.Location,
		Comment:  req.Comment,
	})
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusCreated, toTrackingResponse(update))
	case errors.Is(err, apperr.ErrInvalid):
		writeError(h.logger, w, r, http.StatusBadRequest, "unknown status")
	case errors.Is(err, apperr.ErrForbidden):
		writeError(h.logger, w, r, http.StatusForbidden, "courier or admin role required")
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, "order not found")
	case errors.Is(err, apperr.ErrInvalidTransition):
		writeError(h.logger, w, r, http.StatusConflict, "transition not allowed")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

// Review handles POST /orders/{id}/review.
func (h *OrderHandler) Review(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(h.logger, w, r)
	if !ok {
		return
	}
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}
	var req reviewRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	rev, err := h.orders.Review(r.Context(), actor, id, orders.ReviewInput{
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusCreated, toReviewResponse(rev))
	case errors.Is(err, apperr.ErrInvalid):
		writeError(h.logger, w, r, http.StatusBadRequest, "rating must be between 1 and 5")
	case errors.Is(err, apperr.ErrForbidden):
		writeError(h.logger, w, r, http.StatusForbidden, "forbidden")
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, "order not found")
	case errors.Is(err, apperr.ErrInvalidTransition):
		writeError(h.logger, w, r, http.StatusConflict, "order is not delivered yet")
	case errors.Is(err, apperr.ErrConflict):
		writeError(h.logger, w, r, http.StatusConflict, "order already reviewed")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}
