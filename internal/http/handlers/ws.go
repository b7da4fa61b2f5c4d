package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"delivery-tracking/internal/apperr"
	"delivery-tracking/internal/domain"
	"delivery-tracking/internal/logx"
	"delivery-tracking/internal/tracking"
)

// courierGetter resolves couriers for connection ownership checks.
type courierGetter interface {
	Get(ctx context.Context, id int64) (*domain.Courier, error)
}

// consecutive malformed payloads tolerated before the connection is closed
const maxMalformed = 3

// WSHandler serves the live location WebSocket endpoints.
type WSHandler struct {
	hub         *tracking.Hub
	couriers    courierGetter
	orders      orderUsecase
	logger      logx.Logger
	idleTimeout time.Duration

	upgrader websocket.Upgrader
}

// NewWSHandler wires the location hub into WebSocket handlers.
func NewWSHandler(hub *tracking.Hub, couriers courierGetter, orders orderUsecase, logger logx.Logger, idleTimeout time.Duration) *WSHandler {
	if idleTimeout <= 0 {
		idleTimeout = 90 * time.Second
	}
	return &WSHandler{
		hub:         hub,
		couriers:    couriers,
		orders:      orders,
		logger:      logger,
		idleTimeout: idleTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// auth happens via bearer token, not origin
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

type locationReport struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CourierLocation handles GET /ws/couriers/{id}/location: the courier's
// reporting stream. A new connection for the same courier supersedes the
// old one; an idle connection is closed after idleTimeout.
func (h *WSHandler) CourierLocation(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(h.logger, w, r)
	if !ok {
		return
	}
	if !actor.Role.CanReportTracking() {
		writeError(h.logger, w, r, http.StatusForbidden, "courier or admin role required")
		return
	}
	courierID, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}

	courier, err := h.couriers.Get(r.Context(), courierID)
	if err != nil {
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
		return
	}
	if courier == nil {
		writeError(h.logger, w, r, http.StatusNotFound, "courier not found")
		return
	}
	if actor.Role == domain.RoleCourier && courier.UserID != actor.UserID {
		writeError(h.logger, w, r, http.StatusForbidden, "not your courier id")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already answered the client
		h.logger.Warn("ws upgrade failed", logx.Err(err))
		return
	}

	gen := h.hub.Connect(courierID, conn)
	defer func() {
		h.hub.Disconnect(courierID, gen)
		_ = conn.Close()
	}()

	h.logger.Info("courier stream opened",
		logx.Int64("courier_id", courierID),
		logx.Int64("actor_user_id", actor.UserID),
	)

	malformed := 0
	for {
		// every report refreshes the idle deadline
		if err := conn.SetReadDeadline(time.Now().Add(h.idleTimeout)); err != nil {
			return
		}
		_, payload, err := conn.ReadMessage()
		if err != nil {
			// timeout, close frame or broken transport
			return
		}

		var report locationReport
		if err := json.Unmarshal(payload, &report); err != nil {
			malformed++
			if malformed >= maxMalformed {
				h.logger.Warn("courier stream closed: repeated malformed payloads",
					logx.Int64("courier_id", courierID))
				return
			}
			_ = conn.WriteJSON(errResponse{Error: "malformed payload"})
			continue
		}

		_, err = h.hub.HandleReport(r.Context(), courierID, report.Latitude, report.Longitude)
		switch {
		case err == nil:
			malformed = 0
		case errors.Is(err, apperr.ErrInvalid):
			malformed++
			if malformed >= maxMalformed {
				h.logger.Warn("courier stream closed: repeated malformed payloads",
					logx.Int64("courier_id", courierID))
				return
			}
			_ = conn.WriteJSON(errResponse{Error: "coordinates out of range"})
		default:
			h.logger.Error("location report failed",
				logx.Int64("courier_id", courierID),
				logx.Err(err),
			)
			return
		}
	}
}

// OrderLocation handles GET /ws/orders/{id}/location: watchers receive the
// positions of the courier currently bound to the order.
func (h *WSHandler) OrderLocation(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(h.logger, w, r)
	if !ok {
		return
	}
	if actor.Role != domain.RoleCustomer && actor.Role != domain.RoleAdmin {
		writeError(h.logger, w, r, http.StatusForbidden, "customer or admin role required")
		return
	}
	orderID, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}

	o, err := h.orders.Get(r.Context(), orderID)
	switch {
	case err == nil:
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, "order not found")
		return
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
		return
	}
	if o.CourierID == nil {
		writeError(h.logger, w, r, http.StatusConflict, "no courier assigned yet")
		return
	}
	courierID := *o.CourierID

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", logx.Err(err))
		return
	}

	h.hub.Subscribe(courierID, conn)
	defer func() {
		h.hub.Unsubscribe(courierID, conn)
		_ = conn.Close()
	}()

	h.logger.Info("order location stream opened",
		logx.Int64("order_id", orderID),
		logx.Int64("courier_id", courierID),
	)

	// watchers only listen; the read loop detects the client going away
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
