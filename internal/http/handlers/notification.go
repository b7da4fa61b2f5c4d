package handlers

import (
	"errors"
	"net/http"

	"delivery-tracking/internal/apperr"
	"delivery-tracking/internal/logx"
)

// NotificationHandler serves the notification feed.
type NotificationHandler struct {
	uc     notifyUsecase
	logger logx.Logger
}

// NewNotificationHandler wires a notifyUsecase into HTTP handlers.
func NewNotificationHandler(uc notifyUsecase, logger logx.Logger) *NotificationHandler {
	return &NotificationHandler{uc: uc, logger: logger}
}

// List handles GET /notifications.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(h.logger, w, r)
	if !ok {
		return
	}

	list, err := h.uc.List(r.Context(), actor)
	if err != nil {
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, toNotificationResponses(list))
}

// MarkRead handles POST /notifications/{id}/read.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(h.logger, w, r)
	if !ok {
		return
	}
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}

	err = h.uc.MarkRead(r.Context(), actor, id)
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusOK, map[string]string{"status": "ok"})
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, "notification not found")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}
