package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"delivery-tracking/internal/logx"
)

func TestPing(t *testing.T) {
	t.Parallel()

	h := New(logx.Nop())
	r := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	h.Ping(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"message":"pong"}`, w.Body.String())
}

func TestHealthcheckHead(t *testing.T) {
	t.Parallel()

	h := New(logx.Nop())
	r := httptest.NewRequest(http.MethodHead, "/healthcheck", nil)
	w := httptest.NewRecorder()
	h.HealthcheckHead(w, r)

	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestNotFound(t *testing.T) {
	t.Parallel()

	h := New(logx.Nop())
	r := httptest.NewRequest(http.MethodGet, "/no-such-route", nil)
	w := httptest.NewRecorder()
	h.NotFound(w, r)

	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), "route not found")
}
