package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"delivery-tracking/internal/domain"
	"delivery-tracking/internal/http/middleware"
	"delivery-tracking/internal/logx"
	"delivery-tracking/internal/tracking"
)

type locationStoreStub struct {
	mu       sync.Mutex
	inserted []*domain.CourierLocation
}

func (s *locationStoreStub) InsertLocation(_ context.Context, loc *domain.CourierLocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inserted = append(s.inserted, loc)
	return nil
}

func (s *locationStoreStub) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inserted)
}

type couriersStub struct {
	courier *domain.Courier
}

func (s *couriersStub) Get(context.Context, int64) (*domain.Courier, error) {
	return s.courier, nil
}

// newCourierStreamServer serves the courier reporting endpoint for courier 7
// (owned by user 70) with the given actor already authenticated.
func newCourierStreamServer(t *testing.T, store *locationStoreStub, actor domain.Actor) *httptest.Server {
	t.Helper()

	hub := tracking.NewHub(store, logx.Nop())
	h := NewWSHandler(hub, &couriersStub{courier: &domain.Courier{ID: 7, UserID: 70}}, nil, logx.Nop(), time.Second)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.WithActor(req.Context(), actor)))
		})
	})
	r.Get("/ws/couriers/{id}/location", h.CourierLocation)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dialCourierStream(t *testing.T, srv *httptest.Server) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/couriers/7/location"
	return websocket.DefaultDialer.Dial(url, nil)
}

func sendText(t *testing.T, conn *websocket.Conn, payload string) {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(payload)))
}

func readErrorFrame(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var resp errResponse
	require.NoError(t, conn.ReadJSON(&resp))
	return resp.Error
}

func requireClosed(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err, "server should have dropped the connection")
}

func TestWSHandler_CourierLocation_RepeatedMalformedFramesClose(t *testing.T) {
	t.Parallel()

	store := &locationStoreStub{}
	srv := newCourierStreamServer(t, store, domain.Actor{UserID: 70, Role: domain.RoleCourier})

	conn, _, err := dialCourierStream(t, srv)
	require.NoError(t, err)
	defer conn.Close()

	// the first two bad frames are answered with an error frame
	sendText(t, conn, "not-json")
	require.Equal(t, "malformed payload", readErrorFrame(t, conn))
	sendText(t, conn, `{"latitude":95,"longitude":10}`)
	require.Equal(t, "coordinates out of range", readErrorFrame(t, conn))

	// the third consecutive one drops the connection without an answer
	sendText(t, conn, "not-json")
	requireClosed(t, conn)

	require.Zero(t, store.count(), "no report should have been persisted")
}

func TestWSHandler_CourierLocation_ValidReportResetsMalformedCounter(t *testing.T) {
	t.Parallel()

	store := &locationStoreStub{}
	srv := newCourierStreamServer(t, store, domain.Actor{UserID: 70, Role: domain.RoleCourier})

	conn, _, err := dialCourierStream(t, srv)
	require.NoError(t, err)
	defer conn.Close()

	sendText(t, conn, "not-json")
	require.Equal(t, "malformed payload", readErrorFrame(t, conn))
	sendText(t, conn, "not-json")
	require.Equal(t, "malformed payload", readErrorFrame(t, conn))

	sendText(t, conn, `{"latitude":55.75,"longitude":37.61}`)

	// two more bad frames still get answered: the valid report reset the count
	sendText(t, conn, "not-json")
	require.Equal(t, "malformed payload", readErrorFrame(t, conn))
	sendText(t, conn, `{"latitude":0,"longitude":181}`)
	require.Equal(t, "coordinates out of range", readErrorFrame(t, conn))

	require.Equal(t, 1, store.count(), "the valid report should have been persisted")

	sendText(t, conn, "not-json")
	requireClosed(t, conn)
}

func TestWSHandler_CourierLocation_RejectsBeforeUpgrade(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		actor    domain.Actor
		wantCode int
	}{
		{"foreign courier", domain.Actor{UserID: 999, Role: domain.RoleCourier}, http.StatusForbidden},
		{"customer role", domain.Actor{UserID: 70, Role: domain.RoleCustomer}, http.StatusForbidden},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			srv := newCourierStreamServer(t, &locationStoreStub{}, tc.actor)

			conn, resp, err := dialCourierStream(t, srv)
			require.ErrorIs(t, err, websocket.ErrBadHandshake)
			require.Nil(t, conn)
			require.NotNil(t, resp)
			defer resp.Body.Close()
			require.Equal(t, tc.wantCode, resp.StatusCode)
		})
	}
}
