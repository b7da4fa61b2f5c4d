package tracking

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"delivery-tracking/internal/apperr"
	"delivery-tracking/internal/domain"
	"delivery-tracking/internal/logx"
)

type storeStub struct {
	mu     sync.Mutex
	locs   []domain.CourierLocation
	nextID int64
	fail   error
}

func (s *storeStub) InsertLocation(_ context.Context, loc *domain.CourierLocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.nextID++
	loc.ID = s.nextID
	s.locs = append(s.locs, *loc)
	return nil
}

type connStub struct {
	mu       sync.Mutex
	events   []LocationEvent
	writeErr error
	closed   bool
}

func (c *connStub) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeErr != nil {
		return c.writeErr
	}
	c.events = append(c.events, v.(LocationEvent))
	return nil
}

func (c *connStub) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *connStub) Events() []LocationEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]LocationEvent(nil), c.events...)
}

func TestHub_HandleReport_FansOut(t *testing.T) {
	t.Parallel()

	store := &storeStub{}
	h := NewHub(store, logx.Nop())

	sub1, sub2 := &connStub{}, &connStub{}
	h.Subscribe(7, sub1)
	h.Subscribe(7, sub2)

	loc, err := h.HandleReport(context.Background(), 7, 55.75, 37.62)
	require.NoError(t, err)
	require.NotZero(t, loc.ID)

	require.Len(t, store.locs, 1)
	for _, sub := range []*connStub{sub1, sub2} {
		events := sub.Events()
		require.Len(t, events, 1)
		require.Equal(t, int64(7), events[0].CourierID)
		require.InDelta(t, 55.75, events[0].Latitude, 1e-9)
	}
}

func TestHub_HandleReport_InvalidCoordinates(t *testing.T) {
	t.Parallel()

	store := &storeStub{}
	h := NewHub(store, logx.Nop())
	sub := &connStub{}
	h.Subscribe(7, sub)
	ctx := context.Background()

	cases := [][2]float64{{91, 0}, {-91, 0}, {0, 181}, {0, -181}}
	for _, c := range cases {
		_, err := h.HandleReport(ctx, 7, c[0], c[1])
		require.ErrorIs(t, err, apperr.ErrInvalid, "lat=%v lon=%v", c[0], c[1])
	}

	require.Empty(t, store.locs, "rejected reports must not persist")
	require.Empty(t, sub.Events(), "rejected reports must not fan out")
}

func TestHub_HandleReport_StoreFailureSkipsFanOut(t *testing.T) {
	t.Parallel()

	store := &storeStub{fail: errors.New("db down")}
	h := NewHub(store, logx.Nop())
	sub := &connStub{}
	h.Subscribe(7, sub)

	_, err := h.HandleReport(context.Background(), 7, 1, 1)
	require.Error(t, err)
	require.Empty(t, sub.Events())
}

func TestHub_HandleReport_OrderedPerCourier(t *testing.T) {
	t.Parallel()

	store := &storeStub{}
	h := NewHub(store, logx.Nop())
	sub := &connStub{}
	h.Subscribe(7, sub)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := h.HandleReport(ctx, 7, float64(i), float64(i))
		require.NoError(t, err)
	}

	events := sub.Events()
	require.Len(t, events, 5)
	for i, ev := range events {
		require.InDelta(t, float64(i), ev.Latitude, 1e-9, "events must arrive in report order")
	}
}

func TestHub_BrokenSubscriberDropped(t *testing.T) {
	t.Parallel()

	store := &storeStub{}
	h := NewHub(store, logx.Nop())
	broken := &connStub{writeErr: errors.New("write: broken pipe")}
	healthy := &connStub{}
	h.Subscribe(7, broken)
	h.Subscribe(7, healthy)
	ctx := context.Background()

	_, err := h.HandleReport(ctx, 7, 1, 1)
	require.NoError(t, err)

	require.True(t, broken.closed)
	require.Equal(t, 1, h.Subscribers(7))

	_, err = h.HandleReport(ctx, 7, 2, 2)
	require.NoError(t, err)
	require.Len(t, healthy.Events(), 2, "healthy subscriber keeps receiving")
}

func TestHub_ConnectSupersedes(t *testing.T) {
	t.Parallel()

	h := NewHub(&storeStub{}, logx.Nop())

	first, second := &connStub{}, &connStub{}
	gen1 := h.Connect(7, first)
	gen2 := h.Connect(7, second)

	require.True(t, first.closed, "superseded connection must be closed")
	require.False(t, second.closed)
	require.NotEqual(t, gen1, gen2)
}

func TestHub_DisconnectGenerationGuard(t *testing.T) {
	t.Parallel()

	h := NewHub(&storeStub{}, logx.Nop())
	sub := &connStub{}
	h.Subscribe(7, sub)

	first := &connStub{}
	gen1 := h.Connect(7, first)
	second := &connStub{}
	h.Connect(7, second)

	// the stale goroutine's deferred disconnect must not evict the new conn
	h.Disconnect(7, gen1)

	_, err := h.HandleReport(context.Background(), 7, 1, 1)
	require.NoError(t, err)
	require.Len(t, sub.Events(), 1)
}

func TestHub_SubscribersSurviveCourierDisconnect(t *testing.T) {
	t.Parallel()

	h := NewHub(&storeStub{}, logx.Nop())
	sub := &connStub{}
	h.Subscribe(7, sub)

	c := &connStub{}
	gen := h.Connect(7, c)
	h.Disconnect(7, gen)

	require.Equal(t, 1, h.Subscribers(7))

	h.Unsubscribe(7, sub)
	require.Equal(t, 0, h.Subscribers(7))
}
