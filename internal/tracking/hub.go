// Package tracking fans live courier positions out to watchers.
package tracking

import (
	"context"
	"sync"
	"time"

	"delivery-tracking/internal/apperr"
	"delivery-tracking/internal/domain"
	"delivery-tracking/internal/logx"
	"delivery-tracking/internal/metrics"
)

// Conn is the write side of a live connection. Both courier reporters and
// subscribers are registered through it.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

// locationStore persists the append-only courier position log.
type locationStore interface {
	InsertLocation(ctx context.Context, loc *domain.CourierLocation) error
}

// LocationEvent is the payload pushed to subscribers.
type LocationEvent struct {
	CourierID int64     `json:"courier_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
}

// slot holds the live state for one courier: at most one reporting
// connection and any number of subscribers. writeMu serializes fan-out so
// subscribers observe positions in report order.
type slot struct {
	courier    Conn
	generation uint64
	subs       map[Conn]struct{}
	writeMu    sync.Mutex
}

// Hub routes courier location reports to their subscribers.
type Hub struct {
	mu     sync.Mutex
	slots  map[int64]*slot
	nextID uint64

	store  locationStore
	logger logx.Logger
}

// NewHub creates a Hub.
func NewHub(store locationStore, logger logx.Logger) *Hub {
	return &Hub{
		slots:  make(map[int64]*slot),
		store:  store,
		logger: logger,
	}
}

func (h *Hub) slotFor(courierID int64) *slot {
	s, ok := h.slots[courierID]
	if !ok {
		s = &slot{subs: make(map[Conn]struct{})}
		h.slots[courierID] = s
	}
	return s
}

// Connect registers the courier's reporting connection, superseding and
// closing any previous one. The returned generation ties the matching
// Disconnect to this connection.
func (h *Hub) Connect(courierID int64, c Conn) uint64 {
	h.mu.Lock()
	s := h.slotFor(courierID)
	prev := s.courier
	h.nextID++
	s.courier = c
	s.generation = h.nextID
	gen := s.generation
	h.mu.Unlock()

	if prev != nil {
		_ = prev.Close()
		h.logger.Info("courier connection superseded",
			logx.Int64("courier_id", courierID))
	}
	return gen
}

// Disconnect removes the courier's reporting connection if it is still the
// one identified by gen. Subscribers keep their registrations.
func (h *Hub) Disconnect(courierID int64, gen uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.slots[courierID]
	if !ok || s.generation != gen {
		return
	}
	s.courier = nil
	if len(s.subs) == 0 {
		delete(h.slots, courierID)
	}
}

// Subscribe registers a watcher for the courier's positions.
func (h *Hub) Subscribe(courierID int64, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.slotFor(courierID).subs[c] = struct{}{}
	metrics.TrackingSubscribers.Inc()
}

// Unsubscribe removes the watcher.
func (h *Hub) Unsubscribe(courierID int64, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.slots[courierID]
	if !ok {
		return
	}
	if _, present := s.subs[c]; !present {
		return
	}
	delete(s.subs, c)
	metrics.TrackingSubscribers.Dec()
	if s.courier == nil && len(s.subs) == 0 {
		delete(h.slots, courierID)
	}
}

// HandleReport validates and persists one position report, then pushes it
// to the courier's subscribers. Reports with out-of-range coordinates are
// rejected before anything is stored or sent. A subscriber whose send
// fails is dropped; the report still reaches the others.
func (h *Hub) HandleReport(ctx context.Context, courierID int64, lat, lon float64) (*domain.CourierLocation, error) {
	point, ok := domain.NewGeoPoint(lat, lon)
	if !ok {
		return nil, apperr.ErrInvalid
	}

	loc := &domain.CourierLocation{
		CourierID: courierID,
		Latitude:  point.Latitude,
		Longitude: point.Longitude,
	}
	if err := h.store.InsertLocation(ctx, loc); err != nil {
		return nil, err
	}
	metrics.LocationReports.Inc()

	h.broadcast(courierID, LocationEvent{
		CourierID: courierID,
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		Timestamp: loc.Timestamp,
	})
	return loc, nil
}

func (h *Hub) broadcast(courierID int64, ev LocationEvent) {
	h.mu.Lock()
	s, ok := h.slots[courierID]
	if !ok {
		h.mu.Unlock()
		return
	}
	targets := make([]Conn, 0, len(s.subs))
	for c := range s.subs {
		targets = append(targets, c)
	}
	h.mu.Unlock()

	s.writeMu.Lock()
	var broken []Conn
	for _, c := range targets {
		if err := c.WriteJSON(ev); err != nil {
			broken = append(broken, c)
		}
	}
	s.writeMu.Unlock()

	for _, c := range broken {
		h.Unsubscribe(courierID, c)
		_ = c.Close()
		h.logger.Warn("tracking subscriber dropped",
			logx.Int64("courier_id", courierID))
	}
}

// Subscribers reports how many watchers the courier currently has.
func (h *Hub) Subscribers(courierID int64) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s, ok := h.slots[courierID]; ok {
		return len(s.subs)
	}
	return 0
}
