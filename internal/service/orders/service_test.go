package orders_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"delivery-tracking/internal/apperr"
	"delivery-tracking/internal/domain"
	"delivery-tracking/internal/gateway/payments"
	"delivery-tracking/internal/logx"
	"delivery-tracking/internal/service/orders"
	"delivery-tracking/internal/storetest"
)

type customersStub struct {
	byID map[int64]*domain.Customer
}

func (c *customersStub) Get(_ context.Context, id int64) (*domain.Customer, error) {
	return c.byID[id], nil
}

type reviewsStub struct {
	mu      sync.Mutex
	reviews map[int64]domain.Review // keyed by order id
}

func (r *reviewsStub) Insert(_ context.Context, rev *domain.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.reviews == nil {
		r.reviews = make(map[int64]domain.Review)
	}
	if _, ok := r.reviews[rev.OrderID]; ok {
		return apperr.ErrConflict
	}
	rev.ID = int64(len(r.reviews) + 1)
	r.reviews[rev.OrderID] = *rev
	return nil
}

type gatewayStub struct {
	processFn func(context.Context, payments.Request) (*payments.Result, error)
}

func (g *gatewayStub) Process(ctx context.Context, pr payments.Request) (*payments.Result, error) {
	return g.processFn(ctx, pr)
}

type cacheSpy struct {
	mu           sync.Mutex
	entries      map[int64]*domain.Order
	hits, misses int
	invalidated  []int64
}

func newCacheSpy() *cacheSpy {
	return &cacheSpy{entries: make(map[int64]*domain.Order)}
}

func (c *cacheSpy) Get(orderID int64) (*domain.Order, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	o, ok := c.entries[orderID]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return o, ok
}

func (c *cacheSpy) Set(o *domain.Order) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[o.ID] = o
}

func (c *cacheSpy) Invalidate(orderID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, orderID)
	c.invalidated = append(c.invalidated, orderID)
}

func okGateway() *gatewayStub {
	return &gatewayStub{
		processFn: func(_ context.Context, pr payments.Request) (*payments.Result, error) {
			return &payments.Result{Status: payments.ResultCompleted, TransactionRef: "tx-1"}, nil
		},
	}
}

type fixture struct {
	store     *storetest.MemStore
	customers *customersStub
	reviews   *reviewsStub
	gateway   *gatewayStub
	cache     *cacheSpy
	svc       *orders.Service
}

func newFixture(gw *gatewayStub) *fixture {
	f := &fixture{
		store: storetest.NewMemStore(),
		customers: &customersStub{byID: map[int64]*domain.Customer{
			1: {ID: 1, UserID: 11, Name: "Alice", Address: "Main st 1"},
		}},
		reviews: &reviewsStub{},
		gateway: gw,
		cache:   newCacheSpy(),
	}
	f.store.CustomerUsers[1] = 11
	f.svc = orders.NewService(f.store, f.customers, f.reviews, f.gateway, f.cache, logx.Nop(), 0)
	return f
}

var (
	customerActor = domain.Actor{UserID: 11, Role: domain.RoleCustomer}
	adminActor    = domain.Actor{UserID: 1, Role: domain.RoleAdmin}
)

func TestService_Create(t *testing.T) {
	t.Parallel()

	f := newFixture(okGateway())
	o, err := f.svc.Create(context.Background(), customerActor, orders.CreateOrder{
		CustomerID:      1,
		DeliveryAddress: "Main st 1",
		Items: []domain.OrderItem{
			{ProductName: "Pizza", Quantity: 2, Price: 500},
			{ProductName: "Cola", Quantity: 1, Price: 100},
		},
	})
	require.NoError(t, err)

	require.NotZero(t, o.ID)
	require.Equal(t, domain.StatusNew, o.Status)
	require.Equal(t, domain.PaymentPending, o.PaymentStatus)
	require.InDelta(t, 1100.0, o.TotalPrice, 1e-9)
	require.Len(t, o.Items, 2)
}

func TestService_Create_Validation(t *testing.T) {
	t.Parallel()

	f := newFixture(okGateway())
	ctx := context.Background()

	cases := []struct {
		name string
		in   orders.CreateOrder
	}{
		{"no items", orders.CreateOrder{CustomerID: 1, DeliveryAddress: "a"}},
		{"empty address", orders.CreateOrder{CustomerID: 1,
			Items: []domain.OrderItem{{ProductName: "Pizza", Quantity: 1, Price: 10}}}},
		{"zero quantity", orders.CreateOrder{CustomerID: 1, DeliveryAddress: "a",
			Items: []domain.OrderItem{{ProductName: "Pizza", Quantity: 0, Price: 10}}}},
		{"negative price", orders.CreateOrder{CustomerID: 1, DeliveryAddress: "a",
			Items: []domain.OrderItem{{ProductName: "Pizza", Quantity: 1, Price: -1}}}},
		{"blank product", orders.CreateOrder{CustomerID: 1, DeliveryAddress: "a",
			Items: []domain.OrderItem{{ProductName: "", Quantity: 1, Price: 10}}}},
	}
	for _, tc := range cases {
		_, err := f.svc.Create(ctx, customerActor, tc.in)
		require.ErrorIs(t, err, apperr.ErrInvalid, tc.name)
	}
}

func TestService_Create_UnknownCustomer(t *testing.T) {
	t.Parallel()

	f := newFixture(okGateway())
	_, err := f.svc.Create(context.Background(), adminActor, orders.CreateOrder{
		CustomerID:      404,
		DeliveryAddress: "a",
		Items:           []domain.OrderItem{{ProductName: "Pizza", Quantity: 1, Price: 10}},
	})
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestService_Create_ForeignCustomer(t *testing.T) {
	t.Parallel()

	f := newFixture(okGateway())
	_, err := f.svc.Create(context.Background(),
		domain.Actor{UserID: 999, Role: domain.RoleCustomer},
		orders.CreateOrder{
			CustomerID:      1,
			DeliveryAddress: "a",
			Items:           []domain.OrderItem{{ProductName: "Pizza", Quantity: 1, Price: 10}},
		})
	require.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestService_Get_CacheThrough(t *testing.T) {
	t.Parallel()

	f := newFixture(okGateway())
	f.store.Orders[1] = &domain.Order{ID: 1, CustomerID: 1, Status: domain.StatusNew}
	ctx := context.Background()

	o, err := f.svc.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, int64(1), o.ID)

	_, err = f.svc.Get(ctx, 1)
	require.NoError(t, err)

	require.Equal(t, 1, f.cache.misses)
	require.Equal(t, 1, f.cache.hits)
}

func TestService_Get_NotFound(t *testing.T) {
	t.Parallel()

	f := newFixture(okGateway())
	_, err := f.svc.Get(context.Background(), 404)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestService_Pay(t *testing.T) {
	t.Parallel()

	f := newFixture(okGateway())
	f.store.Orders[1] = &domain.Order{
		ID: 1, CustomerID: 1, Status: domain.StatusNew,
		PaymentStatus: domain.PaymentPending, TotalPrice: 1100,
	}

	o, err := f.svc.Pay(context.Background(), customerActor, 1, orders.PayInput{Method: "card"})
	require.NoError(t, err)

	require.Equal(t, domain.StatusPaid, o.Status)
	require.Equal(t, domain.PaymentCompleted, o.PaymentStatus)
	require.NotNil(t, o.PaymentRef)
	require.Equal(t, "tx-1", *o.PaymentRef)

	require.Equal(t, domain.StatusPaid, f.store.Orders[1].Status)
	require.Len(t, f.store.TrackingFor(1), 1)
	require.Contains(t, f.cache.invalidated, int64(1))
}

func TestService_Pay_GatewayRequest(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	store := storetest.NewMemStore()
	store.CustomerUsers[1] = 11
	store.Orders[1] = &domain.Order{
		ID: 1, CustomerID: 1, Status: domain.StatusNew,
		PaymentStatus: domain.PaymentPending, TotalPrice: 1100,
	}

	gw := NewMockPaymentGateway(ctrl)
	gw.EXPECT().
		Process(gomock.Any(), gomock.AssignableToTypeOf(payments.Request{})).
		DoAndReturn(func(_ context.Context, pr payments.Request) (*payments.Result, error) {
			require.Equal(t, int64(1), pr.OrderID)
			require.InDelta(t, 1100.0, pr.Amount, 1e-9)
			require.Equal(t, "RUB", pr.Currency)
			require.Equal(t, "card", pr.Method)
			require.NotEmpty(t, pr.IdempotencyKey)
			return &payments.Result{Status: payments.ResultCompleted, TransactionRef: "tx-77"}, nil
		}).
		Times(1)

	customers := &customersStub{byID: map[int64]*domain.Customer{
		1: {ID: 1, UserID: 11, Name: "Alice", Address: "Main st 1"},
	}}
	svc := orders.NewService(store, customers, &reviewsStub{}, gw, newCacheSpy(), logx.Nop(), 0)

	o, err := svc.Pay(context.Background(), customerActor, 1, orders.PayInput{Method: "card"})
	require.NoError(t, err)
	require.Equal(t, domain.StatusPaid, o.Status)
	require.NotNil(t, o.PaymentRef)
	require.Equal(t, "tx-77", *o.PaymentRef)
}

func TestService_Pay_MissingMethod(t *testing.T) {
	t.Parallel()

	f := newFixture(&gatewayStub{
		processFn: func(context.Context, payments.Request) (*payments.Result, error) {
			t.Fatal("gateway must not be called")
			return nil, nil
		},
	})
	f.store.Orders[1] = &domain.Order{ID: 1, CustomerID: 1, Status: domain.StatusNew}

	for _, method := range []string{"", "   "} {
		_, err := f.svc.Pay(context.Background(), customerActor, 1, orders.PayInput{Method: method})
		require.ErrorIs(t, err, apperr.ErrInvalid, "method %q", method)
	}
	require.Equal(t, domain.StatusNew, f.store.Orders[1].Status)
}

func TestService_Pay_NotNew(t *testing.T) {
	t.Parallel()

	f := newFixture(okGateway())
	f.store.Orders[1] = &domain.Order{ID: 1, CustomerID: 1, Status: domain.StatusPaid}

	_, err := f.svc.Pay(context.Background(), customerActor, 1, orders.PayInput{Method: "card"})
	require.ErrorIs(t, err, apperr.ErrInvalidTransition)
}

func TestService_Pay_NotFound(t *testing.T) {
	t.Parallel()

	f := newFixture(okGateway())
	_, err := f.svc.Pay(context.Background(), customerActor, 404, orders.PayInput{Method: "card"})
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestService_Pay_ForeignOrder(t *testing.T) {
	t.Parallel()

	f := newFixture(okGateway())
	f.store.Orders[1] = &domain.Order{ID: 1, CustomerID: 1, Status: domain.StatusNew}

	_, err := f.svc.Pay(context.Background(),
		domain.Actor{UserID: 999, Role: domain.RoleCustomer}, 1, orders.PayInput{Method: "card"})
	require.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestService_Pay_GatewayFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(&gatewayStub{
		processFn: func(context.Context, payments.Request) (*payments.Result, error) {
			return nil, errors.New("provider down")
		},
	})
	f.store.Orders[1] = &domain.Order{
		ID: 1, CustomerID: 1, Status: domain.StatusNew,
		PaymentStatus: domain.PaymentPending,
	}

	_, err := f.svc.Pay(context.Background(), customerActor, 1, orders.PayInput{Method: "card"})
	require.ErrorIs(t, err, apperr.ErrUpstream)

	// nothing changed
	require.Equal(t, domain.StatusNew, f.store.Orders[1].Status)
	require.Equal(t, domain.PaymentPending, f.store.Orders[1].PaymentStatus)
	require.Empty(t, f.store.TrackingFor(1))
}

func TestService_Pay_Declined(t *testing.T) {
	t.Parallel()

	f := newFixture(&gatewayStub{
		processFn: func(context.Context, payments.Request) (*payments.Result, error) {
			return &payments.Result{Status: payments.ResultDeclined}, nil
		},
	})
	f.store.Orders[1] = &domain.Order{
		ID: 1, CustomerID: 1, Status: domain.StatusNew,
		PaymentStatus: domain.PaymentPending,
	}

	_, err := f.svc.Pay(context.Background(), customerActor, 1, orders.PayInput{Method: "card"})
	require.ErrorIs(t, err, apperr.ErrConflict)

	// the declined outcome is recorded, the order stays payable
	require.Equal(t, domain.StatusNew, f.store.Orders[1].Status)
	require.Equal(t, domain.PaymentFailed, f.store.Orders[1].PaymentStatus)
}

func TestService_Review(t *testing.T) {
	t.Parallel()

	f := newFixture(okGateway())
	courierID := int64(7)
	f.store.Orders[1] = &domain.Order{
		ID: 1, CustomerID: 1, CourierID: &courierID, Status: domain.StatusDelivered,
	}

	rev, err := f.svc.Review(context.Background(), customerActor, 1,
		orders.ReviewInput{Rating: 5, Comment: "fast"})
	require.NoError(t, err)

	require.Equal(t, int64(1), rev.OrderID)
	require.Equal(t, int64(1), rev.CustomerID)
	require.NotNil(t, rev.CourierID)
	require.Equal(t, courierID, *rev.CourierID)
}

func TestService_Review_OnePerOrder(t *testing.T) {
	t.Parallel()

	f := newFixture(okGateway())
	f.store.Orders[1] = &domain.Order{ID: 1, CustomerID: 1, Status: domain.StatusDelivered}
	ctx := context.Background()

	_, err := f.svc.Review(ctx, customerActor, 1, orders.ReviewInput{Rating: 4})
	require.NoError(t, err)

	_, err = f.svc.Review(ctx, customerActor, 1, orders.ReviewInput{Rating: 2})
	require.ErrorIs(t, err, apperr.ErrConflict)
}

func TestService_Review_Validation(t *testing.T) {
	t.Parallel()

	f := newFixture(okGateway())
	f.store.Orders[1] = &domain.Order{ID: 1, CustomerID: 1, Status: domain.StatusDelivered}
	f.store.Orders[2] = &domain.Order{ID: 2, CustomerID: 1, Status: domain.StatusInDelivery}
	ctx := context.Background()

	for _, rating := range []int{0, 6, -1} {
		_, err := f.svc.Review(ctx, customerActor, 1, orders.ReviewInput{Rating: rating})
		require.ErrorIs(t, err, apperr.ErrInvalid, "rating %d", rating)
	}

	_, err := f.svc.Review(ctx, customerActor, 2, orders.ReviewInput{Rating: 5})
	require.ErrorIs(t, err, apperr.ErrInvalidTransition, "review before delivery")

	_, err = f.svc.Review(ctx, customerActor, 404, orders.ReviewInput{Rating: 5})
	require.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.svc.Review(ctx,
		domain.Actor{UserID: 999, Role: domain.RoleCustomer}, 1, orders.ReviewInput{Rating: 5})
	require.ErrorIs(t, err, apperr.ErrForbidden)
}
