package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOrderStatus_ForwardChain(t *testing.T) {
	t.Parallel()

	chain := []OrderStatus{
		StatusNew, StatusPaid, StatusPreparing,
		StatusAssignedToCourier, StatusInDelivery, StatusDelivered,
	}
	for i := 0; i < len(chain)-1; i++ {
		require.True(t, chain[i].CanTransitionTo(chain[i+1]),
			"%s -> %s must be allowed", chain[i], chain[i+1])
	}
}

func TestOrderStatus_ReversalsRejected(t *testing.T) {
	t.Parallel()

	cases := []struct {
		from, to OrderStatus
	}{
		{StatusDelivered, StatusPreparing},
		{StatusInDelivery, StatusPaid},
		{StatusPaid, StatusNew},
		{StatusCancelled, StatusNew},
		{StatusDelivered, StatusInDelivery},
	}
	for _, tc := range cases {
		require.False(t, tc.from.CanTransitionTo(tc.to),
			"%s -> %s must be rejected", tc.from, tc.to)
	}
}

func TestOrderStatus_SkippingStepsRejected(t *testing.T) {
	t.Parallel()

	require.False(t, StatusNew.CanTransitionTo(StatusPreparing))
	require.False(t, StatusNew.CanTransitionTo(StatusDelivered))
	require.False(t, StatusPaid.CanTransitionTo(StatusInDelivery))
}

func TestOrderStatus_CancelFromAnyNonTerminal(t *testing.T) {
	t.Parallel()

	for _, s := range []OrderStatus{
		StatusNew, StatusPaid, StatusPreparing, StatusAssignedToCourier, StatusInDelivery,
	} {
		require.True(t, s.CanTransitionTo(StatusCancelled), "%s -> cancelled", s)
	}
	require.False(t, StatusDelivered.CanTransitionTo(StatusCancelled))
	require.False(t, StatusCancelled.CanTransitionTo(StatusCancelled))
}

func TestOrderStatus_UnknownStatus(t *testing.T) {
	t.Parallel()

	require.False(t, OrderStatus("shipped").Valid())
	require.False(t, OrderStatus("shipped").CanTransitionTo(StatusPaid))
	require.False(t, StatusNew.CanTransitionTo(OrderStatus("shipped")))
}

func TestOrderStatus_Assignable(t *testing.T) {
	t.Parallel()

	for _, s := range []OrderStatus{StatusNew, StatusPaid, StatusPreparing} {
		require.True(t, s.Assignable(), "%s must be assignable", s)
	}
	for _, s := range []OrderStatus{
		StatusAssignedToCourier, StatusInDelivery, StatusDelivered, StatusCancelled,
	} {
		require.False(t, s.Assignable(), "%s must not be assignable", s)
	}
}

func TestRole_CanReportTracking(t *testing.T) {
	t.Parallel()

	require.True(t, RoleCourier.CanReportTracking())
	require.True(t, RoleAdmin.CanReportTracking())
	require.False(t, RoleCustomer.CanReportTracking())
}

func TestNewGeoPoint_Bounds(t *testing.T) {
	t.Parallel()

	_, ok := NewGeoPoint(91, 0)
	require.False(t, ok)
	_, ok = NewGeoPoint(0, 200)
	require.False(t, ok)
	_, ok = NewGeoPoint(-90.001, 0)
	require.False(t, ok)

	p, ok := NewGeoPoint(55.75, 37.61)
	require.True(t, ok)
	require.Equal(t, 55.75, p.Latitude)
	require.Equal(t, 37.61, p.Longitude)

	_, ok = NewGeoPoint(90, 180)
	require.True(t, ok)
	_, ok = NewGeoPoint(-90, -180)
	require.True(t, ok)
}

func TestTotalPrice(t *testing.T) {
	t.Parallel()

	items := []OrderItem{
		{ProductName: "Pizza", Quantity: 2, Price: 500},
	}
	require.Equal(t, float64(1000), TotalPrice(items))

	items = append(items, OrderItem{ProductName: "Cola", Quantity: 3, Price: 90})
	require.Equal(t, float64(1270), TotalPrice(items))
}
