package handlers

import "delivery-tracking/internal/domain"

func toOrderResponse(o *domain.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemResponse{
			ID:          it.ID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Price:       it.Price,
		})
	}
	return orderResponse{
		ID:                    o.ID,
		CustomerID:            o.CustomerID,
		CourierID:             o.CourierID,
		Status:                string(o.Status),
		DeliveryAddress:       o.DeliveryAddress,
		TotalPrice:            o.TotalPrice,
		PaymentStatus:         o.PaymentStatus,
		PaymentRef:            o.PaymentRef,
		CreatedAt:             o.CreatedAt,
		EstimatedDeliveryTime: o.EstimatedDeliveryTime,
		ActualDeliveryTime:    o.ActualDeliveryTime,
		Items:                 items,
	}
}

func toTrackingResponse(u *domain.TrackingUpdate) trackingResponse {
	return trackingResponse{
		ID:        u.ID,
		OrderID:   u.OrderID,
		Status:    string(u.Status),
		Location:  u.Location,
		Comment:   u.Comment,
		Timestamp: u.Timestamp,
	}
}

func toReviewResponse(rev *domain.Review) reviewResponse {
	return reviewResponse{
		ID:        rev.ID,
		OrderID:   rev.OrderID,
		Rating:    rev.Rating,
		Comment:   rev.Comment,
		CreatedAt: rev.CreatedAt,
	}
}

func toNotificationResponses(list []domain.Notification) []notificationResponse {
	out := make([]notificationResponse, 0, len(list))
	for _, n := range list {
		out = append(out, notificationResponse{
			ID:        n.ID,
			OrderID:   n.OrderID,
			Type:      n.Type,
			Message:   n.Message,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
		})
	}
	return out
}
