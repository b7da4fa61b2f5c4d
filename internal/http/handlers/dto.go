package handlers

import "time"

type orderItemRequest struct {
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

type createOrderRequest struct {
	CustomerID      int64              `json:"customer_id"`
	DeliveryAddress string             `json:"delivery_address"`
	Items           []orderItemRequest `json:"items"`
}

type orderItemResponse struct {
	ID          int64   `json:"id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

type orderResponse struct {
	ID                    int64               `json:"id"`
	CustomerID            int64               `json:"customer_id"`
	CourierID             *int64              `json:"courier_id,omitempty"`
	Status                string              `json:"status"`
	DeliveryAddress       string              `json:"delivery_address"`
	TotalPrice            float64             `json:"total_price"`
	PaymentStatus         string              `json:"payment_status"`
	PaymentRef            *string             `json:"payment_ref,omitempty"`
	CreatedAt             time.Time           `json:"created_at"`
	EstimatedDeliveryTime *time.Time          `json:"estimated_delivery_time,omitempty"`
	ActualDeliveryTime    *time.Time          `json:"actual_delivery_time,omitempty"`
	Items                 []orderItemResponse `json:"items"`
}

type payRequest struct {
	PaymentMethod string `json:"payment_method"`
}

type trackingRequest struct {
	Status   string  `json:"status"`
	Location string  `json:"location"`
	Comment  *string `json:"comment,omitempty"`
}

type trackingResponse struct {
	ID        int64     `json:"id"`
	OrderID   int64     `json:"order_id"`
	Status    string    `json:"status"`
	Location  string    `json:"location,omitempty"`
	Comment   *string   `json:"comment,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type assignRequest struct {
	CourierID int64 `json:"courier_id"`
}

type reviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type reviewResponse struct {
	ID        int64     `json:"id"`
	OrderID   int64     `json:"order_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type notificationResponse struct {
	ID        int64     `json:"id"`
	OrderID   *int64    `json:"order_id,omitempty"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
