package models

import "time"

// Payment method ids understood by the restaurant backend.
const (
	PaymentAtRestaurant int64 = 1
	PaymentVNPay        int64 = 3
)

// DirectPaymentTxnRef marks orders paid at the restaurant.
const DirectPaymentTxnRef = "DIRECT_PAYMENT"

type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderUnpaid    OrderStatus = "UNPAID"
	OrderPaid      OrderStatus = "PAID"
	OrderCompleted OrderStatus = "COMPLETED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// ReservationRequest is what the storefront submits at checkout.
type ReservationRequest struct {
	FullName       string `json:"full_name"`
	Email          string `json:"email"`
	PhoneNumber    string `json:"phone_number"`
	Note           string `json:"note"`
	NumberOfGuests int    `json:"number_of_guest"`
	TableID        int64  `json:"table_id"`
	PaymentID      int64  `json:"payment_id"`
	Date           string `json:"date"`       // 2006-01-02
	StartTime      string `json:"start_time"` // 15:04
	EndTime        string `json:"end_time"`   // 15:04
}

type OrderCartItem struct {
	FoodID   int64 `json:"food_id"`
	Quantity int   `json:"quantity"`
}

// CreateOrderRequest is the upstream POST /order body.
type CreateOrderRequest struct {
	TxnRef         string          `json:"vnp_txn_ref"`
	UserID         int64           `json:"user_id"`
	FullName       string          `json:"full_name"`
	Email          string          `json:"email"`
	PhoneNumber    string          `json:"phone_number"`
	Note           string          `json:"note"`
	NumberOfGuests int             `json:"number_of_guest"`
	TableID        int64           `json:"table_id"`
	PaymentID      int64           `json:"payment_id"`
	OrderDate      string          `json:"order_date"`
	EndTime        string          `json:"end_time"`
	CartItems      []OrderCartItem `json:"cart_items"`
}

type UpdateOrderRequest struct {
	Status OrderStatus `json:"status,omitempty"`
	TxnRef string      `json:"vnp_txn_ref,omitempty"`
}

type OrderTable struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

type Order struct {
	ID             int64          `json:"id"`
	OrderCode      string         `json:"order_code"`
	FullName       string         `json:"full_name"`
	Email          string         `json:"email"`
	PhoneNumber    string         `json:"phone_number"`
	NumberOfGuests int            `json:"number_of_guest"`
	Table          *OrderTable    `json:"table,omitempty"`
	Note           string         `json:"note"`
	OrderDate      string         `json:"order_date"`
	TotalMoney     float64        `json:"total_money"`
	Status         OrderStatus    `json:"status"`
	Payment        *PaymentMethod `json:"payment,omitempty"`
}

// OrderHeader is the order summary embedded in each order-detail row.
type OrderHeader struct {
	ID             int64          `json:"id"`
	OrderCode      string         `json:"orderCode"`
	FullName       string         `json:"fullName"`
	PhoneNumber    string         `json:"phoneNumber"`
	NumberOfGuests int            `json:"numberOfGuest"`
	Note           string         `json:"note"`
	OrderDate      string         `json:"orderDate"`
	EndTime        string         `json:"endTime,omitempty"`
	Status         OrderStatus    `json:"status"`
	TotalMoney     float64        `json:"totalMoney"`
	Table          *OrderTable    `json:"table,omitempty"`
	Payment        *PaymentMethod `json:"payment,omitempty"`
}

type OrderDetail struct {
	ID         int64        `json:"id"`
	Price      float64      `json:"price"`
	Quantity   int          `json:"quantity"`
	TotalMoney float64      `json:"total_money"`
	Food       Food         `json:"food"`
	Order      *OrderHeader `json:"order"`
}

type PaymentURLRequest struct {
	Amount   float64 `json:"amount"`
	BankCode string  `json:"bankCode"`
	Language string  `json:"language"`
}

// PaymentURLResponse is the one upstream reply that does not use the
// {code, result} envelope.
type PaymentURLResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	URL     string `json:"data"`
}

// CheckoutResult is returned to the storefront after a reservation.
type CheckoutResult struct {
	Order       *Order  `json:"order,omitempty"`
	TxnRef      string  `json:"vnp_txn_ref"`
	PaymentURL  string  `json:"payment_url,omitempty"`
	Total       float64 `json:"total"`
	CartCleared bool    `json:"cart_cleared"`
}

// CheckoutEvent is published when a reservation is placed.
type CheckoutEvent struct {
	EventID   string     `json:"event_id"`
	Event     string     `json:"event"` // e.g. "checkout.requested"
	SessionID string     `json:"session_id"`
	UserID    int64      `json:"user_id"`
	TxnRef    string     `json:"vnp_txn_ref"`
	PaymentID int64      `json:"payment_id"`
	Items     []CartLine `json:"items"`
	Total     float64    `json:"total"`
	Timestamp time.Time  `json:"timestamp"`
}

type UpdateStatusRequest struct {
	Status OrderStatus `json:"status" binding:"required"`
}

// PaymentCallbackRequest carries the VNPay redirect parameters.
type PaymentCallbackRequest struct {
	TxnRef       string `json:"vnp_TxnRef" form:"vnp_TxnRef" binding:"required"`
	ResponseCode string `json:"vnp_ResponseCode" form:"vnp_ResponseCode" binding:"required"`
}
