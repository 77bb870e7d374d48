package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"storefront-service/apperrors"
	"storefront-service/clients"
	"storefront-service/logger"
	"storefront-service/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// vnpayResponseSuccess is the vnp_ResponseCode of a completed payment.
const vnpayResponseSuccess = "00"

// CheckoutService turns a session's cart into a restaurant order and tracks
// the orders of the signed-in user.
type CheckoutService interface {
	PlaceReservation(ctx context.Context, sessionID string, req *models.ReservationRequest) (*models.CheckoutResult, error)
	CompletePayment(ctx context.Context, sessionID, txnRef, responseCode string) error
	OrderHistory(ctx context.Context, sessionID string) ([]models.Order, error)
	OrderDetails(ctx context.Context, sessionID string, orderID int64) ([]models.OrderDetail, error)
	UpdateOrderStatus(ctx context.Context, sessionID string, orderID int64, status models.OrderStatus) error
	PayOrder(ctx context.Context, sessionID string, orderID int64) (*models.CheckoutResult, error)
}

type checkoutServiceImpl struct {
	api       clients.RestaurantAPI
	carts     CartService
	tokens    TokenGuard
	sessions  SessionService
	publisher CheckoutPublisher
	logger    *zap.Logger
}

func NewCheckoutService(
	api clients.RestaurantAPI,
	carts CartService,
	tokens TokenGuard,
	sessions SessionService,
	publisher CheckoutPublisher,
	logger *zap.Logger,
) CheckoutService {
	return &checkoutServiceImpl{
		api:       api,
		carts:     carts,
		tokens:    tokens,
		sessions:  sessions,
		publisher: publisher,
		logger:    logger,
	}
}

// authenticate returns a valid token and the cached user of the session.
func (s *checkoutServiceImpl) authenticate(ctx context.Context, sessionID string) (string, *models.User, error) {
	token, ok := s.tokens.EnsureValidToken(ctx, sessionID)
	if !ok {
		return "", nil, apperrors.ErrNotAuthenticated
	}
	user, err := s.sessions.CurrentUser(ctx, sessionID)
	if err != nil {
		return "", nil, err
	}
	if user.ID == 0 {
		return "", nil, apperrors.ErrNotAuthenticated
	}
	return token, user, nil
}

func validateReservation(req *models.ReservationRequest) error {
	if req.TableID <= 0 {
		return apperrors.Invalid(apperrors.ErrInvalidReservation, "table_id is required")
	}
	if req.NumberOfGuests < 1 {
		return apperrors.Invalid(apperrors.ErrInvalidReservation, "number_of_guest must be at least 1")
	}
	if req.Date == "" || req.StartTime == "" || req.EndTime == "" {
		return apperrors.Invalid(apperrors.ErrInvalidReservation, "date, start_time and end_time are required")
	}
	if _, err := time.Parse(time.DateOnly, req.Date); err != nil {
		return apperrors.Invalid(apperrors.ErrInvalidReservation, "date must be YYYY-MM-DD")
	}
	start, err := time.Parse("15:04", req.StartTime)
	if err != nil {
		return apperrors.Invalid(apperrors.ErrInvalidReservation, "start_time must be HH:MM")
	}
	end, err := time.Parse("15:04", req.EndTime)
	if err != nil {
		return apperrors.Invalid(apperrors.ErrInvalidReservation, "end_time must be HH:MM")
	}
	if !end.After(start) {
		return apperrors.Invalid(apperrors.ErrInvalidReservation, "end_time must be after start_time")
	}
	if req.PaymentID != models.PaymentAtRestaurant && req.PaymentID != models.PaymentVNPay {
		return apperrors.ErrInvalidPayment
	}
	return nil
}

// PlaceReservation submits the cart as an order. Paying at the restaurant
// clears the cart right away; a VNPay order keeps it until the payment
// completes.
func (s *checkoutServiceImpl) PlaceReservation(ctx context.Context, sessionID string, req *models.ReservationRequest) (*models.CheckoutResult, error) {
	if err := validateReservation(req); err != nil {
		return nil, err
	}
	log := logger.For(ctx, s.logger)

	cart, err := s.carts.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(cart.Lines) == 0 {
		return nil, apperrors.ErrEmptyCart
	}

	token, user, err := s.authenticate(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	order := &models.CreateOrderRequest{
		UserID:         user.ID,
		FullName:       firstNonEmpty(req.FullName, user.DisplayName()),
		Email:          firstNonEmpty(req.Email, user.Email),
		PhoneNumber:    firstNonEmpty(req.PhoneNumber, user.PhoneNumber),
		Note:           req.Note,
		NumberOfGuests: req.NumberOfGuests,
		TableID:        req.TableID,
		PaymentID:      req.PaymentID,
		OrderDate:      fmt.Sprintf("%sT%s:00", req.Date, req.StartTime),
		EndTime:        fmt.Sprintf("%sT%s:00", req.Date, req.EndTime),
		CartItems:      make([]models.OrderCartItem, 0, len(cart.Lines)),
	}
	for _, line := range cart.Lines {
		order.CartItems = append(order.CartItems, models.OrderCartItem{FoodID: line.FoodID, Quantity: line.Quantity})
	}

	result := &models.CheckoutResult{Total: cart.Total}
	switch req.PaymentID {
	case models.PaymentAtRestaurant:
		order.TxnRef = models.DirectPaymentTxnRef
	case models.PaymentVNPay:
		paymentURL, txnRef, err := s.createPaymentURL(ctx, token, cart.Total)
		if err != nil {
			return nil, err
		}
		order.TxnRef = txnRef
		result.PaymentURL = paymentURL
	}
	result.TxnRef = order.TxnRef

	created, err := s.api.CreateOrder(ctx, token, order)
	if err != nil {
		log.Error("Failed to create order", zap.String("session_id", sessionID), zap.Error(err))
		return nil, apperrors.Wrap(apperrors.ErrUpstream, err)
	}
	result.Order = created

	if req.PaymentID == models.PaymentAtRestaurant {
		if err := s.carts.ReleaseOrdered(ctx, sessionID, cart.Lines); err != nil {
			log.Error("Failed to clear cart after order", zap.String("session_id", sessionID), zap.Error(err))
		} else {
			result.CartCleared = true
		}
	}

	s.publish(ctx, models.CheckoutEvent{
		EventID:   uuid.NewString(),
		Event:     eventCheckoutRequested,
		SessionID: sessionID,
		UserID:    user.ID,
		TxnRef:    order.TxnRef,
		PaymentID: req.PaymentID,
		Items:     cart.Lines,
		Total:     cart.Total,
		Timestamp: time.Now().UTC(),
	})

	log.Info("Reservation placed",
		zap.String("session_id", sessionID),
		zap.Int64("user_id", user.ID),
		zap.Int64("payment_id", req.PaymentID),
		zap.String("txn_ref", order.TxnRef),
		zap.Float64("total", cart.Total),
	)
	return result, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// createPaymentURL asks the backend for a VNPay URL and returns it with the
// vnp_TxnRef it carries.
func (s *checkoutServiceImpl) createPaymentURL(ctx context.Context, token string, amount float64) (string, string, error) {
	res, err := s.api.CreatePaymentURL(ctx, token, &models.PaymentURLRequest{
		Amount:   amount,
		BankCode: "",
		Language: "vi",
	})
	if err != nil {
		var envErr *clients.EnvelopeError
		if errors.As(err, &envErr) {
			return "", "", apperrors.Wrap(apperrors.ErrPaymentFailed, err)
		}
		return "", "", apperrors.Wrap(apperrors.ErrUpstream, err)
	}

	parsed, err := url.Parse(res.URL)
	if err != nil {
		return "", "", apperrors.Wrap(apperrors.ErrUpstream, fmt.Errorf("parse payment url: %w", err))
	}
	txnRef := parsed.Query().Get("vnp_TxnRef")
	if txnRef == "" {
		return "", "", apperrors.Wrap(apperrors.ErrUpstream, fmt.Errorf("payment url has no vnp_TxnRef"))
	}
	return res.URL, txnRef, nil
}

func (s *checkoutServiceImpl) publish(ctx context.Context, event models.CheckoutEvent) {
	if err := s.publisher.PublishCheckout(ctx, event); err != nil {
		s.logger.Warn("Failed to publish checkout event",
			zap.String("event_id", event.EventID),
			zap.String("session_id", event.SessionID),
			zap.Error(err),
		)
	}
}

// CompletePayment reports a VNPay redirect back to the backend. The cart is
// cleared only when the payment succeeded and the backend accepted it.
func (s *checkoutServiceImpl) CompletePayment(ctx context.Context, sessionID, txnRef, responseCode string) error {
	if txnRef == "" {
		return apperrors.Invalid(apperrors.ErrBadRequest, "vnp_TxnRef is required")
	}
	log := logger.For(ctx, s.logger)
	if responseCode != vnpayResponseSuccess {
		log.Info("Payment not completed",
			zap.String("session_id", sessionID),
			zap.String("txn_ref", txnRef),
			zap.String("response_code", responseCode),
		)
		return apperrors.Invalid(apperrors.ErrPaymentFailed, "response code "+responseCode)
	}

	token, ok := s.tokens.EnsureValidToken(ctx, sessionID)
	if !ok {
		return apperrors.ErrNotAuthenticated
	}
	if err := s.api.PaymentResult(ctx, token, txnRef); err != nil {
		log.Error("Failed to record payment result", zap.String("txn_ref", txnRef), zap.Error(err))
		return apperrors.Wrap(apperrors.ErrUpstream, err)
	}

	if err := s.carts.ClearCart(ctx, sessionID); err != nil {
		return err
	}
	log.Info("Payment completed", zap.String("session_id", sessionID), zap.String("txn_ref", txnRef))
	return nil
}

func (s *checkoutServiceImpl) OrderHistory(ctx context.Context, sessionID string) ([]models.Order, error) {
	token, user, err := s.authenticate(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	orders, err := s.api.OrdersByUser(ctx, token, user.ID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUpstream, err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

func (s *checkoutServiceImpl) OrderDetails(ctx context.Context, sessionID string, orderID int64) ([]models.OrderDetail, error) {
	if orderID <= 0 {
		return nil, apperrors.Invalid(apperrors.ErrBadRequest, "invalid order id")
	}
	token, ok := s.tokens.EnsureValidToken(ctx, sessionID)
	if !ok {
		return nil, apperrors.ErrNotAuthenticated
	}
	details, err := s.api.OrderDetails(ctx, token, orderID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUpstream, err)
	}
	if len(details) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return details, nil
}

// UpdateOrderStatus lets a customer mark an order UNPAID or CANCELLED.
func (s *checkoutServiceImpl) UpdateOrderStatus(ctx context.Context, sessionID string, orderID int64, status models.OrderStatus) error {
	if status != models.OrderUnpaid && status != models.OrderCancelled {
		return apperrors.Invalid(apperrors.ErrInvalidOrderStatus, "status must be UNPAID or CANCELLED")
	}
	if orderID <= 0 {
		return apperrors.Invalid(apperrors.ErrBadRequest, "invalid order id")
	}
	token, ok := s.tokens.EnsureValidToken(ctx, sessionID)
	if !ok {
		return apperrors.ErrNotAuthenticated
	}
	if err := s.api.UpdateOrder(ctx, token, orderID, &models.UpdateOrderRequest{Status: status}); err != nil {
		return apperrors.Wrap(apperrors.ErrUpstream, err)
	}
	s.logger.Info("Order status updated", zap.Int64("order_id", orderID), zap.String("status", string(status)))
	return nil
}

// PayOrder starts a VNPay payment for an existing PENDING order and stores
// the new transaction reference on it.
func (s *checkoutServiceImpl) PayOrder(ctx context.Context, sessionID string, orderID int64) (*models.CheckoutResult, error) {
	details, err := s.OrderDetails(ctx, sessionID, orderID)
	if err != nil {
		return nil, err
	}
	header := details[0].Order
	if header == nil {
		return nil, apperrors.Wrap(apperrors.ErrUpstream, fmt.Errorf("order %d details carry no order header", orderID))
	}
	if header.Status != models.OrderPending {
		return nil, apperrors.Invalid(apperrors.ErrInvalidOrderStatus, "only PENDING orders can be paid")
	}

	token, ok := s.tokens.EnsureValidToken(ctx, sessionID)
	if !ok {
		return nil, apperrors.ErrNotAuthenticated
	}
	paymentURL, txnRef, err := s.createPaymentURL(ctx, token, header.TotalMoney)
	if err != nil {
		return nil, err
	}
	if err := s.api.UpdateOrder(ctx, token, orderID, &models.UpdateOrderRequest{TxnRef: txnRef}); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUpstream, err)
	}

	s.logger.Info("Order payment started", zap.Int64("order_id", orderID), zap.String("txn_ref", txnRef))
	return &models.CheckoutResult{TxnRef: txnRef, PaymentURL: paymentURL, Total: header.TotalMoney}, nil
}
