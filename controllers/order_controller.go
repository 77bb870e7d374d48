package controllers

import (
	"net/http"

	"storefront-service/apperrors"
	"storefront-service/middleware"
	"storefront-service/models"
	"storefront-service/services"

	"github.com/gin-gonic/gin"
)

type OrderController struct {
	checkoutService services.CheckoutService
}

func NewOrderController(checkoutService services.CheckoutService) *OrderController {
	return &OrderController{checkoutService: checkoutService}
}

// Checkout handles POST /orders/checkout.
func (oc *OrderController) Checkout(c *gin.Context) {
	var req models.ReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := oc.checkoutService.PlaceReservation(c.Request.Context(), middleware.SessionID(c), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// PaymentResult handles POST /orders/payment-result. The VNPay redirect
// parameters may come as JSON or as query parameters.
func (oc *OrderController) PaymentResult(c *gin.Context) {
	var req models.PaymentCallbackRequest
	if err := c.ShouldBind(&req); err != nil {
		if err := c.ShouldBindQuery(&req); err != nil {
			bindError(c, err)
			return
		}
	}

	if err := oc.checkoutService.CompletePayment(c.Request.Context(), middleware.SessionID(c), req.TxnRef, req.ResponseCode); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment completed", "vnp_txn_ref": req.TxnRef, "cart_cleared": true})
}

// History handles GET /orders.
func (oc *OrderController) History(c *gin.Context) {
	orders, err := oc.checkoutService.OrderHistory(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// Details handles GET /orders/:id.
func (oc *OrderController) Details(c *gin.Context) {
	orderID, ok := paramID(c, "id", apperrors.ErrBadRequest)
	if !ok {
		return
	}
	details, err := oc.checkoutService.OrderDetails(c.Request.Context(), middleware.SessionID(c), orderID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": details, "order": details[0].Order})
}

// UpdateStatus handles PUT /orders/:id/status.
func (oc *OrderController) UpdateStatus(c *gin.Context) {
	orderID, ok := paramID(c, "id", apperrors.ErrBadRequest)
	if !ok {
		return
	}
	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := oc.checkoutService.UpdateOrderStatus(c.Request.Context(), middleware.SessionID(c), orderID, req.Status); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order updated", "status": req.Status})
}

// Pay handles POST /orders/:id/pay.
func (oc *OrderController) Pay(c *gin.Context) {
	orderID, ok := paramID(c, "id", apperrors.ErrBadRequest)
	if !ok {
		return
	}
	result, err := oc.checkoutService.PayOrder(c.Request.Context(), middleware.SessionID(c), orderID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}
