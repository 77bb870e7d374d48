package controllers

import (
	"net/http"

	"storefront-service/apperrors"
	"storefront-service/middleware"
	"storefront-service/models"
	"storefront-service/services"

	"github.com/gin-gonic/gin"
)

// CartController handles HTTP requests for the session cart.
type CartController struct {
	cartService services.CartService
}

func NewCartController(cartService services.CartService) *CartController {
	return &CartController{cartService: cartService}
}

// GetCart handles GET /cart.
func (cc *CartController) GetCart(c *gin.Context) {
	summary, err := cc.cartService.GetCart(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetDetails handles GET /cart/details.
func (cc *CartController) GetDetails(c *gin.Context) {
	details, err := cc.cartService.Details(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, details)
}

// AddItem handles POST /cart/add.
func (cc *CartController) AddItem(c *gin.Context) {
	var req models.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	summary, err := cc.cartService.AddItem(c.Request.Context(), middleware.SessionID(c), req.FoodID, req.Quantity, req.Price)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// IncrementItem handles POST /cart/increment/:food_id.
func (cc *CartController) IncrementItem(c *gin.Context) {
	foodID, ok := paramID(c, "food_id", apperrors.ErrInvalidFoodID)
	if !ok {
		return
	}
	summary, err := cc.cartService.IncrementItem(c.Request.Context(), middleware.SessionID(c), foodID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// DecrementItem handles POST /cart/decrement/:food_id.
func (cc *CartController) DecrementItem(c *gin.Context) {
	foodID, ok := paramID(c, "food_id", apperrors.ErrInvalidFoodID)
	if !ok {
		return
	}
	summary, err := cc.cartService.DecrementItem(c.Request.Context(), middleware.SessionID(c), foodID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// RemoveItem handles DELETE /cart/remove/:food_id.
func (cc *CartController) RemoveItem(c *gin.Context) {
	foodID, ok := paramID(c, "food_id", apperrors.ErrInvalidFoodID)
	if !ok {
		return
	}
	summary, err := cc.cartService.RemoveItem(c.Request.Context(), middleware.SessionID(c), foodID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ClearCart handles DELETE /cart/clear.
func (cc *CartController) ClearCart(c *gin.Context) {
	if err := cc.cartService.ClearCart(c.Request.Context(), middleware.SessionID(c)); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}
