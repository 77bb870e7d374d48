package routes

import (
	"storefront-service/controllers"

	"github.com/gin-gonic/gin"
)

// Controllers groups every handler set the router mounts.
type Controllers struct {
	Cart  *controllers.CartController
	Auth  *controllers.AuthController
	Menu  *controllers.MenuController
	Order *controllers.OrderController
}

// RegisterRoutes mounts the storefront API. session must run before any
// handler that reads the session id.
func RegisterRoutes(r *gin.Engine, ctrl Controllers, session gin.HandlerFunc) {
	cart := r.Group("/cart")
	cart.Use(session)
	{
		cart.GET("", ctrl.Cart.GetCart)
		cart.GET("/details", ctrl.Cart.GetDetails)
		cart.POST("/add", ctrl.Cart.AddItem)
		cart.POST("/increment/:food_id", ctrl.Cart.IncrementItem)
		cart.POST("/decrement/:food_id", ctrl.Cart.DecrementItem)
		cart.DELETE("/remove/:food_id", ctrl.Cart.RemoveItem)
		cart.DELETE("/clear", ctrl.Cart.ClearCart)
	}

	auth := r.Group("/auth")
	auth.Use(session)
	{
		auth.POST("/login", ctrl.Auth.Login)
		auth.POST("/logout", ctrl.Auth.Logout)
		auth.GET("/me", ctrl.Auth.Me)
		auth.GET("/token", ctrl.Auth.Token)
	}

	menu := r.Group("/menu")
	{
		menu.GET("/foods", ctrl.Menu.ListFoods)
		menu.GET("/foods/:id", ctrl.Menu.GetFood)
		menu.GET("/categories", ctrl.Menu.ListCategories)
		menu.GET("/sections", ctrl.Menu.ListSections)
		menu.GET("/tables", ctrl.Menu.ListTables)
		menu.GET("/payments", ctrl.Menu.ListPayments)
	}

	orders := r.Group("/orders")
	orders.Use(session)
	{
		orders.POST("/checkout", ctrl.Order.Checkout)
		orders.POST("/payment-result", ctrl.Order.PaymentResult)
		orders.GET("", ctrl.Order.History)
		orders.GET("/:id", ctrl.Order.Details)
		orders.PUT("/:id/status", ctrl.Order.UpdateStatus)
		orders.POST("/:id/pay", ctrl.Order.Pay)
	}
}
