package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/mystore/internal/config"
	"github.com/example/mystore/internal/handlers"
	"github.com/example/mystore/internal/middleware"
)

// Register wires up all HTTP routes.
func Register(
	app *fiber.App,
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	otpHandler *handlers.OTPHandler,
	cartHandler *handlers.CartHandler,
	orderHandler *handlers.OrderHandler,
) {
	// Public routes
	app.Post("/register", authHandler.Register)
	app.Post("/login", authHandler.Login)
	app.Post("/send-otp", otpHandler.SendOTP)
	app.Post("/verify-otp", otpHandler.VerifyOTP)
	app.Post("/send-mail", authHandler.SendMail)

	// Protected routes
	protected := app.Group("", middleware.AuthMiddleware(cfg))

	cart := protected.Group("/cart")
	cart.Post("/add", cartHandler.AddToCart)
	cart.Get("/", cartHandler.GetCart)
	cart.Delete("/remove/:productId", cartHandler.RemoveItem)
	cart.Delete("/", cartHandler.ClearCart)

	orders := protected.Group("/orders")
	orders.Post("/place", orderHandler.PlaceOrder)
	orders.Get("/", orderHandler.GetOrders)
}
