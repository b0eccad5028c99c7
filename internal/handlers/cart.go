package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/example/mystore/internal/middleware"
	"github.com/example/mystore/internal/models"
	"github.com/example/mystore/internal/repository"
)

// CartHandler manages the per-user shopping cart.
type CartHandler struct {
	carts repository.CartRepository
}

// NewCartHandler constructs a CartHandler.
func NewCartHandler(carts repository.CartRepository) *CartHandler {
	return &CartHandler{carts: carts}
}

type addToCartRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	// Pointer so a missing price is distinguishable from a free item.
	Price *float64 `json:"price"`
}

// AddToCart upserts a line into the user's cart. Adding an existing
// product merges quantities; the price stored at first add wins.
func (h *CartHandler) AddToCart(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}

	var req addToCartRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if req.ProductID == "" || req.Price == nil {
		return fiber.NewError(fiber.StatusBadRequest, "Missing required fields: productId, quantity, price")
	}
	if req.Quantity < 1 {
		return fiber.NewError(fiber.StatusBadRequest, "Quantity must be at least 1")
	}
	if *req.Price < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Price cannot be negative")
	}

	cart, err := h.carts.FindByUser(c.Context(), userID)
	if err != nil {
		if !errors.Is(err, repository.ErrCartNotFound) {
			return err
		}
		cart = &models.Cart{UserID: userID}
	}

	cart.AddItem(req.ProductID, req.Quantity, *req.Price)

	if err := h.carts.Save(c.Context(), cart); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "Item added to cart successfully",
		"cart":    cart,
	})
}

// GetCart returns the user's cart. A missing cart is not an error: the
// response carries an explicit empty shape instead.
func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}

	cart, err := h.carts.FindByUser(c.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			return c.JSON(fiber.Map{
				"message":      "Cart is empty",
				"cart":         nil,
				"items":        []models.CartItem{},
				"total_amount": 0,
			})
		}
		return err
	}

	return c.JSON(fiber.Map{
		"message": "Cart retrieved successfully",
		"cart":    cart,
	})
}

// RemoveItem splices one product line out of the cart.
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}

	productID := c.Params("productId")
	if productID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Product ID is required")
	}

	cart, err := h.carts.FindByUser(c.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Cart not found")
		}
		return err
	}

	if !cart.RemoveItem(productID) {
		return fiber.NewError(fiber.StatusNotFound, "Product not found in cart")
	}

	if err := h.carts.Save(c.Context(), cart); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "Item removed from cart successfully",
		"cart":    cart,
	})
}

// ClearCart deletes the cart document. Clearing an absent cart succeeds.
func (h *CartHandler) ClearCart(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}

	deleted, err := h.carts.Delete(c.Context(), userID)
	if err != nil {
		return err
	}

	message := "Cart cleared successfully"
	if !deleted {
		message = "Cart was already empty"
	}

	return c.JSON(fiber.Map{"message": message})
}
