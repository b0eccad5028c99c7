package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/example/mystore/internal/middleware"
	"github.com/example/mystore/internal/models"
	"github.com/example/mystore/internal/repository"
	"github.com/example/mystore/internal/utils"
)

// OrderHandler converts carts into orders and lists order history.
type OrderHandler struct {
	carts  repository.CartRepository
	orders repository.OrderRepository
	logger *zap.SugaredLogger
}

// NewOrderHandler constructs an OrderHandler.
func NewOrderHandler(carts repository.CartRepository, orders repository.OrderRepository, logger *zap.SugaredLogger) *OrderHandler {
	return &OrderHandler{carts: carts, orders: orders, logger: logger}
}

type placeOrderRequest struct {
	Address       models.Address `json:"address"`
	PaymentMethod string         `json:"payment_method"`
}

// PlaceOrder snapshots the user's cart into an immutable order and then
// deletes the cart. The two writes are sequential, not transactional: a
// crash in between leaves a stale cart next to a valid order, which the
// next clear or placement reconciles.
func (h *OrderHandler) PlaceOrder(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}

	var req placeOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if req.Address.Empty() || req.PaymentMethod == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Missing required fields: address, paymentMethod")
	}
	if !models.ValidPaymentMethod(req.PaymentMethod) {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid payment method")
	}

	cart, err := h.carts.FindByUser(c.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			return fiber.NewError(fiber.StatusBadRequest, "Cart is empty")
		}
		return err
	}
	if len(cart.Items) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Cart is empty")
	}

	paymentStatus := models.PaymentStatusPaid
	if req.PaymentMethod == models.PaymentMethodCOD {
		paymentStatus = models.PaymentStatusPending
	}

	items := make([]models.CartItem, len(cart.Items))
	copy(items, cart.Items)

	order := &models.Order{
		UserID:        userID,
		Items:         items,
		TotalAmount:   cart.TotalAmount,
		Address:       req.Address,
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: paymentStatus,
		OrderStatus:   models.OrderStatusPending,
	}

	if err := h.orders.Insert(c.Context(), order); err != nil {
		return err
	}

	if _, err := h.carts.Delete(c.Context(), userID); err != nil {
		// The order is already placed; surface success and leave the
		// stale cart to be reconciled later.
		h.logger.Warnf("cart delete after order %s failed: %v", order.ID.Hex(), err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Order placed successfully",
		"order":   order,
	})
}

// GetOrders lists the user's orders newest first. Clients may paginate
// with page/limit query params; the default is the full history.
func (h *OrderHandler) GetOrders(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}

	pg := utils.ParsePagination(c)

	orders, err := h.orders.ListByUser(c.Context(), userID, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}

	resp := fiber.Map{
		"message": "Orders retrieved successfully",
		"orders":  orders,
	}

	if pg.Limit > 0 {
		total, err := h.orders.CountByUser(c.Context(), userID)
		if err != nil {
			return err
		}
		resp["pagination"] = fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		}
	}

	return c.JSON(resp)
}
