package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/shanmukhasaireddy13/code-chef-solutions-sub000/internal/middleware"
)

type CreateOrderRequest struct {
	Amount     float64 `json:"amount"`
	Reference  string  `json:"reference"`
	CouponCode string  `json:"coupon_code"`
}

// CreateOrder opens a pending top-up order for admin reconciliation.
func (h *Handler) CreateOrder(c *fiber.Ctx) error {
	var req CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	result, err := h.paymentSvc.CreateTopUpOrder(c.Context(), middleware.GetUserID(c), req.Amount, req.Reference, req.CouponCode)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"order_id":         result.OrderID,
		"payable_amount":   result.PayableAmount,
		"credits_to_grant": result.CreditsToGrant,
	})
}

func (h *Handler) ListMyOrders(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	orders, err := h.paymentSvc.ListUserOrders(c.Context(), middleware.GetUserID(c), limit, offset)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"orders": orders,
	})
}
