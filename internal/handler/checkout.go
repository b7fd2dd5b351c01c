package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/shanmukhasaireddy13/code-chef-solutions-sub000/internal/middleware"
)

type CheckoutRequest struct {
	ProblemIDs []string `json:"problem_ids"`
	CouponCode string   `json:"coupon_code"`
}

// Checkout purchases the requested solutions with the user's credits.
func (h *Handler) Checkout(c *fiber.Ctx) error {
	var req CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	result, err := h.checkoutSvc.Checkout(c.Context(), middleware.GetUserID(c), req.ProblemIDs, req.CouponCode)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"credits":          result.Credits,
		"purchased_count":  result.PurchasedCount,
		"discount_applied": result.DiscountApplied,
	})
}

// PreviewOffer dry-runs the offer engine over a cart for cart UI; nothing is
// committed.
func (h *Handler) PreviewOffer(c *fiber.Ctx) error {
	var req CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	eval, err := h.checkoutSvc.Preview(c.Context(), middleware.GetUserID(c), req.ProblemIDs, req.CouponCode)
	if err != nil {
		return fail(c, err)
	}

	resp := fiber.Map{
		"discount_amount": eval.DiscountAmount,
		"final_amount":    eval.FinalAmount,
		"free_item_ids":   eval.FreeItemIDs,
	}
	if eval.Offer != nil {
		resp["offer_type"] = eval.Offer.Type
		resp["offer_code"] = eval.Offer.Code
	}
	return c.JSON(resp)
}
