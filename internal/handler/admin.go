package handler

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/shanmukhasaireddy13/code-chef-solutions-sub000/internal/middleware"
	"github.com/shanmukhasaireddy13/code-chef-solutions-sub000/internal/model"
)

type ResolveOrderRequest struct {
	Reference string `json:"reference"`
}

// ApproveOrder confirms a top-up against the reference the admin observed in
// the bank statement. A mismatch reports 400 and the order stays pending.
func (h *Handler) ApproveOrder(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("order_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid order id",
		})
	}

	var req ResolveOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	result, err := h.paymentSvc.ApproveOrder(c.Context(), middleware.GetUserID(c), orderID, req.Reference)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"status":      result.Status,
		"new_balance": result.NewBalance,
	})
}

func (h *Handler) RejectOrder(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("order_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid order id",
		})
	}

	if err := h.paymentSvc.RejectOrder(c.Context(), middleware.GetUserID(c), orderID); err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"status": model.OrderStatusRejected,
	})
}

func (h *Handler) ListOrders(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	status := model.OrderStatus(c.Query("status"))

	orders, err := h.paymentSvc.ListOrders(c.Context(), middleware.GetUserID(c), status, limit, offset)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"orders": orders,
	})
}

type CreateOfferRequest struct {
	Code              *string    `json:"code"`
	OfferType         string     `json:"offer_type"`
	DiscountType      string     `json:"discount_type"`
	DiscountValue     float64    `json:"discount_value"`
	DiscountPercent   float64    `json:"discount_percent"`
	MinPurchaseAmount float64    `json:"min_purchase_amount"`
	MinReferrals      int        `json:"min_referrals"`
	BuyCount          *int       `json:"buy_count"`
	GetFreeCount      *int       `json:"get_free_count"`
	MaxFreePrice      *float64   `json:"max_free_price"`
	ValidUntil        *time.Time `json:"valid_until"`
	UsageLimit        int        `json:"usage_limit"`
	AutoApply         bool       `json:"auto_apply"`
	Description       *string    `json:"description"`
}

func (h *Handler) CreateOffer(c *fiber.Ctx) error {
	var req CreateOfferRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	offer := &model.Offer{
		Code:              req.Code,
		Type:              model.OfferType(req.OfferType),
		DiscountType:      model.DiscountType(req.DiscountType),
		DiscountValue:     req.DiscountValue,
		DiscountPercent:   req.DiscountPercent,
		MinPurchaseAmount: req.MinPurchaseAmount,
		MinReferrals:      req.MinReferrals,
		BuyCount:          req.BuyCount,
		GetFreeCount:      req.GetFreeCount,
		MaxFreePrice:      req.MaxFreePrice,
		IsActive:          true,
		ValidUntil:        req.ValidUntil,
		UsageLimit:        req.UsageLimit,
		AutoApply:         req.AutoApply,
		Description:       req.Description,
	}

	if err := h.offerSvc.CreateOffer(c.Context(), offer); err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(offer)
}

func (h *Handler) ListOffers(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	offers, err := h.offerSvc.ListOffers(c.Context(), limit, offset)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"offers": offers,
	})
}

type DeactivateOfferRequest struct {
	ID uuid.UUID `json:"id"`
}

func (h *Handler) DeactivateOffer(c *fiber.Ctx) error {
	var req DeactivateOfferRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if err := h.offerSvc.DeactivateOffer(c.Context(), req.ID); err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
	})
}

type CreateSolutionRequest struct {
	ProblemID string  `json:"problem_id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Content   string  `json:"content"`
}

func (h *Handler) CreateSolution(c *fiber.Ctx) error {
	var req CreateSolutionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if req.ProblemID == "" || req.Price < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "problem_id is required and price must be non-negative",
		})
	}

	solution := &model.Solution{
		ProblemID: req.ProblemID,
		Title:     req.Title,
		Price:     req.Price,
		Content:   req.Content,
	}

	if err := h.catalogSvc.CreateSolution(c.Context(), solution); err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(solution)
}
