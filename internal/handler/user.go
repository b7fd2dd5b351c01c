package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/shanmukhasaireddy13/code-chef-solutions-sub000/internal/middleware"
)

type SignupRequest struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	ReferralCode string `json:"referral_code"`
}

// Signup registers a user and runs the referral-credit step when a referral
// code is supplied. Session issuance lives outside this service.
func (h *Handler) Signup(c *fiber.Ctx) error {
	var req SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	user, err := h.userSvc.Signup(c.Context(), req.Email, req.Name, req.ReferralCode)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":            user.ID,
		"email":         user.Email,
		"name":          user.Name,
		"referral_code": user.ReferralCode,
		"credits":       user.Credits,
	})
}

func (h *Handler) GetMe(c *fiber.Ctx) error {
	user, owned, err := h.userSvc.Profile(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"id":             user.ID,
		"email":          user.Email,
		"name":           user.Name,
		"role":           user.Role,
		"credits":        user.Credits,
		"referral_code":  user.ReferralCode,
		"referral_count": user.ReferralCount,
		"owned_count":    owned,
	})
}

func (h *Handler) GetReferral(c *fiber.Ctx) error {
	user, _, err := h.userSvc.Profile(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"referral_code":    user.ReferralCode,
		"referral_count":   user.ReferralCount,
		"referral_credits": float64(user.ReferralCount) * h.cfg.Referral.SignupBonusCredits,
	})
}
