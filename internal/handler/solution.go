package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/shanmukhasaireddy13/code-chef-solutions-sub000/internal/middleware"
)

func (h *Handler) ListSolutions(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	solutions, err := h.catalogSvc.ListSolutions(c.Context(), limit, offset)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"solutions": solutions,
	})
}

// GetSolution returns one catalog entry; content is present only when the
// caller owns it.
func (h *Handler) GetSolution(c *fiber.Ctx) error {
	viewer, _, err := h.userSvc.Profile(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return fail(c, err)
	}

	solution, err := h.catalogSvc.GetSolution(c.Context(), c.Params("problem_id"), viewer)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(solution)
}
