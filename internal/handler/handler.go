package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/shanmukhasaireddy13/code-chef-solutions-sub000/internal/config"
	"github.com/shanmukhasaireddy13/code-chef-solutions-sub000/internal/repository"
	"github.com/shanmukhasaireddy13/code-chef-solutions-sub000/internal/service"
)

type Handler struct {
	cfg         *config.Config
	userSvc     *service.UserService
	catalogSvc  *service.CatalogService
	offerSvc    *service.OfferService
	checkoutSvc *service.CheckoutService
	paymentSvc  *service.PaymentService
}

func New(
	cfg *config.Config,
	userSvc *service.UserService,
	catalogSvc *service.CatalogService,
	offerSvc *service.OfferService,
	checkoutSvc *service.CheckoutService,
	paymentSvc *service.PaymentService,
) *Handler {
	return &Handler{
		cfg:         cfg,
		userSvc:     userSvc,
		catalogSvc:  catalogSvc,
		offerSvc:    offerSvc,
		checkoutSvc: checkoutSvc,
		paymentSvc:  paymentSvc,
	}
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
	})
}

// fail maps service errors onto HTTP statuses with the standard
// {"error": ...} body.
func fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusBadRequest

	var minPurchase *service.MinPurchaseError
	var referral *service.ReferralShortfallError
	var bogoCount *service.BogoItemCountError

	switch {
	case errors.Is(err, service.ErrSolutionNotFound),
		errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrReferralCodeInvalid),
		errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrSolutionNotFound),
		errors.Is(err, repository.ErrOfferNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, service.ErrInsufficientCredits):
		status = fiber.StatusPaymentRequired
	case errors.Is(err, service.ErrAlreadyPurchased),
		errors.Is(err, service.ErrReferenceUsed),
		errors.Is(err, service.ErrOrderProcessed),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, repository.ErrDuplicateOffer):
		status = fiber.StatusConflict
	case errors.Is(err, service.ErrNotAdmin):
		status = fiber.StatusForbidden
	case errors.Is(err, service.ErrCouponInvalid),
		errors.Is(err, service.ErrCouponExpired),
		errors.Is(err, service.ErrCouponUsed),
		errors.Is(err, service.ErrCouponNotApplicable),
		errors.Is(err, service.ErrFirstPurchaseOnly),
		errors.Is(err, service.ErrReferenceMismatch),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrMissingReference),
		errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrDuplicateCartItem),
		errors.Is(err, service.ErrInvalidSignup),
		errors.Is(err, service.ErrOfferInvalid),
		errors.As(err, &minPurchase),
		errors.As(err, &referral),
		errors.As(err, &bogoCount):
		status = fiber.StatusBadRequest
	default:
		status = fiber.StatusInternalServerError
		return c.Status(status).JSON(fiber.Map{
			"error": "internal error",
		})
	}

	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}
