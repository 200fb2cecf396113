package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/causeconnect/backend/internal/models"
	"github.com/causeconnect/backend/internal/notifier"
	"github.com/causeconnect/backend/internal/payment"
	"github.com/causeconnect/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

const defaultCurrency = "USD"

// DonationHandler handles donations to fundraising events
type DonationHandler struct {
	donationRepository repositories.DonationRepository
	eventRepository    repositories.EventRepository
	userRepository     repositories.UserRepository
	gateway            payment.Gateway
	notifier           *notifier.Emitter
}

// NewDonationHandler creates a new DonationHandler. gateway may be nil, which
// disables donation creation.
func NewDonationHandler(
	donationRepo repositories.DonationRepository,
	eventRepo repositories.EventRepository,
	userRepo repositories.UserRepository,
	gateway payment.Gateway,
	emitter *notifier.Emitter,
) *DonationHandler {
	return &DonationHandler{
		donationRepository: donationRepo,
		eventRepository:    eventRepo,
		userRepository:     userRepo,
		gateway:            gateway,
		notifier:           emitter,
	}
}

// RegisterDonationRoutes registers donation-related routes
func (h *DonationHandler) RegisterDonationRoutes(g *echo.Group) {
	g.POST("/donations", h.CreateDonation)
	g.GET("/donations/mine", h.GetMyDonations)
	g.GET("/events/:id/donations", h.GetEventDonations)
}

// CreateDonation charges the donor and records the donation against an active event
func (h *DonationHandler) CreateDonation(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	var req models.CreateDonationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if !payment.HasAtMostTwoDecimals(req.Amount) {
		return echo.NewHTTPError(http.StatusBadRequest, "Amount must have at most two decimal places")
	}
	if h.gateway == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Payments are not configured")
	}
	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = defaultCurrency
	}
	ctx := c.Request().Context()

	event, err := h.eventRepository.GetEventByID(ctx, req.EventID)
	if err != nil {
		return notFoundOr(err, "Event not found")
	}
	if event.Status != models.EventStatusActive {
		return echo.NewHTTPError(http.StatusConflict, "Event is not accepting donations")
	}

	receipt, err := h.gateway.Charge(ctx, payment.Charge{
		Amount:   req.Amount,
		Currency: currency,
		DonorID:  userID,
		EventID:  event.ID,
	})
	switch {
	case errors.Is(err, payment.ErrDeclined):
		return echo.NewHTTPError(http.StatusBadRequest, "Payment declined")
	case errors.Is(err, payment.ErrInvalidAmount):
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid amount")
	case err != nil:
		return internalError(err)
	}

	donation := &models.Donation{
		EventID:    event.ID,
		DonorID:    userID,
		Amount:     receipt.Amount,
		Currency:   receipt.Currency,
		Message:    req.Message,
		Anonymous:  req.Anonymous,
		PaymentRef: receipt.Reference,
	}
	if err := h.donationRepository.CreateDonation(ctx, donation); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return echo.NewHTTPError(http.StatusConflict, "Event is not accepting donations")
		}
		return internalError(err)
	}

	if donor, err := h.userRepository.GetUserByID(ctx, userID); err == nil {
		h.notifier.Emit(ctx, notifier.Donation(donor, event, donation))
	}
	return success(c, http.StatusCreated, donation)
}

// GetEventDonations lists an event's donations, newest first
func (h *DonationHandler) GetEventDonations(c echo.Context) error {
	if _, err := requireUser(c); err != nil {
		return err
	}
	eventID, err := parseIDParam(c, "id", "event")
	if err != nil {
		return err
	}
	page, limit := pagination(c, 20)
	ctx := c.Request().Context()

	if _, err := h.eventRepository.GetEventByID(ctx, eventID); err != nil {
		return notFoundOr(err, "Event not found")
	}
	donations, total, err := h.donationRepository.GetDonationsByEventID(ctx, eventID, page, limit)
	if err != nil {
		return internalError(err)
	}
	views, err := h.views(c, donations, true)
	if err != nil {
		return internalError(err)
	}
	return paged(c, echo.Map{"donations": views}, page, limit, total)
}

// GetMyDonations lists the caller's own donations
func (h *DonationHandler) GetMyDonations(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	page, limit := pagination(c, 20)

	donations, total, err := h.donationRepository.GetDonationsByDonorID(c.Request().Context(), userID, page, limit)
	if err != nil {
		return internalError(err)
	}
	views, err := h.views(c, donations, false)
	if err != nil {
		return internalError(err)
	}
	return paged(c, echo.Map{"donations": views}, page, limit, total)
}

// views attaches donors. With hideAnonymous the donor id is zeroed too.
func (h *DonationHandler) views(c echo.Context, donations []models.Donation, hideAnonymous bool) ([]models.DonationView, error) {
	donorIDs := make([]uint, 0, len(donations))
	for _, d := range donations {
		donorIDs = append(donorIDs, d.DonorID)
	}
	donors, err := h.userRepository.GetCompactUsers(c.Request().Context(), donorIDs)
	if err != nil {
		return nil, err
	}

	views := make([]models.DonationView, len(donations))
	for i, d := range donations {
		if d.Anonymous && hideAnonymous {
			d.DonorID = 0
			views[i] = models.DonationView{Donation: d}
			continue
		}
		views[i] = models.DonationView{Donation: d}
		if donor, ok := donors[d.DonorID]; ok {
			views[i].Donor = &donor
		}
	}
	return views, nil
}
