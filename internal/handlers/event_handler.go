package handlers

import (
	"context"
	"net/http"

	"github.com/causeconnect/backend/internal/models"
	"github.com/causeconnect/backend/internal/notifier"
	"github.com/causeconnect/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// EventHandler handles fundraising event HTTP requests
type EventHandler struct {
	eventRepository    repositories.EventRepository
	userRepository     repositories.UserRepository
	likeRepository     repositories.LikeRepository
	donationRepository repositories.DonationRepository
	notifier           *notifier.Emitter
}

func NewEventHandler(
	eventRepo repositories.EventRepository,
	userRepo repositories.UserRepository,
	likeRepo repositories.LikeRepository,
	donationRepo repositories.DonationRepository,
	emitter *notifier.Emitter,
) *EventHandler {
	return &EventHandler{
		eventRepository:    eventRepo,
		userRepository:     userRepo,
		likeRepository:     likeRepo,
		donationRepository: donationRepo,
		notifier:           emitter,
	}
}

func (h *EventHandler) RegisterEventRoutes(g *echo.Group) {
	g.GET("/events", h.ListEvents)
	g.POST("/events", h.CreateEvent)
	g.GET("/events/:id", h.GetEvent)
	g.PUT("/events/:id", h.UpdateEvent)
	g.DELETE("/events/:id", h.DeleteEvent)
	g.POST("/events/:id/support", h.ToggleSupport)
	g.POST("/events/:id/pass", h.PassEvent)
	g.POST("/events/:id/bookmark", h.ToggleBookmark)
	g.GET("/events/:id/supporters", h.GetSupporters)
}

// summarize enriches events with owners, supporter counts and the viewer's flags
func (h *EventHandler) summarize(ctx context.Context, events []models.Event, viewerID uint) ([]models.EventSummary, error) {
	ids := make([]uint, len(events))
	ownerIDs := make([]uint, 0, len(events))
	for i, e := range events {
		ids[i] = e.ID
		ownerIDs = append(ownerIDs, e.OwnerID)
	}

	owners, err := h.userRepository.GetCompactUsers(ctx, ownerIDs)
	if err != nil {
		return nil, err
	}
	supporters, err := h.eventRepository.SupportersCounts(ctx, ids)
	if err != nil {
		return nil, err
	}
	supported, err := h.eventRepository.SupportedEventIDs(ctx, viewerID, ids)
	if err != nil {
		return nil, err
	}
	bookmarked, err := h.likeRepository.BookmarkedIDs(ctx, viewerID, models.BookmarkEvent, ids)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.EventSummary, len(events))
	for i, e := range events {
		summaries[i] = models.EventSummary{
			Event:           e,
			SupportersCount: supporters[e.ID],
			IsSupported:     supported[e.ID],
			IsBookmarked:    bookmarked[e.ID],
		}
		if owner, ok := owners[e.OwnerID]; ok {
			summaries[i].Owner = &owner
		}
	}
	return summaries, nil
}

func (h *EventHandler) ListEvents(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	ownerID, err := parseUintQuery(c, "owner_id")
	if err != nil {
		return err
	}
	page, limit := pagination(c, 20)
	filter := models.EventFilter{
		Category: c.QueryParam("category"),
		Query:    c.QueryParam("q"),
		OwnerID:  ownerID,
		Status:   c.QueryParam("status"),
	}
	ctx := c.Request().Context()

	events, total, err := h.eventRepository.ListEvents(ctx, filter, page, limit)
	if err != nil {
		return internalError(err)
	}
	summaries, err := h.summarize(ctx, events, userID)
	if err != nil {
		return internalError(err)
	}
	return paged(c, echo.Map{"events": summaries}, page, limit, total)
}

func (h *EventHandler) GetEvent(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id", "event")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	event, err := h.eventRepository.GetEventByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "Event not found")
	}
	summaries, err := h.summarize(ctx, []models.Event{*event}, userID)
	if err != nil {
		return internalError(err)
	}
	summary := summaries[0]
	if summary.DonationsCount, err = h.donationRepository.CountByEvent(ctx, id); err != nil {
		return internalError(err)
	}
	return success(c, http.StatusOK, summary)
}

func (h *EventHandler) CreateEvent(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	var req models.CreateEventRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if req.StartsAt != nil && req.EndsAt != nil && !req.EndsAt.After(*req.StartsAt) {
		return echo.NewHTTPError(http.StatusBadRequest, "ends_at must be after starts_at")
	}

	event := &models.Event{
		OwnerID:     userID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Location:    req.Location,
		ImageURL:    req.ImageURL,
		GoalAmount:  req.GoalAmount,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Status:      models.EventStatusActive,
	}
	if err := h.eventRepository.CreateEvent(c.Request().Context(), event); err != nil {
		return internalError(err)
	}
	return success(c, http.StatusCreated, event)
}

// ownEvent loads the event and checks that userID owns it
func (h *EventHandler) ownEvent(c echo.Context, userID uint) (*models.Event, error) {
	id, err := parseIDParam(c, "id", "event")
	if err != nil {
		return nil, err
	}
	event, err := h.eventRepository.GetEventByID(c.Request().Context(), id)
	if err != nil {
		return nil, notFoundOr(err, "Event not found")
	}
	if event.OwnerID != userID {
		return nil, echo.NewHTTPError(http.StatusForbidden, "You can only modify your own events")
	}
	return event, nil
}

func (h *EventHandler) UpdateEvent(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	var req models.UpdateEventRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	event, err := h.ownEvent(c, userID)
	if err != nil {
		return err
	}

	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Category != nil {
		event.Category = *req.Category
	}
	if req.Location != nil {
		event.Location = *req.Location
	}
	if req.ImageURL != nil {
		event.ImageURL = *req.ImageURL
	}
	if req.GoalAmount != nil {
		event.GoalAmount = *req.GoalAmount
	}
	if req.StartsAt != nil {
		event.StartsAt = req.StartsAt
	}
	if req.EndsAt != nil {
		event.EndsAt = req.EndsAt
	}
	if req.Status != nil {
		event.Status = *req.Status
	}
	if event.StartsAt != nil && event.EndsAt != nil && !event.EndsAt.After(*event.StartsAt) {
		return echo.NewHTTPError(http.StatusBadRequest, "ends_at must be after starts_at")
	}

	if err := h.eventRepository.UpdateEvent(c.Request().Context(), event); err != nil {
		return notFoundOr(err, "Event not found")
	}
	return success(c, http.StatusOK, event)
}

func (h *EventHandler) DeleteEvent(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	event, err := h.ownEvent(c, userID)
	if err != nil {
		return err
	}
	if err := h.eventRepository.DeleteEvent(c.Request().Context(), event.ID); err != nil {
		return notFoundOr(err, "Event not found")
	}
	return c.NoContent(http.StatusNoContent)
}

// ToggleSupport supports an event, or withdraws support and records a pass
func (h *EventHandler) ToggleSupport(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id", "event")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	event, err := h.eventRepository.GetEventByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "Event not found")
	}
	supported, err := h.eventRepository.ToggleSupport(ctx, userID, id)
	if err != nil {
		return internalError(err)
	}
	if supported {
		if actor, err := h.userRepository.GetUserByID(ctx, userID); err == nil {
			h.notifier.Emit(ctx, notifier.Support(actor, event))
		}
	}

	count, err := h.eventRepository.CountSupporters(ctx, id)
	if err != nil {
		return internalError(err)
	}
	return success(c, http.StatusOK, echo.Map{"supported": supported, "supporters_count": count})
}

func (h *EventHandler) PassEvent(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id", "event")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	if _, err := h.eventRepository.GetEventByID(ctx, id); err != nil {
		return notFoundOr(err, "Event not found")
	}
	if err := h.eventRepository.PassEvent(ctx, userID, id); err != nil {
		return internalError(err)
	}
	return success(c, http.StatusOK, echo.Map{"passed": true, "supported": false})
}

func (h *EventHandler) ToggleBookmark(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id", "event")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	if _, err := h.eventRepository.GetEventByID(ctx, id); err != nil {
		return notFoundOr(err, "Event not found")
	}
	bookmarked, err := h.likeRepository.ToggleBookmark(ctx, userID, models.BookmarkEvent, id)
	if err != nil {
		return internalError(err)
	}
	return success(c, http.StatusOK, echo.Map{"bookmarked": bookmarked})
}

func (h *EventHandler) GetSupporters(c echo.Context) error {
	if _, err := requireUser(c); err != nil {
		return err
	}
	id, err := parseIDParam(c, "id", "event")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	if _, err := h.eventRepository.GetEventByID(ctx, id); err != nil {
		return notFoundOr(err, "Event not found")
	}
	users, err := h.eventRepository.GetSupporters(ctx, id)
	if err != nil {
		return internalError(err)
	}
	compact := make([]models.UserCompact, len(users))
	for i := range users {
		compact[i] = users[i].ToCompact()
	}
	return success(c, http.StatusOK, echo.Map{"supporters": compact, "count": len(compact)})
}
