package handlers

import (
	"context"
	"net/http"

	"github.com/causeconnect/backend/internal/models"
	"github.com/causeconnect/backend/internal/notifier"
	"github.com/causeconnect/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles follow and block HTTP requests
type FollowHandler struct {
	followRepository repositories.FollowRepository
	userRepository   repositories.UserRepository
	eventRepository  repositories.EventRepository
	notifier         *notifier.Emitter
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(followRepo repositories.FollowRepository, userRepo repositories.UserRepository, eventRepo repositories.EventRepository, emitter *notifier.Emitter) *FollowHandler {
	return &FollowHandler{
		followRepository: followRepo,
		userRepository:   userRepo,
		eventRepository:  eventRepo,
		notifier:         emitter,
	}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/:id/follow", h.ToggleFollow)
	g.GET("/users/:id/followers", h.GetFollowers)
	g.GET("/users/:id/following", h.GetFollowing)
	g.POST("/users/:id/block", h.ToggleBlock)
}

// ToggleFollow follows or unfollows a user and returns the target's fresh counts
func (h *FollowHandler) ToggleFollow(c echo.Context) error {
	currentUserID, err := requireUser(c)
	if err != nil {
		return err
	}
	targetID, err := parseIDParam(c, "id", "user")
	if err != nil {
		return err
	}
	if currentUserID == targetID {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot follow yourself")
	}
	ctx := c.Request().Context()

	target, err := h.userRepository.GetUserByID(ctx, targetID)
	if err != nil {
		return notFoundOr(err, "User not found")
	}
	blocked, err := h.followRepository.IsBlocked(ctx, targetID, currentUserID)
	if err != nil {
		return internalError(err)
	}
	if blocked {
		return echo.NewHTTPError(http.StatusForbidden, "You cannot follow this user")
	}

	following, err := h.followRepository.ToggleFollow(ctx, currentUserID, targetID)
	if err != nil {
		return internalError(err)
	}

	if following {
		actor, err := h.userRepository.GetUserByID(ctx, currentUserID)
		if err == nil {
			h.notifier.Emit(ctx, notifier.Follow(actor, targetID))
		}
	}

	profile, err := buildProfile(ctx, h.followRepository, h.eventRepository, target, currentUserID)
	if err != nil {
		return internalError(err)
	}
	return success(c, http.StatusOK, echo.Map{
		"following":       following,
		"followers_count": profile.FollowersCount,
		"following_count": profile.FollowingCount,
	})
}

func (h *FollowHandler) GetFollowers(c echo.Context) error {
	return h.listRelations(c, h.followRepository.GetFollowers, "followers")
}

func (h *FollowHandler) GetFollowing(c echo.Context) error {
	return h.listRelations(c, h.followRepository.GetFollowing, "following")
}

func (h *FollowHandler) listRelations(c echo.Context, load func(ctx context.Context, userID uint) ([]models.User, error), key string) error {
	if _, err := requireUser(c); err != nil {
		return err
	}
	userID, err := parseIDParam(c, "id", "user")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	if _, err := h.userRepository.GetUserByID(ctx, userID); err != nil {
		return notFoundOr(err, "User not found")
	}
	users, err := load(ctx, userID)
	if err != nil {
		return internalError(err)
	}
	compact := make([]models.UserCompact, len(users))
	for i := range users {
		compact[i] = users[i].ToCompact()
	}
	return success(c, http.StatusOK, echo.Map{key: compact})
}

// ToggleBlock blocks or unblocks a user. Blocking removes follows both ways.
func (h *FollowHandler) ToggleBlock(c echo.Context) error {
	currentUserID, err := requireUser(c)
	if err != nil {
		return err
	}
	targetID, err := parseIDParam(c, "id", "user")
	if err != nil {
		return err
	}
	if currentUserID == targetID {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot block yourself")
	}
	ctx := c.Request().Context()

	if _, err := h.userRepository.GetUserByID(ctx, targetID); err != nil {
		return notFoundOr(err, "User not found")
	}
	blocked, err := h.followRepository.ToggleBlock(ctx, currentUserID, targetID)
	if err != nil {
		return internalError(err)
	}
	return success(c, http.StatusOK, echo.Map{"blocked": blocked})
}
