package handlers

import (
	"context"
	"net/http"

	"github.com/causeconnect/backend/internal/models"
	"github.com/causeconnect/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// UserHandler handles HTTP requests related to users and their settings
type UserHandler struct {
	userRepository     repositories.UserRepository
	followRepository   repositories.FollowRepository
	eventRepository    repositories.EventRepository
	settingsRepository repositories.SettingsRepository
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, followRepo repositories.FollowRepository, eventRepo repositories.EventRepository, settingsRepo repositories.SettingsRepository) *UserHandler {
	return &UserHandler{
		userRepository:     userRepo,
		followRepository:   followRepo,
		eventRepository:    eventRepo,
		settingsRepository: settingsRepo,
	}
}

// RegisterProfileRoutes registers user profile-related routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/profile", h.GetProfile)
	g.PUT("/profile", h.UpdateProfile)
	g.DELETE("/profile", h.DeleteUser)
	g.GET("/users/search", h.SearchUsers)
	g.GET("/users/:id", h.GetUser)
	g.GET("/settings", h.GetSettings)
	g.PUT("/settings", h.UpdateSettings)
}

// buildProfile adds read-time counts and the viewer's relation to user
func (h *UserHandler) buildProfile(ctx context.Context, user *models.User, viewerID uint) (*models.UserProfile, error) {
	return buildProfile(ctx, h.followRepository, h.eventRepository, user, viewerID)
}

func buildProfile(ctx context.Context, follows repositories.FollowRepository, events repositories.EventRepository, user *models.User, viewerID uint) (*models.UserProfile, error) {
	profile := &models.UserProfile{User: *user}
	var err error
	if profile.FollowersCount, err = follows.GetFollowersCount(ctx, user.ID); err != nil {
		return nil, err
	}
	if profile.FollowingCount, err = follows.GetFollowingCount(ctx, user.ID); err != nil {
		return nil, err
	}
	if profile.EventsCount, err = events.CountByOwner(ctx, user.ID); err != nil {
		return nil, err
	}
	if viewerID != 0 && viewerID != user.ID {
		if profile.IsFollowing, err = follows.IsFollowing(ctx, viewerID, user.ID); err != nil {
			return nil, err
		}
		if profile.IsBlocked, err = follows.IsBlocked(ctx, viewerID, user.ID); err != nil {
			return nil, err
		}
	}
	return profile, nil
}

func (h *UserHandler) GetUser(c echo.Context) error {
	viewerID, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id", "user")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	user, err := h.userRepository.GetUserByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "User profile not found")
	}
	profile, err := h.buildProfile(ctx, user, viewerID)
	if err != nil {
		return internalError(err)
	}
	return success(c, http.StatusOK, profile)
}

// GetProfile retrieves the authenticated user's profile
func (h *UserHandler) GetProfile(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	user, err := h.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		return notFoundOr(err, "User profile not found")
	}
	profile, err := h.buildProfile(ctx, user, userID)
	if err != nil {
		return internalError(err)
	}
	return success(c, http.StatusOK, profile)
}

// UpdateProfile updates the authenticated user's profile
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	var req models.UpdateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	user, err := h.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		return notFoundOr(err, "User profile not found")
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.AvatarURL != nil {
		user.AvatarURL = *req.AvatarURL
	}
	if req.Location != nil {
		user.Location = *req.Location
	}

	if err := h.userRepository.UpdateUser(ctx, user); err != nil {
		return internalError(err)
	}
	return success(c, http.StatusOK, user)
}

// DeleteUser deletes the authenticated user's account and everything tied to it
func (h *UserHandler) DeleteUser(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	if err := h.userRepository.DeleteUser(c.Request().Context(), userID); err != nil {
		return notFoundOr(err, "User profile not found")
	}
	return c.NoContent(http.StatusNoContent)
}

// SearchUsers searches for users by name, username or email
func (h *UserHandler) SearchUsers(c echo.Context) error {
	if _, err := requireUser(c); err != nil {
		return err
	}
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Search query 'q' is required")
	}
	_, limit := pagination(c, 20)

	users, err := h.userRepository.SearchUsers(c.Request().Context(), query, limit)
	if err != nil {
		return internalError(err)
	}
	compact := make([]models.UserCompact, len(users))
	for i := range users {
		compact[i] = users[i].ToCompact()
	}
	return success(c, http.StatusOK, echo.Map{"users": compact})
}

func (h *UserHandler) GetSettings(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	settings, err := h.settingsRepository.GetSettings(c.Request().Context(), userID)
	if err != nil {
		return internalError(err)
	}
	return success(c, http.StatusOK, settings)
}

func (h *UserHandler) UpdateSettings(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	var req models.UpdateSettingsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	settings, err := h.settingsRepository.GetSettings(ctx, userID)
	if err != nil {
		return internalError(err)
	}
	apply := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&settings.EmailNotifications, req.EmailNotifications)
	apply(&settings.PushNotifications, req.PushNotifications)
	apply(&settings.NotifyLikes, req.NotifyLikes)
	apply(&settings.NotifyComments, req.NotifyComments)
	apply(&settings.NotifyFollows, req.NotifyFollows)
	apply(&settings.NotifyDonations, req.NotifyDonations)
	apply(&settings.NotifySupports, req.NotifySupports)
	apply(&settings.NotifyAwards, req.NotifyAwards)
	apply(&settings.PrivateProfile, req.PrivateProfile)
	if req.PushToken != nil {
		settings.PushToken = *req.PushToken
	}

	if err := h.settingsRepository.SaveSettings(ctx, settings); err != nil {
		return internalError(err)
	}
	return success(c, http.StatusOK, settings)
}
