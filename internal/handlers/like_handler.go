package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/causeconnect/backend/internal/models"
	"github.com/causeconnect/backend/internal/notifier"
	"github.com/causeconnect/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles post likes, bookmarks and volunteer sign-ups
type LikeHandler struct {
	likeRepository    repositories.LikeRepository
	postRepository    repositories.PostRepository
	userRepository    repositories.UserRepository
	squadRepository   repositories.SquadRepository
	eventRepository   repositories.EventRepository
	commentRepository repositories.CommentRepository
	notifier          *notifier.Emitter
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(
	likeRepo repositories.LikeRepository,
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	squadRepo repositories.SquadRepository,
	eventRepo repositories.EventRepository,
	commentRepo repositories.CommentRepository,
	emitter *notifier.Emitter,
) *LikeHandler {
	return &LikeHandler{
		likeRepository:    likeRepo,
		postRepository:    postRepo,
		userRepository:    userRepo,
		squadRepository:   squadRepo,
		eventRepository:   eventRepo,
		commentRepository: commentRepo,
		notifier:          emitter,
	}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:id/like", h.ToggleLike)
	g.POST("/posts/:id/bookmark", h.ToggleBookmark)
	g.POST("/posts/:id/participate", h.ToggleParticipate)
	g.GET("/bookmarks", h.GetBookmarks)
}

// ToggleLike likes or unlikes a post
func (h *LikeHandler) ToggleLike(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	postID, err := parseIDParam(c, "id", "post")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	post, err := loadVisiblePost(ctx, h.postRepository, h.squadRepository, postID, userID)
	if err != nil {
		return err
	}
	liked, err := h.likeRepository.ToggleLike(ctx, userID, postID)
	if err != nil {
		return internalError(err)
	}
	if liked {
		if actor, err := h.userRepository.GetUserByID(ctx, userID); err == nil {
			h.notifier.Emit(ctx, notifier.PostLike(actor, post))
		}
	}

	count, err := h.likeRepository.GetLikesCountByPostID(ctx, postID)
	if err != nil {
		return internalError(err)
	}
	return success(c, http.StatusOK, echo.Map{"liked": liked, "likes_count": count})
}

func (h *LikeHandler) ToggleBookmark(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	postID, err := parseIDParam(c, "id", "post")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	if _, err := loadVisiblePost(ctx, h.postRepository, h.squadRepository, postID, userID); err != nil {
		return err
	}
	bookmarked, err := h.likeRepository.ToggleBookmark(ctx, userID, models.BookmarkPost, postID)
	if err != nil {
		return internalError(err)
	}
	return success(c, http.StatusOK, echo.Map{"bookmarked": bookmarked})
}

// ToggleParticipate signs the user up for a volunteer post, or withdraws
func (h *LikeHandler) ToggleParticipate(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	postID, err := parseIDParam(c, "id", "post")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	post, err := loadVisiblePost(ctx, h.postRepository, h.squadRepository, postID, userID)
	if err != nil {
		return err
	}
	if post.Kind != models.PostKindVolunteer {
		return echo.NewHTTPError(http.StatusBadRequest, "Only volunteer posts accept participants")
	}
	participating, err := h.postRepository.ToggleParticipant(ctx, userID, postID)
	if err != nil {
		return internalError(err)
	}
	counts, err := h.postRepository.CountParticipants(ctx, []uint{postID})
	if err != nil {
		return internalError(err)
	}
	return success(c, http.StatusOK, echo.Map{"participating": participating, "participants_count": counts[postID]})
}

type bookmarkView struct {
	models.Bookmark
	Target interface{} `json:"target,omitempty"`
}

// GetBookmarks lists the caller's bookmarks with their targets; ?type= narrows them
func (h *LikeHandler) GetBookmarks(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	targetType := c.QueryParam("type")
	switch targetType {
	case "", models.BookmarkEvent, models.BookmarkPost, models.BookmarkComment:
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "type must be one of: event post comment")
	}
	ctx := c.Request().Context()

	bookmarks, err := h.likeRepository.GetBookmarks(ctx, userID, targetType)
	if err != nil {
		return internalError(err)
	}
	views := make([]bookmarkView, 0, len(bookmarks))
	for _, b := range bookmarks {
		target, err := h.loadTarget(ctx, b)
		if err != nil {
			return internalError(err)
		}
		if target == nil {
			continue
		}
		views = append(views, bookmarkView{Bookmark: b, Target: target})
	}
	return success(c, http.StatusOK, echo.Map{"bookmarks": views})
}

// loadTarget returns nil for targets that no longer exist
func (h *LikeHandler) loadTarget(ctx context.Context, b models.Bookmark) (interface{}, error) {
	var target interface{}
	var err error
	switch b.TargetType {
	case models.BookmarkEvent:
		target, err = h.eventRepository.GetEventByID(ctx, b.TargetID)
	case models.BookmarkPost:
		target, err = h.postRepository.GetPostByID(ctx, b.TargetID)
	case models.BookmarkComment:
		target, err = h.commentRepository.GetCommentByID(ctx, b.TargetID)
	}
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil
	}
	return target, err
}
