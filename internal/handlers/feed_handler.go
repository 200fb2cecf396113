package handlers

import (
	"github.com/causeconnect/backend/internal/models"
	"github.com/causeconnect/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// FeedHandler handles feed-related HTTP requests
type FeedHandler struct {
	postRepository   repositories.PostRepository
	followRepository repositories.FollowRepository
	enricher         postEnricher
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	followRepo repositories.FollowRepository,
	likeRepo repositories.LikeRepository,
) *FeedHandler {
	return &FeedHandler{
		postRepository:   postRepo,
		followRepository: followRepo,
		enricher:         postEnricher{posts: postRepo, users: userRepo, likes: likeRepo},
	}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
}

// GetFeed returns posts by the current user and the users they follow, newest first
func (h *FeedHandler) GetFeed(c echo.Context) error {
	currentUserID, err := requireUser(c)
	if err != nil {
		return err
	}
	page, limit := pagination(c, 10)
	ctx := c.Request().Context()

	followingIDs, err := h.followRepository.GetFollowingIDs(ctx, currentUserID)
	if err != nil {
		return internalError(err)
	}
	authorIDs := append([]uint{currentUserID}, followingIDs...)

	posts, total, err := h.postRepository.ListPosts(ctx, models.PostFilter{AuthorIDs: authorIDs}, page, limit)
	if err != nil {
		return internalError(err)
	}
	enrichedPosts, err := h.enricher.enrich(ctx, posts, currentUserID)
	if err != nil {
		return internalError(err)
	}
	return paged(c, echo.Map{"posts": enrichedPosts}, page, limit, total)
}
