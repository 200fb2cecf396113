package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/causeconnect/backend/internal/models"
	"github.com/causeconnect/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// postEnricher attaches authors, counts and the viewer's flags to posts
type postEnricher struct {
	posts repositories.PostRepository
	users repositories.UserRepository
	likes repositories.LikeRepository
}

func (e postEnricher) enrich(ctx context.Context, posts []models.Post, viewerID uint) ([]models.EnrichedPost, error) {
	ids := make([]uint, len(posts))
	authorIDs := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
		authorIDs[i] = p.AuthorID
	}

	authors, err := e.users.GetCompactUsers(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	likes, err := e.likes.CountLikes(ctx, ids)
	if err != nil {
		return nil, err
	}
	comments, err := e.posts.CountComments(ctx, ids)
	if err != nil {
		return nil, err
	}
	participants, err := e.posts.CountParticipants(ctx, ids)
	if err != nil {
		return nil, err
	}
	liked, err := e.likes.LikedPostIDs(ctx, viewerID, ids)
	if err != nil {
		return nil, err
	}
	bookmarked, err := e.likes.BookmarkedIDs(ctx, viewerID, models.BookmarkPost, ids)
	if err != nil {
		return nil, err
	}
	participating, err := e.posts.ParticipatingPostIDs(ctx, viewerID, ids)
	if err != nil {
		return nil, err
	}

	enriched := make([]models.EnrichedPost, len(posts))
	for i, p := range posts {
		enriched[i] = models.EnrichedPost{
			Post:              p,
			LikesCount:        likes[p.ID],
			CommentsCount:     comments[p.ID],
			ParticipantsCount: participants[p.ID],
			IsLiked:           liked[p.ID],
			IsBookmarked:      bookmarked[p.ID],
			IsParticipating:   participating[p.ID],
		}
		if author, ok := authors[p.AuthorID]; ok {
			enriched[i].Author = &author
		}
	}
	return enriched, nil
}

// loadVisiblePost loads a post and hides posts of private squads from non-members
func loadVisiblePost(ctx context.Context, posts repositories.PostRepository, squads repositories.SquadRepository, postID, viewerID uint) (*models.Post, error) {
	post, err := posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, notFoundOr(err, "Post not found")
	}
	if post.SquadID == nil {
		return post, nil
	}
	squad, err := squads.GetSquadByID(ctx, *post.SquadID)
	if err != nil {
		return nil, notFoundOr(err, "Post not found")
	}
	if !squad.IsPrivate {
		return post, nil
	}
	if _, err := squads.GetMember(ctx, squad.ID, viewerID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, echo.NewHTTPError(http.StatusForbidden, "This squad is private")
		}
		return nil, internalError(err)
	}
	return post, nil
}

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postRepository  repositories.PostRepository
	eventRepository repositories.EventRepository
	squadRepository repositories.SquadRepository
	enricher        postEnricher
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.PostRepository, userRepo repositories.UserRepository, likeRepo repositories.LikeRepository, eventRepo repositories.EventRepository, squadRepo repositories.SquadRepository) *PostHandler {
	return &PostHandler{
		postRepository:  postRepo,
		eventRepository: eventRepo,
		squadRepository: squadRepo,
		enricher:        postEnricher{posts: postRepo, users: userRepo, likes: likeRepo},
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts", h.GetPosts)
	g.GET("/posts/:id", h.GetPost)
	g.PUT("/posts/:id", h.UpdatePost)
	g.DELETE("/posts/:id", h.DeletePost)
}

// CreatePost creates a new post, optionally attached to an event
func (h *PostHandler) CreatePost(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	if req.EventID != nil {
		if _, err := h.eventRepository.GetEventByID(ctx, *req.EventID); err != nil {
			return notFoundOr(err, "Event not found")
		}
	}

	post := &models.Post{
		AuthorID: userID,
		EventID:  req.EventID,
		Kind:     req.Kind,
		Content:  req.Content,
		ImageURL: req.ImageURL,
	}
	if err := h.postRepository.CreatePost(ctx, post); err != nil {
		return internalError(err)
	}
	enriched, err := h.enricher.enrich(ctx, []models.Post{*post}, userID)
	if err != nil {
		return internalError(err)
	}
	return success(c, http.StatusCreated, enriched[0])
}

// GetPost retrieves a post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id", "post")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	post, err := loadVisiblePost(ctx, h.postRepository, h.squadRepository, id, userID)
	if err != nil {
		return err
	}
	enriched, err := h.enricher.enrich(ctx, []models.Post{*post}, userID)
	if err != nil {
		return internalError(err)
	}
	return success(c, http.StatusOK, enriched[0])
}

// GetPosts lists non-squad posts, filtered by author or event
func (h *PostHandler) GetPosts(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	authorID, err := parseUintQuery(c, "author_id")
	if err != nil {
		return err
	}
	eventID, err := parseUintQuery(c, "event_id")
	if err != nil {
		return err
	}
	page, limit := pagination(c, 10)

	filter := models.PostFilter{EventID: eventID}
	if authorID != 0 {
		filter.AuthorIDs = []uint{authorID}
	}
	ctx := c.Request().Context()

	posts, total, err := h.postRepository.ListPosts(ctx, filter, page, limit)
	if err != nil {
		return internalError(err)
	}
	enriched, err := h.enricher.enrich(ctx, posts, userID)
	if err != nil {
		return internalError(err)
	}
	return paged(c, echo.Map{"posts": enriched}, page, limit, total)
}

// ownPost loads the post and checks that userID wrote it
func (h *PostHandler) ownPost(c echo.Context, userID uint) (*models.Post, error) {
	id, err := parseIDParam(c, "id", "post")
	if err != nil {
		return nil, err
	}
	post, err := h.postRepository.GetPostByID(c.Request().Context(), id)
	if err != nil {
		return nil, notFoundOr(err, "Post not found")
	}
	if post.AuthorID != userID {
		return nil, echo.NewHTTPError(http.StatusForbidden, "You can only modify your own posts")
	}
	return post, nil
}

// UpdatePost updates an existing post
func (h *PostHandler) UpdatePost(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	var req models.UpdatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	post, err := h.ownPost(c, userID)
	if err != nil {
		return err
	}

	if req.Content != nil {
		post.Content = *req.Content
	}
	if req.ImageURL != nil {
		post.ImageURL = *req.ImageURL
	}
	if err := h.postRepository.UpdatePost(c.Request().Context(), post); err != nil {
		return internalError(err)
	}
	return success(c, http.StatusOK, post)
}

// DeletePost deletes a post with its comments and reactions
func (h *PostHandler) DeletePost(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	post, err := h.ownPost(c, userID)
	if err != nil {
		return err
	}
	if err := h.postRepository.DeletePost(c.Request().Context(), post.ID); err != nil {
		return notFoundOr(err, "Post not found")
	}
	return c.NoContent(http.StatusNoContent)
}
