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

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	commentRepository     repositories.CommentRepository
	commentLikeRepository repositories.CommentLikeRepository
	postRepository        repositories.PostRepository
	eventRepository       repositories.EventRepository
	squadRepository       repositories.SquadRepository
	userRepository        repositories.UserRepository
	likeRepository        repositories.LikeRepository
	notifier              *notifier.Emitter
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(
	commentRepo repositories.CommentRepository,
	commentLikeRepo repositories.CommentLikeRepository,
	postRepo repositories.PostRepository,
	eventRepo repositories.EventRepository,
	squadRepo repositories.SquadRepository,
	userRepo repositories.UserRepository,
	likeRepo repositories.LikeRepository,
	emitter *notifier.Emitter,
) *CommentHandler {
	return &CommentHandler{
		commentRepository:     commentRepo,
		commentLikeRepository: commentLikeRepo,
		postRepository:        postRepo,
		eventRepository:       eventRepo,
		squadRepository:       squadRepo,
		userRepository:        userRepo,
		likeRepository:        likeRepo,
		notifier:              emitter,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/comments", h.CreateComment)
	g.GET("/posts/:id/comments", h.GetCommentsByPostID)
	g.GET("/events/:id/comments", h.GetCommentsByEventID)
	g.PUT("/comments/:id", h.UpdateComment)
	g.DELETE("/comments/:id", h.DeleteComment)
	g.POST("/comments/:id/like", h.ToggleLike)
	g.POST("/comments/:id/bookmark", h.ToggleBookmark)
	g.POST("/comments/:id/award", h.AwardComment)
}

// CreateComment comments on exactly one post or event, optionally replying to
// a comment on the same target. The target owner and the parent author are notified.
func (h *CommentHandler) CreateComment(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if (req.PostID == nil) == (req.EventID == nil) {
		return echo.NewHTTPError(http.StatusBadRequest, "Exactly one of post_id or event_id is required")
	}
	ctx := c.Request().Context()

	var ownerID uint
	if req.PostID != nil {
		post, err := loadVisiblePost(ctx, h.postRepository, h.squadRepository, *req.PostID, userID)
		if err != nil {
			return err
		}
		ownerID = post.AuthorID
	} else {
		event, err := h.eventRepository.GetEventByID(ctx, *req.EventID)
		if err != nil {
			return notFoundOr(err, "Event not found")
		}
		ownerID = event.OwnerID
	}

	var parent *models.Comment
	if req.ParentID != nil {
		parent, err = h.commentRepository.GetCommentByID(ctx, *req.ParentID)
		if err != nil {
			return notFoundOr(err, "Parent comment not found")
		}
		if !sameTarget(parent, req.PostID, req.EventID) {
			return echo.NewHTTPError(http.StatusBadRequest, "Parent comment belongs to a different target")
		}
	}

	comment := &models.Comment{
		AuthorID: userID,
		PostID:   req.PostID,
		EventID:  req.EventID,
		ParentID: req.ParentID,
		Content:  req.Content,
	}
	if err := h.commentRepository.CreateComment(ctx, comment); err != nil {
		return internalError(err)
	}

	if actor, err := h.userRepository.GetUserByID(ctx, userID); err == nil {
		h.notifier.Emit(ctx, notifier.Comment(actor, ownerID, comment, false))
		if parent != nil && parent.AuthorID != ownerID {
			h.notifier.Emit(ctx, notifier.Comment(actor, parent.AuthorID, comment, true))
		}
	}

	node := &models.CommentNode{Comment: *comment, Replies: []*models.CommentNode{}}
	if authors, err := h.userRepository.GetCompactUsers(ctx, []uint{userID}); err == nil {
		if author, ok := authors[userID]; ok {
			node.Author = &author
		}
	}
	return success(c, http.StatusCreated, node)
}

func sameTarget(parent *models.Comment, postID, eventID *uint) bool {
	if postID != nil {
		return parent.PostID != nil && *parent.PostID == *postID
	}
	return parent.EventID != nil && eventID != nil && *parent.EventID == *eventID
}

// GetCommentsByPostID returns the comment tree of a post
func (h *CommentHandler) GetCommentsByPostID(c echo.Context) error {
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
	comments, err := h.commentRepository.GetCommentsByPostID(ctx, postID)
	if err != nil {
		return internalError(err)
	}
	return h.respondTree(c, comments, userID)
}

// GetCommentsByEventID returns the comment tree of an event
func (h *CommentHandler) GetCommentsByEventID(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	eventID, err := parseIDParam(c, "id", "event")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	if _, err := h.eventRepository.GetEventByID(ctx, eventID); err != nil {
		return notFoundOr(err, "Event not found")
	}
	comments, err := h.commentRepository.GetCommentsByEventID(ctx, eventID)
	if err != nil {
		return internalError(err)
	}
	return h.respondTree(c, comments, userID)
}

func (h *CommentHandler) respondTree(c echo.Context, comments []models.Comment, viewerID uint) error {
	roots, err := h.buildTree(c.Request().Context(), comments, viewerID)
	if err != nil {
		return internalError(err)
	}
	return success(c, http.StatusOK, echo.Map{"comments": roots, "total": len(comments)})
}

// buildTree nests comments under their parents, keeping creation order.
// Replies whose parent is missing are promoted to roots.
func (h *CommentHandler) buildTree(ctx context.Context, comments []models.Comment, viewerID uint) ([]*models.CommentNode, error) {
	ids := make([]uint, len(comments))
	authorIDs := make([]uint, len(comments))
	for i, cm := range comments {
		ids[i] = cm.ID
		authorIDs[i] = cm.AuthorID
	}

	authors, err := h.userRepository.GetCompactUsers(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	likes, err := h.commentLikeRepository.CountLikes(ctx, ids)
	if err != nil {
		return nil, err
	}
	liked, err := h.commentLikeRepository.LikedCommentIDs(ctx, viewerID, ids)
	if err != nil {
		return nil, err
	}
	awards, err := h.commentLikeRepository.AwardCounts(ctx, ids)
	if err != nil {
		return nil, err
	}

	nodes := make(map[uint]*models.CommentNode, len(comments))
	for _, cm := range comments {
		node := &models.CommentNode{
			Comment:     cm,
			LikesCount:  likes[cm.ID],
			AwardCounts: awards[cm.ID],
			IsLiked:     liked[cm.ID],
			Replies:     []*models.CommentNode{},
		}
		if author, ok := authors[cm.AuthorID]; ok {
			node.Author = &author
		}
		nodes[cm.ID] = node
	}

	roots := []*models.CommentNode{}
	for _, cm := range comments {
		node := nodes[cm.ID]
		if cm.ParentID != nil {
			if parent, ok := nodes[*cm.ParentID]; ok {
				parent.Replies = append(parent.Replies, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots, nil
}

// ownComment loads the comment and checks that userID wrote it
func (h *CommentHandler) ownComment(c echo.Context, userID uint) (*models.Comment, error) {
	id, err := parseIDParam(c, "id", "comment")
	if err != nil {
		return nil, err
	}
	comment, err := h.commentRepository.GetCommentByID(c.Request().Context(), id)
	if err != nil {
		return nil, notFoundOr(err, "Comment not found")
	}
	if comment.AuthorID != userID {
		return nil, echo.NewHTTPError(http.StatusForbidden, "You can only modify your own comments")
	}
	return comment, nil
}

// UpdateComment updates an existing comment
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	var req models.UpdateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	comment, err := h.ownComment(c, userID)
	if err != nil {
		return err
	}
	comment.Content = req.Content
	if err := h.commentRepository.UpdateComment(c.Request().Context(), comment); err != nil {
		return internalError(err)
	}
	return success(c, http.StatusOK, comment)
}

// DeleteComment deletes a comment and all of its replies
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	comment, err := h.ownComment(c, userID)
	if err != nil {
		return err
	}
	if err := h.commentRepository.DeleteComment(c.Request().Context(), comment.ID); err != nil {
		return notFoundOr(err, "Comment not found")
	}
	return c.NoContent(http.StatusNoContent)
}

// loadVisibleComment loads a comment the viewer may act on. Comments under
// private squad posts are only visible to members.
func (h *CommentHandler) loadVisibleComment(c echo.Context, viewerID uint) (*models.Comment, error) {
	id, err := parseIDParam(c, "id", "comment")
	if err != nil {
		return nil, err
	}
	ctx := c.Request().Context()
	comment, err := h.commentRepository.GetCommentByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Comment not found")
	}
	if comment.PostID != nil {
		if _, err := loadVisiblePost(ctx, h.postRepository, h.squadRepository, *comment.PostID, viewerID); err != nil {
			return nil, err
		}
	}
	return comment, nil
}

func (h *CommentHandler) ToggleLike(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	comment, err := h.loadVisibleComment(c, userID)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	liked, err := h.commentLikeRepository.ToggleCommentLike(ctx, userID, comment.ID)
	if err != nil {
		return internalError(err)
	}
	if liked {
		if actor, err := h.userRepository.GetUserByID(ctx, userID); err == nil {
			h.notifier.Emit(ctx, notifier.CommentLike(actor, comment))
		}
	}
	count, err := h.commentLikeRepository.GetLikesCount(ctx, comment.ID)
	if err != nil {
		return internalError(err)
	}
	return success(c, http.StatusOK, echo.Map{"liked": liked, "likes_count": count})
}

func (h *CommentHandler) ToggleBookmark(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	comment, err := h.loadVisibleComment(c, userID)
	if err != nil {
		return err
	}
	bookmarked, err := h.likeRepository.ToggleBookmark(c.Request().Context(), userID, models.BookmarkComment, comment.ID)
	if err != nil {
		return internalError(err)
	}
	return success(c, http.StatusOK, echo.Map{"bookmarked": bookmarked})
}

// AwardComment gives a badge to someone else's comment, once per badge
func (h *CommentHandler) AwardComment(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	var req models.AwardCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	comment, err := h.loadVisibleComment(c, userID)
	if err != nil {
		return err
	}
	if comment.AuthorID == userID {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot award your own comment")
	}
	ctx := c.Request().Context()

	award := &models.CommentAward{CommentID: comment.ID, GiverID: userID, Award: req.Award}
	if err := h.commentLikeRepository.CreateAward(ctx, award); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return echo.NewHTTPError(http.StatusConflict, "Award already given")
		}
		return internalError(err)
	}
	if actor, err := h.userRepository.GetUserByID(ctx, userID); err == nil {
		h.notifier.Emit(ctx, notifier.Award(actor, comment, req.Award))
	}

	counts, err := h.commentLikeRepository.AwardCounts(ctx, []uint{comment.ID})
	if err != nil {
		return internalError(err)
	}
	return success(c, http.StatusCreated, echo.Map{"award": award, "award_counts": counts[comment.ID]})
}
