package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/causeconnect/backend/internal/models"
	"github.com/causeconnect/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// SquadHandler handles squads, their members and their feeds
type SquadHandler struct {
	squadRepository repositories.SquadRepository
	postRepository  repositories.PostRepository
	userRepository  repositories.UserRepository
	enricher        postEnricher
}

// NewSquadHandler creates a new SquadHandler
func NewSquadHandler(
	squadRepo repositories.SquadRepository,
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	likeRepo repositories.LikeRepository,
) *SquadHandler {
	return &SquadHandler{
		squadRepository: squadRepo,
		postRepository:  postRepo,
		userRepository:  userRepo,
		enricher:        postEnricher{posts: postRepo, users: userRepo, likes: likeRepo},
	}
}

// RegisterSquadRoutes registers squad-related routes
func (h *SquadHandler) RegisterSquadRoutes(g *echo.Group) {
	g.POST("/squads", h.CreateSquad)
	g.GET("/squads", h.ListSquads)
	g.GET("/squads/:id", h.GetSquad)
	g.PATCH("/squads/:id", h.UpdateSquad)
	g.DELETE("/squads/:id", h.DeleteSquad)

	g.POST("/squads/:id/join", h.JoinSquad)
	g.POST("/squads/:id/leave", h.LeaveSquad)
	g.GET("/squads/:id/members", h.GetMembers)
	g.PATCH("/squads/:id/members/:user_id", h.UpdateMemberRole)
	g.DELETE("/squads/:id/members/:user_id", h.RemoveMember)

	g.GET("/squads/:id/posts", h.GetSquadPosts)
	g.POST("/squads/:id/posts", h.CreateSquadPost)
	g.POST("/squads/:id/posts/:post_id/react", h.ToggleReaction)
}

func (h *SquadHandler) summarize(ctx context.Context, squads []models.Squad, viewerID uint) ([]models.SquadSummary, error) {
	ids := make([]uint, len(squads))
	for i, s := range squads {
		ids[i] = s.ID
	}
	members, err := h.squadRepository.CountMembers(ctx, ids)
	if err != nil {
		return nil, err
	}
	roles, err := h.squadRepository.MemberRoles(ctx, viewerID, ids)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.SquadSummary, len(squads))
	for i, s := range squads {
		summaries[i] = models.SquadSummary{Squad: s, MembersCount: members[s.ID], Role: roles[s.ID]}
	}
	return summaries, nil
}

func (h *SquadHandler) loadSquad(c echo.Context) (*models.Squad, error) {
	id, err := parseIDParam(c, "id", "squad")
	if err != nil {
		return nil, err
	}
	squad, err := h.squadRepository.GetSquadByID(c.Request().Context(), id)
	if err != nil {
		return nil, notFoundOr(err, "Squad not found")
	}
	return squad, nil
}

// role returns the user's role in the squad, or "" for non-members
func (h *SquadHandler) role(ctx context.Context, squadID, userID uint) (string, error) {
	member, err := h.squadRepository.GetMember(ctx, squadID, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return member.Role, nil
}

// requireRole loads the squad and rejects callers whose role is not in allowed.
// An empty allowed list accepts any member.
func (h *SquadHandler) requireRole(c echo.Context, userID uint, allowed ...string) (*models.Squad, string, error) {
	squad, err := h.loadSquad(c)
	if err != nil {
		return nil, "", err
	}
	role, err := h.role(c.Request().Context(), squad.ID, userID)
	if err != nil {
		return nil, "", internalError(err)
	}
	if role == "" {
		return nil, "", echo.NewHTTPError(http.StatusForbidden, "You are not a member of this squad")
	}
	if len(allowed) == 0 {
		return squad, role, nil
	}
	for _, r := range allowed {
		if r == role {
			return squad, role, nil
		}
	}
	return nil, "", echo.NewHTTPError(http.StatusForbidden, "Insufficient squad permissions")
}

// CreateSquad creates a squad with the caller as its admin
func (h *SquadHandler) CreateSquad(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	var req models.CreateSquadRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	squad := &models.Squad{
		OwnerID:     userID,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		AvatarURL:   req.AvatarURL,
		IsPrivate:   req.IsPrivate,
	}
	if err := h.squadRepository.CreateSquad(c.Request().Context(), squad); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return echo.NewHTTPError(http.StatusConflict, "Squad name already taken")
		}
		return internalError(err)
	}
	return success(c, http.StatusCreated, models.SquadSummary{Squad: *squad, MembersCount: 1, Role: models.SquadRoleAdmin})
}

func (h *SquadHandler) ListSquads(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	page, limit := pagination(c, 20)
	ctx := c.Request().Context()

	squads, total, err := h.squadRepository.ListSquads(ctx, c.QueryParam("q"), c.QueryParam("category"), page, limit)
	if err != nil {
		return internalError(err)
	}
	summaries, err := h.summarize(ctx, squads, userID)
	if err != nil {
		return internalError(err)
	}
	return paged(c, echo.Map{"squads": summaries}, page, limit, total)
}

func (h *SquadHandler) GetSquad(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	squad, err := h.loadSquad(c)
	if err != nil {
		return err
	}
	summaries, err := h.summarize(c.Request().Context(), []models.Squad{*squad}, userID)
	if err != nil {
		return internalError(err)
	}
	return success(c, http.StatusOK, summaries[0])
}

// UpdateSquad changes squad details; admins only
func (h *SquadHandler) UpdateSquad(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	var req models.UpdateSquadRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	squad, _, err := h.requireRole(c, userID, models.SquadRoleAdmin)
	if err != nil {
		return err
	}

	if req.Name != nil {
		squad.Name = *req.Name
	}
	if req.Description != nil {
		squad.Description = *req.Description
	}
	if req.Category != nil {
		squad.Category = *req.Category
	}
	if req.AvatarURL != nil {
		squad.AvatarURL = *req.AvatarURL
	}
	if req.IsPrivate != nil {
		squad.IsPrivate = *req.IsPrivate
	}
	if err := h.squadRepository.UpdateSquad(c.Request().Context(), squad); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return echo.NewHTTPError(http.StatusConflict, "Squad name already taken")
		}
		return internalError(err)
	}
	return success(c, http.StatusOK, squad)
}

// DeleteSquad removes the squad with its members and posts; owner only
func (h *SquadHandler) DeleteSquad(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	squad, err := h.loadSquad(c)
	if err != nil {
		return err
	}
	if squad.OwnerID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "Only the owner can delete a squad")
	}
	if err := h.squadRepository.DeleteSquad(c.Request().Context(), squad.ID); err != nil {
		return notFoundOr(err, "Squad not found")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *SquadHandler) JoinSquad(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	squad, err := h.loadSquad(c)
	if err != nil {
		return err
	}
	if err := h.squadRepository.AddMember(c.Request().Context(), squad.ID, userID, models.SquadRoleMember); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return echo.NewHTTPError(http.StatusConflict, "Already a member of this squad")
		}
		return internalError(err)
	}
	return success(c, http.StatusOK, echo.Map{"joined": true, "role": models.SquadRoleMember})
}

func (h *SquadHandler) LeaveSquad(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	squad, err := h.loadSquad(c)
	if err != nil {
		return err
	}
	if squad.OwnerID == userID {
		return echo.NewHTTPError(http.StatusBadRequest, "The owner cannot leave the squad")
	}
	if err := h.squadRepository.RemoveMember(c.Request().Context(), squad.ID, userID); err != nil {
		return notFoundOr(err, "You are not a member of this squad")
	}
	return success(c, http.StatusOK, echo.Map{"joined": false})
}

func (h *SquadHandler) GetMembers(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	squad, err := h.loadSquad(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if err := h.checkReadable(ctx, squad, userID); err != nil {
		return err
	}

	members, err := h.squadRepository.GetMembers(ctx, squad.ID)
	if err != nil {
		return internalError(err)
	}
	userIDs := make([]uint, len(members))
	for i, m := range members {
		userIDs[i] = m.UserID
	}
	users, err := h.userRepository.GetCompactUsers(ctx, userIDs)
	if err != nil {
		return internalError(err)
	}
	views := make([]models.SquadMemberView, len(members))
	for i, m := range members {
		views[i] = models.SquadMemberView{SquadMember: m}
		if u, ok := users[m.UserID]; ok {
			views[i].User = &u
		}
	}
	return success(c, http.StatusOK, echo.Map{"members": views, "count": len(views)})
}

// UpdateMemberRole lets admins change another member's role. The owner stays admin.
func (h *SquadHandler) UpdateMemberRole(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	memberID, err := parseIDParam(c, "user_id", "user")
	if err != nil {
		return err
	}
	var req models.UpdateMemberRoleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	squad, _, err := h.requireRole(c, userID, models.SquadRoleAdmin)
	if err != nil {
		return err
	}
	if memberID == squad.OwnerID {
		return echo.NewHTTPError(http.StatusBadRequest, "The owner's role cannot be changed")
	}
	if err := h.squadRepository.UpdateMemberRole(c.Request().Context(), squad.ID, memberID, req.Role); err != nil {
		return notFoundOr(err, "Member not found")
	}
	return success(c, http.StatusOK, echo.Map{"user_id": memberID, "role": req.Role})
}

// RemoveMember removes someone from the squad. Admins may remove anyone but the
// owner; moderators may only remove plain members.
func (h *SquadHandler) RemoveMember(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	memberID, err := parseIDParam(c, "user_id", "user")
	if err != nil {
		return err
	}
	squad, role, err := h.requireRole(c, userID, models.SquadRoleAdmin, models.SquadRoleModerator)
	if err != nil {
		return err
	}
	if memberID == squad.OwnerID {
		return echo.NewHTTPError(http.StatusBadRequest, "The owner cannot be removed")
	}
	ctx := c.Request().Context()

	target, err := h.squadRepository.GetMember(ctx, squad.ID, memberID)
	if err != nil {
		return notFoundOr(err, "Member not found")
	}
	if role == models.SquadRoleModerator && target.Role != models.SquadRoleMember {
		return echo.NewHTTPError(http.StatusForbidden, "Moderators can only remove members")
	}
	if err := h.squadRepository.RemoveMember(ctx, squad.ID, memberID); err != nil {
		return notFoundOr(err, "Member not found")
	}
	return c.NoContent(http.StatusNoContent)
}

// checkReadable hides private squads from non-members
func (h *SquadHandler) checkReadable(ctx context.Context, squad *models.Squad, userID uint) error {
	if !squad.IsPrivate {
		return nil
	}
	role, err := h.role(ctx, squad.ID, userID)
	if err != nil {
		return internalError(err)
	}
	if role == "" {
		return echo.NewHTTPError(http.StatusForbidden, "This squad is private")
	}
	return nil
}

func (h *SquadHandler) GetSquadPosts(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	squad, err := h.loadSquad(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if err := h.checkReadable(ctx, squad, userID); err != nil {
		return err
	}
	page, limit := pagination(c, 10)

	posts, total, err := h.postRepository.ListPosts(ctx, models.PostFilter{SquadID: &squad.ID}, page, limit)
	if err != nil {
		return internalError(err)
	}
	enriched, err := h.enricher.enrich(ctx, posts, userID)
	if err != nil {
		return internalError(err)
	}
	return paged(c, echo.Map{"posts": enriched}, page, limit, total)
}

// CreateSquadPost publishes a post to the squad feed; members only
func (h *SquadHandler) CreateSquadPost(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	squad, _, err := h.requireRole(c, userID)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	squadID := squad.ID
	post := &models.Post{
		AuthorID: userID,
		SquadID:  &squadID,
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

// ToggleReaction adds or removes an emoji reaction on a squad post
func (h *SquadHandler) ToggleReaction(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	postID, err := parseIDParam(c, "post_id", "post")
	if err != nil {
		return err
	}
	var req models.ReactRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	squad, err := h.loadSquad(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if err := h.checkReadable(ctx, squad, userID); err != nil {
		return err
	}

	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		return notFoundOr(err, "Post not found")
	}
	if post.SquadID == nil || *post.SquadID != squad.ID {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found in this squad")
	}

	reacted, err := h.squadRepository.ToggleReaction(ctx, userID, post.ID, req.Emoji)
	if err != nil {
		return internalError(err)
	}
	counts, err := h.squadRepository.GetReactionCounts(ctx, post.ID)
	if err != nil {
		return internalError(err)
	}
	return success(c, http.StatusOK, echo.Map{"reacted": reacted, "emoji": req.Emoji, "reactions": counts})
}
