package handlers

import (
	"errors"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/causeconnect/backend/internal/models"
	"github.com/causeconnect/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const maxPresenceUsers = 100

// ChatHandler serves conversations, messages, presence and attachments from
// MongoDB. With no chat repository every route answers 503.
type ChatHandler struct {
	chatRepository     repositories.ChatRepository
	presenceRepository repositories.PresenceRepository
	attachments        repositories.AttachmentStore
	userRepository     repositories.UserRepository
	maxAttachmentBytes int64
}

// NewChatHandler creates a new ChatHandler. chatRepo, presenceRepo and
// attachments are nil when MongoDB is not configured.
func NewChatHandler(
	chatRepo repositories.ChatRepository,
	presenceRepo repositories.PresenceRepository,
	attachments repositories.AttachmentStore,
	userRepo repositories.UserRepository,
	maxAttachmentBytes int64,
) *ChatHandler {
	return &ChatHandler{
		chatRepository:     chatRepo,
		presenceRepository: presenceRepo,
		attachments:        attachments,
		userRepository:     userRepo,
		maxAttachmentBytes: maxAttachmentBytes,
	}
}

// RegisterChatRoutes registers chat and presence routes
func (h *ChatHandler) RegisterChatRoutes(g *echo.Group) {
	chat := g.Group("/chat", h.requireChat)
	chat.POST("/conversations", h.CreateConversation)
	chat.GET("/conversations", h.ListConversations)
	chat.GET("/conversations/:id/messages", h.ListMessages)
	chat.POST("/conversations/:id/messages", h.SendMessage)
	chat.POST("/conversations/:id/read", h.MarkRead)
	chat.POST("/conversations/:id/typing", h.SetTyping)

	chat.PUT("/presence", h.SetPresence)
	chat.GET("/presence", h.GetPresence)
	chat.GET("/presence/stream", h.StreamPresence)

	chat.POST("/attachments", h.UploadAttachment)
	chat.GET("/attachments/:id", h.DownloadAttachment)
}

func (h *ChatHandler) requireChat(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if h.chatRepository == nil || h.presenceRepository == nil || h.attachments == nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "Chat is not configured")
		}
		return next(c)
	}
}

func chatID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// loadConversation resolves :id and rejects callers outside the conversation
func (h *ChatHandler) loadConversation(c echo.Context, userID uint) (*models.Conversation, error) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid conversation ID")
	}
	conv, err := h.chatRepository.GetConversation(c.Request().Context(), id)
	if err != nil {
		return nil, notFoundOr(err, "Conversation not found")
	}
	if !conv.HasParticipant(chatID(userID)) {
		return nil, echo.NewHTTPError(http.StatusForbidden, "You are not a participant of this conversation")
	}
	return conv, nil
}

// CreateConversation opens a private conversation with recipient_id, reusing
// an existing one, or a group conversation with participant_ids.
func (h *ChatHandler) CreateConversation(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	var req models.CreateConversationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	me := chatID(userID)

	if len(req.ParticipantIDs) == 0 {
		if req.RecipientID == userID {
			return echo.NewHTTPError(http.StatusBadRequest, "Cannot start a conversation with yourself")
		}
		if _, err := h.userRepository.GetUserByID(ctx, req.RecipientID); err != nil {
			return notFoundOr(err, "User not found")
		}
		other := chatID(req.RecipientID)

		existing, err := h.chatRepository.FindPrivateConversation(ctx, me, other)
		if err == nil {
			return success(c, http.StatusOK, models.ConversationView{Conversation: *existing, UnreadCount: existing.Unread[me]})
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return internalError(err)
		}

		conv := &models.Conversation{
			Type:         models.ConversationPrivate,
			Participants: []string{me, other},
			CreatedBy:    me,
		}
		if err := h.chatRepository.CreateConversation(ctx, conv); err != nil {
			return internalError(err)
		}
		return success(c, http.StatusCreated, models.ConversationView{Conversation: *conv})
	}

	ids := uniqueIDs(append([]uint{userID}, req.ParticipantIDs...))
	if len(ids) < 3 {
		return echo.NewHTTPError(http.StatusBadRequest, "A group needs at least two other participants")
	}
	users, err := h.userRepository.GetCompactUsers(ctx, ids)
	if err != nil {
		return internalError(err)
	}
	if len(users) != len(ids) {
		return echo.NewHTTPError(http.StatusNotFound, "One or more participants not found")
	}

	participants := make([]string, len(ids))
	for i, id := range ids {
		participants[i] = chatID(id)
	}
	conv := &models.Conversation{
		Type:         models.ConversationGroup,
		Name:         req.Name,
		Participants: participants,
		CreatedBy:    me,
	}
	if err := h.chatRepository.CreateConversation(ctx, conv); err != nil {
		return internalError(err)
	}
	return success(c, http.StatusCreated, models.ConversationView{Conversation: *conv})
}

// uniqueIDs drops zero and repeated ids, keeping first occurrence order
func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// ListConversations returns the caller's conversations, latest activity first
func (h *ChatHandler) ListConversations(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > 100 {
		limit = 50
	}
	me := chatID(userID)

	conversations, err := h.chatRepository.ListConversations(c.Request().Context(), me, int64(limit))
	if err != nil {
		return internalError(err)
	}
	views := make([]models.ConversationView, len(conversations))
	for i, conv := range conversations {
		views[i] = models.ConversationView{Conversation: conv, UnreadCount: conv.Unread[me]}
	}
	return success(c, http.StatusOK, echo.Map{"conversations": views})
}

// ListMessages pages backwards through a conversation with ?before=<RFC3339>
func (h *ChatHandler) ListMessages(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	conv, err := h.loadConversation(c, userID)
	if err != nil {
		return err
	}

	var before time.Time
	if raw := c.QueryParam("before"); raw != "" {
		before, err = time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "before must be an RFC3339 timestamp")
		}
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > 100 {
		limit = 50
	}

	messages, err := h.chatRepository.ListMessages(c.Request().Context(), conv.ID, before, int64(limit))
	if err != nil {
		return internalError(err)
	}
	return success(c, http.StatusOK, echo.Map{"messages": messages, "hasMore": len(messages) == limit})
}

// SendMessage stores a message and bumps the unread counters of the other participants
func (h *ChatHandler) SendMessage(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	var req models.SendMessageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	content := strings.TrimSpace(req.Content)
	if content == "" && len(req.AttachmentIDs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Message must have content or attachments")
	}
	conv, err := h.loadConversation(c, userID)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	msg := &models.Message{SenderID: chatID(userID), Content: content}
	if len(req.AttachmentIDs) > 0 {
		msg.Attachments, err = h.attachments.Stat(ctx, req.AttachmentIDs)
		if err != nil {
			return notFoundOr(err, "Attachment not found")
		}
	}
	if err := h.chatRepository.CreateMessage(ctx, conv, msg); err != nil {
		return internalError(err)
	}
	return success(c, http.StatusCreated, msg)
}

func (h *ChatHandler) MarkRead(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	conv, err := h.loadConversation(c, userID)
	if err != nil {
		return err
	}
	updated, err := h.chatRepository.MarkRead(c.Request().Context(), conv.ID, chatID(userID))
	if err != nil {
		return notFoundOr(err, "Conversation not found")
	}
	return success(c, http.StatusOK, echo.Map{"updated": updated, "unread_count": 0})
}

func (h *ChatHandler) SetTyping(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	var req models.TypingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	conv, err := h.loadConversation(c, userID)
	if err != nil {
		return err
	}
	if err := h.chatRepository.SetTyping(c.Request().Context(), conv.ID, chatID(userID), req.Typing); err != nil {
		return notFoundOr(err, "Conversation not found")
	}
	return success(c, http.StatusOK, echo.Map{"typing": req.Typing})
}

func (h *ChatHandler) SetPresence(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	var req models.PresenceRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	presence, err := h.presenceRepository.SetStatus(c.Request().Context(), chatID(userID), req.Status)
	if err != nil {
		return internalError(err)
	}
	return success(c, http.StatusOK, presence)
}

func (h *ChatHandler) GetPresence(c echo.Context) error {
	if _, err := requireUser(c); err != nil {
		return err
	}
	ids, err := parseUserIDList(c.QueryParam("user_ids"))
	if err != nil {
		return err
	}
	presence, err := h.presenceRepository.GetPresence(c.Request().Context(), ids)
	if err != nil {
		return internalError(err)
	}
	return success(c, http.StatusOK, echo.Map{"presence": presence})
}

// parseUserIDList parses a comma separated list of user ids into sorted, unique chat ids
func parseUserIDList(raw string) ([]string, error) {
	seen := map[string]bool{}
	var ids []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 32)
		if err != nil || id == 0 {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid user_ids")
		}
		s := strconv.FormatUint(id, 10)
		if !seen[s] {
			seen[s] = true
			ids = append(ids, s)
		}
	}
	if len(ids) == 0 {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "user_ids is required")
	}
	if len(ids) > maxPresenceUsers {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Too many user_ids")
	}
	sort.Strings(ids)
	return ids, nil
}

// UploadAttachment stores the multipart "file" field in GridFS
func (h *ChatHandler) UploadAttachment(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	if fh.Size > h.maxAttachmentBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "Attachment too large")
	}
	src, err := fh.Open()
	if err != nil {
		return internalError(err)
	}
	defer src.Close()

	contentType := fh.Header.Get(echo.HeaderContentType)
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	attachment, err := h.attachments.Upload(c.Request().Context(), fh.Filename, contentType, chatID(userID),
		io.LimitReader(src, h.maxAttachmentBytes))
	if err != nil {
		return internalError(err)
	}
	return success(c, http.StatusCreated, attachment)
}

func (h *ChatHandler) DownloadAttachment(c echo.Context) error {
	if _, err := requireUser(c); err != nil {
		return err
	}
	stream, attachment, err := h.attachments.Open(c.Request().Context(), c.Param("id"))
	if err != nil {
		return notFoundOr(err, "Attachment not found")
	}
	defer stream.Close()

	contentType := attachment.ContentType
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `inline; filename="`+strings.ReplaceAll(attachment.Filename, `"`, "")+`"`)
	c.Response().Header().Set(echo.HeaderContentLength, strconv.FormatInt(attachment.Size, 10))
	return c.Stream(http.StatusOK, contentType, stream)
}
