package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/causeconnect/backend/internal/middleware"
	"github.com/causeconnect/backend/internal/models"
	"github.com/causeconnect/backend/internal/repositories"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// TokenConfig controls the issued JWT pair
type TokenConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	userRepository     repositories.UserRepository
	presenceRepository repositories.PresenceRepository
	firebaseAuth       middleware.TokenVerifier
	tokens             TokenConfig
}

// NewAuthHandler creates a new AuthHandler. firebaseAuth and presenceRepo may be nil.
func NewAuthHandler(userRepo repositories.UserRepository, presenceRepo repositories.PresenceRepository, firebaseAuth middleware.TokenVerifier, tokens TokenConfig) *AuthHandler {
	return &AuthHandler{
		userRepository:     userRepo,
		presenceRepository: presenceRepo,
		firebaseAuth:       firebaseAuth,
		tokens:             tokens,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group, protected echo.MiddlewareFunc) {
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.POST("/refresh", h.Refresh)
	g.POST("/firebase-login", h.FirebaseLogin)
	g.POST("/logout", h.Logout, protected)
}

type authResponse struct {
	models.TokenPair
	User *models.User `json:"user"`
}

// Register handles local user registration with email and password
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.CreateLocalUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	if _, err := h.userRepository.GetUserByEmail(ctx, req.Email); err == nil {
		return echo.NewHTTPError(http.StatusConflict, "User with this email already registered")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return internalError(err)
	}
	if _, err := h.userRepository.GetUserByUsername(ctx, req.Username); err == nil {
		return echo.NewHTTPError(http.StatusConflict, "Username already taken")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return internalError(err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return internalError(err)
	}

	user := &models.User{
		Name:     req.Name,
		Username: req.Username,
		Email:    strings.ToLower(req.Email),
		Password: string(hashedPassword),
	}
	if err := h.userRepository.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return echo.NewHTTPError(http.StatusConflict, "User already registered")
		}
		return internalError(err)
	}

	pair, err := h.issueTokens(user)
	if err != nil {
		return internalError(err)
	}
	return success(c, http.StatusCreated, authResponse{TokenPair: *pair, User: user})
}

// Login handles local user authentication with email and password
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	user, err := h.userRepository.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
		}
		return internalError(err)
	}
	if user.Password == "" || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}

	pair, err := h.issueTokens(user)
	if err != nil {
		return internalError(err)
	}
	h.setPresence(c, user.ID, models.PresenceOnline)
	return success(c, http.StatusOK, authResponse{TokenPair: *pair, User: user})
}

// Refresh exchanges a refresh token for a new pair
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req models.RefreshRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	claims, err := middleware.ParseToken(h.tokens.Secret, req.RefreshToken, models.TokenTypeRefresh)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired refresh token")
	}
	user, err := h.userRepository.GetUserByID(c.Request().Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired refresh token")
		}
		return internalError(err)
	}

	pair, err := h.issueTokens(user)
	if err != nil {
		return internalError(err)
	}
	return success(c, http.StatusOK, authResponse{TokenPair: *pair, User: user})
}

// FirebaseLogin verifies a Firebase ID token and issues a local JWT pair,
// creating or linking the account on first use
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	if h.firebaseAuth == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Firebase login is not configured")
	}
	var req models.FirebaseLoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	token, err := h.firebaseAuth.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Firebase ID token")
	}
	email, _ := token.Claims["email"].(string)
	name, _ := token.Claims["name"].(string)
	picture, _ := token.Claims["picture"].(string)
	email = strings.ToLower(email)

	user, err := h.userRepository.GetUserByFirebaseUID(ctx, token.UID)
	switch {
	case err == nil:
	case !errors.Is(err, repositories.ErrNotFound):
		return internalError(err)
	case email == "":
		return echo.NewHTTPError(http.StatusBadRequest, "Firebase account has no email")
	default:
		user, err = h.linkOrCreate(c, token.UID, email, name, picture)
		if err != nil {
			return err
		}
	}

	pair, err := h.issueTokens(user)
	if err != nil {
		return internalError(err)
	}
	h.setPresence(c, user.ID, models.PresenceOnline)
	return success(c, http.StatusOK, authResponse{TokenPair: *pair, User: user})
}

func (h *AuthHandler) linkOrCreate(c echo.Context, firebaseUID, email, name, picture string) (*models.User, error) {
	ctx := c.Request().Context()
	uid := firebaseUID

	user, err := h.userRepository.GetUserByEmail(ctx, email)
	if err == nil {
		user.FirebaseUID = &uid
		if user.AvatarURL == "" {
			user.AvatarURL = picture
		}
		if err := h.userRepository.UpdateUser(ctx, user); err != nil {
			return nil, internalError(err)
		}
		return user, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, internalError(err)
	}

	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	user = &models.User{
		Name:        name,
		Username:    h.availableUsername(c, email),
		Email:       email,
		FirebaseUID: &uid,
		AvatarURL:   picture,
	}
	if err := h.userRepository.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return nil, echo.NewHTTPError(http.StatusConflict, "Account already exists")
		}
		return nil, internalError(err)
	}
	return user, nil
}

// availableUsername derives a free username from the email local part
func (h *AuthHandler) availableUsername(c echo.Context, email string) string {
	var b strings.Builder
	for _, r := range strings.SplitN(email, "@", 2)[0] {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	base := b.String()
	if len(base) < 3 {
		base = "user" + base
	}
	if len(base) > 40 {
		base = base[:40]
	}
	candidate := base
	for i := 1; i < 100; i++ {
		if _, err := h.userRepository.GetUserByUsername(c.Request().Context(), candidate); errors.Is(err, repositories.ErrNotFound) {
			return candidate
		}
		candidate = base + strconv.Itoa(i)
	}
	return base + strconv.FormatInt(time.Now().UnixNano()%1e6, 10)
}

// Logout marks the caller offline. Tokens are stateless and simply expire.
func (h *AuthHandler) Logout(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	h.setPresence(c, userID, models.PresenceOffline)
	return success(c, http.StatusOK, echo.Map{"logged_out": true})
}

func (h *AuthHandler) setPresence(c echo.Context, userID uint, status string) {
	if h.presenceRepository == nil {
		return
	}
	if _, err := h.presenceRepository.SetStatus(c.Request().Context(), strconv.FormatUint(uint64(userID), 10), status); err != nil {
		log.Warn().Err(err).Uint("user_id", userID).Msg("Failed to update presence")
	}
}

func (h *AuthHandler) issueTokens(user *models.User) (*models.TokenPair, error) {
	now := time.Now()
	accessExpiry := now.Add(h.tokens.AccessTTL)

	access, err := h.signToken(user, models.TokenTypeAccess, now, accessExpiry)
	if err != nil {
		return nil, err
	}
	refresh, err := h.signToken(user, models.TokenTypeRefresh, now, now.Add(h.tokens.RefreshTTL))
	if err != nil {
		return nil, err
	}
	return &models.TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresAt: accessExpiry}, nil
}

func (h *AuthHandler) signToken(user *models.User, tokenType string, issuedAt, expiresAt time.Time) (string, error) {
	claims := &models.JwtCustomClaims{
		UserID:    user.ID,
		Email:     user.Email,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.tokens.Secret))
}
