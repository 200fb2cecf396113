package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/causeconnect/backend/internal/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const claimsKey = "user"

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrWrongTokenType = errors.New("wrong token type")
)

// JWTAuthMiddleware checks for a valid access token and stores the user claims.
// When firebase is non-nil a Firebase ID token is accepted in its place.
func JWTAuthMiddleware(secret string, firebase *FirebaseResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, err := bearerToken(c)
			if err != nil {
				return err
			}

			claims, err := ParseToken(secret, tokenString, models.TokenTypeAccess)
			if err != nil && firebase != nil && !errors.Is(err, ErrWrongTokenType) {
				claims, err = firebase.Resolve(c.Request().Context(), tokenString)
			}
			if err != nil {
				if errors.Is(err, ErrWrongTokenType) {
					return echo.NewHTTPError(http.StatusUnauthorized, "Access token required")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
			}

			c.Set(claimsKey, claims)
			return next(c)
		}
	}
}

// ParseToken validates an HS256 token signed with secret and checks its type
func ParseToken(secret, tokenString, tokenType string) (*models.JwtCustomClaims, error) {
	claims := &models.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != tokenType {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

// UserIDFromContext returns the authenticated user's id
func UserIDFromContext(c echo.Context) (uint, error) {
	claims, ok := c.Get(claimsKey).(*models.JwtCustomClaims)
	if !ok || claims == nil || claims.UserID == 0 {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}
	return claims.UserID, nil
}

func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" && c.IsWebSocket() {
		if token := c.QueryParam("access_token"); token != "" {
			return token, nil
		}
	}
	if authHeader == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
	}

	// Expecting "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
	}
	return parts[1], nil
}
