package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/causeconnect/backend/internal/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const secret = "middleware-test-secret"

func sign(t *testing.T, key string, claims *models.JwtCustomClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return token
}

func claimsFor(userID uint, tokenType string, expiresIn time.Duration) *models.JwtCustomClaims {
	return &models.JwtCustomClaims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	}
}

func TestParseToken(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"valid access", sign(t, secret, claimsFor(7, models.TokenTypeAccess, time.Hour)), nil},
		{"refresh used as access", sign(t, secret, claimsFor(7, models.TokenTypeRefresh, time.Hour)), ErrWrongTokenType},
		{"expired", sign(t, secret, claimsFor(7, models.TokenTypeAccess, -time.Minute)), ErrInvalidToken},
		{"other key", sign(t, "other", claimsFor(7, models.TokenTypeAccess, time.Hour)), ErrInvalidToken},
		{"no user", sign(t, secret, claimsFor(0, models.TokenTypeAccess, time.Hour)), ErrInvalidToken},
		{"garbage", "abc.def.ghi", ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ParseToken(secret, tt.token, models.TokenTypeAccess)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, uint(7), claims.UserID)
		})
	}
}

type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	args := m.Called(ctx, idToken)
	token, _ := args.Get(0).(*auth.Token)
	return token, args.Error(1)
}

type MockUsers struct {
	mock.Mock
}

func (m *MockUsers) GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error) {
	args := m.Called(ctx, firebaseUID)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

// serve runs the middleware around a handler echoing the resolved user id
func serve(mw echo.MiddlewareFunc, req *http.Request) *httptest.ResponseRecorder {
	e := echo.New()
	e.GET("/me", func(c echo.Context) error {
		id, err := UserIDFromContext(c)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, echo.Map{"id": id})
	}, mw)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthMiddleware(t *testing.T) {
	mw := JWTAuthMiddleware(secret, nil)
	access := sign(t, secret, claimsFor(7, models.TokenTypeAccess, time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+access)
	rec := serve(mw, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":7}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	assert.Equal(t, http.StatusUnauthorized, serve(mw, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Token "+access)
	assert.Equal(t, http.StatusUnauthorized, serve(mw, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/me?access_token="+access, nil)
	assert.Equal(t, http.StatusUnauthorized, serve(mw, req).Code, "query tokens are only read on websocket upgrades")

	req = httptest.NewRequest(http.MethodGet, "/me?access_token="+access, nil)
	req.Header.Set(echo.HeaderUpgrade, "websocket")
	assert.Equal(t, http.StatusOK, serve(mw, req).Code)
}

func TestJWTAuthMiddleware_FirebaseFallback(t *testing.T) {
	verifier := new(MockVerifier)
	users := new(MockUsers)
	verifier.On("VerifyIDToken", mock.Anything, "linked").Return(&auth.Token{UID: "fb-1"}, nil)
	verifier.On("VerifyIDToken", mock.Anything, "unlinked").Return(&auth.Token{UID: "fb-2"}, nil)
	verifier.On("VerifyIDToken", mock.Anything, "bogus").Return(nil, errors.New("bad signature"))
	users.On("GetUserByFirebaseUID", mock.Anything, "fb-1").Return(&models.User{ID: 11}, nil)
	users.On("GetUserByFirebaseUID", mock.Anything, "fb-2").Return(nil, errors.New("not found"))
	mw := JWTAuthMiddleware(secret, NewFirebaseResolver(verifier, users))

	call := func(token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
		return serve(mw, req)
	}

	rec := call("linked")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":11}`, rec.Body.String())
	assert.Equal(t, http.StatusUnauthorized, call("unlinked").Code)
	assert.Equal(t, http.StatusUnauthorized, call("bogus").Code)

	refresh := sign(t, secret, claimsFor(7, models.TokenTypeRefresh, time.Hour))
	assert.Equal(t, http.StatusUnauthorized, call(refresh).Code)
	verifier.AssertNotCalled(t, "VerifyIDToken", mock.Anything, refresh)
}
