package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/causeconnect/backend/internal/middleware"
	"github.com/causeconnect/backend/internal/models"
	"github.com/causeconnect/backend/internal/repositories"
	"github.com/causeconnect/backend/internal/validators"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "handler-test-secret"

var dbCounter atomic.Int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:handler_test_%d?mode=memory&cache=shared", dbCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.Relational()...))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// newTestEcho mounts routes under a JWT protected /api/v1 group
func newTestEcho(register func(g *echo.Group)) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = HTTPErrorHandler
	e.Validator = validators.NewValidator()
	register(e.Group("/api/v1", middleware.JWTAuthMiddleware(testSecret, nil)))
	return e
}

func seedUser(t *testing.T, users repositories.UserRepository, username string) *models.User {
	t.Helper()
	u := &models.User{Name: username, Username: username, Email: username + "@example.com"}
	require.NoError(t, users.CreateUser(context.Background(), u))
	return u
}

func accessToken(t *testing.T, user *models.User) string {
	t.Helper()
	h := NewAuthHandler(nil, nil, nil, TokenConfig{Secret: testSecret, AccessTTL: time.Hour, RefreshTTL: time.Hour})
	pair, err := h.issueTokens(user)
	require.NoError(t, err)
	return pair.AccessToken
}

func doJSON(e *echo.Echo, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	require.True(t, env.Success, rec.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, out))
}

