package handlers

import (
	"errors"
	"net/http"

	"github.com/causeconnect/backend/internal/repositories"
	"github.com/causeconnect/backend/internal/validators"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Message string            `json:"message"`
	Status  int               `json:"status"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// HTTPErrorHandler renders errors as ErrorResponse. Anything that is not an
// *echo.HTTPError is logged and reported as a 500.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	resp := ErrorResponse{Status: http.StatusInternalServerError, Message: "Internal server error"}

	var he *echo.HTTPError
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		resp.Status = http.StatusBadRequest
		resp.Message = "Validation failed"
		resp.Errors = validators.FieldErrors(verrs)
	case errors.As(err, &he):
		resp.Status = he.Code
		switch m := he.Message.(type) {
		case string:
			resp.Message = m
		case error:
			resp.Message = m.Error()
		default:
			resp.Message = http.StatusText(he.Code)
		}
		if he.Code >= http.StatusInternalServerError && he.Internal != nil {
			logError(c, he.Internal)
		}
	case errors.Is(err, repositories.ErrNotFound):
		resp.Status = http.StatusNotFound
		resp.Message = "Not found"
	default:
		logError(c, err)
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(resp.Status)
	} else {
		writeErr = c.JSON(resp.Status, resp)
	}
	if writeErr != nil {
		log.Error().Err(writeErr).Msg("Failed to write error response")
	}
}

func logError(c echo.Context, err error) {
	log.Error().Err(err).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Str("method", c.Request().Method).
		Str("uri", c.Request().RequestURI).
		Msg("Unhandled error")
}

// internalError hides err from the client and keeps it for the error handler to log
func internalError(err error) error {
	return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error").SetInternal(err)
}

// notFoundOr maps ErrNotFound to a 404 with msg and everything else to a 500
func notFoundOr(err error, msg string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, msg)
	}
	return internalError(err)
}

// bindAndValidate binds the request body into req and runs the validator
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	return c.Validate(req)
}
