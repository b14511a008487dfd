package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/agenttrace/docstore/internal/middleware"
	apperrors "github.com/agenttrace/docstore/internal/pkg/errors"
	"github.com/agenttrace/docstore/internal/pkg/logger"
	"github.com/agenttrace/docstore/internal/repository/mongo"
)

// MaxLimit caps the limit query parameter of list requests
const MaxLimit = 1000

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Details   map[string]string `json:"details,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// ParsePage extracts skip and limit query parameters. Missing or invalid
// values are left unset; limit is capped at MaxLimit.
func ParsePage(c *fiber.Ctx) mongo.Page {
	p := mongo.Page{
		Skip:  parseQueryInt(c, "skip", 0),
		Limit: parseQueryInt(c, "limit", 0),
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// parseQueryInt parses an integer query parameter with a default value.
func parseQueryInt(c *fiber.Ctx, key string, defaultValue int64) int64 {
	val := c.Query(key)
	if val == "" {
		return defaultValue
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil || n < 0 {
		return defaultValue
	}
	return n
}

// sendJSON writes a document or array that is already encoded as JSON
func sendJSON(c *fiber.Ctx, status int, body string) error {
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return c.Status(status).SendString(body)
}

// errorResponse writes err as a standardized JSON error. Errors that are not
// AppErrors are reported as internal errors; server errors go to Sentry.
func errorResponse(c *fiber.Ctx, err error) error {
	appErr := apperrors.GetAppError(err)
	if appErr == nil {
		appErr = apperrors.Internal("An unexpected error occurred").WithError(err)
	}

	if appErr.StatusCode >= fiber.StatusInternalServerError {
		logger.WithRequestID(middleware.GetRequestID(c)).Error("request failed",
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		middleware.CaptureError(c, err)
	}

	return c.Status(appErr.StatusCode).JSON(ErrorResponse{
		Code:      appErr.Code,
		Message:   appErr.Message,
		Details:   appErr.Details,
		RequestID: middleware.GetRequestID(c),
	})
}

// ErrorHandler is the fiber error handler. It renders errors that escaped a
// handler, including fiber's own 404 and 405 errors, in the same shape.
func ErrorHandler(c *fiber.Ctx, err error) error {
	if fe, ok := err.(*fiber.Error); ok {
		return errorResponse(c, apperrors.New(fiberCode(fe.Code), fe.Message, fe.Code))
	}
	return errorResponse(c, err)
}

func fiberCode(status int) string {
	switch {
	case status == fiber.StatusNotFound:
		return apperrors.CodeNotFound
	case status == fiber.StatusTooManyRequests:
		return apperrors.CodeRateLimited
	case status == fiber.StatusServiceUnavailable:
		return apperrors.CodeUnavailable
	case status >= fiber.StatusInternalServerError:
		return apperrors.CodeInternal
	default:
		return apperrors.CodeBadRequest
	}
}
