package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/ehotel/hotel-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// respondError maps a service error to its HTTP status and error body.
// Unexpected failures are logged and reported without internal detail.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	var (
		validationErr *services.ValidationError
		notFoundErr   *services.NotFoundError
		transitionErr *services.InvalidTransitionError
		limitErr      *services.RateLimitError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: validationErr.Message,
			Field:   validationErr.Field,
		})
	case errors.As(err, &limitErr):
		retryAfter := int(math.Ceil(time.Until(limitErr.RetryAfter).Seconds()))
		if retryAfter < 1 {
			retryAfter = 1
		}
		c.Header("Retry-After", strconv.Itoa(retryAfter))
		c.JSON(http.StatusTooManyRequests, ErrorResponse{
			Error:   "rate_limited",
			Message: limitErr.Message,
		})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_credentials",
			Message: "Invalid email or password",
		})
	case errors.Is(err, services.ErrAuthentication):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Authentication required",
		})
	case errors.Is(err, services.ErrAuthorization):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: "You don't have permission to perform this action",
		})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: notFoundErr.Error(),
		})
	case errors.Is(err, services.ErrRoomUnavailable):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "room_unavailable",
			Message: "Room is not available",
		})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "invalid_transition",
			Message: transitionErr.Error(),
		})
	case errors.Is(err, services.ErrEmailTaken):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "email_taken",
			Message: "Email is already registered",
		})
	case errors.Is(err, services.ErrIneligibleBooking):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "ineligible_booking",
			Message: services.ErrIneligibleBooking.Error(),
		})
	default:
		logger.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).WithError(err).Error("Request failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
	}
}

// respondBindError reports a malformed request body
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "invalid_request",
		Message: "Invalid request body: " + err.Error(),
	})
}
