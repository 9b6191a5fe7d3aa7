package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/ehotel/hotel-backend/internal/middleware"
	"github.com/ehotel/hotel-backend/internal/models"
	"github.com/ehotel/hotel-backend/internal/services"
	"github.com/ehotel/hotel-backend/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AccountAPI is the local identity provider
type AccountAPI interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
}

// LoginThrottle limits repeated failed logins
type LoginThrottle interface {
	CheckLogin(ctx context.Context, email, ip string) error
	RecordFailure(ctx context.Context, email, ip string)
}

// AuthHandler handles account HTTP requests
type AuthHandler struct {
	accounts AccountAPI
	throttle LoginThrottle
	audit    AuditRecorder
	logger   *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(accounts AccountAPI, audit AuditRecorder, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		audit:    audit,
		logger:   logger,
	}
}

// WithLoginThrottle enables failed-login throttling on Login
func (h *AuthHandler) WithLoginThrottle(throttle LoginThrottle) *AuthHandler {
	h.throttle = throttle
	return h
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.accounts.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.recordAccountEvent(c, services.AuditActionRegister, resp.User)
	c.JSON(http.StatusCreated, resp)
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx := c.Request.Context()
	ip := utils.GetRealIP(c)

	if h.throttle != nil {
		if err := h.throttle.CheckLogin(ctx, req.Email, ip); err != nil {
			var limitErr *services.RateLimitError
			if errors.As(err, &limitErr) {
				respondError(c, h.logger, err)
				return
			}
			// A failed check lets the login proceed unthrottled
			h.logger.WithError(err).Warn("Login rate limit check failed")
		}
	}

	resp, err := h.accounts.Login(ctx, req)
	if err != nil {
		if h.throttle != nil && errors.Is(err, services.ErrInvalidCredentials) {
			h.throttle.RecordFailure(ctx, req.Email, ip)
		}
		respondError(c, h.logger, err)
		return
	}

	h.recordAccountEvent(c, services.AuditActionLogin, resp.User)
	c.JSON(http.StatusOK, resp)
}

// Me handles GET /api/v1/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		respondError(c, h.logger, services.ErrAuthentication)
		return
	}
	c.JSON(http.StatusOK, user)
}

// recordAccountEvent attributes the event to the account itself, since
// register and login run before any session exists
func (h *AuthHandler) recordAccountEvent(c *gin.Context, action string, user *models.User) {
	if user == nil {
		return
	}
	c.Set(middleware.SessionContextKey, services.SessionFromUser(user))
	recordAudit(c, h.audit, action, services.AuditEntityUser, user.ID, nil)
}
