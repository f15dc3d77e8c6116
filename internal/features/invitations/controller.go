package invitations

import (
	"errors"
	"net/http"
	"strconv"

	"collabhub/internal/apperrors"
	users_middleware "collabhub/internal/features/users/middleware"
	"collabhub/internal/util/rate_limit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

type InvitationController struct {
	invitationService *InvitationService
	rateLimiter       *rate_limit.RateLimiter // shared bucket, nil when cache is absent
	redeemLimiter     *rate.Limiter           // per-process backstop
}

const (
	joinAttemptsPerSecond = 10
	joinAttemptsBurst     = 20
)

func (c *InvitationController) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/projects/:id/invitations", c.CreateLink)
	router.GET("/projects/:id/invitations/active", c.GetActiveLink)
	router.DELETE("/projects/:id/invitations", c.DeactivateLinks)
	router.POST("/join/:token", c.Redeem)
}

// RegisterPublicRoutes mounts the unauthenticated preview endpoint: an
// invited user inspects the link before signing in.
func (c *InvitationController) RegisterPublicRoutes(router *gin.RouterGroup) {
	router.GET("/join/:token", c.Validate)
}

// CreateLink
// @Summary Create invitation link
// @Description Create a new invitation link for the project, deactivating any previous one
// @Tags invitations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Param request body CreateLinkRequestDTO true "Link constraints"
// @Success 200 {object} CreateLinkResponseDTO
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /projects/{id}/invitations [post]
func (c *InvitationController) CreateLink(ctx *gin.Context) {
	userID, ok := users_middleware.GetUserIDFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
		return
	}

	var request CreateLinkRequestDTO
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	response, err := c.invitationService.CreateLink(ctx.Request.Context(), projectID, userID, &request)
	if err != nil {
		respondInvitationError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// GetActiveLink
// @Summary Get active invitation link
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Success 200 {object} CreateLinkResponseDTO
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /projects/{id}/invitations/active [get]
func (c *InvitationController) GetActiveLink(ctx *gin.Context) {
	userID, ok := users_middleware.GetUserIDFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
		return
	}

	response, err := c.invitationService.GetActiveLink(projectID, userID)
	if err != nil {
		respondInvitationError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// DeactivateLinks
// @Summary Deactivate invitation links
// @Description Deactivate all active invitation links for the project
// @Tags invitations
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /projects/{id}/invitations [delete]
func (c *InvitationController) DeactivateLinks(ctx *gin.Context) {
	userID, ok := users_middleware.GetUserIDFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
		return
	}

	if err := c.invitationService.Deactivate(ctx.Request.Context(), projectID, userID); err != nil {
		respondInvitationError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Invitation links deactivated"})
}

// Validate
// @Summary Preview an invitation link
// @Description Check a token and return what joining would grant
// @Tags invitations
// @Produce json
// @Param token path string true "Invitation token"
// @Success 200 {object} LinkPreviewDTO
// @Failure 404 {object} map[string]string
// @Failure 429 {object} map[string]string
// @Router /join/{token} [get]
func (c *InvitationController) Validate(ctx *gin.Context) {
	if !c.allowAttempt(ctx) {
		return
	}

	response, err := c.invitationService.Validate(ctx.Param("token"))
	if err != nil {
		respondInvitationError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// Redeem
// @Summary Redeem an invitation link
// @Description Join the project the token belongs to
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Param token path string true "Invitation token"
// @Success 200 {object} RedeemResultDTO
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 429 {object} map[string]string
// @Router /join/{token} [post]
func (c *InvitationController) Redeem(ctx *gin.Context) {
	userID, ok := users_middleware.GetUserIDFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if !c.allowAttempt(ctx) {
		return
	}

	ip := ctx.ClientIP()
	userAgent := ctx.Request.UserAgent()

	options := &RedeemOptions{}
	if ip != "" {
		options.IPAddress = &ip
	}
	if userAgent != "" {
		options.UserAgent = &userAgent
	}

	response, err := c.invitationService.Redeem(ctx.Request.Context(), ctx.Param("token"), userID, options)
	if err != nil {
		respondInvitationError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// allowAttempt applies both limiters: the process-local backstop and
// the shared per-IP bucket. Token guessing is cheap to try and cheap
// to throttle.
func (c *InvitationController) allowAttempt(ctx *gin.Context) bool {
	if !c.redeemLimiter.Allow() {
		ctx.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many join attempts"})
		return false
	}

	if c.rateLimiter != nil {
		result, err := c.rateLimiter.CheckLimit(ctx.ClientIP(), joinAttemptsPerSecond, joinAttemptsBurst)
		if err == nil && !result.Allowed {
			ctx.Header("Retry-After", strconv.Itoa(result.RetryAfterSec))
			ctx.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many join attempts"})
			return false
		}
	}

	return true
}

func respondInvitationError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidOrExpiredToken):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrForbidden):
		ctx.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrAlreadyMember):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrInvalidInput):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case apperrors.IsRecoverable(err):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
