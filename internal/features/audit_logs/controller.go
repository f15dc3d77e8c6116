package audit_logs

import (
	"errors"
	"net/http"

	"collabhub/internal/apperrors"
	users_middleware "collabhub/internal/features/users/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuditLogController struct {
	auditLogService *AuditLogService
}

func (c *AuditLogController) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/projects/:id/audit/role-changes", c.GetProjectRoleChanges)
	router.GET("/projects/:id/audit/join-logs", c.GetProjectJoinLogs)
	router.GET("/audit/me/role-changes", c.GetOwnRoleChanges)
	router.GET("/audit/me/join-logs", c.GetOwnJoinLogs)
}

// GetProjectRoleChanges
// @Summary Get project role change trail
// @Description Get role change audit entries for a project, recent first
// @Tags audit-logs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Param limit query int false "Max entries (default 100)"
// @Param offset query int false "Offset"
// @Param beforeDate query string false "Only entries before this time"
// @Success 200 {object} GetRoleChangesResponse
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /projects/{id}/audit/role-changes [get]
func (c *AuditLogController) GetProjectRoleChanges(ctx *gin.Context) {
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

	var options QueryOptions
	if err := ctx.ShouldBindQuery(&options); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	response, err := c.auditLogService.GetProjectRoleChanges(projectID, userID, &options)
	if err != nil {
		respondAuditError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// GetProjectJoinLogs
// @Summary Get project join trail
// @Description Get member join audit entries for a project, recent first
// @Tags audit-logs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Param limit query int false "Max entries (default 100)"
// @Param offset query int false "Offset"
// @Param method query string false "Filter by join method"
// @Success 200 {object} GetJoinLogsResponse
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /projects/{id}/audit/join-logs [get]
func (c *AuditLogController) GetProjectJoinLogs(ctx *gin.Context) {
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

	var options QueryOptions
	if err := ctx.ShouldBindQuery(&options); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	if options.Method != nil && !options.Method.IsValid() {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid join method"})
		return
	}

	response, err := c.auditLogService.GetProjectJoinLogs(projectID, userID, &options)
	if err != nil {
		respondAuditError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// GetOwnRoleChanges
// @Summary Get own role change trail
// @Tags audit-logs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} GetRoleChangesResponse
// @Router /audit/me/role-changes [get]
func (c *AuditLogController) GetOwnRoleChanges(ctx *gin.Context) {
	userID, ok := users_middleware.GetUserIDFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var options QueryOptions
	if err := ctx.ShouldBindQuery(&options); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	response, err := c.auditLogService.GetUserRoleChanges(userID, userID, &options)
	if err != nil {
		respondAuditError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// GetOwnJoinLogs
// @Summary Get own join trail
// @Tags audit-logs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} GetJoinLogsResponse
// @Router /audit/me/join-logs [get]
func (c *AuditLogController) GetOwnJoinLogs(ctx *gin.Context) {
	userID, ok := users_middleware.GetUserIDFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var options QueryOptions
	if err := ctx.ShouldBindQuery(&options); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	response, err := c.auditLogService.GetUserJoinLogs(userID, userID, &options)
	if err != nil {
		respondAuditError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

func respondAuditError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrForbidden):
		ctx.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case apperrors.IsRecoverable(err):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
