package invitations

import (
	audit_logs "collabhub/internal/features/audit_logs"
	projects_services "collabhub/internal/features/projects/services"
	"collabhub/internal/util/logger"
	"collabhub/internal/util/rate_limit"

	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

var invitationRepository *InvitationRepository
var invitationService *InvitationService
var invitationController *InvitationController

// Setup wires the feature. projects_services.Setup and
// audit_logs.Setup must run first. rateLimiter may be nil when no
// cache is configured (tests); the in-process limiter still applies.
func Setup(db *gorm.DB, rateLimiter *rate_limit.RateLimiter) {
	invitationRepository = NewInvitationRepository(db)

	invitationService = &InvitationService{
		db:                   db,
		invitationRepository: invitationRepository,
		membershipRepository: projects_services.GetMembershipRepository(),
		projectRepository:    projects_services.GetProjectRepository(),
		permissionService:    projects_services.GetPermissionService(),
		auditLogRepository:   audit_logs.GetAuditLogRepository(),
		logger:               logger.GetLogger(),
	}

	invitationController = &InvitationController{
		invitationService: invitationService,
		rateLimiter:       rateLimiter,
		redeemLimiter:     rate.NewLimiter(rate.Limit(50), 100),
	}

	projects_services.GetProjectService().AddProjectDeletionListener(invitationService)
}

func GetInvitationService() *InvitationService {
	return invitationService
}

func GetInvitationController() *InvitationController {
	return invitationController
}
