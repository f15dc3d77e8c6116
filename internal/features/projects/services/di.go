package projects_services

import (
	audit_logs "collabhub/internal/features/audit_logs"
	projects_interfaces "collabhub/internal/features/projects/interfaces"
	projects_repositories "collabhub/internal/features/projects/repositories"

	"gorm.io/gorm"
)

var projectRepository *projects_repositories.ProjectRepository
var membershipRepository *projects_repositories.MembershipRepository
var permissionService *PermissionService
var projectService *ProjectService
var membershipService *MembershipService

// Setup wires the feature against an explicit database handle.
// audit_logs.Setup must run first.
func Setup(db *gorm.DB) {
	projectRepository = projects_repositories.NewProjectRepository(db)
	membershipRepository = projects_repositories.NewMembershipRepository(db)

	permissionService = &PermissionService{
		db:                   db,
		membershipRepository: membershipRepository,
		auditLogRepository:   audit_logs.GetAuditLogRepository(),
	}

	projectService = &ProjectService{
		db:                       db,
		projectRepository:        projectRepository,
		membershipRepository:     membershipRepository,
		permissionService:        permissionService,
		auditLogRepository:       audit_logs.GetAuditLogRepository(),
		projectDeletionListeners: []projects_interfaces.ProjectDeletionListener{},
	}

	membershipService = &MembershipService{
		db:                   db,
		membershipRepository: membershipRepository,
		permissionService:    permissionService,
		auditLogRepository:   audit_logs.GetAuditLogRepository(),
	}

	audit_logs.GetAuditLogService().SetPermissionChecker(permissionService)
}

func GetProjectRepository() *projects_repositories.ProjectRepository {
	return projectRepository
}

func GetMembershipRepository() *projects_repositories.MembershipRepository {
	return membershipRepository
}

func GetPermissionService() *PermissionService {
	return permissionService
}

func GetProjectService() *ProjectService {
	return projectService
}

func GetMembershipService() *MembershipService {
	return membershipService
}
