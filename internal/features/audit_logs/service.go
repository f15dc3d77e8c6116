package audit_logs

import (
	"log/slog"

	"collabhub/internal/apperrors"
	users_enums "collabhub/internal/features/users/enums"

	"github.com/google/uuid"
)

// PermissionChecker gates audit queries. Implemented by the projects
// permission service; injected in SetupDependencies to keep the audit
// feature free of upward imports.
type PermissionChecker interface {
	HasPermission(projectID, userID uuid.UUID, required users_enums.ProjectRole) (bool, error)
}

type AuditLogService struct {
	auditLogRepository *AuditLogRepository
	permissionChecker  PermissionChecker
	logger             *slog.Logger
}

func (s *AuditLogService) SetPermissionChecker(checker PermissionChecker) {
	s.permissionChecker = checker
}

func (s *AuditLogService) GetProjectRoleChanges(
	projectID uuid.UUID,
	requesterID uuid.UUID,
	options *QueryOptions,
) (*GetRoleChangesResponse, error) {
	if err := s.requireProjectAccess(projectID, requesterID, users_enums.ProjectRoleAdmin); err != nil {
		return nil, err
	}

	options = normalizeOptions(options)

	entries, err := s.auditLogRepository.GetRoleChangesByProject(projectID, options)
	if err != nil {
		return nil, err
	}

	return &GetRoleChangesResponse{
		RoleChanges: entries,
		Limit:       options.Limit,
		Offset:      options.Offset,
	}, nil
}

func (s *AuditLogService) GetProjectJoinLogs(
	projectID uuid.UUID,
	requesterID uuid.UUID,
	options *QueryOptions,
) (*GetJoinLogsResponse, error) {
	if err := s.requireProjectAccess(projectID, requesterID, users_enums.ProjectRoleAdmin); err != nil {
		return nil, err
	}

	options = normalizeOptions(options)

	entries, err := s.auditLogRepository.GetJoinLogsByProject(projectID, options)
	if err != nil {
		return nil, err
	}

	return &GetJoinLogsResponse{
		JoinLogs: entries,
		Limit:    options.Limit,
		Offset:   options.Offset,
	}, nil
}

// GetUserRoleChanges returns the requester's own trail. There is no
// cross-user query surface below project scope.
func (s *AuditLogService) GetUserRoleChanges(
	targetUserID uuid.UUID,
	requesterID uuid.UUID,
	options *QueryOptions,
) (*GetRoleChangesResponse, error) {
	if targetUserID != requesterID {
		return nil, apperrors.ErrForbidden
	}

	options = normalizeOptions(options)

	entries, err := s.auditLogRepository.GetRoleChangesByUser(targetUserID, options)
	if err != nil {
		return nil, err
	}

	return &GetRoleChangesResponse{
		RoleChanges: entries,
		Limit:       options.Limit,
		Offset:      options.Offset,
	}, nil
}

func (s *AuditLogService) GetUserJoinLogs(
	targetUserID uuid.UUID,
	requesterID uuid.UUID,
	options *QueryOptions,
) (*GetJoinLogsResponse, error) {
	if targetUserID != requesterID {
		return nil, apperrors.ErrForbidden
	}

	options = normalizeOptions(options)

	entries, err := s.auditLogRepository.GetJoinLogsByUser(targetUserID, options)
	if err != nil {
		return nil, err
	}

	return &GetJoinLogsResponse{
		JoinLogs: entries,
		Limit:    options.Limit,
		Offset:   options.Offset,
	}, nil
}

func (s *AuditLogService) requireProjectAccess(
	projectID, requesterID uuid.UUID,
	required users_enums.ProjectRole,
) error {
	allowed, err := s.permissionChecker.HasPermission(projectID, requesterID, required)
	if err != nil {
		return err
	}
	if !allowed {
		return apperrors.ErrForbidden
	}

	return nil
}

func normalizeOptions(options *QueryOptions) *QueryOptions {
	if options == nil {
		options = &QueryOptions{}
	}

	normalized := *options
	if normalized.Limit <= 0 || normalized.Limit > 1000 {
		normalized.Limit = 100
	}
	if normalized.Offset < 0 {
		normalized.Offset = 0
	}

	return &normalized
}
