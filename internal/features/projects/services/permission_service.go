package projects_services

import (
	"context"
	"fmt"

	"collabhub/internal/apperrors"
	audit_logs "collabhub/internal/features/audit_logs"
	projects_models "collabhub/internal/features/projects/models"
	projects_repositories "collabhub/internal/features/projects/repositories"
	users_enums "collabhub/internal/features/users/enums"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PermissionService answers role questions against current persisted
// state and performs role changes atomically with their audit record.
//
// ChangeRole is mechanism only: it does not verify that the acting
// user is allowed to change roles. Every caller must gate the call
// with HasPermission first; MembershipService is the route-facing
// wrapper that does so.
type PermissionService struct {
	db                   *gorm.DB
	membershipRepository *projects_repositories.MembershipRepository
	auditLogRepository   *audit_logs.AuditLogRepository
}

// HasPermission reports whether the user holds at least the required
// role on the project. A missing membership is an ordinary "no", never
// an error. Results are never cached: staleness here would be a
// security bug, so every call reads persisted state.
func (s *PermissionService) HasPermission(
	projectID, userID uuid.UUID,
	required users_enums.ProjectRole,
) (bool, error) {
	membership, err := s.membershipRepository.GetMembership(projectID, userID)
	if err != nil {
		return false, err
	}

	if membership == nil {
		return false, nil
	}

	return membership.Role.Satisfies(required), nil
}

func (s *PermissionService) GetRole(
	projectID, userID uuid.UUID,
) (*users_enums.ProjectRole, error) {
	membership, err := s.membershipRepository.GetMembership(projectID, userID)
	if err != nil {
		return nil, err
	}

	if membership == nil {
		return nil, nil
	}

	return &membership.Role, nil
}

// ChangeRole updates the target's role and appends a RoleChangeLog
// entry in one transaction: if the audit write fails, the role change
// is rolled back and never becomes visible.
func (s *PermissionService) ChangeRole(
	ctx context.Context,
	projectID, targetUserID uuid.UUID,
	newRole users_enums.ProjectRole,
	actorID uuid.UUID,
	reason *string,
) (*projects_models.ProjectMembership, error) {
	if !newRole.IsValid() {
		return nil, fmt.Errorf("%w: unknown role %q", apperrors.ErrInvalidInput, newRole)
	}

	var updated *projects_models.ProjectMembership

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		membershipRepo := s.membershipRepository.WithTx(tx)

		membership, err := membershipRepo.GetMembership(projectID, targetUserID)
		if err != nil {
			return err
		}
		if membership == nil {
			return apperrors.ErrNotAMember
		}

		oldRole := membership.Role

		// A no-op change is a caller bug; reject instead of silently
		// accepting so it surfaces early.
		if oldRole == newRole {
			return fmt.Errorf("%w: member already has role %s", apperrors.ErrInvalidInput, newRole)
		}

		if newRole == users_enums.ProjectRoleOwner {
			return apperrors.ErrOwnerConflict
		}

		// The owner's own role only changes through ownership
		// transfer; demoting it here would leave the project without
		// an owner.
		if oldRole == users_enums.ProjectRoleOwner {
			return apperrors.ErrCannotRemoveOwner
		}

		if err := membershipRepo.UpdateMemberRole(projectID, targetUserID, newRole); err != nil {
			return err
		}

		if err := s.auditLogRepository.WithTx(tx).CreateRoleChangeLog(&audit_logs.RoleChangeLog{
			ProjectID: projectID,
			UserID:    targetUserID,
			ActorID:   actorID,
			OldRole:   oldRole,
			NewRole:   newRole,
			Reason:    reason,
		}); err != nil {
			return fmt.Errorf("failed to write role change log: %w", err)
		}

		updated, err = membershipRepo.GetMembership(projectID, targetUserID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}
