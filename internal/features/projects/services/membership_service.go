package projects_services

import (
	"context"
	"fmt"

	"collabhub/internal/apperrors"
	audit_logs "collabhub/internal/features/audit_logs"
	projects_dto "collabhub/internal/features/projects/dto"
	projects_models "collabhub/internal/features/projects/models"
	projects_repositories "collabhub/internal/features/projects/repositories"
	users_enums "collabhub/internal/features/users/enums"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MembershipService is the route-facing surface over the membership
// store. It holds the authorization policy (who may act); the
// underlying PermissionService.ChangeRole and repository calls are
// pure mechanism.
type MembershipService struct {
	db                   *gorm.DB
	membershipRepository *projects_repositories.MembershipRepository
	permissionService    *PermissionService
	auditLogRepository   *audit_logs.AuditLogRepository
}

func (s *MembershipService) GetMembers(
	projectID uuid.UUID,
	requesterID uuid.UUID,
) (*projects_dto.GetMembersResponseDTO, error) {
	if err := s.requireRole(projectID, requesterID, users_enums.ProjectRoleViewer); err != nil {
		return nil, err
	}

	members, err := s.membershipRepository.GetProjectMembers(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get project members: %w", err)
	}

	membersList := make([]projects_dto.ProjectMemberResponseDTO, len(members))
	for i, member := range members {
		membersList[i] = projects_dto.ProjectMemberResponseDTO{
			ID:        member.ID,
			UserID:    member.UserID,
			Role:      member.Role,
			JoinedAt:  member.CreatedAt,
			UpdatedAt: member.UpdatedAt,
		}
	}

	return &projects_dto.GetMembersResponseDTO{
		Members: membersList,
	}, nil
}

func (s *MembershipService) GetMemberStats(
	projectID uuid.UUID,
	requesterID uuid.UUID,
) (*projects_dto.MemberStatsResponseDTO, error) {
	if err := s.requireRole(projectID, requesterID, users_enums.ProjectRoleViewer); err != nil {
		return nil, err
	}

	counts, err := s.membershipRepository.CountByRole(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to count members: %w", err)
	}

	var total int64
	for _, count := range counts {
		total += count
	}

	return &projects_dto.MemberStatsResponseDTO{
		CountsByRole: counts,
		Total:        total,
	}, nil
}

// AddMember adds an existing user directly, without an invitation
// link. The membership row and its join log commit atomically.
func (s *MembershipService) AddMember(
	ctx context.Context,
	projectID uuid.UUID,
	request *projects_dto.AddMemberRequestDTO,
	actorID uuid.UUID,
) (*projects_models.ProjectMembership, error) {
	if err := s.requireRole(projectID, actorID, users_enums.ProjectRoleAdmin); err != nil {
		return nil, err
	}

	if !request.Role.IsValid() {
		return nil, fmt.Errorf("%w: unknown role %q", apperrors.ErrInvalidInput, request.Role)
	}

	if request.Role == users_enums.ProjectRoleOwner {
		return nil, apperrors.ErrOwnerConflict
	}

	// Only the owner may hand out the ADMIN role. Enforced here, not
	// in the UI.
	if request.Role == users_enums.ProjectRoleAdmin {
		if err := s.requireRole(projectID, actorID, users_enums.ProjectRoleOwner); err != nil {
			return nil, err
		}
	}

	membership := &projects_models.ProjectMembership{
		ProjectID: projectID,
		UserID:    request.UserID,
		Role:      request.Role,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.membershipRepository.WithTx(tx).CreateMembership(membership, false); err != nil {
			return err
		}

		return s.auditLogRepository.WithTx(tx).CreateMemberJoinLog(&audit_logs.MemberJoinLog{
			ProjectID: projectID,
			UserID:    request.UserID,
			Method:    audit_logs.JoinMethodAdminAdded,
		})
	})
	if err != nil {
		return nil, err
	}

	return membership, nil
}

func (s *MembershipService) ChangeMemberRole(
	ctx context.Context,
	projectID uuid.UUID,
	targetUserID uuid.UUID,
	request *projects_dto.ChangeMemberRoleRequestDTO,
	actorID uuid.UUID,
) (*projects_models.ProjectMembership, error) {
	if err := s.requireRole(projectID, actorID, users_enums.ProjectRoleAdmin); err != nil {
		return nil, err
	}

	if targetUserID == actorID {
		return nil, fmt.Errorf("%w: cannot change your own role", apperrors.ErrInvalidInput)
	}

	if request.Role == users_enums.ProjectRoleAdmin {
		if err := s.requireRole(projectID, actorID, users_enums.ProjectRoleOwner); err != nil {
			return nil, err
		}
	}

	return s.permissionService.ChangeRole(
		ctx,
		projectID,
		targetUserID,
		request.Role,
		actorID,
		request.Reason,
	)
}

// RemoveMember removes a member. A member may always remove
// themselves (leave); removing someone else requires at least ADMIN,
// and removing an ADMIN requires the owner.
func (s *MembershipService) RemoveMember(
	ctx context.Context,
	projectID uuid.UUID,
	targetUserID uuid.UUID,
	actorID uuid.UUID,
) error {
	if targetUserID != actorID {
		if err := s.requireRole(projectID, actorID, users_enums.ProjectRoleAdmin); err != nil {
			return err
		}

		targetRole, err := s.permissionService.GetRole(projectID, targetUserID)
		if err != nil {
			return err
		}

		if targetRole != nil && *targetRole == users_enums.ProjectRoleAdmin {
			if err := s.requireRole(projectID, actorID, users_enums.ProjectRoleOwner); err != nil {
				return err
			}
		}
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.membershipRepository.WithTx(tx).RemoveMember(projectID, targetUserID)
	})
}

// TransferOwnership atomically promotes the target member to OWNER
// and demotes the current owner to ADMIN, logging both changes. Only
// the current owner may transfer.
func (s *MembershipService) TransferOwnership(
	ctx context.Context,
	projectID uuid.UUID,
	request *projects_dto.TransferOwnershipRequestDTO,
	actorID uuid.UUID,
) error {
	if err := s.requireRole(projectID, actorID, users_enums.ProjectRoleOwner); err != nil {
		return err
	}

	if request.NewOwnerID == actorID {
		return fmt.Errorf("%w: user is already the owner", apperrors.ErrInvalidInput)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		membershipRepo := s.membershipRepository.WithTx(tx)
		auditRepo := s.auditLogRepository.WithTx(tx)

		currentOwner, err := membershipRepo.GetProjectOwner(projectID)
		if err != nil {
			return err
		}
		if currentOwner == nil || currentOwner.UserID != actorID {
			return apperrors.ErrForbidden
		}

		newOwner, err := membershipRepo.GetMembership(projectID, request.NewOwnerID)
		if err != nil {
			return err
		}
		if newOwner == nil {
			return apperrors.ErrNotAMember
		}

		if err := membershipRepo.UpdateMemberRole(
			projectID, newOwner.UserID, users_enums.ProjectRoleOwner,
		); err != nil {
			return err
		}

		if err := membershipRepo.UpdateMemberRole(
			projectID, currentOwner.UserID, users_enums.ProjectRoleAdmin,
		); err != nil {
			return err
		}

		if err := auditRepo.CreateRoleChangeLog(&audit_logs.RoleChangeLog{
			ProjectID: projectID,
			UserID:    newOwner.UserID,
			ActorID:   actorID,
			OldRole:   newOwner.Role,
			NewRole:   users_enums.ProjectRoleOwner,
		}); err != nil {
			return err
		}

		return auditRepo.CreateRoleChangeLog(&audit_logs.RoleChangeLog{
			ProjectID: projectID,
			UserID:    currentOwner.UserID,
			ActorID:   actorID,
			OldRole:   users_enums.ProjectRoleOwner,
			NewRole:   users_enums.ProjectRoleAdmin,
		})
	})
}

func (s *MembershipService) requireRole(
	projectID, userID uuid.UUID,
	required users_enums.ProjectRole,
) error {
	allowed, err := s.permissionService.HasPermission(projectID, userID, required)
	if err != nil {
		return err
	}
	if !allowed {
		return apperrors.ErrForbidden
	}

	return nil
}
