package invitations

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"collabhub/internal/apperrors"
	audit_logs "collabhub/internal/features/audit_logs"
	projects_models "collabhub/internal/features/projects/models"
	projects_repositories "collabhub/internal/features/projects/repositories"
	users_enums "collabhub/internal/features/users/enums"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// InvitationService owns the invitation link lifecycle:
// nonexistent -> active -> (used up to maxUses times) -> inactive.
type InvitationService struct {
	db                   *gorm.DB
	invitationRepository *InvitationRepository
	membershipRepository *projects_repositories.MembershipRepository
	projectRepository    *projects_repositories.ProjectRepository
	permissionService    PermissionChecker
	auditLogRepository   *audit_logs.AuditLogRepository
	logger               *slog.Logger

	singleflight singleflight.Group // Dedupes concurrent lookups of the same token
}

// PermissionChecker is satisfied by the projects permission service.
type PermissionChecker interface {
	HasPermission(projectID, userID uuid.UUID, required users_enums.ProjectRole) (bool, error)
}

// RedeemOptions carries optional request metadata into the join log.
type RedeemOptions struct {
	IPAddress *string
	UserAgent *string
}

// CreateLink creates a new active invitation link for the project and
// deactivates all previous ones: one active link per project, always.
func (s *InvitationService) CreateLink(
	ctx context.Context,
	projectID uuid.UUID,
	creatorID uuid.UUID,
	request *CreateLinkRequestDTO,
) (*CreateLinkResponseDTO, error) {
	if err := s.requireAdmin(projectID, creatorID); err != nil {
		return nil, err
	}

	if _, err := s.projectRepository.GetProjectByID(projectID); err != nil {
		return nil, err
	}

	if request.MaxUses != nil && *request.MaxUses <= 0 {
		return nil, fmt.Errorf("%w: maxUses must be positive", apperrors.ErrInvalidInput)
	}

	if request.ExpiresAt != nil && !request.ExpiresAt.After(time.Now().UTC()) {
		return nil, fmt.Errorf("%w: expiresAt must be in the future", apperrors.ErrInvalidInput)
	}

	role := users_enums.ProjectRoleMember
	if request.Role != nil {
		role = *request.Role
	}

	// Links only ever grant MEMBER or VIEWER; privileged roles are
	// assigned explicitly by the owner.
	if role != users_enums.ProjectRoleMember && role != users_enums.ProjectRoleViewer {
		return nil, fmt.Errorf("%w: invitation role must be MEMBER or VIEWER", apperrors.ErrInvalidInput)
	}

	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate invitation token: %w", err)
	}

	link := &InvitationLink{
		ProjectID:   projectID,
		CreatedBy:   creatorID,
		Token:       token,
		IsActive:    true,
		MaxUses:     request.MaxUses,
		CurrentUses: 0,
		ExpiresAt:   request.ExpiresAt,
		Role:        role,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invitationRepo := s.invitationRepository.WithTx(tx)

		if err := invitationRepo.DeactivateAllForProject(projectID); err != nil {
			return err
		}

		return invitationRepo.CreateLink(link)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create invitation link: %w", err)
	}

	s.logger.Info("invitation link created",
		"projectId", projectID,
		"linkId", link.ID,
		"role", role,
	)

	return linkToResponse(link), nil
}

// GetActiveLink returns the project's current active link, token
// included, so an admin can re-share it.
func (s *InvitationService) GetActiveLink(
	projectID uuid.UUID,
	requesterID uuid.UUID,
) (*CreateLinkResponseDTO, error) {
	if err := s.requireAdmin(projectID, requesterID); err != nil {
		return nil, err
	}

	link, err := s.invitationRepository.GetActiveByProject(projectID)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, apperrors.ErrNotFound
	}

	return linkToResponse(link), nil
}

// Validate looks the token up and checks the usability predicate.
// This is a cheap pre-check and inherently racy against concurrent
// redemptions; Redeem restores correctness inside its transaction.
func (s *InvitationService) Validate(token string) (*LinkPreviewDTO, error) {
	result, err, _ := s.singleflight.Do(token, func() (any, error) {
		return s.invitationRepository.GetByToken(token)
	})
	if err != nil {
		return nil, err
	}

	link, _ := result.(*InvitationLink)
	if link == nil || !link.IsUsable(time.Now().UTC()) {
		return nil, apperrors.ErrInvalidOrExpiredToken
	}

	project, err := s.projectRepository.GetProjectByID(link.ProjectID)
	if err != nil {
		return nil, err
	}

	return &LinkPreviewDTO{
		ProjectID:   project.ID,
		ProjectName: project.Name,
		Role:        link.Role,
		ExpiresAt:   link.ExpiresAt,
	}, nil
}

// Redeem converts a token into a membership. Everything after the
// cheap pre-check runs in one transaction: re-fetch the link under a
// row lock, re-check usability, create the membership, append the
// join log, increment usage by exactly one. Any failure rolls the
// whole unit back; a failed redemption leaves no trace.
func (s *InvitationService) Redeem(
	ctx context.Context,
	token string,
	userID uuid.UUID,
	options *RedeemOptions,
) (*RedeemResultDTO, error) {
	if options == nil {
		options = &RedeemOptions{}
	}

	link, err := s.invitationRepository.GetByToken(token)
	if err != nil {
		return nil, err
	}
	if link == nil || !link.IsUsable(time.Now().UTC()) {
		return nil, apperrors.ErrInvalidOrExpiredToken
	}

	var membership *projects_models.ProjectMembership

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invitationRepo := s.invitationRepository.WithTx(tx)

		locked, err := invitationRepo.GetByTokenForUpdate(token)
		if err != nil {
			return err
		}

		// Re-checked under the lock: a concurrent redeemer may have
		// consumed the last use or the link may have been superseded
		// since the pre-check.
		if locked == nil || !locked.IsUsable(time.Now().UTC()) {
			return apperrors.ErrInvalidOrExpiredToken
		}

		membership = &projects_models.ProjectMembership{
			ProjectID: locked.ProjectID,
			UserID:    userID,
			Role:      locked.Role,
		}

		if err := s.membershipRepository.WithTx(tx).CreateMembership(membership, false); err != nil {
			return err
		}

		tokenCopy := locked.Token
		if err := s.auditLogRepository.WithTx(tx).CreateMemberJoinLog(&audit_logs.MemberJoinLog{
			ProjectID:   locked.ProjectID,
			UserID:      userID,
			Method:      audit_logs.JoinMethodInviteLink,
			InviteToken: &tokenCopy,
			IPAddress:   options.IPAddress,
			UserAgent:   options.UserAgent,
		}); err != nil {
			return err
		}

		return invitationRepo.IncrementUses(locked.ID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("invitation redeemed",
		"projectId", membership.ProjectID,
		"userId", userID,
	)

	return &RedeemResultDTO{
		ProjectID: membership.ProjectID,
		UserID:    membership.UserID,
		Role:      membership.Role,
		JoinedAt:  membership.CreatedAt,
	}, nil
}

// Deactivate turns off every active link for the project.
func (s *InvitationService) Deactivate(
	ctx context.Context,
	projectID uuid.UUID,
	actorID uuid.UUID,
) error {
	if err := s.requireAdmin(projectID, actorID); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.invitationRepository.WithTx(tx).DeactivateAllForProject(projectID)
	})
}

// OnBeforeProjectDeletion removes the project's links inside the
// project deletion transaction.
func (s *InvitationService) OnBeforeProjectDeletion(tx *gorm.DB, projectID uuid.UUID) error {
	return s.invitationRepository.WithTx(tx).DeleteByProject(projectID)
}

func (s *InvitationService) requireAdmin(projectID, userID uuid.UUID) error {
	allowed, err := s.permissionService.HasPermission(projectID, userID, users_enums.ProjectRoleAdmin)
	if err != nil {
		return err
	}
	if !allowed {
		return apperrors.ErrForbidden
	}

	return nil
}

func linkToResponse(link *InvitationLink) *CreateLinkResponseDTO {
	return &CreateLinkResponseDTO{
		ID:          link.ID,
		Token:       link.Token,
		MaxUses:     link.MaxUses,
		CurrentUses: link.CurrentUses,
		ExpiresAt:   link.ExpiresAt,
		Role:        link.Role,
		CreatedAt:   link.CreatedAt,
	}
}
