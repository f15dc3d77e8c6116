package projects_services

import (
	"context"
	"fmt"

	"collabhub/internal/apperrors"
	audit_logs "collabhub/internal/features/audit_logs"
	projects_dto "collabhub/internal/features/projects/dto"
	projects_interfaces "collabhub/internal/features/projects/interfaces"
	projects_models "collabhub/internal/features/projects/models"
	projects_repositories "collabhub/internal/features/projects/repositories"
	users_enums "collabhub/internal/features/users/enums"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProjectService struct {
	db                       *gorm.DB
	projectRepository        *projects_repositories.ProjectRepository
	membershipRepository     *projects_repositories.MembershipRepository
	permissionService        *PermissionService
	auditLogRepository       *audit_logs.AuditLogRepository
	projectDeletionListeners []projects_interfaces.ProjectDeletionListener
}

func (s *ProjectService) AddProjectDeletionListener(listener projects_interfaces.ProjectDeletionListener) {
	s.projectDeletionListeners = append(s.projectDeletionListeners, listener)
}

// CreateProject writes the project row and its bootstrap OWNER
// membership in one transaction. This is the only path allowed to
// create an OWNER membership directly.
func (s *ProjectService) CreateProject(
	ctx context.Context,
	request *projects_dto.CreateProjectRequestDTO,
	creatorID uuid.UUID,
) (*projects_dto.ProjectResponseDTO, error) {
	project := &projects_models.Project{
		Name: request.Name,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.projectRepository.WithTx(tx).CreateProject(project); err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}

		membership := &projects_models.ProjectMembership{
			ProjectID: project.ID,
			UserID:    creatorID,
			Role:      users_enums.ProjectRoleOwner,
		}

		if err := s.membershipRepository.WithTx(tx).CreateMembership(membership, true); err != nil {
			return fmt.Errorf("failed to create project membership: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	ownerRole := users_enums.ProjectRoleOwner
	return &projects_dto.ProjectResponseDTO{
		ID:        project.ID,
		Name:      project.Name,
		CreatedAt: project.CreatedAt,
		UserRole:  &ownerRole,
	}, nil
}

func (s *ProjectService) GetProject(
	projectID uuid.UUID,
	requesterID uuid.UUID,
) (*projects_models.Project, error) {
	allowed, err := s.permissionService.HasPermission(projectID, requesterID, users_enums.ProjectRoleViewer)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperrors.ErrForbidden
	}

	return s.projectRepository.GetProjectByID(projectID)
}

func (s *ProjectService) GetUserProjects(
	userID uuid.UUID,
) (*projects_dto.ListProjectsResponseDTO, error) {
	memberships, err := s.membershipRepository.GetProjectsByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user projects: %w", err)
	}

	projects := make([]projects_dto.ProjectResponseDTO, 0, len(memberships))
	for _, membership := range memberships {
		project, err := s.projectRepository.GetProjectByID(membership.ProjectID)
		if err != nil {
			return nil, err
		}

		role := membership.Role
		projects = append(projects, projects_dto.ProjectResponseDTO{
			ID:        project.ID,
			Name:      project.Name,
			CreatedAt: project.CreatedAt,
			UserRole:  &role,
		})
	}

	return &projects_dto.ListProjectsResponseDTO{
		Projects: projects,
	}, nil
}

// DeleteProject removes the project and cascades memberships,
// invitation links and audit rows in one transaction. Owner only.
func (s *ProjectService) DeleteProject(
	ctx context.Context,
	projectID uuid.UUID,
	actorID uuid.UUID,
) error {
	role, err := s.permissionService.GetRole(projectID, actorID)
	if err != nil {
		return err
	}
	if role == nil || *role != users_enums.ProjectRoleOwner {
		return apperrors.ErrForbidden
	}

	if _, err := s.projectRepository.GetProjectByID(projectID); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, listener := range s.projectDeletionListeners {
			if err := listener.OnBeforeProjectDeletion(tx, projectID); err != nil {
				return fmt.Errorf("failed to delete project: %w", err)
			}
		}

		if err := s.membershipRepository.WithTx(tx).DeleteByProject(projectID); err != nil {
			return err
		}

		if err := s.auditLogRepository.WithTx(tx).DeleteByProject(projectID); err != nil {
			return err
		}

		return s.projectRepository.WithTx(tx).DeleteProject(projectID)
	})
}
