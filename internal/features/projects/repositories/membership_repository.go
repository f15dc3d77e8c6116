package projects_repositories

import (
	"errors"
	"fmt"
	"time"

	"collabhub/internal/apperrors"
	projects_models "collabhub/internal/features/projects/models"
	users_enums "collabhub/internal/features/users/enums"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MembershipRepository struct {
	db *gorm.DB
}

func NewMembershipRepository(db *gorm.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given
// transaction so membership writes can be composed with audit writes
// in one atomic unit.
func (r *MembershipRepository) WithTx(tx *gorm.DB) *MembershipRepository {
	return &MembershipRepository{db: tx}
}

// CreateMembership inserts a membership after checking the duplicate
// and single-owner invariants explicitly. allowOwnerBootstrap is set
// only by the project creation flow, which writes the very first
// OWNER membership in the same transaction as the project row.
func (r *MembershipRepository) CreateMembership(
	membership *projects_models.ProjectMembership,
	allowOwnerBootstrap bool,
) error {
	if membership.ID == uuid.Nil {
		membership.ID = uuid.New()
	}

	if membership.CreatedAt.IsZero() {
		membership.CreatedAt = time.Now().UTC()
	}
	membership.UpdatedAt = membership.CreatedAt

	existing, err := r.GetMembership(membership.ProjectID, membership.UserID)
	if err != nil {
		return err
	}
	if existing != nil {
		return apperrors.ErrAlreadyMember
	}

	if membership.Role == users_enums.ProjectRoleOwner && !allowOwnerBootstrap {
		owner, err := r.GetProjectOwner(membership.ProjectID)
		if err != nil {
			return err
		}
		if owner != nil {
			return apperrors.ErrOwnerConflict
		}
	}

	if err := r.db.Create(membership).Error; err != nil {
		return fmt.Errorf("failed to create membership: %w", err)
	}

	return nil
}

// GetMembership returns the membership for the (project, user) pair,
// or nil when none exists. Absence is not an error, callers treat it
// as "no access".
func (r *MembershipRepository) GetMembership(
	projectID, userID uuid.UUID,
) (*projects_models.ProjectMembership, error) {
	var membership projects_models.ProjectMembership

	err := r.db.
		Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&membership).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, err
	}

	return &membership, nil
}

// GetProjectMembers lists memberships ordered by role level descending
// then joined-at ascending. The ordering is a contract: member lists
// and exports rely on owners appearing first.
func (r *MembershipRepository) GetProjectMembers(
	projectID uuid.UUID,
) ([]*projects_models.ProjectMembership, error) {
	members := make([]*projects_models.ProjectMembership, 0)

	err := r.db.
		Where("project_id = ?", projectID).
		Order(roleLevelOrder + " DESC, created_at ASC").
		Find(&members).Error

	return members, err
}

const roleLevelOrder = `CASE role
	WHEN 'OWNER' THEN 4
	WHEN 'ADMIN' THEN 3
	WHEN 'MEMBER' THEN 2
	WHEN 'VIEWER' THEN 1
	ELSE 0 END`

func (r *MembershipRepository) UpdateMemberRole(
	projectID, userID uuid.UUID,
	role users_enums.ProjectRole,
) error {
	result := r.db.
		Model(&projects_models.ProjectMembership{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Updates(map[string]any{
			"role":       role,
			"updated_at": time.Now().UTC(),
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return apperrors.ErrNotAMember
	}

	return nil
}

// RemoveMember deletes one membership. The current owner cannot be
// removed; ownership has to be transferred first so projects are never
// left orphaned.
func (r *MembershipRepository) RemoveMember(projectID, userID uuid.UUID) error {
	membership, err := r.GetMembership(projectID, userID)
	if err != nil {
		return err
	}
	if membership == nil {
		return apperrors.ErrNotAMember
	}

	if membership.Role == users_enums.ProjectRoleOwner {
		return apperrors.ErrCannotRemoveOwner
	}

	return r.db.
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&projects_models.ProjectMembership{}).Error
}

func (r *MembershipRepository) GetProjectOwner(
	projectID uuid.UUID,
) (*projects_models.ProjectMembership, error) {
	var membership projects_models.ProjectMembership

	err := r.db.
		Where("project_id = ? AND role = ?", projectID, users_enums.ProjectRoleOwner).
		First(&membership).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, err
	}

	return &membership, nil
}

func (r *MembershipRepository) CountByRole(
	projectID uuid.UUID,
) (map[users_enums.ProjectRole]int64, error) {
	type roleCount struct {
		Role  users_enums.ProjectRole
		Count int64
	}

	rows := make([]roleCount, 0)

	err := r.db.
		Model(&projects_models.ProjectMembership{}).
		Select("role, COUNT(*) as count").
		Where("project_id = ?", projectID).
		Group("role").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[users_enums.ProjectRole]int64, len(rows))
	for _, row := range rows {
		counts[row.Role] = row.Count
	}

	return counts, nil
}

func (r *MembershipRepository) GetProjectsByUserID(
	userID uuid.UUID,
) ([]*projects_models.ProjectMembership, error) {
	memberships := make([]*projects_models.ProjectMembership, 0)

	err := r.db.
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&memberships).Error

	return memberships, err
}

func (r *MembershipRepository) DeleteByProject(projectID uuid.UUID) error {
	return r.db.
		Where("project_id = ?", projectID).
		Delete(&projects_models.ProjectMembership{}).Error
}
