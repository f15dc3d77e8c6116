package invitations

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InvitationRepository struct {
	db *gorm.DB
}

func NewInvitationRepository(db *gorm.DB) *InvitationRepository {
	return &InvitationRepository{db: db}
}

func (r *InvitationRepository) WithTx(tx *gorm.DB) *InvitationRepository {
	return &InvitationRepository{db: tx}
}

func (r *InvitationRepository) CreateLink(link *InvitationLink) error {
	if link.ID == uuid.Nil {
		link.ID = uuid.New()
	}

	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now().UTC()
	}

	return r.db.Create(link).Error
}

func (r *InvitationRepository) GetByToken(token string) (*InvitationLink, error) {
	var link InvitationLink

	err := r.db.Where("token = ?", token).First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, err
	}

	return &link, nil
}

// GetByTokenForUpdate re-fetches the link under a row lock so the
// usability re-check and the usage increment are isolated from
// concurrent redeemers. The lock clause is a Postgres mechanism;
// other dialects serialize through their own transaction locking.
func (r *InvitationRepository) GetByTokenForUpdate(token string) (*InvitationLink, error) {
	var link InvitationLink

	query := r.db
	if r.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	err := query.Where("token = ?", token).First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, err
	}

	return &link, nil
}

func (r *InvitationRepository) GetActiveByProject(projectID uuid.UUID) (*InvitationLink, error) {
	var link InvitationLink

	err := r.db.
		Where("project_id = ? AND is_active = ?", projectID, true).
		Order("created_at DESC").
		First(&link).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, err
	}

	return &link, nil
}

func (r *InvitationRepository) DeactivateAllForProject(projectID uuid.UUID) error {
	return r.db.
		Model(&InvitationLink{}).
		Where("project_id = ? AND is_active = ?", projectID, true).
		Update("is_active", false).Error
}

// IncrementUses adds exactly one use to the link row.
func (r *InvitationRepository) IncrementUses(linkID uuid.UUID) error {
	return r.db.
		Model(&InvitationLink{}).
		Where("id = ?", linkID).
		Update("current_uses", gorm.Expr("current_uses + 1")).Error
}

func (r *InvitationRepository) DeleteByProject(projectID uuid.UUID) error {
	return r.db.
		Where("project_id = ?", projectID).
		Delete(&InvitationLink{}).Error
}
