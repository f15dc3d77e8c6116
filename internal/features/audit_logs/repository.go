package audit_logs

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditLogRepository is append-and-query only. There is deliberately
// no update or delete method; rows are immutable once written.
type AuditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

// WithTx binds the repository to a transaction so audit appends commit
// atomically with the state change they record.
func (r *AuditLogRepository) WithTx(tx *gorm.DB) *AuditLogRepository {
	return &AuditLogRepository{db: tx}
}

func (r *AuditLogRepository) CreateRoleChangeLog(entry *RoleChangeLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	return r.db.Create(entry).Error
}

func (r *AuditLogRepository) CreateMemberJoinLog(entry *MemberJoinLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	return r.db.Create(entry).Error
}

func (r *AuditLogRepository) GetRoleChangesByProject(
	projectID uuid.UUID,
	options *QueryOptions,
) ([]*RoleChangeLog, error) {
	entries := make([]*RoleChangeLog, 0)

	query := r.db.Where("project_id = ?", projectID)
	if options.BeforeDate != nil {
		query = query.Where("created_at < ?", *options.BeforeDate)
	}

	err := query.
		Order("created_at DESC").
		Limit(options.Limit).
		Offset(options.Offset).
		Find(&entries).Error

	return entries, err
}

func (r *AuditLogRepository) GetRoleChangesByUser(
	userID uuid.UUID,
	options *QueryOptions,
) ([]*RoleChangeLog, error) {
	entries := make([]*RoleChangeLog, 0)

	query := r.db.Where("user_id = ?", userID)
	if options.BeforeDate != nil {
		query = query.Where("created_at < ?", *options.BeforeDate)
	}

	err := query.
		Order("created_at DESC").
		Limit(options.Limit).
		Offset(options.Offset).
		Find(&entries).Error

	return entries, err
}

func (r *AuditLogRepository) GetJoinLogsByProject(
	projectID uuid.UUID,
	options *QueryOptions,
) ([]*MemberJoinLog, error) {
	entries := make([]*MemberJoinLog, 0)

	query := r.db.Where("project_id = ?", projectID)
	if options.BeforeDate != nil {
		query = query.Where("created_at < ?", *options.BeforeDate)
	}
	if options.Method != nil {
		query = query.Where("method = ?", *options.Method)
	}

	err := query.
		Order("created_at DESC").
		Limit(options.Limit).
		Offset(options.Offset).
		Find(&entries).Error

	return entries, err
}

func (r *AuditLogRepository) GetJoinLogsByUser(
	userID uuid.UUID,
	options *QueryOptions,
) ([]*MemberJoinLog, error) {
	entries := make([]*MemberJoinLog, 0)

	query := r.db.Where("user_id = ?", userID)
	if options.BeforeDate != nil {
		query = query.Where("created_at < ?", *options.BeforeDate)
	}
	if options.Method != nil {
		query = query.Where("method = ?", *options.Method)
	}

	err := query.
		Order("created_at DESC").
		Limit(options.Limit).
		Offset(options.Offset).
		Find(&entries).Error

	return entries, err
}

func (r *AuditLogRepository) CountRoleChangesByProject(projectID uuid.UUID) (int64, error) {
	var count int64

	err := r.db.
		Model(&RoleChangeLog{}).
		Where("project_id = ?", projectID).
		Count(&count).Error

	return count, err
}

// DeleteByProject exists only for the project-deletion cascade.
func (r *AuditLogRepository) DeleteByProject(projectID uuid.UUID) error {
	if err := r.db.
		Where("project_id = ?", projectID).
		Delete(&RoleChangeLog{}).Error; err != nil {
		return err
	}

	return r.db.
		Where("project_id = ?", projectID).
		Delete(&MemberJoinLog{}).Error
}
