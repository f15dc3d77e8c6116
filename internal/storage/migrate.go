package storage

import (
	"fmt"

	"gorm.io/gorm"

	audit_logs "collabhub/internal/features/audit_logs"
	invitations "collabhub/internal/features/invitations"
	projects_models "collabhub/internal/features/projects/models"
)

// Migrate creates or updates the schema for every persisted model.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&projects_models.Project{},
		&projects_models.ProjectMembership{},
		&invitations.InvitationLink{},
		&audit_logs.RoleChangeLog{},
		&audit_logs.MemberJoinLog{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database schema: %w", err)
	}

	return nil
}
