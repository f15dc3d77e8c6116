package projects_interfaces

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProjectDeletionListener lets other features clean up their rows
// inside the project deletion transaction.
type ProjectDeletionListener interface {
	OnBeforeProjectDeletion(tx *gorm.DB, projectID uuid.UUID) error
}
