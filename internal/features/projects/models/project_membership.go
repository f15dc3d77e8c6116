package projects_models

import (
	"time"

	users_enums "collabhub/internal/features/users/enums"

	"github.com/google/uuid"
)

type ProjectMembership struct {
	ID        uuid.UUID               `json:"id"        gorm:"column:id;primaryKey"`
	ProjectID uuid.UUID               `json:"projectId" gorm:"column:project_id;uniqueIndex:idx_memberships_project_user"`
	UserID    uuid.UUID               `json:"userId"    gorm:"column:user_id;uniqueIndex:idx_memberships_project_user"`
	Role      users_enums.ProjectRole `json:"role"      gorm:"column:role"`
	CreatedAt time.Time               `json:"createdAt" gorm:"column:created_at"`
	UpdatedAt time.Time               `json:"updatedAt" gorm:"column:updated_at"`
}

func (ProjectMembership) TableName() string {
	return "project_memberships"
}
