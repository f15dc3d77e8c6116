package audit_logs

import (
	"time"

	users_enums "collabhub/internal/features/users/enums"

	"github.com/google/uuid"
)

type JoinMethod string

const (
	JoinMethodInviteLink   JoinMethod = "INVITE_LINK"
	JoinMethodDirectInvite JoinMethod = "DIRECT_INVITE"
	JoinMethodAdminAdded   JoinMethod = "ADMIN_ADDED"
)

func (m JoinMethod) IsValid() bool {
	switch m {
	case JoinMethodInviteLink, JoinMethodDirectInvite, JoinMethodAdminAdded:
		return true
	default:
		return false
	}
}

// RoleChangeLog records one privilege change. Rows are immutable once
// written; only project deletion removes them.
type RoleChangeLog struct {
	ID        uuid.UUID               `json:"id"        gorm:"column:id;primaryKey"`
	ProjectID uuid.UUID               `json:"projectId" gorm:"column:project_id;index:idx_role_changes_project"`
	UserID    uuid.UUID               `json:"userId"    gorm:"column:user_id;index:idx_role_changes_user"`
	ActorID   uuid.UUID               `json:"actorId"   gorm:"column:actor_id"`
	OldRole   users_enums.ProjectRole `json:"oldRole"   gorm:"column:old_role"`
	NewRole   users_enums.ProjectRole `json:"newRole"   gorm:"column:new_role"`
	Reason    *string                 `json:"reason"    gorm:"column:reason"`
	CreatedAt time.Time               `json:"createdAt" gorm:"column:created_at;index:idx_role_changes_created_at,sort:desc"`
}

func (RoleChangeLog) TableName() string {
	return "role_change_logs"
}

// MemberJoinLog records how a user joined a project.
type MemberJoinLog struct {
	ID          uuid.UUID  `json:"id"          gorm:"column:id;primaryKey"`
	ProjectID   uuid.UUID  `json:"projectId"   gorm:"column:project_id;index:idx_join_logs_project"`
	UserID      uuid.UUID  `json:"userId"      gorm:"column:user_id;index:idx_join_logs_user"`
	Method      JoinMethod `json:"method"      gorm:"column:method"`
	InviteToken *string    `json:"inviteToken" gorm:"column:invite_token"`
	IPAddress   *string    `json:"ipAddress"   gorm:"column:ip_address"`
	UserAgent   *string    `json:"userAgent"   gorm:"column:user_agent"`
	CreatedAt   time.Time  `json:"createdAt"   gorm:"column:created_at;index:idx_join_logs_created_at,sort:desc"`
}

func (MemberJoinLog) TableName() string {
	return "member_join_logs"
}
