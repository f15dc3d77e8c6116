package invitations

import (
	"time"

	users_enums "collabhub/internal/features/users/enums"

	"github.com/google/uuid"
)

type InvitationLink struct {
	ID        uuid.UUID `json:"id"        gorm:"column:id;primaryKey"`
	ProjectID uuid.UUID `json:"projectId" gorm:"column:project_id;index:idx_invitation_links_project"`
	CreatedBy uuid.UUID `json:"createdBy" gorm:"column:created_by"`

	// Token is the shareable secret. It is the capability itself, so
	// it is excluded from JSON except through the creation response.
	Token string `json:"-" gorm:"column:token;uniqueIndex:idx_invitation_links_token"`

	IsActive    bool                    `json:"isActive"    gorm:"column:is_active"`
	MaxUses     *int                    `json:"maxUses"     gorm:"column:max_uses"`
	CurrentUses int                     `json:"currentUses" gorm:"column:current_uses"`
	ExpiresAt   *time.Time              `json:"expiresAt"   gorm:"column:expires_at"`
	Role        users_enums.ProjectRole `json:"role"        gorm:"column:role"`
	CreatedAt   time.Time               `json:"createdAt"   gorm:"column:created_at"`
}

func (InvitationLink) TableName() string {
	return "invitation_links"
}

// IsUsable evaluates the usability predicate at the given instant:
// active, not expired, uses remaining. Callers must evaluate it
// freshly for every decision; the result is never cached.
func (l *InvitationLink) IsUsable(now time.Time) bool {
	if !l.IsActive {
		return false
	}

	if l.ExpiresAt != nil && !l.ExpiresAt.After(now) {
		return false
	}

	if l.MaxUses != nil && l.CurrentUses >= *l.MaxUses {
		return false
	}

	return true
}
