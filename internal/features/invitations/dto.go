package invitations

import (
	"time"

	users_enums "collabhub/internal/features/users/enums"

	"github.com/google/uuid"
)

type CreateLinkRequestDTO struct {
	MaxUses   *int                     `json:"maxUses"`
	ExpiresAt *time.Time               `json:"expiresAt"`
	Role      *users_enums.ProjectRole `json:"role"`
}

// CreateLinkResponseDTO is the only place the token leaves the engine.
type CreateLinkResponseDTO struct {
	ID          uuid.UUID               `json:"id"`
	Token       string                  `json:"token"`
	MaxUses     *int                    `json:"maxUses"`
	CurrentUses int                     `json:"currentUses"`
	ExpiresAt   *time.Time              `json:"expiresAt"`
	Role        users_enums.ProjectRole `json:"role"`
	CreatedAt   time.Time               `json:"createdAt"`
}

// LinkPreviewDTO is what an invited user sees before joining.
type LinkPreviewDTO struct {
	ProjectID   uuid.UUID               `json:"projectId"`
	ProjectName string                  `json:"projectName"`
	Role        users_enums.ProjectRole `json:"role"`
	ExpiresAt   *time.Time              `json:"expiresAt"`
}

type RedeemResultDTO struct {
	ProjectID uuid.UUID               `json:"projectId"`
	UserID    uuid.UUID               `json:"userId"`
	Role      users_enums.ProjectRole `json:"role"`
	JoinedAt  time.Time               `json:"joinedAt"`
}
