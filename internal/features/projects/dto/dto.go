package projects_dto

import (
	"time"

	users_enums "collabhub/internal/features/users/enums"

	"github.com/google/uuid"
)

// Project DTOs
type CreateProjectRequestDTO struct {
	Name string `json:"name" binding:"required,min=1,max=255"`
}

type ProjectResponseDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`

	// Requester's role in this project
	UserRole *users_enums.ProjectRole `json:"userRole,omitempty"`
}

type ListProjectsResponseDTO struct {
	Projects []ProjectResponseDTO `json:"projects"`
}

// Membership DTOs
type AddMemberRequestDTO struct {
	UserID uuid.UUID               `json:"userId" binding:"required"`
	Role   users_enums.ProjectRole `json:"role"   binding:"required"`
}

type ChangeMemberRoleRequestDTO struct {
	Role   users_enums.ProjectRole `json:"role" binding:"required"`
	Reason *string                 `json:"reason"`
}

type TransferOwnershipRequestDTO struct {
	NewOwnerID uuid.UUID `json:"newOwnerId" binding:"required"`
}

// ProjectMemberResponseDTO is a membership reference: ids plus role.
// Hydration with user display fields is the identity collaborator's
// concern, never mixed into this shape.
type ProjectMemberResponseDTO struct {
	ID        uuid.UUID               `json:"id"`
	UserID    uuid.UUID               `json:"userId"`
	Role      users_enums.ProjectRole `json:"role"`
	JoinedAt  time.Time               `json:"joinedAt"`
	UpdatedAt time.Time               `json:"updatedAt"`
}

type GetMembersResponseDTO struct {
	Members []ProjectMemberResponseDTO `json:"members"`
}

type MemberStatsResponseDTO struct {
	CountsByRole map[users_enums.ProjectRole]int64 `json:"countsByRole"`
	Total        int64                             `json:"total"`
}
