package projects_services_test

import (
	"context"
	"testing"

	"collabhub/internal/apperrors"
	audit_logs "collabhub/internal/features/audit_logs"
	projects_dto "collabhub/internal/features/projects/dto"
	projects_services "collabhub/internal/features/projects/services"
	users_enums "collabhub/internal/features/users/enums"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_AddMember_WhenActorIsAdmin_MemberAddedWithJoinLog(t *testing.T) {
	projectID, ownerID := createProjectWithOwner(t)
	adminID := addMember(t, projectID, ownerID, users_enums.ProjectRoleAdmin)

	memberID := uuid.New()
	membership, err := projects_services.GetMembershipService().AddMember(
		context.Background(),
		projectID,
		&projects_dto.AddMemberRequestDTO{UserID: memberID, Role: users_enums.ProjectRoleMember},
		adminID,
	)
	require.NoError(t, err)
	assert.Equal(t, users_enums.ProjectRoleMember, membership.Role)

	logs, err := audit_logs.GetAuditLogRepository().GetJoinLogsByUser(memberID, &audit_logs.QueryOptions{Limit: 10})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, audit_logs.JoinMethodAdminAdded, logs[0].Method)
	assert.Nil(t, logs[0].InviteToken)
}

func Test_AddMember_WhenActorIsMember_ReturnsForbidden(t *testing.T) {
	projectID, ownerID := createProjectWithOwner(t)
	memberID := addMember(t, projectID, ownerID, users_enums.ProjectRoleMember)

	_, err := projects_services.GetMembershipService().AddMember(
		context.Background(),
		projectID,
		&projects_dto.AddMemberRequestDTO{UserID: uuid.New(), Role: users_enums.ProjectRoleViewer},
		memberID,
	)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func Test_AddMember_WithOwnerRole_ReturnsOwnerConflict(t *testing.T) {
	projectID, ownerID := createProjectWithOwner(t)

	_, err := projects_services.GetMembershipService().AddMember(
		context.Background(),
		projectID,
		&projects_dto.AddMemberRequestDTO{UserID: uuid.New(), Role: users_enums.ProjectRoleOwner},
		ownerID,
	)
	assert.ErrorIs(t, err, apperrors.ErrOwnerConflict)
}

func Test_AddMember_AdminRole_RequiresOwnerActor(t *testing.T) {
	projectID, ownerID := createProjectWithOwner(t)
	adminID := addMember(t, projectID, ownerID, users_enums.ProjectRoleAdmin)
	membershipService := projects_services.GetMembershipService()

	_, err := membershipService.AddMember(
		context.Background(),
		projectID,
		&projects_dto.AddMemberRequestDTO{UserID: uuid.New(), Role: users_enums.ProjectRoleAdmin},
		adminID,
	)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = membershipService.AddMember(
		context.Background(),
		projectID,
		&projects_dto.AddMemberRequestDTO{UserID: uuid.New(), Role: users_enums.ProjectRoleAdmin},
		ownerID,
	)
	assert.NoError(t, err)
}

func Test_AddMember_WhenAlreadyMember_ReturnsAlreadyMember(t *testing.T) {
	projectID, ownerID := createProjectWithOwner(t)
	memberID := addMember(t, projectID, ownerID, users_enums.ProjectRoleMember)

	_, err := projects_services.GetMembershipService().AddMember(
		context.Background(),
		projectID,
		&projects_dto.AddMemberRequestDTO{UserID: memberID, Role: users_enums.ProjectRoleViewer},
		ownerID,
	)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyMember)
}

func Test_GetMembers_OrderedByRoleThenJoinTime(t *testing.T) {
	projectID, ownerID := createProjectWithOwner(t)

	viewerID := addMember(t, projectID, ownerID, users_enums.ProjectRoleViewer)
	memberID := addMember(t, projectID, ownerID, users_enums.ProjectRoleMember)
	adminID := addMember(t, projectID, ownerID, users_enums.ProjectRoleAdmin)

	response, err := projects_services.GetMembershipService().GetMembers(projectID, viewerID)
	require.NoError(t, err)
	require.Len(t, response.Members, 4)

	assert.Equal(t, ownerID, response.Members[0].UserID)
	assert.Equal(t, adminID, response.Members[1].UserID)
	assert.Equal(t, memberID, response.Members[2].UserID)
	assert.Equal(t, viewerID, response.Members[3].UserID)
}

func Test_GetMembers_WhenRequesterNotAMember_ReturnsForbidden(t *testing.T) {
	projectID, _ := createProjectWithOwner(t)

	_, err := projects_services.GetMembershipService().GetMembers(projectID, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func Test_GetMemberStats_CountsByRole(t *testing.T) {
	projectID, ownerID := createProjectWithOwner(t)

	addMember(t, projectID, ownerID, users_enums.ProjectRoleMember)
	addMember(t, projectID, ownerID, users_enums.ProjectRoleMember)
	addMember(t, projectID, ownerID, users_enums.ProjectRoleViewer)

	stats, err := projects_services.GetMembershipService().GetMemberStats(projectID, ownerID)
	require.NoError(t, err)

	assert.Equal(t, int64(4), stats.Total)
	assert.Equal(t, int64(1), stats.CountsByRole[users_enums.ProjectRoleOwner])
	assert.Equal(t, int64(2), stats.CountsByRole[users_enums.ProjectRoleMember])
	assert.Equal(t, int64(1), stats.CountsByRole[users_enums.ProjectRoleViewer])
}

func Test_ChangeMemberRole_WhenChangingOwnRole_ReturnsInvalidInput(t *testing.T) {
	projectID, ownerID := createProjectWithOwner(t)

	_, err := projects_services.GetMembershipService().ChangeMemberRole(
		context.Background(),
		projectID,
		ownerID,
		&projects_dto.ChangeMemberRoleRequestDTO{Role: users_enums.ProjectRoleAdmin},
		ownerID,
	)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func Test_ChangeMemberRole_PromotionToAdmin_RequiresOwnerActor(t *testing.T) {
	projectID, ownerID := createProjectWithOwner(t)
	adminID := addMember(t, projectID, ownerID, users_enums.ProjectRoleAdmin)
	memberID := addMember(t, projectID, ownerID, users_enums.ProjectRoleMember)

	_, err := projects_services.GetMembershipService().ChangeMemberRole(
		context.Background(),
		projectID,
		memberID,
		&projects_dto.ChangeMemberRoleRequestDTO{Role: users_enums.ProjectRoleAdmin},
		adminID,
	)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func Test_RemoveMember_SelfLeaveAllowedForAnyRole(t *testing.T) {
	projectID, ownerID := createProjectWithOwner(t)
	viewerID := addMember(t, projectID, ownerID, users_enums.ProjectRoleViewer)

	err := projects_services.GetMembershipService().RemoveMember(
		context.Background(), projectID, viewerID, viewerID,
	)
	require.NoError(t, err)

	role, err := projects_services.GetPermissionService().GetRole(projectID, viewerID)
	require.NoError(t, err)
	assert.Nil(t, role)
}

func Test_RemoveMember_WhenTargetIsOwner_ReturnsCannotRemoveOwner(t *testing.T) {
	projectID, ownerID := createProjectWithOwner(t)

	err := projects_services.GetMembershipService().RemoveMember(
		context.Background(), projectID, ownerID, ownerID,
	)
	assert.ErrorIs(t, err, apperrors.ErrCannotRemoveOwner)
}

func Test_RemoveMember_AdminTarget_RequiresOwnerActor(t *testing.T) {
	projectID, ownerID := createProjectWithOwner(t)
	firstAdminID := addMember(t, projectID, ownerID, users_enums.ProjectRoleAdmin)
	secondAdminID := addMember(t, projectID, ownerID, users_enums.ProjectRoleAdmin)
	membershipService := projects_services.GetMembershipService()

	err := membershipService.RemoveMember(context.Background(), projectID, firstAdminID, secondAdminID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	err = membershipService.RemoveMember(context.Background(), projectID, firstAdminID, ownerID)
	assert.NoError(t, err)
}

func Test_TransferOwnership_PromotesNewOwnerAndDemotesOld(t *testing.T) {
	projectID, ownerID := createProjectWithOwner(t)
	memberID := addMember(t, projectID, ownerID, users_enums.ProjectRoleMember)
	permissionService := projects_services.GetPermissionService()

	err := projects_services.GetMembershipService().TransferOwnership(
		context.Background(),
		projectID,
		&projects_dto.TransferOwnershipRequestDTO{NewOwnerID: memberID},
		ownerID,
	)
	require.NoError(t, err)

	newOwnerRole, err := permissionService.GetRole(projectID, memberID)
	require.NoError(t, err)
	require.NotNil(t, newOwnerRole)
	assert.Equal(t, users_enums.ProjectRoleOwner, *newOwnerRole)

	oldOwnerRole, err := permissionService.GetRole(projectID, ownerID)
	require.NoError(t, err)
	require.NotNil(t, oldOwnerRole)
	assert.Equal(t, users_enums.ProjectRoleAdmin, *oldOwnerRole)

	// Exactly one owner after the transfer.
	stats, err := projects_services.GetMembershipService().GetMemberStats(projectID, memberID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.CountsByRole[users_enums.ProjectRoleOwner])

	// Both sides of the transfer are logged.
	entries, err := audit_logs.GetAuditLogRepository().GetRoleChangesByProject(
		projectID, &audit_logs.QueryOptions{Limit: 10},
	)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func Test_TransferOwnership_WhenActorIsAdmin_ReturnsForbidden(t *testing.T) {
	projectID, ownerID := createProjectWithOwner(t)
	adminID := addMember(t, projectID, ownerID, users_enums.ProjectRoleAdmin)
	memberID := addMember(t, projectID, ownerID, users_enums.ProjectRoleMember)

	err := projects_services.GetMembershipService().TransferOwnership(
		context.Background(),
		projectID,
		&projects_dto.TransferOwnershipRequestDTO{NewOwnerID: memberID},
		adminID,
	)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func Test_TransferOwnership_WhenTargetNotAMember_ReturnsNotAMember(t *testing.T) {
	projectID, ownerID := createProjectWithOwner(t)

	err := projects_services.GetMembershipService().TransferOwnership(
		context.Background(),
		projectID,
		&projects_dto.TransferOwnershipRequestDTO{NewOwnerID: uuid.New()},
		ownerID,
	)
	assert.ErrorIs(t, err, apperrors.ErrNotAMember)
}
