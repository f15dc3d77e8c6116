package projects_services_test

import (
	"context"
	"testing"

	"collabhub/internal/apperrors"
	audit_logs "collabhub/internal/features/audit_logs"
	"collabhub/internal/features/invitations"
	projects_dto "collabhub/internal/features/projects/dto"
	projects_services "collabhub/internal/features/projects/services"
	projects_testing "collabhub/internal/features/projects/testing"
	users_enums "collabhub/internal/features/users/enums"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_CreateProject_BootstrapsOwnerMembership(t *testing.T) {
	creatorID := uuid.New()

	project, err := projects_services.GetProjectService().CreateProject(
		context.Background(),
		&projects_dto.CreateProjectRequestDTO{Name: "Bootstrap Project"},
		creatorID,
	)
	require.NoError(t, err)
	require.NotNil(t, project.UserRole)
	assert.Equal(t, users_enums.ProjectRoleOwner, *project.UserRole)

	role, err := projects_services.GetPermissionService().GetRole(project.ID, creatorID)
	require.NoError(t, err)
	require.NotNil(t, role)
	assert.Equal(t, users_enums.ProjectRoleOwner, *role)
}

func Test_GetProject_WhenViewer_Allowed(t *testing.T) {
	projectID, ownerID := createProjectWithOwner(t)
	viewerID := addMember(t, projectID, ownerID, users_enums.ProjectRoleViewer)

	project, err := projects_services.GetProjectService().GetProject(projectID, viewerID)
	require.NoError(t, err)
	assert.Equal(t, projectID, project.ID)
}

func Test_GetProject_WhenNotAMember_ReturnsForbidden(t *testing.T) {
	projectID, _ := createProjectWithOwner(t)

	_, err := projects_services.GetProjectService().GetProject(projectID, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func Test_GetUserProjects_ReturnsProjectsWithRequesterRole(t *testing.T) {
	firstProjectID, ownerID := createProjectWithOwner(t)
	secondProjectID, secondOwnerID := createProjectWithOwner(t)
	addMemberWithID(t, secondProjectID, secondOwnerID, ownerID, users_enums.ProjectRoleViewer)

	response, err := projects_services.GetProjectService().GetUserProjects(ownerID)
	require.NoError(t, err)
	require.Len(t, response.Projects, 2)

	rolesByProject := map[uuid.UUID]users_enums.ProjectRole{}
	for _, project := range response.Projects {
		require.NotNil(t, project.UserRole)
		rolesByProject[project.ID] = *project.UserRole
	}

	assert.Equal(t, users_enums.ProjectRoleOwner, rolesByProject[firstProjectID])
	assert.Equal(t, users_enums.ProjectRoleViewer, rolesByProject[secondProjectID])
}

func Test_DeleteProject_WhenOwner_RemovesAllProjectData(t *testing.T) {
	projectID, ownerID := createProjectWithOwner(t)
	memberID := addMember(t, projectID, ownerID, users_enums.ProjectRoleMember)

	_, err := invitations.GetInvitationService().CreateLink(
		context.Background(), projectID, ownerID, &invitations.CreateLinkRequestDTO{},
	)
	require.NoError(t, err)

	err = projects_services.GetProjectService().DeleteProject(context.Background(), projectID, ownerID)
	require.NoError(t, err)

	_, err = projects_services.GetProjectService().GetProject(projectID, ownerID)
	assert.Error(t, err)

	role, err := projects_services.GetPermissionService().GetRole(projectID, memberID)
	require.NoError(t, err)
	assert.Nil(t, role)

	entries, err := audit_logs.GetAuditLogRepository().GetJoinLogsByProject(
		projectID, &audit_logs.QueryOptions{Limit: 10},
	)
	require.NoError(t, err)
	assert.Empty(t, entries)

	var linkCount int64
	err = projects_testing.GetTestDB().
		Model(&invitations.InvitationLink{}).
		Where("project_id = ?", projectID).
		Count(&linkCount).Error
	require.NoError(t, err)
	assert.Zero(t, linkCount)
}

func Test_DeleteProject_WhenAdmin_ReturnsForbidden(t *testing.T) {
	projectID, ownerID := createProjectWithOwner(t)
	adminID := addMember(t, projectID, ownerID, users_enums.ProjectRoleAdmin)

	err := projects_services.GetProjectService().DeleteProject(context.Background(), projectID, adminID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func addMemberWithID(
	t *testing.T,
	projectID uuid.UUID,
	actorID uuid.UUID,
	userID uuid.UUID,
	role users_enums.ProjectRole,
) {
	t.Helper()

	_, err := projects_services.GetMembershipService().AddMember(
		context.Background(),
		projectID,
		&projects_dto.AddMemberRequestDTO{UserID: userID, Role: role},
		actorID,
	)
	require.NoError(t, err)
}
