package invitations_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

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

func createProjectWithOwner(t *testing.T) (projectID uuid.UUID, ownerID uuid.UUID) {
	t.Helper()

	ownerID = uuid.New()
	project, err := projects_services.GetProjectService().CreateProject(
		context.Background(),
		&projects_dto.CreateProjectRequestDTO{Name: "Invitations Test Project"},
		ownerID,
	)
	require.NoError(t, err)

	return project.ID, ownerID
}

func intPtr(v int) *int { return &v }

func Test_CreateLink_WhenCreatorIsOwner_LinkCreated(t *testing.T) {
	projectID, ownerID := createProjectWithOwner(t)

	response, err := invitations.GetInvitationService().CreateLink(
		context.Background(), projectID, ownerID, &invitations.CreateLinkRequestDTO{},
	)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(response.Token, "inv_"))
	assert.Equal(t, users_enums.ProjectRoleMember, response.Role)
	assert.Equal(t, 0, response.CurrentUses)
	assert.Nil(t, response.MaxUses)
	assert.Nil(t, response.ExpiresAt)
}

func Test_CreateLink_WhenSecondLinkCreated_FirstIsSuperseded(t *testing.T) {
	projectID, ownerID := createProjectWithOwner(t)
	service := invitations.GetInvitationService()

	first, err := service.CreateLink(context.Background(), projectID, ownerID, &invitations.CreateLinkRequestDTO{})
	require.NoError(t, err)

	second, err := service.CreateLink(context.Background(), projectID, ownerID, &invitations.CreateLinkRequestDTO{})
	require.NoError(t, err)

	active, err := service.GetActiveLink(projectID, ownerID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)

	_, err = service.Validate(first.Token)
	assert.ErrorIs(t, err, apperrors.ErrInvalidOrExpiredToken)

	_, err = service.Validate(second.Token)
	assert.NoError(t, err)
}

func Test_CreateLink_WhenCreatorIsMember_ReturnsForbidden(t *testing.T) {
	projectID, ownerID := createProjectWithOwner(t)

	memberID := uuid.New()
	_, err := projects_services.GetMembershipService().AddMember(
		context.Background(),
		projectID,
		&projects_dto.AddMemberRequestDTO{UserID: memberID, Role: users_enums.ProjectRoleMember},
		ownerID,
	)
	require.NoError(t, err)

	_, err = invitations.GetInvitationService().CreateLink(
		context.Background(), projectID, memberID, &invitations.CreateLinkRequestDTO{},
	)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func Test_CreateLink_WithNonPositiveMaxUses_ReturnsInvalidInput(t *testing.T) {
	projectID, ownerID := createProjectWithOwner(t)

	_, err := invitations.GetInvitationService().CreateLink(
		context.Background(), projectID, ownerID,
		&invitations.CreateLinkRequestDTO{MaxUses: intPtr(0)},
	)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func Test_CreateLink_WithPastExpiry_ReturnsInvalidInput(t *testing.T) {
	projectID, ownerID := createProjectWithOwner(t)

	past := time.Now().UTC().Add(-time.Hour)
	_, err := invitations.GetInvitationService().CreateLink(
		context.Background(), projectID, ownerID,
		&invitations.CreateLinkRequestDTO{ExpiresAt: &past},
	)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func Test_CreateLink_WithPrivilegedRole_ReturnsInvalidInput(t *testing.T) {
	projectID, ownerID := createProjectWithOwner(t)

	adminRole := users_enums.ProjectRoleAdmin
	_, err := invitations.GetInvitationService().CreateLink(
		context.Background(), projectID, ownerID,
		&invitations.CreateLinkRequestDTO{Role: &adminRole},
	)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func Test_GetActiveLink_WhenNoActiveLink_ReturnsNotFound(t *testing.T) {
	projectID, ownerID := createProjectWithOwner(t)

	_, err := invitations.GetInvitationService().GetActiveLink(projectID, ownerID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func Test_Validate_WithUnknownToken_ReturnsInvalidOrExpiredToken(t *testing.T) {
	_, err := invitations.GetInvitationService().Validate("inv_bogus_token")
	assert.ErrorIs(t, err, apperrors.ErrInvalidOrExpiredToken)
}

func Test_Validate_WithActiveLink_ReturnsPreviewWithoutConsumingUse(t *testing.T) {
	projectID, ownerID := createProjectWithOwner(t)
	service := invitations.GetInvitationService()

	viewerRole := users_enums.ProjectRoleViewer
	link, err := service.CreateLink(
		context.Background(), projectID, ownerID,
		&invitations.CreateLinkRequestDTO{Role: &viewerRole, MaxUses: intPtr(1)},
	)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_ = i
		preview, err := service.Validate(link.Token)
		require.NoError(t, err)
		assert.Equal(t, projectID, preview.ProjectID)
		assert.Equal(t, "Invitations Test Project", preview.ProjectName)
		assert.Equal(t, users_enums.ProjectRoleViewer, preview.Role)
	}

	active, err := service.GetActiveLink(projectID, ownerID)
	require.NoError(t, err)
	assert.Equal(t, 0, active.CurrentUses)
}

func Test_Redeem_WhenLinkActive_MembershipAndJoinLogCreated(t *testing.T) {
	projectID, ownerID := createProjectWithOwner(t)
	service := invitations.GetInvitationService()

	viewerRole := users_enums.ProjectRoleViewer
	link, err := service.CreateLink(
		context.Background(), projectID, ownerID,
		&invitations.CreateLinkRequestDTO{Role: &viewerRole},
	)
	require.NoError(t, err)

	joinerID := uuid.New()
	ip := "203.0.113.7"
	result, err := service.Redeem(
		context.Background(), link.Token, joinerID,
		&invitations.RedeemOptions{IPAddress: &ip},
	)
	require.NoError(t, err)

	assert.Equal(t, projectID, result.ProjectID)
	assert.Equal(t, joinerID, result.UserID)
	assert.Equal(t, users_enums.ProjectRoleViewer, result.Role)

	role, err := projects_services.GetPermissionService().GetRole(projectID, joinerID)
	require.NoError(t, err)
	require.NotNil(t, role)
	assert.Equal(t, users_enums.ProjectRoleViewer, *role)

	logs, err := audit_logs.GetAuditLogRepository().GetJoinLogsByUser(joinerID, &audit_logs.QueryOptions{Limit: 10})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, audit_logs.JoinMethodInviteLink, logs[0].Method)
	require.NotNil(t, logs[0].InviteToken)
	assert.Equal(t, link.Token, *logs[0].InviteToken)
	require.NotNil(t, logs[0].IPAddress)
	assert.Equal(t, ip, *logs[0].IPAddress)

	active, err := service.GetActiveLink(projectID, ownerID)
	require.NoError(t, err)
	assert.Equal(t, 1, active.CurrentUses)
}

func Test_Redeem_WhenUserAlreadyMember_NoUsageConsumed(t *testing.T) {
	projectID, ownerID := createProjectWithOwner(t)
	service := invitations.GetInvitationService()

	link, err := service.CreateLink(
		context.Background(), projectID, ownerID,
		&invitations.CreateLinkRequestDTO{MaxUses: intPtr(1)},
	)
	require.NoError(t, err)

	_, err = service.Redeem(context.Background(), link.Token, ownerID, nil)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyMember)

	// The failed redemption must leave no trace: usage unchanged and
	// the link still redeemable by someone else.
	active, err := service.GetActiveLink(projectID, ownerID)
	require.NoError(t, err)
	assert.Equal(t, 0, active.CurrentUses)

	_, err = service.Redeem(context.Background(), link.Token, uuid.New(), nil)
	assert.NoError(t, err)
}

func Test_Redeem_WhenMaxUsesReached_ReturnsInvalidOrExpiredToken(t *testing.T) {
	projectID, ownerID := createProjectWithOwner(t)
	service := invitations.GetInvitationService()

	link, err := service.CreateLink(
		context.Background(), projectID, ownerID,
		&invitations.CreateLinkRequestDTO{MaxUses: intPtr(1)},
	)
	require.NoError(t, err)

	_, err = service.Redeem(context.Background(), link.Token, uuid.New(), nil)
	require.NoError(t, err)

	_, err = service.Redeem(context.Background(), link.Token, uuid.New(), nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidOrExpiredToken)
}

func Test_Redeem_WhenLinkExpired_ReturnsInvalidOrExpiredToken(t *testing.T) {
	projectID, ownerID := createProjectWithOwner(t)
	service := invitations.GetInvitationService()

	link, err := service.CreateLink(context.Background(), projectID, ownerID, &invitations.CreateLinkRequestDTO{})
	require.NoError(t, err)

	past := time.Now().UTC().Add(-time.Minute)
	err = projects_testing.GetTestDB().
		Model(&invitations.InvitationLink{}).
		Where("id = ?", link.ID).
		Update("expires_at", past).Error
	require.NoError(t, err)

	_, err = service.Redeem(context.Background(), link.Token, uuid.New(), nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidOrExpiredToken)
}

func Test_Redeem_ConcurrentOnLastUse_ExactlyOneWinner(t *testing.T) {
	projectID, ownerID := createProjectWithOwner(t)
	service := invitations.GetInvitationService()

	link, err := service.CreateLink(
		context.Background(), projectID, ownerID,
		&invitations.CreateLinkRequestDTO{MaxUses: intPtr(1)},
	)
	require.NoError(t, err)

	const contenders = 4

	var wg sync.WaitGroup
	results := make([]error, contenders)

	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			_, results[slot] = service.Redeem(context.Background(), link.Token, uuid.New(), nil)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range results {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, apperrors.ErrInvalidOrExpiredToken)
		}
	}
	assert.Equal(t, 1, winners, "exactly one concurrent redeemer must win the last use")

	active, err := service.GetActiveLink(projectID, ownerID)
	require.NoError(t, err)
	assert.Equal(t, 1, active.CurrentUses)
}

func Test_Deactivate_WhenCalledByOwner_LinkStopsWorking(t *testing.T) {
	projectID, ownerID := createProjectWithOwner(t)
	service := invitations.GetInvitationService()

	link, err := service.CreateLink(context.Background(), projectID, ownerID, &invitations.CreateLinkRequestDTO{})
	require.NoError(t, err)

	require.NoError(t, service.Deactivate(context.Background(), projectID, ownerID))

	_, err = service.Validate(link.Token)
	assert.ErrorIs(t, err, apperrors.ErrInvalidOrExpiredToken)

	_, err = service.GetActiveLink(projectID, ownerID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func Test_Deactivate_WhenCalledByNonMember_ReturnsForbidden(t *testing.T) {
	projectID, _ := createProjectWithOwner(t)

	err := invitations.GetInvitationService().Deactivate(context.Background(), projectID, uuid.New())
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))
}
