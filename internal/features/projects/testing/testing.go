package projects_testing

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	audit_logs "collabhub/internal/features/audit_logs"
	projects_dto "collabhub/internal/features/projects/dto"
	projects_services "collabhub/internal/features/projects/services"
	users_enums "collabhub/internal/features/users/enums"
	users_middleware "collabhub/internal/features/users/middleware"
	users_services "collabhub/internal/features/users/services"
	"collabhub/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	gorm_logger "gorm.io/gorm/logger"

	"gorm.io/gorm"
)

const testJwtSecret = "collabhub-test-secret"

var (
	testDB    *gorm.DB
	setupOnce sync.Once
)

// SetupTestEnvironment opens an in-memory database and wires the core
// features against it. Features further up the dependency chain run
// their own Setup after this. The single connection makes concurrent
// transactions serialize, which the redemption tests rely on.
func SetupTestEnvironment() *gorm.DB {
	setupOnce.Do(func() {
		db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
			Logger: gorm_logger.Default.LogMode(gorm_logger.Silent),
		})
		if err != nil {
			panic(fmt.Sprintf("failed to open test database: %v", err))
		}

		sqlDB, err := db.DB()
		if err != nil {
			panic(err)
		}
		sqlDB.SetMaxOpenConns(1)

		if err := storage.Migrate(db); err != nil {
			panic(fmt.Sprintf("failed to migrate test database: %v", err))
		}

		users_services.Setup(testJwtSecret)
		audit_logs.Setup(db)
		projects_services.Setup(db)

		testDB = db
	})

	return testDB
}

func GetTestDB() *gorm.DB {
	return SetupTestEnvironment()
}

func CreateTestRouter(controllers ...ControllerInterface) *gin.Engine {
	SetupTestEnvironment()

	gin.SetMode(gin.TestMode)
	router := gin.New()

	v1 := router.Group("/api/v1")
	protected := v1.Group("")
	protected.Use(users_middleware.AuthMiddleware(users_services.GetAuthService()))

	for _, controller := range controllers {
		controller.RegisterRoutes(protected)

		if public, ok := controller.(PublicControllerInterface); ok {
			public.RegisterPublicRoutes(v1)
		}
	}

	return router
}

// TestUser is an opaque identity paired with a bearer token. There is
// no user table; ids come from the external identity provider.
type TestUser struct {
	ID    uuid.UUID
	Token string
}

func CreateTestUser() *TestUser {
	SetupTestEnvironment()

	userID := uuid.New()

	token, err := users_services.GetAuthService().IssueToken(userID, time.Hour)
	if err != nil {
		panic(fmt.Sprintf("failed to issue test token: %v", err))
	}

	return &TestUser{ID: userID, Token: token}
}

func CreateTestProjectViaAPI(
	name string,
	owner *TestUser,
	router *gin.Engine,
) *projects_dto.ProjectResponseDTO {
	request := projects_dto.CreateProjectRequestDTO{Name: name}
	w := MakeAPIRequest(router, "POST", "/api/v1/projects", "Bearer "+owner.Token, request)

	if w.Code != http.StatusOK {
		panic(fmt.Sprintf("failed to create test project. Status: %d, Body: %s", w.Code, w.Body.String()))
	}

	var response projects_dto.ProjectResponseDTO
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		panic(err)
	}

	return &response
}

func AddMemberToProject(
	projectID uuid.UUID,
	member *TestUser,
	role users_enums.ProjectRole,
	ownerToken string,
	router *gin.Engine,
) {
	request := projects_dto.AddMemberRequestDTO{
		UserID: member.ID,
		Role:   role,
	}

	w := MakeAPIRequest(
		router,
		"POST",
		"/api/v1/projects/"+projectID.String()+"/members",
		"Bearer "+ownerToken,
		request,
	)

	if w.Code != http.StatusOK {
		panic("failed to add member to project via API: " + w.Body.String())
	}
}
