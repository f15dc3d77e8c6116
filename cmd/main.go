package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"collabhub/internal/cache"
	"collabhub/internal/config"
	audit_logs "collabhub/internal/features/audit_logs"
	"collabhub/internal/features/invitations"
	projects_controllers "collabhub/internal/features/projects/controllers"
	projects_services "collabhub/internal/features/projects/services"
	system_healthcheck "collabhub/internal/features/system/healthcheck"
	users_middleware "collabhub/internal/features/users/middleware"
	users_services "collabhub/internal/features/users/services"
	"collabhub/internal/storage"
	env_utils "collabhub/internal/util/env"
	"collabhub/internal/util/logger"
	rate_limit "collabhub/internal/util/rate_limit"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// @title CollabHub Backend API
// @version 1.0
// @description Membership, permission, and invitation API for CollabHub projects

// @host localhost:4010
// @BasePath /api/v1
// @schemes http
func main() {
	log := logger.GetLogger()
	env := config.GetEnv()

	db, err := storage.Open(env.DatabaseDsn)
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer storage.Close(db, log)

	if err := storage.Migrate(db); err != nil {
		log.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	valkeyClient, err := cache.New(env)
	if err != nil {
		log.Error("Failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	rateLimiter := rate_limit.NewRateLimiter(valkeyClient)

	setUpDependencies(db, rateLimiter, env)

	go generateSwaggerDocs(log)

	gin.SetMode(gin.ReleaseMode)
	ginApp := gin.Default()

	ginApp.Use(gzip.Gzip(gzip.DefaultCompression))

	enableCors(ginApp)
	setUpRoutes(ginApp)

	startServerWithGracefulShutdown(log, ginApp, env)
}

// Setup order matters: audit_logs needs its permission checker from
// projects_services, which is injected inside projects_services.Setup.
func setUpDependencies(db *gorm.DB, rateLimiter *rate_limit.RateLimiter, env config.EnvVariables) {
	users_services.Setup(env.JwtSecret)
	audit_logs.Setup(db)
	projects_services.Setup(db)
	projects_controllers.Setup()
	invitations.Setup(db, rateLimiter)
	system_healthcheck.Setup(db)
}

func setUpRoutes(r *gin.Engine) {
	v1 := r.Group("/api/v1")

	// Mount Swagger UI
	v1.GET("/docs/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Public routes
	system_healthcheck.GetHealthcheckController().RegisterRoutes(v1)
	invitations.GetInvitationController().RegisterPublicRoutes(v1)

	authMiddleware := users_middleware.AuthMiddleware(users_services.GetAuthService())

	// Protected routes
	protected := v1.Group("")
	protected.Use(authMiddleware)

	projects_controllers.GetProjectController().RegisterRoutes(protected)
	projects_controllers.GetMembershipController().RegisterRoutes(protected)
	invitations.GetInvitationController().RegisterRoutes(protected)
	audit_logs.GetAuditLogController().RegisterRoutes(protected)
}

func startServerWithGracefulShutdown(log *slog.Logger, app *gin.Engine, env config.EnvVariables) {
	srv := &http.Server{
		Addr:    env.ListenAddress,
		Handler: app,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("listen:", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("Shutdown signal received")

	// Give in-flight requests 10 seconds to finish
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown:", "error", err)
	}

	log.Info("Server gracefully stopped")
}

// Keep in mind: docs appear after second launch, because Swagger
// is generated into Go files. So if we changed files, we generate
// new docs, but still need to restart the server to see them.
func generateSwaggerDocs(log *slog.Logger) {
	if config.GetEnv().EnvMode == env_utils.EnvModeProduction {
		return
	}

	currentDir, err := os.Getwd()
	if err != nil {
		log.Error("Failed to get current directory", "error", err)
		return
	}

	cmd := exec.Command("swag", "init", "-d", currentDir, "-g", "cmd/main.go", "-o", "swagger")

	output, err := cmd.CombinedOutput()
	if err != nil {
		log.Error("Failed to generate Swagger docs", "error", err, "output", string(output))
		return
	}

	log.Info("Swagger documentation generated successfully")
}

func enableCors(ginApp *gin.Engine) {
	if config.GetEnv().EnvMode != env_utils.EnvModeDevelopment {
		return
	}

	ginApp.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders: []string{
			"Origin",
			"Content-Length",
			"Content-Type",
			"Authorization",
			"Accept",
			"Accept-Language",
			"Accept-Encoding",
		},
		AllowCredentials: true,
	}))
}
