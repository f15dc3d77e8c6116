package projects_testing

import "github.com/gin-gonic/gin"

type ControllerInterface interface {
	RegisterRoutes(router *gin.RouterGroup)
}

// PublicControllerInterface is implemented by controllers that also
// expose endpoints outside the auth middleware.
type PublicControllerInterface interface {
	RegisterPublicRoutes(router *gin.RouterGroup)
}
