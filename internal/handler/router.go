package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/library-portal-api/internal/middleware"
	"github.com/noah-isme/library-portal-api/internal/service"
)

// Deps bundles everything the route table needs.
type Deps struct {
	Auth       *AuthHandler
	Students   *StudentHandler
	Dashboard  *DashboardHandler
	Exports    *ExportHandler
	Identity   *service.IdentityService
	ServiceKey string
}

// RegisterRoutes mounts the API surface on the given group. Every route
// requires the shared service key except photo retrieval, which is guarded
// by its signed token; the profile route additionally requires a bearer
// token.
func RegisterRoutes(g *gin.RouterGroup, deps Deps) {
	g.GET("/photos/:token", deps.Students.ServePhoto)

	keyed := g.Group("")
	keyed.Use(middleware.ServiceKey(deps.ServiceKey))
	keyed.POST("/register-student", deps.Auth.RegisterStudent)
	keyed.POST("/login", deps.Auth.Login)
	keyed.POST("/librarian-login", deps.Auth.LibrarianLogin)
	keyed.POST("/upload-photo", deps.Students.UploadPhoto)
	keyed.GET("/students", deps.Students.List)
	keyed.PUT("/student/:userId", deps.Students.Update)
	keyed.DELETE("/student/:userId", deps.Students.Delete)
	keyed.GET("/dashboard-stats", deps.Dashboard.Stats)
	keyed.GET("/students/export", deps.Exports.Download)

	member := keyed.Group("")
	member.Use(middleware.Auth(deps.Identity))
	member.GET("/student-profile", deps.Students.Profile)
}
