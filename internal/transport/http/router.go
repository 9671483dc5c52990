package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/devaaa008/document-management/internal/handlers"
	"github.com/devaaa008/document-management/internal/middleware/auth"
	"github.com/devaaa008/document-management/internal/models"
	"github.com/devaaa008/document-management/internal/revocation"
)

// Per-route role allow-lists, declared once and enforced by RequireRole.
var (
	editorRoles = []string{models.RoleAdmin, models.RoleEditor}
	readerRoles = []string{models.RoleAdmin, models.RoleEditor, models.RoleViewer}
	adminRoles  = []string{models.RoleAdmin}
)

type Deps struct {
	DB               *gorm.DB
	JWTSecret        []byte
	Revoked          *revocation.Store
	AuthHandler      *handlers.AuthHandler
	UserHandler      *handlers.UserHandler
	DocumentHandler  *handlers.DocumentHandler
	IngestionHandler *handlers.IngestionHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	authMW := auth.Middleware(d.Revoked, d.JWTSecret)

	e.POST("/auth/login", d.AuthHandler.Login)
	e.POST("/auth/logout", d.AuthHandler.Logout)

	users := e.Group("/users")
	users.POST("/register", d.UserHandler.Register)
	users.GET("/users", d.UserHandler.GetAllUsers, authMW, auth.RequireRole(adminRoles...))
	users.PUT("/user", d.UserHandler.UpdateRoles, authMW, auth.RequireRole(adminRoles...))

	doc := e.Group("/document", authMW)
	doc.POST("", d.DocumentHandler.CreateDocument, auth.RequireRole(editorRoles...))
	doc.GET("/documents", d.DocumentHandler.GetDocuments, auth.RequireRole(readerRoles...))
	doc.GET("/search", d.DocumentHandler.SearchDocuments, auth.RequireRole(readerRoles...))
	doc.GET("/:id", d.DocumentHandler.GetDocument, auth.RequireRole(readerRoles...))
	doc.PUT("/:id", d.DocumentHandler.UpdateDocument, auth.RequireRole(editorRoles...))
	doc.DELETE("/:id", d.DocumentHandler.DeleteDocument, auth.RequireRole(editorRoles...))

	ingestion := e.Group("/ingestion", authMW)
	ingestion.POST("/trigger/:documentId", d.IngestionHandler.TriggerIngestion, auth.RequireRole(editorRoles...))
	ingestion.GET("/status", d.IngestionHandler.GetIngestionStatus, auth.RequireRole(editorRoles...))
}
