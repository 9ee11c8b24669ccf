package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/space-reservation/internal/handler"
	"github.com/iliyamo/space-reservation/internal/middleware"
	"github.com/iliyamo/space-reservation/internal/model"
)

// RegisterRoutes registers the routes that require no authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth wires the auth endpoints.  Login and refresh are open;
// logout and the profile endpoint need a valid token; registering new
// accounts is an admin operation, since this backend has no public
// signup.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)

	protected := e.Group("/v1/auth")
	protected.Use(middleware.JWTAuth(jwtSecret))
	protected.POST("/logout", a.Logout)
	protected.POST("/register", a.Register, middleware.RequireRole(model.RoleAdmin))

	user := e.Group("/v1")
	user.Use(middleware.JWTAuth(jwtSecret))
	user.GET("/user", a.Me)
}

// RegisterCatalog wires the space and type catalog.  Every catalog
// route, reads included, is admin-only; the GET routes additionally
// sit behind the response cache, which is safe because all admins see
// identical output.
func RegisterCatalog(e *echo.Echo, s *handler.SpaceHandler, t *handler.TypeHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleAdmin))

	g.GET("/spaces", s.List, cache)
	g.GET("/spaces/:id", s.Get, cache)
	g.GET("/types", t.List, cache)
	g.GET("/types/:id", t.Get, cache)

	g.POST("/spaces", s.Create)
	g.PUT("/spaces/:id", s.Update)
	g.DELETE("/spaces/:id", s.Delete)
	g.POST("/types", t.Create)
	g.PUT("/types/:id", t.Update)
}

// RegisterReservations wires the reservation endpoints for admins and
// assistants.  The status listing is registered before the :id routes
// so "status" never binds as an identifier.
func RegisterReservations(e *echo.Echo, r *handler.ReservationHandler, jwtSecret string) {
	g := e.Group("/v1/reservations")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleAdmin, model.RoleAssistant))

	g.GET("/status", r.Statuses)
	g.GET("", r.List)
	g.POST("", r.Create)
	g.GET("/:id", r.Get)
	g.PUT("/:id", r.Update)
	g.DELETE("/:id", r.Delete)
}
