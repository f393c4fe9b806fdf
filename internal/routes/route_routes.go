package routes

import (
	"github.com/gin-gonic/gin"

	"bus_booking/internal/controllers"
	"bus_booking/internal/middleware"
)

func RouteRoutes(r *gin.Engine, authn *middleware.Authenticator, rc *controllers.RouteController) {
	group := r.Group("/api/routes")
	{
		// Reads are public; anonymous callers just don't see DELETED routes.
		group.GET("", authn.OptionalUser(), rc.List)
		group.GET("/:id", authn.OptionalUser(), rc.Get)

		group.POST("", authn.RequireAdmin(), rc.Create)
		group.PUT("/:id", authn.RequireAdmin(), rc.Update)
		group.DELETE("/:id", authn.RequireAdmin(), rc.Delete)
	}
}
