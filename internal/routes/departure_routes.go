package routes

import (
	"github.com/gin-gonic/gin"

	"bus_booking/internal/controllers"
	"bus_booking/internal/middleware"
)

func DepartureRoutes(r *gin.Engine, authn *middleware.Authenticator, dc *controllers.DepartureController) {
	group := r.Group("/api/departures")
	{
		group.GET("", authn.RequireAdmin(), dc.List)
		group.PUT("/:id/status", authn.RequireAdmin(), dc.UpdateStatus)

		group.GET("/by_route_id/:route_id", dc.ByRoute)
		group.GET("/by_route/:route_id/calendar/:year/:month", dc.Calendar)
		group.GET("/by_route/:route_id/upcoming", dc.Upcoming)
		group.GET("/by_route/:route_id/daily/:year/:month/:day", dc.Daily)
	}
}
