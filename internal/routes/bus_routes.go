package routes

import (
	"github.com/gin-gonic/gin"

	"bus_booking/internal/controllers"
	"bus_booking/internal/middleware"
)

func BusRoutes(r *gin.Engine, authn *middleware.Authenticator, bc *controllers.BusController) {
	group := r.Group("/api/buses", authn.RequireAdmin())
	{
		group.POST("", bc.CreateBus)
		group.GET("", bc.ListBuses)
		group.GET("/:id", bc.GetBus)
		group.PUT("/:id", bc.UpdateBus)
		group.DELETE("/:id", bc.DeleteBus)
	}
}
