package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"bus_booking/internal/auth"
	"bus_booking/internal/controllers"
	"bus_booking/internal/middleware"
)

// SetupRouter wires every API group onto a fresh engine.
func SetupRouter(db *gorm.DB, tokens *auth.TokenManager) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ginlog.SetLogger())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}))

	authn := middleware.NewAuthenticator(db, tokens)

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"service": "bus-booking-api"})
	})
	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	AuthRoutes(r, authn, controllers.NewAuthController(db, tokens))
	RouteRoutes(r, authn, controllers.NewRouteController(db))
	BusRoutes(r, authn, controllers.NewBusController(db))
	DepartureRoutes(r, authn, controllers.NewDepartureController(db))

	return r
}
