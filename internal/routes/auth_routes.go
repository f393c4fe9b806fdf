package routes

import (
	"github.com/gin-gonic/gin"

	"bus_booking/internal/controllers"
	"bus_booking/internal/middleware"
)

func AuthRoutes(r *gin.Engine, authn *middleware.Authenticator, ac *controllers.AuthController) {
	group := r.Group("/api/auth")
	{
		group.POST("/register", ac.Register)
		group.POST("/login", ac.Login)
		group.POST("/refresh", ac.Refresh)
		group.POST("/logout", authn.RequireUser(), ac.Logout)

		group.GET("/me", authn.RequireUser(), ac.Me)
		group.PUT("/update-profile", authn.RequireUser(), ac.UpdateProfile)
		group.PUT("/change-password", authn.RequireUser(), ac.ChangePassword)
		group.DELETE("/users/me", authn.RequireUser(), ac.DeleteMe)

		admin := group.Group("", authn.RequireAdmin())
		{
			admin.POST("/register/admin", ac.RegisterAdmin)
			admin.DELETE("/admin/users/:id", ac.AdminDeleteUser)
			admin.DELETE("/admin/users/:id/hard-delete", ac.AdminHardDeleteUser)
			admin.POST("/admin/users/:id/reactivate", ac.AdminReactivateUser)
		}
	}
}
