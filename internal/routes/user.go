package routes

import (
	"github.com/labstack/echo/v4"

	"gearguard/internal/controllers"
)

func runUserRouter(g *echo.Group, ctrl *controllers.UserController) {
	g.GET("/users", ctrl.GetUsers)
	g.GET("/user/:id", ctrl.FindUser)
	g.POST("/user", ctrl.CreateUser)
	g.PUT("/user/:id", ctrl.UpdateUser)
	g.DELETE("/user/:id", ctrl.DeleteUser)
}
