package routes

import (
	"github.com/labstack/echo/v4"

	"gearguard/internal/controllers"
)

func runMaintenanceTeamRouter(g *echo.Group, ctrl *controllers.MaintenanceTeamController) {
	g.GET("/maintenance-teams", ctrl.GetTeams)
	g.GET("/maintenance-team/:id", ctrl.FindTeam)
	g.POST("/maintenance-team", ctrl.CreateTeam)
	g.PUT("/maintenance-team/:id", ctrl.UpdateTeam)
	g.DELETE("/maintenance-team/:id", ctrl.DeleteTeam)
}
