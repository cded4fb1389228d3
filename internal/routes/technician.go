package routes

import (
	"github.com/labstack/echo/v4"

	"gearguard/internal/controllers"
)

func runTechnicianRouter(g *echo.Group, ctrl *controllers.TechnicianController) {
	g.GET("/technicians", ctrl.GetTechnicians)
	g.GET("/technician/:id", ctrl.FindTechnician)
	g.POST("/technician", ctrl.CreateTechnician)
	g.PUT("/technician/:id", ctrl.UpdateTechnician)
	g.DELETE("/technician/:id", ctrl.DeleteTechnician)
}
