package routes

import (
	"github.com/labstack/echo/v4"

	"gearguard/internal/controllers"
)

func runEquipmentRouter(g *echo.Group, ctrl *controllers.EquipmentController) {
	g.GET("/equipment", ctrl.GetEquipmentList)
	g.GET("/equipment/categories", ctrl.GetCategories)
	g.GET("/equipment/:id", ctrl.FindEquipment)
	g.GET("/equipment/:id/auto-fill", ctrl.GetAutoFill)
	g.POST("/equipment", ctrl.CreateEquipment)
	g.POST("/equipment/import", ctrl.ImportEquipment)
	g.PUT("/equipment/:id", ctrl.UpdateEquipment)
	g.DELETE("/equipment/:id", ctrl.DeleteEquipment)
}
