package routes

import (
	"github.com/labstack/echo/v4"

	"gearguard/internal/controllers"
)

func runTimeLogRouter(g *echo.Group, ctrl *controllers.TimeLogController) {
	g.GET("/time-logs", ctrl.GetTimeLogs)
	g.GET("/time-log/:id", ctrl.FindTimeLog)
	g.POST("/time-log", ctrl.CreateTimeLog)
	g.PUT("/time-log/:id", ctrl.UpdateTimeLog)
	g.DELETE("/time-log/:id", ctrl.DeleteTimeLog)
}
