package routes

import (
	"github.com/labstack/echo/v4"

	"gearguard/internal/controllers"
)

func runAuditLogRouter(g *echo.Group, ctrl *controllers.AuditLogController) {
	g.GET("/audit-logs", ctrl.GetAuditLogs)
}
