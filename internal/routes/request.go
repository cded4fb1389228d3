package routes

import (
	"github.com/labstack/echo/v4"

	"gearguard/internal/controllers"
)

func runRequestRouter(g *echo.Group, ctrl *controllers.RequestController, auditCtrl *controllers.AuditLogController) {
	g.GET("/requests", ctrl.GetRequests)
	g.GET("/requests/overdue", ctrl.GetOverdueRequests)
	g.GET("/requests/calendar", ctrl.GetCalendarRequests)
	g.GET("/request/:id", ctrl.FindRequest)
	g.GET("/request/:id/audit-logs", auditCtrl.GetRequestAuditLogs)
	g.POST("/request", ctrl.CreateRequest)
	g.PUT("/request/:id", ctrl.UpdateRequest)
	g.DELETE("/request/:id", ctrl.DeleteRequest)
}
