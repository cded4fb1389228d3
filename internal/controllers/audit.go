package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"gearguard/internal/services"
	"gearguard/pkg/utils"
)

type AuditLogController struct {
	auditService services.AuditLogServiceInterface
	logger       *zap.Logger
}

func NewAuditLogController(auditService services.AuditLogServiceInterface, logger *zap.Logger) *AuditLogController {
	return &AuditLogController{auditService: auditService, logger: logger}
}

func (c *AuditLogController) GetAuditLogs(ctx echo.Context) error {
	requestID, err := parseOptionalUUIDQuery(ctx, "request_id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())
	logs, total, err := c.auditService.GetAuditLogs(ctx.Request().Context(), requestID, filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, logs, "Журнал аудита успешно получен", http.StatusOK, total)
}

func (c *AuditLogController) GetRequestAuditLogs(ctx echo.Context) error {
	id, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())
	logs, total, err := c.auditService.GetAuditLogs(ctx.Request().Context(),
		uuid.NullUUID{UUID: id, Valid: true}, filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, logs, "Журнал аудита заявки успешно получен", http.StatusOK, total)
}
