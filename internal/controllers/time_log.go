package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"gearguard/internal/dto"
	"gearguard/internal/services"
	"gearguard/pkg/utils"
)

type TimeLogController struct {
	timeLogService services.TimeLogServiceInterface
	logger         *zap.Logger
}

func NewTimeLogController(timeLogService services.TimeLogServiceInterface, logger *zap.Logger) *TimeLogController {
	return &TimeLogController{timeLogService: timeLogService, logger: logger}
}

func (c *TimeLogController) GetTimeLogs(ctx echo.Context) error {
	requestID, err := parseOptionalUUIDQuery(ctx, "request_id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	technicianID, err := parseOptionalUUIDQuery(ctx, "technician_id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())
	logs, total, err := c.timeLogService.GetTimeLogs(ctx.Request().Context(), requestID, technicianID, filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, logs, "Записи времени успешно получены", http.StatusOK, total)
}

func (c *TimeLogController) FindTimeLog(ctx echo.Context) error {
	id, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	log, err := c.timeLogService.FindTimeLog(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, log, "Запись времени успешно найдена", http.StatusOK)
}

func (c *TimeLogController) CreateTimeLog(ctx echo.Context) error {
	var payload dto.CreateTimeLogDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "Неверное тело запроса"), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	log, err := c.timeLogService.CreateTimeLog(ctx.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, log, "Запись времени успешно создана", http.StatusCreated)
}

func (c *TimeLogController) UpdateTimeLog(ctx echo.Context) error {
	id, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.UpdateTimeLogDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "Неверное тело запроса"), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	log, err := c.timeLogService.UpdateTimeLog(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, log, "Запись времени успешно обновлена", http.StatusOK)
}

func (c *TimeLogController) DeleteTimeLog(ctx echo.Context) error {
	id, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := c.timeLogService.DeleteTimeLog(ctx.Request().Context(), id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Запись времени успешно удалена", http.StatusOK)
}
