package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func parseUUIDParam(ctx echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "Неверный формат ID")
	}
	return id, nil
}

func parseOptionalUUIDQuery(ctx echo.Context, name string) (uuid.NullUUID, error) {
	raw := ctx.QueryParam(name)
	if raw == "" {
		return uuid.NullUUID{}, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.NullUUID{}, echo.NewHTTPError(http.StatusBadRequest, "Неверный формат параметра "+name)
	}
	return uuid.NullUUID{UUID: id, Valid: true}, nil
}
