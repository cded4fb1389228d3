package middleware

import (
	"context"
	"net/http"

	"gearguard/pkg/contextkeys"
	apperrors "gearguard/pkg/errors"
	"gearguard/pkg/utils"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const actorHeader = "X-User-ID"

// ActorMiddleware кладёт ID действующего пользователя из заголовка X-User-ID
// в контекст запроса. Проверка подлинности токенов сюда сознательно не входит:
// кто именно выдал заголовок, решает внешний слой (gateway).
type ActorMiddleware struct {
	logger *zap.Logger
}

func NewActorMiddleware(logger *zap.Logger) *ActorMiddleware {
	return &ActorMiddleware{logger: logger}
}

func (m *ActorMiddleware) Actor(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := c.Request().Header.Get(actorHeader)
		if raw == "" {
			return utils.ErrorResponse(c,
				apperrors.NewHttpError(http.StatusUnauthorized, "заголовок X-User-ID отсутствует", apperrors.ErrUserIDNotFoundInContext, nil),
				m.logger)
		}

		userID, err := uuid.Parse(raw)
		if err != nil {
			m.logger.Warn("неверный формат X-User-ID", zap.String("value", raw), zap.Error(err))
			return utils.ErrorResponse(c,
				apperrors.NewHttpError(http.StatusBadRequest, "неверный формат X-User-ID", apperrors.ErrInvalidUserID, nil),
				m.logger)
		}

		reqCtx := context.WithValue(c.Request().Context(), contextkeys.UserIDKey, userID)
		c.SetRequest(c.Request().WithContext(reqCtx))
		return next(c)
	}
}
