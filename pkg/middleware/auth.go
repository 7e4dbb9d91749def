package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "maintenance-system/pkg/errors"
	"maintenance-system/pkg/service"
	"maintenance-system/pkg/utils"
)

type AuthMiddleware struct {
	jwtService service.JWTService
	logger     *zap.Logger
}

func NewAuthMiddleware(jwtSvc service.JWTService, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtSvc,
		logger:     logger,
	}
}

// Auth - это основная функция middleware.
func (m *AuthMiddleware) Auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			m.logger.Warn("AuthMiddleware: Пустой заголовок Authorization")
			return utils.ErrorResponse(c, apperrors.ErrEmptyAuthHeader, m.logger)
		}

		// "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			m.logger.Warn("AuthMiddleware: Неверный формат заголовка Authorization")
			return utils.ErrorResponse(c, apperrors.ErrInvalidAuthHeader, m.logger)
		}

		claims, err := m.Authenticate(parts[1])
		if err != nil {
			return utils.ErrorResponse(c, err, m.logger)
		}

		ctx := utils.WithActor(c.Request().Context(), claims.UserID, claims.Role, claims.TechnicianID)
		c.SetRequest(c.Request().WithContext(ctx))

		m.logger.Debug("AuthMiddleware: Пользователь успешно аутентифицирован",
			zap.Uint64("userID", claims.UserID), zap.String("role", claims.Role))

		return next(c)
	}
}

// Authenticate проверяет access-токен. Используется и для websocket, где токен приходит в query.
func (m *AuthMiddleware) Authenticate(token string) (*service.JwtCustomClaim, error) {
	claims, err := m.jwtService.ValidateToken(token)
	if err != nil {
		m.logger.Warn("AuthMiddleware: Ошибка валидации токена", zap.Error(err))
		return nil, err
	}
	if claims.IsRefreshToken {
		m.logger.Warn("AuthMiddleware: Попытка доступа с refresh токеном")
		return nil, apperrors.ErrTokenIsNotAccess
	}
	return claims, nil
}

// RequireRoles пропускает запрос только для перечисленных ролей.
func (m *AuthMiddleware) RequireRoles(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, err := utils.GetUserRoleFromCtx(c.Request().Context())
			if err != nil {
				return utils.ErrorResponse(c, err, m.logger)
			}
			if _, ok := allowed[role]; !ok {
				m.logger.Warn("AuthMiddleware: Недостаточно прав",
					zap.String("role", role), zap.String("path", c.Path()))
				return utils.ErrorResponse(c, apperrors.ErrForbidden, m.logger)
			}
			return next(c)
		}
	}
}
