// Файл: internal/controllers/auth.go
package controllers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"maintenance-system/internal/dto"
	"maintenance-system/internal/entities"
	"maintenance-system/internal/services"
	"maintenance-system/pkg/config"
	apperrors "maintenance-system/pkg/errors"
	"maintenance-system/pkg/service"
	"maintenance-system/pkg/utils"
)

const refreshTokenCookie = "refreshToken"

type AuthController struct {
	authService services.AuthServiceInterface
	jwtSvc      service.JWTService
	cfg         *config.ServerConfig
	logger      *zap.Logger
}

func NewAuthController(
	authService services.AuthServiceInterface,
	jwtSvc service.JWTService,
	cfg *config.ServerConfig,
	logger *zap.Logger,
) *AuthController {
	return &AuthController{
		authService: authService,
		jwtSvc:      jwtSvc,
		cfg:         cfg,
		logger:      logger,
	}
}

func (ctrl *AuthController) Login(c echo.Context) error {
	var payload dto.LoginDTO
	if err := c.Bind(&payload); err != nil {
		return utils.ErrorResponse(c, apperrors.NewBadRequestError("Неверный формат запроса"), ctrl.logger)
	}
	if err := c.Validate(&payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	user, err := ctrl.authService.Login(c.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	return ctrl.generateTokensAndRespond(c, user, "Вход выполнен успешно")
}

func (ctrl *AuthController) RefreshToken(c echo.Context) error {
	cookie, err := c.Cookie(refreshTokenCookie)
	if err != nil || cookie.Value == "" {
		return utils.ErrorResponse(c, apperrors.ErrUnauthorized, ctrl.logger)
	}

	claims, err := ctrl.jwtSvc.ValidateToken(cookie.Value)
	if err != nil {
		ctrl.clearRefreshCookie(c)
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	if !claims.IsRefreshToken {
		return utils.ErrorResponse(c, apperrors.ErrTokenIsNotRefresh, ctrl.logger)
	}

	// роль и привязка к технику могли измениться, поэтому пользователь читается заново
	user, err := ctrl.authService.GetUserByID(c.Request().Context(), claims.UserID)
	if err != nil {
		ctrl.clearRefreshCookie(c)
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	return ctrl.generateTokensAndRespond(c, user, "Токены успешно обновлены")
}

func (ctrl *AuthController) Logout(c echo.Context) error {
	ctrl.clearRefreshCookie(c)
	return utils.SuccessResponse(c, nil, "Выход выполнен успешно", http.StatusOK)
}

func (ctrl *AuthController) Me(c echo.Context) error {
	reqCtx := c.Request().Context()
	userID, err := utils.GetUserIDFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	user, err := ctrl.authService.GetUserByID(reqCtx, userID)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, dto.UserFromEntity(*user), "Профиль пользователя получен", http.StatusOK)
}

func (ctrl *AuthController) clearRefreshCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     refreshTokenCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   ctrl.cfg.SecureCookies,
		MaxAge:   -1,
	})
}

func (ctrl *AuthController) generateTokensAndRespond(c echo.Context, user *entities.User, message string) error {
	accessToken, refreshToken, err := ctrl.jwtSvc.GenerateTokens(service.TokenSubject{
		UserID:       user.ID,
		Role:         string(user.Role),
		TechnicianID: user.TechnicianID,
	})
	if err != nil {
		ctrl.logger.Error("Не удалось сгенерировать токены", zap.Error(err), zap.Uint64("userID", user.ID))
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	cookie := new(http.Cookie)
	cookie.Name = refreshTokenCookie
	cookie.Value = refreshToken
	cookie.Path = "/"
	cookie.HttpOnly = true
	cookie.Secure = ctrl.cfg.SecureCookies
	if ctrl.cfg.SecureCookies {
		cookie.SameSite = http.SameSiteNoneMode
	} else {
		cookie.SameSite = http.SameSiteLaxMode
	}
	cookie.Expires = time.Now().Add(ctrl.jwtSvc.GetRefreshTokenTTL())
	c.SetCookie(cookie)

	response := dto.AuthResponseDTO{
		AccessToken: accessToken,
		User:        dto.UserFromEntity(*user),
	}
	return utils.SuccessResponse(c, response, message, http.StatusOK)
}
