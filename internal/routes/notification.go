package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"maintenance-system/internal/controllers"
	"maintenance-system/internal/services"
)

// Доступ к ящику проверяет сам сервис: роль определяет, чьи уведомления видны.
func runNotificationRouter(secureGroup *echo.Group, notificationService services.NotificationServiceInterface, logger *zap.Logger) {
	ctrl := controllers.NewNotificationController(notificationService, logger)

	secureGroup.GET("/notifications", ctrl.GetInbox)
	secureGroup.POST("/notifications/:id/read", ctrl.MarkRead)
}
