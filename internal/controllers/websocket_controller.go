// internal/controllers/websocket_controller.go

package controllers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"maintenance-system/pkg/middleware"
	"maintenance-system/pkg/utils"
	appwebsocket "maintenance-system/pkg/websocket"
)

type WebSocketController struct {
	hub      *appwebsocket.Hub
	authMW   *middleware.AuthMiddleware
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewWebSocketController принимает список разрешённых origin. Пустой список пропускает всех.
func NewWebSocketController(hub *appwebsocket.Hub, authMW *middleware.AuthMiddleware, allowedOrigins []string, logger *zap.Logger) *WebSocketController {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = struct{}{}
	}

	return &WebSocketController{
		hub:    hub,
		authMW: authMW,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || len(origins) == 0 {
					return true
				}
				_, ok := origins[origin]
				return ok
			},
		},
		logger: logger,
	}
}

// ServeWs подключает клиента к хабу. Браузер не может передать заголовок,
// поэтому access-токен приходит в query.
func (c *WebSocketController) ServeWs(ctx echo.Context) error {
	tokenString := ctx.QueryParam("token")
	if tokenString == "" {
		return ctx.String(http.StatusUnauthorized, "Missing token")
	}

	claims, err := c.authMW.Authenticate(tokenString)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	conn, err := c.upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		c.logger.Error("WebSocket: не удалось улучшить соединение", zap.Error(err))
		return err
	}

	client := appwebsocket.NewClient(c.hub, conn, claims.UserID, claims.Role, claims.TechnicianID)
	if !c.hub.Join(client) {
		c.logger.Warn("WebSocket: хаб остановлен, соединение закрыто", zap.Uint64("userID", claims.UserID))
		return conn.Close()
	}

	go client.WritePump()
	go client.ReadPump()

	c.logger.Info("WebSocket: клиент успешно подключен",
		zap.Uint64("userID", claims.UserID), zap.String("role", claims.Role))
	return nil
}
