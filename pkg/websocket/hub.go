package websocket

import (
	"context"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Hub управляет всеми клиентами и рассылкой сообщений
type Hub struct {
	clients map[*Client]bool
	stopped bool
	mu      sync.RWMutex
	logger  *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]bool),
		logger:  logger,
	}
}

// Run ждёт отмены контекста и закрывает все соединения.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopped = true
	for client := range h.clients {
		h.removeLocked(client)
	}
	h.logger.Info("WebSocket хаб остановлен")
}

// Join регистрирует клиента. После остановки хаба возвращает false.
func (h *Hub) Join(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return false
	}
	h.clients[client] = true
	h.logger.Debug("Клиент зарегистрирован",
		zap.Uint64("userID", client.UserID),
		zap.String("role", client.Role),
		zap.Int("connections", len(h.clients)))
	return true
}

// leave снимает клиента с учёта и закрывает его очередь отправки.
func (h *Hub) leave(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.Send)
	h.logger.Debug("Клиент отсоединен", zap.Uint64("userID", client.UserID))
}

func encode(payload interface{}, messageType string) ([]byte, error) {
	return json.Marshal(Envelope{
		Type:      messageType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	})
}

// SendMessageWhere отправляет сообщение всем клиентам, для которых match вернул true.
// Возвращает количество получателей.
func (h *Hub) SendMessageWhere(match func(*Client) bool, payload interface{}, messageType string) (int, error) {
	messageBytes, err := encode(payload, messageType)
	if err != nil {
		h.logger.Error("Ошибка сериализации сообщения для WebSocket", zap.Error(err))
		return 0, err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	sent := 0
	for client := range h.clients {
		if match(client) {
			h.deliver(client, messageBytes)
			sent++
		}
	}
	return sent, nil
}

// deliver не блокирует хаб: медленный клиент теряет сообщение.
func (h *Hub) deliver(client *Client, message []byte) {
	select {
	case client.Send <- message:
	default:
		h.logger.Warn("Буфер WebSocket клиента переполнен, сообщение пропущено", zap.Uint64("userID", client.UserID))
	}
}
