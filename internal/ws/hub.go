package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/zipzag-catalog/internal/logger"
	"github.com/ignatzorin/zipzag-catalog/internal/models"
)

// EventActivity имя события новой записи ленты.
const EventActivity = "activity"

// Hub рассылает события всем подключённым администраторам.
type Hub struct {
	mu         sync.RWMutex
	clients    map[uuid.UUID]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
}

// NewHub создаёт новый хаб.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
	}
}

// Run запускает главный цикл хаба до отмены контекста.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case payload := <-h.broadcast:
			h.send(payload)
		}
	}
}

// Register добавляет клиента. После остановки хаба возвращает false.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister удаляет клиента.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast отправляет событие всем клиентам. Сообщение отбрасывается, если очередь переполнена.
func (h *Hub) Broadcast(event string, data any) error {
	// type содержит имя события, data полезную нагрузку
	raw, err := json.Marshal(map[string]any{
		"type": event,
		"data": data,
	})
	if err != nil {
		return fmt.Errorf("ws: не удалось сериализовать сообщение: %w", err)
	}

	select {
	case h.broadcast <- raw:
	case <-h.done:
	default:
		logger.Log.WithField("event", event).Warn("ws: очередь рассылки переполнена, событие отброшено")
	}
	return nil
}

// BroadcastActivity рассылает запись ленты активности.
func (h *Hub) BroadcastActivity(a *models.Activity) {
	if err := h.Broadcast(EventActivity, a); err != nil {
		logger.Log.WithError(err).Warn("ws: не удалось разослать активность")
	}
}

// ClientCount возвращает число открытых соединений.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.adminID]; !ok {
		h.clients[client.adminID] = make(map[*Client]struct{})
	}
	h.clients[client.adminID][client] = struct{}{}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[client.adminID]; ok {
		if _, exists := clients[client]; exists {
			delete(clients, client)
			close(client.send)
		}
		if len(clients) == 0 {
			delete(h.clients, client.adminID)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, set := range h.clients {
		for client := range set {
			close(client.send)
		}
		delete(h.clients, id)
	}
}

func (h *Hub) send(payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, set := range h.clients {
		for client := range set {
			select {
			case client.send <- payload:
			default:
				// медленный клиент отключается, закрываем асинхронно
				go func(c *Client) {
					defer func() {
						if r := recover(); r != nil {
							logger.Log.WithFields(logrus.Fields{
								"panic": r,
								"stack": string(debug.Stack()),
							}).Error("ws: panic при закрытии клиента")
						}
					}()
					c.Close()
				}(client)
			}
		}
	}
}
