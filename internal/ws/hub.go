package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/freelance-nexus/internal/goroutine"
	"github.com/ignatzorin/freelance-nexus/internal/logger"
)

// maxRetained предел тем, для которых хранится последнее состояние.
const maxRetained = 256

// Hub рассылает состояние представлений подписанным клиентам.
// Тема совпадает с именем представления.
type Hub struct {
	mu         sync.RWMutex
	topics     map[string]map[*Client]struct{}
	last       map[string][]byte
	register   chan *Client
	unregister chan *Client
	broadcast  chan message
	revoke     chan revocation
	done       chan struct{}
	stopOnce   sync.Once
}

type revocation struct {
	allowed func(topic string) bool
	result  chan int
}

type message struct {
	topic   string
	payload []byte
}

// Event сообщение клиенту: type содержит имя события, data полезную нагрузку.
type Event struct {
	Type  string `json:"type"`
	Topic string `json:"topic"`
	Data  any    `json:"data"`
}

// NewHub создаёт новый хаб.
func NewHub() *Hub {
	return &Hub{
		topics:     make(map[string]map[*Client]struct{}),
		last:       make(map[string][]byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan message, 32),
		revoke:     make(chan revocation),
		done:       make(chan struct{}),
	}
}

// Run главный цикл хаба; завершается с отменой ctx.
func (h *Hub) Run(ctx context.Context) {
	defer h.stop()
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case msg := <-h.broadcast:
			h.send(msg.topic, msg.payload)
		case req := <-h.revoke:
			req.result <- h.revokeTopics(req.allowed)
		}
	}
}

func (h *Hub) stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Register добавляет клиента и сразу отдаёт ему последнее состояние темы.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.closeSend()
	}
}

// Unregister удаляет клиента.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish сериализует событие и ставит его в очередь рассылки.
func (h *Hub) Publish(topic, event string, data any) error {
	raw, err := json.Marshal(Event{Type: event, Topic: topic, Data: data})
	if err != nil {
		return fmt.Errorf("ws: не удалось сериализовать сообщение: %w", err)
	}

	select {
	case h.broadcast <- message{topic: topic, payload: raw}:
		return nil
	case <-h.done:
		return fmt.Errorf("ws: хаб остановлен")
	}
}

// Subscribers число клиентов темы.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

// Revoke отключает клиентов тем, для которых allowed вернул false,
// и забывает последнее состояние этих тем. Возвращает число отключённых.
// Выполняется в цикле хаба, как и рассылка.
func (h *Hub) Revoke(allowed func(topic string) bool) int {
	req := revocation{allowed: allowed, result: make(chan int, 1)}
	select {
	case h.revoke <- req:
		return <-req.result
	case <-h.done:
		return 0
	}
}

func (h *Hub) revokeTopics(allowed func(topic string) bool) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	revoked := 0
	for topic, clients := range h.topics {
		if allowed(topic) {
			continue
		}
		for client := range clients {
			client.closeSend()
			revoked++
		}
		delete(h.topics, topic)
		delete(h.last, topic)
	}
	for topic := range h.last {
		if !allowed(topic) {
			delete(h.last, topic)
		}
	}
	return revoked
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.topics[client.topic]; !ok {
		h.topics[client.topic] = make(map[*Client]struct{})
	}
	h.topics[client.topic][client] = struct{}{}
	last := h.last[client.topic]
	h.mu.Unlock()

	logger.WithComponent("ws").WithFields(logrus.Fields{
		"client_id": client.id,
		"topic":     client.topic,
	}).Debug("клиент подписан")

	if last != nil {
		select {
		case client.send <- last:
		default:
		}
	}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.topics[client.topic]; ok {
		if _, present := clients[client]; present {
			delete(clients, client)
			client.closeSend()
		}
		if len(clients) == 0 {
			delete(h.topics, client.topic)
			delete(h.last, client.topic)
		}
	}
}

func (h *Hub) send(topic string, payload []byte) {
	h.mu.Lock()
	h.retain(topic, payload)
	clients := make([]*Client, 0, len(h.topics[topic]))
	for client := range h.topics[topic] {
		clients = append(clients, client)
	}
	h.mu.Unlock()

	for _, client := range clients {
		select {
		case client.send <- payload:
		default:
			// медленный клиент отключается
			goroutine.Go("ws-close", client.Close)
		}
	}
}

// retain запоминает состояние темы. При переполнении вытесняются темы без подписчиков.
// Вызывается под h.mu.
func (h *Hub) retain(topic string, payload []byte) {
	if _, ok := h.last[topic]; !ok && len(h.last) >= maxRetained {
		for t := range h.last {
			if len(h.last) < maxRetained {
				break
			}
			if len(h.topics[t]) == 0 {
				delete(h.last, t)
			}
		}
	}
	h.last[topic] = payload
}

// Retained число тем с сохранённым состоянием.
func (h *Hub) Retained() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.last)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for topic, clients := range h.topics {
		for client := range clients {
			client.closeSend()
		}
		delete(h.topics, topic)
	}
}
