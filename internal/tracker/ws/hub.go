// Package ws mantém as conexões WebSocket dos viewers e repassa a elas
// cada snapshot publicado. Não há assinatura por tópico: todo cliente recebe tudo.
package ws

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const broadcastBuffer = 64

// Hub gerencia conexões WebSocket e entrega cada mensagem a todos os clientes
type Hub struct {
	log      *zap.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*Client]struct{}

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	// OnClients recebe o total de clientes após cada (des)conexão
	OnClients func(n int)
}

// NewHub cria um Hub com política customizada de origem (CORS)
func NewHub(log *zap.Logger, allowOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		log:        log,
		upgrader:   websocket.Upgrader{CheckOrigin: allowOrigin},
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan []byte, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run é o loop principal do hub; retorna quando ctx é cancelado
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case c := <-h.register:
			h.add(c)
		case c := <-h.unregister:
			h.remove(c)
		case msg := <-h.broadcast:
			h.fanout(msg)
		}
	}
}

// HandleWS faz o upgrade e inicia as pumps do cliente
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	c := newClient(uuid.NewString(), conn, h)
	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return
	}
	go c.writePump()
	go c.readPump()
}

// Broadcast enfileira uma mensagem já serializada para todos os clientes.
// Com o buffer cheio a mensagem é descartada: o próximo snapshot a substitui.
func (h *Hub) Broadcast(msg []byte) {
	select {
	case h.broadcast <- msg:
	default:
		h.log.Warn("ws broadcast buffer full, dropping message")
	}
}

// ClientCount retorna o número de clientes conectados
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) unregisterClient(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	h.log.Info("ws client connected", zap.String("client_id", c.id), zap.Int("clients", n))
	h.notify(n)
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()

	if ok {
		h.log.Info("ws client disconnected", zap.String("client_id", c.id), zap.Int("clients", n))
		h.notify(n)
	}
}

func (h *Hub) fanout(msg []byte) {
	h.mu.RLock()
	slow := make([]*Client, 0)
	for c := range h.clients {
		if !c.trySend(msg) {
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	// cliente lento é desconectado; ao reconectar ele refaz o fetch completo
	for _, c := range slow {
		h.log.Warn("ws client too slow, disconnecting", zap.String("client_id", c.id))
		h.remove(c)
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
	h.mu.Unlock()
	h.notify(0)
}

func (h *Hub) notify(n int) {
	if h.OnClients != nil {
		h.OnClients(n)
	}
}
