package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/radieske/matka-risk-platform/pkg/contracts/events"
)

const (
	allMarkets       = "*"
	defaultWriteWait = 2 * time.Second
)

// client serializa as escritas: gorilla não aceita writers concorrentes
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// write com deadline; depois de um timeout a conexão não serve mais e é fechada,
// o que encerra o loop de leitura do HandleWS e remove as assinaturas
func (c *client) write(b []byte, wait time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(wait))
	if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
		_ = c.conn.Close()
		return err
	}
	return nil
}

// Hub mantém as conexões dos dashboards por mercado
type Hub struct {
	log      *zap.Logger
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	subs     map[string]map[*client]struct{}
	clients  int

	// OnClients recebe o total de conexões abertas (gauge)
	OnClients func(n int)

	// WriteTimeout por mensagem; 0 => 2s
	WriteTimeout time.Duration
}

func NewHub(log *zap.Logger, allowOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		log:      log,
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		subs:     make(map[string]map[*client]struct{}),
	}
}

func marketKey(id string) string {
	if id == "" {
		return allMarkets
	}
	return id
}

func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	c := &client{conn: conn}
	defer conn.Close()
	h.track(1)
	defer h.track(-1)

	for {
		var msg ClientMsg
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		switch msg.Type {
		case "subscribe":
			h.subscribe(c, marketKey(msg.MarketID))
		case "unsubscribe":
			h.unsubscribe(c, marketKey(msg.MarketID))
		case "ping":
			b, _ := json.Marshal(ServerMsg{Type: "pong"})
			_ = c.write(b, h.writeWait())
		}
	}

	h.mu.Lock()
	for k, set := range h.subs {
		delete(set, c)
		if len(set) == 0 {
			delete(h.subs, k)
		}
	}
	h.mu.Unlock()
}

func (h *Hub) subscribe(c *client, market string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[market]; !ok {
		h.subs[market] = make(map[*client]struct{})
	}
	h.subs[market][c] = struct{}{}
}

func (h *Hub) unsubscribe(c *client, market string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.subs[market]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.subs, market)
		}
	}
}

func (h *Hub) track(delta int) {
	h.mu.Lock()
	h.clients += delta
	n := h.clients
	h.mu.Unlock()
	if h.OnClients != nil {
		h.OnClients(n)
	}
}

func (h *Hub) writeWait() time.Duration {
	if h.WriteTimeout > 0 {
		return h.WriteTimeout
	}
	return defaultWriteWait
}

// Broadcast avisa quem assina o mercado e quem assina todos
func (h *Hub) Broadcast(upd events.JantriUpdate) int {
	h.mu.RLock()
	targets := make([]*client, 0)
	for c := range h.subs[marketKey(upd.MarketID)] {
		targets = append(targets, c)
	}
	if upd.MarketID != "" {
		for c := range h.subs[allMarkets] {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()
	if len(targets) == 0 {
		return 0
	}

	b, err := json.Marshal(ServerMsg{Type: "jantri_update", JantriUpdate: &upd})
	if err != nil {
		return 0
	}
	sent := 0
	for _, c := range targets {
		if err := c.write(b, h.writeWait()); err != nil {
			h.log.Debug("ws write failed", zap.Error(err))
			continue
		}
		sent++
	}
	return sent
}
