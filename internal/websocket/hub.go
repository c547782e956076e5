package websocket

import (
	"encoding/json"
	"sync"
)

// PortfolioUpdate is pushed to a user's open sockets after each executed
// trade: the new net position in the traded symbol and the new cash balance.
type PortfolioUpdate struct {
	Symbol string `json:"symbol"`
	Shares int64  `json:"shares"`
	Cash   string `json:"cash"`
}

type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) Register(userID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*Client]struct{})
	}
	h.clients[userID][client] = struct{}{}
}

func (h *Hub) Unregister(userID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		return
	}
	delete(h.clients[userID], client)
	if len(h.clients[userID]) == 0 {
		delete(h.clients, userID)
	}
}

// BroadcastPortfolio never blocks; a slow client just misses the update.
func (h *Hub) BroadcastPortfolio(userID string, update PortfolioUpdate) {
	payload, _ := json.Marshal(update)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[userID] {
		select {
		case client.send <- payload:
		default:
		}
	}
}
