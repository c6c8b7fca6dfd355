package core

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/linechat/internal/utils"
)

// HubOptions configures a Hub.
type HubOptions struct {
	Options
	OutboundBuffer int
}

// Hub connects transports to the router. It owns one mailbox per live
// connection and is the router's outbox.
type Hub struct {
	router *Router
	buffer int
	log    *zerolog.Logger

	mu      sync.RWMutex
	clients map[ConnID]*Client
}

// NewHub creates a hub with fresh core state.
func NewHub(authenticator Authenticator, opts HubOptions, logger *zerolog.Logger) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	h := &Hub{
		buffer:  opts.OutboundBuffer,
		log:     logger,
		clients: make(map[ConnID]*Client),
	}
	h.router = NewRouter(authenticator, h, opts.Options, logger)
	return h
}

// Router returns the underlying router.
func (h *Hub) Router() *Router {
	return h.router
}

// Connect allocates a connection id, registers its mailbox and queues the welcome text.
func (h *Hub) Connect() *Client {
	client := NewClient(ConnID(utils.NewID()), h.buffer)

	h.mu.Lock()
	h.clients[client.ID] = client
	h.mu.Unlock()

	h.router.Connect(client.ID)
	return client
}

// Handle feeds one decoded line from client into the router.
func (h *Hub) Handle(ctx context.Context, client *Client, line string) {
	h.router.HandleLine(ctx, client.ID, line)
}

// Send queues a transport-level notice for client outside any command.
func (h *Hub) Send(client *Client, text string) {
	h.Enqueue([]Effect{{To: client.ID, Text: text}})
}

// Disconnect ends client's session. Safe to call more than once.
func (h *Hub) Disconnect(client *Client) {
	h.router.Disconnect(client.ID)

	h.mu.Lock()
	delete(h.clients, client.ID)
	h.mu.Unlock()

	client.shutdown()
}

// Enqueue delivers effects to mailboxes without blocking.
func (h *Hub) Enqueue(effects []Effect) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, e := range effects {
		client, ok := h.clients[e.To]
		if !ok {
			continue
		}
		if e.Close {
			client.shutdown()
			continue
		}
		if !client.deliver(e.Text) && !client.closing() {
			h.log.Warn().Str("conn_id", string(e.To)).Int64("dropped", client.Dropped()).Msg("outbound line dropped")
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Channels returns a snapshot of every non-empty channel, sorted by name.
func (h *Hub) Channels() []ChannelSnapshot {
	snaps := h.router.Channels()
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Name < snaps[j].Name })
	return snaps
}
