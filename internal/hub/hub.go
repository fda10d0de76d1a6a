package hub

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	auction "auction-engine/internal/auctionService"
	"auction-engine/internal/identity"
	model "auction-engine/internal/models"
	"auction-engine/internal/repository"
	"auction-engine/utils"
)

// Envelope is the wire frame for every websocket message, both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Hub fans events out to connected parties, scoping each delivery by the
// viewer's VIP eligibility, and periodically re-checks every party's
// identity against the hub for privilege drift.
type Hub struct {
	svc            *auction.AuctionService
	store          repository.AuctionStore
	gateway        identity.Resolver
	resyncInterval time.Duration

	mu      sync.RWMutex
	clients map[*Client]struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a hub. Start must be called before serving connections.
func New(svc *auction.AuctionService, store repository.AuctionStore, gateway identity.Resolver, resyncInterval time.Duration) *Hub {
	if resyncInterval <= 0 {
		resyncInterval = 30 * time.Second
	}
	return &Hub{
		svc:            svc,
		store:          store,
		gateway:        gateway,
		resyncInterval: resyncInterval,
		clients:        make(map[*Client]struct{}),
	}
}

// Start launches the identity re-sync loop.
func (h *Hub) Start(ctx context.Context) {
	h.ctx, h.cancel = context.WithCancel(ctx)

	h.wg.Add(1)
	go h.resyncLoop()

	utils.Info("broadcast hub started", map[string]any{
		"resync_interval": h.resyncInterval.String(),
	})
}

// Stop disconnects every party and stops the re-sync loop.
func (h *Hub) Stop(ctx context.Context) error {
	if h.cancel != nil {
		h.cancel()
	}

	h.mu.Lock()
	for c := range h.clients {
		c.close()
	}
	h.clients = make(map[*Client]struct{})
	h.mu.Unlock()

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Serve upgrades an authenticated request to a websocket connection,
// sends the bootstrap snapshot and starts the read/write pumps.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, user model.User, token string) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := newClient(h, conn, user, token)

	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()

	utils.Info("party connected", map[string]any{
		"conn_id":  client.id,
		"user_id":  user.ID,
		"username": user.Username,
	})

	client.sendBootstrap()
	go client.writePump()
	go client.readLoop()
	return nil
}

func (h *Hub) drop(client *Client) {
	h.mu.Lock()
	_, present := h.clients[client]
	delete(h.clients, client)
	h.mu.Unlock()

	if present {
		client.close()
		utils.Info("party disconnected", map[string]any{
			"conn_id": client.id,
			"user_id": client.User().ID,
		})
	}
}

// Publish delivers an event to every connected party eligible to view
// the lot: everyone for regular lots, VIP viewers only for VIP lots.
func (h *Hub) Publish(event string, lot model.Lot, data any) {
	frame, err := marshalEnvelope(event, data)
	if err != nil {
		utils.Error("failed to encode broadcast event", map[string]any{"event": event, "error": err.Error()})
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if c.eligibleFor(lot) {
			c.enqueue(frame)
		}
	}
}

// PublishGlobal delivers an event to every connected party unconditionally.
func (h *Hub) PublishGlobal(event string, data any) {
	frame, err := marshalEnvelope(event, data)
	if err != nil {
		utils.Error("failed to encode broadcast event", map[string]any{"event": event, "error": err.Error()})
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		c.enqueue(frame)
	}
}

// ConnectedCount returns the number of live connections.
func (h *Hub) ConnectedCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) resyncLoop() {
	defer h.wg.Done()

	ticker := time.NewTicker(h.resyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return
		case <-ticker.C:
			h.resyncAll()
		}
	}
}

// resyncAll re-resolves every connected party's credential against the
// identity hub. Privilege-tier or admin-flag drift triggers a targeted
// userUpdated push; a hub outage is logged and skipped for the cycle.
func (h *Hub) resyncAll() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		hubUser, err := h.gateway.Resolve(h.ctx, c.token)
		if err != nil {
			utils.Warn("identity re-sync failed, keeping stale record", map[string]any{
				"conn_id": c.id,
				"error":   err.Error(),
			})
			continue
		}

		fresh, err := h.store.UpsertUser(h.ctx, hubUser.ToUser())
		if err != nil {
			utils.Error("identity re-sync failed to store user", map[string]any{
				"conn_id": c.id,
				"error":   err.Error(),
			})
			continue
		}

		current := c.User()
		c.setUser(fresh)
		if fresh.IsAdmin != current.IsAdmin || fresh.Premium != current.Premium {
			utils.Info("privilege drift detected", map[string]any{
				"user_id":     fresh.ID,
				"is_admin":    fresh.IsAdmin,
				"premium":     fresh.Premium,
				"was_admin":   current.IsAdmin,
				"was_premium": current.Premium,
			})
			c.emit(auction.EventUserUpdated, h.svc.ProjectUser(fresh))
		}
	}
}

func marshalEnvelope(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}
