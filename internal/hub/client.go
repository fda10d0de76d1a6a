package hub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	auction "auction-engine/internal/auctionService"
	"auction-engine/internal/auctionerrors"
	model "auction-engine/internal/models"
	"auction-engine/utils"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second // must be less than pongWait
	maxMessageSize = 4096
	sendBufferSize = 64
)

// Client is one connected party: a websocket connection plus the user
// identity it authenticated with.
type Client struct {
	id    string
	hub   *Hub
	conn  *websocket.Conn
	send  chan []byte
	token string

	mu   sync.RWMutex
	user model.User

	closeOnce sync.Once
	done      chan struct{}
}

func newClient(h *Hub, conn *websocket.Conn, user model.User, token string) *Client {
	return &Client{
		id:    utils.ConnectionID(),
		hub:   h,
		conn:  conn,
		send:  make(chan []byte, sendBufferSize),
		token: token,
		user:  user,
		done:  make(chan struct{}),
	}
}

// User returns the client's current identity snapshot.
func (c *Client) User() model.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user
}

func (c *Client) setUser(user model.User) {
	c.mu.Lock()
	c.user = user
	c.mu.Unlock()
}

// eligibleFor reports whether this party may observe events for the lot.
func (c *Client) eligibleFor(lot model.Lot) bool {
	user := c.User()
	return lot.VisibleTo(&user)
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		c.conn.Close()
	})
}

// enqueue hands a pre-marshaled frame to the write pump without
// blocking; a party that cannot keep up loses the frame.
func (c *Client) enqueue(frame []byte) {
	select {
	case <-c.done:
	case c.send <- frame:
	default:
		utils.Warn("send buffer full, dropping frame", map[string]any{
			"conn_id": c.id,
			"user_id": c.User().ID,
		})
	}
}

// emit marshals and enqueues an event for this party alone.
func (c *Client) emit(event string, data any) {
	frame, err := marshalEnvelope(event, data)
	if err != nil {
		utils.Error("failed to encode targeted event", map[string]any{"event": event, "error": err.Error()})
		return
	}
	c.enqueue(frame)
}

// sendBootstrap pushes the initial snapshot: the lots this party is
// eligible to see plus its own user projection.
func (c *Client) sendBootstrap() {
	user := c.User()
	lots, err := c.hub.svc.ListLots(c.hub.ctx, &user, "")
	if err != nil {
		utils.Error("failed to build bootstrap snapshot", map[string]any{
			"conn_id": c.id,
			"error":   err.Error(),
		})
		lots = []auction.LotView{}
	}
	c.emit(auction.EventBootstrap, auction.BootstrapPayload{
		Lots: lots,
		User: c.hub.svc.ProjectUser(user),
	})
}

func (c *Client) readLoop() {
	defer c.hub.drop(c)

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			default:
				utils.Debug("read loop closed", map[string]any{"conn_id": c.id, "error": err.Error()})
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.emit(auction.EventActionRejected, auction.RejectedPayload{Reason: "malformed message"})
			continue
		}
		c.dispatch(env)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.hub.drop(c)
	}()

	for {
		select {
		case <-c.done:
			return
		case frame := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

type placeBidMessage struct {
	LotID  int64   `json:"lotId"`
	Amount float64 `json:"amount"`
}

type deleteBidMessage struct {
	BidID int64 `json:"bidId"`
	LotID int64 `json:"lotId"`
}

func (c *Client) dispatch(env Envelope) {
	switch env.Event {
	case "placeBid":
		var msg placeBidMessage
		if err := json.Unmarshal(env.Data, &msg); err != nil {
			c.emit(auction.EventBidRejected, auction.RejectedPayload{Reason: "malformed bid"})
			return
		}
		c.handlePlaceBid(msg)
	case "deleteBid":
		var msg deleteBidMessage
		if err := json.Unmarshal(env.Data, &msg); err != nil {
			c.emit(auction.EventActionRejected, auction.RejectedPayload{Reason: "malformed request"})
			return
		}
		c.handleDeleteBid(msg)
	default:
		c.emit(auction.EventActionRejected, auction.RejectedPayload{Reason: "unknown action"})
	}
}

func (c *Client) handlePlaceBid(msg placeBidMessage) {
	user := c.User()

	bid, err := c.hub.svc.PlaceBid(c.hub.ctx, msg.LotID, user.ID, msg.Amount, time.Now().UTC())
	if err != nil {
		utils.Warn("bid rejected", map[string]any{
			"conn_id": c.id,
			"lot_id":  msg.LotID,
			"user_id": user.ID,
			"amount":  msg.Amount,
			"error":   err.Error(),
		})
		c.emit(auction.EventBidRejected, auction.RejectedPayload{Reason: auctionerrors.ReasonFor(err)})
		return
	}

	c.emit(auction.EventBidAccepted, auction.BidAcceptedPayload{BidID: bid.ID})

	// Balance changed on admission; push the fresh projection to the
	// submitter only.
	if fresh, err := c.hub.store.GetUser(c.hub.ctx, user.ID); err == nil {
		c.setUser(fresh)
		c.emit(auction.EventUserUpdated, c.hub.svc.ProjectUser(fresh))
	}
}

func (c *Client) handleDeleteBid(msg deleteBidMessage) {
	if err := c.hub.svc.DeleteBid(c.hub.ctx, c.User(), msg.BidID, msg.LotID); err != nil {
		c.emit(auction.EventActionRejected, auction.RejectedPayload{Reason: auctionerrors.ReasonFor(err)})
		return
	}
}
