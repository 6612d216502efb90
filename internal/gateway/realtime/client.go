package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/syntrixbase/showroom/internal/catalog"
	"github.com/syntrixbase/showroom/pkg/model"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Maximum message size allowed from peer.
	maxMessageSize = 16 * 1024
)

// Send pings to peer with this period. Must be less than pongWait.
var pingPeriod = (pongWait * 9) / 10

// Client connects one WebSocket to one catalog session.
type Client struct {
	ctrl   *catalog.Controller
	conn   *websocket.Conn
	logger *slog.Logger

	// Buffered channel of outbound messages.
	send chan BaseMessage

	// ctx is canceled when the connection goes away. Fetches started by this
	// client run under it.
	ctx    context.Context
	cancel context.CancelFunc
}

func newClient(ctrl *catalog.Controller, conn *websocket.Conn, sendBuffer int) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		ctrl:   ctrl,
		conn:   conn,
		logger: slog.Default().With("component", "realtime", "session", ctrl.ID()),
		send:   make(chan BaseMessage, sendBuffer),
		ctx:    ctx,
		cancel: cancel,
	}
}

// serve starts the pumps. It returns immediately.
func (c *Client) serve() {
	updates, unsubscribe := c.ctrl.Subscribe()
	go c.writePump()
	go c.forward(updates)
	go func() {
		c.readPump()
		c.cancel()
		unsubscribe()
	}()
}

// push queues a message for the writer. It gives up once the connection is gone.
func (c *Client) push(msg BaseMessage) bool {
	select {
	case c.send <- msg:
		return true
	case <-c.ctx.Done():
		return false
	}
}

// forward relays controller updates until the subscription ends, which happens
// when the session is deleted or the reader exits.
func (c *Client) forward(updates <-chan catalog.Update) {
	defer c.cancel()
	for u := range updates {
		if !c.push(BaseMessage{Type: TypeView, Payload: mustMarshal(u.View)}) {
			return
		}
		if u.Notice != nil {
			if !c.push(BaseMessage{Type: TypeNotice, Payload: mustMarshal(u.Notice)}) {
				return
			}
		}
	}
}

// readPump pumps messages from the websocket connection to the controller.
//
// The application runs readPump in a per-connection goroutine. The application
// ensures that there is at most one reader on a connection by executing all
// reads from this goroutine.
func (c *Client) readPump() {
	defer c.conn.Close()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	c.logger.Info("WebSocket connection established")

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Warn("WebSocket connection closed", "error", err)
			} else {
				c.logger.Info("WebSocket connection closed")
			}
			return
		}

		var msg BaseMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.logger.Warn("Unmarshalling message failed", "error", err)
			c.push(errorMessage("", ErrCodeInvalidPayload, "message is not valid JSON"))
			continue
		}

		c.handleMessage(msg)
	}
}

func (c *Client) handleMessage(msg BaseMessage) {
	c.logger.Debug("Received message", "type", msg.Type, "id", msg.ID)
	switch msg.Type {
	case TypeSearch:
		var payload SearchPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			c.push(errorMessage(msg.ID, ErrCodeInvalidPayload, "invalid search payload"))
			return
		}
		// Fetches run off the reader so a newer search can overtake this one.
		go c.run(msg.ID, func(ctx context.Context) (catalog.View, error) {
			return c.ctrl.Submit(ctx, payload.Query)
		})
	case TypeRetry:
		go c.run(msg.ID, c.ctrl.Retry)
	case TypeImageLoaded:
		var payload ImageLoadedPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload.Vehicle == "" {
			c.push(errorMessage(msg.ID, ErrCodeInvalidPayload, "invalid image_loaded payload"))
			return
		}
		c.ctrl.MarkLoaded(payload.Vehicle, payload.Seq)
	default:
		c.push(errorMessage(msg.ID, ErrCodeUnknownType, "unknown message type: "+msg.Type))
	}
}

// run executes a controller fetch. Results reach the peer through the
// subscription; only unexpected failures are answered directly.
func (c *Client) run(id string, fetch func(context.Context) (catalog.View, error)) {
	_, err := fetch(c.ctx)
	switch {
	case err == nil,
		errors.Is(err, catalog.ErrSuperseded),
		errors.Is(err, catalog.ErrSessionClosed),
		errors.Is(err, model.ErrStoreUnavailable),
		errors.Is(err, model.ErrCanceled):
		return
	default:
		c.logger.Error("Catalog fetch failed", "id", id, "error", err)
		c.push(errorMessage(id, ErrCodeInternal, "request failed"))
	}
}

// writePump pumps messages from the controller to the websocket connection.
//
// A goroutine running writePump is started for each connection. The
// application ensures that there is at most one writer to a connection by
// executing all writes from this goroutine.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(message); err != nil {
				c.cancel()
				return
			}
		case <-c.ctx.Done():
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.cancel()
				return
			}
		}
	}
}
