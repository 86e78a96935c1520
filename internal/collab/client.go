package collab

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 64 * 1024
	sendBuffer = 256
)

// Client is one websocket connection in a room. Outgoing messages carry a per-client
// sequence number so the browser can tell when it fell behind.
type Client struct {
	hub         *Hub
	conn        *websocket.Conn
	UserID      string
	DisplayName string
	ProjectID   string
	ClientID    string

	mu     sync.Mutex
	send   chan []byte
	seq    int64
	closed bool
}

func NewClient(hub *Hub, conn *websocket.Conn, userID, displayName, projectID, clientID string) *Client {
	return &Client{
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, sendBuffer),
		UserID:      userID,
		DisplayName: displayName,
		ProjectID:   projectID,
		ClientID:    clientID,
	}
}

// Serve upgrades the request to a websocket and runs a client for it until the
// connection closes.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID, displayName, projectID string, originPatterns []string) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: originPatterns,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}
	conn.SetReadLimit(maxMsgSize)

	client := NewClient(h, conn, userID, displayName, projectID, uuid.New().String())
	h.Register(client)

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}

// ReadPump decodes requests until the connection fails, stamping each with the
// client's identity before the hub sees it.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		msg, err := c.read(ctx)
		if errors.Is(err, errBadFrame) {
			c.Send(errorMessage("invalid message", ""))
			continue
		}
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			case websocket.StatusMessageTooBig:
				slog.Warn("message too large", "user", c.UserID)
			default:
				slog.Debug("read error", "error", err, "user", c.UserID)
			}
			return
		}

		msg.UserID = c.UserID
		msg.ClientID = c.ClientID
		msg.ProjectID = c.ProjectID
		c.hub.handleMessage(c, msg)
	}
}

var errBadFrame = errors.New("bad frame")

func (c *Client) read(ctx context.Context) (*Message, error) {
	typ, data, err := c.conn.Read(ctx)
	if err != nil {
		return nil, err
	}
	if typ != websocket.MessageText {
		return nil, errBadFrame
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil || msg.Type == "" {
		slog.Warn("invalid message", "error", err, "user", c.UserID)
		return nil, errBadFrame
	}
	return &msg, nil
}

// WritePump drains the send queue and keeps the connection alive with pings. It
// returns when the queue is closed, a write fails or ctx ends.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.write(ctx, data); err != nil {
				slog.Debug("write error", "error", err, "user", c.UserID)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) write(ctx context.Context, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	return c.conn.Write(ctx, websocket.MessageText, data)
}

// Send queues msg for the client. A client whose queue is full has missed state it
// cannot recover from, so its queue is closed and the connection ends; the browser
// reconnects and receives a fresh welcome.
func (c *Client) Send(msg *Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	out := *msg
	c.seq++
	out.Seq = c.seq
	data, err := json.Marshal(&out)
	if err != nil {
		slog.Error("marshal message", "error", err)
		return
	}

	select {
	case c.send <- data:
	default:
		slog.Warn("client send buffer full, disconnecting", "user", c.UserID, "client", c.ClientID)
		c.closeLocked()
	}
}

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *Client) closeLocked() {
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}
