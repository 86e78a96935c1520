package collab

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/inamate/artboard/internal/document"
)

const (
	// frameInterval paces gesture frames; moves between ticks collapse into one frame.
	frameInterval = 16 * time.Millisecond
	// autosaveInterval is how often rooms with unsaved changes are persisted.
	autosaveInterval = 30 * time.Second
	saveTimeout      = 10 * time.Second
)

// Loader fetches the project a room edits.
type Loader func(ctx context.Context, projectID string) (*document.Project, error)

// Saver persists a room's project.
type Saver func(ctx context.Context, projectID string, p *document.Project) error

type Room struct {
	projectID string
	clients   map[string]*Client // clientID -> client
	presence  *PresenceManager
	session   *Session
}

type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]*Room // projectID -> room
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopped    chan struct{}
	stopOnce   sync.Once

	load         Loader
	save         Saver
	historyLimit int
}

// NewHub creates a hub. save may be nil for rooms that are never persisted.
func NewHub(load Loader, save Saver, historyLimit int) *Hub {
	return &Hub{
		rooms:        make(map[string]*Room),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		done:         make(chan struct{}),
		stopped:      make(chan struct{}),
		load:         load,
		save:         save,
		historyLimit: historyLimit,
	}
}

func (h *Hub) Run() {
	frames := time.NewTicker(frameInterval)
	autosave := time.NewTicker(autosaveInterval)
	defer func() {
		frames.Stop()
		autosave.Stop()
		h.saveAll()
		close(h.stopped)
	}()

	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-frames.C:
			h.tick()
		case <-autosave.C:
			h.saveAll()
		case <-h.done:
			return
		}
	}
}

// Stop ends Run after saving every room, and waits for it.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
	<-h.stopped
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.closeSend()
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) openRoom(projectID string) (*Room, error) {
	h.mu.RLock()
	room, ok := h.rooms[projectID]
	h.mu.RUnlock()
	if ok {
		return room, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	p, err := h.load(ctx, projectID)
	if err != nil {
		return nil, err
	}
	session, err := NewSession(p, h.historyLimit)
	if err != nil {
		return nil, err
	}
	room = &Room{
		projectID: projectID,
		clients:   make(map[string]*Client),
		presence:  NewPresenceManager(),
		session:   session,
	}

	h.mu.Lock()
	h.rooms[projectID] = room
	h.mu.Unlock()
	return room, nil
}

func (h *Hub) addClient(client *Client) {
	room, err := h.openRoom(client.ProjectID)
	if err != nil {
		slog.Error("open room", "error", err, "project", client.ProjectID)
		client.Send(errorMessage("could not open project", ""))
		client.closeSend()
		return
	}

	h.mu.Lock()
	room.clients[client.ClientID] = client
	h.mu.Unlock()
	color := room.presence.Join(client.ClientID, client.DisplayName)

	client.Send(newMessage(TypeWelcome, WelcomePayload{
		ClientID: client.ClientID,
		Project:  room.session.Project(),
	}))
	if stateMsg := room.presence.StateMessage(); stateMsg != nil {
		client.Send(stateMsg)
	}

	// Broadcast join to other clients
	joinMsg := newMessage(TypePresenceJoin, PresenceJoinPayload{
		UserID:      client.UserID,
		ClientID:    client.ClientID,
		DisplayName: client.DisplayName,
		Color:       color,
	})
	joinMsg.UserID = client.UserID
	h.broadcastToRoom(client.ProjectID, joinMsg, client.ClientID)

	slog.Info("client joined", "user", client.UserID, "project", client.ProjectID)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.ProjectID]
	if !ok || room.clients[client.ClientID] != client {
		h.mu.Unlock()
		return
	}

	delete(room.clients, client.ClientID)
	client.closeSend()
	room.presence.Remove(client.ClientID)

	empty := len(room.clients) == 0
	if empty {
		delete(h.rooms, client.ProjectID)
	}
	h.mu.Unlock()

	if room.session.Leave(client.ClientID) && !empty {
		h.broadcastFull(room)
	}

	if empty {
		h.saveRoom(room)
	} else {
		leaveMsg := newMessage(TypePresenceLeave, PresenceLeavePayload{
			UserID:   client.UserID,
			ClientID: client.ClientID,
		})
		leaveMsg.UserID = client.UserID
		h.broadcastToRoom(client.ProjectID, leaveMsg, "")
	}

	slog.Info("client left", "user", client.UserID, "project", client.ProjectID)
}

func (h *Hub) room(projectID string) (*Room, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	room, ok := h.rooms[projectID]
	return room, ok
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	room, ok := h.room(sender.ProjectID)
	if !ok {
		return
	}

	if msg.Type == TypePresenceUpdate {
		h.handlePresenceUpdate(room, sender, msg)
		return
	}

	changed, err := room.session.Apply(sender.ClientID, msg)
	if err != nil {
		if errors.Is(err, ErrUnknownType) {
			slog.Warn("unknown message type", "type", msg.Type, "user", sender.UserID)
		}
		sender.Send(errorMessage(err.Error(), msg.Type))
	}
	if changed {
		h.broadcastFull(room)
	}
}

func (h *Hub) handlePresenceUpdate(room *Room, sender *Client, msg *Message) {
	var presence PresencePayload
	if err := decode(msg.Payload, &presence); err != nil {
		slog.Warn("invalid presence payload", "error", err)
		return
	}

	stored := room.presence.Update(sender.ClientID, presence)
	if stored == nil {
		return
	}

	outMsg := newMessage(TypePresenceUpdate, stored)
	outMsg.UserID = sender.UserID
	outMsg.ClientID = sender.ClientID
	h.broadcastToRoom(sender.ProjectID, outMsg, sender.ClientID)
}

// tick advances every room's gesture by one frame and broadcasts the rooms that moved.
func (h *Hub) tick() {
	h.mu.RLock()
	rooms := make([]*Room, 0, len(h.rooms))
	for _, r := range h.rooms {
		rooms = append(rooms, r)
	}
	h.mu.RUnlock()

	for _, r := range rooms {
		if r.session.Tick() {
			h.broadcastToRoom(r.projectID, newMessage(TypeStateSync, r.session.Frame()), "")
		}
	}
}

func (h *Hub) broadcastFull(room *Room) {
	h.broadcastToRoom(room.projectID, newMessage(TypeStateSync, room.session.Full()), "")
}

func (h *Hub) broadcastToRoom(projectID string, msg *Message, excludeClientID string) {
	h.mu.RLock()
	room, ok := h.rooms[projectID]
	if !ok {
		h.mu.RUnlock()
		return
	}

	clients := make([]*Client, 0, len(room.clients))
	for _, c := range room.clients {
		if c.ClientID != excludeClientID {
			clients = append(clients, c)
		}
	}
	h.mu.RUnlock()

	msg.ProjectID = projectID
	for _, c := range clients {
		c.Send(msg)
	}
}

func (h *Hub) saveAll() {
	h.mu.RLock()
	rooms := make([]*Room, 0, len(h.rooms))
	for _, r := range h.rooms {
		rooms = append(rooms, r)
	}
	h.mu.RUnlock()

	for _, r := range rooms {
		h.saveRoom(r)
	}
}

func (h *Hub) saveRoom(room *Room) {
	if h.save == nil {
		return
	}
	p := room.session.Unsaved()
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := h.save(ctx, room.projectID, p); err != nil {
		slog.Error("save project", "error", err, "project", room.projectID)
		return
	}
	room.session.MarkSaved(p)
	slog.Info("project saved", "project", room.projectID)
}

func errorMessage(text, request string) *Message {
	return newMessage(TypeError, ErrorPayload{Message: text, Request: request})
}
