package collab

import (
	"encoding/json"

	"github.com/inamate/artboard/internal/document"
	"github.com/inamate/artboard/internal/nodegraph"
	"github.com/inamate/artboard/internal/transform"
)

type Message struct {
	Type      string          `json:"type"`
	ProjectID string          `json:"projectId,omitempty"`
	ClientID  string          `json:"clientId,omitempty"`
	UserID    string          `json:"userId,omitempty"`
	Seq       int64           `json:"seq,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

const (
	TypePresenceUpdate = "presence.update"
	TypePresenceState  = "presence.state"
	TypePresenceJoin   = "presence.join"
	TypePresenceLeave  = "presence.leave"
	TypeError          = "error"

	// Connection
	TypeWelcome = "welcome"

	// Pointer gestures, driven by one client at a time
	TypeGestureBegin  = "gesture.begin"
	TypeGestureMove   = "gesture.move"
	TypeGestureEnd    = "gesture.end"
	TypeGestureCancel = "gesture.cancel"

	TypeHistoryUndo = "history.undo"
	TypeHistoryRedo = "history.redo"

	TypeNodeToggle = "node.toggle"
	TypeNodeDelete = "node.delete"
	TypeNodeInsert = "node.insert"

	// Document sync
	TypeStateSync = "state.sync"
)

type PresencePayload struct {
	Cursor      *CursorPos `json:"cursor,omitempty"`
	Selection   []string   `json:"selection,omitempty"`
	DisplayName string     `json:"displayName,omitempty"`
	Color       string     `json:"color,omitempty"`
}

type CursorPos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type PresenceStatePayload struct {
	Presences map[string]*PresencePayload `json:"presences"`
}

type PresenceJoinPayload struct {
	UserID      string `json:"userId"`
	ClientID    string `json:"clientId"`
	DisplayName string `json:"displayName"`
	Color       string `json:"color"`
}

type PresenceLeavePayload struct {
	UserID   string `json:"userId"`
	ClientID string `json:"clientId"`
}

type WelcomePayload struct {
	ClientID string            `json:"clientId"`
	Project  *document.Project `json:"project"`
}

// GestureBeginPayload starts a drag. X and Y are the pointer in screen pixels relative
// to the artboard origin. Which fields apply depends on Kind.
type GestureBeginPayload struct {
	Kind    transform.Kind   `json:"kind"`
	LayerID string           `json:"layerId,omitempty"`
	PointID string           `json:"pointId,omitempty"`
	GuideID string           `json:"guideId,omitempty"`
	Handle  transform.Handle `json:"handle,omitempty"`
	Which   nodegraph.Handle `json:"which,omitempty"`
	X       float64          `json:"x"`
	Y       float64          `json:"y"`
	Shift   bool             `json:"shift,omitempty"`
}

type GestureMovePayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodePayload addresses a path node. X and Y locate a node.insert click in the layer's
// percentage space.
type NodePayload struct {
	LayerID string  `json:"layerId"`
	PointID string  `json:"pointId,omitempty"`
	X       float64 `json:"x,omitempty"`
	Y       float64 `json:"y,omitempty"`
}

// StateSyncPayload carries either the whole project, after a committed change, or just
// the live layers of an in-progress gesture frame.
type StateSyncPayload struct {
	Project        *document.Project   `json:"project,omitempty"`
	Layers         []document.Layer    `json:"layers,omitempty"`
	Guides         []document.Guide    `json:"guides,omitempty"`
	SelectedLayers []string            `json:"selectedLayers"`
	SnapLines      transform.SnapLines `json:"snapLines"`
	Dragging       bool                `json:"dragging"`
	GestureOwner   string              `json:"gestureOwner,omitempty"`
	CanUndo        bool                `json:"canUndo"`
	CanRedo        bool                `json:"canRedo"`
}

type ErrorPayload struct {
	Message string `json:"message"`
	Request string `json:"request,omitempty"`
}

func newMessage(typ string, payload any) *Message {
	data, err := json.Marshal(payload)
	if err != nil {
		data = []byte("null")
	}
	return &Message{Type: typ, Payload: data}
}
