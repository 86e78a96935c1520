package collab

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/inamate/artboard/internal/document"
	"github.com/inamate/artboard/internal/engine"
	"github.com/inamate/artboard/internal/geom"
	"github.com/inamate/artboard/internal/gesture"
	"github.com/inamate/artboard/internal/transform"
)

var (
	ErrGestureBusy     = errors.New("another client is dragging")
	ErrNotOwner        = errors.New("gesture belongs to another client")
	ErrUnknownType     = errors.New("unknown message type")
	ErrInvalidPayload  = errors.New("invalid payload")
	ErrUnknownGesture  = errors.New("unknown gesture kind")
	ErrHistoryDisabled = errors.New("undo is not available while dragging")
)

// Session is the authoritative editing state of one room. Every client edits the same
// engine; only one of them can hold a gesture at a time.
type Session struct {
	mu     sync.Mutex
	engine *engine.Engine
	owner  string            // client driving the active gesture
	saved  *document.Project // last persisted state
}

func NewSession(p *document.Project, historyLimit int) (*Session, error) {
	e := engine.NewEngine(historyLimit)
	if err := e.SetProject(p); err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	return &Session{engine: e, saved: e.Project()}, nil
}

// Apply runs one client request against the engine. It reports whether the committed
// state changed and should be broadcast in full.
func (s *Session) Apply(clientID string, msg *Message) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch msg.Type {
	case TypeGestureBegin:
		var p GestureBeginPayload
		if err := decode(msg.Payload, &p); err != nil {
			return false, err
		}
		if s.owner != "" && s.owner != clientID {
			return false, ErrGestureBusy
		}
		if err := s.begin(p); err != nil {
			return false, err
		}
		s.owner = clientID
		return false, nil

	case TypeGestureMove:
		var p GestureMovePayload
		if err := decode(msg.Payload, &p); err != nil {
			return false, err
		}
		if err := s.checkOwner(clientID); err != nil {
			return false, err
		}
		return false, s.engine.Gestures().Move(geom.Vec{X: p.X, Y: p.Y})

	case TypeGestureEnd:
		if err := s.checkOwner(clientID); err != nil {
			return false, err
		}
		s.owner = ""
		if _, err := s.engine.Gestures().Release(); err != nil {
			return false, err
		}
		return true, nil

	case TypeGestureCancel:
		if err := s.checkOwner(clientID); err != nil {
			return false, err
		}
		s.owner = ""
		return true, s.engine.Gestures().Cancel()

	case TypeHistoryUndo, TypeHistoryRedo:
		if s.owner != "" {
			return false, ErrHistoryDisabled
		}
		if msg.Type == TypeHistoryUndo {
			return s.engine.Undo(), nil
		}
		return s.engine.Redo(), nil

	case TypeNodeToggle, TypeNodeDelete, TypeNodeInsert:
		var p NodePayload
		if err := decode(msg.Payload, &p); err != nil {
			return false, err
		}
		if s.owner != "" {
			return false, ErrGestureBusy
		}
		ed := s.engine.Editor()
		var err error
		switch msg.Type {
		case TypeNodeToggle:
			err = ed.ToggleNode(p.LayerID, p.PointID)
		case TypeNodeDelete:
			err = ed.DeleteNode(p.LayerID, p.PointID)
		default:
			_, err = ed.InsertNode(p.LayerID, geom.Vec{X: p.X, Y: p.Y})
		}
		return err == nil, err
	}
	return false, fmt.Errorf("%w: %s", ErrUnknownType, msg.Type)
}

func (s *Session) begin(p GestureBeginPayload) error {
	g := s.engine.Gestures()
	at := geom.Vec{X: p.X, Y: p.Y}
	switch p.Kind {
	case transform.KindMove:
		return g.BeginMove(p.LayerID, at, p.Shift)
	case transform.KindResize:
		return g.BeginResize(p.Handle, at, p.Shift)
	case transform.KindRotate:
		return g.BeginRotate(at, p.Shift)
	case transform.KindMoveNode, transform.KindMoveHandle:
		return g.BeginNode(p.Kind, p.LayerID, p.PointID, p.Which, at, p.Shift)
	case transform.KindPanImage:
		return g.BeginPan(p.LayerID, at)
	case transform.KindMoveGuide:
		return g.BeginGuide(p.GuideID, at)
	}
	return fmt.Errorf("%w: %q", ErrUnknownGesture, p.Kind)
}

func (s *Session) checkOwner(clientID string) error {
	if s.owner == "" {
		return gesture.ErrNoGesture
	}
	if s.owner != clientID {
		return ErrNotOwner
	}
	return nil
}

// Tick computes the pending gesture frame. It reports whether a new frame exists.
func (s *Session) Tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Tick()
}

// Leave abandons the gesture of a departing client. It reports whether state changed.
func (s *Session) Leave(clientID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.owner != clientID {
		return false
	}
	s.owner = ""
	return s.engine.Gestures().Cancel() == nil
}

// Project returns the present state.
func (s *Session) Project() *document.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Project()
}

// Full builds a sync carrying the whole project.
func (s *Session) Full() StateSyncPayload {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.engine.Project()
	out := s.syncLocked(p)
	out.Project = p
	return out
}

// Frame builds a sync carrying the live layers and guides of the active gesture.
func (s *Session) Frame() StateSyncPayload {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.engine.Project()
	out := s.syncLocked(p)
	out.Layers = p.Layers
	out.Guides = p.Canvas.Guides.Items
	return out
}

func (s *Session) syncLocked(p *document.Project) StateSyncPayload {
	h := s.engine.History()
	g := s.engine.Gestures()
	return StateSyncPayload{
		SelectedLayers: p.SelectedLayers,
		SnapLines:      g.SnapLines(),
		Dragging:       g.State() == gesture.Dragging,
		GestureOwner:   s.owner,
		CanUndo:        h.CanUndo(),
		CanRedo:        h.CanRedo(),
	}
}

// Unsaved returns the state to persist, or nil when nothing changed since the last call
// to MarkSaved. A state in the middle of a gesture is never returned.
func (s *Session) Unsaved() *document.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.owner != "" {
		return nil
	}
	p := s.engine.Project()
	if p == s.saved {
		return nil
	}
	return p
}

// MarkSaved records p as persisted.
func (s *Session) MarkSaved(p *document.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = p
}

func decode(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return ErrInvalidPayload
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	return nil
}
