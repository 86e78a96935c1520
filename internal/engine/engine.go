package engine

import (
	"encoding/json"
	"fmt"

	"github.com/inamate/artboard/internal/document"
	"github.com/inamate/artboard/internal/editor"
	"github.com/inamate/artboard/internal/geom"
	"github.com/inamate/artboard/internal/gesture"
	"github.com/inamate/artboard/internal/history"
)

// Engine owns one editing session: the project history, the structural editor, the
// gesture controller and the retained scene graph. It is not safe for concurrent use.
type Engine struct {
	history  *history.History
	editor   *editor.Editor
	gestures *gesture.Controller

	// Retained scene graph and the snapshot it was built from.
	sceneGraph *SceneGraph
	builtFrom  *document.Project
}

// NewEngine creates an engine holding an empty project. A positive historyLimit caps
// the number of undo steps.
func NewEngine(historyLimit int) *Engine {
	h := history.New(document.NewEmptyProject("new-project", "Untitled"), historyLimit)
	return &Engine{
		history:  h,
		editor:   editor.New(h),
		gestures: gesture.NewController(h, nil),
	}
}

// --- Commands (frontend → backend) ---

// LoadProject replaces the session with a project decoded from JSON. History starts over.
func (e *Engine) LoadProject(data []byte) error {
	var p document.Project
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("decode project: %w", err)
	}
	return e.SetProject(&p)
}

// SetProject validates p and makes it the present state with an empty history. An
// active gesture is abandoned.
func (e *Engine) SetProject(p *document.Project) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if e.gestures.State() == gesture.Dragging {
		e.gestures.Cancel()
	}
	e.history.Reset(p)
	return nil
}

// LoadSampleProject loads the built-in sample poster.
func (e *Engine) LoadSampleProject(projectID string) {
	e.SetProject(document.NewSampleProject(projectID))
}

// Undo steps back one history entry. It is refused while a gesture is active.
func (e *Engine) Undo() bool {
	if e.gestures.State() == gesture.Dragging {
		return false
	}
	return e.history.Undo()
}

// Redo steps forward one history entry. It is refused while a gesture is active.
func (e *Engine) Redo() bool {
	if e.gestures.State() == gesture.Dragging {
		return false
	}
	return e.history.Redo()
}

// Tick recomputes the active gesture from the latest pointer position. It is called once
// per animation frame and reports whether the state changed.
func (e *Engine) Tick() bool {
	return e.gestures.Frame()
}

// --- Queries (frontend ← backend) ---

func (e *Engine) Project() *document.Project { return e.history.Present() }

func (e *Engine) Editor() *editor.Editor { return e.editor }

func (e *Engine) Gestures() *gesture.Controller { return e.gestures }

func (e *Engine) History() *history.History { return e.history }

// SceneGraph returns the scene graph of the present state, rebuilding it when the state
// changed since the last call.
func (e *Engine) SceneGraph() *SceneGraph {
	p := e.history.Present()
	if e.sceneGraph == nil || e.builtFrom != p {
		e.sceneGraph = BuildSceneGraph(p)
		e.builtFrom = p
	}
	return e.sceneGraph
}

// Render returns the draw commands of the present state as JSON.
func (e *Engine) Render() string {
	result, _ := DrawCommandsToJSON(CompileDrawCommands(e.SceneGraph()))
	return result
}

// HitTest returns the id of the topmost layer at a canvas point, or empty string.
func (e *Engine) HitTest(x, y float64) string {
	return HitTest(e.SceneGraph(), geom.Vec{X: x, Y: y})
}

// SelectionBounds returns the canvas box around the given layers.
func (e *Engine) SelectionBounds(ids []string) (geom.Rect, bool) {
	return e.SceneGraph().SelectionBounds(ids)
}

// GetSelectionBounds returns the bounding box of the current selection as JSON.
func (e *Engine) GetSelectionBounds() string {
	return RectToJSON(GetSelectionBounds(e.SceneGraph(), e.history.Present().SelectedLayers))
}

// GetDocument returns the present project as JSON.
func (e *Engine) GetDocument() string {
	data, err := json.Marshal(e.history.Present())
	if err != nil {
		return "{}"
	}
	return string(data)
}

// GetSelection returns the current selection as JSON.
func (e *Engine) GetSelection() string {
	data, _ := json.Marshal(e.history.Present().SelectedLayers)
	return string(data)
}

// GetSnapLines returns the reference lines of the active gesture as JSON.
func (e *Engine) GetSnapLines() string {
	data, _ := json.Marshal(e.gestures.SnapLines())
	return string(data)
}
