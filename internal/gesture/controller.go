// Package gesture runs the pointer-drag lifecycle: capture on pointer-down, live frames
// while dragging, and a single history step (or a cancel) at the end.
package gesture

import (
	"errors"
	"math"
	"slices"

	"github.com/inamate/artboard/internal/document"
	"github.com/inamate/artboard/internal/geom"
	"github.com/inamate/artboard/internal/history"
	"github.com/inamate/artboard/internal/nodegraph"
	"github.com/inamate/artboard/internal/transform"
)

// ClickThreshold is the per-axis pointer travel, in screen pixels, below which a node
// drag is treated as a click.
const ClickThreshold = 3.0

var (
	ErrGestureActive  = errors.New("gesture already active")
	ErrNoGesture      = errors.New("no active gesture")
	ErrLayerNotFound  = errors.New("layer not found")
	ErrPointNotFound  = errors.New("point not found")
	ErrGuideNotFound  = errors.New("guide not found")
	ErrLocked         = errors.New("layer is locked")
	ErrEmptySelection = errors.New("nothing selected")
	ErrNotCropping    = errors.New("layer is not in crop mode")
	ErrInvalidHandle  = errors.New("invalid resize handle")
)

type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// Controller owns the active gesture for one editing session. It is not safe for
// concurrent use.
type Controller struct {
	history *history.History
	bounds  transform.BoundsProvider

	action  *transform.Action
	undoTo  *document.Project // state recorded in history when the gesture commits
	base    *document.Project // state every frame is computed from
	pointer geom.Vec
	pending bool
	lines   transform.SnapLines
	frames  int
}

// NewController drives gestures against h. bounds supplies the rotate pivot; when nil
// the pivot comes from the layer transforms.
func NewController(h *history.History, bounds transform.BoundsProvider) *Controller {
	return &Controller{history: h, bounds: bounds}
}

func (c *Controller) State() State {
	if c.action != nil {
		return Dragging
	}
	return Idle
}

// Action returns the active gesture or nil.
func (c *Controller) Action() *transform.Action { return c.action }

// SnapLines returns the reference lines the last frame aligned to.
func (c *Controller) SnapLines() transform.SnapLines { return c.lines }

// Frames counts recomputations since the controller was created.
func (c *Controller) Frames() int { return c.frames }

func (c *Controller) begin(a *transform.Action, undoTo, base *document.Project) {
	c.action = a
	c.undoTo = undoTo
	c.base = base
	c.pointer = a.Start
	c.pending = false
	c.lines = transform.SnapLines{}
	if base != undoTo {
		c.history.SetLive(base)
	}
}

// BeginMove starts dragging a layer with the select tool. Shift toggles the layer in
// the selection; clicking an unselected layer selects only it.
func (c *Controller) BeginMove(layerID string, pointer geom.Vec, shift bool) error {
	if c.action != nil {
		return ErrGestureActive
	}
	p := c.history.Present()
	l, ok := p.Layer(layerID)
	if !ok {
		return ErrLayerNotFound
	}
	b := l.LayerBase()
	if b.Locked {
		return ErrLocked
	}
	if g, ok := p.Group(b.GroupID); ok && g.Locked {
		return ErrLocked
	}

	selection := slices.Clone(p.SelectedLayers)
	selected := slices.Contains(selection, layerID)
	switch {
	case shift && selected:
		selection = slices.DeleteFunc(selection, func(id string) bool { return id == layerID })
	case shift:
		selection = append(selection, layerID)
	case !selected:
		selection = []string{layerID}
	}

	base := p
	if !slices.Equal(selection, p.SelectedLayers) {
		cp := *p
		cp.SelectedLayers = selection
		base = &cp
	}

	c.begin(&transform.Action{
		Kind:    transform.KindMove,
		Start:   pointer,
		Shift:   shift,
		Initial: transform.Capture(base, selection),
	}, p, base)
	return nil
}

// BeginResize starts dragging one of the eight handles of the selection box.
func (c *Controller) BeginResize(handle transform.Handle, pointer geom.Vec, shift bool) error {
	if !handle.Valid() {
		return ErrInvalidHandle
	}
	return c.beginSelection(transform.KindResize, handle, pointer, shift)
}

// BeginRotate starts rotating the selection.
func (c *Controller) BeginRotate(pointer geom.Vec, shift bool) error {
	return c.beginSelection(transform.KindRotate, "", pointer, shift)
}

func (c *Controller) beginSelection(kind transform.Kind, handle transform.Handle, pointer geom.Vec, shift bool) error {
	if c.action != nil {
		return ErrGestureActive
	}
	p := c.history.Present()
	if len(p.SelectedLayers) == 0 {
		return ErrEmptySelection
	}
	c.begin(&transform.Action{
		Kind:    kind,
		Start:   pointer,
		Shift:   shift,
		Handle:  handle,
		Initial: transform.Capture(p, p.SelectedLayers),
	}, p, p)
	return nil
}

// BeginNode starts dragging a path node (move-node) or one of its handles (move-handle).
// Shift breaks handle symmetry.
func (c *Controller) BeginNode(kind transform.Kind, layerID, pointID string, which nodegraph.Handle, pointer geom.Vec, shift bool) error {
	if c.action != nil {
		return ErrGestureActive
	}
	p := c.history.Present()
	sl, err := pathLayer(p, layerID)
	if err != nil {
		return err
	}
	if !slices.ContainsFunc(sl.Shape.Points, func(pt document.PathPoint) bool { return pt.ID == pointID }) {
		return ErrPointNotFound
	}
	if kind != transform.KindMoveHandle {
		kind = transform.KindMoveNode
	}

	c.begin(&transform.Action{
		Kind:          kind,
		Start:         pointer,
		Shift:         shift,
		LayerID:       layerID,
		PointID:       pointID,
		Which:         which,
		InitialPoints: slices.Clone(sl.Shape.Points),
		Initial:       transform.Capture(p, []string{layerID}),
	}, p, p)
	return nil
}

// BeginPan starts sliding the image inside the frame of the layer being cropped.
func (c *Controller) BeginPan(layerID string, pointer geom.Vec) error {
	if c.action != nil {
		return ErrGestureActive
	}
	p := c.history.Present()
	l, ok := p.Layer(layerID)
	if !ok {
		return ErrLayerNotFound
	}
	if p.CroppingLayerID != layerID || !document.HasImageFill(l) {
		return ErrNotCropping
	}
	c.begin(&transform.Action{
		Kind:    transform.KindPanImage,
		Start:   pointer,
		LayerID: layerID,
		Initial: transform.Capture(p, []string{layerID}),
	}, p, p)
	return nil
}

// BeginGuide starts dragging a guide.
func (c *Controller) BeginGuide(guideID string, pointer geom.Vec) error {
	if c.action != nil {
		return ErrGestureActive
	}
	p := c.history.Present()
	i := slices.IndexFunc(p.Canvas.Guides.Items, func(g document.Guide) bool { return g.ID == guideID })
	if i < 0 {
		return ErrGuideNotFound
	}
	c.begin(&transform.Action{
		Kind:            transform.KindMoveGuide,
		Start:           pointer,
		GuideID:         guideID,
		InitialPosition: p.Canvas.Guides.Items[i].Position,
	}, p, p)
	return nil
}

// Move records the latest pointer position. Nothing is computed until the next Frame,
// so any number of moves between frames costs one recomputation.
func (c *Controller) Move(pointer geom.Vec) error {
	if c.action == nil {
		return ErrNoGesture
	}
	c.pointer = pointer
	c.pending = true
	return nil
}

// Frame recomputes the live state from the captured snapshot if the pointer moved since
// the last frame. It reports whether anything was recomputed.
func (c *Controller) Frame() bool {
	if c.action == nil || !c.pending {
		return false
	}
	c.pending = false
	c.frames++

	next, lines := c.compute(c.pointer)
	c.lines = lines
	c.history.SetLive(next)
	return true
}

func (c *Controller) compute(pointer geom.Vec) (*document.Project, transform.SnapLines) {
	a, p := c.action, c.base
	delta := pointer.Sub(a.Start)
	none := transform.SnapLines{}

	switch a.Kind {
	case transform.KindMove, transform.KindResize, transform.KindRotate:
		bounds := c.bounds
		if bounds == nil {
			bounds = transform.ProjectBounds{Project: p}
		}
		res := transform.Apply(transform.Input{
			Project: p,
			Action:  a,
			Delta:   delta,
			Pointer: pointer,
			Bounds:  bounds,
		})
		return p.WithLayers(res.Layers), res.SnapLines

	case transform.KindPanImage:
		s := a.Initial[a.LayerID]
		return replaceLayer(p, a.LayerID, func(l document.Layer) document.Layer {
			return transform.PanImage(l, s.Pan, delta, p.ZoomOrOne())
		}), none

	case transform.KindMoveGuide:
		return transform.MoveGuide(p, a.GuideID, a.InitialPosition, delta), none

	case transform.KindMoveNode, transform.KindMoveHandle:
		s := a.Initial[a.LayerID]
		local := nodegraph.ScreenDeltaToLocal(delta, p.ZoomOrOne(), s.Transform)
		var points []document.PathPoint
		if a.Kind == transform.KindMoveNode {
			points = nodegraph.MoveNode(a.InitialPoints, a.PointID, local)
		} else {
			points = nodegraph.MoveHandle(a.InitialPoints, a.PointID, a.Which, local, a.Shift)
		}
		return withPoints(p, a.LayerID, points), none
	}
	return p, none
}

// Release ends the gesture. A pending frame is flushed first. A node drag that travelled
// less than ClickThreshold on both axes toggles the node type instead of moving it.
// Otherwise the whole gesture is recorded as one history step, or nothing when the
// state did not change. It reports whether a step was recorded.
func (c *Controller) Release() (bool, error) {
	if c.action == nil {
		return false, ErrNoGesture
	}
	c.Frame()

	a := c.action
	delta := c.pointer.Sub(a.Start)
	undoTo := c.undoTo
	c.reset()

	if a.Kind == transform.KindMoveNode && math.Abs(delta.X) < ClickThreshold && math.Abs(delta.Y) < ClickThreshold {
		c.history.SetLive(undoTo)
		toggled := withPoints(undoTo, a.LayerID, nodegraph.ToggleNodeType(a.InitialPoints, a.PointID))
		return c.history.Set(toggled), nil
	}

	return c.history.Commit(undoTo, c.history.Present()), nil
}

// Cancel abandons the gesture and restores the state from before it started. Nothing
// is recorded.
func (c *Controller) Cancel() error {
	if c.action == nil {
		return ErrNoGesture
	}
	undoTo := c.undoTo
	c.reset()
	c.history.SetLive(undoTo)
	return nil
}

func (c *Controller) reset() {
	c.action = nil
	c.undoTo = nil
	c.base = nil
	c.pending = false
	c.lines = transform.SnapLines{}
}

func pathLayer(p *document.Project, layerID string) (*document.ShapeLayer, error) {
	l, ok := p.Layer(layerID)
	if !ok {
		return nil, ErrLayerNotFound
	}
	sl, ok := l.(*document.ShapeLayer)
	if !ok || sl.Shape.Points == nil {
		return nil, ErrPointNotFound
	}
	return sl, nil
}

func replaceLayer(p *document.Project, id string, fn func(document.Layer) document.Layer) *document.Project {
	i := p.LayerIndex(id)
	if i < 0 {
		return p
	}
	layers := slices.Clone(p.Layers)
	layers[i] = fn(layers[i])
	return p.WithLayers(layers)
}

func withPoints(p *document.Project, layerID string, points []document.PathPoint) *document.Project {
	return replaceLayer(p, layerID, func(l document.Layer) document.Layer {
		sl, ok := l.(*document.ShapeLayer)
		if !ok {
			return l
		}
		c := sl.Clone().(*document.ShapeLayer)
		c.Shape.Points = points
		return c
	})
}
