package gesture

import (
	"errors"
	"testing"

	"github.com/inamate/artboard/internal/document"
	"github.com/inamate/artboard/internal/geom"
	"github.com/inamate/artboard/internal/history"
	"github.com/inamate/artboard/internal/nodegraph"
	"github.com/inamate/artboard/internal/transform"
)

func newSession(t *testing.T) (*Controller, *history.History) {
	t.Helper()

	p := document.NewEmptyProject("proj_test", "test")
	p.Canvas.Guides.Snap = false
	p.Canvas.Guides.Items = []document.Guide{{ID: "g", Orientation: document.Vertical, Position: 100}}
	p.Layers = []document.Layer{
		&document.ShapeLayer{
			Base: document.Base{
				ID: "box", Type: document.LayerShape, Visible: true,
				Transform: document.Transform{X: 0, Y: 0, Width: 200, Height: 100, Opacity: 1},
			},
			Shape: document.Shape{Primitive: document.PrimitiveRect},
		},
		&document.ShapeLayer{
			Base: document.Base{
				ID: "path", Type: document.LayerShape, Visible: true, ZIndex: 1,
				Transform: document.Transform{X: 300, Y: 300, Width: 100, Height: 100, Opacity: 1},
			},
			Shape: document.Shape{
				Primitive: document.PrimitivePath,
				IsClosed:  true,
				Points: []document.PathPoint{
					document.CornerPoint("a", 0, 0),
					document.CornerPoint("b", 100, 0),
					document.CornerPoint("c", 100, 100),
				},
			},
		},
	}

	h := history.New(p, 0)
	return NewController(h, nil), h
}

func point(t *testing.T, p *document.Project, id string) document.PathPoint {
	t.Helper()
	l, _ := p.Layer("path")
	for _, pt := range l.(*document.ShapeLayer).Shape.Points {
		if pt.ID == id {
			return pt
		}
	}
	t.Fatalf("point %s not found", id)
	return document.PathPoint{}
}

func boxX(p *document.Project) float64 {
	l, _ := p.Layer("box")
	return l.LayerBase().Transform.X
}

func TestMoveGestureRecordsOneStep(t *testing.T) {
	c, h := newSession(t)

	if err := c.BeginMove("box", geom.Vec{}, false); err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= 5; i++ {
		if err := c.Move(geom.Vec{X: float64(i * 10)}); err != nil {
			t.Fatal(err)
		}
		c.Frame()
	}
	committed, err := c.Release()
	if err != nil || !committed {
		t.Fatalf("Release() = %v, %v", committed, err)
	}

	if undo, _ := h.Depth(); undo != 1 {
		t.Fatalf("expected exactly one history entry, got %d", undo)
	}
	if got := boxX(h.Present()); got != 50 {
		t.Errorf("box at x=%v, want 50", got)
	}
	if c.State() != Idle {
		t.Error("controller should be idle after release")
	}

	h.Undo()
	if got := boxX(h.Present()); got != 0 {
		t.Errorf("undo left box at x=%v", got)
	}
	if len(h.Present().SelectedLayers) != 0 {
		t.Error("undo should restore the previous selection")
	}
}

func TestMovesBetweenFramesAreCoalesced(t *testing.T) {
	c, h := newSession(t)

	c.BeginMove("box", geom.Vec{}, false)
	for i := 1; i <= 5; i++ {
		c.Move(geom.Vec{X: float64(i)})
	}
	if !c.Frame() {
		t.Fatal("expected a recomputation")
	}
	if c.Frame() {
		t.Error("no new pointer data, nothing to recompute")
	}
	c.Release()

	if c.Frames() != 1 {
		t.Errorf("expected 1 recomputation, got %d", c.Frames())
	}
	if got := boxX(h.Present()); got != 5 {
		t.Errorf("latest pointer should win, box at x=%v", got)
	}
}

func TestReleaseFlushesPendingFrame(t *testing.T) {
	c, h := newSession(t)

	c.BeginMove("box", geom.Vec{}, false)
	c.Move(geom.Vec{X: 30, Y: 10})
	c.Release()

	if got := boxX(h.Present()); got != 30 {
		t.Errorf("box at x=%v, want 30", got)
	}
}

func TestNodeDragBelowThresholdTogglesType(t *testing.T) {
	c, h := newSession(t)

	if err := c.BeginNode(transform.KindMoveNode, "path", "b", "", geom.Vec{X: 10, Y: 10}, false); err != nil {
		t.Fatal(err)
	}
	c.Move(geom.Vec{X: 12, Y: 10})
	c.Frame()
	c.Release()

	got := point(t, h.Present(), "b")
	if got.Type != document.PointCurve {
		t.Errorf("expected click to toggle to curve, got %s", got.Type)
	}
	if got.X != 100 || got.Y != 0 {
		t.Errorf("position changed to (%v,%v)", got.X, got.Y)
	}
	if undo, _ := h.Depth(); undo != 1 {
		t.Errorf("expected one history entry, got %d", undo)
	}
}

func TestNodeDragAboveThresholdMovesNode(t *testing.T) {
	c, h := newSession(t)

	c.BeginNode(transform.KindMoveNode, "path", "b", "", geom.Vec{X: 10, Y: 10}, false)
	c.Move(geom.Vec{X: 15, Y: 10})
	c.Frame()
	c.Release()

	got := point(t, h.Present(), "b")
	if got.Type != document.PointCorner {
		t.Errorf("drag must not toggle the type, got %s", got.Type)
	}
	if got.X != 105 || got.Y != 0 {
		t.Errorf("expected (105,0), got (%v,%v)", got.X, got.Y)
	}
	if undo, _ := h.Depth(); undo != 1 {
		t.Errorf("expected one history entry, got %d", undo)
	}
}

func TestNodeAndHandleDragsRecordOneStepEach(t *testing.T) {
	c, h := newSession(t)

	c.BeginNode(transform.KindMoveNode, "path", "b", "", geom.Vec{}, false)
	for i := 1; i <= 5; i++ {
		c.Move(geom.Vec{X: float64(i * 2)})
		c.Frame()
	}
	c.Release()

	if undo, _ := h.Depth(); undo != 1 {
		t.Fatalf("node drag over five frames recorded %d entries, want 1", undo)
	}
	if got := point(t, h.Present(), "b"); got.X != 110 {
		t.Errorf("node at x=%v, want 110", got.X)
	}

	c.BeginNode(transform.KindMoveNode, "path", "c", "", geom.Vec{}, false)
	c.Release()
	before := point(t, h.Present(), "c").Handles

	c.BeginNode(transform.KindMoveHandle, "path", "c", nodegraph.HandleOut, geom.Vec{}, false)
	for i := 1; i <= 3; i++ {
		c.Move(geom.Vec{X: float64(-i * 5), Y: float64(i * 5)})
		c.Frame()
	}
	c.Release()

	if undo, _ := h.Depth(); undo != 3 {
		t.Fatalf("expected drag, click and handle drag as 3 entries, got %d", undo)
	}
	h.Undo()
	if got := point(t, h.Present(), "c").Handles; got != before {
		t.Errorf("one undo should restore the handles, got %+v want %+v", got, before)
	}
	h.Undo()
	h.Undo()
	if got := point(t, h.Present(), "b"); got.X != 100 {
		t.Errorf("undo left node at x=%v", got.X)
	}
}

func TestHandleDragMirrors(t *testing.T) {
	c, h := newSession(t)
	c.BeginNode(transform.KindMoveNode, "path", "c", "", geom.Vec{}, false)
	c.Release() // click: corner to curve, handles at 85 and 115

	c.BeginNode(transform.KindMoveHandle, "path", "c", nodegraph.HandleOut, geom.Vec{}, false)
	c.Move(geom.Vec{X: -15, Y: 20})
	c.Release()

	got := point(t, h.Present(), "c")
	if !got.Handles.In.Near(geom.Vec{X: 100, Y: 80}, 1e-9) {
		t.Errorf("in handle at %+v, want (100,80)", got.Handles.In)
	}
}

func TestSecondGestureIsRejected(t *testing.T) {
	c, _ := newSession(t)

	if err := c.BeginMove("box", geom.Vec{}, false); err != nil {
		t.Fatal(err)
	}
	if err := c.BeginGuide("g", geom.Vec{}); !errors.Is(err, ErrGestureActive) {
		t.Errorf("expected ErrGestureActive, got %v", err)
	}
}

func TestCancelRestoresWithoutHistory(t *testing.T) {
	c, h := newSession(t)
	before := h.Present()

	c.BeginMove("box", geom.Vec{}, false)
	c.Move(geom.Vec{X: 40})
	c.Frame()
	if err := c.Cancel(); err != nil {
		t.Fatal(err)
	}

	if h.Present() != before {
		t.Error("cancel should restore the pre-gesture state")
	}
	if h.CanUndo() {
		t.Error("cancel must not record history")
	}
	if err := c.Cancel(); !errors.Is(err, ErrNoGesture) {
		t.Errorf("expected ErrNoGesture, got %v", err)
	}
}

func TestUnchangedGestureRecordsNothing(t *testing.T) {
	c, h := newSession(t)
	p := h.Present().Clone()
	p.SelectedLayers = []string{"box"}
	h.Set(p)

	if err := c.BeginResize(transform.HandleBottomRight, geom.Vec{}, false); err != nil {
		t.Fatal(err)
	}
	if committed, _ := c.Release(); committed {
		t.Error("zero-delta gesture should not be recorded")
	}
	if undo, _ := h.Depth(); undo != 1 {
		t.Errorf("expected only the selection step, got %d", undo)
	}
}

func TestResizeRequiresSelection(t *testing.T) {
	c, _ := newSession(t)
	if err := c.BeginResize(transform.HandleBottomRight, geom.Vec{}, false); !errors.Is(err, ErrEmptySelection) {
		t.Errorf("expected ErrEmptySelection, got %v", err)
	}
	if err := c.BeginResize("xx", geom.Vec{}, false); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("expected ErrInvalidHandle, got %v", err)
	}
}

func TestLockedLayerCannotMove(t *testing.T) {
	c, h := newSession(t)
	p := h.Present().Clone()
	b := p.Layers[0].LayerBase()
	b.Locked = true
	p.Layers[0] = document.WithBase(p.Layers[0], b)
	h.Set(p)

	if err := c.BeginMove("box", geom.Vec{}, false); !errors.Is(err, ErrLocked) {
		t.Errorf("expected ErrLocked, got %v", err)
	}
}

func TestGuideGesture(t *testing.T) {
	c, h := newSession(t)

	c.BeginGuide("g", geom.Vec{X: 100})
	c.Move(geom.Vec{X: 160})
	c.Release()

	if got := h.Present().Canvas.Guides.Items[0].Position; got != 160 {
		t.Errorf("guide at %v, want 160", got)
	}
	if undo, _ := h.Depth(); undo != 1 {
		t.Errorf("expected one history entry, got %d", undo)
	}
}
