package editor

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/inamate/artboard/internal/document"
	"github.com/inamate/artboard/internal/geom"
	"github.com/inamate/artboard/internal/history"
)

func rect(id string, z int, x, y, w, h float64) *document.ShapeLayer {
	return &document.ShapeLayer{
		Base: document.Base{
			ID: id, Name: id, Type: document.LayerShape, Visible: true, ZIndex: z,
			Transform: document.Transform{X: x, Y: y, Width: w, Height: h, Opacity: 1},
		},
		Shape: document.Shape{Primitive: document.PrimitiveRect, IsClosed: true},
	}
}

// newEditor builds a 1000x800 canvas with layers a, b, c stacked bottom to top.
func newEditor(t *testing.T) (*Editor, *history.History) {
	t.Helper()
	p := document.NewEmptyProject("proj_test", "test")
	p.Canvas.Width, p.Canvas.Height = 1000, 800
	p.Layers = []document.Layer{
		rect("a", 0, 0, 0, 100, 100),
		rect("b", 1, 200, 100, 50, 50),
		rect("c", 2, 400, 300, 100, 200),
	}
	h := history.New(p, 0)
	return New(h), h
}

// stack returns layer ids ordered bottom to top.
func stack(p *document.Project) []string {
	var ids []string
	for _, l := range document.SortedByZ(p.Layers) {
		ids = append(ids, l.LayerBase().ID)
	}
	return ids
}

func assertDense(t *testing.T, p *document.Project) {
	t.Helper()
	for i, l := range document.SortedByZ(p.Layers) {
		if z := l.LayerBase().ZIndex; z != i {
			t.Fatalf("zIndex not dense: %s has %d at position %d", l.LayerBase().ID, z, i)
		}
	}
}

func layer(t *testing.T, p *document.Project, id string) document.Layer {
	t.Helper()
	l, ok := p.Layer(id)
	if !ok {
		t.Fatalf("layer %s not found", id)
	}
	return l
}

func TestAddImageLayer(t *testing.T) {
	e, h := newEditor(t)

	id, err := e.AddImageLayer("/assets/x.png", 1200, 600)
	if err != nil {
		t.Fatal(err)
	}
	img := layer(t, h.Present(), id).(*document.ImageLayer)

	want := document.Transform{X: 350, Y: 325, Width: 300, Height: 150, Opacity: 1}
	if diff := cmp.Diff(want, img.Transform); diff != "" {
		t.Errorf("transform mismatch (-want +got):\n%s", diff)
	}
	if img.Fit != document.FitCover || img.Pan != (document.Pan{X: 50, Y: 50}) || img.Crop != (document.Crop{}) {
		t.Errorf("unexpected image defaults: fit=%s pan=%+v crop=%+v", img.Fit, img.Pan, img.Crop)
	}
	if img.ZIndex != 3 {
		t.Errorf("new layer should be on top, got z=%d", img.ZIndex)
	}
	if diff := cmp.Diff([]string{id}, h.Present().SelectedLayers); diff != "" {
		t.Errorf("selection mismatch:\n%s", diff)
	}

	if _, err := e.AddImageLayer("x", 0, 10); !errors.Is(err, ErrInvalidImage) {
		t.Errorf("expected ErrInvalidImage, got %v", err)
	}
}

func TestAddTextAndShapeSnapToGuides(t *testing.T) {
	e, h := newEditor(t)
	if _, err := e.AddGuide(document.Vertical); err != nil {
		t.Fatal(err)
	}

	id, err := e.AddText(geom.Vec{X: 105, Y: 300})
	if err != nil {
		t.Fatal(err)
	}
	tr := layer(t, h.Present(), id).LayerBase().Transform
	if tr.X != -100 || tr.Y != 270 || tr.Width != 400 || tr.Height != 60 {
		t.Errorf("text placed at %+v", tr)
	}

	id, err = e.AddShape(document.PrimitiveDashedLine, geom.Vec{X: 500, Y: 400})
	if err != nil {
		t.Fatal(err)
	}
	line := layer(t, h.Present(), id).(*document.ShapeLayer)
	if line.Transform.Height != 10 || line.Transform.Y != 395 || line.Shape.IsClosed {
		t.Errorf("unexpected line %+v closed=%v", line.Transform, line.Shape.IsClosed)
	}
	if line.Shape.Stroke == nil || line.Shape.Stroke.Dash != "8 8" {
		t.Errorf("dashed line needs a dashed stroke, got %+v", line.Shape.Stroke)
	}
	if line.Name != "Dashed-line Layer" {
		t.Errorf("name = %q", line.Name)
	}

	if _, err := e.AddShape(document.PrimitivePath, geom.Vec{}); !errors.Is(err, ErrInvalidShape) {
		t.Errorf("expected ErrInvalidShape, got %v", err)
	}
}

func TestDeleteLayersCompactsStack(t *testing.T) {
	e, h := newEditor(t)
	gid, err := e.GroupLayers([]string{"b"})
	if err != nil {
		t.Fatal(err)
	}
	e.SetSelection([]string{"a", "b"})

	if err := e.DeleteLayers([]string{"b"}); err != nil {
		t.Fatal(err)
	}
	p := h.Present()
	assertDense(t, p)
	if diff := cmp.Diff([]string{"a", "c"}, stack(p)); diff != "" {
		t.Errorf("stack mismatch:\n%s", diff)
	}
	if _, ok := p.Group(gid); ok {
		t.Error("emptied group should be removed")
	}
	if _, ok := p.Group(document.EditableGroupID); !ok {
		t.Error("editable group must survive")
	}
	if diff := cmp.Diff([]string{"a"}, p.SelectedLayers); diff != "" {
		t.Errorf("selection mismatch:\n%s", diff)
	}
}

func TestDuplicateLayers(t *testing.T) {
	e, h := newEditor(t)

	ids, err := e.DuplicateLayers([]string{"a", "b"})
	if err != nil {
		t.Fatal(err)
	}
	p := h.Present()
	assertDense(t, p)

	want := []string{"a", "b", ids[0], ids[1], "c"}
	if diff := cmp.Diff(want, stack(p)); diff != "" {
		t.Errorf("copies should sit above b (-want +got):\n%s", diff)
	}
	cp := layer(t, p, ids[1]).LayerBase()
	if cp.Transform.X != 220 || cp.Transform.Y != 120 || cp.Name != "b copy" {
		t.Errorf("unexpected copy %+v", cp)
	}
	if diff := cmp.Diff(ids, p.SelectedLayers); diff != "" {
		t.Errorf("selection mismatch:\n%s", diff)
	}
}

func TestMoveLayer(t *testing.T) {
	tests := []struct {
		name string
		id   string
		dir  Direction
		want []string
	}{
		{"up", "a", Up, []string{"b", "a", "c"}},
		{"down", "c", Down, []string{"a", "c", "b"}},
		{"top stays", "c", Up, []string{"a", "b", "c"}},
		{"bottom stays", "a", Down, []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, h := newEditor(t)
			if err := e.MoveLayer(tt.id, tt.dir); err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, stack(h.Present())); diff != "" {
				t.Errorf("stack mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBringToFrontAndSendToBack(t *testing.T) {
	e, h := newEditor(t)
	e.SetSelection([]string{"a", "b"})

	e.BringToFront()
	if diff := cmp.Diff([]string{"c", "a", "b"}, stack(h.Present())); diff != "" {
		t.Errorf("front (-want +got):\n%s", diff)
	}
	e.SetSelection([]string{"b"})
	e.SendToBack()
	if diff := cmp.Diff([]string{"b", "c", "a"}, stack(h.Present())); diff != "" {
		t.Errorf("back (-want +got):\n%s", diff)
	}
	assertDense(t, h.Present())
}

func TestAlignLayers(t *testing.T) {
	e, h := newEditor(t)

	e.SetSelection([]string{"b"})
	e.AlignLayers(AlignRight)
	if x := layer(t, h.Present(), "b").LayerBase().Transform.X; x != 950 {
		t.Errorf("single layer aligns to canvas, x=%v", x)
	}

	e.SetSelection([]string{"a", "c"})
	e.AlignLayers(AlignMiddle)
	// Selection box spans y 0..500.
	if y := layer(t, h.Present(), "a").LayerBase().Transform.Y; y != 200 {
		t.Errorf("a.y = %v, want 200", y)
	}
	if y := layer(t, h.Present(), "c").LayerBase().Transform.Y; y != 150 {
		t.Errorf("c.y = %v, want 150", y)
	}
}

func TestGroups(t *testing.T) {
	e, h := newEditor(t)

	gid, err := e.GroupLayers([]string{"a", "c", "missing"})
	if err != nil {
		t.Fatal(err)
	}
	g, _ := h.Present().Group(gid)
	if diff := cmp.Diff([]string{"a", "c"}, g.LayerIDs); diff != "" {
		t.Errorf("members mismatch:\n%s", diff)
	}
	if layer(t, h.Present(), "a").LayerBase().GroupID != gid {
		t.Error("layer should point at its new group")
	}

	e.UpdateGroup(gid, func(g *document.Group) { g.Name = "Hero"; g.ID = "hijack" })
	if g, ok := h.Present().Group(gid); !ok || g.Name != "Hero" {
		t.Errorf("rename failed: %+v", g)
	}

	if err := e.UngroupLayers(gid); err != nil {
		t.Fatal(err)
	}
	if layer(t, h.Present(), "c").LayerBase().GroupID != "" {
		t.Error("ungrouped layer still references the group")
	}
	if diff := cmp.Diff([]string{"a", "c"}, h.Present().SelectedLayers); diff != "" {
		t.Errorf("ungroup should select the members:\n%s", diff)
	}

	if err := e.DeleteGroup(document.EditableGroupID); !errors.Is(err, ErrProtectedGroup) {
		t.Errorf("expected ErrProtectedGroup, got %v", err)
	}
	if _, err := e.GroupLayers(nil); !errors.Is(err, ErrEmptySelection) {
		t.Errorf("expected ErrEmptySelection, got %v", err)
	}
}

func TestDeleteGroupRemovesMembers(t *testing.T) {
	e, h := newEditor(t)
	gid, _ := e.GroupLayers([]string{"a", "b"})

	if err := e.DeleteGroup(gid); err != nil {
		t.Fatal(err)
	}
	p := h.Present()
	if diff := cmp.Diff([]string{"c"}, stack(p)); diff != "" {
		t.Errorf("stack mismatch:\n%s", diff)
	}
	assertDense(t, p)
	if _, ok := p.Group(gid); ok {
		t.Error("group should be gone")
	}
}

func TestGuides(t *testing.T) {
	e, h := newEditor(t)

	for i := 0; i < 8; i++ {
		if _, err := e.AddGuide(document.Horizontal); err != nil {
			t.Fatalf("guide %d: %v", i, err)
		}
	}
	if _, err := e.AddGuide(document.Horizontal); !errors.Is(err, ErrNoGuideSpace) {
		t.Errorf("expected ErrNoGuideSpace at 900 > 800, got %v", err)
	}

	if err := e.GenerateGuides(document.Vertical, 3); err != nil {
		t.Fatal(err)
	}
	var vertical []float64
	for _, g := range h.Present().Canvas.Guides.Items {
		if g.Orientation == document.Vertical {
			vertical = append(vertical, g.Position)
		}
	}
	if diff := cmp.Diff([]float64{250, 500, 750}, vertical); diff != "" {
		t.Errorf("generated guides mismatch:\n%s", diff)
	}

	first := h.Present().Canvas.Guides.Items[0].ID
	e.UpdateGuide(first, 5000)
	if pos := h.Present().Canvas.Guides.Items[0].Position; pos != 800 {
		t.Errorf("guide should clamp to the canvas, got %v", pos)
	}
	e.RemoveGuide(first)
	if err := e.RemoveGuide(first); !errors.Is(err, ErrGuideNotFound) {
		t.Errorf("expected ErrGuideNotFound, got %v", err)
	}

	e.ToggleSnapping()
	if h.Present().Canvas.Guides.Snap {
		t.Error("snap should be off")
	}
}

func TestCropMode(t *testing.T) {
	e, h := newEditor(t)
	id, _ := e.AddImageLayer("x.png", 100, 100)

	if err := e.ToggleCropMode("a"); !errors.Is(err, ErrNotCroppable) {
		t.Errorf("expected ErrNotCroppable, got %v", err)
	}
	e.SetSelection(nil)
	e.ToggleCropMode(id)
	p := h.Present()
	if p.CroppingLayerID != id || !p.IsSelected(id) {
		t.Errorf("crop mode not entered: %q %v", p.CroppingLayerID, p.SelectedLayers)
	}
	e.ToggleCropMode(id)
	if h.Present().CroppingLayerID != "" {
		t.Error("second toggle should leave crop mode")
	}
}

func TestNodeTool(t *testing.T) {
	e, h := newEditor(t)
	e.SetSelection([]string{"a"})
	if err := e.SetTool(document.ToolNode); err != nil {
		t.Fatal(err)
	}
	sl := layer(t, h.Present(), "a").(*document.ShapeLayer)
	if sl.Shape.Primitive != document.PrimitivePath || len(sl.Shape.Points) != 4 {
		t.Fatalf("node tool should convert the rect, got %s with %d points", sl.Shape.Primitive, len(sl.Shape.Points))
	}

	// Midpoint of the top edge.
	id, err := e.InsertNode("a", geom.Vec{X: 50, Y: 0})
	if err != nil {
		t.Fatal(err)
	}
	sl = layer(t, h.Present(), "a").(*document.ShapeLayer)
	if len(sl.Shape.Points) != 5 || sl.Shape.Points[1].ID != id {
		t.Errorf("inserted node should follow the first point, got %+v", sl.Shape.Points)
	}

	e.ToggleNode("a", id)
	sl = layer(t, h.Present(), "a").(*document.ShapeLayer)
	if sl.Shape.Points[1].Type != document.PointCorner {
		t.Error("toggling an inserted curve node should make it a corner")
	}

	for i := 0; i < 2; i++ {
		if err := e.DeleteNode("a", sl.Shape.Points[i].ID); err != nil {
			t.Fatal(err)
		}
	}
	sl = layer(t, h.Present(), "a").(*document.ShapeLayer)
	if err := e.DeleteNode("a", sl.Shape.Points[0].ID); !errors.Is(err, ErrTooFewPoints) {
		t.Errorf("expected ErrTooFewPoints, got %v", err)
	}
	if err := e.ToggleNode("b", "x"); !errors.Is(err, ErrNotPath) {
		t.Errorf("expected ErrNotPath, got %v", err)
	}
}

func TestEditsAreUndoable(t *testing.T) {
	e, h := newEditor(t)
	before := h.Present()

	e.UpdateLayer("a", func(l document.Layer) {
		l.(*document.ShapeLayer).Shape.Fill = document.SolidColor("#000000")
	})
	if undo, _ := h.Depth(); undo != 1 {
		t.Fatalf("expected one step, got %d", undo)
	}
	h.Undo()
	if h.Present() != before {
		t.Error("undo should restore the original snapshot")
	}

	if err := e.UpdateLayer("zzz", func(document.Layer) {}); !errors.Is(err, ErrLayerNotFound) {
		t.Errorf("expected ErrLayerNotFound, got %v", err)
	}
	e.MoveLayer("c", Up)
	if h.CanUndo() {
		t.Error("a no-op edit must not be recorded")
	}
}
