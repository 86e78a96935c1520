package engine

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/inamate/artboard/internal/document"
	"github.com/inamate/artboard/internal/geom"
	"github.com/inamate/artboard/internal/transform"
)

func testProject() *document.Project {
	p := document.NewEmptyProject("proj_test", "test")
	p.Canvas.Width, p.Canvas.Height = 1000, 1000
	p.Layers = []document.Layer{
		&document.ShapeLayer{
			Base: document.Base{
				ID: "top", Type: document.LayerShape, Visible: true, ZIndex: 2,
				Transform: document.Transform{X: 100, Y: 100, Width: 200, Height: 20, Rotation: 90, Opacity: 1},
			},
			Shape: document.Shape{Primitive: document.PrimitiveRect, Fill: document.SolidColor("#ff0000")},
		},
		&document.ShapeLayer{
			Base: document.Base{
				ID: "bottom", Type: document.LayerShape, Visible: true, ZIndex: 0,
				Transform: document.Transform{X: 0, Y: 0, Width: 400, Height: 400, Opacity: 1},
			},
			Shape: document.Shape{
				Primitive: document.PrimitiveCircle,
				Fill:      document.Color{Type: document.ColorSolid, Mode: "mapped", Value: "accent"},
			},
		},
		&document.ImageLayer{
			Base: document.Base{
				ID: "hidden", Type: document.LayerImage, Visible: false, ZIndex: 1,
				Transform: document.Transform{X: 0, Y: 0, Width: 100, Height: 100, Opacity: 1},
			},
		},
	}
	return p
}

func TestBuildSceneGraphOrdersByZIndex(t *testing.T) {
	sg := BuildSceneGraph(testProject())

	var ids []string
	for _, n := range sg.Root.Children {
		ids = append(ids, n.ID)
	}
	if diff := cmp.Diff([]string{"bottom", "top"}, ids); diff != "" {
		t.Errorf("children mismatch (-want +got):\n%s", diff)
	}
	if _, ok := sg.NodesByID["hidden"]; ok {
		t.Error("hidden layer should not be in the scene")
	}
	if fill := sg.NodesByID["bottom"].Fill; fill != "#f43f5e" {
		t.Errorf("mapped fill resolved to %q", fill)
	}
}

func TestHitTestUsesRotatedBox(t *testing.T) {
	sg := BuildSceneGraph(testProject())

	// "top" is a 200x20 bar rotated upright around (200,110): it spans x 190..210, y 10..210.
	tests := []struct {
		name string
		p    geom.Vec
		want string
	}{
		{"on the upright bar", geom.Vec{X: 200, Y: 30}, "top"},
		{"inside the unrotated box only", geom.Vec{X: 120, Y: 110}, "bottom"},
		{"background", geom.Vec{X: 900, Y: 900}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HitTest(sg, tt.p); got != tt.want {
				t.Errorf("HitTest(%v) = %q, want %q", tt.p, got, tt.want)
			}
		})
	}
}

func TestSelectionBounds(t *testing.T) {
	sg := BuildSceneGraph(testProject())

	r, ok := sg.SelectionBounds([]string{"top"})
	if !ok {
		t.Fatal("expected bounds")
	}
	want := geom.Rect{X: 190, Y: 10, Width: 20, Height: 200}
	if math.Abs(r.X-want.X) > 1e-9 || math.Abs(r.Y-want.Y) > 1e-9 ||
		math.Abs(r.Width-want.Width) > 1e-9 || math.Abs(r.Height-want.Height) > 1e-9 {
		t.Errorf("bounds = %+v, want %+v", r, want)
	}

	if _, ok := sg.SelectionBounds([]string{"hidden", "missing"}); ok {
		t.Error("no visible layer, no bounds")
	}
}

func TestSceneGraphDrivesRotation(t *testing.T) {
	p := testProject()
	p.SelectedLayers = []string{"bottom"}
	a := &transform.Action{
		Kind:    transform.KindRotate,
		Start:   geom.Vec{X: 400, Y: 200},
		Initial: transform.Capture(p, p.SelectedLayers),
	}
	res := transform.Apply(transform.Input{
		Project: p,
		Action:  a,
		Pointer: geom.Vec{X: 200, Y: 400},
		Bounds:  BuildSceneGraph(p),
	})
	for _, l := range res.Layers {
		if b := l.LayerBase(); b.ID == "bottom" && math.Abs(b.Transform.Rotation-90) > 1e-9 {
			t.Errorf("rotation = %v, want 90", b.Transform.Rotation)
		}
	}
}

func TestImageCommandsAreClipped(t *testing.T) {
	p := testProject()
	p.Layers = []document.Layer{&document.ImageLayer{
		Base: document.Base{
			ID: "img", Type: document.LayerImage, Visible: true,
			Transform: document.Transform{Width: 200, Height: 100, Opacity: 1},
		},
		Src: "/assets/a.png", OriginalWidth: 100, OriginalHeight: 100,
		Fit: document.FitCover, Pan: document.Pan{X: 50, Y: 50},
		Crop: document.Crop{Left: 10},
	}}

	var ops []string
	var img DrawCommand
	for _, c := range CompileDrawCommands(BuildSceneGraph(p)) {
		ops = append(ops, c.Op)
		if c.Op == "image" {
			img = c
		}
	}
	if diff := cmp.Diff([]string{"save", "clip", "clip", "image", "restore"}, ops); diff != "" {
		t.Errorf("ops mismatch (-want +got):\n%s", diff)
	}
	// Cover scales the square image to 200x200 and centers it vertically.
	if img.ImageX != 0 || img.ImageY != -50 || img.ImageWidth != 200 || img.ImageHeight != 200 {
		t.Errorf("image placed at (%v,%v) %vx%v", img.ImageX, img.ImageY, img.ImageWidth, img.ImageHeight)
	}
}

func TestEngineGestureAndUndo(t *testing.T) {
	e := NewEngine(0)
	p := testProject()
	p.Canvas.Guides.Snap = false
	if err := e.SetProject(p); err != nil {
		t.Fatal(err)
	}
	before := e.SceneGraph()

	g := e.Gestures()
	if err := g.BeginMove("bottom", geom.Vec{}, false); err != nil {
		t.Fatal(err)
	}
	g.Move(geom.Vec{X: 33, Y: 0})
	e.Tick()
	if e.Undo() {
		t.Error("undo must wait for the gesture to end")
	}
	g.Release()

	if e.SceneGraph() == before {
		t.Error("scene graph should be rebuilt after a change")
	}
	if x := e.SceneGraph().NodesByID["bottom"].Bounds.X; x != 33 {
		t.Errorf("moved layer at x=%v", x)
	}

	var ids []string
	if err := json.Unmarshal([]byte(e.GetSelection()), &ids); err != nil || len(ids) != 1 || ids[0] != "bottom" {
		t.Errorf("selection = %s (%v)", e.GetSelection(), err)
	}

	if !e.Undo() {
		t.Fatal("expected an undo step")
	}
	if x := e.Project().Layers[1].LayerBase().Transform.X; x != 0 {
		t.Errorf("undo left layer at x=%v", x)
	}
}

func TestLoadProjectRejectsInvalid(t *testing.T) {
	e := NewEngine(0)
	if err := e.LoadProject([]byte(`{"canvas":{"width":0,"height":0},"layers":[]}`)); err == nil {
		t.Error("expected validation error")
	}
	if err := e.LoadProject([]byte(e.GetDocument())); err != nil {
		t.Errorf("round trip failed: %v", err)
	}
}
