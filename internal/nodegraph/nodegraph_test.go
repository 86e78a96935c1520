package nodegraph

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/inamate/artboard/internal/document"
	"github.com/inamate/artboard/internal/geom"
)

func square() []document.PathPoint {
	return []document.PathPoint{
		document.CornerPoint("a", 0, 0),
		document.CornerPoint("b", 100, 0),
		document.CornerPoint("c", 100, 100),
		document.CornerPoint("d", 0, 100),
	}
}

func TestToggleNodeType(t *testing.T) {
	pts := square()

	curved := ToggleNodeType(pts, "b")
	b := curved[1]
	if b.Type != document.PointCurve {
		t.Fatalf("expected curve, got %s", b.Type)
	}
	if b.Handles.In != (geom.Vec{X: 85, Y: 0}) || b.Handles.Out != (geom.Vec{X: 115, Y: 0}) {
		t.Errorf("unexpected default handles %+v", b.Handles)
	}
	if pts[1].Type != document.PointCorner {
		t.Error("input was mutated")
	}

	corner := ToggleNodeType(curved, "b")[1]
	if corner.Handles.In != corner.Pos() || corner.Handles.Out != corner.Pos() {
		t.Errorf("corner handles must collapse onto the node, got %+v", corner.Handles)
	}
}

func TestToggleKeepsDivergingHandles(t *testing.T) {
	pts := square()
	pts[0].Handles.Out = geom.Vec{X: 5, Y: 5}

	got := ToggleNodeType(pts, "a")[0]
	if got.Handles.Out != (geom.Vec{X: 5, Y: 5}) || got.Handles.In != (geom.Vec{}) {
		t.Errorf("residual handles should be preserved, got %+v", got.Handles)
	}
}

func TestDeleteNode(t *testing.T) {
	pts := square()

	got := DeleteNode(pts, "c")
	if len(got) != 3 || got[2].ID != "d" {
		t.Fatalf("unexpected result %+v", got)
	}
	if len(pts) != 4 {
		t.Error("input was mutated")
	}

	again := DeleteNode(got, "a")
	if diff := cmp.Diff(got, again); diff != "" {
		t.Errorf("three-point path must stay unchanged:\n%s", diff)
	}
}

func TestInsertNodeOnSegment(t *testing.T) {
	tests := []struct {
		name     string
		closed   bool
		click    geom.Vec
		wantAt   int
		wantNext string
	}{
		{"top edge", true, geom.Vec{X: 50, Y: 2}, 1, "b"},
		{"right edge", true, geom.Vec{X: 97, Y: 40}, 2, "c"},
		{"closing edge when closed", true, geom.Vec{X: 1, Y: 50}, 4, ""},
		{"closing edge ignored when open", false, geom.Vec{X: 1, Y: 50}, 1, "b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, at := InsertNodeOnSegment(square(), tt.closed, tt.click, 200, 100, "new")
			if at != tt.wantAt {
				t.Fatalf("inserted at %d, want %d", at, tt.wantAt)
			}
			p := got[at]
			if p.ID != "new" || p.Type != document.PointCurve {
				t.Errorf("unexpected node %+v", p)
			}
			if p.Handles.In != (geom.Vec{X: tt.click.X - 10, Y: tt.click.Y}) ||
				p.Handles.Out != (geom.Vec{X: tt.click.X + 10, Y: tt.click.Y}) {
				t.Errorf("unexpected handles %+v", p.Handles)
			}
			if tt.wantNext != "" && got[at+1].ID != tt.wantNext {
				t.Errorf("expected %s after the new node, got %s", tt.wantNext, got[at+1].ID)
			}
		})
	}
}

func TestInsertSkipsDegenerateSegments(t *testing.T) {
	pts := []document.PathPoint{
		document.CornerPoint("a", 10, 10),
		document.CornerPoint("b", 10, 10),
	}
	got, at := InsertNodeOnSegment(pts, false, geom.Vec{X: 10, Y: 10}, 100, 100, "new")
	if at != -1 || len(got) != 2 {
		t.Errorf("expected no insertion, got index %d", at)
	}
}

func TestMoveNodeCarriesHandles(t *testing.T) {
	pts := ToggleNodeType(square(), "a")
	got := MoveNode(pts, "a", geom.Vec{X: 5, Y: -3})[0]

	if got.X != 5 || got.Y != -3 {
		t.Errorf("node at (%v,%v)", got.X, got.Y)
	}
	if got.Handles.In != (geom.Vec{X: -10, Y: -3}) || got.Handles.Out != (geom.Vec{X: 20, Y: -3}) {
		t.Errorf("handles did not move rigidly: %+v", got.Handles)
	}
}

func TestMoveHandleMirrorsUnlessBroken(t *testing.T) {
	pts := ToggleNodeType(square(), "c") // handles at 85,100 and 115,100

	mirrored := MoveHandle(pts, "c", HandleOut, geom.Vec{X: -15, Y: 20}, false)[2]
	if !mirrored.Handles.Out.Near(geom.Vec{X: 100, Y: 120}, 1e-9) {
		t.Fatalf("out handle at %+v", mirrored.Handles.Out)
	}
	if !mirrored.Handles.In.Near(geom.Vec{X: 100, Y: 80}, 1e-9) {
		t.Errorf("in handle should mirror to (100,80), got %+v", mirrored.Handles.In)
	}

	broken := MoveHandle(pts, "c", HandleOut, geom.Vec{X: -15, Y: 20}, true)[2]
	if broken.Handles.In != (geom.Vec{X: 85, Y: 100}) {
		t.Errorf("broken handle should leave the opposite untouched, got %+v", broken.Handles.In)
	}
}

func TestMoveHandleOnCornerDoesNotMirror(t *testing.T) {
	got := MoveHandle(square(), "a", HandleIn, geom.Vec{X: 4, Y: 4}, false)[0]
	if got.Handles.Out != (geom.Vec{}) {
		t.Errorf("corner opposite handle moved to %+v", got.Handles.Out)
	}
}

func TestScreenToLocal(t *testing.T) {
	tr := document.Transform{X: 100, Y: 100, Width: 200, Height: 100, Rotation: 90}

	// The center maps to 50/50 regardless of rotation and zoom.
	got := ScreenToLocal(geom.Vec{X: 10 + 200*2, Y: 20 + 150*2}, geom.Vec{X: 10, Y: 20}, 2, tr)
	if !got.Near(geom.Vec{X: 50, Y: 50}, 1e-9) {
		t.Errorf("center mapped to %+v", got)
	}

	// A local point survives the round trip through the canvas.
	local := geom.Vec{X: 25, Y: 80}
	screen := LocalToCanvas(local, tr)
	if back := ScreenToLocal(screen, geom.Vec{}, 1, tr); !back.Near(local, 1e-9) {
		t.Errorf("round trip gave %+v", back)
	}
}

func TestScreenDeltaToLocal(t *testing.T) {
	tr := document.Transform{Width: 200, Height: 100}
	got := ScreenDeltaToLocal(geom.Vec{X: 20, Y: 10}, 2, tr)
	if math.Abs(got.X-5) > 1e-9 || math.Abs(got.Y-5) > 1e-9 {
		t.Errorf("got %+v", got)
	}
}
