package document

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestProjectJSONRoundTripKeepsLayerTypes(t *testing.T) {
	p := NewSampleProject("proj_sample")

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got Project
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if diff := cmp.Diff(p, &got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	if _, ok := got.Layers[3].(*TextLayer); !ok {
		t.Errorf("expected text layer, got %T", got.Layers[3])
	}
}

func TestUnmarshalLayerRejectsUnknownType(t *testing.T) {
	_, err := UnmarshalLayer([]byte(`{"id":"x","type":"video"}`))
	if !errors.Is(err, ErrInvalidProject) {
		t.Fatalf("expected ErrInvalidProject, got %v", err)
	}
}

func TestBorderRadiusAcceptsNumberOrCorners(t *testing.T) {
	var s Shape
	if err := json.Unmarshal([]byte(`{"primitive":"rect","borderRadius":12}`), &s); err != nil {
		t.Fatal(err)
	}
	if r := s.BorderRadius.Radii(); r.TL != 12 || r.BR != 12 {
		t.Errorf("uniform radius not applied: %+v", r)
	}

	if err := json.Unmarshal([]byte(`{"primitive":"rect","borderRadius":{"tl":1,"tr":2,"br":3,"bl":4}}`), &s); err != nil {
		t.Fatal(err)
	}
	if r := s.BorderRadius.Radii(); r != (CornerRadii{1, 2, 3, 4}) {
		t.Errorf("unexpected corner radii %+v", r)
	}
}

func TestCloneDoesNotAlias(t *testing.T) {
	p := NewSampleProject("proj_sample")
	sl := p.Layers[0].(*ShapeLayer)
	sl.Shape.Points = []PathPoint{CornerPoint("a", 0, 0), CornerPoint("b", 100, 0), CornerPoint("c", 0, 100)}

	c := p.Clone()
	c.Layers[0].(*ShapeLayer).Shape.Points[0].X = 50
	c.Groups[0].LayerIDs[0] = "changed"
	c.Layers[1] = WithTransform(c.Layers[1], Transform{Width: 1})

	if sl.Shape.Points[0].X != 0 {
		t.Error("clone shares point storage")
	}
	if p.Groups[0].LayerIDs[0] == "changed" {
		t.Error("clone shares group membership")
	}
	if p.Layers[1].LayerBase().Transform.Width != 200 {
		t.Error("WithTransform mutated the original layer")
	}
}

func TestReindexIsDense(t *testing.T) {
	layers := []Layer{
		&TextLayer{Base: Base{ID: "a", Type: LayerText, ZIndex: 7}},
		&TextLayer{Base: Base{ID: "b", Type: LayerText, ZIndex: 2}},
		&TextLayer{Base: Base{ID: "c", Type: LayerText, ZIndex: 4}},
	}
	out := Reindex(layers)

	want := []string{"b", "c", "a"}
	for i, l := range out {
		if l.LayerBase().ID != want[i] || l.LayerBase().ZIndex != i {
			t.Errorf("position %d: got %s z=%d", i, l.LayerBase().ID, l.LayerBase().ZIndex)
		}
	}
	if layers[0].LayerBase().ZIndex != 7 {
		t.Error("Reindex mutated its input")
	}
}

func TestValidate(t *testing.T) {
	p := NewSampleProject("proj_sample")
	if err := p.Validate(); err != nil {
		t.Fatalf("sample should validate: %v", err)
	}

	p.Layers = append(p.Layers, p.Layers[0].Clone())
	if err := p.Validate(); !errors.Is(err, ErrInvalidProject) {
		t.Errorf("duplicate id should fail, got %v", err)
	}
}

func TestColorCSS(t *testing.T) {
	palette := Palette{Primary: "#111111", Secondary: "#ffffff", Accent: "#f43f5e"}
	tests := []struct {
		name  string
		color Color
		want  string
	}{
		{"custom", SolidColor("#abcdef"), "#abcdef"},
		{"mapped", Color{Type: ColorSolid, Mode: "mapped", Value: "accent"}, "#f43f5e"},
		{"unknown mapping", Color{Type: ColorSolid, Mode: "mapped", Value: "tertiary"}, "tertiary"},
		{"empty", Color{Type: ColorSolid}, "transparent"},
		{
			"linear",
			Color{Type: ColorLinear, Angle: 90, Stops: []ColorStop{{Color: "#000", Position: 0}, {Color: "#fff", Position: 100}}},
			"linear-gradient(90deg, #000 0%, #fff 100%)",
		},
		{
			"radial",
			Color{Type: ColorRadial, Stops: []ColorStop{{Color: "red", Position: 25.5}}},
			"radial-gradient(circle, red 25.5%)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.color.CSS(palette); got != tt.want {
				t.Errorf("CSS() = %q, want %q", got, tt.want)
			}
		})
	}
}
