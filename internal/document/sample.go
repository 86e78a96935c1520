package document

import (
	"time"

	"github.com/inamate/artboard/internal/typeid"
)

// NewSampleProject returns a small poster used by the playground and in tests.
func NewSampleProject(projectID string) *Project {
	now := time.Now().UTC().Format(time.RFC3339)

	p := NewEmptyProject(projectID, "Sample Poster")
	p.Meta.CreatedAt = now
	p.Meta.UpdatedAt = now
	p.Canvas.Background = "#1a1a2e"

	titleID := typeid.NewLayerID()
	cardID := typeid.NewLayerID()
	badgeID := typeid.NewLayerID()
	starID := typeid.NewLayerID()

	p.Layers = []Layer{
		&ShapeLayer{
			Base: Base{
				ID: cardID, Name: "Card", Type: LayerShape, GroupID: EditableGroupID,
				Visible: true, ZIndex: 0,
				Transform: Transform{X: 140, Y: 200, Width: 800, Height: 900, Opacity: 1},
			},
			Shape: Shape{
				Primitive:    PrimitiveRect,
				Fill:         SolidColor("#e94560"),
				BorderRadius: &BorderRadius{Uniform: 24},
			},
		},
		&ShapeLayer{
			Base: Base{
				ID: badgeID, Name: "Badge", Type: LayerShape, GroupID: EditableGroupID,
				Visible: true, ZIndex: 1,
				Transform: Transform{X: 760, Y: 140, Width: 200, Height: 200, Opacity: 1},
			},
			Shape: Shape{
				Primitive: PrimitiveCircle,
				Fill:      Color{Type: ColorSolid, Mode: "mapped", Value: "accent"},
				Stroke:    &Stroke{Color: SolidColor("#ffffff"), Width: 4},
			},
		},
		&ShapeLayer{
			Base: Base{
				ID: starID, Name: "Star", Type: LayerShape, GroupID: EditableGroupID,
				Visible: true, ZIndex: 2,
				Transform: Transform{X: 200, Y: 960, Width: 120, Height: 120, Rotation: 12, Opacity: 1},
			},
			Shape: Shape{
				Primitive: PrimitiveStar,
				Fill:      SolidColor("#f5c518"),
			},
		},
		&TextLayer{
			Base: Base{
				ID: titleID, Name: "Title", Type: LayerText, GroupID: EditableGroupID,
				Visible: true, ZIndex: 3,
				Transform: Transform{X: 190, Y: 420, Width: 700, Height: 160, Opacity: 1},
			},
			Content: "Summer Sale",
			Font: Font{
				Family:     "Inter",
				Size:       96,
				Weight:     800,
				LineHeight: 1.1,
				Align:      "center",
			},
			Color: Color{Type: ColorSolid, Mode: "mapped", Value: "secondary"},
		},
	}
	p.Groups[0].LayerIDs = []string{cardID, badgeID, starID, titleID}
	return p
}
