package editor

import (
	"slices"

	"github.com/inamate/artboard/internal/document"
	"github.com/inamate/artboard/internal/geom"
	"github.com/inamate/artboard/internal/typeid"
)

// GuideSpacing is the gap between a new guide and the last one of the same orientation.
const GuideSpacing = 100.0

func canvasExtent(c document.Canvas, o document.Orientation) float64 {
	if o == document.Horizontal {
		return c.Height
	}
	return c.Width
}

func guideIndex(p *document.Project, id string) int {
	return slices.IndexFunc(p.Canvas.Guides.Items, func(g document.Guide) bool { return g.ID == id })
}

// AddGuide places a guide GuideSpacing past the last guide of the same orientation, or
// at GuideSpacing when there is none. It fails with ErrNoGuideSpace past the canvas edge.
func (e *Editor) AddGuide(o document.Orientation) (string, error) {
	id := typeid.NewGuideID()
	err := e.update(func(p *document.Project) error {
		last := 0.0
		for _, g := range p.Canvas.Guides.Items {
			if g.Orientation == o {
				last = max(last, g.Position)
			}
		}
		pos := last + GuideSpacing
		if pos > canvasExtent(p.Canvas, o) {
			return ErrNoGuideSpace
		}
		p.Canvas.Guides.Items = append(p.Canvas.Guides.Items, document.Guide{ID: id, Orientation: o, Position: pos})
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// GenerateGuides replaces the guides of one orientation with count evenly spaced ones.
// A count below one just removes them.
func (e *Editor) GenerateGuides(o document.Orientation, count int) error {
	return e.update(func(p *document.Project) error {
		items := slices.DeleteFunc(p.Canvas.Guides.Items, func(g document.Guide) bool {
			return g.Orientation == o
		})
		spacing := canvasExtent(p.Canvas, o) / float64(count+1)
		for i := 1; i <= count; i++ {
			items = append(items, document.Guide{
				ID:          typeid.NewGuideID(),
				Orientation: o,
				Position:    spacing * float64(i),
			})
		}
		p.Canvas.Guides.Items = items
		return nil
	})
}

// UpdateGuide moves a guide, keeping it on the canvas.
func (e *Editor) UpdateGuide(id string, position float64) error {
	return e.update(func(p *document.Project) error {
		i := guideIndex(p, id)
		if i < 0 {
			return ErrGuideNotFound
		}
		g := &p.Canvas.Guides.Items[i]
		g.Position = geom.Clamp(position, 0, canvasExtent(p.Canvas, g.Orientation))
		return nil
	})
}

func (e *Editor) RemoveGuide(id string) error {
	return e.update(func(p *document.Project) error {
		i := guideIndex(p, id)
		if i < 0 {
			return ErrGuideNotFound
		}
		p.Canvas.Guides.Items = slices.Delete(p.Canvas.Guides.Items, i, i+1)
		return nil
	})
}

func (e *Editor) ToggleSnapping() error {
	return e.update(func(p *document.Project) error {
		p.Canvas.Guides.Snap = !p.Canvas.Guides.Snap
		return nil
	})
}

// ToggleGuides shows or hides guides. Hidden guides do not snap.
func (e *Editor) ToggleGuides() error {
	return e.update(func(p *document.Project) error {
		p.Canvas.Guides.Enabled = !p.Canvas.Guides.Enabled
		return nil
	})
}
