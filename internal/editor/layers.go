package editor

import (
	"fmt"
	"slices"
	"strings"

	"github.com/inamate/artboard/internal/document"
	"github.com/inamate/artboard/internal/geom"
	"github.com/inamate/artboard/internal/transform"
	"github.com/inamate/artboard/internal/typeid"
)

const (
	// DuplicateOffset shifts copies so they do not sit exactly on the original.
	DuplicateOffset = 20.0
	// ImageWidth is the width of a freshly placed image; height follows its aspect.
	ImageWidth = 300.0

	textWidth, textHeight = 400.0, 60.0
	shapeSize             = 500.0
	lineThickness         = 10.0
)

// insertLayer places l on top of the stack, selects it and registers it with its group.
func insertLayer(p *document.Project, l document.Layer) (string, error) {
	b := l.LayerBase()
	if b.ID == "" {
		b.ID = typeid.NewLayerID()
	}
	if _, ok := p.Layer(b.ID); ok {
		return "", fmt.Errorf("add layer %s: %w", b.ID, ErrDuplicateLayer)
	}
	b.ZIndex = document.MaxZIndex(p.Layers) + 1
	if b.GroupID != "" {
		if i := groupIndex(p, b.GroupID); i >= 0 {
			p.Groups[i].LayerIDs = append(p.Groups[i].LayerIDs, b.ID)
		} else {
			b.GroupID = ""
		}
	}

	p.Layers = append(p.Layers, document.WithBase(l, b))
	p.SelectedLayers = []string{b.ID}
	p.ActiveTool = document.ToolSelect
	return b.ID, nil
}

// AddLayer adds a fully built layer on top. An empty id is generated.
func (e *Editor) AddLayer(l document.Layer) (string, error) {
	var id string
	err := e.update(func(p *document.Project) (err error) {
		id, err = insertLayer(p, l)
		return err
	})
	return id, err
}

// AddImageLayer places an uploaded image centered on the canvas, ImageWidth wide.
func (e *Editor) AddImageLayer(src string, width, height float64) (string, error) {
	if width <= 0 || height <= 0 {
		return "", ErrInvalidImage
	}
	var id string
	err := e.update(func(p *document.Project) (err error) {
		h := max(ImageWidth*height/width, document.MinSize)
		id, err = insertLayer(p, &document.ImageLayer{
			Base: document.Base{
				Name:    "Image Layer",
				Type:    document.LayerImage,
				Visible: true,
				Transform: document.Transform{
					X:       (p.Canvas.Width - ImageWidth) / 2,
					Y:       (p.Canvas.Height - h) / 2,
					Width:   ImageWidth,
					Height:  h,
					Opacity: 1,
				},
			},
			Src:            src,
			OriginalWidth:  width,
			OriginalHeight: height,
			Fit:            document.FitCover,
			Pan:            document.Pan{X: 50, Y: 50},
			Filters:        document.DefaultFilters(),
		})
		return err
	})
	return id, err
}

// AddText creates a text box centered on a canvas point, snapped to nearby guides.
func (e *Editor) AddText(at geom.Vec) (string, error) {
	var id string
	err := e.update(func(p *document.Project) (err error) {
		c := transform.SnapToGuides(p, at)
		id, err = insertLayer(p, &document.TextLayer{
			Base: document.Base{
				Name:    "New Text",
				Type:    document.LayerText,
				Visible: true,
				Transform: document.Transform{
					X:       c.X - textWidth/2,
					Y:       c.Y - textHeight/2,
					Width:   textWidth,
					Height:  textHeight,
					Opacity: 1,
				},
			},
			Content: "New Text",
			Font: document.Font{
				Family:     "Inter",
				Size:       48,
				Weight:     400,
				LineHeight: 1.2,
				Align:      "center",
				Style:      "normal",
				Decoration: "none",
			},
			Color: document.Color{Type: document.ColorSolid, Mode: "mapped", Value: "primary"},
		})
		return err
	})
	return id, err
}

// AddShape creates a primitive centered on a canvas point, snapped to nearby guides.
// Lines are thin strokes, every other primitive is a filled square.
func (e *Editor) AddShape(primitive document.Primitive, at geom.Vec) (string, error) {
	if !slices.Contains(document.Primitives, primitive) {
		return "", ErrInvalidShape
	}
	isLine := primitive == document.PrimitiveLine || primitive == document.PrimitiveDashedLine

	s := document.Shape{
		Primitive: primitive,
		IsClosed:  !isLine,
		Fill:      document.Color{Type: document.ColorSolid, Mode: "mapped", Value: "primary"},
	}
	height := shapeSize
	if isLine {
		height = lineThickness
		s.Fill = document.SolidColor("transparent")
		s.Stroke = &document.Stroke{
			Color: document.Color{Type: document.ColorSolid, Mode: "mapped", Value: "primary"},
			Width: 4,
		}
		if primitive == document.PrimitiveDashedLine {
			s.Stroke.Dash = "8 8"
		}
	}
	name := string(primitive)
	name = strings.ToUpper(name[:1]) + name[1:] + " Layer"

	var id string
	err := e.update(func(p *document.Project) (err error) {
		c := transform.SnapToGuides(p, at)
		id, err = insertLayer(p, &document.ShapeLayer{
			Base: document.Base{
				Name:    name,
				Type:    document.LayerShape,
				Visible: true,
				Transform: document.Transform{
					X:       c.X - shapeSize/2,
					Y:       c.Y - height/2,
					Width:   shapeSize,
					Height:  height,
					Opacity: 1,
				},
			},
			Shape: s,
		})
		return err
	})
	return id, err
}

// UpdateLayer edits a copy of a layer in place. The id, type and stacking position of
// the layer cannot be changed this way; a changed group id moves the layer between groups.
func (e *Editor) UpdateLayer(layerID string, fn func(l document.Layer)) error {
	return e.update(func(p *document.Project) error {
		i, err := layerIndex(p, layerID)
		if err != nil {
			return err
		}
		before := p.Layers[i].LayerBase()
		c := p.Layers[i].Clone()
		fn(c)

		b := c.LayerBase()
		b.ID = before.ID
		b.ZIndex = before.ZIndex
		if b.GroupID != before.GroupID && b.GroupID != "" && groupIndex(p, b.GroupID) < 0 {
			return ErrGroupNotFound
		}
		p.Layers[i] = document.WithBase(c, b)
		if b.GroupID != before.GroupID {
			removeFromGroups(p, []string{layerID}, false)
			if g := groupIndex(p, b.GroupID); g >= 0 {
				p.Groups[g].LayerIDs = append(p.Groups[g].LayerIDs, layerID)
			}
		}
		return nil
	})
}

// SetTransform replaces the transform of a layer, for numeric entry in a properties panel.
func (e *Editor) SetTransform(layerID string, t document.Transform) error {
	t.Width = max(t.Width, document.MinSize)
	t.Height = max(t.Height, document.MinSize)
	return e.update(func(p *document.Project) error {
		i, err := layerIndex(p, layerID)
		if err != nil {
			return err
		}
		p.Layers[i] = document.WithTransform(p.Layers[i], t)
		return nil
	})
}

// DeleteLayers removes layers, compacts the stack to 0..N-1 and drops groups that this
// left empty. The Editable group always stays.
func (e *Editor) DeleteLayers(ids []string) error {
	return e.update(func(p *document.Project) error {
		deleteLayers(p, ids)
		return nil
	})
}

func deleteLayers(p *document.Project, ids []string) {
	remaining := slices.DeleteFunc(slices.Clone(p.Layers), func(l document.Layer) bool {
		return slices.Contains(ids, l.LayerBase().ID)
	})
	if len(remaining) == len(p.Layers) {
		return
	}
	p.Layers = document.Reindex(remaining)
	removeFromGroups(p, ids, true)
	p.SelectedLayers = slices.DeleteFunc(p.SelectedLayers, func(id string) bool {
		return slices.Contains(ids, id)
	})
	if slices.Contains(ids, p.CroppingLayerID) {
		p.CroppingLayerID = ""
	}
}

// DuplicateLayers copies layers, offset by DuplicateOffset, and stacks the copies right
// above the top-most original. The copies become the selection.
func (e *Editor) DuplicateLayers(ids []string) ([]string, error) {
	var created []string
	err := e.update(func(p *document.Project) error {
		var sources []document.Layer
		for _, l := range p.Layers {
			if slices.Contains(ids, l.LayerBase().ID) {
				sources = append(sources, l)
			}
		}
		if len(sources) == 0 {
			return ErrLayerNotFound
		}

		top := sources[0]
		copies := make([]document.Layer, len(sources))
		created = make([]string, len(sources))
		for i, src := range sources {
			if src.LayerBase().ZIndex > top.LayerBase().ZIndex {
				top = src
			}
			b := src.LayerBase()
			b.ID = typeid.NewLayerID()
			b.Name += " copy"
			b.Transform.X += DuplicateOffset
			b.Transform.Y += DuplicateOffset
			copies[i] = document.WithBase(src, b)
			created[i] = b.ID

			if g := groupIndex(p, b.GroupID); g >= 0 {
				p.Groups[g].LayerIDs = append(p.Groups[g].LayerIDs, b.ID)
			}
		}

		sorted := document.SortedByZ(p.Layers)
		at := slices.IndexFunc(sorted, func(l document.Layer) bool {
			return l.LayerBase().ID == top.LayerBase().ID
		}) + 1
		p.Layers = document.Restack(slices.Insert(sorted, at, copies...))
		p.SelectedLayers = slices.Clone(created)
		return nil
	})
	return created, err
}

type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// MoveLayer swaps a layer with its neighbour among the layers of the same group.
// Moving past either end is a no-op.
func (e *Editor) MoveLayer(layerID string, dir Direction) error {
	return e.update(func(p *document.Project) error {
		i, err := layerIndex(p, layerID)
		if err != nil {
			return err
		}
		group := p.Layers[i].LayerBase().GroupID

		// Top-most first.
		siblings := document.SortedByZ(p.Layers)
		slices.Reverse(siblings)
		siblings = slices.DeleteFunc(siblings, func(l document.Layer) bool {
			return l.LayerBase().GroupID != group
		})
		pos := slices.IndexFunc(siblings, func(l document.Layer) bool { return l.LayerBase().ID == layerID })

		target := pos + 1
		if dir == Up {
			target = pos - 1
		}
		if target < 0 || target >= len(siblings) {
			return nil
		}

		other := siblings[target].LayerBase()
		j := p.LayerIndex(other.ID)
		mine := p.Layers[i].LayerBase()
		p.Layers[i] = withZ(p.Layers[i], other.ZIndex)
		p.Layers[j] = withZ(p.Layers[j], mine.ZIndex)
		return nil
	})
}

func withZ(l document.Layer, z int) document.Layer {
	b := l.LayerBase()
	b.ZIndex = z
	return document.WithBase(l, b)
}

// BringToFront stacks the selection above every other layer, keeping relative order.
func (e *Editor) BringToFront() error {
	return e.restackSelection(true)
}

// SendToBack stacks the selection below every other layer, keeping relative order.
func (e *Editor) SendToBack() error {
	return e.restackSelection(false)
}

func (e *Editor) restackSelection(front bool) error {
	return e.update(func(p *document.Project) error {
		if len(p.SelectedLayers) == 0 {
			return nil
		}
		var selected, others []document.Layer
		for _, l := range document.SortedByZ(p.Layers) {
			if p.IsSelected(l.LayerBase().ID) {
				selected = append(selected, l)
			} else {
				others = append(others, l)
			}
		}
		if front {
			p.Layers = document.Restack(append(others, selected...))
		} else {
			p.Layers = document.Restack(append(selected, others...))
		}
		return nil
	})
}

type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
	AlignTop    Alignment = "top"
	AlignMiddle Alignment = "middle"
	AlignBottom Alignment = "bottom"
)

// AlignLayers aligns the selection. A single layer is aligned to the canvas, several
// layers to the box around them. Boxes are unrotated.
func (e *Editor) AlignLayers(a Alignment) error {
	return e.update(func(p *document.Project) error {
		var idx []int
		for i, l := range p.Layers {
			if p.IsSelected(l.LayerBase().ID) {
				idx = append(idx, i)
			}
		}
		if len(idx) == 0 {
			return nil
		}

		ref := geom.Rect{Width: p.Canvas.Width, Height: p.Canvas.Height}
		if len(idx) > 1 {
			ref = p.Layers[idx[0]].LayerBase().Transform.Box()
			for _, i := range idx[1:] {
				ref = ref.Union(p.Layers[i].LayerBase().Transform.Box())
			}
		}

		for _, i := range idx {
			t := p.Layers[i].LayerBase().Transform
			switch a {
			case AlignLeft:
				t.X = ref.X
			case AlignCenter:
				t.X = ref.X + (ref.Width-t.Width)/2
			case AlignRight:
				t.X = ref.X + ref.Width - t.Width
			case AlignTop:
				t.Y = ref.Y
			case AlignMiddle:
				t.Y = ref.Y + (ref.Height-t.Height)/2
			case AlignBottom:
				t.Y = ref.Y + ref.Height - t.Height
			}
			p.Layers[i] = document.WithTransform(p.Layers[i], t)
		}
		return nil
	})
}
