// Package editor implements the structural edits of a project: adding, removing and
// restacking layers, groups, guides, crop mode and path nodes. Every edit is recorded
// as one history step; pointer drags go through the gesture package instead.
package editor

import (
	"errors"
	"slices"

	"github.com/inamate/artboard/internal/document"
	"github.com/inamate/artboard/internal/history"
	"github.com/inamate/artboard/internal/shape"
)

var (
	ErrLayerNotFound  = errors.New("layer not found")
	ErrGroupNotFound  = errors.New("group not found")
	ErrGuideNotFound  = errors.New("guide not found")
	ErrDuplicateLayer = errors.New("layer id already exists")
	ErrEmptySelection = errors.New("no layers given")
	ErrProtectedGroup = errors.New("group cannot be removed")
	ErrNoGuideSpace   = errors.New("not enough space on the canvas to add a guide")
	ErrNotCroppable   = errors.New("layer has no image to crop")
	ErrNotShape       = errors.New("layer is not a shape")
	ErrNotPath        = errors.New("layer is not an editable path")
	ErrTooFewPoints   = errors.New("path needs at least three points")
	ErrNoSegment      = errors.New("no segment to insert on")
	ErrInvalidImage   = errors.New("image dimensions must be positive")
	ErrInvalidShape   = errors.New("unknown shape primitive")
)

type Editor struct {
	history *history.History
}

func New(h *history.History) *Editor {
	return &Editor{history: h}
}

// Project returns the current state.
func (e *Editor) Project() *document.Project {
	return e.history.Present()
}

// update runs fn on a deep copy of the present state and records the result. Nothing
// is recorded when fn fails or leaves the state unchanged.
func (e *Editor) update(fn func(p *document.Project) error) error {
	next := e.history.Present().Clone()
	if err := fn(next); err != nil {
		return err
	}
	e.history.Set(next)
	return nil
}

func layerIndex(p *document.Project, id string) (int, error) {
	i := p.LayerIndex(id)
	if i < 0 {
		return -1, ErrLayerNotFound
	}
	return i, nil
}

// SetSelection replaces the selection. Unknown ids are dropped.
func (e *Editor) SetSelection(ids []string) error {
	return e.update(func(p *document.Project) error {
		selection := make([]string, 0, len(ids))
		for _, id := range ids {
			if _, ok := p.Layer(id); ok && !slices.Contains(selection, id) {
				selection = append(selection, id)
			}
		}
		p.SelectedLayers = selection
		return nil
	})
}

// SetTool switches the active tool. Entering the node tool with a single parametric
// shape selected converts that shape to an editable path.
func (e *Editor) SetTool(tool document.Tool) error {
	return e.update(func(p *document.Project) error {
		p.ActiveTool = tool
		if tool != document.ToolNode || len(p.SelectedLayers) != 1 {
			return nil
		}
		i := p.LayerIndex(p.SelectedLayers[0])
		if i < 0 {
			return nil
		}
		if sl, ok := p.Layers[i].(*document.ShapeLayer); ok {
			p.Layers[i] = shape.ToPath(sl, nil)
		}
		return nil
	})
}

// SelectShape arms the shape tool with a primitive and clears the selection.
func (e *Editor) SelectShape(primitive document.Primitive) error {
	if !slices.Contains(document.Primitives, primitive) {
		return ErrInvalidShape
	}
	return e.update(func(p *document.Project) error {
		p.ActiveTool = document.ToolShape
		p.ActiveShapeType = primitive
		p.SelectedLayers = []string{}
		return nil
	})
}

// SetZoom changes the view scale. Zoom is view state and is not recorded as a step.
func (e *Editor) SetZoom(zoom float64) {
	if zoom <= 0 {
		return
	}
	p := *e.history.Present()
	p.Zoom = zoom
	e.history.SetLive(&p)
}

// ToggleCropMode enters or leaves crop mode for a layer showing an image. Entering
// selects the layer.
func (e *Editor) ToggleCropMode(layerID string) error {
	return e.update(func(p *document.Project) error {
		l, ok := p.Layer(layerID)
		if !ok {
			return ErrLayerNotFound
		}
		if !document.HasImageFill(l) {
			return ErrNotCroppable
		}
		p.ActiveTool = document.ToolSelect
		if p.CroppingLayerID == layerID {
			p.CroppingLayerID = ""
			return nil
		}
		p.CroppingLayerID = layerID
		p.SelectedLayers = []string{layerID}
		return nil
	})
}

// ConvertToPath replaces a parametric shape with an equivalent editable path.
func (e *Editor) ConvertToPath(layerID string) error {
	return e.update(func(p *document.Project) error {
		i, err := layerIndex(p, layerID)
		if err != nil {
			return err
		}
		sl, ok := p.Layers[i].(*document.ShapeLayer)
		if !ok {
			return ErrNotShape
		}
		p.Layers[i] = shape.ToPath(sl, nil)
		return nil
	})
}
