package editor

import (
	"github.com/inamate/artboard/internal/document"
	"github.com/inamate/artboard/internal/geom"
	"github.com/inamate/artboard/internal/nodegraph"
	"github.com/inamate/artboard/internal/typeid"
)

// editPath runs fn on the points of a path layer and stores the result.
func (e *Editor) editPath(layerID string, fn func(sl *document.ShapeLayer) ([]document.PathPoint, error)) error {
	return e.update(func(p *document.Project) error {
		i, err := layerIndex(p, layerID)
		if err != nil {
			return err
		}
		sl, ok := p.Layers[i].(*document.ShapeLayer)
		if !ok || sl.Shape.Points == nil {
			return ErrNotPath
		}
		points, err := fn(sl)
		if err != nil {
			return err
		}
		sl.Shape.Points = points
		return nil
	})
}

// ToggleNode flips a path node between corner and curve.
func (e *Editor) ToggleNode(layerID, pointID string) error {
	return e.editPath(layerID, func(sl *document.ShapeLayer) ([]document.PathPoint, error) {
		return nodegraph.ToggleNodeType(sl.Shape.Points, pointID), nil
	})
}

// DeleteNode removes a path node. Paths keep at least nodegraph.MinPoints nodes.
func (e *Editor) DeleteNode(layerID, pointID string) error {
	return e.editPath(layerID, func(sl *document.ShapeLayer) ([]document.PathPoint, error) {
		if len(sl.Shape.Points) <= nodegraph.MinPoints {
			return nil, ErrTooFewPoints
		}
		return nodegraph.DeleteNode(sl.Shape.Points, pointID), nil
	})
}

// InsertNode adds a curve node on the segment nearest to click, given in the layer's
// percentage space. It returns the new point id.
func (e *Editor) InsertNode(layerID string, click geom.Vec) (string, error) {
	id := typeid.NewPointID()
	err := e.editPath(layerID, func(sl *document.ShapeLayer) ([]document.PathPoint, error) {
		t := sl.Transform
		points, at := nodegraph.InsertNodeOnSegment(sl.Shape.Points, sl.Shape.IsClosed, click, t.Width, t.Height, id)
		if at < 0 {
			return nil, ErrNoSegment
		}
		return points, nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}
