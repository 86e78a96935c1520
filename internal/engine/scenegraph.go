package engine

import (
	"github.com/inamate/artboard/internal/document"
	"github.com/inamate/artboard/internal/geom"
	"github.com/inamate/artboard/internal/shape"
	"github.com/inamate/artboard/internal/transform"
)

// SceneGraph is the render-ready state of a project snapshot.
type SceneGraph struct {
	Root      *SceneNode
	NodesByID map[string]*SceneNode
}

// SceneNode is a resolved layer ready for rendering. Mapped colors are resolved and
// the world transform already carries position, size and rotation.
type SceneNode struct {
	ID   string
	Type string // "artboard", "shape", "text", "image"

	// World maps the local box (0..Size.X, 0..Size.Y) into canvas space.
	World geom.Matrix2D
	Size  geom.Vec

	Opacity float64
	Visible bool
	Locked  bool

	Children []*SceneNode

	// ClipPaths restrict drawing of this node, in the node's local space.
	ClipPaths []shape.Drawable

	Path        shape.Drawable
	Fill        string
	Stroke      string
	StrokeWidth float64
	Dash        string

	// Image content, drawn at ImageRect in local space.
	ImageSrc  string
	ImageRect geom.Rect

	Text *TextRun

	// Axis-aligned box in canvas space.
	Bounds geom.Rect
}

type TextRun struct {
	Content string        `json:"content"`
	Font    document.Font `json:"font"`
	Color   string        `json:"color"`
	Padding float64       `json:"padding,omitempty"`
}

func NewSceneGraph() *SceneGraph {
	return &SceneGraph{NodesByID: make(map[string]*SceneNode)}
}

// Contains reports whether a canvas point falls inside the node's rotated box.
func (n *SceneNode) Contains(p geom.Vec) bool {
	if n.World.Determinant() == 0 {
		return false
	}
	local := n.World.Invert().TransformPoint(p)
	return local.X >= 0 && local.X <= n.Size.X && local.Y >= 0 && local.Y <= n.Size.Y
}

// SelectionBounds returns the combined canvas box of the given layers. It reports false
// when none of them is in the scene.
func (sg *SceneGraph) SelectionBounds(ids []string) (geom.Rect, bool) {
	var (
		r     geom.Rect
		found bool
	)
	for _, id := range ids {
		n, ok := sg.NodesByID[id]
		if !ok {
			continue
		}
		if !found {
			r, found = n.Bounds, true
			continue
		}
		r = r.Union(n.Bounds)
	}
	return r, found
}

var _ transform.BoundsProvider = (*SceneGraph)(nil)
