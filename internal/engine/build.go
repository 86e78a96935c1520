package engine

import (
	"github.com/inamate/artboard/internal/document"
	"github.com/inamate/artboard/internal/geom"
	"github.com/inamate/artboard/internal/shape"
	"github.com/inamate/artboard/internal/transform"
)

// ArtboardID is the id of the root node, which paints the canvas background.
const ArtboardID = "artboard"

// BuildSceneGraph builds a render-ready scene graph from a project snapshot. Layers are
// children of the artboard in painter's order (lowest zIndex first). Hidden layers and
// layers of hidden groups are left out.
func BuildSceneGraph(p *document.Project) *SceneGraph {
	sg := NewSceneGraph()
	if p == nil {
		return sg
	}

	w, h := p.Canvas.Width, p.Canvas.Height
	root := &SceneNode{
		ID:      ArtboardID,
		Type:    "artboard",
		World:   geom.Identity(),
		Size:    geom.Vec{X: w, Y: h},
		Opacity: 1,
		Visible: true,
		Path:    shape.PrimitiveToDrawable(document.Shape{Primitive: document.PrimitiveRect}, w, h),
		Bounds:  geom.Rect{Width: w, Height: h},
	}
	if p.Canvas.Background != "" && p.Canvas.Background != "transparent" {
		root.Fill = p.Canvas.Background
	}
	sg.Root = root
	sg.NodesByID[root.ID] = root

	for _, l := range document.SortedByZ(p.Layers) {
		b := l.LayerBase()
		if !b.Visible {
			continue
		}
		groupLocked := false
		if g, ok := p.Group(b.GroupID); ok {
			if !g.Visible {
				continue
			}
			groupLocked = g.Locked
		}

		node := buildNode(l, p.Colors)
		node.Locked = b.Locked || groupLocked
		root.Children = append(root.Children, node)
		sg.NodesByID[node.ID] = node
	}
	return sg
}

// buildNode resolves one layer.
func buildNode(l document.Layer, palette document.Palette) *SceneNode {
	b := l.LayerBase()
	t := b.Transform
	box := shape.PrimitiveToDrawable(document.Shape{Primitive: document.PrimitiveRect}, t.Width, t.Height)

	node := &SceneNode{
		ID:      b.ID,
		World:   t.Matrix(),
		Size:    geom.Vec{X: t.Width, Y: t.Height},
		Opacity: t.Opacity,
		Visible: true,
	}

	switch v := l.(type) {
	case *document.ShapeLayer:
		node.Type = "shape"
		node.Path = shape.PrimitiveToDrawable(v.Shape, t.Width, t.Height)
		node.Fill = v.Shape.Fill.CSS(palette)
		if v.Shape.Stroke != nil && v.Shape.Stroke.Width > 0 {
			node.Stroke = v.Shape.Stroke.Color.CSS(palette)
			node.StrokeWidth = v.Shape.Stroke.Width
			node.Dash = v.Shape.Stroke.Dash
		}
		if fi := v.Shape.FillImage; fi != nil {
			node.ImageSrc = fi.Src
			node.ImageRect = imageRect(t, fi.OriginalWidth, fi.OriginalHeight, fi.Fit, fi.Scale, fi.Pan)
			node.ClipPaths = clips(node.Path, t, fi.Crop)
		}

	case *document.ImageLayer:
		node.Type = "image"
		node.Path = box
		node.ImageSrc = v.Src
		node.ImageRect = imageRect(t, v.OriginalWidth, v.OriginalHeight, v.Fit, 1, v.Pan)
		node.ClipPaths = clips(box, t, v.Crop)

	case *document.TextLayer:
		node.Type = "text"
		node.Path = box
		node.Text = &TextRun{
			Content: v.Content,
			Font:    v.Font,
			Color:   v.Color.CSS(palette),
			Padding: v.Padding,
		}
	}

	node.Bounds = node.World.TransformRect(geom.Rect{Width: t.Width, Height: t.Height})
	return node
}

// imageRect places an image inside a frame the way PanImage moves it: pan 0 aligns the
// leading edges, 100 the trailing ones. Without known dimensions the image fills the frame.
func imageRect(t document.Transform, iw, ih float64, fit document.FitMode, scale float64, pan document.Pan) geom.Rect {
	if iw <= 0 || ih <= 0 {
		return geom.Rect{Width: t.Width, Height: t.Height}
	}
	w, h := transform.ScaledImageSize(t.Width, t.Height, iw, ih, fit, scale)
	return geom.Rect{
		X:      (t.Width - w) * pan.X / 100,
		Y:      (t.Height - h) * pan.Y / 100,
		Width:  w,
		Height: h,
	}
}

// clips returns the outlines the content is clipped to: the layer outline, plus the
// crop window when a crop is set. Successive clips intersect.
func clips(outline shape.Drawable, t document.Transform, c document.Crop) []shape.Drawable {
	out := []shape.Drawable{outline}
	if c == (document.Crop{}) {
		return out
	}
	x := c.Left / 100 * t.Width
	y := c.Top / 100 * t.Height
	w := t.Width * (100 - c.Left - c.Right) / 100
	h := t.Height * (100 - c.Top - c.Bottom) / 100
	window := shape.PrimitiveToDrawable(document.Shape{Primitive: document.PrimitiveRect}, w, h)
	return append(out, window.Transform(geom.Translate(x, y)))
}
