package transform

import (
	"math"

	"github.com/inamate/artboard/internal/document"
	"github.com/inamate/artboard/internal/geom"
)

// ScaledImageSize returns the size of an iw by ih image pre-scaled to fill (cover) or fit
// (contain) an fw by fh frame, then multiplied by scale.
func ScaledImageSize(fw, fh, iw, ih float64, fit document.FitMode, scale float64) (w, h float64) {
	if scale <= 0 {
		scale = 1
	}
	imageAspect := iw / ih
	frameAspect := fw / fh

	fillWidth := frameAspect > imageAspect
	if fit == document.FitContain {
		fillWidth = !fillWidth
	}
	if fillWidth {
		return fw * scale, fw / imageAspect * scale
	}
	return fh * imageAspect * scale, fh * scale
}

// panAxis moves a pan percentage along one axis. The image slides opposite to the drag.
// A zero range pins the pan at 50%.
func panAxis(initialPercent, drag, rng float64) float64 {
	if rng <= 0 {
		return 50
	}
	pos := geom.Clamp(initialPercent/100*rng-drag, 0, rng)
	return pos / rng * 100
}

// PanImage slides the image inside its frame by a screen-space drag. initial is the pan
// captured when the drag started. Layers without image dimensions are returned unchanged.
func PanImage(l document.Layer, initial document.Pan, delta geom.Vec, zoom float64) document.Layer {
	if zoom <= 0 {
		zoom = 1
	}

	var (
		iw, ih float64
		fit    document.FitMode
		scale  = 1.0
	)
	switch v := l.(type) {
	case *document.ImageLayer:
		iw, ih, fit = v.OriginalWidth, v.OriginalHeight, v.Fit
	case *document.ShapeLayer:
		if v.Shape.FillImage == nil {
			return l
		}
		fi := v.Shape.FillImage
		iw, ih, fit = fi.OriginalWidth, fi.OriginalHeight, fi.Fit
		if fi.Scale > 0 {
			scale = fi.Scale
		}
	default:
		return l
	}
	if iw <= 0 || ih <= 0 {
		return l
	}

	t := l.LayerBase().Transform
	sw, sh := ScaledImageSize(t.Width, t.Height, iw, ih, fit, scale)
	d := delta.Scale(1 / zoom)
	pan := document.Pan{
		X: panAxis(initial.X, d.X, math.Max(0, sw-t.Width)),
		Y: panAxis(initial.Y, d.Y, math.Max(0, sh-t.Height)),
	}

	switch v := l.Clone().(type) {
	case *document.ImageLayer:
		v.Pan = pan
		return v
	case *document.ShapeLayer:
		v.Shape.FillImage.Pan = pan
		return v
	}
	return l
}

// MoveGuide drags a guide along its own axis from initial by delta screen pixels,
// clamped to the canvas. The returned project shares everything but the guide list.
func MoveGuide(p *document.Project, guideID string, initial float64, delta geom.Vec) *document.Project {
	i := -1
	for k, g := range p.Canvas.Guides.Items {
		if g.ID == guideID {
			i = k
			break
		}
	}
	if i < 0 {
		return p
	}

	zoom := p.ZoomOrOne()
	items := make([]document.Guide, len(p.Canvas.Guides.Items))
	copy(items, p.Canvas.Guides.Items)

	g := items[i]
	if g.Orientation == document.Horizontal {
		g.Position = geom.Clamp(initial+delta.Y/zoom, 0, p.Canvas.Height)
	} else {
		g.Position = geom.Clamp(initial+delta.X/zoom, 0, p.Canvas.Width)
	}
	items[i] = g

	c := *p
	c.Canvas.Guides.Items = items
	return &c
}
