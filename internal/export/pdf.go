package export

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/inamate/artboard/internal/document"
	"github.com/inamate/artboard/internal/engine"
	"github.com/inamate/artboard/internal/shape"
)

// flattenSteps is the number of polygon edges per curve used for clip outlines.
const flattenSteps = 12

// ImageOpener resolves an image src to PNG, JPEG or GIF data.
type ImageOpener func(src string) (io.ReadCloser, string, error)

// PDF renders p as a single-page vector PDF sized to the canvas, one point per canvas
// pixel. Images that open fails to resolve are left out.
func PDF(w io.Writer, p *document.Project, open ImageOpener) error {
	sg := engine.BuildSceneGraph(p)

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: p.Canvas.Width, Ht: p.Canvas.Height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCellMargin(0)
	pdf.SetTitle(p.Meta.Name, true)
	pdf.AddPage()

	if c, ok := parseColor(sg.Root.Fill); ok {
		pdf.SetFillColor(c.r, c.g, c.b)
		pdf.Rect(0, 0, p.Canvas.Width, p.Canvas.Height, "F")
	}

	r := &pdfRenderer{pdf: pdf, open: open, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	for _, node := range sg.Root.Children {
		l, ok := p.Layer(node.ID)
		if !ok {
			continue
		}
		r.node(node, l.LayerBase().Transform)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

type pdfRenderer struct {
	pdf    *gofpdf.Fpdf
	open   ImageOpener
	tr     func(string) string
	images int
}

func (r *pdfRenderer) node(node *engine.SceneNode, t document.Transform) {
	pdf := r.pdf
	pdf.SetAlpha(node.Opacity, "Normal")
	defer pdf.SetAlpha(1, "Normal")

	if node.ImageSrc != "" {
		r.image(node, t)
	}

	switch {
	case node.Text != nil:
		r.text(node.Text, t)
	case node.Fill != "" || node.Stroke != "":
		r.path(node)
	}
}

func (r *pdfRenderer) path(node *engine.SceneNode) {
	pdf := r.pdf
	style := ""
	if c, ok := parseColor(node.Fill); ok && node.ImageSrc == "" {
		pdf.SetFillColor(c.r, c.g, c.b)
		style += "F"
	}
	if c, ok := parseColor(node.Stroke); ok && node.StrokeWidth > 0 {
		pdf.SetDrawColor(c.r, c.g, c.b)
		pdf.SetLineWidth(node.StrokeWidth)
		pdf.SetDashPattern(parseDash(node.Dash), 0)
		style += "D"
	}
	if style == "" {
		return
	}

	for _, s := range node.Path.Transform(node.World) {
		switch s.Op {
		case shape.MoveTo:
			pdf.MoveTo(s.To.X, s.To.Y)
		case shape.LineTo:
			pdf.LineTo(s.To.X, s.To.Y)
		case shape.CubicTo:
			pdf.CurveBezierCubicTo(s.C1.X, s.C1.Y, s.C2.X, s.C2.Y, s.To.X, s.To.Y)
		case shape.Close:
			pdf.ClosePath()
		}
	}
	pdf.DrawPath(style)
	pdf.SetDashPattern([]float64{}, 0)
}

func (r *pdfRenderer) image(node *engine.SceneNode, t document.Transform) {
	if r.open == nil {
		return
	}
	rc, imageType, err := r.open(node.ImageSrc)
	if err != nil {
		slog.Warn("skip image in pdf export", "src", node.ImageSrc, "error", err)
		return
	}
	defer rc.Close()

	pdf := r.pdf
	r.images++
	name := "img" + strconv.Itoa(r.images)
	opts := gofpdf.ImageOptions{ImageType: imageType}
	pdf.RegisterImageOptionsReader(name, opts, rc)
	if !pdf.Ok() {
		slog.Warn("skip image in pdf export", "src", node.ImageSrc, "error", pdf.Error())
		pdf.ClearError()
		return
	}

	for _, c := range node.ClipPaths {
		pdf.ClipPolygon(polygon(c.Transform(node.World)), false)
	}
	pdf.TransformBegin()
	if t.Rotation != 0 {
		center := t.Center()
		pdf.TransformRotate(-t.Rotation, center.X, center.Y)
	}
	ir := node.ImageRect
	pdf.ImageOptions(name, t.X+ir.X, t.Y+ir.Y, ir.Width, ir.Height, false, opts, 0, "")
	pdf.TransformEnd()
	for range node.ClipPaths {
		pdf.ClipEnd()
	}
}

func (r *pdfRenderer) text(run *engine.TextRun, t document.Transform) {
	pdf := r.pdf
	f := run.Font

	style := ""
	if f.Weight >= 600 {
		style += "B"
	}
	if f.Style == "italic" {
		style += "I"
	}
	size := f.Size
	if size <= 0 {
		size = 16
	}
	pdf.SetFont(coreFont(f.Family), style, size)

	c, _ := parseColor(run.Color)
	pdf.SetTextColor(c.r, c.g, c.b)

	lineHeight := f.LineHeight
	if lineHeight <= 0 {
		lineHeight = 1.2
	}

	pdf.TransformBegin()
	if t.Rotation != 0 {
		center := t.Center()
		pdf.TransformRotate(-t.Rotation, center.X, center.Y)
	}
	pad := run.Padding
	pdf.SetXY(t.X+pad, t.Y+pad)
	pdf.MultiCell(max(t.Width-2*pad, 1), size*lineHeight, r.tr(applyTextTransform(run.Content, f.Transform)), "", alignment(f.Align), false)
	pdf.TransformEnd()
}

func polygon(d shape.Drawable) []gofpdf.PointType {
	var pts []gofpdf.PointType
	for _, sub := range d.Flatten(flattenSteps) {
		for _, p := range sub {
			pts = append(pts, gofpdf.PointType{X: p.X, Y: p.Y})
		}
	}
	return pts
}

// coreFont maps a family onto the PDF base fonts.
func coreFont(family string) string {
	f := strings.ToLower(family)
	switch {
	case strings.Contains(f, "mono"), strings.Contains(f, "courier"):
		return "Courier"
	case strings.Contains(f, "serif") && !strings.Contains(f, "sans"),
		strings.Contains(f, "times"), strings.Contains(f, "georgia"), strings.Contains(f, "playfair"):
		return "Times"
	}
	return "Helvetica"
}

func alignment(align string) string {
	switch align {
	case "center":
		return "C"
	case "right":
		return "R"
	case "justify":
		return "J"
	}
	return "L"
}

func parseDash(dash string) []float64 {
	var out []float64
	for _, f := range strings.FieldsFunc(dash, func(r rune) bool { return r == ' ' || r == ',' }) {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil || v < 0 {
			return []float64{}
		}
		out = append(out, v)
	}
	if out == nil {
		return []float64{}
	}
	return out
}

type rgb struct{ r, g, b int }

// parseColor reads #rgb, #rrggbb and #rrggbbaa colors, and a gradient by its first stop.
func parseColor(c string) (rgb, bool) {
	c = strings.TrimSpace(c)
	if strings.Contains(c, "gradient(") {
		stops := gradientStops(c)
		if len(stops) == 0 {
			return rgb{}, false
		}
		c = stops[0]
	}
	switch strings.ToLower(c) {
	case "white":
		return rgb{255, 255, 255}, true
	case "black":
		return rgb{0, 0, 0}, true
	}
	if !strings.HasPrefix(c, "#") {
		return rgb{}, false
	}
	hex := c[1:]
	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	case 6:
	case 8:
		hex = hex[:6]
	default:
		return rgb{}, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return rgb{}, false
	}
	return rgb{int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)}, true
}
