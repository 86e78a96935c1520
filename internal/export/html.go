// Package export renders projects to static HTML and vector PDF. Both exporters walk the
// same scene graph the editor draws from, so outlines match on every surface.
package export

import (
	"bytes"
	"fmt"
	"html/template"
	"math"
	"strconv"
	"strings"

	"github.com/inamate/artboard/internal/document"
	"github.com/inamate/artboard/internal/engine"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body { margin: 0; display: flex; justify-content: center; background: #f4f4f5; }
.artboard { position: relative; overflow: hidden; }
.layer { position: absolute; box-sizing: border-box; }
.layer svg { position: absolute; inset: 0; overflow: visible; }
.text { width: 100%; height: 100%; box-sizing: border-box; white-space: pre-wrap; overflow-wrap: break-word; }
</style>
</head>
<body>
<div class="artboard" style="{{.Style}}">
{{- range .Layers}}
<div class="layer" id="{{.ID}}" style="{{.Style}}">
{{- if .IsText}}
<div class="text" style="{{.TextStyle}}">{{.Text}}</div>
{{- else}}
<svg width="{{.Width}}" height="{{.Height}}" viewBox="0 0 {{.Width}} {{.Height}}" xmlns="http://www.w3.org/2000/svg">
{{- if .Clips}}
<defs>{{range .Clips}}<clipPath id="{{.ID}}"><path d="{{.D}}"/></clipPath>{{end}}</defs>
{{- end}}
{{- if .Path}}
<path d="{{.Path}}" fill="{{.Fill}}"{{if .Stroke}} stroke="{{.Stroke}}" stroke-width="{{.StrokeWidth}}"{{if .Dash}} stroke-dasharray="{{.Dash}}"{{end}}{{end}}/>
{{- end}}
{{- if .Image}}
{{.ClipOpen}}<image href="{{.Image}}" x="{{.ImageX}}" y="{{.ImageY}}" width="{{.ImageWidth}}" height="{{.ImageHeight}}" preserveAspectRatio="none"/>{{.ClipClose}}
{{- end}}
</svg>
{{- end}}
</div>
{{- end}}
</div>
</body>
</html>
`))

type htmlPage struct {
	Title  string
	Style  template.CSS
	Layers []htmlLayer
}

type htmlClip struct {
	ID string
	D  string
}

type htmlLayer struct {
	ID          string
	Style       template.CSS
	Width       string
	Height      string
	Path        string
	Fill        string
	Stroke      string
	StrokeWidth string
	Dash        string
	Clips       []htmlClip
	ClipOpen    template.HTML
	ClipClose   template.HTML
	Image       string
	ImageX      string
	ImageY      string
	ImageWidth  string
	ImageHeight string
	IsText      bool
	Text        string
	TextStyle   template.CSS
}

// HTML renders p as a standalone page with one absolutely positioned element per layer.
func HTML(p *document.Project) ([]byte, error) {
	sg := engine.BuildSceneGraph(p)

	page := htmlPage{
		Title: p.Meta.Name,
		Style: template.CSS(fmt.Sprintf("width:%spx;height:%spx;background:%s",
			num(p.Canvas.Width), num(p.Canvas.Height), cssValue(sg.Root.Fill, "transparent"))),
	}
	if page.Title == "" {
		page.Title = "Artboard"
	}

	for _, node := range sg.Root.Children {
		l, ok := p.Layer(node.ID)
		if !ok {
			continue
		}
		page.Layers = append(page.Layers, htmlNode(node, l))
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, page); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return buf.Bytes(), nil
}

func htmlNode(node *engine.SceneNode, l document.Layer) htmlLayer {
	t := l.LayerBase().Transform
	style := fmt.Sprintf("left:%spx;top:%spx;width:%spx;height:%spx;opacity:%s",
		num(t.X), num(t.Y), num(t.Width), num(t.Height), num(node.Opacity))
	if t.Rotation != 0 {
		style += fmt.Sprintf(";transform:rotate(%sdeg)", num(t.Rotation))
	}
	if f := filters(l, t.Blur); f != "" {
		style += ";filter:" + f
	}

	out := htmlLayer{
		ID:     node.ID,
		Style:  template.CSS(style),
		Width:  num(t.Width),
		Height: num(t.Height),
	}

	if tr := node.Text; tr != nil {
		out.IsText = true
		out.Text = applyTextTransform(tr.Content, tr.Font.Transform)
		out.TextStyle = textStyle(tr)
		return out
	}

	if node.Fill != "" || node.Stroke != "" {
		out.Path = node.Path.SVG()
		out.Fill = svgPaint(node.Fill)
		if node.ImageSrc != "" {
			out.Fill = "none"
		}
		if node.Stroke != "" {
			out.Stroke = svgPaint(node.Stroke)
			out.StrokeWidth = num(node.StrokeWidth)
			out.Dash = node.Dash
		}
	}

	if node.ImageSrc != "" {
		var open, end strings.Builder
		for i, c := range node.ClipPaths {
			id := fmt.Sprintf("clip-%s-%d", node.ID, i)
			out.Clips = append(out.Clips, htmlClip{ID: id, D: c.SVG()})
			fmt.Fprintf(&open, `<g clip-path="url(#%s)">`, template.HTMLEscapeString(id))
			end.WriteString("</g>")
		}
		out.ClipOpen = template.HTML(open.String())
		out.ClipClose = template.HTML(end.String())
		out.Image = node.ImageSrc
		out.ImageX = num(node.ImageRect.X)
		out.ImageY = num(node.ImageRect.Y)
		out.ImageWidth = num(node.ImageRect.Width)
		out.ImageHeight = num(node.ImageRect.Height)
	}
	return out
}

// filters builds the CSS filter list for layer blur and image adjustments.
func filters(l document.Layer, blur float64) string {
	var parts []string
	if blur > 0 {
		parts = append(parts, fmt.Sprintf("blur(%spx)", num(blur)))
	}
	if img, ok := l.(*document.ImageLayer); ok {
		f := img.Filters
		if f.Brightness != 100 && f.Brightness > 0 {
			parts = append(parts, fmt.Sprintf("brightness(%s%%)", num(f.Brightness)))
		}
		if f.Contrast != 100 && f.Contrast > 0 {
			parts = append(parts, fmt.Sprintf("contrast(%s%%)", num(f.Contrast)))
		}
		if f.Saturation != 100 && f.Saturation > 0 {
			parts = append(parts, fmt.Sprintf("saturate(%s%%)", num(f.Saturation)))
		}
		if f.Grayscale > 0 {
			parts = append(parts, fmt.Sprintf("grayscale(%s%%)", num(f.Grayscale)))
		}
		if f.Sepia > 0 {
			parts = append(parts, fmt.Sprintf("sepia(%s%%)", num(f.Sepia)))
		}
		if f.HueRotate != 0 {
			parts = append(parts, fmt.Sprintf("hue-rotate(%sdeg)", num(f.HueRotate)))
		}
	}
	return strings.Join(parts, " ")
}

func textStyle(tr *engine.TextRun) template.CSS {
	f := tr.Font
	var b strings.Builder
	fmt.Fprintf(&b, "font-family:%s;font-size:%spx", cssFamily(f.Family), num(f.Size))
	if f.Weight > 0 {
		fmt.Fprintf(&b, ";font-weight:%d", f.Weight)
	}
	if f.LineHeight > 0 {
		fmt.Fprintf(&b, ";line-height:%s", num(f.LineHeight))
	}
	if f.LetterSpacing != 0 {
		fmt.Fprintf(&b, ";letter-spacing:%spx", num(f.LetterSpacing))
	}
	if f.Align != "" {
		fmt.Fprintf(&b, ";text-align:%s", cssValue(f.Align, "left"))
	}
	if f.Style == "italic" {
		b.WriteString(";font-style:italic")
	}
	if f.Decoration != "" {
		fmt.Fprintf(&b, ";text-decoration:%s", cssValue(f.Decoration, "none"))
	}
	if tr.Padding > 0 {
		fmt.Fprintf(&b, ";padding:%spx", num(tr.Padding))
	}
	color := cssValue(tr.Color, "#000000")
	if strings.Contains(color, "gradient(") {
		fmt.Fprintf(&b, ";background:%s;-webkit-background-clip:text;background-clip:text;color:transparent", color)
	} else {
		fmt.Fprintf(&b, ";color:%s", color)
	}
	return template.CSS(b.String())
}

func applyTextTransform(s, mode string) string {
	switch mode {
	case "uppercase":
		return strings.ToUpper(s)
	case "lowercase":
		return strings.ToLower(s)
	}
	return s
}

// svgPaint maps a CSS color to an SVG paint. SVG has no CSS gradients, so gradients are
// drawn with their first stop.
func svgPaint(c string) string {
	if c == "" {
		return "none"
	}
	if strings.Contains(c, "gradient(") {
		if stops := gradientStops(c); len(stops) > 0 {
			return stops[0]
		}
		return "none"
	}
	return c
}

// gradientStops extracts the stop colors of a CSS gradient produced by Color.CSS.
func gradientStops(c string) []string {
	start, end := strings.Index(c, "("), strings.LastIndex(c, ")")
	if start < 0 || end <= start {
		return nil
	}
	var stops []string
	for i, part := range strings.Split(c[start+1:end], ",") {
		fields := strings.Fields(part)
		if i == 0 || len(fields) < 2 {
			continue // angle or shape
		}
		stops = append(stops, fields[0])
	}
	return stops
}

// cssValue keeps values built from colors, numbers and gradient syntax, and falls back
// to def for anything else.
func cssValue(v, def string) string {
	if v == "" {
		return def
	}
	for _, r := range v {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune("#%.,()- ", r):
		default:
			return def
		}
	}
	return v
}

func cssFamily(family string) string {
	clean := strings.Map(func(r rune) rune {
		if r == '"' || r == '\'' || r == ';' || r == '\\' || r == '<' || r == '>' || r == '{' || r == '}' {
			return -1
		}
		return r
	}, family)
	if clean == "" {
		return "sans-serif"
	}
	return `"` + clean + `", sans-serif`
}

func num(v float64) string {
	v = math.Round(v*100) / 100
	if v == 0 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
