package document

import (
	"encoding/json"
	"fmt"
	"slices"
)

type LayerType string

const (
	LayerText  LayerType = "text"
	LayerImage LayerType = "image"
	LayerShape LayerType = "shape"
)

// Base holds the fields every layer variant shares.
type Base struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      LayerType `json:"type"`
	GroupID   string    `json:"groupId,omitempty"`
	Visible   bool      `json:"visible"`
	Locked    bool      `json:"locked"`
	ZIndex    int       `json:"zIndex"`
	Transform Transform `json:"transform"`
}

func (b *Base) LayerBase() Base { return *b }

func (b *Base) base() *Base { return b }

func (*Base) isLayer() {}

// Layer is a closed union of *TextLayer, *ImageLayer and *ShapeLayer.
type Layer interface {
	LayerBase() Base
	Clone() Layer
	base() *Base
	isLayer()
}

type Font struct {
	Family        string   `json:"family"`
	Size          float64  `json:"size"`
	Weight        int      `json:"weight"`
	LineHeight    float64  `json:"lineHeight"`
	LetterSpacing float64  `json:"letterSpacing"`
	Align         string   `json:"align"`
	Style         string   `json:"style,omitempty"`
	Decoration    string   `json:"decoration,omitempty"`
	Transform     string   `json:"textTransform,omitempty"`
	Shadow        *Shadow  `json:"shadow,omitempty"`
	Outline       *Outline `json:"outline,omitempty"`
	Curve         float64  `json:"curve,omitempty"`
}

type Outline struct {
	Color string  `json:"color"`
	Width float64 `json:"width"`
}

type TextLayer struct {
	Base
	Content string  `json:"content"`
	Padding float64 `json:"padding,omitempty"`
	Font    Font    `json:"font"`
	Color   Color   `json:"color"`
}

func (l *TextLayer) Clone() Layer {
	c := *l
	c.Font.Shadow = clonePtr(l.Font.Shadow)
	c.Font.Outline = clonePtr(l.Font.Outline)
	c.Color = l.Color.clone()
	return &c
}

type Filters struct {
	Brightness float64 `json:"brightness"`
	Contrast   float64 `json:"contrast"`
	Saturation float64 `json:"saturation"`
	Grayscale  float64 `json:"grayscale"`
	Sepia      float64 `json:"sepia"`
	HueRotate  float64 `json:"hueRotate"`
}

// DefaultFilters leaves the image untouched.
func DefaultFilters() Filters {
	return Filters{Brightness: 100, Contrast: 100, Saturation: 100}
}

type ChromaKey struct {
	Enabled   bool    `json:"enabled"`
	Color     string  `json:"color"`
	Tolerance float64 `json:"tolerance"`
}

type ImageLayer struct {
	Base
	Src            string     `json:"src"`
	OriginalWidth  float64    `json:"originalWidth"`
	OriginalHeight float64    `json:"originalHeight"`
	Fit            FitMode    `json:"fit"`
	Pan            Pan        `json:"pan"`
	Crop           Crop       `json:"crop"`
	Filters        Filters    `json:"filters"`
	ChromaKey      *ChromaKey `json:"chromaKey,omitempty"`
	Shadow         *Shadow    `json:"shadow,omitempty"`
}

func (l *ImageLayer) Clone() Layer {
	c := *l
	c.ChromaKey = clonePtr(l.ChromaKey)
	c.Shadow = clonePtr(l.Shadow)
	return &c
}

type ShapeLayer struct {
	Base
	Shape Shape `json:"shape"`
}

func (l *ShapeLayer) Clone() Layer {
	c := *l
	c.Shape = l.Shape.Clone()
	return &c
}

// Clone deep-copies the shape, including its point list.
func (s Shape) Clone() Shape {
	c := s
	if s.Points != nil {
		c.Points = slices.Clone(s.Points)
	}
	c.Fill = s.Fill.clone()
	if s.Stroke != nil {
		st := *s.Stroke
		st.Color = s.Stroke.Color.clone()
		c.Stroke = &st
	}
	c.Shadow = clonePtr(s.Shadow)
	if s.BorderRadius != nil {
		br := *s.BorderRadius
		br.Corners = clonePtr(s.BorderRadius.Corners)
		c.BorderRadius = &br
	}
	c.FillImage = clonePtr(s.FillImage)
	return c
}

func (c Color) clone() Color {
	if c.Stops != nil {
		c.Stops = slices.Clone(c.Stops)
	}
	return c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// WithTransform returns a copy of l carrying t.
func WithTransform(l Layer, t Transform) Layer {
	c := l.Clone()
	c.base().Transform = t
	return c
}

// WithBase returns a copy of l with its shared fields replaced. The layer type is kept.
func WithBase(l Layer, b Base) Layer {
	c := l.Clone()
	b.Type = c.base().Type
	*c.base() = b
	return c
}

// HasImageFill reports whether the layer shows a croppable, pannable image.
func HasImageFill(l Layer) bool {
	switch v := l.(type) {
	case *ImageLayer:
		return true
	case *ShapeLayer:
		return v.Shape.FillImage != nil
	}
	return false
}

// UnmarshalLayer decodes one layer using its "type" discriminator.
func UnmarshalLayer(data []byte) (Layer, error) {
	var head struct {
		Type LayerType `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode layer type: %w", err)
	}

	var l Layer
	switch head.Type {
	case LayerText:
		l = &TextLayer{}
	case LayerImage:
		l = &ImageLayer{}
	case LayerShape:
		l = &ShapeLayer{}
	default:
		return nil, fmt.Errorf("%w: unknown layer type %q", ErrInvalidProject, head.Type)
	}
	if err := json.Unmarshal(data, l); err != nil {
		return nil, fmt.Errorf("decode %s layer: %w", head.Type, err)
	}
	return l, nil
}
