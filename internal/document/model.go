package document

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/inamate/artboard/internal/geom"
)

// MinSize is the smallest width or height a resize may produce.
const MinSize = 10.0

type Transform struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation"`
	Opacity  float64 `json:"opacity"`
	Blur     float64 `json:"blur,omitempty"`
}

// Box returns the unrotated bounding box.
func (t Transform) Box() geom.Rect {
	return geom.Rect{X: t.X, Y: t.Y, Width: t.Width, Height: t.Height}
}

// Center returns the rotation pivot of the layer.
func (t Transform) Center() geom.Vec {
	return geom.Vec{X: t.X + t.Width/2, Y: t.Y + t.Height/2}
}

// Matrix maps local box coordinates into canvas space.
func (t Transform) Matrix() geom.Matrix2D {
	return geom.LayerMatrix(t.X, t.Y, t.Width, t.Height, t.Rotation)
}

type ColorType string

const (
	ColorSolid  ColorType = "solid"
	ColorLinear ColorType = "linear"
	ColorRadial ColorType = "radial"
)

type ColorStop struct {
	ID       string  `json:"id"`
	Color    string  `json:"color"`
	Position float64 `json:"position"`
}

// Color is a solid color or a gradient. Solid colors in "mapped" mode name one of the
// project palette entries (primary, secondary, accent) in Value.
type Color struct {
	Type  ColorType   `json:"type"`
	Mode  string      `json:"mode,omitempty"`
	Value string      `json:"value,omitempty"`
	Angle float64     `json:"angle,omitempty"`
	Shape string      `json:"shape,omitempty"`
	Stops []ColorStop `json:"stops,omitempty"`
}

func SolidColor(hex string) Color {
	return Color{Type: ColorSolid, Mode: "custom", Value: hex}
}

type Shadow struct {
	Color   string  `json:"color"`
	Blur    float64 `json:"blur"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
}

type Pan struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Crop insets are percentages of the frame, each side measured from its own edge.
type Crop struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

type FitMode string

const (
	FitCover   FitMode = "cover"
	FitContain FitMode = "contain"
)

type Primitive string

const (
	PrimitiveRect       Primitive = "rect"
	PrimitiveCircle     Primitive = "circle"
	PrimitivePentagon   Primitive = "pentagon"
	PrimitiveHeart      Primitive = "heart"
	PrimitiveStar       Primitive = "star"
	PrimitiveLine       Primitive = "line"
	PrimitiveDashedLine Primitive = "dashed-line"
	PrimitivePath       Primitive = "path"
)

// Primitives lists every parametric primitive.
var Primitives = []Primitive{
	PrimitiveRect,
	PrimitiveCircle,
	PrimitivePentagon,
	PrimitiveHeart,
	PrimitiveStar,
	PrimitiveLine,
	PrimitiveDashedLine,
}

type PointType string

const (
	PointCorner PointType = "corner"
	PointCurve  PointType = "curve"
)

type Handles struct {
	In  geom.Vec `json:"in"`
	Out geom.Vec `json:"out"`
}

// PathPoint is a node of an editable path. Coordinates are percentages (0-100) of the
// owning shape's bounding box.
type PathPoint struct {
	ID      string    `json:"id"`
	X       float64   `json:"x"`
	Y       float64   `json:"y"`
	Type    PointType `json:"type"`
	Handles Handles   `json:"handles"`
}

func (p PathPoint) Pos() geom.Vec {
	return geom.Vec{X: p.X, Y: p.Y}
}

// CornerPoint builds a point whose handles collapse onto the node.
func CornerPoint(id string, x, y float64) PathPoint {
	at := geom.Vec{X: x, Y: y}
	return PathPoint{ID: id, X: x, Y: y, Type: PointCorner, Handles: Handles{In: at, Out: at}}
}

type CornerRadii struct {
	TL float64 `json:"tl"`
	TR float64 `json:"tr"`
	BR float64 `json:"br"`
	BL float64 `json:"bl"`
}

// BorderRadius is either a single radius for all corners or one per corner. On the
// wire it is a number or a {tl,tr,br,bl} object.
type BorderRadius struct {
	Uniform float64
	Corners *CornerRadii
}

// Radii resolves the per-corner radii.
func (b BorderRadius) Radii() CornerRadii {
	if b.Corners != nil {
		return *b.Corners
	}
	return CornerRadii{TL: b.Uniform, TR: b.Uniform, BR: b.Uniform, BL: b.Uniform}
}

func (b BorderRadius) IsZero() bool {
	r := b.Radii()
	return r.TL <= 0 && r.TR <= 0 && r.BR <= 0 && r.BL <= 0
}

func (b BorderRadius) MarshalJSON() ([]byte, error) {
	if b.Corners != nil {
		return json.Marshal(b.Corners)
	}
	return json.Marshal(b.Uniform)
}

func (b *BorderRadius) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*b = BorderRadius{Uniform: n}
		return nil
	}
	var c CornerRadii
	if err := json.Unmarshal(data, &c); err != nil {
		return fmt.Errorf("invalid borderRadius: %w", err)
	}
	*b = BorderRadius{Corners: &c}
	return nil
}

type Stroke struct {
	Color Color   `json:"color"`
	Width float64 `json:"width"`
	Dash  string  `json:"dash,omitempty"`
}

type FillImage struct {
	Src            string  `json:"src"`
	OriginalWidth  float64 `json:"originalWidth,omitempty"`
	OriginalHeight float64 `json:"originalHeight,omitempty"`
	Fit            FitMode `json:"fit"`
	Pan            Pan     `json:"pan"`
	Crop           Crop    `json:"crop"`
	Scale          float64 `json:"scale,omitempty"`
}

// Shape describes the geometry of a shape layer. Parametric primitives ignore Points;
// the path primitive draws Points, closing the outline when IsClosed is set.
type Shape struct {
	Primitive    Primitive     `json:"primitive"`
	Points       []PathPoint   `json:"points,omitempty"`
	IsClosed     bool          `json:"isClosed"`
	Fill         Color         `json:"fill"`
	Stroke       *Stroke       `json:"stroke"`
	Shadow       *Shadow       `json:"shadow"`
	BorderRadius *BorderRadius `json:"borderRadius,omitempty"`
	FillImage    *FillImage    `json:"fillImage,omitempty"`
}

type Orientation string

const (
	Horizontal Orientation = "horizontal"
	Vertical   Orientation = "vertical"
)

type Guide struct {
	ID          string      `json:"id"`
	Orientation Orientation `json:"orientation"`
	Position    float64     `json:"position"`
}

type Guides struct {
	Enabled bool    `json:"enabled"`
	Snap    bool    `json:"snap"`
	Items   []Guide `json:"items"`
}

// SnapActive reports whether drags should snap to reference lines.
func (g Guides) SnapActive() bool {
	return g.Enabled && g.Snap
}

type Canvas struct {
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Background string  `json:"background"`
	Guides     Guides  `json:"guides"`
}

// Group is a named membership list. It references layers and does not own them.
type Group struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Visible  bool     `json:"visible"`
	Locked   bool     `json:"locked"`
	LayerIDs []string `json:"layerIds"`
}

type Meta struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
	Thumbnail   string `json:"thumbnail,omitempty"`
}

type Palette struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Accent    string `json:"accent"`
}

// Resolve returns the hex value for a mapped palette name.
func (p Palette) Resolve(name string) (string, bool) {
	switch name {
	case "primary":
		return p.Primary, true
	case "secondary":
		return p.Secondary, true
	case "accent":
		return p.Accent, true
	}
	return "", false
}

type Tool string

const (
	ToolSelect Tool = "select"
	ToolText   Tool = "text"
	ToolImage  Tool = "image"
	ToolShape  Tool = "shape"
	ToolNode   Tool = "node"
)

// EditableGroupID is the permanent group every project starts with.
const EditableGroupID = "editable-group"

var ErrInvalidProject = errors.New("invalid project")

// Project is the full editable state: document content plus editor view state.
type Project struct {
	Meta            Meta      `json:"meta"`
	Canvas          Canvas    `json:"canvas"`
	Colors          Palette   `json:"colors"`
	Groups          []Group   `json:"groups"`
	Layers          []Layer   `json:"layers"`
	SelectedLayers  []string  `json:"selectedLayers"`
	ActiveTool      Tool      `json:"activeTool"`
	ActiveShapeType Primitive `json:"activeShapeType,omitempty"`
	Zoom            float64   `json:"zoom"`
	CroppingLayerID string    `json:"croppingLayerId,omitempty"`
}

// NewEmptyProject creates the default artboard for a new project.
func NewEmptyProject(id, name string) *Project {
	return &Project{
		Meta: Meta{
			ID:       id,
			Name:     name,
			Category: "flyers",
		},
		Canvas: Canvas{
			Width:      1080,
			Height:     1350,
			Background: "transparent",
			Guides: Guides{
				Enabled: true,
				Snap:    true,
				Items:   []Guide{},
			},
		},
		Colors: Palette{
			Primary:   "#111111",
			Secondary: "#ffffff",
			Accent:    "#f43f5e",
		},
		Groups: []Group{
			{ID: EditableGroupID, Name: "Editable", Visible: true, LayerIDs: []string{}},
		},
		Layers:         []Layer{},
		SelectedLayers: []string{},
		ActiveTool:     ToolSelect,
		Zoom:           1,
	}
}

// Validate checks the invariants a loaded project must satisfy.
func (p *Project) Validate() error {
	if p.Canvas.Width <= 0 || p.Canvas.Height <= 0 {
		return fmt.Errorf("%w: canvas must have a positive size", ErrInvalidProject)
	}
	seen := make(map[string]bool, len(p.Layers))
	for _, l := range p.Layers {
		b := l.LayerBase()
		if b.ID == "" {
			return fmt.Errorf("%w: layer without id", ErrInvalidProject)
		}
		if seen[b.ID] {
			return fmt.Errorf("%w: duplicate layer id %s", ErrInvalidProject, b.ID)
		}
		seen[b.ID] = true
		if b.Transform.Width < MinSize || b.Transform.Height < MinSize {
			return fmt.Errorf("%w: layer %s is smaller than %v", ErrInvalidProject, b.ID, MinSize)
		}
	}
	return nil
}

// ZoomOrOne returns the zoom factor, treating an unset zoom as 1.
func (p *Project) ZoomOrOne() float64 {
	if p.Zoom <= 0 {
		return 1
	}
	return p.Zoom
}

func (p *Project) UnmarshalJSON(data []byte) error {
	type alias Project
	aux := struct {
		*alias
		Layers []json.RawMessage `json:"layers"`
	}{alias: (*alias)(p)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	p.Layers = make([]Layer, 0, len(aux.Layers))
	for i, raw := range aux.Layers {
		l, err := UnmarshalLayer(raw)
		if err != nil {
			return fmt.Errorf("layer %d: %w", i, err)
		}
		p.Layers = append(p.Layers, l)
	}
	return nil
}
