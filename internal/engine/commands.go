package engine

import (
	"encoding/json"

	"github.com/inamate/artboard/internal/geom"
	"github.com/inamate/artboard/internal/shape"
)

// DrawCommand represents a single drawing operation for the frontend to execute.
// The frontend receives a list of these and executes them on a Canvas2D context.
type DrawCommand struct {
	Op          string         `json:"op"`                    // Operation: "path", "image", "text", "save", "restore", "clip"
	ObjectID    string         `json:"objectId,omitempty"`    // For hit correlation
	Transform   []float64      `json:"transform,omitempty"`   // [a, b, c, d, e, f] affine matrix
	Path        shape.Drawable `json:"path,omitempty"`        // Path data for "path" and "clip" ops
	Fill        string         `json:"fill,omitempty"`        // Fill color or CSS gradient
	Stroke      string         `json:"stroke,omitempty"`      // Stroke color
	StrokeWidth float64        `json:"strokeWidth,omitempty"` // Stroke width
	Dash        string         `json:"dash,omitempty"`        // Stroke dash pattern, e.g. "8 8"
	Opacity     float64        `json:"opacity,omitempty"`     // Global alpha
	ImageSrc    string         `json:"imageSrc,omitempty"`    // Image URL
	ImageX      float64        `json:"imageX,omitempty"`      // Image placement in local space
	ImageY      float64        `json:"imageY,omitempty"`
	ImageWidth  float64        `json:"imageWidth,omitempty"`
	ImageHeight float64        `json:"imageHeight,omitempty"`
	Width       float64        `json:"width,omitempty"` // Text box size
	Height      float64        `json:"height,omitempty"`
	Text        *TextRun       `json:"text,omitempty"`
}

// CompileDrawCommands generates a draw command buffer from a scene graph.
// Commands are in painter's order (back to front).
func CompileDrawCommands(sg *SceneGraph) []DrawCommand {
	if sg == nil || sg.Root == nil {
		return nil
	}

	var commands []DrawCommand
	compileNode(sg.Root, &commands)
	return commands
}

// compileNode generates draw commands for a node and its children.
func compileNode(node *SceneNode, commands *[]DrawCommand) {
	if node == nil || !node.Visible {
		return
	}
	m := node.World.ToSlice()

	// Image content is clipped to the outline and crop window.
	if node.ImageSrc != "" {
		*commands = append(*commands, DrawCommand{Op: "save"})
		for _, c := range node.ClipPaths {
			*commands = append(*commands, DrawCommand{Op: "clip", Transform: m, Path: c})
		}
		*commands = append(*commands, DrawCommand{
			Op:          "image",
			ObjectID:    node.ID,
			Transform:   m,
			Opacity:     node.Opacity,
			ImageSrc:    node.ImageSrc,
			ImageX:      node.ImageRect.X,
			ImageY:      node.ImageRect.Y,
			ImageWidth:  node.ImageRect.Width,
			ImageHeight: node.ImageRect.Height,
		})
		*commands = append(*commands, DrawCommand{Op: "restore"})
	}

	switch {
	case node.Text != nil:
		*commands = append(*commands, DrawCommand{
			Op:        "text",
			ObjectID:  node.ID,
			Transform: m,
			Opacity:   node.Opacity,
			Width:     node.Size.X,
			Height:    node.Size.Y,
			Text:      node.Text,
		})
	case node.Type == "image":
		// Drawn above.
	case len(node.Path) > 0:
		cmd := DrawCommand{
			Op:          "path",
			ObjectID:    node.ID,
			Transform:   m,
			Path:        node.Path,
			Opacity:     node.Opacity,
			Fill:        node.Fill,
			Stroke:      node.Stroke,
			StrokeWidth: node.StrokeWidth,
			Dash:        node.Dash,
		}
		if node.ImageSrc != "" {
			cmd.Fill = ""
		}
		if cmd.Fill != "" || cmd.Stroke != "" {
			*commands = append(*commands, cmd)
		}
	}

	for _, child := range node.Children {
		compileNode(child, commands)
	}
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}

// HitTest returns the id of the topmost layer whose rotated box contains the canvas
// point, or an empty string.
func HitTest(sg *SceneGraph, p geom.Vec) string {
	if sg == nil || sg.Root == nil {
		return ""
	}
	return hitTestNode(sg.Root, p)
}

// hitTestNode tests children first; they are on top in painter's order.
func hitTestNode(node *SceneNode, p geom.Vec) string {
	if node == nil || !node.Visible {
		return ""
	}

	for i := len(node.Children) - 1; i >= 0; i-- {
		if hit := hitTestNode(node.Children[i], p); hit != "" {
			return hit
		}
	}

	if node.Type != "artboard" && node.Contains(p) {
		return node.ID
	}
	return ""
}

// GetSelectionBounds returns the combined bounding box of the given layer ids.
func GetSelectionBounds(sg *SceneGraph, ids []string) geom.Rect {
	if sg == nil || len(ids) == 0 {
		return geom.Rect{}
	}
	r, _ := sg.SelectionBounds(ids)
	return r
}

// RectToJSON serializes a Rect to JSON.
func RectToJSON(r geom.Rect) string {
	data, _ := json.Marshal(map[string]float64{
		"x":      r.X,
		"y":      r.Y,
		"width":  r.Width,
		"height": r.Height,
	})
	return string(data)
}
