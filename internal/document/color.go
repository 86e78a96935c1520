package document

import (
	"fmt"
	"strconv"
	"strings"
)

// CSS renders the color as a CSS value, resolving mapped palette names.
func (c Color) CSS(palette Palette) string {
	switch c.Type {
	case ColorLinear, ColorRadial:
		if len(c.Stops) == 0 {
			return "transparent"
		}
		var b strings.Builder
		if c.Type == ColorLinear {
			b.WriteString("linear-gradient(")
			b.WriteString(strconv.FormatFloat(c.Angle, 'f', -1, 64))
			b.WriteString("deg")
		} else {
			shape := c.Shape
			if shape == "" {
				shape = "circle"
			}
			b.WriteString("radial-gradient(")
			b.WriteString(shape)
		}
		for _, s := range c.Stops {
			fmt.Fprintf(&b, ", %s %s%%", s.Color, strconv.FormatFloat(s.Position, 'f', -1, 64))
		}
		b.WriteByte(')')
		return b.String()
	}

	if c.Mode == "mapped" {
		if v, ok := palette.Resolve(c.Value); ok {
			return v
		}
	}
	if c.Value == "" {
		return "transparent"
	}
	return c.Value
}
