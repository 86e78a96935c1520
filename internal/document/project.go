package document

import (
	"slices"
	"sort"
)

// Clone returns a deep copy of the project. Mutating the copy never affects p.
func (p *Project) Clone() *Project {
	c := *p
	c.Canvas.Guides.Items = slices.Clone(p.Canvas.Guides.Items)
	c.Groups = make([]Group, len(p.Groups))
	for i, g := range p.Groups {
		g.LayerIDs = slices.Clone(g.LayerIDs)
		c.Groups[i] = g
	}
	c.Layers = CloneLayers(p.Layers)
	c.SelectedLayers = slices.Clone(p.SelectedLayers)
	return &c
}

// WithLayers returns a shallow copy of p that uses layers. The receiver is untouched.
func (p *Project) WithLayers(layers []Layer) *Project {
	c := *p
	c.Layers = layers
	return &c
}

func CloneLayers(layers []Layer) []Layer {
	if layers == nil {
		return nil
	}
	out := make([]Layer, len(layers))
	for i, l := range layers {
		out[i] = l.Clone()
	}
	return out
}

// Layer finds a layer by id.
func (p *Project) Layer(id string) (Layer, bool) {
	i := p.LayerIndex(id)
	if i < 0 {
		return nil, false
	}
	return p.Layers[i], true
}

// LayerIndex returns the slice index of the layer or -1.
func (p *Project) LayerIndex(id string) int {
	return slices.IndexFunc(p.Layers, func(l Layer) bool {
		return l.LayerBase().ID == id
	})
}

// Group finds a group by id.
func (p *Project) Group(id string) (Group, bool) {
	for _, g := range p.Groups {
		if g.ID == id {
			return g, true
		}
	}
	return Group{}, false
}

// IsSelected reports whether the layer is in the current selection.
func (p *Project) IsSelected(id string) bool {
	return slices.Contains(p.SelectedLayers, id)
}

// SortedByZ returns the layers ordered bottom to top. Ties keep slice order.
func SortedByZ(layers []Layer) []Layer {
	out := slices.Clone(layers)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LayerBase().ZIndex < out[j].LayerBase().ZIndex
	})
	return out
}

// MaxZIndex returns the highest zIndex or -1 for an empty list.
func MaxZIndex(layers []Layer) int {
	m := -1
	for _, l := range layers {
		m = max(m, l.LayerBase().ZIndex)
	}
	return m
}

// Reindex rewrites zIndex values into the dense range 0..N-1, keeping relative order.
func Reindex(layers []Layer) []Layer {
	return Restack(SortedByZ(layers))
}

// Restack assigns each layer its position in ordered as zIndex. Layers whose zIndex
// already matches are reused, the others are copied.
func Restack(ordered []Layer) []Layer {
	out := make([]Layer, len(ordered))
	for i, l := range ordered {
		if l.LayerBase().ZIndex == i {
			out[i] = l
			continue
		}
		c := l.Clone()
		c.base().ZIndex = i
		out[i] = c
	}
	return out
}
