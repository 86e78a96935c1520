// Package history keeps linear undo/redo over whole project snapshots.
//
// Snapshots are treated as immutable: callers build a new *document.Project for every
// change and never modify one after handing it to History.
package history

import (
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/inamate/artboard/internal/document"
)

type History struct {
	past    []*document.Project
	present *document.Project
	future  []*document.Project
	limit   int
}

// New starts a history at initial. A positive limit caps the number of undo steps.
func New(initial *document.Project, limit int) *History {
	return &History{present: initial, limit: limit}
}

func (h *History) Present() *document.Project { return h.present }

func (h *History) CanUndo() bool { return len(h.past) > 0 }

func (h *History) CanRedo() bool { return len(h.future) > 0 }

// Depth returns the number of undo and redo steps available.
func (h *History) Depth() (undo, redo int) { return len(h.past), len(h.future) }

// Equal reports whether two snapshots describe the same state. Nil and empty slices
// are treated alike, matching their JSON form.
func Equal(a, b *document.Project) bool {
	if a == b {
		return true
	}
	return cmp.Equal(a, b, cmpopts.EquateEmpty())
}

// Set replaces the present and records the previous one. It is a no-op when next
// equals the present. It reports whether a step was recorded.
func (h *History) Set(next *document.Project) bool {
	if Equal(next, h.present) {
		return false
	}
	h.push(h.present)
	h.present = next
	h.future = nil
	return true
}

// SetLive replaces the present without recording a step. Gestures use it for
// intermediate frames.
func (h *History) SetLive(next *document.Project) {
	h.present = next
}

// Commit records a single step from initial to final, typically at the end of a gesture
// whose frames were applied with SetLive. Nothing is recorded when they are equal.
func (h *History) Commit(initial, final *document.Project) bool {
	if Equal(initial, final) {
		h.present = final
		return false
	}
	h.push(initial)
	h.present = final
	h.future = nil
	return true
}

func (h *History) Undo() bool {
	if len(h.past) == 0 {
		return false
	}
	prev := h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]
	h.future = append([]*document.Project{h.present}, h.future...)
	h.present = prev
	return true
}

func (h *History) Redo() bool {
	if len(h.future) == 0 {
		return false
	}
	next := h.future[0]
	h.future = h.future[1:]
	h.push(h.present)
	h.present = next
	return true
}

// Reset drops all steps and starts over at p, as when a project is loaded.
func (h *History) Reset(p *document.Project) {
	h.past, h.future = nil, nil
	h.present = p
}

func (h *History) push(p *document.Project) {
	h.past = append(h.past, p)
	if h.limit > 0 && len(h.past) > h.limit {
		h.past = h.past[len(h.past)-h.limit:]
	}
}
