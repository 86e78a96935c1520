package editor

import (
	"slices"

	"github.com/inamate/artboard/internal/document"
	"github.com/inamate/artboard/internal/typeid"
)

func groupIndex(p *document.Project, id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(p.Groups, func(g document.Group) bool { return g.ID == id })
}

// removeFromGroups drops ids from every membership list. With dropEmptied, groups that
// lose their last member are removed too, except the Editable group.
func removeFromGroups(p *document.Project, ids []string, dropEmptied bool) {
	groups := p.Groups[:0:0]
	for _, g := range p.Groups {
		before := len(g.LayerIDs)
		g.LayerIDs = slices.DeleteFunc(slices.Clone(g.LayerIDs), func(id string) bool {
			return slices.Contains(ids, id)
		})
		emptied := before > 0 && len(g.LayerIDs) == 0
		if dropEmptied && emptied && g.ID != document.EditableGroupID {
			continue
		}
		groups = append(groups, g)
	}
	p.Groups = groups
}

// AddGroup creates an empty group.
func (e *Editor) AddGroup(name string) (string, error) {
	id := typeid.NewGroupID()
	err := e.update(func(p *document.Project) error {
		p.Groups = append(p.Groups, document.Group{ID: id, Name: name, Visible: true, LayerIDs: []string{}})
		return nil
	})
	return id, err
}

// GroupLayers moves layers into a new group, taking them out of any group they were in.
// The selection is cleared.
func (e *Editor) GroupLayers(ids []string) (string, error) {
	id := typeid.NewGroupID()
	err := e.update(func(p *document.Project) error {
		var members []string
		for _, lid := range ids {
			if _, ok := p.Layer(lid); ok && !slices.Contains(members, lid) {
				members = append(members, lid)
			}
		}
		if len(members) == 0 {
			return ErrEmptySelection
		}

		removeFromGroups(p, members, true)
		p.Groups = append(p.Groups, document.Group{ID: id, Name: "New Group", Visible: true, LayerIDs: members})
		for i, l := range p.Layers {
			if b := l.LayerBase(); slices.Contains(members, b.ID) {
				b.GroupID = id
				p.Layers[i] = document.WithBase(l, b)
			}
		}
		p.SelectedLayers = []string{}
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// UngroupLayers dissolves a group. Its layers stay and become the selection.
func (e *Editor) UngroupLayers(groupID string) error {
	return e.update(func(p *document.Project) error {
		gi := groupIndex(p, groupID)
		if gi < 0 {
			return ErrGroupNotFound
		}
		if groupID == document.EditableGroupID {
			return ErrProtectedGroup
		}
		members := p.Groups[gi].LayerIDs
		p.Groups = slices.Delete(p.Groups, gi, gi+1)
		for i, l := range p.Layers {
			if b := l.LayerBase(); b.GroupID == groupID {
				b.GroupID = ""
				p.Layers[i] = document.WithBase(l, b)
			}
		}
		p.SelectedLayers = slices.Clone(members)
		return nil
	})
}

// DeleteGroup removes a group together with its layers. The Editable group is protected.
func (e *Editor) DeleteGroup(groupID string) error {
	return e.update(func(p *document.Project) error {
		gi := groupIndex(p, groupID)
		if gi < 0 {
			return ErrGroupNotFound
		}
		if groupID == document.EditableGroupID {
			return ErrProtectedGroup
		}

		doomed := slices.Clone(p.Groups[gi].LayerIDs)
		for _, l := range p.Layers {
			if b := l.LayerBase(); b.GroupID == groupID && !slices.Contains(doomed, b.ID) {
				doomed = append(doomed, b.ID)
			}
		}
		p.Groups = slices.Delete(p.Groups, gi, gi+1)
		deleteLayers(p, doomed)
		p.SelectedLayers = []string{}
		return nil
	})
}

// UpdateGroup edits a copy of a group. The id and membership cannot be changed this way.
func (e *Editor) UpdateGroup(groupID string, fn func(g *document.Group)) error {
	return e.update(func(p *document.Project) error {
		gi := groupIndex(p, groupID)
		if gi < 0 {
			return ErrGroupNotFound
		}
		g := p.Groups[gi]
		fn(&g)
		g.ID = p.Groups[gi].ID
		g.LayerIDs = p.Groups[gi].LayerIDs
		p.Groups[gi] = g
		return nil
	})
}
