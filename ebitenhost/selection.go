package ebitenhost

import (
	"slices"

	"github.com/solarlune/boneoverlay"
)

// DefaultPingTicks is how many ticks a pinged node stays highlighted.
const DefaultPingTicks = 45

// Selection is a simple in-app selection set that remembers which nodes were recently pinged.
type Selection struct {
	selected  []boneoverlay.NodeID
	pings     map[boneoverlay.NodeID]int
	PingTicks int
	// OnPing, if set, is called whenever a node is pinged.
	OnPing func(id boneoverlay.NodeID)
}

var _ boneoverlay.Selection = (*Selection)(nil)

func NewSelection() *Selection {
	return &Selection{
		pings:     map[boneoverlay.NodeID]int{},
		PingTicks: DefaultPingTicks,
	}
}

// Selected returns a copy of the selected nodes, in the order they were selected.
func (selection *Selection) Selected() []boneoverlay.NodeID {
	return slices.Clone(selection.selected)
}

// SetSelected replaces the selection; duplicate and empty IDs are skipped.
func (selection *Selection) SetSelected(ids ...boneoverlay.NodeID) {
	selection.selected = selection.selected[:0]
	for _, id := range ids {
		if id != boneoverlay.NoNode && !slices.Contains(selection.selected, id) {
			selection.selected = append(selection.selected, id)
		}
	}
}

func (selection *Selection) IsSelected(id boneoverlay.NodeID) bool {
	return slices.Contains(selection.selected, id)
}

func (selection *Selection) Ping(id boneoverlay.NodeID) {
	selection.pings[id] = selection.PingTicks
	if selection.OnPing != nil {
		selection.OnPing(id)
	}
}

// Tick counts every active ping down by one tick, and returns whether any are still running.
func (selection *Selection) Tick() bool {
	for id, ticks := range selection.pings {
		if ticks <= 1 {
			delete(selection.pings, id)
		} else {
			selection.pings[id] = ticks - 1
		}
	}
	return len(selection.pings) > 0
}

// PingStrength returns how much of the node's ping is left, from 1 (just pinged) down to 0 (not pinged).
func (selection *Selection) PingStrength(id boneoverlay.NodeID) float64 {
	ticks, ok := selection.pings[id]
	if !ok || selection.PingTicks <= 0 {
		return 0
	}
	return float64(ticks) / float64(selection.PingTicks)
}

// Pinged returns the nodes with an active ping, sorted by ID.
func (selection *Selection) Pinged() []boneoverlay.NodeID {
	ids := make([]boneoverlay.NodeID, 0, len(selection.pings))
	for id := range selection.pings {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Prune drops selected and pinged nodes that are no longer alive in the graph given.
func (selection *Selection) Prune(graph boneoverlay.SceneGraph) {
	selection.selected = slices.DeleteFunc(selection.selected, func(id boneoverlay.NodeID) bool { return !graph.Alive(id) })
	for id := range selection.pings {
		if !graph.Alive(id) {
			delete(selection.pings, id)
		}
	}
}
