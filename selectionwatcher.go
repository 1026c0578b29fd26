package boneoverlay

// SelectionWatcher watches the host's selection for changes between ticks. This is useful when something other than the overlay
// (the host's own UI, for example) changes the selection, and the overlay needs to be redrawn to match.
type SelectionWatcher struct {
	selection    Selection
	elements     []NodeID
	prevElements []NodeID
	started      bool
	// OnChange is run once for every node that was added to, or removed from, the selection since the last Update().
	OnChange func(node NodeID)
}

// NewSelectionWatcher creates a new SelectionWatcher for the selection given. onChange can be nil.
func NewSelectionWatcher(selection Selection, onChange func(node NodeID)) *SelectionWatcher {
	return &SelectionWatcher{
		selection: selection,
		OnChange:  onChange,
	}
}

// Update compares the selection against the one seen on the previous call, and should be run once every tick.
// It returns true if the selection changed. The first call only records the selection.
func (watch *SelectionWatcher) Update() bool {

	if watch.selection == nil {
		return false
	}

	watch.elements = append(watch.elements[:0], watch.selection.Selected()...)

	changed := false

	if watch.started {

		for _, e := range watch.elements {
			if !containsNode(watch.prevElements, e) {
				changed = true
				if watch.OnChange != nil {
					watch.OnChange(e)
				}
			}
		}

		for _, p := range watch.prevElements {
			if !containsNode(watch.elements, p) {
				changed = true
				if watch.OnChange != nil {
					watch.OnChange(p)
				}
			}
		}

	}

	watch.started = true
	watch.elements, watch.prevElements = watch.prevElements, watch.elements

	return changed

}

// SetSelection sets the Selection to watch, forgetting the previously seen one.
func (watch *SelectionWatcher) SetSelection(selection Selection) {
	watch.selection = selection
	watch.prevElements = watch.prevElements[:0]
	watch.started = false
}

func containsNode(ids []NodeID, id NodeID) bool {
	for _, i := range ids {
		if i == id {
			return true
		}
	}
	return false
}
