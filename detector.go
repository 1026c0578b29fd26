package boneoverlay

import (
	"log/slog"
)

// BoneInfo describes one detected bone and its place in the detected hierarchy. Parent and Children only ever refer to other
// detected bones; a bone whose scene parent wasn't detected has a Parent of NoNode.
type BoneInfo struct {
	Node       NodeID
	Parent     NodeID
	Children   []NodeID
	IsFromSkin bool // The bone is referenced by a skin component
	IsFromRig  bool // The bone was found through a rig component
	Depth      int  // Number of consecutive detected ancestors
}

// BoneDetector decides which nodes in a SceneGraph are bone-like. It caches its result for the current frame tick, so calling
// DetectBones() repeatedly within one frame only scans the scene once.
//
// A node is a bone candidate if a skin references it, if a rig maps or contains it, or if its name matches one of the state's
// name patterns. Nodes that are hidden or have picking disabled are never candidates. When a candidate is found through a skin
// rig, or by name, its ancestors are pulled in too, but only where an ancestor already has another candidate child; this keeps
// container nodes above a skeleton (like a model's root) out of the result unless they really branch into bones.
type BoneDetector struct {
	graph  SceneGraph
	clock  FrameClock
	state  *OverlayState
	logger *slog.Logger

	candidates    map[NodeID]bool
	bones         map[NodeID]*BoneInfo
	order         []NodeID // discovery order
	excludedCount int
	lastFrame     uint64
	hasResult     bool
}

// NewBoneDetector creates a BoneDetector reading from the graph given, keyed to the clock's frame count, and using the
// state's name patterns and empty-node policy.
func NewBoneDetector(graph SceneGraph, clock FrameClock, state *OverlayState, logger *slog.Logger) *BoneDetector {
	if logger == nil {
		logger = slog.Default()
	}
	return &BoneDetector{
		graph:      graph,
		clock:      clock,
		state:      state,
		logger:     logger,
		candidates: map[NodeID]bool{},
		bones:      map[NodeID]*BoneInfo{},
	}
}

// SetGraph points the detector at another scene graph and drops the cached result.
func (detector *BoneDetector) SetGraph(graph SceneGraph) {
	detector.graph = graph
	detector.ClearCache()
}

// SetState swaps the OverlayState the detector reads its name patterns and empty-node policy from.
func (detector *BoneDetector) SetState(state *OverlayState) {
	detector.state = state
	detector.ClearCache()
}

// ClearCache drops the cached result, forcing the next DetectBones() call to rescan.
func (detector *BoneDetector) ClearCache() {
	clear(detector.candidates)
	clear(detector.bones)
	detector.order = detector.order[:0]
	detector.excludedCount = 0
	detector.hasResult = false
}

// ExcludedCount returns how many hidden or unpickable nodes were skipped in the last scan. A node is counted once per pass
// that reaches it: the skin and rig passes, and the scene-wide pass, which counts every excluded node whatever its name.
func (detector *BoneDetector) ExcludedCount() int {
	return detector.excludedCount
}

// Bone returns the detected BoneInfo for the node given, or nil if it isn't a detected bone.
func (detector *BoneDetector) Bone(id NodeID) *BoneInfo {
	return detector.bones[id]
}

// DetectBones returns the detected bones in discovery order. Within a single frame tick, the cached result is returned
// (as long as it's non-empty) without rescanning the scene.
func (detector *BoneDetector) DetectBones() []*BoneInfo {

	frame := detector.clock.FrameCount()

	if detector.hasResult && frame == detector.lastFrame && len(detector.bones) > 0 {
		return detector.result()
	}

	detector.ClearCache()
	detector.lastFrame = frame
	detector.hasResult = true

	if detector.graph == nil {
		return nil
	}

	patterns := detector.state.BoneNamePatterns()

	for _, skin := range detector.graph.Skins() {
		for _, bone := range skin.Bones {
			detector.addCandidate(bone, true, false)
		}
	}

	for _, rig := range detector.graph.Rigs() {

		if rig.IsHumanoid() {
			for _, slot := range HumanBones {
				if bone := rig.Bone(slot); bone != NoNode {
					detector.addCandidate(bone, false, true)
				}
			}
			continue
		}

		// Every branching node under a generic rig is considered; excluded ones are counted whatever their name.
		for _, node := range SearchTree(detector.graph, rig.Root).IncludeStart().WithChildren().IDs() {
			if detector.isExcluded(node) {
				detector.excludedCount++
				continue
			}
			if MatchesNamePattern(detector.graph.Name(node), patterns) {
				detector.addCandidate(node, false, true)
			}
		}

	}

	includeEmpty := detector.state.IncludeEmptyNodes()

	for _, node := range detector.graph.Nodes() {

		if detector.isExcluded(node) {
			detector.excludedCount++
			continue
		}

		if !MatchesNamePattern(detector.graph.Name(node), patterns) {
			continue
		}

		if len(detector.graph.Children(node)) > 0 || detector.candidates[node] || includeEmpty {
			detector.markCandidate(node, false, false)
			detector.includeAncestors(node, false, false)
		}

	}

	detector.buildHierarchy()

	detector.logger.Debug("detected bones", "frame", frame, "bones", len(detector.order), "excluded", detector.excludedCount)

	return detector.result()

}

func (detector *BoneDetector) result() []*BoneInfo {
	out := make([]*BoneInfo, 0, len(detector.order))
	for _, id := range detector.order {
		out = append(out, detector.bones[id])
	}
	return out
}

func (detector *BoneDetector) isExcluded(node NodeID) bool {
	return detector.graph.IsHidden(node) || detector.graph.IsPickingDisabled(node)
}

// addCandidate adds a skin- or rig-sourced node, then walks its ancestors.
func (detector *BoneDetector) addCandidate(node NodeID, fromSkin, fromRig bool) {

	if !detector.graph.Alive(node) {
		return
	}

	if detector.isExcluded(node) {
		detector.excludedCount++
		return
	}

	detector.markCandidate(node, fromSkin, fromRig)
	detector.includeAncestors(node, fromSkin, fromRig)

}

// markCandidate records the node as a bone (or updates its source flags if it's already one).
func (detector *BoneDetector) markCandidate(node NodeID, fromSkin, fromRig bool) {

	info, exists := detector.bones[node]
	if !exists {
		info = &BoneInfo{Node: node}
		detector.bones[node] = info
		detector.order = append(detector.order, node)
	}

	detector.candidates[node] = true
	info.IsFromSkin = info.IsFromSkin || fromSkin
	info.IsFromRig = info.IsFromRig || fromRig

}

// includeAncestors walks up from the node, adding each parent that isn't excluded and already has another candidate child.
// The walk stops at the first parent that doesn't qualify.
func (detector *BoneDetector) includeAncestors(node NodeID, fromSkin, fromRig bool) {

	for current := node; ; {

		parent := detector.graph.Parent(current)

		if parent == NoNode || !detector.graph.Alive(parent) || detector.candidates[parent] {
			return
		}

		if detector.isExcluded(parent) || !detector.hasOtherCandidateChild(parent, current) {
			return
		}

		detector.markCandidate(parent, fromSkin, fromRig)
		current = parent

	}

}

func (detector *BoneDetector) hasOtherCandidateChild(parent, child NodeID) bool {
	for _, sibling := range detector.graph.Children(parent) {
		if sibling != child && detector.candidates[sibling] {
			return true
		}
	}
	return false
}

// buildHierarchy fills out Parent, Children, and Depth for every detected bone.
func (detector *BoneDetector) buildHierarchy() {

	for _, id := range detector.order {
		info := detector.bones[id]
		parent := detector.graph.Parent(id)
		if _, ok := detector.bones[parent]; ok && parent != NoNode {
			info.Parent = parent
		}
	}

	for _, id := range detector.order {
		info := detector.bones[id]
		if info.Parent != NoNode {
			parentInfo := detector.bones[info.Parent]
			parentInfo.Children = append(parentInfo.Children, id)
		}
	}

	for _, id := range detector.order {
		info := detector.bones[id]
		depth := 0
		for p := info.Parent; p != NoNode; p = detector.bones[p].Parent {
			depth++
		}
		info.Depth = depth
	}

}
