package boneoverlay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDetector(scene *Scene) (*BoneDetector, *FrameCounter, *OverlayState) {
	clock := &FrameCounter{}
	state := NewOverlayState(nil, nil)
	return NewBoneDetector(scene, clock, state, nil), clock, state
}

func boneIDs(bones []*BoneInfo) []NodeID {
	out := make([]NodeID, 0, len(bones))
	for _, b := range bones {
		out = append(out, b.Node)
	}
	return out
}

func TestDetectorChainWithSkinnedMiddle(t *testing.T) {

	scene := NewScene("test")
	a := scene.AddNode("bone_a", NoNode)
	b := a.AddChild("bone_b")
	c := b.AddChild("tip")

	scene.AddSkin(SkinComponent{Name: "body", Bones: []NodeID{b.ID()}})

	detector, _, _ := newTestDetector(scene)
	bones := detector.DetectBones()

	assert.ElementsMatch(t, []NodeID{a.ID(), b.ID()}, boneIDs(bones))
	assert.Nil(t, detector.Bone(c.ID()))

	infoA := detector.Bone(a.ID())
	infoB := detector.Bone(b.ID())
	require.NotNil(t, infoA)
	require.NotNil(t, infoB)

	assert.True(t, infoB.IsFromSkin)
	assert.False(t, infoA.IsFromSkin)
	assert.Equal(t, a.ID(), infoB.Parent)
	assert.Equal(t, []NodeID{b.ID()}, infoA.Children)
	assert.Equal(t, NoNode, infoA.Parent)
	assert.Equal(t, 0, infoA.Depth)
	assert.Equal(t, 1, infoB.Depth)

}

func TestDetectorExcludesHiddenAndUnpickable(t *testing.T) {

	scene := NewScene("test")
	root := scene.AddNode("Armature", NoNode)
	hips := root.AddChild("Hips")
	hiddenArm := hips.AddChild("arm_hidden")
	lockedLeg := hips.AddChild("leg_locked")
	lockedLeg.AddChild("foot")

	hiddenArm.SetHidden(true, false)
	lockedLeg.SetPickingDisabled(true, false)

	scene.AddSkin(SkinComponent{Bones: []NodeID{hips.ID(), hiddenArm.ID(), lockedLeg.ID()}})

	detector, _, _ := newTestDetector(scene)
	ids := boneIDs(detector.DetectBones())

	assert.Contains(t, ids, hips.ID())
	assert.NotContains(t, ids, hiddenArm.ID())
	assert.NotContains(t, ids, lockedLeg.ID())

	// Both excluded nodes are counted by the skin pass, and again by the scene-wide pass.
	assert.Equal(t, 4, detector.ExcludedCount())

	for _, id := range ids {
		assert.False(t, scene.IsHidden(id) || scene.IsPickingDisabled(id))
	}

}

func TestDetectorAncestorNeedsCandidateSibling(t *testing.T) {

	scene := NewScene("test")
	world := scene.AddNode("World", NoNode)
	model := world.AddChild("Model")
	left := model.AddChild("L")
	right := model.AddChild("R")
	lone := world.AddChild("Props")
	lonely := lone.AddChild("P")

	scene.AddSkin(SkinComponent{Bones: []NodeID{left.ID(), right.ID(), lonely.ID()}})

	detector, _, _ := newTestDetector(scene)
	ids := boneIDs(detector.DetectBones())

	// Model branches into two skinned nodes, so it's pulled in when the second one is added.
	assert.Contains(t, ids, model.ID())
	// Props only has one skinned child, so the walk from P stops there; World has no candidate besides Model.
	assert.NotContains(t, ids, lone.ID())
	assert.NotContains(t, ids, world.ID())

	assert.Equal(t, model.ID(), detector.Bone(left.ID()).Parent)
	assert.ElementsMatch(t, []NodeID{left.ID(), right.ID()}, detector.Bone(model.ID()).Children)

}

func TestDetectorIsMemoizedPerFrame(t *testing.T) {

	scene := NewScene("test")
	spine := scene.AddNode("spine", NoNode)
	spine.AddChild("neck").AddChild("head")

	detector, clock, _ := newTestDetector(scene)

	first := detector.DetectBones()
	require.NotEmpty(t, first)

	// Changes within the same frame aren't seen.
	scene.AddNode("hand", spine.ID()).AddChild("finger")
	second := detector.DetectBones()
	assert.Equal(t, boneIDs(first), boneIDs(second))

	clock.Advance()
	third := detector.DetectBones()
	assert.Len(t, third, len(first)+1)

}

func TestDetectorSkipsDestroyedNodes(t *testing.T) {

	scene := NewScene("test")
	hips := scene.AddNode("Hips", NoNode)
	thigh := hips.AddChild("Thigh")
	scene.AddSkin(SkinComponent{Bones: []NodeID{hips.ID(), thigh.ID()}})

	thigh.Destroy()

	detector, _, _ := newTestDetector(scene)

	assert.NotPanics(t, func() {
		assert.Equal(t, []NodeID{hips.ID()}, boneIDs(detector.DetectBones()))
	})

}

func TestDetectorHumanoidRig(t *testing.T) {

	scene := NewScene("test")
	root := scene.AddNode("Avatar", NoNode)
	hips := root.AddChild("J_Hips")
	chest := hips.AddChild("J_Chest")
	head := chest.AddChild("J_Head")

	scene.AddRig(RigComponent{
		Name: "humanoid",
		Root: root.ID(),
		Humanoid: map[HumanBone]NodeID{
			HumanBoneHips:  hips.ID(),
			HumanBoneChest: chest.ID(),
			HumanBoneHead:  head.ID(),
		},
	})

	detector, _, state := newTestDetector(scene)
	state.SetBoneNamePatterns([]string{"nothing-matches"})

	bones := detector.DetectBones()

	// Resolved in the fixed humanoid slot order.
	assert.Equal(t, []NodeID{hips.ID(), chest.ID(), head.ID()}, boneIDs(bones))
	for _, b := range bones {
		assert.True(t, b.IsFromRig)
	}
	assert.Equal(t, 2, detector.Bone(head.ID()).Depth)

}

func TestDetectorGenericRigWalksSubtree(t *testing.T) {

	scene := NewScene("test")
	rigRoot := scene.AddNode("Rig", NoNode)
	upperArm := rigRoot.AddChild("UpperArm")
	lowerArm := upperArm.AddChild("LowerArm")
	lowerArm.AddChild("Hand")
	rigRoot.AddChild("Mesh")

	scene.AddRig(RigComponent{Name: "generic", Root: rigRoot.ID()})

	detector, _, _ := newTestDetector(scene)
	detector.DetectBones()

	require.NotNil(t, detector.Bone(upperArm.ID()))
	assert.True(t, detector.Bone(upperArm.ID()).IsFromRig)
	assert.True(t, detector.Bone(lowerArm.ID()).IsFromRig)
	// Hand matches, but it's a leaf; leaves only come in through the empty-node policy.
	assert.Nil(t, detector.Bone(scene.FindByName("Hand").ID()))
	assert.Nil(t, detector.Bone(scene.FindByName("Mesh").ID()))

}

func TestDetectorIncludeEmptyNodes(t *testing.T) {

	scene := NewScene("test")
	hand := scene.AddNode("hand", NoNode)
	tip := hand.AddChild("finger_tip")

	detector, clock, state := newTestDetector(scene)

	assert.Nil(t, detector.Bone(tip.ID()), "sanity")
	detector.DetectBones()
	assert.Nil(t, detector.Bone(tip.ID()))

	state.SetIncludeEmptyNodes(true)
	clock.Advance()
	detector.DetectBones()
	assert.NotNil(t, detector.Bone(tip.ID()))

}

func TestDetectorEmptySceneRescans(t *testing.T) {

	scene := NewScene("test")
	detector, _, _ := newTestDetector(scene)

	assert.Empty(t, detector.DetectBones())

	// An empty result isn't cached, so a bone added in the same frame is found.
	scene.AddNode("spine", NoNode).AddChild("neck")
	assert.NotEmpty(t, detector.DetectBones())

}

func TestDetectorNameMatchPullsInBranchingParent(t *testing.T) {

	scene := NewScene("test")
	root := scene.AddNode("Rootnode", NoNode)
	hips := root.AddChild("Hips")
	helper := root.AddChild("spine_helper")
	helper.AddChild("Socket")

	scene.AddSkin(SkinComponent{Bones: []NodeID{hips.ID()}})

	detector, _, _ := newTestDetector(scene)
	ids := boneIDs(detector.DetectBones())

	// Hips is walked first, before spine_helper is a candidate; the name match then finds Hips as its sibling.
	assert.ElementsMatch(t, []NodeID{hips.ID(), helper.ID(), root.ID()}, ids)
	assert.Equal(t, root.ID(), detector.Bone(helper.ID()).Parent)
	assert.Equal(t, 1, detector.Bone(hips.ID()).Depth)

}

func TestDetectorCountsEveryExcludedNode(t *testing.T) {

	scene := NewScene("test")
	rigRoot := scene.AddNode("Rig", NoNode)
	prop := rigRoot.AddChild("Prop")
	prop.AddChild("PropPart")
	rigRoot.AddChild("Decal")

	prop.SetHidden(true, false)
	scene.FindByName("Decal").SetPickingDisabled(true, false)

	scene.AddRig(RigComponent{Name: "generic", Root: rigRoot.ID()})

	detector, _, _ := newTestDetector(scene)
	detector.DetectBones()

	// The rig pass counts Prop (it branches), and the scene-wide pass counts both, even though neither name is bone-like.
	assert.Equal(t, 3, detector.ExcludedCount())

}
