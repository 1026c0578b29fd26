package boneoverlay

import "strings"

// HumanBone names a standard humanoid bone slot. The names follow the VRM humanoid naming scheme.
type HumanBone string

const (
	HumanBoneHips       HumanBone = "hips"
	HumanBoneSpine      HumanBone = "spine"
	HumanBoneChest      HumanBone = "chest"
	HumanBoneUpperChest HumanBone = "upperChest"
	HumanBoneNeck       HumanBone = "neck"
	HumanBoneHead       HumanBone = "head"
	HumanBoneLeftEye    HumanBone = "leftEye"
	HumanBoneRightEye   HumanBone = "rightEye"
	HumanBoneJaw        HumanBone = "jaw"

	HumanBoneLeftUpperLeg  HumanBone = "leftUpperLeg"
	HumanBoneLeftLowerLeg  HumanBone = "leftLowerLeg"
	HumanBoneLeftFoot      HumanBone = "leftFoot"
	HumanBoneLeftToes      HumanBone = "leftToes"
	HumanBoneRightUpperLeg HumanBone = "rightUpperLeg"
	HumanBoneRightLowerLeg HumanBone = "rightLowerLeg"
	HumanBoneRightFoot     HumanBone = "rightFoot"
	HumanBoneRightToes     HumanBone = "rightToes"

	HumanBoneLeftShoulder  HumanBone = "leftShoulder"
	HumanBoneLeftUpperArm  HumanBone = "leftUpperArm"
	HumanBoneLeftLowerArm  HumanBone = "leftLowerArm"
	HumanBoneLeftHand      HumanBone = "leftHand"
	HumanBoneRightShoulder HumanBone = "rightShoulder"
	HumanBoneRightUpperArm HumanBone = "rightUpperArm"
	HumanBoneRightLowerArm HumanBone = "rightLowerArm"
	HumanBoneRightHand     HumanBone = "rightHand"
)

// HumanBones lists every standard humanoid bone slot in the fixed order humanoid rigs are resolved in.
var HumanBones = buildHumanBones()

func buildHumanBones() []HumanBone {

	bones := []HumanBone{
		HumanBoneHips, HumanBoneSpine, HumanBoneChest, HumanBoneUpperChest, HumanBoneNeck, HumanBoneHead,
		HumanBoneLeftEye, HumanBoneRightEye, HumanBoneJaw,
		HumanBoneLeftUpperLeg, HumanBoneLeftLowerLeg, HumanBoneLeftFoot, HumanBoneLeftToes,
		HumanBoneRightUpperLeg, HumanBoneRightLowerLeg, HumanBoneRightFoot, HumanBoneRightToes,
		HumanBoneLeftShoulder, HumanBoneLeftUpperArm, HumanBoneLeftLowerArm, HumanBoneLeftHand,
		HumanBoneRightShoulder, HumanBoneRightUpperArm, HumanBoneRightLowerArm, HumanBoneRightHand,
	}

	// Finger slots: left then right, thumb to little, base to tip.
	for _, side := range []string{"left", "right"} {
		for _, finger := range []string{"Thumb", "Index", "Middle", "Ring", "Little"} {
			segments := []string{"Proximal", "Intermediate", "Distal"}
			if finger == "Thumb" {
				segments = []string{"Metacarpal", "Proximal", "Distal"}
			}
			for _, segment := range segments {
				bones = append(bones, HumanBone(side+finger+segment))
			}
		}
	}

	return bones

}

// ParseHumanBone matches a humanoid bone name case-insensitively against the standard slots. VRM 0.x names its thumb slots
// "Proximal, Intermediate, Distal" where VRM 1.0 uses "Metacarpal, Proximal, Distal"; when legacyThumbs is true, the older names are
// shifted onto the newer ones.
func ParseHumanBone(name string, legacyThumbs bool) (HumanBone, bool) {

	lower := strings.ToLower(name)

	if legacyThumbs && strings.Contains(lower, "thumb") {
		if strings.HasSuffix(lower, "proximal") {
			lower = strings.TrimSuffix(lower, "proximal") + "metacarpal"
		} else if strings.HasSuffix(lower, "intermediate") {
			lower = strings.TrimSuffix(lower, "intermediate") + "proximal"
		}
	}

	for _, bone := range HumanBones {
		if strings.ToLower(string(bone)) == lower {
			return bone, true
		}
	}

	return "", false

}

// RigComponent represents an animation rig attached to a node. A humanoid rig maps standard bone slots to nodes;
// a generic rig only knows its root, and its bones are found by walking the root's subtree.
type RigComponent struct {
	Name     string
	Root     NodeID
	Humanoid map[HumanBone]NodeID // nil for generic rigs
}

// IsHumanoid returns if the rig carries a humanoid bone map.
func (rig RigComponent) IsHumanoid() bool {
	return rig.Humanoid != nil
}

// Bone returns the node mapped to the given humanoid slot, or NoNode if the slot is empty (or the rig is generic).
func (rig RigComponent) Bone(bone HumanBone) NodeID {
	if rig.Humanoid == nil {
		return NoNode
	}
	return rig.Humanoid[bone]
}

// SkinComponent represents a skinned mesh binding; Bones are the nodes the mesh deforms with, in joint order.
type SkinComponent struct {
	Name  string
	Owner NodeID
	Bones []NodeID
}
