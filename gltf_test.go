package boneoverlay

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gltfJSON map[string]any

func encodeGLTF(t testing.TB, doc gltfJSON) []byte {
	t.Helper()
	if _, ok := doc["asset"]; !ok {
		doc["asset"] = gltfJSON{"version": "2.0"}
	}
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	return data
}

func armatureGLTF() gltfJSON {
	half := math.Sqrt2 / 2
	return gltfJSON{
		"scene":  0,
		"scenes": []any{gltfJSON{"name": "Main", "nodes": []int{0, 5}}},
		"nodes": []any{
			gltfJSON{"name": "Armature", "children": []int{1}, "translation": []float64{0, 1, 0}},
			gltfJSON{"name": "Hips", "children": []int{2, 3}},
			gltfJSON{"name": "Spine", "children": []int{4}, "rotation": []float64{0, half, 0, half}},
			gltfJSON{"name": "Cape", "extras": gltfJSON{"hidden": true}},
			gltfJSON{"name": "Head", "translation": []float64{0, 0, 1}, "extras": gltfJSON{"pickable": false}},
			gltfJSON{"name": "Body", "skin": 0},
		},
		"skins": []any{gltfJSON{"name": "BodySkin", "joints": []int{1, 2, 4}}},
	}
}

func TestLoadGLTFHierarchy(t *testing.T) {

	scene, err := LoadGLTFData(encodeGLTF(t, armatureGLTF()), nil)
	require.NoError(t, err)

	assert.Equal(t, "Main", scene.Title)
	assert.Len(t, scene.Roots(), 2)

	head := scene.Get("Armature/Hips/Spine/Head")
	require.NotNil(t, head)

	// The spine's quarter turn around +Y swings the head from +Z over to +X.
	assert.True(t, head.WorldPosition().Equals(NewVector(1, 1, 0)), head.WorldPosition().String())
	assert.Equal(t, 4, head.Data())

	assert.True(t, scene.Get("Armature/Hips/Cape").Hidden())
	assert.True(t, head.PickingDisabled())
	assert.False(t, head.Hidden())

	require.Len(t, scene.Skins(), 1)
	skin := scene.Skins()[0]
	assert.Equal(t, "BodySkin", skin.Name)
	assert.Equal(t, scene.FindByName("Body").ID(), skin.Owner)
	assert.Equal(t, []NodeID{scene.FindByName("Hips").ID(), scene.FindByName("Spine").ID(), head.ID()}, skin.Bones)

}

func TestLoadGLTFMatrixTransform(t *testing.T) {

	data := encodeGLTF(t, gltfJSON{
		"nodes": []any{
			gltfJSON{"name": "Scaled", "matrix": []float64{2, 0, 0, 0, 0, 2, 0, 0, 0, 0, 2, 0, 3, 4, 5, 1}, "children": []int{1}},
			gltfJSON{"name": "Child", "translation": []float64{1, 0, 0}},
		},
	})

	scene, err := LoadGLTFData(data, nil)
	require.NoError(t, err)

	scaled := scene.FindByName("Scaled")
	assert.True(t, scaled.WorldPosition().Equals(NewVector(3, 4, 5)))
	assert.True(t, scaled.LocalScale().Equals(NewVector(2, 2, 2)))
	assert.True(t, scaled.LocalPosition().Equals(NewVector(3, 4, 5)))
	assert.True(t, scaled.LocalRotation().IsIdentity())

	child := scene.FindByName("Child")
	assert.True(t, child.LocalPosition().Equals(NewVector(1, 0, 0)))
	assert.True(t, child.WorldPosition().Equals(NewVector(5, 4, 5)))

}

func TestLoadGLTFAnimationRig(t *testing.T) {

	data := encodeGLTF(t, gltfJSON{
		"nodes": []any{
			gltfJSON{"name": "Rig", "children": []int{1}},
			gltfJSON{"name": "UpperArm", "children": []int{2}},
			gltfJSON{"name": "LowerArm"},
			gltfJSON{"name": "Prop"},
		},
		"animations": []any{
			gltfJSON{
				"name": "Wave",
				"channels": []any{
					gltfJSON{"sampler": 0, "target": gltfJSON{"node": 2, "path": "rotation"}},
					gltfJSON{"sampler": 0, "target": gltfJSON{"node": 1, "path": "rotation"}},
				},
				"samplers": []any{gltfJSON{"input": 0, "output": 1}},
			},
		},
	})

	scene, err := LoadGLTFData(data, nil)
	require.NoError(t, err)

	require.Len(t, scene.Rigs(), 1)
	rig := scene.Rigs()[0]
	assert.Equal(t, "Wave", rig.Name)
	assert.False(t, rig.IsHumanoid())
	assert.Equal(t, scene.FindByName("Rig").ID(), rig.Root)

	options := DefaultGLTFLoadOptions()
	options.AnimationRigs = false
	scene, err = LoadGLTFData(data, options)
	require.NoError(t, err)
	assert.Empty(t, scene.Rigs())

}

func vrmNodes() []any {
	return []any{
		gltfJSON{"name": "Avatar", "children": []int{1}},
		gltfJSON{"name": "J_Bip_C_Hips", "children": []int{2, 3}},
		gltfJSON{"name": "J_Bip_C_Head"},
		gltfJSON{"name": "J_Bip_L_Thumb1"},
	}
}

func TestLoadGLTFVRM1Humanoid(t *testing.T) {

	data := encodeGLTF(t, gltfJSON{
		"extensionsUsed": []string{"VRMC_vrm"},
		"extensions": gltfJSON{
			"VRMC_vrm": gltfJSON{
				"specVersion": "1.0",
				"humanoid": gltfJSON{
					"humanBones": gltfJSON{
						"hips":                gltfJSON{"node": 1},
						"head":                gltfJSON{"node": 2},
						"leftThumbMetacarpal": gltfJSON{"node": 3},
						"tail":                gltfJSON{"node": 0},
					},
				},
			},
		},
		"nodes": vrmNodes(),
	})

	scene, err := LoadGLTFData(data, nil)
	require.NoError(t, err)

	require.Len(t, scene.Rigs(), 1)
	rig := scene.Rigs()[0]
	require.True(t, rig.IsHumanoid())

	assert.Len(t, rig.Humanoid, 3)
	assert.Equal(t, scene.FindByName("J_Bip_C_Hips").ID(), rig.Bone(HumanBoneHips))
	assert.Equal(t, scene.FindByName("J_Bip_L_Thumb1").ID(), rig.Bone("leftThumbMetacarpal"))
	assert.Equal(t, scene.FindByName("Avatar").ID(), rig.Root)

	// The humanoid bones are detected even though the thumb is a leaf with a name no pattern matches.
	detector := NewBoneDetector(scene, &FrameCounter{}, NewOverlayState(nil, nil), nil)
	detector.DetectBones()
	assert.NotNil(t, detector.Bone(scene.FindByName("J_Bip_L_Thumb1").ID()))
	assert.True(t, detector.Bone(scene.FindByName("J_Bip_C_Head").ID()).IsFromRig)

}

func TestLoadGLTFVRM0Humanoid(t *testing.T) {

	data := encodeGLTF(t, gltfJSON{
		"extensionsUsed": []string{"VRM"},
		"extensions": gltfJSON{
			"VRM": gltfJSON{
				"humanoid": gltfJSON{
					"humanBones": []any{
						gltfJSON{"bone": "hips", "node": 1},
						gltfJSON{"bone": "head", "node": 2},
						gltfJSON{"bone": "leftThumbProximal", "node": 3},
					},
				},
			},
		},
		"nodes": vrmNodes(),
	})

	scene, err := LoadGLTFData(data, nil)
	require.NoError(t, err)

	require.Len(t, scene.Rigs(), 1)
	rig := scene.Rigs()[0]
	assert.Equal(t, scene.FindByName("J_Bip_L_Thumb1").ID(), rig.Bone("leftThumbMetacarpal"))
	assert.Equal(t, scene.FindByName("J_Bip_C_Head").ID(), rig.Bone(HumanBoneHead))

	options := DefaultGLTFLoadOptions()
	options.HumanoidRigs = false
	scene, err = LoadGLTFData(data, options)
	require.NoError(t, err)
	assert.Empty(t, scene.Rigs())

}

func TestLoadGLTFErrors(t *testing.T) {

	_, err := LoadGLTFData([]byte("{not json"), nil)
	assert.Error(t, err)

	_, err = LoadGLTFData(encodeGLTF(t, gltfJSON{
		"nodes": []any{gltfJSON{"name": "A", "children": []int{7}}},
	}), nil)
	assert.True(t, errors.Is(err, ErrInvalidHierarchy))

	_, err = LoadGLTFData(encodeGLTF(t, gltfJSON{
		"nodes": []any{
			gltfJSON{"name": "A", "children": []int{2}},
			gltfJSON{"name": "B", "children": []int{2}},
			gltfJSON{"name": "C"},
		},
	}), nil)
	assert.True(t, errors.Is(err, ErrInvalidHierarchy))

	_, err = LoadGLTFData(encodeGLTF(t, gltfJSON{
		"nodes": []any{
			gltfJSON{"name": "A", "children": []int{1}},
			gltfJSON{"name": "B", "children": []int{0}},
		},
	}), nil)
	assert.True(t, errors.Is(err, ErrInvalidHierarchy))

	options := DefaultGLTFLoadOptions()
	options.SceneIndex = 3
	_, err = LoadGLTFData(encodeGLTF(t, armatureGLTF()), options)
	assert.Error(t, err)

	_, err = LoadGLTFFile(filepath.Join(t.TempDir(), "missing.gltf"), nil)
	assert.Error(t, err)

}

func TestLoadGLTFFile(t *testing.T) {

	path := filepath.Join(t.TempDir(), "armature.gltf")
	require.NoError(t, os.WriteFile(path, encodeGLTF(t, armatureGLTF()), 0o644))

	scene, err := LoadGLTFFile(path, nil)
	require.NoError(t, err)
	assert.NotNil(t, scene.Get("Armature/Hips"))

}

func TestParseHumanBone(t *testing.T) {

	bone, ok := ParseHumanBone("LeftUpperArm", false)
	assert.True(t, ok)
	assert.Equal(t, HumanBoneLeftUpperArm, bone)

	bone, ok = ParseHumanBone("rightThumbIntermediate", true)
	assert.True(t, ok)
	assert.Equal(t, HumanBone("rightThumbProximal"), bone)

	// Without the legacy mapping, there's no such thumb slot.
	_, ok = ParseHumanBone("rightThumbIntermediate", false)
	assert.False(t, ok)

	_, ok = ParseHumanBone("tail", false)
	assert.False(t, ok)

}

func BenchmarkLoadGLTFData(b *testing.B) {
	data := encodeGLTF(b, armatureGLTF())
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	for i := 0; i < b.N; i++ {
		if _, err := LoadGLTFData(data, nil); err != nil {
			b.Fatal(err)
		}
	}
}
