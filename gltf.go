package boneoverlay

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/qmuntal/gltf"
)

// Extension names of the VRM humanoid avatar formats.
const (
	extensionVRM0 = "VRM"
	extensionVRM1 = "VRMC_vrm"
)

// ErrInvalidHierarchy is returned when a glTF document's node hierarchy isn't a forest (a node has two parents, a node is its own
// ancestor, or a child index is out of range).
var ErrInvalidHierarchy = errors.New("invalid glTF node hierarchy")

type GLTFLoadOptions struct {
	// SceneIndex is the index of the glTF scene to load. Defaults to -1, which loads the document's default scene, or every
	// root node if the document doesn't name one.
	SceneIndex int
	// AnimationRigs creates a generic RigComponent for every hierarchy targeted by the document's animations.
	AnimationRigs bool
	// HumanoidRigs creates a humanoid RigComponent from a VRM (0.x or 1.0) humanoid extension, if the document has one.
	HumanoidRigs bool
	// Logger receives warnings about anything in the document that had to be skipped. Defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultGLTFLoadOptions creates an instance of GLTFLoadOptions with some sensible defaults.
func DefaultGLTFLoadOptions() *GLTFLoadOptions {
	return &GLTFLoadOptions{
		SceneIndex:    -1,
		AnimationRigs: true,
		HumanoidRigs:  true,
	}
}

// LoadGLTFFile loads a .gltf or .glb file from the filepath given (along with any external buffers it references), using a
// provided GLTFLoadOptions struct to alter how the file is loaded. Passing nil for loadOptions will load the file using default
// load options. LoadGLTFFile will return a Scene, and an error if the process fails.
func LoadGLTFFile(path string, loadOptions *GLTFLoadOptions) (*Scene, error) {

	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("boneoverlay: opening %s: %w", path, err)
	}

	return LoadGLTFDocument(doc, loadOptions)

}

// LoadGLTFData loads a .gltf or .glb file from the byte data given. See LoadGLTFFile().
func LoadGLTFData(data []byte, loadOptions *GLTFLoadOptions) (*Scene, error) {

	decoder := gltf.NewDecoder(bytes.NewReader(data))

	doc := new(gltf.Document)

	if err := decoder.Decode(doc); err != nil {
		return nil, fmt.Errorf("boneoverlay: decoding glTF: %w", err)
	}

	return LoadGLTFDocument(doc, loadOptions)

}

// LoadGLTFDocument builds a Scene from an already decoded glTF document: the node hierarchy with each node's transform,
// the document's skins, and (depending on the load options) rigs for its animations and VRM humanoid definition.
// Nodes can be flagged through their extras: `"hidden": true` hides a node, and `"pickable": false` disables picking on it.
func LoadGLTFDocument(doc *gltf.Document, loadOptions *GLTFLoadOptions) (*Scene, error) {

	if loadOptions == nil {
		loadOptions = DefaultGLTFLoadOptions()
	}

	logger := loadOptions.Logger
	if logger == nil {
		logger = slog.Default()
	}

	parents, err := gltfParents(doc)
	if err != nil {
		return nil, err
	}

	sceneName := "Scene"
	roots := []int{}

	sceneIndex := loadOptions.SceneIndex
	if sceneIndex < 0 && doc.Scene != nil {
		sceneIndex = *doc.Scene
	}

	if sceneIndex >= 0 {

		if sceneIndex >= len(doc.Scenes) {
			return nil, fmt.Errorf("boneoverlay: scene %d doesn't exist (the document has %d)", sceneIndex, len(doc.Scenes))
		}

		gltfScene := doc.Scenes[sceneIndex]
		if gltfScene.Name != "" {
			sceneName = gltfScene.Name
		}

		for _, n := range gltfScene.Nodes {
			if n < 0 || n >= len(doc.Nodes) {
				return nil, fmt.Errorf("boneoverlay: scene %d: node %d: %w", sceneIndex, n, ErrInvalidHierarchy)
			}
			roots = append(roots, n)
		}

	} else {

		for i := range doc.Nodes {
			if parents[i] < 0 {
				roots = append(roots, i)
			}
		}

	}

	scene := NewScene(sceneName)

	// ids maps glTF node indices to Scene nodes; nodes outside of the loaded scene stay NoNode.
	ids := make([]NodeID, len(doc.Nodes))

	var create func(index int, parent NodeID)

	create = func(index int, parent NodeID) {

		if ids[index] != NoNode {
			return
		}

		gltfNode := doc.Nodes[index]

		name := gltfNode.Name
		if name == "" {
			name = "Node" + strconv.Itoa(index)
		}

		node := scene.AddNode(name, parent)
		node.SetData(index)
		ids[index] = node.ID()

		setGLTFTransform(node, gltfNode)

		extras := gltfExtras(gltfNode.Extras)
		if hidden, ok := extras["hidden"].(bool); ok && hidden {
			node.SetHidden(true, false)
		}
		if pickable, ok := extras["pickable"].(bool); ok && !pickable {
			node.SetPickingDisabled(true, false)
		}

		for _, child := range gltfNode.Children {
			create(child, node.ID())
		}

	}

	for _, root := range roots {
		create(root, NoNode)
	}

	// Skins

	skinOwners := map[int]int{}
	for i, n := range doc.Nodes {
		if n.Skin != nil {
			if _, exists := skinOwners[*n.Skin]; !exists {
				skinOwners[*n.Skin] = i
			}
		}
	}

	for skinIndex, skin := range doc.Skins {

		component := SkinComponent{Name: skin.Name}
		if component.Name == "" {
			component.Name = "Skin" + strconv.Itoa(skinIndex)
		}

		if owner, ok := skinOwners[skinIndex]; ok {
			component.Owner = ids[owner]
		}

		for _, joint := range skin.Joints {
			if joint < 0 || joint >= len(doc.Nodes) {
				return nil, fmt.Errorf("boneoverlay: skin %q references node %d, which doesn't exist", component.Name, joint)
			}
			if ids[joint] != NoNode {
				component.Bones = append(component.Bones, ids[joint])
			}
		}

		scene.AddSkin(component)

	}

	topmost := func(index int) int {
		for parents[index] >= 0 {
			index = parents[index]
		}
		return index
	}

	// Animations become generic rigs, one for each hierarchy they animate.

	if loadOptions.AnimationRigs {

		rigRoots := map[int]bool{}

		for animIndex, anim := range doc.Animations {

			name := anim.Name
			if name == "" {
				name = "Animation" + strconv.Itoa(animIndex)
			}

			for _, channel := range anim.Channels {

				if channel.Target.Node == nil {
					continue
				}

				target := *channel.Target.Node
				if target < 0 || target >= len(doc.Nodes) {
					logger.Warn("animation channel targets a missing node", "animation", name, "node", target)
					continue
				}

				root := topmost(target)
				if rigRoots[root] || ids[root] == NoNode {
					continue
				}

				rigRoots[root] = true
				scene.AddRig(RigComponent{Name: name, Root: ids[root]})

			}

		}

	}

	if loadOptions.HumanoidRigs {

		humanoid, err := gltfHumanoid(doc, logger)
		if err != nil {
			return nil, err
		}

		if len(humanoid) > 0 {

			rig := RigComponent{Name: "Humanoid", Humanoid: map[HumanBone]NodeID{}}

			for bone, index := range humanoid {
				if index < 0 || index >= len(doc.Nodes) || ids[index] == NoNode {
					logger.Warn("humanoid bone refers to a node outside of the scene", "bone", bone, "node", index)
					continue
				}
				rig.Humanoid[bone] = ids[index]
			}

			if hips, ok := humanoid[HumanBoneHips]; ok && hips >= 0 && hips < len(doc.Nodes) {
				rig.Root = ids[topmost(hips)]
			}

			if len(rig.Humanoid) > 0 {
				scene.AddRig(rig)
			}

		}

	}

	return scene, nil

}

// gltfParents returns each node's parent index (or -1), making sure the hierarchy is a forest.
func gltfParents(doc *gltf.Document) ([]int, error) {

	parents := make([]int, len(doc.Nodes))
	for i := range parents {
		parents[i] = -1
	}

	for i, node := range doc.Nodes {
		for _, child := range node.Children {
			if child < 0 || child >= len(doc.Nodes) {
				return nil, fmt.Errorf("boneoverlay: node %d has child %d: %w", i, child, ErrInvalidHierarchy)
			}
			if parents[child] >= 0 {
				return nil, fmt.Errorf("boneoverlay: node %d has more than one parent: %w", child, ErrInvalidHierarchy)
			}
			parents[child] = i
		}
	}

	for i := range doc.Nodes {
		steps := 0
		for p := parents[i]; p >= 0; p = parents[p] {
			steps++
			if p == i || steps > len(doc.Nodes) {
				return nil, fmt.Errorf("boneoverlay: node %d is its own ancestor: %w", i, ErrInvalidHierarchy)
			}
		}
	}

	return parents, nil

}

func setGLTFTransform(node *Node, gltfNode *gltf.Node) {

	if matrix := gltfNode.MatrixOrDefault(); matrix != gltf.DefaultMatrix {

		// glTF stores column-major matrices for column vectors, which is exactly a row-major matrix for row vectors.
		mat := NewMatrix4()
		for i := 0; i < 4; i++ {
			for j := 0; j < 4; j++ {
				mat[i][j] = float64(matrix[i*4+j])
			}
		}

		position, scale, rotation := mat.Decompose()
		node.SetLocalPositionVec(position)
		node.SetLocalScale(scale.X, scale.Y, scale.Z)
		node.SetLocalRotation(rotation)
		return

	}

	t := gltfNode.TranslationOrDefault()
	s := gltfNode.ScaleOrDefault()
	r := gltfNode.RotationOrDefault()

	node.SetLocalPosition(float64(t[0]), float64(t[1]), float64(t[2]))
	node.SetLocalScale(float64(s[0]), float64(s[1]), float64(s[2]))
	node.SetLocalRotation(NewMatrix4FromQuaternion(float64(r[0]), float64(r[1]), float64(r[2]), float64(r[3])))

}

// gltfExtras returns a node's extras as a map, whether the decoder left them raw or already unmarshalled them.
func gltfExtras(extras any) map[string]any {
	out := map[string]any{}
	if extras == nil {
		return out
	}
	if m, ok := extras.(map[string]any); ok {
		return m
	}
	if err := remarshal(extras, &out); err != nil {
		return map[string]any{}
	}
	return out
}

// remarshal decodes an extension or extras value of unknown type (raw JSON or already decoded) into target.
func remarshal(value any, target any) error {

	var data []byte

	switch v := value.(type) {
	case json.RawMessage:
		data = v
	case []byte:
		data = v
	default:
		var err error
		if data, err = json.Marshal(v); err != nil {
			return err
		}
	}

	return json.Unmarshal(data, target)

}

type vrm0Extension struct {
	Humanoid struct {
		HumanBones []struct {
			Bone string `json:"bone"`
			Node *int   `json:"node"`
		} `json:"humanBones"`
	} `json:"humanoid"`
}

type vrm1Extension struct {
	Humanoid struct {
		HumanBones map[string]struct {
			Node *int `json:"node"`
		} `json:"humanBones"`
	} `json:"humanoid"`
}

// gltfHumanoid reads the humanoid bone map from a document's VRM extension, preferring VRM 1.0 if both are present.
func gltfHumanoid(doc *gltf.Document, logger *slog.Logger) (map[HumanBone]int, error) {

	out := map[HumanBone]int{}

	if raw, ok := doc.Extensions[extensionVRM1]; ok {

		ext := vrm1Extension{}
		if err := remarshal(raw, &ext); err != nil {
			return nil, fmt.Errorf("boneoverlay: reading %s extension: %w", extensionVRM1, err)
		}

		for name, bone := range ext.Humanoid.HumanBones {
			slot, known := ParseHumanBone(name, false)
			if !known || bone.Node == nil {
				logger.Warn("skipping unknown humanoid bone", "bone", name)
				continue
			}
			out[slot] = *bone.Node
		}

		return out, nil

	}

	if raw, ok := doc.Extensions[extensionVRM0]; ok {

		ext := vrm0Extension{}
		if err := remarshal(raw, &ext); err != nil {
			return nil, fmt.Errorf("boneoverlay: reading %s extension: %w", extensionVRM0, err)
		}

		for _, bone := range ext.Humanoid.HumanBones {
			slot, known := ParseHumanBone(bone.Bone, true)
			if !known || bone.Node == nil {
				logger.Warn("skipping unknown humanoid bone", "bone", bone.Bone)
				continue
			}
			out[slot] = *bone.Node
		}

	}

	return out, nil

}
