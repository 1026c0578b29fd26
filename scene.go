package boneoverlay

import "strings"

// Scene is an arena-backed scene graph. It owns every Node by ID, keeps the skin and rig components attached to them,
// and implements the SceneGraph queries the overlay reads from.
type Scene struct {
	Title  string
	nodes  map[NodeID]*Node
	order  []NodeID // creation order of live nodes
	roots  []NodeID // top-level nodes, in order
	skins  []SkinComponent
	rigs   []RigComponent
	nextID NodeID
}

// NewScene creates a new, empty Scene with the given title.
func NewScene(name string) *Scene {
	return &Scene{
		Title:  name,
		nodes:  map[NodeID]*Node{},
		nextID: 1,
	}
}

// AddNode creates a new Node with the given name under the parent provided (or at the top level, if parent is NoNode or
// doesn't exist) and returns it.
func (scene *Scene) AddNode(name string, parent NodeID) *Node {

	node := newNode(scene, scene.nextID, name)
	scene.nextID++

	scene.nodes[node.id] = node
	scene.order = append(scene.order, node.id)

	if p := scene.Node(parent); p != nil {
		node.parent = p.id
		p.children = append(p.children, node.id)
	} else {
		scene.roots = append(scene.roots, node.id)
	}

	return node

}

// Node returns the live Node with the given ID, or nil.
func (scene *Scene) Node(id NodeID) *Node {
	if id == NoNode {
		return nil
	}
	return scene.nodes[id]
}

// Roots returns the top-level Nodes of the Scene.
func (scene *Scene) Roots() []*Node {
	out := make([]*Node, 0, len(scene.roots))
	for _, id := range scene.roots {
		out = append(out, scene.nodes[id])
	}
	return out
}

// Get finds a Node by its absolute path (i.e. "Armature/Hips/Spine"). See Node.Get().
func (scene *Scene) Get(path string) *Node {

	path = strings.Trim(strings.TrimSpace(path), "/")
	first, rest, _ := strings.Cut(path, "/")

	for _, root := range scene.Roots() {
		if root.Name() == strings.TrimSpace(first) {
			return root.Get(rest)
		}
	}

	return nil

}

// FindByName returns the first live Node (in creation order) with the given name, or nil.
func (scene *Scene) FindByName(name string) *Node {
	for _, id := range scene.order {
		if node := scene.nodes[id]; node.name == name {
			return node
		}
	}
	return nil
}

func (scene *Scene) destroy(node *Node) {

	for _, child := range node.Children() {
		scene.destroy(child)
	}

	if parent := node.Parent(); parent != nil {
		parent.children = removeID(parent.children, node.id)
	} else {
		scene.roots = removeID(scene.roots, node.id)
	}

	node.alive = false
	node.children = nil
	delete(scene.nodes, node.id)
	scene.order = removeID(scene.order, node.id)

}

func removeID(ids []NodeID, id NodeID) []NodeID {
	for i, existing := range ids {
		if existing == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

// AddSkin attaches a skin component to the Scene.
func (scene *Scene) AddSkin(skin SkinComponent) {
	scene.skins = append(scene.skins, skin)
}

// AddRig attaches a rig component to the Scene.
func (scene *Scene) AddRig(rig RigComponent) {
	scene.rigs = append(scene.rigs, rig)
}

// HierarchyAsString returns the hierarchy of every top-level Node in the Scene.
func (scene *Scene) HierarchyAsString() string {
	var str strings.Builder
	for _, root := range scene.Roots() {
		str.WriteString(root.HierarchyAsString())
	}
	return str.String()
}

// Nodes returns every live node's ID in creation order.
func (scene *Scene) Nodes() []NodeID {
	return append([]NodeID(nil), scene.order...)
}

// Skins returns the Scene's skin components. Bone IDs in a skin may refer to destroyed nodes.
func (scene *Scene) Skins() []SkinComponent {
	return scene.skins
}

// Rigs returns the Scene's rig components.
func (scene *Scene) Rigs() []RigComponent {
	return scene.rigs
}

// Alive returns if the ID refers to a node that still exists.
func (scene *Scene) Alive(id NodeID) bool {
	return scene.Node(id) != nil
}

// Name returns the node's name, or an empty string for dead IDs.
func (scene *Scene) Name(id NodeID) string {
	if node := scene.Node(id); node != nil {
		return node.name
	}
	return ""
}

// Parent returns the node's parent ID, or NoNode.
func (scene *Scene) Parent(id NodeID) NodeID {
	if node := scene.Node(id); node != nil {
		return node.parent
	}
	return NoNode
}

// Children returns the IDs of the node's direct children.
func (scene *Scene) Children(id NodeID) []NodeID {
	if node := scene.Node(id); node != nil {
		return append([]NodeID(nil), node.children...)
	}
	return nil
}

// WorldPosition returns the node's world position.
func (scene *Scene) WorldPosition(id NodeID) Vector {
	if node := scene.Node(id); node != nil {
		return node.WorldPosition()
	}
	return Vector{}
}

// IsHidden returns if the node is hidden.
func (scene *Scene) IsHidden(id NodeID) bool {
	if node := scene.Node(id); node != nil {
		return node.hidden
	}
	return false
}

// IsPickingDisabled returns if the node has picking disabled.
func (scene *Scene) IsPickingDisabled(id NodeID) bool {
	if node := scene.Node(id); node != nil {
		return node.pickingDisabled
	}
	return false
}
