package boneoverlay

import (
	"strconv"
	"strings"
)

// Node is a single entry in a Scene's node arena. Nodes refer to their parent and children by NodeID rather than by pointer,
// so a Node that has been destroyed can't be reached through its old relatives; holding on to a *Node after calling Destroy()
// is allowed, but it will report !Alive() and its transform will no longer update.
type Node struct {
	id               NodeID
	name             string
	scene            *Scene
	parent           NodeID
	children         []NodeID
	position         Vector
	scale            Vector
	rotation         Matrix4
	hidden           bool
	pickingDisabled  bool
	cachedTransform  Matrix4
	isTransformDirty bool
	alive            bool
	data             any // A place to store a pointer to something if you need it
}

func newNode(scene *Scene, id NodeID, name string) *Node {
	return &Node{
		id:               id,
		name:             name,
		scene:            scene,
		scale:            Vector{1, 1, 1, 0},
		rotation:         NewMatrix4(),
		cachedTransform:  NewMatrix4(),
		isTransformDirty: true,
		alive:            true,
	}
}

// ID returns the Node's unique ID within its Scene.
func (node *Node) ID() NodeID {
	return node.id
}

// Name returns the object's name.
func (node *Node) Name() string {
	return node.name
}

// Scene returns the Scene the Node belongs to.
func (node *Node) Scene() *Scene {
	return node.scene
}

// Alive returns false once the Node has been destroyed.
func (node *Node) Alive() bool {
	return node.alive
}

// SetData sets user-defined data on the Node.
func (node *Node) SetData(data any) {
	node.data = data
}

// Data returns the user-defined data set on the Node.
func (node *Node) Data() any {
	return node.data
}

// Parent returns the Node's parent, or nil if it's a top-level node.
func (node *Node) Parent() *Node {
	return node.scene.Node(node.parent)
}

// Children returns the Node's direct children, in order.
func (node *Node) Children() []*Node {
	out := make([]*Node, 0, len(node.children))
	for _, id := range node.children {
		if child := node.scene.Node(id); child != nil {
			out = append(out, child)
		}
	}
	return out
}

// AddChild creates a new Node with the given name parented to this one and returns it.
func (node *Node) AddChild(name string) *Node {
	return node.scene.AddNode(name, node.id)
}

// Destroy removes the Node and all of its recursive children from the Scene. Their IDs stay invalid forever afterwards.
func (node *Node) Destroy() {
	if !node.alive {
		return
	}
	node.scene.destroy(node)
}

// Transform returns a Matrix4 indicating the global position, rotation, and scale of the object, transforming it by any parents'.
// If there's no change between the previous Transform() call and this one, Transform() will return a cached version of the
// transform for efficiency.
func (node *Node) Transform() Matrix4 {

	// S * R * T * Parent

	if !node.isTransformDirty {
		return node.cachedTransform
	}

	transform := NewMatrix4Scale(node.scale.X, node.scale.Y, node.scale.Z)
	transform = transform.Mult(node.rotation)
	transform = transform.Mult(NewMatrix4Translate(node.position.X, node.position.Y, node.position.Z))

	if parent := node.Parent(); parent != nil {
		transform = transform.Mult(parent.Transform())
	}

	node.cachedTransform = transform
	node.isTransformDirty = false

	return transform

}

// dirtyTransform sets this Node and all recursive children's isTransformDirty flags to be true, indicating that they need to be
// rebuilt. This should be called when modifying the transformation properties (position, scale, rotation) of the Node.
func (node *Node) dirtyTransform() {

	for _, child := range node.Children() {
		child.dirtyTransform()
	}

	node.isTransformDirty = true

}

// LocalPosition returns the Node's position relative to its parent (or the world origin, for top-level nodes).
func (node *Node) LocalPosition() Vector {
	return node.position
}

// SetLocalPosition sets the object's local position (position relative to its parent).
func (node *Node) SetLocalPosition(x, y, z float64) {
	node.SetLocalPositionVec(Vector{X: x, Y: y, Z: z})
}

// SetLocalPositionVec sets the object's local position (position relative to its parent) using a Vector.
func (node *Node) SetLocalPositionVec(position Vector) {
	node.position = position
	node.dirtyTransform()
}

// LocalScale returns the object's local scale.
func (node *Node) LocalScale() Vector {
	return node.scale
}

// SetLocalScale sets the object's local scale.
func (node *Node) SetLocalScale(w, h, d float64) {
	node.scale = Vector{X: w, Y: h, Z: d}
	node.dirtyTransform()
}

// LocalRotation returns the object's local rotation Matrix4.
func (node *Node) LocalRotation() Matrix4 {
	return node.rotation
}

// SetLocalRotation sets the object's local rotation Matrix4 (relative to any parent).
func (node *Node) SetLocalRotation(rotation Matrix4) {
	node.rotation = rotation
	node.dirtyTransform()
}

// Rotate rotates a Node on its local orientation on a vector composed of the given x, y, and z values, by the angle provided in radians.
func (node *Node) Rotate(x, y, z, angle float64) {
	node.SetLocalRotation(node.rotation.Mult(NewMatrix4Rotate(x, y, z, angle)))
}

// WorldPosition returns the Node's position relative to the world origin.
func (node *Node) WorldPosition() Vector {
	position := node.Transform().Row(3) // We don't want to have to decompose if we don't have to
	position.W = 0
	return position
}

// WorldRotation returns the Node's rotation in world space, with scale stripped out.
func (node *Node) WorldRotation() Matrix4 {
	_, _, rotation := node.Transform().Decompose()
	return rotation
}

// Hidden returns whether the Node is hidden in the viewport.
func (node *Node) Hidden() bool {
	return node.hidden
}

// SetHidden sets the Node's hidden flag. If recursive is true, all recursive children of this Node will have their flag set the same way.
func (node *Node) SetHidden(hidden bool, recursive bool) {
	if recursive {
		for _, child := range node.Children() {
			child.SetHidden(hidden, true)
		}
	}
	node.hidden = hidden
}

// PickingDisabled returns whether the Node has been marked as unpickable in the viewport.
func (node *Node) PickingDisabled() bool {
	return node.pickingDisabled
}

// SetPickingDisabled sets the Node's unpickable flag. If recursive is true, all recursive children of this Node will have their flag set the same way.
func (node *Node) SetPickingDisabled(disabled bool, recursive bool) {
	if recursive {
		for _, child := range node.Children() {
			child.SetPickingDisabled(disabled, true)
		}
	}
	node.pickingDisabled = disabled
}

// Get searches a node's hierarchy using a string to find a specified node. The path is in the format of names of nodes, separated by forward
// slashes ('/'), and is relative to the node you use to call Get. As an example, if you had a hand parented to a forearm, which was
// parented to an upper arm, it would be found from the upper arm at "Forearm/Hand". You can use ".." to go up one level in the hierarchy.
// Get returns nil if nothing is found.
func (node *Node) Get(path string) *Node {

	split := []string{}

	for _, s := range strings.Split(path, `/`) {
		if len(strings.TrimSpace(s)) > 0 {
			split = append(split, strings.TrimSpace(s))
		}
	}

	current := node

	for _, part := range split {

		if current == nil {
			return nil
		}

		if part == ".." {
			current = current.Parent()
			continue
		}

		var found *Node
		for _, child := range current.Children() {
			if child.Name() == part {
				found = child
				break
			}
		}
		current = found

	}

	return current

}

// Path returns a string indicating the hierarchical path to get this Node from the top of the Scene, such that passing it to
// Scene.Get() returns this node.
func (node *Node) Path() string {

	path := node.Name()

	for parent := node.Parent(); parent != nil; parent = parent.Parent() {
		path = parent.Name() + "/" + path
	}

	return path

}

// Depth returns how many ancestors the Node has.
func (node *Node) Depth() int {
	depth := 0
	for parent := node.Parent(); parent != nil; parent = parent.Parent() {
		depth++
	}
	return depth
}

// HierarchyAsString returns a string displaying the hierarchy of this Node, and all recursive children.
// This is a useful function to debug the layout of a node tree, for example.
// Nodes are flagged with a prefix if they are hidden ("HID") or unpickable ("NOPICK"), and also show their world positions,
// truncated to the first 2 decimals.
func (node *Node) HierarchyAsString() string {

	var printNode func(node *Node, level int) string

	printNode = func(node *Node, level int) string {

		prefix := "NODE"
		if node.hidden {
			prefix = "HID"
		} else if node.pickingDisabled {
			prefix = "NOPICK"
		}

		str := ""

		if level > 0 {
			for i := 0; i < level; i++ {
				str += "    |"
			}
			str += "\n"
		}

		for i := 0; i < level; i++ {
			str += "    |"
		}

		wp := node.WorldPosition()
		floatTruncation := 2
		wpStr := "[" + strconv.FormatFloat(wp.X, 'f', floatTruncation, 64) + ", " + strconv.FormatFloat(wp.Y, 'f', floatTruncation, 64) + ", " + strconv.FormatFloat(wp.Z, 'f', floatTruncation, 64) + "]"

		if level > 0 {
			str += "-"
		}
		str += " [" + prefix + "] " + node.Name() + " : " + wpStr + "\n"

		for _, child := range node.Children() {
			str += printNode(child, level+1)
		}

		return str
	}

	return printNode(node, 0)
}
