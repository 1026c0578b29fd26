package boneoverlay

import (
	"log/slog"
	"regexp"
	"strings"
)

// NodeFilter represents a chain of node filters, executed in sequence to collect the desired nodes
// out of a hierarchy in a SceneGraph. The filters are executed lazily when ForEach(), IDs() or Count() are called.
type NodeFilter struct {
	Filters        []func(NodeID) bool // The slice of filters that are currently active on the NodeFilter.
	Start          NodeID              // The start (root) of the filter.
	MaxDepth       int                 // How deep the node filter should search in the starting node's hierarchy; a value that is less than zero means the entire tree will be traversed.
	graph          SceneGraph
	includeStart   bool
	stopOnFiltered bool // If the filter should stop descending through a node's children if the node itself doesn't pass the filter
}

// SearchTree returns a NodeFilter that walks the hierarchy underneath the start node in the graph given (depth-first, in child order).
// The start node itself is not visited unless IncludeStart() is called.
func SearchTree(graph SceneGraph, start NodeID) NodeFilter {
	return NodeFilter{
		Start:    start,
		MaxDepth: -1,
		graph:    graph,
	}
}

func (nf NodeFilter) execute(node NodeID, depth int, callback func(NodeID) bool) bool {

	if !nf.graph.Alive(node) {
		return true
	}

	passed := true

	if node != nf.Start || nf.includeStart {
		for _, filter := range nf.Filters {
			if !filter(node) {
				passed = false
				break
			}
		}
		if passed && !callback(node) {
			return false
		}
	}

	if nf.stopOnFiltered && !passed {
		return true
	}

	if nf.MaxDepth >= 0 && depth >= nf.MaxDepth {
		return true
	}

	for _, child := range nf.graph.Children(node) {
		if !nf.execute(child, depth+1, callback) {
			return false
		}
	}

	return true

}

// IncludeStart makes the filter consider the start node as well as its descendants.
func (nf NodeFilter) IncludeStart() NodeFilter {
	nf.includeStart = true
	return nf
}

// StopOnFiltered allows you to specify that if a node doesn't pass a filter, none of its children will be visited either.
func (nf NodeFilter) StopOnFiltered() NodeFilter {
	nf.stopOnFiltered = true
	return nf
}

// ByFunc allows you to filter a given selection of nodes by the provided filter function (which takes a NodeID
// and returns a boolean, indicating whether or not to add that Node to the resulting NodeFilter).
func (nf NodeFilter) ByFunc(filterFunc func(node NodeID) bool) NodeFilter {
	nf.Filters = append(append([]func(NodeID) bool(nil), nf.Filters...), filterFunc)
	return nf
}

// ByName allows you to filter a given selection of nodes if their names are wholly equal
// to the provided name string.
func (nf NodeFilter) ByName(name string) NodeFilter {
	graph := nf.graph
	return nf.ByFunc(func(node NodeID) bool { return graph.Name(node) == name })
}

// ByRegex allows you to filter a given selection of nodes by their names using the given regex string.
// If the regexp string is invalid, a warning is logged and no nodes pass the filter.
func (nf NodeFilter) ByRegex(regexString string) NodeFilter {
	graph := nf.graph
	re, err := regexp.Compile(regexString)
	if err != nil {
		slog.Warn("invalid node filter regex", "regex", regexString, "err", err)
		return nf.ByFunc(func(NodeID) bool { return false })
	}
	return nf.ByFunc(func(node NodeID) bool { return re.MatchString(graph.Name(node)) })
}

// ByNamePatterns passes nodes whose lower-cased names contain any of the (lower-cased) patterns provided.
func (nf NodeFilter) ByNamePatterns(patterns []string) NodeFilter {
	graph := nf.graph
	return nf.ByFunc(func(node NodeID) bool { return MatchesNamePattern(graph.Name(node), patterns) })
}

// WithChildren passes only nodes that have at least one child.
func (nf NodeFilter) WithChildren() NodeFilter {
	graph := nf.graph
	return nf.ByFunc(func(node NodeID) bool { return len(graph.Children(node)) > 0 })
}

// Not filters out the nodes provided.
func (nf NodeFilter) Not(others ...NodeID) NodeFilter {
	return nf.ByFunc(func(node NodeID) bool {
		for _, o := range others {
			if o == node {
				return false
			}
		}
		return true
	})
}

// ForEach executes the provided function on each filtered Node without allocating a slice for them.
// The function must return a boolean indicating whether to continue running on each node in the tree that fulfills the
// filter set (true) or not (false).
func (nf NodeFilter) ForEach(callback func(node NodeID) bool) {
	if nf.graph == nil {
		return
	}
	nf.execute(nf.Start, 0, callback)
}

// IDs returns the filtered nodes in visiting order.
func (nf NodeFilter) IDs() []NodeID {
	out := []NodeID{}
	nf.ForEach(func(node NodeID) bool {
		out = append(out, node)
		return true
	})
	return out
}

// Count returns the number of Nodes that fit the filter set.
func (nf NodeFilter) Count() int {
	count := 0
	nf.ForEach(func(NodeID) bool {
		count++
		return true
	})
	return count
}

// First returns the first Node that fits the filter set, or NoNode.
func (nf NodeFilter) First() NodeID {
	out := NoNode
	nf.ForEach(func(node NodeID) bool {
		out = node
		return false
	})
	return out
}

// MatchesNamePattern returns if the lower-cased name contains any of the patterns given. Patterns are expected to already be lower-cased;
// empty patterns never match.
func MatchesNamePattern(name string, patterns []string) bool {
	lower := strings.ToLower(name)
	for _, pattern := range patterns {
		if pattern != "" && strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}
