// Package filetree folds a flat list of collected files into a prefix tree
// keyed by path segment and renders it as an ASCII tree. The same tree drives
// the document serializer, so both outputs share one ordering: siblings sorted
// lexicographically by name, visited depth-first.
package filetree

import (
	"sort"
	"strings"

	"github.com/holonoms/promptpal/internal/fileinfo"
)

// Node represents a single path segment. Only nodes that terminate an input
// path carry a File; intermediate directories never do.
type Node struct {
	Name     string
	File     *fileinfo.Record
	Children map[string]*Node
}

func newNode(name string) *Node {
	return &Node{Name: name, Children: make(map[string]*Node)}
}

// IsDir reports whether the node is rendered as a directory.
func (n *Node) IsDir() bool {
	return n.File == nil
}

// SortedChildren returns the node's children ordered by name.
func (n *Node) SortedChildren() []*Node {
	names := make([]string, 0, len(n.Children))
	for name := range n.Children {
		names = append(names, name)
	}
	sort.Strings(names)

	children := make([]*Node, len(names))
	for i, name := range names {
		children[i] = n.Children[name]
	}
	return children
}

// SplitPath breaks a path into its segments. Both '/' and '\' separate
// segments, empty segments are dropped and "." or ".." are kept as is.
func SplitPath(path string) []string {
	return strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == '\\'
	})
}

// Build creates the tree for records and returns its unnamed root. Records
// whose path has no segments are skipped. When two records decompose to the
// same path the later one wins.
func Build(records []fileinfo.Record) *Node {
	root := newNode("")

	for i := range records {
		parts := SplitPath(records[i].Path)
		if len(parts) == 0 {
			continue
		}

		current := root
		for _, part := range parts {
			child, ok := current.Children[part]
			if !ok {
				child = newNode(part)
				current.Children[part] = child
			}
			current = child
		}

		record := records[i]
		current.File = &record
	}

	return root
}

// Walk visits every node below root in sorted depth-first order, passing the
// node's segments from the root down. The root itself is not visited.
func Walk(root *Node, fn func(segments []string, node *Node)) {
	walk(root, nil, fn)
}

func walk(node *Node, segments []string, fn func([]string, *Node)) {
	for _, child := range node.SortedChildren() {
		path := append(segments[:len(segments):len(segments)], child.Name)
		fn(path, child)
		walk(child, path, fn)
	}
}

// Render draws the tree with the standard connectors (├──, └──, │). The root
// produces no line of its own. Nodes without a file get a trailing '/'.
func Render(root *Node) string {
	var lines []string
	buildTree(root, "", &lines)
	return strings.Join(lines, "\n")
}

// buildTree appends one line per child of node and recurses into each child
// before moving on to its next sibling.
func buildTree(node *Node, prefix string, result *[]string) {
	children := node.SortedChildren()

	for i, child := range children {
		isLast := i == len(children)-1
		connector := "├── "
		newPrefix := prefix + "│   "
		if isLast {
			connector = "└── "
			newPrefix = prefix + "    "
		}

		displayName := child.Name
		if child.IsDir() {
			displayName += "/"
		}

		*result = append(*result, prefix+connector+displayName)
		buildTree(child, newPrefix, result)
	}
}
