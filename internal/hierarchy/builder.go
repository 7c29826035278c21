// internal/hierarchy/builder.go
package hierarchy

import (
	"strings"

	"github.com/solatis/vizcore/internal/types"
)

/*
 * Hierarchical aggregation.
 *
 * Turns flat rows into a root-less forest keyed by slash-joined paths, with
 * parent values rolled up from their children.
 *
 * Placement (per row, per grouping depth):
 *   - path = names[0..depth] joined with "/"
 *   - the node is found by exact path among its parent's children, else
 *     created in first-seen order
 *   - non-deepest depths contribute [0, info...] on creation
 *   - the deepest depth contributes [aggregate, info...]; a repeated full
 *     path sums element-wise into the existing leaf
 *
 * Rollup runs once when the forest is frozen: every node with children
 * gets value[i] = sum(children value[i]). Frozen trees never share a value
 * slice with each other, the builder, or the caller.
 *
 * Missing group values become empty-named segments; missing or non-numeric
 * aggregate and info values count as 0.
 */

// PathSeparator joins grouping values into a node path.
const PathSeparator = "/"

type node struct {
	name     string
	path     string
	value    []float64
	children []*node
	byPath   map[string]*node
}

func newNode(name, path string, value []float64) *node {
	return &node{name: name, path: path, value: value, byPath: map[string]*node{}}
}

// child returns the child with path, creating it with value when absent.
func (n *node) child(name, path string, value []float64) (*node, bool) {
	if c, ok := n.byPath[path]; ok {
		return c, false
	}
	c := newNode(name, path, value)
	n.byPath[path] = c
	n.children = append(n.children, c)
	return c, true
}

// Builder accumulates rows into a hierarchy.
// Not safe for concurrent use.
type Builder struct {
	groupKeys    []string
	aggregateKey string
	infoKeys     []string
	root         *node
	rows         int
}

// NewBuilder creates a builder grouping by groupKeys (outermost first).
func NewBuilder(groupKeys []string, aggregateKey string, infoKeys []string) *Builder {
	return &Builder{
		groupKeys:    append([]string(nil), groupKeys...),
		aggregateKey: aggregateKey,
		infoKeys:     append([]string(nil), infoKeys...),
		root:         newNode("", "", nil),
	}
}

// Add places one row. Rows are ignored when there are no group keys.
func (b *Builder) Add(row types.Row) {
	if len(b.groupKeys) == 0 {
		return
	}
	b.rows++

	info := make([]float64, len(b.infoKeys))
	for i, k := range b.infoKeys {
		info[i] = types.ToFloat(row[k])
	}

	parent := b.root
	names := make([]string, 0, len(b.groupKeys))
	last := len(b.groupKeys) - 1

	for depth, key := range b.groupKeys {
		name := types.FormatValue(row[key])
		names = append(names, name)
		path := strings.Join(names, PathSeparator)

		head := 0.0
		if depth == last {
			head = types.ToFloat(row[b.aggregateKey])
		}
		contribution := make([]float64, 0, 1+len(info))
		contribution = append(contribution, head)
		contribution = append(contribution, info...)

		n, created := parent.child(name, path, contribution)
		if !created && depth == last {
			n.value = addInto(n.value, contribution)
		}
		parent = n
	}
}

// Rows returns the number of rows placed so far.
func (b *Builder) Rows() int {
	return b.rows
}

// Build freezes the current state into a new forest with rolled-up values.
// The builder remains usable; later Adds do not affect returned trees.
// An empty builder yields an empty, non-nil forest.
func (b *Builder) Build() []types.HierarchyNode {
	out := make([]types.HierarchyNode, len(b.root.children))
	for i, c := range b.root.children {
		out[i] = freeze(c)
	}
	return out
}

func freeze(n *node) types.HierarchyNode {
	out := types.HierarchyNode{
		Name: n.name,
		Path: n.path,
	}
	if len(n.children) == 0 {
		out.Value = append([]float64(nil), n.value...)
		return out
	}

	out.Children = make([]types.HierarchyNode, len(n.children))
	var sum []float64
	for i, c := range n.children {
		out.Children[i] = freeze(c)
		sum = addInto(sum, out.Children[i].Value)
	}
	out.Value = sum
	return out
}

// addInto adds src element-wise into dst, growing dst as needed.
func addInto(dst, src []float64) []float64 {
	if len(dst) < len(src) {
		grown := make([]float64, len(src))
		copy(grown, dst)
		dst = grown
	}
	for i, v := range src {
		dst[i] += v
	}
	return dst
}

// Build aggregates rows into a root-less forest in one call.
func Build(rows []types.Row, groupKeys []string, aggregateKey string, infoKeys []string) []types.HierarchyNode {
	b := NewBuilder(groupKeys, aggregateKey, infoKeys)
	for _, row := range rows {
		b.Add(row)
	}
	return b.Build()
}

// Walk visits every node depth-first, parents before children.
// Returning false from fn skips the node's children.
func Walk(forest []types.HierarchyNode, fn func(node types.HierarchyNode, depth int) bool) {
	var visit func(nodes []types.HierarchyNode, depth int)
	visit = func(nodes []types.HierarchyNode, depth int) {
		for _, n := range nodes {
			if fn(n, depth) {
				visit(n.Children, depth+1)
			}
		}
	}
	visit(forest, 0)
}
