// Package dag implements the Stream DAG and its fluent Stream Builder
// (spec.md §4.5): a tagged node/edge graph with unique-label allocation,
// inter-DAG merging, and a chaining façade over filter operations.
package dag

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	videoerrors "github.com/videocraft/compiler/internal/pkg/errors"
)

// Edge is one filter application: zero or more input labels, the textual
// filter operation (including its arguments), and the output labels it
// produces.
type Edge struct {
	FilterOp string
	Inputs   []string
	Outputs  []string
}

// render produces this edge's textual shape:
// [in1][in2...]filterOp[out1][out2...]
func (e Edge) render() string {
	var b strings.Builder
	for _, in := range e.Inputs {
		fmt.Fprintf(&b, "[%s]", in)
	}
	b.WriteString(e.FilterOp)
	for _, out := range e.Outputs {
		fmt.Fprintf(&b, "[%s]", out)
	}
	return b.String()
}

func (e Edge) key() string {
	return e.FilterOp + "|" + strings.Join(e.Inputs, ",") + "|" + strings.Join(e.Outputs, ",")
}

// Graph is the Stream DAG: nodes keyed by label, plus an ordered list of
// edges. Labels are allocated through the graph so every edge's inputs and
// outputs always exist as nodes (spec.md §4.5 step 1-2).
type Graph struct {
	nodes map[string]bool
	edges []Edge
	used  map[string]bool
}

// NewGraph creates an empty Stream DAG.
func NewGraph() *Graph {
	return &Graph{nodes: map[string]bool{}, used: map[string]bool{}}
}

// AddEdge registers every input/output label as a node, marks them used by
// the label allocator, appends the edge, and returns the first output label
// (the convenience most filter ops need).
func (g *Graph) AddEdge(filterOp string, inputs, outputs []string) string {
	for _, l := range inputs {
		g.nodes[l] = true
		g.used[l] = true
	}
	for _, l := range outputs {
		g.nodes[l] = true
		g.used[l] = true
	}
	g.edges = append(g.edges, Edge{FilterOp: filterOp, Inputs: inputs, Outputs: outputs})
	if len(outputs) == 0 {
		return ""
	}
	return outputs[0]
}

// NewLabel allocates a fresh, previously-unused node label: a random
// lowercase letter followed by an integer in [0, 1000). Collisions are
// retried; after 10,000 collisions it falls back to a timestamp-derived
// label (spec.md §4.5).
func (g *Graph) NewLabel() string {
	for attempt := 0; attempt < 10000; attempt++ {
		letter := byte('a' + rand.Intn(26))
		n := rand.Intn(1000)
		label := fmt.Sprintf("%c%d", letter, n)
		if !g.used[label] {
			g.used[label] = true
			return label
		}
	}
	label := fmt.Sprintf("z%d", time.Now().UnixNano())
	if g.used[label] {
		panic(videoerrors.LabelExhaustion(10000))
	}
	g.used[label] = true
	return label
}

// InputFrontier returns nodes that are never the output of any edge: the
// graph's true inputs (typically "<index>:v" / "<index>:a" asset labels).
func (g *Graph) InputFrontier() []string {
	isOutput := map[string]bool{}
	for _, e := range g.edges {
		for _, o := range e.Outputs {
			isOutput[o] = true
		}
	}
	var out []string
	for n := range g.nodes {
		if !isOutput[n] {
			out = append(out, n)
		}
	}
	return out
}

// OutputFrontier returns nodes that are never consumed as input by any
// edge: the graph's dangling outputs (before endTo/copyTo pins them to
// "outv"/"outa").
func (g *Graph) OutputFrontier() []string {
	isInput := map[string]bool{}
	for _, e := range g.edges {
		for _, i := range e.Inputs {
			isInput[i] = true
		}
	}
	var out []string
	for n := range g.nodes {
		if !isInput[n] {
			out = append(out, n)
		}
	}
	return out
}

// Render concatenates every edge's textual rendering joined by ";", in
// append order (spec.md §4.5, §6).
func (g *Graph) Render() string {
	parts := make([]string, len(g.edges))
	for i, e := range g.edges {
		parts[i] = e.render()
	}
	return strings.Join(parts, ";")
}

// Merge copies every node and edge from the given sibling graphs into g:
// nodes are copied without overwriting existing ones, edges are
// deduplicated by their (filterOp, inputs, outputs) triple, and every
// copied label is marked used in g's allocator (spec.md §4.5).
func (g *Graph) Merge(others ...*Graph) {
	existingEdges := map[string]bool{}
	for _, e := range g.edges {
		existingEdges[e.key()] = true
	}

	for _, other := range others {
		for label := range other.nodes {
			g.nodes[label] = true
			g.used[label] = true
		}
		for _, e := range other.edges {
			k := e.key()
			if existingEdges[k] {
				continue
			}
			existingEdges[k] = true
			g.edges = append(g.edges, e)
		}
	}
}
