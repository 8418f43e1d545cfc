package dag

import "fmt"

// Kind tags a StreamBuilder's stream type.
type Kind int

const (
	Video Kind = iota
	Audio
)

// StreamBuilder is a handle {dag, currentLabel, kind} exposing a chainable
// API of filter operations. Each op appends exactly one edge to its graph
// and returns a new builder pointing at the edge's fresh output label
// (spec.md §3, §4.5).
type StreamBuilder struct {
	Graph *Graph
	Label string
	Kind  Kind
}

// NewStream wraps an existing label (typically an asset input label like
// "0:v") as a StreamBuilder without appending any edge.
func NewStream(g *Graph, label string, kind Kind) *StreamBuilder {
	g.nodes[label] = true
	g.used[label] = true
	return &StreamBuilder{Graph: g, Label: label, Kind: kind}
}

// next allocates a label, appends a single-input edge, and returns a new
// builder of the same kind pointing at it.
func (s *StreamBuilder) next(filterOp string) *StreamBuilder {
	out := s.Graph.NewLabel()
	s.Graph.AddEdge(filterOp, []string{s.Label}, []string{out})
	return &StreamBuilder{Graph: s.Graph, Label: out, Kind: s.Kind}
}

func msToSec(ms int) string {
	return fmt.Sprintf("%.3f", float64(ms)/1000.0)
}

// EndTo installs label as the output of a null (video) or anull-shaped
// passthrough edge, pinning this builder's current stream to a caller-given
// final label (used for "outv"/"outa").
func (s *StreamBuilder) EndTo(label string) {
	op := "null"
	if s.Kind == Audio {
		op = "anull"
	}
	s.Graph.AddEdge(op, []string{s.Label}, []string{label})
}

// CopyTo installs label as the output of a copy/acopy edge.
func (s *StreamBuilder) CopyTo(label string) {
	op := "copy"
	if s.Kind == Audio {
		op = "acopy"
	}
	s.Graph.AddEdge(op, []string{s.Label}, []string{label})
}
