package dag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraph_RenderJoinsEdgesBySemicolon(t *testing.T) {
	g := NewGraph()
	g.AddEdge("scale=640:360", []string{"0:v"}, []string{"a0"})
	g.AddEdge("fps=30", []string{"a0"}, []string{"a1"})

	assert.Equal(t, "[0:v]scale=640:360[a0];[a0]fps=30[a1]", g.Render())
}

func TestGraph_RenderEmptyGraphIsEmptyString(t *testing.T) {
	g := NewGraph()
	assert.Equal(t, "", g.Render())
}

func TestGraph_InputAndOutputFrontierAreDisjointFromInterior(t *testing.T) {
	g := NewGraph()
	g.AddEdge("scale=640:360", []string{"0:v"}, []string{"a0"})
	g.AddEdge("fps=30", []string{"a0"}, []string{"outv"})

	assert.ElementsMatch(t, []string{"0:v"}, g.InputFrontier())
	assert.ElementsMatch(t, []string{"outv"}, g.OutputFrontier())
}

func TestGraph_NewLabelNeverRepeats(t *testing.T) {
	g := NewGraph()
	seen := map[string]bool{}
	for i := 0; i < 500; i++ {
		label := g.NewLabel()
		require.False(t, seen[label], "label %q allocated twice", label)
		seen[label] = true
	}
}

func TestGraph_MergeIsIdempotent(t *testing.T) {
	a := NewGraph()
	a.AddEdge("scale=640:360", []string{"0:v"}, []string{"a0"})

	b := NewGraph()
	b.AddEdge("scale=640:360", []string{"0:v"}, []string{"a0"})
	b.AddEdge("fps=30", []string{"a0"}, []string{"a1"})

	a.Merge(b)
	first := a.Render()

	a.Merge(b)
	second := a.Render()

	assert.Equal(t, first, second, "merging the same graph twice must not duplicate edges")
	assert.Len(t, a.edges, 2)
}

func TestGraph_MergeDedupesByFilterOpInputsOutputs(t *testing.T) {
	a := NewGraph()
	a.AddEdge("null", []string{"x"}, []string{"y"})

	b := NewGraph()
	b.AddEdge("null", []string{"x"}, []string{"y"})
	b.AddEdge("null", []string{"x"}, []string{"z"})

	a.Merge(b)

	assert.Len(t, a.edges, 2)
}

func TestGraph_RenderIsDeterministicAcrossCalls(t *testing.T) {
	g := NewGraph()
	g.AddEdge("scale=640:360", []string{"0:v"}, []string{"a0"})
	g.AddEdge("overlay=x=0:y=0", []string{"a0", "1:v"}, []string{"a1"})

	first := g.Render()
	second := g.Render()
	assert.Equal(t, first, second)
}
