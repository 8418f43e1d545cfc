package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNode_AttrReturnsEmptyForAbsentAttribute(t *testing.T) {
	n := &Node{Type: NodeTag, Name: "fragment"}
	assert.Equal(t, "", n.Attr("id"))
}

func TestNode_FindReturnsFirstMatchingChild(t *testing.T) {
	child1 := &Node{Type: NodeTag, Name: "fragment"}
	child2 := &Node{Type: NodeTag, Name: "fragment"}
	parent := &Node{Type: NodeTag, Name: "sequence", Children: []*Node{child1, child2}}

	assert.Same(t, child1, parent.Find("fragment"))
}

func TestNode_FindAllReturnsEveryMatchingChild(t *testing.T) {
	child1 := &Node{Type: NodeTag, Name: "fragment"}
	child2 := &Node{Type: NodeTag, Name: "fragment"}
	other := &Node{Type: NodeTag, Name: "container"}
	parent := &Node{Type: NodeTag, Name: "sequence", Children: []*Node{child1, other, child2}}

	assert.Equal(t, []*Node{child1, child2}, parent.FindAll("fragment"))
}

func TestNode_TextContentConcatenatesTextChildren(t *testing.T) {
	n := &Node{Type: NodeTag, Name: "title", Children: []*Node{
		{Type: NodeText, Text: "Hello, "},
		{Type: NodeTag, Name: "ignored"},
		{Type: NodeText, Text: "World"},
	}}
	assert.Equal(t, "Hello, World", n.TextContent())
}

func TestPropertyMap_GetAndHas(t *testing.T) {
	n := &Node{Type: NodeTag, Name: "fragment"}
	pm := PropertyMap{n: {"color": ""}}

	assert.True(t, pm.Has(n, "color"), "declared-empty must be distinct from undeclared")
	assert.Equal(t, "", pm.Get(n, "color"))
	assert.False(t, pm.Has(n, "missing"))
	assert.Equal(t, "", pm.Get(n, "missing"))
}

func TestPropertyMap_NilMapIsSafe(t *testing.T) {
	var pm PropertyMap
	n := &Node{Type: NodeTag}
	assert.Equal(t, "", pm.Get(n, "x"))
	assert.False(t, pm.Has(n, "x"))
}
