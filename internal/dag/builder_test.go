package dag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStreamBuilder_NextAppendsSingleInputEdge(t *testing.T) {
	g := NewGraph()
	s := NewStream(g, "0:v", Video)
	next := s.next("scale=640:360")

	assert.NotEqual(t, s.Label, next.Label)
	assert.Equal(t, Video, next.Kind)
	assert.Equal(t, "[0:v]scale=640:360["+next.Label+"]", g.Render())
}

func TestStreamBuilder_EndToPinsFinalLabel(t *testing.T) {
	g := NewGraph()
	v := NewStream(g, "a0", Video)
	v.EndTo("outv")

	assert.Equal(t, "[a0]null[outv]", g.Render())
}

func TestStreamBuilder_EndToUsesAnullForAudio(t *testing.T) {
	g := NewGraph()
	a := NewStream(g, "a0", Audio)
	a.EndTo("outa")

	assert.Equal(t, "[a0]anull[outa]", g.Render())
}

func TestStreamBuilder_CopyToUsesCopyOrAcopy(t *testing.T) {
	g := NewGraph()
	v := NewStream(g, "a0", Video)
	v.CopyTo("outv")
	assert.Equal(t, "[a0]copy[outv]", g.Render())

	g2 := NewGraph()
	a := NewStream(g2, "a0", Audio)
	a.CopyTo("outa")
	assert.Equal(t, "[a0]acopy[outa]", g2.Render())
}

func TestMsToSec(t *testing.T) {
	assert.Equal(t, "1.500", msToSec(1500))
	assert.Equal(t, "0.000", msToSec(0))
}
