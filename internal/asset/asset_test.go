package asset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindFromString(t *testing.T) {
	assert.Equal(t, KindImage, KindFromString("image"))
	assert.Equal(t, KindAudio, KindFromString("audio"))
	assert.Equal(t, KindVideo, KindFromString("video"))
	assert.Equal(t, KindVideo, KindFromString(""), "unrecognized kind defaults to video")
}

func TestAsset_VideoLabel(t *testing.T) {
	a := Asset{Name: "clip", HasVideo: true}
	label, err := a.VideoLabel(2)
	require.NoError(t, err)
	assert.Equal(t, "2:v", label)
}

func TestAsset_VideoLabelFailsWithoutVideoStream(t *testing.T) {
	a := Asset{Name: "audio-only", HasVideo: false}
	_, err := a.VideoLabel(0)
	require.Error(t, err)
}

func TestAsset_AudioLabel(t *testing.T) {
	a := Asset{Name: "clip", HasAudio: true}
	label, ok := a.AudioLabel(3)
	assert.True(t, ok)
	assert.Equal(t, "3:a", label)

	silent := Asset{Name: "silent"}
	_, ok = silent.AudioLabel(0)
	assert.False(t, ok)
}
