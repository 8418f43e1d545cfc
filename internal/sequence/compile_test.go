package sequence

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/videocraft/compiler/internal/asset"
	"github.com/videocraft/compiler/internal/dag"
	"github.com/videocraft/compiler/internal/decoder"
	"github.com/videocraft/compiler/internal/expr"
	"github.com/videocraft/compiler/internal/project"
)

func testOutput() project.Output {
	return project.Output{Name: "main", Width: 1280, Height: 720, FPS: 30}
}

func videoFragment(id, assetName string, durationMS int) project.Fragment {
	return project.Fragment{
		ID:          id,
		Enabled:     true,
		AssetName:   assetName,
		DurationMS:  durationMS,
		OverlayLeft: expr.ConstExpr{Value: 0},
		Fit:         decoder.FitPolicy{Kind: decoder.FitCover},
	}
}

func TestCompile_SingleClipCover(t *testing.T) {
	g := dag.NewGraph()
	reg := asset.NewRegistry()
	reg.Add(asset.Asset{Name: "clip", DurationMS: 4000, HasVideo: true, HasAudio: true})

	seq := project.Sequence{Fragments: []project.Fragment{videoFragment("f0", "clip", 4000)}}

	result, err := Compile(g, seq, testOutput(), reg, NewTimingEnv())
	require.NoError(t, err)
	require.NotNil(t, result.Video)
	require.NotNil(t, result.Audio)

	rendered := g.Render()
	assert.Contains(t, rendered, "scale=1280:720:force_original_aspect_ratio=increase")
	assert.Contains(t, rendered, "crop=1280:720:(in_w-out_w)/2:(in_h-out_h)/2")
}

func TestCompile_TrimThenConcatTwoFragments(t *testing.T) {
	g := dag.NewGraph()
	reg := asset.NewRegistry()
	reg.Add(asset.Asset{Name: "a", DurationMS: 10000, HasVideo: true, HasAudio: true})
	reg.Add(asset.Asset{Name: "b", DurationMS: 8000, HasVideo: true, HasAudio: true})

	f0 := videoFragment("f0", "a", 3000)
	f0.TrimLeftMS = 1000
	f1 := videoFragment("f1", "b", 2000)

	seq := project.Sequence{Fragments: []project.Fragment{f0, f1}}

	result, err := Compile(g, seq, testOutput(), reg, NewTimingEnv())
	require.NoError(t, err)
	require.NotNil(t, result.Video)

	rendered := g.Render()
	assert.Contains(t, rendered, "trim=start=1.000:end=4.000")
	assert.Contains(t, rendered, "concat=n=2:v=1:a=1")
}

func TestCompile_NegativeOverlayCrossFade(t *testing.T) {
	g := dag.NewGraph()
	reg := asset.NewRegistry()
	reg.Add(asset.Asset{Name: "a", DurationMS: 5000, HasVideo: true, HasAudio: true})
	reg.Add(asset.Asset{Name: "b", DurationMS: 5000, HasVideo: true, HasAudio: true})

	f0 := videoFragment("f0", "a", 3000)
	f1 := videoFragment("f1", "b", 3000)
	f1.OverlayLeft = expr.ConstExpr{Value: -500}

	seq := project.Sequence{Fragments: []project.Fragment{f0, f1}}

	result, err := Compile(g, seq, testOutput(), reg, NewTimingEnv())
	require.NoError(t, err)
	require.NotNil(t, result.Video)

	rendered := g.Render()
	assert.Contains(t, rendered, "overlay=x=0:y=0")
	assert.Contains(t, rendered, "amix=inputs=2:duration=longest")

	// f0 runs 3000ms before f1 starts; f1's own offset is -500ms, so the
	// pad before f1 is composited must be timeCursor(3000) + offset(-500) = 2500ms,
	// not the offset alone and not timeCursor-adjusted twice.
	assert.Contains(t, rendered, "tpad=start=75", "overlay pad must reflect timeCursor + raw overlay offset, not a doubled adjustment")
}

func TestCompile_PositiveOverlayAfterFirstFragmentFails(t *testing.T) {
	g := dag.NewGraph()
	reg := asset.NewRegistry()
	reg.Add(asset.Asset{Name: "a", DurationMS: 3000, HasVideo: true, HasAudio: true})
	reg.Add(asset.Asset{Name: "b", DurationMS: 3000, HasVideo: true, HasAudio: true})

	f0 := videoFragment("f0", "a", 3000)
	f1 := videoFragment("f1", "b", 3000)
	f1.OverlayLeft = expr.ConstExpr{Value: 500}

	seq := project.Sequence{Fragments: []project.Fragment{f0, f1}}

	_, err := Compile(g, seq, testOutput(), reg, NewTimingEnv())
	require.Error(t, err, "only the first fragment of a sequence may resolve to a positive overlay offset")
}

func TestCompile_FirstFragmentNegativeOverlayFails(t *testing.T) {
	g := dag.NewGraph()
	reg := asset.NewRegistry()
	reg.Add(asset.Asset{Name: "a", DurationMS: 3000, HasVideo: true, HasAudio: true})

	f0 := videoFragment("f0", "a", 3000)
	f0.OverlayLeft = expr.ConstExpr{Value: -100}

	seq := project.Sequence{Fragments: []project.Fragment{f0}}

	_, err := Compile(g, seq, testOutput(), reg, NewTimingEnv())
	require.Error(t, err, "the first fragment of a sequence can never resolve to a negative overlay offset")
}

func TestCompile_LazyExpressionAcrossSequences(t *testing.T) {
	g := dag.NewGraph()
	reg := asset.NewRegistry()
	reg.Add(asset.Asset{Name: "a", DurationMS: 4000, HasVideo: true, HasAudio: true})
	reg.Add(asset.Asset{Name: "b", DurationMS: 2000, HasVideo: true, HasAudio: true})

	timing := NewTimingEnv()

	spine := project.Sequence{Fragments: []project.Fragment{videoFragment("f0", "a", 4000)}}
	_, err := Compile(g, spine, testOutput(), reg, timing)
	require.NoError(t, err)

	thunk, err := expr.Compile("calc(#f0.time.end - 1000)")
	require.NoError(t, err)

	overlaySeq := project.Sequence{Fragments: []project.Fragment{
		{ID: "f1", Enabled: true, AssetName: "b", DurationMS: 2000, OverlayLeft: thunk, Fit: decoder.FitPolicy{Kind: decoder.FitCover}},
	}}

	result, err := Compile(g, overlaySeq, testOutput(), reg, timing)
	require.NoError(t, err)
	require.NotNil(t, result.Video)
}

func TestCompile_ContainerOverlayCompositesVirtualAsset(t *testing.T) {
	g := dag.NewGraph()
	reg := asset.NewRegistry()
	reg.Add(asset.Asset{Name: "a", DurationMS: 3000, HasVideo: true, HasAudio: true})
	reg.Add(asset.Asset{Name: project.ContainerAssetName("main", "badge"), Kind: asset.KindImage, HasVideo: true})

	frag := videoFragment("f0", "a", 3000)
	frag.Container = &project.Container{ID: "badge", HTMLContent: "<div>hi</div>"}

	seq := project.Sequence{Fragments: []project.Fragment{frag}}

	result, err := Compile(g, seq, testOutput(), reg, NewTimingEnv())
	require.NoError(t, err)
	require.NotNil(t, result.Video)

	rendered := g.Render()
	assert.True(t, strings.Contains(rendered, "overlay=x=0:y=0"), "fragment's own container must be composited as an overlay")
}

func TestCompile_DisabledFragmentIsSkipped(t *testing.T) {
	g := dag.NewGraph()
	reg := asset.NewRegistry()
	reg.Add(asset.Asset{Name: "a", DurationMS: 3000, HasVideo: true, HasAudio: true})

	disabled := videoFragment("hidden", "a", 3000)
	disabled.Enabled = false
	visible := videoFragment("f0", "a", 3000)

	seq := project.Sequence{Fragments: []project.Fragment{disabled, visible}}
	result, err := Compile(g, seq, testOutput(), reg, NewTimingEnv())
	require.NoError(t, err)
	require.NotNil(t, result.Video)
}

func TestCompile_MissingAssetFails(t *testing.T) {
	g := dag.NewGraph()
	reg := asset.NewRegistry()

	seq := project.Sequence{Fragments: []project.Fragment{videoFragment("f0", "ghost", 1000)}}
	_, err := Compile(g, seq, testOutput(), reg, NewTimingEnv())
	require.Error(t, err)
}
