package compile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/videocraft/compiler/internal/asset"
	"github.com/videocraft/compiler/internal/container"
	"github.com/videocraft/compiler/internal/decoder"
	"github.com/videocraft/compiler/internal/expr"
	"github.com/videocraft/compiler/internal/pkg/logger"
	"github.com/videocraft/compiler/internal/project"
)

type fakeRenderer struct{ calls int }

func (f *fakeRenderer) RenderContainer(htmlContent, cssText string, width, height int) ([]byte, error) {
	f.calls++
	return []byte("png-bytes"), nil
}

func testProject() *project.Project {
	return &project.Project{
		Outputs: map[string]project.Output{
			"main": {Name: "main", Path: "./out.mp4", Width: 1280, Height: 720, FPS: 30},
		},
		Sequences: []project.Sequence{
			{Fragments: []project.Fragment{
				{ID: "f0", Enabled: true, AssetName: "clip", DurationMS: 3000,
					OverlayLeft: expr.ConstExpr{Value: 0}, Fit: decoder.FitPolicy{Kind: decoder.FitCover}},
			}},
		},
	}
}

func testRegistry() *asset.Registry {
	reg := asset.NewRegistry()
	reg.Add(asset.Asset{Name: "clip", Path: "/clip.mp4", DurationMS: 3000, HasVideo: true, HasAudio: true})
	return reg
}

func TestForOutput_CompilesSpineAndBindsOutvOuta(t *testing.T) {
	proj := testProject()
	reg := testRegistry()
	cache := container.New(t.TempDir(), &fakeRenderer{}, logger.NewNoop())

	result, err := ForOutput(proj, "main", reg, cache)
	require.NoError(t, err)

	assert.Contains(t, result.FilterComplex, "[outv]")
	assert.Contains(t, result.FilterComplex, "[outa]")
	assert.True(t, result.HasAudio)
}

func TestForOutput_UnknownOutputFails(t *testing.T) {
	proj := testProject()
	reg := testRegistry()
	cache := container.New(t.TempDir(), &fakeRenderer{}, logger.NewNoop())

	_, err := ForOutput(proj, "does-not-exist", reg, cache)
	require.Error(t, err)
}

func TestForOutput_RasterizesEachUniqueContainerOnce(t *testing.T) {
	proj := testProject()
	proj.Sequences[0].Fragments[0].Container = &project.Container{ID: "badge", HTMLContent: "<div>hi</div>"}
	// A second fragment referencing the same container id must not re-render it.
	proj.Sequences[0].Fragments = append(proj.Sequences[0].Fragments, project.Fragment{
		ID: "f1", Enabled: true, AssetName: "clip", DurationMS: 1000,
		OverlayLeft: expr.ConstExpr{Value: 0}, Fit: decoder.FitPolicy{Kind: decoder.FitCover},
		Container: &project.Container{ID: "badge", HTMLContent: "<div>hi</div>"},
	})

	reg := testRegistry()
	renderer := &fakeRenderer{}
	cache := container.New(t.TempDir(), renderer, logger.NewNoop())

	_, err := ForOutput(proj, "main", reg, cache)
	require.NoError(t, err)
	assert.Equal(t, 1, renderer.calls, "identical container content should only rasterize once per output")
}

func TestForOutput_ClonesRegistryPerOutputWithoutMutatingBase(t *testing.T) {
	proj := testProject()
	proj.Outputs["second"] = project.Output{Name: "second", Path: "./out2.mp4", Width: 640, Height: 360, FPS: 24}
	proj.Sequences[0].Fragments[0].Container = &project.Container{ID: "badge", HTMLContent: "<div>hi</div>"}

	reg := testRegistry()
	cache := container.New(t.TempDir(), &fakeRenderer{}, logger.NewNoop())

	_, err := ForOutput(proj, "main", reg, cache)
	require.NoError(t, err)

	_, ok := reg.Get(project.ContainerAssetName("main", "badge"))
	assert.False(t, ok, "the base registry must not be mutated by compiling one output")
}

func TestForOutput_NoSequencesFails(t *testing.T) {
	proj := testProject()
	proj.Sequences = nil
	reg := testRegistry()
	cache := container.New(t.TempDir(), &fakeRenderer{}, logger.NewNoop())

	_, err := ForOutput(proj, "main", reg, cache)
	require.Error(t, err)
}
