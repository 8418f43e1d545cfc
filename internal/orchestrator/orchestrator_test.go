package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/videocraft/compiler/internal/app"
	"github.com/videocraft/compiler/internal/asset"
	"github.com/videocraft/compiler/internal/container"
	"github.com/videocraft/compiler/internal/decoder"
	"github.com/videocraft/compiler/internal/emit"
	"github.com/videocraft/compiler/internal/expr"
	videoerrors "github.com/videocraft/compiler/internal/pkg/errors"
	"github.com/videocraft/compiler/internal/pkg/logger"
	"github.com/videocraft/compiler/internal/project"
)

type fakeRenderer struct{}

func (fakeRenderer) RenderContainer(htmlContent, cssText string, width, height int) ([]byte, error) {
	return []byte("png-bytes"), nil
}

func testConfig() *app.Config {
	cfg := &app.Config{}
	cfg.Render.DefaultWidth = 1920
	cfg.Render.DefaultHeight = 1080
	cfg.Render.DefaultFPS = 30
	return cfg
}

func TestRunID_ProducesAnEightCharacterID(t *testing.T) {
	id := RunID()
	assert.Len(t, id, 8)
}

func TestRunID_ProducesDistinctIDs(t *testing.T) {
	assert.NotEqual(t, RunID(), RunID())
}

func TestApplyRenderDefaults_FillsOnlyZeroFields(t *testing.T) {
	o := New(testConfig(), logger.NewNoop(), false)
	proj := &project.Project{Outputs: map[string]project.Output{
		"main": {Name: "main", Width: 0, Height: 0, FPS: 24},
	}}

	o.applyRenderDefaults(proj)

	out := proj.Outputs["main"]
	assert.Equal(t, 1920, out.Width)
	assert.Equal(t, 1080, out.Height)
	assert.Equal(t, 24, out.FPS, "an explicitly-set fps must not be overwritten by the default")
}

func TestFail_ReturnsOriginalErrorUnchanged(t *testing.T) {
	o := New(testConfig(), logger.NewNoop(), false)
	original := videoerrors.ProjectStructural("bad project")

	got := o.fail(logger.NewNoop(), "build", original)
	assert.Same(t, original, got)
}

func TestDiagnosticLine_RendersInvocationText(t *testing.T) {
	o := New(testConfig(), logger.NewNoop(), false)
	inv := emit.Invocation{Binary: "ffmpeg", Args: []string{"-y", "out.mp4"}}

	line := o.diagnosticLine(inv)
	assert.Contains(t, line, "ffmpeg -y out.mp4")
}

func TestRunOutput_CompilesAndLogsWithoutExecuting(t *testing.T) {
	o := New(testConfig(), logger.NewNoop(), false)

	proj := &project.Project{
		Outputs: map[string]project.Output{
			"main": {Name: "main", Path: "./out.mp4", Width: 640, Height: 360, FPS: 30},
		},
		Sequences: []project.Sequence{
			{Fragments: []project.Fragment{
				{ID: "f0", Enabled: true, AssetName: "clip", DurationMS: 2000,
					OverlayLeft: expr.ConstExpr{Value: 0}, Fit: decoder.FitPolicy{Kind: decoder.FitCover}},
			}},
		},
	}

	reg := asset.NewRegistry()
	reg.Add(asset.Asset{Name: "clip", Path: "/clip.mp4", DurationMS: 2000, HasVideo: true, HasAudio: true})

	cache := container.New(t.TempDir(), fakeRenderer{}, logger.NewNoop())

	err := o.runOutput(context.Background(), logger.NewNoop(), proj, "main", reg, cache, "", false)
	require.NoError(t, err)
}

func TestRunOutput_UnknownPresetFails(t *testing.T) {
	o := New(testConfig(), logger.NewNoop(), false)

	proj := &project.Project{
		Outputs: map[string]project.Output{
			"main": {Name: "main", Path: "./out.mp4", Width: 640, Height: 360, FPS: 30},
		},
		Presets: map[string]project.EngineOptionPreset{},
		Sequences: []project.Sequence{
			{Fragments: []project.Fragment{
				{ID: "f0", Enabled: true, AssetName: "clip", DurationMS: 2000,
					OverlayLeft: expr.ConstExpr{Value: 0}, Fit: decoder.FitPolicy{Kind: decoder.FitCover}},
			}},
		},
	}

	reg := asset.NewRegistry()
	reg.Add(asset.Asset{Name: "clip", Path: "/clip.mp4", DurationMS: 2000, HasVideo: true, HasAudio: true})

	cache := container.New(t.TempDir(), fakeRenderer{}, logger.NewNoop())
	err := o.runOutput(context.Background(), logger.NewNoop(), proj, "main", reg, cache, "does-not-exist", false)
	require.Error(t, err)
}
