// Package emit implements the Command Emitter (spec.md §4.7): it composes
// the engine invocation from a compiled output's asset list, filter-complex
// text, and preset, grounded on the teacher's commandBuilder
// (addInput/addArg, always "-y" first) generalized to asset-index-ordered
// "-i" flags plus the DAG rendering as "-filter_complex".
package emit

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/videocraft/compiler/internal/app"
	"github.com/videocraft/compiler/internal/asset"
	videoerrors "github.com/videocraft/compiler/internal/pkg/errors"
	"github.com/videocraft/compiler/internal/project"
)

// Invocation is the fully-built engine command line: a binary plus its
// ordered argument vector.
type Invocation struct {
	Binary string
	Args   []string
}

// String renders the invocation as a single shell-quoted line, for
// diagnostics and dry-run output.
func (inv Invocation) String() string {
	parts := make([]string, 0, len(inv.Args)+1)
	parts = append(parts, inv.Binary)
	for _, a := range inv.Args {
		if strings.ContainsAny(a, " \t\"") {
			parts = append(parts, fmt.Sprintf("%q", a))
		} else {
			parts = append(parts, a)
		}
	}
	return strings.Join(parts, " ")
}

// Spec is everything Build needs to compose one engine invocation.
type Spec struct {
	Assets             []asset.Asset
	FilterComplex      string
	HasAudio           bool
	Output             project.Output
	PresetArgs         string
	MaxMuxingQueueSize int
}

// Build composes the ordered invocation per spec.md §4.7 and §6:
// binary + overwrite flag, one "-i" per asset in asset-index order,
// "-filter_complex", "-max_muxing_queue_size", stream maps, resolution/fps
// flags, the preset's raw args, and the output path.
func Build(cfg *app.Config, spec Spec) Invocation {
	args := []string{"-y"}

	for _, a := range spec.Assets {
		args = append(args, "-i", a.Path)
	}

	args = append(args, "-filter_complex", spec.FilterComplex)

	maxQueue := spec.MaxMuxingQueueSize
	if maxQueue == 0 {
		maxQueue = cfg.FFmpeg.MaxMuxingQueue
	}
	args = append(args, "-max_muxing_queue_size", fmt.Sprintf("%d", maxQueue))

	args = append(args, "-map", "[outv]")
	if spec.HasAudio {
		args = append(args, "-map", "[outa]")
	}

	args = append(args, "-s", fmt.Sprintf("%dx%d", spec.Output.Width, spec.Output.Height))
	args = append(args, "-r", fmt.Sprintf("%d", spec.Output.FPS))

	presetArgs := spec.PresetArgs
	if presetArgs == "" {
		presetArgs = cfg.FFmpeg.DefaultPresetArgs
	}
	if presetArgs != "" {
		args = append(args, strings.Fields(presetArgs)...)
	}

	args = append(args, spec.Output.Path)

	return Invocation{Binary: cfg.FFmpeg.BinaryPath, Args: args}
}

// ResolvePreset looks up a named engine-option preset's raw argument string.
// An empty name yields no preset override (Build falls back to the
// configured default). An unknown name fails ProjectStructural (spec.md §7
// groups "unknown preset name" under ProjectStructural).
func ResolvePreset(presets map[string]project.EngineOptionPreset, name string) (string, error) {
	if name == "" {
		return "", nil
	}
	p, ok := presets[name]
	if !ok {
		return "", videoerrors.ProjectStructural(fmt.Sprintf("unknown preset %q", name))
	}
	return p.Args, nil
}

// Execute runs the invocation against the configured engine binary,
// surfacing EngineNotInstalled when the binary can't be found on PATH and
// EngineFailed(code) on a nonzero exit, matching the teacher's
// exec.CommandContext + timeout pattern.
func Execute(ctx context.Context, cfg *app.Config, inv Invocation) error {
	if _, err := exec.LookPath(inv.Binary); err != nil {
		return videoerrors.EngineNotInstalled(inv.Binary)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.FFmpeg.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, inv.Binary, inv.Args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		code := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			code = exitErr.ExitCode()
		}
		return videoerrors.EngineFailed(code, stderr.String())
	}

	return nil
}
