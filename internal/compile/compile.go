// Package compile implements the Project Compiler (spec.md §4.7 top-level
// tie-in): for one named output, it coordinates container rasterization,
// invokes the Sequence Compiler for each sequence, stitches the resulting
// sequences into a final outv/outa pair, and renders the filter-complex
// text.
package compile

import (
	"fmt"

	"github.com/videocraft/compiler/internal/asset"
	"github.com/videocraft/compiler/internal/container"
	"github.com/videocraft/compiler/internal/dag"
	videoerrors "github.com/videocraft/compiler/internal/pkg/errors"
	"github.com/videocraft/compiler/internal/project"
	"github.com/videocraft/compiler/internal/sequence"
)

// Result is everything the Command Emitter needs for one compiled output.
type Result struct {
	FilterComplex string
	HasAudio      bool
	Registry      *asset.Registry
}

// ForOutput compiles a single named Output: rasterizes every container its
// sequences reference, compiles each sequence against one shared Stream DAG
// (sequence 0 is the spine; later sequences overlay onto it), and binds the
// spine's final video/audio streams to "outv"/"outa".
func ForOutput(proj *project.Project, outputName string, baseReg *asset.Registry, cache *container.Cache) (*Result, error) {
	out, ok := proj.Outputs[outputName]
	if !ok {
		return nil, videoerrors.ProjectStructural(fmt.Sprintf("unknown output %q", outputName))
	}

	reg := baseReg.Clone()
	if err := rasterizeContainers(proj, out, reg, cache); err != nil {
		return nil, err
	}

	g := dag.NewGraph()
	timing := sequence.NewTimingEnv()

	var spineVideo, spineAudio *dag.StreamBuilder
	for i, seq := range proj.Sequences {
		result, err := sequence.Compile(g, seq, out, reg, timing)
		if err != nil {
			return nil, err
		}

		if i == 0 {
			spineVideo, spineAudio = result.Video, result.Audio
			continue
		}

		spineVideo = spineVideo.Overlay(result.Video, "0", "0", false)
		mixed := g.NewLabel()
		g.AddEdge("amix=inputs=2:duration=longest", []string{spineAudio.Label, result.Audio.Label}, []string{mixed})
		spineAudio = &dag.StreamBuilder{Graph: g, Label: mixed, Kind: dag.Audio}
	}

	if spineVideo == nil {
		return nil, videoerrors.ProjectStructural("project has no sequences to compile")
	}

	spineVideo.EndTo("outv")
	hasAudio := spineAudio != nil
	if hasAudio {
		spineAudio.EndTo("outa")
	}

	return &Result{FilterComplex: g.Render(), HasAudio: hasAudio, Registry: reg}, nil
}

// rasterizeContainers renders every unique container referenced by any
// fragment of any sequence, for this output's resolution, and registers
// each one as a virtual image asset in reg (spec.md §4.6, §4.8).
func rasterizeContainers(proj *project.Project, out project.Output, reg *asset.Registry, cache *container.Cache) error {
	seen := map[string]bool{}

	for _, seq := range proj.Sequences {
		for _, frag := range seq.Fragments {
			if frag.Container == nil {
				continue
			}

			name := project.ContainerAssetName(out.Name, frag.Container.ID)
			if seen[name] {
				continue
			}
			seen[name] = true

			path, err := cache.GetOrRender(frag.Container.HTMLContent, proj.GlobalCSS, out.Name, out.Width, out.Height)
			if err != nil {
				return err
			}

			reg.Add(asset.Asset{
				Name:     name,
				Path:     path,
				Kind:     asset.KindImage,
				Width:    out.Width,
				Height:   out.Height,
				HasVideo: true,
			})
		}
	}

	return nil
}
