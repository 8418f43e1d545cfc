package sequence

import (
	"fmt"

	"github.com/videocraft/compiler/internal/asset"
	"github.com/videocraft/compiler/internal/dag"
	"github.com/videocraft/compiler/internal/decoder"
	videoerrors "github.com/videocraft/compiler/internal/pkg/errors"
	"github.com/videocraft/compiler/internal/project"
)

// Result is the pair of running stream builders a compiled sequence leaves
// behind, both referencing the same shared graph.
type Result struct {
	Video *dag.StreamBuilder
	Audio *dag.StreamBuilder
}

// Compile turns a Sequence into a {video, audio} pair of builders,
// processing enabled fragments strictly left-to-right (spec.md §4.6).
func Compile(g *dag.Graph, seq project.Sequence, out project.Output, reg *asset.Registry, timing *TimingEnv) (*Result, error) {
	var mainVideo, mainAudio *dag.StreamBuilder
	timeCursor := 0.0
	first := true

	for _, frag := range seq.Fragments {
		if !frag.Enabled {
			continue
		}

		overlayLeftF, err := frag.OverlayLeft.Eval(timing)
		if err != nil {
			return nil, err
		}
		overlayLeft := int(overlayLeftF)

		videoStream, audioStream, isRealVideo, err := sourceStreams(g, reg, frag, out)
		if err != nil {
			return nil, err
		}

		if frag.TrimLeftMS > 0 || durationLessThanAsset(reg, frag) {
			if isRealVideo {
				videoStream = videoStream.Trim(frag.TrimLeftMS, frag.TrimLeftMS+frag.DurationMS)
				videoStream = videoStream.Setpts("PTS-STARTPTS")
			}
			audioStream = audioStream.Atrim(frag.TrimLeftMS, frag.TrimLeftMS+frag.DurationMS)
			audioStream = audioStream.Setpts("PTS-STARTPTS")
		}

		if assetKindImage(reg, frag) && frag.DurationMS > 0 {
			frames := (frag.DurationMS*out.FPS + 500) / 1000
			videoStream = videoStream.Tpad(frames, "clone", "")
		}

		if isRealVideo {
			videoStream = videoStream.Fps(out.FPS)
			videoStream = applyFit(videoStream, frag.Fit, out.Width, out.Height)

			if frag.Chromakey.Enabled {
				videoStream = videoStream.Chromakey(frag.Chromakey.Color, frag.Chromakey.Similarity, frag.Chromakey.Blend)
			}
		}

		if frag.Container != nil {
			videoStream = overlayContainer(g, reg, videoStream, out.Name, frag.Container.ID)
		}

		if frag.TransitionIn.Name == "fade" {
			videoStream = videoStream.Fade("in", 0, frag.TransitionIn.DurationMS)
			audioStream = audioStream.Afade("in", 0, frag.TransitionIn.DurationMS)
		}
		if frag.TransitionOut.Name == "fade" {
			fadeStart := frag.DurationMS - frag.TransitionOut.DurationMS
			videoStream = videoStream.Fade("out", fadeStart, frag.TransitionOut.DurationMS)
			audioStream = audioStream.Afade("out", fadeStart, frag.TransitionOut.DurationMS)
		}

		if first {
			if overlayLeft > 0 {
				frames := (overlayLeft*out.FPS + 500) / 1000
				videoStream = videoStream.TPadStart(frames, "add", "black@0.0")
			} else if overlayLeft < 0 {
				return nil, videoerrors.OverlayNegativeAtStart(frag.ID, overlayLeft)
			}
			mainVideo, mainAudio = videoStream, audioStream
			first = false
		} else if overlayLeft == 0 {
			results, err := dag.Concat(g, []*dag.StreamBuilder{mainVideo, mainAudio, videoStream, audioStream}, 2, 1, 1)
			if err != nil {
				return nil, err
			}
			mainVideo, mainAudio = results[0], results[1]
		} else if overlayLeft > 0 {
			return nil, videoerrors.OverlayPositiveAfterStart(frag.ID, overlayLeft)
		} else {
			flip := frag.OverlayZIndex < 0
			mainVideo = mainVideo.OverlayWithOffset(videoStream, int(timeCursor), frag.DurationMS, overlayLeft, out.FPS, flip)
			mixed := g.NewLabel()
			g.AddEdge("amix=inputs=2:duration=longest", []string{mainAudio.Label, audioStream.Label}, []string{mixed})
			mainAudio = &dag.StreamBuilder{Graph: g, Label: mixed, Kind: dag.Audio}
		}

		start := timeCursor + float64(overlayLeft)
		end := start + float64(frag.DurationMS)
		timing.Record(frag.ID, start, end, float64(frag.DurationMS))
		timeCursor += float64(frag.DurationMS) + float64(overlayLeft)
	}

	return &Result{Video: mainVideo, Audio: mainAudio}, nil
}

func durationLessThanAsset(reg *asset.Registry, frag project.Fragment) bool {
	a, ok := reg.Get(frag.AssetName)
	if !ok {
		return false
	}
	return frag.DurationMS < a.DurationMS
}

func assetKindImage(reg *asset.Registry, frag project.Fragment) bool {
	a, ok := reg.Get(frag.AssetName)
	return ok && a.Kind == asset.KindImage
}

// sourceStreams resolves the real or synthesized video/audio source streams
// for a fragment, per spec.md §4.6 step 2. isRealVideo reports whether the
// video stream came from a real asset (synthetic streams skip trim/fit).
func sourceStreams(g *dag.Graph, reg *asset.Registry, frag project.Fragment, out project.Output) (video, audio *dag.StreamBuilder, isRealVideo bool, err error) {
	a, ok := reg.Get(frag.AssetName)
	if !ok {
		return nil, nil, false, videoerrors.AssetMissingFile([]string{frag.AssetName})
	}
	idx, _ := reg.Index(frag.AssetName)

	if a.HasVideo {
		label, verr := a.VideoLabel(idx)
		if verr != nil {
			return nil, nil, false, verr
		}
		video = dag.NewStream(g, label, dag.Video)
		isRealVideo = true
	} else {
		videoLabel := g.NewLabel()
		g.AddEdge(fmt.Sprintf("color=c=black@0.0:s=%dx%d:r=%d:d=%s", out.Width, out.Height, out.FPS, msToSecStr(frag.DurationMS)), nil, []string{videoLabel})
		video = &dag.StreamBuilder{Graph: g, Label: videoLabel, Kind: dag.Video}
	}

	if a.HasAudio {
		label, ok := a.AudioLabel(idx)
		if ok {
			audio = dag.NewStream(g, label, dag.Audio)
		}
	}
	if audio == nil {
		audioLabel := g.NewLabel()
		g.AddEdge(fmt.Sprintf("anullsrc=r=44100:cl=stereo:d=%s", msToSecStr(frag.DurationMS)), nil, []string{audioLabel})
		audio = &dag.StreamBuilder{Graph: g, Label: audioLabel, Kind: dag.Audio}
	}

	return video, audio, isRealVideo, nil
}

// overlayContainer composites a fragment's rasterized container PNG (staged
// into the registry by the Project Compiler under a per-output virtual asset
// name) on top of the fragment's own video stream. A missing virtual asset
// (container not yet rasterized for this output) leaves the stream
// untouched rather than failing, since the Project Compiler is responsible
// for rasterizing every referenced container before sequence compilation.
func overlayContainer(g *dag.Graph, reg *asset.Registry, videoStream *dag.StreamBuilder, outputName, containerID string) *dag.StreamBuilder {
	name := project.ContainerAssetName(outputName, containerID)
	a, ok := reg.Get(name)
	if !ok {
		return videoStream
	}
	idx, ok := reg.Index(name)
	if !ok {
		return videoStream
	}
	label, err := a.VideoLabel(idx)
	if err != nil {
		return videoStream
	}
	containerStream := dag.NewStream(g, label, dag.Video)
	return videoStream.Overlay(containerStream, "0", "0", false)
}

func msToSecStr(ms int) string {
	return fmt.Sprintf("%.3f", float64(ms)/1000.0)
}

func applyFit(s *dag.StreamBuilder, fit decoder.FitPolicy, w, h int) *dag.StreamBuilder {
	switch fit.Kind {
	case decoder.FitContainAmbient:
		amb := fit.Ambient
		return s.FitContainAmbient(w, h, amb.Blur, amb.Brightness, amb.Saturation)
	case decoder.FitContainPillarbox:
		return s.FitContainPillarbox(w, h, fit.Pillarbox.Color)
	default:
		return s.FitCover(w, h)
	}
}
