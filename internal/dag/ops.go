package dag

import (
	"fmt"

	videoerrors "github.com/videocraft/compiler/internal/pkg/errors"
)

// Scale applies scale=W:H[:flags] (spec.md §6).
func (s *StreamBuilder) Scale(w, h int, flags string) *StreamBuilder {
	op := fmt.Sprintf("scale=%d:%d", w, h)
	if flags != "" {
		op += ":" + flags
	}
	return s.next(op)
}

// Pad applies pad=W:H:X:Y[:color]. x and y are ffmpeg expressions (e.g.
// "(ow-iw)/2") rather than plain ints, since centered padding needs them.
func (s *StreamBuilder) Pad(w, h int, x, y string, color string) *StreamBuilder {
	op := fmt.Sprintf("pad=%d:%d:%s:%s", w, h, x, y)
	if color != "" {
		op += ":" + color
	}
	return s.next(op)
}

// Crop applies crop=W:H[:X:Y]. x and y are ffmpeg expressions (e.g.
// "(in_w-out_w)/2") rather than plain ints, since centered cropping needs
// them.
func (s *StreamBuilder) Crop(w, h int, x, y string) *StreamBuilder {
	op := fmt.Sprintf("crop=%d:%d:%s:%s", w, h, x, y)
	return s.next(op)
}

// Fps applies fps=FPS.
func (s *StreamBuilder) Fps(fps int) *StreamBuilder {
	return s.next(fmt.Sprintf("fps=%d", fps))
}

// Copy applies a no-op copy/acopy edge.
func (s *StreamBuilder) Copy() *StreamBuilder {
	if s.Kind == Audio {
		return s.next("acopy")
	}
	return s.next("copy")
}

// Null applies a no-op null/anull edge.
func (s *StreamBuilder) Null() *StreamBuilder {
	if s.Kind == Audio {
		return s.next("anull")
	}
	return s.next("null")
}

// Trim applies trim=start=S:end=E (seconds) to a video stream.
func (s *StreamBuilder) Trim(startMS, endMS int) *StreamBuilder {
	return s.next(fmt.Sprintf("trim=start=%s:end=%s", msToSec(startMS), msToSec(endMS)))
}

// Atrim applies atrim=start=S:end=E (seconds) to an audio stream.
func (s *StreamBuilder) Atrim(startMS, endMS int) *StreamBuilder {
	return s.next(fmt.Sprintf("atrim=start=%s:end=%s", msToSec(startMS), msToSec(endMS)))
}

// Fade applies fade=t=(in|out):st=S:d=D (seconds) to a video stream.
func (s *StreamBuilder) Fade(direction string, startMS, durationMS int) *StreamBuilder {
	return s.next(fmt.Sprintf("fade=t=%s:st=%s:d=%s", direction, msToSec(startMS), msToSec(durationMS)))
}

// Afade applies afade=t=(in|out):st=S:d=D to an audio stream.
func (s *StreamBuilder) Afade(direction string, startMS, durationMS int) *StreamBuilder {
	return s.next(fmt.Sprintf("afade=t=%s:st=%s:d=%s", direction, msToSec(startMS), msToSec(durationMS)))
}

// Overlay composites other on top of s at (x, y), returning a new video
// builder. When flip is true, s and other swap roles so that other
// becomes the background (spec.md composite overlayWithOffset / flipLayers).
func (s *StreamBuilder) Overlay(other *StreamBuilder, x, y string, flip bool) *StreamBuilder {
	bg, fg := s, other
	if flip {
		bg, fg = other, s
	}
	out := s.Graph.NewLabel()
	op := fmt.Sprintf("overlay=x=%s:y=%s", x, y)
	s.Graph.AddEdge(op, []string{bg.Label, fg.Label}, []string{out})
	return &StreamBuilder{Graph: s.Graph, Label: out, Kind: Video}
}

// Chromakey applies colorkey=COLOR:SIMILARITY:BLEND.
func (s *StreamBuilder) Chromakey(color string, similarity, blend float64) *StreamBuilder {
	return s.next(fmt.Sprintf("colorkey=%s:%.3f:%.3f", color, similarity, blend))
}

// Split applies split[=N] and returns n independent branches sharing the
// same kind.
func (s *StreamBuilder) Split(n int) []*StreamBuilder {
	outs := make([]string, n)
	for i := range outs {
		outs[i] = s.Graph.NewLabel()
	}
	op := "split"
	if n != 2 {
		op = fmt.Sprintf("split=%d", n)
	}
	s.Graph.AddEdge(op, []string{s.Label}, outs)

	builders := make([]*StreamBuilder, n)
	for i, out := range outs {
		builders[i] = &StreamBuilder{Graph: s.Graph, Label: out, Kind: s.Kind}
	}
	return builders
}

// Gblur applies gblur=sigma=S[:steps=K].
func (s *StreamBuilder) Gblur(sigma float64, steps int) *StreamBuilder {
	op := fmt.Sprintf("gblur=sigma=%.3f", sigma)
	if steps > 0 {
		op += fmt.Sprintf(":steps=%d", steps)
	}
	return s.next(op)
}

// Eq applies eq=brightness=B:saturation=S.
func (s *StreamBuilder) Eq(brightness, saturation float64) *StreamBuilder {
	return s.next(fmt.Sprintf("eq=brightness=%.3f:saturation=%.3f", brightness, saturation))
}

// Concat applies concat=n=N:v=V:a=A across the given builders (which must
// alternate or group consistently by kind per ffmpeg's concat contract) and
// returns v+a output builders. Fails ConcatArityMismatch unless the input
// count equals n*(v+a).
func Concat(g *Graph, builders []*StreamBuilder, n, v, a int) ([]*StreamBuilder, error) {
	if len(builders) != n*(v+a) {
		return nil, videoerrors.ConcatArityMismatch(len(builders), v, a)
	}

	inputs := make([]string, len(builders))
	for i, b := range builders {
		inputs[i] = b.Label
	}

	outCount := v + a
	outs := make([]string, outCount)
	for i := range outs {
		outs[i] = g.NewLabel()
	}

	op := fmt.Sprintf("concat=n=%d:v=%d:a=%d", n, v, a)
	g.AddEdge(op, inputs, outs)

	result := make([]*StreamBuilder, outCount)
	for i := 0; i < v; i++ {
		result[i] = &StreamBuilder{Graph: g, Label: outs[i], Kind: Video}
	}
	for i := 0; i < a; i++ {
		result[v+i] = &StreamBuilder{Graph: g, Label: outs[v+i], Kind: Audio}
	}
	return result, nil
}

// Xfade applies xfade=transition=T:duration=D:offset=O (seconds) across two
// video streams, returning a new video builder.
func (s *StreamBuilder) Xfade(other *StreamBuilder, transition string, durationMS, offsetMS int) *StreamBuilder {
	out := s.Graph.NewLabel()
	op := fmt.Sprintf("xfade=transition=%s:duration=%s:offset=%s", transition, msToSec(durationMS), msToSec(offsetMS))
	s.Graph.AddEdge(op, []string{s.Label, other.Label}, []string{out})
	return &StreamBuilder{Graph: s.Graph, Label: out, Kind: Video}
}

// Transpose applies transpose=D.
func (s *StreamBuilder) Transpose(dir int) *StreamBuilder {
	return s.next(fmt.Sprintf("transpose=%d", dir))
}

// Hflip applies hflip.
func (s *StreamBuilder) Hflip() *StreamBuilder { return s.next("hflip") }

// Vflip applies vflip.
func (s *StreamBuilder) Vflip() *StreamBuilder { return s.next("vflip") }

// Setpts applies setpts=EXPR.
func (s *StreamBuilder) Setpts(expr string) *StreamBuilder {
	return s.next(fmt.Sprintf("setpts=%s", expr))
}

// Tpad applies tpad=start=N[:start_mode=(clone|add)][:color=COLOR]. startMS
// is converted to a frame count the caller has already resolved into N;
// ffmpeg's tpad start parameter is a frame count, not a time, so callers
// pass it pre-computed.
func (s *StreamBuilder) Tpad(startFrames int, mode, color string) *StreamBuilder {
	op := fmt.Sprintf("tpad=start=%d", startFrames)
	if mode != "" {
		op += ":start_mode=" + mode
	}
	if color != "" {
		op += ":color=" + color
	}
	return s.next(op)
}

// Format applies format=FMT.
func (s *StreamBuilder) Format(fmtName string) *StreamBuilder {
	return s.next(fmt.Sprintf("format=%s", fmtName))
}

// Drawtext applies drawtext=ARGS verbatim.
func (s *StreamBuilder) Drawtext(args string) *StreamBuilder {
	return s.next(fmt.Sprintf("drawtext=%s", args))
}
