package asset

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/videocraft/compiler/internal/app"
	videoerrors "github.com/videocraft/compiler/internal/pkg/errors"
	"github.com/videocraft/compiler/internal/pkg/logger"
)

// Declaration is the minimal input the Probe needs for one asset: its
// declared name, filesystem path, and kind (as supplied by the Project
// Builder from the markup tree's <asset> elements).
type Declaration struct {
	Name   string
	Path   string
	Kind   Kind
	Author string
}

// Prober runs the external probe (ffprobe) against declared assets and
// fans queries out across them with a bounded errgroup (spec.md §4.3, §5).
type Prober struct {
	cfg *app.Config
	log logger.Logger

	// runProbe is overridable in tests to avoid invoking a real binary.
	runProbe func(ctx context.Context, path string, args ...string) ([]byte, error)
}

// NewProber creates a Prober bound to the configured ffprobe binary.
func NewProber(cfg *app.Config, log logger.Logger) *Prober {
	p := &Prober{cfg: cfg, log: log}
	p.runProbe = p.execProbe
	return p
}

// ProbeAll probes every declaration concurrently (bounded by
// cfg.Probe.Concurrency) and returns a populated Registry in declaration
// order, regardless of completion order.
func (p *Prober) ProbeAll(ctx context.Context, decls []Declaration) (*Registry, error) {
	results := make([]Asset, len(decls))

	g, gctx := errgroup.WithContext(ctx)
	if p.cfg.Probe.Concurrency > 0 {
		g.SetLimit(p.cfg.Probe.Concurrency)
	}

	var mu sync.Mutex
	for i, d := range decls {
		i, d := i, d
		g.Go(func() error {
			a, err := p.probeOne(gctx, d)
			if err != nil {
				return err
			}
			mu.Lock()
			results[i] = a
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	reg := NewRegistry()
	for _, a := range results {
		reg.Add(a)
	}
	return reg, nil
}

func (p *Prober) probeOne(ctx context.Context, d Declaration) (Asset, error) {
	a := Asset{Name: d.Name, Path: d.Path, Kind: d.Kind, Author: d.Author}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Probe.Timeout)
	defer cancel()

	if d.Kind != KindImage {
		dur, err := p.probeDuration(ctx, d.Path)
		if err != nil {
			return Asset{}, videoerrors.ProbeFailed(d.Name, err)
		}
		a.DurationMS = dur
	}

	if d.Kind != KindAudio {
		w, h, rot, err := p.probeVideoStream(ctx, d.Path)
		if err == nil {
			a.Width, a.Height, a.Rotation = w, h, rot
			a.HasVideo = true
		}
	}

	if d.Kind != KindImage {
		hasAudio, err := p.probeHasAudio(ctx, d.Path)
		if err == nil {
			a.HasAudio = hasAudio
		}
	}

	if d.Kind == KindVideo {
		a.HasVideo = true
	}
	if d.Kind == KindAudio {
		a.HasAudio = true
	}

	p.log.WithFields(map[string]interface{}{
		"asset": a.Name, "duration_ms": a.DurationMS, "width": a.Width, "height": a.Height,
		"rotation": a.Rotation, "has_video": a.HasVideo, "has_audio": a.HasAudio,
	}).Debug("probed asset")

	return a, nil
}

type probeFormat struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func (p *Prober) probeDuration(ctx context.Context, path string) (int, error) {
	out, err := p.runProbe(ctx, path,
		"-v", "error", "-show_entries", "format=duration", "-of", "json", path)
	if err != nil {
		return 0, err
	}

	var pf probeFormat
	if err := json.Unmarshal(out, &pf); err != nil {
		return 0, err
	}

	seconds, err := strconv.ParseFloat(pf.Format.Duration, 64)
	if err != nil {
		return 0, err
	}
	return int(seconds*1000 + 0.5), nil
}

type probeStreams struct {
	Streams []struct {
		Width     int `json:"width"`
		Height    int `json:"height"`
		SideDataList []struct {
			Rotation int `json:"rotation"`
		} `json:"side_data_list"`
	} `json:"streams"`
}

func (p *Prober) probeVideoStream(ctx context.Context, path string) (width, height, rotation int, err error) {
	out, err := p.runProbe(ctx, path,
		"-v", "error", "-select_streams", "v:0",
		"-show_entries", "stream=width,height:stream_side_data=rotation",
		"-of", "json", path)
	if err != nil {
		return 0, 0, 0, err
	}

	var ps probeStreams
	if err := json.Unmarshal(out, &ps); err != nil {
		return 0, 0, 0, err
	}
	if len(ps.Streams) == 0 {
		return 0, 0, 0, fmt.Errorf("no video stream found")
	}

	s := ps.Streams[0]
	rot := 0
	if len(s.SideDataList) > 0 {
		rot = s.SideDataList[0].Rotation
	}
	rot = ((rot % 360) + 360) % 360

	return s.Width, s.Height, rot, nil
}

type probeCodecType struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
	} `json:"streams"`
}

func (p *Prober) probeHasAudio(ctx context.Context, path string) (bool, error) {
	out, err := p.runProbe(ctx, path,
		"-v", "error", "-select_streams", "a:0",
		"-show_entries", "stream=codec_type", "-of", "json", path)
	if err != nil {
		return false, err
	}

	var pc probeCodecType
	if err := json.Unmarshal(out, &pc); err != nil {
		return false, err
	}

	for _, s := range pc.Streams {
		if s.CodecType == "audio" {
			return true, nil
		}
	}
	return false, nil
}

func (p *Prober) execProbe(ctx context.Context, _ string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, p.cfg.Probe.BinaryPath, args...)
	return cmd.Output()
}
