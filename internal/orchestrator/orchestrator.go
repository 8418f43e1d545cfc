// Package orchestrator drives the compilation pipeline end to end (spec.md
// §2 item 10): probe -> build -> rasterize -> compile -> emit -> execute.
// It manages cross-output container-cache key accumulation and renders
// terminal diagnostics, grounded on the teacher's cmd/server/main.go
// top-level sequencing (initializeServices then wire then run) generalized
// from "start an HTTP server" to "run one compilation pipeline per output,
// sequentially, then sweep the cache once."
package orchestrator

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"

	"github.com/videocraft/compiler/internal/app"
	"github.com/videocraft/compiler/internal/asset"
	"github.com/videocraft/compiler/internal/compile"
	"github.com/videocraft/compiler/internal/container"
	"github.com/videocraft/compiler/internal/emit"
	"github.com/videocraft/compiler/internal/markup"
	videoerrors "github.com/videocraft/compiler/internal/pkg/errors"
	"github.com/videocraft/compiler/internal/pkg/logger"
	"github.com/videocraft/compiler/internal/project"
	"github.com/videocraft/compiler/internal/rasterize"
)

// Orchestrator owns the probe -> build -> rasterize -> compile -> emit ->
// execute sequencing for one run.
type Orchestrator struct {
	cfg   *app.Config
	log   logger.Logger
	debug bool

	prober *asset.Prober

	// newSession is overridable in tests to avoid launching a real browser.
	newSession func() (container.Renderer, func(), error)
}

// New creates an Orchestrator bound to cfg, logging through log. When debug
// is true, the fully rendered filter-complex is logged for every output.
func New(cfg *app.Config, log logger.Logger, debug bool) *Orchestrator {
	return &Orchestrator{
		cfg:        cfg,
		log:        log,
		debug:      debug,
		prober:     asset.NewProber(cfg, log),
		newSession: defaultSessionFactory,
	}
}

func defaultSessionFactory() (container.Renderer, func(), error) {
	session, err := rasterize.NewSession()
	if err != nil {
		return nil, nil, err
	}
	return session, session.Close, nil
}

// RunID is a short identifier for one orchestrator run, used only in
// diagnostics.
func RunID() string {
	return uuid.New().String()[:8]
}

// Run compiles and (when execute is true) renders every named output of the
// project built from root/props. An empty outputNames renders every output
// declared in the project, in a stable (name-sorted) order. presetName
// selects an <ffmpeg><option> preset; empty uses the configured default
// preset args.
func (o *Orchestrator) Run(ctx context.Context, root *markup.Node, props markup.PropertyMap, outputNames []string, presetName string, execute bool) error {
	runID := RunID()
	log := o.log.WithField("run_id", runID)

	proj, err := project.Build(root, props)
	if err != nil {
		return o.fail(log, "build", err)
	}
	o.applyRenderDefaults(proj)

	reg, err := o.prober.ProbeAll(ctx, proj.AssetDeclarations())
	if err != nil {
		return o.fail(log, "probe", err)
	}
	if err := reg.Preflight(); err != nil {
		return o.fail(log, "preflight", err)
	}
	project.ResolveDurations(proj, reg)

	renderer, closeSession, err := o.newSession()
	if err != nil {
		return o.fail(log, "rasterize-session", err)
	}
	defer closeSession()

	cache := container.New(o.cfg.Cache.Dir, renderer, log)

	if len(outputNames) == 0 {
		for name := range proj.Outputs {
			outputNames = append(outputNames, name)
		}
		sort.Strings(outputNames)
	}

	activeKeys := map[string]bool{}
	for _, name := range outputNames {
		if err := o.runOutput(ctx, log, proj, name, reg, cache, presetName, execute); err != nil {
			return err
		}
		for k := range cache.ActiveKeys() {
			activeKeys[k] = true
		}
	}

	if o.cfg.Cache.SweepOnExit {
		if err := cache.Sweep(activeKeys); err != nil {
			return o.fail(log, "sweep", err)
		}
	}

	return nil
}

func (o *Orchestrator) runOutput(ctx context.Context, log logger.Logger, proj *project.Project, name string, reg *asset.Registry, cache *container.Cache, presetName string, execute bool) error {
	result, err := compile.ForOutput(proj, name, reg, cache)
	if err != nil {
		return o.fail(log, "compile:"+name, err)
	}

	if o.debug {
		log.WithField("output", name).WithField("graph", result.FilterComplex).Debug("compiled filter graph")
	}

	presetArgs, err := emit.ResolvePreset(proj.Presets, presetName)
	if err != nil {
		return o.fail(log, "preset", err)
	}

	out, ok := proj.Outputs[name]
	if !ok {
		return o.fail(log, "emit:"+name, videoerrors.ProjectStructural(fmt.Sprintf("unknown output %q", name)))
	}

	inv := emit.Build(o.cfg, emit.Spec{
		Assets:        result.Registry.Ordered(),
		FilterComplex: result.FilterComplex,
		HasAudio:      result.HasAudio,
		Output:        out,
		PresetArgs:    presetArgs,
	})

	log.WithField("output", name).Info(o.diagnosticLine(inv))

	if execute {
		if err := emit.Execute(ctx, o.cfg, inv); err != nil {
			return o.fail(log, "execute:"+name, err)
		}
	}

	return nil
}

// applyRenderDefaults fills in an output's resolution/fps from the
// configured render defaults when the markup omitted them (SPEC_FULL.md
// Render ambient config section).
func (o *Orchestrator) applyRenderDefaults(proj *project.Project) {
	for name, out := range proj.Outputs {
		if out.Width == 0 {
			out.Width = o.cfg.Render.DefaultWidth
		}
		if out.Height == 0 {
			out.Height = o.cfg.Render.DefaultHeight
		}
		if out.FPS == 0 {
			out.FPS = o.cfg.Render.DefaultFPS
		}
		proj.Outputs[name] = out
	}
}

// fail renders a user-facing diagnostic — operation label, error kind text,
// and any available source location — and returns the original error
// unchanged for the caller to propagate (spec.md §7).
func (o *Orchestrator) fail(log logger.Logger, stage string, err error) error {
	fields := videoerrors.GetLogContext(err)
	fields["stage"] = stage
	log.WithFields(fields).Error(videoerrors.SanitizeForClient(err))
	return err
}

// diagnosticLine renders the engine invocation for terminal display,
// colorizing only when stdout is a real TTY (mattn/go-isatty), grounded on
// the teacher's plain fmt.Println CLI output style.
func (o *Orchestrator) diagnosticLine(inv emit.Invocation) string {
	line := inv.String()
	if isatty.IsTerminal(os.Stdout.Fd()) {
		return "\x1b[36m" + line + "\x1b[0m"
	}
	return line
}
