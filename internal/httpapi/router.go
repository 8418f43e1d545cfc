// Package httpapi exposes the compiler's optional --serve surface: a thin
// Gin router offering a compile-only endpoint, mirroring the teacher's
// internal/api/router.go + CORS middleware shape. The compilation core
// never imports this package; it is the only outer surface on top of it.
package httpapi

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

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

// NewRouter builds the Gin router for the --serve surface: GET /health and
// POST /compile (build + emit, never execute).
func NewRouter(cfg *app.Config, log logger.Logger) *gin.Engine {
	if cfg.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Content-Type"},
	}))

	router.GET("/health", healthHandler)
	router.POST("/compile", compileHandler(cfg, log))

	return router
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// compileRequest is the JSON body accepted by POST /compile: an HTML
// project source (parsed through the markup fixture adapter, since the real
// cascade-aware tokenizer is an external collaborator per spec.md §6), the
// output to compile, and an optional preset name.
type compileRequest struct {
	Source     string `json:"source" binding:"required"`
	OutputName string `json:"output" binding:"required"`
	PresetName string `json:"preset"`
}

type compileResponse struct {
	FilterComplex string   `json:"filter_complex"`
	Binary        string   `json:"binary"`
	Args          []string `json:"args"`
}

// compileHandler builds the project, probes its assets, compiles the
// requested output, and returns the would-be engine invocation without
// running it (this surface never executes ffmpeg).
func compileHandler(cfg *app.Config, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req compileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		root, props, err := markup.ParseFixture(req.Source)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project markup: " + err.Error()})
			return
		}

		proj, err := project.Build(root, props)
		if err != nil {
			writeCompileError(c, log, err)
			return
		}

		prober := asset.NewProber(cfg, log)
		reg, err := prober.ProbeAll(c.Request.Context(), proj.AssetDeclarations())
		if err != nil {
			writeCompileError(c, log, err)
			return
		}
		if err := reg.Preflight(); err != nil {
			writeCompileError(c, log, err)
			return
		}
		project.ResolveDurations(proj, reg)

		session, err := rasterize.NewSession()
		if err != nil {
			writeCompileError(c, log, err)
			return
		}
		defer session.Close()

		cache := container.New(cfg.Cache.Dir, session, log)

		result, err := compile.ForOutput(proj, req.OutputName, reg, cache)
		if err != nil {
			writeCompileError(c, log, err)
			return
		}

		presetArgs, err := emit.ResolvePreset(proj.Presets, req.PresetName)
		if err != nil {
			writeCompileError(c, log, err)
			return
		}

		out := proj.Outputs[req.OutputName]
		inv := emit.Build(cfg, emit.Spec{
			Assets:        result.Registry.Ordered(),
			FilterComplex: result.FilterComplex,
			HasAudio:      result.HasAudio,
			Output:        out,
			PresetArgs:    presetArgs,
		})

		c.JSON(http.StatusOK, compileResponse{
			FilterComplex: result.FilterComplex,
			Binary:        inv.Binary,
			Args:          inv.Args,
		})
	}
}

func writeCompileError(c *gin.Context, log logger.Logger, err error) {
	log.WithFields(videoerrors.GetLogContext(err)).Error("compile request failed")
	c.JSON(http.StatusUnprocessableEntity, gin.H{"error": videoerrors.SanitizeForClient(err)})
}

