package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/videocraft/compiler/internal/app"
	"github.com/videocraft/compiler/internal/httpapi"
	"github.com/videocraft/compiler/internal/markup"
	"github.com/videocraft/compiler/internal/orchestrator"
	"github.com/videocraft/compiler/internal/pkg/logger"
)

// Build information (set via ldflags)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
		projectPath = flag.String("project", "", "Path to the project markup file")
		outputName  = flag.String("output", "", "Name of a single <output> to render (default: all)")
		presetName  = flag.String("preset", "", "Name of an <ffmpeg><option> preset to use")
		debug       = flag.Bool("debug", false, "Dump the generated filter graph and verbose diagnostics")
		dryRun      = flag.Bool("dry-run", false, "Compile and print the engine invocation without executing it")
		serve       = flag.Bool("serve", false, "Run the optional HTTP compile-only surface instead of the CLI pipeline")
	)
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if *showHelp {
		printHelp()
		os.Exit(0)
	}

	cfg, err := app.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	appLogger := logger.NewFromConfig(cfg.Log.Level, cfg.Log.Format)

	if *serve {
		runServer(cfg, appLogger)
		return
	}

	if *projectPath == "" {
		appLogger.Fatal("missing -project: path to a project markup file is required outside -serve mode")
	}

	if err := runCompile(cfg, appLogger, *projectPath, *outputName, *presetName, *debug, !*dryRun); err != nil {
		appLogger.Fatal(err)
	}
}

// runCompile reads the project file, parses it through the fixture adapter,
// and drives the full probe -> build -> rasterize -> compile -> emit ->
// execute pipeline through the Orchestrator.
func runCompile(cfg *app.Config, appLogger logger.Logger, projectPath, outputName, presetName string, debug, execute bool) error {
	source, err := os.ReadFile(projectPath)
	if err != nil {
		return fmt.Errorf("reading project file: %w", err)
	}

	root, props, err := markup.ParseFixture(string(source))
	if err != nil {
		return fmt.Errorf("parsing project markup: %w", err)
	}

	var outputNames []string
	if outputName != "" {
		outputNames = []string{outputName}
	}

	orch := orchestrator.New(cfg, appLogger, debug)
	ctx := context.Background()
	return orch.Run(ctx, root, props, outputNames, presetName, execute)
}

// runServer starts the optional compile-only HTTP surface, mirroring the
// teacher's graceful-shutdown server loop.
func runServer(cfg *app.Config, appLogger logger.Logger) {
	router := httpapi.NewRouter(cfg, appLogger)

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server:", err)
		}
	}()

	appLogger.Info("Server started on ", cfg.Server.Address())

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown:", err)
	}

	appLogger.Info("Server exited")
}

func printVersion() {
	fmt.Printf("VideoCraft Compiler %s\n", version)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Build Date: %s\n", buildDate)
	fmt.Printf("Go Version: %s\n", runtime.Version())
	fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}

func printHelp() {
	fmt.Println("videocraft - declarative video composition compiler")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  videocraft -project <file> [flags]")
	fmt.Println("  videocraft -serve [flags]")
	fmt.Println()
	fmt.Println("FLAGS:")
	fmt.Println(strings.Join([]string{
		"  -help               Show help information",
		"  -version            Show version information",
		"  -project string     Path to the project markup file",
		"  -output string      Name of a single <output> to render (default: all)",
		"  -preset string      Name of an <ffmpeg><option> preset to use",
		"  -debug              Dump the generated filter graph and verbose diagnostics",
		"  -dry-run            Compile and print the engine invocation without executing it",
		"  -serve              Run the optional HTTP compile-only surface",
	}, "\n"))
	fmt.Println()
	fmt.Println("ENVIRONMENT VARIABLES:")
	fmt.Println("  Configuration can be set via environment variables with VIDEOCRAFT_ prefix")
	fmt.Println("  Example: VIDEOCRAFT_SERVER_PORT=8080")
	fmt.Println()
	fmt.Println("CONFIGURATION:")
	fmt.Println("  Configuration files are searched in:")
	fmt.Println("  - ./config.yaml")
	fmt.Println("  - ./config/config.yaml")
	fmt.Println("  - /etc/videocraft/config.yaml")
}
