// Command lathe evaluates a scene file and writes its tessellated geometry.
//
// Usage:
//
//	lathe -scene examples/coil.lisp -format webp
//	lathe -scene examples/table.yaml -format stl -out build
//	lathe -scene examples/coil.lisp -check
//	lathe -scene examples/coil.lisp -check -reference -out build
//
// Lisp scenes (.lisp) run in a sandboxed interpreter; YAML manifests
// (.yaml, .yml) are decoded directly. Settings come from an optional TOML
// file (-config) and are overridden by flags. An interrupt stops the
// evaluation in progress.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/chazu/lathe/pkg/config"
	"github.com/chazu/lathe/pkg/kernel"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run is main without the process exit, returning the exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("lathe", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configFile := fs.String("config", "", "Path to a TOML config file")
	scenePath := fs.String("scene", "", "Scene file (.lisp, .yaml); - reads Lisp from stdin")
	outputDir := fs.String("out", "", "Output directory (default: config or .)")
	format := fs.String("format", "", "Output format: json, bin, stl, webp, png")
	workers := fs.Int("workers", 0, "Tessellation workers (default: NumCPU)")
	check := fs.Bool("check", false, "Check orientation and reference deviation instead of writing output")
	reference := fs.Bool("reference", false, "Also write each shape's polygonized reference solid as STL")
	verbose := fs.Bool("v", false, "Debug logging")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	kernel.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))

	if *scenePath == "" {
		fmt.Fprintln(stderr, "Error: -scene is required")
		fs.Usage()
		return 2
	}

	// Load config
	cfg := config.Default()
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(stderr, "Error loading config: %v\n", err)
			return 1
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		OutputDir: *outputDir,
		Format:    *format,
		Workers:   *workers,
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	var data []byte
	var err error
	if *scenePath == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(*scenePath)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error reading scene: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := NewAppWithConfig(cfg)
	result := app.EvaluateFileContext(ctx, *scenePath, data)
	for _, w := range result.Warnings {
		fmt.Fprintf(stderr, "warning: %s\n", describe(w))
	}
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			fmt.Fprintf(stderr, "error: %s\n", describe(e))
		}
		return 1
	}

	name := *scenePath
	if name == "-" {
		name = "scene"
	}
	if *reference {
		if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		paths, err := app.WriteReferences(result, cfg.Output.Dir, name)
		for _, p := range paths {
			fmt.Fprintf(stdout, "wrote %s\n", p)
		}
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}

	if *check {
		reports, err := app.Check(result)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		if failed := printReports(stdout, reports); failed > 0 {
			fmt.Fprintf(stdout, "%d of %d shapes failed\n", failed, len(reports))
			return 1
		}
		fmt.Fprintf(stdout, "%d shapes ok\n", len(reports))
		return 0
	}

	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	path := cfg.OutputPath(name)
	if err := writeResult(path, cfg, result); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "wrote %s (%d meshes)\n", path, len(result.Meshes))
	return 0
}

func describe(e EvalErrorData) string {
	switch {
	case e.Line > 0:
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	case e.Node != "":
		return fmt.Sprintf("node %s: %s", e.Node, e.Message)
	}
	return e.Message
}
