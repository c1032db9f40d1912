// Package main implements uiwatch, a development monitor for UI hot reload.
//
// uiwatch loads a project's ui-manifest.yaml, binds every declared control
// to a logging stand-in reloader, and watches the project's definition files
// until interrupted. It exercises the full reload pipeline without a running
// application, which makes it useful for checking that a manifest's URIs
// resolve and that editor save behavior produces the events the runtime
// expects.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-drift/hotreload/pkg/appdirs"
	"github.com/go-drift/hotreload/pkg/errors"
	"github.com/go-drift/hotreload/pkg/hotreload"
	"github.com/go-drift/hotreload/pkg/manifest"
)

// Version is set at build time.
var Version = "0.1.0-dev"

const usage = `uiwatch watches a project's UI definition files and logs the
reloads a running application would perform.

Usage:
  uiwatch [--root DIR] [--log FILE] [--verbose]

Flags:
  --root DIR     Project root (default: nearest go.mod above the working directory)
  --log FILE     Append event lines to FILE (default: <user-data-dir>/uiwatch/events.log)
  --no-log       Do not write a log file
  --verbose      Include stack traces in failure reports
  -h, --help     Show this help
  -v, --version  Show version information

The project root must contain ui-manifest.yaml:

  module: github.com/acme/shop
  controls:
    - type: views.SettingsScreen
      uri: ui://shop/views/settings.ui

Environment:
  HOTRELOAD_DATA_DIR   Override the user data directory for the default log file`

type options struct {
	root    string
	logFile string
	noLog   bool
	verbose bool
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	opts, err := parseArgs(args)
	if err != nil {
		return err
	}
	if opts == nil { // --help or --version handled
		return nil
	}

	root := opts.root
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		root, err = manifest.ProjectRoot(wd)
		if err != nil {
			return err
		}
	}

	m, err := manifest.Load(root)
	if err != nil {
		return err
	}

	logW, logPath, err := openLog(opts)
	if err != nil {
		return err
	}
	if logW != nil {
		defer logW.Close()
	}

	report := func(format string, args ...any) {
		line := fmt.Sprintf(format, args...)
		fmt.Println(line)
		if logW != nil {
			fmt.Fprintf(logW, "%s %s\n", time.Now().Format(time.RFC3339), line)
		}
	}

	src := m.Bind(func(desc hotreload.Descriptor) (hotreload.Reloader, error) {
		return hotreload.ReloaderFunc(func(context.Context) error {
			report("reload %s (%s)", desc.TypeName, desc.SourceURI)
			return nil
		}), nil
	})

	ctx, err := hotreload.FromSource(src, root,
		hotreload.WithReporter(&errors.LogHandler{Verbose: opts.verbose}))
	if err != nil {
		return err
	}
	defer ctx.Close()

	if name, err := manifest.ModulePath(root); err == nil {
		fmt.Printf("Project: %s\n", name)
	}
	fmt.Printf("Watching %s (%d controls)\n", ctx.Root(), len(ctx.Paths()))
	for _, p := range ctx.Paths() {
		rel, err := filepath.Rel(ctx.Root(), p)
		if err != nil {
			rel = p
		}
		fmt.Printf("  %s\n", rel)
	}
	if logPath != "" {
		fmt.Printf("Event log: %s\n", logPath)
	}
	fmt.Println("Press Ctrl+C to stop.")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	fmt.Println("\nStopping.")
	return nil
}

// parseArgs hand-parses the flag set. A nil options return with a nil error
// means a terminal flag (--help, --version) already ran.
func parseArgs(args []string) (*options, error) {
	opts := &options{}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-h" || arg == "--help" || arg == "help":
			fmt.Println(usage)
			return nil, nil
		case arg == "-v" || arg == "--version" || arg == "version":
			fmt.Printf("uiwatch version %s\n", Version)
			return nil, nil
		case arg == "--verbose":
			opts.verbose = true
		case arg == "--no-log":
			opts.noLog = true
		case arg == "--root":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("--root requires a directory path")
			}
			i++
			opts.root = args[i]
		case strings.HasPrefix(arg, "--root="):
			opts.root = strings.TrimPrefix(arg, "--root=")
		case arg == "--log":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("--log requires a file path")
			}
			i++
			opts.logFile = args[i]
		case strings.HasPrefix(arg, "--log="):
			opts.logFile = strings.TrimPrefix(arg, "--log=")
		default:
			return nil, fmt.Errorf("unknown flag %q (use --help)", arg)
		}
	}
	return opts, nil
}

// openLog opens the event log file for appending, creating its directory.
// With --no-log it returns nothing; without --log it defaults to the
// per-user data directory.
func openLog(opts *options) (*os.File, string, error) {
	if opts.noLog {
		return nil, "", nil
	}
	path := opts.logFile
	if path == "" {
		dir, err := appdirs.UserDataDir("uiwatch")
		if err != nil {
			return nil, "", err
		}
		path = filepath.Join(dir, "events.log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, "", err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, "", err
	}
	return f, path, nil
}
