// Package main is the entry point for the tessera compositor.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"golang.org/x/term"

	"github.com/dshills/tessera/internal/app"
	"github.com/dshills/tessera/internal/compositor"
	"github.com/dshills/tessera/internal/compositor/headless"
	"github.com/dshills/tessera/internal/compositor/terminal"
	"github.com/dshills/tessera/internal/logging"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// envPrefix is shared with the configuration overrides.
const envPrefix = "TESSERA"

// options are the command line settings.
type options struct {
	ConfigPath string
	Profile    string
	LogLevel   string
	LogFile    string
	Debug      bool
	Watch      bool
	Headless   bool
	SwitchVT   bool
	Version    bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseFlags(stderr, args)
	if errors.Is(err, ff.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	if opts.Version {
		fmt.Fprintf(stdout, "tessera %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return 0
	}

	useTerminal := !opts.Headless && isTerminal(stdin)

	logOut, closeLog, err := openLog(opts.LogFile, useTerminal, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer closeLog()

	level := logging.ParseLevel(opts.LogLevel)
	if opts.Debug {
		level = logging.LevelDebug
	}
	log := logging.New(logging.Config{Level: level, Output: logOut, Prefix: "tessera"})
	logging.Set(log)

	backend, err := newBackend(opts, useTerminal, stdin, stdout, log)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to create backend: %v\n", err)
		return 1
	}

	application, err := app.New(backend, app.Options{
		ConfigPath: opts.ConfigPath,
		Host:       opts.Profile,
		Watch:      opts.Watch,
		Strict:     opts.Debug,
		Logger:     log,
	})
	if err != nil {
		backend.Close()
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	// Handle signals: INT and TERM stop, HUP reloads.
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(signals)

	go func() {
		for sig := range signals {
			if sig == syscall.SIGHUP {
				application.RequestReload()
				continue
			}
			application.Shutdown()
		}
	}()

	if err := application.Run(context.Background()); err != nil {
		if errors.Is(err, terminal.ErrQuit) {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// parseFlags reads flags, then TESSERA_* environment variables.
func parseFlags(stderr io.Writer, args []string) (options, error) {
	var opts options

	fs := ff.NewFlagSet("tessera")
	fs.StringVar(&opts.ConfigPath, 'c', "config", "", "Path to the configuration file (default: search $XDG_CONFIG_HOME/tessera).")
	fs.StringVar(&opts.Profile, 'p', "profile", "", "Host profile to use instead of the host name.")
	{
		// The first valid value is the default.
		levels := []string{"info", "debug", "warn", "error"}
		usage := fmt.Sprintf("Logging level (valid: %s).", strings.Join(levels, ","))
		fs.StringEnumVar(&opts.LogLevel, 'l', "log-level", usage, levels...)
	}
	fs.StringVar(&opts.LogFile, 0, "log-file", "", "Write logs to this file (default: stderr, or a file in the temp dir with the terminal backend).")
	fs.BoolVar(&opts.Debug, 'd', "debug", "Enable debug logging and re-entrancy assertions.")
	fs.BoolVar(&opts.Watch, 'w', "watch", "Reload the configuration when it changes.")
	fs.BoolVar(&opts.Headless, 0, "headless", "Read key presses from stdin and write the status to stdout.")
	fs.BoolVar(&opts.SwitchVT, 0, "switch-vt", "Switch Linux virtual terminals for session.vt.")
	fs.BoolVar(&opts.Version, 'v', "version", "Print version.")

	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix(envPrefix)); err != nil {
		fmt.Fprintln(stderr, ffhelp.Flags(fs))
		return options{}, err
	}
	return opts, nil
}

// isTerminal reports whether r is an interactive terminal.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// openLog picks the log destination. The terminal backend owns the screen,
// so it logs to a file unless one was named.
func openLog(path string, useTerminal bool, stderr io.Writer) (io.Writer, func(), error) {
	if path == "" && useTerminal {
		path = filepath.Join(os.TempDir(), "tessera.log")
	}
	if path == "" {
		return stderr, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

func newBackend(opts options, useTerminal bool, stdin io.Reader, stdout io.Writer, log *logging.Logger) (app.Backend, error) {
	if useTerminal {
		var topts []terminal.Option
		if opts.SwitchVT {
			topts = append(topts, terminal.WithVTSwitcher(compositor.VTSwitcher{}))
		}
		b, err := terminal.New(log, topts...)
		if err != nil {
			return nil, err
		}
		return b, nil
	}

	var hopts []headless.Option
	if opts.SwitchVT {
		hopts = append(hopts, headless.WithVTSwitcher(compositor.VTSwitcher{}))
	}
	return headless.New(stdin, stdout, log, hopts...), nil
}
