// Package main is the entry point for the bbuf command.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/dshills/bbuf/internal/config"
	"github.com/dshills/bbuf/internal/engine"
	"github.com/dshills/bbuf/internal/engine/buffer"
	"github.com/dshills/bbuf/internal/logging"
	"github.com/dshills/bbuf/internal/project/vfs"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// session holds what every command needs, set up in the Before hook.
type session struct {
	fs     vfs.VFS
	cfg    *config.Config
	log    zerolog.Logger
	closer io.Closer
}

func newApp() *cli.App {
	s := &session{fs: vfs.NewOSFS(), log: zerolog.Nop()}

	return &cli.App{
		Name:                   "bbuf",
		Usage:                  "Inspect and convert text files through the bbuf line buffer",
		Version:                fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path (.toml, .yaml)",
				EnvVars: []string{"BBUF_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (trace, debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Log format (console, json)",
			},
			&cli.BoolFlag{
				Name:    "read-only",
				Aliases: []string{"R"},
				Usage:   "Refuse to modify files",
			},
		},
		Before: s.setup,
		After:  s.teardown,
		Commands: []*cli.Command{
			infoCommand(s),
			catCommand(s),
			lineCommand(s),
			convertCommand(s),
			watchCommand(s),
			settingsCommand(s),
		},
	}
}

func (s *session) setup(c *cli.Context) error {
	opts := []config.Option{config.WithFileSystem(s.fs)}
	if path := c.String("config"); path != "" {
		opts = append(opts, config.WithFile(path))
	}
	s.cfg = config.New(opts...)
	if err := s.cfg.Load(c.Context); err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	overrides := map[string]any{}
	if c.IsSet("log-level") {
		overrides["logging.level"] = c.String("log-level")
	}
	if c.IsSet("log-format") {
		overrides["logging.format"] = c.String("log-format")
	}
	if c.Bool("read-only") {
		overrides["engine.readOnly"] = true
	}
	for path, v := range overrides {
		if err := s.cfg.Set(path, v); err != nil {
			return err
		}
	}

	lc := s.cfg.Logging()
	log, closer, err := logging.New(logging.Config{
		Level:  lc.Level,
		Format: lc.Format,
		Output: lc.Output,
	})
	if err != nil {
		return err
	}
	s.log, s.closer = log, closer
	s.log.Debug().Str("config", s.cfg.Path()).Msg("configured")
	return nil
}

func (s *session) teardown(*cli.Context) error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

// engineOptions maps the loaded configuration onto engine options.
func (s *session) engineOptions() []engine.Option {
	bc := s.cfg.Buffer()
	ec := s.cfg.Engine()

	bufOpts := []buffer.Option{buffer.WithWindowSize(bc.WindowSize)}
	if bc.MaxScratch > 0 {
		bufOpts = append(bufOpts, buffer.WithMaxScratch(bc.MaxScratch))
	}
	if bc.NarrowCodeUnits {
		bufOpts = append(bufOpts, buffer.WithNarrowCodeUnits())
	}

	opts := []engine.Option{
		engine.WithLogger(s.log),
		engine.WithMaxUndoEntries(ec.MaxUndo),
		engine.WithWatchDelay(ec.WatchDelay),
		engine.WithBufferOptions(bufOpts...),
	}
	if ec.ReadOnly {
		opts = append(opts, engine.WithReadOnly())
	}
	return opts
}

func (s *session) open(path string) (*engine.Engine, error) {
	return engine.Open(s.fs, path, s.engineOptions()...)
}
