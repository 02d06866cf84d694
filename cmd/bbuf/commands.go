package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/bbuf/internal/config"
	"github.com/dshills/bbuf/internal/engine"
	"github.com/dshills/bbuf/internal/engine/textenc"
	"github.com/dshills/bbuf/internal/logging"
)

func infoCommand(s *session) *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "Show encoding, line ending and line count of files",
		ArgsUsage: "PATTERN...",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "json",
				Aliases: []string{"j"},
				Usage:   "Output as JSON",
			},
			&cli.IntFlag{
				Name:  "jobs",
				Usage: "Files read in parallel (0 = number of CPUs)",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return cli.Exit("info: at least one file or pattern is required", 2)
			}
			paths, err := expandPatterns(c.Args().Slice())
			if err != nil {
				return err
			}

			infos := make([]engine.Info, len(paths))
			g, ctx := errgroup.WithContext(c.Context)
			jobs := c.Int("jobs")
			if jobs <= 0 {
				jobs = runtime.GOMAXPROCS(0)
			}
			g.SetLimit(jobs)
			for i, path := range paths {
				g.Go(func() error {
					if err := ctx.Err(); err != nil {
						return err
					}
					e, err := s.open(path)
					if err != nil {
						return err
					}
					infos[i] = e.Info()
					return e.Close()
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			if c.Bool("json") {
				return writeInfoJSON(c, infos)
			}
			tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PATH\tENCODING\tENDING\tLINES\tBYTES\tFINGERPRINT")
			for _, info := range infos {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%016x\n",
					info.Path, info.Encoding, info.LineEnding, info.Lines, info.Size, info.Fingerprint)
			}
			return tw.Flush()
		},
	}
}

type infoJSON struct {
	Path        string           `json:"path"`
	Encoding    textenc.Encoding `json:"encoding"`
	LineEnding  string           `json:"lineEnding"`
	Lines       int              `json:"lines"`
	Size        int64            `json:"size"`
	Fingerprint string           `json:"fingerprint"`
}

func writeInfoJSON(c *cli.Context, infos []engine.Info) error {
	out := make([]infoJSON, len(infos))
	for i, info := range infos {
		out[i] = infoJSON{
			Path:        info.Path,
			Encoding:    info.Encoding,
			LineEnding:  info.LineEnding.String(),
			Lines:       info.Lines,
			Size:        info.Size,
			Fingerprint: fmt.Sprintf("%016x", info.Fingerprint),
		}
	}
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// expandPatterns resolves glob patterns. Arguments without glob syntax are
// kept as given so a missing file is reported by Open. Duplicates are
// dropped and the order of first appearance is kept.
func expandPatterns(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		if !strings.ContainsAny(arg, "*?[{") {
			paths = append(paths, arg)
			continue
		}
		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("pattern %q matched no files", arg)
		}
		slices.Sort(matches)
		paths = append(paths, matches...)
	}

	seen := make(map[string]bool, len(paths))
	out := paths[:0]
	for _, p := range paths {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out, nil
}

func catCommand(s *session) *cli.Command {
	return &cli.Command{
		Name:      "cat",
		Usage:     "Print a file decoded to UTF-8",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "number",
				Aliases: []string{"n"},
				Usage:   "Number output lines",
			},
			&cli.BoolFlag{
				Name:  "raw",
				Usage: "Print lines as stored, without decoding",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("cat: exactly one file is required", 2)
			}
			e, err := s.open(c.Args().First())
			if err != nil {
				return err
			}
			defer e.Close()

			w := c.App.Writer
			for i := range e.LineCount() {
				if c.Bool("number") {
					fmt.Fprintf(w, "%6d\t", i+1)
				}
				if c.Bool("raw") {
					raw, err := e.RawLine(i)
					if err != nil {
						return err
					}
					if _, err := w.Write(raw); err != nil {
						return err
					}
					continue
				}
				text, err := e.Line(i)
				if err != nil {
					return err
				}
				if _, err := fmt.Fprintln(w, text); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func lineCommand(s *session) *cli.Command {
	return &cli.Command{
		Name:      "line",
		Usage:     "Print one line of a file (numbered from 1)",
		ArgsUsage: "FILE N",
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return cli.Exit("line: FILE and N are required", 2)
			}
			n, err := strconv.Atoi(c.Args().Get(1))
			if err != nil || n < 1 {
				return cli.Exit(fmt.Sprintf("line: invalid line number %q", c.Args().Get(1)), 2)
			}

			e, err := s.open(c.Args().First())
			if err != nil {
				return err
			}
			defer e.Close()

			text, err := e.Line(n - 1)
			if err != nil {
				return fmt.Errorf("line %d of %d: %w", n, e.LineCount(), err)
			}
			_, err = fmt.Fprintln(c.App.Writer, text)
			return err
		},
	}
}

func convertCommand(s *session) *cli.Command {
	return &cli.Command{
		Name:      "convert",
		Usage:     "Rewrite a file in another encoding",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "to",
				Aliases: []string{"t"},
				Usage:   "Target encoding (ascii, utf-8, utf-16le, utf-16be, utf-32le, utf-32be, binary)",
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Write to this path instead of replacing FILE",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("convert: exactly one file is required", 2)
			}
			name := c.String("to")
			if name == "" {
				name = s.cfg.Engine().Encoding
			}
			if name == "" {
				return cli.Exit("convert: --to is required (or set engine.encoding)", 2)
			}
			enc, err := textenc.ParseEncoding(name)
			if err != nil {
				return cli.Exit("convert: "+err.Error(), 2)
			}

			e, err := s.open(c.Args().First())
			if err != nil {
				return err
			}
			defer e.Close()

			from := e.Encoding()
			if out := c.String("out"); out != "" {
				err = e.SaveAs(out, enc)
			} else {
				err = e.Save(enc)
			}
			if err != nil {
				if errors.Is(err, engine.ErrReadOnly) {
					return cli.Exit("convert: read-only mode", 1)
				}
				return err
			}
			log := logging.Component(s.log, "cli")
			log.Info().
				Str("path", e.Path()).
				Stringer("from", from).
				Stringer("to", enc).
				Msg("converted")
			return nil
		},
	}
}

func watchCommand(s *session) *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Report changes made to a file by other programs",
		ArgsUsage: "FILE",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("watch: exactly one file is required", 2)
			}
			e, err := s.open(c.Args().First())
			if err != nil {
				return err
			}
			defer e.Close()

			w := c.App.Writer
			fmt.Fprintf(w, "watching %s (%016x)\n", e.Path(), e.Fingerprint())
			return e.Watch(c.Context, func(ch engine.Change) {
				if ch.Removed {
					fmt.Fprintf(w, "%s: removed\n", ch.Path)
					return
				}
				fmt.Fprintf(w, "%s: %s (%016x)\n", ch.Path, ch.Op, ch.Fingerprint)
			})
		},
	}
}

func settingsCommand(s *session) *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "List configuration settings with their values and sources",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "describe",
				Usage: "Include a description of each setting",
			},
		},
		Action: func(c *cli.Context) error {
			tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
			for _, path := range config.Settings() {
				v, _ := s.cfg.Get(path)
				src, _ := s.cfg.Source(path)
				fmt.Fprintf(tw, "%s\t%v\t%s\n", path, v, src)
				if c.Bool("describe") {
					d, _ := config.Describe(path)
					fmt.Fprintf(tw, "\t# %s\t\n", d)
				}
			}
			return tw.Flush()
		},
	}
}
