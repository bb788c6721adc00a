package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"

	"github.com/starford/scalesmith/internal"
	"github.com/starford/scalesmith/internal/library"
	"github.com/starford/scalesmith/internal/mcpserver"
	"github.com/starford/scalesmith/internal/scaleservice"
)

var errUsage = errors.New("missing argument")

var displayFlags = []cli.Flag{
	&cli.StringFlag{Name: "level", Aliases: []string{"l"}, Usage: "Chord level: off, basic, advanced or all"},
	&cli.StringFlag{Name: "symbology", Aliases: []string{"s"}, Usage: "Chord symbology: raw, common or jazz"},
}

var scaleFlags = []cli.Flag{
	&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Usage: "Mode name or zero-based index"},
	&cli.StringFlag{Name: "key", Aliases: []string{"k"}, Usage: "Key, e.g. C, F# or Bb (empty shows roman numerals)"},
}

func flags(groups ...[]cli.Flag) []cli.Flag {
	var out []cli.Flag
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// withServices loads the configuration, opens the store and library and,
// when sync is set, imports the library before calling fn. One-shot
// commands log as text to stderr so stdout stays clean.
func withServices(ctx context.Context, cmd *cli.Command, sync bool, fn func(*internal.Services, *slog.Logger) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.App.LogLevel}))
	slog.SetDefault(logger)

	services, err := internal.OpenServices(ctx, cfg)
	if err != nil {
		return err
	}
	defer services.Close()

	if sync {
		services.Sync(logger)
	}
	return fn(services, logger)
}

func chartRequest(cmd *cli.Command) (scaleservice.ChartRequest, error) {
	family := cmd.Args().First()
	if family == "" {
		return scaleservice.ChartRequest{}, fmt.Errorf("%w: scale family", errUsage)
	}
	return scaleservice.ChartRequest{
		Family:    family,
		Mode:      cmd.String("mode"),
		Key:       cmd.String("key"),
		Level:     cmd.String("level"),
		Symbology: cmd.String("symbology"),
	}, nil
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the MCP tools over stdio",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withServices(ctx, cmd, true, func(s *internal.Services, _ *slog.Logger) error {
				return mcpserver.New(s.Scales).ServeStdio()
			})
		},
	}
}

func chartCommand() *cli.Command {
	return &cli.Command{
		Name:      "chart",
		Usage:     "Print the chords of every degree of a scale",
		ArgsUsage: "<family>",
		Flags:     flags(scaleFlags, displayFlags),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			req, err := chartRequest(cmd)
			if err != nil {
				return err
			}
			return withServices(ctx, cmd, true, func(s *internal.Services, _ *slog.Logger) error {
				c, err := s.Scales.Chart(ctx, req)
				if err != nil {
					return err
				}
				fmt.Println(c.Text())
				return nil
			})
		},
	}
}

func chordsCommand() *cli.Command {
	return &cli.Command{
		Name:      "chords",
		Usage:     "Print the chords of one scale degree with their derivations",
		ArgsUsage: "<family> <degree>",
		Flags:     flags(scaleFlags, displayFlags),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			req, err := chartRequest(cmd)
			if err != nil {
				return err
			}
			degree, err := strconv.Atoi(cmd.Args().Get(1))
			if err != nil {
				return fmt.Errorf("%w: degree must be a number", errUsage)
			}
			return withServices(ctx, cmd, true, func(s *internal.Services, _ *slog.Logger) error {
				d, err := s.Scales.DegreeChords(ctx, req, degree)
				if err != nil {
					return err
				}
				fmt.Println(d.Note)
				tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				for _, l := range d.Labels[1:] {
					fmt.Fprintf(tw, "  %s\t%s\n", l.Text, strings.ReplaceAll(l.Tooltip, "\n", " | "))
				}
				return tw.Flush()
			})
		},
	}
}

func catalogCommand() *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "List the chord catalog active at a level",
		Flags: displayFlags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withServices(ctx, cmd, false, func(s *internal.Services, _ *slog.Logger) error {
				entries, err := s.Scales.Catalog(cmd.String("level"), cmd.String("symbology"))
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				for _, e := range entries {
					labels := make([]string, len(e.Chords))
					for i, c := range e.Chords {
						labels[i] = c.Label
					}
					fmt.Fprintf(tw, "%v\t%s\n", e.Intervals.Values(), strings.Join(labels, ", "))
				}
				return tw.Flush()
			})
		},
	}
}

func explainCommand() *cli.Command {
	return &cli.Command{
		Name:      "explain",
		Usage:     "Show the intervals and bass derivations of a chord name",
		ArgsUsage: "<chord>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "symbology", Aliases: []string{"s"}, Usage: "Chord symbology: raw, common or jazz"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			name := cmd.Args().First()
			if name == "" {
				return fmt.Errorf("%w: chord name", errUsage)
			}
			return withServices(ctx, cmd, false, func(s *internal.Services, _ *slog.Logger) error {
				entries, err := s.Scales.Explain(name, cmd.String("symbology"))
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				for _, e := range entries {
					for _, c := range e.Chords {
						fmt.Fprintf(tw, "%s %v (%s)\n", c.Label, e.Intervals.Values(), c.Tier)
						for _, v := range c.Derivations {
							note := ""
							if v.Inexact {
								note = "\tinexact"
							}
							fmt.Fprintf(tw, "  %s\tbass %d\tnotes %v%s\n", v.Text, v.Bass, v.PitchClasses, note)
						}
					}
				}
				return tw.Flush()
			})
		},
	}
}

func identifyCommand() *cli.Command {
	return &cli.Command{
		Name:      "identify",
		Usage:     "Find the scales containing exactly the given notes; the first note is the key",
		ArgsUsage: "<note> [note...]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			notes := cmd.Args().Slice()
			if len(notes) == 0 {
				return fmt.Errorf("%w: notes", errUsage)
			}
			return withServices(ctx, cmd, true, func(s *internal.Services, _ *slog.Logger) error {
				res, err := s.Scales.Identify(ctx, notes)
				if err != nil {
					return err
				}
				fmt.Printf("key %s, intervals %v\n", res.Key, res.Intervals)
				for _, c := range res.Exact {
					fmt.Printf("  %s: %s\n", c.Family, c.Mode)
				}
				if len(res.Exact) == 0 {
					fmt.Println("no exact match; nearest:")
					for _, c := range res.Nearest {
						fmt.Printf("  %s: %s (%.2f)\n", c.Family, c.Mode, c.Similarity)
					}
				}
				return nil
			})
		},
	}
}

func midiCommand() *cli.Command {
	return &cli.Command{
		Name:      "midi",
		Usage:     "Write a practice Standard MIDI File for a keyed scale",
		ArgsUsage: "<family>",
		Flags: flags(scaleFlags, []cli.Flag{
			&cli.IntFlag{Name: "octaves", Value: 1, Usage: "Octaves to span (1-3)"},
			&cli.StringFlag{Name: "patterns", Aliases: []string{"p"}, Usage: "Comma separated: linear-up, linear-down, pattern-up, pattern-down, arpeggio-up, arpeggio-down"},
			&cli.FloatFlag{Name: "tempo", Value: 120, Usage: "Tempo in BPM"},
			&cli.IntFlag{Name: "program", Usage: "General MIDI program (0-127)"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: "scale.mid", Usage: "Output file"},
		}),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			family := cmd.Args().First()
			if family == "" {
				return fmt.Errorf("%w: scale family", errUsage)
			}
			return withServices(ctx, cmd, true, func(s *internal.Services, logger *slog.Logger) error {
				data, err := s.Scales.MIDI(ctx, scaleservice.MIDIRequest{
					Family:   family,
					Mode:     cmd.String("mode"),
					Key:      cmd.String("key"),
					Octaves:  int(cmd.Int("octaves")),
					Patterns: cmd.String("patterns"),
					Tempo:    cmd.Float("tempo"),
					Program:  int(cmd.Int("program")),
				})
				if err != nil {
					return err
				}
				out := cmd.String("out")
				if err := os.WriteFile(out, data, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", out, err)
				}
				logger.Info("midi: written", slog.String("path", out), slog.Int("bytes", len(data)))
				return nil
			})
		},
	}
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import the scale library into the store",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withServices(ctx, cmd, false, func(s *internal.Services, logger *slog.Logger) error {
				metas, err := s.Library.List()
				if err != nil {
					return err
				}
				bar := progressbar.NewOptions(len(metas),
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionEnableColorCodes(true),
					progressbar.OptionShowBytes(false),
					progressbar.OptionSetWidth(40),
					progressbar.OptionShowCount(),
					progressbar.OptionSetDescription("[cyan]Importing[reset]"),
					progressbar.OptionOnCompletion(func() {
						fmt.Fprintln(os.Stderr)
					}),
				)
				err = library.SyncWithProgress(s.DB, s.Library, logger, func(string) {
					_ = bar.Add(1)
				})
				if err != nil {
					return err
				}
				_ = bar.Finish()

				all, err := s.Scales.ListFamilies(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("%d files, %d scale families\n", len(metas), len(all))
				return nil
			})
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Write scale families as YAML (all families when none are named)",
		ArgsUsage: "[family...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Output file (default stdout)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withServices(ctx, cmd, true, func(s *internal.Services, _ *slog.Logger) error {
				data, err := s.Scales.Export(ctx, cmd.Args().Slice())
				if err != nil {
					return err
				}
				if out := cmd.String("out"); out != "" {
					return os.WriteFile(out, data, 0o644)
				}
				_, err = os.Stdout.Write(data)
				return err
			})
		},
	}
}

func resetCommand() *cli.Command {
	return &cli.Command{
		Name:  "reset",
		Usage: "Restore the factory scale families, or reset to them removing custom ones",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "remove-custom", Usage: "Also delete custom families and their library files"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withServices(ctx, cmd, false, func(s *internal.Services, logger *slog.Logger) error {
				reset := cmd.Bool("remove-custom")
				if err := s.Scales.ResetDefaults(ctx, reset); err != nil {
					return err
				}
				logger.Info("reset: done", slog.Bool("remove_custom", reset))
				return nil
			})
		},
	}
}
