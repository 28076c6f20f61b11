package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/makeasinger/fretboard/internal/preset"
	"github.com/makeasinger/fretboard/internal/render"
	"github.com/makeasinger/fretboard/internal/service"
)

var errorColor = color.New(color.FgRed, color.Bold)

// cli is the state shared by every subcommand, filled in before any of
// them runs.
type cli struct {
	presets  *preset.File
	diagrams *service.DiagramService
	color    bool
}

func (c *cli) styles() render.Styles {
	if c.color {
		return render.DefaultStyles()
	}
	return render.PlainStyles()
}

func newRootCmd() *cobra.Command {
	app := &cli{diagrams: service.NewDiagramService()}

	rootCmd := &cobra.Command{
		Use:           "fretboard",
		Short:         "Minor scale fretboard diagrams",
		Long:          `Fretboard maps natural and harmonic minor scales onto 12-fret diagrams for 4 to 8 string instruments`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup(cmd)
		},
	}

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().String("presets", "", "path to a presets TOML file")

	rootCmd.AddCommand(newNoteCmd(app))
	rootCmd.AddCommand(newTuningCmd(app))
	rootCmd.AddCommand(newTuningsCmd(app))
	rootCmd.AddCommand(newDiagramCmd(app))
	rootCmd.AddCommand(newTUICmd(app))
	return rootCmd
}

func (c *cli) setup(cmd *cobra.Command) error {
	colorFlag, err := cmd.Flags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	switch colorFlag {
	case "on":
		c.color = true
	case "off":
		c.color = false
	case "auto":
		c.color = isTerminal(os.Stdout)
	default:
		return fmt.Errorf("unknown color mode: %s", colorFlag)
	}
	color.NoColor = !c.color

	path, err := cmd.Flags().GetString("presets")
	if err != nil {
		return fmt.Errorf("failed to get presets flag: %w", err)
	}
	if path == "" {
		c.presets = preset.Default()
		return nil
	}
	c.presets, err = preset.Load(path)
	return err
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errorColor.Fprint(os.Stderr, "error: ")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
