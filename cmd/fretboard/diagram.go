package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/makeasinger/fretboard/internal/model"
	"github.com/makeasinger/fretboard/internal/render"
	"github.com/makeasinger/fretboard/internal/theory"
	"github.com/makeasinger/fretboard/internal/tui"
)

func newDiagramCmd(app *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diagram [flags]",
		Short: "Draw a minor scale diagram",
		Long:  `Diagram generates the scale and its 12-fret grid and prints it in the chosen format`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiagram(cmd, app)
		},
	}
	cmd.Flags().Int("strings", 0, "string count (default from presets)")
	cmd.Flags().String("tuning", "", "tuning text or preset name (default standard)")
	cmd.Flags().String("root", "", "root note (default from presets)")
	cmd.Flags().String("scale", "", "scale type natural|harmonic (default from presets)")
	cmd.Flags().String("format", "pretty", "output format (pretty|txt|json|msgpack)")
	cmd.Flags().StringP("output", "o", "", "write to a file instead of stdout")
	return cmd
}

func runDiagram(cmd *cobra.Command, app *cli) error {
	strs, err := stringsFlag(cmd, app)
	if err != nil {
		return err
	}
	tuning, _ := cmd.Flags().GetString("tuning")
	root, _ := cmd.Flags().GetString("root")
	if root == "" {
		root = app.presets.Defaults.Root
	}
	scale, _ := cmd.Flags().GetString("scale")
	if scale == "" {
		scale = string(app.presets.Defaults.Scale)
	}
	format, _ := cmd.Flags().GetString("format")

	sheet, err := app.diagrams.Sheet(&model.DiagramRequest{
		Strings:   strs,
		Tuning:    app.presets.Resolve(tuning),
		Root:      root,
		ScaleType: theory.ScaleType(scale),
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if format == "pretty" {
		_, err := io.WriteString(out, render.Pretty(sheet, app.styles()))
		return err
	}
	f, err := render.ParseFormat(format)
	if err != nil {
		return err
	}
	return render.Write(out, f, sheet)
}

func newTUICmd(app *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Explore scales interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m := tui.New(app.diagrams, app.presets, app.styles())
			_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
			return err
		},
	}
}
