package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/makeasinger/fretboard/internal/model"
	"github.com/makeasinger/fretboard/internal/theory"
)

var (
	noteColor  = color.New(color.FgGreen)
	labelColor = color.New(color.FgCyan, color.Bold)
)

func newNoteCmd(app *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "note name...",
		Short: "Parse note names",
		Long:  `Note prints the pitch class and sharp spelling of each note name`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			failed := 0
			for _, arg := range args {
				res, err := app.diagrams.Note(&model.NoteRequest{Note: arg})
				if err != nil {
					failed++
					fmt.Fprintf(out, "%-8s %s\n", arg, errorColor.Sprint(err))
					continue
				}
				fmt.Fprintf(out, "%-8s %2d  %s\n", arg, res.PitchClass, noteColor.Sprint(res.SharpName))
			}
			if failed > 0 {
				return fmt.Errorf("%w: %d of %d", theory.ErrInvalidNote, failed, len(args))
			}
			return nil
		},
	}
}

func newTuningCmd(app *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tuning text...",
		Short: "Resolve a tuning",
		Long:  `Tuning resolves an explicit note list, a "Drop <note>" shorthand or a preset name`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			strs, err := stringsFlag(cmd, app)
			if err != nil {
				return err
			}
			text := app.presets.Resolve(strings.Join(args, " "))
			res, err := app.diagrams.Tuning(&model.TuningRequest{Tuning: text, Strings: strs})
			if err != nil {
				return err
			}
			// Notes are only checked when a diagram is generated.
			for i, note := range res.Notes {
				if !theory.IsValidNote(note) {
					return &theory.InvalidTuningNoteError{String: i, Note: note}
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Text)
			return nil
		},
	}
	cmd.Flags().Int("strings", 0, "string count (default from presets)")
	return cmd
}

func newTuningsCmd(app *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "tunings",
		Short: "List standard and preset tunings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			labelColor.Fprintln(out, "Standard")
			for _, t := range app.diagrams.Tunings().Tunings {
				fmt.Fprintf(out, "  %d strings  %s\n", t.Strings, t.Text)
			}
			names := app.presets.Names()
			if len(names) == 0 {
				return nil
			}
			labelColor.Fprintln(out, "Presets")
			for _, name := range names {
				fmt.Fprintf(out, "  %-12s %s\n", name, app.presets.Tunings[name])
			}
			return nil
		},
	}
}

// stringsFlag is --strings, or the preset default when the flag is unset.
func stringsFlag(cmd *cobra.Command, app *cli) (int, error) {
	if !cmd.Flags().Changed("strings") {
		return app.presets.Defaults.Strings, nil
	}
	n, err := cmd.Flags().GetInt("strings")
	if err != nil {
		return 0, fmt.Errorf("failed to get strings flag: %w", err)
	}
	if n < theory.MinStrings || n > theory.MaxStrings {
		return 0, errors.New("--strings must be between 4 and 8")
	}
	return n, nil
}
