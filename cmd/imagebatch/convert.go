package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Skryldev/imagebatch"
	"github.com/Skryldev/imagebatch/config"
	"github.com/Skryldev/imagebatch/core"
)

var errNothingWritten = errors.New("nothing was written")

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var (
		params  paramFlags
		output  string
		workers int
		noTUI   bool
	)

	cmd := &cobra.Command{
		Use:   "convert [flags] <files...>",
		Short: "Convert and resize images into an output folder",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withProcessor(cmd, workers, func(proc *imagebatch.Processor, cfg *config.Config) error {
				p, err := params.resolve(cmd, cfg)
				if err != nil {
					return err
				}
				folder := strings.TrimSpace(output)
				if folder == "" {
					folder = cfg.Defaults.OutputDir
				}
				if folder == "" {
					return errors.New("an output folder is required (--output or defaults.output_dir)")
				}

				out := cmd.OutOrStdout()
				if p.Format == core.FormatWebP && !core.EncoderAvailable(proc.Inner().Registry(), core.FormatWebP) {
					fmt.Fprintln(cmd.ErrOrStderr(), warnStyle.Render("WebP encoding is unavailable in this build; files will be written as JPEG."))
				}

				var batch core.BatchResult
				if !noTUI && isTerminal(out) {
					batch = runWithTUI(cmd, proc, args, folder, p)
				} else {
					errOut := cmd.ErrOrStderr()
					batch = proc.RunBatch(cmd.Context(), args, folder, p, func(ev core.BatchProgress) {
						printProgress(errOut, ev)
					})
				}

				fmt.Fprintln(out, renderResults(batch))
				fmt.Fprintln(out, outcomeLine(batch))
				if batch.Outcome() == core.OutcomeNothingWritten {
					return errNothingWritten
				}
				return nil
			})
		},
	}

	params.register(cmd.Flags())
	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination folder (created if missing)")
	cmd.Flags().IntVarP(&workers, "workers", "j", 0, "Concurrent files (0 = config or CPU count)")
	cmd.Flags().BoolVar(&noTUI, "no-tui", false, "Print plain progress lines instead of the progress view")
	return cmd
}

// runWithTUI drives the bubbletea progress view while the batch runs.
func runWithTUI(cmd *cobra.Command, proc *imagebatch.Processor, inputs []string, folder string, p core.Parameters) core.BatchResult {
	updates := make(chan core.BatchProgress, 64)
	model := newProgressModel("imagebatch: "+describeParams(p), len(inputs), updates)
	program := tea.NewProgram(model, tea.WithOutput(cmd.OutOrStdout()), tea.WithContext(cmd.Context()))

	uiDone := make(chan struct{})
	go func() {
		_, _ = program.Run()
		close(uiDone)
	}()

	batch := proc.RunBatch(cmd.Context(), inputs, folder, p, func(ev core.BatchProgress) {
		select {
		case updates <- ev:
		case <-uiDone:
		}
	})
	close(updates)
	<-uiDone
	return batch
}

func printProgress(w io.Writer, ev core.BatchProgress) {
	if ev.Done {
		fmt.Fprintf(w, "[%d/%d] done in %s\n", ev.Completed, ev.Total, ev.TotalElapsed.Round(time.Millisecond))
		return
	}
	fmt.Fprintf(w, "[%d/%d] %s\n", ev.Completed, ev.Total, ev.LastCompletedName)
}

func renderResults(batch core.BatchResult) string {
	headers := []string{"File", "Output", "Size", "Reduction", "Dimensions", "Time", "Status"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft}

	rows := make([][]string, 0, len(batch.Results))
	for _, r := range batch.Results {
		row := []string{filepath.Base(r.InputPath), "", "", "", "", r.Elapsed.Round(time.Millisecond).String(), ""}
		if r.Success {
			row[1] = filepath.Base(r.OutputPath)
			row[2] = fmt.Sprintf("%s → %s", humanize.Bytes(uint64(r.SizeBefore)), humanize.Bytes(uint64(r.SizeAfter)))
			row[3] = fmt.Sprintf("%.1f%%", r.SizeReduction())
			row[4] = fmt.Sprintf("%dx%d", r.Width, r.Height)
			row[6] = "ok"
			if r.FellBack {
				row[6] = "ok (as " + string(r.Format) + ")"
			}
		} else {
			row[6] = fmt.Sprintf("%s: %v", r.Kind().Description(), rootCause(r.Err))
		}
		rows = append(rows, row)
	}
	return renderTable(headers, rows, aligns)
}

// rootCause returns the innermost error message for compact table cells.
func rootCause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}

func outcomeLine(batch core.BatchResult) string {
	switch batch.Outcome() {
	case core.OutcomeNothingWritten:
		return warnStyle.Render(fmt.Sprintf("Nothing was written: all %d files failed.", len(batch.Results)))
	case core.OutcomePartial:
		return warnStyle.Render(fmt.Sprintf("%d succeeded, %d failed.", batch.Succeeded(), batch.Failed()))
	}
	folder := batch.OutputFolder
	if abs, err := filepath.Abs(folder); err == nil {
		folder = abs
	}
	before, after := batch.Bytes()
	return successStyle.Render(fmt.Sprintf("All %d files written to %s (%s → %s in %s).",
		len(batch.Results), folder, humanize.Bytes(uint64(before)), humanize.Bytes(uint64(after)),
		batch.Elapsed.Round(time.Millisecond)))
}
