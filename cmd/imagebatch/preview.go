package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Skryldev/imagebatch"
	"github.com/Skryldev/imagebatch/config"
)

func newPreviewCommand(ctx *commandContext) *cobra.Command {
	var (
		params paramFlags
		repeat int
		write  string
	)

	cmd := &cobra.Command{
		Use:   "preview [flags] <file>",
		Short: "Encode one image without writing it and report the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if repeat < 1 {
				return fmt.Errorf("--repeat must be at least 1")
			}
			return ctx.withProcessor(cmd, 0, func(proc *imagebatch.Processor, cfg *config.Config) error {
				p, err := params.resolve(cmd, cfg)
				if err != nil {
					return err
				}

				headers := []string{"Run", "Format", "Dimensions", "Estimated size", "Cached"}
				aligns := []columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignLeft}
				var rows [][]string
				var data []byte
				for i := 1; i <= repeat; i++ {
					res, err := proc.Preview(cmd.Context(), args[0], p)
					if err != nil {
						return err
					}
					format := string(res.Format)
					if res.Format != res.RequestedFormat {
						format = fmt.Sprintf("%s (requested %s)", res.Format, res.RequestedFormat)
					}
					size := "-"
					if !res.Cached {
						size = humanize.Bytes(uint64(res.EstimatedSize))
					}
					rows = append(rows, []string{
						strconv.Itoa(i), format, fmt.Sprintf("%dx%d", res.Width, res.Height), size, yesNo(res.Cached),
					})
					data = res.Data
				}

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderTable(headers, rows, aligns))
				if write != "" {
					if err := os.WriteFile(write, data, 0o644); err != nil {
						return fmt.Errorf("write preview: %w", err)
					}
					fmt.Fprintf(out, "Preview written to %s\n", write)
				}
				return nil
			})
		},
	}

	params.register(cmd.Flags())
	cmd.Flags().IntVar(&repeat, "repeat", 1, "Request the preview N times to exercise the cache")
	cmd.Flags().StringVar(&write, "write", "", "Also save the preview bytes to this path")
	return cmd
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
