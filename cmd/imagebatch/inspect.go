package main

import (
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Skryldev/imagebatch"
	"github.com/Skryldev/imagebatch/config"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <files...>",
		Short: "Show type, size, dimensions and DPI of source images",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withProcessor(cmd, 0, func(proc *imagebatch.Processor, _ *config.Config) error {
				headers := []string{"File", "Type", "Size", "Dimensions", "DPI"}
				aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight}
				rows := make([][]string, 0, len(args))
				failed := 0
				for _, path := range args {
					info, err := proc.Inspect(cmd.Context(), path)
					if err != nil {
						failed++
						rows = append(rows, []string{filepath.Base(path), "error", "", "", err.Error()})
						continue
					}
					rows = append(rows, []string{
						filepath.Base(path),
						info.FileType,
						humanize.Bytes(uint64(info.FileSize)),
						info.Dimensions().String(),
						fmt.Sprintf("%g (%s)", info.DPI, info.DPISource),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))
				if failed == len(args) {
					return fmt.Errorf("no file could be inspected")
				}
				return nil
			})
		},
	}
}
