package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Skryldev/imagebatch"
	"github.com/Skryldev/imagebatch/config"
	"github.com/Skryldev/imagebatch/core"
)

func newFormatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List output formats and whether they can be encoded",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withProcessor(cmd, 0, func(proc *imagebatch.Processor, cfg *config.Config) error {
				headers := []string{"Format", "Extension", "Available", "Fallback"}
				var rows [][]string
				for _, info := range proc.Formats() {
					fallback := "-"
					if !info.Available && info.Fallback != "" {
						fallback = string(info.Fallback)
					}
					rows = append(rows, []string{
						string(info.Format), "." + info.Format.Extension(), yesNo(info.Available), fallback,
					})
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderTable(headers, rows, nil))
				fmt.Fprintf(out, "Backend: %s (compiled: %s)\n", cfg.Backend, strings.Join(imagebatch.Backends(), ", "))
				return nil
			})
		},
	}
}

func newPresetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "presets",
		Short:       "List built-in parameter presets",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			headers := []string{"Name", "Format", "Box", "Quality", "DPI"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight}
			var rows [][]string
			for _, p := range core.Presets() {
				box := "original"
				if p.Params.MaxWidth > 0 || p.Params.MaxHeight > 0 {
					box = fmt.Sprintf("%dx%d", p.Params.MaxWidth, p.Params.MaxHeight)
				}
				rows = append(rows, []string{
					p.Name, string(p.Params.Format), box,
					fmt.Sprintf("%.2f", p.Params.Quality), fmt.Sprintf("%g", p.Params.DPI()),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))
			return nil
		},
	}
}
