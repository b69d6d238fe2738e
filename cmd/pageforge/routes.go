package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/pageforge"
	"github.com/dmitrymomot/pageforge/internal/config"
)

func routesCmd(configFile *string) *cobra.Command {
	var noColor bool

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Print the resolved route table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configFile)
			if err != nil {
				return err
			}
			table, err := pageforge.LoadRouteIndex(cfg.RoutesFile)
			if err != nil {
				return err
			}
			resolved, err := table.Resolve(cfg.AppRoot)
			if err != nil {
				return err
			}
			printRoutes(cmd.OutOrStdout(), cfg.AppRoot, resolved, noColor)
			return nil
		},
	}
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")
	return cmd
}

func printRoutes(w io.Writer, appRoot string, routes []pageforge.ResolvedRoute, noColor bool) {
	headers := []string{"PATTERN", "FILE", "ENDPOINT", "KIND"}
	rows := make([][]string, 0, len(routes))
	for _, r := range routes {
		file := r.File
		if rel, err := filepath.Rel(appRoot, r.File); err == nil {
			file = rel
		}
		rows = append(rows, []string{r.Pattern, file, r.Endpoint, r.Kind.String()})
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], len(cell))
		}
	}

	bold := color.New(color.Bold, color.FgCyan)
	gray := color.New(color.FgHiBlack)
	cyan := color.New(color.FgCyan)
	if noColor {
		bold.DisableColor()
		gray.DisableColor()
		cyan.DisableColor()
	}

	for i, h := range headers {
		bold.Fprint(w, pad(h, widths[i], i == len(headers)-1))
	}
	fmt.Fprintln(w)
	for i, width := range widths {
		gray.Fprint(w, pad(strings.Repeat("-", width), width, i == len(widths)-1))
	}
	fmt.Fprintln(w)
	for _, row := range rows {
		cyan.Fprint(w, pad(row[0], widths[0], false))
		for i := 1; i < len(row); i++ {
			fmt.Fprint(w, pad(row[i], widths[i], i == len(row)-1))
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "\n%d routes\n", len(rows))
}

func pad(s string, width int, last bool) string {
	if last {
		return s
	}
	return s + strings.Repeat(" ", width-len(s)+2)
}
