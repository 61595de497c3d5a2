package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/insightboard/internal/analysis"
	"github.com/JonMunkholm/insightboard/internal/chart"
	"github.com/JonMunkholm/insightboard/internal/core"
	"github.com/JonMunkholm/insightboard/internal/export"
)

func newInspectCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show the header, column kinds, skipped lines and chart fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			stats, err := a.svc.Stats(cliSession)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					*core.IngestResult
					Columns []analysis.ColumnStats `json:"columns"`
				}{res, stats})
			}
			return printInspect(out, res, stats)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func printInspect(w io.Writer, res *core.IngestResult, stats []analysis.ColumnStats) error {
	fmt.Fprintf(w, "File:     %s\n", res.FileName)
	fmt.Fprintf(w, "Rows:     %d\n", res.Rows)
	if len(res.Skipped) > 0 {
		lines := make([]string, len(res.Skipped))
		for i, s := range res.Skipped {
			lines[i] = fmt.Sprintf("%d (%d fields)", s.Line, s.Fields)
		}
		fmt.Fprintf(w, "Skipped:  %s\n", strings.Join(lines, ", "))
	}
	if res.Promoted > 0 {
		fmt.Fprintf(w, "Promoted: %d cells converted to numbers\n", res.Promoted)
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COLUMN\tKIND\tNUMERIC\tDISTINCT\tMIN\tMAX\tMEAN")
	for _, st := range stats {
		if st.Numeric > 0 {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%g\t%g\t%.2f\n", st.Name, st.KindName, st.Numeric, st.Distinct, st.Min, st.Max, st.Mean)
		} else {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t-\t-\t-\n", st.Name, st.KindName, st.Numeric, st.Distinct)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	sel := res.Selection
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Numeric fields: %s\n", orNone(strings.Join(sel.Numeric, ", ")))
	fmt.Fprintf(w, "Primary:        %s\n", orNone(sel.Primary))
	fmt.Fprintf(w, "Secondary:      %s\n", orNone(sel.Secondary))
	fmt.Fprintf(w, "Category:       %s\n", orNone(sel.Category))
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func newChartCmd(a *app) *cobra.Command {
	var (
		output  string
		typ     string
		spec    chart.Spec
		listAll bool
	)

	cmd := &cobra.Command{
		Use:   "chart <file>",
		Short: "Render a chart of the file as PNG",
		Args: func(cmd *cobra.Command, args []string) error {
			if listAll {
				return nil
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if listAll {
				for _, d := range chart.All() {
					fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", d.Type, d.Description)
				}
				return nil
			}

			t, err := chart.ParseType(typ)
			if err != nil {
				return err
			}
			spec.Type = t

			if _, err := a.load(cmd.Context(), args[0]); err != nil {
				return err
			}

			if output == "" {
				output = strings.TrimSuffix(export.FormatCSV.FileName(args[0]), ".csv") + "_" + string(t) + ".png"
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			if err := a.svc.RenderChart(f, cliSession, spec); err != nil {
				f.Close()
				os.Remove(output)
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output PNG path (default <file>_<type>.png)")
	cmd.Flags().StringVarP(&typ, "type", "t", "bar", "chart type")
	cmd.Flags().StringVar(&spec.Primary, "primary", "", "primary measure (default: selected automatically)")
	cmd.Flags().StringVar(&spec.Secondary, "secondary", "", "secondary measure")
	cmd.Flags().StringVar(&spec.Category, "category", "", "category axis field")
	cmd.Flags().StringVar(&spec.Title, "title", "", "chart title")
	cmd.Flags().BoolVar(&listAll, "list", false, "list chart types and exit")
	return cmd
}

func newAnalyzeCmd(a *app) *cobra.Command {
	var prompt, templateID string

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Print the data analysis for a prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if templateID != "" && prompt == "" {
				tpl, ok := analysis.TemplateByID(templateID)
				if !ok {
					return fmt.Errorf("unknown template %q (see 'insight templates')", templateID)
				}
				prompt = tpl.Prompt
			}

			if _, err := a.load(cmd.Context(), args[0]); err != nil {
				return err
			}
			text, err := a.svc.Analyze(cliSession, prompt)
			if err != nil {
				return err
			}
			return export.WriteAnalysis(cmd.OutOrStdout(), text)
		},
	}

	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "analysis prompt (default: the Data Summary template)")
	cmd.Flags().StringVar(&templateID, "template", "", "use a prompt template by ID")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var format, output, prompt string

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export the file as xlsx, csv, summary or analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			if _, err := a.load(cmd.Context(), args[0]); err != nil {
				return err
			}

			if output == "" {
				output = f.FileName(args[0])
			}
			if filepath.Clean(output) == filepath.Clean(args[0]) {
				return fmt.Errorf("refusing to overwrite %s; pass --output", args[0])
			}
			if output == "-" {
				return a.svc.Export(cmd.OutOrStdout(), cliSession, f, prompt)
			}

			file, err := os.Create(output)
			if err != nil {
				return err
			}
			if err := a.svc.Export(file, cliSession, f, prompt); err != nil {
				file.Close()
				os.Remove(output)
				return err
			}
			if err := file.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "xlsx", "xlsx, csv, summary or analysis")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path, or - for stdout (default derived from the input name)")
	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "prompt for the analysis format")
	return cmd
}

func newTemplatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List the analysis prompt templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tPROMPT")
			for _, t := range analysis.Templates() {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", t.ID, t.Name, t.Prompt)
			}
			return tw.Flush()
		},
	}
}
