package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/csvpreview/internal/core"
	"github.com/JonMunkholm/csvpreview/internal/preview"
)

// InspectReport is what inspect prints, as a table or as JSON.
type InspectReport struct {
	File       string   `json:"file"`
	Columns    []string `json:"columns"`
	Rows       int      `json:"rows"`
	EmailKey   string   `json:"emailKey,omitempty"`
	Start      int      `json:"start"`
	Stop       int      `json:"stop"`
	Recipients []string `json:"recipients,omitempty"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand() *cobra.Command {
	var (
		format string
		key    string
		start  int
		stop   int
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show the columns and row count of a CSV file",
		Long: `Parse a .csv or .csv.gz file and print its columns and row count.

With --key, also print the recipients in rows [start, stop) of that column.`,
		Example: `  csvpreview inspect recipients.csv
  csvpreview inspect recipients.csv --key email --start 10 --stop 20
  csvpreview inspect recipients.csv.gz -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := serviceFrom(cmd.Context())
			if err != nil {
				return err
			}

			file := preview.LocalFile{Path: args[0]}
			t, err := svc.Inspect(cmd.Context(), file)
			if err != nil {
				return err
			}

			report := InspectReport{
				File:    file.Name(),
				Columns: t.Columns,
				Rows:    t.Len(),
				Start:   start,
				Stop:    stop,
			}
			if report.Stop < 0 {
				report.Stop = t.Len()
			}
			if limit <= 0 {
				limit = svc.SampleSize()
			}

			if key != "" {
				sel := core.Selection{EmailKey: key, Start: report.Start, Stop: report.Stop}
				if err := sel.Validate(t); err != nil {
					return err
				}
				report.EmailKey = key
				for _, row := range t.Slice(sel.Start, sel.Stop) {
					if len(report.Recipients) == limit {
						break
					}
					report.Recipients = append(report.Recipients, row[key])
				}
			}

			switch format {
			case "json":
				return renderJSON(cmd.OutOrStdout(), report)
			case "table", "":
				renderReport(cmd.OutOrStdout(), report)
				return nil
			default:
				return fmt.Errorf("unknown output format %q (want table or json)", format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "output", "o", "table", "Output format (table|json)")
	cmd.Flags().StringVar(&key, "key", "", "Email column to list recipients from")
	cmd.Flags().IntVar(&start, "start", 0, "First row of the range (inclusive)")
	cmd.Flags().IntVar(&stop, "stop", -1, "End of the range (exclusive, default: row count)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Recipients to print (default: PREVIEW_SAMPLE_SIZE)")

	_ = cmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderReport(w io.Writer, r InspectReport) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(r.File)
	t.AppendHeader(table.Row{"#", "Column"})
	for i, c := range r.Columns {
		t.AppendRow(table.Row{i, c})
	}
	t.AppendFooter(table.Row{"Rows", r.Rows})
	t.Render()

	if r.EmailKey == "" {
		return
	}

	_, _ = fmt.Fprintf(w, "\nRecipients from %q, rows [%d, %d):\n", r.EmailKey, r.Start, r.Stop)
	if len(r.Recipients) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return
	}

	rt := table.NewWriter()
	rt.SetOutputMirror(w)
	rt.SetStyle(table.StyleLight)
	// Rows are numbered from 1, as in the web and terminal views.
	rt.AppendHeader(table.Row{"Row", r.EmailKey})
	for i, addr := range r.Recipients {
		rt.AppendRow(table.Row{r.Start + i + 1, addr})
	}
	rt.Render()
}
