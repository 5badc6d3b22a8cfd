package main

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/collegedir/collegedir/client"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := apiClient.Health(cmd.Context())
			if err != nil {
				return fmt.Errorf("health: %w", err)
			}
			output(resp, resp.Status)
			return nil
		},
	}
}

func newUploadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Bulk upload colleges (admin)",
	}
	cmd.AddCommand(uploadCmd("csv", "Upload a CSV file (use - for stdin)", func(ctx context.Context, r io.Reader) (*client.UploadReport, error) {
		return apiClient.Admin.UploadCSV(ctx, r)
	}))
	cmd.AddCommand(uploadCmd("json", "Upload a JSON file (use - for stdin)", func(ctx context.Context, r io.Reader) (*client.UploadReport, error) {
		return apiClient.Admin.UploadJSON(ctx, r)
	}))
	return cmd
}

func uploadCmd(kind, short string, send func(context.Context, io.Reader) (*client.UploadReport, error)) *cobra.Command {
	return &cobra.Command{
		Use:   kind + " <file>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, closeFn, err := openInput(args[0])
			if err != nil {
				return err
			}
			defer closeFn()

			report, err := send(cmd.Context(), r)
			if err != nil {
				return fmt.Errorf("upload %s: %w", kind, err)
			}
			printReport(report)
			if len(report.Errors) > 0 {
				return fmt.Errorf("%d record(s) failed", len(report.Errors))
			}
			return nil
		},
	}
}

// openInput opens path for reading; "-" reads stdin.
func openInput(path string) (io.Reader, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, func() { f.Close() }, nil
}

func printReport(report *client.UploadReport) {
	switch flagFmt {
	case "table":
		formatTable([]string{"INSERTED", "UPDATED", "FAILED"}, [][]string{{
			strconv.Itoa(report.Inserted), strconv.Itoa(report.Updated), strconv.Itoa(len(report.Errors)),
		}})
		for _, e := range report.Errors {
			fmt.Println("  " + e)
		}
	case "quiet":
		formatQuiet(report.Message)
	default:
		formatJSON(report)
	}
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show directory statistics (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := apiClient.Admin.Stats(cmd.Context())
			if err != nil {
				return fmt.Errorf("stats: %w", err)
			}
			if flagFmt == "table" {
				rows := make([][]string, 0, len(stats))
				for _, k := range slices.Sorted(maps.Keys(stats)) {
					rows = append(rows, []string{k, strconv.FormatInt(stats[k], 10)})
				}
				formatTable([]string{"METRIC", "VALUE"}, rows)
				return nil
			}
			output(stats, strconv.FormatInt(stats["total_colleges"], 10))
			return nil
		},
	}
}

func newTemplateCmd() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Download the CSV upload template (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := apiClient.Admin.Template(cmd.Context())
			if err != nil {
				return fmt.Errorf("template: %w", err)
			}
			if outPath == "" || outPath == "-" {
				_, err = os.Stdout.Write(data)
				return err
			}
			if err := os.WriteFile(outPath, data, 0o644); err != nil { //nolint:gosec // template is not secret.
				return fmt.Errorf("write %s: %w", outPath, err)
			}
			fmt.Fprintf(os.Stderr, "Template saved to %s\n", outPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Write to file instead of stdout")
	return cmd
}

func newRunsCmd() *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent bulk uploads (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := apiClient.Admin.Runs(cmd.Context(), limit, offset)
			if err != nil {
				return fmt.Errorf("runs: %w", err)
			}
			if flagFmt == "table" {
				headers := []string{"ID", "SOURCE", "TOTAL", "INSERTED", "UPDATED", "FAILED", "ACTOR", "CREATED_AT"}
				rows := make([][]string, 0, len(page.Runs))
				for _, r := range page.Runs {
					rows = append(rows, []string{
						strconv.FormatInt(r.ID, 10), r.Source, strconv.Itoa(r.Total),
						strconv.Itoa(r.Inserted), strconv.Itoa(r.Updated), strconv.Itoa(r.Failed),
						r.Actor, r.CreatedAt.Format("2006-01-02 15:04:05"),
					})
				}
				formatTable(headers, rows)
				return nil
			}
			output(page, strconv.Itoa(len(page.Runs)))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Max results")
	cmd.Flags().IntVar(&offset, "offset", 0, "Skip this many runs")
	return cmd
}
