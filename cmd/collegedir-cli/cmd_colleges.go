package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/collegedir/collegedir/client"
)

func newCollegesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "colleges",
		Aliases: []string{"college"},
		Short:   "Browse the college directory",
	}
	cmd.AddCommand(collegesListCmd())
	cmd.AddCommand(collegesGetCmd())
	cmd.AddCommand(collegesCutoffsCmd())
	cmd.AddCommand(admissionCmd())
	return cmd
}

// parseTriState parses an optional true/false flag value.
func parseTriState(name, v string) (*bool, error) {
	if v == "" {
		return nil, nil //nolint:nilnil // unset flag.
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, fmt.Errorf("--%s must be true or false", name)
	}
	return &b, nil
}

func collegesListCmd() *cobra.Command {
	var (
		opts                  client.ListOptions
		autonomous, hostelStr string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List colleges, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if opts.Autonomous, err = parseTriState("autonomous", autonomous); err != nil {
				return err
			}
			if opts.HostelAvailable, err = parseTriState("hostel", hostelStr); err != nil {
				return err
			}

			page, err := apiClient.Colleges.List(cmd.Context(), &opts)
			if err != nil {
				return fmt.Errorf("list colleges: %w", err)
			}
			printCollegePage(page)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.District, "district", "", "Filter by district")
	f.StringVar(&opts.Category, "category", "", "Filter by category")
	f.StringVar(&opts.CollegeType, "type", "", "Filter by college type")
	f.StringVar(&opts.Search, "search", "", "Case-insensitive name substring")
	f.StringVar(&autonomous, "autonomous", "", "Filter by autonomous status (true|false)")
	f.StringVar(&hostelStr, "hostel", "", "Filter by hostel availability (true|false)")
	f.IntVar(&opts.Page, "page", 1, "Page number")
	f.IntVar(&opts.Limit, "limit", 0, "Results per page (server default when 0)")
	return cmd
}

func printCollegePage(page *client.CollegePage) {
	switch flagFmt {
	case "table":
		headers := []string{"ID", "NAME", "CATEGORY", "DISTRICT", "CITY", "TYPE", "AUTONOMOUS", "HOSTEL"}
		rows := make([][]string, 0, len(page.Colleges))
		for _, c := range page.Colleges {
			rows = append(rows, []string{
				strconv.FormatInt(c.ID, 10), c.Name, c.Category, c.District, c.City, c.Type,
				boolCell(c.Autonomous), boolCell(c.HostelAvailable),
			})
		}
		formatTable(headers, rows)
		fmt.Printf("\n%d result(s)", page.Total)
		if ind := pageIndicator(page.Page, page.TotalPages); ind != "" {
			fmt.Printf("  pages: %s", ind)
		}
		fmt.Println()
	case "quiet":
		ids := make([]string, 0, len(page.Colleges))
		for _, c := range page.Colleges {
			ids = append(ids, strconv.FormatInt(c.ID, 10))
		}
		formatQuiet(strings.Join(ids, "\n"))
	default:
		formatJSON(page)
	}
}

func parseIDArg(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid college id %q", arg)
	}
	return id, nil
}

func collegesGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a college with its contact details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			d, err := apiClient.Colleges.Get(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("get college: %w", err)
			}
			if flagFmt == "table" {
				str := func(s *string) string {
					if s == nil {
						return "-"
					}
					return *s
				}
				year := "-"
				if d.EstablishedYear != nil {
					year = strconv.Itoa(*d.EstablishedYear)
				}
				formatTable([]string{"FIELD", "VALUE"}, [][]string{
					{"Name", d.Name}, {"Category", d.Category}, {"District", d.District},
					{"City", d.City}, {"Type", d.Type},
					{"Autonomous", boolCell(d.Autonomous)}, {"Minority", boolCell(d.Minority)},
					{"Hostel", boolCell(d.HostelAvailable)}, {"Established", year},
					{"Phone", str(d.Phone)}, {"Email", str(d.Email)}, {"Website", str(d.Website)},
					{"Address", str(d.Address)}, {"Pincode", str(d.Pincode)},
				})
				return nil
			}
			output(d, d.Name)
			return nil
		},
	}
}

func collegesCutoffsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cutoffs <college-id>",
		Short: "Show published admission cutoffs for a college",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			cutoffs, err := apiClient.Colleges.Cutoffs(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("list cutoffs: %w", err)
			}
			if flagFmt == "table" {
				rows := make([][]string, 0, len(cutoffs))
				for _, c := range cutoffs {
					marks := "-"
					if c.CutoffMarks != nil {
						marks = strconv.FormatFloat(*c.CutoffMarks, 'f', 2, 64)
					}
					branch, category := "-", "-"
					if c.Branch != nil {
						branch = *c.Branch
					}
					if c.Category != nil {
						category = *c.Category
					}
					rows = append(rows, []string{strconv.Itoa(c.Year), branch, category, marks})
				}
				formatTable([]string{"YEAR", "BRANCH", "CATEGORY", "MARKS"}, rows)
				return nil
			}
			output(cutoffs, strconv.Itoa(len(cutoffs)))
			return nil
		},
	}
}

func admissionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "admission <category>",
		Short: "Show admission requirements for a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := apiClient.Colleges.Admission(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("get admission requirement: %w", err)
			}
			output(req, strings.Join(req.DocumentsRequired, "\n"))
			return nil
		},
	}
}

func newFacetCmd(use, short string, fetch func(ctx context.Context) ([]string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := fetch(cmd.Context())
			if err != nil {
				return fmt.Errorf("list %s: %w", use, err)
			}
			if flagFmt == "json" {
				formatJSON(values)
				return nil
			}
			formatQuiet(strings.Join(values, "\n"))
			return nil
		},
	}
}
