package main

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"
)

// printReport writes the seeding summary.
func printReport(w io.Writer, r *seedReport) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== College Directory Seed Report ===")
	fmt.Fprintf(w, "Source:   %s (%s)\n", r.Source, r.Format)

	if r.DryRun {
		fmt.Fprintln(w, "Target:   (dry run, nothing written)")
	} else {
		fmt.Fprintf(w, "Target:   %s\n", r.Target)
	}

	fmt.Fprintf(w, "Duration: %s\n", r.Duration.Round(time.Millisecond))
	fmt.Fprintln(w)

	if r.Err != nil {
		fmt.Fprintf(w, "FAILED: %v\n", r.Err)
		return
	}

	fmt.Fprintf(w, "Records read: %d\n", r.Read)

	if r.Result != nil {
		fmt.Fprintf(w, "Inserted:     %d\n", r.Result.Inserted)
		fmt.Fprintf(w, "Updated:      %d\n", r.Result.Updated)
		fmt.Fprintf(w, "Failed:       %d\n", len(r.Result.Errors))

		for _, e := range r.Result.Errors {
			fmt.Fprintf(w, "  - %s\n", e)
		}
	}

	if len(r.Stats) == 0 {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Total colleges: %d\n", r.Stats["total_colleges"])

	for _, prefix := range []string{"district", "category"} {
		keys := statKeys(r.Stats, prefix+"_")
		if len(keys) == 0 {
			continue
		}

		fmt.Fprintf(w, "By %s:\n", prefix)

		for _, k := range keys {
			fmt.Fprintf(w, "  %-30s %d\n", strings.TrimPrefix(k, prefix+"_"), r.Stats[k])
		}
	}
}

// statKeys returns the keys with prefix, largest count first, then by name.
func statKeys(stats map[string]int64, prefix string) []string {
	var keys []string

	for k := range stats {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}

	slices.SortFunc(keys, func(a, b string) int {
		if stats[a] != stats[b] {
			if stats[a] > stats[b] {
				return -1
			}

			return 1
		}

		return strings.Compare(a, b)
	})

	return keys
}
