package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

func formatJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error: encode json: %v\n", err)
		os.Exit(1)
	}
}

func formatTable(headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	printRow := func(cells []string) {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			w := 0
			if i < len(widths) {
				w = widths[i]
			}
			parts[i] = fmt.Sprintf("%-*s", w, cell)
		}
		fmt.Println(strings.TrimRight(strings.Join(parts, "  "), " "))
	}

	printRow(headers)
	seps := make([]string, len(headers))
	for i, w := range widths {
		seps[i] = strings.Repeat("-", w)
	}
	printRow(seps)
	for _, row := range rows {
		printRow(row)
	}
}

func formatQuiet(id string) {
	fmt.Println(id)
}

func output(v any, quietVal string) {
	switch flagFmt {
	case "quiet":
		formatQuiet(quietVal)
	default:
		// Table output is rendered by callers that know their columns.
		formatJSON(v)
	}
}

// pageWindow is how many pages either side of the current one are listed.
const pageWindow = 2

// pageNumbers lists the pages to show for a result set: all of them when
// there are at most seven, otherwise the first and last page plus a window
// around current, with "..." marking gaps. It returns nil for a single page.
func pageNumbers(current, total int) []string {
	if total <= 1 {
		return nil
	}

	var pages []string
	if total <= 7 {
		for i := 1; i <= total; i++ {
			pages = append(pages, strconv.Itoa(i))
		}
		return pages
	}

	pages = append(pages, "1")

	start := max(2, current-pageWindow)
	end := min(total-1, current+pageWindow)

	if start > 2 {
		pages = append(pages, "...")
	}
	for i := start; i <= end; i++ {
		pages = append(pages, strconv.Itoa(i))
	}
	if end < total-1 {
		pages = append(pages, "...")
	}

	return append(pages, strconv.Itoa(total))
}

// pageIndicator renders pageNumbers with the current page bracketed, e.g.
// "1 ... 4 [5] 6 ... 12".
func pageIndicator(current, total int) string {
	pages := pageNumbers(current, total)
	cur := strconv.Itoa(current)
	for i, p := range pages {
		if p == cur {
			pages[i] = "[" + p + "]"
		}
	}
	return strings.Join(pages, " ")
}

func boolCell(b *bool) string {
	if b == nil {
		return "-"
	}
	if *b {
		return "yes"
	}
	return "no"
}
