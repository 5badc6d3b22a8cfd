package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// captureStdout replaces os.Stdout with a pipe, calls f, then returns the
// captured output and restores os.Stdout. It is NOT safe for parallel use
// because os.Stdout is a package-level variable.
func captureStdout(t *testing.T, f func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	orig := os.Stdout
	os.Stdout = w

	done := make(chan struct{})
	var buf bytes.Buffer
	go func() {
		io.Copy(&buf, r) //nolint:errcheck
		close(done)
	}()

	f()

	w.Close()
	<-done
	os.Stdout = orig
	r.Close()
	return buf.String()
}

func TestFormatJSON(t *testing.T) {
	v := map[string]int{"inserted": 2}

	got := captureStdout(t, func() { formatJSON(v) })

	var out map[string]int
	if err := json.Unmarshal([]byte(got), &out); err != nil {
		t.Fatalf("output is not valid JSON: %v\noutput: %s", err, got)
	}
	if out["inserted"] != 2 {
		t.Errorf("inserted: got %d", out["inserted"])
	}
	if !strings.Contains(got, "\n  ") {
		t.Error("expected indented output")
	}
}

func TestFormatTable(t *testing.T) {
	got := captureStdout(t, func() {
		formatTable([]string{"ID", "NAME"}, [][]string{{"1", "Example College"}, {"22", "B"}})
	})

	want := "ID  NAME\n--  ---------------\n1   Example College\n22  B\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("table mismatch (-want +got):\n%s", diff)
	}
}

func TestOutputQuiet(t *testing.T) {
	resetFlags(t)
	flagFmt = "quiet"

	got := captureStdout(t, func() { output(map[string]string{"a": "b"}, "42") })
	if got != "42\n" {
		t.Errorf("quiet output: got %q", got)
	}
}

func TestPageNumbers(t *testing.T) {
	tests := []struct {
		name           string
		current, total int
		want           []string
	}{
		{name: "single page", current: 1, total: 1, want: nil},
		{name: "small total lists all", current: 3, total: 7, want: []string{"1", "2", "3", "4", "5", "6", "7"}},
		{name: "start", current: 1, total: 20, want: []string{"1", "2", "3", "...", "20"}},
		{name: "near start", current: 4, total: 20, want: []string{"1", "2", "3", "4", "5", "6", "...", "20"}},
		{name: "middle", current: 10, total: 20, want: []string{"1", "...", "8", "9", "10", "11", "12", "...", "20"}},
		{name: "near end", current: 18, total: 20, want: []string{"1", "...", "16", "17", "18", "19", "20"}},
		{name: "end", current: 20, total: 20, want: []string{"1", "...", "18", "19", "20"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, pageNumbers(tc.current, tc.total)); diff != "" {
				t.Errorf("pageNumbers(%d, %d) mismatch (-want +got):\n%s", tc.current, tc.total, diff)
			}
		})
	}
}

func TestPageIndicator(t *testing.T) {
	if got := pageIndicator(10, 20); got != "1 ... 8 9 [10] 11 12 ... 20" {
		t.Errorf("got %q", got)
	}
	if got := pageIndicator(1, 1); got != "" {
		t.Errorf("single page should render nothing, got %q", got)
	}
}

func TestBoolCell(t *testing.T) {
	yes, no := true, false
	for _, tc := range []struct {
		in   *bool
		want string
	}{{nil, "-"}, {&yes, "yes"}, {&no, "no"}} {
		if got := boolCell(tc.in); got != tc.want {
			t.Errorf("boolCell = %q, want %q", got, tc.want)
		}
	}
}
