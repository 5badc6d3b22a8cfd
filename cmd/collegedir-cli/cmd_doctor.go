package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/collegedir/collegedir/client"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose configuration and connectivity",
		Long:  "Run diagnostic checks against config, server, and admin auth",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd.Context(), os.Stdout, apiClient)
		},
	}
}

type checkResult struct {
	Name   string
	Passed bool
	Detail string
	Hint   string
}

// doctorChecks runs every check against c. URL and key are the resolved
// settings. A failed server check skips the checks that depend on it.
func doctorChecks(ctx context.Context, c *client.Client, url, apiKey string) []checkResult {
	var results []checkResult

	cfgPath, _, cfgErr := loadConfig()
	switch {
	case errors.Is(cfgErr, fs.ErrNotExist):
		results = append(results, checkResult{Name: "Config file", Passed: true, Detail: "not found (optional)"})
	case cfgErr != nil:
		results = append(results, checkResult{
			Name: "Config file", Passed: false, Detail: cfgPath,
			Hint: fmt.Sprintf("Fix or recreate with: collegedir init\n   Error: %v", cfgErr),
		})
	default:
		results = append(results, checkResult{Name: "Config file", Passed: true, Detail: "found (" + cfgPath + ")"})
	}

	results = append(results, checkResult{Name: "Server URL", Passed: url != "", Detail: url})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	health, err := c.Health(ctx)
	if err != nil {
		return append(results, checkResult{
			Name: "Server reachable", Passed: false, Detail: url,
			Hint: fmt.Sprintf("Is the collegedir server running?\n   Error: %v", err),
		})
	}
	results = append(results, checkResult{Name: "Server reachable", Passed: true, Detail: "v" + health.Version})

	results = append(results, checkResult{
		Name: "Database", Passed: health.Database == "connected", Detail: health.Database,
		Hint: "Check DATABASE_URL on the server",
	})

	if ready, err := c.Ready(ctx); err != nil {
		results = append(results, checkResult{
			Name: "Ready", Passed: false,
			Hint: fmt.Sprintf("Server is not ready (pending migrations?). Error: %v", err),
		})
	} else {
		results = append(results, checkResult{Name: "Ready", Passed: true, Detail: ready.Status})
	}

	if apiKey == "" {
		return append(results, checkResult{
			Name: "Admin key", Passed: false,
			Hint: "Set --api-key, " + envAPIKey + ", or run collegedir init",
		})
	}

	if name, err := c.Admin.Test(ctx); err != nil {
		hint := fmt.Sprintf("Check your admin key. Error: %v", err)
		if client.IsRateLimited(err) {
			hint = "Key temporarily locked after repeated failures; wait and retry"
		}
		results = append(results, checkResult{Name: "Admin key", Passed: false, Hint: hint})
	} else {
		results = append(results, checkResult{Name: "Admin key", Passed: true, Detail: "valid (" + name + ")"})
	}

	return results
}

func runDoctor(ctx context.Context, w io.Writer, c *client.Client) error {
	fmt.Fprintln(w, "\nCollege Directory Doctor")
	fmt.Fprintln(w, "========================")
	fmt.Fprintln(w)

	allPassed := true
	for _, r := range doctorChecks(ctx, c, flagURL, flagKey) {
		mark := "ok  "
		if !r.Passed {
			mark = "FAIL"
			allPassed = false
		}
		if r.Detail != "" {
			fmt.Fprintf(w, "[%s] %s: %s\n", mark, r.Name, r.Detail)
		} else {
			fmt.Fprintf(w, "[%s] %s\n", mark, r.Name)
		}
		if !r.Passed && r.Hint != "" {
			fmt.Fprintf(w, "   Hint: %s\n", r.Hint)
		}
	}

	fmt.Fprintln(w)
	if !allPassed {
		fmt.Fprintln(w, "Some checks failed.")
		return fmt.Errorf("doctor found issues")
	}
	fmt.Fprintln(w, "All checks passed!")
	return nil
}
