// Command collegedir-cli is a command-line client for the college directory API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/collegedir/collegedir/client"
)

// Build-time variables set via ldflags.
var (
	version   = "0.1.0"
	commit    = ""
	buildDate = ""
)

const (
	defaultURL = "http://localhost:3001"
	envURL     = "COLLEGEDIR_URL"
	envAPIKey  = "COLLEGEDIR_API_KEY"
)

var (
	apiClient *client.Client
	flagURL   string
	flagKey   string
	flagFmt   string
)

func versionString() string {
	if commit != "" && buildDate != "" {
		return fmt.Sprintf("collegedir version %s (commit: %s, built: %s)", version, commit, buildDate)
	}
	return fmt.Sprintf("collegedir version %s-dev", version)
}

// profileConfig holds connection settings for a single profile.
type profileConfig struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
}

// profilesFile is the top-level config file structure.
type profilesFile struct {
	Profiles      map[string]profileConfig `yaml:"profiles"`
	ActiveProfile string                   `yaml:"active_profile"`
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "collegedir",
		Short:   "College directory CLI: browse colleges and manage bulk uploads",
		Version: versionString(),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			resolveConfig()
			var opts []client.Option
			if flagKey != "" {
				opts = append(opts, client.WithAPIKey(flagKey))
			}
			apiClient = client.New(flagURL, opts...)
		},
		SilenceUsage: true,
	}
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&flagURL, "url", defaultURL, "Server URL (env: "+envURL+")")
	rootCmd.PersistentFlags().StringVar(&flagKey, "api-key", "", "Admin API key (env: "+envAPIKey+")")
	rootCmd.PersistentFlags().StringVar(&flagFmt, "format", "json", "Output format: json|table|quiet")

	initCmd := newInitCmd()
	initCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {} // skip client setup

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(newDoctorCmd())
	rootCmd.AddCommand(newHealthCmd())
	rootCmd.AddCommand(newCollegesCmd())
	rootCmd.AddCommand(newFacetCmd("districts", "List districts", func(ctx context.Context) ([]string, error) {
		return apiClient.Facets.Districts(ctx)
	}))
	rootCmd.AddCommand(newFacetCmd("categories", "List college categories", func(ctx context.Context) ([]string, error) {
		return apiClient.Facets.Categories(ctx)
	}))
	rootCmd.AddCommand(newFacetCmd("types", "List college types", func(ctx context.Context) ([]string, error) {
		return apiClient.Facets.CollegeTypes(ctx)
	}))
	rootCmd.AddCommand(newUploadCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newTemplateCmd())
	rootCmd.AddCommand(newRunsCmd())

	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// configPath returns ~/.collegedir/config.yaml.
func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".collegedir", "config.yaml"), nil
}

func loadConfig() (string, *profilesFile, error) {
	cfgPath, err := configPath()
	if err != nil {
		return "", nil, err
	}
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		return cfgPath, nil, err
	}
	var cfg profilesFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfgPath, nil, err
	}
	return cfgPath, &cfg, nil
}

// activeProfile returns the selected profile, or the zero profile.
func (f *profilesFile) activeProfile() profileConfig {
	if f == nil {
		return profileConfig{}
	}
	name := f.ActiveProfile
	if name == "" {
		name = "default"
	}
	return f.Profiles[name]
}

// resolveConfig fills flagURL and flagKey: flag first, then env, then the
// config file.
func resolveConfig() {
	if flagURL == defaultURL {
		if v := os.Getenv(envURL); v != "" {
			flagURL = v
		}
	}
	if flagKey == "" {
		flagKey = os.Getenv(envAPIKey)
	}

	_, cfg, err := loadConfig()
	if err != nil {
		return
	}

	p := cfg.activeProfile()
	if flagURL == defaultURL && p.URL != "" {
		flagURL = p.URL
	}
	if flagKey == "" && p.APIKey != "" {
		flagKey = p.APIKey
	}
}
