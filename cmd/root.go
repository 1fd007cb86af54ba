package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/zjrosen/skins/internal/app"
	"github.com/zjrosen/skins/internal/config"
	"github.com/zjrosen/skins/internal/log"
	"github.com/zjrosen/skins/internal/tracing"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in input fields.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

var (
	version   = "dev"
	cfgFile   string
	themesDir string
	debug     bool

	cfg      config.Config
	cfgPath  string
	provider *tracing.Provider
	cleanup  func()
)

var rootCmd = &cobra.Command{
	Use:   "skins",
	Short: "Themeable component styles for the terminal",
	Long: `Skins loads CSS-like theme files, resolves the style hooks of every
component skin point under the active theme and variants, and checks
themes for errors and drift.`,
	Version:            version,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .skins/config.yaml or ~/.config/skins/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&themesDir, "themes", "",
		"directory of user themes (overrides themes::dir)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"write debug logs (also enabled by SKINS_DEBUG)")
}

func setup(cmd *cobra.Command, _ []string) error {
	loaded, path, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	cfg, cfgPath = loaded, path

	if cfg.Tracing.Enabled && cfg.Tracing.Exporter == "file" && cfg.Tracing.FilePath == "" {
		cfg.Tracing.FilePath = filepath.Join(filepath.Dir(cfgPath), "traces.jsonl")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if debug || cfg.Log.Debug || os.Getenv("SKINS_DEBUG") != "" {
		c, err := log.Init(cfg.Log.Path)
		if err != nil {
			return fmt.Errorf("initializing log: %w", err)
		}
		cleanup = c
		log.SetMinLevel(log.ParseLevel(cfg.Log.Level))
	}
	log.Debug(log.CatConfig, "Loaded config", "path", cfgPath, "command", cmd.Name())

	provider, err = tracing.NewProvider(cfg.Tracing)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	return nil
}

func teardown(cmd *cobra.Command, _ []string) error {
	var err error
	if provider != nil {
		err = provider.Shutdown(cmd.Context())
		provider = nil
	}
	if cleanup != nil {
		cleanup()
		cleanup = nil
	}
	return err
}

// openApp loads the builtin and user themes. With activate set it also
// activates themes::active, or override when given.
func openApp(ctx context.Context, dir, override string, activate bool) (*app.App, error) {
	if dir == "" {
		dir = themesDir
	}
	a, err := app.New(ctx, cfg, app.Options{ThemesDir: dir, Tracer: provider.Tracer()})
	if err != nil {
		return nil, err
	}
	for _, f := range a.Failures() {
		log.Warn(log.CatTheme, "Theme failed to load", "source", f.Source, "theme", f.Theme, "error", f.Err.Error())
	}
	if !activate {
		return a, nil
	}
	if override == "" {
		err = a.ActivateConfigured()
	} else {
		err = a.Engine().Activate(override)
	}
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("activating theme: %w", err)
	}
	return a, nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
