package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/skins/internal/config"
	"github.com/zjrosen/skins/internal/log"
	"github.com/zjrosen/skins/internal/presentation"
)

var themesJSON bool

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List loaded themes",
	Long:  `List the builtin and user themes, marking the active one.`,
	Args:  cobra.NoArgs,
	RunE:  runThemes,
}

var useCmd = &cobra.Command{
	Use:   "use <theme>",
	Short: "Set the theme activated at startup",
	Long:  `Check that the theme loads and save it as themes::active in the config file.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runUse,
}

func init() {
	themesCmd.Flags().BoolVar(&themesJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(themesCmd, useCmd)
}

func runThemes(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd.Context(), "", "", true)
	if err != nil {
		return err
	}
	defer a.Close()

	themes := presentation.FromThemes(a.Store().Themes(), a.Store().ActiveID())
	f := presentation.NewFormatter(cmd.OutOrStdout())
	if themesJSON {
		return f.FormatJSON(themes)
	}
	if err := f.FormatThemes(themes); err != nil {
		return err
	}
	for _, fail := range a.Failures() {
		cmd.PrintErrf("failed to load %s: %v\n", failName(fail.Source, fail.Theme), fail.Err)
	}
	return nil
}

func runUse(cmd *cobra.Command, args []string) error {
	id := args[0]
	a, err := openApp(cmd.Context(), "", id, true)
	if err != nil {
		return err
	}
	a.Close()

	if err := config.SaveActiveTheme(cfgPath, id); err != nil {
		return fmt.Errorf("saving active theme: %w", err)
	}
	log.Info(log.CatConfig, "Saved active theme", "theme", id, "path", cfgPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Active theme: %s (saved to %s)\n", id, cfgPath)
	return nil
}

func failName(source, theme string) string {
	if theme == "" {
		return source
	}
	return theme + " (" + source + ")"
}
