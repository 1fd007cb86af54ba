package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"github.com/spf13/cobra"

	"github.com/zjrosen/skins/internal/mode/playground"
)

var (
	playgroundTheme string
	playgroundLabel string
)

var playgroundCmd = &cobra.Command{
	Use:   "playground",
	Short: "Interactive playground for themes and variants",
	Long: `Launch an interactive playground showing a button, a search bar and a
dropdown rendered with the active theme. Hover, focus and press them to see
variants apply, and cycle themes to watch every component restyle.`,
	Args: cobra.NoArgs,
	RunE: runPlayground,
}

func init() {
	playgroundCmd.Flags().StringVarP(&playgroundTheme, "theme", "t", "", "theme to start with (default: themes::active)")
	playgroundCmd.Flags().StringVar(&playgroundLabel, "label", "", "button label")
	rootCmd.AddCommand(playgroundCmd)
}

func runPlayground(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd.Context(), "", playgroundTheme, true)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	zone.NewGlobal()
	model, err := playground.New(ctx, a.Engine(), playground.Config{Label: playgroundLabel})
	if err != nil {
		return err
	}
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithContext(ctx),
	)

	_, err = p.Run()

	if closeErr := model.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("running playground: %w", err)
	}
	return nil
}
