package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zjrosen/skins/internal/app"
	"github.com/zjrosen/skins/internal/presentation"
)

var (
	diffVariants []string
	diffSkins    []string
)

var diffCmd = &cobra.Command{
	Use:   "diff <theme-a> <theme-b>",
	Short: "Compare the resolved hooks of two themes",
	Long: `Resolve every skin point under both themes with the same variants and
print a unified diff of the hook values.`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

func init() {
	diffCmd.Flags().StringArrayVarP(&diffVariants, "variant", "v", nil, "variant to force on (repeatable)")
	diffCmd.Flags().StringArrayVarP(&diffSkins, "skin", "s", nil, "limit to a skin point (repeatable, default all)")
	rootCmd.AddCommand(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), "", "", false)
	if err != nil {
		return err
	}
	defer a.Close()

	skins := diffSkins
	if len(skins) == 0 {
		for _, d := range a.Vocabulary().Decls() {
			skins = append(skins, d.ID)
		}
	}

	linesA, err := styleLines(a, args[0], skins)
	if err != nil {
		return err
	}
	linesB, err := styleLines(a, args[1], skins)
	if err != nil {
		return err
	}
	diff := presentation.UnifiedDiff(args[0], args[1], linesA, linesB)
	return presentation.NewFormatter(cmd.OutOrStdout()).FormatDiff(diff)
}

func styleLines(a *app.App, themeID string, skins []string) ([]string, error) {
	var lines []string
	for _, skin := range skins {
		style, err := a.Resolve(app.Query{Theme: themeID, Skin: skin, Variants: diffVariants})
		if err != nil {
			return nil, err
		}
		lines = append(lines, presentation.FromStyle(style).Lines()...)
	}
	return lines, nil
}
