package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zjrosen/skins/internal/app"
	"github.com/zjrosen/skins/internal/presentation"
)

var (
	resolveTheme    string
	resolveVariants []string
	resolveAttrs    []string
	resolveJSON     bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <skin>",
	Short: "Resolve the hooks of a skin point",
	Long: `Resolve every hook of a skin point under a theme. Variants given with
--variant are forced on; attribute variants match the --attr values.`,
	Example: `  skins resolve button --variant hover
  skins resolve searchbar-input --theme light --attr data-variant=outline`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringVarP(&resolveTheme, "theme", "t", "", "theme to resolve under (default: the active theme)")
	resolveCmd.Flags().StringArrayVarP(&resolveVariants, "variant", "v", nil, "variant to force on (repeatable)")
	resolveCmd.Flags().StringArrayVar(&resolveAttrs, "attr", nil, "element attribute as key=value (repeatable)")
	resolveCmd.Flags().BoolVar(&resolveJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	attrs, err := parseAttrs(resolveAttrs)
	if err != nil {
		return err
	}
	a, err := openApp(cmd.Context(), "", "", true)
	if err != nil {
		return err
	}
	defer a.Close()

	style, err := a.Resolve(app.Query{
		Theme:    resolveTheme,
		Skin:     args[0],
		Variants: resolveVariants,
		Attrs:    attrs,
	})
	if err != nil {
		return err
	}

	f := presentation.NewFormatter(cmd.OutOrStdout())
	if resolveJSON {
		return f.FormatJSON(presentation.FromStyle(style))
	}
	return f.FormatStyle(presentation.FromStyle(style))
}

func parseAttrs(kvs []string) (map[string]string, error) {
	if len(kvs) == 0 {
		return nil, nil
	}
	attrs := make(map[string]string, len(kvs))
	for _, kv := range kvs {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --attr %q: want key=value", kv)
		}
		attrs[k] = v
	}
	return attrs, nil
}
