package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/zjrosen/skins/internal/app"
	"github.com/zjrosen/skins/internal/presentation"
)

// ErrLintFailed is returned when a lint run finds errors.
var ErrLintFailed = errors.New("lint failed")

const lintWidth = 80

var (
	lintJSON  bool
	lintPlain bool
)

var lintCmd = &cobra.Command{
	Use:   "lint [dir]",
	Short: "Check themes for errors and warnings",
	Long: `Load every theme and resolve each skin point under the base variant set
and under each single variant, reporting failed loads, unresolved hooks and
theme warnings. Exits non-zero when any error is found.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLint,
}

func init() {
	lintCmd.Flags().BoolVar(&lintJSON, "json", false, "output as JSON")
	lintCmd.Flags().BoolVar(&lintPlain, "plain", false, "print the report as raw markdown")
	rootCmd.AddCommand(lintCmd)
}

func runLint(cmd *cobra.Command, args []string) error {
	var dir string
	if len(args) == 1 {
		dir = args[0]
	}
	a, err := openApp(cmd.Context(), dir, "", false)
	if err != nil {
		return err
	}
	defer a.Close()

	report := a.Lint()
	if err := writeLint(cmd.OutOrStdout(), presentation.FromReport(report)); err != nil {
		return err
	}
	if report.HasErrors() {
		errs, _ := report.Counts()
		return fmt.Errorf("%w: %d error(s)", ErrLintFailed, errs)
	}
	return nil
}

func writeLint(w io.Writer, dto presentation.LintDTO) error {
	if lintJSON {
		return presentation.NewFormatter(w).FormatJSON(dto)
	}
	md, err := presentation.LintMarkdown(dto)
	if err != nil {
		return err
	}
	if !lintPlain {
		md, err = presentation.RenderMarkdown(md, lintWidth, presentation.MarkdownStyle(termenv.NewOutput(w)))
		if err != nil {
			return fmt.Errorf("rendering report: %w", err)
		}
	}
	_, err = io.WriteString(w, md)
	return err
}

// lintSummary is the one-line form used by watch.
func lintSummary(r app.Report) string {
	errs, warnings := r.Counts()
	return fmt.Sprintf("%d theme(s), %d error(s), %d warning(s)", len(r.Themes), errs, warnings)
}
