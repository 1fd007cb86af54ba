package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/zjrosen/skins/internal/app"
	"github.com/zjrosen/skins/internal/baseline"
	"github.com/zjrosen/skins/internal/log"
	"github.com/zjrosen/skins/internal/presentation"
	"github.com/zjrosen/skins/internal/tracing"
)

// ErrDrift is returned by baseline check when a theme no longer matches its
// saved baseline.
var ErrDrift = errors.New("baseline drift")

var (
	baselineAll  bool
	baselineJSON bool
)

var baselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Save and check resolved theme snapshots",
	Long: `A baseline records every hook of every skin point of a theme, under the
base variant set and each single variant. Checking compares the current
themes against the saved records.`,
}

var baselineSaveCmd = &cobra.Command{
	Use:   "save [theme...]",
	Short: "Save baselines (default: the active theme)",
	RunE:  runBaselineSave,
}

var baselineCheckCmd = &cobra.Command{
	Use:   "check [theme...]",
	Short: "Report drift from the saved baselines",
	RunE:  runBaselineCheck,
}

var baselineListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved baselines",
	Args:  cobra.NoArgs,
	RunE:  runBaselineList,
}

var baselineDeleteCmd = &cobra.Command{
	Use:   "delete <theme>",
	Short: "Delete a saved baseline",
	Args:  cobra.ExactArgs(1),
	RunE:  runBaselineDelete,
}

func init() {
	for _, c := range []*cobra.Command{baselineSaveCmd, baselineCheckCmd} {
		c.Flags().BoolVarP(&baselineAll, "all", "a", false, "every loaded theme")
	}
	baselineCheckCmd.Flags().BoolVar(&baselineJSON, "json", false, "output as JSON")
	baselineCmd.AddCommand(baselineSaveCmd, baselineCheckCmd, baselineListCmd, baselineDeleteCmd)
	rootCmd.AddCommand(baselineCmd)
}

func openBaseline(ctx context.Context) (*baseline.Store, error) {
	return baseline.Open(ctx, cfg.BaselinePath(cfgPath), baseline.WithTracer(provider.Tracer()))
}

// baselineThemes returns the theme ids named by args and --all.
func baselineThemes(a *app.App, args []string) ([]string, error) {
	if baselineAll {
		var ids []string
		for _, th := range a.Store().Themes() {
			ids = append(ids, th.ID())
		}
		return ids, nil
	}
	if len(args) > 0 {
		return args, nil
	}
	th, err := a.Store().Active()
	if err != nil {
		return nil, err
	}
	return []string{th.ID()}, nil
}

func runBaselineSave(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, "", "", true)
	if err != nil {
		return err
	}
	defer a.Close()

	ids, err := baselineThemes(a, args)
	if err != nil {
		return err
	}
	store, err := openBaseline(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	for _, id := range ids {
		th, entries, err := a.Capture(id)
		if err != nil {
			return err
		}
		if err := store.Save(ctx, th.ID(), th.Revision(), entries); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s: %d entries\n", th.ID(), len(entries))
	}
	return nil
}

func runBaselineCheck(cmd *cobra.Command, args []string) (err error) {
	ctx, span := tracing.Start(cmd.Context(), provider.Tracer(), tracing.SpanBaselineCheck,
		attribute.Bool("baseline.all", baselineAll))
	defer func() {
		if errors.Is(err, ErrDrift) {
			tracing.End(span, nil)
			return
		}
		tracing.End(span, err)
	}()

	a, err := openApp(ctx, "", "", true)
	if err != nil {
		return err
	}
	defer a.Close()

	ids, err := baselineThemes(a, args)
	if err != nil {
		return err
	}
	store, err := openBaseline(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	report := map[string][]presentation.DriftDTO{}
	drifted := 0
	for _, id := range ids {
		prev, err := store.Load(ctx, id)
		if err != nil {
			return err
		}
		_, next, err := a.Capture(id)
		if err != nil {
			return err
		}
		drift := baseline.Compare(prev, next)
		span.SetAttributes(attribute.Int("baseline.drift."+id, len(drift)))
		if len(drift) > 0 {
			drifted++
			log.Warn(log.CatBaseline, "Baseline drift", "theme", id, "entries", len(drift))
		}
		report[id] = presentation.FromDrift(drift)
	}

	f := presentation.NewFormatter(cmd.OutOrStdout())
	if baselineJSON {
		if err := f.FormatJSON(report); err != nil {
			return err
		}
	} else {
		for _, id := range ids {
			fmt.Fprintf(cmd.OutOrStdout(), "%s:\n", id)
			if err := f.FormatDrift(report[id]); err != nil {
				return err
			}
		}
	}
	if drifted > 0 {
		return fmt.Errorf("%w in %d theme(s)", ErrDrift, drifted)
	}
	return nil
}

func runBaselineList(cmd *cobra.Command, _ []string) error {
	store, err := openBaseline(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	saved, err := store.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(saved) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No baselines saved.")
		return nil
	}
	for _, sv := range saved {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\trevision %d\t%d entries\t%s\n", sv.ThemeID, sv.Revision, sv.Entries, sv.SavedAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func runBaselineDelete(cmd *cobra.Command, args []string) error {
	store, err := openBaseline(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.Delete(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted baseline %s\n", args[0])
	return nil
}
