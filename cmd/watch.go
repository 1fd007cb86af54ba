package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zjrosen/skins/internal/log"
	"github.com/zjrosen/skins/internal/presentation"
	"github.com/zjrosen/skins/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Re-lint a theme directory whenever it changes",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&lintPlain, "plain", false, "print reports as raw markdown")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir := themesDir
	if len(args) == 1 {
		dir = args[0]
	}
	if dir == "" {
		dir = cfg.Themes.Dir
	}
	if dir == "" {
		return fmt.Errorf("no theme directory: pass one or set themes::dir")
	}

	w, err := watcher.New(watcher.DefaultConfig(dir))
	if err != nil {
		return err
	}
	changes, err := w.Start()
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	relint := func() {
		a, err := openApp(ctx, dir, "", false)
		if err != nil {
			cmd.PrintErrln(err)
			return
		}
		defer a.Close()
		report := a.Lint()
		log.Info(log.CatWatcher, "Re-linted themes", "dir", dir, "summary", lintSummary(report))
		if err := writeLint(cmd.OutOrStdout(), presentation.FromReport(report)); err != nil {
			cmd.PrintErrln(err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (ctrl+c to stop)\n", dir)
	relint()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
			fmt.Fprintf(cmd.OutOrStdout(), "\n%s changed\n", dir)
			relint()
		}
	}
}
