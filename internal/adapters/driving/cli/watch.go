package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/kbchat-cli/internal/adapters/driven/docs"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Reindex automatically when documents change",
	Long: `Watches the document directory and rebuilds the index after each
batch of changes. Runs until interrupted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	dir := a.cfg.DocsDir
	if len(args) == 1 {
		dir = args[0]
	}

	reindex := func(ctx context.Context) error {
		documents, err := docs.LoadDir(dir)
		if err != nil {
			return err
		}
		texts, sources := docs.Split(documents)
		if !a.pipeline.IndexDocuments(ctx, texts, sources) {
			return errors.New("indexing failed")
		}
		cmd.Printf("Reindexed %d documents\n", len(documents))
		return nil
	}

	// Initial build so queries work while watching.
	if err := reindex(cmd.Context()); err != nil {
		return err
	}

	watcher, err := docs.NewWatcher(dir)
	if err != nil {
		return err
	}
	defer watcher.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Watching %s for changes (Ctrl+C to stop)\n", dir)
	if err := watcher.Run(ctx, reindex); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
