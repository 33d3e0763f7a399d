package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/kbchat-cli/internal/adapters/driven/docs"
)

var indexCmd = &cobra.Command{
	Use:   "index [dir]",
	Short: "Build the vector index from a document directory",
	Long: `Reads every .txt and .md file under the directory, embeds the
contents and writes the vector index to disk. The previous index is
replaced. Without an argument the configured docs directory is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	dir := a.cfg.DocsDir
	if len(args) == 1 {
		dir = args[0]
	}

	documents, err := docs.LoadDir(dir)
	if err != nil {
		return err
	}
	if len(documents) == 0 {
		return errors.New("no text documents found in " + dir)
	}

	texts, sources := docs.Split(documents)
	if !a.pipeline.IndexDocuments(cmd.Context(), texts, sources) {
		return errors.New("indexing failed, see --verbose output")
	}

	cmd.Printf("Indexed %d documents from %s\n", len(documents), dir)
	return nil
}
