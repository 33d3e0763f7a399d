package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index and model statistics",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output statistics as JSON")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	stats := a.pipeline.Stats()

	if statsJSON {
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal stats: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Loaded:      %t\n", stats.IsLoaded)
	cmd.Printf("Records:     %d\n", stats.RecordCount)
	cmd.Printf("Dimension:   %d\n", stats.Dimension)
	cmd.Printf("Embed model: %s\n", stats.EmbedModel)
	cmd.Printf("Chat model:  %s\n", stats.ChatModel)
	return nil
}
