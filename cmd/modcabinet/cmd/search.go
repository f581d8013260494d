package cmd

import (
	"github.com/spf13/cobra"
)

// Variables shared with search_logic.go
var (
	searchQuery     string
	searchIndexPath string
)

// searchCmd searches the Bleve index built by the sort command.
var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search the Bleve index of cataloged mods",
	Long: `Searches the index written by 'sort'. The query uses Bleve's query string
syntax, e.g. 'loot', '+author:someuser' or '+categories:qol +game:BL2'.`,
	Run: func(cmd *cobra.Command, args []string) {
		indexPath := searchIndexPath
		if indexPath == "" {
			indexPath = indexPathFor(globalConfig)
		}
		runSearchLogic(indexPath, searchQuery)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringVarP(&searchQuery, "query", "q", "", "Search query (required)")
	searchCmd.Flags().StringVar(&searchIndexPath, "index", "", "Index path (defaults to BleveIndexPath or next to the cache)")
	_ = searchCmd.MarkFlagRequired("query")
}
