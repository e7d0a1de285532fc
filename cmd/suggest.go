package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest [query]",
	Short: "Rank your GitHub repositories against a query",
	Long: `Rank the repositories of the authenticated gh user against a free-text
query. Every word of the query must appear in the repository name or URL.

Examples:
  kata-ws suggest widgets
  kata-ws suggest acme api --json`,
	RunE: runSuggest,
}

var suggestJSON bool

func init() {
	suggestCmd.Flags().BoolVar(&suggestJSON, "json", false, "Output suggestions as JSON")
	rootCmd.AddCommand(suggestCmd)
}

func runSuggest(cmd *cobra.Command, args []string) error {
	svc, err := service()
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")
	suggestions, err := svc.SuggestRemoteRepositories(cmd.Context(), query)
	if err != nil {
		return err
	}

	if suggestJSON {
		return writeJSON(cmd.OutOrStdout(), suggestions)
	}

	if len(suggestions) == 0 {
		logInfo("No repositories match %q", query)
		return nil
	}

	w := cmd.OutOrStdout()
	for _, s := range suggestions {
		visibility := "public"
		if s.IsPrivate {
			visibility = "private"
		}
		fmt.Fprintf(w, "%4d  %-40s %-8s %s\n", s.Score, s.NameWithOwner, visibility, s.URL)
	}
	return nil
}
