package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ragdemo/internal/logger"
)

func newSearchCmd(opts *options) *cobra.Command {
	var k int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the knowledge base by similarity",
		Long: `Search the knowledge base by vector similarity. The store lives in memory,
so preload documents with --load.

Example:
  ragdemo search "neural networks" -k 2 --load 'docs/**/*.md'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if k == 0 {
				k = opts.cfg.Retrieval.SearchDefaultK
			}
			if k < 1 || k > opts.cfg.Retrieval.SearchMaxK {
				return fmt.Errorf("-k must be between 1 and %d", opts.cfg.Retrieval.SearchMaxK)
			}
			log, err := logger.ForTUI(opts.cfg.Logging)
			if err != nil {
				return err
			}
			a, err := newApp(opts.cfg, log)
			if err != nil {
				return err
			}
			if _, err := a.preload(cmd.Context(), cmd.ErrOrStderr(), opts.load); err != nil {
				return err
			}

			results, err := a.svc.Search(cmd.Context(), strings.Join(args, " "), k)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintln(out, "No documents found. Add some documents first!")
				return nil
			}
			for i, r := range results {
				fmt.Fprintf(out, "Result %d - Similarity: %.3f\n", i+1, r.Similarity())
				fmt.Fprintf(out, "  Title:    %s\n", r.Document.Metadata.Title())
				fmt.Fprintf(out, "  Content:  %s\n", r.Document.Text)
				fmt.Fprintf(out, "  Distance: %.3f\n", r.Distance)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&k, "k", "k", 0, "number of results (default retrieval.search_default_k)")
	return cmd
}
