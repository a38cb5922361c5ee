package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"harshagw/tinyseg/internal/query"
	"harshagw/tinyseg/internal/search"
)

var (
	queryLimit   int
	queryExplain bool
)

var queryCmd = &cobra.Command{
	Use:   "query <expression>...",
	Short: "Run a boolean query expression",
	Long: `Run a query expression. Unspaced words are segmented with the index
tokenizer and become phrases when they split into several terms.

Syntax:
  word  「phrase」  "phrase"  prefix*  field:value
  a AND b   a b   a OR b   NOT a   -a   (a OR b)

Examples:
  tinyseg query '東京の夜 -大阪'
  tinyseg query 'title:東京* OR 「京都 駅」'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQueryCmd,
}

func init() {
	queryCmd.Flags().IntVar(&queryLimit, "limit", 0, "maximum results (default is search.limit)")
	queryCmd.Flags().BoolVar(&queryExplain, "explain", false, "print the rewritten query")
	rootCmd.AddCommand(queryCmd)
}

func runQueryCmd(cmd *cobra.Command, args []string) error {
	limit := queryLimit
	if limit == 0 {
		limit = cfg.Search.Limit
	}

	idx, err := openIndex()
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer idx.Close()

	snap, err := idx.Snapshot()
	if err != nil {
		return err
	}
	defer snap.Close()

	searcher := search.New(snap)
	input := strings.Join(args, " ")
	q, results, err := query.Run(input, idx.Analyzer(), searcher)
	if err != nil {
		return err
	}
	if queryExplain {
		fmt.Println(q)
	}
	return printResults(searcher, results, q.String(), "", limit, true)
}
