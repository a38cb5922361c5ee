package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"

	"harshagw/tinyseg/internal/analysis"
	"harshagw/tinyseg/internal/index"
	"harshagw/tinyseg/internal/ingest"
	"harshagw/tinyseg/internal/query"
	"harshagw/tinyseg/internal/search"
)

var (
	benchDocs       int
	benchIterations int
)

var benchCmd = &cobra.Command{
	Use:   "bench [pattern]...",
	Short: "Measure segmentation, indexing and query latency",
	Long: `Index a corpus into a temporary directory and time the token stream,
indexing and a fixed set of queries. Without patterns a synthetic Japanese
corpus is generated.`,
	RunE: runBench,
}

func init() {
	benchCmd.Flags().IntVar(&benchDocs, "docs", 5000, "synthetic documents to generate")
	benchCmd.Flags().IntVar(&benchIterations, "iterations", 200, "runs per query")
	rootCmd.AddCommand(benchCmd)
}

var benchSentences = []string{
	"東京の夜は明るい",
	"大阪の朝と京都の夜",
	"日本語の本文を形態素に分割する",
	"すもももももももものうち",
	"東京タワーから富士山が見える",
	"新しい駅が来年開業する予定です",
	"吾輩は猫である。名前はまだ無い。",
	"全文検索エンジンは転置索引を使う",
}

var benchQueries = []string{
	"東京",
	"夜",
	"東京の夜",
	"「京都の夜」",
	"東京 OR 大阪",
	"夜 -東京",
	"body:東*",
	"(東京 OR 京都) AND 夜",
}

func syntheticDocs(n int) []ingest.Document {
	r := rand.New(rand.NewSource(1))
	docs := make([]ingest.Document, n)
	for i := range docs {
		var body string
		sentences := 3 + r.Intn(5)
		for j := 0; j < sentences; j++ {
			body += benchSentences[r.Intn(len(benchSentences))]
		}
		docs[i] = ingest.Document{
			ID: fmt.Sprintf("doc%d", i),
			Fields: map[string]any{
				"title": benchSentences[r.Intn(len(benchSentences))],
				"body":  body,
			},
		}
	}
	return docs
}

func runBench(cmd *cobra.Command, args []string) error {
	docs := syntheticDocs(benchDocs)
	if len(args) > 0 {
		files, err := ingest.Expand(args)
		if err != nil {
			return err
		}
		docs = docs[:0]
		for _, path := range files {
			fileDocs, err := ingest.ReadDocuments(path)
			if err != nil {
				return err
			}
			docs = append(docs, fileDocs...)
		}
	}
	if len(docs) == 0 {
		return fmt.Errorf("no documents to benchmark")
	}

	tokenizer, err := loadTokenizer(cfg.Analysis.Tokenizer)
	if err != nil {
		return err
	}

	fmt.Println("SEGMENTATION")
	fmt.Println("------------")
	benchSegmentation(tokenizer, docs)

	dir, err := os.MkdirTemp("", "tinyseg-bench-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	config := index.DefaultConfig(dir)
	config.Tokenizer = tokenizer
	config.TokenizerName = cfg.Analysis.Tokenizer
	config.FlushThreshold = cfg.Index.FlushThreshold
	config.Strict = cfg.Analysis.Strict
	config.Logger = logger
	idx, err := index.New(config)
	if err != nil {
		return err
	}
	defer idx.Close()

	fmt.Println("INDEXING")
	fmt.Println("--------")
	start := time.Now()
	for _, d := range docs {
		if err := idx.Index(d.ID, d.Fields); err != nil {
			return err
		}
	}
	if err := idx.Flush(); err != nil {
		return err
	}
	elapsed := time.Since(start)
	fmt.Printf("  Documents:  %d\n", len(docs))
	fmt.Printf("  Segments:   %d\n", idx.NumSegments())
	fmt.Printf("  Time:       %v\n", elapsed.Round(time.Millisecond))
	fmt.Printf("  Throughput: %.0f docs/sec\n\n", float64(len(docs))/elapsed.Seconds())

	snap, err := idx.Snapshot()
	if err != nil {
		return err
	}
	defer snap.Close()
	searcher := search.New(snap)

	fmt.Println("QUERIES")
	fmt.Println("-------")
	for _, q := range benchQueries {
		latency, hits, err := benchmarkQuery(idx.Analyzer(), searcher, q)
		if err != nil {
			return fmt.Errorf("%s: %w", q, err)
		}
		fmt.Printf("  %-30s %s  (%d hits)\n", q, formatLatency(latency), hits)
	}
	return nil
}

func benchSegmentation(tokenizer *analysis.Tokenizer, docs []ingest.Document) {
	var tokens, bytes int
	start := time.Now()
	for _, d := range docs {
		for _, v := range d.Fields {
			text, ok := v.(string)
			if !ok {
				continue
			}
			bytes += len(text)
			tokens += tokenizer.TokenStream(text).Process(func(analysis.Token) {})
		}
	}
	elapsed := time.Since(start)
	fmt.Printf("  Tokens:     %d\n", tokens)
	fmt.Printf("  Time:       %v\n", elapsed.Round(time.Millisecond))
	fmt.Printf("  Throughput: %.2f MB/sec\n\n", float64(bytes)/(1<<20)/elapsed.Seconds())
}

func benchmarkQuery(a analysis.Analyzer, s *search.Searcher, input string) (time.Duration, int, error) {
	_, results, err := query.Run(input, a, s)
	if err != nil {
		return 0, 0, err
	}

	start := time.Now()
	for i := 0; i < benchIterations; i++ {
		query.Run(input, a, s)
	}
	return time.Since(start) / time.Duration(max(benchIterations, 1)), len(results), nil
}

func formatLatency(d time.Duration) string {
	return fmt.Sprintf("%8.2f µs", float64(d.Nanoseconds())/1000)
}
