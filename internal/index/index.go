package index

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/RoaringBitmap/roaring"

	"harshagw/tinyseg/internal/analysis"
	"harshagw/tinyseg/internal/segment"
	"harshagw/tinyseg/internal/store"
)

type ScoringMode int

const (
	ScoringTFIDF ScoringMode = iota
	ScoringBM25
)

// ParseScoringMode maps a config value to a ScoringMode.
func ParseScoringMode(s string) (ScoringMode, error) {
	switch s {
	case "", "bm25":
		return ScoringBM25, nil
	case "tfidf":
		return ScoringTFIDF, nil
	}
	return 0, fmt.Errorf("unknown scoring mode: %q", s)
}

type Index struct {
	mu sync.RWMutex

	dir              string
	meta             *store.Metadata
	segments         []*segment.Segment
	builder          *segment.Builder
	epoch            uint64
	pendingDeletions map[string]*roaring.Bitmap

	analyzer       analysis.Analyzer
	tokenizerName  string
	flushThreshold int
	scoringMode    ScoringMode
	log            *slog.Logger

	closed bool
}

type Config struct {
	Dir            string
	FlushThreshold int
	// Tokenizer segments every string field. TokenizerName is recorded in
	// the index metadata and must match on reopen.
	Tokenizer     *analysis.Tokenizer
	TokenizerName string
	// Strict rejects documents whose segmentation is not contiguous.
	Strict      bool
	ScoringMode ScoringMode
	Logger      *slog.Logger
}

// DefaultConfig uses the dictionary-free character-class tokenizer.
func DefaultConfig(dir string) Config {
	return Config{
		Dir:            dir,
		FlushThreshold: 1000,
		Tokenizer:      analysis.NewTokenizer(analysis.NewCharClass()),
		TokenizerName:  analysis.CharType,
		Strict:         true,
		ScoringMode:    ScoringBM25,
	}
}

// New creates or opens an index at the given directory.
func New(config Config) (*Index, error) {
	if config.Tokenizer == nil || config.TokenizerName == "" {
		return nil, fmt.Errorf("index requires a named tokenizer")
	}
	if config.FlushThreshold <= 0 {
		config.FlushThreshold = 1000
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(config.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}

	meta, err := store.NewMetadata(config.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open metadata store: %w", err)
	}
	if err := meta.BindTokenizer(config.TokenizerName); err != nil {
		meta.Close()
		return nil, err
	}

	idx := &Index{
		dir:              config.Dir,
		meta:             meta,
		segments:         make([]*segment.Segment, 0),
		pendingDeletions: make(map[string]*roaring.Bitmap),
		analyzer:         analysis.NewAnalyzer(config.Tokenizer, config.Strict),
		tokenizerName:    config.TokenizerName,
		flushThreshold:   config.FlushThreshold,
		scoringMode:      config.ScoringMode,
		log:              logger.With("index", config.Dir),
	}

	idx.builder = idx.newBuilder()

	if err := idx.loadSegments(); err != nil {
		idx.closeSegments()
		meta.Close()
		return nil, fmt.Errorf("failed to load segments: %w", err)
	}

	idx.epoch, err = meta.GetEpoch()
	if err != nil {
		idx.closeSegments()
		meta.Close()
		return nil, err
	}

	idx.log.Info("index opened",
		"tokenizer", idx.tokenizerName,
		"segments", len(idx.segments),
		"epoch", idx.epoch)

	return idx, nil
}

func (idx *Index) newBuilder() *segment.Builder {
	return segment.NewBuilder(idx.analyzer, idx.tokenizerName)
}

// loadSegments loads all segments from the metadata store.
func (idx *Index) loadSegments() error {
	segmentIDs, err := idx.meta.GetSegments()
	if err != nil {
		return err
	}

	for _, segID := range segmentIDs {
		seg, err := segment.Open(idx.segmentPath(segID), segID)
		if err != nil {
			return fmt.Errorf("failed to open segment %s: %w", segID, err)
		}
		if name := seg.Tokenizer(); name != "" && name != idx.tokenizerName {
			seg.Close()
			return fmt.Errorf("segment %s was built with tokenizer %q", segID, name)
		}
		idx.segments = append(idx.segments, seg)
	}

	return nil
}

func (idx *Index) segmentPath(segID string) string {
	return filepath.Join(idx.dir, segID+".seg")
}

func (idx *Index) closeSegments() {
	for _, seg := range idx.segments {
		seg.Close()
	}
	idx.segments = nil
}

// Analyzer returns the analyzer documents and queries go through.
func (idx *Index) Analyzer() analysis.Analyzer { return idx.analyzer }

// Index indexes a document, replacing any earlier version with the same ID.
func (idx *Index) Index(docID string, doc map[string]any) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.closed {
		return fmt.Errorf("index is closed")
	}

	if _, err := idx.builder.Replace(docID, doc); err != nil {
		return err
	}
	idx.markObsoletes([]string{docID})
	idx.log.Debug("document buffered", "doc", docID, "buffered", idx.builder.NumDocs())

	if idx.builder.NumDocs() >= uint64(idx.flushThreshold) {
		return idx.flushInternal()
	}

	return nil
}

func (idx *Index) Delete(docID string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.closed {
		return fmt.Errorf("index is closed")
	}

	idx.builder.Delete(docID)
	idx.markObsoletes([]string{docID})
	idx.log.Debug("document deleted", "doc", docID)
	return nil
}

// markObsoletes updates deletion bitmaps for docs in persisted segments.
func (idx *Index) markObsoletes(docIDs []string) {
	for _, seg := range idx.segments {
		obsoletes := seg.DocNumbers(docIDs)
		if obsoletes.IsEmpty() {
			continue
		}
		segID := seg.ID()
		if idx.pendingDeletions[segID] == nil {
			idx.pendingDeletions[segID] = roaring.New()
		}
		idx.pendingDeletions[segID].Or(obsoletes)
	}
}
