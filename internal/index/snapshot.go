package index

import (
	"github.com/RoaringBitmap/roaring"

	"harshagw/tinyseg/internal/analysis"
	"harshagw/tinyseg/internal/segment"
)

// SegmentSnapshot represents a segment with its deletion bitmap.
type SegmentSnapshot struct {
	seg     *segment.Segment
	deleted *roaring.Bitmap
}

// Segment returns the underlying segment.
func (s *SegmentSnapshot) Segment() *segment.Segment { return s.seg }

// Deleted returns the deletion bitmap.
func (s *SegmentSnapshot) Deleted() *roaring.Bitmap { return s.deleted }

// ID returns the segment ID.
func (s *SegmentSnapshot) ID() string { return s.seg.ID() }

// Search searches for a term in a field.
func (s *SegmentSnapshot) Search(term, field string) ([]segment.Posting, error) {
	return s.seg.Search(term, field, s.deleted)
}

// LiveDocs returns the number of non-deleted documents.
func (s *SegmentSnapshot) LiveDocs() uint64 {
	n := s.seg.NumDocs()
	if s.deleted != nil {
		n -= s.deleted.GetCardinality()
	}
	return n
}

// IndexSnapshot represents a point-in-time view of the index for searching.
type IndexSnapshot struct {
	segments    []*SegmentSnapshot
	builder     *segment.Builder
	epoch       uint64
	analyzer    analysis.Analyzer
	scoringMode ScoringMode
}

// Segments returns the segment snapshots, oldest first.
func (s *IndexSnapshot) Segments() []*SegmentSnapshot { return s.segments }

// Builder returns the in-memory segment builder (may be nil).
func (s *IndexSnapshot) Builder() *segment.Builder { return s.builder }

// Analyzer returns the index's analyzer.
func (s *IndexSnapshot) Analyzer() analysis.Analyzer { return s.analyzer }

// ScoringMode returns the scoring mode for this snapshot.
func (s *IndexSnapshot) ScoringMode() ScoringMode { return s.scoringMode }

// Epoch returns the metadata epoch the snapshot was taken at.
func (s *IndexSnapshot) Epoch() uint64 { return s.epoch }

// TotalDocs returns the number of live documents across segments and builder.
func (s *IndexSnapshot) TotalDocs() uint64 {
	var total uint64
	for _, seg := range s.segments {
		total += seg.LiveDocs()
	}
	if s.builder != nil {
		total += s.builder.NumDocs()
	}
	return total
}

// AvgFieldLength returns the average token count of a field.
func (s *IndexSnapshot) AvgFieldLength(field string) float64 {
	var totalTokens float64
	var docCount uint64

	for _, seg := range s.segments {
		if avg := seg.seg.AvgFieldLength(field); avg > 0 {
			n := seg.LiveDocs()
			totalTokens += avg * float64(n)
			docCount += n
		}
	}

	if s.builder != nil {
		if avg := s.builder.AvgFieldLength(field); avg > 0 {
			totalTokens += avg * float64(s.builder.NumDocs())
			docCount += s.builder.NumDocs()
		}
	}

	if docCount == 0 {
		return 0
	}
	return totalTokens / float64(docCount)
}

// Close releases snapshot resources.
func (s *IndexSnapshot) Close() error {
	return nil
}
