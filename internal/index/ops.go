package index

import (
	"fmt"
	"os"

	"github.com/RoaringBitmap/roaring"

	"harshagw/tinyseg/internal/segment"
	"harshagw/tinyseg/internal/store"
)

func (idx *Index) getDeletions(segID string) (*roaring.Bitmap, error) {
	persisted, err := idx.meta.GetDeletions(segID)
	if err != nil {
		return nil, err
	}
	if pending := idx.pendingDeletions[segID]; pending != nil {
		persisted.Or(pending)
	}
	return persisted, nil
}

func (idx *Index) Flush() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.closed {
		return fmt.Errorf("index is closed")
	}

	return idx.flushInternal()
}

// flushInternal writes the buffered documents as a new segment. Callers
// hold the write lock.
func (idx *Index) flushInternal() error {
	if idx.builder.NumDocs() == 0 && len(idx.pendingDeletions) == 0 {
		return nil
	}

	currentSegmentIDs, err := idx.meta.GetSegments()
	if err != nil {
		return err
	}

	currentEpoch, err := idx.meta.GetEpoch()
	if err != nil {
		return err
	}

	var segmentID, segPath string
	if idx.builder.NumDocs() > 0 {
		segmentID = fmt.Sprintf("%012d", currentEpoch+1)
		segPath, err = idx.builder.Build(idx.dir, segmentID)
		if err != nil {
			return fmt.Errorf("failed to build segment %s: %w", segmentID, err)
		}
	}

	var epoch uint64
	err = idx.meta.Update(func(tx *store.Tx) error {
		epoch, err = tx.IncrementEpoch()
		if err != nil {
			return err
		}

		for segID, pending := range idx.pendingDeletions {
			if pending == nil || pending.IsEmpty() {
				continue
			}
			existing, err := tx.GetDeletions(segID)
			if err != nil {
				return err
			}
			existing.Or(pending)
			if err := tx.SetDeletions(segID, existing); err != nil {
				return err
			}
		}

		if segmentID == "" {
			return nil
		}

		if !idx.builder.Deleted.IsEmpty() {
			if err := tx.SetDeletions(segmentID, idx.builder.Deleted); err != nil {
				return err
			}
		}
		for docNum, externalID := range idx.builder.DocIDs {
			if idx.builder.IsDeleted(uint64(docNum)) {
				continue
			}
			if err := tx.SetDocMapping(externalID, segmentID, uint64(docNum)); err != nil {
				return err
			}
		}

		return tx.SetSegments(append(currentSegmentIDs, segmentID))
	})
	if err != nil {
		if segPath != "" {
			os.Remove(segPath)
		}
		return err
	}

	if segmentID != "" {
		seg, err := segment.Open(segPath, segmentID)
		if err != nil {
			return err
		}
		idx.segments = append(idx.segments, seg)
		idx.log.Info("segment flushed", "segment", segmentID, "docs", idx.builder.NumDocs(), "epoch", epoch)
	}

	idx.epoch = epoch
	idx.pendingDeletions = make(map[string]*roaring.Bitmap)
	idx.builder = idx.newBuilder()

	return nil
}

// Snapshot returns a point-in-time snapshot for searching. The snapshot
// shares the in-memory builder, so it must not outlive the next write.
func (idx *Index) Snapshot() (*IndexSnapshot, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.closed {
		return nil, fmt.Errorf("index is closed")
	}

	snapshots := make([]*SegmentSnapshot, len(idx.segments))
	for i, seg := range idx.segments {
		deleted, err := idx.getDeletions(seg.ID())
		if err != nil {
			return nil, err
		}
		snapshots[i] = &SegmentSnapshot{seg: seg, deleted: deleted}
	}

	return &IndexSnapshot{
		segments:    snapshots,
		builder:     idx.builder,
		epoch:       idx.epoch,
		analyzer:    idx.analyzer,
		scoringMode: idx.scoringMode,
	}, nil
}

// Close releases the index. Buffered documents that were not flushed are
// discarded.
func (idx *Index) Close() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.closed {
		return nil
	}

	idx.closed = true
	idx.pendingDeletions = nil
	idx.builder = nil
	idx.closeSegments()

	idx.log.Info("index closed")
	return idx.meta.Close()
}

// NumSegments returns the number of segments.
func (idx *Index) NumSegments() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.segments)
}

// Tokenizer returns the name of the index tokenizer.
func (idx *Index) Tokenizer() string {
	return idx.tokenizerName
}

// SegmentInfo holds info about a segment.
type SegmentInfo struct {
	ID      string
	Path    string
	NumDocs uint64
}

// Segments returns info about all segments.
func (idx *Index) Segments() []SegmentInfo {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	info := make([]SegmentInfo, len(idx.segments))
	for i, seg := range idx.segments {
		info[i] = SegmentInfo{
			ID:      seg.ID(),
			Path:    seg.Path(),
			NumDocs: seg.NumDocs(),
		}
	}
	return info
}

// SegmentStats holds detailed stats for a segment.
type SegmentStats struct {
	NumDocs    uint64
	NumDeleted uint64
	Fields     []string
	Tokenizer  string
}

// SegmentStats returns detailed stats for a segment.
func (idx *Index) SegmentStats(segID string) (*SegmentStats, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	seg := idx.findSegment(segID)
	if seg == nil {
		return nil, fmt.Errorf("segment not found: %s", segID)
	}
	deleted, err := idx.getDeletions(segID)
	if err != nil {
		return nil, err
	}
	return &SegmentStats{
		NumDocs:    seg.NumDocs(),
		NumDeleted: deleted.GetCardinality(),
		Fields:     seg.Fields(),
		Tokenizer:  seg.Tokenizer(),
	}, nil
}

func (idx *Index) findSegment(segID string) *segment.Segment {
	for _, seg := range idx.segments {
		if seg.ID() == segID {
			return seg
		}
	}
	return nil
}

// LoadDoc loads a document from a segment by docNum.
func (idx *Index) LoadDoc(segID string, docNum uint64) (map[string]any, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	seg := idx.findSegment(segID)
	if seg == nil {
		return nil, fmt.Errorf("segment not found: %s", segID)
	}
	return seg.LoadDoc(docNum)
}

// Get returns the live version of a document by external ID.
func (idx *Index) Get(docID string) (map[string]any, bool, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.closed {
		return nil, false, fmt.Errorf("index is closed")
	}

	for i := len(idx.builder.DocIDs) - 1; i >= 0; i-- {
		if idx.builder.DocIDs[i] == docID && !idx.builder.IsDeleted(uint64(i)) {
			doc, err := idx.builder.LoadDoc(uint64(i))
			return doc, err == nil, err
		}
	}

	segID, docNum, found, err := idx.meta.GetDocMapping(docID)
	if err != nil || !found {
		return nil, false, err
	}
	seg := idx.findSegment(segID)
	if seg == nil {
		return nil, false, nil
	}
	deleted, err := idx.getDeletions(segID)
	if err != nil {
		return nil, false, err
	}
	if deleted.Contains(uint32(docNum)) {
		return nil, false, nil
	}
	doc, err := seg.LoadDoc(docNum)
	if err != nil {
		return nil, false, err
	}
	return doc, true, nil
}

type PostingEntry struct {
	SegmentID string
	DocNum    uint64
	Freq      uint64
	Positions []uint64
	Offsets   []segment.Span
}

// DumpPostings returns raw postings for a field:term across all segments.
func (idx *Index) DumpPostings(field, term string) ([]PostingEntry, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var results []PostingEntry
	for _, seg := range idx.segments {
		postings, err := seg.Search(term, field, nil)
		if err != nil {
			return nil, fmt.Errorf("segment %s: %w", seg.ID(), err)
		}
		for _, p := range postings {
			results = append(results, PostingEntry{
				SegmentID: seg.ID(),
				DocNum:    p.DocNum,
				Freq:      p.Frequency,
				Positions: p.Positions,
				Offsets:   p.Offsets,
			})
		}
	}
	return results, nil
}

// DumpDeletions returns the deleted docNums for a segment.
func (idx *Index) DumpDeletions(segID string) ([]uint32, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	deleted, err := idx.getDeletions(segID)
	if err != nil {
		return nil, err
	}
	return deleted.ToArray(), nil
}

// ForceMerge merges all segments into one.
func (idx *Index) ForceMerge() error {
	idx.mu.RLock()
	segmentIDs := make([]string, len(idx.segments))
	for i, seg := range idx.segments {
		segmentIDs[i] = seg.ID()
	}
	idx.mu.RUnlock()

	if len(segmentIDs) < 2 {
		return nil
	}

	return idx.Merge(segmentIDs)
}
