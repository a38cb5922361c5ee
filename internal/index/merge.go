package index

import (
	"fmt"
	"os"

	"harshagw/tinyseg/internal/segment"
	"harshagw/tinyseg/internal/store"
)

// Merge rewrites the given segments into one, dropping deleted documents.
// Stored documents are re-analyzed with the index tokenizer.
func (idx *Index) Merge(segmentIDs []string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.closed {
		return fmt.Errorf("index is closed")
	}

	if len(segmentIDs) < 2 {
		return fmt.Errorf("need at least 2 segments to merge")
	}

	idSet := make(map[string]bool, len(segmentIDs))
	for _, id := range segmentIDs {
		idSet[id] = true
	}

	var toMerge []*SegmentSnapshot
	for _, seg := range idx.segments {
		if idSet[seg.ID()] {
			deleted, err := idx.getDeletions(seg.ID())
			if err != nil {
				return err
			}
			toMerge = append(toMerge, &SegmentSnapshot{seg: seg, deleted: deleted})
		}
	}

	if len(toMerge) != len(idSet) {
		return fmt.Errorf("some segments not found")
	}

	builder := idx.newBuilder()

	for _, ss := range toMerge {
		seg := ss.Segment()
		for docNum := uint64(0); docNum < seg.NumDocs(); docNum++ {
			if ss.deleted.Contains(uint32(docNum)) {
				continue
			}

			doc, err := seg.LoadDoc(docNum)
			if err != nil {
				return fmt.Errorf("segment %s doc %d: %w", seg.ID(), docNum, err)
			}
			extID, ok := seg.ExternalID(docNum)
			if !ok {
				continue
			}
			if _, err := builder.Add(extID, doc); err != nil {
				return err
			}
		}
	}

	currentEpoch, err := idx.meta.GetEpoch()
	if err != nil {
		return err
	}
	newSegmentID := fmt.Sprintf("%012d", currentEpoch+1)

	segPath, err := builder.Build(idx.dir, newSegmentID)
	if err != nil {
		return err
	}

	var epoch uint64
	err = idx.meta.Update(func(tx *store.Tx) error {
		epoch, err = tx.IncrementEpoch()
		if err != nil {
			return err
		}

		for docNum, externalID := range builder.DocIDs {
			if err := tx.SetDocMapping(externalID, newSegmentID, uint64(docNum)); err != nil {
				return err
			}
		}

		for _, segID := range segmentIDs {
			if err := tx.DeleteDeletions(segID); err != nil {
				return err
			}
		}

		segmentIDList := make([]string, 0, len(idx.segments)-len(idSet)+1)
		for _, seg := range idx.segments {
			if !idSet[seg.ID()] {
				segmentIDList = append(segmentIDList, seg.ID())
			}
		}
		return tx.SetSegments(append(segmentIDList, newSegmentID))
	})
	if err != nil {
		os.Remove(segPath)
		return err
	}

	newSeg, err := segment.Open(segPath, newSegmentID)
	if err != nil {
		return err
	}

	newSegments := make([]*segment.Segment, 0, len(idx.segments)-len(idSet)+1)
	var removedPaths []string
	for _, seg := range idx.segments {
		if idSet[seg.ID()] {
			removedPaths = append(removedPaths, seg.Path())
			seg.Close()
			delete(idx.pendingDeletions, seg.ID())
		} else {
			newSegments = append(newSegments, seg)
		}
	}
	idx.segments = append(newSegments, newSeg)
	idx.epoch = epoch

	for _, path := range removedPaths {
		if err := os.Remove(path); err != nil {
			idx.log.Warn("failed to remove merged segment", "path", path, "err", err)
		}
	}
	idx.log.Info("segments merged", "merged", len(segmentIDs), "segment", newSegmentID, "docs", builder.NumDocs())

	return nil
}
