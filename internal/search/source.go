package search

import (
	"sort"
	"strings"

	"harshagw/tinyseg/internal/index"
	"harshagw/tinyseg/internal/segment"
)

// source is one searchable unit of a snapshot: a persisted segment or the
// in-memory builder.
type source interface {
	postings(term, field string) ([]segment.Posting, error)
	prefixTerms(prefix, field string) ([]string, error)
	externalID(docNum uint64) (string, bool)
	fieldLength(field string, docNum uint64) uint64
	fields() []string
	docNum(externalID string) (uint64, bool)
	loadDoc(docNum uint64) (map[string]any, error)
}

type segmentSource struct {
	snap *index.SegmentSnapshot
}

func (s segmentSource) postings(term, field string) ([]segment.Posting, error) {
	return s.snap.Search(term, field)
}

func (s segmentSource) prefixTerms(prefix, field string) ([]string, error) {
	return s.snap.Segment().PrefixTerms(prefix, field)
}

func (s segmentSource) externalID(docNum uint64) (string, bool) {
	return s.snap.Segment().ExternalID(docNum)
}

func (s segmentSource) fieldLength(field string, docNum uint64) uint64 {
	return s.snap.Segment().FieldLength(field, docNum)
}

func (s segmentSource) fields() []string {
	return s.snap.Segment().Fields()
}

func (s segmentSource) docNum(externalID string) (uint64, bool) {
	bm := s.snap.Segment().DocNumbers([]string{externalID})
	if s.snap.Deleted() != nil {
		bm.AndNot(s.snap.Deleted())
	}
	if bm.IsEmpty() {
		return 0, false
	}
	return uint64(bm.Maximum()), true
}

func (s segmentSource) loadDoc(docNum uint64) (map[string]any, error) {
	return s.snap.Segment().LoadDoc(docNum)
}

type builderSource struct {
	b *segment.Builder
}

func (s builderSource) postings(term, field string) ([]segment.Posting, error) {
	var live []segment.Posting
	for _, p := range s.b.Fields[field][term] {
		if !s.b.IsDeleted(p.DocNum) {
			live = append(live, p)
		}
	}
	return live, nil
}

func (s builderSource) prefixTerms(prefix, field string) ([]string, error) {
	var terms []string
	for term := range s.b.Fields[field] {
		if strings.HasPrefix(term, prefix) {
			terms = append(terms, term)
		}
	}
	sort.Strings(terms)
	return terms, nil
}

func (s builderSource) externalID(docNum uint64) (string, bool) {
	if docNum >= uint64(len(s.b.DocIDs)) {
		return "", false
	}
	return s.b.DocIDs[docNum], true
}

func (s builderSource) fieldLength(field string, docNum uint64) uint64 {
	return s.b.FieldLength(field, docNum)
}

func (s builderSource) fields() []string {
	fields := make([]string, 0, len(s.b.Fields))
	for f := range s.b.Fields {
		if f != segment.IDField {
			fields = append(fields, f)
		}
	}
	return fields
}

func (s builderSource) docNum(externalID string) (uint64, bool) {
	for i := len(s.b.DocIDs) - 1; i >= 0; i-- {
		if s.b.DocIDs[i] == externalID && !s.b.IsDeleted(uint64(i)) {
			return uint64(i), true
		}
	}
	return 0, false
}

func (s builderSource) loadDoc(docNum uint64) (map[string]any, error) {
	return s.b.LoadDoc(docNum)
}

// sources returns the snapshot's sources newest first, so the first hit for
// an external ID is its live version.
func sources(snap *index.IndexSnapshot) []source {
	segs := snap.Segments()
	srcs := make([]source, 0, len(segs)+1)
	if b := snap.Builder(); b != nil {
		srcs = append(srcs, builderSource{b: b})
	}
	for i := len(segs) - 1; i >= 0; i-- {
		srcs = append(srcs, segmentSource{snap: segs[i]})
	}
	return srcs
}
