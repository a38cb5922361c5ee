package segment

import (
	"encoding/binary"
	"fmt"

	"github.com/RoaringBitmap/roaring"
	"github.com/couchbase/vellum"
)

// getFST returns the FST for a field, loading it lazily.
func (s *Segment) getFST(fieldName string) (*vellum.FST, error) {
	s.fstsMu.RLock()
	fst, ok := s.fsts[fieldName]
	s.fstsMu.RUnlock()
	if ok {
		return fst, nil
	}

	s.fstsMu.Lock()
	defer s.fstsMu.Unlock()

	if fst, ok := s.fsts[fieldName]; ok {
		return fst, nil
	}
	if s.fsts == nil {
		return nil, fmt.Errorf("segment %s is closed", s.id)
	}

	meta := s.fieldMetaByName[fieldName]
	if meta == nil {
		return nil, fmt.Errorf("field not found: %s", fieldName)
	}

	// FST data starts after the 8-byte size prefix
	fstSize := binary.BigEndian.Uint64(s.data[meta.DictOffset:])
	fstData := s.data[meta.DictOffset+8 : meta.DictOffset+8+fstSize]

	fst, err := vellum.Load(fstData)
	if err != nil {
		return nil, fmt.Errorf("failed to load FST for field %s: %w", fieldName, err)
	}

	s.fsts[fieldName] = fst
	return fst, nil
}

// Search returns the postings of term in a field, skipping deleted documents.
// A missing field or term yields no postings and no error.
func (s *Segment) Search(term, fieldName string, deleted *roaring.Bitmap) ([]Posting, error) {
	if s.fieldMetaByName[fieldName] == nil {
		return nil, nil
	}
	fst, err := s.getFST(fieldName)
	if err != nil {
		return nil, err
	}

	val, exists, err := fst.Get([]byte(term))
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	if IsOneHit(val) {
		docNum := DecodeOneHit(val)
		if deleted != nil && deleted.Contains(uint32(docNum)) {
			return nil, nil
		}
		return []Posting{{DocNum: docNum, Frequency: 1}}, nil
	}

	meta := s.fieldMetaByName[fieldName]
	postings, err := DecodePostings(s.data[meta.PostingsOffset+val : meta.PostingsOffset+meta.PostingsSize])
	if err != nil {
		return nil, fmt.Errorf("failed to decode postings for %s:%s: %w", fieldName, term, err)
	}

	if deleted == nil || deleted.IsEmpty() {
		return postings, nil
	}
	filtered := postings[:0]
	for _, p := range postings {
		if !deleted.Contains(uint32(p.DocNum)) {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// PrefixTerms returns all terms in a field that start with the given prefix,
// in byte order.
func (s *Segment) PrefixTerms(prefix, fieldName string) ([]string, error) {
	if s.fieldMetaByName[fieldName] == nil {
		return nil, nil
	}
	fst, err := s.getFST(fieldName)
	if err != nil {
		return nil, err
	}

	start := []byte(prefix)
	end := prefixSuccessor(start)

	iter, err := fst.Iterator(start, end)
	var terms []string
	for err == nil {
		key, _ := iter.Current()
		terms = append(terms, string(key))
		err = iter.Next()
	}
	if err != vellum.ErrIteratorDone {
		return nil, fmt.Errorf("failed to iterate terms: %w", err)
	}

	return terms, nil
}
