package segment

import (
	"encoding/binary"
)

// Segment file format constants
const (
	SegmentMagic   = "TSG\x00"
	SegmentVersion = uint32(2)
	ChunkSize      = 1024 // Documents per chunk for stored fields
)

// OneHitFlag - high bit set means value encodes a single docNum inline.
const OneHitFlag = uint64(1 << 63)

// IsOneHit checks if a value uses 1-hit encoding.
func IsOneHit(val uint64) bool {
	return (val & OneHitFlag) != 0
}

// EncodeOneHit encodes a single docNum inline.
func EncodeOneHit(docNum uint64) uint64 {
	return OneHitFlag | docNum
}

// DecodeOneHit extracts the docNum from a 1-hit encoded value.
func DecodeOneHit(val uint64) uint64 {
	return val &^ OneHitFlag
}

// Span is a half-open byte range in a field's source text.
type Span struct {
	Start uint64
	End   uint64
}

// Posting lists one document's occurrences of a term. Positions and Offsets
// are parallel: Offsets[i] is the byte span of the token at Positions[i].
type Posting struct {
	DocNum    uint64
	Frequency uint64
	Positions []uint64
	Offsets   []Span
}

type Footer struct {
	StoredFieldsOffset uint64              `json:"stored_offset"`
	FieldsIndexOffset  uint64              `json:"fields_offset"`
	ChunkOffsets       []uint64            `json:"chunks"`
	FieldsMeta         []FieldMeta         `json:"fields"`
	DocIDs             []string            `json:"doc_ids"`
	NumDocs            uint64              `json:"num_docs"`
	FieldLengths       map[string][]uint64 `json:"field_lengths,omitempty"`
	Tokenizer          string              `json:"tokenizer,omitempty"`
}

type FieldMeta struct {
	Name           string `json:"name"`
	DictOffset     uint64 `json:"dict_offset"`
	DictSize       uint64 `json:"dict_size"`
	PostingsOffset uint64 `json:"postings_offset"`
	PostingsSize   uint64 `json:"postings_size"`
	TotalTokens    uint64 `json:"total_tokens,omitempty"`
	DocCount       uint64 `json:"doc_count,omitempty"`
}

// EncodePostings encodes a posting list with delta encoding.
//
// Layout: count, docNum deltas, frequencies, then per posting the position
// deltas followed by (gap from previous span end, span length) pairs.
func EncodePostings(postings []Posting) []byte {
	buf := make([]byte, 0, len(postings)*32)
	buf = binary.AppendUvarint(buf, uint64(len(postings)))

	var prevDocNum uint64
	for _, p := range postings {
		buf = binary.AppendUvarint(buf, p.DocNum-prevDocNum)
		prevDocNum = p.DocNum
	}

	for _, p := range postings {
		buf = binary.AppendUvarint(buf, p.Frequency)
	}

	for _, p := range postings {
		buf = binary.AppendUvarint(buf, uint64(len(p.Positions)))
		var prevPos uint64
		for _, pos := range p.Positions {
			buf = binary.AppendUvarint(buf, pos-prevPos)
			prevPos = pos
		}

		buf = binary.AppendUvarint(buf, uint64(len(p.Offsets)))
		var prevEnd uint64
		for _, sp := range p.Offsets {
			buf = binary.AppendUvarint(buf, sp.Start-prevEnd)
			buf = binary.AppendUvarint(buf, sp.End-sp.Start)
			prevEnd = sp.End
		}
	}

	return buf
}

// DecodePostings decodes a posting list.
func DecodePostings(data []byte) ([]Posting, error) {
	r := newByteReader(data)

	count, err := r.ReadUvarint()
	if err != nil {
		return nil, err
	}

	postings := make([]Posting, count)

	var prevDocNum uint64
	for i := uint64(0); i < count; i++ {
		delta, err := r.ReadUvarint()
		if err != nil {
			return nil, err
		}
		postings[i].DocNum = prevDocNum + delta
		prevDocNum = postings[i].DocNum
	}

	for i := uint64(0); i < count; i++ {
		freq, err := r.ReadUvarint()
		if err != nil {
			return nil, err
		}
		postings[i].Frequency = freq
	}

	for i := uint64(0); i < count; i++ {
		posCount, err := r.ReadUvarint()
		if err != nil {
			return nil, err
		}
		postings[i].Positions = make([]uint64, posCount)

		var prevPos uint64
		for j := uint64(0); j < posCount; j++ {
			delta, err := r.ReadUvarint()
			if err != nil {
				return nil, err
			}
			postings[i].Positions[j] = prevPos + delta
			prevPos = postings[i].Positions[j]
		}

		spanCount, err := r.ReadUvarint()
		if err != nil {
			return nil, err
		}
		postings[i].Offsets = make([]Span, spanCount)

		var prevEnd uint64
		for j := uint64(0); j < spanCount; j++ {
			gap, err := r.ReadUvarint()
			if err != nil {
				return nil, err
			}
			length, err := r.ReadUvarint()
			if err != nil {
				return nil, err
			}
			start := prevEnd + gap
			postings[i].Offsets[j] = Span{Start: start, End: start + length}
			prevEnd = start + length
		}
	}

	return postings, nil
}
