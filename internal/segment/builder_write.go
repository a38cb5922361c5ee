package segment

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"os"
	"sort"

	"github.com/couchbase/vellum"
	"github.com/golang/snappy"
)

// writeStoredFields writes chunked, compressed stored documents.
func (b *Builder) writeStoredFields(file *os.File) ([]uint64, error) {
	var chunkOffsets []uint64

	for i := 0; i < len(b.Docs); i += ChunkSize {
		end := min(i+ChunkSize, len(b.Docs))

		chunkData, err := json.Marshal(b.Docs[i:end])
		if err != nil {
			return nil, err
		}
		compressed := snappy.Encode(nil, chunkData)

		offset, err := file.Seek(0, 1)
		if err != nil {
			return nil, err
		}
		chunkOffsets = append(chunkOffsets, uint64(offset))

		if err := binary.Write(file, binary.BigEndian, uint32(len(compressed))); err != nil {
			return nil, err
		}
		if _, err := file.Write(compressed); err != nil {
			return nil, err
		}
	}

	return chunkOffsets, nil
}

// writeFieldsIndex writes the FST dictionary and postings for each field.
func (b *Builder) writeFieldsIndex(file *os.File) ([]FieldMeta, error) {
	fieldNames := make([]string, 0, len(b.Fields))
	for name := range b.Fields {
		fieldNames = append(fieldNames, name)
	}
	sort.Strings(fieldNames)

	fieldsMeta := make([]FieldMeta, 0, len(fieldNames))
	for _, fieldName := range fieldNames {
		meta, err := b.writeFieldIndex(file, fieldName, b.Fields[fieldName])
		if err != nil {
			return nil, err
		}
		fieldsMeta = append(fieldsMeta, meta)
	}

	return fieldsMeta, nil
}

// writeFieldIndex writes postings and then the FST for a single field. Terms
// of the _id field are stored 1-hit encoded in the FST with no posting list.
func (b *Builder) writeFieldIndex(file *os.File, fieldName string, terms map[string][]Posting) (FieldMeta, error) {
	meta := FieldMeta{Name: fieldName}

	termList := make([]string, 0, len(terms))
	for term := range terms {
		termList = append(termList, term)
	}
	sort.Strings(termList)

	postingsStart, _ := file.Seek(0, 1)
	meta.PostingsOffset = uint64(postingsStart)

	termValues := make(map[string]uint64, len(termList))
	for _, term := range termList {
		postings := terms[term]

		if fieldName == IDField && len(postings) == 1 {
			termValues[term] = EncodeOneHit(postings[0].DocNum)
			continue
		}

		sort.Slice(postings, func(i, j int) bool {
			return postings[i].DocNum < postings[j].DocNum
		})

		offset, _ := file.Seek(0, 1)
		termValues[term] = uint64(offset) - meta.PostingsOffset
		if _, err := file.Write(EncodePostings(postings)); err != nil {
			return meta, err
		}
	}

	postingsEnd, _ := file.Seek(0, 1)
	meta.PostingsSize = uint64(postingsEnd) - meta.PostingsOffset

	dictStart, _ := file.Seek(0, 1)
	meta.DictOffset = uint64(dictStart)

	var fstBuf bytes.Buffer
	fstBuilder, err := vellum.New(&fstBuf, nil)
	if err != nil {
		return meta, err
	}
	for _, term := range termList {
		if err := fstBuilder.Insert([]byte(term), termValues[term]); err != nil {
			return meta, err
		}
	}
	if err := fstBuilder.Close(); err != nil {
		return meta, err
	}

	if err := binary.Write(file, binary.BigEndian, uint64(fstBuf.Len())); err != nil {
		return meta, err
	}
	if _, err := file.Write(fstBuf.Bytes()); err != nil {
		return meta, err
	}

	dictEnd, _ := file.Seek(0, 1)
	meta.DictSize = uint64(dictEnd) - meta.DictOffset

	return meta, nil
}
