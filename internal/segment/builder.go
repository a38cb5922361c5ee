package segment

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/RoaringBitmap/roaring"

	"harshagw/tinyseg/internal/analysis"
)

// Builder accumulates documents before flushing to an immutable segment.
type Builder struct {
	Fields       map[string]map[string][]Posting // field -> term -> postings
	FieldLengths map[string][]uint64             // field -> docNum -> token count
	Docs         []map[string]any                // stored documents
	DocIDs       []string                        // external IDs by docNum
	Deleted      *roaring.Bitmap                 // deleted docNums
	numDocs      uint64
	analyzer     analysis.Analyzer
	tokenizer    string
}

// NewBuilder creates a new segment builder. tokenizer is the registry name
// recorded in the segment footer.
func NewBuilder(analyzer analysis.Analyzer, tokenizer string) *Builder {
	return &Builder{
		Fields:       make(map[string]map[string][]Posting),
		FieldLengths: make(map[string][]uint64),
		Docs:         make([]map[string]any, 0),
		DocIDs:       make([]string, 0),
		Deleted:      roaring.New(),
		analyzer:     analyzer,
		tokenizer:    tokenizer,
	}
}

// IDField is the special field name used to store document IDs for lookup.
const IDField = "_id"

// Add analyzes and adds a document to the builder and returns its docNum.
// Nothing is added when any field fails analysis.
func (b *Builder) Add(externalID string, doc map[string]any) (uint64, error) {
	analyzed, err := b.analyze(externalID, doc)
	if err != nil {
		return 0, err
	}
	return b.insert(externalID, doc, analyzed), nil
}

// Replace is Add preceded by deleting any buffered version of the document.
// Buffered versions survive when analysis fails.
func (b *Builder) Replace(externalID string, doc map[string]any) (uint64, error) {
	analyzed, err := b.analyze(externalID, doc)
	if err != nil {
		return 0, err
	}
	for b.Delete(externalID) {
	}
	return b.insert(externalID, doc, analyzed), nil
}

func (b *Builder) analyze(externalID string, doc map[string]any) (map[string][]analysis.Token, error) {
	analyzed := make(map[string][]analysis.Token)
	for fieldName, value := range doc {
		text, ok := value.(string)
		if !ok || fieldName == IDField {
			continue
		}
		tokens, err := b.analyzer.Analyze(text)
		if err != nil {
			return nil, fmt.Errorf("field %q of %s: %w", fieldName, externalID, err)
		}
		analyzed[fieldName] = tokens
	}
	return analyzed, nil
}

func (b *Builder) insert(externalID string, doc map[string]any, analyzed map[string][]analysis.Token) uint64 {
	docNum := b.numDocs
	b.numDocs++

	b.Docs = append(b.Docs, doc)
	b.DocIDs = append(b.DocIDs, externalID)

	// _id terms map to a single docNum and are written 1-hit encoded
	if b.Fields[IDField] == nil {
		b.Fields[IDField] = make(map[string][]Posting)
	}
	b.Fields[IDField][externalID] = []Posting{{DocNum: docNum, Frequency: 1}}

	for fieldName, tokens := range analyzed {
		if b.Fields[fieldName] == nil {
			b.Fields[fieldName] = make(map[string][]Posting)
		}

		for len(b.FieldLengths[fieldName]) <= int(docNum) {
			b.FieldLengths[fieldName] = append(b.FieldLengths[fieldName], 0)
		}
		b.FieldLengths[fieldName][docNum] = uint64(len(tokens))

		termIdx := make(map[string]int)
		var postings []Posting
		var terms []string
		for _, tok := range tokens {
			i, ok := termIdx[tok.Text]
			if !ok {
				i = len(postings)
				termIdx[tok.Text] = i
				postings = append(postings, Posting{DocNum: docNum})
				terms = append(terms, tok.Text)
			}
			p := &postings[i]
			p.Frequency++
			p.Positions = append(p.Positions, uint64(tok.Position))
			p.Offsets = append(p.Offsets, Span{Start: uint64(tok.OffsetFrom), End: uint64(tok.OffsetTo)})
		}

		for i, term := range terms {
			b.Fields[fieldName][term] = append(b.Fields[fieldName][term], postings[i])
		}
	}

	return docNum
}

// Delete marks a document as deleted. Returns true if found.
func (b *Builder) Delete(externalID string) bool {
	for i, id := range b.DocIDs {
		if id == externalID && !b.Deleted.Contains(uint32(i)) {
			b.Deleted.Add(uint32(i))
			return true
		}
	}
	return false
}

// IsDeleted checks if a docNum is deleted.
func (b *Builder) IsDeleted(docNum uint64) bool {
	return b.Deleted.Contains(uint32(docNum))
}

// NumDocs returns the number of non-deleted documents in the builder.
func (b *Builder) NumDocs() uint64 {
	return b.numDocs - b.Deleted.GetCardinality()
}

// TotalDocs returns the total number of documents (including deleted) for persistence.
func (b *Builder) TotalDocs() uint64 {
	return b.numDocs
}

// FieldLength returns the length of a field in a document.
func (b *Builder) FieldLength(field string, docNum uint64) uint64 {
	if lengths, ok := b.FieldLengths[field]; ok && docNum < uint64(len(lengths)) {
		return lengths[docNum]
	}
	return 0
}

// AvgFieldLength returns the average length of a field.
func (b *Builder) AvgFieldLength(field string) float64 {
	total, count := b.fieldStats(field)
	if count == 0 {
		return 0
	}
	return float64(total) / float64(count)
}

// fieldStats sums token counts over live documents with a non-empty field.
func (b *Builder) fieldStats(field string) (total, count uint64) {
	for docNum, l := range b.FieldLengths[field] {
		if l > 0 && !b.IsDeleted(uint64(docNum)) {
			total += l
			count++
		}
	}
	return total, count
}

// LoadDoc returns a buffered document.
func (b *Builder) LoadDoc(docNum uint64) (map[string]any, error) {
	if docNum >= uint64(len(b.Docs)) {
		return nil, fmt.Errorf("docNum %d out of range", docNum)
	}
	return b.Docs[docNum], nil
}

// Build writes the segment to disk and returns the segment path.
func (b *Builder) Build(dir, segmentID string) (string, error) {
	segPath := filepath.Join(dir, segmentID+".seg")
	tmpPath := segPath + ".tmp"

	file, err := os.Create(tmpPath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := b.write(file); err != nil {
		os.Remove(tmpPath)
		return "", err
	}
	if err := file.Sync(); err != nil {
		os.Remove(tmpPath)
		return "", err
	}
	file.Close()

	if err := os.Rename(tmpPath, segPath); err != nil {
		return "", err
	}

	return segPath, nil
}

func (b *Builder) write(file *os.File) error {
	// Header
	if _, err := file.WriteString(SegmentMagic); err != nil {
		return err
	}
	if err := binary.Write(file, binary.BigEndian, SegmentVersion); err != nil {
		return err
	}
	if err := binary.Write(file, binary.BigEndian, b.TotalDocs()); err != nil {
		return err
	}

	// Reserve space for offsets
	offsetsPos, err := file.Seek(0, 1)
	if err != nil {
		return err
	}
	if _, err := file.Write(make([]byte, 16)); err != nil {
		return err
	}

	storedFieldsOffset, _ := file.Seek(0, 1)
	chunkOffsets, err := b.writeStoredFields(file)
	if err != nil {
		return err
	}

	fieldsIndexOffset, _ := file.Seek(0, 1)
	fieldsMeta, err := b.writeFieldsIndex(file)
	if err != nil {
		return err
	}

	// Field stats for BM25, excluding deleted docs
	for i := range fieldsMeta {
		fieldsMeta[i].TotalTokens, fieldsMeta[i].DocCount = b.fieldStats(fieldsMeta[i].Name)
	}

	footerOffset, _ := file.Seek(0, 1)
	footer := Footer{
		StoredFieldsOffset: uint64(storedFieldsOffset),
		FieldsIndexOffset:  uint64(fieldsIndexOffset),
		ChunkOffsets:       chunkOffsets,
		FieldsMeta:         fieldsMeta,
		DocIDs:             b.DocIDs,
		NumDocs:            b.TotalDocs(),
		FieldLengths:       b.FieldLengths,
		Tokenizer:          b.tokenizer,
	}
	footerData, err := json.Marshal(footer)
	if err != nil {
		return err
	}
	if _, err := file.Write(footerData); err != nil {
		return err
	}
	if err := binary.Write(file, binary.BigEndian, uint64(footerOffset)); err != nil {
		return err
	}
	if err := binary.Write(file, binary.BigEndian, uint64(len(footerData))); err != nil {
		return err
	}

	// Go back and write the actual offsets
	if _, err := file.Seek(offsetsPos, 0); err != nil {
		return err
	}
	if err := binary.Write(file, binary.BigEndian, uint64(storedFieldsOffset)); err != nil {
		return err
	}
	return binary.Write(file, binary.BigEndian, uint64(fieldsIndexOffset))
}
