package store

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/RoaringBitmap/roaring"
	"github.com/boltdb/bolt"
)

var (
	bucketSegments  = []byte("segments")
	bucketDeletions = []byte("deletions")
	bucketDocIDs    = []byte("docids")
	bucketMeta      = []byte("meta")
	keySegmentList  = []byte("list")
	keyEpoch        = []byte("epoch")
	keyTokenizer    = []byte("tokenizer")
)

// DocMapping stores segment ID and docNum for an external ID.
type DocMapping struct {
	SegmentID string `json:"s"`
	DocNum    uint64 `json:"d"`
}

// Metadata persists index metadata in BoltDB: the live segment list,
// per-segment deletion bitmaps, external ID mappings, the epoch counter and
// the tokenizer the index was created with.
type Metadata struct {
	db *bolt.DB
}

// NewMetadata opens or creates a metadata store.
func NewMetadata(dir string) (*Metadata, error) {
	dbPath := filepath.Join(dir, "meta.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketSegments, bucketDeletions, bucketDocIDs, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Metadata{db: db}, nil
}

// BindTokenizer records name as the index tokenizer on first use and fails
// if the index was built with a different one.
func (m *Metadata) BindTokenizer(name string) error {
	return m.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMeta)
		existing := b.Get(keyTokenizer)
		if existing == nil {
			return b.Put(keyTokenizer, []byte(name))
		}
		if string(existing) != name {
			return fmt.Errorf("index was built with tokenizer %q, not %q", existing, name)
		}
		return nil
	})
}

// GetTokenizer returns the recorded tokenizer name, or "" if none.
func (m *Metadata) GetTokenizer() (string, error) {
	var name string
	err := m.db.View(func(tx *bolt.Tx) error {
		name = string(tx.Bucket(bucketMeta).Get(keyTokenizer))
		return nil
	})
	return name, err
}

// GetSegments returns the list of segment IDs.
func (m *Metadata) GetSegments() ([]string, error) {
	var segments []string
	err := m.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketSegments).Get(keySegmentList)
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &segments)
	})
	return segments, err
}

// GetDeletions returns the deletion bitmap for a segment.
func (m *Metadata) GetDeletions(segmentID string) (*roaring.Bitmap, error) {
	var bm *roaring.Bitmap
	err := m.db.View(func(tx *bolt.Tx) error {
		var err error
		bm, err = readDeletions(tx, segmentID)
		return err
	})
	return bm, err
}

// GetDocMapping returns the segment ID and docNum for an external ID.
func (m *Metadata) GetDocMapping(externalID string) (segmentID string, docNum uint64, found bool, err error) {
	var mapping DocMapping
	err = m.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketDocIDs).Get([]byte(externalID))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &mapping)
	})
	return mapping.SegmentID, mapping.DocNum, found, err
}

// GetEpoch returns the current epoch.
func (m *Metadata) GetEpoch() (uint64, error) {
	var epoch uint64
	err := m.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketMeta).Get(keyEpoch)
		if data != nil {
			epoch = binary.BigEndian.Uint64(data)
		}
		return nil
	})
	return epoch, err
}

func (m *Metadata) Close() error {
	return m.db.Close()
}

// Update runs fn within a write transaction.
func (m *Metadata) Update(fn func(*Tx) error) error {
	return m.db.Update(func(tx *bolt.Tx) error {
		return fn(&Tx{tx: tx})
	})
}

// Tx provides write operations within a transaction.
type Tx struct {
	tx *bolt.Tx
}

// SetSegments sets the list of segment IDs.
func (t *Tx) SetSegments(segmentIDs []string) error {
	data, err := json.Marshal(segmentIDs)
	if err != nil {
		return err
	}
	return t.tx.Bucket(bucketSegments).Put(keySegmentList, data)
}

// SetDeletions sets the deletion bitmap for a segment.
func (t *Tx) SetDeletions(segmentID string, bm *roaring.Bitmap) error {
	var buf bytes.Buffer
	if _, err := bm.WriteTo(&buf); err != nil {
		return err
	}
	return t.tx.Bucket(bucketDeletions).Put([]byte(segmentID), buf.Bytes())
}

// GetDeletions returns the deletion bitmap for a segment.
func (t *Tx) GetDeletions(segmentID string) (*roaring.Bitmap, error) {
	return readDeletions(t.tx, segmentID)
}

// DeleteDeletions removes the deletion bitmap for a segment.
func (t *Tx) DeleteDeletions(segmentID string) error {
	return t.tx.Bucket(bucketDeletions).Delete([]byte(segmentID))
}

// SetDocMapping sets the mapping from external ID to segment/docNum.
func (t *Tx) SetDocMapping(externalID, segmentID string, docNum uint64) error {
	data, err := json.Marshal(DocMapping{SegmentID: segmentID, DocNum: docNum})
	if err != nil {
		return err
	}
	return t.tx.Bucket(bucketDocIDs).Put([]byte(externalID), data)
}

// DeleteDocMapping removes the mapping for an external ID.
func (t *Tx) DeleteDocMapping(externalID string) error {
	return t.tx.Bucket(bucketDocIDs).Delete([]byte(externalID))
}

// IncrementEpoch increments and returns the epoch.
func (t *Tx) IncrementEpoch() (uint64, error) {
	b := t.tx.Bucket(bucketMeta)
	var epoch uint64
	if data := b.Get(keyEpoch); data != nil {
		epoch = binary.BigEndian.Uint64(data)
	}
	epoch++
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, epoch)
	return epoch, b.Put(keyEpoch, buf)
}

func readDeletions(tx *bolt.Tx, segmentID string) (*roaring.Bitmap, error) {
	bm := roaring.New()
	data := tx.Bucket(bucketDeletions).Get([]byte(segmentID))
	if data == nil {
		return bm, nil
	}
	_, err := bm.ReadFrom(bytes.NewReader(data))
	return bm, err
}
