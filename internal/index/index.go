// Package index owns the fixed-record index file: the free-list head, the
// array of hash bucket heads, and the pool of fixed-size index records
// reachable by byte offset. It knows nothing about keys hashing to
// buckets or about bucket-chain semantics beyond "a chain is a singly
// linked list of records threaded through next_ptr" — that knowledge
// belongs to internal/engine, which is the only package that computes a
// bucket index from a key.
//
// Offset 0 of the index file is the free-list head. ReadNextPtr and
// WriteNextPtr treat p == 0 as that cell, which is how AllocateSlot and
// FreeSlot pop and push the free-list. Bucket heads are separate cells,
// read and written through ReadBucketHead and WriteBucketHead.
package index

import (
	"github.com/tanebrook/minidb/internal/fio"
	"github.com/tanebrook/minidb/pkg/errors"
)

// freeListHeadOffset is the fixed offset of the free-list head pointer.
const freeListHeadOffset int64 = 0

// Record is one fixed-size slot read from the index file.
type Record struct {
	NextPtr   uint32 // offset of the next record in this slot's chain, or 0
	Key       []byte // key bytes, NUL-stripped (zero length for a free slot)
	ValuePtr  uint32 // offset of the value span in the data file
	ValueSize uint32 // length of the value span, in bytes
}

// Index manages reads and writes against a single index file.
type Index struct {
	fl          *fio.File
	keySizeMax  uint16
	buckets     uint32 // effective bucket count, always >= 1
	recordSize  int64  // R = keySizeMax + 12
	headerBytes int64  // 4 * (buckets + 1)
}

// New wraps fl as an index file manager. hashBuckets of 0 is treated as a
// single implicit bucket, per spec.md §9's open question on the
// hash_buckets=0 "chain-only" testing mode.
func New(fl *fio.File, keySizeMax uint16, hashBuckets uint32) *Index {
	buckets := hashBuckets
	if buckets == 0 {
		buckets = 1
	}

	return &Index{
		fl:          fl,
		keySizeMax:  keySizeMax,
		buckets:     buckets,
		recordSize:  int64(keySizeMax) + 12,
		headerBytes: 4 * (int64(buckets) + 1),
	}
}

// RecordSize returns R, the fixed size of one index record in bytes.
func (idx *Index) RecordSize() int64 {
	return idx.recordSize
}

// Init zero-fills the free-list head and all bucket heads. Called once by
// Create against a freshly truncated index file.
func (idx *Index) Init() error {
	zeros := make([]byte, idx.headerBytes)
	if err := idx.fl.WriteAt(0, zeros); err != nil {
		return err
	}
	return idx.fl.Flush()
}

// Size returns the current length of the index file, in bytes.
func (idx *Index) Size() (int64, error) {
	return idx.fl.Size()
}

// bucketHeadOffset returns the byte offset of bucket b's head pointer.
func bucketHeadOffset(b uint32) int64 {
	return 4 * (int64(b) + 1)
}

// ReadBucketHead reads the head pointer of bucket b.
func (idx *Index) ReadBucketHead(b uint32) (uint32, error) {
	return idx.fl.ReadUint32At(bucketHeadOffset(b))
}

// WriteBucketHead sets the head pointer of bucket b and flushes.
func (idx *Index) WriteBucketHead(b uint32, p uint32) error {
	if err := idx.fl.WriteUint32At(bucketHeadOffset(b), p); err != nil {
		return err
	}
	return idx.fl.Flush()
}

// ReadNextPtr reads the next_ptr field at slot p. p == 0 is the
// distinguished free-list-head cell at offset 0 of the file.
func (idx *Index) ReadNextPtr(p uint32) (uint32, error) {
	return idx.fl.ReadUint32At(int64(p))
}

// WriteNextPtr writes the next_ptr field at slot p and flushes. p == 0
// targets the free-list head.
func (idx *Index) WriteNextPtr(p uint32, q uint32) error {
	if err := idx.fl.WriteUint32At(int64(p), q); err != nil {
		return err
	}
	return idx.fl.Flush()
}

// ReadRecord reads the full record at offset p.
func (idx *Index) ReadRecord(p uint32) (Record, error) {
	nextPtr, err := idx.fl.ReadUint32At(int64(p))
	if err != nil {
		return Record{}, err
	}

	keyBuf := make([]byte, idx.keySizeMax)
	if err := idx.fl.ReadAt(int64(p)+4, keyBuf); err != nil {
		return Record{}, err
	}

	valuePtr, err := idx.fl.ReadUint32At(int64(p) + 4 + int64(idx.keySizeMax))
	if err != nil {
		return Record{}, err
	}

	valueSize, err := idx.fl.ReadUint32At(int64(p) + 8 + int64(idx.keySizeMax))
	if err != nil {
		return Record{}, err
	}

	return Record{
		NextPtr:   nextPtr,
		Key:       trimNUL(keyBuf),
		ValuePtr:  valuePtr,
		ValueSize: valueSize,
	}, nil
}

// WriteRecord writes key/value_ptr/value_size at slot p, preserving the
// existing next_ptr. Per spec.md §4.2, only strlen(key) bytes of the key
// field are written; a freshly allocated slot's key field is already
// zero, so shorter-than-max keys leave correct zero padding behind.
func (idx *Index) WriteRecord(p uint32, key []byte, valuePtr, valueSize uint32) error {
	if len(key) > int(idx.keySizeMax) {
		return errors.NewValidationError(
			nil, errors.ErrorCodeKeySize, "key exceeds configured maximum",
		).WithField("key").WithRule("max_length").
			WithProvided(len(key)).WithExpected(idx.keySizeMax)
	}

	if err := idx.fl.WriteAt(int64(p)+4, key); err != nil {
		return err
	}

	if err := idx.fl.WriteUint32At(int64(p)+4+int64(idx.keySizeMax), valuePtr); err != nil {
		return err
	}

	if err := idx.fl.WriteUint32At(int64(p)+8+int64(idx.keySizeMax), valueSize); err != nil {
		return err
	}

	return idx.fl.Flush()
}

// AllocateSlot pops the free-list head if non-zero, or extends the file
// by one record's worth of zero bytes otherwise. The returned slot's key
// field is guaranteed to be all zero.
func (idx *Index) AllocateSlot() (uint32, error) {
	head, err := idx.ReadNextPtr(freeListHeadOffset)
	if err != nil {
		return 0, err
	}

	if head != 0 {
		nextFree, err := idx.ReadNextPtr(head)
		if err != nil {
			return 0, err
		}
		if err := idx.WriteNextPtr(freeListHeadOffset, nextFree); err != nil {
			return 0, err
		}
		if err := idx.WriteNextPtr(head, 0); err != nil {
			return 0, err
		}
		return head, nil
	}

	size, err := idx.fl.Size()
	if err != nil {
		return 0, err
	}

	zeros := make([]byte, idx.recordSize)
	if err := idx.fl.WriteAt(size, zeros); err != nil {
		return 0, err
	}
	if err := idx.fl.Flush(); err != nil {
		return 0, err
	}

	return uint32(size), nil
}

// FreeSlot pushes slot p onto the free-list head and zeroes its key
// field. value_ptr and value_size are left untouched; the next
// allocation-and-write overwrites them.
func (idx *Index) FreeSlot(p uint32) error {
	head, err := idx.ReadNextPtr(freeListHeadOffset)
	if err != nil {
		return err
	}

	if err := idx.WriteNextPtr(p, head); err != nil {
		return err
	}

	if err := idx.fl.WriteAt(int64(p)+4, make([]byte, idx.keySizeMax)); err != nil {
		return err
	}
	if err := idx.fl.Flush(); err != nil {
		return err
	}

	return idx.WriteNextPtr(freeListHeadOffset, p)
}

func trimNUL(b []byte) []byte {
	for i, c := range b {
		if c == 0 {
			return b[:i]
		}
	}
	return b
}
