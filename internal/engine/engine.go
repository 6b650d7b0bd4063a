// Package engine is the store facade: it composes internal/superblock,
// internal/index, and internal/heap into the key-value operations
// create/open/read/write/delete/close. It is the only package in minidb
// that knows about keys, hashing, and chained buckets — the packages it
// composes only know about offsets and fixed-width fields.
package engine

import (
	"bytes"
	stdErrors "errors"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/tanebrook/minidb/internal/fio"
	"github.com/tanebrook/minidb/internal/heap"
	"github.com/tanebrook/minidb/internal/index"
	"github.com/tanebrook/minidb/internal/superblock"
	"github.com/tanebrook/minidb/pkg/errors"
	"github.com/tanebrook/minidb/pkg/filesys"
	"github.com/tanebrook/minidb/pkg/options"
)

// ErrEngineClosed is returned by Close when the engine has already been
// closed. Read, Write and Delete do not check for a closed engine; on one
// they fail with the I/O error of the closed file handle.
var ErrEngineClosed = stdErrors.New("operation failed: cannot access closed engine")

// ErrNoKey is returned by Read and Delete when the target chain ends
// without a matching key, mirroring spec.md §7's no-key error kind.
var ErrNoKey = stdErrors.New("key not found")

const suffixSuper = ".db.super"
const suffixIndex = ".db.index"
const suffixData = ".db.data"

// Engine holds the in-memory configuration and the open index and data
// file handles backing a single minidb database. The superblock is read
// once at Open and is not kept open.
type Engine struct {
	path    string
	options options.Options
	log     *zap.SugaredLogger

	idx  *index.Index
	hp   *heap.Heap
	idxF *os.File
	dbF  *os.File

	closed bool
}

// Config holds the parameters needed to Create or Open an Engine.
type Config struct {
	Options options.Options
	Logger  *zap.SugaredLogger
}

// Create writes a fresh superblock, zero-initializes the index file's
// head words, and creates an empty data file at path's three sibling
// files. path is a logical path with no extension; the three files are
// path+".db.super", path+".db.index", path+".db.data".
func Create(path string, config *Config) (*Engine, error) {
	if config == nil || config.Logger == nil {
		return nil, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "engine configuration is required",
		).WithField("config").WithRule("required")
	}

	if err := superblock.Validate(config.Options); err != nil {
		return nil, err
	}

	log := config.Logger
	log.Infow("creating database", "path", path, "dbName", config.Options.DBName)

	superPath := path + suffixSuper
	if err := superblock.Write(superPath, config.Options); err != nil {
		return nil, err
	}

	indexPath := path + suffixIndex
	idxF, err := os.OpenFile(indexPath, os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0644)
	if err != nil {
		return nil, errors.ClassifyFileOpenError(err, indexPath, filepath.Base(indexPath))
	}

	idx := index.New(fio.Open(idxF, indexPath, filepath.Base(indexPath)), config.Options.KeySizeMax, config.Options.HashBuckets)
	if err := idx.Init(); err != nil {
		_ = idxF.Close()
		return nil, err
	}

	dataPath := path + suffixData
	dbF, err := os.OpenFile(dataPath, os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0644)
	if err != nil {
		_ = idxF.Close()
		return nil, errors.ClassifyFileOpenError(err, dataPath, filepath.Base(dataPath))
	}

	log.Infow("database created successfully", "path", path)

	return &Engine{
		path:    path,
		options: config.Options,
		log:     log,
		idx:     idx,
		hp:      heap.New(fio.Open(dbF, dataPath, filepath.Base(dataPath))),
		idxF:    idxF,
		dbF:     dbF,
	}, nil
}

// Open parses the superblock and opens the index and data files
// read-write. All three files must already exist.
func Open(path string, log *zap.SugaredLogger) (*Engine, error) {
	superPath := path + suffixSuper
	indexPath := path + suffixIndex
	dataPath := path + suffixData

	for _, p := range []string{superPath, indexPath, dataPath} {
		exists, err := filesys.Exists(p)
		if err != nil {
			return nil, errors.ClassifyFileOpenError(err, p, filepath.Base(p))
		}
		if !exists {
			return nil, errors.NewStorageError(
				os.ErrNotExist, errors.ErrorCodeOpenFile, "required database file is missing",
			).WithPath(p).WithFileName(filepath.Base(p))
		}
	}

	raw, err := filesys.ReadFile(superPath)
	if err != nil {
		return nil, errors.ClassifyFileOpenError(err, superPath, filepath.Base(superPath))
	}

	opts, err := superblock.Decode(raw)
	if err != nil {
		return nil, err
	}

	log.Infow("opening database", "path", path, "dbName", opts.DBName)

	idxF, err := os.OpenFile(indexPath, os.O_RDWR, 0644)
	if err != nil {
		return nil, errors.ClassifyFileOpenError(err, indexPath, filepath.Base(indexPath))
	}

	dbF, err := os.OpenFile(dataPath, os.O_RDWR, 0644)
	if err != nil {
		_ = idxF.Close()
		return nil, errors.ClassifyFileOpenError(err, dataPath, filepath.Base(dataPath))
	}

	idx := index.New(fio.Open(idxF, indexPath, filepath.Base(indexPath)), opts.KeySizeMax, opts.HashBuckets)

	log.Infow("database opened successfully", "path", path)

	return &Engine{
		path:    path,
		options: opts,
		log:     log,
		idx:     idx,
		hp:      heap.New(fio.Open(dbF, dataPath, filepath.Base(dataPath))),
		idxF:    idxF,
		dbF:     dbF,
	}, nil
}

// GetOptions returns the configuration this engine was created or opened with.
func (e *Engine) GetOptions() options.Options {
	return e.options
}

// IndexSize returns the current size of the index file, in bytes.
func (e *Engine) IndexSize() (int64, error) {
	return e.idx.Size()
}

// DataSize returns the current size of the data file, in bytes.
func (e *Engine) DataSize() (int64, error) {
	return e.hp.Size()
}

// Close flushes (already true of every prior mutating write) and closes
// the index and data file handles.
func (e *Engine) Close() error {
	if e.closed {
		return ErrEngineClosed
	}
	e.closed = true

	e.log.Infow("closing database", "path", e.path)

	idxErr := e.idxF.Close()
	dbErr := e.dbF.Close()
	if idxErr != nil {
		return idxErr
	}
	return dbErr
}

// bucket computes the hash bucket a key maps to: h(k) = (sum k[i]*i) mod
// 2^32, reduced mod hash_buckets. Preserved byte-exact per spec.md §4.4 so
// reopening a database finds existing chains. hash_buckets == 0 is
// treated as a single implicit bucket (spec.md §9).
func (e *Engine) bucket(key []byte) uint32 {
	buckets := e.options.HashBuckets
	if buckets == 0 {
		buckets = 1
	}

	var sum uint32
	for i, c := range key {
		sum += uint32(c) * uint32(i)
	}

	return sum % buckets
}

// chainEntry identifies a live record found while walking a bucket chain,
// plus the predecessor-pointer cell that points at it — either a bucket
// head cell or another record's next_ptr field.
type chainEntry struct {
	offset      uint32
	record      index.Record
	predecessor uint32 // cell offset whose value, when updated, retargets this entry
}

// walkChain walks bucket b's chain looking for key. It always returns the
// predecessor cell that would need updating to retarget (or extend) the
// chain, even when no match is found — write's insert path needs this.
func (e *Engine) walkChain(b uint32, key []byte) (*chainEntry, uint32, error) {
	predecessor, err := e.idx.ReadBucketHead(b)
	if err != nil {
		return nil, 0, err
	}

	predecessorCell := bucketHeadCell(b)
	cur := predecessor

	for cur != 0 {
		rec, err := e.idx.ReadRecord(cur)
		if err != nil {
			return nil, 0, err
		}

		if bytes.Equal(rec.Key, key) {
			return &chainEntry{offset: cur, record: rec, predecessor: predecessorCell}, predecessorCell, nil
		}

		predecessorCell = cur
		cur = rec.NextPtr
	}

	return nil, predecessorCell, nil
}

// bucketHeadCell returns the pseudo-offset walkChain/WriteNextPtr-style
// callers use to mean "bucket b's head pointer". internal/index exposes
// ReadBucketHead/WriteBucketHead directly rather than a next_ptr-style
// cell address, so engine translates between the two here.
func bucketHeadCell(b uint32) uint32 {
	return bucketSentinel | b
}

// bucketSentinel tags a predecessor cell as "a bucket head", distinguishing
// it from a genuine index-record offset (which is always below this bit
// given realistic file sizes). Index records are addressed starting at
// the index file's header size, which is always well below 1<<31.
const bucketSentinel = uint32(1) << 31

func (e *Engine) writeNextOf(cell uint32, target uint32) error {
	if cell&bucketSentinel != 0 {
		return e.idx.WriteBucketHead(cell&^bucketSentinel, target)
	}
	return e.idx.WriteNextPtr(cell, target)
}

// Read looks up key and returns its stored value, or ErrNoKey if the
// chain ends unmatched.
func (e *Engine) Read(key []byte) ([]byte, error) {
	b := e.bucket(key)

	entry, _, err := e.walkChain(b, key)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, e.noKeyError(key, b)
	}

	span, err := e.hp.ReadSpan(entry.record.ValuePtr, entry.record.ValueSize)
	if err != nil {
		return nil, err
	}

	return span[:entry.record.ValueSize], nil
}

// Write validates key/value sizes, then inserts a new record or updates
// an existing one in place, following the ordering spec.md §4.4 fixes.
func (e *Engine) Write(key, value []byte) error {
	if len(key) == 0 || len(key) > int(e.options.KeySizeMax) {
		return errors.NewValidationError(
			nil, errors.ErrorCodeKeySize, "key length outside configured bounds",
		).WithField("key").WithRule("max_length").
			WithProvided(len(key)).WithExpected(e.options.KeySizeMax)
	}
	if len(value) > int(e.options.DataSizeMax) {
		return errors.NewValidationError(
			nil, errors.ErrorCodeValueSize, "value exceeds configured maximum",
		).WithField("value").WithRule("max_length").
			WithProvided(len(value)).WithExpected(e.options.DataSizeMax)
	}
	if bytes.IndexByte(value, 0) >= 0 {
		// The data heap encodes free regions as zero runs (spec.md §9), so a
		// value byte of zero would be indistinguishable from free space.
		return errors.NewValidationError(
			nil, errors.ErrorCodeValueSize, "value must not contain a zero byte",
		).WithField("value").WithRule("no_zero_byte")
	}

	b := e.bucket(key)

	entry, predecessorCell, err := e.walkChain(b, key)
	if err != nil {
		return err
	}

	if entry != nil {
		return e.updateExisting(entry, value)
	}
	return e.insertNew(predecessorCell, key, value)
}

// insertNew allocates an index slot and a data span, writes the new
// record, and only then links it into the chain by updating the
// predecessor cell — the last durable step, so the new slot and span are
// unreferenced garbage rather than visible until it completes. On any
// failure after acquiring a resource, acquired resources are released in
// reverse order (data span, then index slot).
func (e *Engine) insertNew(predecessorCell uint32, key, value []byte) error {
	slot, err := e.idx.AllocateSlot()
	if err != nil {
		return err
	}

	span, err := e.hp.AllocateSpan(uint32(len(value)))
	if err != nil {
		_ = e.idx.FreeSlot(slot)
		return err
	}

	if err := e.hp.WriteSpan(span, value); err != nil {
		_ = e.hp.FreeSpan(span, uint32(len(value)))
		_ = e.idx.FreeSlot(slot)
		return err
	}

	if err := e.idx.WriteRecord(slot, key, span, uint32(len(value))); err != nil {
		_ = e.hp.FreeSpan(span, uint32(len(value)))
		_ = e.idx.FreeSlot(slot)
		return err
	}

	if err := e.writeNextOf(predecessorCell, slot); err != nil {
		_ = e.hp.FreeSpan(span, uint32(len(value)))
		_ = e.idx.FreeSlot(slot)
		return err
	}

	return nil
}

// updateExisting frees the old data span, allocates a new one, writes the
// new value, and rewrites the record in place. Per spec.md §4.4 and §9
// this path is not crash-atomic: a failure after the free and before the
// rewrite leaves the record pointing at a re-zeroed region. This is a
// documented limitation, not a bug to fix here (see DESIGN.md).
func (e *Engine) updateExisting(entry *chainEntry, value []byte) error {
	if err := e.hp.FreeSpan(entry.record.ValuePtr, entry.record.ValueSize); err != nil {
		return err
	}

	span, err := e.hp.AllocateSpan(uint32(len(value)))
	if err != nil {
		return err
	}

	if err := e.hp.WriteSpan(span, value); err != nil {
		return err
	}

	return e.idx.WriteRecord(entry.offset, entry.record.Key, span, uint32(len(value)))
}

// Delete removes key's record. The order matters: old_next is captured
// from the in-memory record before the data span and index slot are
// freed, then the predecessor's pointer is rewritten to old_next, and
// only then is the slot pushed onto the free-list — never the reverse,
// which would leave the slot reachable from two chains simultaneously.
func (e *Engine) Delete(key []byte) error {
	b := e.bucket(key)

	entry, _, err := e.walkChain(b, key)
	if err != nil {
		return err
	}
	if entry == nil {
		return e.noKeyError(key, b)
	}

	oldNext := entry.record.NextPtr

	if err := e.hp.FreeSpan(entry.record.ValuePtr, entry.record.ValueSize); err != nil {
		return err
	}

	if err := e.writeNextOf(entry.predecessor, oldNext); err != nil {
		return err
	}

	return e.idx.FreeSlot(entry.offset)
}

// noKeyError builds the error Read and Delete return when a chain walk
// ends unmatched, wrapping the package-level ErrNoKey sentinel so callers
// can test for it with errors.Is in addition to branching on ErrorCode.
func (e *Engine) noKeyError(key []byte, b uint32) error {
	return errors.NewNoKeyError(ErrNoKey, string(key), b).WithOperation("lookup")
}
