// Package minidb is an embeddable, single-process, on-disk key-value
// store. A database's persistent state is three sibling files — an
// ASCII superblock of parameters, a fixed-record index with hash buckets
// and an in-file free-list, and a variable-length data heap using an
// in-place zero-run allocator. It supports create, open, read, write
// (insert or replace), delete, and close; it is not safe for concurrent
// use from multiple goroutines or processes.
package minidb

import (
	"github.com/tanebrook/minidb/internal/engine"
	"github.com/tanebrook/minidb/pkg/logger"
	"github.com/tanebrook/minidb/pkg/options"
)

// ErrNoKey is returned by Read and Delete when no record matches the
// given key. Test with errors.Is, not direct comparison, since the
// returned error also carries the key and bucket it failed to find.
var ErrNoKey = engine.ErrNoKey

// DB is the primary entry point for interacting with a minidb database.
// It wraps the internal engine and the configuration it was created or
// opened with.
type DB struct {
	engine  *engine.Engine
	options options.Options
}

// Create initializes a new database at path (three sibling files:
// path+".db.super", path+".db.index", path+".db.data"). service names the
// logger used for this instance's structured log output.
func Create(path, service string, opts ...options.OptionFunc) (*DB, error) {
	log := logger.New(service)

	cfg := options.NewDefaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}

	eng, err := engine.Create(path, &engine.Config{Options: cfg, Logger: log})
	if err != nil {
		return nil, err
	}

	return &DB{engine: eng, options: cfg}, nil
}

// Open opens an existing database at path, parsing its superblock and
// opening its index and data files read-write. All three sibling files
// must already exist.
func Open(path, service string) (*DB, error) {
	log := logger.New(service)

	eng, err := engine.Open(path, log)
	if err != nil {
		return nil, err
	}

	return &DB{engine: eng, options: eng.GetOptions()}, nil
}

// Read returns the value stored for key, or an error satisfying
// errors.Is(err, ErrNoKey) if no record matches.
func (db *DB) Read(key []byte) ([]byte, error) {
	return db.engine.Read(key)
}

// Write stores value under key, inserting a new record or replacing the
// existing one. It fails if key or value exceed the configured maxima.
func (db *DB) Write(key, value []byte) error {
	return db.engine.Write(key, value)
}

// Delete removes key's record, or returns an error satisfying
// errors.Is(err, ErrNoKey) if no record matches.
func (db *DB) Delete(key []byte) error {
	return db.engine.Delete(key)
}

// GetOptions returns the configuration this database was created or
// opened with.
func (db *DB) GetOptions() options.Options {
	return db.options
}

// IndexSize returns the current size of the index file, in bytes.
func (db *DB) IndexSize() (int64, error) {
	return db.engine.IndexSize()
}

// DataSize returns the current size of the data file, in bytes.
func (db *DB) DataSize() (int64, error) {
	return db.engine.DataSize()
}

// Close flushes and closes all open file handles. db must not be used
// afterward.
func (db *DB) Close() error {
	return db.engine.Close()
}
