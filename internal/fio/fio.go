// Package fio provides the positioned binary-field I/O primitives every
// higher minidb package is built on. It wraps an *os.File with
// little-endian uint32 field access and raw byte-run access, each pairing
// a seek with the read or write that follows so no other code needs to
// reason about file position directly.
//
// Reads never extend the underlying file; writes past the current end
// extend it as needed, matching how os.File.WriteAt behaves on a sparse
// or short file. Flush is explicit and separate from Write so that a
// caller composing several field writes into one logical record update
// (see internal/index) can flush once at the end instead of once per
// field.
package fio

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/tanebrook/minidb/pkg/errors"
)

// File is a positioned binary-field reader/writer over a single *os.File.
type File struct {
	f        *os.File
	path     string
	fileName string
}

// Open wraps an already-opened *os.File. name is the logical file name
// (e.g. "mydb.db.index") recorded on any error this File produces.
func Open(f *os.File, path, name string) *File {
	return &File{f: f, path: path, fileName: name}
}

// ReadUint32At reads a 32-bit little-endian unsigned integer at off.
func (fl *File) ReadUint32At(off int64) (uint32, error) {
	var buf [4]byte
	if err := fl.ReadAt(off, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// WriteUint32At writes a 32-bit little-endian unsigned integer at off. It
// does not flush; callers flush once per logical mutating operation.
func (fl *File) WriteUint32At(off int64, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return fl.WriteAt(off, buf[:])
}

// ReadAt reads exactly len(buf) bytes starting at off. A short read is
// surfaced as a read error; it never extends the file.
func (fl *File) ReadAt(off int64, buf []byte) error {
	if _, err := fl.f.Seek(off, io.SeekStart); err != nil {
		return fl.wrap(err, errors.ErrorCodeSeek, "failed to seek file", off)
	}

	if _, err := io.ReadFull(fl.f, buf); err != nil {
		return fl.wrap(err, errors.ErrorCodeRead, "failed to read file", off)
	}

	return nil
}

// WriteAt writes exactly len(buf) bytes starting at off, extending the
// file if off+len(buf) is past its current length. It does not flush.
func (fl *File) WriteAt(off int64, buf []byte) error {
	if _, err := fl.f.Seek(off, io.SeekStart); err != nil {
		return fl.wrap(err, errors.ErrorCodeSeek, "failed to seek file", off)
	}

	if _, err := fl.f.Write(buf); err != nil {
		return fl.wrap(err, errors.ErrorCodeWrite, "failed to write file", off)
	}

	return nil
}

// Flush commits prior writes to stable storage. Every public, state
// mutating minidb operation calls Flush before returning success.
func (fl *File) Flush() error {
	if err := fl.f.Sync(); err != nil {
		return fl.wrap(err, errors.ErrorCodeFlush, "failed to flush file", 0)
	}
	return nil
}

// Size reports the current length of the underlying file, in bytes.
func (fl *File) Size() (int64, error) {
	info, err := fl.f.Stat()
	if err != nil {
		return 0, fl.wrap(err, errors.ErrorCodeIO, "failed to stat file", 0)
	}
	return info.Size(), nil
}

// Close closes the underlying file handle.
func (fl *File) Close() error {
	return fl.f.Close()
}

func (fl *File) wrap(err error, code errors.ErrorCode, msg string, off int64) error {
	return errors.NewStorageError(err, code, msg).
		WithFileName(fl.fileName).
		WithPath(fl.path).
		WithOffset(off)
}
