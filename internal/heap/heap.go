// Package heap owns the data file: an unstructured byte region where live
// values are runs of non-zero bytes and free regions are runs of zero
// bytes. It implements the first-fit, zero-run scan allocator described in
// spec.md §4.3 and trades a second in-file free-list for a simpler,
// crash-resistant layout at the cost of an O(file_size) allocation scan.
package heap

import (
	"github.com/tanebrook/minidb/internal/fio"
)

// scanChunk bounds how many bytes AllocateSpan reads per probe while
// walking the file looking for a zero run. Kept small and fixed so a
// single probe never allocates an unbounded buffer for a huge data file.
const scanChunk = 4096

// Heap manages reads and writes against a single data file.
type Heap struct {
	fl *fio.File
}

// New wraps fl as a data heap manager.
func New(fl *fio.File) *Heap {
	return &Heap{fl: fl}
}

// Size returns the current length of the data file, in bytes.
func (h *Heap) Size() (int64, error) {
	return h.fl.Size()
}

// AllocateSpan finds a zero run of at least n+2 bytes by first-fit scan
// and returns start+1: the span reserves n bytes with a single zero byte
// of padding on either side (spec.md §4.3's "+1 offset, +2 slack"
// invariant). If no fit exists before end-of-file, the file is extended
// by n bytes and the offset where the extension began is returned.
func (h *Heap) AllocateSpan(n uint32) (uint32, error) {
	size, err := h.fl.Size()
	if err != nil {
		return 0, err
	}

	var offset int64
	for offset < size {
		// Step 2: advance past any non-zero bytes (the current live region).
		liveEnd, err := h.scanRun(offset, size, false)
		if err != nil {
			return 0, err
		}

		// Step 3/4: record start, then advance past the zero run that follows.
		start := liveEnd
		freeEnd, err := h.scanRun(start, size, true)
		if err != nil {
			return 0, err
		}

		// Step 5: a fit of n+2 bytes reserves n bytes one byte in.
		if freeEnd-start >= int64(n)+2 {
			return uint32(start + 1), nil
		}

		offset = freeEnd
	}

	// Step 6: no fit found before EOF; extend the file by n zero bytes.
	if err := h.fl.WriteAt(size, make([]byte, n)); err != nil {
		return 0, err
	}
	if err := h.fl.Flush(); err != nil {
		return 0, err
	}

	return uint32(size), nil
}

// scanRun advances from start until it finds a byte whose zero-ness
// differs from wantZero, or reaches limit. It returns the offset of the
// first byte that breaks the run (or limit, if the run reaches it).
func (h *Heap) scanRun(start, limit int64, wantZero bool) (int64, error) {
	pos := start
	buf := make([]byte, scanChunk)

	for pos < limit {
		n := int64(len(buf))
		if pos+n > limit {
			n = limit - pos
		}

		if err := h.fl.ReadAt(pos, buf[:n]); err != nil {
			return 0, err
		}

		for i := int64(0); i < n; i++ {
			isZero := buf[i] == 0
			if isZero != wantZero {
				return pos + i, nil
			}
		}

		pos += n
	}

	return limit, nil
}

// WriteSpan writes exactly len(data) bytes at offset and flushes. data
// must contain no zero byte — spec.md §9 notes the data file's implicit
// zero-run encoding of free regions forbids zero-valued value bytes.
func (h *Heap) WriteSpan(offset uint32, data []byte) error {
	if err := h.fl.WriteAt(int64(offset), data); err != nil {
		return err
	}
	return h.fl.Flush()
}

// ReadSpan reads n bytes at offset and returns them with a trailing zero
// byte appended, matching spec.md §4.3's NUL-terminated read contract.
func (h *Heap) ReadSpan(offset, n uint32) ([]byte, error) {
	buf := make([]byte, n+1)
	if err := h.fl.ReadAt(int64(offset), buf[:n]); err != nil {
		return nil, err
	}
	return buf, nil
}

// FreeSpan overwrites n bytes at offset with zeros and flushes, returning
// the span to the free zero-run pool in place.
func (h *Heap) FreeSpan(offset, n uint32) error {
	if err := h.fl.WriteAt(int64(offset), make([]byte, n)); err != nil {
		return err
	}
	return h.fl.Flush()
}
