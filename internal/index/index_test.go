package index

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tanebrook/minidb/internal/fio"
)

func newTestIndex(t *testing.T, keySizeMax uint16, hashBuckets uint32) *Index {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db.index")

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	idx := New(fio.Open(f, path, "test.db.index"), keySizeMax, hashBuckets)
	require.NoError(t, idx.Init())
	return idx
}

func TestInitZeroesHeader(t *testing.T) {
	idx := newTestIndex(t, 8, 4)

	size, err := idx.Size()
	require.NoError(t, err)
	require.Equal(t, idx.headerBytes, size)

	for b := uint32(0); b < 4; b++ {
		head, err := idx.ReadBucketHead(b)
		require.NoError(t, err)
		require.Equal(t, uint32(0), head)
	}
}

func TestAllocateSlotExtendsFile(t *testing.T) {
	idx := newTestIndex(t, 8, 1)

	p1, err := idx.AllocateSlot()
	require.NoError(t, err)
	require.Equal(t, uint32(idx.headerBytes), p1)

	p2, err := idx.AllocateSlot()
	require.NoError(t, err)
	require.Equal(t, uint32(idx.headerBytes)+uint32(idx.RecordSize()), p2)
}

func TestWriteReadRecordRoundTrip(t *testing.T) {
	idx := newTestIndex(t, 8, 1)

	p, err := idx.AllocateSlot()
	require.NoError(t, err)

	require.NoError(t, idx.WriteRecord(p, []byte("misakawa"), 100, 6))

	rec, err := idx.ReadRecord(p)
	require.NoError(t, err)
	require.Equal(t, []byte("misakawa"), rec.Key)
	require.Equal(t, uint32(100), rec.ValuePtr)
	require.Equal(t, uint32(6), rec.ValueSize)
	require.Equal(t, uint32(0), rec.NextPtr)
}

func TestShortKeyLeavesZeroPadding(t *testing.T) {
	idx := newTestIndex(t, 8, 1)

	p, err := idx.AllocateSlot()
	require.NoError(t, err)
	require.NoError(t, idx.WriteRecord(p, []byte("hi"), 1, 1))

	rec, err := idx.ReadRecord(p)
	require.NoError(t, err)
	require.Equal(t, []byte("hi"), rec.Key)
}

func TestFreeSlotIsReusedBeforeExtending(t *testing.T) {
	idx := newTestIndex(t, 8, 1)

	p1, err := idx.AllocateSlot()
	require.NoError(t, err)
	p2, err := idx.AllocateSlot()
	require.NoError(t, err)
	require.NotEqual(t, p1, p2)

	sizeBeforeFree, err := idx.Size()
	require.NoError(t, err)

	require.NoError(t, idx.FreeSlot(p1))

	p3, err := idx.AllocateSlot()
	require.NoError(t, err)
	require.Equal(t, p1, p3, "freed slot should be reused")

	sizeAfterReuse, err := idx.Size()
	require.NoError(t, err)
	require.Equal(t, sizeBeforeFree, sizeAfterReuse, "reusing a freed slot must not extend the file")

	rec, err := idx.ReadRecord(p3)
	require.NoError(t, err)
	require.Empty(t, rec.Key)
}

func TestBucketHeadAndNextPtrChain(t *testing.T) {
	idx := newTestIndex(t, 8, 4)

	p1, err := idx.AllocateSlot()
	require.NoError(t, err)
	require.NoError(t, idx.WriteRecord(p1, []byte("a"), 1, 1))

	p2, err := idx.AllocateSlot()
	require.NoError(t, err)
	require.NoError(t, idx.WriteRecord(p2, []byte("b"), 2, 1))

	require.NoError(t, idx.WriteNextPtr(p2, p1))
	require.NoError(t, idx.WriteBucketHead(2, p2))

	head, err := idx.ReadBucketHead(2)
	require.NoError(t, err)
	require.Equal(t, p2, head)

	rec, err := idx.ReadRecord(head)
	require.NoError(t, err)
	require.Equal(t, p1, rec.NextPtr)
}
