package engine

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tanebrook/minidb/pkg/logger"
	"github.com/tanebrook/minidb/pkg/options"
)

func newEngine(t *testing.T, opts options.Options) *Engine {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test")

	e, err := Create(path, &Config{Options: opts, Logger: logger.Noop()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func baseOptions(dbName string, hashBuckets uint32) options.Options {
	opts := options.NewDefaultOptions()
	opts.DBName = dbName
	opts.KeySizeMax = 64
	opts.DataSizeMax = 256
	opts.HashBuckets = hashBuckets
	return opts
}

func TestHappyPath(t *testing.T) {
	e := newEngine(t, baseOptions("misakawa-db", 128))

	require.NoError(t, e.Write([]byte("misakawa"), []byte("mikoto")))

	v, err := e.Read([]byte("misakawa"))
	require.NoError(t, err)
	require.Equal(t, []byte("mikoto"), v)

	require.NoError(t, e.Delete([]byte("misakawa")))

	_, err = e.Read([]byte("misakawa"))
	require.Error(t, err)
}

func TestReopenPreservesRecordsAndOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lambda")
	opts := baseOptions("lambda", 128)

	e, err := Create(path, &Config{Options: opts, Logger: logger.Noop()})
	require.NoError(t, err)

	require.NoError(t, e.Write([]byte("Lisp"), []byte("LambdaExpression")))
	require.NoError(t, e.Close())

	reopened, err := Open(path, logger.Noop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	require.Equal(t, opts, reopened.GetOptions())

	v, err := reopened.Read([]byte("Lisp"))
	require.NoError(t, err)
	require.Equal(t, []byte("LambdaExpression"), v)
}

func TestLoad1000Keys(t *testing.T) {
	opts := baseOptions("load", 128)
	opts.KeySizeMax = 8
	e := newEngine(t, opts)

	pool := []string{
		"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf", "hotel",
		"india", "juliet", "kilo", "lima", "mike", "november", "oscar", "papa",
		"quebec", "romeo",
	}

	want := make(map[string]string, 1000)
	for i := 0; i < 1000; i++ {
		key := fmt.Sprintf("%03d", i)
		value := pool[i%len(pool)]
		require.NoError(t, e.Write([]byte(key), []byte(value)))
		want[key] = value
	}

	for key, value := range want {
		got, err := e.Read([]byte(key))
		require.NoError(t, err)
		require.Equal(t, []byte(value), got)
	}
}

func TestWriteUpdateReadsLatestValue(t *testing.T) {
	e := newEngine(t, baseOptions("update", 16))

	require.NoError(t, e.Write([]byte("k"), []byte("v1")))
	require.NoError(t, e.Write([]byte("k"), []byte("v2longer")))

	v, err := e.Read([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("v2longer"), v)
}

func TestDeleteTwiceReturnsNoKeySecondTime(t *testing.T) {
	e := newEngine(t, baseOptions("del-twice", 16))

	require.NoError(t, e.Write([]byte("k"), []byte("v")))
	require.NoError(t, e.Delete([]byte("k")))
	require.Error(t, e.Delete([]byte("k")))
}

func TestSlotReuseBoundsIndexSize(t *testing.T) {
	opts := baseOptions("slot-reuse", 0)
	opts.KeySizeMax = 8
	e := newEngine(t, opts)

	keys := make([][]byte, 32)
	for i := range keys {
		keys[i] = []byte(fmt.Sprintf("k%05d", i))
		require.NoError(t, e.Write(keys[i], []byte("v")))
	}

	for i := 0; i < 4; i++ {
		require.NoError(t, e.Delete(keys[i]))
	}

	for i := 0; i < 8; i++ {
		require.NoError(t, e.Write([]byte(fmt.Sprintf("n%05d", i)), []byte("v")))
	}

	size, err := e.IndexSize()
	require.NoError(t, err)

	recordSize := e.idx.RecordSize()
	headerBytes := int64(4 * 2) // hash_buckets == 0 -> single implicit bucket
	want := headerBytes + recordSize*(32-4+8)
	require.Equal(t, want, size)
}

func TestDataSpanReuse(t *testing.T) {
	e := newEngine(t, baseOptions("span-reuse", 32))

	values := make([][]byte, 32)
	for i := range values {
		v := []byte(fmt.Sprintf("payload-%02d", i))
		values[i] = v
		require.NoError(t, e.Write([]byte(fmt.Sprintf("k%02d", i)), v))
	}

	for i := 0; i < 8; i++ {
		require.NoError(t, e.Delete([]byte(fmt.Sprintf("k%02d", i))))
	}

	newValues := make([][]byte, 8)
	for i := range newValues {
		v := []byte(fmt.Sprintf("fresh-%02d", i))
		newValues[i] = v
		require.NoError(t, e.Write([]byte(fmt.Sprintf("m%02d", i)), v))
	}

	for i := 8; i < 32; i++ {
		got, err := e.Read([]byte(fmt.Sprintf("k%02d", i)))
		require.NoError(t, err)
		require.Equal(t, values[i], got)
	}

	for i := range newValues {
		got, err := e.Read([]byte(fmt.Sprintf("m%02d", i)))
		require.NoError(t, err)
		require.Equal(t, newValues[i], got)
	}
}

func TestWriteRejectsOversizeKeyAndValue(t *testing.T) {
	e := newEngine(t, baseOptions("bounds", 16))

	longKey := make([]byte, e.options.KeySizeMax+1)
	require.Error(t, e.Write(longKey, []byte("v")))

	longValue := make([]byte, e.options.DataSizeMax+1)
	for i := range longValue {
		longValue[i] = 'x'
	}
	require.Error(t, e.Write([]byte("k"), longValue))
}
