package minidb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	stderrors "errors"

	"github.com/tanebrook/minidb/pkg/options"
)

func TestCreateWriteReadDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "misakawa")

	db, err := Create(
		path, "minidb-test",
		options.WithDBName("misakawa-db"),
		options.WithKeySizeMax(64),
		options.WithDataSizeMax(256),
		options.WithHashBuckets(128),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Write([]byte("misakawa"), []byte("mikoto")))

	v, err := db.Read([]byte("misakawa"))
	require.NoError(t, err)
	require.Equal(t, []byte("mikoto"), v)

	require.NoError(t, db.Delete([]byte("misakawa")))

	_, err = db.Read([]byte("misakawa"))
	require.True(t, stderrors.Is(err, ErrNoKey))
}

func TestCreateOpenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lambda")

	db, err := Create(path, "minidb-test", options.WithDBName("lambda"))
	require.NoError(t, err)
	require.NoError(t, db.Write([]byte("Lisp"), []byte("LambdaExpression")))
	require.NoError(t, db.Close())

	reopened, err := Open(path, "minidb-test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	v, err := reopened.Read([]byte("Lisp"))
	require.NoError(t, err)
	require.Equal(t, []byte("LambdaExpression"), v)

	size, err := reopened.IndexSize()
	require.NoError(t, err)
	require.Positive(t, size)
}
