package superblock

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/tanebrook/minidb/pkg/options"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	opts := options.Options{
		DBName:      "lambda",
		KeySizeMax:  64,
		DataSizeMax: 256,
		HashBuckets: 128,
		ItemsMax:    0,
	}

	decoded, err := Decode(Encode(opts))
	require.NoError(t, err)

	if diff := cmp.Diff(opts, decoded); diff != "" {
		t.Fatalf("decode mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeBoundsDBName(t *testing.T) {
	longName := make([]byte, options.DBNameMaxLen+50)
	for i := range longName {
		longName[i] = 'a'
	}

	raw := append(longName, []byte(" 64 256 128 0")...)

	decoded, err := Decode(raw)
	require.NoError(t, err)
	require.Len(t, decoded.DBName, options.DBNameMaxLen)
}

func TestDecodeRejectsWrongFieldCount(t *testing.T) {
	_, err := Decode([]byte("lambda 64 256"))
	require.Error(t, err)
}

func TestValidateRejectsEmptyName(t *testing.T) {
	err := Validate(options.Options{KeySizeMax: 8, DataSizeMax: 8})
	require.Error(t, err)
}

func TestValidateAcceptsMaximumKeySizeMax(t *testing.T) {
	err := Validate(options.Options{
		DBName: "db", KeySizeMax: options.KeySizeMaxLimit - 1, DataSizeMax: 8,
	})
	require.NoError(t, err)
}

func TestValidateRejectsOversizeKeyMax(t *testing.T) {
	err := Validate(options.Options{
		DBName: "db", KeySizeMax: options.KeySizeMaxLimit, DataSizeMax: 8,
	})
	require.Error(t, err)
}

func TestValidateRejectsOversizeDataSizeMax(t *testing.T) {
	err := Validate(options.Options{
		DBName: "db", KeySizeMax: 8, DataSizeMax: math.MaxUint32,
	})
	require.Error(t, err)
}

func TestWriteProducesDecodableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db.super")
	opts := options.Options{DBName: "misakawa", KeySizeMax: 64, DataSizeMax: 256, HashBuckets: 8, ItemsMax: 0}

	require.NoError(t, Write(path, opts))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	decoded, err := Decode(raw)
	require.NoError(t, err)
	require.Equal(t, opts, decoded)
}
