// Package superblock encodes and decodes a minidb database's parameter
// manifest: the single ASCII record written once at create time and read
// verbatim on every open. It is a parameter manifest, not part of the hot
// path, so unlike internal/index and internal/heap it works on a single
// in-memory token line rather than positioned field I/O.
package superblock

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/tanebrook/minidb/pkg/errors"
	"github.com/tanebrook/minidb/pkg/options"
)

// fieldCount is the number of whitespace-separated tokens in an encoded
// superblock: db_name key_size_max data_size_max hash_buckets items_max.
const fieldCount = 5

// Encode renders opts as the whitespace-separated ASCII token line written
// to a database's .db.super file, in the field order fixed by spec.md §3.
func Encode(opts options.Options) []byte {
	line := strings.Join([]string{
		opts.DBName,
		strconv.FormatUint(uint64(opts.KeySizeMax), 10),
		strconv.FormatUint(uint64(opts.DataSizeMax), 10),
		strconv.FormatUint(uint64(opts.HashBuckets), 10),
		strconv.FormatUint(uint64(opts.ItemsMax), 10),
	}, " ")
	return []byte(line + "\n")
}

// Decode parses a superblock token line back into Options. The db_name
// token is bounded to options.DBNameMaxLen bytes, resolving spec.md §9's
// open question about the original's unbounded db_name parse.
func Decode(raw []byte) (options.Options, error) {
	fields := strings.Fields(string(raw))
	if len(fields) != fieldCount {
		return options.Options{}, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "superblock does not have the expected number of fields",
		).WithField("superblock").WithRule("field_count").
			WithProvided(len(fields)).WithExpected(fieldCount)
	}

	dbName := fields[0]
	if len(dbName) > options.DBNameMaxLen {
		dbName = dbName[:options.DBNameMaxLen]
	}

	keySizeMax, err := strconv.ParseUint(fields[1], 10, 16)
	if err != nil {
		return options.Options{}, fieldParseError("key_size_max", fields[1], err)
	}

	dataSizeMax, err := strconv.ParseUint(fields[2], 10, 32)
	if err != nil {
		return options.Options{}, fieldParseError("data_size_max", fields[2], err)
	}

	hashBuckets, err := strconv.ParseUint(fields[3], 10, 32)
	if err != nil {
		return options.Options{}, fieldParseError("hash_buckets", fields[3], err)
	}

	itemsMax, err := strconv.ParseUint(fields[4], 10, 32)
	if err != nil {
		return options.Options{}, fieldParseError("items_max", fields[4], err)
	}

	opts := options.Options{
		DBName:      dbName,
		KeySizeMax:  uint16(keySizeMax),
		DataSizeMax: uint32(dataSizeMax),
		HashBuckets: uint32(hashBuckets),
		ItemsMax:    uint32(itemsMax),
	}

	if err := Validate(opts); err != nil {
		return options.Options{}, err
	}

	return opts, nil
}

// Validate checks opts against the limits spec.md §6 fixes: a non-empty,
// whitespace-free db_name of at most DBNameMaxLen bytes, key_size_max
// below KeySizeMaxLimit, and a data_size_max in (0, 2^32-1).
func Validate(opts options.Options) error {
	name := strings.TrimSpace(opts.DBName)
	if name == "" {
		return errors.NewRequiredFieldError("db_name")
	}
	if name != opts.DBName || strings.ContainsAny(opts.DBName, " \t\n\r") {
		return errors.NewFieldFormatError("db_name", opts.DBName, "no whitespace")
	}
	if len(opts.DBName) > options.DBNameMaxLen {
		return errors.NewFieldRangeError("db_name", len(opts.DBName), 1, options.DBNameMaxLen)
	}

	if opts.KeySizeMax == 0 || opts.KeySizeMax >= options.KeySizeMaxLimit {
		return errors.NewFieldRangeError("key_size_max", opts.KeySizeMax, 1, options.KeySizeMaxLimit-1)
	}

	if opts.DataSizeMax == 0 || opts.DataSizeMax >= math.MaxUint32 {
		return errors.NewFieldRangeError("data_size_max", opts.DataSizeMax, 1, uint32(math.MaxUint32-1))
	}

	return nil
}

// Write atomically replaces the superblock file at path with opts' encoded
// form, using natefinch/atomic so that a crash mid-write never leaves a
// partially-written manifest for a subsequent Open to misparse.
func Write(path string, opts options.Options) error {
	if err := Validate(opts); err != nil {
		return err
	}

	if err := atomic.WriteFile(path, strings.NewReader(string(Encode(opts)))); err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeWrite, "failed to write superblock").
			WithPath(path).WithFileName(filepath.Base(path))
	}

	return nil
}

func fieldParseError(field, provided string, err error) error {
	return errors.NewValidationError(
		err, errors.ErrorCodeInvalidInput, fmt.Sprintf("failed to parse %s from superblock", field),
	).WithField(field).WithRule("numeric").WithProvided(provided)
}
