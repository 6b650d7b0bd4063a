// Package options provides data structures and functions for configuring a
// minidb instance. It defines the superblock-level parameters fixed at
// Create time: key/value size ceilings, the hash bucket count, the advisory
// item cap, and the database name recorded in the superblock manifest.
package options

import (
	"math"
	"strings"
)

// Options defines the configuration parameters for a minidb database. All
// five fields are written to and parsed from the on-disk superblock, in
// the order they are declared here.
type Options struct {
	// DBName is the logical name recorded in the superblock manifest.
	//
	// Default: "" (caller must supply one at Create time)
	DBName string `json:"dbName"`

	// KeySizeMax is the maximum length, in bytes, of any key accepted by
	// Write. Fixed at Create time; every index record reserves this many
	// bytes regardless of the actual key length.
	//
	// Default: 64
	KeySizeMax uint16 `json:"keySizeMax"`

	// DataSizeMax is the maximum length, in bytes, of any value accepted
	// by Write.
	//
	// Default: 4096
	DataSizeMax uint32 `json:"dataSizeMax"`

	// HashBuckets is the number of hash buckets in the index file. A
	// value of 0 is treated as a single implicit bucket.
	//
	// Default: 128
	HashBuckets uint32 `json:"hashBuckets"`

	// ItemsMax is an advisory cap on the number of stored items. A value
	// of 0 means no cap is enforced.
	//
	// Default: 0
	ItemsMax uint32 `json:"itemsMax"`
}

// OptionFunc is a function type that modifies a minidb instance's configuration.
type OptionFunc func(*Options)

// WithDefaultOptions applies the baseline configuration values to the
// Options struct, leaving DBName untouched.
func WithDefaultOptions() OptionFunc {
	return func(o *Options) {
		opts := NewDefaultOptions()
		o.KeySizeMax = opts.KeySizeMax
		o.DataSizeMax = opts.DataSizeMax
		o.HashBuckets = opts.HashBuckets
		o.ItemsMax = opts.ItemsMax
	}
}

// WithDBName sets the database name recorded in the superblock. Names
// longer than DBNameMaxLen are truncated to that length.
func WithDBName(name string) OptionFunc {
	return func(o *Options) {
		name = strings.TrimSpace(name)
		if len(name) > DBNameMaxLen {
			name = name[:DBNameMaxLen]
		}
		if name != "" {
			o.DBName = name
		}
	}
}

// WithKeySizeMax sets the maximum accepted key length, in bytes. Values at
// or above KeySizeMaxLimit are rejected and leave the field unchanged.
func WithKeySizeMax(size uint16) OptionFunc {
	return func(o *Options) {
		if size > 0 && size < KeySizeMaxLimit {
			o.KeySizeMax = size
		}
	}
}

// WithDataSizeMax sets the maximum accepted value length, in bytes. Values
// at or above math.MaxUint32 are rejected and leave the field unchanged,
// per spec.md's data_size_max < 2^32-1 limit.
func WithDataSizeMax(size uint32) OptionFunc {
	return func(o *Options) {
		if size > 0 && size < math.MaxUint32 {
			o.DataSizeMax = size
		}
	}
}

// WithHashBuckets sets the number of hash buckets in the index file.
func WithHashBuckets(buckets uint32) OptionFunc {
	return func(o *Options) {
		o.HashBuckets = buckets
	}
}

// WithItemsMax sets the advisory item-count cap. 0 disables the cap.
func WithItemsMax(max uint32) OptionFunc {
	return func(o *Options) {
		o.ItemsMax = max
	}
}
