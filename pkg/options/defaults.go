package options

const (
	// DefaultKeySizeMax is the default maximum key length, in bytes.
	DefaultKeySizeMax uint16 = 64

	// DefaultDataSizeMax is the default maximum value length, in bytes.
	DefaultDataSizeMax uint32 = 4096

	// DefaultHashBuckets is the default number of hash buckets in the index file.
	DefaultHashBuckets uint32 = 128

	// DefaultItemsMax is the default advisory item-count cap (0 means "no cap").
	DefaultItemsMax uint32 = 0

	// KeySizeMaxLimit is the lowest rejected value of KeySizeMax: spec.md
	// fixes key_size_max < 255, so 254 is the highest value accepted and
	// this constant itself (255) is the first one rejected.
	KeySizeMaxLimit uint16 = 255

	// DBNameMaxLen is the maximum length, in bytes, of the db_name field.
	DBNameMaxLen = 255
)

// defaultOptions holds the baseline configuration applied before any
// OptionFunc is given a chance to override it.
var defaultOptions = Options{
	KeySizeMax:  DefaultKeySizeMax,
	DataSizeMax: DefaultDataSizeMax,
	HashBuckets: DefaultHashBuckets,
	ItemsMax:    DefaultItemsMax,
}

// NewDefaultOptions returns a copy of the default configuration.
func NewDefaultOptions() Options {
	return defaultOptions
}
