package errors

// IndexError provides specialized error handling for failures in the index
// file manager and the store facade's chain walks. It extends the base
// error system with the context needed to reproduce a failed lookup: which
// key, which bucket, and which operation was in flight.
type IndexError struct {
	*baseError

	key       string // Key being processed when the error occurred.
	operation string // Operation in flight, e.g. "Read", "Write", "Delete".
	bucket    uint32 // Hash bucket the key mapped to.
	indexSize int64  // Size of the index file at the time of the error, in bytes.
}

// NewIndexError creates a new index-specific error with the provided context.
func NewIndexError(err error, code ErrorCode, msg string) *IndexError {
	return &IndexError{baseError: NewBaseError(err, code, msg)}
}

// WithDetail adds contextual information while maintaining the IndexError type.
func (ie *IndexError) WithDetail(key string, value any) *IndexError {
	ie.baseError.WithDetail(key, value)
	return ie
}

// WithKey records which key was being processed when the error occurred.
func (ie *IndexError) WithKey(key string) *IndexError {
	ie.key = key
	return ie
}

// WithOperation records what operation was being performed.
func (ie *IndexError) WithOperation(operation string) *IndexError {
	ie.operation = operation
	return ie
}

// WithBucket records which hash bucket the key mapped to.
func (ie *IndexError) WithBucket(bucket uint32) *IndexError {
	ie.bucket = bucket
	return ie
}

// WithIndexSize captures the size of the index file when the error occurred.
func (ie *IndexError) WithIndexSize(size int64) *IndexError {
	ie.indexSize = size
	return ie
}

// Key returns the key that was being processed when the error occurred.
func (ie *IndexError) Key() string {
	return ie.key
}

// Operation returns the name of the operation that was being performed.
func (ie *IndexError) Operation() string {
	return ie.operation
}

// Bucket returns the hash bucket associated with the error.
func (ie *IndexError) Bucket() uint32 {
	return ie.bucket
}

// IndexSize returns the size of the index file when the error occurred.
func (ie *IndexError) IndexSize() int64 {
	return ie.indexSize
}

// NewNoKeyError creates the error returned when a read or delete walks a
// chain to its end without finding a match. err is the sentinel the caller
// wants errors.Is to match against (e.g. engine.ErrNoKey); it becomes the
// IndexError's wrapped cause.
func NewNoKeyError(err error, key string, bucket uint32) *IndexError {
	return NewIndexError(err, ErrorCodeNoKey, "key not found").
		WithKey(key).
		WithBucket(bucket)
}
