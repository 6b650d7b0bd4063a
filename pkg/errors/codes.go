package errors

// ErrorCode represents a standardized way to categorize different types of errors.
type ErrorCode string

// Base error codes represent the fundamental categories of failures that can
// occur across any software system. These codes provide the foundation layer
// of error classification.
const (
	// ErrorCodeIO represents failures in input/output operations across any
	// system boundary. This includes file system operations like reading or
	// writing the superblock, index, or data files.
	ErrorCodeIO ErrorCode = "IO_ERROR"

	// ErrorCodeInvalidInput represents client-side errors where the provided
	// data doesn't meet the system's requirements or constraints. This maps
	// to HTTP 400-series errors and indicates problems with the request itself
	// rather than system failures.
	ErrorCodeInvalidInput ErrorCode = "INVALID_INPUT"

	// ErrorCodeInternal represents unexpected system failures that don't fit
	// into other categories. These are the equivalent of HTTP 500 errors and
	// indicate bugs, assertion failures, or other programming errors that
	// shouldn't occur during normal operation.
	ErrorCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Storage-specific error codes extend the base error taxonomy to the failure
// modes of the on-disk engine: its three files and the positioned I/O that
// reads and writes them. These map directly onto the error kinds named in
// the engine's public contract (open-file, read, write, seek, flush, alloc).
const (
	// ErrorCodeOpenFile indicates a superblock, index, or data file could not
	// be opened or created.
	ErrorCodeOpenFile ErrorCode = "OPEN_FILE_ERROR"

	// ErrorCodeSeek indicates a positioned seek on the index or data file failed.
	ErrorCodeSeek ErrorCode = "SEEK_ERROR"

	// ErrorCodeRead indicates a read returned fewer bytes than requested, or failed outright.
	ErrorCodeRead ErrorCode = "READ_ERROR"

	// ErrorCodeWrite indicates a write returned fewer bytes than requested, or failed outright.
	ErrorCodeWrite ErrorCode = "WRITE_ERROR"

	// ErrorCodeFlush indicates a flush (fsync) of a mutated file failed.
	ErrorCodeFlush ErrorCode = "FLUSH_ERROR"

	// ErrorCodeAlloc indicates the in-memory handle for a database could not be allocated.
	ErrorCodeAlloc ErrorCode = "ALLOC_ERROR"

	// ErrorCodePermissionDenied indicates insufficient permissions to access a resource.
	// This is distinct from generic IO errors because it has a specific resolution path:
	// the user needs to adjust file/directory permissions or run with elevated privileges.
	ErrorCodePermissionDenied ErrorCode = "PERMISSION_DENIED"

	// ErrorCodeDiskFull indicates that the storage device has run out of space.
	ErrorCodeDiskFull ErrorCode = "DISK_FULL"

	// ErrorCodeFilesystemReadonly indicates that the filesystem is mounted read-only.
	ErrorCodeFilesystemReadonly ErrorCode = "FILESYSTEM_READONLY"
)

// Lookup/validation error codes, one per error kind in the engine's public
// contract that isn't a raw I/O failure.
const (
	// ErrorCodeNoKey indicates a read or delete found no matching key in the target chain.
	ErrorCodeNoKey ErrorCode = "NO_KEY"

	// ErrorCodeKeySize indicates a key is empty or exceeds the configured key_size_max.
	ErrorCodeKeySize ErrorCode = "KEY_SIZE"

	// ErrorCodeValueSize indicates a value exceeds the configured data_size_max
	// or contains a zero byte.
	ErrorCodeValueSize ErrorCode = "VALUE_SIZE"

	// ErrorCodeBufferTooSmall indicates the caller-supplied read buffer is
	// smaller than value_size + 1.
	ErrorCodeBufferTooSmall ErrorCode = "BUFFER_TOO_SMALL"

	// ErrorCodeIndexCorrupted indicates the index file's on-disk structure is
	// inconsistent with its declared record size or reachable chains.
	ErrorCodeIndexCorrupted ErrorCode = "INDEX_CORRUPTED"
)
