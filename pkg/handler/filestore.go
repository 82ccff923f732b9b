package handler

import "io"

// FileHandle is an open file positioned for reading or writing, as
// returned by FileStore.Open.
type FileHandle interface {
	io.ReadWriteCloser
	// Seek positions the handle at byte offset for the next read or
	// write. It fails if the position cannot be established.
	Seek(offset int64) error
}

// ConflictError is returned by FileStore.CopyFromStream when the number of
// bytes copied so far exceeds the supplied limit. The caller is expected to
// treat this as a 409 Conflict and discard the partial write.
type ConflictError struct {
	BytesTransferred int64
}

func (e *ConflictError) Error() string {
	return "handler: write exceeded the allowed size limit"
}

// FileStore performs the filesystem operations the append engine needs:
// creating and removing upload files, checking their size and existence,
// and streaming request bodies into them. pkg/filestore provides the
// on-disk implementation; this interface exists so pkg/handler does not
// need to import it directly.
type FileStore interface {
	// Create makes an empty file at path. It fails if the file already
	// exists or if the containing directory does not exist.
	Create(path string) error
	// Exists reports whether path currently exists, bypassing any stat
	// cache.
	Exists(path string) bool
	// Size returns the current size of path in bytes, bypassing any stat
	// cache. It returns 0 for a nonexistent or unreadable path.
	Size(path string) int64
	// Open opens path for binary read+write without truncating existing
	// content.
	Open(path string) (FileHandle, error)
	// CopyFromStream reads src in chunkSize blocks and writes each to h,
	// flushing as it goes, until src is exhausted. A non-negative limit
	// is the byte budget for the copy: once the running total of bytes
	// transferred would exceed it, copying stops and a *ConflictError is
	// returned alongside the bytes written so far. A negative limit
	// disables the check.
	CopyFromStream(h FileHandle, src io.Reader, chunkSize int, limit int64) (int64, error)
	// Delete removes path. It is idempotent: deleting an absent file is
	// not an error.
	Delete(path string) error
	// CopyFile copies the full contents of src into dst starting at byte
	// offset, used by intermediate-chunk mode to promote a staged chunk
	// file into the target. It returns the number of bytes copied.
	CopyFile(dst, src string, offset int64) (int64, error)
}
