// Package filestore implements handler.FileStore on top of the local
// filesystem. Uploads are stored as a single file per identifier, with no
// separate metadata sidecar: the metadata record lives entirely in a
// handler.MetadataStore (pkg/memorystore or pkg/redisstore).
package filestore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fileup/fileupd/pkg/handler"
)

var defaultFilePerm = os.FileMode(0664)

// FileStore stores upload bytes as plain files under Path. It does not
// create Path itself; callers are expected to os.MkdirAll it up front.
type FileStore struct {
	Path string
}

// New creates a file-based FileStore rooted at path. It does not check
// that path exists.
func New(path string) FileStore {
	return FileStore{Path: path}
}

func (store FileStore) Create(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, defaultFilePerm)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("upload directory does not exist: %s", filepath.Dir(path))
		}
		return err
	}
	return file.Close()
}

func (store FileStore) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (store FileStore) Size(path string) int64 {
	stat, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return stat.Size()
}

func (store FileStore) Open(path string) (handler.FileHandle, error) {
	file, err := os.OpenFile(path, os.O_RDWR, defaultFilePerm)
	if err != nil {
		return nil, err
	}
	return &fileHandle{file}, nil
}

func (store FileStore) Delete(path string) error {
	err := os.Remove(path)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

func (store FileStore) CopyFile(dst, src string, offset int64) (int64, error) {
	srcFile, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer srcFile.Close()

	dstFile, err := os.OpenFile(dst, os.O_RDWR, defaultFilePerm)
	if err != nil {
		return 0, err
	}
	defer dstFile.Close()

	if _, err := dstFile.Seek(offset, io.SeekStart); err != nil {
		return 0, err
	}

	return io.Copy(dstFile, srcFile)
}

// CopyFromStream reads src in chunkSize blocks, writing each to h as it
// goes. A non-negative limit is the byte budget for this copy: once the
// running total would exceed it, copying stops and a
// *handler.ConflictError is returned alongside the bytes written so far.
// A zero limit therefore conflicts on the first byte, which is what a
// PATCH against an already-complete upload must do. A negative limit
// disables the check.
func (store FileStore) CopyFromStream(h handler.FileHandle, src io.Reader, chunkSize int, limit int64) (int64, error) {
	buf := make([]byte, chunkSize)
	var total int64

	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			if limit >= 0 && total+int64(n) > limit {
				written, writeErr := h.Write(buf[:limit-total])
				total += int64(written)
				if writeErr != nil {
					return total, writeErr
				}
				return total, &handler.ConflictError{BytesTransferred: total}
			}

			written, writeErr := h.Write(buf[:n])
			total += int64(written)
			if writeErr != nil {
				return total, writeErr
			}
		}

		if readErr != nil {
			if readErr == io.EOF {
				return total, nil
			}
			return total, readErr
		}
	}
}

type fileHandle struct {
	*os.File
}

func (h *fileHandle) Seek(offset int64) error {
	_, err := h.File.Seek(offset, io.SeekStart)
	return err
}
