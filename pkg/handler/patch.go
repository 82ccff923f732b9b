package handler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/fileup/fileupd/internal/uid"
)

// DefaultChunkSize is the size of the blocks the append engine reads from
// the request body and writes to disk. It keeps memory use O(chunk size)
// regardless of upload size, per the streaming requirement.
const DefaultChunkSize = 32 * 1024

func (h *Handler) patch(w http.ResponseWriter, r *http.Request) {
	log := h.requestLogger(r.Context(), r)
	resp := h.doPatch(r.Context(), log, w, r, "", false, 0)
	h.sendResp(w, resp)
}

// doPatch runs the append engine for id (resolved via LocationProvider when
// id is empty) and returns the response to send. When forceOffset is set,
// the Upload-Offset header is not read and forcedOffset is taken as the
// client's offset instead (it is still checked against the file size) —
// this is how POST's creation-with-upload delegates its first append,
// since the client never sends an Upload-Offset header on the create
// request.
func (h *Handler) doPatch(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, id string, forceOffset bool, forcedOffset int64) HTTPResponse {
	if r.Header.Get("Content-Type") != contentTypeOffsetOctetStream {
		return h.errorResp(log, ErrInvalidContentType)
	}

	id, err := h.uploadIDFromRequest(id, r)
	if err != nil {
		return h.errorResp(log, ErrUnexpectedValue)
	}
	log = log.With("id", id)

	unlock := h.locks.acquire(id)
	defer unlock()

	rec, ok, err := h.config.MetadataStore.Get(ctx, id)
	if err != nil {
		return h.errorResp(log, err)
	}
	if !ok {
		return h.errorResp(log, ErrNotFound)
	}
	if !h.config.FileStore.Exists(rec.File) {
		return h.errorResp(log, ErrNotFound)
	}

	if rec.Defer {
		if newLength, ok := parseNonNegativeInt(r.Header.Get("Upload-Length")); ok && newLength > 0 {
			if newLength > h.config.MaxSize {
				return h.errorResp(log, ErrMaxSizeExceeded)
			}
			rec.Length = newLength
			rec.Defer = false
			if err := h.config.MetadataStore.Set(ctx, id, rec, TTLDefault()); err != nil {
				return h.errorResp(log, err)
			}
		}
	}

	var offset int64
	if forceOffset {
		offset = forcedOffset
	} else {
		parsed, ok := parseRequiredNonNegativeInt(r.Header.Get("Upload-Offset"))
		if !ok {
			return h.errorResp(log, ErrInvalidOffset)
		}
		offset = parsed
	}

	currentSize := h.config.FileStore.Size(rec.File)
	if offset != currentSize {
		return h.errorResp(log, ErrMismatchOffset)
	}

	var writeLimit int64
	if rec.Defer {
		writeLimit = h.config.MaxSize - offset
	} else {
		writeLimit = rec.Length - offset
	}

	if h.config.NetworkTimeout > 0 {
		// Best-effort: not every ResponseWriter supports deadlines, and a
		// missing one just means the listener's own timeouts apply.
		http.NewResponseController(w).SetReadDeadline(time.Now().Add(h.config.NetworkTimeout))
	}

	body := newBodyReader(w, r, 0)
	defer body.Close()

	bytesTransferred, writeErr := h.writeBody(rec.File, offset, body, writeLimit)
	h.Metrics.addBytesReceived(bytesTransferred)

	if writeErr == nil && body.Err() != nil {
		writeErr = body.Err()
	}

	if conflict, ok := asConflictError(writeErr); ok {
		log.Info("upload exceeded its allotted size mid-write", "bytesTransferred", conflict.BytesTransferred)
		h.deleteUpload(ctx, log, id, rec.File)
		return h.errorResp(log, ErrMismatchOffset)
	}
	if mismatch, ok := writeErr.(*chunkMismatchError); ok {
		log.Error("chunk promoted into target inconsistently", "error", mismatch)
		h.deleteUpload(ctx, log, id, rec.File)
		return h.errorResp(log, mismatch)
	}
	if writeErr != nil {
		return h.errorResp(log, writeErr)
	}

	newSize := h.config.FileStore.Size(rec.File)

	if rec.Defer {
		if offset+bytesTransferred > h.config.MaxSize {
			h.deleteUpload(ctx, log, id, rec.File)
			return h.errorResp(log, ErrMismatchOffset)
		}
	} else if offset+bytesTransferred != newSize {
		h.deleteUpload(ctx, log, id, rec.File)
		return h.errorResp(log, ErrMismatchOffset)
	}

	resp := HTTPResponse{
		StatusCode: 204,
		Header: HTTPHeader{
			"Upload-Offset": strconv.FormatInt(newSize, 10),
		},
	}
	if rec.Defer {
		resp.Header["Upload-Defer-Length"] = "1"
	}

	if !rec.Defer && newSize == rec.Length {
		if !rec.Complete {
			rec.Complete = true
			if err := h.config.MetadataStore.Set(ctx, id, rec, h.config.StorageTTLAfterUploadComplete); err != nil {
				log.Error("MetadataStoreError", "error", err)
			}
			h.Metrics.incUploadsComplete()
			h.publish(Event{Type: EventUploadComplete, ID: id, File: rec.File, MetaData: rec.MetaData})
		}
	} else if err := h.config.MetadataStore.Set(ctx, id, rec, TTLDefault()); err != nil {
		log.Error("MetadataStoreError", "error", err)
	}

	return resp
}

// writeBody streams body into file's target at offset, either directly or
// through a staging chunk file, per the handler's UseIntermediateChunk
// configuration.
func (h *Handler) writeBody(targetPath string, offset int64, body io.Reader, writeLimit int64) (int64, error) {
	if h.config.UseIntermediateChunk {
		return h.writeBodyViaChunk(targetPath, offset, body, writeLimit)
	}

	target, err := h.config.FileStore.Open(targetPath)
	if err != nil {
		return 0, fmt.Errorf("opening target file: %w", err)
	}
	defer target.Close()

	if err := target.Seek(offset); err != nil {
		return 0, fmt.Errorf("seeking target file: %w", err)
	}

	return h.config.FileStore.CopyFromStream(target, body, DefaultChunkSize, writeLimit)
}

// writeBodyViaChunk stages the body into a temporary file before promoting
// it into the target. This is currently a pure passthrough: it exists as a
// seam for a future checksum extension that would hash the chunk before it
// reaches the target, not for correctness.
func (h *Handler) writeBodyViaChunk(targetPath string, offset int64, body io.Reader, writeLimit int64) (int64, error) {
	chunkPath := h.config.ChunkDirectory + "/" + uid.Uid()

	if err := h.config.FileStore.Create(chunkPath); err != nil {
		return 0, fmt.Errorf("creating chunk file: %w", err)
	}
	defer h.config.FileStore.Delete(chunkPath)

	chunk, err := h.config.FileStore.Open(chunkPath)
	if err != nil {
		return 0, fmt.Errorf("opening chunk file: %w", err)
	}

	bytesTransferred, copyErr := h.config.FileStore.CopyFromStream(chunk, body, DefaultChunkSize, writeLimit)
	chunk.Close()
	if copyErr != nil {
		return bytesTransferred, copyErr
	}

	promoted, err := h.config.FileStore.CopyFile(targetPath, chunkPath, offset)
	if err != nil {
		return bytesTransferred, fmt.Errorf("promoting chunk to target: %w", err)
	}
	if promoted != bytesTransferred {
		return bytesTransferred, &chunkMismatchError{promoted: promoted, expected: bytesTransferred}
	}

	return bytesTransferred, nil
}

// chunkMismatchError reports that promoting a staged chunk file into the
// target wrote a different number of bytes than were received, a Runtime
// failure that also leaves the upload inconsistent and so is deleted
// alongside the 5xx it renders as.
type chunkMismatchError struct {
	promoted, expected int64
}

func (e *chunkMismatchError) Error() string {
	return fmt.Sprintf("chunk promoted %d bytes, expected %d", e.promoted, e.expected)
}

func (h *Handler) deleteUpload(ctx context.Context, log *slog.Logger, id, file string) {
	if err := h.config.FileStore.Delete(file); err != nil {
		log.Warn("failed to delete inconsistent upload file", "id", id, "file", file, "error", err)
	}
	if err := h.config.MetadataStore.Delete(ctx, id); err != nil {
		log.Warn("failed to delete record after inconsistency", "id", id, "error", err)
	}
}

func asConflictError(err error) (*ConflictError, bool) {
	ce, ok := err.(*ConflictError)
	return ce, ok
}
