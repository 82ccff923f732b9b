package handler

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const contentTypeOffsetOctetStream = "application/offset+octet-stream"

func (h *Handler) post(w http.ResponseWriter, r *http.Request) {
	log := h.requestLogger(r.Context(), r)

	length, ok := parseNonNegativeInt(r.Header.Get("Upload-Length"))
	if !ok {
		h.sendError(w, log, ErrInvalidUploadLength)
		return
	}

	var deferLength bool
	if length == 0 {
		if r.Header.Get("Upload-Defer-Length") != "1" {
			h.sendError(w, log, ErrMissingDeferLength)
			return
		}
		deferLength = true
	} else if length > h.config.MaxSize {
		h.sendError(w, log, ErrMaxSizeExceeded)
		return
	}

	id := strings.ReplaceAll(uuid.New().String(), "-", "")
	log = log.With("id", id)

	meta := ParseMetadataHeader(r.Header.Get("Upload-Metadata"))

	path, err := h.config.TargetPathFactory.Path(id, meta)
	if err != nil {
		log.Error("TargetPathError", "error", err)
		h.sendError(w, log, err)
		return
	}

	rec := UploadRecord{
		ID:       id,
		Length:   length,
		Defer:    deferLength,
		MetaData: meta,
		File:     path,
	}

	if err := h.config.MetadataStore.Set(r.Context(), id, rec, TTLDefault()); err != nil {
		log.Error("MetadataStoreError", "error", err)
		h.sendError(w, log, err)
		return
	}

	if err := h.config.FileStore.Create(path); err != nil {
		if derr := h.config.MetadataStore.Delete(r.Context(), id); derr != nil {
			log.Warn("failed to roll back record after file create failure", "id", id, "error", derr)
		}
		log.Error("FileCreateError", "error", err)
		h.sendError(w, log, err)
		return
	}

	h.Metrics.incUploadsCreated()

	created := HTTPResponse{
		StatusCode: 201,
		Header: HTTPHeader{
			"Location": h.config.LocationProvider.ProvideLocation(id, r),
		},
	}
	if deferLength {
		created.Header["Upload-Defer-Length"] = "1"
	}

	if r.Header.Get("Content-Type") == contentTypeOffsetOctetStream {
		resp := h.doPatch(r.Context(), log, w, r, id, true, 0)
		h.sendResp(w, created.MergeWith(resp))
		return
	}

	created.Header["Upload-Offset"] = "0"
	h.publish(Event{Type: EventUploadStarted, ID: id, File: path, MetaData: meta})
	h.sendResp(w, created)
}
