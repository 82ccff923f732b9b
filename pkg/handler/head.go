package handler

import (
	"net/http"
	"strconv"
)

func (h *Handler) head(w http.ResponseWriter, r *http.Request) {
	log := h.requestLogger(r.Context(), r)

	id, err := h.config.LocationProvider.ProvideUuid(r)
	if err != nil {
		h.sendError(w, log, ErrUnexpectedValue)
		return
	}

	rec, ok, err := h.config.MetadataStore.Get(r.Context(), id)
	if err != nil {
		log.Error("MetadataStoreError", "error", err)
		h.sendError(w, log, err)
		return
	}
	if !ok {
		h.sendError(w, log, ErrNotFound)
		return
	}

	if !h.config.FileStore.Exists(rec.File) {
		if derr := h.config.MetadataStore.Delete(r.Context(), id); derr != nil {
			log.Warn("failed to delete orphaned record", "id", id, "error", derr)
		}
		h.sendError(w, log, ErrNotFound)
		return
	}

	header := HTTPHeader{
		"Upload-Offset": strconv.FormatInt(h.config.FileStore.Size(rec.File), 10),
	}
	if !rec.Defer {
		header["Upload-Length"] = strconv.FormatInt(rec.Length, 10)
	}

	h.sendResp(w, HTTPResponse{StatusCode: 200, Header: header})
}
