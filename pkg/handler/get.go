package handler

import (
	"io"
	"net/http"
	"path/filepath"
	"strconv"
)

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	log := h.requestLogger(r.Context(), r)

	if !h.config.AllowGetCalls {
		h.sendError(w, log, ErrGetDisabled)
		return
	}

	id, err := h.config.LocationProvider.ProvideUuid(r)
	if err != nil {
		h.sendError(w, log, ErrUnexpectedValueOnGet)
		return
	}
	log = log.With("id", id)

	rec, ok, err := h.config.MetadataStore.Get(r.Context(), id)
	if err != nil {
		h.sendError(w, log, err)
		return
	}
	if !ok {
		h.sendError(w, log, ErrNotFound)
		return
	}
	if !h.config.FileStore.Exists(rec.File) {
		h.sendError(w, log, ErrNotFound)
		return
	}

	if !rec.Complete && !h.config.AllowGetCallsForPartialUploads {
		h.sendError(w, log, ErrGetIncomplete)
		return
	}

	file, err := h.config.FileStore.Open(rec.File)
	if err != nil {
		log.Error("FileOpenError", "error", err)
		h.sendError(w, log, err)
		return
	}
	defer file.Close()

	size := h.config.FileStore.Size(rec.File)

	header := w.Header()
	header.Set("Content-Length", strconv.FormatInt(size, 10))
	header.Set("Content-Disposition", `attachment; filename="`+filepath.Base(rec.File)+`"`)
	header.Set("Content-Transfer-Encoding", "binary")
	if contentType, ok := rec.MetaData["type"]; ok && contentType != "" {
		header.Set("Content-Type", contentType)
	}

	w.WriteHeader(200)
	if _, err := io.Copy(w, file); err != nil {
		log.Warn("error streaming upload to client", "error", err)
	}
}
