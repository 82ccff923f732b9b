// Package handler implements the tus 1.0.0 resumable upload protocol core
// plus the creation, creation-defer-length and creation-with-upload
// extensions, and an optional non-protocol GET download facility.
//
// Handler expects to be mounted at a base path with http.StripPrefix, the
// same convention tusd uses: requests to the base path itself create new
// uploads (POST), and requests to "<base>/<id>" address an existing one
// (HEAD, PATCH, GET).
package handler

import (
	"log/slog"
	"net/http"
	"strconv"
)

const tusVersion = "1.0.0"
const tusExtensions = "creation, creation-defer-length, creation-with-upload"

// Handler is the protocol dispatcher (C7 in the design). It holds no
// per-request state; a single Handler safely serves concurrent requests.
type Handler struct {
	config Config
	logger *slog.Logger
	locks  *lockTable

	// Metrics exposes counters for pkg/prometheuscollector.
	Metrics Metrics
}

// NewHandler constructs a Handler from config. It returns an error if any
// required collaborator is missing.
func NewHandler(config Config) (*Handler, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}

	return &Handler{
		config:  config,
		logger:  config.Logger,
		locks:   newLockTable(),
		Metrics: newMetrics(),
	}, nil
}

// ServeHTTP implements http.Handler. It resolves the effective method,
// enforces the Tus-Resumable header, and dispatches to the method-specific
// handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	method := r.Method
	if override := r.Header.Get("X-HTTP-Method-Override"); override != "" {
		method = override
	}

	log := h.logger.With("method", method, "path", r.URL.Path)
	ctx := withLogger(r.Context(), log)
	r = r.WithContext(ctx)

	h.Metrics.incRequestsTotal(method)

	header := w.Header()
	header.Set("Tus-Resumable", tusVersion)
	header.Set("Cache-Control", "no-store")

	if method != "GET" && r.Header.Get("Tus-Resumable") != tusVersion {
		h.sendError(w, log, ErrUnsupportedVersion)
		return
	}

	switch method {
	case "OPTIONS":
		h.options(w, r)
	case "HEAD":
		h.head(w, r)
	case "POST":
		h.post(w, r)
	case "PATCH":
		h.patch(w, r)
	case "GET":
		h.get(w, r)
	default:
		h.sendError(w, log, ErrUnsupportedMethod)
	}
}

// errorResp renders err as an HTTPResponse, logging it at a level that
// matches its visibility to the client: known protocol Errors at Info,
// everything else (filesystem/store failures) at Error.
func (h *Handler) errorResp(log *slog.Logger, err error) HTTPResponse {
	if herr, ok := err.(Error); ok {
		log.Info("RequestError", "code", herr.ErrorCode, "status", herr.HTTPResponse.StatusCode)
		return herr.HTTPResponse
	}
	log.Error("RequestError", "error", err)
	return HTTPResponse{StatusCode: 500, Body: "internal server error\n"}
}

func (h *Handler) sendError(w http.ResponseWriter, log *slog.Logger, err error) {
	h.sendResp(w, h.errorResp(log, err))
}

func (h *Handler) sendResp(w http.ResponseWriter, resp HTTPResponse) {
	if resp.StatusCode >= 400 {
		h.Metrics.incErrorsTotal(resp.StatusCode)
	}
	resp.writeTo(w)
}

// uploadIDFromRequest derives the upload id either from id (supplied by a
// caller that already knows it, e.g. POST delegating to PATCH for
// creation-with-upload) or from the configured LocationProvider.
func (h *Handler) uploadIDFromRequest(id string, r *http.Request) (string, error) {
	if id != "" {
		return id, nil
	}
	return h.config.LocationProvider.ProvideUuid(r)
}

// parseNonNegativeInt parses s as a non-negative integer, treating an
// absent header (empty string) as 0 — the default for Upload-Length on
// POST, where omitting the header means "not yet known".
func parseNonNegativeInt(s string) (int64, bool) {
	if s == "" {
		return 0, true
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// parseRequiredNonNegativeInt parses s as a non-negative integer, treating
// an absent header as invalid. Used for Upload-Offset, which PATCH always
// requires.
func parseRequiredNonNegativeInt(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	return parseNonNegativeInt(s)
}

