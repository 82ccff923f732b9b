package handler

import (
	"context"
	"net/http"
)

// MetaData is the parsed form of the Upload-Metadata header: a mapping of
// keys to decoded string values.
type MetaData map[string]string

// UploadRecord is the canonical per-upload entity, stored in a MetadataStore
// under the upload's identifier.
type UploadRecord struct {
	// ID is the 32-hex-digit upload identifier.
	ID string `json:"id"`
	// Length is the total upload size in bytes. Zero iff Defer is true.
	Length int64 `json:"length"`
	// Defer indicates the final length is unknown and will be fixed by a
	// later PATCH.
	Defer bool `json:"defer"`
	// Complete indicates the declared length has been fully received.
	Complete bool `json:"complete"`
	// MetaData is the parsed Upload-Metadata from creation. Immutable
	// after the record is created.
	MetaData MetaData `json:"metadata"`
	// File is the absolute path to the target file on the local
	// filesystem.
	File string `json:"file"`
}

// TTL expresses how long a MetadataStore should retain a record as an
// explicit tri-state, so no numeric sentinel value leaks into the store
// contract.
type TTL struct {
	kind ttlKind
	secs int64
}

type ttlKind int

const (
	ttlDefault ttlKind = iota
	ttlNone
	ttlSeconds
)

// TTLDefault defers to the store's own default retention policy.
func TTLDefault() TTL { return TTL{kind: ttlDefault} }

// TTLNone requests that the record never expire on its own.
func TTLNone() TTL { return TTL{kind: ttlNone} }

// TTLSeconds requests that the record expire after the given number of
// seconds. Zero is a valid, immediate expiry.
func TTLSeconds(secs int64) TTL { return TTL{kind: ttlSeconds, secs: secs} }

// IsDefault reports whether this is the "use store default" sentinel.
func (t TTL) IsDefault() bool { return t.kind == ttlDefault }

// IsNone reports whether this TTL means "never expire".
func (t TTL) IsNone() bool { return t.kind == ttlNone }

// Seconds returns the configured duration and whether one was set at all
// (i.e. the TTL is neither TTLDefault nor TTLNone).
func (t TTL) Seconds() (int64, bool) { return t.secs, t.kind == ttlSeconds }

// MetadataStore is the TTL-capable key/value mapping of upload identifier to
// UploadRecord described in the protocol's metadata store contract. It is
// an external collaborator: pkg/memorystore and pkg/redisstore provide two
// interchangeable implementations.
type MetadataStore interface {
	// Get returns the record for id, or ok == false if no such record
	// exists (including if it has expired).
	Get(ctx context.Context, id string) (rec UploadRecord, ok bool, err error)
	// Set stores rec under id, applying ttl as described by the TTL type.
	Set(ctx context.Context, id string, rec UploadRecord, ttl TTL) error
	// Delete removes the record for id. It is idempotent: deleting an
	// absent key is not an error.
	Delete(ctx context.Context, id string) error
}

// LocationProvider is the bidirectional mapping between requests and upload
// identifiers. It is pluggable because deriving and building URLs depends
// on the host's routing, which this package does not own.
type LocationProvider interface {
	// ProvideUuid extracts the upload identifier that r addresses. It
	// returns ErrUnexpectedValue if the request does not encode one.
	ProvideUuid(r *http.Request) (string, error)
	// ProvideLocation builds the absolute or request-relative URL at
	// which subsequent PATCH/HEAD/GET requests for id should be directed.
	ProvideLocation(id string, r *http.Request) string
}

// TargetPathFactory chooses the absolute filesystem path that an upload's
// bytes will be written to. It is pluggable so that callers can shard
// uploads across directories, rename by metadata, etc.
type TargetPathFactory interface {
	// Path returns the absolute path at which id's bytes should be
	// stored, given the client-supplied metadata from creation.
	Path(id string, meta MetaData) (string, error)
}
