package handler

import (
	"errors"
	"log/slog"
	"net/url"
	"os"
	"time"
)

// Config configures a Handler.
type Config struct {
	// MetadataStore is where upload records are kept. Required.
	MetadataStore MetadataStore
	// FileStore does the filesystem work of creating, appending to, and
	// removing upload files. Required.
	FileStore FileStore
	// LocationProvider derives upload ids from requests and builds
	// Location URLs. Required.
	LocationProvider LocationProvider
	// TargetPathFactory chooses where a newly created upload's bytes are
	// written. Required.
	TargetPathFactory TargetPathFactory
	// EventBus receives UploadStarted/UploadComplete notifications. If
	// nil, events are not dispatched.
	EventBus EventBus

	// MaxSize is the ceiling on any single upload's length, advertised
	// via Tus-Max-Size and enforced against Upload-Length and against the
	// streamed byte count. Defaults to 1 GiB if zero.
	MaxSize int64
	// AllowGetCalls enables the non-protocol GET download facility.
	AllowGetCalls bool
	// AllowGetCallsForPartialUploads additionally serves incomplete
	// uploads through GET, when AllowGetCalls is true.
	AllowGetCallsForPartialUploads bool
	// StorageTTLAfterUploadComplete is the TTL applied to a record once
	// it completes, bounding how long GET remains possible. Defaults to
	// TTLDefault.
	StorageTTLAfterUploadComplete TTL
	// UseIntermediateChunk routes PATCH bodies through a staging file
	// before they reach the target, reserving a hook for a future
	// checksum extension.
	UseIntermediateChunk bool
	// ChunkDirectory is where intermediate chunk files are created when
	// UseIntermediateChunk is set. Defaults to os.TempDir().
	ChunkDirectory string

	// BasePath is the URL path this handler is mounted under, e.g.
	// "/files/". NewHandler checks that it parses as a URL and adds a
	// trailing slash; the handler does not otherwise read it; Location
	// headers are built by the LocationProvider.
	BasePath string
	// RespectForwardedHeaders records whether a proxy's
	// X-Forwarded-Host/-Proto and Forwarded headers are trusted. The
	// handler does not read it: Location URLs come from the
	// LocationProvider, which has its own setting for this.
	RespectForwardedHeaders bool
	// NetworkTimeout sets a read deadline on the connection when a PATCH
	// starts reading its body, NetworkTimeout from that moment. The
	// handler does not extend the deadline as data arrives. Zero
	// disables the timeout.
	NetworkTimeout time.Duration
	// Logger receives structured log output. Defaults to slog.Default().
	Logger *slog.Logger
}

func (c *Config) validate() error {
	if c.MetadataStore == nil {
		return errors.New("handler: Config.MetadataStore must not be nil")
	}
	if c.FileStore == nil {
		return errors.New("handler: Config.FileStore must not be nil")
	}
	if c.LocationProvider == nil {
		return errors.New("handler: Config.LocationProvider must not be nil")
	}
	if c.TargetPathFactory == nil {
		return errors.New("handler: Config.TargetPathFactory must not be nil")
	}

	if c.MaxSize <= 0 {
		c.MaxSize = 1024 * 1024 * 1024
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.ChunkDirectory == "" {
		c.ChunkDirectory = defaultChunkDirectory()
	}

	base := c.BasePath
	if base != "" {
		if _, err := url.Parse(base); err != nil {
			return err
		}
		if base[len(base)-1] != '/' {
			base += "/"
		}
	}
	c.BasePath = base

	return nil
}

func defaultChunkDirectory() string {
	return os.TempDir()
}
