package cli

import (
	"time"

	"github.com/jnovack/flag"

	"github.com/fileup/fileupd/internal/grouped_flags"
)

var Flags struct {
	HttpHost     string
	HttpPort     string
	HttpSock     string
	BehindProxy  bool
	ShowGreeting bool

	MaxSize  int64
	Basepath string

	UploadDir            string
	UseIntermediateChunk bool
	ChunkDir             string

	RedisURI       string
	RedisKeyPrefix string
	CompleteTTL    string

	EnableDownload        bool
	AllowPartialDownloads bool

	WebhookEndpoint string
	WebhookRetry    int
	WebhookBackoff  time.Duration
	HooksDir        string

	ExposeMetrics bool
	MetricsPath   string

	ReadTimeout     time.Duration
	ShutdownTimeout time.Duration

	VerboseOutput bool
	ShowVersion   bool
}

func ParseFlags() {
	fs := grouped_flags.NewFlagGroupSet(flag.ExitOnError)

	fs.AddGroup("Listening options", func(f *flag.FlagSet) {
		f.StringVar(&Flags.HttpHost, "host", "0.0.0.0", "Host to bind HTTP server to")
		f.StringVar(&Flags.HttpPort, "port", "1080", "Port to bind HTTP server to")
		f.StringVar(&Flags.HttpSock, "unix-sock", "", "If set, will listen to a UNIX socket at this location instead of a TCP socket")
		f.BoolVar(&Flags.BehindProxy, "behind-proxy", false, "Respect X-Forwarded-* and similar headers which may be set by proxies")
		f.BoolVar(&Flags.ShowGreeting, "show-greeting", true, "Show the greeting message at the root path")
	})

	fs.AddGroup("Upload protocol options", func(f *flag.FlagSet) {
		f.Int64Var(&Flags.MaxSize, "max-size", 1024*1024*1024, "Maximum size of a single upload in bytes")
		f.StringVar(&Flags.Basepath, "base-path", "/files/", "Basepath of the HTTP server")
	})

	fs.AddGroup("Storage options", func(f *flag.FlagSet) {
		f.StringVar(&Flags.UploadDir, "upload-dir", "./data", "Directory to store uploads in")
		f.BoolVar(&Flags.UseIntermediateChunk, "use-intermediate-chunk", false, "Stage request bodies in a temporary chunk file before appending them to the upload")
		f.StringVar(&Flags.ChunkDir, "chunk-dir", "", "Directory for intermediate chunk files. Defaults to the OS temporary directory")
	})

	fs.AddGroup("Record store options", func(f *flag.FlagSet) {
		f.StringVar(&Flags.RedisURI, "redis", "", "Keep upload records in Redis at this URI (e.g. redis://localhost:6379/0) instead of in process memory")
		f.StringVar(&Flags.RedisKeyPrefix, "redis-key-prefix", "", "Prefix for the Redis keys holding upload records")
		f.StringVar(&Flags.CompleteTTL, "complete-ttl", "default", "Retention for a record once its upload completes, bounding how long downloads remain possible. Either 'default' (keep the store's retention), 'none' (never expire), or a duration such as 24h")
	})

	fs.AddGroup("Download options", func(f *flag.FlagSet) {
		f.BoolVar(&Flags.EnableDownload, "enable-download", false, "Serve completed uploads back over GET requests")
		f.BoolVar(&Flags.AllowPartialDownloads, "allow-partial-downloads", false, "Also serve uploads over GET before they are complete")
	})

	fs.AddGroup("Event options", func(f *flag.FlagSet) {
		f.StringVar(&Flags.WebhookEndpoint, "hooks-http", "", "An HTTP endpoint to which upload events will be sent as JSON POST requests")
		f.IntVar(&Flags.WebhookRetry, "hooks-http-retry", 3, "Number of times to retry a webhook delivery on a 5xx response or network error")
		f.DurationVar(&Flags.WebhookBackoff, "hooks-http-backoff", time.Second, "Pause between webhook delivery retries")
		f.StringVar(&Flags.HooksDir, "hooks-dir", "", "Directory to search for event scripts, named after the event they handle (UploadStarted, UploadComplete)")
	})

	fs.AddGroup("Monitoring options", func(f *flag.FlagSet) {
		f.BoolVar(&Flags.ExposeMetrics, "expose-metrics", true, "Expose metrics about fileupd usage")
		f.StringVar(&Flags.MetricsPath, "metrics-path", "/metrics", "Path under which the metrics endpoint will be accessible")
	})

	fs.AddGroup("Timeout options", func(f *flag.FlagSet) {
		f.DurationVar(&Flags.ReadTimeout, "read-timeout", 60*time.Second, "Network read timeout. If the server does not receive data for this duration, it will consider the connection dead. A zero value means that network reads will not time out")
		f.DurationVar(&Flags.ShutdownTimeout, "shutdown-timeout", 10*time.Second, "How long to wait for in-flight requests when shutting down after an interrupt signal")
	})

	fs.AddGroup("Other options", func(f *flag.FlagSet) {
		f.BoolVar(&Flags.VerboseOutput, "verbose", false, "Enable verbose logging output")
		f.BoolVar(&Flags.ShowVersion, "version", false, "Print fileupd version information")
	})

	fs.Parse()
}
