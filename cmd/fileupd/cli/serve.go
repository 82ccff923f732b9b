package cli

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fileup/fileupd/pkg/eventbus"
	"github.com/fileup/fileupd/pkg/filestore"
	"github.com/fileup/fileupd/pkg/handler"
	"github.com/fileup/fileupd/pkg/locationprovider"
	"github.com/fileup/fileupd/pkg/memorystore"
	"github.com/fileup/fileupd/pkg/redisstore"
	"github.com/fileup/fileupd/pkg/targetpath"
)

// Serve sets up the different components, starts a Listener and gives it
// to http.Serve().
//
// By default it will bind to the specified host/port, unless a UNIX socket
// is specified, in which case a different socket creation and binding
// mechanism is put in place.
func Serve() {
	logger := slog.Default()

	if err := os.MkdirAll(Flags.UploadDir, os.FileMode(0775)); err != nil {
		stderr.Fatalf("Unable to ensure upload directory exists: %s", err)
	}
	stdout.Printf("Using '%s' as directory storage.\n", Flags.UploadDir)

	paths, err := targetpath.New(Flags.UploadDir)
	if err != nil {
		stderr.Fatalf("Unable to use upload directory: %s", err)
	}

	store := createMetadataStore(logger)

	provider := locationprovider.New(Flags.Basepath)
	provider.RespectForwardedHeaders = Flags.BehindProxy

	bus := createEventBus(logger)

	h, err := handler.NewHandler(handler.Config{
		MetadataStore:     store,
		FileStore:         filestore.New(Flags.UploadDir),
		LocationProvider:  provider,
		TargetPathFactory: paths,
		EventBus:          bus,

		MaxSize:                        Flags.MaxSize,
		AllowGetCalls:                  Flags.EnableDownload,
		AllowGetCallsForPartialUploads: Flags.AllowPartialDownloads,
		StorageTTLAfterUploadComplete:  parseCompleteTTL(),
		UseIntermediateChunk:           Flags.UseIntermediateChunk,
		ChunkDirectory:                 Flags.ChunkDir,

		BasePath:                Flags.Basepath,
		RespectForwardedHeaders: Flags.BehindProxy,
		NetworkTimeout:          Flags.ReadTimeout,
		Logger:                  logger,
	})
	if err != nil {
		stderr.Fatalf("Unable to create handler: %s", err)
	}

	basepath := Flags.Basepath
	address := ""

	if Flags.HttpSock != "" {
		address = Flags.HttpSock
		stdout.Printf("Using %s as socket to listen.\n", address)
	} else {
		address = Flags.HttpHost + ":" + Flags.HttpPort
		stdout.Printf("Using %s as address to listen.\n", address)
	}

	stdout.Printf("Using %s as the base path.\n", basepath)

	mux := http.NewServeMux()
	if basepath == "/" {
		// If the basepath is set to the root path, only install the upload
		// handler and do not show a greeting.
		mux.Handle("/", http.StripPrefix("/", h))
	} else {
		// If a custom basepath is defined, we show a greeting at the root
		// path...
		if Flags.ShowGreeting {
			mux.HandleFunc("/", DisplayGreeting)
		}

		// ... and register a route with and without the trailing slash, so
		// we can handle uploads for /files/ and /files, for example.
		basepathWithoutSlash := strings.TrimSuffix(basepath, "/")
		basepathWithSlash := basepathWithoutSlash + "/"

		mux.Handle(basepathWithSlash, http.StripPrefix(basepathWithSlash, h))
		mux.Handle(basepathWithoutSlash, http.StripPrefix(basepathWithoutSlash, h))
	}

	if Flags.ExposeMetrics {
		SetupMetrics(mux, h)
	}

	var listener net.Listener
	if Flags.HttpSock != "" {
		listener, err = NewUnixListener(address, Flags.ReadTimeout, Flags.ReadTimeout)
	} else {
		listener, err = NewListener(address, Flags.ReadTimeout, Flags.ReadTimeout)
	}
	if err != nil {
		stderr.Fatalf("Unable to create listener: %s", err)
	}

	if Flags.HttpSock == "" {
		stdout.Printf("You can now upload files to: http://%s%s", listener.Addr(), basepath)
	}

	server := &http.Server{
		Handler: mux,
	}

	shutdownComplete := setupSignalHandler(server)

	err = server.Serve(listener)

	// Note: http.Server.Serve always returns a non-nil error, so we can
	// assume from here that `err != nil`.
	if err == http.ErrServerClosed {
		// ErrServerClosed means that http.Server.Shutdown was called due to
		// an interruption signal. We wait until the interruption procedure
		// is complete or times out and then exit main.
		<-shutdownComplete
	} else {
		// Any other error is relayed to the user.
		stderr.Fatalf("Unable to serve: %s", err)
	}
}

// createMetadataStore picks the record store implementation based on the
// -redis flag: Redis when an URI is given, the in-process store otherwise.
func createMetadataStore(logger *slog.Logger) handler.MetadataStore {
	if Flags.RedisURI == "" {
		stdout.Printf("Keeping upload records in process memory.\n")
		return memorystore.New(time.Minute)
	}

	opts := []redisstore.Option{redisstore.WithLogger(logger)}
	if Flags.RedisKeyPrefix != "" {
		opts = append(opts, redisstore.WithKeyPrefix(Flags.RedisKeyPrefix))
	}

	store, err := redisstore.New(Flags.RedisURI, opts...)
	if err != nil {
		stderr.Fatalf("Unable to connect to Redis: %s", err)
	}

	stdout.Printf("Keeping upload records in Redis.\n")
	return store
}

// createEventBus builds the event bus with every configured subscriber:
// the structured log always, plus the webhook and script subscribers when
// their flags are set.
func createEventBus(logger *slog.Logger) *eventbus.Bus {
	bus := eventbus.New()
	bus.Subscribe(eventbus.LogSubscriber(logger))

	if Flags.WebhookEndpoint != "" {
		bus.Subscribe(&eventbus.Webhook{
			Endpoint:   Flags.WebhookEndpoint,
			MaxRetries: Flags.WebhookRetry,
			Backoff:    Flags.WebhookBackoff,
			Logger:     logger,
		})
		stdout.Printf("Sending upload events to %s.\n", Flags.WebhookEndpoint)
	}

	if Flags.HooksDir != "" {
		bus.Subscribe(eventbus.ScriptRunner{
			Directory: Flags.HooksDir,
			Logger:    logger,
		})
		stdout.Printf("Using '%s' for event scripts.\n", Flags.HooksDir)
	}

	return bus
}

// parseCompleteTTL maps the -complete-ttl flag onto the handler's
// tri-state TTL: the store's default retention, no expiry at all, or a
// fixed duration.
func parseCompleteTTL() handler.TTL {
	switch Flags.CompleteTTL {
	case "", "default":
		return handler.TTLDefault()
	case "none":
		return handler.TTLNone()
	}

	d, err := time.ParseDuration(Flags.CompleteTTL)
	if err != nil || d < 0 {
		stderr.Fatalf("Invalid value for -complete-ttl flag: %s", Flags.CompleteTTL)
	}
	return handler.TTLSeconds(int64(d / time.Second))
}

func setupSignalHandler(server *http.Server) <-chan struct{} {
	shutdownComplete := make(chan struct{})

	// We read up to two signals, so use a capacity of 2 here to not miss
	// any signal.
	c := make(chan os.Signal, 2)

	// os.Interrupt is mapped to SIGINT on Unix and to the termination
	// instructions on Windows. On Unix we also listen to SIGTERM.
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		// First interrupt signal
		<-c
		stdout.Println("Received interrupt signal. Shutting down fileupd...")

		// Wait for a second interrupt signal, while also shutting down the
		// existing server.
		go func() {
			<-c
			stdout.Println("Received second interrupt signal. Exiting immediately!")
			os.Exit(1)
		}()

		// Shutdown the server, but with a user-specified timeout
		ctx, cancel := context.WithTimeout(context.Background(), Flags.ShutdownTimeout)
		defer cancel()

		err := server.Shutdown(ctx)

		if err == nil {
			stdout.Println("Shutdown completed. Goodbye!")
		} else if errors.Is(err, context.DeadlineExceeded) {
			stderr.Println("Shutdown timeout exceeded. Exiting immediately!")
		} else {
			stderr.Printf("Failed to shutdown gracefully: %s\n", err)
		}

		close(shutdownComplete)
	}()

	return shutdownComplete
}
