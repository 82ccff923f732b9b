// Package locationprovider implements handler.LocationProvider by reading
// the upload id from the part of the request path below a configured base
// path, and building Location URLs relative to that base path.
package locationprovider

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/fileup/fileupd/pkg/handler"
)

var idPattern = regexp.MustCompile(`^[0-9a-f]{32}$`)

var (
	reForwardedHost  = regexp.MustCompile(`host="?([^;"]+)`)
	reForwardedProto = regexp.MustCompile(`proto=(https?)`)
)

// PathProvider is the default handler.LocationProvider: it derives ids
// from the request path below BasePath, which after trimming surrounding
// slashes must be exactly one 32-hex-digit id (deeper paths are
// rejected), and builds
// Location URLs by joining BasePath with the id, optionally resolving an
// absolute URL via RespectForwardedHeaders.
type PathProvider struct {
	// BasePath is the URL path this handler is mounted under, e.g.
	// "/files/". Must end in a slash.
	BasePath string
	// RespectForwardedHeaders makes ProvideLocation honor
	// X-Forwarded-Host/-Proto and Forwarded headers set by a proxy,
	// rather than trusting only r.Host/r.TLS.
	RespectForwardedHeaders bool
	// AbsoluteLocation forces ProvideLocation to always build an
	// absolute URL, even without RespectForwardedHeaders.
	AbsoluteLocation bool
}

// New creates a PathProvider mounted at basePath, normalizing it to end
// in a trailing slash.
func New(basePath string) *PathProvider {
	if basePath != "" && !strings.HasSuffix(basePath, "/") {
		basePath += "/"
	}
	return &PathProvider{BasePath: basePath}
}

func (p *PathProvider) ProvideUuid(r *http.Request) (string, error) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, p.BasePath), "/")
	if !idPattern.MatchString(id) {
		return "", handler.ErrUnexpectedValue
	}
	return id, nil
}

func (p *PathProvider) ProvideLocation(id string, r *http.Request) string {
	path := p.BasePath + id

	if !p.AbsoluteLocation && !p.RespectForwardedHeaders {
		return path
	}

	host, proto := getHostAndProtocol(r, p.RespectForwardedHeaders)
	return proto + "://" + host + path
}

func getHostAndProtocol(r *http.Request, allowForwarded bool) (host, proto string) {
	if r.TLS != nil {
		proto = "https"
	} else {
		proto = "http"
	}
	host = r.Host

	if !allowForwarded {
		return
	}

	if h := r.Header.Get("X-Forwarded-Host"); h != "" {
		host = h
	}
	if h := r.Header.Get("X-Forwarded-Proto"); h == "http" || h == "https" {
		proto = h
	}
	if h := r.Header.Get("Forwarded"); h != "" {
		if m := reForwardedHost.FindStringSubmatch(h); len(m) == 2 {
			host = m[1]
		}
		if m := reForwardedProto.FindStringSubmatch(h); len(m) == 2 {
			proto = m[1]
		}
	}

	return
}
