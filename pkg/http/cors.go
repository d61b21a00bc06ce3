package http

import (
	"net/http"
	"strconv"
	"strings"

	"k8s.io/klog/v2"

	"github.com/worklocal/worklocal-mcp-server/pkg/config"
)

const (
	corsAllowedMethods = "GET, POST, DELETE, OPTIONS"
	corsAllowedHeaders = "Authorization, Content-Type, Accept, Mcp-Session-Id, Mcp-Protocol-Version, Last-Event-ID"
	corsExposeHeaders  = "Content-Type, Mcp-Session-Id"
	corsDefaultMaxAge  = 86400
)

// corsPolicy is the resolved form of config.CORSConfig.
type corsPolicy struct {
	anyOrigin bool
	origins   map[string]struct{}
	maxAge    string
}

func newCORSPolicy(corsConfig *config.CORSConfig) *corsPolicy {
	p := &corsPolicy{origins: make(map[string]struct{}, len(corsConfig.Origins))}
	if len(corsConfig.Origins) == 1 && corsConfig.Origins[0] == "*" {
		p.anyOrigin = true
	}
	for _, origin := range corsConfig.Origins {
		p.origins[normalizeOrigin(origin)] = struct{}{}
	}
	maxAge := corsConfig.MaxAge
	if maxAge == 0 {
		maxAge = corsDefaultMaxAge
	}
	p.maxAge = strconv.Itoa(maxAge)
	return p
}

func normalizeOrigin(origin string) string {
	return strings.TrimSuffix(origin, "/")
}

func (p *corsPolicy) allows(origin string) bool {
	if origin == "" {
		return false
	}
	if p.anyOrigin {
		return true
	}
	_, ok := p.origins[normalizeOrigin(origin)]
	return ok
}

// grant writes the response headers for an allowed origin.
// Credentials are only allowed for explicit origins.
func (p *corsPolicy) grant(h http.Header, origin string) {
	if p.anyOrigin {
		h.Set("Access-Control-Allow-Origin", "*")
	} else {
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Add("Vary", "Origin")
	}
	h.Set("Access-Control-Expose-Headers", corsExposeHeaders)
}

func (p *corsPolicy) preflight(h http.Header) {
	h.Set("Access-Control-Allow-Methods", corsAllowedMethods)
	h.Set("Access-Control-Allow-Headers", corsAllowedHeaders)
	h.Set("Access-Control-Max-Age", p.maxAge)
}

// CORSMiddleware lets browser based MCP clients reach the HTTP transports from the configured origins.
// A nil configuration disables CORS handling.
func CORSMiddleware(corsConfig *config.CORSConfig) func(http.Handler) http.Handler {
	if corsConfig == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	policy := newCORSPolicy(corsConfig)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			preflight := r.Method == http.MethodOptions
			switch {
			case !policy.allows(origin) && preflight:
				klog.V(2).Infof("CORS preflight request rejected for origin %q", origin)
				w.WriteHeader(http.StatusForbidden)
			case !policy.allows(origin):
				next.ServeHTTP(w, r)
			case preflight:
				policy.grant(w.Header(), origin)
				policy.preflight(w.Header())
				klog.V(5).Infof("CORS preflight request from origin %s", origin)
				w.WriteHeader(http.StatusNoContent)
			default:
				policy.grant(w.Header(), origin)
				next.ServeHTTP(w, r)
			}
		})
	}
}
