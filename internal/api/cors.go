package api

import (
	"net/http"
	"strconv"
	"strings"
)

type CORSOptions struct {
	// AllowedOrigins lists exact origins. "*" admits any origin and is meant
	// for local development only.
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	ExposedHeaders []string
	MaxAgeSeconds  int
}

type corsPolicy struct {
	any     bool
	origins map[string]struct{}
	methods string
	headers string
	exposed string
	maxAge  string
}

func newCORSPolicy(opts CORSOptions) corsPolicy {
	p := corsPolicy{
		origins: make(map[string]struct{}, len(opts.AllowedOrigins)),
		methods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		headers: "Authorization, Content-Type",
		exposed: strings.Join(opts.ExposedHeaders, ", "),
		maxAge:  "600",
	}
	for _, o := range opts.AllowedOrigins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			p.any = true
			continue
		}
		if o != "" {
			p.origins[o] = struct{}{}
		}
	}
	if len(opts.AllowedMethods) > 0 {
		p.methods = strings.Join(opts.AllowedMethods, ", ")
	}
	if len(opts.AllowedHeaders) > 0 {
		p.headers = strings.Join(opts.AllowedHeaders, ", ")
	}
	if opts.MaxAgeSeconds > 0 {
		p.maxAge = strconv.Itoa(opts.MaxAgeSeconds)
	}
	return p
}

func (p corsPolicy) allows(origin string) bool {
	if origin == "" {
		return false
	}
	if p.any {
		return true
	}
	_, ok := p.origins[origin]
	return ok
}

// CORSMiddleware answers preflights itself and decorates responses for
// allowed browser origins. Requests without an Origin header pass through.
func CORSMiddleware(opts CORSOptions) func(http.Handler) http.Handler {
	p := newCORSPolicy(opts)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			h := w.Header()
			h.Add("Vary", "Origin")
			if p.allows(origin) {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Methods", p.methods)
				h.Set("Access-Control-Allow-Headers", p.headers)
				h.Set("Access-Control-Max-Age", p.maxAge)
				if p.exposed != "" {
					h.Set("Access-Control-Expose-Headers", p.exposed)
				}
			}

			if r.Method == http.MethodOptions && origin != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
