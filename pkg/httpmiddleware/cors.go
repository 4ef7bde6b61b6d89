package httpmiddleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig configures cross-origin access to the storefront API.
type CORSConfig struct {
	// AllowOrigins lists origins allowed to call the API. Empty, or a single
	// "*" entry, allows any origin.
	AllowOrigins []string

	// AllowHeaders lists request headers clients may send. When empty, a
	// preflight echoes back whatever headers the client asked for.
	AllowHeaders []string

	// AllowCredentials permits cookie-carrying requests. The session cookie
	// needs it for cross-origin storefronts.
	AllowCredentials bool

	// MaxAge is how long, in seconds, browsers may cache preflight results.
	MaxAge int
}

// allowedMethods covers every route the API serves.
const allowedMethods = "GET, POST, OPTIONS"

// cors holds the precomputed allow values.
type cors struct {
	wildcard    bool
	echoAny     bool
	origins     map[string]string // lowercased origin -> configured spelling
	headers     string
	credentials bool
	maxAge      string
}

// CORS returns a middleware handling cross-origin requests. Preflights are
// answered directly with 204; actual requests are annotated and passed on.
// Origin matching is case-insensitive, and conditional responses vary on
// Origin so a shared cache never replays one origin's answer to another.
func CORS(cfg CORSConfig) Middleware {
	c := &cors{
		wildcard:    len(cfg.AllowOrigins) == 0,
		origins:     make(map[string]string, len(cfg.AllowOrigins)),
		headers:     strings.Join(cfg.AllowHeaders, ", "),
		credentials: cfg.AllowCredentials,
	}
	for _, o := range cfg.AllowOrigins {
		if o == "*" {
			c.wildcard = true
			continue
		}
		c.origins[strings.ToLower(o)] = o
	}
	// Browsers reject "*" combined with credentials, so when every origin is
	// allowed the caller's own origin is echoed instead.
	if c.credentials && c.wildcard {
		c.wildcard = false
		c.echoAny = true
	}
	if cfg.MaxAge > 0 {
		c.maxAge = strconv.Itoa(cfg.MaxAge)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				c.preflight(w, r, origin)
				return
			}

			if !c.wildcard {
				w.Header().Add("Vary", "Origin")
			}
			if origin == "" {
				// Same-origin request; nothing to annotate.
				next.ServeHTTP(w, r)
				return
			}

			if allow := c.allowOrigin(origin); allow != "" {
				w.Header().Set("Access-Control-Allow-Origin", allow)
				if c.credentials {
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// preflight answers an OPTIONS probe without invoking the next handler.
// A disallowed origin still gets 204, just without any allow headers.
func (c *cors) preflight(w http.ResponseWriter, r *http.Request, origin string) {
	h := w.Header()
	h.Add("Vary", "Origin")
	h.Add("Vary", "Access-Control-Request-Method")
	h.Add("Vary", "Access-Control-Request-Headers")

	if allow := c.allowOrigin(origin); allow != "" {
		h.Set("Access-Control-Allow-Origin", allow)
		h.Set("Access-Control-Allow-Methods", allowedMethods)
		switch {
		case c.headers != "":
			h.Set("Access-Control-Allow-Headers", c.headers)
		case r.Header.Get("Access-Control-Request-Headers") != "":
			h.Set("Access-Control-Allow-Headers", r.Header.Get("Access-Control-Request-Headers"))
		}
		if c.credentials {
			h.Set("Access-Control-Allow-Credentials", "true")
		}
		if c.maxAge != "" {
			h.Set("Access-Control-Max-Age", c.maxAge)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// allowOrigin resolves the Access-Control-Allow-Origin value for the request
// origin, or "" when the origin is not allowed.
func (c *cors) allowOrigin(origin string) string {
	switch {
	case c.wildcard:
		return "*"
	case c.echoAny:
		return origin
	default:
		return c.origins[strings.ToLower(origin)]
	}
}
