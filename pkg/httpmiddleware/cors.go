package httpmiddleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig configures cross-origin access to the storefront API.
type CORSConfig struct {
	// Origins allowed to call the API. Empty or "*" allows any origin.
	Origins []string
	// AllowCredentials lets browsers send the cart and customer cookies.
	// The matching origin is echoed instead of "*" when set.
	AllowCredentials bool
	// Methods defaults to the methods the storefront routes use.
	Methods []string
	Headers []string
	// Expose is always extended with the degraded and request id headers.
	Expose []string
	// MaxAge of preflight results; zero omits the header.
	MaxAge int
}

var defaultCORSMethods = []string{
	http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions,
}

type cors struct {
	any         bool
	credentials bool
	origins     map[string]string
	methods     string
	headers     string
	expose      string
	maxAge      string
}

func newCORS(cfg CORSConfig) *cors {
	c := &cors{
		any:         len(cfg.Origins) == 0,
		credentials: cfg.AllowCredentials,
		origins:     make(map[string]string, len(cfg.Origins)),
		headers:     strings.Join(cfg.Headers, ", "),
	}
	for _, o := range cfg.Origins {
		if o == "*" {
			c.any = true
			continue
		}
		c.origins[strings.ToLower(o)] = o
	}
	methods := cfg.Methods
	if len(methods) == 0 {
		methods = defaultCORSMethods
	}
	c.methods = strings.Join(methods, ", ")
	c.expose = strings.Join(append([]string{HeaderDegraded, HeaderRequestID}, cfg.Expose...), ", ")
	if cfg.MaxAge > 0 {
		c.maxAge = strconv.Itoa(cfg.MaxAge)
	}
	return c
}

// allowOrigin returns the Access-Control-Allow-Origin value for origin, or
// "" when it is not allowed.
func (c *cors) allowOrigin(origin string) string {
	if c.any {
		if c.credentials {
			return origin
		}
		return "*"
	}
	return c.origins[strings.ToLower(origin)]
}

// CORS answers preflight requests and decorates actual cross-origin
// requests. Responses vary on Origin whenever the answer depends on it.
func CORS(cfg CORSConfig) Middleware {
	c := newCORS(cfg)
	varies := !c.any || c.credentials
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			if varies {
				h.Add("Vary", "Origin")
			}
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}
			allow := c.allowOrigin(origin)

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				h.Add("Vary", "Access-Control-Request-Method")
				h.Add("Vary", "Access-Control-Request-Headers")
				if allow != "" {
					h.Set("Access-Control-Allow-Origin", allow)
					h.Set("Access-Control-Allow-Methods", c.methods)
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
				return
			}

			if allow != "" {
				h.Set("Access-Control-Allow-Origin", allow)
				h.Set("Access-Control-Expose-Headers", c.expose)
				if c.credentials {
					h.Set("Access-Control-Allow-Credentials", "true")
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
