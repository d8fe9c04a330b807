package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

const defaultAddr = "0.0.0.0:8080"

// Config holds the complete application configuration, loadable from
// environment variables (STOREFRONT_ prefix), flags, or YAML config files.
type Config struct {
	Addr      string `default:"0.0.0.0:8080" usage:"API server listen address"`
	Shopify   ShopifyConfig
	Cache     CacheConfig
	Cookies   CookieConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Graceful  GracefulConfig
}

// ShopifyConfig holds the Storefront API connection.
type ShopifyConfig struct {
	StoreDomain   string        `usage:"Store domain, e.g. shop.myshopify.com (or SHOPIFY_STORE_DOMAIN)" flag:"shopify-store-domain"`
	AccessToken   string        `usage:"Storefront API access token (or SHOPIFY_STOREFRONT_ACCESS_TOKEN)" flag:"shopify-access-token"`
	APIVersion    string        `default:"2023-01" usage:"Storefront API version" flag:"shopify-api-version"`
	Timeout       time.Duration `default:"10s" usage:"Upstream request timeout" flag:"shopify-timeout"`
	HiddenTag     string        `default:"nextjs-frontend-hidden" usage:"Product tag hiding a product from listings" flag:"shopify-hidden-tag"`
	WebhookSecret string        `usage:"Secret authenticating catalog webhooks (or SHOPIFY_API_SECRET_KEY)" flag:"shopify-webhook-secret"`
}

// Configured reports whether upstream credentials are present.
func (c ShopifyConfig) Configured() bool {
	return c.StoreDomain != "" && c.AccessToken != ""
}

// CacheConfig selects and tunes the tag cache.
type CacheConfig struct {
	RedisURL      string        `usage:"Redis URL for the shared cache (or REDIS_URL); in-memory when empty" flag:"redis-url"`
	Prefix        string        `default:"storefront:" usage:"Redis key prefix" flag:"cache-prefix"`
	CatalogTTL    time.Duration `default:"1h" usage:"Lifetime of cached catalog reads" flag:"catalog-ttl"`
	CartTTL       time.Duration `default:"1m" usage:"Lifetime of cached cart reads" flag:"cart-ttl"`
	SweepInterval time.Duration `default:"1m" usage:"In-memory cache expiry sweep interval" flag:"cache-sweep"`
}

// CookieConfig controls the cart and customer cookies.
type CookieConfig struct {
	Secure bool   `default:"false" usage:"Mark cookies Secure" flag:"cookie-secure"`
	Domain string `usage:"Cookie domain; request host when empty" flag:"cookie-domain"`
}

// RateLimitConfig controls the per-client sliding window limiter on the
// customer endpoints.
type RateLimitConfig struct {
	Max    int           `default:"20" usage:"Max customer requests per window"`
	Window time.Duration `default:"1m" usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"true" usage:"Allow credentials (cart and token cookies)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and applies platform-specific defaults. Missing upstream
// credentials are not an error: the storefront then serves degraded
// defaults.
func LoadConfig() (*Config, error) {
	return loadConfig(aconfig.Config{
		EnvPrefix: "STOREFRONT",
		Files:     []string{"config.yaml", "/etc/storefront/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
}

func loadConfig(ac aconfig.Config) (*Config, error) {
	var cfg Config
	if err := aconfig.LoaderFor(&cfg, ac).Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.RateLimit.Max <= 0 || c.RateLimit.Window <= 0 {
		return errors.New("rate limit max and window must be positive")
	}
	if c.Cache.CatalogTTL < 0 || c.Cache.CartTTL < 0 {
		return errors.New("cache TTLs must not be negative")
	}
	if c.Cache.SweepInterval <= 0 {
		return errors.New("cache sweep interval must be positive")
	}
	return nil
}

// applyPlatformDefaults maps the conventional Shopify and hosting variables
// to the STOREFRONT_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	fallback := func(dst *string, env string) {
		if *dst == "" {
			*dst = os.Getenv(env)
		}
	}
	fallback(&c.Shopify.StoreDomain, "SHOPIFY_STORE_DOMAIN")
	fallback(&c.Shopify.AccessToken, "SHOPIFY_STOREFRONT_ACCESS_TOKEN")
	fallback(&c.Shopify.WebhookSecret, "SHOPIFY_API_SECRET_KEY")
	fallback(&c.Cache.RedisURL, "REDIS_URL")
	if port := os.Getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
}
