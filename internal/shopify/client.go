// Package shopify adapts the Shopify Storefront GraphQL API to the storefront
// domain: it issues queries, caches tagged reads and normalizes responses.
package shopify

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/cache"
)

const (
	// DefaultAPIVersion is the Storefront API version queried when none is configured.
	DefaultAPIVersion = "2023-01"

	instrumentationName = "github.com/xenking/storefront/internal/shopify"
	maxResponseSize     = 16 << 20
	maxErrorBody        = 512
	// pageSize is the page size of product listings.
	pageSize = 100
)

// Config holds the upstream connection settings.
type Config struct {
	StoreDomain string
	AccessToken string
	APIVersion  string
	Timeout     time.Duration
	HiddenTag   string
	// CatalogTTL bounds how long tagged catalog reads stay cached.
	CatalogTTL time.Duration
	// CartTTL bounds how long cart reads stay cached.
	CartTTL time.Duration
}

// Options holds optional dependencies of the Client.
type Options struct {
	// HTTPClient is used as is when set; its transport is not instrumented.
	HTTPClient     *http.Client
	Cache          cache.Store
	Logger         *zap.Logger
	MeterProvider  metric.MeterProvider
	TracerProvider trace.TracerProvider
}

// Client talks to the Storefront API.
type Client struct {
	endpoint   string
	token      string
	http       *http.Client
	cache      cache.Store
	lg         *zap.Logger
	tracer     trace.Tracer
	normalizer Normalizer
	catalogTTL time.Duration
	cartTTL    time.Duration
	now        func() time.Time

	requests  metric.Int64Counter
	duration  metric.Float64Histogram
	cacheHits metric.Int64Counter
}

// New creates a Client. A Client without store domain or token is valid:
// every call fails with ErrNotConfigured so the storefront can still run in
// degraded mode.
func New(cfg Config, opts Options) (*Client, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.MeterProvider == nil {
		opts.MeterProvider = metricnoop.NewMeterProvider()
	}
	if opts.TracerProvider == nil {
		opts.TracerProvider = tracenoop.NewTracerProvider()
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport,
				otelhttp.WithTracerProvider(opts.TracerProvider),
				otelhttp.WithMeterProvider(opts.MeterProvider),
			),
		}
	}

	c := &Client{
		endpoint:   Endpoint(cfg.StoreDomain, cfg.APIVersion),
		token:      cfg.AccessToken,
		http:       httpClient,
		cache:      opts.Cache,
		lg:         opts.Logger,
		tracer:     opts.TracerProvider.Tracer(instrumentationName),
		normalizer: Normalizer{HiddenTag: cfg.HiddenTag},
		catalogTTL: cfg.CatalogTTL,
		cartTTL:    cfg.CartTTL,
		now:        time.Now,
	}
	if c.token == "" {
		c.endpoint = ""
	}

	meter := opts.MeterProvider.Meter(instrumentationName)
	var err error
	if c.requests, err = meter.Int64Counter("shopify.client.requests",
		metric.WithDescription("Storefront API round trips by operation and outcome"),
	); err != nil {
		return nil, errors.Wrap(err, "requests counter")
	}
	if c.duration, err = meter.Float64Histogram("shopify.client.duration",
		metric.WithDescription("Storefront API round trip duration"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, errors.Wrap(err, "duration histogram")
	}
	if c.cacheHits, err = meter.Int64Counter("shopify.client.cache_hits",
		metric.WithDescription("Storefront API reads served from cache"),
	); err != nil {
		return nil, errors.Wrap(err, "cache hits counter")
	}
	return c, nil
}

// Endpoint returns the GraphQL endpoint of a store, or "" when domain is
// empty. The domain is given an https:// scheme when it has none.
func Endpoint(domain, version string) string {
	origin := Origin(domain)
	if origin == "" {
		return ""
	}
	return origin + "/api/" + version + "/graphql.json"
}

// Origin returns the store origin, defaulting to https when domain has no
// scheme.
func Origin(domain string) string {
	domain = strings.TrimSuffix(strings.TrimSpace(domain), "/")
	if domain == "" {
		return ""
	}
	if !strings.HasPrefix(domain, "https://") && !strings.HasPrefix(domain, "http://") {
		domain = "https://" + domain
	}
	return domain
}

// Configured reports whether calls reach the platform.
func (c *Client) Configured() bool {
	return c.endpoint != ""
}

// Normalizer returns the normalizer used for responses.
func (c *Client) Normalizer() Normalizer {
	return c.normalizer
}

// call describes one GraphQL operation.
type call struct {
	name      string
	query     string
	variables map[string]any
	// tags makes the call cacheable; the response is stored under them.
	tags []string
	ttl  time.Duration
}

// do executes call and decodes its data into out.
func (c *Client) do(ctx context.Context, cl call, out any) (rerr error) {
	if !c.Configured() {
		return ErrNotConfigured
	}

	ctx, span := c.tracer.Start(ctx, "shopify."+cl.name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("graphql.operation.name", cl.name)),
	)
	defer func() {
		if rerr != nil {
			span.RecordError(rerr)
			span.SetStatus(codes.Error, rerr.Error())
		}
		span.End()
	}()

	body, err := encodeRequest(cl.query, cl.variables)
	if err != nil {
		return err
	}

	var key string
	cacheable := c.cache != nil && len(cl.tags) > 0
	if cacheable {
		key = cacheKey(body)
		data, ok, err := c.cache.Get(ctx, key)
		switch {
		case err != nil:
			c.lg.Warn("Cache read failed", zap.String("operation", cl.name), zap.Error(err))
		case ok:
			c.cacheHits.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", cl.name)))
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return decodeData(data, out)
		}
	}

	data, err := c.roundTrip(ctx, cl.name, body)
	if err != nil {
		return err
	}
	if err := decodeData(data, out); err != nil {
		return err
	}

	if cacheable {
		if err := c.cache.Set(ctx, key, data, cl.ttl, cl.tags...); err != nil {
			c.lg.Warn("Cache write failed", zap.String("operation", cl.name), zap.Error(err))
		}
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, name string, body []byte) (_ []byte, rerr error) {
	start := c.now()
	defer func() {
		outcome := "ok"
		if rerr != nil {
			outcome = "error"
		}
		attrs := metric.WithAttributes(
			attribute.String("operation", name),
			attribute.String("outcome", outcome),
		)
		c.requests.Add(ctx, 1, attrs)
		c.duration.Record(ctx, c.now().Sub(start).Seconds(), attrs)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Storefront-Access-Token", c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "send request")
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, errors.Wrap(err, "read response")
	}
	if resp.StatusCode != http.StatusOK {
		msg := string(raw)
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(msg)}
	}

	r, err := decodeResponse(raw)
	if err != nil {
		return nil, err
	}
	if len(r.Errors) > 0 {
		return nil, r.Errors
	}
	if len(r.Data) == 0 {
		return nil, errors.New("shopify: response without data")
	}
	return r.Data, nil
}

func decodeData(data []byte, out any) error {
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrap(err, "decode data")
	}
	return nil
}

func cacheKey(body []byte) string {
	sum := sha256.Sum256(body)
	return "gql:" + hex.EncodeToString(sum[:])
}
