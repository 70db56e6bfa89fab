// Package fetch implements the hardened HTTP layer used by the scrapers:
// pooled connections, bounded retries on transient upstream statuses and a
// single escalated retry on read timeouts.
package fetch

import (
	"context"
	"crypto/tls"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"mangaku-backend/lib/restyutil"
	"mangaku-backend/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	random "github.com/mazen160/go-random"
	"go.opentelemetry.io/otel"
	"golang.org/x/time/rate"
)

var meter = otel.Meter("lib/fetch")
var attemptCounter, _ = meter.Int64Counter("fetch_attempts")

const (
	DefaultTimeout     = time.Minute * 2
	DefaultRetries     = 3
	DefaultPoolSize    = 20
	DefaultPoolMaxSize = 50

	fastConnectTimeout = time.Second * 30

	// the escalated retry issued after a read timeout gets a slower
	// budget, the upstream is assumed alive but struggling.
	escalatedConnectTimeout = time.Second * 60
	escalatedReadTimeout    = time.Second * 180

	retryBaseWait = time.Millisecond * 500
	retryMaxWait  = time.Second * 8
)

// upstream statuses worth retrying. 520-524 are Cloudflare's
// origin-unreachable family.
var transientStatus = map[int]bool{
	429: true,
	500: true, 502: true, 503: true, 504: true,
	520: true, 521: true, 522: true, 523: true, 524: true,
}

var browserUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
}

type Options struct {
	// per-attempt read timeout, DefaultTimeout when zero
	Timeout time.Duration
	// retry budget for transient upstream statuses, DefaultRetries when zero
	Retries int
	// idle connections kept per host, DefaultPoolSize when zero
	PoolSize int
	// total idle connections across the pool, DefaultPoolMaxSize when zero
	PoolMaxSize int
	// InsecureSkipVerify disables TLS certificate validation. The target
	// origin serves a certificate that does not validate, so callers must
	// opt into this explicitly; it is never enabled silently.
	InsecureSkipVerify bool
	// CloudflareBypass wraps the transport with browser-like headers for
	// origins that sit behind Cloudflare's bot check.
	CloudflareBypass bool
	// UserAgent overrides the randomly picked browser user agent.
	UserAgent string
	// RequestsPerSecond throttles outgoing attempts, 0 means unlimited.
	RequestsPerSecond float64
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Retries <= 0 {
		o.Retries = DefaultRetries
	}
	if o.PoolSize <= 0 {
		o.PoolSize = DefaultPoolSize
	}
	if o.PoolMaxSize <= 0 {
		o.PoolMaxSize = DefaultPoolMaxSize
	}
	if o.UserAgent == "" {
		o.UserAgent = pickUserAgent()
	}
	return o
}

func pickUserAgent() string {
	i, err := random.IntRange(0, len(browserUserAgents))
	if err != nil {
		i = 0
	}
	return browserUserAgents[i]
}

// Result is a completed upstream response. Non-2xx statuses are still
// results: mapping them onto not-found vs upstream-failure is the
// caller's concern.
type Result struct {
	StatusCode int
	Body       []byte
	Elapsed    time.Duration
}

// Client is the long-lived transport shared by all in-flight scrapes on
// one engine. Safe for concurrent use.
type Client struct {
	fast     *resty.Client
	fallback *resty.Client
	attempts atomic.Int64
}

func NewClient(opts Options) *Client {
	opts = opts.withDefaults()

	c := &Client{}
	limiter := newLimiter(opts)
	c.fast = c.newRestyClient(opts, limiter, fastConnectTimeout, opts.Timeout)
	c.fast.SetRetryCount(opts.Retries)
	c.fast.SetRetryWaitTime(retryBaseWait)
	c.fast.SetRetryMaxWaitTime(retryMaxWait)
	c.fast.SetRetryAfter(backoffWithJitter)
	c.fast.AddRetryCondition(func(res *resty.Response, err error) bool {
		// transport errors go through the escalation path in Fetch
		// instead of the blind status-retry loop
		if err != nil || res == nil {
			return false
		}
		return transientStatus[res.StatusCode()]
	})

	c.fallback = c.newRestyClient(opts, limiter, escalatedConnectTimeout, escalatedReadTimeout)

	return c
}

func newLimiter(opts Options) *rate.Limiter {
	if opts.RequestsPerSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
}

func (c *Client) newRestyClient(opts Options, limiter *rate.Limiter, connectTimeout, readTimeout time.Duration) *resty.Client {
	dialer := &net.Dialer{
		Timeout:   connectTimeout,
		KeepAlive: time.Second * 30,
	}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         dialer.DialContext,
		MaxIdleConns:        opts.PoolMaxSize,
		MaxIdleConnsPerHost: opts.PoolSize,
		IdleConnTimeout:     time.Second * 90,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: opts.InsecureSkipVerify,
		},
	}

	client := resty.New()
	client.SetTransport(transport)
	client.SetTimeout(readTimeout)
	client.SetHeader("user-agent", opts.UserAgent)
	if opts.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}

	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		if limiter != nil {
			err := limiter.Wait(req.Context())
			if err != nil {
				return err
			}
		}
		c.attempts.Add(1)
		attemptCounter.Add(req.Context(), 1)
		return nil
	})

	telemetry.InstrumentResty(client, "lib/fetch/http")
	return client
}

func backoffWithJitter(client *resty.Client, res *resty.Response) (time.Duration, error) {
	attempt := 0
	if res != nil && res.Request != nil {
		attempt = res.Request.Attempt
	}
	wait := retryBaseWait << attempt
	if wait > retryMaxWait {
		wait = retryMaxWait
	}
	jitter, err := random.IntRange(0, int(wait/4)+1)
	if err != nil {
		jitter = 0
	}
	return wait + time.Duration(jitter), nil
}

// SetDebugOutput dumps every raw HTTP exchange to `output` while debug
// logging is enabled.
func (c *Client) SetDebugOutput(output restyutil.InstrumentOutput) {
	restyutil.InstrumentClient(c.fast, output)
	restyutil.InstrumentClient(c.fallback, output)
}

// Attempts reports the number of physical HTTP attempts issued so far,
// retries and escalations included.
func (c *Client) Attempts() int64 {
	return c.attempts.Load()
}

// Fetch performs a GET against an absolute url. Transient upstream
// statuses are retried with exponential backoff up to the configured
// budget. A read timeout triggers exactly one escalated retry with longer
// timeouts; connect timeouts and other transport errors surface
// immediately, the endpoint is unreachable rather than slow.
func (c *Client) Fetch(ctx context.Context, link string) (Result, error) {
	start := time.Now()

	res, err := c.fast.R().SetContext(ctx).Get(link)
	if err != nil {
		ferr := classify(link, err)
		if ferr.Kind != KindReadTimeout {
			return Result{}, ferr
		}

		slog.WarnContext(ctx, "read timeout, issuing escalated retry", "url", link)
		res, err = c.fallback.R().SetContext(ctx).Get(link)
		if err != nil {
			return Result{}, classify(link, err)
		}
	}

	return Result{
		StatusCode: res.StatusCode(),
		Body:       res.Body(),
		Elapsed:    time.Since(start),
	}, nil
}
