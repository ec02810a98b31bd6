// Package transport is the HTTP client collaborator (§6): cookies,
// headers, per-request timing and the REQ-ID header the target uses to
// route file-mode instrumentation feedback back to the right worker.
package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fluxfuzzer/fluxfuzzer/internal/request"
	"github.com/fluxfuzzer/fluxfuzzer/pkg/types"
	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"
)

// NewRateLimiter builds the shared, optional request-rate limiter used by
// the `--rate` CLI flag (§5's ambient throttling knob). ratePerSec <= 0
// disables limiting.
func NewRateLimiter(ratePerSec float64) *rate.Limiter {
	if ratePerSec <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(ratePerSec), 1)
}

// Options configures the shared client.
type Options struct {
	RequestTimeout  time.Duration
	MaxConnsPerHost int
	UserAgent       string
	AcceptLanguage  string
	Accept          string
	SkipTLSVerify   bool
}

// DefaultOptions mirrors the original project's retrieve_headers() defaults.
func DefaultOptions(workerCount int) *Options {
	return &Options{
		RequestTimeout:  35 * time.Second,
		MaxConnsPerHost: workerCount,
		UserAgent:       "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/83.0.4103.97 Safari/537.36",
		AcceptLanguage:  "en-GB,en;q=0.9,en-US;q=0.8,el;q=0.7",
		Accept:          "text/html,application/xhtml+xml",
		SkipTLSVerify:   true,
	}
}

// Response is the transport-level reply: status, headers, body and the
// exec_time the Request stores.
type Response struct {
	StatusCode  int
	Headers     http.Header
	Body        []byte
	ContentType string
	ExecTime    float64
}

// Client wraps fasthttp.Client with the Acquire/Release request/response
// pattern, shared across all workers with a per-host connection cap.
type Client struct {
	client  *fasthttp.Client
	opts    *Options
	cookies map[string]string
	headers map[string]string
	limiter *rate.Limiter
}

// SetLimiter installs the shared `--rate` limiter every worker's Do call
// waits on before dispatching. A nil limiter (the default) disables
// throttling entirely.
func (c *Client) SetLimiter(limiter *rate.Limiter) {
	c.limiter = limiter
}

// NewClient builds a shared client. cookies/headers are immutable after
// startup per §5.
func NewClient(opts *Options, cookies map[string]string) *Client {
	if opts == nil {
		opts = DefaultOptions(1)
	}
	return &Client{
		client: &fasthttp.Client{
			MaxConnsPerHost: opts.MaxConnsPerHost,
			ReadTimeout:     opts.RequestTimeout,
			WriteTimeout:    opts.RequestTimeout,
			TLSConfig: &tls.Config{
				InsecureSkipVerify: opts.SkipTLSVerify,
			},
		},
		opts: opts,
		cookies: cookies,
		headers: map[string]string{
			"user-agent":       opts.UserAgent,
			"accept-language":  opts.AcceptLanguage,
			"accept":           opts.Accept,
		},
	}
}

// Do dispatches r, tagging the outgoing request with REQ-ID: workerID so
// file-mode instrumentation feedback can be routed back (§6). ExecTime is
// stamped with wall-clock time around the fasthttp call, replacing the
// original's aiohttp TraceConfig hooks (§9).
func (c *Client) Do(ctx context.Context, r *request.Request, workerID string) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("transport: rate limiter: %w", err)
		}
	}

	freq := fasthttp.AcquireRequest()
	fresp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(freq)
	defer fasthttp.ReleaseResponse(fresp)

	uri, body, method := buildRequest(r)

	freq.SetRequestURI(uri)
	freq.Header.SetMethod(method)
	freq.Header.Set("REQ-ID", workerID)
	for k, v := range c.headers {
		freq.Header.Set(k, v)
	}
	for name, value := range c.cookies {
		freq.Header.SetCookie(name, value)
	}
	if method == "POST" {
		freq.Header.SetContentType("application/x-www-form-urlencoded")
		freq.SetBodyString(body)
	}

	start := time.Now()
	deadline, hasDeadline := ctx.Deadline()
	var err error
	if hasDeadline {
		err = c.client.DoDeadline(freq, fresp, deadline)
	} else {
		err = c.client.DoTimeout(freq, fresp, c.opts.RequestTimeout)
	}
	execTime := time.Since(start).Seconds()

	if err != nil {
		return &Response{ExecTime: execTime}, err
	}

	headers := http.Header{}
	fresp.Header.VisitAll(func(key, value []byte) {
		headers.Add(string(key), string(value))
	})

	bodyCopy := make([]byte, len(fresp.Body()))
	copy(bodyCopy, fresp.Body())

	return &Response{
		StatusCode:  fresp.StatusCode(),
		Headers:     headers,
		Body:        bodyCopy,
		ContentType: string(fresp.Header.ContentType()),
		ExecTime:    execTime,
	}, nil
}

// buildRequest renders a GET's query string or a POST's form body from the
// request's parameter multimap.
func buildRequest(r *request.Request) (uri string, body string, method string) {
	params := r.Params()

	if r.Method() == types.GET {
		q := url.Values{}
		for k, values := range params[types.GET] {
			for _, v := range values {
				q.Add(k, v)
			}
		}
		uri = r.URL()
		if encoded := q.Encode(); encoded != "" {
			sep := "?"
			if strings.Contains(uri, "?") {
				sep = "&"
			}
			uri = uri + sep + encoded
		}
		return uri, "", "GET"
	}

	q := url.Values{}
	for k, values := range params[types.POST] {
		for _, v := range values {
			q.Add(k, v)
		}
	}
	return r.URL(), q.Encode(), "POST"
}

// ErrUnimplementedMethod is returned by callers for methods other than
// GET/POST; the transport itself only ever builds those two.
var ErrUnimplementedMethod = fmt.Errorf("transport: unimplemented HTTP method")
