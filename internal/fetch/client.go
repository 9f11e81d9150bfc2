// Package fetch is the bounded-retry HTTP client used for orbit archives and
// remote DEM tiles.
package fetch

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
)

// Doer sends an HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// StatusError reports a non-2xx response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.Code, e.URL)
}

// Options configures a Client.
type Options struct {
	Timeout            time.Duration
	Retries            int
	InsecureSkipVerify bool
	// InitialInterval is the first backoff delay; zero means 500ms.
	InitialInterval time.Duration
}

// Client retries transport failures and 5xx responses up to a fixed budget.
// 4xx responses fail immediately.
type Client struct {
	http    Doer
	retries uint64
	initial time.Duration
}

func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	tr := http.DefaultTransport.(*http.Transport).Clone()
	if opts.InsecureSkipVerify {
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // ESA archive certificate chain
	}
	return NewWithDoer(&http.Client{Timeout: opts.Timeout, Transport: tr}, opts.Retries, opts.InitialInterval)
}

// NewWithDoer wraps an existing Doer, mostly for tests.
func NewWithDoer(d Doer, retries int, initial time.Duration) *Client {
	if initial <= 0 {
		initial = 500 * time.Millisecond
	}
	if retries < 0 {
		retries = 0
	}
	return &Client{http: d, retries: uint64(retries), initial: initial}
}

func (c *Client) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initial
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, c.retries), ctx)
}

// Get returns the body of url.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	err := c.do(ctx, url, func(r io.Reader) error {
		var err error
		body, err = io.ReadAll(r)
		return err
	})
	return body, err
}

// Download streams url into path, replacing it only once the transfer
// completes.
func (c *Client) Download(ctx context.Context, url, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	part := path + ".part"
	err := c.do(ctx, url, func(r io.Reader) error {
		f, err := os.Create(part)
		if err != nil {
			return backoff.Permanent(err)
		}
		if _, err := io.Copy(f, r); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	})
	if err != nil {
		os.Remove(part)
		return err
	}
	return os.Rename(part, path)
}

func (c *Client) do(ctx context.Context, url string, consume func(io.Reader) error) error {
	attempt := 0
	op := func() error {
		attempt++
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := c.http.Do(req)
		if err != nil {
			log.Debug().Err(err).Str("url", url).Int("attempt", attempt).Msg("request failed")
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			serr := &StatusError{URL: url, Code: resp.StatusCode}
			if resp.StatusCode < 500 {
				return backoff.Permanent(serr)
			}
			log.Debug().Str("url", url).Int("status", resp.StatusCode).Int("attempt", attempt).Msg("retrying")
			return serr
		}
		return consume(resp.Body)
	}

	if err := backoff.Retry(op, c.backOff(ctx)); err != nil {
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			err = perm.Err
		}
		return fmt.Errorf("fetch %s: %w", url, err)
	}
	return nil
}
