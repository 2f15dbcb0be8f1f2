package kanachu

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"kanabus/internal/domain"
)

// PageFetcher downloads a timetable page and returns its HTML.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

type FetcherOptions struct {
	UserAgent string
	Timeout   time.Duration
	TLSVerify bool
	Attempts  int
	Backoff   time.Duration
}

// Fetcher is a PageFetcher for the operator's mobile site. Every failure
// comes back as *domain.FetchError.
type Fetcher struct {
	client    *http.Client
	userAgent string
	attempts  int
	backoff   time.Duration
	logger    *slog.Logger
}

func NewFetcher(opts FetcherOptions, logger *slog.Logger) *Fetcher {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !opts.TLSVerify {
		// Development mode only.
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	attempts := opts.Attempts
	if attempts < 1 {
		attempts = 1
	}

	return &Fetcher{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		userAgent: opts.UserAgent,
		attempts:  attempts,
		backoff:   opts.Backoff,
		logger:    logger.With("component", "fetcher"),
	}
}

// Fetch retries transient failures with exponential backoff. Client errors
// (4xx) are not retried.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = f.backoff
	b.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(f.attempts-1)), ctx)

	html, err := backoff.RetryNotifyWithData(
		func() (string, error) {
			html, err := f.fetchOnce(ctx, url)
			if err != nil {
				var fe *domain.FetchError
				if errors.As(err, &fe) && fe.StatusCode >= 400 && fe.StatusCode < 500 {
					return "", backoff.Permanent(err)
				}
				return "", err
			}
			return html, nil
		},
		policy,
		func(err error, d time.Duration) {
			f.logger.Warn("fetch failed, retrying", "url", url, "retry_in", d, "error", err)
		},
	)
	if err != nil {
		if !domain.IsFetch(err) {
			err = &domain.FetchError{URL: url, Cause: err}
		}
		return "", err
	}
	return html, nil
}

func (f *Fetcher) fetchOnce(ctx context.Context, url string) (string, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", backoff.Permanent(&domain.FetchError{URL: url, Cause: fmt.Errorf("create request: %w", err)})
	}
	req.Header.Set("User-Agent", f.userAgent)

	f.logger.Debug("sending HTTP request", "method", req.Method, "url", url)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &domain.FetchError{URL: url, Cause: err}
	}
	defer resp.Body.Close()

	f.logger.Debug("received HTTP response",
		"url", url,
		"status_code", resp.StatusCode,
		"content_type", resp.Header.Get("Content-Type"),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", &domain.FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &domain.FetchError{URL: url, Cause: fmt.Errorf("read body: %w", err)}
	}

	// The pages are served as UTF-8 regardless of what the headers claim.
	body := strings.TrimPrefix(string(data), "\uFEFF")
	return strings.ToValidUTF8(body, "\uFFFD"), nil
}
