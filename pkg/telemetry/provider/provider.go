// Package provider fetches lap data from a telemetry provider via http.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mpapenbr/iracelog-lapanalysis/log"
	"github.com/mpapenbr/iracelog-lapanalysis/pkg/laps"
	"github.com/mpapenbr/iracelog-lapanalysis/pkg/telemetry"
	"github.com/mpapenbr/iracelog-lapanalysis/pkg/utils"
)

const lapsEndpoint = "/v1/laps"

var ErrProviderStatus = errors.New("unexpected provider response")

// StatusError is returned for responses other than 200
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", ErrProviderStatus, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	return ErrProviderStatus
}

type (
	Option func(*Client)
	Client struct {
		baseURL     *url.URL
		httpClient  *http.Client
		waitTimeout time.Duration
		waitOnce    sync.Once
		waitErr     error
		l           *log.Logger
	}
)

var _ telemetry.Source = (*Client)(nil)

func WithHTTPClient(c *http.Client) Option {
	return func(p *Client) {
		p.httpClient = c
	}
}

// WithWaitForProvider makes the first request wait up to timeout for the
// provider to become reachable.
func WithWaitForProvider(timeout time.Duration) Option {
	return func(p *Client) {
		p.waitTimeout = timeout
	}
}

func WithLogger(l *log.Logger) Option {
	return func(p *Client) {
		p.l = l
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid provider url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid provider url %q: scheme must be http or https",
			baseURL)
	}
	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		l:          log.Default().Named("telemetry.provider"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Laps(ctx context.Context, sel telemetry.Selection) (
	[]laps.LapRecord, error,
) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}
	if err := c.waitForProvider(ctx); err != nil {
		return nil, err
	}
	doc, err := c.fetch(ctx, sel)
	if err != nil {
		return nil, err
	}
	if err := telemetry.CheckSchemaVersion(doc.SchemaVersion); err != nil {
		return nil, err
	}
	if err := doc.Matches(sel); err != nil {
		return nil, err
	}
	return doc.Records(), nil
}

// waitForProvider waits once per client, later calls get the first result.
func (c *Client) waitForProvider(ctx context.Context) error {
	c.waitOnce.Do(func() {
		if c.waitTimeout > 0 {
			c.waitErr = utils.WaitForHTTPResponse(ctx, c.httpClient, c.baseURL.String(),
				c.waitTimeout)
		}
	})
	return c.waitErr
}

func (c *Client) lapsURL(sel telemetry.Selection) string {
	u := c.baseURL.JoinPath(lapsEndpoint)
	q := url.Values{}
	q.Set("season", strconv.Itoa(sel.Season))
	q.Set("event", sel.Event)
	q.Set("session", string(sel.Session))
	q.Set("driver", strings.ToUpper(sel.Driver))
	u.RawQuery = q.Encode()
	return u.String()
}

func (c *Client) fetch(ctx context.Context, sel telemetry.Selection) (
	*telemetry.Document, error,
) {
	target := c.lapsURL(sel)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	c.l.Debug("provider response",
		log.String("url", target),
		log.Int("status", resp.StatusCode),
		log.Duration("took", time.Since(start)))

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}
	var doc telemetry.Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", telemetry.ErrInvalidDocument, err)
	}
	return &doc, nil
}
