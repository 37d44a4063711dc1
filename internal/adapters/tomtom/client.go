// Package tomtom is the gateway to the TomTom Search and Routing APIs.
package tomtom

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/saferoute/internal/core/domain"
	"github.com/samirrijal/saferoute/internal/pkg/logging"
	"github.com/samirrijal/saferoute/internal/pkg/metrics"
	"github.com/samirrijal/saferoute/internal/pkg/telemetry"
)

// DefaultBaseURL is the public TomTom API host.
const DefaultBaseURL = "https://api.tomtom.com"

// maxErrorBody caps how much of a failed response is kept for logs.
const maxErrorBody = 512

// Options configures a Client.
type Options struct {
	APIKey     string
	BaseURL    string
	CountrySet string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client implements ports.RoutingProvider against TomTom.
type Client struct {
	key        string
	baseURL    string
	countrySet string
	timeout    time.Duration
	http       *http.Client
}

// New creates a TomTom client. Every call is bounded by opts.Timeout.
func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{
		key:        opts.APIKey,
		baseURL:    opts.BaseURL,
		countrySet: opts.CountrySet,
		timeout:    opts.Timeout,
		http:       opts.HTTPClient,
	}
}

type searchResponse struct {
	Results []struct {
		Address struct {
			FreeformAddress string `json:"freeformAddress"`
		} `json:"address"`
		Position *struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"position"`
	} `json:"results"`
}

// Suggest runs a typeahead fuzzy search.
func (c *Client) Suggest(ctx context.Context, query string, limit int) (_ []domain.Suggestion, err error) {
	ctx, span := c.startSpan(ctx, "tomtom.Suggest", attribute.Int("limit", limit))
	defer func() { endSpan(span, err) }()
	defer func(start time.Time) { metrics.ObserveProvider("suggest", start, err) }(time.Now())

	params := c.params()
	params.Set("limit", strconv.Itoa(limit))
	params.Set("typeahead", "true")
	if c.countrySet != "" {
		params.Set("countrySet", c.countrySet)
	}
	u := c.baseURL + "/search/2/search/" + url.PathEscape(query) + ".json?" + params.Encode()

	var resp searchResponse
	if err := c.do(ctx, http.MethodGet, u, nil, &resp); err != nil {
		return nil, err
	}

	suggestions := make([]domain.Suggestion, 0, len(resp.Results))
	for _, r := range resp.Results {
		if r.Position == nil {
			continue
		}
		suggestions = append(suggestions, domain.Suggestion{
			Name: r.Address.FreeformAddress,
			Lat:  r.Position.Lat,
			Lon:  r.Position.Lon,
		})
	}
	return suggestions, nil
}

// FastRoute requests the traffic-aware fastest route with text instructions.
func (c *Client) FastRoute(ctx context.Context, start, end domain.GeoPoint) (_ *domain.RouteResponse, err error) {
	ctx, span := c.startSpan(ctx, "tomtom.FastRoute")
	defer func() { endSpan(span, err) }()
	defer func(start time.Time) { metrics.ObserveProvider("fast_route", start, err) }(time.Now())

	var resp domain.RouteResponse
	if err := c.do(ctx, http.MethodGet, c.routeURL(start, end), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type avoidAreas struct {
	Rectangles []domain.AvoidRectangle `json:"rectangles"`
}

type avoidancePayload struct {
	AvoidAreas avoidAreas `json:"avoidAreas"`
}

// AvoidanceRoute recalculates the route with the given rectangles excluded.
func (c *Client) AvoidanceRoute(ctx context.Context, start, end domain.GeoPoint, avoid []domain.AvoidRectangle) (_ *domain.RouteResponse, err error) {
	if len(avoid) > domain.MaxAvoidAreas {
		return nil, fmt.Errorf("%w: %d avoid areas exceeds provider limit of %d", domain.ErrInput, len(avoid), domain.MaxAvoidAreas)
	}

	ctx, span := c.startSpan(ctx, "tomtom.AvoidanceRoute", attribute.Int("avoid_areas", len(avoid)))
	defer func() { endSpan(span, err) }()
	defer func(start time.Time) { metrics.ObserveProvider("avoidance_route", start, err) }(time.Now())

	body, err := json.Marshal(avoidancePayload{AvoidAreas: avoidAreas{Rectangles: avoid}})
	if err != nil {
		return nil, fmt.Errorf("encode avoid areas: %w", err)
	}

	var resp domain.RouteResponse
	if err := c.do(ctx, http.MethodPost, c.routeURL(start, end), body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) routeURL(start, end domain.GeoPoint) string {
	params := c.params()
	params.Set("routeType", "fastest")
	params.Set("traffic", "true")
	params.Set("instructionsType", "text")
	return fmt.Sprintf("%s/routing/1/calculateRoute/%s:%s/json?%s",
		c.baseURL, start, end, params.Encode())
}

func (c *Client) params() url.Values {
	v := url.Values{}
	v.Set("key", c.key)
	return v
}

// do performs one bounded request and decodes a 2xx JSON body into out.
// Transport failures, non-2xx statuses and undecodable bodies are ErrUpstream.
func (c *Client) do(ctx context.Context, method, u string, body []byte, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return fmt.Errorf("%w: %s %s: %v", domain.ErrUpstream, method, redact(req.URL), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		logging.FromContext(ctx).Warn("provider returned non-success status",
			"method", method,
			"path", req.URL.Path,
			"status", resp.StatusCode,
			"body", string(snippet),
		)
		return &StatusError{StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s response: %v", domain.ErrUpstream, req.URL.Path, err)
	}
	return nil
}

// StatusError is a non-2xx provider answer. It matches domain.ErrUpstream.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%v: provider returned HTTP %d", domain.ErrUpstream, e.StatusCode)
}

func (e *StatusError) Is(target error) bool {
	return target == domain.ErrUpstream
}

// redact strips the API key from URLs that end up in error messages.
func redact(u *url.URL) string {
	clone := *u
	q := clone.Query()
	if q.Has("key") {
		q.Set("key", "REDACTED")
		clone.RawQuery = q.Encode()
	}
	return clone.String()
}

func (c *Client) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return telemetry.Tracer().Start(ctx, name, trace.WithSpanKind(trace.SpanKindClient), trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
