// Package client is the transport shim for the remote scoring service.
// It serializes canonical record sets and scoring payloads to the
// service's JSON API and decodes the scalar results back. It performs no
// local computation and no retries; transport reliability belongs to the
// injected http.Client.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/grandjury/grandjury-go/pkg/record"
	"github.com/grandjury/grandjury-go/pkg/verdict"
)

// DefaultBaseURL is the public service endpoint. Callers pass it (or
// their own) to New explicitly; nothing consults it implicitly.
const DefaultBaseURL = "https://grandjury-server.onrender.com"

const (
	apiPathSuffix   = "/api/v1"
	requestTimeout  = 60 * time.Second
	headerRequestID = "X-Request-ID"
	headerAuth      = "Authorization"
	headerContent   = "Content-Type"
	contentTypeJSON = "application/json"
)

// APIError is a non-2xx service response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Body)
}

// Client talks to one scoring service instance.
type Client struct {
	baseURL string
	apiKey  string
	hc      *http.Client
	codec   Codec
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sets the bearer token sent on every request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPClient substitutes the transport, including any retry or
// pooling policy the host application wants.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.hc = hc
		}
	}
}

// WithCodec substitutes the JSON codec (see FastCodec).
func WithCodec(codec Codec) Option {
	return func(c *Client) {
		if codec != nil {
			c.codec = codec
		}
	}
}

// New creates a Client for the given base URL. The /api/v1 path is
// appended when the URL does not already carry it.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("base URL is required")
	}
	base := strings.TrimRight(baseURL, "/")
	if !strings.HasSuffix(base, apiPathSuffix) {
		base += apiPathSuffix
	}

	c := &Client{
		baseURL: base,
		hc:      &http.Client{Timeout: requestTimeout},
		codec:   ReferenceCodec{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the resolved base URL including the API path.
func (c *Client) BaseURL() string { return c.baseURL }

// EvaluateRequest is the server-authoritative scoring payload.
type EvaluateRequest struct {
	PreviousScore     float64   `json:"previous_score"`
	PreviousTimestamp string    `json:"previous_timestamp"`
	Votes             []float64 `json:"votes"`
	Reputations       []float64 `json:"reputations"`
}

// EvaluateResult carries the service's scoring response.
type EvaluateResult map[string]any

// Evaluate submits a scoring request. A missing PreviousTimestamp
// defaults to one hour ago, matching the service's reference client.
func (c *Client) Evaluate(ctx context.Context, req EvaluateRequest) (EvaluateResult, error) {
	if req.PreviousTimestamp == "" {
		req.PreviousTimestamp = time.Now().UTC().Add(-time.Hour).Format(time.RFC3339)
	}
	if req.Votes == nil {
		req.Votes = []float64{}
	}
	if req.Reputations == nil {
		req.Reputations = []float64{}
	}

	var res EvaluateResult
	if err := c.post(ctx, "evaluate", req, &res); err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}
	return res, nil
}

type histogramPayload struct {
	Data            record.Set `json:"data"`
	DurationMinutes int        `json:"duration_minutes"`
	Gross           bool       `json:"gross"`
}

// Histogram computes the vote time histogram remotely.
func (c *Client) Histogram(ctx context.Context, records record.Set, opts verdict.HistogramOptions) (map[string]int, error) {
	minutes := opts.BucketMinutes
	if minutes <= 0 {
		minutes = verdict.BucketMinutesDefault
	}
	var res map[string]int
	err := c.post(ctx, "verdict/histogram", histogramPayload{Data: records, DurationMinutes: minutes, Gross: true}, &res)
	if err != nil {
		return nil, fmt.Errorf("histogram: %w", err)
	}
	return res, nil
}

type completenessPayload struct {
	Data         record.Set `json:"data"`
	VoterList    []string   `json:"voter_list"`
	Gross        bool       `json:"gross"`
	InferenceIDs []string   `json:"inference_ids,omitempty"`
}

// Completeness computes per-inference vote completeness remotely.
func (c *Client) Completeness(ctx context.Context, records record.Set, voterList []string, opts verdict.CompletenessOptions) (map[string]float64, error) {
	var res map[string]float64
	payload := completenessPayload{Data: records, VoterList: voterList, InferenceIDs: opts.InferenceIDs}
	if err := c.post(ctx, "verdict/completeness", payload, &res); err != nil {
		return nil, fmt.Errorf("completeness: %w", err)
	}
	return res, nil
}

// GrossCompleteness computes the global completeness fraction remotely.
func (c *Client) GrossCompleteness(ctx context.Context, records record.Set, voterList []string, opts verdict.CompletenessOptions) (float64, error) {
	var res float64
	payload := completenessPayload{Data: records, VoterList: voterList, Gross: true, InferenceIDs: opts.InferenceIDs}
	if err := c.post(ctx, "verdict/completeness", payload, &res); err != nil {
		return 0, fmt.Errorf("gross completeness: %w", err)
	}
	return res, nil
}

// PopulationConfidence computes the population confidence remotely.
func (c *Client) PopulationConfidence(ctx context.Context, records record.Set, voterList []string, opts verdict.CompletenessOptions) (float64, error) {
	var res float64
	payload := completenessPayload{Data: records, VoterList: voterList, InferenceIDs: opts.InferenceIDs}
	if err := c.post(ctx, "verdict/population-confidence", payload, &res); err != nil {
		return 0, fmt.Errorf("population confidence: %w", err)
	}
	return res, nil
}

type majorityPayload struct {
	Data      record.Set `json:"data"`
	GoodVote  any        `json:"good_vote"`
	Threshold float64    `json:"threshold"`
}

// MajorityGoodVotes computes per-inference majority flags remotely.
func (c *Client) MajorityGoodVotes(ctx context.Context, records record.Set, goodVote any, threshold float64) (map[string]bool, error) {
	var res map[string]bool
	payload := majorityPayload{Data: records, GoodVote: goodVote, Threshold: threshold}
	if err := c.post(ctx, "verdict/majority-good", payload, &res); err != nil {
		return nil, fmt.Errorf("majority good votes: %w", err)
	}
	return res, nil
}

type distributionPayload struct {
	Data         record.Set `json:"data"`
	InferenceIDs []string   `json:"inference_ids,omitempty"`
}

// Distribution computes per-inference vote distributions remotely.
func (c *Client) Distribution(ctx context.Context, records record.Set, inferenceIDs []string) (map[string]map[string]int, error) {
	var res map[string]map[string]int
	payload := distributionPayload{Data: records, InferenceIDs: inferenceIDs}
	if err := c.post(ctx, "verdict/votes-distribution", payload, &res); err != nil {
		return nil, fmt.Errorf("votes distribution: %w", err)
	}
	return res, nil
}

func (c *Client) post(ctx context.Context, endpoint string, payload, target any) error {
	body, err := c.codec.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	url := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set(headerContent, contentTypeJSON)
	req.Header.Set(headerRequestID, uuid.NewString())
	if c.apiKey != "" {
		req.Header.Set(headerAuth, "Bearer "+c.apiKey)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if err := c.codec.Unmarshal(data, target); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
