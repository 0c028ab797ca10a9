// Package github fetches work items, iterations, and field options from a
// GitHub Projects (v2) board over the GraphQL API.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/sprintstat/internal/config"
)

const tracerName = "sprintstat/source/github"

// maxErrorBody bounds how much of an error response is kept in the error message.
const maxErrorBody = 512

// Sentinel errors.
var (
	// ErrHTTPStatus is returned for a non-2xx API response.
	ErrHTTPStatus = errors.New("github api status")
	// ErrGraphQL is returned when the API reports query errors.
	ErrGraphQL = errors.New("github graphql error")
	// ErrProjectNotFound is returned when the organization or project does not resolve.
	ErrProjectNotFound = errors.New("github project not found")
	// ErrFieldNotFound is returned when a named field is missing or of the wrong type.
	ErrFieldNotFound = errors.New("github project field not found")
)

// Client talks to the GitHub GraphQL endpoint for one project.
type Client struct {
	endpoint string
	token    string
	org      string
	project  int
	pageSize int
	fields   config.FieldsConfig
	http     *http.Client
	logger   *slog.Logger
	tracer   trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.http = httpClient
	}
}

// WithLogger sets the client's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTracer sets the tracer used for request spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Client) {
		c.tracer = tracer
	}
}

// New creates a client for the configured project.
func New(cfg config.GitHubConfig, fields config.FieldsConfig, opts ...Option) *Client {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = config.DefaultGitHubPageSize
	}

	c := &Client{
		endpoint: cfg.Endpoint,
		token:    cfg.Token,
		org:      cfg.Org,
		project:  cfg.ProjectNumber,
		pageSize: pageSize,
		fields:   fields,
		http:     &http.Client{Timeout: cfg.Timeout},
		logger:   slog.Default(),
		tracer:   otel.Tracer(tracerName),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

// do posts a query and decodes its data into out.
func (c *Client) do(ctx context.Context, operation, query string, variables map[string]any, out any) error {
	ctx, span := c.tracer.Start(ctx, "github."+operation, trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("github.org", c.org), attribute.Int("github.project", c.project)))
	defer span.End()

	err := c.roundTrip(ctx, query, variables, out)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, operation+" failed")

		return fmt.Errorf("github %s: %w", operation, err)
	}

	return nil
}

func (c *Client) roundTrip(ctx context.Context, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

		return fmt.Errorf("%w %d: %s", ErrHTTPStatus, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var envelope graphQLResponse

	decodeErr := json.NewDecoder(resp.Body).Decode(&envelope)
	if decodeErr != nil {
		return fmt.Errorf("decode response: %w", decodeErr)
	}

	if len(envelope.Errors) > 0 {
		msgs := make([]string, 0, len(envelope.Errors))
		for _, e := range envelope.Errors {
			msgs = append(msgs, e.Message)
		}

		return fmt.Errorf("%w: %s", ErrGraphQL, strings.Join(msgs, "; "))
	}

	unmarshalErr := json.Unmarshal(envelope.Data, out)
	if unmarshalErr != nil {
		return fmt.Errorf("decode data: %w", unmarshalErr)
	}

	return nil
}

func (c *Client) projectVariables() map[string]any {
	return map[string]any{
		"login":  c.org,
		"number": c.project,
	}
}
