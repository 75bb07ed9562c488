// Package supabase implements port.Store on a Supabase Postgres database
// through its PostgREST API. Every call runs inside a bulkhead, a circuit
// breaker and retry with backoff.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/boddenberg/cost-dashboard-go/internal/domain"
	"github.com/boddenberg/cost-dashboard-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("supabase")

// Client wraps HTTP calls to Supabase PostgREST API.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	serviceRoleKey string
	cb             *gobreaker.CircuitBreaker
	bulkhead       *resilience.Bulkhead
	cfg            resilience.Config
	logger         *zap.Logger
}

// NewClient creates a Supabase client. A nil cb gets the default breaker.
func NewClient(httpClient *http.Client, baseURL, apiKey, serviceRoleKey string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, logger *zap.Logger) *Client {
	if cb == nil {
		cb = resilience.NewCircuitBreaker("supabase", IsSuccessful)
	}
	return &Client{
		httpClient:     httpClient,
		baseURL:        strings.TrimRight(baseURL, "/"),
		apiKey:         apiKey,
		serviceRoleKey: serviceRoleKey,
		cb:             cb,
		bulkhead:       resilience.NewBulkhead(cfg.MaxConcurrency),
		cfg:            cfg,
		logger:         logger,
	}
}

// IsSuccessful tells the circuit breaker which errors are the caller's
// fault rather than the backend's.
func IsSuccessful(err error) bool {
	if err == nil {
		return true
	}
	var (
		conflict *domain.ErrConflict
		invalid  *domain.ErrValidation
		notFound *domain.ErrNotFound
		api      *apiError
	)
	switch {
	case errors.As(err, &conflict), errors.As(err, &invalid), errors.As(err, &notFound):
		return true
	case errors.As(err, &api):
		return api.status < 500
	}
	return false
}

// apiError is a non-2xx PostgREST response.
type apiError struct {
	status  int
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("supabase returned status %d: %s %s", e.status, e.Code, e.Message)
}

// Postgres error codes surfaced by PostgREST.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// doRequest executes an authenticated request to Supabase PostgREST.
// body, when non-nil, is sent as JSON. Non-2xx responses come back as
// *apiError; 4xx ones are marked permanent so they are not retried.
func (c *Client) doRequest(ctx context.Context, method, path string, body any) ([]byte, error) {
	respBody, _, err := c.send(ctx, method, path, body)
	return respBody, err
}

// send is doRequest that also returns the response headers. Reads ask
// PostgREST for an exact count so Content-Range carries the total.
func (c *Client) send(ctx context.Context, method, path string, body any) ([]byte, http.Header, error) {
	url := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, path)

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, nil, resilience.Permanent(fmt.Errorf("encode %s body: %w", method, err))
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		c.logger.Error("supabase: failed to create request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, nil, resilience.Permanent(err)
	}

	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.serviceRoleKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if method == http.MethodGet {
		req.Header.Set("Prefer", "count=exact")
	} else {
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("supabase: request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("supabase: failed to read response body",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("supabase: non-2xx response",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(respBody)),
		)
		apiErr := &apiError{status: resp.StatusCode}
		_ = json.Unmarshal(respBody, apiErr)
		if resp.StatusCode < 500 {
			return nil, nil, resilience.Permanent(translate(apiErr))
		}
		return nil, nil, apiErr
	}

	c.logger.Debug("supabase: request OK",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
	)
	return respBody, resp.Header, nil
}

// translate maps constraint violations onto domain errors.
func translate(e *apiError) error {
	switch {
	case e.Code == pgUniqueViolation || (e.status == http.StatusConflict && e.Code == ""):
		return &domain.ErrConflict{Message: "Record already exists"}
	case e.Code == pgForeignKeyViolation:
		return &domain.ErrValidation{Field: fieldFromDetails(e.Details), Message: "References an unknown record"}
	}
	return e
}

// fieldFromDetails turns `Key (service_id)=(9) is not present ...` into "serviceId".
func fieldFromDetails(details string) string {
	start := strings.Index(details, "Key (")
	if start < 0 {
		return ""
	}
	rest := details[start+len("Key ("):]
	end := strings.Index(rest, ")")
	if end < 0 {
		return ""
	}
	return camelCase(rest[:end])
}

func camelCase(snake string) string {
	parts := strings.Split(snake, "_")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "")
}

// call runs fn inside the bulkhead, circuit breaker and retry loop and
// converts infrastructure failures into domain errors.
func (c *Client) call(ctx context.Context, op string, fn func() error) error {
	err := c.bulkhead.Do(ctx, func() error {
		_, err := c.cb.Execute(func() (any, error) {
			return nil, resilience.RetryWithBackoff(ctx, c.cfg, fn)
		})
		return err
	})
	if err == nil {
		return nil
	}

	var (
		conflict *domain.ErrConflict
		invalid  *domain.ErrValidation
		notFound *domain.ErrNotFound
	)
	switch {
	case errors.As(err, &conflict), errors.As(err, &invalid), errors.As(err, &notFound):
		return err
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return &domain.ErrCircuitOpen{Service: "supabase"}
	case errors.Is(err, context.DeadlineExceeded):
		return &domain.ErrTimeout{Operation: "supabase/" + op}
	}
	return &domain.ErrExternalService{Service: "supabase/" + op, Err: err}
}

// Ping checks PostgREST answers with a cheap read.
func (c *Client) Ping(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "Supabase.Ping")
	defer span.End()

	_, err := c.doRequest(ctx, http.MethodGet, "service_category?select=id&limit=1", nil)
	return err
}
