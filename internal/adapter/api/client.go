package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/rl1809/storefront/internal/config"
	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/metrics"
	"github.com/rl1809/storefront/internal/port"
)

var (
	ErrUnauthorized = errors.New("backend rejected credentials")
	ErrBackend      = errors.New("backend request failed")
)

var (
	_ port.AuthAPI    = (*Client)(nil)
	_ port.CatalogAPI = (*Client)(nil)
	_ port.OrderAPI   = (*Client)(nil)
	_ port.PointsAPI  = (*Client)(nil)
)

// TokenSource returns the bearer token for the current session, or "" when
// logged out.
type TokenSource func(ctx context.Context) string

// Client talks to the shop backend's REST API. It implements the auth,
// catalog, order and points ports.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	token   TokenSource
	log     logrus.FieldLogger
}

func NewClient(cfg config.BackendConfig, token TokenSource, log logrus.FieldLogger) *Client {
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	if token == nil {
		token = func(context.Context) string { return "" }
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(limit, burst),
		token:   token,
		log:     log,
	}
}

type request struct {
	endpoint    string
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
	headers     map[string]string
}

func (c *Client) jsonRequest(endpoint, method, path string, payload interface{}) (request, error) {
	req := request{endpoint: endpoint, method: method, path: path}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return req, fmt.Errorf("encode %s request: %w", endpoint, err)
		}
		req.body = bytes.NewReader(data)
		req.contentType = "application/json"
	}
	return req, nil
}

// do sends the request and decodes a 2xx body into out. Non-2xx responses
// become a *domain.UserError when the backend supplied a message.
func (c *Client) do(ctx context.Context, r request, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s: %w", r.endpoint, err)
	}

	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, r.body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", r.endpoint, err)
	}
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token := c.token(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordBackendCall(r.endpoint, 0, time.Since(start))
		return fmt.Errorf("%s: %w: %v", r.endpoint, ErrBackend, err)
	}
	defer resp.Body.Close()
	metrics.RecordBackendCall(r.endpoint, resp.StatusCode, time.Since(start))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", r.endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.WithFields(logrus.Fields{
			"endpoint": r.endpoint,
			"status":   resp.StatusCode,
		}).Debug("backend returned error")
		return responseError(r.endpoint, resp.StatusCode, body)
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], body...)
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", r.endpoint, err)
	}
	return nil
}

func responseError(endpoint string, status int, body []byte) error {
	cause := ErrBackend
	if status == http.StatusUnauthorized {
		cause = ErrUnauthorized
	}
	err := fmt.Errorf("%s: %w (status %d)", endpoint, cause, status)

	var payload struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Message != "" {
		return &domain.UserError{Message: payload.Message, Err: err}
	}
	return err
}

type formFile struct {
	field string
	name  string
	data  []byte
}

// multipartRequest builds a form body. Empty values are skipped, as are
// files without content.
func multipartRequest(endpoint, method, path string, fields [][2]string, file formFile) (request, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range fields {
		if f[1] == "" {
			continue
		}
		if err := w.WriteField(f[0], f[1]); err != nil {
			return request{}, fmt.Errorf("encode %s form: %w", endpoint, err)
		}
	}
	if len(file.data) > 0 {
		name := file.name
		if name == "" {
			name = file.field
		}
		part, err := w.CreateFormFile(file.field, name)
		if err != nil {
			return request{}, fmt.Errorf("encode %s form: %w", endpoint, err)
		}
		if _, err := part.Write(file.data); err != nil {
			return request{}, fmt.Errorf("encode %s form: %w", endpoint, err)
		}
	}
	if err := w.Close(); err != nil {
		return request{}, fmt.Errorf("encode %s form: %w", endpoint, err)
	}

	return request{
		endpoint:    endpoint,
		method:      method,
		path:        path,
		body:        &buf,
		contentType: w.FormDataContentType(),
	}, nil
}

func pageQuery(q url.Values, p domain.Page) {
	if p.Limit > 0 {
		q.Set("limit", fmt.Sprint(p.Limit))
	}
	if p.Number > 0 {
		q.Set("page", fmt.Sprint(p.Number))
	}
}
