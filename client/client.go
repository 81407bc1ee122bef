// Package client talks to an annotation backend over HTTP and owns the
// "current conversion" of an interactive session.
package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"furiganalyrics/model"
)

// FuriganaPath is the backend's conversion endpoint.
const FuriganaPath = "/api/furigana"

// Backend converts lyrics into annotated lines. Both Client and
// annotate.Annotator implement it.
type Backend interface {
	Fetch(ctx context.Context, req model.Request) ([]model.Line, error)
}

// StatusError reports a non-2xx backend response.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.Code)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.Code, e.Message)
}

// Options configures a Client.
type Options struct {
	BaseURL string
	Timeout time.Duration
	Retries int
}

// Client is a resty-backed Backend.
type Client struct {
	http *resty.Client
}

// New returns a Client for the backend at opts.BaseURL.
func New(opts Options) *Client {
	c := resty.New().
		SetBaseURL(opts.BaseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetRetryCount(opts.Retries).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second)
	if opts.Timeout > 0 {
		c.SetTimeout(opts.Timeout)
	}
	c.AddRetryCondition(retryCondition)
	return &Client{http: c}
}

// retryCondition retries server errors. Network errors are retried by resty
// unless the request context is done.
func retryCondition(r *resty.Response, err error) bool {
	if err != nil || r == nil {
		return false
	}
	if r.Request != nil && r.Request.Context().Err() != nil {
		return false
	}
	return r.StatusCode() >= http.StatusInternalServerError
}

// Fetch posts req and decodes the lines of the response.
func (c *Client) Fetch(ctx context.Context, req model.Request) ([]model.Line, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		Post(FuriganaPath)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("client: post %s: %w", FuriganaPath, err)
	}
	if code := resp.StatusCode(); code < 200 || code >= 300 {
		return nil, &StatusError{Code: code, Message: gjson.GetBytes(resp.Body(), "error").String()}
	}
	return model.DecodeLines(resp.Body())
}
