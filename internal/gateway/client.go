package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-console/pkg/config"
	appErrors "github.com/noah-isme/academic-console/pkg/errors"
	"github.com/noah-isme/academic-console/pkg/logger"
	"github.com/noah-isme/academic-console/pkg/middleware/requestid"
)

// DefaultTokenHeader is the header the backend reads the session token from.
const DefaultTokenHeader = "X-Auth-Token"

// Outcome labels for observed calls.
const (
	OutcomeSuccess   = "success"
	OutcomeFailure   = "backend_error"
	OutcomeTransport = "transport_error"
	OutcomeDecode    = "decode_error"
)

// Observer records one observation per backend call.
type Observer interface {
	ObserveGatewayCall(operation, outcome string, duration time.Duration)
}

// Client is the typed binding between console operations and the academic
// records API. Every method is a single round trip with no retry.
type Client struct {
	http        *resty.Client
	tokenHeader string
	observer    Observer
	logger      *zap.Logger
}

// New constructs a gateway client for cfg.
func New(cfg config.BackendConfig, observer Observer, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	header := cfg.TokenHeader
	if header == "" {
		header = DefaultTokenHeader
	}

	hc := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		hc.SetTimeout(cfg.Timeout)
	}

	return &Client{http: hc, tokenHeader: header, observer: observer, logger: logger}
}

type call struct {
	operation string
	method    string
	path      string
	token     string
	body      interface{}
}

type response struct {
	status int
	body   []byte
}

// execute performs the round trip. A missing token is not an error: the
// request is still sent and the backend decides.
func (c *Client) execute(ctx context.Context, cl call) (*response, error) {
	req := c.http.R().SetContext(ctx)
	if cl.token != "" {
		req.SetHeader(c.tokenHeader, cl.token)
	}
	if id := requestid.FromContext(ctx); id != "" {
		req.SetHeader(requestid.HeaderKey, id)
	}
	if cl.body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(cl.body)
	}

	resp, err := req.Execute(cl.method, cl.path)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status,
			fmt.Sprintf("%s: backend unreachable", cl.operation))
	}
	return &response{status: resp.StatusCode(), body: resp.Body()}, nil
}

func (c *Client) observe(ctx context.Context, cl call, outcome string, start time.Time, extra ...zap.Field) {
	duration := time.Since(start)
	if c.observer != nil {
		c.observer.ObserveGatewayCall(cl.operation, outcome, duration)
	}
	fields := append([]zap.Field{
		zap.String("operation", cl.operation),
		zap.String("method", cl.method),
		zap.String("path", cl.path),
		zap.String("outcome", outcome),
		zap.Duration("duration", duration),
	}, extra...)
	logger.WithContext(ctx, c.logger).Debug("gateway call", fields...)
}

// backendError extracts the message of an error body. It is only an error
// body when the top level value is an object with an "error" key.
func backendError(body []byte) (string, bool) {
	var envelope struct {
		Error *json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Error == nil {
		return "", false
	}
	var msg string
	if err := json.Unmarshal(*envelope.Error, &msg); err != nil {
		msg = strings.Trim(string(*envelope.Error), `"`)
	}
	if msg == "" {
		msg = "request failed"
	}
	return msg, true
}

func statusMessage(status int) string {
	text := http.StatusText(status)
	if text == "" {
		text = "unexpected status"
	}
	return fmt.Sprintf("backend responded %d %s", status, strings.ToLower(text))
}

// doResult runs a call whose body is either T or an error object.
func doResult[T any](ctx context.Context, c *Client, cl call) (Result[T], error) {
	start := time.Now()
	resp, err := c.execute(ctx, cl)
	if err != nil {
		c.observe(ctx, cl, OutcomeTransport, start, zap.Error(err))
		return Result[T]{}, err
	}

	if msg, ok := backendError(resp.body); ok {
		c.observe(ctx, cl, OutcomeFailure, start, zap.Int("status", resp.status), zap.String("error", msg))
		return Failure[T](msg), nil
	}
	if resp.status < 200 || resp.status > 299 {
		msg := statusMessage(resp.status)
		c.observe(ctx, cl, OutcomeFailure, start, zap.Int("status", resp.status))
		return Failure[T](msg), nil
	}

	var value T
	if len(strings.TrimSpace(string(resp.body))) == 0 {
		c.observe(ctx, cl, OutcomeSuccess, start, zap.Int("status", resp.status))
		return Success(value), nil
	}
	if err := json.Unmarshal(resp.body, &value); err != nil {
		wrapped := appErrors.Wrap(err, appErrors.ErrDecode.Code, appErrors.ErrDecode.Status,
			fmt.Sprintf("%s: backend response is not valid JSON", cl.operation))
		c.observe(ctx, cl, OutcomeDecode, start, zap.Error(err))
		return Result[T]{}, wrapped
	}

	c.observe(ctx, cl, OutcomeSuccess, start, zap.Int("status", resp.status))
	return Success(value), nil
}

// doList runs a call whose expected body is a JSON array of T. Anything else
// is an UNEXPECTED_PAYLOAD error.
func doList[T any](ctx context.Context, c *Client, cl call) ([]T, error) {
	start := time.Now()
	resp, err := c.execute(ctx, cl)
	if err != nil {
		c.observe(ctx, cl, OutcomeTransport, start, zap.Error(err))
		return nil, err
	}

	trimmed := strings.TrimSpace(string(resp.body))
	if !strings.HasPrefix(trimmed, "[") {
		msg := fmt.Sprintf("%s: expected a JSON array", cl.operation)
		if backendMsg, ok := backendError(resp.body); ok {
			msg = fmt.Sprintf("%s: %s", msg, backendMsg)
		} else if resp.status < 200 || resp.status > 299 {
			msg = fmt.Sprintf("%s: %s", msg, statusMessage(resp.status))
		}
		c.observe(ctx, cl, OutcomeDecode, start, zap.Int("status", resp.status))
		return nil, appErrors.Clone(appErrors.ErrUnexpectedPayload, msg)
	}

	items := make([]T, 0)
	if err := json.Unmarshal(resp.body, &items); err != nil {
		c.observe(ctx, cl, OutcomeDecode, start, zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrDecode.Code, appErrors.ErrDecode.Status,
			fmt.Sprintf("%s: backend response is not valid JSON", cl.operation))
	}

	c.observe(ctx, cl, OutcomeSuccess, start, zap.Int("status", resp.status), zap.Int("count", len(items)))
	return items, nil
}
