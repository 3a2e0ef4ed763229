package llm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/AngelCh415/insightchat-go/internal/telemetry"
)

const DefaultTimeout = 30 * time.Second

// HTTPClient is the transport seam; *http.Client satisfies it.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

func NewHTTPClient(timeout time.Duration) HTTPClient {
	return &http.Client{Timeout: timeout}
}

type Config struct {
	APIKey  string
	ModelID string
	BaseURL string
	Timeout time.Duration
}

type ErrorKind string

const (
	KindTransport ErrorKind = "transport"
	KindStatus    ErrorKind = "status"
	KindStructure ErrorKind = "structure"
)

type ClientError struct {
	Kind       ErrorKind
	StatusCode int
	Body       string
	Msg        string
	Err        error
}

func (e *ClientError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *ClientError) Unwrap() error { return e.Err }

// Client sends single-shot chat completions. No retries.
type Client struct {
	httpc    HTTPClient
	apiKey   string
	model    string
	endpoint string
}

func New(cfg Config) (*Client, error) {
	return NewWithHTTPClient(cfg, nil)
}

// NewWithHTTPClient uses c as transport; nil means a client with cfg.Timeout
// (DefaultTimeout when zero).
func NewWithHTTPClient(cfg Config, c HTTPClient) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("llm: api key is required")
	}
	if cfg.ModelID == "" {
		return nil, errors.New("llm: model id is required")
	}
	if c == nil {
		to := cfg.Timeout
		if to <= 0 {
			to = DefaultTimeout
		}
		c = NewHTTPClient(to)
	}
	return &Client{
		httpc:    c,
		apiKey:   cfg.APIKey,
		model:    cfg.ModelID,
		endpoint: strings.TrimRight(cfg.BaseURL, "/") + "/chat/completions",
	}, nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type completionResponse struct {
	Choices []struct {
		Message *struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends prompt as a single user message and returns the first
// choice's content.
func (c *Client) Complete(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error) {
	start := time.Now()
	out, err := c.complete(ctx, prompt, temperature, maxTokens)
	telemetry.CompletionDuration.Observe(time.Since(start).Seconds())

	outcome := "ok"
	var cerr *ClientError
	if errors.As(err, &cerr) {
		outcome = string(cerr.Kind)
	}
	telemetry.CompletionRequests.WithLabelValues(outcome).Inc()
	return out, err
}

func (c *Client) complete(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error) {
	b, err := json.Marshal(completionRequest{
		Model:       c.model,
		Messages:    []message{{Role: "user", Content: prompt}},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("llm: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(b))
	if err != nil {
		return "", fmt.Errorf("llm: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", &ClientError{Kind: KindTransport, Msg: "Network error while calling completion API", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ClientError{Kind: KindTransport, Msg: "Network error while calling completion API", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &ClientError{
			Kind:       KindStatus,
			StatusCode: resp.StatusCode,
			Body:       string(body),
			Msg:        fmt.Sprintf("Completion API error (status %d): %s", resp.StatusCode, body),
		}
	}

	return extractContent(body)
}

// extractContent reads choices[0].message.content; anything else is a
// structural fault.
func extractContent(body []byte) (string, error) {
	var r completionResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return "", &ClientError{Kind: KindStructure, Msg: "Unexpected response structure from completion API", Err: err}
	}
	missing := func(what string) error {
		return &ClientError{Kind: KindStructure, Msg: "Unexpected response structure from completion API: missing " + what}
	}
	if len(r.Choices) == 0 {
		return "", missing("choices[0]")
	}
	if r.Choices[0].Message == nil {
		return "", missing("choices[0].message")
	}
	if r.Choices[0].Message.Content == nil {
		return "", missing("choices[0].message.content")
	}
	return *r.Choices[0].Message.Content, nil
}
