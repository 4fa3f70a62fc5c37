package summary

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Astemirdum/smart-library/library/internal/errs"
	"github.com/Astemirdum/smart-library/library/internal/model"
	"github.com/Astemirdum/smart-library/pkg/circuit_breaker"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	maxTokens   = 200
	temperature = 0.7

	defaultRateLimitedRetry = 60 * time.Second
	transientRetry          = 30 * time.Second

	systemPrompt = "You are a professional librarian who writes clear, concise book summaries for library catalogs."
)

var ErrDisabled = errors.New("AI api key is not configured")

type Config struct {
	APIKey  string        `yaml:"apiKey" envconfig:"AI_API_KEY"`
	URL     string        `yaml:"url" envconfig:"AI_URL" default:"https://api.openai.com/v1/chat/completions"`
	Model   string        `yaml:"model" envconfig:"AI_MODEL" default:"gpt-3.5-turbo"`
	RPS     float64       `yaml:"rps" envconfig:"AI_RPS" default:"1"`
	Timeout time.Duration `yaml:"timeout" envconfig:"AI_TIMEOUT" default:"30s"`
}

type Client struct {
	cfg     Config
	client  *http.Client
	limiter *rate.Limiter
	cb      circuit_breaker.CircuitBreaker
	log     *zap.Logger
}

func NewClient(cfg Config, log *zap.Logger) *Client {
	return &Client{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RPS), 1),
		cb:      circuit_breaker.New(20, 30*time.Second, 0.5, 2, circuit_breaker.WithIgnored(isClientFault)),
		log:     log.Named("summary"),
	}
}

// isClientFault keeps auth and billing failures out of the breaker: they are not outages.
func isClientFault(err error) bool {
	var upErr *errs.UpstreamError
	return errors.As(err, &upErr) && !upErr.Retryable
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

func prompt(book model.Book) string {
	description := book.Description
	if strings.TrimSpace(description) == "" {
		description = "No description available"
	}
	return fmt.Sprintf(`You are a professional librarian writing book summaries for a library catalog.

Book Title: %q
Author: %q
Category: %s
Description: %s

Please provide a concise, engaging 3-5 line summary of this book that would help library patrons understand what the book is about and decide if they want to read it. Write in a clear, professional library style.`,
		book.Title, book.Author, book.Category, description)
}

// Summarize asks the provider for a short catalog summary of the book.
// Every failure is an *errs.UpstreamError.
func (c *Client) Summarize(ctx context.Context, book model.Book) (string, error) {
	if c.cfg.APIKey == "" {
		return "", errs.NewUpstreamError(errs.UpstreamAuth, 0, ErrDisabled)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", errs.NewUpstreamError(errs.UpstreamTransient, transientRetry, err)
	}

	var summary string
	err := c.cb.Call(func() error {
		var err error
		summary, err = c.complete(ctx, book)
		return err
	})
	if err != nil {
		if errors.Is(err, circuit_breaker.ErrOpenCB) {
			return "", errs.NewUpstreamError(errs.UpstreamTransient, transientRetry, err)
		}
		c.log.Warn("summarize", zap.String("book", book.ID.String()), zap.Error(err))
		return "", err
	}
	return summary, nil
}

func (c *Client) complete(ctx context.Context, book model.Book) (string, error) {
	body, err := json.Marshal(completionRequest{
		Model: c.cfg.Model,
		Messages: []message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt(book)},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", errors.Wrap(err, "marshal completion request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "new request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", errs.NewUpstreamError(errs.UpstreamTransient, transientRetry, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errs.NewUpstreamError(errs.UpstreamTransient, transientRetry, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", classify(resp, data)
	}

	var out completionResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", errs.NewUpstreamError(errs.UpstreamTransient, transientRetry, errors.Wrap(err, "decode completion"))
	}
	if len(out.Choices) == 0 {
		return "", errs.NewUpstreamError(errs.UpstreamTransient, transientRetry, errors.New("empty completion"))
	}
	summary := strings.TrimSpace(out.Choices[0].Message.Content)
	if summary == "" {
		return "", errs.NewUpstreamError(errs.UpstreamTransient, transientRetry, errors.New("empty completion"))
	}
	return summary, nil
}

func classify(resp *http.Response, body []byte) error {
	cause := fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(body), 256))
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return errs.NewUpstreamError(errs.UpstreamAuth, 0, cause)
	case http.StatusPaymentRequired:
		return errs.NewUpstreamError(errs.UpstreamBilling, 0, cause)
	case http.StatusTooManyRequests:
		return errs.NewUpstreamError(errs.UpstreamRateLimited, retryAfter(resp.Header.Get("Retry-After")), cause)
	default:
		return errs.NewUpstreamError(errs.UpstreamTransient, transientRetry, cause)
	}
}

func retryAfter(header string) time.Duration {
	if secs, err := strconv.Atoi(strings.TrimSpace(header)); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultRateLimitedRetry
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
