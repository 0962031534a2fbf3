package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"resume-builder/pkg/ai/formatters"
)

var (
	// ErrInvalidRequest reports a summary request with a missing field.
	ErrInvalidRequest = errors.New("missing required fields: jobTitle, experience, and skills")
	// ErrEmptySummary is returned when the ai-service answers with no text.
	ErrEmptySummary = errors.New("ai-service returned an empty summary")
)

const defaultBaseURL = "http://ai-service:8000"

// Client calls the internal ai-service chat endpoint.
type Client struct {
	BaseURL         string
	HTTP            *http.Client
	DefaultLanguage string
	Attempts        int
	Backoff         time.Duration
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		HTTP:     &http.Client{Timeout: 60 * time.Second},
		Attempts: 3,
		Backoff:  time.Second,
	}
}

// SummaryRequest is the input of GenerateSummary.
type SummaryRequest struct {
	JobTitle   string   `json:"jobTitle"`
	Experience string   `json:"experience"`
	Skills     []string `json:"skills"`
}

func (r SummaryRequest) validate() error {
	if strings.TrimSpace(r.JobTitle) == "" || strings.TrimSpace(r.Experience) == "" || len(r.Skills) == 0 {
		return ErrInvalidRequest
	}
	return nil
}

type chatRequest struct {
	Agent string `json:"agent"`
	Input string `json:"input"`
}

type chatResponse struct {
	Agent  string `json:"agent"`
	Output string `json:"output"`
}

// GenerateSummary asks the ai-service for a resume objective.
func (c *Client) GenerateSummary(ctx context.Context, req SummaryRequest) (string, error) {
	if err := req.validate(); err != nil {
		return "", err
	}
	prompt := formatters.SummaryPrompt(req.JobTitle, req.Experience, req.Skills, c.DefaultLanguage)
	body, err := json.Marshal(chatRequest{Agent: "auto", Input: prompt})
	if err != nil {
		return "", err
	}

	log.Debug().Str("url", c.BaseURL+"/v1/chat").Str("job_title", req.JobTitle).Msg("ai.client: generate summary")
	resp, err := c.doPostWithRetry(ctx, "/v1/chat", body)
	if err != nil {
		return "", fmt.Errorf("ai-service request: %w", err)
	}
	defer resp.Body.Close()

	rb, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		log.Warn().Int("status", resp.StatusCode).Msg("ai.client: non-200 from ai-service")
		return "", fmt.Errorf("ai-service returned non-200 status: %d", resp.StatusCode)
	}

	var chat chatResponse
	if err := json.Unmarshal(rb, &chat); err != nil {
		return "", fmt.Errorf("decode ai-service response: %w", err)
	}
	summary := formatters.CleanSummary(chat.Output)
	if summary == "" {
		return "", ErrEmptySummary
	}
	return summary, nil
}

// doPostWithRetry performs an HTTP POST to the given path with retry/backoff.
// 5xx answers are retried like transport errors.
func (c *Client) doPostWithRetry(ctx context.Context, path string, body []byte) (*http.Response, error) {
	attempts := c.Attempts
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.HTTP.Do(req)
		switch {
		case err != nil:
			lastErr = err
		case resp.StatusCode >= 500 && i < attempts-1:
			resp.Body.Close()
			lastErr = fmt.Errorf("ai-service returned status %d", resp.StatusCode)
		default:
			return resp, nil
		}
		log.Warn().Err(lastErr).Int("attempt", i+1).Msg("ai.client: request failed")
		// exponential backoff before retrying
		if i < attempts-1 {
			backoff := time.Duration(1<<i) * c.Backoff
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, lastErr
}
