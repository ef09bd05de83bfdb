package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// ErrMissingCredential indicates the judge API key was not configured.
var ErrMissingCredential = errors.New("judge api key missing")

// ErrUnsupportedLanguage indicates the language has no runtime mapping.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// ErrSubmission indicates the create-submission request failed. Definitive
// failure responses are terminal and never retried.
var ErrSubmission = errors.New("submission rejected")

// ErrPollTimeout indicates the verdict never stabilized within the attempt cap.
var ErrPollTimeout = errors.New("verdict polling timed out")

// Runtime identifiers understood by the execution service.
var languageIDs = map[string]int{
	"python":     71,
	"javascript": 63,
	"cpp":        54,
}

// LanguageID maps an editor language to the execution service runtime id.
func LanguageID(language string) (int, bool) {
	id, ok := languageIDs[language]
	return id, ok
}

// Client runs candidate source against the external execution service.
type Client interface {
	Submit(ctx context.Context, source, language string) (string, error)
	Wait(ctx context.Context, token string) (Verdict, error)
}

// Config describes how to reach the execution service.
type Config struct {
	BaseURL      string
	APIKey       string
	APIHost      string
	PollInterval time.Duration
	PollAttempts int
	HTTPClient   *http.Client
}

type client struct {
	config Config
	http   *http.Client
	logger zerolog.Logger
}

// New constructs a judge client. The API key is a hard precondition; its
// absence is reported here rather than silently producing failing requests.
func New(cfg Config, logger zerolog.Logger) (Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingCredential
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("judge base url must be provided")
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.PollAttempts <= 0 {
		cfg.PollAttempts = 10
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}

	return &client{
		config: cfg,
		http:   httpClient,
		logger: logger.With().Str("component", "judge_client").Logger(),
	}, nil
}

type submissionRequest struct {
	SourceCode string `json:"source_code"`
	LanguageID int    `json:"language_id"`
	Stdin      string `json:"stdin"`
}

type submissionResponse struct {
	Token string `json:"token"`
}

func (c *client) Submit(ctx context.Context, source, language string) (string, error) {
	languageID, ok := LanguageID(language)
	if !ok {
		return "", ErrUnsupportedLanguage
	}

	body, err := json.Marshal(submissionRequest{SourceCode: source, LanguageID: languageID})
	if err != nil {
		return "", fmt.Errorf("encode submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/submissions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build submission request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSubmission, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn().Int("status", resp.StatusCode).Bytes("body", payload).Msg("submission rejected by execution service")
		return "", fmt.Errorf("%w: status %d", ErrSubmission, resp.StatusCode)
	}

	var parsed submissionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrSubmission, err)
	}
	if parsed.Token == "" {
		return "", fmt.Errorf("%w: empty token", ErrSubmission)
	}

	return parsed.Token, nil
}

func (c *client) Wait(ctx context.Context, token string) (Verdict, error) {
	ticker := time.NewTicker(c.config.PollInterval)
	defer ticker.Stop()

	for attempt := 0; attempt < c.config.PollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return Verdict{}, ctx.Err()
		case <-ticker.C:
		}

		verdict, err := c.fetch(ctx, token)
		if err != nil {
			return Verdict{}, err
		}

		if verdict.Terminal() {
			return verdict, nil
		}
	}

	return Verdict{}, ErrPollTimeout
}

func (c *client) fetch(ctx context.Context, token string) (Verdict, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/submissions/"+token, nil)
	if err != nil {
		return Verdict{}, fmt.Errorf("build poll request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return Verdict{}, fmt.Errorf("poll submission: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Verdict{}, fmt.Errorf("poll submission: status %d", resp.StatusCode)
	}

	var verdict Verdict
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		return Verdict{}, fmt.Errorf("decode verdict: %w", err)
	}
	verdict.Token = token

	return verdict, nil
}

func (c *client) setHeaders(req *http.Request) {
	req.Header.Set("X-RapidAPI-Key", c.config.APIKey)
	if c.config.APIHost != "" {
		req.Header.Set("X-RapidAPI-Host", c.config.APIHost)
	}
}
