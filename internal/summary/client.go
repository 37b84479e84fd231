// Package summary calls the external LLM service that turns a meeting
// snapshot into a digest. The call is stateless; signaling state is never
// touched by a summarization failure.
package summary

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/domain"
)

// Typed failure reasons, surfaced to the requesting client so it can show
// an appropriate message.
var (
	ErrRateLimited    = errors.New("summarizer rate limited")
	ErrUnavailable    = errors.New("summarizer unavailable")
	ErrBadCredentials = errors.New("summarizer credentials rejected")
	ErrEmptyResponse  = errors.New("summarizer returned no content")
)

// Tier is one credential/model combination. On rate limiting the client
// falls through to the next tier instead of hammering the same one.
type Tier struct {
	APIKey string
	Model  string
}

type Client struct {
	baseURL     string
	tiers       []Tier
	maxAttempts uint64
	client      *http.Client
}

func NewClient(baseURL string, tiers []Tier, maxAttempts int, timeout time.Duration) *Client {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		tiers:       tiers,
		maxAttempts: uint64(maxAttempts),
		client:      &http.Client{Timeout: timeout},
	}
}

type chatRequest struct {
	Model       string              `json:"model"`
	Messages    []map[string]string `json:"messages"`
	Temperature float64             `json:"temperature,omitempty"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Summarize produces a meeting digest from a snapshot.
func (c *Client) Summarize(ctx context.Context, snap domain.Snapshot) (string, error) {
	prompt := fmt.Sprintf(
		"Summarize this meeting. Produce key discussion points, decisions and action items.\n\n%s",
		renderSnapshot(snap),
	)
	return c.complete(ctx, prompt)
}

// Chat answers a free-form question grounded in the meeting snapshot.
func (c *Client) Chat(ctx context.Context, snap domain.Snapshot, question string) (string, error) {
	prompt := fmt.Sprintf(
		"Answer the question using only this meeting's content.\n\nQuestion: %s\n\n%s",
		question, renderSnapshot(snap),
	)
	return c.complete(ctx, prompt)
}

// complete walks the configured tiers: transient failures retry with
// exponential backoff within a tier, rate limiting falls through to the
// next tier, and a credentials rejection aborts immediately.
func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	if len(c.tiers) == 0 {
		return "", ErrBadCredentials
	}

	rateLimited := false
	for _, tier := range c.tiers {
		var content string
		op := func() error {
			var err error
			content, err = c.call(ctx, tier, prompt)
			return err
		}

		bo := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxAttempts-1)
		err := backoff.Retry(op, backoff.WithContext(bo, ctx))
		if err == nil {
			return content, nil
		}
		if errors.Is(err, ErrBadCredentials) {
			return "", ErrBadCredentials
		}
		if errors.Is(err, ErrRateLimited) {
			rateLimited = true
		}
		log.Warn().Err(err).Str("module", "summary").Str("model", tier.Model).Msg("tier exhausted, trying next")
	}

	if rateLimited {
		return "", ErrRateLimited
	}
	return "", ErrUnavailable
}

func (c *Client) call(ctx context.Context, tier Tier, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       tier.Model,
		Messages:    []map[string]string{{"role": "user", "content": prompt}},
		Temperature: 0.3,
		MaxTokens:   2048,
	})
	if err != nil {
		return "", backoff.Permanent(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", backoff.Permanent(err)
	}
	req.Header.Set("Authorization", "Bearer "+tier.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", backoff.Permanent(ErrBadCredentials)
	case resp.StatusCode == http.StatusTooManyRequests:
		// Tier fall-through handles rate limits; retrying here would
		// just burn the same quota.
		return "", backoff.Permanent(ErrRateLimited)
	case resp.StatusCode >= 500:
		return "", fmt.Errorf("summarizer status %d: %w", resp.StatusCode, ErrUnavailable)
	case resp.StatusCode >= 400:
		return "", backoff.Permanent(fmt.Errorf("summarizer status %d: %w", resp.StatusCode, ErrUnavailable))
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", fmt.Errorf("decode summarizer response: %w", err)
	}
	if len(cr.Choices) == 0 || cr.Choices[0].Message.Content == "" {
		return "", backoff.Permanent(ErrEmptyResponse)
	}
	return cr.Choices[0].Message.Content, nil
}

func renderSnapshot(snap domain.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Meeting: %s\n\nTranscript:\n", snap.Title)
	for _, e := range snap.Transcript {
		fmt.Fprintf(&b, "%s: %s\n", e.Username, e.Text)
	}
	b.WriteString("\nChat:\n")
	for _, m := range snap.Messages {
		switch m.Kind {
		case domain.MessageText:
			fmt.Fprintf(&b, "%s: %s\n", m.Username, m.Text)
		case domain.MessageFile:
			fmt.Fprintf(&b, "%s shared file %s\n", m.Username, m.File.Name)
		case domain.MessagePoll:
			fmt.Fprintf(&b, "%s created poll: %s\n", m.Username, m.Poll.Question)
		}
	}
	b.WriteString("\nActivity:\n")
	for _, a := range snap.Activities {
		fmt.Fprintf(&b, "%s %s\n", a.Username, a.Type)
	}
	return b.String()
}
