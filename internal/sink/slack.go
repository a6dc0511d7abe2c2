package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/amishk599/ghboard/internal/model"
)

// Ensure SlackSink implements model.Sink.
var _ model.Sink = (*SlackSink)(nil)

// SlackSink posts each record to a Slack channel via Incoming Webhooks.
type SlackSink struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger

	mu       sync.Mutex // serializes posts so the pacing gap holds across boards
	gap      time.Duration
	lastSent time.Time
}

// NewSlackSink returns a sink that posts each record to Slack via webhook.
func NewSlackSink(webhookURL string, httpClient *http.Client, logger *slog.Logger) *SlackSink {
	return &SlackSink{
		webhookURL: webhookURL,
		httpClient: httpClient,
		logger:     logger,
		gap:        500 * time.Millisecond,
	}
}

// Emit sends the record as one Block Kit message. A 429 is retried once
// after the Retry-After delay.
func (s *SlackSink) Emit(ctx context.Context, rec model.Record) error {
	body, err := json.Marshal(buildPayload(rec))
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if wait := s.gap - time.Since(s.lastSent); wait > 0 {
		if err := sleepCtx(ctx, wait); err != nil {
			return err
		}
	}
	defer func() { s.lastSent = time.Now() }()

	status, retryAfter, err := s.post(ctx, body)
	if err != nil {
		return fmt.Errorf("post to slack: %w", err)
	}

	if status == http.StatusTooManyRequests {
		s.logger.Warn("slack rate limited, retrying", "retry_after_secs", retryAfter)
		if err := sleepCtx(ctx, time.Duration(retryAfter)*time.Second); err != nil {
			return err
		}

		status, _, err = s.post(ctx, body)
		if err != nil {
			return fmt.Errorf("post to slack (retry): %w", err)
		}
		if status != http.StatusOK {
			return fmt.Errorf("slack returned %d on retry", status)
		}
		s.logger.Debug("slack message sent", "company", rec.Company, "title", rec.Title, "retried", true)
		return nil
	}

	if status != http.StatusOK {
		return fmt.Errorf("slack returned %d", status)
	}
	s.logger.Debug("slack message sent", "company", rec.Company, "title", rec.Title)
	return nil
}

// post sends body and returns the status and the Retry-After seconds (>= 1).
func (s *SlackSink) post(ctx context.Context, body []byte) (int, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return 0, 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()

	secs, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
	if secs <= 0 {
		secs = 1
	}
	return resp.StatusCode, secs, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Block Kit payload types.

type slackPayload struct {
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type     string         `json:"type"`
	Text     *slackText     `json:"text,omitempty"`
	Fields   []slackText    `json:"fields,omitempty"`
	Elements []slackElement `json:"elements,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type slackElement struct {
	Type  string    `json:"type"`
	Text  slackText `json:"text"`
	URL   string    `json:"url"`
	Style string    `json:"style"`
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func buildPayload(rec model.Record) slackPayload {
	company := capitalize(rec.Company)

	workplace := "On-site"
	switch {
	case rec.IsRemote:
		workplace = "Remote"
	case rec.IsHybrid:
		workplace = "Hybrid"
	}

	salary := "Not listed"
	if rec.Salary != nil {
		salary = rec.Salary.Display()
	}

	blocks := []slackBlock{
		{
			Type: "header",
			Text: &slackText{Type: "plain_text", Text: "🚀 " + company + ": " + rec.Title},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: "*Company:*\n" + company},
				{Type: "mrkdwn", Text: "*Location:*\n" + orDash(rec.Location)},
			},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: "*Department:*\n" + orDash(rec.Department)},
				{Type: "mrkdwn", Text: "*Workplace:*\n" + workplace},
			},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: "*Salary:*\n" + salary},
				{Type: "mrkdwn", Text: "*Updated:*\n" + orDash(rec.PublishedAt)},
			},
		},
		{
			Type: "actions",
			Elements: []slackElement{
				{
					Type:  "button",
					Text:  slackText{Type: "plain_text", Text: "Apply Now"},
					URL:   rec.ApplyURL,
					Style: "primary",
				},
			},
		},
		{Type: "divider"},
	}

	return slackPayload{Blocks: blocks}
}
