package progress

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	wordProgressPath = "/api/word_progress"
	completePath     = "/api/complete"
	activityPath     = "/api/activity"
	lessonSeenPath   = "/api/lesson_seen"

	defaultReportTimeout = 5 * time.Second
)

type sessionKey struct{}

// WithSession tags ctx with a drill session id. The client forwards it on
// every request it makes under that context.
func WithSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionKey{}, sessionID)
}

// SessionFromContext returns the drill session id stored by WithSession.
func SessionFromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}

// Client posts progress reports to a progress server.
//
// ReportWord and ReportCompletion never block and never fail: each report is
// sent on its own goroutine with a timeout and any error is logged at debug
// level and dropped.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	log        logrus.FieldLogger

	wg sync.WaitGroup
}

// NewClient creates a client for the server at baseURL. An empty baseURL
// yields a client that discards every report.
func NewClient(baseURL string, log logrus.FieldLogger) *Client {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultReportTimeout},
		timeout:    defaultReportTimeout,
		log:        log,
	}
}

// SetTimeout changes the per-report timeout.
func (c *Client) SetTimeout(d time.Duration) {
	c.timeout = d
	c.httpClient.Timeout = d
}

// ReportWord sends a word result in the background.
func (c *Client) ReportWord(ctx context.Context, result WordResult) {
	c.dispatch(ctx, wordProgressPath, result)
}

// ReportCompletion sends a lesson result in the background.
func (c *Client) ReportCompletion(ctx context.Context, result LessonResult) {
	c.dispatch(ctx, completePath, result)
}

// ReportLessonSeen marks a lesson as opened in the background.
func (c *Client) ReportLessonSeen(ctx context.Context, visit LessonVisit) {
	c.dispatch(ctx, lessonSeenPath, visit)
}

// Wait blocks until every report dispatched so far has finished.
func (c *Client) Wait() {
	c.wg.Wait()
}

// Activity fetches today's activity summary.
func (c *Client) Activity(ctx context.Context) (ActivitySummary, error) {
	var summary ActivitySummary
	if c.baseURL == "" {
		return summary, fmt.Errorf("progress server not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+activityPath, nil)
	if err != nil {
		return summary, fmt.Errorf("failed to create request: %w", err)
	}
	c.decorate(ctx, req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return summary, fmt.Errorf("failed to fetch activity: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return summary, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		return summary, fmt.Errorf("failed to decode activity: %w", err)
	}
	return summary, nil
}

func (c *Client) dispatch(ctx context.Context, path string, payload any) {
	if c == nil || c.baseURL == "" {
		return
	}

	// The report outlives the caller's request scope but keeps its values.
	ctx = context.WithoutCancel(ctx)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		ctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		if err := c.post(ctx, path, payload); err != nil {
			c.log.WithFields(logrus.Fields{
				"path":    path,
				"session": SessionFromContext(ctx),
			}).WithError(err).Debug("progress report dropped")
		}
	}()
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.decorate(ctx, req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send report: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) decorate(ctx context.Context, req *http.Request) {
	req.Header.Set("X-Request-Id", uuid.NewString())
	if session := SessionFromContext(ctx); session != "" {
		req.Header.Set("X-Session-Id", session)
	}
}
