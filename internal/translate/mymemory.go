package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// cacheSize bounds the remembered translations. A full cache is cleared.
const cacheSize = 4096

// MyMemoryClient translates through the public MyMemory API. Successful
// answers are cached in memory.
type MyMemoryClient struct {
	client  *http.Client
	baseURL string

	mu    sync.Mutex
	cache map[string]string
	group singleflight.Group
}

// NewMyMemoryClient creates a client with the given request timeout
func NewMyMemoryClient(timeout time.Duration) *MyMemoryClient {
	return &MyMemoryClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: "https://api.mymemory.translated.net/get",
		cache:   make(map[string]string),
	}
}

type myMemoryResponse struct {
	ResponseStatus  json.RawMessage `json:"responseStatus"`
	ResponseDetails json.RawMessage `json:"responseDetails"`
	ResponseData    struct {
		TranslatedText string `json:"translatedText"`
	} `json:"responseData"`
}

// Translate returns text translated from source to target.
func (c *MyMemoryClient) Translate(ctx context.Context, text, source, target string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}
	key := source + "|" + target + "|" + text

	c.mu.Lock()
	cached, ok := c.cache[key]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		out, err := c.fetch(ctx, text, source, target)
		if err != nil {
			return "", err
		}
		c.mu.Lock()
		if len(c.cache) >= cacheSize {
			clear(c.cache)
		}
		c.cache[key] = out
		c.mu.Unlock()
		return out, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *MyMemoryClient) fetch(ctx context.Context, text, source, target string) (string, error) {
	params := url.Values{}
	params.Set("q", text)
	params.Set("langpair", source+"|"+target)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "LanguageCoach/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach MyMemory: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("MyMemory error (HTTP %d)", resp.StatusCode)
	}

	var payload myMemoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode MyMemory response: %w", err)
	}

	// responseStatus arrives as a number on success and sometimes as a string
	if status := rawText(payload.ResponseStatus); status != "200" {
		if detail := rawText(payload.ResponseDetails); detail != "" {
			return "", errors.New(detail)
		}
		return "", fmt.Errorf("MyMemory error (status %s)", status)
	}
	return strings.TrimSpace(payload.ResponseData.TranslatedText), nil
}

// rawText renders a JSON scalar as plain text: strings are unquoted and
// null is empty.
func rawText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return string(raw)
}
