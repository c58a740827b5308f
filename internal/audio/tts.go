// Package audio generates and caches spoken cues as MP3 files.
package audio

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// MaxTextLength is the longest text accepted, in characters
const MaxTextLength = 400

// chunkLength is the longest piece sent to Google in one request.
const chunkLength = 100

// cacheProvider prefixes every cache key, so the same text and language map
// to the same file whichever server provider is configured.
const cacheProvider = "gtts"

var (
	ErrEmptyText           = errors.New(`missing "text"`)
	ErrTextTooLong         = fmt.Errorf("text too long (max %d chars)", MaxTextLength)
	ErrUnsupportedLanguage = errors.New("unsupported language (use en-US, fr-FR, es-ES, bn-BD)")
)

// supportedLanguages maps a language tag prefix to the TTS language code
var supportedLanguages = []string{"fr", "es", "en", "bn"}

// Request is a validated TTS request
type Request struct {
	Text string
	Lang string
}

// Prepare validates text and a BCP 47 language tag and normalizes them
// for synthesis. Whitespace runs collapse to single spaces.
func Prepare(text, langTag string) (Request, error) {
	text = strings.TrimSpace(text)
	tag := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(langTag)), "_", "-")

	if text == "" {
		return Request{}, ErrEmptyText
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		return Request{}, ErrTextTooLong
	}

	for _, code := range supportedLanguages {
		if strings.HasPrefix(tag, code) {
			return Request{Text: strings.Join(strings.Fields(text), " "), Lang: code}, nil
		}
	}
	return Request{}, ErrUnsupportedLanguage
}

// CacheKey names the cached file for r
func (r Request) CacheKey() string {
	sum := sha256.Sum256([]byte(cacheProvider + "|" + r.Lang + "|" + r.Text))
	return hex.EncodeToString(sum[:])
}

// Fetcher produces MP3 audio for one piece of text
type Fetcher interface {
	Fetch(ctx context.Context, text, lang, tld string, w io.Writer) error
}

// GoogleFetcher uses Google Translate's text-to-speech endpoint.
type GoogleFetcher struct {
	client *http.Client
	// baseURL is formatted with the top-level domain.
	baseURL string
}

// NewGoogleFetcher creates a fetcher with the given request timeout
func NewGoogleFetcher(timeout time.Duration) *GoogleFetcher {
	return &GoogleFetcher{
		client:  &http.Client{Timeout: timeout},
		baseURL: "https://translate.google.%s/translate_tts",
	}
}

// Fetch writes the audio for text to w. Long text is requested in pieces
// of at most 100 characters and the MP3 frames are concatenated.
func (g *GoogleFetcher) Fetch(ctx context.Context, text, lang, tld string, w io.Writer) error {
	chunks := chunkText(text, chunkLength)
	for i, chunk := range chunks {
		params := url.Values{}
		params.Set("ie", "UTF-8")
		params.Set("q", chunk)
		params.Set("tl", lang)
		params.Set("client", "tw-ob")
		params.Set("total", fmt.Sprintf("%d", len(chunks)))
		params.Set("idx", fmt.Sprintf("%d", i))
		params.Set("textlen", fmt.Sprintf("%d", utf8.RuneCountInString(chunk)))

		fullURL := fmt.Sprintf(g.baseURL, tld) + "?" + params.Encode()
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		// Google rejects requests without a browser user agent
		req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

		if err := g.copy(req, w); err != nil {
			return err
		}
	}
	return nil
}

func (g *GoogleFetcher) copy(req *http.Request, w io.Writer) error {
	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("failed to write audio: %w", err)
	}
	return nil
}

// chunkText splits text on spaces into pieces of at most limit runes. A
// single word longer than limit is cut.
func chunkText(text string, limit int) []string {
	var chunks []string
	var current []rune
	for _, word := range strings.Fields(text) {
		w := []rune(word)
		for len(w) > limit {
			if len(current) > 0 {
				chunks = append(chunks, string(current))
				current = nil
			}
			chunks = append(chunks, string(w[:limit]))
			w = w[limit:]
		}
		if len(w) == 0 {
			continue
		}
		if len(current) > 0 && len(current)+1+len(w) > limit {
			chunks = append(chunks, string(current))
			current = nil
		}
		if len(current) > 0 {
			current = append(current, ' ')
		}
		current = append(current, w...)
	}
	if len(current) > 0 {
		chunks = append(chunks, string(current))
	}
	return chunks
}

// TTSService serves cached audio, generating it on the first request
type TTSService struct {
	cacheDir string
	fetcher  Fetcher
	tldFor   func(lang string) string
	log      logrus.FieldLogger
	group    singleflight.Group
}

// NewTTSService creates a new TTS service caching into cacheDir. tldFor picks
// the Google domain per language code.
func NewTTSService(cacheDir string, fetcher Fetcher, tldFor func(lang string) string, log logrus.FieldLogger) *TTSService {
	if tldFor == nil {
		tldFor = func(string) string { return "com" }
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &TTSService{cacheDir: cacheDir, fetcher: fetcher, tldFor: tldFor, log: log}
}

// AudioFile returns the path of the cached MP3 for r, generating it when
// missing. hit reports whether the file was already cached. Concurrent
// requests for the same audio share one generation.
func (s *TTSService) AudioFile(ctx context.Context, r Request) (path string, hit bool, err error) {
	key := r.CacheKey()
	finalPath := filepath.Join(s.cacheDir, key+".mp3")

	if _, err := os.Stat(finalPath); err == nil {
		return finalPath, true, nil
	}

	_, err, _ = s.group.Do(key, func() (interface{}, error) {
		if _, err := os.Stat(finalPath); err == nil {
			return nil, nil
		}
		return nil, s.generate(ctx, r, key, finalPath)
	})
	if err != nil {
		return "", false, err
	}
	return finalPath, false, nil
}

// generate writes to a temporary file and renames it into place, so readers
// never see a partial MP3.
func (s *TTSService) generate(ctx context.Context, r Request, key, finalPath string) error {
	if err := os.MkdirAll(s.cacheDir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmpPath := filepath.Join(s.cacheDir, fmt.Sprintf(".%s.%s.tmp.mp3", key, strings.ReplaceAll(uuid.NewString(), "-", "")))
	defer os.Remove(tmpPath)

	out, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	tld := s.tldFor(r.Lang)
	if err := s.fetcher.Fetch(ctx, r.Text, r.Lang, tld, out); err != nil {
		out.Close()
		return fmt.Errorf("failed to generate audio: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return fmt.Errorf("failed to store audio file: %w", err)
	}

	s.log.WithFields(logrus.Fields{"lang": r.Lang, "tld": tld, "key": key}).Debug("audio generated")
	return nil
}
