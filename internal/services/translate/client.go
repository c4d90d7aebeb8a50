package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	langpkg "kielo/internal/language"
	"kielo/internal/logging"
	"kielo/internal/services"
)

const (
	// DefaultBaseURL is the Gemini REST endpoint prefix.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	// DefaultModel is the translation model used when none is configured.
	DefaultModel = "gemini-2.5-flash"
	// DefaultBatchSize bounds how many lines one request carries.
	DefaultBatchSize = 32

	defaultHTTPTimeout = 60 * time.Second
)

var lineMarkerPattern = regexp.MustCompile(`^\d+[.)]\s*`)

// Config captures the runtime settings required to talk to the translation API.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	BatchSize      int
	SourceLanguage string
	TargetLanguage string
	TimeoutSeconds int
}

// Client translates batches of lines through the Gemini API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger attaches a logger for degradation warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient constructs a translation client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			Model:          strings.TrimSpace(cfg.Model),
			BatchSize:      cfg.BatchSize,
			SourceLanguage: strings.TrimSpace(cfg.SourceLanguage),
			TargetLanguage: strings.TrimSpace(cfg.TargetLanguage),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = DefaultBaseURL
	}
	if client.cfg.Model == "" {
		client.cfg.Model = DefaultModel
	}
	if client.cfg.BatchSize <= 0 {
		client.cfg.BatchSize = DefaultBatchSize
	}
	return client
}

type generateRequest struct {
	SystemInstruction *content         `json:"system_instruction,omitempty"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Translate converts lines to the target language. The returned slice always
// has exactly len(lines) entries: a chunk whose request fails, or whose
// response carries the wrong number of lines, is padded with empty strings or
// truncated to fit. Only a missing credential is an error, raised before any
// network call.
func (c *Client) Translate(ctx context.Context, lines []string) ([]string, error) {
	if c.cfg.APIKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "translate", "credentials",
			"api key missing; set translate.api_key or GEMINI_API_KEY", nil)
	}
	if len(lines) == 0 {
		return []string{}, nil
	}

	outputs := make([]string, 0, len(lines))
	for start := 0; start < len(lines); start += c.cfg.BatchSize {
		end := start + c.cfg.BatchSize
		if end > len(lines) {
			end = len(lines)
		}
		chunk := lines[start:end]

		text, err := c.translateChunk(ctx, chunk)
		if err != nil {
			c.logger.Warn("translation chunk degraded to empty output",
				logging.Int("chunk_start", start),
				logging.Int("chunk_size", len(chunk)),
				logging.Error(err),
			)
			text = ""
		}

		cleaned := cleanResponseLines(text)
		if len(cleaned) != len(chunk) {
			if text != "" {
				c.logger.Warn("translation response line count mismatch",
					logging.Int("got", len(cleaned)),
					logging.Int("want", len(chunk)),
				)
			}
			cleaned = fitLength(cleaned, len(chunk))
		}
		outputs = append(outputs, cleaned...)
	}

	return outputs, nil
}

// translateChunk issues exactly one request for the chunk; there is no retry.
func (c *Client) translateChunk(ctx context.Context, chunk []string) (string, error) {
	sourceName := langpkg.DisplayName(c.cfg.SourceLanguage)
	targetName := langpkg.DisplayName(c.cfg.TargetLanguage)

	var numbered strings.Builder
	for i, line := range chunk {
		if i > 0 {
			numbered.WriteString("\n\n")
		}
		fmt.Fprintf(&numbered, "%d. %s", i+1, line)
	}

	payload := generateRequest{
		SystemInstruction: &content{Parts: []part{{Text: fmt.Sprintf(
			"You are a professional translator. Translate from %s to %s. Preserve meaning, tone, and proper names. Return only the translated text.",
			sourceName, targetName,
		)}}},
		Contents: []content{{Role: "user", Parts: []part{{Text: fmt.Sprintf(
			"Translate each numbered %s line to %s. Respond with the translations only, one per line, in the same numbering order, without extra commentary.\n\n%s",
			sourceName, targetName, numbered.String(),
		)}}}},
		GenerationConfig: generationConfig{Temperature: 0},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.cfg.BaseURL, c.cfg.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("translate request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translate request: http %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var parsed generateResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if len(parsed.Candidates) == 0 {
		return "", fmt.Errorf("translate response: no candidates")
	}

	var out strings.Builder
	for _, p := range parsed.Candidates[0].Content.Parts {
		out.WriteString(p.Text)
	}
	return out.String(), nil
}

// cleanResponseLines splits a response into non-empty lines and strips the
// leading numbering markers ("1.", "10)") the prompt asked for.
func cleanResponseLines(text string) []string {
	var cleaned []string
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		cleaned = append(cleaned, strings.TrimSpace(lineMarkerPattern.ReplaceAllString(line, "")))
	}
	return cleaned
}

func fitLength(lines []string, want int) []string {
	if len(lines) > want {
		return lines[:want]
	}
	for len(lines) < want {
		lines = append(lines, "")
	}
	return lines
}
