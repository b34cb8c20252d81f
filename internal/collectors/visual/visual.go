// File: internal/collectors/visual/visual.go
// Package visual scores the landing page screenshot with the Gemini vision
// API: clutter, modernity, image quality and an overall rating, 1-10 each.
package visual

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/okabe-dev/cartwalk/internal/config"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const prompt = `You are an expert UX auditor evaluating e-commerce websites.
Analyse this screenshot and return ONLY a JSON object (no markdown, no explanation):

{
  "clutter_score":   <1-10, 1=very clean with lots of whitespace, 10=extremely cluttered>,
  "modern_score":    <1-10, 1=looks outdated/amateurish, 10=modern and professional>,
  "image_quality":   <1-10, 1=pixelated/low-res images, 10=crisp high-res product photos>,
  "overall_visual":  <1-10, weighted average reflecting overall visual trustworthiness>
}
`

// Scores holds the four ratings, -1 when scoring failed.
type Scores struct {
	ClutterScore int `json:"visual_clutter_score"`
	ModernScore  int `json:"visual_modern_score"`
	ImageQuality int `json:"visual_image_quality"`
	Overall      int `json:"visual_overall"`
}

// NewScores returns the all-defaults scores.
func NewScores() Scores {
	return Scores{ClutterScore: -1, ModernScore: -1, ImageQuality: -1, Overall: -1}
}

// Collector sends screenshots to the Gemini generateContent endpoint.
type Collector struct {
	cfg        config.VisualConfig
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

// New builds a Collector. The endpoint derives from the model unless
// explicitly configured.
func New(cfg config.VisualConfig, logger *zap.Logger) *Collector {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf(
			"https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent", cfg.Model)
	}
	return &Collector{
		cfg:        cfg,
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.Named("visual"),
	}
}

// -- Gemini API request/response structures (internal to this file) --

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}

type geminiRequestPayload struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponsePayload struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
}

// Collect reads the screenshot, sends it with the rubric prompt and parses
// the ratings. Any failure, including a missing screenshot, returns the
// defaults.
func (c *Collector) Collect(ctx context.Context, screenshotPath string) Scores {
	defaults := NewScores()

	if c.cfg.APIKey == "" {
		c.logger.Debug("No Gemini API key configured, skipping visual scoring.")
		return defaults
	}
	if screenshotPath == "" {
		c.logger.Warn("No screenshot available for visual scoring.")
		return defaults
	}
	image, err := os.ReadFile(screenshotPath)
	if err != nil {
		c.logger.Warn("Screenshot could not be read.",
			zap.String("path", screenshotPath), zap.Error(err))
		return defaults
	}

	raw, err := c.generate(ctx, image)
	if err != nil {
		c.logger.Warn("Gemini scoring failed.", zap.Error(err))
		return defaults
	}

	scores, err := parseScores(raw)
	if err != nil {
		c.logger.Warn("Gemini response could not be parsed.",
			zap.String("response", raw), zap.Error(err))
		return defaults
	}
	return scores
}

// generate sends the prompt plus image and returns the text of the first
// candidate, with retries for transient API failures.
func (c *Collector) generate(ctx context.Context, image []byte) (string, error) {
	payload := geminiRequestPayload{
		Contents: []geminiContent{{
			Role: "user",
			Parts: []geminiPart{
				{Text: prompt},
				{InlineData: &geminiInlineData{
					MimeType: "image/png",
					Data:     base64.StdEncoding.EncodeToString(image),
				}},
			},
		}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request payload: %w", err)
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 2 * time.Minute
	b.MaxInterval = 30 * time.Second

	var responseText string
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create HTTP request: %w", err))
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-goog-api-key", c.cfg.APIKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Warn("Network error during Gemini request, retrying.", zap.Error(err))
			return fmt.Errorf("failed to execute HTTP request: %w", err)
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response body: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return c.handleAPIError(resp.StatusCode, respBody)
		}

		var parsed geminiResponsePayload
		if err := json.Unmarshal(respBody, &parsed); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to decode response payload: %w", err))
		}
		if len(parsed.Candidates) == 0 {
			return backoff.Permanent(fmt.Errorf("gemini API returned no candidates"))
		}
		candidate := parsed.Candidates[0]
		if len(candidate.Content.Parts) == 0 {
			if candidate.FinishReason == "SAFETY" || candidate.FinishReason == "BLOCKLIST" {
				return backoff.Permanent(fmt.Errorf("gemini API blocked the request (reason: %s)", candidate.FinishReason))
			}
			return fmt.Errorf("gemini API returned empty content parts (reason: %s)", candidate.FinishReason)
		}

		responseText = candidate.Content.Parts[0].Text
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return "", err
	}
	return responseText, nil
}

func (c *Collector) handleAPIError(statusCode int, body []byte) error {
	err := fmt.Errorf("gemini API error: status %d, body: %s", statusCode, string(body))
	switch statusCode {
	case http.StatusTooManyRequests, http.StatusServiceUnavailable, http.StatusInternalServerError:
		return err
	default:
		return backoff.Permanent(err)
	}
}

var (
	openFenceRe  = regexp.MustCompile("^```[a-z]*\n?")
	closeFenceRe = regexp.MustCompile("\n?```$")
)

// stripFences removes a markdown code fence the model may wrap the JSON in.
func stripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = openFenceRe.ReplaceAllString(raw, "")
	raw = closeFenceRe.ReplaceAllString(raw, "")
	return strings.TrimSpace(raw)
}

// parseScores decodes the rubric JSON. Missing fields stay at -1.
func parseScores(raw string) (Scores, error) {
	var rubric struct {
		ClutterScore  *float64 `json:"clutter_score"`
		ModernScore   *float64 `json:"modern_score"`
		ImageQuality  *float64 `json:"image_quality"`
		OverallVisual *float64 `json:"overall_visual"`
	}
	if err := json.Unmarshal([]byte(stripFences(raw)), &rubric); err != nil {
		return NewScores(), err
	}

	scores := NewScores()
	if rubric.ClutterScore != nil {
		scores.ClutterScore = int(*rubric.ClutterScore)
	}
	if rubric.ModernScore != nil {
		scores.ModernScore = int(*rubric.ModernScore)
	}
	if rubric.ImageQuality != nil {
		scores.ImageQuality = int(*rubric.ImageQuality)
	}
	if rubric.OverallVisual != nil {
		scores.Overall = int(*rubric.OverallVisual)
	}
	return scores, nil
}
