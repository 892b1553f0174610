// Package ai talks to an OpenAI-compatible API for the two model-backed
// scoring stages: text legitimacy analysis and vision-based image review.
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
)

// ErrMalformedResponse marks a collaborator reply that arrived but could not
// be parsed, even after embedded-block recovery. Callers must treat it as a
// failure distinct from transport errors and from a legitimate low score.
var ErrMalformedResponse = errors.New("malformed model response")

const defaultBaseURL = "https://api.openai.com/v1"

// Config selects the endpoint and models.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string // text analysis model
	VisionModel string // image analysis model
	Timeout     time.Duration
}

// Client is a thin chat-completions client; no SDK, just the wire format.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient builds a client from configuration.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// TextRequest carries the candidate fields the text rubric evaluates.
type TextRequest struct {
	Name        string
	Description string
	Wallet      string
	EvidenceRef string
}

// TextAnalysis is the structured verdict of the text stage.
type TextAnalysis struct {
	BaseScore int      `json:"baseScore"`
	Reasoning string   `json:"reasoning"`
	Flags     []string `json:"flags"`
}

// ImageRequest carries the evidence images plus the claimed cause.
type ImageRequest struct {
	Name        string
	Description string
	ImageURLs   []string
}

// ImageAnalysis is the structured verdict of the vision stage.
type ImageAnalysis struct {
	Score     int      `json:"imageScore"`
	Valid     bool     `json:"valid"`
	Reasoning string   `json:"reasoning"`
	Concerns  []string `json:"concerns"`
}

const textSystemPrompt = "You are a charity verification AI. Respond only with valid JSON."

const textPromptTemplate = `You are an AI charity verification expert. Analyze the following charity registration and provide a legitimacy assessment.

Charity Name: %s
Description: %s
Wallet Address: %s
Evidence Documents: %s

Evaluate based on:
1. Name credibility (does it sound like a real charity?)
2. Description quality (detailed, specific, professional?)
3. Red flags (scam indicators, vague language, unrealistic claims)
4. Document provision (evidence reference provided or not)

Provide your response in JSON format:
{
  "baseScore": <number 0-100>,
  "reasoning": "<brief explanation>",
  "flags": ["<any red flags found>"]
}

Be strict but fair. A score of 60+ means likely legitimate.`

const imagePromptTemplate = `You are an AI image verification expert for a charity platform. Analyze the following images uploaded for this charity campaign:

Charity Name: %s
Stated Purpose: %s

Verify:
1. Relevance: do the images relate to the charity's stated purpose?
2. Authenticity: do the images appear genuine (not stock photos, AI-generated, or misleading)?
3. Appropriateness: are the images professional and suitable for a charity campaign?
4. Quality: are the images clear, well-composed, and trustworthy?
5. Consistency: do all images support the same charitable cause?

Provide your response in JSON format:
{
  "imageScore": <number 0-100>,
  "valid": <boolean>,
  "reasoning": "<brief explanation of what you see and whether it matches the cause>",
  "concerns": ["<any concerns or red flags>"]
}

A score of 70+ means images strongly support the charity's legitimacy.`

// AnalyzeCharity runs the text rubric and parses the structured verdict.
func (c *Client) AnalyzeCharity(ctx context.Context, req TextRequest) (TextAnalysis, error) {
	evidenceRef := req.EvidenceRef
	if evidenceRef == "" {
		evidenceRef = "None provided"
	}
	prompt := fmt.Sprintf(textPromptTemplate, req.Name, req.Description, req.Wallet, evidenceRef)

	content, err := c.complete(ctx, chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: textSystemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature:    0.3,
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return TextAnalysis{}, err
	}

	var analysis TextAnalysis
	if err := unmarshalRecovered(content, &analysis); err != nil {
		return TextAnalysis{}, err
	}
	analysis.BaseScore = clampScore(analysis.BaseScore)
	if analysis.Reasoning == "" {
		analysis.Reasoning = "analysis completed"
	}
	return analysis, nil
}

// AnalyzeImages runs the vision rubric over the evidence URLs.
func (c *Client) AnalyzeImages(ctx context.Context, req ImageRequest) (ImageAnalysis, error) {
	if len(req.ImageURLs) == 0 {
		return ImageAnalysis{}, fmt.Errorf("no image urls provided")
	}

	parts := []contentPart{{Type: "text", Text: fmt.Sprintf(imagePromptTemplate, req.Name, req.Description)}}
	for _, url := range req.ImageURLs {
		parts = append(parts, contentPart{
			Type:     "image_url",
			ImageURL: &imageURL{URL: url, Detail: "high"},
		})
	}

	model := c.cfg.VisionModel
	if model == "" {
		model = c.cfg.Model
	}
	content, err := c.complete(ctx, chatRequest{
		Model:       model,
		Messages:    []chatMessage{{Role: "user", Content: parts}},
		Temperature: 0.3,
		MaxTokens:   1000,
	})
	if err != nil {
		return ImageAnalysis{}, err
	}

	var analysis ImageAnalysis
	if err := unmarshalRecovered(content, &analysis); err != nil {
		return ImageAnalysis{}, err
	}
	analysis.Score = clampScore(analysis.Score)
	if !analysis.Valid && analysis.Score >= 70 {
		// Some models omit the explicit flag on strong scores.
		analysis.Valid = true
	}
	return analysis, nil
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"` // string, or []contentPart for vision
}

type responseFormat struct {
	Type string `json:"type"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *Client) complete(ctx context.Context, payload chatRequest) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new chat request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("chat completion %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", ErrMalformedResponse)
	}
	return parsed.Choices[0].Message.Content, nil
}

// unmarshalRecovered parses content as JSON, falling back to an embedded
// fenced or brace-delimited block before giving up.
func unmarshalRecovered(content string, out any) error {
	if json.Unmarshal([]byte(content), out) == nil {
		return nil
	}
	block, ok := extractJSONBlock(content)
	if !ok {
		return fmt.Errorf("%w: no JSON object found", ErrMalformedResponse)
	}
	if err := json.Unmarshal([]byte(block), out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// extractJSONBlock pulls a ```json fenced block, or failing that the outermost
// brace-delimited span, out of a chatty model reply.
func extractJSONBlock(content string) (string, bool) {
	if idx := strings.Index(content, "```json"); idx >= 0 {
		rest := content[idx+len("```json"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end]), true
		}
	}
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		return content[start : end+1], true
	}
	return "", false
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
