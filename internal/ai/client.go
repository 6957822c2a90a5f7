package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"google.golang.org/genai"
)

// Generator is the capability the rest of the pipeline depends on: send one
// prompt, get one completion. The op name identifies the pipeline stage for
// usage accounting.
type Generator interface {
	Generate(ctx context.Context, op, prompt string, tier Tier, maxTokens int) (string, error)
}

// Recorder receives one record per model invocation.
type Recorder interface {
	Record(op, model string, inputTokens, outputTokens int, latency time.Duration)
}

const (
	defaultTimeout   = 30 * time.Second
	defaultMaxTokens = 500
	maxRetries       = 2
	retryBackoff     = 500 * time.Millisecond
)

type Client struct {
	provider     string
	apiKey       string
	baseURL      string
	geminiClient *genai.Client
	recorder     Recorder
	timeout      time.Duration
	debug        bool
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature float64         `json:"temperature"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func looksLikeEnvVarName(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) < 8 {
		return false
	}
	// Must be all caps/underscores/digits and start with a letter.
	for i, r := range s {
		if i == 0 {
			if r < 'A' || r > 'Z' {
				return false
			}
			continue
		}
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			continue
		}
		return false
	}
	return true
}

// resolveEnvVarKeyPointer lets config hold either a literal key or the name
// of an environment variable that contains it.
func resolveEnvVarKeyPointer(apiKey string) string {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return ""
	}
	if !looksLikeEnvVarName(apiKey) {
		return apiKey
	}
	if v := strings.TrimSpace(os.Getenv(apiKey)); v != "" {
		return v
	}
	return apiKey
}

// NewClient creates a model client for the given provider. Unknown providers
// default to OpenAI for best compatibility.
func NewClient(provider, apiKey string, recorder Recorder, debug bool) *Client {
	client := &Client{
		provider: provider,
		apiKey:   resolveEnvVarKeyPointer(apiKey),
		recorder: recorder,
		timeout:  defaultTimeout,
		debug:    debug,
	}

	if secs := viper.GetInt("ai.timeout_seconds"); secs > 0 {
		client.timeout = time.Duration(secs) * time.Second
	}

	switch provider {
	case "gemini":
		// Application Default Credentials, same flow as the gemini CLI.
		// User should run: gcloud auth application-default login
		geminiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{})
		if err == nil {
			client.geminiClient = geminiClient
		} else if debug {
			fmt.Printf("[ai] gemini client init failed: %v\n", err)
		}
	case "gemini-api":
		geminiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
			APIKey: client.apiKey,
		})
		if err == nil {
			client.geminiClient = geminiClient
		} else if debug {
			fmt.Printf("[ai] gemini client init failed: %v\n", err)
		}
	case "openai":
		client.baseURL = "https://api.openai.com/v1"
	case "anthropic":
		client.baseURL = "https://api.anthropic.com/v1"
	default:
		client.provider = "openai"
		client.baseURL = "https://api.openai.com/v1"
	}

	return client
}

// Generate runs one metered model call with a per-call timeout. Calls are
// read-only, so transient failures are retried with backoff.
func (c *Client) Generate(ctx context.Context, op, prompt string, tier Tier, maxTokens int) (string, error) {
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	model := resolveModel(c.provider, tier)
	prompt = sanitizeASCII(prompt)

	if c.debug {
		fmt.Printf("[ai] %s: provider=%s model=%s promptChars=%d\n", op, c.provider, model, len(prompt))
	}

	var (
		result string
		err    error
	)
	start := time.Now()
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * retryBackoff):
			}
			if c.debug {
				fmt.Printf("[ai] %s: retry %d after error: %v\n", op, attempt, err)
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		result, err = c.dispatch(callCtx, model, prompt, maxTokens)
		cancel()
		if err == nil {
			break
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}
	if err != nil {
		return "", err
	}

	if c.recorder != nil {
		c.recorder.Record(op, model, EstimateTokens(prompt), EstimateTokens(result), time.Since(start))
	}

	return result, nil
}

func (c *Client) dispatch(ctx context.Context, model, prompt string, maxTokens int) (string, error) {
	switch c.provider {
	case "gemini", "gemini-api":
		return c.askGemini(ctx, model, prompt)
	case "anthropic":
		return c.askAnthropic(ctx, model, prompt, maxTokens)
	default:
		return c.askOpenAI(ctx, model, prompt, maxTokens)
	}
}

func (c *Client) askOpenAI(ctx context.Context, model, prompt string, maxTokens int) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("OpenAI API key not configured")
	}

	request := openAIRequest{
		Model: model,
		Messages: []openAIMessage{
			{
				Role:    "user",
				Content: prompt,
			},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.1,
	}

	jsonData, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var response openAIResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no response from AI")
	}

	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}

func (c *Client) askAnthropic(ctx context.Context, model, prompt string, maxTokens int) (string, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return "", fmt.Errorf("Anthropic API key not configured")
	}

	reqBody := anthropicRequest{
		Model:       model,
		MaxTokens:   maxTokens,
		Temperature: 0.1,
		Messages: []anthropicMessage{{
			Role: "user",
			// Content-block format compatible with the modern Messages API.
			Content: []map[string]any{{"type": "text", "text": prompt}},
		}},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.baseURL, "/")+"/messages", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", strings.TrimSpace(c.apiKey))
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	client := &http.Client{}
	resp, err := client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Anthropic API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	for _, block := range parsed.Content {
		if strings.TrimSpace(block.Text) != "" {
			return strings.TrimSpace(block.Text), nil
		}
	}

	return "", fmt.Errorf("no response content from Anthropic")
}

func (c *Client) askGemini(ctx context.Context, model, prompt string) (string, error) {
	if c.geminiClient == nil {
		return "", fmt.Errorf("gemini client not initialized")
	}

	content := genai.NewContentFromText(prompt, genai.RoleUser)

	resp, err := c.geminiClient.Models.GenerateContent(ctx, model, []*genai.Content{content}, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate content with Gemini: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no response candidates from Gemini")
	}

	var result strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			result.WriteString(part.Text)
		}
	}

	return strings.TrimSpace(result.String()), nil
}

// EstimateTokens approximates token count as chars/4, good enough for cost
// accounting without shipping a tokenizer.
func EstimateTokens(text string) int {
	return len(text) / 4
}

// sanitizeASCII strips non-ASCII runes to avoid provider limits
func sanitizeASCII(s string) string {
	// Fast path: if all bytes < 128
	allASCII := true
	for i := 0; i < len(s); i++ {
		if s[i] >= 128 {
			allASCII = false
			break
		}
	}
	if allASCII {
		return s
	}
	b := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] < 128 {
			b = append(b, s[i])
		}
	}
	return string(b)
}
