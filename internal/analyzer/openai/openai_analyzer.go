package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mokshchadha/invoice-ocr/internal/analyzer"
	"github.com/mokshchadha/invoice-ocr/internal/config"
	"github.com/mokshchadha/invoice-ocr/internal/domain"
	"github.com/mokshchadha/invoice-ocr/internal/port"
)

const (
	apiURL = "https://api.openai.com/v1/chat/completions"

	// maxTokens bounds the completion; analyses are short structured summaries.
	maxTokens = 500
)

// Analyzer implements port.DocumentAnalyzer using the OpenAI Chat Completions API.
type Analyzer struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewAnalyzer creates an OpenAI-based document analyzer from a provider config.
func NewAnalyzer(cfg *config.ProviderConfig) *Analyzer {
	return newAnalyzer(cfg, apiURL)
}

// NewAnalyzerWithEndpoint creates an analyzer pointing at a custom API endpoint (for testing).
func NewAnalyzerWithEndpoint(cfg *config.ProviderConfig, endpoint string) *Analyzer {
	return newAnalyzer(cfg, endpoint)
}

func newAnalyzer(cfg *config.ProviderConfig, endpoint string) *Analyzer {
	model := cfg.DefaultModel
	if model == "" {
		model = "gpt-4o"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Analyzer{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func init() {
	analyzer.Register(domain.ProviderOpenAI, func(cfg *config.ProviderConfig) (port.DocumentAnalyzer, error) {
		return NewAnalyzer(cfg), nil
	})
}

func (a *Analyzer) Analyze(ctx context.Context, input port.AnalyzeInput) (*port.AnalyzeOutput, error) {
	prompt := analyzer.BuildPrompt(input.DocumentType, input.Question)

	contentBlocks := buildContentBlocks(input, prompt)

	reqBody := map[string]interface{}{
		"model":      a.model,
		"max_tokens": maxTokens,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": contentBlocks,
			},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling openai API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openai API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	return parseResponse(respBody, a.model, prompt)
}

// buildContentBlocks assembles the user message: prompt text, extracted
// document text (PDFs only), then the page image as a base64 data URI.
func buildContentBlocks(input port.AnalyzeInput, prompt string) []map[string]interface{} {
	blocks := []map[string]interface{}{
		{"type": "text", "text": prompt},
	}
	if input.Text != "" {
		blocks = append(blocks, map[string]interface{}{
			"type": "text",
			"text": "Document text content:\n" + input.Text,
		})
	}
	dataURI := fmt.Sprintf("data:%s;base64,%s", input.ImageContentType,
		base64.StdEncoding.EncodeToString(input.PageImage))
	blocks = append(blocks, map[string]interface{}{
		"type": "image_url",
		"image_url": map[string]interface{}{
			"url": dataURI,
		},
	})
	return blocks
}

// apiResponse models the OpenAI Chat Completions API response.
type apiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func parseResponse(body []byte, model, prompt string) (*port.AnalyzeOutput, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from API: no choices")
	}

	text := resp.Choices[0].Message.Content

	return &port.AnalyzeOutput{
		Analysis:   analyzer.DecodeAnalysis(text),
		RawText:    text,
		ModelUsed:  model,
		PromptUsed: prompt,
	}, nil
}
