package claude_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mokshchadha/invoice-ocr/internal/analyzer/claude"
	"github.com/mokshchadha/invoice-ocr/internal/config"
	"github.com/mokshchadha/invoice-ocr/internal/domain"
	"github.com/mokshchadha/invoice-ocr/internal/port"
)

func newTestAnalyzer(serverURL string) *claude.Analyzer {
	cfg := &config.ProviderConfig{
		APIKey:       "test-claude-key",
		DefaultModel: "claude-sonnet-4-20250514",
		TimeoutSecs:  30,
	}
	return claude.NewAnalyzerWithEndpoint(cfg, serverURL)
}

func successResponse(text string) map[string]interface{} {
	return map[string]interface{}{
		"content": []map[string]interface{}{
			{"type": "text", "text": text},
		},
		"stop_reason": "end_turn",
	}
}

func TestAnalyzer_Analyze_PDF_Success(t *testing.T) {
	llmJSON := `{"documentType":"pippin_tax_assessment","parcelId":"12-34-567"}`
	responseBody := successResponse(llmJSON)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Verify request headers
		assert.Equal(t, "test-claude-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var reqBody map[string]interface{}
		err := json.NewDecoder(r.Body).Decode(&reqBody)
		assert.NoError(t, err)
		assert.Equal(t, "claude-sonnet-4-20250514", reqBody["model"])
		assert.Equal(t, float64(4096), reqBody["max_tokens"])

		messages := reqBody["messages"].([]interface{})
		require.Len(t, messages, 1)
		blocks := messages[0].(map[string]interface{})["content"].([]interface{})
		require.Len(t, blocks, 3)

		// First block: image
		imageBlock := blocks[0].(map[string]interface{})
		assert.Equal(t, "image", imageBlock["type"])
		source := imageBlock["source"].(map[string]interface{})
		assert.Equal(t, "base64", source["type"])
		assert.Equal(t, "image/png", source["media_type"])
		assert.NotEmpty(t, source["data"])

		// Second block: prompt
		promptBlock := blocks[1].(map[string]interface{})
		assert.Equal(t, "text", promptBlock["type"])

		// Third block: extracted document text
		textBlock := blocks[2].(map[string]interface{})
		assert.Contains(t, textBlock["text"].(string), "Document text content:")

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(responseBody)
	}))
	defer server.Close()

	a := newTestAnalyzer(server.URL)

	result, err := a.Analyze(context.Background(), port.AnalyzeInput{
		Text:             "Parcel 12-34-567\nAssessed value: 180000",
		PageImage:        []byte("fake-png-bytes"),
		ImageContentType: "image/png",
		DocumentType:     domain.DocTypePippinTax,
	})

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "claude-sonnet-4-20250514", result.ModelUsed)

	var analysis map[string]interface{}
	err = json.Unmarshal(result.Analysis, &analysis)
	assert.NoError(t, err)
	assert.Equal(t, "12-34-567", analysis["parcelId"])
}

func TestAnalyzer_Analyze_SkipsNonTextBlocks(t *testing.T) {
	responseBody := map[string]interface{}{
		"content": []map[string]interface{}{
			{"type": "thinking", "thinking": "..."},
			{"type": "text", "text": `{"ok":true}`},
		},
		"stop_reason": "end_turn",
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(responseBody)
	}))
	defer server.Close()

	a := newTestAnalyzer(server.URL)

	result, err := a.Analyze(context.Background(), port.AnalyzeInput{
		PageImage:        []byte("img"),
		ImageContentType: "image/png",
		DocumentType:     domain.DocTypeGeneric,
	})

	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(result.Analysis))
}

func TestAnalyzer_Analyze_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	a := newTestAnalyzer(server.URL)

	_, err := a.Analyze(context.Background(), port.AnalyzeInput{
		PageImage:        []byte("img"),
		ImageContentType: "image/png",
		DocumentType:     domain.DocTypeGeneric,
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestAnalyzer_Analyze_NoTextContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"content":[],"stop_reason":"end_turn"}`))
	}))
	defer server.Close()

	a := newTestAnalyzer(server.URL)

	_, err := a.Analyze(context.Background(), port.AnalyzeInput{
		PageImage:        []byte("img"),
		ImageContentType: "image/png",
		DocumentType:     domain.DocTypeGeneric,
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no text content")
}
