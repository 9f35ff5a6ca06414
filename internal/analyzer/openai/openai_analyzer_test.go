package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mokshchadha/invoice-ocr/internal/analyzer/openai"
	"github.com/mokshchadha/invoice-ocr/internal/config"
	"github.com/mokshchadha/invoice-ocr/internal/domain"
	"github.com/mokshchadha/invoice-ocr/internal/port"
)

func newTestAnalyzer(serverURL string) *openai.Analyzer {
	cfg := &config.ProviderConfig{
		APIKey:       "test-openai-key",
		DefaultModel: "gpt-4o",
		TimeoutSecs:  30,
	}
	return openai.NewAnalyzerWithEndpoint(cfg, serverURL)
}

func successResponse(content string) map[string]interface{} {
	return map[string]interface{}{
		"choices": []map[string]interface{}{
			{
				"message": map[string]interface{}{
					"role":    "assistant",
					"content": content,
				},
				"finish_reason": "stop",
			},
		},
	}
}

func TestAnalyzer_Analyze_PDF_Success(t *testing.T) {
	llmJSON := `{"documentType":"transporter_invoice","transporterName":"FastFreight"}`
	responseBody := successResponse(llmJSON)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Verify request headers
		assert.Equal(t, "Bearer test-openai-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var reqBody map[string]interface{}
		err := json.NewDecoder(r.Body).Decode(&reqBody)
		assert.NoError(t, err)
		assert.Equal(t, "gpt-4o", reqBody["model"])
		assert.Equal(t, float64(500), reqBody["max_tokens"])

		messages := reqBody["messages"].([]interface{})
		require.Len(t, messages, 1)
		msg := messages[0].(map[string]interface{})
		assert.Equal(t, "user", msg["role"])

		blocks := msg["content"].([]interface{})
		require.Len(t, blocks, 3)

		// First block: prompt text
		promptBlock := blocks[0].(map[string]interface{})
		assert.Equal(t, "text", promptBlock["type"])
		assert.NotEmpty(t, promptBlock["text"])

		// Second block: extracted document text
		textBlock := blocks[1].(map[string]interface{})
		assert.True(t, strings.HasPrefix(textBlock["text"].(string), "Document text content:\n"))

		// Third block: image as a base64 data URI
		imageBlock := blocks[2].(map[string]interface{})
		assert.Equal(t, "image_url", imageBlock["type"])
		imageURL := imageBlock["image_url"].(map[string]interface{})
		assert.True(t, strings.HasPrefix(imageURL["url"].(string), "data:image/png;base64,"))

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(responseBody)
	}))
	defer server.Close()

	a := newTestAnalyzer(server.URL)

	result, err := a.Analyze(context.Background(), port.AnalyzeInput{
		Text:             "LR No. 991\nFreight: 5400",
		PageImage:        []byte("fake-png-bytes"),
		ImageContentType: "image/png",
		DocumentType:     domain.DocTypeTransporter,
	})

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "gpt-4o", result.ModelUsed)

	var analysis map[string]interface{}
	err = json.Unmarshal(result.Analysis, &analysis)
	assert.NoError(t, err)
	assert.Equal(t, "FastFreight", analysis["transporterName"])
}

func TestAnalyzer_Analyze_Image_OmitsTextBlock(t *testing.T) {
	responseBody := successResponse(`{"documentType":"generic"}`)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var reqBody map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&reqBody)
		messages := reqBody["messages"].([]interface{})
		blocks := messages[0].(map[string]interface{})["content"].([]interface{})
		require.Len(t, blocks, 2)

		imageBlock := blocks[1].(map[string]interface{})
		assert.Equal(t, "image_url", imageBlock["type"])

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(responseBody)
	}))
	defer server.Close()

	a := newTestAnalyzer(server.URL)

	result, err := a.Analyze(context.Background(), port.AnalyzeInput{
		PageImage:        []byte{0x89, 0x50, 0x4E, 0x47},
		ImageContentType: "image/png",
		DocumentType:     domain.DocTypeGeneric,
	})

	require.NoError(t, err)
	require.NotNil(t, result)
}

func TestAnalyzer_Analyze_CodeFencedResponse(t *testing.T) {
	responseBody := successResponse("```json\n{\"totalAmount\":\"$99.00\"}\n```")

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

	var analysis map[string]interface{}
	err = json.Unmarshal(result.Analysis, &analysis)
	require.NoError(t, err)
	assert.Equal(t, "$99.00", analysis["totalAmount"])
}

func TestAnalyzer_Analyze_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided"}}`))
	}))
	defer server.Close()

	a := newTestAnalyzer(server.URL)

	_, err := a.Analyze(context.Background(), port.AnalyzeInput{
		PageImage:        []byte("img"),
		ImageContentType: "image/png",
		DocumentType:     domain.DocTypeGeneric,
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestAnalyzer_Analyze_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	a := newTestAnalyzer(server.URL)

	_, err := a.Analyze(context.Background(), port.AnalyzeInput{
		PageImage:        []byte("img"),
		ImageContentType: "image/png",
		DocumentType:     domain.DocTypeGeneric,
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}
