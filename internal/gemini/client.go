// Package gemini provides a client for the Google Generative Language API
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tildaslashalef/revu/internal/loggy"
)

// Client represents a Google Gemini API client
type Client struct {
	apiKey           string
	baseURL          string
	apiVersion       string
	defaultModel     string
	httpClient       *http.Client
	defaultMaxTokens int
	temperature      *float64
	topP             *float64
	topK             *int
}

// Config configures the Gemini client
type Config struct {
	APIKey       string        // API key for authentication
	BaseURL      string        // Base URL for Gemini API
	APIVersion   string        // API version (v1 or v1beta)
	DefaultModel string        // Model to use if not specified in request
	Timeout      time.Duration // HTTP client timeout
	MaxTokens    int           // Default max tokens for generation
	Temperature  *float64      // Default temperature value
	TopP         *float64      // Default top_p value
	TopK         *int          // Default top_k value
}

// NewClient creates a new Gemini client from config
func NewClient(cfg Config) *Client {
	// Ensure baseURL doesn't end with a slash
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}

	apiVersion := cfg.APIVersion
	if apiVersion == "" {
		apiVersion = "v1beta"
	}

	defaultModel := cfg.DefaultModel
	if defaultModel == "" {
		defaultModel = "gemini-2.5-flash"
	}

	defaultMaxTokens := cfg.MaxTokens
	if defaultMaxTokens <= 0 {
		defaultMaxTokens = 8192
	}

	return &Client{
		apiKey:           cfg.APIKey,
		baseURL:          baseURL,
		apiVersion:       apiVersion,
		defaultModel:     defaultModel,
		httpClient:       &http.Client{Timeout: cfg.Timeout},
		defaultMaxTokens: defaultMaxTokens,
		temperature:      cfg.Temperature,
		topP:             cfg.TopP,
		topK:             cfg.TopK,
	}
}

// GenerateContent sends a single generateContent request to Gemini.
// Calls are not retried; the caller decides how a failure surfaces.
func (c *Client) GenerateContent(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	// Set default model if none specified
	if req.Model == "" {
		req.Model = c.defaultModel
	}

	// Fill generation defaults from the client config
	if req.GenerationConfig == nil {
		req.GenerationConfig = &GenerationConfig{}
	}
	if req.GenerationConfig.MaxOutputTokens <= 0 {
		req.GenerationConfig.MaxOutputTokens = c.defaultMaxTokens
	}
	if req.GenerationConfig.Temperature == nil && c.temperature != nil {
		req.GenerationConfig.Temperature = c.temperature
	}
	if req.GenerationConfig.TopP == nil && c.topP != nil {
		req.GenerationConfig.TopP = c.topP
	}
	if req.GenerationConfig.TopK == nil && c.topK != nil {
		req.GenerationConfig.TopK = c.topK
	}

	var resp GenerateResponse
	path := fmt.Sprintf("models/%s:generateContent", req.Model)
	if err := c.makeRequest(ctx, http.MethodPost, path, req, &resp); err != nil {
		return nil, fmt.Errorf("generating content: %w", err)
	}

	return &resp, nil
}

// makeRequest makes a request to the Gemini API
func (c *Client) makeRequest(ctx context.Context, method, path string, requestBody, responseBody interface{}) error {
	url := fmt.Sprintf("%s/%s/%s", c.baseURL, c.apiVersion, strings.TrimPrefix(path, "/"))

	var reqBody io.Reader
	if requestBody != nil {
		requestBytes, err := json.Marshal(requestBody)
		if err != nil {
			return fmt.Errorf("marshalling request: %w", err)
		}
		reqBody = bytes.NewBuffer(requestBytes)

		loggy.Debug("Sending Gemini request",
			"method", method,
			"url", url,
			"body_length", len(requestBytes))
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	// API key goes in the query string, never in logged headers
	q := req.URL.Query()
	q.Add("key", c.apiKey)
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	loggy.Debug("Gemini API response",
		"status", resp.Status,
		"content_length", len(bodyBytes))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		loggy.Error("Gemini API error response",
			"status", resp.Status,
			"body", string(bodyBytes))

		// Try to parse as API error
		var apiErr APIError
		if err := json.Unmarshal(bodyBytes, &apiErr); err == nil && apiErr.ErrorDetail != nil {
			if apiErr.ErrorDetail.Code == 0 {
				apiErr.ErrorDetail.Code = resp.StatusCode
			}
			return &apiErr
		}

		// If not an API error shape, synthesize one so callers can still
		// classify by status code
		return &APIError{ErrorDetail: &ErrorDetails{
			Code:    resp.StatusCode,
			Message: fmt.Sprintf("HTTP error: %s, body: %s", resp.Status, string(bodyBytes)),
		}}
	}

	if responseBody != nil {
		if err := json.Unmarshal(bodyBytes, responseBody); err != nil {
			return fmt.Errorf("unmarshalling response: %w, body: %s", err, string(bodyBytes))
		}
	}

	return nil
}
