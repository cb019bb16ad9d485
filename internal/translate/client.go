package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Translator traduce texto de inglés a telugu.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// HTTPTranslator llama al servicio de traducción externo.
type HTTPTranslator struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPTranslator construye un cliente contra baseURL/translate.
func NewHTTPTranslator(baseURL string, logger *zap.Logger) *HTTPTranslator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPTranslator{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

func (c *HTTPTranslator) Translate(ctx context.Context, text string) (string, error) {
	bodyBytes, err := json.Marshal(translateRequest{Text: text})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/translate", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		c.logger.Warn("translator error status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", respBody),
		)
		return "", fmt.Errorf("translator http error: status=%d", resp.StatusCode)
	}

	var tr translateResponse
	if err := json.Unmarshal(respBody, &tr); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if tr.TranslatedText == "" {
		return "", fmt.Errorf("translator empty response")
	}
	return tr.TranslatedText, nil
}

type translateRequest struct {
	Text string `json:"text"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
}
