package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var ErrExtractionFailed = errors.New("text extraction failed")

// Client abstracts the external image-to-text provider. The provider is
// opaque: it receives a base64 image and answers with the recognized text.
type Client interface {
	ExtractText(ctx context.Context, imageBase64 string) (string, error)
}

// HTTPClient talks to an OCR service over HTTP.
type HTTPClient struct {
	endpoint string
	client   *http.Client
}

func NewHTTPClient(endpoint string) *HTTPClient {
	return &HTTPClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

type extractRequest struct {
	Image string `json:"image"`
}

type extractResponse struct {
	Text string `json:"text"`
}

func (c *HTTPClient) ExtractText(ctx context.Context, imageBase64 string) (string, error) {
	body, err := json.Marshal(extractRequest{Image: imageBase64})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: provider returned %d", ErrExtractionFailed, res.StatusCode)
	}

	var out extractResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.Text == "" {
		return "No text found.", nil
	}
	return out.Text, nil
}
