package billscan

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// HTTPRecognizer calls an external image-analysis service that performs the
// actual OCR. The service takes an image reference and returns the raw text
// it read off the note.
type HTTPRecognizer struct {
	// Endpoint is the service URL.
	Endpoint string

	// Client is the HTTP client used for calls; nil means http.DefaultClient.
	Client *http.Client
}

type recognizeRequest struct {
	ImagePath string `json:"image_path"`
}

type recognizeResponse struct {
	Text string `json:"text"`
}

// RecognizeText sends the image reference to the analysis service.
func (r *HTTPRecognizer) RecognizeText(ctx context.Context, imageRef string) (string, error) {
	body, err := json.Marshal(recognizeRequest{ImagePath: imageRef})
	if err != nil {
		return "", fmt.Errorf("failed to encode recognition request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build recognition request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("recognition request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("recognition service returned %s", resp.Status)
	}

	var decoded recognizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("failed to decode recognition response: %w", err)
	}
	return decoded.Text, nil
}
