package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/example/voiceforge/internal/voice"
)

const (
	apiSynthesize = "/v1/synthesize"
	apiHealth     = "/health"

	contentTypeJSON = "application/json"
	contentTypeWAV  = "audio/wav"
)

// HTTPEngine talks to a standalone synthesis service that accepts a JSON
// request and answers with WAV bytes.
type HTTPEngine struct {
	baseURL string
	client  *http.Client
}

// NewHTTPEngine returns an engine for the service at baseURL (protocol
// and port included, no trailing slash needed). The timeout bounds every
// request made by this engine.
func NewHTTPEngine(baseURL string, timeout time.Duration) *HTTPEngine {
	return &HTTPEngine{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type synthesizeRequest struct {
	Text           string `json:"text"`
	SpeakerRefPath string `json:"speaker_ref_path,omitempty"`
	Language       string `json:"language,omitempty"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// GenerateAudio posts the segment text plus the profile's reference
// sample path and returns the service's WAV bytes.
func (e *HTTPEngine) GenerateAudio(ctx context.Context, profile *voice.Profile, text string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("synthesis failed: empty input text")
	}

	ref, ok := profile.ReferenceSample()
	if !ok {
		return nil, ErrNoReference
	}

	body, err := json.Marshal(synthesizeRequest{
		Text:           text,
		SpeakerRefPath: ref.SourceRef,
		Language:       profile.Language,
	})
	if err != nil {
		return nil, fmt.Errorf("encode synthesis request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+apiSynthesize, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build synthesis request: %w", err)
	}
	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set("Accept", contentTypeWAV)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("synthesis request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeServiceError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read synthesis response: %w", err)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("synthesis service returned empty audio")
	}

	return data, nil
}

// SupportsProfile requires a usable profile; the reference file lives on
// the service side, so no local stat is possible.
func (e *HTTPEngine) SupportsProfile(profile *voice.Profile) bool {
	return profile.Usable()
}

// Health probes the service's health endpoint.
func (e *HTTPEngine) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+apiHealth, nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("health request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("synthesis service unhealthy: %s", resp.Status)
	}

	return nil
}

func decodeServiceError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Detail != "" {
		return fmt.Errorf("synthesis service error (%s): %s", resp.Status, er.Detail)
	}

	return fmt.Errorf("synthesis service returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
}
