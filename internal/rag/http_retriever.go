package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// HTTPRetriever calls the production retrieval service over HTTP. The service
// owns the embedding and ranking logic; this client only speaks its contract.
type HTTPRetriever struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPRetriever creates a retriever client for the given service base URL.
func NewHTTPRetriever(baseURL, apiKey string) *HTTPRetriever {
	return &HTTPRetriever{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type retrieveRequest struct {
	TenantID string `json:"tenant_id"`
	Question string `json:"question"`
}

// RetrieveContext posts the question to the retrieval service and decodes the
// ranked context response.
func (r *HTTPRetriever) RetrieveContext(ctx context.Context, tenantID uuid.UUID, question string) (*RetrievedContext, error) {
	body, err := json.Marshal(retrieveRequest{
		TenantID: tenantID.String(),
		Question: question,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode retrieval request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/v1/retrieve", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build retrieval request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("retrieval request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("retrieval service returned %d: %s", resp.StatusCode, string(msg))
	}

	var out RetrievedContext
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode retrieval response: %w", err)
	}
	return &out, nil
}
