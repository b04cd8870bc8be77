package llamacloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client talks to the LlamaCloud managed index API: it resolves a pipeline
// by name once at setup time and retrieves scored document nodes per query.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewClient(apiKey, baseURL string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// --- Request/Response structs (Internal to this package) ---

type pipelineInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type retrieveRequest struct {
	Query               string `json:"query"`
	DenseSimilarityTopK int    `json:"dense_similarity_top_k,omitempty"`
}

type retrieveResponse struct {
	RetrievalNodes []struct {
		Node struct {
			ID        string                 `json:"id_"`
			Text      string                 `json:"text"`
			ExtraInfo map[string]interface{} `json:"extra_info"`
		} `json:"node"`
		Score float64 `json:"score"`
	} `json:"retrieval_nodes"`
}

// RetrievedNode is one scored chunk from the document index.
type RetrievedNode struct {
	ID       string
	Text     string
	Score    float64
	Metadata map[string]interface{}
}

// ResolvePipeline looks up the retrieval pipeline id for an index by name,
// scoped to a project and organization. The id is stable for the life of
// the index, so callers resolve once and reuse it.
func (c *Client) ResolvePipeline(ctx context.Context, indexName, projectName, organizationID string) (string, error) {
	query := url.Values{}
	query.Set("pipeline_name", indexName)
	query.Set("project_name", projectName)
	query.Set("organization_id", organizationID)

	endpoint := c.baseURL + "/api/v1/pipelines?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("llamacloud request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llamacloud error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var pipelines []pipelineInfo
	if err := json.Unmarshal(bodyBytes, &pipelines); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(pipelines) == 0 {
		return "", fmt.Errorf("no pipeline named %q in project %q", indexName, projectName)
	}

	return pipelines[0].ID, nil
}

// Retrieve runs a dense retrieval query against a resolved pipeline.
func (c *Client) Retrieve(ctx context.Context, pipelineID, queryText string, topK int) ([]RetrievedNode, error) {
	reqBody := retrieveRequest{
		Query:               queryText,
		DenseSimilarityTopK: topK,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/api/v1/pipelines/%s/retrieve", c.baseURL, pipelineID)
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("llamacloud request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("llamacloud error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var retrieval retrieveResponse
	if err := json.Unmarshal(bodyBytes, &retrieval); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	nodes := make([]RetrievedNode, 0, len(retrieval.RetrievalNodes))
	for _, entry := range retrieval.RetrievalNodes {
		nodes = append(nodes, RetrievedNode{
			ID:       entry.Node.ID,
			Text:     entry.Node.Text,
			Score:    entry.Score,
			Metadata: entry.Node.ExtraInfo,
		})
	}

	return nodes, nil
}
