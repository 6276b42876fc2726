package research

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const defaultTavilyEndpoint = "https://api.tavily.com/extract"

// TavilyExtractor calls a batched page-extraction API.
type TavilyExtractor struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

func NewTavilyExtractor(apiKey, endpoint string, client *http.Client) (*TavilyExtractor, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("tavily api key is required")
	}
	if strings.TrimSpace(endpoint) == "" {
		endpoint = defaultTavilyEndpoint
	}
	if client == nil {
		client = &http.Client{}
	}
	return &TavilyExtractor{endpoint: endpoint, apiKey: apiKey, http: client}, nil
}

type tavilyRequest struct {
	URLs         []string `json:"urls"`
	ExtractDepth string   `json:"extract_depth"`
}

type tavilyResponse struct {
	Results []struct {
		URL        string `json:"url"`
		RawContent string `json:"raw_content"`
		Title      string `json:"title"`
	} `json:"results"`
	FailedResults []struct {
		URL   string `json:"url"`
		Error string `json:"error"`
	} `json:"failed_results"`
}

func (t *TavilyExtractor) Extract(ctx context.Context, urls []string) (ExtractResult, error) {
	body, err := json.Marshal(tavilyRequest{URLs: urls, ExtractDepth: "basic"})
	if err != nil {
		return ExtractResult{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return ExtractResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.http.Do(req)
	if err != nil {
		return ExtractResult{}, &ExtractionError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return ExtractResult{}, &ExtractionError{StatusCode: resp.StatusCode, Err: fmt.Errorf("%s", strings.TrimSpace(string(msg)))}
	}

	var payload tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return ExtractResult{}, &ExtractionError{Err: fmt.Errorf("decode response: %w", err)}
	}
	out := ExtractResult{}
	for _, r := range payload.Results {
		out.Results = append(out.Results, ExtractedPage{URL: r.URL, Content: r.RawContent, Title: r.Title})
	}
	for _, f := range payload.FailedResults {
		out.Failed = append(out.Failed, FailedURL{URL: f.URL, Error: f.Error})
	}
	return out, nil
}
