// ABOUTME: Serper web-search adapter with bounded timeout
// ABOUTME: Degrades to empty results plus a warning, never returns an error

package websearch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	defaultEndpoint = "https://google.serper.dev/search"
	defaultTimeout  = 10 * time.Second
)

// Result is one mapped web search hit.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Response is the adapter outcome. Results is always non-nil; a non-empty
// Warning marks the degraded and disabled variants. The adapter never
// raises past this type: a failed or unconfigured search is a normal
// outcome, not an error.
type Response struct {
	Results []Result
	Warning string
}

// Config configures the client. Zero values fall back to the Serper
// endpoint and a 10-second timeout.
type Config struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// Client calls the Serper search API.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

// NewClient creates a client. An empty API key yields a permanently
// disabled client rather than an error.
func NewClient(cfg Config) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultEndpoint
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		http:     &http.Client{Timeout: cfg.Timeout},
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// Search issues the bounded-timeout API call and maps up to k organic
// results. Non-success status, timeout and transport errors all degrade to
// an empty result list with a warning.
func (c *Client) Search(query string, k int) Response {
	if !c.Enabled() {
		return Response{
			Results: []Result{},
			Warning: "No SERPER_API_KEY configured; web.search is disabled in this environment.",
		}
	}

	payload, err := json.Marshal(map[string]any{"q": query, "num": k})
	if err != nil {
		return Response{Results: []Result{}, Warning: fmt.Sprintf("Search error: %v", err)}
	}

	req, err := http.NewRequest(http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return Response{Results: []Result{}, Warning: fmt.Sprintf("Search error: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return Response{Results: []Result{}, Warning: fmt.Sprintf("Search error: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Response{Results: []Result{}, Warning: "Serper returned non-200"}
	}

	var body struct {
		Organic []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		} `json:"organic"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Response{Results: []Result{}, Warning: fmt.Sprintf("Search error: %v", err)}
	}

	results := make([]Result, 0, k)
	for _, r := range body.Organic {
		if len(results) >= k {
			break
		}
		results = append(results, Result{Title: r.Title, URL: r.Link, Snippet: r.Snippet})
	}
	return Response{Results: results}
}
