package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ChristoGH/url-miner/internal/config"
)

// HTTPClient defines the interface for making HTTP requests.
// This interface is used for dependency injection and testing.
type HTTPClient interface {
	Get(url string) (*http.Response, error)
	GetWithContext(ctx context.Context, url string) (*http.Response, error)
}

// defaultHTTPClient is a wrapper around the standard *http.Client
// that implements our HTTPClient interface by adding a GetWithContext method.
type defaultHTTPClient struct {
	client *http.Client
}

// Get implements the HTTPClient interface.
func (c *defaultHTTPClient) Get(url string) (*http.Response, error) {
	return c.GetWithContext(context.Background(), url)
}

// GetWithContext implements the HTTPClient interface by using
// the standard http.Client.Do method, which supports context.
func (c *defaultHTTPClient) GetWithContext(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	return c.client.Do(req)
}

// NewsAPIClient wraps an HTTP client with NewsAPI-specific functionality.
type NewsAPIClient struct {
	httpClient HTTPClient
	config     *config.Config
	baseURL    string
	timeout    time.Duration
}

// NewNewsAPIClient creates a new NewsAPI client.
func NewNewsAPIClient(cfg *config.Config) *NewsAPIClient {
	client := &http.Client{
		Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
	httpClient := &defaultHTTPClient{client: client}

	return &NewsAPIClient{
		httpClient: httpClient,
		config:     cfg,
		baseURL:    cfg.BaseURL,
		timeout:    time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
}

// NewNewsAPIClientWithHTTPClient creates a client with a custom HTTP client (useful for testing).
func NewNewsAPIClientWithHTTPClient(cfg *config.Config, httpClient HTTPClient) *NewsAPIClient {
	return &NewsAPIClient{
		httpClient: httpClient,
		config:     cfg,
		baseURL:    cfg.BaseURL,
		timeout:    time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
}

// SearchArticles issues a single search request against the API for
// articles matching the request's query within the [from, to] window.
// Both dates are expected in YYYY-MM-DD form. Only the single default
// page is requested; there is no pagination loop.
func (c *NewsAPIClient) SearchArticles(ctx context.Context, req *FetchRequest, from, to string) (*SearchResponse, error) {
	fullURL, err := c.buildURL(req, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to build URL: %w", err)
	}

	resp, err := c.httpClient.GetWithContext(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.handleErrorResponse(resp.StatusCode, body, fullURL)
	}

	var searchResp SearchResponse
	if err := json.Unmarshal(body, &searchResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON response: %w", err)
	}

	// Check for API-level errors.
	if searchResp.IsError() {
		apiErr := searchResp.ToError(resp.StatusCode)
		apiErr.URL = fullURL
		return nil, apiErr
	}

	return &searchResp, nil
}

// buildURL constructs the full URL for the API request.
func (c *NewsAPIClient) buildURL(req *FetchRequest, from, to string) (string, error) {
	params := url.Values{}

	params.Add("q", req.Query)

	if from != "" {
		params.Add("from", from)
	}

	if to != "" {
		params.Add("to", to)
	}

	if req.SortBy != "" {
		params.Add("sortBy", req.SortBy)
	}

	params.Add("pageSize", strconv.Itoa(req.PageSize))
	params.Add("apiKey", req.APIKey)

	fullURL := c.baseURL + "?" + params.Encode()
	return fullURL, nil
}

// handleErrorResponse handles non-200 HTTP responses.
func (c *NewsAPIClient) handleErrorResponse(statusCode int, body []byte, url string) error {
	var apiErrorResp SearchResponse
	if err := json.Unmarshal(body, &apiErrorResp); err != nil {
		// If we can't parse the error response, return a generic error.
		return &NewsAPIError{
			StatusCode: statusCode,
			Message:    fmt.Sprintf("HTTP %d: %s", statusCode, string(body)),
			URL:        url,
		}
	}

	apiErr := apiErrorResp.ToError(statusCode)
	if apiErr != nil {
		apiErr.URL = url
		return apiErr
	}

	// Fallback error.
	return &NewsAPIError{
		StatusCode: statusCode,
		Message:    fmt.Sprintf("HTTP %d", statusCode),
		URL:        url,
	}
}

// MockHTTPClient implements HTTPClient for testing.
type MockHTTPClient struct {
	responses map[string]*http.Response
	errors    map[string]error
	callCount map[string]int
	lastURL   string
	mutex     sync.RWMutex
}

// NewMockHTTPClient creates a new mock HTTP client.
func NewMockHTTPClient() *MockHTTPClient {
	return &MockHTTPClient{
		responses: make(map[string]*http.Response),
		errors:    make(map[string]error),
		callCount: make(map[string]int),
	}
}

// SetResponse sets a mock response for a given URL pattern.
func (m *MockHTTPClient) SetResponse(urlPattern string, response *http.Response) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.responses[urlPattern] = response
}

// SetError sets a mock error for a given URL pattern.
func (m *MockHTTPClient) SetError(urlPattern string, err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.errors[urlPattern] = err
}

// Get implements HTTPClient.Get.
func (m *MockHTTPClient) Get(url string) (*http.Response, error) {
	return m.GetWithContext(context.Background(), url)
}

// GetWithContext implements HTTPClient.GetWithContext.
func (m *MockHTTPClient) GetWithContext(ctx context.Context, url string) (*http.Response, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.callCount[url]++
	m.lastURL = url

	// Check for errors first.
	for pattern, err := range m.errors {
		if pattern == url || pattern == "*" {
			return nil, err
		}
	}

	for pattern, resp := range m.responses {
		if pattern == url || pattern == "*" {
			return resp, nil
		}
	}

	// Default response.
	return &http.Response{
		StatusCode: http.StatusNotFound,
		Body:       ioutil.NopCloser(strings.NewReader("Not Found")),
		Header:     make(http.Header),
	}, nil
}

// GetCallCount returns the number of times a URL was called.
func (m *MockHTTPClient) GetCallCount(url string) int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.callCount[url]
}

// TotalCallCount returns the number of requests made across all URLs.
func (m *MockHTTPClient) TotalCallCount() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	total := 0
	for _, count := range m.callCount {
		total += count
	}
	return total
}

// LastURL returns the most recently requested URL.
func (m *MockHTTPClient) LastURL() string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.lastURL
}

// Reset clears all mock data.
func (m *MockHTTPClient) Reset() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.responses = make(map[string]*http.Response)
	m.errors = make(map[string]error)
	m.callCount = make(map[string]int)
	m.lastURL = ""
}
