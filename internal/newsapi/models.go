package newsapi

import (
	"fmt"
)

// SearchResponse represents the top-level structure of the News API response
type SearchResponse struct {
	Status       string    `json:"status"`
	TotalResults int       `json:"totalResults"`
	Articles     []Article `json:"articles"`
	Code         string    `json:"code"`
	Message      string    `json:"message"`
}

// Article represents a single news article from the API. Every field is
// an opaque pass-through of whatever the API returned, including
// PublishedAt, which stays an unparsed timestamp string.
type Article struct {
	Source      Source `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
	Content     string `json:"content"`
}

// Source represents the source of a news article
type Source struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FetchRequest describes one article search: a keyword query over a
// rolling lookback window ending now.
type FetchRequest struct {
	APIKey   string `json:"api_key"`
	Query    string `json:"query"`
	DaysBack int    `json:"days_back"`
	SortBy   string `json:"sort_by"`
	PageSize int    `json:"page_size"`
}

// NewsAPIError represents an error response from the News API
type NewsAPIError struct {
	StatusCode int    `json:"status_code"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	URL        string `json:"url,omitempty"`
}

func (e *NewsAPIError) Error() string {
	if e.Code != "" && e.Message != "" {
		return fmt.Sprintf("NewsAPI error %d: %s - %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("NewsAPI error %d", e.StatusCode)
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// KafkaError represents an error when publishing to Kafka
type KafkaError struct {
	Operation string `json:"operation"`
	Topic     string `json:"topic"`
	Broker    string `json:"broker"`
	Cause     error  `json:"cause"`
}

func (e *KafkaError) Error() string {
	return fmt.Sprintf("kafka operation '%s' failed for topic '%s' on broker '%s': %v",
		e.Operation, e.Topic, e.Broker, e.Cause)
}

func (e *KafkaError) Unwrap() error {
	return e.Cause
}

// Validate validates a FetchRequest
func (r *FetchRequest) Validate() error {
	if r.APIKey == "" {
		return &ValidationError{Field: "api_key", Message: "cannot be empty"}
	}

	if r.Query == "" {
		return &ValidationError{Field: "query", Message: "cannot be empty"}
	}

	// A negative lookback would invert the computed date range, so it
	// is rejected outright instead of being passed to the API.
	if r.DaysBack < 0 {
		return &ValidationError{Field: "days_back", Message: "cannot be negative"}
	}

	if r.PageSize <= 0 || r.PageSize > 100 {
		return &ValidationError{Field: "page_size", Message: "must be between 1 and 100"}
	}

	validSortBy := map[string]bool{
		"relevancy":   true,
		"popularity":  true,
		"publishedAt": true,
	}

	if !validSortBy[r.SortBy] {
		return &ValidationError{Field: "sort_by", Message: "must be one of: relevancy, popularity, publishedAt"}
	}

	return nil
}

// NewFetchRequest creates a new FetchRequest with defaults
func NewFetchRequest(apiKey string) *FetchRequest {
	return &FetchRequest{
		APIKey:   apiKey,
		Query:    "incident of human trafficking",
		DaysBack: 10,
		SortBy:   "publishedAt",
		PageSize: 100,
	}
}

// IsEmpty checks if the SearchResponse contains any articles
func (r *SearchResponse) IsEmpty() bool {
	return len(r.Articles) == 0
}

// IsError checks if the SearchResponse contains an error
func (r *SearchResponse) IsError() bool {
	return r.Status != "ok" || r.Code != ""
}

// ToError converts a SearchResponse to a NewsAPIError if it represents an error
func (r *SearchResponse) ToError(statusCode int) *NewsAPIError {
	if !r.IsError() {
		return nil
	}

	return &NewsAPIError{
		StatusCode: statusCode,
		Code:       r.Code,
		Message:    r.Message,
	}
}
