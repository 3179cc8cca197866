package newsapi

import (
	"context"
	"fmt"
	"log"

	"github.com/ChristoGH/url-miner/pkg/utils"
)

// dateFormat is the YYYY-MM-DD form NewsAPI expects for window bounds.
const dateFormat = "2006-01-02"

// ArticleFetcher fetches articles matching a keyword query within a
// rolling lookback window ending now.
type ArticleFetcher struct {
	client       *NewsAPIClient
	timeProvider utils.TimeProvider
}

// NewArticleFetcher creates a fetcher using the real system clock.
func NewArticleFetcher(client *NewsAPIClient) *ArticleFetcher {
	return NewArticleFetcherWithTimeProvider(client, &utils.RealTimeProvider{})
}

// NewArticleFetcherWithTimeProvider creates a fetcher with a custom time
// provider (useful for testing the window computation).
func NewArticleFetcherWithTimeProvider(client *NewsAPIClient, timeProvider utils.TimeProvider) *ArticleFetcher {
	if timeProvider == nil {
		timeProvider = &utils.RealTimeProvider{}
	}

	return &ArticleFetcher{
		client:       client,
		timeProvider: timeProvider,
	}
}

// Window returns the [from, to] date bounds for the given lookback,
// both formatted as YYYY-MM-DD.
func (f *ArticleFetcher) Window(daysBack int) (from, to string) {
	end := f.timeProvider.Now()
	start := end.AddDate(0, 0, -daysBack)
	return start.Format(dateFormat), end.Format(dateFormat)
}

// FetchNewArticles computes the lookback window for the request, issues
// one search call and returns the article list unmodified. A response
// without an article list yields an empty slice, not an error. Any
// failure from the API is logged and propagated to the caller as-is:
// no retry, no fallback, no partial result.
func (f *ArticleFetcher) FetchNewArticles(ctx context.Context, req *FetchRequest) ([]Article, error) {
	if err := req.Validate(); err != nil {
		log.Printf("Invalid fetch request: %v", err)
		return nil, fmt.Errorf("invalid fetch request: %w", err)
	}

	from, to := f.Window(req.DaysBack)

	log.Printf("Fetching articles from %s to %s with query: %s", from, to, req.Query)

	resp, err := f.client.SearchArticles(ctx, req, from, to)
	if err != nil {
		if apiErr, ok := err.(*NewsAPIError); ok {
			log.Printf("NewsAPI request failed: %v", apiErr)
			return nil, apiErr
		}
		log.Printf("Unexpected error while fetching articles: %v", err)
		return nil, err
	}

	articles := resp.Articles
	if articles == nil {
		articles = []Article{}
	}

	log.Printf("Successfully fetched %d articles", len(articles))
	return articles, nil
}
