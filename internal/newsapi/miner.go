package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/ChristoGH/url-miner/internal/config"
	"github.com/ChristoGH/url-miner/internal/kafka_producer"
)

// Miner runs one fetch and hands each article to the downstream
// screening consumer over Kafka. A nil publisher disables publishing;
// the fetch result is returned either way.
type Miner struct {
	fetcher   *ArticleFetcher
	publisher kafka_producer.KafkaPublisher
	config    *config.Config
}

// MineResult summarizes a single mining run
type MineResult struct {
	RunID        string        `json:"run_id"`
	Query        string        `json:"query"`
	From         string        `json:"from"`
	To           string        `json:"to"`
	Articles     []Article     `json:"articles"`
	ArticleCount int           `json:"article_count"`
	Published    int           `json:"published"`
	StartTime    time.Time     `json:"start_time"`
	EndTime      time.Time     `json:"end_time"`
	Duration     time.Duration `json:"duration"`
	Errors       []error       `json:"errors,omitempty"`
}

// NewMiner creates a miner with the given dependencies
func NewMiner(fetcher *ArticleFetcher, publisher kafka_producer.KafkaPublisher, cfg *config.Config) *Miner {
	return &Miner{
		fetcher:   fetcher,
		publisher: publisher,
		config:    cfg,
	}
}

// NewMinerWithDefaults creates a miner from configuration alone. The
// Kafka producer is only constructed when a broker is configured.
func NewMinerWithDefaults(cfg *config.Config) (*Miner, error) {
	client := NewNewsAPIClient(cfg)
	fetcher := NewArticleFetcher(client)

	var publisher kafka_producer.KafkaPublisher
	if cfg.PublishingEnabled() {
		producer, err := kafka_producer.NewProducer(cfg.KafkaBroker)
		if err != nil {
			return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
		}
		publisher = producer
	}

	return &Miner{
		fetcher:   fetcher,
		publisher: publisher,
		config:    cfg,
	}, nil
}

// Mine fetches articles for the request and publishes each one as a
// JSON message keyed by the article URL. A fetch failure aborts the
// run; publish failures are logged and collected but never fail it.
func (m *Miner) Mine(ctx context.Context, req *FetchRequest) (*MineResult, error) {
	result := &MineResult{
		RunID:     uuid.NewString(),
		Query:     req.Query,
		StartTime: time.Now(),
		Errors:    make([]error, 0),
	}

	log.Printf("Starting mining run %s: query=%q, daysBack=%d, sortBy=%s",
		result.RunID, req.Query, req.DaysBack, req.SortBy)

	articles, err := m.fetcher.FetchNewArticles(ctx, req)
	if err != nil {
		return result, err
	}

	result.From, result.To = m.fetcher.Window(req.DaysBack)
	result.Articles = articles
	result.ArticleCount = len(articles)

	if m.publisher != nil {
		for i := range articles {
			if err := m.publishArticle(ctx, &articles[i]); err != nil {
				log.Printf("Failed to publish article to Kafka: %v", err)
				result.Errors = append(result.Errors, err)
				continue
			}
			result.Published++
		}

		log.Printf("Published %d/%d articles to topic '%s'",
			result.Published, result.ArticleCount, m.config.KafkaTopic)
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)

	log.Printf("Mining run %s completed: %d articles in %v",
		result.RunID, result.ArticleCount, result.Duration)

	return result, nil
}

// publishArticle publishes one article as JSON, keyed by its URL
func (m *Miner) publishArticle(ctx context.Context, article *Article) error {
	payload, err := json.Marshal(article)
	if err != nil {
		return fmt.Errorf("failed to marshal article '%s': %w", article.URL, err)
	}

	if err := m.publisher.PublishWithContext(ctx, m.config.KafkaTopic, article.URL, string(payload)); err != nil {
		return &KafkaError{
			Operation: "publish",
			Topic:     m.config.KafkaTopic,
			Broker:    m.config.KafkaBroker,
			Cause:     err,
		}
	}

	return nil
}

// Close closes the miner and releases resources
func (m *Miner) Close() error {
	if m.publisher != nil {
		return m.publisher.Close()
	}
	return nil
}
