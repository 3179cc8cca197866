package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ChristoGH/url-miner/internal/config"
)

// MockPublisher implements kafka_producer.KafkaPublisher for testing
type MockPublisher struct {
	published  []publishedMessage
	shouldFail bool
	failErr    error
	closed     bool
}

type publishedMessage struct {
	Topic   string
	Key     string
	Message string
}

func (m *MockPublisher) Publish(topic, key, message string) error {
	return m.PublishWithContext(context.Background(), topic, key, message)
}

func (m *MockPublisher) PublishWithContext(ctx context.Context, topic, key, message string) error {
	if m.shouldFail {
		return m.failErr
	}
	m.published = append(m.published, publishedMessage{Topic: topic, Key: key, Message: message})
	return nil
}

func (m *MockPublisher) Close() error {
	m.closed = true
	return nil
}

func newTestMiner(mockClient *MockHTTPClient, publisher *MockPublisher) (*Miner, *config.Config) {
	cfg := config.DefaultConfig()
	cfg.KafkaBroker = "test-broker:9092"
	cfg.KafkaTopic = "news_articles"

	client := NewNewsAPIClientWithHTTPClient(cfg, mockClient)
	fetcher := NewArticleFetcher(client)

	if publisher == nil {
		return NewMiner(fetcher, nil, cfg), cfg
	}
	return NewMiner(fetcher, publisher, cfg), cfg
}

func TestMiner_Mine_PublishesEachArticle(t *testing.T) {
	mockClient := NewMockHTTPClient()
	setSearchResponse(mockClient, createMockSearchResponse())

	publisher := &MockPublisher{}
	miner, cfg := newTestMiner(mockClient, publisher)

	result, err := miner.Mine(context.Background(), testFetchRequest())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if result.ArticleCount != 2 {
		t.Errorf("Expected 2 articles, got %d", result.ArticleCount)
	}

	if result.Published != 2 {
		t.Errorf("Expected 2 published messages, got %d", result.Published)
	}

	if len(publisher.published) != 2 {
		t.Fatalf("Expected 2 messages on the mock, got %d", len(publisher.published))
	}

	for i, msg := range publisher.published {
		if msg.Topic != cfg.KafkaTopic {
			t.Errorf("Message %d on wrong topic: %s", i, msg.Topic)
		}

		var article Article
		if err := json.Unmarshal([]byte(msg.Message), &article); err != nil {
			t.Fatalf("Message %d is not article JSON: %v", i, err)
		}

		if article.Title == "" || article.URL == "" {
			t.Errorf("Message %d missing title or url: %s", i, msg.Message)
		}

		// Messages are keyed by article URL for partitioning
		if msg.Key != article.URL {
			t.Errorf("Message %d keyed by '%s', expected article URL '%s'", i, msg.Key, article.URL)
		}
	}

	if result.RunID == "" {
		t.Error("Expected a run id")
	}
}

func TestMiner_Mine_PublishFailureIsNotFatal(t *testing.T) {
	mockClient := NewMockHTTPClient()
	setSearchResponse(mockClient, createMockSearchResponse())

	publisher := &MockPublisher{shouldFail: true, failErr: fmt.Errorf("broker unreachable")}
	miner, _ := newTestMiner(mockClient, publisher)

	result, err := miner.Mine(context.Background(), testFetchRequest())
	if err != nil {
		t.Fatalf("Publish failures must not fail the run, got: %v", err)
	}

	if result.ArticleCount != 2 {
		t.Errorf("Expected 2 articles despite publish failures, got %d", result.ArticleCount)
	}

	if result.Published != 0 {
		t.Errorf("Expected 0 published messages, got %d", result.Published)
	}

	if len(result.Errors) != 2 {
		t.Fatalf("Expected 2 collected errors, got %d", len(result.Errors))
	}

	for _, collected := range result.Errors {
		if !strings.Contains(collected.Error(), "broker unreachable") {
			t.Errorf("Collected error should carry the cause, got: %v", collected)
		}
	}
}

func TestMiner_Mine_WithoutPublisher(t *testing.T) {
	mockClient := NewMockHTTPClient()
	setSearchResponse(mockClient, createMockSearchResponse())

	miner, _ := newTestMiner(mockClient, nil)

	result, err := miner.Mine(context.Background(), testFetchRequest())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if result.ArticleCount != 2 {
		t.Errorf("Expected 2 articles, got %d", result.ArticleCount)
	}

	if result.Published != 0 {
		t.Errorf("Expected nothing published without a publisher, got %d", result.Published)
	}
}

func TestMiner_Mine_FetchFailureAbortsRun(t *testing.T) {
	mockClient := NewMockHTTPClient()
	mockClient.SetError("*", fmt.Errorf("connection refused"))

	publisher := &MockPublisher{}
	miner, _ := newTestMiner(mockClient, publisher)

	_, err := miner.Mine(context.Background(), testFetchRequest())
	if err == nil {
		t.Fatal("Expected an error, got nil")
	}

	if len(publisher.published) != 0 {
		t.Errorf("Nothing should be published on fetch failure, got %d messages", len(publisher.published))
	}
}

func TestMiner_Mine_ResultTiming(t *testing.T) {
	mockClient := NewMockHTTPClient()
	setSearchResponse(mockClient, createMockSearchResponse())

	miner, _ := newTestMiner(mockClient, &MockPublisher{})

	before := time.Now()
	result, err := miner.Mine(context.Background(), testFetchRequest())
	after := time.Now()

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if result.StartTime.Before(before) || result.EndTime.After(after) {
		t.Error("Result timing outside the run's bounds")
	}

	if result.Duration < 0 {
		t.Errorf("Expected non-negative duration, got %v", result.Duration)
	}
}

func TestMiner_Close(t *testing.T) {
	publisher := &MockPublisher{}
	miner, _ := newTestMiner(NewMockHTTPClient(), publisher)

	if err := miner.Close(); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if !publisher.closed {
		t.Error("Close should close the publisher")
	}

	// A miner without a publisher closes cleanly too
	miner, _ = newTestMiner(NewMockHTTPClient(), nil)
	if err := miner.Close(); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
}
