package kafka_producer

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

// KafkaPublisher hands fetched articles to the downstream screening
// consumer. The key is used for partitioning (callers pass the article
// URL so updates to the same article land on the same partition).
type KafkaPublisher interface {
	Publish(topic, key, message string) error
	PublishWithContext(ctx context.Context, topic, key, message string) error
	Close() error
}

type Producer struct {
	producer *kafka.Producer
	broker   string
	mutex    sync.Mutex
	closed   bool
}

func NewProducer(brokerURL string) (*Producer, error) {
	if brokerURL == "" {
		return nil, fmt.Errorf("broker URL cannot be empty")
	}

	config := &kafka.ConfigMap{
		"bootstrap.servers": brokerURL,
		"acks":              "all",
		"retries":           3,
	}

	producer, err := kafka.NewProducer(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	p := &Producer{
		producer: producer,
		broker:   brokerURL,
	}

	go p.handleEvents()
	return p, nil
}

func (p *Producer) handleEvents() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v", r)
		}
	}()

	for e := range p.producer.Events() {
		switch ev := e.(type) {
		case *kafka.Message:
			if ev.TopicPartition.Error != nil {
				log.Printf("Article delivery failed: %v", ev.TopicPartition.Error)
			} else {
				log.Printf("Article delivered to %s [%d] at offset %v",
					*ev.TopicPartition.Topic, ev.TopicPartition.Partition, ev.TopicPartition.Offset)
			}
		case kafka.Error:
			log.Printf("Kafka error: %v", ev)
		}
	}
}

func (p *Producer) Publish(topic, key, message string) error {
	return p.PublishWithContext(context.Background(), topic, key, message)
}

func (p *Producer) PublishWithContext(ctx context.Context, topic, key, message string) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.closed {
		return fmt.Errorf("producer is closed")
	}

	if topic == "" {
		return fmt.Errorf("topic cannot be empty")
	}

	kafkaMsg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &topic,
			Partition: kafka.PartitionAny,
		},
		Key:   []byte(key),
		Value: []byte(message),
	}

	deliveryChan := make(chan kafka.Event, 1)
	defer close(deliveryChan)

	if err := p.producer.Produce(kafkaMsg, deliveryChan); err != nil {
		return fmt.Errorf("failed to produce message: %w", err)
	}

	select {
	case e := <-deliveryChan:
		if msg, ok := e.(*kafka.Message); ok && msg.TopicPartition.Error != nil {
			return fmt.Errorf("delivery failed: %w", msg.TopicPartition.Error)
		}
	case <-ctx.Done():
		return fmt.Errorf("publish cancelled: %w", ctx.Err())
	case <-time.After(30 * time.Second):
		return fmt.Errorf("publish timeout")
	}

	return nil
}

// Broker returns the broker this producer is bound to.
func (p *Producer) Broker() string {
	return p.broker
}

func (p *Producer) Close() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	p.producer.Flush(30 * 1000)
	p.producer.Close()
	return nil
}
