// Package stream publishes recorded events to Kafka.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/01moynul/carlisting-golang/internal/config"
	"github.com/01moynul/carlisting-golang/internal/metrics"
)

type Producer struct {
	producer sarama.SyncProducer
	topic    string
	logger   *zap.Logger
}

func NewProducer(cfg config.KafkaConfig, logger *zap.Logger) (*Producer, error) {
	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}

	logger.Info("Kafka producer initialized",
		zap.Strings("brokers", cfg.Brokers),
		zap.String("topic", cfg.Topic),
		zap.Bool("idempotent", cfg.IdempotentWrites),
		zap.String("compression", cfg.CompressionType),
	)
	return newProducer(producer, cfg.Topic, logger), nil
}

func newProducer(p sarama.SyncProducer, topic string, logger *zap.Logger) *Producer {
	return &Producer{
		producer: p,
		topic:    topic,
		logger:   logger,
	}
}

func saramaConfig(cfg config.KafkaConfig) *sarama.Config {
	sc := sarama.NewConfig()
	sc.ClientID = "carlisting-api"
	sc.Producer.Return.Successes = true
	sc.Producer.Return.Errors = true
	sc.Producer.Retry.Max = cfg.ProducerRetries
	sc.Producer.Timeout = cfg.ProducerTimeout
	sc.Producer.RequiredAcks = sarama.RequiredAcks(cfg.RequiredAcks)
	sc.Producer.Idempotent = cfg.IdempotentWrites

	if cfg.IdempotentWrites {
		sc.Producer.RequiredAcks = sarama.WaitForAll
		sc.Net.MaxOpenRequests = 1
	}

	switch cfg.CompressionType {
	case "snappy":
		sc.Producer.Compression = sarama.CompressionSnappy
	case "zstd":
		sc.Producer.Compression = sarama.CompressionZSTD
	case "lz4":
		sc.Producer.Compression = sarama.CompressionLZ4
	case "gzip":
		sc.Producer.Compression = sarama.CompressionGZIP
	default:
		sc.Producer.Compression = sarama.CompressionNone
	}

	if cfg.MaxMessageBytes > 0 {
		sc.Producer.MaxMessageBytes = cfg.MaxMessageBytes
	}
	sc.Producer.Partitioner = sarama.NewHashPartitioner
	sc.Version = sarama.V3_3_0_0
	return sc
}

// Publish sends value as JSON, keyed so that related events share a partition.
func (p *Producer) Publish(ctx context.Context, key string, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("content-type"), Value: []byte("application/json")},
			{Key: []byte("published_at"), Value: []byte(time.Now().UTC().Format(time.RFC3339Nano))},
		},
	}

	partition, offset, err := p.producer.SendMessage(msg)
	metrics.RecordEventPublish(err)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	p.logger.Debug("Event published",
		zap.String("topic", p.topic),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
		zap.String("key", key),
	)
	return nil
}

func (p *Producer) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close producer: %w", err)
	}
	p.logger.Info("Kafka producer closed")
	return nil
}
