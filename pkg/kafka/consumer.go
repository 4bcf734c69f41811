package kafka

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	kafka_config "carebook/pkg/kafka/config"

	"github.com/segmentio/kafka-go"
)

// dlqWriter is the subset of kafka.Writer the consumer needs for forwarding
// failed messages; tests substitute an in-memory implementation.
type dlqWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer wraps a kafka-go reader in a handler loop with bounded retries.
// Messages that still fail after the last retry are forwarded to the DLQ
// topic before their offset is committed.
type Consumer struct {
	reader     *kafka.Reader
	dlq        dlqWriter
	topic      string
	groupID    string
	dlqTopic   string
	maxRetries int
	closed     bool
	mu         sync.RWMutex
}

// NewConsumer creates a consumer-group reader for the given topic. An empty
// dlqTopic disables dead-lettering and failed messages are dropped.
func NewConsumer(cfg *kafka_config.Config, topic string, dlqTopic string) (*Consumer, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if topic == "" {
		return nil, errors.New("topic cannot be empty")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.ConsumerGroupID,
		Topic:       topic,
		MinBytes:    cfg.ConsumerMinBytes,
		MaxBytes:    cfg.ConsumerMaxBytes,
		MaxWait:     cfg.ConsumerMaxWait,
		Logger:      kafka.LoggerFunc(func(msg string, args ...any) {}),
		ErrorLogger: kafka.LoggerFunc(log.Printf),
	})

	consumer := &Consumer{
		reader:     reader,
		topic:      topic,
		groupID:    cfg.ConsumerGroupID,
		dlqTopic:   dlqTopic,
		maxRetries: cfg.ConsumerMaxRetries,
	}

	if dlqTopic != "" {
		consumer.dlq = &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        dlqTopic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Compression:  kafka.Snappy,
			MaxAttempts:  3,
			Logger:       kafka.LoggerFunc(func(msg string, args ...any) {}),
			ErrorLogger:  kafka.LoggerFunc(log.Printf),
		}
	}

	return consumer, nil
}

// Run fetches and processes messages until ctx is cancelled or the consumer
// is closed. Offsets are committed only after the handler succeeds or the
// message has been dead-lettered; a poison message does not wedge the
// partition.
func (c *Consumer) Run(ctx context.Context, handler MessageHandler) error {
	for {
		c.mu.RLock()
		if c.closed {
			c.mu.RUnlock()
			return ErrConsumerClosed
		}
		c.mu.RUnlock()

		kafkaMsg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			log.Printf("fetching message failed: %v", err)
			time.Sleep(1 * time.Second)
			continue
		}

		if err := c.process(ctx, handler, fromKafkaMessage(kafkaMsg)); err != nil {
			log.Printf("processing message failed: %v", err)
		}

		if err := c.reader.CommitMessages(ctx, kafkaMsg); err != nil {
			return err
		}
	}
}

// process runs the handler with bounded retries and forwards the message to
// the DLQ once the retries are spent.
func (c *Consumer) process(ctx context.Context, handler MessageHandler, msg Message) error {
	var handleErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		handleErr = handler(ctx, msg)
		if handleErr == nil {
			return nil
		}
	}

	if c.dlq != nil {
		if dlqErr := c.forwardToDLQ(ctx, msg, handleErr); dlqErr != nil {
			log.Printf("failed to dead-letter message: %v (original error: %v)", dlqErr, handleErr)
		} else {
			log.Printf("message dead-lettered to %s after %d attempts: %v", c.dlqTopic, c.maxRetries+1, handleErr)
		}
	}

	return handleErr
}

// forwardToDLQ writes the failed message to the DLQ topic with failure
// metadata in the headers.
func (c *Consumer) forwardToDLQ(ctx context.Context, msg Message, originalErr error) error {
	msg.Headers[HeaderOriginalTopic] = c.topic
	msg.Headers["dlq-error"] = originalErr.Error()
	msg.Headers["dlq-timestamp"] = time.Now().Format(time.RFC3339)
	msg.Headers["dlq-consumer-group"] = c.groupID

	kafkaMsg := kafka.Message{
		Key:   []byte(msg.Key),
		Value: msg.Value,
		Time:  time.Now(),
	}
	for k, v := range msg.Headers {
		kafkaMsg.Headers = append(kafkaMsg.Headers, kafka.Header{
			Key:   k,
			Value: []byte(v),
		})
	}

	return c.dlq.WriteMessages(ctx, kafkaMsg)
}

func fromKafkaMessage(kafkaMsg kafka.Message) Message {
	msg := Message{
		Key:       string(kafkaMsg.Key),
		Value:     kafkaMsg.Value,
		Headers:   make(map[string]string, len(kafkaMsg.Headers)),
		Topic:     kafkaMsg.Topic,
		Partition: kafkaMsg.Partition,
		Offset:    kafkaMsg.Offset,
		Timestamp: kafkaMsg.Time,
	}
	for _, h := range kafkaMsg.Headers {
		msg.Headers[h.Key] = string(h.Value)
	}
	return msg
}

// Close closes the consumer and releases resources.
func (c *Consumer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	err := c.reader.Close()
	if c.dlq != nil {
		if dlqErr := c.dlq.Close(); err == nil {
			err = dlqErr
		}
	}
	return err
}
