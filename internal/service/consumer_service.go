package service

import (
	"context"
	"encoding/json"
	"time"

	"ai-recommendation-be/internal/dto"
	"ai-recommendation-be/internal/metrics"
	"ai-recommendation-be/internal/pkg/logger"
	"ai-recommendation-be/internal/repository/unitofwork"
	"ai-recommendation-be/pkg/embedding"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const (
	consumerModule = "EMBED_CONSUMER"

	maxConsumeAttempts = 3
)

type IConsumerService interface {
	Consume(ctx context.Context) error
	// Done is closed once the subscription channel has been drained.
	Done() <-chan struct{}
}

type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	logger            logger.ILogger
	timeout           time.Duration
	done              chan struct{}
	// attempts per message UUID; gochannel redelivers a fresh copy on Nack
	// so the count cannot live in message metadata
	attempts map[string]int
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	logger logger.ILogger,
	embeddingTimeout time.Duration,
) IConsumerService {
	if embeddingTimeout <= 0 {
		embeddingTimeout = 10 * time.Second
	}
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		logger:            logger,
		timeout:           embeddingTimeout,
		done:              make(chan struct{}),
		attempts:          make(map[string]int),
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		defer close(cs.done)
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) Done() <-chan struct{} {
	return cs.done
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.EmbedCatalogItemMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error(consumerModule, "Failed to unmarshal embedding job", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		metrics.CatalogSyncItems.WithLabelValues("skipped").Inc()
		msg.Ack() // never retry a payload that cannot parse
		return
	}

	item := payload.Item.ToEntity()
	if !item.IsComplete() {
		cs.logger.Warn(consumerModule, "Skipping catalog item with missing required fields", map[string]interface{}{
			"product_id": item.ProductId,
			"source":     payload.Source,
		})
		metrics.CatalogSyncItems.WithLabelValues("skipped").Inc()
		msg.Ack()
		return
	}

	// a job whose vector could not be computed is retried; the last attempt
	// stores the item without one so it still shows up in trending
	embedded := embedItem(ctx, cs.embeddingProvider, item, cs.timeout, cs.logger)
	if !embedded && cs.retry(msg) {
		return
	}

	if err := storeItem(ctx, cs.uowFactory, item); err != nil {
		cs.logger.Error(consumerModule, "Failed to store catalog item", map[string]interface{}{
			"product_id": item.ProductId,
			"error":      err.Error(),
		})
		if cs.retry(msg) {
			return
		}
		delete(cs.attempts, msg.UUID)
		metrics.CatalogSyncItems.WithLabelValues("failed").Inc()
		msg.Ack()
		return
	}

	delete(cs.attempts, msg.UUID)
	metrics.CatalogSyncItems.WithLabelValues("upserted").Inc()
	cs.logger.Info(consumerModule, "Catalog item processed", map[string]interface{}{
		"product_id": item.ProductId,
		"embedded":   embedded,
		"source":     payload.Source,
	})
	msg.Ack()
}

// retry nacks the message while attempts remain. Messages are processed
// one at a time so the map needs no lock.
func (cs *consumerService) retry(msg *message.Message) bool {
	cs.attempts[msg.UUID]++
	if cs.attempts[msg.UUID] >= maxConsumeAttempts {
		return false
	}
	msg.Nack()
	return true
}
