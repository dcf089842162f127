package service

import (
	"context"
	"sync"
	"time"

	"ai-recommendation-be/internal/entity"
	"ai-recommendation-be/internal/metrics"
	"ai-recommendation-be/internal/pkg/logger"
	"ai-recommendation-be/internal/repository/unitofwork"
	"ai-recommendation-be/pkg/events"

	"github.com/google/uuid"
)

// EventPublisher is satisfied by *nats.Publisher.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// IInteractionService records analytics interactions. Log returns at once;
// the write happens in the background and failures are only reported.
type IInteractionService interface {
	Log(sessionId, interactionType string, payload map[string]interface{})
	// Wait blocks until every pending write has finished.
	Wait()
}

type interactionService struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  EventPublisher
	audit      logger.ILogger
	logger     logger.ILogger
	timeout    time.Duration
	wg         sync.WaitGroup
}

const interactionModule = "INTERACTION"

// NewInteractionService accepts a nil publisher when no event bus is configured.
func NewInteractionService(
	uowFactory unitofwork.RepositoryFactory,
	publisher EventPublisher,
	audit logger.ILogger,
	logger logger.ILogger,
	timeout time.Duration,
) IInteractionService {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &interactionService{
		uowFactory: uowFactory,
		publisher:  publisher,
		audit:      audit,
		logger:     logger,
		timeout:    timeout,
	}
}

func (s *interactionService) Log(sessionId, interactionType string, payload map[string]interface{}) {
	interaction := &entity.Interaction{
		Id:        uuid.New(),
		SessionId: sessionId,
		Type:      interactionType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.write(interaction)
	}()
}

func (s *interactionService) write(interaction *entity.Interaction) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	s.audit.Info(interactionModule, interaction.Type, map[string]interface{}{
		"interaction_id": interaction.Id.String(),
		"session_id":     interaction.SessionId,
		"data":           interaction.Payload,
	})

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.InteractionRepository().Append(ctx, interaction); err != nil {
		metrics.UpstreamFailures.WithLabelValues("interaction_log").Inc()
		s.logger.Error(interactionModule, "Failed to store interaction", map[string]interface{}{
			"session_id": interaction.SessionId,
			"type":       interaction.Type,
			"error":      err.Error(),
		})
	}

	if s.publisher == nil {
		return
	}
	event := events.NewInteractionRecorded(interaction.SessionId, interaction.Type, interaction.Payload, interaction.Timestamp)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn(interactionModule, "Failed to publish interaction event", map[string]interface{}{
			"session_id": interaction.SessionId,
			"error":      err.Error(),
		})
	}
}

func (s *interactionService) Wait() {
	s.wg.Wait()
}
