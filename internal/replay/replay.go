package replay

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mkostin/shardstore/internal/domain"
)

// Service periodically re-runs stored webhook events that never
// completed processing, so a transient failure on our side does not
// depend on the provider's retry schedule to recover.

type Processor interface {
	ProcessStored(ctx context.Context, event *domain.WebhookEvent) error
}

type WebhookRepo interface {
	FindForReplay(ctx context.Context, limit uint32, grace time.Duration) ([]domain.WebhookEvent, error)
}

var inflightEvents sync.Map

type Service struct {
	webhookRepo    WebhookRepo
	processor      Processor
	limit          uint32
	grace          time.Duration
	workerPool     WorkerPoolI
	updateInterval time.Duration
}

func New(webhookRepo WebhookRepo, processor Processor) *Service {
	return &Service{
		webhookRepo:    webhookRepo,
		processor:      processor,
		limit:          100,
		grace:          time.Minute,
		workerPool:     NewWorkerPool(4),
		updateInterval: time.Minute,
	}
}

func (s *Service) Start(ctx context.Context) {
	zap.L().Info("Webhook replay service started")
	go s.run(ctx)
}

func (s *Service) run(ctx context.Context) {
	ticker := time.NewTicker(s.updateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("Context canceled, stopping replay service")
			return
		case <-ticker.C:
			s.processEvents(ctx)
		}
	}
}

func (s *Service) processEvents(ctx context.Context) {
	events, err := s.webhookRepo.FindForReplay(ctx, s.limit, s.grace)
	if err != nil {
		zap.L().Error("Failed to fetch webhook events for replay", zap.Error(err))
		return
	}

	var g errgroup.Group
	for _, event := range events {
		event := event

		if _, loaded := inflightEvents.LoadOrStore(event.ID, struct{}{}); loaded {
			continue
		}

		g.Go(func() error {
			err := s.workerPool.AddTask(ctx, func() error {
				defer inflightEvents.Delete(event.ID)
				return s.processor.ProcessStored(ctx, &event)
			})
			if err != nil {
				inflightEvents.Delete(event.ID)
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		zap.L().Error("Error replaying webhook events", zap.Error(err))
	}
}
