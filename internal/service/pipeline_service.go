// FILE: internal/service/pipeline_service.go
package service

import (
	"context"
	"time"

	"hybrid-rag-be/internal/config"
	"hybrid-rag-be/internal/dto"
	"hybrid-rag-be/internal/pkg/logger"
	"hybrid-rag-be/pkg/events"
	"hybrid-rag-be/pkg/pipeline"
)

type IPipelineService interface {
	Reinitialize(ctx context.Context) (*dto.ReinitializeResponse, error)
	Status(ctx context.Context) (*dto.PipelineStatusResponse, error)
}

type pipelineService struct {
	handleCache      *pipeline.HandleCache
	cfg              *config.Config
	publisherService IPublisherService
	logger           logger.ILogger
}

func NewPipelineService(
	handleCache *pipeline.HandleCache,
	cfg *config.Config,
	publisherService IPublisherService,
	logger logger.ILogger,
) IPipelineService {
	return &pipelineService{
		handleCache:      handleCache,
		cfg:              cfg,
		publisherService: publisherService,
		logger:           logger,
	}
}

var _ IPipelineService = &pipelineService{}

// Reinitialize drops the cached pipeline handle and builds a fresh one
// immediately. Unlike query-path initialization, a failure here is returned
// to the caller; the next query would retry anyway.
func (ps *pipelineService) Reinitialize(ctx context.Context) (*dto.ReinitializeResponse, error) {
	ps.handleCache.Invalidate()

	start := time.Now()
	if _, err := ps.handleCache.Get(ctx); err != nil {
		return nil, err
	}
	elapsedMs := time.Since(start).Milliseconds()

	publishEvent(ctx, ps.publisherService, ps.logger, events.NewPipelineReinitialized(elapsedMs))
	ps.logger.Info("PipelineService", "Pipeline reinitialized", map[string]interface{}{
		"elapsed_ms": elapsedMs,
	})

	return &dto.ReinitializeResponse{
		PipelineReady: true,
		ElapsedMs:     elapsedMs,
	}, nil
}

// Status reports required-setting presence and whether the handle is live.
// It never triggers initialization, so it is safe for health probes.
func (ps *pipelineService) Status(ctx context.Context) (*dto.PipelineStatusResponse, error) {
	return &dto.PipelineStatusResponse{
		Env:           config.EnvPresence(),
		PipelineReady: ps.handleCache.Ready(),
		Model:         ps.cfg.Engine.GroqModel,
	}, nil
}
