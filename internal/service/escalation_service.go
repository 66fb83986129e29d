package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/support-kit/case-assistant/internal/config"
	"github.com/support-kit/case-assistant/internal/events"
)

// EscalationService turns search-service events into operator-facing
// signals: stale-case escalations and degraded-search alerts.
type EscalationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.EscalationConfig
}

// NewEscalationService creates the service.
func NewEscalationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.EscalationConfig) *EscalationService {
	return &EscalationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (e *EscalationService) RegisterHandlers() {
	if e.dispatcher == nil {
		return
	}
	e.dispatcher.Subscribe(events.EventStaleCasesDetected, e.handleStaleCasesDetected)
	e.dispatcher.Subscribe(events.EventSearchDegraded, e.handleSearchDegraded)
}

func (e *EscalationService) handleStaleCasesDetected(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.StaleCasesDetectedPayload)
	if !ok {
		return nil
	}
	if payload.HighPriority > 0 {
		e.logger.Warn("stale high-priority cases need attention",
			zap.Int("stale_days", payload.StaleDays),
			zap.Int("total", payload.Total),
			zap.Int("high_priority", payload.HighPriority),
		)
	} else {
		e.logger.Info("stale cases detected",
			zap.Int("stale_days", payload.StaleDays),
			zap.Int("total", payload.Total),
		)
	}
	e.sendWebhookStub(ctx, event)
	return nil
}

func (e *EscalationService) handleSearchDegraded(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.SearchDegradedPayload)
	if !ok {
		return nil
	}
	e.logger.Warn("search degraded to empty result",
		zap.String("reason", payload.Reason),
		zap.String("filters", payload.FilterSummary),
	)
	e.sendWebhookStub(ctx, event)
	return nil
}

// sendWebhookStub is where outbound delivery would go. Only the target is
// wired; delivery stays local until an operator channel is chosen.
func (e *EscalationService) sendWebhookStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(e.cfg.WebhookURL) == "" {
		return
	}
	e.logger.Debug("escalation webhook delivery skipped",
		zap.String("url", e.cfg.WebhookURL),
		zap.String("event_type", string(event.Type)))
}
