package service

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/events"
	"github.com/spec-kit/grievance-service/internal/repository"
)

// AuditService persists a durable record of security and lifecycle events.
type AuditService struct {
	dispatcher events.Dispatcher
	records    repository.AuditLogRepository
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, records repository.AuditLogRepository, logger *zap.Logger) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		records:    records,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to every event type worth keeping on record.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	for _, eventType := range []events.EventType{
		events.EventComplaintSubmitted,
		events.EventComplaintAssigned,
		events.EventStatusChanged,
		events.EventComplaintReclassified,
		events.EventBreachEscalated,
		events.EventTrustScoreChanged,
		events.EventUserBanned,
		events.EventLoginBlocked,
		events.EventOfficerCreated,
	} {
		a.dispatcher.Subscribe(eventType, a.record)
	}
}

func (a *AuditService) record(ctx context.Context, event events.Event) error {
	details, err := json.Marshal(event.Payload)
	if err != nil {
		details = []byte("{}")
	}

	var target *string
	if event.ComplaintID != "" {
		id := event.ComplaintID
		target = &id
	}

	rec := &domain.AuditRecord{
		Action:    strings.ToUpper(string(event.Type)),
		ActorID:   event.ActorID,
		TargetID:  target,
		Details:   string(details),
		CreatedAt: event.Timestamp,
	}
	if err := a.records.Create(ctx, rec); err != nil {
		a.logger.Error("audit record write failed",
			zap.Error(err), zap.String("event_type", string(event.Type)))
		return err
	}
	return nil
}
