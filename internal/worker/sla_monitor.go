package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/config"
	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/events"
	"github.com/spec-kit/grievance-service/internal/observability"
	"github.com/spec-kit/grievance-service/internal/repository"
	"github.com/spec-kit/grievance-service/internal/service"
)

const sweepLeaseKey = "sla:sweep:lease"

// SweepResult summarizes one monitor pass.
type SweepResult struct {
	BreachedCount int
	AtRiskCount   int
	SkippedCount  int
}

// SLAMonitor periodically scans open complaints for deadline breaches.
// Each complaint is its own unit of work: one failing item never aborts
// the rest of the batch, and the breach flag is flipped with an optimistic
// guard so an interrupted sweep can safely re-run.
type SLAMonitor struct {
	complaints repository.ComplaintRepository
	history    repository.ComplaintHistoryRepository
	sla        *service.SLAService
	dispatcher events.Dispatcher
	redis      *redis.Client
	metrics    *observability.Metrics
	cfg        config.MonitorConfig
	logger     *zap.Logger
}

// MonitorDependencies bundles collaborators.
type MonitorDependencies struct {
	ComplaintRepo repository.ComplaintRepository
	HistoryRepo   repository.ComplaintHistoryRepository
	SLA           *service.SLAService
	Dispatcher    events.Dispatcher
	Redis         *redis.Client
	Metrics       *observability.Metrics
}

// NewSLAMonitor creates the monitor.
func NewSLAMonitor(deps MonitorDependencies, cfg config.MonitorConfig, logger *zap.Logger) *SLAMonitor {
	return &SLAMonitor{
		complaints: deps.ComplaintRepo,
		history:    deps.HistoryRepo,
		sla:        deps.SLA,
		dispatcher: deps.Dispatcher,
		redis:      deps.Redis,
		metrics:    deps.Metrics,
		cfg:        cfg,
		logger:     logger,
	}
}

// Run starts the ticker loop and blocks until ctx is cancelled.
func (m *SLAMonitor) Run(ctx context.Context) {
	interval := m.cfg.Interval()
	m.logger.Info("sla monitor started", zap.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("sla monitor stopped")
			return
		case <-ticker.C:
			if !m.acquireLease(ctx) {
				m.logger.Debug("sweep lease held elsewhere; skipping")
				continue
			}
			result, err := m.Sweep(ctx, time.Now())
			if err != nil {
				m.logger.Error("sla sweep failed", zap.Error(err))
				continue
			}
			m.logger.Info("sla sweep completed",
				zap.Int("breached", result.BreachedCount),
				zap.Int("at_risk", result.AtRiskCount),
				zap.Int("skipped", result.SkippedCount))
		}
	}
}

// Sweep scans all non-terminal complaints against the clock given as now.
// It is re-entrant: the MarkBreached guard never fires twice for the same
// complaint, so repeating a sweep with no elapsed time is a no-op.
func (m *SLAMonitor) Sweep(ctx context.Context, now time.Time) (*SweepResult, error) {
	open, err := m.complaints.ListOpen(ctx)
	if err != nil {
		return nil, err
	}

	result := &SweepResult{}
	var escalated []string

	for i := range open {
		complaint := &open[i]
		band := m.sla.Band(complaint.Deadline, now)

		switch band {
		case service.BandAtRisk:
			result.AtRiskCount++
		case service.BandBreached:
			if complaint.IsBreached {
				continue
			}
			if m.escalate(ctx, complaint) {
				result.BreachedCount++
				escalated = append(escalated, complaint.ID)
			} else {
				result.SkippedCount++
			}
		}
	}

	if len(escalated) > 0 && m.dispatcher != nil {
		_ = m.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventBreachEscalated,
			Timestamp: now,
			Payload: events.BreachEscalatedPayload{
				ComplaintIDs: escalated,
				SweepTime:    now,
			},
		})
	}

	m.metrics.RecordSweep(result.BreachedCount)
	return result, nil
}

// escalate flips the breach flag and escalates priority for one complaint.
// Returns false when the complaint was skipped, either because another
// writer got there first or because of a transient store error.
func (m *SLAMonitor) escalate(ctx context.Context, complaint *domain.Complaint) bool {
	updated, err := m.complaints.MarkBreached(ctx, complaint.ID)
	if err != nil {
		m.logger.Error("breach marking failed; skipping item",
			zap.Error(err), zap.String("complaint_id", complaint.ID))
		return false
	}
	if !updated {
		// Became terminal or breached concurrently; nothing to do.
		return false
	}

	entry := &domain.HistoryEntry{
		ComplaintID: complaint.ID,
		Action:      string(domain.ActionSLABreach),
		Remarks:     "Deadline expired; priority escalated to Critical",
	}
	if err := m.history.Append(ctx, entry); err != nil {
		m.logger.Error("breach history append failed",
			zap.Error(err), zap.String("complaint_id", complaint.ID))
	}

	m.logger.Warn("sla breach detected",
		zap.String("complaint_id", complaint.ID),
		zap.Time("deadline", complaint.Deadline))
	return true
}

// acquireLease takes the distributed sweep lease. The lease is an
// efficiency measure, not a correctness one: MarkBreached already prevents
// double escalation, so an unreachable redis means we sweep anyway.
func (m *SLAMonitor) acquireLease(ctx context.Context) bool {
	if m.redis == nil {
		return true
	}
	ok, err := m.redis.SetNX(ctx, sweepLeaseKey, "1", m.cfg.LeaseTTL()).Result()
	if err != nil {
		m.logger.Warn("sweep lease unavailable; sweeping without it", zap.Error(err))
		return true
	}
	return ok
}
