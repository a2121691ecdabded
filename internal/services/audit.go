package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/baharkarakas/atm-backend/internal/events"
	"github.com/baharkarakas/atm-backend/internal/models"
	repo "github.com/baharkarakas/atm-backend/internal/repository"
	"github.com/baharkarakas/atm-backend/internal/worker"
)

// Auditor writes audit entries and publishes the matching domain event
// after a state change has committed. Both run on the worker pool so a slow
// broker never holds up a customer; with a nil pool they run inline.
type Auditor struct {
	logs repo.AuditLogs
	pub  events.Publisher
	wp   *worker.Pool
	log  *slog.Logger
}

func NewAuditor(logs repo.AuditLogs, pub events.Publisher, wp *worker.Pool, log *slog.Logger) *Auditor {
	if pub == nil {
		pub = events.Fallback{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Auditor{logs: logs, pub: pub, wp: wp, log: log}
}

func (a *Auditor) Record(entry models.AuditLog, routingKey string, event any) {
	job := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := a.logs.Create(ctx, entry); err != nil {
			a.log.Error("audit write failed", "action", entry.Action, "err", err)
		}
		if routingKey == "" {
			return
		}
		if err := a.pub.Publish(ctx, routingKey, event); err != nil {
			a.log.Warn("event publish failed", "routing_key", routingKey, "err", err)
		}
	}
	if a.wp == nil {
		job()
		return
	}
	a.wp.Submit(job)
}

func entityID(id string) *string { return &id }
