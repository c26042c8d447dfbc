package app

import (
	"context"
	"log/slog"

	"github.com/nats-io/nats.go"
	"go.uber.org/fx"

	"github.com/Alijeyrad/medchart/pkg/events"
)

// WorkerModule registers all NATS event workers.
var WorkerModule = fx.Module("workers",
	fx.Invoke(RegisterWorkers),
)

type WorkerParams struct {
	fx.In

	Lc fx.Lifecycle
	NC *nats.Conn `optional:"true"`
}

const auditQueue = "medchart-audit"

func RegisterWorkers(p WorkerParams) {
	if p.NC == nil {
		return
	}

	var sub *nats.Subscription
	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			var err error
			sub, err = startAuditWorker(p.NC, slog.Default().With("worker", "audit"))
			return err
		},
		OnStop: func(ctx context.Context) error {
			// Drain of the connection is handled by ProvideNatsClient.
			if sub != nil {
				return sub.Unsubscribe()
			}
			return nil
		},
	})
}

// ---------------------------------------------------------------------------
// audit_worker
// ---------------------------------------------------------------------------

// startAuditWorker writes one audit line per chart event. Instances share a
// queue group so every event is logged once.
func startAuditWorker(nc *nats.Conn, logger *slog.Logger) (*nats.Subscription, error) {
	return nc.QueueSubscribe(events.SubjectAll, auditQueue, func(msg *nats.Msg) {
		handleAuditMessage(logger, msg)
	})
}

func handleAuditMessage(logger *slog.Logger, msg *nats.Msg) {
	e, err := events.Decode(msg)
	if err != nil {
		logger.Warn("audit_worker: undecodable chart event", "subject", msg.Subject, "err", err)
		return
	}
	logger.Info("chart_audit",
		"event_id", e.ID,
		"kind", e.Kind,
		"op", e.Op,
		"patient_id", e.PatientID,
		"record_id", e.RecordID,
		"field", e.Field,
		"actor", e.Actor,
		"request_id", e.RequestID,
		"at", e.At,
	)
}
