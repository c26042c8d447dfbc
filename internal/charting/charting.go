// Package charting binds the record services to chart widgets. Each record
// kind becomes a widget.Kind whose actions run through action.Run and publish
// a chart event when they succeed.
package charting

import (
	"context"
	"log/slog"
	"slices"

	"github.com/samber/lo"

	"github.com/Alijeyrad/medchart/internal/action"
	"github.com/Alijeyrad/medchart/internal/chart"
	"github.com/Alijeyrad/medchart/internal/patient"
	"github.com/Alijeyrad/medchart/internal/service/allergy"
	"github.com/Alijeyrad/medchart/internal/service/appointment"
	"github.com/Alijeyrad/medchart/internal/service/confidential"
	"github.com/Alijeyrad/medchart/internal/service/demographics"
	"github.com/Alijeyrad/medchart/internal/service/familyhistory"
	"github.com/Alijeyrad/medchart/internal/service/history"
	"github.com/Alijeyrad/medchart/internal/service/intolerance"
	"github.com/Alijeyrad/medchart/internal/service/problem"
	"github.com/Alijeyrad/medchart/internal/service/survey"
	"github.com/Alijeyrad/medchart/internal/widget"
	"github.com/Alijeyrad/medchart/pkg/events"
	"github.com/Alijeyrad/medchart/pkg/reqctx"
)

// Kind names, as used in routes and event subjects. History kinds use their
// patient.HistoryKind value.
const (
	KindAllergies         = "allergies"
	KindDrugIntolerances  = "drug_intolerances"
	KindProblems          = "problems"
	KindAppointments      = "appointments"
	KindFamilyHistory     = "family_history"
	KindConfidentialNotes = "confidential_notes"
	KindSurveys           = "surveys"
	KindDemographics      = "demographics"
)

// Services are the record services behind the widgets. A nil service leaves
// its kind unregistered.
type Services struct {
	Allergy       allergy.Service
	Intolerance   intolerance.Service
	Problem       problem.Service
	History       history.Service
	FamilyHistory familyhistory.Service
	Appointment   appointment.Service
	Confidential  confidential.Service
	Survey        survey.Service
	Demographics  demographics.Service
}

// Created is the result of a successful create action.
type Created struct {
	ID int64 `json:"id"`
}

type Registry struct {
	kinds  map[string]widget.Kind
	demog  demographics.Service
	pub    events.Publisher
	logger *slog.Logger
}

func New(svc Services, pub events.Publisher, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	if pub == nil {
		pub = events.Nop{}
	}
	r := &Registry{
		kinds:  map[string]widget.Kind{},
		demog:  svc.Demographics,
		pub:    pub,
		logger: logger.With("component", "charting"),
	}

	register[patient.Allergy, allergy.Request](r, KindAllergies, "allergy",
		func(p *patient.Profile) []patient.Allergy { return p.Allergies }, svc.Allergy)
	register[patient.DrugIntolerance, intolerance.Request](r, KindDrugIntolerances, "drug intolerance",
		func(p *patient.Profile) []patient.DrugIntolerance { return p.DrugIntolerances }, svc.Intolerance)
	register[patient.Problem, problem.Request](r, KindProblems, "problem",
		func(p *patient.Profile) []patient.Problem { return p.Problems }, svc.Problem)
	register[patient.Appointment, appointment.Request](r, KindAppointments, "appointment",
		func(p *patient.Profile) []patient.Appointment { return p.Appointments }, svc.Appointment)
	register[patient.FamilyHistoryEntry, familyhistory.Request](r, KindFamilyHistory, "family history entry",
		func(p *patient.Profile) []patient.FamilyHistoryEntry { return p.FamilyHistory }, svc.FamilyHistory)
	register[patient.ConfidentialNote, confidential.Request](r, KindConfidentialNotes, "confidential note",
		func(p *patient.Profile) []patient.ConfidentialNote { return p.ConfidentialNotes }, svc.Confidential)
	register[patient.SurveyResponse, survey.Request](r, KindSurveys, "survey response",
		func(p *patient.Profile) []patient.SurveyResponse { return p.Surveys }, svc.Survey)

	if svc.History != nil {
		for _, k := range patient.HistoryKinds {
			register[patient.HistoryNote, history.Request](r, string(k), k.Label()+" note",
				func(p *patient.Profile) []patient.HistoryNote { return p.History[k] },
				historyKind{svc: svc.History, kind: k})
		}
	}
	return r
}

// Kind returns the widget of one record kind.
func (r *Registry) Kind(name string) (widget.Kind, bool) {
	k, ok := r.kinds[name]
	return k, ok
}

// Names lists the registered kinds in order.
func (r *Registry) Names() []string {
	names := lo.Keys(r.kinds)
	slices.Sort(names)
	return names
}

// UpdateDemographic writes one single-valued field and, once the write
// succeeded, merges the stored value into the open chart without a refetch.
// A value that fails normalization is returned as an error and never
// reaches the store.
func (r *Registry) UpdateDemographic(ctx context.Context, c *chart.Context, field string, value any) (action.Result, error) {
	v, err := r.demog.Normalize(field, value)
	if err != nil {
		return action.Result{}, err
	}

	res := action.Run(ctx, r.logger, "update "+field, field+" updated", func(ctx context.Context) (any, error) {
		if err := r.demog.Update(ctx, c.PatientID(), field, v); err != nil {
			return nil, err
		}
		return map[string]any{field: v}, nil
	})
	if !res.ActionSucceeded {
		return res, nil
	}

	if err := c.UpdateField(field, v); err != nil {
		r.logger.WarnContext(ctx, "optimistic merge failed, refetching", "field", field, "error", err)
		if err := c.Refetch(ctx); err != nil {
			res = res.MarkStale()
		}
	}
	r.publish(ctx, events.ChartEvent{Kind: KindDemographics, Op: events.OpUpdate, PatientID: c.PatientID(), Field: field})
	return res, nil
}

// crud is the shape shared by every record service.
type crud[In any] interface {
	Create(ctx context.Context, patientID int64, req In) (int64, error)
	Update(ctx context.Context, patientID, id int64, req In) error
	Delete(ctx context.Context, patientID, id int64) error
}

func register[R patient.Record, In any](r *Registry, name, label string, sel func(*patient.Profile) []R, svc crud[In]) {
	if svc == nil {
		return
	}
	r.kinds[name] = widget.NewKind(name, sel, widget.Actions[In]{
		Create: func(ctx context.Context, patientID int64, in In) action.Result {
			var id int64
			res := action.Run(ctx, r.logger, "create "+label, label+" created", func(ctx context.Context) (any, error) {
				var err error
				id, err = svc.Create(ctx, patientID, in)
				if err != nil {
					return nil, err
				}
				return Created{ID: id}, nil
			})
			if res.ActionSucceeded {
				r.publish(ctx, events.ChartEvent{Kind: name, Op: events.OpCreate, PatientID: patientID, RecordID: id})
			}
			return res
		},
		Edit: func(ctx context.Context, patientID, id int64, in In) action.Result {
			res := action.Run(ctx, r.logger, "update "+label, label+" updated", func(ctx context.Context) (any, error) {
				return nil, svc.Update(ctx, patientID, id, in)
			})
			if res.ActionSucceeded {
				r.publish(ctx, events.ChartEvent{Kind: name, Op: events.OpEdit, PatientID: patientID, RecordID: id})
			}
			return res
		},
		Delete: func(ctx context.Context, patientID, id int64) action.Result {
			res := action.Run(ctx, r.logger, "delete "+label, label+" deleted", func(ctx context.Context) (any, error) {
				return nil, svc.Delete(ctx, patientID, id)
			})
			if res.ActionSucceeded {
				r.publish(ctx, events.ChartEvent{Kind: name, Op: events.OpDelete, PatientID: patientID, RecordID: id})
			}
			return res
		},
	})
}

// publish stamps the actor and request id. Failures are logged only.
func (r *Registry) publish(ctx context.Context, e events.ChartEvent) {
	if actor, ok := reqctx.UserIDFromContext(ctx); ok {
		e.Actor = actor
	}
	e.RequestID = reqctx.RequestIDFromContext(ctx)
	if err := r.pub.Publish(ctx, e); err != nil {
		r.logger.WarnContext(ctx, "chart event not published", "kind", e.Kind, "op", e.Op, "error", err)
	}
}

// historyKind pins a history service to one section.
type historyKind struct {
	svc  history.Service
	kind patient.HistoryKind
}

func (h historyKind) Create(ctx context.Context, patientID int64, req history.Request) (int64, error) {
	return h.svc.Create(ctx, patientID, h.kind, req)
}

func (h historyKind) Update(ctx context.Context, patientID, id int64, req history.Request) error {
	return h.svc.Update(ctx, patientID, h.kind, id, req)
}

func (h historyKind) Delete(ctx context.Context, patientID, id int64) error {
	return h.svc.Delete(ctx, patientID, h.kind, id)
}
