// Package widget implements the editable record list shared by every chart
// section: read the records of one kind from the chart, run a server action,
// then refetch the whole chart.
package widget

import (
	"cmp"
	"context"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/Alijeyrad/medchart/internal/action"
	"github.com/Alijeyrad/medchart/internal/chart"
	"github.com/Alijeyrad/medchart/internal/patient"
)

// Actions are the server actions behind one record kind.
type Actions[In any] struct {
	Create func(ctx context.Context, patientID int64, in In) action.Result
	Edit   func(ctx context.Context, patientID, id int64, in In) action.Result
	Delete func(ctx context.Context, patientID, id int64) action.Result
}

// Item is a record plus its edit-mode flag.
type Item[R patient.Record] struct {
	Record  R    `json:"record"`
	Editing bool `json:"editing"`
}

// List is one widget bound to one open chart. It never inserts or removes
// records itself; the list only changes when the chart is refetched.
type List[R patient.Record, In any] struct {
	chart   *chart.Context
	sel     func(*patient.Profile) []R
	actions Actions[In]
	editing mapset.Set[int64]
}

func NewList[R patient.Record, In any](name string, c *chart.Context, sel func(*patient.Profile) []R, actions Actions[In]) *List[R, In] {
	return &List[R, In]{
		chart:   c,
		sel:     sel,
		actions: actions,
		editing: c.Editing(name),
	}
}

// Records returns the records ordered by creation time, oldest first.
func (l *List[R, In]) Records() []R {
	recs := slices.Clone(l.sel(l.chart.Profile()))
	slices.SortStableFunc(recs, func(a, b R) int {
		if c := a.Created().Compare(b.Created()); c != 0 {
			return c
		}
		return cmp.Compare(a.RecordID(), b.RecordID())
	})
	return recs
}

func (l *List[R, In]) Items() []Item[R] {
	recs := l.Records()
	out := make([]Item[R], 0, len(recs))
	for _, r := range recs {
		out = append(out, Item[R]{Record: r, Editing: l.editing.Contains(r.RecordID())})
	}
	return out
}

func (l *List[R, In]) Create(ctx context.Context, in In) action.Result {
	res := l.actions.Create(ctx, l.chart.PatientID(), in)
	if res.ActionSucceeded {
		res = l.refresh(ctx, res)
	}
	return res
}

// Edit collapses the record back to read mode when the update succeeds.
func (l *List[R, In]) Edit(ctx context.Context, id int64, in In) action.Result {
	res := l.actions.Edit(ctx, l.chart.PatientID(), id, in)
	if res.ActionSucceeded {
		l.editing.Remove(id)
		res = l.refresh(ctx, res)
	}
	return res
}

// Delete clears the record's edit-mode flag whatever the outcome.
func (l *List[R, In]) Delete(ctx context.Context, id int64) action.Result {
	res := l.actions.Delete(ctx, l.chart.PatientID(), id)
	l.editing.Remove(id)
	if res.ActionSucceeded {
		res = l.refresh(ctx, res)
	}
	return res
}

// refresh reloads the chart after a successful write. A failed reload keeps
// the previous aggregate and marks the result stale.
func (l *List[R, In]) refresh(ctx context.Context, res action.Result) action.Result {
	if err := l.chart.Refetch(ctx); err != nil {
		return res.MarkStale()
	}
	return res
}

// ToggleEdit flips the edit-mode flag of id and reports the new state.
func (l *List[R, In]) ToggleEdit(id int64) bool {
	if l.editing.Contains(id) {
		l.editing.Remove(id)
		return false
	}
	l.editing.Add(id)
	return true
}

func (l *List[R, In]) Editing(id int64) bool {
	return l.editing.Contains(id)
}
