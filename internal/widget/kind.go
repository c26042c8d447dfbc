package widget

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Alijeyrad/medchart/internal/action"
	"github.com/Alijeyrad/medchart/internal/chart"
	"github.com/Alijeyrad/medchart/internal/patient"
	"github.com/Alijeyrad/medchart/pkg/validate"
)

// Kind erases the record and input types of a widget so record kinds can be
// served from one route table. Request bodies are decoded and validated
// before any server action runs.
type Kind interface {
	Name() string
	Items(c *chart.Context) any
	Create(ctx context.Context, c *chart.Context, body []byte) (action.Result, error)
	Edit(ctx context.Context, c *chart.Context, id int64, body []byte) (action.Result, error)
	Delete(ctx context.Context, c *chart.Context, id int64) action.Result
	ToggleEdit(c *chart.Context, id int64) bool
}

type kind[R patient.Record, In any] struct {
	name    string
	sel     func(*patient.Profile) []R
	actions Actions[In]
}

func NewKind[R patient.Record, In any](name string, sel func(*patient.Profile) []R, actions Actions[In]) Kind {
	return &kind[R, In]{name: name, sel: sel, actions: actions}
}

func (k *kind[R, In]) Name() string { return k.name }

func (k *kind[R, In]) list(c *chart.Context) *List[R, In] {
	return NewList(k.name, c, k.sel, k.actions)
}

func (k *kind[R, In]) Items(c *chart.Context) any {
	return k.list(c).Items()
}

func (k *kind[R, In]) Create(ctx context.Context, c *chart.Context, body []byte) (action.Result, error) {
	in, err := decode[In](body)
	if err != nil {
		return action.Result{}, err
	}
	return k.list(c).Create(ctx, in), nil
}

func (k *kind[R, In]) Edit(ctx context.Context, c *chart.Context, id int64, body []byte) (action.Result, error) {
	in, err := decode[In](body)
	if err != nil {
		return action.Result{}, err
	}
	return k.list(c).Edit(ctx, id, in), nil
}

func (k *kind[R, In]) Delete(ctx context.Context, c *chart.Context, id int64) action.Result {
	return k.list(c).Delete(ctx, id)
}

func (k *kind[R, In]) ToggleEdit(c *chart.Context, id int64) bool {
	return k.list(c).ToggleEdit(id)
}

// ErrBadBody wraps a request body that is not valid JSON.
type ErrBadBody struct{ Err error }

func (e ErrBadBody) Error() string { return fmt.Sprintf("invalid request body: %v", e.Err) }
func (e ErrBadBody) Unwrap() error { return e.Err }

func decode[In any](body []byte) (In, error) {
	var in In
	if err := json.Unmarshal(body, &in); err != nil {
		return in, ErrBadBody{Err: err}
	}
	if err := validate.Struct(in); err != nil {
		return in, err
	}
	return in, nil
}
