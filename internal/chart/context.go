// Package chart holds the patient-data context of one open chart: the most
// recently fetched aggregate, the operations that replace or patch it, and
// the subscribers that re-render when it changes.
package chart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/fatih/structs"
	"github.com/mitchellh/mapstructure"
	"github.com/mohae/deepcopy"

	"github.com/Alijeyrad/medchart/internal/patient"
)

var (
	ErrUnknownField   = errors.New("unknown profile field")
	ErrImmutableField = errors.New("profile field can not be updated")
)

// Fetcher loads the full aggregate of a patient in one round trip.
type Fetcher interface {
	FullProfile(ctx context.Context, patientID int64) (*patient.Profile, error)
}

// Listener is called with a read-only snapshot after every change.
type Listener func(*patient.Profile)

// fieldNames maps the JSON names of the aggregate's top-level fields to
// their Go names.
var fieldNames = func() map[string]string {
	out := map[string]string{}
	for _, f := range structs.Fields(patient.Profile{}) {
		name, _, _ := strings.Cut(f.Tag("json"), ",")
		if name != "" && name != "-" {
			out[name] = f.Name()
		}
	}
	return out
}()

// Context owns one patient's aggregate.
type Context struct {
	patientID int64
	fetcher   Fetcher
	logger    *slog.Logger

	mu      sync.RWMutex
	profile *patient.Profile
	version uint64

	subMu   sync.Mutex
	subs    map[uint64]Listener
	nextSub uint64

	editMu  sync.Mutex
	editing map[string]mapset.Set[int64]
}

// New wraps an already fetched aggregate.
func New(fetcher Fetcher, initial *patient.Profile, logger *slog.Logger) *Context {
	if logger == nil {
		logger = slog.Default()
	}
	return &Context{
		patientID: initial.ID,
		fetcher:   fetcher,
		logger:    logger.With("patient_id", initial.ID),
		profile:   initial,
		subs:      map[uint64]Listener{},
		editing:   map[string]mapset.Set[int64]{},
	}
}

func (c *Context) PatientID() int64 {
	return c.patientID
}

// Profile returns a deep copy of the current aggregate.
func (c *Context) Profile() *patient.Profile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return deepcopy.Copy(c.profile).(*patient.Profile)
}

func (c *Context) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// Refetch reloads the aggregate and replaces it wholesale. On failure the
// previous aggregate is kept and subscribers are not notified.
func (c *Context) Refetch(ctx context.Context) error {
	start := time.Now()
	fresh, err := c.fetcher.FullProfile(ctx, c.patientID)
	if err == nil && fresh == nil {
		err = fmt.Errorf("empty profile")
	}
	if err != nil {
		c.logger.Error("patient refetch failed, keeping previous data", "error", err)
		return fmt.Errorf("refetch patient %d: %w", c.patientID, err)
	}

	c.mu.Lock()
	c.profile = fresh
	c.version++
	snap := deepcopy.Copy(fresh).(*patient.Profile)
	c.mu.Unlock()

	c.logger.Debug("patient data refetched", "duration_ms", time.Since(start).Milliseconds())
	c.notify(snap)
	return nil
}

// UpdateField patches one top-level field of the aggregate in memory, named by
// its JSON name. The value is weakly decoded into the field's type and is not
// otherwise validated.
func (c *Context) UpdateField(field string, value any) error {
	if _, ok := fieldNames[field]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	if field == "id" {
		return fmt.Errorf("%w: %q", ErrImmutableField, field)
	}

	c.mu.Lock()
	next := deepcopy.Copy(c.profile).(*patient.Profile)
	if err := decodeField(next, field, value); err != nil {
		c.mu.Unlock()
		return fmt.Errorf("update field %q: %w", field, err)
	}
	c.profile = next
	c.version++
	snap := deepcopy.Copy(next).(*patient.Profile)
	c.mu.Unlock()

	c.notify(snap)
	return nil
}

// Subscribe registers fn and returns a function that removes it.
func (c *Context) Subscribe(fn Listener) func() {
	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.subMu.Lock()
			delete(c.subs, id)
			c.subMu.Unlock()
		})
	}
}

// Editing returns the edit-mode set of one widget on this chart. Sets live
// as long as the chart does.
func (c *Context) Editing(widget string) mapset.Set[int64] {
	c.editMu.Lock()
	defer c.editMu.Unlock()
	s, ok := c.editing[widget]
	if !ok {
		s = mapset.NewSet[int64]()
		c.editing[widget] = s
	}
	return s
}

func (c *Context) notify(snap *patient.Profile) {
	c.subMu.Lock()
	listeners := make([]Listener, 0, len(c.subs))
	for _, fn := range c.subs {
		listeners = append(listeners, fn)
	}
	c.subMu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}

// decodeField replaces one field wholesale. The value is decoded into a zero
// value of the field's type, so lists and maps never merge with the old
// contents.
func decodeField(dst *patient.Profile, field string, value any) error {
	target := reflect.ValueOf(dst).Elem().FieldByName(fieldNames[field])

	if value != nil && reflect.TypeOf(value).AssignableTo(target.Type()) {
		target.Set(reflect.ValueOf(deepcopy.Copy(value)))
		return nil
	}

	fresh := reflect.New(target.Type())
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           fresh.Interface(),
		WeaklyTypedInput: true,
		DecodeHook:       stringToTimeHook,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(value); err != nil {
		return err
	}
	target.Set(fresh.Elem())
	return nil
}

var timeLayouts = []string{time.RFC3339Nano, time.DateOnly}

func stringToTimeHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(time.Time{}) {
		return data, nil
	}
	var lastErr error
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, data.(string))
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return nil, lastErr
}
