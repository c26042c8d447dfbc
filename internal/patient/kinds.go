package patient

import (
	"strings"

	"github.com/samber/lo"
)

// HistoryKind names one of the note-shaped history sections of a chart.
type HistoryKind string

const (
	HistoryPastMedical   HistoryKind = "past_medical"
	HistoryPastSurgical  HistoryKind = "past_surgical"
	HistoryCognitive     HistoryKind = "cognitive_status"
	HistoryFunctional    HistoryKind = "functional_status"
	HistoryPsychological HistoryKind = "psychological_status"
	HistoryHabits        HistoryKind = "habits"
	HistoryDiet          HistoryKind = "diet"
	HistoryExercise      HistoryKind = "exercise"
	HistorySocial        HistoryKind = "social"
)

// HistoryKinds lists every history section in display order.
var HistoryKinds = []HistoryKind{
	HistoryPastMedical,
	HistoryPastSurgical,
	HistoryCognitive,
	HistoryFunctional,
	HistoryPsychological,
	HistoryHabits,
	HistoryDiet,
	HistoryExercise,
	HistorySocial,
}

func (k HistoryKind) Valid() bool {
	return lo.Contains(HistoryKinds, k)
}

// Label is the human form of k, e.g. "past medical".
func (k HistoryKind) Label() string {
	return strings.ReplaceAll(string(k), "_", " ")
}

// Relative is the closed set of family members a family history entry can
// be recorded against.
type Relative string

const (
	RelativeMother              Relative = "mother"
	RelativeFather              Relative = "father"
	RelativeSibling             Relative = "sibling"
	RelativeChild               Relative = "child"
	RelativeMaternalGrandparent Relative = "maternal_grandparent"
	RelativePaternalGrandparent Relative = "paternal_grandparent"
	RelativeOther               Relative = "other"
)

var Relatives = []Relative{
	RelativeMother,
	RelativeFather,
	RelativeSibling,
	RelativeChild,
	RelativeMaternalGrandparent,
	RelativePaternalGrandparent,
	RelativeOther,
}

func (r Relative) Valid() bool {
	return lo.Contains(Relatives, r)
}
