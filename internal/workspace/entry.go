package workspace

import "time"

// Sentinel tabs are always present, never fetch and can not be closed.
const (
	TabHome       int64 = -1
	TabProfile    int64 = -2
	TabNewPatient int64 = -3
)

func IsSentinel(id int64) bool {
	return id == TabHome || id == TabProfile || id == TabNewPatient
}

// Entry identifies an open patient tab. It carries only what the tab strip
// renders; the chart itself is loaded separately.
type Entry struct {
	ID        int64  `json:"id" validate:"required,gt=0"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	DOB       string `json:"dob"`
}

// NewEntry builds a tab entry. A zero dob is left blank.
func NewEntry(id int64, firstName, lastName string, dob time.Time) Entry {
	e := Entry{ID: id, FirstName: firstName, LastName: lastName}
	if !dob.IsZero() {
		e.DOB = dob.Format(time.DateOnly)
	}
	return e
}

// State is a point-in-time view of a workspace.
type State struct {
	Tabs    []Entry `json:"tabs"`
	Active  int64   `json:"active"`
	Loaded  []int64 `json:"loaded"`
	Loading []int64 `json:"loading"`
}
