// Package patient holds the patient aggregate shared by the store, the chart
// context and the HTTP layer.
package patient

import (
	"time"

	"github.com/google/uuid"
)

// Record is implemented by every editable chart record.
type Record interface {
	RecordID() int64
	Created() time.Time
}

// Patient is the identity row of a patient, without chart data.
type Patient struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	DOB       time.Time `json:"dob"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile is the full patient aggregate: demographics, contact, insurance,
// provider and every clinical list. It is always fetched and replaced as a
// whole.
type Profile struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	DOB       time.Time `json:"dob"`
	Sex       string    `json:"sex"`
	Pronouns  string    `json:"pronouns"`

	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`

	InsuranceProvider string `json:"insurance_provider"`
	InsuranceMemberID string `json:"insurance_member_id"`
	InsuranceGroup    string `json:"insurance_group"`

	ProviderName string `json:"provider_name"`

	Allergies         []Allergy                     `json:"allergies"`
	DrugIntolerances  []DrugIntolerance             `json:"drug_intolerances"`
	Problems          []Problem                     `json:"problems"`
	Appointments      []Appointment                 `json:"appointments"`
	History           map[HistoryKind][]HistoryNote `json:"history"`
	FamilyHistory     []FamilyHistoryEntry          `json:"family_history"`
	ConfidentialNotes []ConfidentialNote            `json:"confidential_notes"`
	Surveys           []SurveyResponse              `json:"surveys"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullName is "First Last".
func (p *Profile) FullName() string {
	return p.FirstName + " " + p.LastName
}

type Allergy struct {
	ID         int64     `json:"id"`
	PatientID  int64     `json:"patient_id"`
	AllergenID *int64    `json:"allergen_id,omitempty"`
	Allergen   string    `json:"allergen"`
	Reaction   string    `json:"reaction"`
	Severity   string    `json:"severity"`
	Note       string    `json:"note"`
	CreatedAt  time.Time `json:"created_at"`
}

func (a Allergy) RecordID() int64    { return a.ID }
func (a Allergy) Created() time.Time { return a.CreatedAt }

type DrugIntolerance struct {
	ID        int64     `json:"id"`
	PatientID int64     `json:"patient_id"`
	DrugID    int64     `json:"drug_id"`
	Drug      string    `json:"drug"`
	Reaction  string    `json:"reaction"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

func (d DrugIntolerance) RecordID() int64    { return d.ID }
func (d DrugIntolerance) Created() time.Time { return d.CreatedAt }

type Problem struct {
	ID          int64       `json:"id"`
	PatientID   int64       `json:"patient_id"`
	Description string      `json:"description"`
	Status      string      `json:"status"`
	Note        string      `json:"note"`
	Codes       []ICD10Code `json:"codes"`
	CreatedAt   time.Time   `json:"created_at"`
}

func (p Problem) RecordID() int64    { return p.ID }
func (p Problem) Created() time.Time { return p.CreatedAt }

type Appointment struct {
	ID        int64     `json:"id"`
	PatientID int64     `json:"patient_id"`
	DoctorID  uuid.UUID `json:"doctor_id"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
	Reason    string    `json:"reason"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func (a Appointment) RecordID() int64    { return a.ID }
func (a Appointment) Created() time.Time { return a.CreatedAt }

type HistoryNote struct {
	ID        int64       `json:"id"`
	PatientID int64       `json:"patient_id"`
	Kind      HistoryKind `json:"kind"`
	Note      string      `json:"note"`
	CreatedAt time.Time   `json:"created_at"`
}

func (h HistoryNote) RecordID() int64    { return h.ID }
func (h HistoryNote) Created() time.Time { return h.CreatedAt }

type FamilyHistoryEntry struct {
	ID        int64     `json:"id"`
	PatientID int64     `json:"patient_id"`
	Relative  Relative  `json:"relative"`
	Condition string    `json:"condition"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

func (f FamilyHistoryEntry) RecordID() int64    { return f.ID }
func (f FamilyHistoryEntry) Created() time.Time { return f.CreatedAt }

// ConfidentialNote is held decrypted in memory; the store only persists
// ciphertext.
type ConfidentialNote struct {
	ID        int64     `json:"id"`
	PatientID int64     `json:"patient_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

func (c ConfidentialNote) RecordID() int64    { return c.ID }
func (c ConfidentialNote) Created() time.Time { return c.CreatedAt }

type SurveyResponse struct {
	ID        int64             `json:"id"`
	PatientID int64             `json:"patient_id"`
	Survey    string            `json:"survey"`
	Score     int               `json:"score"`
	Answers   map[string]string `json:"answers"`
	CreatedAt time.Time         `json:"created_at"`
}

func (s SurveyResponse) RecordID() int64    { return s.ID }
func (s SurveyResponse) Created() time.Time { return s.CreatedAt }

// Lookup rows.

type Drug struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Allergen struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type ICD10Code struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}
