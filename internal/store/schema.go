package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	PatientsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "first_name", Type: field.TypeString, Size: 100},
		{Name: "last_name", Type: field.TypeString, Size: 100},
		{Name: "dob", Type: field.TypeTime},
		{Name: "sex", Type: field.TypeString, Size: 32, Default: ""},
		{Name: "pronouns", Type: field.TypeString, Size: 32, Default: ""},
		{Name: "phone", Type: field.TypeString, Size: 32, Default: ""},
		{Name: "email", Type: field.TypeString, Size: 255, Default: ""},
		{Name: "address", Type: field.TypeString, Size: 500, Default: ""},
		{Name: "insurance_provider", Type: field.TypeString, Size: 255, Default: ""},
		{Name: "insurance_member_id", Type: field.TypeString, Size: 100, Default: ""},
		{Name: "insurance_group", Type: field.TypeString, Size: 100, Default: ""},
		{Name: "provider_name", Type: field.TypeString, Size: 255, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	PatientsTable = &schema.Table{
		Name:       "patients",
		Columns:    PatientsColumns,
		PrimaryKey: []*schema.Column{PatientsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "patients_last_name_first_name", Columns: []*schema.Column{PatientsColumns[2], PatientsColumns[1]}},
		},
	}

	AllergensColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "name", Type: field.TypeString, Unique: true, Size: 255},
	}
	AllergensTable = &schema.Table{
		Name:       "allergens",
		Columns:    AllergensColumns,
		PrimaryKey: []*schema.Column{AllergensColumns[0]},
	}

	DrugsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "name", Type: field.TypeString, Unique: true, Size: 255},
	}
	DrugsTable = &schema.Table{
		Name:       "drugs",
		Columns:    DrugsColumns,
		PrimaryKey: []*schema.Column{DrugsColumns[0]},
	}

	ICD10CodesColumns = []*schema.Column{
		{Name: "code", Type: field.TypeString, Size: 16},
		{Name: "description", Type: field.TypeString, Size: 500},
	}
	ICD10CodesTable = &schema.Table{
		Name:       "icd10_codes",
		Columns:    ICD10CodesColumns,
		PrimaryKey: []*schema.Column{ICD10CodesColumns[0]},
	}

	AllergiesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "patient_id", Type: field.TypeInt64},
		{Name: "allergen_id", Type: field.TypeInt64, Nullable: true},
		{Name: "allergen_name", Type: field.TypeString, Size: 255, Default: ""},
		{Name: "reaction", Type: field.TypeString, Size: 255, Default: ""},
		{Name: "severity", Type: field.TypeString, Size: 32, Default: ""},
		{Name: "note", Type: field.TypeString, Size: 2000, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	AllergiesTable = &schema.Table{
		Name:       "allergies",
		Columns:    AllergiesColumns,
		PrimaryKey: []*schema.Column{AllergiesColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{Symbol: "allergies_patients_allergies", Columns: []*schema.Column{AllergiesColumns[1]}, RefColumns: []*schema.Column{PatientsColumns[0]}, OnDelete: schema.Cascade},
			{Symbol: "allergies_allergens_allergen", Columns: []*schema.Column{AllergiesColumns[2]}, RefColumns: []*schema.Column{AllergensColumns[0]}, OnDelete: schema.SetNull},
		},
		Indexes: []*schema.Index{
			{Name: "allergies_patient_id", Columns: []*schema.Column{AllergiesColumns[1]}},
		},
	}

	DrugIntolerancesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "patient_id", Type: field.TypeInt64},
		{Name: "drug_id", Type: field.TypeInt64},
		{Name: "reaction", Type: field.TypeString, Size: 255, Default: ""},
		{Name: "note", Type: field.TypeString, Size: 2000, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	DrugIntolerancesTable = &schema.Table{
		Name:       "drug_intolerances",
		Columns:    DrugIntolerancesColumns,
		PrimaryKey: []*schema.Column{DrugIntolerancesColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{Symbol: "drug_intolerances_patients_drug_intolerances", Columns: []*schema.Column{DrugIntolerancesColumns[1]}, RefColumns: []*schema.Column{PatientsColumns[0]}, OnDelete: schema.Cascade},
			{Symbol: "drug_intolerances_drugs_drug", Columns: []*schema.Column{DrugIntolerancesColumns[2]}, RefColumns: []*schema.Column{DrugsColumns[0]}, OnDelete: schema.Restrict},
		},
		Indexes: []*schema.Index{
			{Name: "drug_intolerances_patient_id", Columns: []*schema.Column{DrugIntolerancesColumns[1]}},
		},
	}

	ProblemsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "patient_id", Type: field.TypeInt64},
		{Name: "description", Type: field.TypeString, Size: 500},
		{Name: "status", Type: field.TypeString, Size: 32, Default: "active"},
		{Name: "note", Type: field.TypeString, Size: 2000, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	ProblemsTable = &schema.Table{
		Name:       "problems",
		Columns:    ProblemsColumns,
		PrimaryKey: []*schema.Column{ProblemsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{Symbol: "problems_patients_problems", Columns: []*schema.Column{ProblemsColumns[1]}, RefColumns: []*schema.Column{PatientsColumns[0]}, OnDelete: schema.Cascade},
		},
		Indexes: []*schema.Index{
			{Name: "problems_patient_id", Columns: []*schema.Column{ProblemsColumns[1]}},
		},
	}

	ProblemCodesColumns = []*schema.Column{
		{Name: "problem_id", Type: field.TypeInt64},
		{Name: "code", Type: field.TypeString, Size: 16},
	}
	ProblemCodesTable = &schema.Table{
		Name:       "problem_codes",
		Columns:    ProblemCodesColumns,
		PrimaryKey: []*schema.Column{ProblemCodesColumns[0], ProblemCodesColumns[1]},
		ForeignKeys: []*schema.ForeignKey{
			{Symbol: "problem_codes_problems_problem", Columns: []*schema.Column{ProblemCodesColumns[0]}, RefColumns: []*schema.Column{ProblemsColumns[0]}, OnDelete: schema.Cascade},
			{Symbol: "problem_codes_icd10_codes_code", Columns: []*schema.Column{ProblemCodesColumns[1]}, RefColumns: []*schema.Column{ICD10CodesColumns[0]}, OnDelete: schema.Restrict},
		},
	}

	HistoryNotesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "patient_id", Type: field.TypeInt64},
		{Name: "kind", Type: field.TypeString, Size: 32},
		{Name: "note", Type: field.TypeString, Size: 4000},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	HistoryNotesTable = &schema.Table{
		Name:       "history_notes",
		Columns:    HistoryNotesColumns,
		PrimaryKey: []*schema.Column{HistoryNotesColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{Symbol: "history_notes_patients_history", Columns: []*schema.Column{HistoryNotesColumns[1]}, RefColumns: []*schema.Column{PatientsColumns[0]}, OnDelete: schema.Cascade},
		},
		Indexes: []*schema.Index{
			{Name: "history_notes_patient_id_kind", Columns: []*schema.Column{HistoryNotesColumns[1], HistoryNotesColumns[2]}},
		},
	}

	FamilyHistoryColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "patient_id", Type: field.TypeInt64},
		{Name: "relative", Type: field.TypeString, Size: 32},
		{Name: "condition", Type: field.TypeString, Size: 500},
		{Name: "note", Type: field.TypeString, Size: 2000, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	FamilyHistoryTable = &schema.Table{
		Name:       "family_history",
		Columns:    FamilyHistoryColumns,
		PrimaryKey: []*schema.Column{FamilyHistoryColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{Symbol: "family_history_patients_family_history", Columns: []*schema.Column{FamilyHistoryColumns[1]}, RefColumns: []*schema.Column{PatientsColumns[0]}, OnDelete: schema.Cascade},
		},
	}

	AppointmentsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "patient_id", Type: field.TypeInt64},
		{Name: "doctor_id", Type: field.TypeUUID},
		{Name: "starts_at", Type: field.TypeTime},
		{Name: "ends_at", Type: field.TypeTime},
		{Name: "reason", Type: field.TypeString, Size: 500, Default: ""},
		{Name: "status", Type: field.TypeString, Size: 32, Default: "scheduled"},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	AppointmentsTable = &schema.Table{
		Name:       "appointments",
		Columns:    AppointmentsColumns,
		PrimaryKey: []*schema.Column{AppointmentsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{Symbol: "appointments_patients_appointments", Columns: []*schema.Column{AppointmentsColumns[1]}, RefColumns: []*schema.Column{PatientsColumns[0]}, OnDelete: schema.Cascade},
		},
		Indexes: []*schema.Index{
			{Name: "appointments_patient_id", Columns: []*schema.Column{AppointmentsColumns[1]}},
			{Name: "appointments_doctor_id_starts_at", Columns: []*schema.Column{AppointmentsColumns[2], AppointmentsColumns[3]}},
		},
	}

	ConfidentialNotesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "patient_id", Type: field.TypeInt64},
		{Name: "author_id", Type: field.TypeUUID},
		{Name: "body_encrypted", Type: field.TypeString, Size: 2147483647},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	ConfidentialNotesTable = &schema.Table{
		Name:       "confidential_notes",
		Columns:    ConfidentialNotesColumns,
		PrimaryKey: []*schema.Column{ConfidentialNotesColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{Symbol: "confidential_notes_patients_confidential_notes", Columns: []*schema.Column{ConfidentialNotesColumns[1]}, RefColumns: []*schema.Column{PatientsColumns[0]}, OnDelete: schema.Cascade},
		},
	}

	SurveyResponsesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "patient_id", Type: field.TypeInt64},
		{Name: "survey", Type: field.TypeString, Size: 100},
		{Name: "score", Type: field.TypeInt},
		{Name: "answers", Type: field.TypeJSON, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	SurveyResponsesTable = &schema.Table{
		Name:       "survey_responses",
		Columns:    SurveyResponsesColumns,
		PrimaryKey: []*schema.Column{SurveyResponsesColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{Symbol: "survey_responses_patients_surveys", Columns: []*schema.Column{SurveyResponsesColumns[1]}, RefColumns: []*schema.Column{PatientsColumns[0]}, OnDelete: schema.Cascade},
		},
	}

	// Tables lists every table in creation order.
	Tables = []*schema.Table{
		PatientsTable,
		AllergensTable,
		DrugsTable,
		ICD10CodesTable,
		AllergiesTable,
		DrugIntolerancesTable,
		ProblemsTable,
		ProblemCodesTable,
		HistoryNotesTable,
		FamilyHistoryTable,
		AppointmentsTable,
		ConfidentialNotesTable,
		SurveyResponsesTable,
	}
)

func init() {
	AllergiesTable.ForeignKeys[0].RefTable = PatientsTable
	AllergiesTable.ForeignKeys[1].RefTable = AllergensTable
	DrugIntolerancesTable.ForeignKeys[0].RefTable = PatientsTable
	DrugIntolerancesTable.ForeignKeys[1].RefTable = DrugsTable
	ProblemsTable.ForeignKeys[0].RefTable = PatientsTable
	ProblemCodesTable.ForeignKeys[0].RefTable = ProblemsTable
	ProblemCodesTable.ForeignKeys[1].RefTable = ICD10CodesTable
	HistoryNotesTable.ForeignKeys[0].RefTable = PatientsTable
	FamilyHistoryTable.ForeignKeys[0].RefTable = PatientsTable
	AppointmentsTable.ForeignKeys[0].RefTable = PatientsTable
	ConfidentialNotesTable.ForeignKeys[0].RefTable = PatientsTable
	SurveyResponsesTable.ForeignKeys[0].RefTable = PatientsTable
}

// Migrate creates or updates every chart table.
func (s *Store) Migrate(ctx context.Context) error {
	m, err := schema.NewMigrate(s.drv, schema.WithForeignKeys(true))
	if err != nil {
		return fmt.Errorf("create migrate: %w", err)
	}
	if err := m.Create(ctx, Tables...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
