package test

import (
	"time"

	"github.com/Alijeyrad/medchart/internal/service/allergy"
	"github.com/Alijeyrad/medchart/internal/service/patient"
	"github.com/Alijeyrad/medchart/internal/workspace"
)

var allergens = []string{"Peanut", "Penicillin", "Latex", "Shellfish", "Sulfa drugs", "Bee venom"}

func RandomEntry() workspace.Entry {
	return workspace.Entry{
		ID:        Faker.Int64Between(1, 1_000_000),
		FirstName: Faker.Person().FirstName(),
		LastName:  Faker.Person().LastName(),
		DOB:       RandomDOB().Format("2006-01-02"),
	}
}

// RandomDOB is a birth date between one and ninety years ago.
func RandomDOB() time.Time {
	days := Faker.IntBetween(365, 90*365)
	return time.Now().UTC().AddDate(0, 0, -days).Truncate(24 * time.Hour)
}

func RandomAllergyRequest() allergy.Request {
	return allergy.Request{
		Allergen: Faker.RandomStringElement(allergens),
		Severity: Faker.RandomStringElement([]string{"mild", "moderate", "severe"}),
	}
}

func RandomPatientRequest() patient.CreatePatientRequest {
	return patient.CreatePatientRequest{
		FirstName: Faker.Person().FirstName(),
		LastName:  Faker.Person().LastName(),
		DOB:       RandomDOB().Format("2006-01-02"),
		Sex:       Faker.RandomStringElement([]string{"female", "male"}),
		Email:     Faker.Internet().Email(),
	}
}
