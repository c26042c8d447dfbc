package app

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/Alijeyrad/medchart/config"
	"github.com/Alijeyrad/medchart/internal/charting"
	"github.com/Alijeyrad/medchart/internal/service/allergy"
	"github.com/Alijeyrad/medchart/internal/service/appointment"
	"github.com/Alijeyrad/medchart/internal/service/confidential"
	"github.com/Alijeyrad/medchart/internal/service/demographics"
	"github.com/Alijeyrad/medchart/internal/service/familyhistory"
	"github.com/Alijeyrad/medchart/internal/service/history"
	"github.com/Alijeyrad/medchart/internal/service/intolerance"
	"github.com/Alijeyrad/medchart/internal/service/lookup"
	"github.com/Alijeyrad/medchart/internal/service/patient"
	"github.com/Alijeyrad/medchart/internal/service/problem"
	"github.com/Alijeyrad/medchart/internal/service/survey"
	"github.com/Alijeyrad/medchart/internal/store"
	"github.com/Alijeyrad/medchart/pkg/events"
	pasetotoken "github.com/Alijeyrad/medchart/pkg/paseto"
)

// ServiceModule provides all application service dependencies.
var ServiceModule = fx.Module("services",
	fx.Provide(
		ProvideDemographicsService,
		ProvidePatientService,
		ProvideLookupService,
		ProvideCharting,
		ProvideTokenVerifier,
	),
)

func ProvideDemographicsService(st *store.Store, cfg *config.Config) demographics.Service {
	return demographics.New(st, demographics.Config{PhoneRegion: cfg.Workspace.PhoneRegion})
}

func ProvidePatientService(st *store.Store, demog demographics.Service) patient.Service {
	return patient.New(st, demog)
}

func ProvideLookupService(st *store.Store) lookup.Service {
	return lookup.New(st, slog.Default())
}

// ProvideCharting wires every record service into the widget registry.
func ProvideCharting(st *store.Store, demog demographics.Service, pub events.Publisher) *charting.Registry {
	return charting.New(charting.Services{
		Allergy:       allergy.New(st),
		Intolerance:   intolerance.New(st),
		Problem:       problem.New(st),
		History:       history.New(st),
		FamilyHistory: familyhistory.New(st),
		Appointment:   appointment.New(st),
		Confidential:  confidential.New(st),
		Survey:        survey.New(st),
		Demographics:  demog,
	}, pub, slog.Default())
}

func ProvideTokenVerifier(cfg *config.Config) (*pasetotoken.Verifier, error) {
	return pasetotoken.NewVerifierFromConfig(cfg)
}
