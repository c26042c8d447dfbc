package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/medchart/internal/api/http/handler"
	"github.com/Alijeyrad/medchart/pkg/authorize"
)

func (r *Router) registerLookupRoutes(
	api fiber.Router,
	lh *handler.LookupHandler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	lookup := api.Group("/lookup", requirePerm(authorize.ResourceLookup, authorize.ActionRead))

	lookup.Get("/patients", requirePerm(authorize.ResourcePatient, authorize.ActionRead), lh.Patients)
	lookup.Get("/drugs", lh.Drugs)
	lookup.Get("/icd10", lh.ICD10)
	lookup.Get("/allergens", lh.Allergens)
}
