package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/medchart/internal/api/http/handler"
	"github.com/Alijeyrad/medchart/pkg/authorize"
)

func (r *Router) registerPatientRoutes(
	api fiber.Router,
	ph *handler.PatientHandler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	patients := api.Group("/patients")

	patients.Post("/", requirePerm(authorize.ResourcePatient, authorize.ActionCreate), ph.Create)
}
