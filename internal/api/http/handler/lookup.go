package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/medchart/internal/service/lookup"
)

type LookupHandler struct {
	svc lookup.Service
}

func NewLookupHandler(svc lookup.Service) *LookupHandler {
	return &LookupHandler{svc: svc}
}

// GET /lookup/patients?q=
func (h *LookupHandler) Patients(c fiber.Ctx) error {
	return ok(c, h.svc.Patients(c.Context(), c.Query("q")))
}

// GET /lookup/drugs?q=
func (h *LookupHandler) Drugs(c fiber.Ctx) error {
	return ok(c, h.svc.Drugs(c.Context(), c.Query("q")))
}

// GET /lookup/icd10?q=
func (h *LookupHandler) ICD10(c fiber.Ctx) error {
	return ok(c, h.svc.ICD10Codes(c.Context(), c.Query("q")))
}

// GET /lookup/allergens?q=
func (h *LookupHandler) Allergens(c fiber.Ctx) error {
	return ok(c, h.svc.Allergens(c.Context(), c.Query("q")))
}
