package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/medchart/internal/service/patient"
	"github.com/Alijeyrad/medchart/internal/workspace"
	"github.com/Alijeyrad/medchart/pkg/validate"
)

type PatientHandler struct {
	svc patient.Service
	reg *workspace.Registry
}

func NewPatientHandler(svc patient.Service, reg *workspace.Registry) *PatientHandler {
	return &PatientHandler{svc: svc, reg: reg}
}

func mapPatientError(c fiber.Ctx, err error) error {
	var verr *validate.Error
	switch {
	case errors.As(err, &verr):
		return validationFailed(c, verr)
	case errors.Is(err, patient.ErrInvalidDOB):
		return badRequest(c, err.Error())
	default:
		return internalError(c)
	}
}

// POST /patients
// Registers the patient from the new-patient tab and opens its chart.
func (h *PatientHandler) Create(c fiber.Ctx) error {
	var body patient.CreatePatientRequest
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	m, err := managerFor(c, h.reg)
	if err != nil {
		return mapWorkspaceError(c, err)
	}

	p, err := h.svc.Create(c.Context(), body)
	if err != nil {
		return mapPatientError(c, err)
	}

	if err := m.Open(c.Context(), workspace.NewEntry(p.ID, p.FirstName, p.LastName, p.DOB)); err != nil {
		return mapWorkspaceError(c, err)
	}

	return created(c, fiber.Map{
		"patient":   p,
		"workspace": m.Snapshot(),
	})
}
