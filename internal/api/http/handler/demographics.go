package handler

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/medchart/internal/charting"
	"github.com/Alijeyrad/medchart/internal/service/demographics"
	"github.com/Alijeyrad/medchart/internal/workspace"
	"github.com/Alijeyrad/medchart/pkg/validate"
)

type DemographicsHandler struct {
	reg    *workspace.Registry
	charts *charting.Registry
}

func NewDemographicsHandler(reg *workspace.Registry, charts *charting.Registry) *DemographicsHandler {
	return &DemographicsHandler{reg: reg, charts: charts}
}

func mapDemographicsError(c fiber.Ctx, err error) error {
	var verr *validate.Error
	switch {
	case errors.As(err, &verr):
		return validationFailed(c, verr)
	case errors.Is(err, demographics.ErrUnknownField):
		return notFound(c, err.Error())
	default:
		return internalError(c)
	}
}

// PATCH /workspace/tabs/:tab/demographics/:field
// Body: {"value": ...}. On success the open chart is patched in place.
func (h *DemographicsHandler) Update(c fiber.Ctx) error {
	var body struct {
		Value json.RawMessage `json:"value"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	var value any
	if len(body.Value) > 0 {
		if err := json.Unmarshal(body.Value, &value); err != nil {
			return badRequest(c, "invalid value")
		}
	}

	ch, err := chartFor(c, h.reg)
	if err != nil {
		return mapWorkspaceError(c, err)
	}

	res, err := h.charts.UpdateDemographic(c.Context(), ch, c.Params("field"), value)
	if err != nil {
		return mapDemographicsError(c, err)
	}
	if res.ActionSucceeded {
		// name and dob also label the tab
		if m, err := managerFor(c, h.reg); err == nil {
			m.SyncEntry(c.Context(), ch.PatientID())
		}
	}
	return actionResult(c, res)
}
