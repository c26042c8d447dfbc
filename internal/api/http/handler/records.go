package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/medchart/internal/charting"
	"github.com/Alijeyrad/medchart/internal/widget"
	"github.com/Alijeyrad/medchart/internal/workspace"
)

// RecordHandler serves every chart record widget through one route table
// keyed by :kind.
type RecordHandler struct {
	reg    *workspace.Registry
	charts *charting.Registry
}

func NewRecordHandler(reg *workspace.Registry, charts *charting.Registry) *RecordHandler {
	return &RecordHandler{reg: reg, charts: charts}
}

func (h *RecordHandler) kind(c fiber.Ctx) (widget.Kind, bool) {
	return h.charts.Kind(c.Params("kind"))
}

func recordIDParam(c fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("rid"), 10, 64)
	return id, err == nil && id > 0
}

// GET /workspace/kinds
func (h *RecordHandler) Kinds(c fiber.Ctx) error {
	return ok(c, h.charts.Names())
}

// GET /workspace/tabs/:tab/records/:kind
func (h *RecordHandler) List(c fiber.Ctx) error {
	k, found := h.kind(c)
	if !found {
		return notFound(c, "unknown record kind")
	}
	ch, err := chartFor(c, h.reg)
	if err != nil {
		return mapWorkspaceError(c, err)
	}
	return ok(c, k.Items(ch))
}

// POST /workspace/tabs/:tab/records/:kind
func (h *RecordHandler) Create(c fiber.Ctx) error {
	k, found := h.kind(c)
	if !found {
		return notFound(c, "unknown record kind")
	}
	ch, err := chartFor(c, h.reg)
	if err != nil {
		return mapWorkspaceError(c, err)
	}

	res, err := k.Create(c.Context(), ch, c.Body())
	if err != nil {
		return mapInputError(c, err)
	}
	return actionResult(c, res)
}

// PATCH /workspace/tabs/:tab/records/:kind/:rid
func (h *RecordHandler) Edit(c fiber.Ctx) error {
	k, found := h.kind(c)
	if !found {
		return notFound(c, "unknown record kind")
	}
	rid, valid := recordIDParam(c)
	if !valid {
		return badRequest(c, "invalid record id")
	}
	ch, err := chartFor(c, h.reg)
	if err != nil {
		return mapWorkspaceError(c, err)
	}

	res, err := k.Edit(c.Context(), ch, rid, c.Body())
	if err != nil {
		return mapInputError(c, err)
	}
	return actionResult(c, res)
}

// DELETE /workspace/tabs/:tab/records/:kind/:rid
func (h *RecordHandler) Delete(c fiber.Ctx) error {
	k, found := h.kind(c)
	if !found {
		return notFound(c, "unknown record kind")
	}
	rid, valid := recordIDParam(c)
	if !valid {
		return badRequest(c, "invalid record id")
	}
	ch, err := chartFor(c, h.reg)
	if err != nil {
		return mapWorkspaceError(c, err)
	}
	return actionResult(c, k.Delete(c.Context(), ch, rid))
}

// POST /workspace/tabs/:tab/records/:kind/:rid/editing
func (h *RecordHandler) ToggleEdit(c fiber.Ctx) error {
	k, found := h.kind(c)
	if !found {
		return notFound(c, "unknown record kind")
	}
	rid, valid := recordIDParam(c)
	if !valid {
		return badRequest(c, "invalid record id")
	}
	ch, err := chartFor(c, h.reg)
	if err != nil {
		return mapWorkspaceError(c, err)
	}
	return ok(c, fiber.Map{"id": rid, "editing": k.ToggleEdit(ch, rid)})
}
