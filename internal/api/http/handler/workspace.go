package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/medchart/internal/chart"
	"github.com/Alijeyrad/medchart/internal/patient"
	"github.com/Alijeyrad/medchart/internal/workspace"
	"github.com/Alijeyrad/medchart/pkg/authorize"
	pasetotoken "github.com/Alijeyrad/medchart/pkg/paseto"
	"github.com/Alijeyrad/medchart/pkg/validate"
)

var (
	errNoOwner        = errors.New("no authenticated clinician")
	errChartNotLoaded = errors.New("chart is not loaded yet")
)

type WorkspaceHandler struct {
	reg  *workspace.Registry
	auth authorize.IAuthorization
}

func NewWorkspaceHandler(reg *workspace.Registry, auth authorize.IAuthorization) *WorkspaceHandler {
	return &WorkspaceHandler{reg: reg, auth: auth}
}

// chartSections pairs each record list of the profile with the resource
// guarding it.
var chartSections = []struct {
	resource authorize.Resource
	clear    func(*patient.Profile)
}{
	{authorize.ResourceAllergy, func(p *patient.Profile) { p.Allergies = []patient.Allergy{} }},
	{authorize.ResourceDrugIntolerance, func(p *patient.Profile) { p.DrugIntolerances = []patient.DrugIntolerance{} }},
	{authorize.ResourceProblem, func(p *patient.Profile) { p.Problems = []patient.Problem{} }},
	{authorize.ResourceAppointment, func(p *patient.Profile) { p.Appointments = []patient.Appointment{} }},
	{authorize.ResourceHistory, func(p *patient.Profile) { p.History = map[patient.HistoryKind][]patient.HistoryNote{} }},
	{authorize.ResourceFamilyHistory, func(p *patient.Profile) { p.FamilyHistory = []patient.FamilyHistoryEntry{} }},
	{authorize.ResourceConfidentialNote, func(p *patient.Profile) { p.ConfidentialNotes = []patient.ConfidentialNote{} }},
	{authorize.ResourceSurvey, func(p *patient.Profile) { p.Surveys = []patient.SurveyResponse{} }},
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// managerFor returns the workspace of the authenticated clinician.
func managerFor(c fiber.Ctx, reg *workspace.Registry) (*workspace.Manager, error) {
	claims, found := pasetotoken.ClaimsFromFiber(c)
	if !found {
		return nil, errNoOwner
	}
	return reg.Get(c.Context(), claims.UserID.String())
}

func tabParam(c fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("tab"), 10, 64)
	if err != nil {
		return 0, workspace.ErrInvalidTab
	}
	return id, nil
}

// chartFor resolves the :tab param to the loaded chart of an open tab.
func chartFor(c fiber.Ctx, reg *workspace.Registry) (*chart.Context, error) {
	m, err := managerFor(c, reg)
	if err != nil {
		return nil, err
	}
	id, err := tabParam(c)
	if err != nil {
		return nil, err
	}
	if !m.IsOpen(id) {
		return nil, workspace.ErrTabNotOpen
	}
	ch, loaded := m.Chart(id)
	if !loaded {
		return nil, errChartNotLoaded
	}
	return ch, nil
}

// chartView renders the chart as the caller may read it. Record lists the
// caller has no read permission for are emptied and named in "hidden".
func (h *WorkspaceHandler) chartView(c fiber.Ctx, ch *chart.Context) (fiber.Map, error) {
	subject, err := authorize.SubjectFromContext(c.Context())
	if err != nil {
		return nil, errNoOwner
	}

	p := ch.Profile()
	hidden := []authorize.Resource{}
	for _, sec := range chartSections {
		allowed, err := h.auth.Enforce(c.Context(), subject, authorize.DomainClinic, sec.resource, authorize.ActionRead)
		if err != nil {
			return nil, err
		}
		if !allowed {
			sec.clear(p)
			hidden = append(hidden, sec.resource)
		}
	}
	return fiber.Map{
		"profile": p,
		"version": ch.Version(),
		"hidden":  hidden,
	}, nil
}

func mapWorkspaceError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, errNoOwner):
		return unauthorized(c)
	case errors.Is(err, workspace.ErrInvalidTab):
		return badRequest(c, err.Error())
	case errors.Is(err, workspace.ErrSentinelTab):
		return badRequest(c, err.Error())
	case errors.Is(err, workspace.ErrTabNotOpen):
		return notFound(c, err.Error())
	case errors.Is(err, errChartNotLoaded):
		return conflict(c, err.Error())
	default:
		return internalError(c)
	}
}

// ---------------------------------------------------------------------------
// Tabs
// ---------------------------------------------------------------------------

// GET /workspace
func (h *WorkspaceHandler) State(c fiber.Ctx) error {
	m, err := managerFor(c, h.reg)
	if err != nil {
		return mapWorkspaceError(c, err)
	}
	return ok(c, m.Snapshot())
}

// POST /workspace/tabs
func (h *WorkspaceHandler) Open(c fiber.Ctx) error {
	var body workspace.Entry
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := validate.Struct(body); err != nil {
		return mapInputError(c, err)
	}

	m, err := managerFor(c, h.reg)
	if err != nil {
		return mapWorkspaceError(c, err)
	}
	if err := m.Open(c.Context(), body); err != nil {
		return mapWorkspaceError(c, err)
	}
	return ok(c, m.Snapshot())
}

// DELETE /workspace/tabs/:tab
func (h *WorkspaceHandler) Close(c fiber.Ctx) error {
	id, err := tabParam(c)
	if err != nil {
		return mapWorkspaceError(c, err)
	}
	m, err := managerFor(c, h.reg)
	if err != nil {
		return mapWorkspaceError(c, err)
	}
	if err := m.Close(c.Context(), id); err != nil {
		return mapWorkspaceError(c, err)
	}
	return ok(c, m.Snapshot())
}

// PUT /workspace/active
func (h *WorkspaceHandler) Activate(c fiber.Ctx) error {
	var body struct {
		ID int64 `json:"id"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	m, err := managerFor(c, h.reg)
	if err != nil {
		return mapWorkspaceError(c, err)
	}
	if err := m.Activate(c.Context(), body.ID); err != nil {
		return mapWorkspaceError(c, err)
	}
	return ok(c, m.Snapshot())
}

// ---------------------------------------------------------------------------
// Chart
// ---------------------------------------------------------------------------

// GET /workspace/tabs/:tab/chart
// 204 while the first fetch is in flight or after it failed.
func (h *WorkspaceHandler) Chart(c fiber.Ctx) error {
	ch, err := chartFor(c, h.reg)
	if errors.Is(err, errChartNotLoaded) {
		return noContent(c)
	}
	if err != nil {
		return mapWorkspaceError(c, err)
	}
	view, err := h.chartView(c, ch)
	if err != nil {
		return mapWorkspaceError(c, err)
	}
	return ok(c, view)
}

// POST /workspace/tabs/:tab/chart/refetch
// A failed refetch keeps the previous aggregate.
func (h *WorkspaceHandler) Refetch(c fiber.Ctx) error {
	ch, err := chartFor(c, h.reg)
	if err != nil {
		return mapWorkspaceError(c, err)
	}
	if err := ch.Refetch(c.Context()); err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "refetch failed"})
	}
	view, err := h.chartView(c, ch)
	if err != nil {
		return mapWorkspaceError(c, err)
	}
	return ok(c, view)
}
