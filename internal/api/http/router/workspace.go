package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/medchart/internal/api/http/handler"
	"github.com/Alijeyrad/medchart/pkg/authorize"
)

func (r *Router) registerWorkspaceRoutes(
	api fiber.Router,
	wh *handler.WorkspaceHandler,
	rh *handler.RecordHandler,
	dh *handler.DemographicsHandler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
	requireRecordPerm func(authorize.Action) fiber.Handler,
) {
	ws := api.Group("/workspace")

	// Tab strip
	ws.Get("/", requirePerm(authorize.ResourceWorkspace, authorize.ActionRead), wh.State)
	ws.Get("/kinds", requirePerm(authorize.ResourceWorkspace, authorize.ActionRead), rh.Kinds)
	ws.Post("/tabs", requirePerm(authorize.ResourceWorkspace, authorize.ActionUpdate), wh.Open)
	ws.Delete("/tabs/:tab", requirePerm(authorize.ResourceWorkspace, authorize.ActionUpdate), wh.Close)
	ws.Put("/active", requirePerm(authorize.ResourceWorkspace, authorize.ActionUpdate), wh.Activate)

	tab := ws.Group("/tabs/:tab")

	// Patient data context
	tab.Get("/chart", requirePerm(authorize.ResourcePatient, authorize.ActionRead), wh.Chart)
	tab.Post("/chart/refetch", requirePerm(authorize.ResourcePatient, authorize.ActionRead), wh.Refetch)

	// Demographics
	tab.Patch("/demographics/:field", requirePerm(authorize.ResourceDemographics, authorize.ActionUpdate), dh.Update)

	// Record widgets
	tab.Get("/records/:kind", requireRecordPerm(authorize.ActionRead), rh.List)
	tab.Post("/records/:kind", requireRecordPerm(authorize.ActionCreate), rh.Create)
	tab.Patch("/records/:kind/:rid", requireRecordPerm(authorize.ActionUpdate), rh.Edit)
	tab.Delete("/records/:kind/:rid", requireRecordPerm(authorize.ActionDelete), rh.Delete)
	tab.Post("/records/:kind/:rid/editing", requireRecordPerm(authorize.ActionUpdate), rh.ToggleEdit)
}
