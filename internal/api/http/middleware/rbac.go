package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/medchart/internal/charting"
	"github.com/Alijeyrad/medchart/internal/patient"
	"github.com/Alijeyrad/medchart/pkg/authorize"
	pasetotoken "github.com/Alijeyrad/medchart/pkg/paseto"
	"github.com/Alijeyrad/medchart/pkg/reqctx"
)

// RequirePermission checks if the authenticated user has the given permission
// in the clinic domain.
func RequirePermission(auth authorize.IAuthorization, resource authorize.Resource, action authorize.Action) fiber.Handler {
	return func(c fiber.Ctx) error {
		return enforce(c, auth, resource, action)
	}
}

// RequireRecordPermission resolves the resource from the :kind route param and
// tags the request context with the kind for the audit log.
// Unknown kinds pass through so the handler can answer 404.
func RequireRecordPermission(auth authorize.IAuthorization, action authorize.Action) fiber.Handler {
	return func(c fiber.Ctx) error {
		kind := c.Params("kind")
		res, known := RecordResource(kind)
		if !known {
			return c.Next()
		}
		c.SetContext(reqctx.WithRecordKind(c.Context(), kind))
		return enforce(c, auth, res, action)
	}
}

// RecordResource maps a record kind to its RBAC resource. Every history
// section maps to authorize.ResourceHistory.
func RecordResource(kind string) (authorize.Resource, bool) {
	if patient.HistoryKind(kind).Valid() {
		return authorize.ResourceHistory, true
	}
	switch kind {
	case charting.KindAllergies:
		return authorize.ResourceAllergy, true
	case charting.KindDrugIntolerances:
		return authorize.ResourceDrugIntolerance, true
	case charting.KindProblems:
		return authorize.ResourceProblem, true
	case charting.KindAppointments:
		return authorize.ResourceAppointment, true
	case charting.KindFamilyHistory:
		return authorize.ResourceFamilyHistory, true
	case charting.KindConfidentialNotes:
		return authorize.ResourceConfidentialNote, true
	case charting.KindSurveys:
		return authorize.ResourceSurvey, true
	}
	return "", false
}

func enforce(c fiber.Ctx, auth authorize.IAuthorization, resource authorize.Resource, action authorize.Action) error {
	claims, ok := pasetotoken.ClaimsFromFiber(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	subject := authorize.GroupSubject(claims.UserID.String())
	if err := auth.MustEnforce(c.Context(), subject, authorize.DomainClinic, resource, action); err != nil {
		if errors.Is(err, authorize.ErrForbidden) {
			return fiber.ErrForbidden
		}
		return err
	}

	return c.Next()
}
