// Package reqctx carries request-scoped data through context.Context:
// request metadata set by the HTTP middleware, the authenticated
// clinician's claims and the record kind of chart record routes.
//
// Setting values (typically in middleware):
//
//	ctx = reqctx.WithRequestMeta(ctx, &reqctx.RequestMeta{RequestID: rid})
//	ctx = reqctx.WithClaims(ctx, claims)
//	ctx = reqctx.WithRecordKind(ctx, "allergies")
//
// Reading them in services:
//
//	doctorID, ok := reqctx.UserIDFromContext(ctx)
//	rid := reqctx.RequestIDFromContext(ctx)
//
// RequestMeta is set for every HTTP request. Claims are set only for
// authenticated requests.
package reqctx
