package authorize

import (
	"context"
	"log/slog"
	"time"

	"github.com/Alijeyrad/medchart/pkg/reqctx"
)

// AuditedAuthorization logs every chart access decision and every policy
// change. Entries carry the request id, the caller's clinic role and, on
// record routes, the record kind being touched.
type AuditedAuthorization struct {
	inner  IAuthorization
	logger *slog.Logger
}

func NewAuditedAuthorization(inner IAuthorization, logger *slog.Logger) IAuthorization {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditedAuthorization{
		inner:  inner,
		logger: logger,
	}
}

// log writes one audit line. A non-nil err always logs at error level.
func (a *AuditedAuthorization) log(ctx context.Context, level slog.Level, msg string, err error, attrs ...any) {
	if rid := reqctx.RequestIDFromContext(ctx); rid != "" {
		attrs = append(attrs, "request_id", rid)
	}
	if role := reqctx.RoleFromContext(ctx); role != "" {
		attrs = append(attrs, "clinic_role", role)
	}
	if kind := reqctx.RecordKindFromContext(ctx); kind != "" {
		attrs = append(attrs, "record_kind", kind)
	}
	if err != nil {
		level = slog.LevelError
		attrs = append(attrs, "error", err.Error())
	}
	a.logger.Log(ctx, level, msg, attrs...)
}

func (a *AuditedAuthorization) Enforce(ctx context.Context, subject GroupSubject, domain Domain, object Resource, action Action) (bool, error) {
	start := time.Now()
	allowed, err := a.inner.Enforce(ctx, subject, domain, object, action)

	// denials of patient data are the interesting lines
	level := slog.LevelInfo
	if !allowed {
		level = slog.LevelWarn
	}
	a.log(ctx, level, "chart_access_decision", err,
		"subject", string(subject),
		"domain", string(domain),
		"resource", string(object),
		"action", string(action),
		"allowed", allowed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return allowed, err
}

func (a *AuditedAuthorization) MustEnforce(ctx context.Context, subject GroupSubject, domain Domain, object Resource, action Action) error {
	ok, err := a.Enforce(ctx, subject, domain, object, action)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

func (a *AuditedAuthorization) AddRoleForUserInDomain(ctx context.Context, subject GroupSubject, role Role, domain Domain) (bool, error) {
	added, err := a.inner.AddRoleForUserInDomain(ctx, subject, role, domain)
	a.log(ctx, slog.LevelInfo, "clinic_role_change", err,
		"operation", "grant",
		"subject", string(subject),
		"role", string(role),
		"domain", string(domain),
		"changed", added,
	)
	return added, err
}

func (a *AuditedAuthorization) RemoveRoleForUserInDomain(ctx context.Context, subject GroupSubject, role Role, domain Domain) (bool, error) {
	removed, err := a.inner.RemoveRoleForUserInDomain(ctx, subject, role, domain)
	a.log(ctx, slog.LevelInfo, "clinic_role_change", err,
		"operation", "revoke",
		"subject", string(subject),
		"role", string(role),
		"domain", string(domain),
		"changed", removed,
	)
	return removed, err
}

func (a *AuditedAuthorization) GetRolesForUserInDomain(ctx context.Context, subject GroupSubject, domain Domain) ([]Role, error) {
	return a.inner.GetRolesForUserInDomain(ctx, subject, domain)
}

func (a *AuditedAuthorization) AddPermission(ctx context.Context, role Role, domain Domain, object Resource, action Action, effect PolicyEffect) (bool, error) {
	added, err := a.inner.AddPermission(ctx, role, domain, object, action, effect)
	a.logPolicy(ctx, "grant", role, domain, object, action, effect, added, err)
	return added, err
}

func (a *AuditedAuthorization) RemovePermission(ctx context.Context, role Role, domain Domain, object Resource, action Action, effect PolicyEffect) (bool, error) {
	removed, err := a.inner.RemovePermission(ctx, role, domain, object, action, effect)
	a.logPolicy(ctx, "revoke", role, domain, object, action, effect, removed, err)
	return removed, err
}

func (a *AuditedAuthorization) logPolicy(ctx context.Context, op string, role Role, domain Domain, object Resource, action Action, effect PolicyEffect, changed bool, err error) {
	a.log(ctx, slog.LevelInfo, "record_policy_change", err,
		"operation", op,
		"role", string(role),
		"domain", string(domain),
		"resource", string(object),
		"action", string(action),
		"effect", string(effect),
		"changed", changed,
	)
}
