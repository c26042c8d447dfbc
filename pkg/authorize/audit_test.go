package authorize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/Alijeyrad/medchart/pkg/reqctx"
)

// fixedAuth answers every Enforce with the same decision.
type fixedAuth struct {
	IAuthorization
	allowed bool
	err     error
}

func (f fixedAuth) Enforce(context.Context, GroupSubject, Domain, Resource, Action) (bool, error) {
	return f.allowed, f.err
}

func (f fixedAuth) AddRoleForUserInDomain(context.Context, GroupSubject, Role, Domain) (bool, error) {
	return true, nil
}

func auditLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		entry := map[string]any{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("bad log line %q: %v", line, err)
		}
		out = append(out, entry)
	}
	return out
}

func recordRequestCtx() context.Context {
	ctx := reqctx.WithRequestMeta(context.Background(), &reqctx.RequestMeta{RequestID: "req-42"})
	ctx = reqctx.WithClaims(ctx, testClaims{userID: uuid.New()})
	return reqctx.WithRecordKind(ctx, "confidential_notes")
}

func TestAuditedEnforceLogsRecordKind(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	auth := NewAuditedAuthorization(fixedAuth{allowed: false}, logger)

	err := auth.MustEnforce(recordRequestCtx(), "u1", DomainClinic, ResourceConfidentialNote, ActionRead)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("MustEnforce() error = %v, want ErrForbidden", err)
	}

	lines := auditLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("got %d audit lines, want 1", len(lines))
	}
	entry := lines[0]
	want := map[string]any{
		"msg":         "chart_access_decision",
		"level":       "WARN",
		"resource":    "confidential_notes",
		"record_kind": "confidential_notes",
		"request_id":  "req-42",
		"clinic_role": "nurse",
		"allowed":     false,
	}
	for k, v := range want {
		if entry[k] != v {
			t.Errorf("%s = %v, want %v", k, entry[k], v)
		}
	}
}

func TestAuditedEnforceErrorLogsAtErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	auth := NewAuditedAuthorization(fixedAuth{err: errors.New("policy store down")}, logger)

	if _, err := auth.Enforce(context.Background(), "u1", DomainClinic, ResourceAllergy, ActionRead); err == nil {
		t.Fatal("expected error")
	}

	entry := auditLines(t, &buf)[0]
	if entry["level"] != "ERROR" || entry["error"] != "policy store down" {
		t.Errorf("unexpected entry %v", entry)
	}
	if _, ok := entry["record_kind"]; ok {
		t.Error("record_kind logged outside a record route")
	}
}

func TestAuditedRoleChange(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	auth := NewAuditedAuthorization(fixedAuth{}, logger)

	if _, err := auth.AddRoleForUserInDomain(recordRequestCtx(), "u2", RoleClinicNurse, DomainClinic); err != nil {
		t.Fatalf("AddRoleForUserInDomain() error = %v", err)
	}

	entry := auditLines(t, &buf)[0]
	if entry["msg"] != "clinic_role_change" || entry["operation"] != "grant" || entry["changed"] != true {
		t.Errorf("unexpected entry %v", entry)
	}
}
