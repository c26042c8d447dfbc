package authorize

import (
	"testing"
)

func TestIsValidDomain(t *testing.T) {
	tests := []struct {
		name     string
		domain   Domain
		expected bool
	}{
		{"sys domain", DomainSys, true},
		{"clinic domain", DomainClinic, true},
		{"wildcard domain", WildcardDomain, true},

		{"empty domain", Domain(""), false},
		{"random string", Domain("random"), false},
		{"per clinic domain", Domain("clinic:550e8400-e29b-41d4-a716-446655440000"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidDomain(tt.domain)
			if result != tt.expected {
				t.Errorf("IsValidDomain(%q) = %v, want %v", tt.domain, result, tt.expected)
			}
		})
	}
}

func TestDomainForRole(t *testing.T) {
	if got := DomainForRole(RoleSysSuperAdmin); got != DomainSys {
		t.Errorf("DomainForRole(superadmin) = %q, want %q", got, DomainSys)
	}
	for _, r := range []Role{RoleClinicAdmin, RoleClinicPhysician, RoleClinicNurse, RoleClinicFrontDesk} {
		if got := DomainForRole(r); got != DomainClinic {
			t.Errorf("DomainForRole(%q) = %q, want %q", r, got, DomainClinic)
		}
	}
}

func TestKnownResources(t *testing.T) {
	for _, resource := range RecordResources {
		if _, ok := KnownResources[resource]; !ok {
			t.Errorf("Expected resource %q to be in KnownResources", resource)
		}
	}
}

func TestRolesAreComplete(t *testing.T) {
	for role := range KnownRoles {
		if name, ok := RoleDisplayNames[role]; !ok || name == "" {
			t.Errorf("Expected role %q to have a display name", role)
		}
	}
	for alias, role := range RoleAliases {
		if _, ok := KnownRoles[role]; !ok {
			t.Errorf("Alias %q points at unknown role %q", alias, role)
		}
	}
}

func TestDefaultPoliciesUseKnownNames(t *testing.T) {
	for _, p := range DefaultPolicies() {
		if _, ok := KnownRoles[p.Subject]; !ok {
			t.Errorf("unknown role %q", p.Subject)
		}
		if _, ok := KnownResources[p.Object]; !ok && p.Object != WildcardResource {
			t.Errorf("unknown resource %q", p.Object)
		}
		if !IsValidDomain(p.Domain) {
			t.Errorf("invalid domain %q", p.Domain)
		}
	}
}
