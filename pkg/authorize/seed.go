package authorize

import (
	"context"
	"log/slog"
)

// DefaultPolicies is the baseline clinic policy set. Superadmins bypass
// enforcement and need no rows.
func DefaultPolicies() []PermissionPolicy {
	policies := []PermissionPolicy{
		// ClinicAdmin: everything inside the clinic, including grants
		{RoleClinicAdmin, DomainClinic, WildcardResource, WildcardAction, EffectAllow},

		// Physician: full charting
		{RoleClinicPhysician, DomainClinic, ResourceWorkspace, WildcardAction, EffectAllow},
		{RoleClinicPhysician, DomainClinic, ResourcePatient, ActionCreate, EffectAllow},
		{RoleClinicPhysician, DomainClinic, ResourcePatient, ActionRead, EffectAllow},
		{RoleClinicPhysician, DomainClinic, ResourceDemographics, ActionUpdate, EffectAllow},
		{RoleClinicPhysician, DomainClinic, ResourceLookup, ActionRead, EffectAllow},

		// Nurse: charting without confidential notes
		{RoleClinicNurse, DomainClinic, ResourceWorkspace, WildcardAction, EffectAllow},
		{RoleClinicNurse, DomainClinic, ResourcePatient, ActionRead, EffectAllow},
		{RoleClinicNurse, DomainClinic, ResourceDemographics, ActionUpdate, EffectAllow},
		{RoleClinicNurse, DomainClinic, ResourceLookup, ActionRead, EffectAllow},
		{RoleClinicNurse, DomainClinic, ResourceConfidentialNote, WildcardAction, EffectDeny},

		// FrontDesk: registration and scheduling
		{RoleClinicFrontDesk, DomainClinic, ResourceWorkspace, WildcardAction, EffectAllow},
		{RoleClinicFrontDesk, DomainClinic, ResourcePatient, ActionCreate, EffectAllow},
		{RoleClinicFrontDesk, DomainClinic, ResourcePatient, ActionRead, EffectAllow},
		{RoleClinicFrontDesk, DomainClinic, ResourceDemographics, ActionUpdate, EffectAllow},
		{RoleClinicFrontDesk, DomainClinic, ResourceLookup, ActionRead, EffectAllow},
		{RoleClinicFrontDesk, DomainClinic, ResourceAppointment, WildcardAction, EffectAllow},
		{RoleClinicFrontDesk, DomainClinic, ResourceAllergy, ActionRead, EffectAllow},
	}

	for _, r := range RecordResources {
		policies = append(policies, PermissionPolicy{RoleClinicPhysician, DomainClinic, r, WildcardAction, EffectAllow})
		if r != ResourceConfidentialNote {
			policies = append(policies, PermissionPolicy{RoleClinicNurse, DomainClinic, r, WildcardAction, EffectAllow})
		}
	}
	return policies
}

// SeedDefaultPolicies sets up the baseline RBAC policies for the system.
func SeedDefaultPolicies(ctx context.Context, auth IAuthorization) error {
	logger := slog.Default()

	allPolicies := DefaultPolicies()
	for _, p := range allPolicies {
		added, err := auth.AddPermission(ctx, p.Subject, p.Domain, p.Object, p.Action, p.Effect)
		if err != nil {
			logger.Error("failed to add policy", "policy", p, "error", err)
			return err
		}
		if added {
			logger.Debug("added policy", "role", p.Subject, "domain", p.Domain, "resource", p.Object, "action", p.Action)
		}
	}

	logger.Info("seeded default RBAC policies", "count", len(allPolicies))
	return nil
}

// AssignRole grants role to a user in the role's domain.
func AssignRole(ctx context.Context, auth IAuthorization, userID string, role Role) error {
	if _, ok := KnownRoles[role]; !ok {
		return ErrInvalidArgs
	}
	_, err := auth.AddRoleForUserInDomain(ctx, GroupSubject(userID), role, DomainForRole(role))
	return err
}

// RemoveRole revokes role from a user.
func RemoveRole(ctx context.Context, auth IAuthorization, userID string, role Role) error {
	_, err := auth.RemoveRoleForUserInDomain(ctx, GroupSubject(userID), role, DomainForRole(role))
	return err
}

// GetClinicRoles returns all roles a user has in the clinic.
func GetClinicRoles(ctx context.Context, auth IAuthorization, userID string) ([]Role, error) {
	return auth.GetRolesForUserInDomain(ctx, GroupSubject(userID), DomainClinic)
}
