package authorize

type Action string
type Resource string
type Role string
type Domain string

// ----------------------------
// Actions
// ----------------------------

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionList   Action = "list"

	// RBAC-specific actions
	ActionGrant  Action = "grant"
	ActionRevoke Action = "revoke"
)

const (
	WildcardAction Action = "*"
)

var KnownActions = map[Action]struct{}{
	ActionCreate: {}, ActionRead: {}, ActionUpdate: {}, ActionDelete: {}, ActionList: {},
	ActionGrant: {}, ActionRevoke: {},
}

// ----------------------------
// Resources
// ----------------------------

const (
	WildcardResource Resource = "*"

	// Clinician workspace (tabs, active pointer, chart aggregates)
	ResourceWorkspace Resource = "workspace"

	// Patients and their demographics
	ResourcePatient      Resource = "patient"
	ResourceDemographics Resource = "demographics"

	// Chart record kinds. Every history section shares ResourceHistory.
	ResourceAllergy          Resource = "allergies"
	ResourceDrugIntolerance  Resource = "drug_intolerances"
	ResourceProblem          Resource = "problems"
	ResourceHistory          Resource = "history"
	ResourceFamilyHistory    Resource = "family_history"
	ResourceAppointment      Resource = "appointments"
	ResourceConfidentialNote Resource = "confidential_notes"
	ResourceSurvey           Resource = "surveys"

	// Search-as-you-type reference data
	ResourceLookup Resource = "lookup"

	// System / platform admin
	ResourceSystem Resource = "system"
	ResourceAudit  Resource = "audit"
	ResourceRBAC   Resource = "rbac"
)

var KnownResources = map[Resource]struct{}{
	ResourceWorkspace: {},
	ResourcePatient: {}, ResourceDemographics: {},
	ResourceAllergy: {}, ResourceDrugIntolerance: {}, ResourceProblem: {}, ResourceHistory: {},
	ResourceFamilyHistory: {}, ResourceAppointment: {}, ResourceConfidentialNote: {}, ResourceSurvey: {},
	ResourceLookup: {},
	ResourceSystem: {}, ResourceAudit: {}, ResourceRBAC: {},
}

// RecordResources are the resources backing chart record widgets.
var RecordResources = []Resource{
	ResourceAllergy,
	ResourceDrugIntolerance,
	ResourceProblem,
	ResourceHistory,
	ResourceFamilyHistory,
	ResourceAppointment,
	ResourceConfidentialNote,
	ResourceSurvey,
}

// ----------------------------
// Roles
// ----------------------------
//
// These are the "policy subjects" we assign to users via grouping policies.

const (
	WildcardRole Role = "*"

	// Platform role (domain = sys)
	RoleSysSuperAdmin Role = "role:sys:superadmin"

	// Clinic roles (domain = clinic)
	RoleClinicAdmin     Role = "role:clinic:admin"
	RoleClinicPhysician Role = "role:clinic:physician"
	RoleClinicNurse     Role = "role:clinic:nurse"
	RoleClinicFrontDesk Role = "role:clinic:front_desk"
)

var KnownRoles = map[Role]struct{}{
	RoleSysSuperAdmin:   {},
	RoleClinicAdmin:     {},
	RoleClinicPhysician: {},
	RoleClinicNurse:     {},
	RoleClinicFrontDesk: {},
}

var RoleDisplayNames = map[Role]string{
	RoleSysSuperAdmin:   "Platform superadmin",
	RoleClinicAdmin:     "Clinic admin",
	RoleClinicPhysician: "Physician",
	RoleClinicNurse:     "Nurse",
	RoleClinicFrontDesk: "Front desk",
}

// Short role names accepted on the command line.
var RoleAliases = map[string]Role{
	"superadmin": RoleSysSuperAdmin,
	"admin":      RoleClinicAdmin,
	"physician":  RoleClinicPhysician,
	"nurse":      RoleClinicNurse,
	"front_desk": RoleClinicFrontDesk,
}

// DomainForRole is the domain a role is granted in.
func DomainForRole(r Role) Domain {
	if r == RoleSysSuperAdmin {
		return DomainSys
	}
	return DomainClinic
}

// ----------------------------
// Domains
// ----------------------------

const (
	DomainSys    Domain = "sys"
	DomainClinic Domain = "clinic"
)

const (
	WildcardDomain Domain = "*"
)

// IsValidDomain checks whether d is a recognised domain string.
func IsValidDomain(d Domain) bool {
	switch d {
	case DomainSys, DomainClinic, WildcardDomain:
		return true
	default:
		return false
	}
}

// ----------------------------
// Casbin tuple helpers
// ----------------------------

type PolicyEffect string

const (
	EffectAllow PolicyEffect = "allow"
	EffectDeny  PolicyEffect = "deny"
)

// PolicySubject is the p.sub in Casbin: either a role (preferred) or a user/service id.
type PolicySubject string

// GroupSubject is the g.sub in Casbin: a concrete principal id (user_id or service_id).
type GroupSubject string

// Grouping rows: g, user_id, role, domain
type GroupingPolicy struct {
	Subject GroupSubject
	Role    Role
	Domain  Domain
}

// Permission rows: p, role, domain, resource, action, eft
type PermissionPolicy struct {
	Subject Role
	Domain  Domain
	Object  Resource
	Action  Action
	Effect  PolicyEffect
}
